package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"

	"github.com/vidverse/user-service/internal/model"
)

// ErrInvalidToken is returned by the verify methods for any token that
// fails verification: malformed input, a bad signature or an expired
// claim set. The underlying cause is wrapped for diagnostics but callers
// should treat all of them the same way.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig carries the signing secrets and lifetimes for both token
// kinds. It is built from the application Config once at startup and
// injected into NewTokenSigner; the signer never reads the environment.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AccessClaims is the claim set of an access token: the registered claims
// (subject = user id, iat, exp) plus the public identity fields so that
// protected endpoints can respond without a database round trip.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// RefreshClaims carries only the registered claims. The subject is the
// user id; nothing else belongs in a refresh token.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies the two session token kinds with
// independent HS256 secrets.
type TokenSigner struct {
	cfg TokenConfig
}

func NewTokenSigner(cfg TokenConfig) *TokenSigner {
	return &TokenSigner{cfg: cfg}
}

// SignAccess builds and signs a short-lived access token from the user's
// public identity claims.
func (s *TokenSigner) SignAccess(u model.User) (string, error) {
	now := time.Now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
	})
	return t.SignedString([]byte(s.cfg.AccessSecret))
}

// SignRefresh builds and signs a long-lived refresh token carrying only
// the user id. The jti claim makes every issued token distinct even when
// two are minted within the same second, which rotation and reuse
// detection rely on.
func (s *TokenSigner) SignRefresh(userID uint64) (string, error) {
	now := time.Now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	})
	return t.SignedString([]byte(s.cfg.RefreshSecret))
}

// VerifyAccess checks signature and expiry of an access token and returns
// its claims. Any failure surfaces as ErrInvalidToken.
func (s *TokenSigner) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(token, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token and returns
// the user id from its subject claim.
func (s *TokenSigner) VerifyRefresh(token string) (uint64, error) {
	claims := &RefreshClaims{}
	if err := s.verify(token, claims, s.cfg.RefreshSecret); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}

func (s *TokenSigner) verify(token string, claims jwt.Claims, secret string) error {
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; otherwise a
		// crafted "alg" header could bypass the signature check.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
