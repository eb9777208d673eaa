package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/vidverse/user-service/internal/model"
	"github.com/vidverse/user-service/internal/queue"
	"github.com/vidverse/user-service/internal/repository"
	"github.com/vidverse/user-service/internal/utils"
)

// emailRe accepts the usual name@domain.tld shapes. Stricter validation is
// the mail server's job.
var emailRe = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)

// UserStore is the slice of the repository the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error)
	UpdateRefreshToken(ctx context.Context, id uint64, token string) error
	ClearRefreshToken(ctx context.Context, id uint64) error
}

// MediaUploader pushes a locally staged file to durable storage and
// returns its URL. An empty path must return ("", nil). Implementations
// remove the local file on every exit path.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// EventPublisher announces domain events to the broker. May be nil, in
// which case events are skipped.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthService orchestrates registration, login, logout and token renewal.
// All collaborators are injected; the service holds no mutable state of
// its own, so a single instance serves concurrent requests.
type AuthService struct {
	users      UserStore
	uploader   MediaUploader
	signer     *utils.TokenSigner
	events     EventPublisher
	bcryptCost int
}

func NewAuthService(users UserStore, up MediaUploader, signer *utils.TokenSigner, events EventPublisher, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		uploader:   up,
		signer:     signer,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput carries the registration fields plus local paths of the
// staged image files. AvatarPath is required; CoverPath may be empty.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// TokenPair is a freshly minted access + refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult bundles the public user view with its session tokens.
type LoginResult struct {
	User model.PublicUser
	TokenPair
}

// Register validates input, checks uniqueness, uploads the staged images,
// hashes the password and persists the user. It returns the created
// record re-read from the store with secret fields excluded.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || in.Password == "" {
		return model.PublicUser{}, errValidation("all fields are required")
	}
	if !emailRe.MatchString(email) {
		return model.PublicUser{}, errValidation("invalid email address")
	}
	if in.AvatarPath == "" {
		return model.PublicUser{}, errValidation("avatar image is required")
	}

	// Existence pre-check; the unique indexes backstop the race below.
	_, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return model.PublicUser{}, errConflict("username or email already exists")
	case !errors.Is(err, sql.ErrNoRows):
		return model.PublicUser{}, errInternal("user lookup failed", err)
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil || avatarURL == "" {
		return model.PublicUser{}, errUpload("avatar upload failed", err)
	}
	// Cover failure is non-fatal; the user just has no cover image.
	coverURL, err := s.uploader.Upload(ctx, in.CoverPath)
	if err != nil {
		log.Printf("auth: cover upload failed for %s: %v", username, err)
		coverURL = ""
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, errInternal("password hashing failed", err)
	}

	id, err := s.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.PublicUser{}, errConflict("username or email already exists")
		}
		return model.PublicUser{}, errInternal("user creation failed", err)
	}

	created, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, errInternal("something went wrong while creating user", err)
	}

	if s.events != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       created.ID,
			Username:     created.Username,
			Email:        created.Email,
			FullName:     created.FullName,
			RegisteredAt: created.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishUserRegistered(ctx, ev); err != nil {
			log.Printf("auth: publish user.registered failed: %v", err)
		}
	}

	return created.Public(), nil
}

// Login verifies credentials identified by username or email and issues a
// fresh token pair. The new refresh token overwrites whatever was stored,
// invalidating any pair issued by a prior session.
func (s *AuthService) Login(ctx context.Context, username, email, password string) (LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" && email == "" {
		return LoginResult{}, errValidation("username or email is required")
	}
	if password == "" {
		return LoginResult{}, errValidation("password is required")
	}

	u, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, errNotFound("user does not exist")
		}
		return LoginResult{}, errInternal("user lookup failed", err)
	}

	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, errAuthentication("invalid credentials", nil)
	}

	loaded, pair, err := s.issueSessionTokens(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: loaded.Public(), TokenPair: pair}, nil
}

// Logout clears the stored refresh token for the user. The caller's
// identity was already established by access-token verification at the
// boundary. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return errInternal("logout failed", err)
	}
	return nil
}

// RenewTokens rotates a session: the presented refresh token must verify
// and must exactly match the one currently stored for its user, otherwise
// it is a superseded or forged token and the renewal is rejected.
func (s *AuthService) RenewTokens(ctx context.Context, presented string) (TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return TokenPair{}, errValidation("refresh token is required")
	}

	userID, err := s.signer.VerifyRefresh(presented)
	if err != nil {
		return TokenPair{}, errAuthentication("invalid refresh token", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, errAuthentication("invalid refresh token", err)
		}
		return TokenPair{}, errInternal("user lookup failed", err)
	}

	if u.RefreshToken == "" || u.RefreshToken != presented {
		return TokenPair{}, errAuthentication("refresh token is expired or already used", nil)
	}

	_, pair, err := s.issueSessionTokens(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// CurrentUser returns the public view of an authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint64) (model.PublicUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, errNotFound("user does not exist")
		}
		return model.PublicUser{}, errInternal("user lookup failed", err)
	}
	return u.Public(), nil
}

// Profile returns the public view of a user by username.
func (s *AuthService) Profile(ctx context.Context, username string) (model.PublicUser, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return model.PublicUser{}, errValidation("username is required")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, errNotFound("user does not exist")
		}
		return model.PublicUser{}, errInternal("user lookup failed", err)
	}
	return u.Public(), nil
}

// issueSessionTokens loads the user, signs an access token from its public
// claims and a refresh token from its id, and persists the refresh token
// so it becomes the single valid one. Failing to load the user means the
// caller passed a stale id; that is reported as an opaque internal error.
func (s *AuthService) issueSessionTokens(ctx context.Context, userID uint64) (model.User, TokenPair, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, TokenPair{}, errInternal("token generation failed", err)
	}

	access, err := s.signer.SignAccess(u)
	if err != nil {
		return model.User{}, TokenPair{}, errInternal("token generation failed", err)
	}
	refresh, err := s.signer.SignRefresh(u.ID)
	if err != nil {
		return model.User{}, TokenPair{}, errInternal("token generation failed", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, u.ID, refresh); err != nil {
		return model.User{}, TokenPair{}, errInternal("token generation failed", err)
	}
	u.RefreshToken = refresh

	return u, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
