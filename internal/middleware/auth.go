// Package middleware contains reusable HTTP middleware: access-token
// verification and the profile response cache.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vidverse/user-service/internal/utils"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
)

// JWTAuth returns an Echo middleware that validates an access token and
// injects the user id and claims into the request context. The token is
// read from the "accessToken" cookie or, for clients that cannot hold
// cookies, from an Authorization Bearer header. Protected handlers access
// the identity via UserID(c) and Claims(c).
func JWTAuth(signer *utils.TokenSigner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if ck, err := c.Cookie("accessToken"); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				auth := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					raw = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized request"})
			}

			claims, err := signer.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access token"})
			}
			id, err := strconv.ParseUint(claims.Subject, 10, 64)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access token"})
			}

			c.Set(userIDKey, id)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id set by JWTAuth. The second
// return is false when the request did not pass through the middleware.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok
}

// Claims extracts the verified access-token claims set by JWTAuth.
func Claims(c echo.Context) (*utils.AccessClaims, bool) {
	cl, ok := c.Get(claimsKey).(*utils.AccessClaims)
	return cl, ok
}
