package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidverse/user-service/internal/middleware"
)

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return failWith(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Auth.CurrentUser(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, user, "current user")
}

// Profile returns the public record of any user by username. The route is
// unauthenticated and sits behind the Redis response cache.
func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Auth.Profile(ctx, c.Param("username"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, user, "user profile")
}
