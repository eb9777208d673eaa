package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/vidverse/user-service/internal/config"
	"github.com/vidverse/user-service/internal/middleware"
	"github.com/vidverse/user-service/internal/service"
	"github.com/vidverse/user-service/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints. It deserializes
// requests, invokes the auth service and shapes responses plus cookies;
// all business rules live in the service.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
type loginResp struct {
	User interface{} `json:"user"`
	tokenResp
}

// Register accepts a multipart form: username, email, full_name, password
// plus an avatar file (required) and a cover_image file (optional). The
// files are staged to local temp paths; the media uploader removes them
// whatever the outcome.
func (h *AuthHandler) Register(c echo.Context) error {
	in := service.RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		FullName: c.FormValue("full_name"),
		Password: c.FormValue("password"),
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		return failWith(c, http.StatusBadRequest, "avatar image is required")
	}
	in.AvatarPath, err = utils.SaveMultipartTemp(avatar)
	if err != nil {
		return failWith(c, http.StatusInternalServerError, "could not store uploaded file")
	}
	// Cover is optional; a broken cover upload must not block registration.
	if cover, err := c.FormFile("cover_image"); err == nil {
		if path, err := utils.SaveMultipartTemp(cover); err == nil {
			in.CoverPath = path
		} else {
			log.Printf("register: staging cover image failed: %v", err)
		}
	}

	// Upload plus insert; more generous than the usual DB-only timeout.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	user, err := h.Auth.Register(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, user, "user created successfully")
}

// Login verifies credentials and returns the public user plus a fresh
// token pair, also delivered as HTTP-only cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failWith(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	h.setSessionCookies(c, res.AccessToken, res.RefreshToken)
	return respond(c, http.StatusOK, loginResp{
		User:      res.User,
		tokenResp: tokenResp{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken},
	}, "user logged in successfully")
}

// Refresh rotates the session tokens. The refresh token is read from the
// cookie first, then from the JSON body, matching how login delivered it.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req refreshReq
		_ = c.Bind(&req)
		token = strings.TrimSpace(req.RefreshToken)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.RenewTokens(ctx, token)
	if err != nil {
		return fail(c, err)
	}

	h.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)
	return respond(c, http.StatusOK, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "tokens renewed successfully")
}

// Logout clears the stored refresh token of the authenticated user and
// removes the session cookies. Calling it twice succeeds both times.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return failWith(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, userID); err != nil {
		return fail(c, err)
	}
	h.clearSessionCookies(c)
	return respond(c, http.StatusOK, nil, "user logged out")
}
