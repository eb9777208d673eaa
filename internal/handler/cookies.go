package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// AccessCookie and RefreshCookie name the HTTP-only session cookies
	// set on login/renewal and cleared on logout. The middleware accepts
	// the access cookie as an alternative to the Authorization header.
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

func sessionCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().UTC().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func clearedCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) setSessionCookies(c echo.Context, access, refresh string) {
	accessTTL := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	refreshTTL := time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
	c.SetCookie(sessionCookie(AccessCookie, access, accessTTL, h.Cfg.SecureCookies))
	c.SetCookie(sessionCookie(RefreshCookie, refresh, refreshTTL, h.Cfg.SecureCookies))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(clearedCookie(AccessCookie, h.Cfg.SecureCookies))
	c.SetCookie(clearedCookie(RefreshCookie, h.Cfg.SecureCookies))
}
