package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vidverse/user-service/internal/config"
	"github.com/vidverse/user-service/internal/handler"
	"github.com/vidverse/user-service/internal/middleware"
	"github.com/vidverse/user-service/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware. Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, signer *utils.TokenSigner) {
	// Operations that establish or exchange a session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	// Everything below requires a valid access token. Logout lives here:
	// the service trusts the user id that the middleware verified.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(signer))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated profile endpoint. The
// response cache is a no-op when rdb is nil.
func RegisterPublic(e *echo.Echo, a *handler.AuthHandler, rdb *redis.Client, cacheCfg config.CacheConfig) {
	e.GET("/v1/users/:username", a.Profile, middleware.ProfileCache(rdb, cacheCfg))
}
