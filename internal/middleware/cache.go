package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vidverse/user-service/internal/config"
)

// ProfileCache returns a middleware caching successful GET responses in
// Redis, keyed by request path. It serves the public profile route; every
// in-scope write to a user happens through authenticated endpoints that
// never pass through this middleware, and entries age out via TTL. When
// the client is nil or the cache is disabled, requests pass straight
// through.
func ProfileCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cfg.Prefix + ":" + c.Request().URL.Path

			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, body)
			}

			// Cache miss: tee the response body while it is written out.
			rec := &teeWriter{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status == http.StatusOK && rec.buf.Len() > 0 {
				_ = rdb.Set(ctx, key, rec.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}

// teeWriter duplicates everything written to the client into a buffer so
// the middleware can store it after the handler finishes.
type teeWriter struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
