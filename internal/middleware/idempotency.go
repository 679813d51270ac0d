// Package middleware contains HTTP middleware applied in front of the
// seat operations.
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-seat-booking/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// cachedResponse is the stored shape of a replayable response.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// NewIdempotency returns middleware that makes POST operations safe to
// retry.  When a request carries an Idempotency-Key header whose
// response was already cached, the cached response is replayed without
// invoking the handler, so a client resending a claim after a network
// hiccup cannot double-submit.  Only successful (2xx) responses are
// cached; failures may legitimately succeed on retry.
func NewIdempotency(cfg config.IdempotencyConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("Idempotency-Key")
			if c.Request().Method != http.MethodPost || key == "" {
				return next(c)
			}
			cacheKey := cfg.Prefix + ":" + key
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, cacheKey).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					return c.Blob(cached.Status, cached.ContentType, cached.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status >= 200 && cw.status < 300 {
				raw, err := json.Marshal(cachedResponse{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				})
				if err == nil {
					// Best effort; a failed cache write only loses replay.
					_ = rdb.Set(context.WithoutCancel(ctx), cacheKey, raw, ttl).Err()
				}
			}
			return nil
		}
	}
}
