package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is anything with a liveness probe, such as the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service and its backends are up.
type HealthHandler struct {
	Base
	Store Pinger
	Redis *redis.Client // optional
}

// Health answers 200 when the store responds and 503 otherwise.  Redis is
// reported but never fails the check since every Redis feature degrades.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := echo.Map{"status": "ok", "store": "ok"}
	code := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		h.log().WithError(err).Warn("health check: store unreachable")
		body["status"], body["store"] = "degraded", "down"
		code = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		body["redis"] = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "down"
		}
	}
	return c.JSON(code, body)
}
