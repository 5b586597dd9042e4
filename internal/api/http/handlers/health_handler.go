package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/persistence"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. Dependencies that
// are not configured are reported as disabled and do not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := map[string]any{}
	ready := true

	check := func(name string, err error, disabled error) {
		switch {
		case err == nil:
			depStatus[name] = "ok"
		case errors.Is(err, disabled):
			depStatus[name] = "disabled"
		default:
			depStatus[name] = err.Error()
			ready = false
		}
	}
	check("postgres", h.postgres.Ping(ctx), persistence.ErrPostgresDisabled)
	check("redis", h.redis.Ping(ctx), persistence.ErrRedisDisabled)

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	const message = "one or more dependencies unavailable"
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Error:   dto.ErrorBody{Code: apperrors.CodeUnavailable, Message: message, Details: depStatus},
		Message: message,
	})
}
