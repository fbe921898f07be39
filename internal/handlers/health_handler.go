package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports store reachability.
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger, timeout time.Duration, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{store: store, timeout: timeout, log: log}
}

// HandleHealth responds 200 when the store answers a ping and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	now := time.Now().Format(time.RFC3339)
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"time":   now,
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   now,
	})
}
