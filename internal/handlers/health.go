package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger is a dependency whose reachability is reported by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatasetSizer reports how many rows each loaded table holds.
type DatasetSizer interface {
	Sizes() (activity, goals int)
}

// HealthHandler reports liveness with dataset sizes and dependency status.
type HealthHandler struct {
	data   DatasetSizer
	checks map[string]Pinger
}

// NewHealthHandler creates a new health handler. Nil checks are skipped.
func NewHealthHandler(data DatasetSizer, checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{data: data, checks: active}
}

// Healthz returns 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	activity, goals := h.data.Sizes()
	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"datasets": fiber.Map{
			"activity_rows": activity,
			"goal_rows":     goals,
		},
		"dependencies": deps,
	})
}
