package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/habits/pkg/health"
)

const readyTimeout = 2 * time.Second

// readyResponse lists each dependency with "ok" or its failure text.
type readyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

// Health answers as long as the process is serving.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready checks PostgreSQL, and Redis when the reset throttle uses it.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} readyResponse
// @Failure 503 {object} readyResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	report := h.svc.Ready(ctx)
	if !report.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(readyResponse{Status: "not_ready", Checks: report.Checks})
	}
	return c.Status(fiber.StatusOK).JSON(readyResponse{Status: "ready", Checks: report.Checks})
}
