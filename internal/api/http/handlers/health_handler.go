package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasdesk/support-service/internal/observability"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/tenant"
)

// HealthHandler responds to liveness and readiness probes and serves the
// in-process metrics snapshot.
type HealthHandler struct {
	serviceName   string
	version       string
	tenants       tenant.Store
	defaultTenant string
	redis         *persistence.Redis
	metrics       *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, tenants tenant.Store, defaultTenant string, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName:   serviceName,
		version:       version,
		tenants:       tenants,
		defaultTenant: defaultTenant,
		redis:         redis,
		metrics:       metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Metrics serves the request and error counters collected since startup.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

// Ready reports service readiness by checking the default tenant store and
// Redis.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if _, err := h.tenants.Handle(ctx, h.defaultTenant); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_FAILURE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
