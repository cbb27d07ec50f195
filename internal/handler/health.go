package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency that can report its availability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	postgres  Pinger
	redis     Pinger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. redis may be nil when
// caching is disabled.
func NewHealthHandler(postgres Pinger, redis Pinger, version string) *HealthHandler {
	return &HealthHandler{
		postgres:  postgres,
		redis:     redis,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthStatus represents health check status
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) dependencies() map[string]Pinger {
	deps := map[string]Pinger{"postgres": h.postgres}
	if h.redis != nil {
		deps["redis"] = h.redis
	}
	return deps
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	for name, dep := range h.dependencies() {
		if err := dep.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = "unhealthy: " + err.Error()
		} else {
			status.Checks[name] = "healthy"
		}
	}

	statusCode := fiber.StatusOK
	if status.Status != "healthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(status)
}

// Liveness handles GET /livez - basic liveness check
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Readiness handles GET /readyz - readiness check
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	for name, dep := range h.dependencies() {
		if err := dep.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"reason": name + " unavailable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/livez", h.Liveness)
	router.Get("/readyz", h.Readiness)
	router.Get("/version", h.Version)
}
