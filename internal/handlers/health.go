package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse reports the state of the system's dependencies.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// Health runs a full health check.
// GET /api/health
func Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: Database
	// ============================================================================
	setupMu.RLock()
	db := dbConn
	setupMu.RUnlock()

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services["database"] = "healthy"
			if g := getGateway(); g != nil {
				if count, err := g.CountNetworks(ctx); err == nil {
					services["networks"] = fmt.Sprintf("%d stored", count)
				}
			}
		}
	} else {
		services["database"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: Region directory
	// ============================================================================
	if dir := getDirectory(); dir != nil {
		active := len(dir.Active())
		if active == 0 {
			services["regions"] = "no active regions"
			overall = "degraded"
		} else {
			services["regions"] = "healthy"
		}
	} else {
		services["regions"] = "not_initialized"
		overall = "degraded"
	}

	status := fiber.StatusOK
	if overall != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
	})
}
