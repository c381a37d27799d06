package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetRegions lists the active regions.
// GET /api/regions
func GetRegions(c *fiber.Ctx) error {
	dir := getDirectory()
	if dir == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}
	return c.JSON(fiber.Map{
		"regions": dir.Active(),
	})
}
