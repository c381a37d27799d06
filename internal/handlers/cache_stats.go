package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ============================================================================
// CACHE STATISTICS ENDPOINTS
// ============================================================================
// Operational visibility into the per-query-class caches.
// GET  /api/admin/cache/stats
// POST /api/admin/cache/clear

// GetCacheStats reports statistics for every cache class.
func GetCacheStats(c *fiber.Ctx) error {
	reg := getCaches()
	if reg == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	stats := reg.StatsByClass()

	var totalItems, totalValid, totalExpired int
	var totalMemoryMB float64
	for _, s := range stats {
		totalItems += s.TotalItems
		totalValid += s.ValidItems
		totalExpired += s.ExpiredItems
		totalMemoryMB += s.MemoryEstMB
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"summary": fiber.Map{
			"total_items":   totalItems,
			"valid_items":   totalValid,
			"expired_items": totalExpired,
			"memory_est_mb": totalMemoryMB,
		},
		"caches": stats,
	})
}

// ClearCache empties one cache class or all of them.
// POST /api/admin/cache/clear?class=networks
func ClearCache(c *fiber.Ctx) error {
	reg := getCaches()
	if reg == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	class := c.Query("class", "all")
	cleared := 1

	switch class {
	case "networks":
		reg.Networks.Clear()
	case "lines":
		reg.Lines.Clear()
	case "stops":
		reg.Stops.Clear()
	case "timetables":
		reg.Timetables.Clear()
	case "realtime":
		reg.Realtime.Clear()
	case "all":
		reg.ClearAll()
		cleared = 5
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown cache class: " + class,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "cleared",
		"class":   class,
		"cleared": cleared,
	})
}
