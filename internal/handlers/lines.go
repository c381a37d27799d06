package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/otp"
	"github.com/yourorg/transitfr/internal/transit"
)

// regionClient resolves the API client for a path region, answering 404 on
// unknown or inactive regions. The second return is false when the response
// has already been written.
func regionClient(c *fiber.Ctx) (*otp.Client, bool) {
	regionID := c.Params("regionID")
	cl, found := clientFor(regionID)
	if !found {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown or inactive region: " + regionID,
		})
		return nil, false
	}
	return cl, true
}

// GetOperatorRoutes lists the routes of one operator, sorted for display.
// GET /api/regions/:regionID/operators/:operatorID/routes
func GetOperatorRoutes(c *fiber.Ctx) error {
	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	routes := client.GetRoutesByAgency(c.Context(), c.Params("operatorID"))
	transit.SortRoutes(routes)

	return c.JSON(fiber.Map{
		"routes": routes,
		"count":  len(routes),
	})
}

// GetRouteDetails returns one route with patterns, origin and destination.
// GET /api/regions/:regionID/routes/:routeID
func GetRouteDetails(c *fiber.Ctx) error {
	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	routeID := c.Params("routeID")
	route := client.GetRouteDetails(c.Context(), routeID)
	if route == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown route: " + routeID,
		})
	}

	route.Origin, route.Destination = transit.SplitLongName(route.LongName)
	return c.JSON(route)
}

// GetRoutePatterns lists the stop-sequence variants of one route.
// GET /api/regions/:regionID/routes/:routeID/patterns
func GetRoutePatterns(c *fiber.Ctx) error {
	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	patterns := client.GetPatternsByRoute(c.Context(), c.Params("routeID"))
	return c.JSON(fiber.Map{
		"patterns": patterns,
		"count":    len(patterns),
	})
}
