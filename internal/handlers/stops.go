package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/transit"
	"github.com/yourorg/transitfr/internal/validation"
)

// GetPatternStops lists the stops served by one pattern.
// GET /api/regions/:regionID/patterns/:patternID/stops
func GetPatternStops(c *fiber.Ctx) error {
	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	stops := client.GetStopsByPattern(c.Context(), c.Params("patternID"))
	return c.JSON(fiber.Map{
		"stops": stops,
		"count": len(stops),
	})
}

// GetStopDetails returns one stop with its routes and the next departures
// grouped per route.
// GET /api/regions/:regionID/stops/:stopID?departures=10
func GetStopDetails(c *fiber.Ctx) error {
	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	stopID := c.Params("stopID")
	numberOfDepartures := c.QueryInt("departures", 10)

	stop := client.GetStopDetails(c.Context(), stopID, numberOfDepartures)
	if stop == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown stop: " + stopID,
		})
	}

	transit.SortRoutesByMode(stop.Routes)
	departures := transit.NextDepartures(stop.Stoptimes, time.Now(), numberOfDepartures)
	return c.JSON(fiber.Map{
		"stop":       stop,
		"departures": transit.GroupDeparturesByRoute(departures),
	})
}

// GetStopsNearby lists the stops around a point, closest first.
// GET /api/regions/:regionID/stops/nearby?lat=48.85&lon=2.35&radius=500
func GetStopsNearby(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat")
	lon := c.QueryFloat("lon")
	radius := c.QueryInt("radius", 500)

	if validation.IsZeroCoordinate(lat, lon) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lat and lon are required",
		})
	}
	if err := validation.ValidateCoordinatePair(lat, lon, "query"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := validation.ValidateRadius(radius); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	stops := client.GetStopsByRadius(c.Context(), lat, lon, radius)
	return c.JSON(fiber.Map{
		"stops": stops,
		"count": len(stops),
	})
}
