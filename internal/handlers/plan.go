package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/validation"
)

// GetTripPlan plans up to three itineraries between two points. Departure
// defaults to now; pass date=YYYY-MM-DD and time=HH:MM:SS to plan ahead.
// GET /api/regions/:regionID/plan?from_lat=X&from_lon=Y&to_lat=X&to_lon=Y
func GetTripPlan(c *fiber.Ctx) error {
	fromLat := c.QueryFloat("from_lat")
	fromLon := c.QueryFloat("from_lon")
	toLat := c.QueryFloat("to_lat")
	toLon := c.QueryFloat("to_lon")

	if validation.IsZeroCoordinate(fromLat, fromLon) || validation.IsZeroCoordinate(toLat, toLon) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from_lat, from_lon, to_lat and to_lon are required",
		})
	}
	if err := validation.ValidateCoordinatePair(fromLat, fromLon, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := validation.ValidateCoordinatePair(toLat, toLon, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	when := time.Now()
	if date := c.Query("date"); date != "" {
		at := c.Query("time", "00:00:00")
		parsed, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+at, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid date/time: want date=YYYY-MM-DD and time=HH:MM:SS",
			})
		}
		when = parsed
	}

	client, ok := regionClient(c)
	if !ok {
		return nil
	}

	itineraries := client.PlanTrip(c.Context(),
		models.Coordinate{Lat: fromLat, Lon: fromLon},
		models.Coordinate{Lat: toLat, Lon: toLon},
		when,
	)
	return c.JSON(fiber.Map{
		"itineraries": itineraries,
		"count":       len(itineraries),
	})
}
