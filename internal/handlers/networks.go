package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/transit"
)

// GetAllNetworks lists every stored network with its operators. With
// ?dedup=true, unavailable networks are dropped and networks sharing a
// display name collapse into one entry.
// GET /api/networks
func GetAllNetworks(c *fiber.Ctx) error {
	g := getGateway()
	if g == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	networks, err := g.ListNetworks(c.Context())
	if err != nil {
		log.Printf("list networks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not list networks",
		})
	}

	if c.QueryBool("grouped") {
		return c.JSON(fiber.Map{
			"groups": transit.GroupByDisplayName(networks),
			"count":  len(networks),
		})
	}
	if c.QueryBool("dedup") {
		networks = transit.DedupNetworks(networks)
		regional, urban := transit.SplitRegional(networks)
		return c.JSON(fiber.Map{
			"networks": networks,
			"count":    len(networks),
			"regional": regional,
			"urban":    urban,
		})
	}
	return c.JSON(fiber.Map{
		"networks": networks,
		"count":    len(networks),
	})
}

// GetNetworksByRegion lists one region's networks.
// GET /api/regions/:regionID/networks
func GetNetworksByRegion(c *fiber.Ctx) error {
	g := getGateway()
	dir := getDirectory()
	if g == nil || dir == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	regionID := c.Params("regionID")
	region, ok := dir.Lookup(regionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown region: " + regionID,
		})
	}

	networks, err := g.ListNetworksByRegion(c.Context(), region.ID)
	if err != nil {
		log.Printf("list networks for %s: %v", region.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not list networks",
		})
	}
	return c.JSON(fiber.Map{
		"region":   region,
		"networks": networks,
		"count":    len(networks),
	})
}

// UpdateNetworkRequest is the editable subset of a network row. Absent
// fields are left untouched.
type UpdateNetworkRequest struct {
	DisplayName  *string `json:"display_name"`
	IsAvailable  *bool   `json:"is_available"`
	ErrorMessage *string `json:"error_message"`
}

// UpdateNetwork edits a network's display name or availability.
// PUT /api/networks/:networkID
func UpdateNetwork(c *fiber.Ctx) error {
	g := getGateway()
	if g == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	var req UpdateNetworkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.DisplayName == nil && req.IsAvailable == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "nothing to update: provide display_name or is_available",
		})
	}

	networkID := c.Params("networkID")

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if err := g.UpdateNetworkDisplayName(c.Context(), networkID, name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "unknown network: " + networkID,
				})
			}
			log.Printf("update network %s: %v", networkID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "could not update network",
			})
		}
	}

	if req.IsAvailable != nil {
		if err := g.SetNetworkAvailability(c.Context(), networkID, *req.IsAvailable, req.ErrorMessage, time.Now()); err != nil {
			log.Printf("update network %s: %v", networkID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "could not update network",
			})
		}
	}

	// Cached network listings are stale after an edit.
	if reg := getCaches(); reg != nil {
		reg.Networks.Clear()
	}
	return c.JSON(fiber.Map{
		"status":     "updated",
		"network_id": networkID,
	})
}
