package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/csvio"
)

// CheckRegion runs a reconciliation pass for one region.
// POST /api/admin/regions/:regionID/check
func CheckRegion(c *fiber.Ctx) error {
	svc := getReconciler()
	if svc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	regionID := c.Params("regionID")
	result, err := svc.CheckAllNetworks(c.Context(), regionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The pass rewrote this region's rows; only its cached feed listing is
	// stale, other regions keep theirs.
	if reg := getCaches(); reg != nil {
		reg.Networks.DeletePrefix("feeds:" + regionID)
	}
	return c.JSON(result)
}

// ImportNetworks loads a CSV file of networks and operators. Accepts a
// multipart upload under the "file" field or the raw CSV as request body.
// POST /api/admin/networks/import
func ImportNetworks(c *fiber.Ctx) error {
	im := getImporter()
	if im == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	var reader io.Reader
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "could not open uploaded file",
			})
		}
		defer file.Close()
		reader = file
	} else {
		body := c.Body()
		if len(body) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "no csv content: upload a file or send it as request body",
			})
		}
		reader = bytes.NewReader(body)
	}

	result, err := im.Import(c.Context(), reader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if reg := getCaches(); reg != nil {
		reg.Networks.Clear()
	}
	log.Printf("csv import: %d/%d rows, %d warnings", result.Imported, result.Total, len(result.Warnings))
	return c.JSON(result)
}

// ExportNetworks streams the full catalog as a CSV download.
// GET /api/admin/networks/export
func ExportNetworks(c *fiber.Ctx) error {
	g := getGateway()
	if g == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service not initialized",
		})
	}

	var buf bytes.Buffer
	if err := csvio.Export(c.Context(), g, &buf); err != nil {
		log.Printf("csv export: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not export networks",
		})
	}

	filename := fmt.Sprintf("networks-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
