// ============================================================================
// CSV Import
// ============================================================================
// Bulk-load of network/operator rows from operator-curated spreadsheets.
// Column names follow the table/column convention (networks/feed_id,
// operators/name, ...). Files come from humans, so the region column is
// matched loosely and malformed rows turn into warnings, never a failed
// import.
// ============================================================================

package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/regions"
)

// timestampLayout is the export format for networks/last_check. RFC3339 is
// accepted on import as well, some files round-trip through other tools.
const timestampLayout = "02/01/2006 15:04:05"

// Gateway is the slice of the persistence layer the importer needs.
type Gateway interface {
	UpsertNetwork(ctx context.Context, n models.Network) error
	UpsertOperator(ctx context.Context, op models.Operator) (string, error)
}

// Importer loads CSV files into the networks/operators tables.
type Importer struct {
	directory *regions.Directory
	gateway   Gateway
}

// NewImporter wires an importer against a region directory and a gateway.
func NewImporter(directory *regions.Directory, gateway Gateway) *Importer {
	return &Importer{directory: directory, gateway: gateway}
}

// headerIndex maps normalized column names to their position. Unknown
// columns are ignored so files with extra annotation columns still load.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if name != "" {
			index[name] = i
		}
	}
	return index
}

// safeField reads one column from a record, tolerating short rows.
func safeField(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "oui":
		return true
	}
	return false
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// slug derives a stable gtfs-style id from an operator name, for files that
// carry names only.
func slug(name string) string {
	return strings.ReplaceAll(regions.Normalize(name), " ", "-")
}

// Import reads one CSV file and upserts its rows. Imported counts operator
// rows written; rows that cannot be resolved produce warnings and are
// skipped. The import succeeds iff at least one row was written.
func (im *Importer) Import(ctx context.Context, r io.Reader) (models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	index := headerIndex(header)

	for _, required := range []string{"networks/feed_id", "networks/region_id", "operators/name"} {
		if _, ok := index[required]; !ok {
			return models.ImportResult{}, fmt.Errorf("missing required column %q", required)
		}
	}
	// Files without explicit gtfs ids carry semicolon-separated operator
	// names instead; ids get derived from the names.
	_, hasGtfsID := index["operators/gtfs_id"]

	result := models.ImportResult{Warnings: []string{}}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Total++

		feedID := safeField(record, index, "networks/feed_id")
		regionValue := safeField(record, index, "networks/region_id")
		if feedID == "" || regionValue == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: missing feed_id or region_id, skipped", line))
			continue
		}

		region, ok := im.directory.Match(regionValue)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: unknown region %q, skipped", line, regionValue))
			continue
		}

		networkID := safeField(record, index, "networks/id")
		if networkID == "" {
			networkID = models.NetworkKey(region.ID, feedID)
		}

		network := models.Network{
			ID:          networkID,
			FeedID:      feedID,
			DisplayName: safeField(record, index, "networks/display_name"),
			RegionID:    region.ID,
			IsAvailable: parseBool(safeField(record, index, "networks/is_available")),
			LastCheck:   parseTimestamp(safeField(record, index, "networks/last_check")),
		}
		if msg := safeField(record, index, "networks/error_message"); msg != "" {
			network.ErrorMessage = &msg
		}
		if err := im.gateway.UpsertNetwork(ctx, network); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: network %s: %v", line, networkID, err))
			continue
		}

		names := safeField(record, index, "operators/name")
		if names == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: no operator name, network only", line))
			continue
		}

		for _, op := range im.rowOperators(record, index, networkID, names, hasGtfsID) {
			if _, err := im.gateway.UpsertOperator(ctx, op); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: operator %s: %v", line, op.Name, err))
				continue
			}
			result.Imported++
		}
	}

	result.Success = result.Imported > 0
	return result, nil
}

// rowOperators expands one CSV row into operator rows. With a gtfs_id column
// the row maps one-to-one; without it the name column may list several
// operators separated by semicolons.
func (im *Importer) rowOperators(record []string, index map[string]int, networkID, names string, hasGtfsID bool) []models.Operator {
	active := true
	if v := safeField(record, index, "operators/is_active"); v != "" {
		active = parseBool(v)
	}

	if hasGtfsID {
		gtfsID := safeField(record, index, "operators/gtfs_id")
		name := strings.TrimSpace(names)
		if gtfsID == "" {
			gtfsID = slug(name)
		}
		return []models.Operator{{
			ID:          safeField(record, index, "operators/id"),
			NetworkID:   networkID,
			AgencyID:    safeField(record, index, "operators/agency_id"),
			Name:        name,
			DisplayName: safeField(record, index, "operators/display_name"),
			GtfsID:      gtfsID,
			IsActive:    active,
		}}
	}

	var ops []models.Operator
	for _, name := range strings.Split(names, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ops = append(ops, models.Operator{
			NetworkID: networkID,
			Name:      name,
			GtfsID:    slug(name),
			IsActive:  active,
		})
	}
	return ops
}
