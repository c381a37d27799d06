package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yourorg/transitfr/internal/models"
)

// Columns is the canonical export header. Import accepts any column order;
// export always writes this one.
var Columns = []string{
	"networks/id",
	"networks/feed_id",
	"networks/display_name",
	"networks/region_id",
	"networks/is_available",
	"networks/last_check",
	"networks/error_message",
	"operators/id",
	"operators/agency_id",
	"operators/name",
	"operators/display_name",
	"operators/gtfs_id",
	"operators/is_active",
}

// Lister is the slice of the persistence layer the exporter needs.
type Lister interface {
	ListNetworks(ctx context.Context) ([]models.Network, error)
}

// Export writes the full networks/operators catalog as CSV. One row per
// operator; a network without operators still gets one row with the operator
// columns blank, so the export re-imports losslessly.
func Export(ctx context.Context, lister Lister, w io.Writer) error {
	networks, err := lister.ListNetworks(ctx)
	if err != nil {
		return fmt.Errorf("export networks: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, n := range networks {
		lastCheck := ""
		if n.LastCheck != nil {
			lastCheck = n.LastCheck.Format(timestampLayout)
		}
		errMessage := ""
		if n.ErrorMessage != nil {
			errMessage = *n.ErrorMessage
		}
		networkCols := []string{
			n.ID,
			n.FeedID,
			n.DisplayName,
			n.RegionID,
			strconv.FormatBool(n.IsAvailable),
			lastCheck,
			errMessage,
		}

		if len(n.Operators) == 0 {
			row := append(append([]string{}, networkCols...), "", "", "", "", "", "")
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}
		for _, op := range n.Operators {
			row := append(append([]string{}, networkCols...),
				op.ID,
				op.AgencyID,
				op.Name,
				op.DisplayName,
				op.GtfsID,
				strconv.FormatBool(op.IsActive),
			)
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
