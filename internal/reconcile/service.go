// ============================================================================
// Network Reconciliation
// ============================================================================
// Periodic pass that pulls the feed/agency catalog of one region from its
// OTP endpoint and mirrors it into the local networks/operators tables.
// Rows that disappear upstream are deactivated, never deleted.
// ============================================================================

package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/regions"
)

// staleMessage is recorded on networks that vanished from the upstream
// catalog since the previous pass.
const staleMessage = "not found in last check"

// TransitAPI is the slice of the OTP client the reconciler needs.
type TransitAPI interface {
	GetFeeds(ctx context.Context) []models.Feed
}

// Gateway is the slice of the persistence layer the reconciler needs.
type Gateway interface {
	UpsertNetwork(ctx context.Context, n models.Network) error
	UpsertOperator(ctx context.Context, op models.Operator) (string, error)
	DeactivateNetworksNotSeen(ctx context.Context, regionID string, seen []string, when time.Time, message string) (int64, error)
	DeactivateOperatorsNotSeen(ctx context.Context, networkID string, seenGtfsIDs []string) (int64, error)
}

// ClientFactory builds a transit client for one region. Reconciliation
// passes want fresh data, so factories should hand back uncached clients.
type ClientFactory func(region models.Region) TransitAPI

// Service runs reconciliation passes.
type Service struct {
	directory *regions.Directory
	gateway   Gateway
	clients   ClientFactory
	now       func() time.Time
}

// NewService wires a reconciler. The now hook exists for tests; pass nil to
// use the wall clock.
func NewService(directory *regions.Directory, gateway Gateway, clients ClientFactory, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		directory: directory,
		gateway:   gateway,
		clients:   clients,
		now:       now,
	}
}

// CheckAllNetworks reconciles one region. Every feed becomes a network row,
// every agency an operator row; rows absent from this pass get deactivated.
// Per-feed and per-agency failures are accumulated, not fatal: the pass
// reports success iff at least one operator was imported.
func (s *Service) CheckAllNetworks(ctx context.Context, regionID string) (models.CheckResult, error) {
	region, ok := s.directory.Lookup(regionID)
	if !ok || !region.IsActive {
		return models.CheckResult{}, fmt.Errorf("unknown or inactive region %q", regionID)
	}

	client := s.clients(region)
	checkedAt := s.now()
	result := models.CheckResult{Errors: []string{}}

	feeds := client.GetFeeds(ctx)
	log.Printf("reconcile[%s]: %d feeds", region.ID, len(feeds))

	seenNetworks := make([]string, 0, len(feeds))

	for _, feed := range feeds {
		if feed.FeedID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("region %s: feed without id skipped", region.ID))
			continue
		}

		networkID := models.NetworkKey(region.ID, feed.FeedID)
		network := models.Network{
			ID:          networkID,
			FeedID:      feed.FeedID,
			RegionID:    region.ID,
			IsAvailable: true,
			LastCheck:   &checkedAt,
		}
		if err := s.gateway.UpsertNetwork(ctx, network); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("feed %s: %v", feed.FeedID, err))
			continue
		}
		seenNetworks = append(seenNetworks, networkID)

		seenOperators := make([]string, 0, len(feed.Agencies))
		for _, agency := range feed.Agencies {
			result.Total++

			gtfsID := agency.GtfsID
			if gtfsID == "" {
				// Some deployments omit gtfsId on agencies; fall back to the
				// plain id so the row still gets a stable key.
				gtfsID = agency.ID
				log.Printf("reconcile[%s]: agency %q has no gtfsId, using id %q", region.ID, agency.Name, agency.ID)
			}
			if gtfsID == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("feed %s: agency %q has no usable id", feed.FeedID, agency.Name))
				continue
			}

			op := models.Operator{
				NetworkID: networkID,
				AgencyID:  agency.ID,
				Name:      agency.Name,
				GtfsID:    gtfsID,
				IsActive:  true,
			}
			if _, err := s.gateway.UpsertOperator(ctx, op); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("feed %s agency %s: %v", feed.FeedID, agency.Name, err))
				continue
			}
			result.Imported++
			seenOperators = append(seenOperators, gtfsID)
		}

		if n, err := s.gateway.DeactivateOperatorsNotSeen(ctx, networkID, seenOperators); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("feed %s: deactivate operators: %v", feed.FeedID, err))
		} else if n > 0 {
			log.Printf("reconcile[%s]: %d operators deactivated in %s", region.ID, n, networkID)
		}
	}

	// With no feed processed there is nothing to compare against; leaving
	// the existing rows untouched beats wiping a region over one bad fetch.
	if len(seenNetworks) > 0 {
		if n, err := s.gateway.DeactivateNetworksNotSeen(ctx, region.ID, seenNetworks, checkedAt, staleMessage); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("region %s: deactivate networks: %v", region.ID, err))
		} else if n > 0 {
			log.Printf("reconcile[%s]: %d networks deactivated", region.ID, n)
		}
	}

	result.Success = result.Imported > 0
	log.Printf("reconcile[%s]: imported %d/%d operators, %d errors", region.ID, result.Imported, result.Total, len(result.Errors))
	return result, nil
}
