// Package store is the persistence gateway for networks and operators. All
// writes are idempotent upserts; the reconciliation path never deletes rows,
// it only flips availability flags.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/transitfr/internal/models"
)

// Store wraps the relational backend.
type Store struct {
	db *sql.DB
}

// New builds a Store over an open connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertNetwork creates or updates one network row keyed by its id.
func (s *Store) UpsertNetwork(ctx context.Context, n models.Network) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO networks (id, feed_id, display_name, region_id, is_available, last_check, error_message)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			feed_id = VALUES(feed_id),
			display_name = COALESCE(VALUES(display_name), display_name),
			region_id = VALUES(region_id),
			is_available = VALUES(is_available),
			last_check = VALUES(last_check),
			error_message = VALUES(error_message)
	`, n.ID, n.FeedID, n.DisplayName, n.RegionID, n.IsAvailable, n.LastCheck, n.ErrorMessage)
	if err != nil {
		return fmt.Errorf("upsert network %s: %w", n.ID, err)
	}
	return nil
}

// UpsertOperator creates or updates one operator row keyed by
// (network_id, gtfs_id) and returns the row id. A fresh UUID is assigned on
// insert unless the caller provides one (CSV import preserves ids).
func (s *Store) UpsertOperator(ctx context.Context, op models.Operator) (string, error) {
	id := op.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operators (id, network_id, agency_id, name, display_name, gtfs_id, is_active)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?)
		ON DUPLICATE KEY UPDATE
			agency_id = VALUES(agency_id),
			name = VALUES(name),
			display_name = COALESCE(VALUES(display_name), display_name),
			is_active = VALUES(is_active)
	`, id, op.NetworkID, op.AgencyID, op.Name, op.DisplayName, op.GtfsID, op.IsActive)
	if err != nil {
		return "", fmt.Errorf("upsert operator %s/%s: %w", op.NetworkID, op.GtfsID, err)
	}

	// The insert id is not reported for duplicate-key updates, so read the
	// canonical row id back.
	var rowID string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM operators WHERE network_id = ? AND gtfs_id = ?`,
		op.NetworkID, op.GtfsID,
	).Scan(&rowID)
	if err != nil {
		return "", fmt.Errorf("fetch operator id %s/%s: %w", op.NetworkID, op.GtfsID, err)
	}
	return rowID, nil
}

// DeactivateNetworksNotSeen marks every network of a region that is absent
// from the seen set as unavailable, recording the check time and message.
// Returns the number of rows touched.
func (s *Store) DeactivateNetworksNotSeen(ctx context.Context, regionID string, seen []string, when time.Time, message string) (int64, error) {
	query := `UPDATE networks SET is_available = 0, last_check = ?, error_message = ? WHERE region_id = ?`
	args := []interface{}{when, message, regionID}
	if len(seen) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(seen)) + `)`
		for _, id := range seen {
			args = append(args, id)
		}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate networks for %s: %w", regionID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeactivateOperatorsNotSeen marks the operators of one network absent from
// the seen gtfs-id set as inactive. Scoped per network so the NOT IN filter
// stays bounded even when a region carries thousands of operators.
func (s *Store) DeactivateOperatorsNotSeen(ctx context.Context, networkID string, seenGtfsIDs []string) (int64, error) {
	query := `UPDATE operators SET is_active = 0 WHERE network_id = ?`
	args := []interface{}{networkID}
	if len(seenGtfsIDs) > 0 {
		query += ` AND gtfs_id NOT IN (` + placeholders(len(seenGtfsIDs)) + `)`
		for _, id := range seenGtfsIDs {
			args = append(args, id)
		}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate operators for %s: %w", networkID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListNetworks returns every network with its operators, ordered by feed id.
func (s *Store) ListNetworks(ctx context.Context) ([]models.Network, error) {
	return s.listNetworks(ctx, "", nil)
}

// ListNetworksByRegion returns one region's networks with their operators.
func (s *Store) ListNetworksByRegion(ctx context.Context, regionID string) ([]models.Network, error) {
	return s.listNetworks(ctx, " WHERE n.region_id = ?", []interface{}{regionID})
}

func (s *Store) listNetworks(ctx context.Context, where string, args []interface{}) ([]models.Network, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.feed_id, n.display_name, n.region_id, n.is_available, n.last_check, n.error_message,
		       o.id, o.agency_id, o.name, o.display_name, o.gtfs_id, o.is_active
		FROM networks n
		LEFT JOIN operators o ON o.network_id = n.id`+where+`
		ORDER BY n.feed_id, o.name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	var result []models.Network
	index := make(map[string]int)

	for rows.Next() {
		var (
			n           models.Network
			displayName sql.NullString
			lastCheck   sql.NullTime
			errMessage  sql.NullString

			opID, opAgency, opName, opDisplay, opGtfs sql.NullString
			opActive                                  sql.NullBool
		)
		if err := rows.Scan(
			&n.ID, &n.FeedID, &displayName, &n.RegionID, &n.IsAvailable, &lastCheck, &errMessage,
			&opID, &opAgency, &opName, &opDisplay, &opGtfs, &opActive,
		); err != nil {
			return nil, fmt.Errorf("scan network row: %w", err)
		}
		n.DisplayName = displayName.String
		if lastCheck.Valid {
			t := lastCheck.Time
			n.LastCheck = &t
		}
		if errMessage.Valid {
			msg := errMessage.String
			n.ErrorMessage = &msg
		}

		pos, seen := index[n.ID]
		if !seen {
			result = append(result, n)
			pos = len(result) - 1
			index[n.ID] = pos
		}
		if opID.Valid {
			result[pos].Operators = append(result[pos].Operators, models.Operator{
				ID:          opID.String,
				NetworkID:   n.ID,
				AgencyID:    opAgency.String,
				Name:        opName.String,
				DisplayName: opDisplay.String,
				GtfsID:      opGtfs.String,
				IsActive:    opActive.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	return result, nil
}

// UpdateNetworkDisplayName edits the display name of one network.
func (s *Store) UpdateNetworkDisplayName(ctx context.Context, networkID, displayName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE networks SET display_name = NULLIF(?, '') WHERE id = ?`,
		displayName, networkID,
	)
	if err != nil {
		return fmt.Errorf("update network %s: %w", networkID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either unknown id or unchanged value; distinguish for callers.
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM networks WHERE id = ?`, networkID).Scan(&exists); err != nil {
			return fmt.Errorf("update network %s: %w", networkID, err)
		}
		if exists == 0 {
			return sql.ErrNoRows
		}
	}
	return nil
}

// SetNetworkAvailability flips one network's availability flag.
func (s *Store) SetNetworkAvailability(ctx context.Context, networkID string, available bool, errorMessage *string, when time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE networks SET is_available = ?, error_message = ?, last_check = ? WHERE id = ?`,
		available, errorMessage, when, networkID,
	)
	if err != nil {
		return fmt.Errorf("set availability for %s: %w", networkID, err)
	}
	return nil
}

// CountNetworks reports how many networks are stored, for health checks.
func (s *Store) CountNetworks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM networks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count networks: %w", err)
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
