package models

import "time"

// Region identifies one upstream OTP deployment. Seed data, immutable at
// runtime.
type Region struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	APIURL   string `json:"api_url" yaml:"api_url" validate:"required,url"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
}

// Network is the local representation of one region+feed pairing. Rows are
// never deleted by the reconciliation path, only marked unavailable.
type Network struct {
	ID           string     `json:"id"`
	FeedID       string     `json:"feed_id"`
	DisplayName  string     `json:"display_name,omitempty"`
	RegionID     string     `json:"region_id"`
	IsAvailable  bool       `json:"is_available"`
	LastCheck    *time.Time `json:"last_check,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	Operators    []Operator `json:"operators,omitempty"`
}

// Operator is one transit agency within a network's feed. Unique by
// (network_id, gtfs_id).
type Operator struct {
	ID          string `json:"id"`
	NetworkID   string `json:"network_id"`
	AgencyID    string `json:"agency_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	GtfsID      string `json:"gtfs_id"`
	IsActive    bool   `json:"is_active"`
}

// NetworkKey derives the canonical network id for a region and feed.
func NetworkKey(regionID, feedID string) string {
	return regionID + ":" + feedID
}

// CheckResult is returned by a reconciliation pass. Success is true iff at
// least one operator row was imported, regardless of error count.
type CheckResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportResult is returned by a CSV import. Rows skipped for missing fields
// produce warnings, not errors; the import fails only when nothing imported.
type ImportResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Warnings []string `json:"warnings,omitempty"`
}
