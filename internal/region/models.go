// Package region provides the typed per-region population and mobility
// lookup backing the travel-risk estimator.
package region

import (
	"errors"
	"time"
)

// ErrRegionNotFound is returned when a region identifier is not present in
// the lookup table. Callers must surface this distinctly rather than
// defaulting to a zero population.
var ErrRegionNotFound = errors.New("region not found")

// Region is one row of the lookup table, validated at load time.
type Region struct {
	// ID is the canonical slug identifier, e.g. "tamil-nadu".
	ID string `json:"id"`

	// Name is the canonical display name, e.g. "Tamil Nadu".
	Name string `json:"name"`

	// Population is the region's total population.
	Population int64 `json:"population"`

	// MobilityPct is the latest workplace-mobility percentage.
	MobilityPct float64 `json:"mobilityPct"`

	// LastUpdated is when the underlying dataset row was observed.
	LastUpdated time.Time `json:"lastUpdated"`
}
