// Package travelrisk estimates disease-transmission risk between two
// regions for a given travel volume, combining a rule-based formula with a
// baseline-vs-seeded simulation cross-check.
package travelrisk

import "github.com/epiroute/epiroute/internal/epidemic"

// RegionSummary describes one endpoint of a travel-risk estimate.
type RegionSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Population     int64   `json:"population"`
	MobilityPct    float64 `json:"mobilityPct"`
	MobilityFactor float64 `json:"mobilityFactor"`
}

// Checkpoint is the incremental new infections attributable to the seeded
// travelers at a given simulated day.
type Checkpoint struct {
	Day           int     `json:"day"`
	NewInfections float64 `json:"newInfections"`
}

// Estimate is the travel-risk result returned to callers.
type Estimate struct {
	Origin      RegionSummary `json:"origin"`
	Destination RegionSummary `json:"destination"`

	Travelers   int `json:"travelers"`
	HorizonDays int `json:"horizonDays"`

	// PInfectious is the probability that an individual traveler is
	// infectious, in [0, 1].
	PInfectious    float64 `json:"pInfectious"`
	PInfectiousPct float64 `json:"pInfectiousPct"`

	// ExpectedInfectiousTravelers is travelers times PInfectious.
	ExpectedInfectiousTravelers float64 `json:"expectedInfectiousTravelers"`

	// ProjectedNewInfections is the primary projection at the destination
	// over the horizon, capped to the destination population.
	ProjectedNewInfections float64 `json:"projectedNewInfections"`

	// ModelDeltaNewInfections is the baseline-vs-seeded simulation
	// cross-check, reported alongside the rule-based projection.
	ModelDeltaNewInfections float64 `json:"modelDeltaNewInfections"`

	// Checkpoints holds the seeded-vs-baseline infection deltas at fixed
	// days within the horizon.
	Checkpoints []Checkpoint `json:"checkpoints"`

	// OriginState is the origin's final-day compartment snapshot.
	OriginState epidemic.CompartmentState `json:"originState"`

	// DestinationState is the seeded destination's final-day snapshot.
	DestinationState epidemic.CompartmentState `json:"destinationState"`
}

// Heatmap is a pairwise origin-by-destination risk score matrix over all
// known regions, scores in [0, 100].
type Heatmap struct {
	Regions []string    `json:"regions"`
	Scores  [][]float64 `json:"scores"`
}
