package models

// SimulationRunRequest is the request body for POST /v1/simulations:run.
// Either RegionID or Population must be provided; RegionID wins when both
// are set.
type SimulationRunRequest struct {
	RegionID string `json:"regionId,omitempty"`

	Population  float64 `json:"population,omitempty"`
	MobilityPct float64 `json:"mobilityPct,omitempty"`

	StartDay    int `json:"startDay,omitempty"`
	HorizonDays int `json:"horizonDays,omitempty"`

	// InfectiousSeed overrides the default initial infectious count.
	InfectiousSeed *float64 `json:"infectiousSeed,omitempty"`
}
