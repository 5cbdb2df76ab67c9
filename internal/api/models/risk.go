package models

// RiskEstimateRequest is the request body for POST /v1/risk:estimate.
type RiskEstimateRequest struct {
	// OriginRegionID identifies where travelers depart from.
	OriginRegionID string `json:"originRegionId"`

	// DestinationRegionID identifies where travelers arrive.
	DestinationRegionID string `json:"destinationRegionId"`

	// Travelers is the number of people moving over the horizon.
	Travelers int `json:"travelers"`

	// HorizonDays is the projection horizon; defaults server-side when
	// omitted.
	HorizonDays int `json:"horizonDays,omitempty"`

	// StartDay is the day of year the projection starts on.
	StartDay int `json:"startDay,omitempty"`
}
