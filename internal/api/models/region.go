package models

import "github.com/epiroute/epiroute/internal/region"

// RegionList is the response body for GET /v1/regions.
type RegionList struct {
	Regions []*region.Region `json:"regions"`
	Count   int              `json:"count"`
}

// DatasetRefreshResponse is the response body for
// POST /v1/admin/datasets/refresh.
type DatasetRefreshResponse struct {
	Regions     int       `json:"regions"`
	RefreshedAt Timestamp `json:"refreshedAt"`
}
