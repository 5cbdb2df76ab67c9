package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/api/response"
	"github.com/epiroute/epiroute/internal/region"
)

// RegionHandler handles region catalog endpoints.
type RegionHandler struct {
	regions region.Repository
}

// NewRegionHandler creates a new RegionHandler.
func NewRegionHandler(regions region.Repository) *RegionHandler {
	return &RegionHandler{regions: regions}
}

// ListRegions handles GET /v1/regions - list all known regions.
func (h *RegionHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.regions.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list regions")
		return
	}

	response.JSON(w, r, http.StatusOK, models.RegionList{
		Regions: regions,
		Count:   len(regions),
	})
}

// GetRegion handles GET /v1/regions/{regionId} - fetch one region.
// The path segment may be a canonical ID or a human-readable name.
func (h *RegionHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "regionId")

	rec, err := h.regions.Get(r.Context(), id)
	if errors.Is(err, region.ErrRegionNotFound) {
		// Retry with the name normalized, so "Tamil Nadu" and
		// "tamil-nadu" both resolve.
		rec, err = h.regions.Get(r.Context(), region.IDFor(id))
	}
	if errors.Is(err, region.ErrRegionNotFound) {
		response.NotFound(w, r, "unknown region: "+id)
		return
	}
	if err != nil {
		response.InternalError(w, r, "failed to load region")
		return
	}

	response.JSON(w, r, http.StatusOK, rec)
}
