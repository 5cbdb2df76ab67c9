package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/api/response"
)

// DatasetRefresher triggers a reload of the region datasets and reports how
// many regions the new table holds.
type DatasetRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// AdminHandler handles internal operational endpoints.
type AdminHandler struct {
	refresher DatasetRefresher
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(refresher DatasetRefresher) *AdminHandler {
	return &AdminHandler{refresher: refresher}
}

// RefreshDatasets handles POST /v1/admin/datasets/refresh - synchronously
// re-fetch the mobility and population datasets and swap the region table.
func (h *AdminHandler) RefreshDatasets(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		response.ServiceUnavailable(w, r, "dataset refresh is not configured")
		return
	}

	count, err := h.refresher.Refresh(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "dataset refresh failed: "+err.Error())
		return
	}

	response.JSON(w, r, http.StatusOK, models.DatasetRefreshResponse{
		Regions:     count,
		RefreshedAt: models.Timestamp(time.Now()),
	})
}
