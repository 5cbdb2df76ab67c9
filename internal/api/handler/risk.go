package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/api/response"
	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
	"github.com/epiroute/epiroute/internal/travelrisk"
)

// maxHorizonDays bounds request horizons to one seasonal cycle.
const maxHorizonDays = 365

// RiskHandler handles travel-risk endpoints.
type RiskHandler struct {
	risk *travelrisk.Service
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(risk *travelrisk.Service) *RiskHandler {
	return &RiskHandler{risk: risk}
}

// EstimateRisk handles POST /v1/risk:estimate.
func (h *RiskHandler) EstimateRisk(w http.ResponseWriter, r *http.Request) {
	var input models.RiskEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateRiskRequest(input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid risk estimate request", fieldErrors)
		return
	}

	estimate, err := h.risk.Estimate(r.Context(), travelrisk.EstimateRequest{
		OriginID:      region.IDFor(input.OriginRegionID),
		DestinationID: region.IDFor(input.DestinationRegionID),
		Travelers:     input.Travelers,
		HorizonDays:   input.HorizonDays,
		StartDay:      input.StartDay,
	})
	if errors.Is(err, region.ErrRegionNotFound) {
		response.NotFound(w, r, err.Error())
		return
	}
	if errors.Is(err, epidemic.ErrNumericAnomaly) {
		response.InternalError(w, r, "simulation produced a numeric anomaly")
		return
	}
	if err != nil {
		response.InternalError(w, r, "failed to estimate travel risk")
		return
	}

	response.JSON(w, r, http.StatusOK, estimate)
}

// RiskHeatmap handles GET /v1/risk/heatmap.
func (h *RiskHandler) RiskHeatmap(w http.ResponseWriter, r *http.Request) {
	heatmap, err := h.risk.Heatmap(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to build risk heatmap")
		return
	}

	response.JSON(w, r, http.StatusOK, heatmap)
}

func validateRiskRequest(input models.RiskEstimateRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if input.OriginRegionID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "originRegionId", Message: "is required", Code: "required",
		})
	}
	if input.DestinationRegionID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "destinationRegionId", Message: "is required", Code: "required",
		})
	}
	if input.Travelers < 0 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "travelers", Message: "must not be negative", Code: "min",
		})
	}
	if input.HorizonDays < 0 || input.HorizonDays > maxHorizonDays {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "horizonDays", Message: "must be between 0 and 365", Code: "range",
		})
	}
	if input.StartDay < 0 || input.StartDay > 364 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "startDay", Message: "must be between 0 and 364", Code: "range",
		})
	}

	return fieldErrors
}
