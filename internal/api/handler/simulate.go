package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/api/response"
	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
)

// SimulationHandler handles standalone simulation endpoints.
type SimulationHandler struct {
	simulator *epidemic.Simulator
	regions   region.Repository
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(simulator *epidemic.Simulator, regions region.Repository) *SimulationHandler {
	return &SimulationHandler{simulator: simulator, regions: regions}
}

// RunSimulation handles POST /v1/simulations:run.
func (h *SimulationHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	var input models.SimulationRunRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateSimulationRequest(input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid simulation request", fieldErrors)
		return
	}

	population := input.Population
	mobilityPct := input.MobilityPct
	if input.RegionID != "" {
		rec, err := h.regions.Get(r.Context(), region.IDFor(input.RegionID))
		if errors.Is(err, region.ErrRegionNotFound) {
			response.NotFound(w, r, "unknown region: "+input.RegionID)
			return
		}
		if err != nil {
			response.InternalError(w, r, "failed to load region")
			return
		}
		population = float64(rec.Population)
		mobilityPct = rec.MobilityPct
	}

	horizon := input.HorizonDays
	if horizon == 0 {
		horizon = 30
	}

	result, err := h.simulator.Run(epidemic.RunInput{
		Population:     population,
		MobilityPct:    mobilityPct,
		StartDay:       input.StartDay,
		HorizonDays:    horizon,
		InfectiousSeed: input.InfectiousSeed,
	})
	if errors.Is(err, epidemic.ErrNumericAnomaly) {
		response.InternalError(w, r, "simulation produced a numeric anomaly")
		return
	}
	if err != nil {
		response.InternalError(w, r, "simulation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

func validateSimulationRequest(input models.SimulationRunRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if input.RegionID == "" && input.Population <= 0 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "regionId", Message: "either regionId or a positive population is required", Code: "required",
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
	if input.InfectiousSeed != nil && *input.InfectiousSeed < 0 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "infectiousSeed", Message: "must not be negative", Code: "min",
		})
	}

	return fieldErrors
}
