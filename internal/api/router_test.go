package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiroute/epiroute/internal/api"
	"github.com/epiroute/epiroute/internal/api/handler"
	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
	"github.com/epiroute/epiroute/internal/travelrisk"
)

const testAdminToken = "test-admin-token"

type stubRefresher struct {
	count int
	err   error
}

func (s *stubRefresher) Refresh(context.Context) (int, error) {
	return s.count, s.err
}

func testRepository() region.Repository {
	return region.NewInMemoryRepository(
		region.Region{ID: "kerala", Name: "Kerala", Population: 35_000_000, MobilityPct: 50},
		region.Region{ID: "tamil-nadu", Name: "Tamil Nadu", Population: 72_000_000, MobilityPct: 40},
	)
}

func newTestRouter(checks ...handler.ReadinessCheck) http.Handler {
	logger := zerolog.New(io.Discard)
	repo := testRepository()
	params := epidemic.DefaultParams()

	riskService := travelrisk.NewService(travelrisk.ServiceConfig{
		Regions: repo,
		Params:  params,
		Config:  travelrisk.DefaultConfig(),
		Logger:  logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:         "test",
		BuildTime:       "2026-01-01T00:00:00Z",
		Logger:          logger,
		Regions:         repo,
		RiskService:     riskService,
		Simulator:       epidemic.NewSimulator(params),
		Refresher:       &stubRefresher{count: 2},
		AdminToken:      testAdminToken,
		ReadinessChecks: checks,
	})
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadinessCheck_FailingDependency(t *testing.T) {
	router := newTestRouter(handler.ReadinessCheck{
		Name:  "database",
		Check: func(context.Context) error { return errors.New("connection refused") },
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)
	assert.Equal(t, models.HealthStatusFail, health.Status)
	assert.Contains(t, health.Details, "database")
}

func TestRouter_ListRegions(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/regions", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.RegionList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Regions, 2)
	assert.Equal(t, "Kerala", list.Regions[0].Name)
}

func TestRouter_GetRegion(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/regions/kerala", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var rec region.Region
	err := json.Unmarshal(w.Body.Bytes(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "Kerala", rec.Name)
	assert.Equal(t, int64(35_000_000), rec.Population)
}

func TestRouter_GetRegion_ByName(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/regions/Tamil%20Nadu", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var rec region.Region
	err := json.Unmarshal(w.Body.Bytes(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "tamil-nadu", rec.ID)
}

func TestRouter_GetRegion_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/regions/atlantis", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
}

func TestRouter_EstimateRisk(t *testing.T) {
	router := newTestRouter()

	input := models.RiskEstimateRequest{
		OriginRegionID:      "kerala",
		DestinationRegionID: "tamil-nadu",
		Travelers:           1000,
		HorizonDays:         30,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:estimate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var estimate travelrisk.Estimate
	err := json.Unmarshal(w.Body.Bytes(), &estimate)
	require.NoError(t, err)

	assert.Equal(t, "kerala", estimate.Origin.ID)
	assert.Equal(t, "tamil-nadu", estimate.Destination.ID)
	assert.Equal(t, 30, estimate.HorizonDays)
	assert.GreaterOrEqual(t, estimate.PInfectious, 0.0)
	assert.LessOrEqual(t, estimate.PInfectious, 1.0)
	assert.NotEmpty(t, estimate.Checkpoints)
}

func TestRouter_EstimateRisk_ByName(t *testing.T) {
	router := newTestRouter()

	input := models.RiskEstimateRequest{
		OriginRegionID:      "Kerala",
		DestinationRegionID: "Tamil Nadu",
		Travelers:           500,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:estimate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_EstimateRisk_ValidationError(t *testing.T) {
	router := newTestRouter()

	input := models.RiskEstimateRequest{
		DestinationRegionID: "tamil-nadu",
		Travelers:           -5,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:estimate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
	require.Len(t, problem.Errors, 2)
}

func TestRouter_EstimateRisk_UnknownRegion(t *testing.T) {
	router := newTestRouter()

	input := models.RiskEstimateRequest{
		OriginRegionID:      "atlantis",
		DestinationRegionID: "tamil-nadu",
		Travelers:           100,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:estimate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RiskHeatmap(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/risk/heatmap", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var heatmap travelrisk.Heatmap
	err := json.Unmarshal(w.Body.Bytes(), &heatmap)
	require.NoError(t, err)

	require.Len(t, heatmap.Regions, 2)
	require.Len(t, heatmap.Scores, 2)
	assert.Len(t, heatmap.Scores[0], 2)
}

func TestRouter_RunSimulation(t *testing.T) {
	router := newTestRouter()

	input := models.SimulationRunRequest{
		Population:  1_000_000,
		MobilityPct: 50,
		HorizonDays: 14,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/simulations:run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result epidemic.SimulationResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, 1_000_000.0, result.Population)
	require.Len(t, result.Days, 15)
}

func TestRouter_RunSimulation_ByRegion(t *testing.T) {
	router := newTestRouter()

	input := models.SimulationRunRequest{
		RegionID:    "kerala",
		HorizonDays: 7,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/simulations:run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result epidemic.SimulationResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, 35_000_000.0, result.Population)
	require.Len(t, result.Days, 8)
}

func TestRouter_RunSimulation_ValidationError(t *testing.T) {
	router := newTestRouter()

	input := models.SimulationRunRequest{HorizonDays: 14}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/simulations:run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AdminRefresh(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/datasets/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.DatasetRefreshResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Regions)
}

func TestRouter_AdminRefresh_MissingToken(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/datasets/refresh", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeUnauthorized, problem.Type)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
