// Package handler provides HTTP handlers for the EpiRoute API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/epiroute/epiroute/internal/api/models"
	"github.com/epiroute/epiroute/internal/api/response"
)

// ReadinessCheck is a named dependency probe run by the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	checks    []ReadinessCheck
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, checks ...ReadinessCheck) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		checks:    checks,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			if health.Details == nil {
				health.Details = map[string]interface{}{}
			}
			health.Details[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - per-subsystem status report.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: make([]models.SubsystemStatus, 0, len(h.checks)),
	}

	for _, check := range h.checks {
		sub := models.SubsystemStatus{Name: check.Name, Status: models.HealthStatusOK}
		if err := check.Check(r.Context()); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, sub)
	}

	response.JSON(w, r, http.StatusOK, status)
}
