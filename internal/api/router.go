// Package api provides the HTTP API for EpiRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/epiroute/epiroute/internal/api/handler"
	"github.com/epiroute/epiroute/internal/api/middleware"
	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
	"github.com/epiroute/epiroute/internal/travelrisk"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Regions     region.Repository
	RiskService *travelrisk.Service
	Simulator   *epidemic.Simulator

	// Refresher backs the admin dataset-refresh endpoint; nil disables it.
	Refresher handler.DatasetRefresher

	// AdminToken guards the /v1/admin surface; empty disables it.
	AdminToken string

	// ReadinessChecks are probed by /v1/ops/ready and /v1/ops/status.
	ReadinessChecks []handler.ReadinessCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "epiroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadinessChecks...)
	regionHandler := handler.NewRegionHandler(cfg.Regions)
	riskHandler := handler.NewRiskHandler(cfg.RiskService)
	simulationHandler := handler.NewSimulationHandler(cfg.Simulator, cfg.Regions)
	adminHandler := handler.NewAdminHandler(cfg.Refresher)

	adminAuth := middleware.AdminToken(cfg.AdminToken)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Region catalog - standard rate limiting
		r.Route("/regions", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", regionHandler.ListRegions)
			r.Get("/{regionId}", regionHandler.GetRegion)
		})

		// Simulation-backed endpoints - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/risk:estimate", riskHandler.EstimateRisk)
		r.With(expensiveRateLimit).Get("/risk/heatmap", riskHandler.RiskHeatmap)
		r.With(expensiveRateLimit).Post("/simulations:run", simulationHandler.RunSimulation)

		// Admin endpoints - token-guarded internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(standardRateLimit)
			r.Post("/datasets/refresh", adminHandler.RefreshDatasets)
		})
	})

	return r
}
