// Package main provides the entrypoint for the EpiRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/epiroute/epiroute/internal/api"
	"github.com/epiroute/epiroute/internal/api/handler"
	"github.com/epiroute/epiroute/internal/api/middleware"
	"github.com/epiroute/epiroute/internal/database"
	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
	"github.com/epiroute/epiroute/internal/region/dataset"
	"github.com/epiroute/epiroute/internal/telemetry"
	"github.com/epiroute/epiroute/internal/travelrisk"
	"github.com/epiroute/epiroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "epiroute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting EpiRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Region repository: Postgres when configured, otherwise an in-memory
	// table populated from the remote datasets.
	var (
		regions         region.Repository
		readinessChecks []handler.ReadinessCheck
	)

	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		regions = region.NewPostgresRepository(pool)
		readinessChecks = append(readinessChecks, handler.ReadinessCheck{
			Name:  "database",
			Check: pool.Ping,
		})
	} else {
		regions = region.NewInMemoryRepository()
	}

	// Dataset refresh: when upstream CSV URLs are configured, the API can
	// load the catalog at startup and re-load it through the admin endpoint.
	var refresher handler.DatasetRefresher

	workerCfg := worker.ConfigFromEnv()
	if workerCfg.MobilityURL != "" && workerCfg.PopulationURL != "" {
		datasetMetrics, err := middleware.NewDatasetMetrics()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize dataset metrics")
		}

		fetcher := dataset.NewFetcher(dataset.FetcherConfig{
			MobilityURL:   workerCfg.MobilityURL,
			PopulationURL: workerCfg.PopulationURL,
			Timeout:       workerCfg.FetchTimeout,
			MaxRetries:    workerCfg.MaxRetries,
			Logger:        log,
		})

		refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
			Fetcher:        fetcher,
			Regions:        regions,
			Logger:         log,
			DatasetMetrics: datasetMetrics,
		})
		refresher = refreshJob

		loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if _, err := refreshJob.Refresh(loadCtx); err != nil {
			log.Error().Err(err).Msg("initial dataset load failed, catalog may be stale or empty")
		}
		cancel()
	} else {
		log.Warn().Msg("dataset URLs not configured, region catalog will not refresh")
	}

	readinessChecks = append(readinessChecks, handler.ReadinessCheck{
		Name: "region-catalog",
		Check: func(ctx context.Context) error {
			_, err := regions.List(ctx)
			return err
		},
	})

	// Disease parameters, with optional per-deployment overrides.
	params := paramsFromEnv(log)

	riskService := travelrisk.NewService(travelrisk.ServiceConfig{
		Regions: regions,
		Params:  params,
		Config:  travelrisk.DefaultConfig(),
		Logger:  log,
	})
	log.Info().
		Float64("r0", params.R0).
		Float64("seasonal_amplitude", params.SeasonalAmplitude).
		Msg("travel-risk service initialized")

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set, admin endpoints are disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Regions:         regions,
		RiskService:     riskService,
		Simulator:       epidemic.NewSimulator(params),
		Refresher:       refresher,
		AdminToken:      adminToken,
		ReadinessChecks: readinessChecks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// paramsFromEnv returns the disease constants, applying any environment
// overrides to the documented defaults.
func paramsFromEnv(log zerolog.Logger) epidemic.Params {
	params := epidemic.DefaultParams()

	overrideFloat(log, "EPI_R0", &params.R0)
	overrideFloat(log, "EPI_LATENT_PERIOD_DAYS", &params.LatentPeriodDays)
	overrideFloat(log, "EPI_INFECTIOUS_PERIOD_DAYS", &params.InfectiousPeriodDays)
	overrideFloat(log, "EPI_BASE_WANING_RATE", &params.BaseWaningRate)
	overrideFloat(log, "EPI_SEASONAL_AMPLITUDE", &params.SeasonalAmplitude)

	return params
}

func overrideFloat(log zerolog.Logger, key string, target *float64) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("ignoring unparseable parameter override")
		return
	}
	*target = value
}
