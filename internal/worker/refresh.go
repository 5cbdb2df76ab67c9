// Package worker runs the background dataset refresh jobs.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/epiroute/epiroute/internal/api/middleware"
	"github.com/epiroute/epiroute/internal/region"
	"github.com/epiroute/epiroute/internal/region/dataset"
)

// RefreshJob fetches the remote mobility and population datasets and swaps
// the merged result into the region repository.
type RefreshJob struct {
	fetcher *dataset.Fetcher
	regions region.Repository
	logger  zerolog.Logger

	otelMetrics *middleware.DatasetMetrics
	metrics     *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRefreshes      int64
	SuccessfulRefreshes int64
	FailedRefreshes     int64
	RegionsLoaded       int64

	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Fetcher *dataset.Fetcher
	Regions region.Repository
	Logger  zerolog.Logger

	// DatasetMetrics is optional; nil disables OpenTelemetry reporting.
	DatasetMetrics *middleware.DatasetMetrics
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		fetcher:     cfg.Fetcher,
		regions:     cfg.Regions,
		logger:      cfg.Logger,
		otelMetrics: cfg.DatasetMetrics,
		metrics:     &RefreshMetrics{},
	}
}

// Refresh fetches both datasets and atomically replaces the region table.
// It returns the number of regions the new table holds. Readers keep seeing
// the previous table until the swap completes.
func (j *RefreshJob) Refresh(ctx context.Context) (int, error) {
	startTime := time.Now()

	j.logger.Info().Msg("starting dataset refresh")

	regions, err := j.fetcher.FetchRegions(ctx)
	if err == nil {
		err = j.regions.ReplaceAll(ctx, regions)
	}

	duration := time.Since(startTime)
	j.updateMetrics(duration, len(regions), err)
	if j.otelMetrics != nil {
		j.otelMetrics.RecordRefresh(duration, len(regions), err)
	}

	if err != nil {
		j.logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("dataset refresh failed")
		return 0, err
	}

	j.logger.Info().
		Dur("duration", duration).
		Int("regions", len(regions)).
		Msg("dataset refresh completed")

	return len(regions), nil
}

func (j *RefreshJob) updateMetrics(duration time.Duration, regions int, err error) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	if err != nil {
		j.metrics.FailedRefreshes++
	} else {
		j.metrics.SuccessfulRefreshes++
		j.metrics.RegionsLoaded = int64(regions)
	}
	j.metrics.LastRefreshAt = time.Now()
	j.metrics.LastRefreshDuration = duration
	j.metrics.TotalDuration += duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefreshes: j.metrics.SuccessfulRefreshes,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		RegionsLoaded:       j.metrics.RegionsLoaded,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefreshes,
		"failed_refreshes":      m.FailedRefreshes,
		"regions_loaded":        m.RegionsLoaded,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
