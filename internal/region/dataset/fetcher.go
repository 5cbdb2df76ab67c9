// Package dataset fetches the remote mobility and population CSV datasets
// with retry and circuit-breaker protection.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/epiroute/epiroute/internal/region"
)

// Fetch errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("dataset circuit breaker is open")

	// ErrUnexpectedStatus is returned for non-2xx upstream responses.
	ErrUnexpectedStatus = errors.New("unexpected dataset response status")
)

// FetcherConfig holds configuration for the dataset fetcher.
type FetcherConfig struct {
	// MobilityURL is the workplace-mobility CSV endpoint.
	MobilityURL string

	// PopulationURL is the region-population CSV endpoint.
	PopulationURL string

	// Timeout is the per-request timeout (default: 30 seconds).
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts (default: 3).
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval (default: 500ms).
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval (default: 10s).
	MaxInterval time.Duration

	// Logger for fetch operations.
	Logger zerolog.Logger
}

// Fetcher downloads and parses the region datasets. Transient upstream
// failures are retried with exponential backoff; sustained failure trips a
// circuit breaker shared across both dataset URLs.
type Fetcher struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	config     FetcherConfig
	logger     zerolog.Logger
}

// NewFetcher creates a dataset fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "region-datasets",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
		logger:     cfg.Logger,
	}
}

// FetchRegions downloads both datasets and merges them into Region records.
func (f *Fetcher) FetchRegions(ctx context.Context) ([]region.Region, error) {
	fetchedAt := time.Now().UTC()

	mobility, err := f.fetch(ctx, f.config.MobilityURL)
	if err != nil {
		return nil, fmt.Errorf("fetch mobility dataset: %w", err)
	}

	population, err := f.fetch(ctx, f.config.PopulationURL)
	if err != nil {
		return nil, fmt.Errorf("fetch population dataset: %w", err)
	}

	regions, err := region.ParseDatasets(bytes.NewReader(mobility), bytes.NewReader(population), fetchedAt)
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Int("regions", len(regions)).
		Str("mobility_url", f.config.MobilityURL).
		Msg("region datasets fetched")
	return regions, nil
}

// fetch downloads one URL through the circuit breaker, retrying transient
// failures (network errors, 5xx) with exponential backoff.
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.config.InitialInterval
	bo.MaxInterval = f.config.MaxInterval
	bo.MaxElapsedTime = 0

	var body []byte
	operation := func() error {
		data, err := f.breaker.Execute(func() ([]byte, error) {
			return f.download(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}
		body = data
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, f.config.MaxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// BreakerState returns the current circuit breaker state.
func (f *Fetcher) BreakerState() gobreaker.State {
	return f.breaker.State()
}
