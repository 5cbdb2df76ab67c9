package worker

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the dataset refresh worker.
type Config struct {
	// MobilityURL is the upstream workplace-mobility CSV endpoint.
	MobilityURL string

	// PopulationURL is the upstream region-population CSV endpoint.
	PopulationURL string

	// ProjectID is the GCP project for Pub/Sub triggered refreshes.
	// Empty disables the Pub/Sub handler; the worker then runs on the
	// refresh interval alone.
	ProjectID string

	// SubscriptionName is the Pub/Sub subscription to receive jobs on.
	SubscriptionName string

	// RefreshInterval is the period between scheduled refreshes.
	// Default: 6 hours
	RefreshInterval time.Duration

	// FetchTimeout is the timeout for each upstream request.
	// Default: 30 seconds
	FetchTimeout time.Duration

	// MaxRetries is the number of retries per upstream fetch.
	// Default: 3
	MaxRetries uint64
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	interval, err := time.ParseDuration(getEnvOrDefault("REFRESH_INTERVAL", "6h"))
	if err != nil {
		interval = 6 * time.Hour
	}
	timeout, err := time.ParseDuration(getEnvOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil {
		timeout = 30 * time.Second
	}
	retries, err := strconv.ParseUint(getEnvOrDefault("FETCH_MAX_RETRIES", "3"), 10, 64)
	if err != nil {
		retries = 3
	}

	return Config{
		MobilityURL:      os.Getenv("MOBILITY_CSV_URL"),
		PopulationURL:    os.Getenv("POPULATION_CSV_URL"),
		ProjectID:        os.Getenv("PUBSUB_PROJECT_ID"),
		SubscriptionName: getEnvOrDefault("PUBSUB_SUBSCRIPTION", "dataset-refresh"),
		RefreshInterval:  interval,
		FetchTimeout:     timeout,
		MaxRetries:       retries,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
