// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// QueueSize bounds the in-memory attempt queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// HistorySize sets the size of the attempt idempotency cache.
	HistorySize int `koanf:"history_size"`

	// WatchlistLimit caps the number of entries returned from the caseload.
	WatchlistLimit int `koanf:"watchlist_limit"`

	// ModelSeed seeds the deterministic scoring network.
	ModelSeed int64 `koanf:"model_seed"`

	// MetricsDump emits the gathered pipeline metrics in Prometheus text
	// format when the batch finishes.
	MetricsDump bool `koanf:"metrics_dump"`

	// Risk tier cutoffs applied to the sigmoid score. A score below
	// LowThreshold maps to None, below MediumThreshold to Low, below
	// HighThreshold to Medium, and High otherwise.
	LowThreshold    float64 `koanf:"low_threshold"`
	MediumThreshold float64 `koanf:"medium_threshold"`
	HighThreshold   float64 `koanf:"high_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		HistorySize:     50_000,
		WatchlistLimit:  100,
		ModelSeed:       42,
		MetricsDump:     false,
		LowThreshold:    0.83,
		MediumThreshold: 0.87,
		HighThreshold:   0.90,
	}
}
