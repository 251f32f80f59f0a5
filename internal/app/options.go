package app

import (
	"log/slog"

	"github.com/thenoetrevino/tandem/internal/metrics"
	"github.com/thenoetrevino/tandem/internal/services/lane"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	logger     *slog.Logger
	lockPolicy lane.LockPolicy
	metrics    *metrics.Metrics
	hashCost   int
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithLockPolicy sets how long lane mutations wait for a busy project
func WithLockPolicy(p lane.LockPolicy) Option {
	return func(cfg *appConfig) {
		cfg.lockPolicy = p
	}
}

// WithMetrics shares a metrics registry with the application
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *appConfig) {
		cfg.metrics = m
	}
}

// WithHashCost sets the bcrypt cost for new passwords; tests use bcrypt.MinCost
func WithHashCost(cost int) Option {
	return func(cfg *appConfig) {
		cfg.hashCost = cost
	}
}
