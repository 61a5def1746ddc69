package repository

import (
	"time"

	"github.com/okian/projdash/pkg/logger"
)

// Option applies a configuration option to the FixtureStore.
type Option func(*FixtureStore)

// WithLatencyRange sets the simulated collaborator latency range. Equal bounds give a
// constant delay.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *FixtureStore) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FixtureStore) {
		if l != nil {
			s.logger = l
		}
	}
}
