package loader

import (
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/observability"
)

type settings struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	guard   *Guard
}

// Option customises a loader.
type Option func(*settings)

// WithLogger sets the logger used for load, skip and fallback events.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records every render on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithGuard shares an existing guard instead of allocating a new one.
func WithGuard(g *Guard) Option {
	return func(s *settings) {
		if g != nil {
			s.guard = g
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.guard == nil {
		s.guard = &Guard{}
	}
	return s
}
