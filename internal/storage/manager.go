package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/model"
)

// Sink is one persistence backend accepting the three record kinds.
type Sink interface {
	InsertPricePoint(ctx context.Context, p model.PricePoint) error
	InsertAnalysis(ctx context.Context, a model.Analysis) error
	InsertSignal(ctx context.Context, s model.Signal) error
	Ping(ctx context.Context) error
}

// Manager fans every write out to all configured sinks. The dual-write is
// deliberately uncoordinated: a failure in one sink does not roll back the
// other, leaving an accepted inconsistency window between the stores. An
// outbox would be needed if strong consistency is ever required.
type Manager struct {
	sinks  []Sink
	cache  *Cache // optional latest-price mirror
	logger zerolog.Logger
}

// NewManager creates a dual-write manager over the given sinks. cache may
// be nil.
func NewManager(cache *Cache, sinks ...Sink) *Manager {
	return &Manager{
		sinks:  sinks,
		cache:  cache,
		logger: log.With().Str("component", "db_manager").Logger(),
	}
}

// WritePricePoint writes one bar to every sink and mirrors it into the
// latest-price cache.
func (m *Manager) WritePricePoint(ctx context.Context, p model.PricePoint) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.InsertPricePoint(ctx, p); err != nil {
			m.logger.Warn().Err(err).Str("symbol", p.Symbol).Msg("price point write failed")
			errs = append(errs, err)
		}
	}

	if m.cache != nil {
		if err := m.cache.SetLatest(ctx, p); err != nil {
			m.logger.Debug().Err(err).Str("symbol", p.Symbol).Msg("latest-price cache update failed")
		}
	}

	return errors.Join(errs...)
}

// WriteAnalysis writes one analysis record to every sink.
func (m *Manager) WriteAnalysis(ctx context.Context, a model.Analysis) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.InsertAnalysis(ctx, a); err != nil {
			m.logger.Warn().Err(err).Str("symbol", a.Symbol).Msg("analysis write failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteSignal writes one signal record to every sink.
func (m *Manager) WriteSignal(ctx context.Context, s model.Signal) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.InsertSignal(ctx, s); err != nil {
			m.logger.Warn().Err(err).Str("symbol", s.Symbol).Msg("signal write failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Healthy reports whether every sink answers a ping.
func (m *Manager) Healthy(ctx context.Context) bool {
	for _, s := range m.sinks {
		if err := s.Ping(ctx); err != nil {
			return false
		}
	}
	return true
}
