package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/bus"
	"github.com/quantex/marketpulse/internal/model"
)

// Fetcher reads keyed records from one bus topic.
type Fetcher interface {
	Fetch(ctx context.Context) (key, value []byte, err error)
}

// Recorder is the database-manager component: it consumes the three
// pipeline topics and fans each record out through the Manager. Ticks on
// the market-data topic are skipped; they are never persisted.
type Recorder struct {
	manager    *Manager
	marketData Fetcher
	analyses   Fetcher
	signals    Fetcher
	logger     zerolog.Logger
}

// NewRecorder creates the recording component over three topic consumers.
func NewRecorder(manager *Manager, marketData, analyses, signals Fetcher) *Recorder {
	return &Recorder{
		manager:    manager,
		marketData: marketData,
		analyses:   analyses,
		signals:    signals,
		logger:     log.With().Str("component", "recorder").Logger(),
	}
}

// Name identifies the component to the orchestrator.
func (r *Recorder) Name() string { return "recorder" }

// Run consumes all three topics until ctx is done. Write failures are
// logged and abandoned; the record is not retried.
func (r *Recorder) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	loops := []struct {
		fetcher Fetcher
		handle  func(ctx context.Context, value []byte)
		topic   string
	}{
		{r.marketData, r.handleMarketData, bus.TopicMarketData},
		{r.analyses, r.handleAnalysis, bus.TopicAnalysis},
		{r.signals, r.handleSignal, bus.TopicSignals},
	}

	for _, l := range loops {
		wg.Add(1)
		go func(fetcher Fetcher, handle func(context.Context, []byte), topic string) {
			defer wg.Done()
			for {
				_, value, err := fetcher.Fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					r.logger.Warn().Err(err).Str("topic", topic).Msg("fetch failed")
					continue
				}
				handle(ctx, value)
			}
		}(l.fetcher, l.handle, l.topic)
	}

	wg.Wait()
	return ctx.Err()
}

func (r *Recorder) handleMarketData(ctx context.Context, value []byte) {
	point, _, err := model.DecodeMarketData(value)
	if err != nil {
		r.logger.Debug().Err(err).Msg("skipping undecodable market data record")
		return
	}
	if point == nil {
		return // ticks are not persisted
	}
	if err := r.manager.WritePricePoint(ctx, *point); err != nil {
		r.logger.Warn().Err(err).Str("symbol", point.Symbol).Msg("recording price point failed")
	}
}

func (r *Recorder) handleAnalysis(ctx context.Context, value []byte) {
	var a model.Analysis
	if err := json.Unmarshal(value, &a); err != nil {
		r.logger.Debug().Err(err).Msg("skipping undecodable analysis record")
		return
	}
	if err := r.manager.WriteAnalysis(ctx, a); err != nil {
		r.logger.Warn().Err(err).Str("symbol", a.Symbol).Msg("recording analysis failed")
	}
}

func (r *Recorder) handleSignal(ctx context.Context, value []byte) {
	var s model.Signal
	if err := json.Unmarshal(value, &s); err != nil {
		r.logger.Debug().Err(err).Msg("skipping undecodable signal record")
		return
	}
	if err := r.manager.WriteSignal(ctx, s); err != nil {
		r.logger.Warn().Err(err).Str("symbol", s.Symbol).Msg("recording signal failed")
	}
}
