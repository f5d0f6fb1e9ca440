package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/bus"
	"github.com/quantex/marketpulse/internal/indicator"
	"github.com/quantex/marketpulse/internal/llm"
	"github.com/quantex/marketpulse/internal/model"
	"github.com/quantex/marketpulse/internal/patterns"
	"github.com/quantex/marketpulse/internal/signal"
	"github.com/quantex/marketpulse/internal/window"
)

// Fetcher reads keyed records from the market-data topic.
type Fetcher interface {
	Fetch(ctx context.Context) (key, value []byte, err error)
}

// NarrativeGenerator produces the LLM commentary for an analysis cycle.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers emitted signals out of band.
type Notifier interface {
	NotifySignal(sig model.Signal) error
}

// Config holds agent settings.
type Config struct {
	AgentID           string
	Symbols           []string
	AnalysisInterval  time.Duration
	MinSignalStrength float64
	// MoveThreshold is the fractional price move on a tick, relative to
	// the last recorded close, that triggers an immediate analysis.
	MoveThreshold float64
}

// Monitor is the market-monitoring agent. It consumes normalized market
// data, maintains per-symbol rolling windows, and on every cycle computes
// indicators, classifies trend and pattern, asks the LLM for commentary,
// derives a signal, and publishes the results.
type Monitor struct {
	cfg       Config
	windows   *window.Manager
	consumer  Fetcher
	publisher bus.Publisher
	narrative NarrativeGenerator
	notifier  Notifier
	generator *signal.Generator
	logger    zerolog.Logger

	triggerCh chan string
}

// NewMonitor creates the agent. narrative and notifier may be nil, in which
// case the narrative step and out-of-band delivery are skipped.
func NewMonitor(cfg Config, consumer Fetcher, publisher bus.Publisher, narrative NarrativeGenerator, notifier Notifier) *Monitor {
	if cfg.AgentID == "" {
		cfg.AgentID = "market-monitor"
	}
	if cfg.AnalysisInterval == 0 {
		cfg.AnalysisInterval = time.Minute
	}
	if cfg.MinSignalStrength == 0 {
		cfg.MinSignalStrength = 0.6
	}
	if cfg.MoveThreshold == 0 {
		cfg.MoveThreshold = 0.01
	}

	return &Monitor{
		cfg:       cfg,
		windows:   window.NewManager(),
		consumer:  consumer,
		publisher: publisher,
		narrative: narrative,
		notifier:  notifier,
		generator: signal.NewGenerator(cfg.AgentID, cfg.MinSignalStrength),
		logger:    log.With().Str("component", "monitor").Str("agent", cfg.AgentID).Logger(),
		triggerCh: make(chan string, 16),
	}
}

// Name identifies the component to the orchestrator.
func (m *Monitor) Name() string { return "monitor" }

// Run consumes market data and runs analysis cycles until ctx is done.
// Cycles fire on the configured interval and out of band when a tick shows
// an abrupt move. Overlapping cycles for one symbol are tolerated: cycles
// only read committed window state, and ticks never mutate the window.
func (m *Monitor) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.consumeLoop(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.analysisLoop(ctx)
	}()

	wg.Wait()
	return ctx.Err()
}

func (m *Monitor) consumeLoop(ctx context.Context) {
	for {
		_, value, err := m.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn().Err(err).Msg("market data fetch failed")
			continue
		}
		m.HandleMarketData(value)
	}
}

// HandleMarketData ingests one market-data record. Price points are
// appended to their symbol's window; ticks are checked against the abrupt
// move threshold and may schedule an immediate analysis.
func (m *Monitor) HandleMarketData(value []byte) {
	point, tick, err := model.DecodeMarketData(value)
	if err != nil {
		m.logger.Debug().Err(err).Msg("skipping undecodable market data record")
		return
	}

	if point != nil {
		m.windows.Append(*point)
		return
	}

	lastClose, ok := m.windows.LastClose(tick.Symbol)
	if !ok || lastClose == 0 {
		return
	}

	move := (tick.Price - lastClose) / lastClose
	if move < 0 {
		move = -move
	}
	if move > m.cfg.MoveThreshold {
		m.logger.Info().
			Str("symbol", tick.Symbol).
			Float64("move", move).
			Msg("abrupt price move, scheduling immediate analysis")
		select {
		case m.triggerCh <- tick.Symbol:
		default:
			// a trigger for this burst is already queued
		}
	}
}

func (m *Monitor) analysisLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.AnalysisInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Cycles across symbols are independent; an error for one
			// symbol never aborts the others.
			for _, symbol := range m.cfg.Symbols {
				go m.Analyze(ctx, symbol)
			}
		case symbol := <-m.triggerCh:
			go m.Analyze(ctx, symbol)
		}
	}
}

// Analyze runs one analysis cycle for one symbol. All failures are
// isolated to this symbol and cycle: they are logged and abandoned, and
// the next scheduled cycle retries naturally.
func (m *Monitor) Analyze(ctx context.Context, symbol string) {
	points := m.windows.Snapshot(symbol)
	if len(points) < indicator.MinWindow {
		m.logger.Debug().Str("symbol", symbol).Int("points", len(points)).Msg("window too short, skipping cycle")
		return
	}

	now := time.Now().UnixMilli()
	indicators := indicator.Compute(points)
	trend := patterns.ClassifyTrend(points)
	pattern := patterns.DetectPattern(points)

	analysis := model.Analysis{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Timestamp:  now,
		Indicators: indicators,
		Trend:      trend,
		Pattern:    pattern,
		AgentID:    m.cfg.AgentID,
	}

	// Narrative failure only aborts signal generation. Indicators, trend
	// and pattern are published (and therefore persisted) regardless, so
	// a flaky LLM cannot blind the analytical record.
	var narrative string
	narrativeOK := true
	if m.narrative != nil {
		var err error
		narrative, err = m.narrative.Generate(ctx, llm.BuildPrompt(symbol, points, indicators, trend, pattern))
		if err != nil {
			narrativeOK = false
			m.logger.Warn().Err(err).Str("symbol", symbol).Msg("narrative generation failed, skipping signal for this cycle")
		} else {
			analysis.Narrative = narrative
		}
	}

	if err := m.publisher.Publish(ctx, bus.TopicAnalysis, symbol, analysis); err != nil {
		m.logger.Warn().Err(err).Str("symbol", symbol).Msg("publishing analysis failed")
	}

	if !narrativeOK {
		return
	}

	sig := m.generator.Generate(symbol, indicators, trend, narrative, now)
	if sig == nil {
		return
	}

	if err := m.publisher.Publish(ctx, bus.TopicSignals, sig.AgentID, sig); err != nil {
		m.logger.Warn().Err(err).Str("symbol", symbol).Msg("publishing signal failed")
		return
	}

	m.logger.Info().
		Str("symbol", symbol).
		Str("action", string(sig.Action)).
		Float64("strength", sig.Strength).
		Float64("confidence", sig.Confidence).
		Msg("signal emitted")

	if m.notifier != nil {
		if err := m.notifier.NotifySignal(*sig); err != nil {
			m.logger.Warn().Err(err).Str("symbol", symbol).Msg("signal notification failed")
		}
	}
}

// WindowSize reports the rolling window population for a symbol.
func (m *Monitor) WindowSize(symbol string) int {
	return m.windows.Size(symbol)
}

// Healthy reports liveness. The monitor has no external connection of its
// own; it is healthy as long as it is running.
func (m *Monitor) Healthy() bool { return true }
