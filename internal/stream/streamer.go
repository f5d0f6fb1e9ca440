package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/api/binance"
	"github.com/quantex/marketpulse/internal/bus"
	"github.com/quantex/marketpulse/internal/model"
)

// Conn is a readable streaming connection.
type Conn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens streaming connections. Abstracted so the reconnect state
// machine can be exercised without a live socket.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// BarPuller fetches the most recent OHLCV bar for a symbol.
type BarPuller interface {
	LatestBar(ctx context.Context, symbol, interval string) (*model.PricePoint, error)
}

// Config holds streamer settings.
type Config struct {
	WSBaseURL      string
	Symbols        []string
	BarInterval    string
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	// BackoffEnabled switches the reconnect delay from the fixed
	// ReconnectDelay to exponential backoff with jitter capped at
	// MaxReconnectDelay.
	BackoffEnabled    bool
	MaxReconnectDelay time.Duration
}

// Streamer connects to the exchange stream and republishes normalized
// records onto the market-data topic. It also pulls the latest OHLCV bar
// per symbol on a fixed interval, which is what feeds the rolling windows
// downstream.
type Streamer struct {
	cfg       Config
	publisher bus.Publisher
	rest      BarPuller
	dialer    Dialer
	symbols   map[string]string
	state     atomic.Int32
	logger    zerolog.Logger
}

// New creates a streamer. A nil dialer gets the default websocket dialer.
func New(cfg Config, publisher bus.Publisher, rest BarPuller, dialer Dialer) *Streamer {
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.MaxReconnectDelay == 0 {
		cfg.MaxReconnectDelay = time.Minute
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.BarInterval == "" {
		cfg.BarInterval = "1m"
	}
	if dialer == nil {
		dialer = wsDialer{}
	}

	return &Streamer{
		cfg:       cfg,
		publisher: publisher,
		rest:      rest,
		dialer:    dialer,
		symbols:   binance.SymbolMap(cfg.Symbols),
		logger:    log.With().Str("component", "streamer").Logger(),
	}
}

// Name identifies the component to the orchestrator.
func (s *Streamer) Name() string { return "streamer" }

// State returns the current connection state.
func (s *Streamer) State() State {
	return State(s.state.Load())
}

// Healthy reports whether the stream is currently connected.
func (s *Streamer) Healthy() bool {
	return s.State() == StateConnected
}

func (s *Streamer) setState(st State) {
	old := State(s.state.Swap(int32(st)))
	if old != st {
		s.logger.Info().Str("from", old.String()).Str("to", st.String()).Msg("stream state change")
	}
}

// Run drives the connect/read/reconnect loop until ctx is done. The only
// terminal state is StateStopped, reached via ctx cancellation from any
// other state.
func (s *Streamer) Run(ctx context.Context) error {
	if s.rest != nil {
		go s.pollBars(ctx)
	}

	wait := s.reconnectPolicy()
	url := binance.StreamURL(s.cfg.WSBaseURL, s.cfg.Symbols)

	for {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return ctx.Err()
		}

		s.setState(StateConnecting)
		conn, err := s.dialer.Dial(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stream connect failed")
			if stopped := s.waitReconnect(ctx, wait); stopped {
				return ctx.Err()
			}
			continue
		}

		// The combined-stream URL carries the trade and ticker
		// subscriptions for every tracked symbol.
		s.setState(StateConnected)
		wait.Reset()

		err = s.readLoop(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			s.setState(StateStopped)
			return ctx.Err()
		}

		s.logger.Warn().Err(err).Msg("stream closed, scheduling reconnect")
		if stopped := s.waitReconnect(ctx, wait); stopped {
			return ctx.Err()
		}
	}
}

func (s *Streamer) reconnectPolicy() backoff.BackOff {
	if !s.cfg.BackoffEnabled {
		return backoff.NewConstantBackOff(s.cfg.ReconnectDelay)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.ReconnectDelay
	exp.MaxInterval = s.cfg.MaxReconnectDelay
	exp.MaxElapsedTime = 0 // reconnect forever; only stop ends the loop
	return exp
}

// waitReconnect sleeps out the reconnect delay. Returns true when ctx was
// cancelled while waiting.
func (s *Streamer) waitReconnect(ctx context.Context, wait backoff.BackOff) bool {
	s.setState(StateReconnectWait)

	d := wait.NextBackOff()
	if d == backoff.Stop {
		d = s.cfg.MaxReconnectDelay
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		s.setState(StateStopped)
		return true
	case <-t.C:
		return false
	}
}

func (s *Streamer) readLoop(ctx context.Context, conn Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		point, tick, err := binance.ParseStreamMessage(raw, s.symbols)
		if err != nil {
			s.logger.Debug().Err(err).Msg("dropping unparsable stream message")
			continue
		}

		switch {
		case point != nil:
			if err := s.publisher.Publish(ctx, bus.TopicMarketData, point.Symbol, point); err != nil {
				s.logger.Warn().Err(err).Str("symbol", point.Symbol).Msg("publishing price point failed")
			}
		case tick != nil:
			if err := s.publisher.Publish(ctx, bus.TopicMarketData, tick.Symbol, tick); err != nil {
				s.logger.Warn().Err(err).Str("symbol", tick.Symbol).Msg("publishing tick failed")
			}
		}
	}
}

// pollBars republishes the latest OHLCV bar for every symbol on a fixed
// interval. Pull failures are logged and abandoned for the cycle.
func (s *Streamer) pollBars(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, symbol := range s.cfg.Symbols {
			bar, err := s.rest.LatestBar(ctx, symbol, s.cfg.BarInterval)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("pulling latest bar failed")
				continue
			}
			if err := s.publisher.Publish(ctx, bus.TopicMarketData, bar.Symbol, bar); err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("publishing bar failed")
			}
		}
	}
}
