package platform

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component is a long-running platform unit.
type Component interface {
	Name() string
	Run(ctx context.Context) error
}

// HealthReporter is implemented by components that can report liveness.
type HealthReporter interface {
	Healthy() bool
}

// Orchestrator wires the pipeline components together and owns their
// lifecycle: it starts every component, aggregates health, and tears the
// platform down when the context is cancelled or a component fails.
type Orchestrator struct {
	components []Component
	logger     zerolog.Logger
}

// New creates an orchestrator over the given components.
func New(components ...Component) *Orchestrator {
	return &Orchestrator{
		components: components,
		logger:     log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run starts every component and blocks until all have stopped. The first
// component failure cancels the rest; context cancellation is a clean stop,
// not a failure.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, c := range o.components {
		wg.Add(1)
		go func(c Component) {
			defer wg.Done()

			o.logger.Info().Str("unit", c.Name()).Msg("starting")
			err := c.Run(ctx)
			if err != nil && ctx.Err() == nil {
				o.logger.Error().Err(err).Str("unit", c.Name()).Msg("component failed, stopping platform")
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			o.logger.Info().Str("unit", c.Name()).Msg("stopped")
		}(c)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

// Health reports per-component liveness. Components without a health
// report are assumed live while running.
func (o *Orchestrator) Health() map[string]bool {
	out := make(map[string]bool, len(o.components))
	for _, c := range o.components {
		healthy := true
		if hr, ok := c.(HealthReporter); ok {
			healthy = hr.Healthy()
		}
		out[c.Name()] = healthy
	}
	return out
}
