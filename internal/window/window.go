package window

import (
	"errors"
	"sync"

	"github.com/quantex/marketpulse/internal/model"
)

// Capacity is the global per-symbol cap on retained price points. The
// oldest point is evicted once a window grows past it.
const Capacity = 100

// ErrInsufficientData is returned by Latest when a window holds fewer
// points than requested.
var ErrInsufficientData = errors.New("window: insufficient data")

// Manager owns the per-symbol rolling windows. All access goes through its
// methods; the underlying map is never handed out for external mutation.
// Windows are in-memory only and lost on restart.
type Manager struct {
	mu      sync.RWMutex
	windows map[string][]model.PricePoint
}

// NewManager creates an empty rolling window manager.
func NewManager() *Manager {
	return &Manager{
		windows: make(map[string][]model.PricePoint),
	}
}

// Append inserts a point at the end of its symbol's window, evicting the
// oldest point when the window exceeds Capacity.
func (m *Manager) Append(p model.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := append(m.windows[p.Symbol], p)
	if len(w) > Capacity {
		copy(w, w[1:])
		w = w[:Capacity]
	}
	m.windows[p.Symbol] = w
}

// Latest returns a copy of the last n points for a symbol, oldest first.
// It fails when fewer than n points exist.
func (m *Manager) Latest(symbol string, n int) ([]model.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w := m.windows[symbol]
	if len(w) < n {
		return nil, ErrInsufficientData
	}

	out := make([]model.PricePoint, n)
	copy(out, w[len(w)-n:])
	return out, nil
}

// Snapshot returns a copy of the full window for a symbol, oldest first.
func (m *Manager) Snapshot(symbol string) []model.PricePoint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w := m.windows[symbol]
	out := make([]model.PricePoint, len(w))
	copy(out, w)
	return out
}

// Size returns the number of points currently held for a symbol.
func (m *Manager) Size(symbol string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows[symbol])
}

// LastClose returns the close of the most recent point for a symbol.
func (m *Manager) LastClose(symbol string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w := m.windows[symbol]
	if len(w) == 0 {
		return 0, false
	}
	return w[len(w)-1].Close, true
}
