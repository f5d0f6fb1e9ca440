package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quantex/marketpulse/internal/model"
)

type fakeSink struct {
	mu       sync.Mutex
	points   []model.PricePoint
	analyses []model.Analysis
	signals  []model.Signal
	fail     bool
}

func (f *fakeSink) InsertPricePoint(ctx context.Context, p model.PricePoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("sink down")
	}
	f.points = append(f.points, p)
	return nil
}

func (f *fakeSink) InsertAnalysis(ctx context.Context, a model.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("sink down")
	}
	f.analyses = append(f.analyses, a)
	return nil
}

func (f *fakeSink) InsertSignal(ctx context.Context, s model.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("sink down")
	}
	f.signals = append(f.signals, s)
	return nil
}

func (f *fakeSink) Ping(ctx context.Context) error {
	if f.fail {
		return errors.New("sink down")
	}
	return nil
}

func (f *fakeSink) pointCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

func TestDualWriteSurvivesOneSinkFailure(t *testing.T) {
	healthy := &fakeSink{}
	broken := &fakeSink{fail: true}
	m := NewManager(nil, healthy, broken)

	p := model.PricePoint{Symbol: "BTC/USDT", Exchange: "binance", Timestamp: 1, Open: 1, Close: 2, Volume: 3}
	err := m.WritePricePoint(context.Background(), p)
	if err == nil {
		t.Fatal("expected an error reporting the broken sink")
	}

	// The healthy sink still received the record: no coordination between
	// sinks, by the accepted dual-write contract.
	if healthy.pointCount() != 1 {
		t.Errorf("healthy sink received %d points, want 1", healthy.pointCount())
	}

	if m.Healthy(context.Background()) {
		t.Error("Healthy() = true with a broken sink")
	}

	m2 := NewManager(nil, healthy)
	if !m2.Healthy(context.Background()) {
		t.Error("Healthy() = false with all sinks up")
	}
}

type scriptedFetcher struct {
	mu      sync.Mutex
	records [][]byte
}

func (s *scriptedFetcher) Fetch(ctx context.Context) (key, value []byte, err error) {
	s.mu.Lock()
	if len(s.records) > 0 {
		rec := s.records[0]
		s.records = s.records[1:]
		s.mu.Unlock()
		return nil, rec, nil
	}
	s.mu.Unlock()

	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling %T: %v", v, err)
	}
	return data
}

func TestRecorderPersistsBarsButNotTicks(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(nil, sink)

	point := model.PricePoint{Symbol: "BTC/USDT", Exchange: "binance", Timestamp: 1, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10}
	tick := model.Tick{Symbol: "BTC/USDT", Price: 100.6, Volume: 0.1, Side: model.TickSideBuy, Timestamp: 2}
	analysis := model.Analysis{ID: "a1", Symbol: "BTC/USDT", Timestamp: 3, Trend: model.TrendUp, AgentID: "agent-1"}
	sig := model.Signal{ID: "s1", AgentID: "agent-1", Action: model.ActionBuy, Symbol: "BTC/USDT", Strength: 0.7, Confidence: 0.8, Timestamp: 4}

	r := NewRecorder(m,
		&scriptedFetcher{records: [][]byte{mustJSON(t, point), mustJSON(t, tick)}},
		&scriptedFetcher{records: [][]byte{mustJSON(t, analysis)}},
		&scriptedFetcher{records: [][]byte{mustJSON(t, sig)}},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = r.Run(ctx)

	sink.mu.Lock()
	defer sink.mu.Unlock()

	if len(sink.points) != 1 {
		t.Errorf("persisted %d price points, want 1 (ticks are never persisted)", len(sink.points))
	}
	if len(sink.analyses) != 1 || sink.analyses[0].ID != "a1" {
		t.Errorf("persisted analyses = %+v, want the one published record", sink.analyses)
	}
	if len(sink.signals) != 1 || sink.signals[0].ID != "s1" {
		t.Errorf("persisted signals = %+v, want the one published record", sink.signals)
	}
}
