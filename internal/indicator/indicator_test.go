package indicator

import (
	"math"
	"testing"

	"github.com/quantex/marketpulse/internal/model"
)

func generatePoints(n int, generator func(i int) model.PricePoint) []model.PricePoint {
	points := make([]model.PricePoint, n)
	for i := 0; i < n; i++ {
		points[i] = generator(i)
	}
	return points
}

func ascendingCloses(n int, start float64) []model.PricePoint {
	return generatePoints(n, func(i int) model.PricePoint {
		return model.PricePoint{
			Symbol:    "BTC/USDT",
			Timestamp: int64(i) * 60_000,
			Close:     start + float64(i),
			Volume:    1000,
		}
	})
}

func TestMovingAverageRequiresTwentyPoints(t *testing.T) {
	for n := 0; n < MAPeriod; n++ {
		if _, ok := MovingAverage(ascendingCloses(n, 100)); ok {
			t.Fatalf("MovingAverage with %d points should be omitted", n)
		}
	}
	if _, ok := MovingAverage(ascendingCloses(MAPeriod, 100)); !ok {
		t.Fatalf("MovingAverage with %d points should be present", MAPeriod)
	}
}

func TestMovingAverageMatchesArithmeticMean(t *testing.T) {
	points := ascendingCloses(25, 100) // closes 100..124

	ind, ok := MovingAverage(points)
	if !ok {
		t.Fatal("MovingAverage omitted with 25 points")
	}

	// mean of the last 20 closes: 105..124
	var want float64
	for c := 105.0; c <= 124.0; c++ {
		want += c
	}
	want /= 20

	if math.Abs(ind.Value-want) > 1e-9 {
		t.Errorf("MovingAverage = %v, want %v", ind.Value, want)
	}
	if ind.Signal != model.SignalBullish {
		t.Errorf("MovingAverage signal = %s, want bullish (close 124 > MA %v)", ind.Signal, want)
	}
}

func TestMovingAverageBearishBelowAverage(t *testing.T) {
	points := generatePoints(25, func(i int) model.PricePoint {
		return model.PricePoint{Close: 124 - float64(i), Volume: 1000}
	})

	ind, ok := MovingAverage(points)
	if !ok {
		t.Fatal("MovingAverage omitted")
	}
	if ind.Signal != model.SignalBearish {
		t.Errorf("MovingAverage signal = %s, want bearish", ind.Signal)
	}
}

func TestRSIBounds(t *testing.T) {
	tests := []struct {
		name   string
		points []model.PricePoint
	}{
		{"ascending", ascendingCloses(40, 100)},
		{"descending", generatePoints(40, func(i int) model.PricePoint {
			return model.PricePoint{Close: 200 - float64(i)}
		})},
		{"oscillating", generatePoints(40, func(i int) model.PricePoint {
			return model.PricePoint{Close: 100 + float64(i%2)*3}
		})},
		{"flat", generatePoints(40, func(i int) model.PricePoint {
			return model.PricePoint{Close: 100}
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind, ok := RSI(tt.points)
			if !ok {
				t.Fatal("RSI omitted with 40 points")
			}
			if ind.Value < 0 || ind.Value > 100 {
				t.Errorf("RSI = %v, want value in [0,100]", ind.Value)
			}
		})
	}
}

func TestRSIAllGainsIsMaximum(t *testing.T) {
	ind, ok := RSI(ascendingCloses(30, 100))
	if !ok {
		t.Fatal("RSI omitted")
	}
	if ind.Value != 100 {
		t.Errorf("RSI on all-gains window = %v, want 100", ind.Value)
	}
	if ind.Signal != model.SignalBearish {
		t.Errorf("RSI signal at 100 = %s, want bearish", ind.Signal)
	}
}

func TestRSIRequiresFifteenPoints(t *testing.T) {
	if _, ok := RSI(ascendingCloses(RSIPeriod, 100)); ok {
		t.Fatalf("RSI with %d points should be omitted", RSIPeriod)
	}
	if _, ok := RSI(ascendingCloses(RSIPeriod+1, 100)); !ok {
		t.Fatalf("RSI with %d points should be present", RSIPeriod+1)
	}
}

func TestVolumeRatio(t *testing.T) {
	tests := []struct {
		name       string
		lastVolume float64
		wantSignal model.IndicatorSignal
	}{
		{"flat volume is neutral", 1000, model.SignalNeutral},
		{"surge is bullish", 2500, model.SignalBullish},
		{"collapse is bearish", 100, model.SignalBearish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := generatePoints(25, func(i int) model.PricePoint {
				p := model.PricePoint{Close: 100, Volume: 1000}
				if i == 24 {
					p.Volume = tt.lastVolume
				}
				return p
			})

			ind, ok := VolumeRatio(points)
			if !ok {
				t.Fatal("VolumeRatio omitted with 25 points")
			}
			if ind.Signal != tt.wantSignal {
				t.Errorf("VolumeRatio signal = %s, want %s (ratio %v)", ind.Signal, tt.wantSignal, ind.Value)
			}
		})
	}
}

func TestVolumeRatioFlatIsApproximatelyOne(t *testing.T) {
	points := generatePoints(25, func(i int) model.PricePoint {
		return model.PricePoint{Close: 100, Volume: 1000}
	})
	ind, ok := VolumeRatio(points)
	if !ok {
		t.Fatal("VolumeRatio omitted")
	}
	if math.Abs(ind.Value-1.0) > 1e-9 {
		t.Errorf("VolumeRatio on flat volume = %v, want 1.0", ind.Value)
	}
}

func TestComputePartialOutput(t *testing.T) {
	// 16 points: RSI computable, MA and volume ratio are not.
	points := ascendingCloses(16, 100)

	out := Compute(points)
	if len(out) != 1 {
		t.Fatalf("Compute with 16 points returned %d indicators, want 1", len(out))
	}
	if out[0].Name != model.IndicatorOscillator {
		t.Errorf("Compute returned %s, want %s", out[0].Name, model.IndicatorOscillator)
	}

	if _, ok := Find(out, model.IndicatorMovingAverage); ok {
		t.Error("moving average must be absent from output with fewer than 20 points")
	}
}

func TestComputeFullSet(t *testing.T) {
	out := Compute(ascendingCloses(25, 100))
	if len(out) != 3 {
		t.Fatalf("Compute with 25 points returned %d indicators, want 3", len(out))
	}
	for _, name := range []string{model.IndicatorMovingAverage, model.IndicatorOscillator, model.IndicatorVolumeRatio} {
		if _, ok := Find(out, name); !ok {
			t.Errorf("Compute output missing %s", name)
		}
	}
}
