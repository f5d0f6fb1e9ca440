package signal

import (
	"strings"
	"testing"

	"github.com/quantex/marketpulse/internal/model"
)

func oscillator(value float64) model.Indicator {
	return model.Indicator{Name: model.IndicatorOscillator, Value: value}
}

func volumeRatio(value float64) model.Indicator {
	return model.Indicator{Name: model.IndicatorVolumeRatio, Value: value}
}

func TestGenerateActions(t *testing.T) {
	tests := []struct {
		name       string
		indicators []model.Indicator
		trend      model.Trend
		wantAction model.SignalAction
		wantNil    bool
	}{
		{
			name:       "oversold outside downtrend is a buy",
			indicators: []model.Indicator{oscillator(25)},
			trend:      model.TrendSideways,
			wantAction: model.ActionBuy,
		},
		{
			name:       "oversold inside downtrend is suppressed",
			indicators: []model.Indicator{oscillator(25)},
			trend:      model.TrendDown,
			wantNil:    true,
		},
		{
			name:       "overbought outside uptrend is a sell",
			indicators: []model.Indicator{oscillator(80)},
			trend:      model.TrendSideways,
			wantAction: model.ActionSell,
		},
		{
			name:       "overbought inside uptrend is suppressed",
			indicators: []model.Indicator{oscillator(80)},
			trend:      model.TrendUp,
			wantNil:    true,
		},
		{
			name:       "neutral oscillator never emits",
			indicators: []model.Indicator{oscillator(50)},
			trend:      model.TrendSideways,
			wantNil:    true,
		},
		{
			name:       "no oscillator never emits",
			indicators: nil,
			trend:      model.TrendUp,
			wantNil:    true,
		},
	}

	g := NewGenerator("agent-1", 0.6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := g.Generate("BTC/USDT", tt.indicators, tt.trend, "", 1)
			if tt.wantNil {
				if sig != nil {
					t.Fatalf("Generate() = %+v, want nil", sig)
				}
				return
			}
			if sig == nil {
				t.Fatal("Generate() = nil, want a signal")
			}
			if sig.Action != tt.wantAction {
				t.Errorf("action = %s, want %s", sig.Action, tt.wantAction)
			}
			if sig.Strength != 0.7 {
				t.Errorf("strength = %v, want 0.7", sig.Strength)
			}
			if sig.Confidence != 0.8 {
				t.Errorf("confidence = %v, want 0.8", sig.Confidence)
			}
			if sig.AgentID != "agent-1" || sig.Symbol != "BTC/USDT" {
				t.Errorf("identity fields wrong: %+v", sig)
			}
		})
	}
}

func TestHoldIsNeverEmitted(t *testing.T) {
	// Oscillator exactly at 50 with a sideways trend computes a hold with
	// strength 0.5, which must stay below every configured gate in use.
	g := NewGenerator("agent-1", 0.6)
	if sig := g.Generate("BTC/USDT", []model.Indicator{oscillator(50)}, model.TrendSideways, "", 1); sig != nil {
		t.Fatalf("hold signal was emitted: %+v", sig)
	}
}

func TestVolumeConfirmationBoostsAndClamps(t *testing.T) {
	g := NewGenerator("agent-1", 0.6)

	sig := g.Generate("BTC/USDT", []model.Indicator{oscillator(25), volumeRatio(2.0)}, model.TrendSideways, "", 1)
	if sig == nil {
		t.Fatal("expected a buy signal")
	}

	// 0.8 * 1.2 = 0.96
	if sig.Confidence < 0.959 || sig.Confidence > 0.961 {
		t.Errorf("confidence = %v, want 0.96", sig.Confidence)
	}
	if sig.Confidence > 1 || sig.Strength > 1 {
		t.Errorf("strength/confidence must stay in [0,1]: %v / %v", sig.Strength, sig.Confidence)
	}

	// Weak volume does not boost.
	sig = g.Generate("BTC/USDT", []model.Indicator{oscillator(25), volumeRatio(1.2)}, model.TrendSideways, "", 1)
	if sig == nil {
		t.Fatal("expected a buy signal")
	}
	if sig.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 without volume confirmation", sig.Confidence)
	}
}

func TestNarrativeTruncatedInMetadata(t *testing.T) {
	g := NewGenerator("agent-1", 0.6)

	long := strings.Repeat("x", 1200)
	sig := g.Generate("BTC/USDT", []model.Indicator{oscillator(25)}, model.TrendSideways, long, 1)
	if sig == nil {
		t.Fatal("expected a buy signal")
	}

	got := sig.Metadata["narrative"]
	if len(got) != NarrativeLimit {
		t.Errorf("narrative length = %d, want %d", len(got), NarrativeLimit)
	}

	short := "market looks stretched"
	sig = g.Generate("BTC/USDT", []model.Indicator{oscillator(25)}, model.TrendSideways, short, 1)
	if sig.Metadata["narrative"] != short {
		t.Errorf("short narrative altered: %q", sig.Metadata["narrative"])
	}
}

func TestClamp(t *testing.T) {
	if got := clamp01(1.7); got != 1 {
		t.Errorf("clamp01(1.7) = %v, want 1", got)
	}
	if got := clamp01(-0.3); got != 0 {
		t.Errorf("clamp01(-0.3) = %v, want 0", got)
	}
	if got := clamp01(0.42); got != 0.42 {
		t.Errorf("clamp01(0.42) = %v, want 0.42", got)
	}
}
