package signal

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/indicator"
	"github.com/quantex/marketpulse/internal/model"
)

const (
	actionStrength = 0.7
	holdStrength   = 0.5
	baseConfidence = 0.8

	oversoldLevel   = 30.0
	overboughtLevel = 70.0

	volumeConfirmLevel = 1.5
	volumeBoost        = 1.2

	// NarrativeLimit caps the narrative stored in signal metadata.
	NarrativeLimit = 500
)

// Generator derives actionable signals from computed indicators and the
// trend classification.
type Generator struct {
	agentID     string
	minStrength float64
	logger      zerolog.Logger
}

// NewGenerator creates a signal generator for one agent. Signals with
// strength below minStrength are suppressed.
func NewGenerator(agentID string, minStrength float64) *Generator {
	return &Generator{
		agentID:     agentID,
		minStrength: minStrength,
		logger:      log.With().Str("component", "signal_generator").Str("agent", agentID).Logger(),
	}
}

// Generate returns a Signal when the oscillator and trend line up, or nil
// when nothing actionable emerges. An oversold oscillator outside a
// downtrend is a buy; an overbought one outside an uptrend is a sell;
// everything else is a hold, which never clears the emission gate. A volume
// surge above 1.5x boosts confidence. Strength and confidence are clamped
// to [0,1] before the gate is applied.
func (g *Generator) Generate(symbol string, indicators []model.Indicator, trend model.Trend, narrative string, timestamp int64) *model.Signal {
	action := model.ActionHold
	strength := holdStrength
	confidence := baseConfidence
	reasoning := "no actionable indicator alignment"

	if osc, ok := indicator.Find(indicators, model.IndicatorOscillator); ok {
		switch {
		case osc.Value < oversoldLevel && trend != model.TrendDown:
			action = model.ActionBuy
			strength = actionStrength
			reasoning = fmt.Sprintf("oscillator oversold at %.1f with %s trend", osc.Value, trend)
		case osc.Value > overboughtLevel && trend != model.TrendUp:
			action = model.ActionSell
			strength = actionStrength
			reasoning = fmt.Sprintf("oscillator overbought at %.1f with %s trend", osc.Value, trend)
		}
	}

	if vr, ok := indicator.Find(indicators, model.IndicatorVolumeRatio); ok && vr.Value > volumeConfirmLevel {
		confidence *= volumeBoost
		reasoning += fmt.Sprintf("; confirmed by %.1fx volume", vr.Value)
	}

	strength = clamp01(strength)
	confidence = clamp01(confidence)

	if strength < g.minStrength {
		g.logger.Debug().
			Str("symbol", symbol).
			Str("action", string(action)).
			Float64("strength", strength).
			Msg("signal below emission threshold, suppressed")
		return nil
	}

	sig := &model.Signal{
		ID:         uuid.NewString(),
		AgentID:    g.agentID,
		Action:     action,
		Symbol:     symbol,
		Strength:   strength,
		Confidence: confidence,
		Reasoning:  reasoning,
		Timestamp:  timestamp,
		Metadata:   map[string]string{},
	}
	if narrative != "" {
		sig.Metadata["narrative"] = Truncate(narrative, NarrativeLimit)
	}
	return sig
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
