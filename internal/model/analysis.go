package model

// IndicatorSignal is the categorical reading of a single indicator.
type IndicatorSignal string

const (
	SignalBullish IndicatorSignal = "bullish"
	SignalBearish IndicatorSignal = "bearish"
	SignalNeutral IndicatorSignal = "neutral"
)

// Names of the indicators produced by the engine.
const (
	IndicatorMovingAverage = "moving_average"
	IndicatorOscillator    = "oscillator"
	IndicatorVolumeRatio   = "volume_ratio"
)

// Indicator is a single computed technical indicator. Indicators are derived
// values, recomputed each analysis cycle; they are only persisted as part of
// an Analysis.
type Indicator struct {
	Name      string          `json:"name"`
	Value     float64         `json:"value"`
	Signal    IndicatorSignal `json:"signal"`
	Timestamp int64           `json:"timestamp"`
}

// Trend is the short-term direction classification of a symbol.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// Chart pattern labels.
const (
	PatternAscendingTriangle  = "ascending_triangle"
	PatternDescendingTriangle = "descending_triangle"
)

// Analysis is the full output of one analysis cycle for one symbol.
type Analysis struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Timestamp  int64       `json:"timestamp"`
	Indicators []Indicator `json:"indicators"`
	Trend      Trend       `json:"trend"`
	Pattern    string      `json:"pattern,omitempty"`
	Narrative  string      `json:"narrative,omitempty"`
	AgentID    string      `json:"agent_id"`
}

// SignalAction is the recommended action carried by a Signal.
type SignalAction string

const (
	ActionBuy   SignalAction = "buy"
	ActionSell  SignalAction = "sell"
	ActionHold  SignalAction = "hold"
	ActionAlert SignalAction = "alert"
)

// Signal is an actionable trading recommendation. Strength and Confidence
// are always in [0,1]; a Signal is only emitted when Strength clears the
// configured minimum.
type Signal struct {
	ID         string            `json:"id"`
	AgentID    string            `json:"agent_id"`
	Action     SignalAction      `json:"action"`
	Symbol     string            `json:"symbol"`
	Strength   float64           `json:"strength"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Timestamp  int64             `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
