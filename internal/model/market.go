package model

import (
	"encoding/json"
	"fmt"
)

// PricePoint represents a normalized OHLCV bar for one symbol on one exchange.
// Points are immutable once ingested.
type PricePoint struct {
	Symbol    string  `json:"symbol"`
	Exchange  string  `json:"exchange"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Tick side values
const (
	TickSideBuy  = "buy"
	TickSideSell = "sell"
)

// Tick represents a single trade event. Ticks never enter the rolling
// window; they only drive the abrupt-move analysis trigger.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Side      string  `json:"side"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// marketDataEnvelope is the union of PricePoint and Tick fields used to
// disambiguate market-data payloads.
type marketDataEnvelope struct {
	Symbol    string   `json:"symbol"`
	Exchange  string   `json:"exchange"`
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    float64  `json:"volume"`
	Price     *float64 `json:"price"`
	Side      *string  `json:"side"`
}

// DecodeMarketData parses a market-data payload into either a PricePoint or
// a Tick. A record carrying open/close fields is a PricePoint; one carrying
// price/side fields is a Tick. Exactly one of the returned pointers is
// non-nil on success.
func DecodeMarketData(payload []byte) (*PricePoint, *Tick, error) {
	var env marketDataEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, nil, fmt.Errorf("decoding market data: %w", err)
	}

	if env.Symbol == "" {
		return nil, nil, fmt.Errorf("market data record has no symbol")
	}

	if env.Open != nil && env.Close != nil {
		return &PricePoint{
			Symbol:    env.Symbol,
			Exchange:  env.Exchange,
			Timestamp: env.Timestamp,
			Open:      *env.Open,
			High:      deref(env.High),
			Low:       deref(env.Low),
			Close:     *env.Close,
			Volume:    env.Volume,
		}, nil, nil
	}

	if env.Price != nil && env.Side != nil {
		return nil, &Tick{
			Symbol:    env.Symbol,
			Price:     *env.Price,
			Volume:    env.Volume,
			Side:      *env.Side,
			Timestamp: env.Timestamp,
		}, nil
	}

	return nil, nil, fmt.Errorf("market data record for %s is neither a price point nor a tick", env.Symbol)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
