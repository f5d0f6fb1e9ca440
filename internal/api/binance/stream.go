package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/quantex/marketpulse/internal/model"
)

// StreamURL builds a combined-stream URL subscribing the trade and ticker
// channels for every tracked symbol.
func StreamURL(base string, symbols []string) string {
	streams := make([]string, 0, len(symbols)*2)
	for _, s := range symbols {
		pair := strings.ToLower(PairSymbol(s))
		streams = append(streams, pair+"@trade", pair+"@ticker")
	}
	return base + "/stream?streams=" + strings.Join(streams, "/")
}

// streamEnvelope is the combined-stream wrapper.
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// tradeEvent is a single trade from the @trade stream.
type tradeEvent struct {
	EventType    string `json:"e"`
	Symbol       string `json:"s"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

// tickerEvent is a rolling 24h ticker from the @ticker stream.
type tickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
}

// ParseStreamMessage normalizes a raw combined-stream message into either a
// Tick (trade event) or a PricePoint (ticker event). The symbols map
// translates exchange pairs back into normalized symbols; unknown pairs are
// rejected. At most one of the returned pointers is non-nil.
func ParseStreamMessage(raw []byte, symbols map[string]string) (*model.PricePoint, *model.Tick, error) {
	var env streamEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("decoding stream message: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, nil, fmt.Errorf("stream message has no data")
	}

	switch {
	case strings.HasSuffix(env.Stream, "@trade"):
		var ev tradeEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, nil, fmt.Errorf("decoding trade event: %w", err)
		}

		symbol, ok := symbols[ev.Symbol]
		if !ok {
			return nil, nil, fmt.Errorf("trade for untracked pair %s", ev.Symbol)
		}

		price, err := strconv.ParseFloat(ev.Price, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing trade price: %w", err)
		}
		qty, err := strconv.ParseFloat(ev.Quantity, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing trade quantity: %w", err)
		}

		// The maker flag is set when the buyer was the resting order, so
		// the aggressor side is the opposite.
		side := model.TickSideBuy
		if ev.IsBuyerMaker {
			side = model.TickSideSell
		}

		return nil, &model.Tick{
			Symbol:    symbol,
			Price:     price,
			Volume:    qty,
			Side:      side,
			Timestamp: ev.TradeTime,
		}, nil

	case strings.HasSuffix(env.Stream, "@ticker"):
		var ev tickerEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, nil, fmt.Errorf("decoding ticker event: %w", err)
		}

		symbol, ok := symbols[ev.Symbol]
		if !ok {
			return nil, nil, fmt.Errorf("ticker for untracked pair %s", ev.Symbol)
		}

		fields := make([]float64, 5)
		for i, s := range []string{ev.Open, ev.High, ev.Low, ev.Close, ev.Volume} {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing ticker field: %w", err)
			}
			fields[i] = v
		}

		return &model.PricePoint{
			Symbol:    symbol,
			Exchange:  Exchange,
			Timestamp: ev.EventTime,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		}, nil, nil
	}

	return nil, nil, fmt.Errorf("unhandled stream %q", env.Stream)
}

// SymbolMap builds the exchange-pair to normalized-symbol lookup used when
// parsing stream messages.
func SymbolMap(symbols []string) map[string]string {
	m := make(map[string]string, len(symbols))
	for _, s := range symbols {
		m[PairSymbol(s)] = s
	}
	return m
}
