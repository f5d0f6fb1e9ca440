package indicator

import (
	"github.com/quantex/marketpulse/internal/model"
)

// RSI computes a Wilder-smoothed relative strength oscillator over the
// window. The seed averages come from the first RSIPeriod differences; every
// later difference is smoothed in with weight 1/RSIPeriod. Requires at least
// RSIPeriod+1 points. Values above 70 read bearish (overbought), below 30
// bullish (oversold). When the window shows no losses at all the oscillator
// pegs at its maximum of 100.
func RSI(points []model.PricePoint) (model.Indicator, bool) {
	if len(points) < RSIPeriod+1 {
		return model.Indicator{}, false
	}

	var gains, losses float64
	for i := 1; i <= RSIPeriod; i++ {
		change := points[i].Close - points[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(RSIPeriod)
	avgLoss := losses / float64(RSIPeriod)

	for i := RSIPeriod + 1; i < len(points); i++ {
		change := points[i].Close - points[i-1].Close
		if change > 0 {
			avgGain = (avgGain*float64(RSIPeriod-1) + change) / float64(RSIPeriod)
			avgLoss = (avgLoss * float64(RSIPeriod-1)) / float64(RSIPeriod)
		} else {
			avgGain = (avgGain * float64(RSIPeriod-1)) / float64(RSIPeriod)
			avgLoss = (avgLoss*float64(RSIPeriod-1) - change) / float64(RSIPeriod)
		}
	}

	value := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		value = 100.0 - (100.0 / (1.0 + rs))
	}

	signal := model.SignalNeutral
	switch {
	case value > 70:
		signal = model.SignalBearish
	case value < 30:
		signal = model.SignalBullish
	}

	return model.Indicator{
		Name:      model.IndicatorOscillator,
		Value:     value,
		Signal:    signal,
		Timestamp: latestTimestamp(points),
	}, true
}
