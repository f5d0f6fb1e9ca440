package indicator

import (
	"github.com/quantex/marketpulse/internal/model"
)

// MovingAverage computes the simple moving average over the last MAPeriod
// closes. Bullish when the latest close trades above the average, bearish
// otherwise. Requires at least MAPeriod points.
func MovingAverage(points []model.PricePoint) (model.Indicator, bool) {
	if len(points) < MAPeriod {
		return model.Indicator{}, false
	}

	recent := points[len(points)-MAPeriod:]
	var sum float64
	for _, p := range recent {
		sum += p.Close
	}
	avg := sum / float64(MAPeriod)

	signal := model.SignalBearish
	if points[len(points)-1].Close > avg {
		signal = model.SignalBullish
	}

	return model.Indicator{
		Name:      model.IndicatorMovingAverage,
		Value:     avg,
		Signal:    signal,
		Timestamp: latestTimestamp(points),
	}, true
}
