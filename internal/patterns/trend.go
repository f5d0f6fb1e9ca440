package patterns

import (
	"github.com/quantex/marketpulse/internal/model"
)

const (
	trendLookback  = 5
	trendThreshold = 0.01 // 1% move over the lookback
)

// ClassifyTrend compares the close five points back against the latest
// close. Moves beyond ±1% read as up/down; anything else, including windows
// shorter than the lookback, is sideways.
func ClassifyTrend(points []model.PricePoint) model.Trend {
	if len(points) < trendLookback {
		return model.TrendSideways
	}

	old := points[len(points)-trendLookback].Close
	latest := points[len(points)-1].Close
	if old == 0 {
		return model.TrendSideways
	}

	change := (latest - old) / old
	switch {
	case change > trendThreshold:
		return model.TrendUp
	case change < -trendThreshold:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}
