package indicator

import (
	"github.com/quantex/marketpulse/internal/model"
)

// Indicator periods. The set is fixed; periods are not configurable.
const (
	MAPeriod     = 20
	RSIPeriod    = 14
	VolumePeriod = 20

	// MinWindow is the minimum window length required before an analysis
	// cycle computes anything at all.
	MinWindow = 14
)

// Compute runs the full indicator set against a window and returns the
// indicators that had sufficient data. Partial output is valid, not an
// error: an indicator that cannot be computed is simply omitted.
func Compute(points []model.PricePoint) []model.Indicator {
	var out []model.Indicator

	if ind, ok := MovingAverage(points); ok {
		out = append(out, ind)
	}
	if ind, ok := RSI(points); ok {
		out = append(out, ind)
	}
	if ind, ok := VolumeRatio(points); ok {
		out = append(out, ind)
	}

	return out
}

// Find returns the indicator with the given name from a computed set.
func Find(indicators []model.Indicator, name string) (model.Indicator, bool) {
	for _, ind := range indicators {
		if ind.Name == name {
			return ind, true
		}
	}
	return model.Indicator{}, false
}

func latestTimestamp(points []model.PricePoint) int64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Timestamp
}
