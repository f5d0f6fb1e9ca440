package indicator

import (
	"github.com/quantex/marketpulse/internal/model"
)

// VolumeRatio compares the current volume against the mean volume of the
// last VolumePeriod points. Ratios above 1.5 read bullish (volume surge),
// below 0.5 bearish (volume drying up). Requires at least VolumePeriod
// points and a non-zero mean volume.
func VolumeRatio(points []model.PricePoint) (model.Indicator, bool) {
	if len(points) < VolumePeriod {
		return model.Indicator{}, false
	}

	recent := points[len(points)-VolumePeriod:]
	var sum float64
	for _, p := range recent {
		sum += p.Volume
	}
	mean := sum / float64(VolumePeriod)
	if mean == 0 {
		return model.Indicator{}, false
	}

	ratio := points[len(points)-1].Volume / mean

	signal := model.SignalNeutral
	switch {
	case ratio > 1.5:
		signal = model.SignalBullish
	case ratio < 0.5:
		signal = model.SignalBearish
	}

	return model.Indicator{
		Name:      model.IndicatorVolumeRatio,
		Value:     ratio,
		Signal:    signal,
		Timestamp: latestTimestamp(points),
	}, true
}
