package patterns

import (
	"math"

	"github.com/quantex/marketpulse/internal/model"
)

const (
	patternLookback = 10
	slopeSteep      = 0.001
	slopeFlat       = 0.0005
)

// DetectPattern tags triangle patterns over the last ten points by fitting
// independent least-squares slopes to the highs and the lows. Rising lows
// under a flat ceiling form an ascending triangle; falling highs over a flat
// floor form a descending one. Returns the empty string when no pattern is
// present or the window is too short.
func DetectPattern(points []model.PricePoint) string {
	if len(points) < patternLookback {
		return ""
	}

	recent := points[len(points)-patternLookback:]
	highs := make([]float64, patternLookback)
	lows := make([]float64, patternLookback)
	for i, p := range recent {
		highs[i] = p.High
		lows[i] = p.Low
	}

	highSlope := slope(highs)
	lowSlope := slope(lows)

	if lowSlope > slopeSteep && math.Abs(highSlope) < slopeFlat {
		return model.PatternAscendingTriangle
	}
	if highSlope < -slopeSteep && math.Abs(lowSlope) < slopeFlat {
		return model.PatternDescendingTriangle
	}
	return ""
}

// slope fits an ordinary least squares line y = a + b*x with x as the
// sample index and returns b.
func slope(y []float64) float64 {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
