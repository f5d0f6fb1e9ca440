package llm

import (
	"fmt"
	"strings"

	"github.com/quantex/marketpulse/internal/model"
)

// promptPoints is how many recent points are included in the prompt.
const promptPoints = 10

// BuildPrompt formats the computed market state into a commentary request.
func BuildPrompt(symbol string, points []model.PricePoint, indicators []model.Indicator, trend model.Trend, pattern string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a market analyst. Recent %s price action:\n", symbol))

	start := len(points) - promptPoints
	if start < 0 {
		start = 0
	}
	for _, p := range points[start:] {
		sb.WriteString(fmt.Sprintf("close %.4f volume %.2f\n", p.Close, p.Volume))
	}

	sb.WriteString("\nIndicators:\n")
	for _, ind := range indicators {
		sb.WriteString(fmt.Sprintf("%s = %.2f (%s)\n", ind.Name, ind.Value, ind.Signal))
	}

	sb.WriteString(fmt.Sprintf("\nTrend: %s\n", trend))
	if pattern != "" {
		sb.WriteString(fmt.Sprintf("Detected pattern: %s\n", pattern))
	}

	sb.WriteString("\nIn 2-3 sentences, describe the current market condition and what it suggests.")
	return sb.String()
}
