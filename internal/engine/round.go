package engine

import "math"

// DefaultStrikeStep is the exchange-mandated strike increment for the index.
const DefaultStrikeStep = 50.0

// RoundToStep rounds x to the nearest strike increment. This is the single
// choke point for NaN: a NaN input resolves to strike 0 instead of leaking
// into the response.
func RoundToStep(x, step float64) float64 {
	if math.IsNaN(x) || step <= 0 {
		return 0
	}
	return math.Round(x/step) * step
}
