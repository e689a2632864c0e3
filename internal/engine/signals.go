package engine

import (
	"NiftyPulse/internal/domain/models"
)

// Regime thresholds.
const (
	highVolVIX       = 18.0
	trendThresholdPct = 2.0
	rangeBoundPct     = 1.5
	smaWindow         = 20
	rsiPeriod         = 14
)

// regimeRule is one entry of the ordered regime cascade. Rules are
// evaluated top to bottom; the first match wins, which makes the priority
// ordering explicit and testable.
type regimeRule struct {
	name       string
	match      func(vix, trend, rsi float64) bool
	adjustCall float64
	adjustPut  float64
}

var regimeRules = []regimeRule{
	{
		// Volatility expansion threatens both sides equally.
		name:       "High Volatility",
		match:      func(vix, trend, rsi float64) bool { return vix > highVolVIX },
		adjustCall: 1.15,
		adjustPut:  1.15,
	},
	{
		name:       "Bullish Trend",
		match:      func(vix, trend, rsi float64) bool { return trend > trendThresholdPct && rsi > 55 },
		adjustCall: 1.25,
		adjustPut:  0.90,
	},
	{
		name:       "Bearish Trend",
		match:      func(vix, trend, rsi float64) bool { return trend < -trendThresholdPct && rsi < 45 },
		adjustCall: 0.90,
		adjustPut:  1.25,
	},
	{
		name:       "Range Bound",
		match:      func(vix, trend, rsi float64) bool { return trend > -rangeBoundPct && trend < rangeBoundPct },
		adjustCall: 0.95,
		adjustPut:  0.95,
	},
	{
		name:       "Neutral",
		match:      func(vix, trend, rsi float64) bool { return true },
		adjustCall: 1.0,
		adjustPut:  1.0,
	},
}

// DetectRegime classifies the market from spot's deviation against the
// 20-day SMA, the 14-period RSI, and the VIX level. bars must be sorted
// ascending by date; empty history yields the Neutral regime.
func DetectRegime(spot, vix float64, bars []models.DailyBar) (models.RegimeBias, float64) {
	trend := trendStrength(spot, bars)
	rsi := RSI(bars, rsiPeriod)
	for _, r := range regimeRules {
		if r.match(vix, trend, rsi) {
			return models.RegimeBias{Name: r.name, AdjustCall: r.adjustCall, AdjustPut: r.adjustPut}, rsi
		}
	}
	// Unreachable: the last rule always matches.
	return models.RegimeBias{Name: "Neutral", AdjustCall: 1, AdjustPut: 1}, rsi
}

// trendStrength is spot's percent deviation from the mean close of the most
// recent smaWindow bars.
func trendStrength(spot float64, bars []models.DailyBar) float64 {
	n := len(bars)
	if n == 0 {
		return 0
	}
	start := n - smaWindow
	if start < 0 {
		start = 0
	}
	closes := make([]float64, 0, n-start)
	for _, b := range bars[start:] {
		closes = append(closes, b.Close)
	}
	sma := Mean(closes)
	if !sma.OK || sma.Value == 0 {
		return 0
	}
	return (spot - sma.Value) / sma.Value * 100
}

// RSI is Wilder's relative strength index over closes. Insufficient history
// reports the neutral 50.
func RSI(bars []models.DailyBar, period int) float64 {
	if len(bars) < period+1 {
		return 50
	}
	bars = bars[len(bars)-period-1:]
	var gains, losses float64
	for i := 1; i < len(bars); i++ {
		d := bars[i].Close - bars[i-1].Close
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs)
}

// IV-rank thresholds and labels.
const minVIXSamples = 10

// IVRank ranks the current VIX within its trailing history as a 0-100
// percentile, with a status label for display. Fewer than minVIXSamples
// recorded VIX values, or a flat history, report the neutral 50.
func IVRank(currentVIX float64, bars []models.DailyBar) (float64, string) {
	vals := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.VIX > 0 {
			vals = append(vals, b.VIX)
		}
	}
	if len(vals) < minVIXSamples {
		return 50, "insufficient data"
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return 50, "stable"
	}
	rank := (currentVIX - lo) / (hi - lo) * 100
	switch {
	case rank > 70:
		return rank, "high - option selling favorable"
	case rank > 50:
		return rank, "moderately high"
	case rank < 30:
		return rank, "low - premium selling risky"
	default:
		return rank, "neutral"
	}
}

// Skew OTM distance for the reference put/call pair.
const skewOTMOffset = 500.0

// SkewMultipliers compares a 500-point OTM put against the matching OTM
// call, combined with the put-call OI ratio, and returns per-side distance
// multipliers plus the raw skew ratio and PCR. Missing reference quotes
// yield the no-adjustment pair.
func SkewMultipliers(spot float64, chain models.ChainSnapshot, step float64) (callMult, putMult, ratio, pcr float64) {
	callMult, putMult = 1.0, 1.0
	pcr = oiPCR(chain)

	putRef, okP := chain.Lookup(RoundToStep(spot-skewOTMOffset, step), models.Put)
	callRef, okC := chain.Lookup(RoundToStep(spot+skewOTMOffset, step), models.Call)
	if !okP || !okC || callRef.LTP <= 0 {
		return callMult, putMult, 0, pcr
	}
	ratio = putRef.LTP / callRef.LTP

	switch {
	case ratio > 1.2 && pcr > 1.2:
		// Put-heavy, bearish skew: shift the safety budget to the put side.
		callMult, putMult = 0.90, 1.15
	case ratio < 0.8 && pcr < 0.7:
		callMult, putMult = 1.15, 0.90
	}
	return callMult, putMult, ratio, pcr
}

func oiPCR(chain models.ChainSnapshot) float64 {
	var putOI, callOI int64
	for k, e := range chain {
		if k.Type == models.Put {
			putOI += e.OI
		} else {
			callOI += e.OI
		}
	}
	if callOI == 0 {
		return 0
	}
	return float64(putOI) / float64(callOI)
}

// DTEMultiplier widens distances as expiry approaches, with an advisory
// message for the caller.
func DTEMultiplier(daysToExpiry int, vix float64) (float64, string) {
	switch {
	case daysToExpiry == 0:
		return 2.0, "expiry day - gamma risk high"
	case daysToExpiry == 1:
		return 1.3, "one day to expiry - elevated gamma"
	case vix < 11 && daysToExpiry > 4:
		// Compressed premium far from expiry: buy distance instead.
		return 1.4, "low vix far from expiry - premium thin, widening"
	default:
		return 1.0, "standard decay"
	}
}
