package engine

import (
	"math"

	"NiftyPulse/internal/domain/models"
)

// Proxy constants used when no historical sample matches the requested DTE.
const (
	proxyRangePct      = 0.01 // avg range = 1% of spot
	proxyMaxRangeMult  = 1.5
	fallbackStdDevMult = 0.2 // of avg range, also the single-sample stdev
)

// ComputeBuffers derives the base strike distances for a request's
// days-to-expiry from historical high-low ranges of days that carried the
// same residual DTE under the expiry-weekday rule.
//
// Empty or non-matching history falls back to a volatility proxy scaled off
// spot; a single matching sample gets a synthetic stdev. The result is
// always finite.
func ComputeBuffers(spot float64, daysToExpiry int, bars []models.DailyBar) models.RangeBuffers {
	ranges := make([]float64, 0, len(bars))
	for _, b := range bars {
		if ResidualDTE(b.Date) != daysToExpiry {
			continue
		}
		r := b.High - b.Low
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			continue
		}
		ranges = append(ranges, r)
	}

	avg := Mean(ranges)
	if !avg.OK {
		return proxyBuffers(spot, len(ranges))
	}

	sd := SampleStdDev(ranges)
	stdDev := sd.Value
	if !sd.OK {
		// One sample: assume a fifth of the observed range as dispersion.
		stdDev = fallbackStdDevMult * avg.Value
	}
	mx := Max(ranges)
	maxRange := mx.Value
	if !mx.OK {
		maxRange = proxyMaxRangeMult * avg.Value
	}

	buf := buffersFrom(avg.Value, stdDev, maxRange, len(ranges))
	if !finiteBuffers(buf) {
		return proxyBuffers(spot, len(ranges))
	}
	return buf
}

func proxyBuffers(spot float64, samples int) models.RangeBuffers {
	avg := spot * proxyRangePct
	return buffersFrom(avg, fallbackStdDevMult*avg, proxyMaxRangeMult*avg, samples)
}

func buffersFrom(avg, stdDev, maxRange float64, samples int) models.RangeBuffers {
	return models.RangeBuffers{
		Conservative: avg + 2*stdDev,
		Moderate:     avg + stdDev,
		Aggressive:   avg * 0.8,
		AvgRange:     avg,
		StdDev:       stdDev,
		MaxRange:     maxRange,
		SampleSize:   samples,
	}
}

func finiteBuffers(b models.RangeBuffers) bool {
	for _, v := range []float64{b.Conservative, b.Moderate, b.Aggressive, b.AvgRange, b.StdDev, b.MaxRange} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
