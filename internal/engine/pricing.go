package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"NiftyPulse/internal/domain/models"
)

var stdNormal = distuv.UnitNormal

// MinTimeToExpiry is the floor callers apply before pricing: half a trading
// day in years, which keeps same-day decay modeled without near-zero
// denominators in d1/d2.
const MinTimeToExpiry = 0.5 / 252.0

// BSGreeks computes European option sensitivities under Black-Scholes.
// Theta is normalized to a daily figure, vega to value per 1% vol point.
// Non-positive time to expiry returns zero Greeks; callers must guard
// non-positive spot/strike/sigma.
func BSGreeks(spot, strike, timeYears, riskFree, sigma float64, typ models.InstrumentType) models.Greeks {
	if timeYears <= 0 {
		return models.Greeks{}
	}

	sqrtT := math.Sqrt(timeYears)
	d1 := (math.Log(spot/strike) + (riskFree+0.5*sigma*sigma)*timeYears) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	pdf := stdNormal.Prob(d1)
	gamma := pdf / (spot * sigma * sqrtT)
	vega := spot * pdf * sqrtT / 100

	var delta, thetaAnnual float64
	if typ == models.Call {
		delta = stdNormal.CDF(d1)
		thetaAnnual = -(spot*pdf*sigma)/(2*sqrtT) - riskFree*strike*math.Exp(-riskFree*timeYears)*stdNormal.CDF(d2)
	} else {
		delta = stdNormal.CDF(d1) - 1
		thetaAnnual = -(spot*pdf*sigma)/(2*sqrtT) + riskFree*strike*math.Exp(-riskFree*timeYears)*stdNormal.CDF(-d2)
	}

	return models.Greeks{
		Delta: delta,
		Gamma: gamma,
		Theta: thetaAnnual / 365,
		Vega:  vega,
	}
}
