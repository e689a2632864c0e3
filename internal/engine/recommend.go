package engine

import (
	"sort"

	"NiftyPulse/internal/domain/models"
)

// Safety-factor dampening per tier. Conservative keeps the full safety
// budget; moderate and aggressive keep a shrinking share of it, and
// aggressive actively tightens in a low-IV regime.
const (
	moderateSafetyShare   = 0.6
	aggressiveSafetyShare = 0.2
	aggressiveLowIVTrim   = 0.85
	lowIVRank             = 30.0
)

// Engine turns market state, daily history, and a live chain snapshot into
// three tiered strangle recommendations. It is a pure function of its
// inputs: no I/O, no shared state, safe for concurrent use.
type Engine struct {
	riskFreeRate float64
	strikeStep   float64
}

// New returns an Engine. Zero arguments fall back to the exchange defaults.
func New(riskFreeRate, strikeStep float64) *Engine {
	if riskFreeRate <= 0 {
		riskFreeRate = 0.07
	}
	if strikeStep <= 0 {
		strikeStep = DefaultStrikeStep
	}
	return &Engine{riskFreeRate: riskFreeRate, strikeStep: strikeStep}
}

// StrikeStep returns the strike grid increment the engine rounds to.
func (e *Engine) StrikeStep() float64 { return e.strikeStep }

// Recommend runs the full pipeline for one request. bars may arrive in any
// order (they are sorted by date here); chain may be nil or sparse, in
// which case premiums degrade to zero and liquidity reports not-ok.
func (e *Engine) Recommend(state models.MarketState, bars []models.DailyBar, chain models.ChainSnapshot) models.Recommendation {
	if state.RiskFreeRate <= 0 {
		state.RiskFreeRate = e.riskFreeRate
	}
	sorted := make([]models.DailyBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	buffers := ComputeBuffers(state.Spot, state.DaysToExpiry, sorted)
	regime, rsi := DetectRegime(state.Spot, state.VIX, sorted)
	ivRank, ivStatus := IVRank(state.VIX, sorted)
	skewCall, skewPut, skewRatio, pcr := SkewMultipliers(state.Spot, chain, e.strikeStep)
	dteMult, dteAdvisory := DTEMultiplier(state.DaysToExpiry, state.VIX)

	ivMult := 1.0
	switch {
	case ivRank > 50:
		ivMult = 1.1
	case ivRank < lowIVRank:
		ivMult = 1.2
	}
	safety := ivMult * dteMult

	signals := models.SignalBundle{
		Regime:        regime,
		RSI:           rsi,
		IVRank:        ivRank,
		IVRankStatus:  ivStatus,
		SkewRatio:     skewRatio,
		SkewCallMult:  skewCall,
		SkewPutMult:   skewPut,
		PCR:           pcr,
		DTEMultiplier: dteMult,
		DTEAdvisory:   dteAdvisory,
	}

	sigma := state.VIX / 100
	timeYears := float64(state.DaysToExpiry) / 365
	if timeYears < MinTimeToExpiry {
		timeYears = MinTimeToExpiry
	}

	build := func(tier models.Tier) models.StrikeProfile {
		base := baseDistance(tier, buffers, state.DaysToExpiry)
		tierSafety := dampenSafety(tier, safety, ivRank)

		callDist := base * regime.AdjustCall * skewCall * tierSafety
		putDist := base * regime.AdjustPut * skewPut * tierSafety

		callStrike := RoundToStep(state.Spot+callDist, e.strikeStep)
		putStrike := RoundToStep(state.Spot-putDist, e.strikeStep)

		return e.profile(tier, state, chain, callStrike, putStrike, sigma, timeYears)
	}

	return models.Recommendation{
		Conservative: build(models.TierConservative),
		Moderate:     build(models.TierModerate),
		Aggressive:   build(models.TierAggressive),
		Buffers:      buffers,
		Signals:      signals,
	}
}

// baseDistance picks the tier's base buffer. On expiry day the aggressive
// tier floors at the worst historical move instead of straining below the
// average range.
func baseDistance(tier models.Tier, b models.RangeBuffers, daysToExpiry int) float64 {
	switch tier {
	case models.TierModerate:
		return b.Moderate
	case models.TierAggressive:
		if daysToExpiry == 0 {
			return b.MaxRange
		}
		return b.Aggressive
	default:
		return b.Conservative
	}
}

// dampenSafety applies the tier's share of the safety premium. The guard on
// safety > 1.0 is kept even though the current multiplier table cannot
// produce sub-1.0 values.
func dampenSafety(tier models.Tier, safety, ivRank float64) float64 {
	switch tier {
	case models.TierModerate:
		if safety > 1.0 {
			safety = 1.0 + (safety-1.0)*moderateSafetyShare
		}
		return safety
	case models.TierAggressive:
		if safety > 1.0 {
			safety = 1.0 + (safety-1.0)*aggressiveSafetyShare
		}
		if ivRank < lowIVRank {
			// Hunt for premium in a dead market rather than inherit the
			// conservative widening. Intentionally unclamped below 1.0.
			safety *= aggressiveLowIVTrim
		}
		return safety
	default:
		return safety
	}
}

// profile joins a strike pair with the live chain and prices its Greeks.
// A strike missing from the chain degrades to zero premium and a
// liquidity-not-ok result.
func (e *Engine) profile(tier models.Tier, state models.MarketState, chain models.ChainSnapshot, callStrike, putStrike, sigma, timeYears float64) models.StrikeProfile {
	p := models.StrikeProfile{
		Tier:       tier,
		CallStrike: callStrike,
		PutStrike:  putStrike,
	}

	if ce, ok := chain.Lookup(callStrike, models.Call); ok {
		p.CallPremium = ce.LTP
		p.CallLiquidity = ce.Liquidity()
	}
	if pe, ok := chain.Lookup(putStrike, models.Put); ok {
		p.PutPremium = pe.LTP
		p.PutLiquidity = pe.Liquidity()
	}
	p.NetCredit = p.CallPremium + p.PutPremium

	if callStrike > 0 && sigma > 0 && state.Spot > 0 {
		p.CallGreeks = BSGreeks(state.Spot, callStrike, timeYears, state.RiskFreeRate, sigma, models.Call)
	}
	if putStrike > 0 && sigma > 0 && state.Spot > 0 {
		p.PutGreeks = BSGreeks(state.Spot, putStrike, timeYears, state.RiskFreeRate, sigma, models.Put)
	}
	return p
}
