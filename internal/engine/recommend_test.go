package engine

import (
	"math"
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

func testState(dte int) models.MarketState {
	return models.MarketState{Spot: 24500, VIX: 13.0, DaysToExpiry: dte, RiskFreeRate: 0.07}
}

func TestRecommendEmptyHistoryEmptyChain(t *testing.T) {
	e := New(0.07, DefaultStrikeStep)
	rec := e.Recommend(testState(3), nil, nil)

	cons, aggr := rec.Conservative, rec.Aggressive

	// Proxy-based buffers drive the distances.
	if rec.Buffers.AvgRange != 24500*0.01 {
		t.Fatalf("avg range = %v, want proxy %v", rec.Buffers.AvgRange, 24500*0.01)
	}

	// Conservative strikes strictly farther from spot than aggressive.
	if !(cons.CallStrike > aggr.CallStrike) {
		t.Fatalf("conservative call %v not beyond aggressive call %v", cons.CallStrike, aggr.CallStrike)
	}
	if !(cons.PutStrike < aggr.PutStrike) {
		t.Fatalf("conservative put %v not beyond aggressive put %v", cons.PutStrike, aggr.PutStrike)
	}

	for _, p := range []models.StrikeProfile{rec.Conservative, rec.Moderate, rec.Aggressive} {
		if p.CallPremium != 0 || p.PutPremium != 0 || p.NetCredit != 0 {
			t.Fatalf("tier %s: premiums must default to zero on empty chain", p.Tier)
		}
		if p.CallLiquidity.OK || p.PutLiquidity.OK {
			t.Fatalf("tier %s: liquidity must not be ok on empty chain", p.Tier)
		}
		if math.Mod(p.CallStrike, DefaultStrikeStep) != 0 || math.Mod(p.PutStrike, DefaultStrikeStep) != 0 {
			t.Fatalf("tier %s: strikes not on the %v grid: %v/%v", p.Tier, DefaultStrikeStep, p.CallStrike, p.PutStrike)
		}
	}
}

func TestRecommendZeroDTEAggressiveUsesMaxRange(t *testing.T) {
	e := New(0.07, DefaultStrikeStep)

	recZero := e.Recommend(testState(0), nil, nil)
	recLater := e.Recommend(testState(3), nil, nil)

	// With proxy buffers: max range (1.5 x avg) vs 0.8 x avg. Same
	// multiplier chain applies to both runs at iv-rank 50, so the zero-DTE
	// aggressive distance must be wider relative to its own moderate tier
	// than the 3-DTE one.
	zeroDist := recZero.Aggressive.CallStrike - 24500
	laterDist := recLater.Aggressive.CallStrike - 24500
	if zeroDist <= laterDist {
		t.Fatalf("0-DTE aggressive distance %v not wider than 3-DTE %v", zeroDist, laterDist)
	}

	// The zero-DTE aggressive base equals the proxy max range before
	// multipliers: verify via the reported buffers.
	if recZero.Buffers.MaxRange != 1.5*recZero.Buffers.AvgRange {
		t.Fatalf("proxy max range = %v, want %v", recZero.Buffers.MaxRange, 1.5*recZero.Buffers.AvgRange)
	}
}

func TestRecommendJoinsChainAndGreeks(t *testing.T) {
	e := New(0.07, DefaultStrikeStep)
	state := testState(3)

	// History pinned so every tier's strikes are known: proxy avg 245,
	// sd 49, distances cons=343, mod=294, aggr=196; iv-rank neutral (no
	// vix history), range-bound regime 0.95 both sides.
	rec := e.Recommend(state, nil, nil)

	liquid := models.ChainEntry{
		LTP: 85, OI: 200000, Volume: 50000, Bid: 84.5, Ask: 85.5,
		BuyQty: 1200, SellQty: 900,
	}
	chain := models.ChainSnapshot{}
	for _, p := range []models.StrikeProfile{rec.Conservative, rec.Moderate, rec.Aggressive} {
		ce := liquid
		ce.Strike, ce.Type = p.CallStrike, models.Call
		chain[models.StrikeKey{Strike: p.CallStrike, Type: models.Call}] = ce
		pe := liquid
		pe.Strike, pe.Type = p.PutStrike, models.Put
		chain[models.StrikeKey{Strike: p.PutStrike, Type: models.Put}] = pe
	}

	rec = e.Recommend(state, nil, chain)
	for _, p := range []models.StrikeProfile{rec.Conservative, rec.Moderate, rec.Aggressive} {
		if p.CallPremium != 85 || p.PutPremium != 85 {
			t.Fatalf("tier %s: premiums = %v/%v, want 85/85", p.Tier, p.CallPremium, p.PutPremium)
		}
		if p.NetCredit != 170 {
			t.Fatalf("tier %s: net credit = %v, want 170", p.Tier, p.NetCredit)
		}
		if !p.CallLiquidity.OK || !p.PutLiquidity.OK {
			t.Fatalf("tier %s: expected liquidity ok", p.Tier)
		}
		if p.CallGreeks.Delta <= 0 {
			t.Fatalf("tier %s: call delta = %v, want > 0", p.Tier, p.CallGreeks.Delta)
		}
		if p.PutGreeks.Delta >= 0 {
			t.Fatalf("tier %s: put delta = %v, want < 0", p.Tier, p.PutGreeks.Delta)
		}
	}
}

func TestRecommendLowIVAggressiveTightens(t *testing.T) {
	e := New(0.07, DefaultStrikeStep)

	// 20 bars of vix history ranked so current vix sits near the bottom.
	vix := make([]float64, 20)
	for i := range vix {
		vix[i] = 12 + float64(i)*0.5
	}
	bars := flatHistory(20, 24500, vix...)
	state := testState(6)
	state.VIX = 10.5 // iv-rank ~0, low-vix dte multiplier 1.4

	rec := e.Recommend(state, bars, nil)

	// Raw safety factor: 1.2 (iv rank < 30) x 1.4 (low vix, dte > 4) = 1.68.
	// Conservative keeps 1.68; aggressive keeps 1 + 0.68*0.2 = 1.136,
	// then trims by 0.85 => 0.9656, i.e. below its undamped base.
	consDist := rec.Conservative.CallStrike - 24500
	aggrDist := rec.Aggressive.CallStrike - 24500
	if consDist <= aggrDist {
		t.Fatalf("conservative distance %v must exceed aggressive %v", consDist, aggrDist)
	}

	aggrBase := rec.Buffers.Aggressive
	// Regime is range bound (0.95); dampened safety 0.9656. Expected raw
	// distance before rounding:
	want := aggrBase * 0.95 * (1 + 0.68*0.2) * 0.85
	got := aggrDist
	if math.Abs(got-RoundToStep(24500+want, DefaultStrikeStep)+24500) > DefaultStrikeStep {
		t.Fatalf("aggressive distance %v deviates from expected %v", got, want)
	}
}

func TestRecommendSafetyDampeningOrder(t *testing.T) {
	// Directly exercise the tier dampening table.
	cases := []struct {
		tier   models.Tier
		safety float64
		ivRank float64
		want   float64
	}{
		{models.TierConservative, 1.5, 60, 1.5},
		{models.TierModerate, 1.5, 60, 1.3},
		{models.TierAggressive, 1.5, 60, 1.1},
		{models.TierAggressive, 1.5, 20, 1.1 * 0.85},
		{models.TierModerate, 1.0, 60, 1.0},
		{models.TierAggressive, 1.0, 20, 0.85},
		// Sub-1.0 safety passes through the guard untouched.
		{models.TierModerate, 0.9, 60, 0.9},
	}
	for _, c := range cases {
		got := dampenSafety(c.tier, c.safety, c.ivRank)
		if math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("dampenSafety(%s, %v, %v) = %v, want %v", c.tier, c.safety, c.ivRank, got, c.want)
		}
	}
}

func TestRecommendSortsUnorderedHistory(t *testing.T) {
	e := New(0.07, DefaultStrikeStep)
	// Descending history must produce the same result as ascending.
	asc := make([]models.DailyBar, 25)
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := range asc {
		c := 24000 + float64(i)*20
		asc[i] = models.DailyBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 60, Low: c - 60, Close: c, VIX: 12 + float64(i)*0.3}
	}
	desc := make([]models.DailyBar, len(asc))
	for i := range asc {
		desc[i] = asc[len(asc)-1-i]
	}

	a := e.Recommend(testState(2), asc, nil)
	b := e.Recommend(testState(2), desc, nil)
	if a != b {
		t.Fatalf("order-sensitive result:\nasc:  %+v\ndesc: %+v", a, b)
	}
}
