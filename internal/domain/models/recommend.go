package models

// Tier names the three risk levels a strangle can be sized at.
type Tier string

const (
	TierConservative Tier = "conservative"
	TierModerate     Tier = "moderate"
	TierAggressive   Tier = "aggressive"
)

// Greeks are per-contract option sensitivities. Theta is a daily figure,
// vega is per 1% volatility point.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// RangeBuffers are the base strike distances derived from historical
// high-low ranges at a matching days-to-expiry.
type RangeBuffers struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Aggressive   float64 `json:"aggressive"`
	AvgRange     float64 `json:"avg_range"`
	StdDev       float64 `json:"std_dev"`
	MaxRange     float64 `json:"max_range"`
	SampleSize   int     `json:"sample_size"`
}

// RegimeBias is the detected market regime with its per-side distance
// multipliers.
type RegimeBias struct {
	Name       string  `json:"name"`
	AdjustCall float64 `json:"adjust_call"`
	AdjustPut  float64 `json:"adjust_put"`
}

// SignalBundle carries every signal the engine combined, for display and
// explainability. Recomputed per request, never persisted.
type SignalBundle struct {
	Regime        RegimeBias `json:"regime"`
	RSI           float64    `json:"rsi"`
	IVRank        float64    `json:"iv_rank"`
	IVRankStatus  string     `json:"iv_rank_status"`
	SkewRatio     float64    `json:"skew_ratio"`
	SkewCallMult  float64    `json:"skew_call_mult"`
	SkewPutMult   float64    `json:"skew_put_mult"`
	PCR           float64    `json:"pcr"`
	DTEMultiplier float64    `json:"dte_multiplier"`
	DTEAdvisory   string     `json:"dte_advisory"`
}

// StrikeProfile is one fully annotated strangle candidate.
type StrikeProfile struct {
	Tier          Tier           `json:"tier"`
	CallStrike    float64        `json:"call_strike"`
	PutStrike     float64        `json:"put_strike"`
	CallPremium   float64        `json:"call_premium"`
	PutPremium    float64        `json:"put_premium"`
	NetCredit     float64        `json:"net_credit"`
	CallGreeks    Greeks         `json:"call_greeks"`
	PutGreeks     Greeks         `json:"put_greeks"`
	CallLiquidity LiquidityStats `json:"call_liquidity"`
	PutLiquidity  LiquidityStats `json:"put_liquidity"`
}

// Recommendation is the engine's full output: three tiered profiles plus
// the signal bundle that produced them.
type Recommendation struct {
	Conservative StrikeProfile `json:"conservative"`
	Moderate     StrikeProfile `json:"moderate"`
	Aggressive   StrikeProfile `json:"aggressive"`
	Buffers      RangeBuffers  `json:"buffers"`
	Signals      SignalBundle  `json:"signals"`
}

// Profile returns the profile for a tier name.
func (r Recommendation) Profile(t Tier) StrikeProfile {
	switch t {
	case TierModerate:
		return r.Moderate
	case TierAggressive:
		return r.Aggressive
	default:
		return r.Conservative
	}
}
