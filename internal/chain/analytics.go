// Package chain derives open-interest analytics from a live option chain
// snapshot: max pain, put-call ratio, OI-based support and resistance, and
// straddle/strangle pricing intelligence.
package chain

import (
	"sort"

	"NiftyPulse/internal/domain/models"
	"NiftyPulse/internal/engine"
)

// Metrics summarizes chain positioning for the fetched strike window.
type Metrics struct {
	MaxPain    float64 `json:"max_pain"`
	PCR        float64 `json:"pcr"`
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// StrangleIntel is the OI-wall strangle suggestion: one strike step outside
// the highest-OI call and put walls.
type StrangleIntel struct {
	RecCall    float64 `json:"rec_call"`
	RecPut     float64 `json:"rec_put"`
	EstCredit  float64 `json:"est_credit"`
	RangeWidth float64 `json:"range_width"`
}

// StraddleIntel prices the ATM straddle and its break-even band.
type StraddleIntel struct {
	ATMStrike float64 `json:"atm_strike"`
	Cost      float64 `json:"cost"`
	UpperBE   float64 `json:"upper_be"`
	LowerBE   float64 `json:"lower_be"`
	SafetyPct float64 `json:"safety_pct"`
}

// ChartSeries is per-strike OI and volume aligned on a shared strike axis,
// shaped for plotting.
type ChartSeries struct {
	Strikes    []float64 `json:"strikes"`
	CallOI     []int64   `json:"ce_oi"`
	PutOI      []int64   `json:"pe_oi"`
	CallVolume []int64   `json:"ce_vol"`
	PutVolume  []int64   `json:"pe_vol"`
}

// Analytics bundles every chain-derived view computed from one snapshot.
type Analytics struct {
	Metrics  Metrics       `json:"metrics"`
	Strangle StrangleIntel `json:"strangle_intel"`
	Straddle StraddleIntel `json:"straddle_intel"`
	Chart    ChartSeries   `json:"chart_data"`
}

// Analyze computes all chain analytics in one pass over the snapshot.
func Analyze(chain models.ChainSnapshot, spot, step float64) Analytics {
	support, resistance := SupportResistance(chain)
	return Analytics{
		Metrics: Metrics{
			MaxPain:    MaxPain(chain),
			PCR:        PCR(chain),
			Support:    support,
			Resistance: resistance,
		},
		Strangle: Strangle(chain, step),
		Straddle: Straddle(chain, spot, step),
		Chart:    Chart(chain),
	}
}

// MaxPain returns the strike at which aggregate option-holder payoff is
// lowest, i.e. the expiry price that inflicts maximum loss on buyers.
// Returns 0 for an empty chain.
func MaxPain(chain models.ChainSnapshot) float64 {
	strikes := sortedStrikes(chain)
	if len(strikes) == 0 {
		return 0
	}

	best, bestLoss := strikes[0], 0.0
	for i, expiryPrice := range strikes {
		var loss float64
		for key, entry := range chain {
			switch key.Type {
			case models.Call:
				if expiryPrice > key.Strike {
					loss += (expiryPrice - key.Strike) * float64(entry.OI)
				}
			case models.Put:
				if key.Strike > expiryPrice {
					loss += (key.Strike - expiryPrice) * float64(entry.OI)
				}
			}
		}
		if i == 0 || loss < bestLoss {
			best, bestLoss = expiryPrice, loss
		}
	}
	return best
}

// PCR is total put OI over total call OI across the snapshot. Returns 0
// when there is no call OI to divide by.
func PCR(chain models.ChainSnapshot) float64 {
	var callOI, putOI int64
	for key, entry := range chain {
		switch key.Type {
		case models.Call:
			callOI += entry.OI
		case models.Put:
			putOI += entry.OI
		}
	}
	if callOI <= 0 {
		return 0
	}
	return float64(putOI) / float64(callOI)
}

// SupportResistance returns the highest-OI put strike (support) and the
// highest-OI call strike (resistance). Zero when the respective side is
// absent from the snapshot.
func SupportResistance(chain models.ChainSnapshot) (support, resistance float64) {
	var maxPutOI, maxCallOI int64 = -1, -1
	for key, entry := range chain {
		switch key.Type {
		case models.Put:
			if entry.OI > maxPutOI {
				maxPutOI, support = entry.OI, key.Strike
			}
		case models.Call:
			if entry.OI > maxCallOI {
				maxCallOI, resistance = entry.OI, key.Strike
			}
		}
	}
	return support, resistance
}

// Strangle suggests selling one step outside the OI walls and estimates
// the credit from quoted premiums. Missing legs price as zero.
func Strangle(chain models.ChainSnapshot, step float64) StrangleIntel {
	support, resistance := SupportResistance(chain)
	if support == 0 && resistance == 0 {
		return StrangleIntel{}
	}

	recCall := resistance + step
	recPut := support - step

	var credit float64
	if e, ok := chain.Lookup(recCall, models.Call); ok {
		credit += e.LTP
	}
	if e, ok := chain.Lookup(recPut, models.Put); ok {
		credit += e.LTP
	}

	return StrangleIntel{
		RecCall:    recCall,
		RecPut:     recPut,
		EstCredit:  credit,
		RangeWidth: recCall - recPut,
	}
}

// Straddle prices the ATM straddle at the nearest listed strike and its
// break-even band around spot.
func Straddle(chain models.ChainSnapshot, spot, step float64) StraddleIntel {
	atm := engine.RoundToStep(spot, step)
	if atm <= 0 {
		return StraddleIntel{}
	}

	var cost float64
	if e, ok := chain.Lookup(atm, models.Call); ok {
		cost += e.LTP
	}
	if e, ok := chain.Lookup(atm, models.Put); ok {
		cost += e.LTP
	}

	safety := 0.0
	if spot > 0 {
		safety = cost / spot * 100
	}

	return StraddleIntel{
		ATMStrike: atm,
		Cost:      cost,
		UpperBE:   atm + cost,
		LowerBE:   atm - cost,
		SafetyPct: safety,
	}
}

// Chart flattens the snapshot into parallel per-strike series on the union
// of call and put strikes, with zeros where a side is missing.
func Chart(chain models.ChainSnapshot) ChartSeries {
	strikes := sortedStrikes(chain)
	series := ChartSeries{
		Strikes:    strikes,
		CallOI:     make([]int64, len(strikes)),
		PutOI:      make([]int64, len(strikes)),
		CallVolume: make([]int64, len(strikes)),
		PutVolume:  make([]int64, len(strikes)),
	}
	for i, s := range strikes {
		if e, ok := chain.Lookup(s, models.Call); ok {
			series.CallOI[i] = e.OI
			series.CallVolume[i] = e.Volume
		}
		if e, ok := chain.Lookup(s, models.Put); ok {
			series.PutOI[i] = e.OI
			series.PutVolume[i] = e.Volume
		}
	}
	return series
}

func sortedStrikes(chain models.ChainSnapshot) []float64 {
	seen := make(map[float64]struct{}, len(chain))
	for key := range chain {
		seen[key.Strike] = struct{}{}
	}
	strikes := make([]float64, 0, len(seen))
	for s := range seen {
		strikes = append(strikes, s)
	}
	sort.Float64s(strikes)
	return strikes
}
