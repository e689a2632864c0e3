package models

import "time"

// InstrumentType distinguishes calls and puts using exchange naming.
type InstrumentType string

const (
	Call InstrumentType = "CE"
	Put  InstrumentType = "PE"
)

// StrikeKey identifies one contract in a chain snapshot.
type StrikeKey struct {
	Strike float64
	Type   InstrumentType
}

// ChainEntry is one contract's live quote from the broker.
type ChainEntry struct {
	Strike  float64
	Type    InstrumentType
	LTP     float64
	OI      int64
	Volume  int64
	Bid     float64
	Ask     float64
	BuyQty  int64
	SellQty int64
}

// Liquidity thresholds for a sellable contract.
const (
	minLiquidVolume    = 1000
	minLiquidOI        = 50000
	maxLiquidSpreadPct = 5.0
)

// SpreadPct returns the bid-ask spread as a percentage of the mid price,
// or 100 when there is no two-sided quote.
func (e ChainEntry) SpreadPct() float64 {
	mid := (e.Bid + e.Ask) / 2
	if mid <= 0 {
		return 100
	}
	return (e.Ask - e.Bid) / mid * 100
}

// Liquidity derives per-contract liquidity stats, including the tradability flag.
func (e ChainEntry) Liquidity() LiquidityStats {
	spread := e.SpreadPct()
	return LiquidityStats{
		OI:        e.OI,
		Volume:    e.Volume,
		Bid:       e.Bid,
		Ask:       e.Ask,
		BuyQty:    e.BuyQty,
		SellQty:   e.SellQty,
		SpreadPct: spread,
		OK:        e.Volume > minLiquidVolume && e.OI > minLiquidOI && spread < maxLiquidSpreadPct,
	}
}

// LiquidityStats summarizes contract depth for display and filtering.
type LiquidityStats struct {
	OI        int64   `json:"oi"`
	Volume    int64   `json:"volume"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	BuyQty    int64   `json:"buy_qty"`
	SellQty   int64   `json:"sell_qty"`
	SpreadPct float64 `json:"spread_pct"`
	OK        bool    `json:"liquidity_ok"`
}

// ChainSnapshot is a point-in-time view of the option chain, keyed by
// strike and instrument type. Supplied by the caller; the engine only reads it.
type ChainSnapshot map[StrikeKey]ChainEntry

// Lookup returns the entry for a strike/type pair if present.
func (cs ChainSnapshot) Lookup(strike float64, typ InstrumentType) (ChainEntry, bool) {
	e, ok := cs[StrikeKey{Strike: strike, Type: typ}]
	return e, ok
}

// Instrument maps a broker token to its contract identity.
type Instrument struct {
	Token  uint32
	Symbol string
	Strike float64
	Type   InstrumentType
}

// InstrumentSnapshot is the candidate contract universe for the nearest
// expiry. It is an explicitly owned value passed to callers, refreshed on
// demand rather than held as ambient global state.
type InstrumentSnapshot struct {
	Expiry      time.Time
	Instruments map[uint32]Instrument
	FetchedAt   time.Time
}

// Populated reports whether the snapshot holds any contracts.
func (s InstrumentSnapshot) Populated() bool { return len(s.Instruments) > 0 }

// ValidFor reports whether the snapshot's expiry has not already passed
// relative to the given trading day.
func (s InstrumentSnapshot) ValidFor(day time.Time) bool {
	if !s.Populated() || s.Expiry.IsZero() {
		return false
	}
	y1, m1, d1 := day.Date()
	y2, m2, d2 := s.Expiry.Date()
	today := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	exp := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !exp.Before(today)
}

// Near returns instruments whose strike is within window points of spot.
func (s InstrumentSnapshot) Near(spot, window float64) []Instrument {
	out := make([]Instrument, 0, 64)
	for _, ins := range s.Instruments {
		d := ins.Strike - spot
		if d < 0 {
			d = -d
		}
		if d <= window {
			out = append(out, ins)
		}
	}
	return out
}
