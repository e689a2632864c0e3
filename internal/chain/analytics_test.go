package chain

import (
	"math"
	"testing"

	"NiftyPulse/internal/domain/models"
)

func snap(entries ...models.ChainEntry) models.ChainSnapshot {
	cs := make(models.ChainSnapshot, len(entries))
	for _, e := range entries {
		cs[models.StrikeKey{Strike: e.Strike, Type: e.Type}] = e
	}
	return cs
}

func TestMaxPainEmptyChain(t *testing.T) {
	if mp := MaxPain(nil); mp != 0 {
		t.Fatalf("max pain of empty chain = %v, want 0", mp)
	}
}

func TestMaxPainPinsToHeavyOI(t *testing.T) {
	// Heavy call OI at 25100 and put OI at 24900 pull pain toward 25000.
	cs := snap(
		models.ChainEntry{Strike: 24900, Type: models.Put, OI: 500000},
		models.ChainEntry{Strike: 25000, Type: models.Put, OI: 100000},
		models.ChainEntry{Strike: 25000, Type: models.Call, OI: 100000},
		models.ChainEntry{Strike: 25100, Type: models.Call, OI: 500000},
	)
	if mp := MaxPain(cs); mp != 25000 {
		t.Fatalf("max pain = %v, want 25000", mp)
	}
}

func TestPCR(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 25000, Type: models.Call, OI: 200000},
		models.ChainEntry{Strike: 25000, Type: models.Put, OI: 260000},
	)
	if pcr := PCR(cs); math.Abs(pcr-1.3) > 1e-9 {
		t.Fatalf("pcr = %v, want 1.3", pcr)
	}

	noCalls := snap(models.ChainEntry{Strike: 25000, Type: models.Put, OI: 100})
	if pcr := PCR(noCalls); pcr != 0 {
		t.Fatalf("pcr with no call OI = %v, want 0", pcr)
	}
}

func TestSupportResistance(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 24800, Type: models.Put, OI: 900000},
		models.ChainEntry{Strike: 24900, Type: models.Put, OI: 400000},
		models.ChainEntry{Strike: 25200, Type: models.Call, OI: 850000},
		models.ChainEntry{Strike: 25300, Type: models.Call, OI: 300000},
	)
	sup, res := SupportResistance(cs)
	if sup != 24800 || res != 25200 {
		t.Fatalf("support/resistance = %v/%v, want 24800/25200", sup, res)
	}
}

func TestStrangleOutsideWalls(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 24800, Type: models.Put, OI: 900000},
		models.ChainEntry{Strike: 25200, Type: models.Call, OI: 850000},
		models.ChainEntry{Strike: 24750, Type: models.Put, OI: 1000, LTP: 32.5},
		models.ChainEntry{Strike: 25250, Type: models.Call, OI: 1000, LTP: 28.0},
	)
	intel := Strangle(cs, 50)
	if intel.RecCall != 25250 || intel.RecPut != 24750 {
		t.Fatalf("strangle strikes = %v/%v, want 25250/24750", intel.RecCall, intel.RecPut)
	}
	if math.Abs(intel.EstCredit-60.5) > 1e-9 {
		t.Fatalf("est credit = %v, want 60.5", intel.EstCredit)
	}
	if intel.RangeWidth != 500 {
		t.Fatalf("range width = %v, want 500", intel.RangeWidth)
	}
}

func TestStrangleMissingLegsPriceZero(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 24800, Type: models.Put, OI: 900000},
		models.ChainEntry{Strike: 25200, Type: models.Call, OI: 850000},
	)
	intel := Strangle(cs, 50)
	if intel.EstCredit != 0 {
		t.Fatalf("est credit with no quoted legs = %v, want 0", intel.EstCredit)
	}
}

func TestStraddle(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 25000, Type: models.Call, LTP: 110},
		models.ChainEntry{Strike: 25000, Type: models.Put, LTP: 95},
	)
	intel := Straddle(cs, 24988.45, 50)
	if intel.ATMStrike != 25000 {
		t.Fatalf("atm strike = %v, want 25000", intel.ATMStrike)
	}
	if intel.Cost != 205 {
		t.Fatalf("straddle cost = %v, want 205", intel.Cost)
	}
	if intel.UpperBE != 25205 || intel.LowerBE != 24795 {
		t.Fatalf("break-evens = %v/%v, want 25205/24795", intel.UpperBE, intel.LowerBE)
	}
	wantSafety := 205.0 / 24988.45 * 100
	if math.Abs(intel.SafetyPct-wantSafety) > 1e-9 {
		t.Fatalf("safety pct = %v, want %v", intel.SafetyPct, wantSafety)
	}
}

func TestChartAlignsSidesOnSharedAxis(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 24900, Type: models.Put, OI: 300, Volume: 40},
		models.ChainEntry{Strike: 25000, Type: models.Call, OI: 100, Volume: 10},
		models.ChainEntry{Strike: 25000, Type: models.Put, OI: 200, Volume: 20},
	)
	series := Chart(cs)
	wantStrikes := []float64{24900, 25000}
	if len(series.Strikes) != len(wantStrikes) {
		t.Fatalf("strikes = %v, want %v", series.Strikes, wantStrikes)
	}
	for i := range wantStrikes {
		if series.Strikes[i] != wantStrikes[i] {
			t.Fatalf("strikes = %v, want %v", series.Strikes, wantStrikes)
		}
	}
	if series.CallOI[0] != 0 || series.PutOI[0] != 300 {
		t.Fatalf("24900 row = CE %d / PE %d, want 0/300", series.CallOI[0], series.PutOI[0])
	}
	if series.CallOI[1] != 100 || series.PutVolume[1] != 20 {
		t.Fatalf("25000 row = CE OI %d / PE vol %d, want 100/20", series.CallOI[1], series.PutVolume[1])
	}
}

func TestAnalyzeBundlesAllViews(t *testing.T) {
	cs := snap(
		models.ChainEntry{Strike: 24800, Type: models.Put, OI: 900000, LTP: 60},
		models.ChainEntry{Strike: 25000, Type: models.Put, OI: 200000, LTP: 95},
		models.ChainEntry{Strike: 25000, Type: models.Call, OI: 150000, LTP: 110},
		models.ChainEntry{Strike: 25200, Type: models.Call, OI: 850000, LTP: 55},
	)
	a := Analyze(cs, 25010, 50)
	if a.Metrics.Support != 24800 || a.Metrics.Resistance != 25200 {
		t.Fatalf("metrics = %+v", a.Metrics)
	}
	if a.Straddle.ATMStrike != 25000 || a.Straddle.Cost != 205 {
		t.Fatalf("straddle = %+v", a.Straddle)
	}
	if a.Strangle.RecCall != 25250 || a.Strangle.RecPut != 24750 {
		t.Fatalf("strangle = %+v", a.Strangle)
	}
	if len(a.Chart.Strikes) != 3 {
		t.Fatalf("chart strikes = %v, want 3 entries", a.Chart.Strikes)
	}
}
