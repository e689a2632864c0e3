package engine

import (
	"math"
	"testing"

	"NiftyPulse/internal/domain/models"
)

func TestBSGreeksZeroTime(t *testing.T) {
	g := BSGreeks(24500, 24500, 0, 0.07, 0.13, models.Call)
	if g != (models.Greeks{}) {
		t.Fatalf("zero time must yield zero greeks, got %+v", g)
	}
	g = BSGreeks(24500, 24500, -0.01, 0.07, 0.13, models.Put)
	if g != (models.Greeks{}) {
		t.Fatalf("negative time must yield zero greeks, got %+v", g)
	}
}

func TestBSGreeksDeltaLimits(t *testing.T) {
	const T = 7.0 / 365

	deepOTM := BSGreeks(24500, 40000, T, 0.07, 0.13, models.Call)
	if deepOTM.Delta > 0.001 {
		t.Fatalf("far OTM call delta = %v, want ~0", deepOTM.Delta)
	}
	deepITM := BSGreeks(24500, 10000, T, 0.07, 0.13, models.Call)
	if deepITM.Delta < 0.999 {
		t.Fatalf("deep ITM call delta = %v, want ~1", deepITM.Delta)
	}

	atm := BSGreeks(24500, 24500, T, 0.07, 0.13, models.Call)
	if atm.Delta < 0.4 || atm.Delta > 0.65 {
		t.Fatalf("ATM call delta = %v, want near 0.5", atm.Delta)
	}
}

func TestBSGreeksDeltaMonotoneInSpot(t *testing.T) {
	const T = 5.0 / 365
	prevCall, prevPut := -1.0, -2.0
	for spot := 20000.0; spot <= 29000; spot += 250 {
		c := BSGreeks(spot, 24500, T, 0.07, 0.13, models.Call)
		p := BSGreeks(spot, 24500, T, 0.07, 0.13, models.Put)
		if c.Delta < prevCall {
			t.Fatalf("call delta not non-decreasing at spot %v: %v < %v", spot, c.Delta, prevCall)
		}
		if prevPut != -2.0 && p.Delta > prevPut {
			t.Fatalf("put delta not non-increasing at spot %v: %v > %v", spot, p.Delta, prevPut)
		}
		prevCall, prevPut = c.Delta, p.Delta
	}
}

func TestBSGreeksSignConventions(t *testing.T) {
	const T = 3.0 / 365
	c := BSGreeks(24500, 24700, T, 0.07, 0.13, models.Call)
	p := BSGreeks(24500, 24300, T, 0.07, 0.13, models.Put)

	if c.Delta <= 0 {
		t.Fatalf("call delta must be positive, got %v", c.Delta)
	}
	if p.Delta > 0 {
		t.Fatalf("put delta must be <= 0, got %v", p.Delta)
	}
	if c.Gamma <= 0 || p.Gamma <= 0 {
		t.Fatalf("gamma must be positive: call %v put %v", c.Gamma, p.Gamma)
	}
	if c.Vega <= 0 || p.Vega <= 0 {
		t.Fatalf("vega must be positive: call %v put %v", c.Vega, p.Vega)
	}
	if c.Theta >= 0 {
		t.Fatalf("short-dated OTM call theta must be negative, got %v", c.Theta)
	}
}

func TestBSGreeksThetaIsDaily(t *testing.T) {
	const T = 7.0 / 365
	g := BSGreeks(24500, 24500, T, 0.07, 0.13, models.Call)
	// An ATM weekly on a 24500 index decays tens of points a day, not
	// thousands: a sanity bound that fails if theta is left annualized.
	if math.Abs(g.Theta) > 500 {
		t.Fatalf("theta looks annualized: %v", g.Theta)
	}
	if math.Abs(g.Theta) < 1 {
		t.Fatalf("daily ATM theta implausibly small: %v", g.Theta)
	}
}

func TestMinTimeToExpiryFloor(t *testing.T) {
	g := BSGreeks(24500, 24500, MinTimeToExpiry, 0.07, 0.13, models.Call)
	for name, v := range map[string]float64{"delta": g.Delta, "gamma": g.Gamma, "theta": g.Theta, "vega": g.Vega} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s not finite at floored time: %v", name, v)
		}
	}
}
