package engine

import (
	"math"
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

// barAtDTE builds a bar whose date has the given residual DTE relative to
// the Thursday expiry rule (dates kept before the Tuesday cutover).
func barAtDTE(t *testing.T, dte int, high, low float64) models.DailyBar {
	t.Helper()
	// 2025-06-05 is a Thursday.
	expiry := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	d := expiry.AddDate(0, 0, -dte)
	if got := ResidualDTE(d); got != dte {
		t.Fatalf("fixture: residual dte for %v = %d, want %d", d, got, dte)
	}
	return models.DailyBar{Date: d, Open: low, High: high, Low: low, Close: high}
}

func TestComputeBuffersEmptyHistoryProxy(t *testing.T) {
	b := ComputeBuffers(24500, 3, nil)
	wantAvg := 24500 * 0.01
	if b.AvgRange != wantAvg {
		t.Fatalf("avg range = %v, want %v", b.AvgRange, wantAvg)
	}
	if b.MaxRange != 1.5*wantAvg {
		t.Fatalf("max range = %v, want %v", b.MaxRange, 1.5*wantAvg)
	}
	if b.StdDev != 0.2*wantAvg {
		t.Fatalf("std dev = %v, want %v", b.StdDev, 0.2*wantAvg)
	}
	if b.SampleSize != 0 {
		t.Fatalf("sample size = %d, want 0", b.SampleSize)
	}
}

func TestComputeBuffersSingleSampleStdDev(t *testing.T) {
	bars := []models.DailyBar{barAtDTE(t, 2, 24700, 24500)}
	b := ComputeBuffers(24600, 2, bars)
	if b.SampleSize != 1 {
		t.Fatalf("sample size = %d, want 1", b.SampleSize)
	}
	if b.AvgRange != 200 {
		t.Fatalf("avg range = %v, want 200", b.AvgRange)
	}
	if b.StdDev != 0.2*200 {
		t.Fatalf("std dev = %v, want %v", b.StdDev, 0.2*200)
	}
	if math.IsNaN(b.StdDev) || b.StdDev == 0 {
		t.Fatalf("single-sample std dev must be finite and non-zero, got %v", b.StdDev)
	}
}

func TestComputeBuffersMatchingSamples(t *testing.T) {
	bars := []models.DailyBar{
		barAtDTE(t, 3, 24700, 24500), // range 200
		barAtDTE(t, 3, 24800, 24500), // range 300
		barAtDTE(t, 2, 25000, 24000), // wrong bucket, ignored
	}
	b := ComputeBuffers(24600, 3, bars)
	if b.SampleSize != 2 {
		t.Fatalf("sample size = %d, want 2", b.SampleSize)
	}
	if b.AvgRange != 250 {
		t.Fatalf("avg range = %v, want 250", b.AvgRange)
	}
	wantSD := math.Sqrt((50*50 + 50*50) / 1.0)
	if math.Abs(b.StdDev-wantSD) > 1e-9 {
		t.Fatalf("std dev = %v, want %v", b.StdDev, wantSD)
	}
	if b.MaxRange != 300 {
		t.Fatalf("max range = %v, want 300", b.MaxRange)
	}
}

func TestComputeBuffersTierOrdering(t *testing.T) {
	cases := [][]models.DailyBar{
		nil,
		{barAtDTE(t, 1, 24650, 24500)},
		{barAtDTE(t, 1, 24650, 24500), barAtDTE(t, 1, 24900, 24450)},
	}
	for i, bars := range cases {
		b := ComputeBuffers(24500, 1, bars)
		if !(b.Aggressive <= b.Moderate && b.Moderate <= b.Conservative) {
			t.Fatalf("case %d: tier ordering violated: aggr=%v mod=%v cons=%v", i, b.Aggressive, b.Moderate, b.Conservative)
		}
	}
}

func TestComputeBuffersAlwaysFinite(t *testing.T) {
	nan := math.NaN()
	bars := []models.DailyBar{
		{Date: time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC), High: nan, Low: 24000, Close: nan},
		{Date: time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC), High: 24500, Low: nan, Close: 24400},
	}
	for dte := 0; dte <= 7; dte++ {
		b := ComputeBuffers(24500, dte, bars)
		for name, v := range map[string]float64{
			"avg": b.AvgRange, "sd": b.StdDev, "max": b.MaxRange,
			"cons": b.Conservative, "mod": b.Moderate, "aggr": b.Aggressive,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("dte %d: %s is not finite: %v", dte, name, v)
			}
		}
	}
}
