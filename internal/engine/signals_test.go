package engine

import (
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

// flatHistory builds n bars with a constant close and optional vix values.
func flatHistory(n int, close float64, vix ...float64) []models.DailyBar {
	bars := make([]models.DailyBar, n)
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.DailyBar{
			Date:  start.AddDate(0, 0, i),
			Open:  close,
			High:  close + 10,
			Low:   close - 10,
			Close: close,
		}
		if i < len(vix) {
			bars[i].VIX = vix[i]
		}
	}
	return bars
}

func TestDetectRegimeHighVolPriority(t *testing.T) {
	// Strongly trending history: without the VIX check this would be
	// classified Bullish Trend. VIX > 18 must take priority.
	bars := make([]models.DailyBar, 30)
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 24000 + float64(i)*50
		bars[i] = models.DailyBar{Date: start.AddDate(0, 0, i), Close: c, High: c + 20, Low: c - 20}
	}
	regime, _ := DetectRegime(26500, 20, bars)
	if regime.Name != "High Volatility" {
		t.Fatalf("regime = %q, want High Volatility", regime.Name)
	}
	if regime.AdjustCall != 1.15 || regime.AdjustPut != 1.15 {
		t.Fatalf("high-vol adjustments = %v/%v, want 1.15/1.15", regime.AdjustCall, regime.AdjustPut)
	}
}

func TestDetectRegimeBullish(t *testing.T) {
	bars := make([]models.DailyBar, 30)
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 24000 + float64(i)*40 // steady climb keeps RSI high
		bars[i] = models.DailyBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	spot := bars[len(bars)-1].Close * 1.03
	regime, rsi := DetectRegime(spot, 13, bars)
	if regime.Name != "Bullish Trend" {
		t.Fatalf("regime = %q (rsi %v), want Bullish Trend", regime.Name, rsi)
	}
	if regime.AdjustCall != 1.25 || regime.AdjustPut != 0.90 {
		t.Fatalf("bullish adjustments = %v/%v, want 1.25/0.90", regime.AdjustCall, regime.AdjustPut)
	}
}

func TestDetectRegimeRangeBoundAndNeutral(t *testing.T) {
	bars := flatHistory(30, 24500)
	regime, _ := DetectRegime(24550, 13, bars) // ~0.2% deviation
	if regime.Name != "Range Bound" {
		t.Fatalf("regime = %q, want Range Bound", regime.Name)
	}
	if regime.AdjustCall != 0.95 || regime.AdjustPut != 0.95 {
		t.Fatalf("range-bound adjustments = %v/%v, want 0.95/0.95", regime.AdjustCall, regime.AdjustPut)
	}

	// ~1.8% above SMA but flat RSI: neither trend nor range bound.
	regime, _ = DetectRegime(24500*1.018, 13, bars)
	if regime.Name != "Neutral" {
		t.Fatalf("regime = %q, want Neutral", regime.Name)
	}
}

func TestDetectRegimeEmptyHistory(t *testing.T) {
	regime, rsi := DetectRegime(24500, 13, nil)
	if regime.Name != "Range Bound" {
		// Zero trend strength lands in the range-bound band.
		t.Fatalf("regime = %q, want Range Bound", regime.Name)
	}
	if rsi != 50 {
		t.Fatalf("rsi = %v, want neutral 50", rsi)
	}
}

func TestIVRankInsufficientData(t *testing.T) {
	bars := flatHistory(20, 24500, 12, 13, 14) // only 3 vix samples
	rank, status := IVRank(13, bars)
	if rank != 50 || status != "insufficient data" {
		t.Fatalf("got %v %q, want 50 insufficient data", rank, status)
	}
}

func TestIVRankStableHistory(t *testing.T) {
	vix := make([]float64, 20)
	for i := range vix {
		vix[i] = 13
	}
	rank, status := IVRank(13, flatHistory(20, 24500, vix...))
	if rank != 50 || status != "stable" {
		t.Fatalf("got %v %q, want 50 stable", rank, status)
	}
}

func TestIVRankPercentile(t *testing.T) {
	vix := make([]float64, 20)
	for i := range vix {
		vix[i] = 10 + float64(i) // 10..29
	}
	bars := flatHistory(20, 24500, vix...)

	rank, status := IVRank(29, bars)
	if rank != 100 {
		t.Fatalf("rank at max = %v, want 100", rank)
	}
	if status != "high - option selling favorable" {
		t.Fatalf("status = %q", status)
	}

	rank, status = IVRank(10, bars)
	if rank != 0 {
		t.Fatalf("rank at min = %v, want 0", rank)
	}
	if status != "low - premium selling risky" {
		t.Fatalf("status = %q", status)
	}
}

func TestSkewMultipliersBearishSkew(t *testing.T) {
	spot := 24500.0
	chain := models.ChainSnapshot{
		{Strike: 24000, Type: models.Put}:  {Strike: 24000, Type: models.Put, LTP: 130, OI: 1300000},
		{Strike: 25000, Type: models.Call}: {Strike: 25000, Type: models.Call, LTP: 100, OI: 1000000},
	}
	call, put, ratio, pcr := SkewMultipliers(spot, chain, DefaultStrikeStep)
	if ratio != 1.3 {
		t.Fatalf("skew ratio = %v, want 1.3", ratio)
	}
	if pcr != 1.3 {
		t.Fatalf("pcr = %v, want 1.3", pcr)
	}
	if call != 0.90 || put != 1.15 {
		t.Fatalf("multipliers = %v/%v, want 0.90/1.15", call, put)
	}
}

func TestSkewMultipliersMissingReference(t *testing.T) {
	call, put, ratio, _ := SkewMultipliers(24500, models.ChainSnapshot{}, DefaultStrikeStep)
	if call != 1 || put != 1 || ratio != 0 {
		t.Fatalf("empty chain must not adjust: %v/%v ratio %v", call, put, ratio)
	}
}

func TestDTEMultiplier(t *testing.T) {
	cases := []struct {
		dte  int
		vix  float64
		want float64
	}{
		{0, 13, 2.0},
		{1, 13, 1.3},
		{5, 10.5, 1.4},
		{5, 13, 1.0},
		{3, 10.5, 1.0}, // low vix but dte <= 4
	}
	for _, c := range cases {
		got, advisory := DTEMultiplier(c.dte, c.vix)
		if got != c.want {
			t.Fatalf("DTEMultiplier(%d, %v) = %v, want %v", c.dte, c.vix, got, c.want)
		}
		if advisory == "" {
			t.Fatalf("advisory must not be empty for dte %d", c.dte)
		}
	}
}
