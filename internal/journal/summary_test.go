package journal

import (
	"math"
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

func TestClosePnLShortLeg(t *testing.T) {
	pnl, pct := ClosePnL(80, 40, 75)
	if pnl != 3000 {
		t.Fatalf("pnl = %v, want 3000", pnl)
	}
	if pct != 50 {
		t.Fatalf("pnl pct = %v, want 50", pct)
	}

	pnl, pct = ClosePnL(80, 120, 75)
	if pnl != -3000 || pct != -50 {
		t.Fatalf("losing leg = %v / %v%%, want -3000 / -50", pnl, pct)
	}

	if _, pct := ClosePnL(0, 40, 75); pct != 0 {
		t.Fatalf("zero entry price must not divide, got pct %v", pct)
	}
}

func TestSummarizeSkipsOpenTrades(t *testing.T) {
	now := time.Now()
	trades := []models.TradeRecord{
		{TradeID: "open", EntryTime: now},
		{TradeID: "won", EntryTime: now, ExitTime: now, RealizedPnL: 2000, HoldMinutes: 120},
		{TradeID: "lost", EntryTime: now, ExitTime: now, RealizedPnL: -500, HoldMinutes: 60, EmotionalState: "fear", IsZeroDTE: true},
	}

	s := Summarize(trades, 30)
	if s.TotalTrades != 2 {
		t.Fatalf("total trades = %d, want 2 (open trade skipped)", s.TotalTrades)
	}
	if s.WinningTrades != 1 || s.LosingTrades != 1 {
		t.Fatalf("win/loss = %d/%d, want 1/1", s.WinningTrades, s.LosingTrades)
	}
	if s.WinRate != 50 {
		t.Fatalf("win rate = %v, want 50", s.WinRate)
	}
	if s.TotalPnL != 1500 {
		t.Fatalf("total pnl = %v, want 1500", s.TotalPnL)
	}
	if s.LargestWin != 2000 || s.LargestLoss != -500 {
		t.Fatalf("largest win/loss = %v/%v", s.LargestWin, s.LargestLoss)
	}
	if math.Abs(s.AvgHoldMins-90) > 1e-9 {
		t.Fatalf("avg hold = %v, want 90", s.AvgHoldMins)
	}
	if s.TradesInFear != 1 || s.ZeroDTETrades != 1 {
		t.Fatalf("fear/0dte counts = %d/%d, want 1/1", s.TradesInFear, s.ZeroDTETrades)
	}
}

func TestSummarizeCountsPanicExits(t *testing.T) {
	now := time.Now()
	trades := []models.TradeRecord{
		{EntryTime: now, ExitTime: now, RealizedPnL: -100, ExitReason: "gamma_panic", HoldMinutes: 90},
		{EntryTime: now, ExitTime: now, RealizedPnL: 100, ExitReason: "manual", HoldMinutes: 10},
	}
	s := Summarize(trades, 7)
	if s.PanicExits != 2 {
		t.Fatalf("panic exits = %d, want 2 (gamma_panic reason plus sub-30-minute hold)", s.PanicExits)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 30)
	if s.TotalTrades != 0 || s.WinRate != 0 || s.AvgHoldMins != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}
