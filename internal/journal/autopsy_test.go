package journal

import (
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

func closedTrade() models.TradeRecord {
	entry := time.Date(2025, 7, 10, 11, 30, 0, 0, time.UTC)
	return models.TradeRecord{
		TradeID:        "t-1",
		Symbol:         "NIFTY2571025200CE",
		InstrumentType: models.Call,
		Strike:         25200,
		Quantity:       75,
		EntryTime:      entry,
		EntryPrice:     80,
		ExitTime:       entry.Add(4 * time.Hour),
		ExitPrice:      40,
		ExitReason:     "target",
		RealizedPnL:    3000,
		RealizedPnLPct: 50,
		SpotAtEntry:    24700,
		SpotAtExit:     24720,
		VIXAtEntry:     16.5,
		VIXAtExit:      16.0,
		IVRankAtEntry:  62,
		DTEAtEntry:     4,
		DeltaAtEntry:   0.20,
		DeltaAtExit:    0.12,
		GammaAtEntry:   0.0009,
		ThetaAtEntry:   -22,
		DayOfWeek:      "Thursday",
		HourOfEntry:    11,
		HoldMinutes:    240,
		MaxProfit:      3200,
		WasPlanned:     true,
		EmotionalState: "calm",
		Source:         "app_auto",
	}
}

func TestAnalyzeDisciplinedWinner(t *testing.T) {
	a := Analyze(closedTrade())

	if !a.Winner {
		t.Fatal("trade with positive pnl must be a winner")
	}
	if a.Timing.Grade != GradeA {
		t.Fatalf("timing grade = %s, want A for good DTE + decent VIX + stable hours", a.Timing.Grade)
	}
	if a.Position.Grade != GradeA {
		t.Fatalf("position grade = %s, want A for delta in the 0.15-0.25 band", a.Position.Grade)
	}
	if a.Exit.Grade != GradeA {
		t.Fatalf("exit grade = %s, want A for a 50%% profit exit", a.Exit.Grade)
	}
	if a.Discipline.Grade != GradeA {
		t.Fatalf("discipline grade = %s, want A for a calm planned trade", a.Discipline.Grade)
	}
	if len(a.WentWrong) != 0 {
		t.Fatalf("nothing should be wrong with this trade, got %v", a.WentWrong)
	}
}

func TestAnalyzePanicLoser(t *testing.T) {
	tr := closedTrade()
	tr.RealizedPnL = -4500
	tr.RealizedPnLPct = -75
	tr.ExitReason = "gamma_panic"
	tr.EmotionalState = "panic"
	tr.HoldMinutes = 12
	tr.HourOfEntry = 9
	tr.GammaAtEntry = 0.0042
	tr.DeltaAtEntry = 0.42
	tr.WasPlanned = false
	tr.Source = "broker_app"
	tr.IsZeroDTE = true
	tr.IsExpiryDay = true
	tr.VIXAtEntry = 11.2

	a := Analyze(tr)

	if a.Winner {
		t.Fatal("losing trade reported as winner")
	}
	if a.Exit.Grade != GradeF {
		t.Fatalf("exit grade = %s, want F for a sub-30-minute exit with a >50%% loss", a.Exit.Grade)
	}
	if a.Position.Grade != GradeF {
		t.Fatalf("position grade = %s, want F for gamma above 0.003", a.Position.Grade)
	}
	if a.Timing.Grade != GradeF {
		t.Fatalf("timing grade = %s, want F for an expiry-day entry before 2 PM", a.Timing.Grade)
	}
	if a.Discipline.Grade != GradeF {
		t.Fatalf("discipline grade = %s, want F for a panic-state trade", a.Discipline.Grade)
	}
	if !a.Market.Favorable {
		// Sub-12 VIX flips the environment against sellers.
	} else {
		t.Fatal("market should be unfavorable with VIX under 12")
	}
	if len(a.Lessons) == 0 {
		t.Fatal("a trade this bad must yield lessons")
	}
	if len(a.NextTime) == 0 {
		t.Fatal("a trade this bad must yield action items")
	}
}

func TestAnalyzeMissedProfitFlagsOpportunity(t *testing.T) {
	tr := closedTrade()
	tr.RealizedPnL = 900
	tr.RealizedPnLPct = 12
	tr.MaxProfit = 3000

	a := Analyze(tr)
	if !a.Exit.MissedOpportunity {
		t.Fatal("exiting with 30% of peak profit must flag a missed opportunity")
	}
}

func TestLessonsAreDeduplicated(t *testing.T) {
	tr := closedTrade()
	tr.IVRankAtEntry = 20
	tr.HourOfEntry = 9

	a := Analyze(tr)
	seen := make(map[string]int)
	for _, l := range a.Lessons {
		seen[l]++
		if seen[l] > 1 {
			t.Fatalf("duplicate lesson: %q", l)
		}
	}
}
