package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

type fakeJournalStore struct {
	trades map[string]models.TradeRecord
}

func newFakeJournalStore() *fakeJournalStore {
	return &fakeJournalStore{trades: map[string]models.TradeRecord{}}
}

func (f *fakeJournalStore) RecordEntry(ctx context.Context, t *models.TradeRecord) error {
	f.trades[t.TradeID] = *t
	return nil
}

func (f *fakeJournalStore) RecordExit(ctx context.Context, t *models.TradeRecord) error {
	f.trades[t.TradeID] = *t
	return nil
}

func (f *fakeJournalStore) Trade(ctx context.Context, tradeID string) (models.TradeRecord, error) {
	t, ok := f.trades[tradeID]
	if !ok {
		return models.TradeRecord{}, fmt.Errorf("trade %s not found", tradeID)
	}
	return t, nil
}

func (f *fakeJournalStore) OpenTrades(ctx context.Context) ([]models.TradeRecord, error) {
	var out []models.TradeRecord
	for _, t := range f.trades {
		if !t.Closed() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeJournalStore) ClosedSince(ctx context.Context, since time.Time) ([]models.TradeRecord, error) {
	var out []models.TradeRecord
	for _, t := range f.trades {
		if t.Closed() && !t.ExitTime.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestParseOptionSymbol(t *testing.T) {
	cases := []struct {
		sym    string
		strike float64
		typ    models.InstrumentType
		ok     bool
	}{
		{"NIFTY25SEP24500PE", 24500, models.Put, true},
		{"NIFTY25SEP25000CE", 25000, models.Call, true},
		{"nifty25sep24500pe", 24500, models.Put, true},
		{"NIFTY25SEPFUT", 0, "", false},
		{"NIFTYPE", 0, "", false},
	}
	for _, c := range cases {
		strike, typ, err := parseOptionSymbol(c.sym)
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", c.sym, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("%s: expected error", c.sym)
			}
			continue
		}
		if strike != c.strike || typ != c.typ {
			t.Fatalf("%s: got %v/%v, want %v/%v", c.sym, strike, typ, c.strike, c.typ)
		}
	}
}

func TestRecordEntrySetsContext(t *testing.T) {
	store := newFakeJournalStore()
	uc := NewJournalUseCase(store)

	rec, err := uc.RecordEntry(context.Background(), models.RecordEntryRequest{
		Symbol:       "NIFTY25SEP24500PE",
		Quantity:     75,
		AveragePrice: 120,
		Source:       "app_manual",
		Spot:         24600,
		VIX:          13.5,
		IVRank:       55,
		DTE:          3,
		Delta:        -0.22,
		WasPlanned:   true,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if rec.TradeID == "" {
		t.Fatal("trade id not generated")
	}
	if rec.Strike != 24500 || rec.InstrumentType != models.Put {
		t.Fatalf("contract = %v %v", rec.Strike, rec.InstrumentType)
	}
	if rec.DayOfWeek == "" || rec.EntryTime.IsZero() {
		t.Fatal("entry timing not derived")
	}
	if rec.IsZeroDTE {
		t.Fatal("3 DTE flagged as zero DTE")
	}
	if rec.Closed() {
		t.Fatal("fresh entry reports closed")
	}
}

func TestRecordExitDerivesPnL(t *testing.T) {
	store := newFakeJournalStore()
	uc := NewJournalUseCase(store)

	rec, err := uc.RecordEntry(context.Background(), models.RecordEntryRequest{
		Symbol:       "NIFTY25SEP24500PE",
		Quantity:     75,
		AveragePrice: 120,
		Source:       "app_manual",
		Spot:         24600,
		DTE:          3,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	closed, err := uc.RecordExit(context.Background(), models.RecordExitRequest{
		TradeID:        rec.TradeID,
		ExitPrice:      60,
		ExitReason:     "target",
		EmotionalState: "calm",
	})
	if err != nil {
		t.Fatalf("RecordExit: %v", err)
	}
	if closed.RealizedPnL != (120-60)*75 {
		t.Fatalf("pnl = %v, want %v", closed.RealizedPnL, (120-60)*75)
	}
	if closed.RealizedPnLPct != 50 {
		t.Fatalf("pnl pct = %v, want 50", closed.RealizedPnLPct)
	}
	if !closed.Closed() {
		t.Fatal("exit not recorded")
	}

	if _, err := uc.RecordExit(context.Background(), models.RecordExitRequest{
		TradeID:   rec.TradeID,
		ExitPrice: 50,
	}); err == nil {
		t.Fatal("expected error closing an already closed trade")
	}
}

func TestAutopsyRequiresClosedTrade(t *testing.T) {
	store := newFakeJournalStore()
	uc := NewJournalUseCase(store)

	rec, err := uc.RecordEntry(context.Background(), models.RecordEntryRequest{
		Symbol:       "NIFTY25SEP24500CE",
		Quantity:     75,
		AveragePrice: 90,
		Source:       "app_manual",
		Spot:         24400,
		DTE:          2,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if _, err := uc.Autopsy(context.Background(), rec.TradeID); err == nil {
		t.Fatal("expected error for open trade")
	}
	if _, err := uc.Autopsy(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown trade")
	}
}
