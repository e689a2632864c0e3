package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"NiftyPulse/internal/domain/models"
)

type fakeHistoryStore struct {
	bars []models.DailyBar
}

func (f *fakeHistoryStore) DailyBars(ctx context.Context, from, to time.Time) ([]models.DailyBar, error) {
	out := make([]models.DailyBar, 0, len(f.bars))
	for _, b := range f.bars {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) LatestNBars(ctx context.Context, n int) ([]models.DailyBar, error) {
	if len(f.bars) > n {
		return f.bars[len(f.bars)-n:], nil
	}
	return f.bars, nil
}

func (f *fakeHistoryStore) UpsertBar(ctx context.Context, bar models.DailyBar) error {
	f.bars = append(f.bars, bar)
	return nil
}

func (f *fakeHistoryStore) UpsertBars(ctx context.Context, bars []models.DailyBar) (int, error) {
	f.bars = append(f.bars, bars...)
	return len(bars), nil
}

func TestImportCSVMergesVIX(t *testing.T) {
	ohlc := strings.Join([]string{
		"Date,Open,High,Low,Close",
		"01-Sep-2025,24500,24620,24450,24600",
		"02-Sep-2025,24600,24700,24550,24680",
		"bad-date,1,2,3,4",
	}, "\n")
	vix := strings.Join([]string{
		"Date,Open,High,Low,Close",
		"01-Sep-2025,12.1,12.9,11.8,12.5",
	}, "\n")

	store := &fakeHistoryStore{}
	uc := NewImportUseCase(store)
	res, err := uc.ImportCSV(context.Background(), strings.NewReader(ohlc), strings.NewReader(vix))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Rows != 2 || res.Skipped != 1 {
		t.Fatalf("rows=%d skipped=%d, want 2/1", res.Rows, res.Skipped)
	}
	if len(store.bars) != 2 {
		t.Fatalf("stored %d bars", len(store.bars))
	}
	if store.bars[0].VIX != 12.5 {
		t.Fatalf("first bar VIX = %v, want 12.5", store.bars[0].VIX)
	}
	if store.bars[1].VIX != 0 {
		t.Fatalf("second bar VIX = %v, want 0 for no match", store.bars[1].VIX)
	}
}

func TestImportCSVCommaNumbers(t *testing.T) {
	ohlc := strings.Join([]string{
		`Date,Open,High,Low,Close`,
		`"03-09-2025","24,500.00","24,620.50","24,450.00","24,600.25"`,
	}, "\n")

	store := &fakeHistoryStore{}
	uc := NewImportUseCase(store)
	res, err := uc.ImportCSV(context.Background(), strings.NewReader(ohlc), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("rows = %d, want 1", res.Rows)
	}
	if store.bars[0].High != 24620.50 {
		t.Fatalf("high = %v, want 24620.50", store.bars[0].High)
	}
}

func TestImportCSVMissingColumn(t *testing.T) {
	ohlc := "Date,Open,High,Low\n01-Sep-2025,1,2,3\n"
	uc := NewImportUseCase(&fakeHistoryStore{})
	if _, err := uc.ImportCSV(context.Background(), strings.NewReader(ohlc), nil); err == nil {
		t.Fatal("expected error for missing close column")
	}
}

func TestImportCSVDropsInvertedRange(t *testing.T) {
	ohlc := strings.Join([]string{
		"Date,Open,High,Low,Close",
		"01-Sep-2025,24500,24400,24600,24550",
		"02-Sep-2025,24600,24700,24550,24680",
	}, "\n")

	store := &fakeHistoryStore{}
	uc := NewImportUseCase(store)
	res, err := uc.ImportCSV(context.Background(), strings.NewReader(ohlc), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Rows != 1 || res.Skipped != 1 {
		t.Fatalf("rows=%d skipped=%d, want 1/1", res.Rows, res.Skipped)
	}
}
