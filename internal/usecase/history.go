package usecase

import (
	"context"
	"fmt"
	"time"

	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	"NiftyPulse/pkg/util"
)

// HistoryUseCase reads and maintains the daily bar history.
type HistoryUseCase struct {
	store domrepo.HistoryStore
}

func NewHistoryUseCase(store domrepo.HistoryStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	From  string
	To    string
	Limit int
}

// GetHistory returns daily bars for a date range, newest last. Missing
// bounds default to the trailing year.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) ([]models.DailyBar, error) {
	if p.Limit <= 0 {
		p.Limit = 500
	}
	now := time.Now().UTC()
	to := util.ParseTimeDefault(p.To, now)
	from := util.ParseTimeDefault(p.From, to.AddDate(-1, 0, 0))
	if from.After(to) {
		return nil, fmt.Errorf("from is after to")
	}

	bars, err := uc.store.DailyBars(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily bars: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[len(bars)-p.Limit:]
	}
	return bars, nil
}

// UpsertBar inserts or replaces one daily bar.
func (uc *HistoryUseCase) UpsertBar(ctx context.Context, req models.UpsertBarRequest) (models.DailyBar, error) {
	day, ok := util.ParseTradingDay(req.Date)
	if !ok {
		return models.DailyBar{}, fmt.Errorf("unparseable date: %q", req.Date)
	}
	if req.High < req.Low {
		return models.DailyBar{}, fmt.Errorf("high %v below low %v", req.High, req.Low)
	}
	bar := models.DailyBar{
		Date:  day,
		Open:  req.Open,
		High:  req.High,
		Low:   req.Low,
		Close: req.Close,
		VIX:   req.VIX,
	}
	if err := uc.store.UpsertBar(ctx, bar); err != nil {
		return models.DailyBar{}, fmt.Errorf("upsert bar: %w", err)
	}
	return bar, nil
}
