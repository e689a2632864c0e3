package repository

import (
	"context"
	"time"

	"NiftyPulse/internal/domain/models"
)

// HistoryStore provides access to the daily NIFTY/VIX history the range
// model and IV rank are computed from.
type HistoryStore interface {
	DailyBars(ctx context.Context, from, to time.Time) ([]models.DailyBar, error)
	LatestNBars(ctx context.Context, n int) ([]models.DailyBar, error)
	UpsertBar(ctx context.Context, bar models.DailyBar) error
	UpsertBars(ctx context.Context, bars []models.DailyBar) (int, error)
}

// JournalStore persists trade journal records.
type JournalStore interface {
	RecordEntry(ctx context.Context, t *models.TradeRecord) error
	RecordExit(ctx context.Context, t *models.TradeRecord) error
	Trade(ctx context.Context, tradeID string) (models.TradeRecord, error)
	OpenTrades(ctx context.Context) ([]models.TradeRecord, error)
	ClosedSince(ctx context.Context, since time.Time) ([]models.TradeRecord, error)
}
