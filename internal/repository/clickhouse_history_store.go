package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	pkgch "NiftyPulse/pkg/clickhouse"
	applogger "NiftyPulse/pkg/logger"
)

const historyTable = "niftypulse.daily_bars"

// CHHistoryStore implements HistoryStore backed by ClickHouse. The table
// is a ReplacingMergeTree keyed by date, so re-imports of the same day
// collapse to the latest row.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) DailyBars(ctx context.Context, from, to time.Time) ([]models.DailyBar, error) {
	start := time.Now()
	const qtpl = `
        SELECT date, open, high, low, close, vix
        FROM %s FINAL
        WHERE date >= ? AND date <= ?
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, historyTable)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_bars query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("daily bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyBar, 0, 512)
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.VIX); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse daily_bars ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHHistoryStore) LatestNBars(ctx context.Context, n int) ([]models.DailyBar, error) {
	const qtpl = `
        SELECT date, open, high, low, close, vix
        FROM %s FINAL
        ORDER BY date DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, historyTable)
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_bars query error", applogger.Int("limit", n), applogger.Error(err))
		}
		return nil, fmt.Errorf("latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.DailyBar, 0, n)
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.VIX); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func (s *CHHistoryStore) UpsertBar(ctx context.Context, bar models.DailyBar) error {
	q := fmt.Sprintf("INSERT INTO %s (date, open, high, low, close, vix, imported_at) VALUES (?, ?, ?, ?, ?, ?, ?)", historyTable)
	_, err := s.db.ExecContext(ctx, q, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.VIX, time.Now())
	if err != nil {
		return fmt.Errorf("upsert bar: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) UpsertBars(ctx context.Context, bars []models.DailyBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	now := time.Now()
	inserted := 0
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b.Date.IsZero() || b.High < b.Low {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, b.Date, b.Open, b.High, b.Low, b.Close, b.VIX, now)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (date, open, high, low, close, vix, imported_at) VALUES %s", historyTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return inserted, fmt.Errorf("upsert bars: %w", err)
		}
		inserted += len(values)
	}
	return inserted, nil
}
