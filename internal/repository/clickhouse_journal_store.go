package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	pkgch "NiftyPulse/pkg/clickhouse"
	applogger "NiftyPulse/pkg/logger"
)

const journalTable = "niftypulse.trades"

// CHJournalStore implements JournalStore on a ReplacingMergeTree keyed by
// trade_id and versioned by updated_at: recording an exit re-inserts the
// full row and the merge keeps the newest version.
type CHJournalStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.JournalStore = (*CHJournalStore)(nil)

func NewCHJournalStore(ch *pkgch.Client) *CHJournalStore {
	return &CHJournalStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHJournalStore) SetLogger(l *applogger.Logger) { s.l = l }

const journalColumns = `trade_id, session_id, source, symbol, instrument_type, strike, expiry_date, quantity,
		entry_time, entry_price, exit_time, exit_price, exit_reason,
		realized_pnl, realized_pnl_pct,
		spot_at_entry, vix_at_entry, iv_rank_at_entry, dte_at_entry,
		delta_at_entry, gamma_at_entry, theta_at_entry,
		spot_at_exit, vix_at_exit, delta_at_exit,
		day_of_week, is_expiry_day, is_zero_dte, hour_of_entry, hold_minutes,
		max_profit, max_loss, was_planned, emotional_state, notes, updated_at`

func (s *CHJournalStore) insert(ctx context.Context, t *models.TradeRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		journalTable, journalColumns)
	_, err := s.db.ExecContext(ctx, q,
		t.TradeID, t.SessionID, t.Source, t.Symbol, string(t.InstrumentType), t.Strike, t.ExpiryDate, t.Quantity,
		t.EntryTime, t.EntryPrice, t.ExitTime, t.ExitPrice, t.ExitReason,
		t.RealizedPnL, t.RealizedPnLPct,
		t.SpotAtEntry, t.VIXAtEntry, t.IVRankAtEntry, t.DTEAtEntry,
		t.DeltaAtEntry, t.GammaAtEntry, t.ThetaAtEntry,
		t.SpotAtExit, t.VIXAtExit, t.DeltaAtExit,
		t.DayOfWeek, t.IsExpiryDay, t.IsZeroDTE, t.HourOfEntry, t.HoldMinutes,
		t.MaxProfit, t.MaxLoss, t.WasPlanned, t.EmotionalState, t.Notes, time.Now(),
	)
	return err
}

func (s *CHJournalStore) RecordEntry(ctx context.Context, t *models.TradeRecord) error {
	if err := s.insert(ctx, t); err != nil {
		return fmt.Errorf("record entry: %w", err)
	}
	if s.l != nil {
		s.l.Info("trade entry recorded",
			applogger.String("trade_id", t.TradeID),
			applogger.String("symbol", t.Symbol),
			applogger.Float64("entry_price", t.EntryPrice),
		)
	}
	return nil
}

func (s *CHJournalStore) RecordExit(ctx context.Context, t *models.TradeRecord) error {
	if err := s.insert(ctx, t); err != nil {
		return fmt.Errorf("record exit: %w", err)
	}
	if s.l != nil {
		s.l.Info("trade exit recorded",
			applogger.String("trade_id", t.TradeID),
			applogger.Float64("realized_pnl", t.RealizedPnL),
			applogger.String("exit_reason", t.ExitReason),
		)
	}
	return nil
}

func (s *CHJournalStore) scanRow(rows *sql.Rows) (models.TradeRecord, error) {
	var t models.TradeRecord
	var typ string
	var updated time.Time
	err := rows.Scan(
		&t.TradeID, &t.SessionID, &t.Source, &t.Symbol, &typ, &t.Strike, &t.ExpiryDate, &t.Quantity,
		&t.EntryTime, &t.EntryPrice, &t.ExitTime, &t.ExitPrice, &t.ExitReason,
		&t.RealizedPnL, &t.RealizedPnLPct,
		&t.SpotAtEntry, &t.VIXAtEntry, &t.IVRankAtEntry, &t.DTEAtEntry,
		&t.DeltaAtEntry, &t.GammaAtEntry, &t.ThetaAtEntry,
		&t.SpotAtExit, &t.VIXAtExit, &t.DeltaAtExit,
		&t.DayOfWeek, &t.IsExpiryDay, &t.IsZeroDTE, &t.HourOfEntry, &t.HoldMinutes,
		&t.MaxProfit, &t.MaxLoss, &t.WasPlanned, &t.EmotionalState, &t.Notes, &updated,
	)
	t.InstrumentType = models.InstrumentType(typ)
	return t, err
}

func (s *CHJournalStore) query(ctx context.Context, where string, args ...interface{}) ([]models.TradeRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE %s ORDER BY entry_time ASC", journalColumns, journalTable, where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse journal query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		t, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *CHJournalStore) Trade(ctx context.Context, tradeID string) (models.TradeRecord, error) {
	trades, err := s.query(ctx, "trade_id = ?", tradeID)
	if err != nil {
		return models.TradeRecord{}, err
	}
	if len(trades) == 0 {
		return models.TradeRecord{}, fmt.Errorf("trade %s not found", tradeID)
	}
	return trades[0], nil
}

func (s *CHJournalStore) OpenTrades(ctx context.Context) ([]models.TradeRecord, error) {
	return s.query(ctx, "exit_time = toDateTime(0)")
}

func (s *CHJournalStore) ClosedSince(ctx context.Context, since time.Time) ([]models.TradeRecord, error) {
	return s.query(ctx, "exit_time > toDateTime(0) AND exit_time >= ?", since)
}
