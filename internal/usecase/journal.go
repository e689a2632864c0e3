package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	"NiftyPulse/internal/engine"
	"NiftyPulse/internal/journal"
	"NiftyPulse/pkg/logger"
	"NiftyPulse/pkg/util"
)

// JournalUseCase records trade entries and exits and serves the
// performance summary and per-trade autopsy.
type JournalUseCase struct {
	store  domrepo.JournalStore
	logger *logger.Logger
}

func NewJournalUseCase(store domrepo.JournalStore) *JournalUseCase {
	return &JournalUseCase{store: store}
}

// SetLogger injects a logger.
func (uc *JournalUseCase) SetLogger(l *logger.Logger) { uc.logger = l }

// RecordEntry journals a new short position and returns the stored record.
func (uc *JournalUseCase) RecordEntry(ctx context.Context, req models.RecordEntryRequest) (models.TradeRecord, error) {
	strike, typ, err := parseOptionSymbol(req.Symbol)
	if err != nil {
		return models.TradeRecord{}, err
	}

	now := util.NowIST()
	expiry := engine.NextExpiry(now)

	t := models.TradeRecord{
		TradeID:        uuid.NewString(),
		SessionID:      req.SessionID,
		Source:         req.Source,
		Symbol:         req.Symbol,
		InstrumentType: typ,
		Strike:         strike,
		ExpiryDate:     expiry,
		Quantity:       req.Quantity,
		EntryTime:      now,
		EntryPrice:     req.AveragePrice,
		SpotAtEntry:    req.Spot,
		VIXAtEntry:     req.VIX,
		IVRankAtEntry:  req.IVRank,
		DTEAtEntry:     req.DTE,
		DeltaAtEntry:   req.Delta,
		GammaAtEntry:   req.Gamma,
		ThetaAtEntry:   req.Theta,
		DayOfWeek:      now.Weekday().String(),
		HourOfEntry:    now.Hour(),
		IsExpiryDay:    sameDay(now, expiry),
		IsZeroDTE:      req.DTE == 0,
		WasPlanned:     req.WasPlanned,
		Notes:          req.Notes,
	}

	if err := uc.store.RecordEntry(ctx, &t); err != nil {
		return models.TradeRecord{}, fmt.Errorf("record entry: %w", err)
	}
	if uc.logger != nil {
		uc.logger.Info("trade entry journaled",
			logger.String("trade_id", t.TradeID),
			logger.String("symbol", t.Symbol))
	}
	return t, nil
}

// RecordExit closes a journaled trade, computing realized PnL and hold time.
func (uc *JournalUseCase) RecordExit(ctx context.Context, req models.RecordExitRequest) (models.TradeRecord, error) {
	t, err := uc.store.Trade(ctx, req.TradeID)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("lookup trade: %w", err)
	}
	if t.Closed() {
		return models.TradeRecord{}, fmt.Errorf("trade %s already closed", req.TradeID)
	}

	now := util.NowIST()
	t.ExitTime = now
	t.ExitPrice = req.ExitPrice
	t.ExitReason = req.ExitReason
	t.SpotAtExit = req.Spot
	t.VIXAtExit = req.VIX
	t.DeltaAtExit = req.Delta
	t.HoldMinutes = int64(now.Sub(t.EntryTime).Minutes())
	t.RealizedPnL, t.RealizedPnLPct = journal.ClosePnL(t.EntryPrice, req.ExitPrice, t.Quantity)
	if req.EmotionalState != "" {
		t.EmotionalState = req.EmotionalState
	}
	if req.Notes != "" {
		t.Notes = req.Notes
	}

	if err := uc.store.RecordExit(ctx, &t); err != nil {
		return models.TradeRecord{}, fmt.Errorf("record exit: %w", err)
	}
	if uc.logger != nil {
		uc.logger.Info("trade exit journaled",
			logger.String("trade_id", t.TradeID),
			logger.Float64("pnl", t.RealizedPnL))
	}
	return t, nil
}

// Performance summarizes closed trades over the trailing window.
func (uc *JournalUseCase) Performance(ctx context.Context, days int) (models.PerformanceSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := util.NowIST().AddDate(0, 0, -days)
	trades, err := uc.store.ClosedSince(ctx, since)
	if err != nil {
		return models.PerformanceSummary{}, fmt.Errorf("closed trades: %w", err)
	}
	return journal.Summarize(trades, days), nil
}

// Autopsy runs the post-trade review for one closed trade.
func (uc *JournalUseCase) Autopsy(ctx context.Context, tradeID string) (journal.Autopsy, error) {
	t, err := uc.store.Trade(ctx, tradeID)
	if err != nil {
		return journal.Autopsy{}, fmt.Errorf("lookup trade: %w", err)
	}
	if !t.Closed() {
		return journal.Autopsy{}, fmt.Errorf("trade %s is still open", tradeID)
	}
	return journal.Analyze(t), nil
}

// OpenTrades lists trades without a recorded exit.
func (uc *JournalUseCase) OpenTrades(ctx context.Context) ([]models.TradeRecord, error) {
	return uc.store.OpenTrades(ctx)
}

// parseOptionSymbol extracts strike and type from an exchange trading
// symbol such as NIFTY25SEP24500PE.
func parseOptionSymbol(sym string) (float64, models.InstrumentType, error) {
	s := strings.ToUpper(strings.TrimSpace(sym))
	var typ models.InstrumentType
	switch {
	case strings.HasSuffix(s, string(models.Call)):
		typ = models.Call
	case strings.HasSuffix(s, string(models.Put)):
		typ = models.Put
	default:
		return 0, "", fmt.Errorf("symbol %q is not an option", sym)
	}

	body := s[:len(s)-2]
	i := len(body)
	for i > 0 && body[i-1] >= '0' && body[i-1] <= '9' {
		i--
	}
	if i == len(body) {
		return 0, "", fmt.Errorf("symbol %q has no strike", sym)
	}
	strike := util.ParseFloatDefault(body[i:], 0)
	if strike <= 0 {
		return 0, "", fmt.Errorf("symbol %q has no strike", sym)
	}
	return strike, typ, nil
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
