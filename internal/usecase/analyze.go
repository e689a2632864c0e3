package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NiftyPulse/internal/chain"
	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	domsvc "NiftyPulse/internal/domain/service"
	"NiftyPulse/internal/engine"
	"NiftyPulse/pkg/logger"
	"NiftyPulse/pkg/util"
)

// AnalyzeUseCase produces the full market analysis: live quotes joined with
// the option chain, the tiered strangle recommendation, and chain analytics.
type AnalyzeUseCase struct {
	quotes     domsvc.QuoteProvider
	history    domrepo.HistoryStore
	eng        *engine.Engine
	metrics    domrepo.Metrics
	proc       *SnapshotProcessor
	logger     *logger.Logger
	ivLookback int

	mu          sync.Mutex
	instruments models.InstrumentSnapshot
}

func NewAnalyzeUseCase(
	quotes domsvc.QuoteProvider,
	history domrepo.HistoryStore,
	eng *engine.Engine,
	metrics domrepo.Metrics,
	proc *SnapshotProcessor,
	ivLookback int,
) *AnalyzeUseCase {
	if ivLookback <= 0 {
		ivLookback = 252
	}
	return &AnalyzeUseCase{
		quotes:     quotes,
		history:    history,
		eng:        eng,
		metrics:    metrics,
		proc:       proc,
		ivLookback: ivLookback,
	}
}

// SetLogger injects a logger.
func (uc *AnalyzeUseCase) SetLogger(l *logger.Logger) { uc.logger = l }

type AnalyzeParams struct {
	DTE    int
	Window float64
}

// AnalyzeResult is the full analysis payload for one request.
type AnalyzeResult struct {
	Timestamp      time.Time             `json:"timestamp"`
	MarketOpen     bool                  `json:"market_open"`
	Spot           float64               `json:"spot"`
	VIX            float64               `json:"vix"`
	Expiry         string                `json:"expiry"`
	DTE            int                   `json:"dte"`
	Recommendation models.Recommendation `json:"recommendation"`
	Chain          chain.Analytics       `json:"chain"`
	Degraded       bool                  `json:"degraded"`
	Warnings       []string              `json:"warnings,omitempty"`
}

// Analyze runs the full pipeline: spot quote, instrument universe, chain
// quotes, history, then the engine and chain analytics. A failed quote or
// chain fetch degrades the result instead of failing the request.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, p AnalyzeParams) (*AnalyzeResult, error) {
	if p.Window <= 0 {
		p.Window = 600
	}

	now := util.NowIST()
	res := &AnalyzeResult{
		Timestamp:  now,
		MarketOpen: util.IsMarketHours(now),
	}

	bars, err := uc.history.LatestNBars(ctx, uc.ivLookback)
	if err != nil {
		uc.warn(res, "history unavailable: "+err.Error())
		bars = nil
	}

	spot, vix, err := uc.quotes.SpotQuote(ctx)
	if err != nil {
		uc.metrics.RecordError("quote")
		spot, vix = lastClose(bars)
		if spot <= 0 {
			return nil, fmt.Errorf("spot quote: %w", err)
		}
		res.Degraded = true
		uc.warn(res, "live quote unavailable, using last close")
	}
	res.Spot = spot
	res.VIX = vix

	day := now
	expiry := engine.NextExpiry(day)
	dte := engine.ResidualDTE(day)
	if p.DTE >= 0 {
		dte = p.DTE
	}
	res.Expiry = expiry.Format("2006-01-02")
	res.DTE = dte

	chainSnap := uc.fetchChain(ctx, res, day, expiry, spot, p.Window)

	state := models.MarketState{Spot: spot, VIX: vix, DaysToExpiry: dte}
	res.Recommendation = uc.eng.Recommend(state, bars, chainSnap)
	res.Chain = chain.Analyze(chainSnap, spot, uc.eng.StrikeStep())

	status := "live"
	if res.Degraded {
		status = "degraded"
	}
	uc.metrics.RecordRecommendation(status)
	uc.metrics.RecordSpot(spot, vix)

	uc.persist(ctx, res, dte)
	return res, nil
}

// fetchChain resolves the instrument universe and fetches live option
// quotes for strikes within the window. Any failure leaves the chain empty.
func (uc *AnalyzeUseCase) fetchChain(ctx context.Context, res *AnalyzeResult, day, expiry time.Time, spot, window float64) models.ChainSnapshot {
	snap, err := uc.ensureInstruments(ctx, day, expiry)
	if err != nil {
		uc.metrics.RecordChainMiss()
		res.Degraded = true
		uc.warn(res, "instrument universe unavailable: "+err.Error())
		return models.ChainSnapshot{}
	}

	near := snap.Near(spot, window)
	if len(near) == 0 {
		uc.metrics.RecordChainMiss()
		res.Degraded = true
		uc.warn(res, "no instruments within window")
		return models.ChainSnapshot{}
	}

	chainSnap, err := uc.quotes.OptionQuotes(ctx, near)
	if err != nil {
		uc.metrics.RecordChainMiss()
		res.Degraded = true
		uc.warn(res, "chain quotes unavailable: "+err.Error())
		return models.ChainSnapshot{}
	}
	return chainSnap
}

// ensureInstruments returns a current instrument snapshot, refreshing the
// cached one only when it no longer covers the trading day. A failed
// refresh falls back to the stale snapshot if one exists.
func (uc *AnalyzeUseCase) ensureInstruments(ctx context.Context, day, expiry time.Time) (models.InstrumentSnapshot, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.instruments.Populated() && uc.instruments.ValidFor(day) {
		return uc.instruments, nil
	}

	snap, err := uc.quotes.Instruments(ctx, expiry)
	if err != nil {
		if uc.instruments.Populated() {
			if uc.logger != nil {
				uc.logger.Warn("instrument refresh failed, reusing stale snapshot", logger.Error(err))
			}
			return uc.instruments, nil
		}
		return models.InstrumentSnapshot{}, err
	}
	uc.instruments = snap
	return snap, nil
}

// persist records the analysis context for post-trade review, best effort.
func (uc *AnalyzeUseCase) persist(ctx context.Context, res *AnalyzeResult, dte int) {
	if uc.proc == nil {
		return
	}
	snap := &models.MarketSnapshot{
		Timestamp: res.Timestamp,
		Spot:      res.Spot,
		VIX:       res.VIX,
		IVRank:    res.Recommendation.Signals.IVRank,
		DTE:       dte,
		PCR:       res.Chain.Metrics.PCR,
		MaxPain:   res.Chain.Metrics.MaxPain,
	}
	if err := uc.proc.StoreSnapshot(ctx, snap); err != nil && uc.logger != nil {
		uc.logger.Warn("snapshot persist failed", logger.Error(err))
	}
}

func (uc *AnalyzeUseCase) warn(res *AnalyzeResult, msg string) {
	res.Warnings = append(res.Warnings, msg)
	if uc.logger != nil {
		uc.logger.Warn(msg)
	}
}

// lastClose returns the most recent bar's close and VIX, or zeros when no
// history is loaded.
func lastClose(bars []models.DailyBar) (float64, float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	latest := bars[0]
	for _, b := range bars[1:] {
		if b.Date.After(latest.Date) {
			latest = b
		}
	}
	return latest.Close, latest.VIX
}
