package models

import "time"

// TradeRecord is one journaled trade. Entry fields are always set; exit
// fields stay zero until the trade is closed.
type TradeRecord struct {
	TradeID        string
	SessionID      string
	Source         string // "app_auto", "app_manual", "broker_app", "unknown"
	Symbol         string
	InstrumentType InstrumentType
	Strike         float64
	ExpiryDate     time.Time
	Quantity       int64

	EntryTime  time.Time
	EntryPrice float64

	ExitTime   time.Time
	ExitPrice  float64
	ExitReason string // "manual", "stop_loss", "target", "gamma_panic", "expiry"

	RealizedPnL    float64
	RealizedPnLPct float64

	SpotAtEntry   float64
	VIXAtEntry    float64
	IVRankAtEntry float64
	DTEAtEntry    int
	DeltaAtEntry  float64
	GammaAtEntry  float64
	ThetaAtEntry  float64

	SpotAtExit  float64
	VIXAtExit   float64
	DeltaAtExit float64

	DayOfWeek      string
	IsExpiryDay    bool
	IsZeroDTE      bool
	HourOfEntry    int
	HoldMinutes    int64
	MaxProfit      float64
	MaxLoss        float64
	WasPlanned     bool
	EmotionalState string // "calm", "fear", "greed", "revenge", ""
	Notes          string
}

// Closed reports whether the trade has an exit on record.
func (t TradeRecord) Closed() bool { return !t.ExitTime.IsZero() }

// PerformanceSummary aggregates journal outcomes over a window.
type PerformanceSummary struct {
	Days          int     `json:"days"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnL      float64 `json:"total_pnl"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
	AvgHoldMins   float64 `json:"avg_hold_minutes"`
	TradesInFear  int     `json:"trades_in_fear"`
	TradesInGreed int     `json:"trades_in_greed"`
	PanicExits    int     `json:"panic_exits"`
	ZeroDTETrades int     `json:"zero_dte_trades"`
}
