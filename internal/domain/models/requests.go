package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	DTE    int     `query:"dte" json:"dte" default:"-1" validate:"gte=-1,lte=45"`
	Window float64 `query:"window" json:"window" default:"600" validate:"gte=100,lte=3000"`
}

type HistoryRequest struct {
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type UpsertBarRequest struct {
	Date  string  `json:"date" validate:"required"`
	Open  float64 `json:"open" validate:"gt=0"`
	High  float64 `json:"high" validate:"gt=0"`
	Low   float64 `json:"low" validate:"gt=0"`
	Close float64 `json:"close" validate:"gt=0"`
	VIX   float64 `json:"vix" validate:"gte=0"`
}

type RecordEntryRequest struct {
	Symbol       string  `json:"symbol" validate:"required"`
	Quantity     int64   `json:"quantity" validate:"required"`
	AveragePrice float64 `json:"average_price" validate:"gt=0"`
	OrderID      string  `json:"order_id"`
	SessionID    string  `json:"session_id"`
	Source       string  `json:"source" default:"app_manual" validate:"oneof=app_auto app_manual broker_app unknown"`

	Spot   float64 `json:"spot" validate:"gt=0"`
	VIX    float64 `json:"vix" validate:"gte=0"`
	IVRank float64 `json:"iv_rank" validate:"gte=0,lte=100"`
	DTE    int     `json:"dte" validate:"gte=0"`
	Delta  float64 `json:"delta"`
	Gamma  float64 `json:"gamma"`
	Theta  float64 `json:"theta"`

	WasPlanned bool   `json:"was_planned"`
	Notes      string `json:"notes"`
}

type RecordExitRequest struct {
	TradeID        string  `json:"trade_id" validate:"required"`
	ExitPrice      float64 `json:"exit_price" validate:"gt=0"`
	OrderID        string  `json:"order_id"`
	ExitReason     string  `json:"exit_reason" default:"manual" validate:"oneof=manual stop_loss target gamma_panic expiry"`
	EmotionalState string  `json:"emotional_state" validate:"omitempty,oneof=calm fear greed revenge"`
	Notes          string  `json:"notes"`

	Spot  float64 `json:"spot" validate:"gte=0"`
	VIX   float64 `json:"vix" validate:"gte=0"`
	Delta float64 `json:"delta"`
}

type PerformanceRequest struct {
	Days int `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}
