package models

import "time"

// DailyBar is one day of index OHLC history plus the closing VIX level.
// VIX == 0 means the level was not recorded for that day.
type DailyBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	VIX   float64
}

// MarketState is the live input the recommendation engine works from.
type MarketState struct {
	Spot         float64
	VIX          float64
	DaysToExpiry int
	RiskFreeRate float64
}

// SpotTick is a single underlying quote from the broker stream.
type SpotTick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	VIX       float64
}

// MarketSnapshot is a periodic record of market context, persisted for
// post-trade analysis.
type MarketSnapshot struct {
	Timestamp time.Time
	Spot      float64
	VIX       float64
	IVRank    float64
	DTE       int
	PCR       float64
	MaxPain   float64
}
