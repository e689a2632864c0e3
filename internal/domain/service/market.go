package service

import (
	"context"
	"time"

	"NiftyPulse/internal/domain/models"
)

// QuoteProvider is the broker REST surface the analyzer needs: spot and
// VIX levels, option quotes by token, and the tradable contract universe.
type QuoteProvider interface {
	SpotQuote(ctx context.Context) (spot, vix float64, err error)
	OptionQuotes(ctx context.Context, instruments []models.Instrument) (models.ChainSnapshot, error)
	Instruments(ctx context.Context, expiry time.Time) (models.InstrumentSnapshot, error)
}
