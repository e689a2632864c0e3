package repository

import (
	"context"
	"time"

	"NiftyPulse/internal/domain/models"
)

type SpotStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, tokens []uint32) error
	Read(ctx context.Context) (<-chan *models.SpotTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type SnapshotPublisher interface {
	Publish(ctx context.Context, s *models.MarketSnapshot) error
	PublishBatch(ctx context.Context, snaps []*models.MarketSnapshot) error
	Close() error
}

type SnapshotStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, s *models.MarketSnapshot) error
	StoreBatch(ctx context.Context, snaps []*models.MarketSnapshot) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]*models.MarketSnapshot, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordRecommendation(state string)
	RecordSnapshotSent(backend string)
	RecordChainMiss()
	RecordError(kind string)
	RecordSpot(spot, vix float64)
	RecordLatency(op string, seconds float64)
}
