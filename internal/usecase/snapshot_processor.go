package usecase

import (
	"context"
	"fmt"
	"time"

	"NiftyPulse/internal/domain/models"
	drepo "NiftyPulse/internal/domain/repository"
	"NiftyPulse/internal/engine"
)

// SnapshotProcessor turns spot ticks into market snapshots and routes
// them to the configured backend.
type SnapshotProcessor struct {
	pub     drepo.SnapshotPublisher
	store   drepo.SnapshotStorage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewSnapshotProcessor creates a new SnapshotProcessor instance.
func NewSnapshotProcessor(
	pub drepo.SnapshotPublisher,
	store drepo.SnapshotStorage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *SnapshotProcessor {
	return &SnapshotProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process converts a single tick into a snapshot and routes it to the
// configured backend.
func (p *SnapshotProcessor) Process(ctx context.Context, t *models.SpotTick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}

	day := time.Unix(t.Timestamp, 0).UTC()
	snap := &models.MarketSnapshot{
		Timestamp: day,
		Spot:      t.Price,
		VIX:       t.VIX,
		DTE:       engine.ResidualDTE(day),
	}
	return p.StoreSnapshot(ctx, snap)
}

// StoreSnapshot routes a fully populated snapshot, as produced by the
// analyzer, to the configured backend.
func (p *SnapshotProcessor) StoreSnapshot(ctx context.Context, snap *models.MarketSnapshot) error {
	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, snap)
	case "clickhouse":
		err = p.store.Store(ctx, snap)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("snapshot")
		return fmt.Errorf("store snapshot: %w", err)
	}

	p.metrics.RecordSnapshotSent(p.backend)
	p.metrics.RecordLatency("snapshot", time.Since(start).Seconds())
	return nil
}

// StoreBatch routes multiple snapshots in a batch.
func (p *SnapshotProcessor) StoreBatch(ctx context.Context, snaps []*models.MarketSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, snaps)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, snaps)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("snapshot_batch")
		return fmt.Errorf("store snapshot batch: %w", err)
	}

	for range snaps {
		p.metrics.RecordSnapshotSent(p.backend)
	}
	p.metrics.RecordLatency("snapshot_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *SnapshotProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
