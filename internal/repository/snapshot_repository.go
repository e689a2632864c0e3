package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NiftyPulse/internal/domain/models"
	"NiftyPulse/internal/domain/repository"
	pkgkafka "NiftyPulse/pkg/kafka"
)

// ClickHouseSnapshotStorage implements SnapshotStorage for ClickHouse.
type ClickHouseSnapshotStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseSnapshotStorage creates ClickHouse snapshot storage.
func NewClickHouseSnapshotStorage(db *sql.DB, table string) repository.SnapshotStorage {
	return &ClickHouseSnapshotStorage{db: db, table: table}
}

func (s *ClickHouseSnapshotStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseSnapshotStorage) Store(ctx context.Context, snap *models.MarketSnapshot) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, spot, vix, iv_rank, dte, pcr, max_pain) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		snap.Timestamp,
		snap.Spot,
		snap.VIX,
		snap.IVRank,
		snap.DTE,
		snap.PCR,
		snap.MaxPain,
	)
	return err
}

func (s *ClickHouseSnapshotStorage) StoreBatch(ctx context.Context, snaps []*models.MarketSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(snaps); start += chunkSize {
		end := start + chunkSize
		if end > len(snaps) {
			end = len(snaps)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, snap := range snaps[start:end] {
			if snap == nil || snap.Timestamp.IsZero() || snap.Spot <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, snap.Timestamp, snap.Spot, snap.VIX, snap.IVRank, snap.DTE, snap.PCR, snap.MaxPain)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, spot, vix, iv_rank, dte, pcr, max_pain) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStorage) Query(ctx context.Context, from, to time.Time, limit int) ([]*models.MarketSnapshot, error) {
	q := fmt.Sprintf("SELECT ts, spot, vix, iv_rank, dte, pcr, max_pain FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*models.MarketSnapshot
	for rows.Next() {
		var snap models.MarketSnapshot
		if err := rows.Scan(&snap.Timestamp, &snap.Spot, &snap.VIX, &snap.IVRank, &snap.DTE, &snap.PCR, &snap.MaxPain); err != nil {
			return nil, err
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

func (s *ClickHouseSnapshotStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaSnapshotPublisher implements SnapshotPublisher for Kafka.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates a Kafka snapshot publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func snapshotPayload(s *models.MarketSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"ts":       s.Timestamp.Unix(),
		"spot":     s.Spot,
		"vix":      s.VIX,
		"iv_rank":  s.IVRank,
		"dte":      s.DTE,
		"pcr":      s.PCR,
		"max_pain": s.MaxPain,
	}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, s *models.MarketSnapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Timestamp.Format(time.RFC3339)), snapshotPayload(s))
}

func (p *KafkaSnapshotPublisher) PublishBatch(ctx context.Context, snaps []*models.MarketSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(snaps))
	for i, s := range snaps {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(s.Timestamp.Format(time.RFC3339)),
			Value: snapshotPayload(s),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
