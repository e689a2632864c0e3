package di

import (
	"context"
	"fmt"
	"time"

	"NiftyPulse/internal/domain/repository"
	domsvc "NiftyPulse/internal/domain/service"
	"NiftyPulse/internal/engine"
	mid "NiftyPulse/internal/middleware"
	internalrepo "NiftyPulse/internal/repository"
	"NiftyPulse/internal/service/kite"
	"NiftyPulse/internal/usecase"
	pkgch "NiftyPulse/pkg/clickhouse"
	"NiftyPulse/pkg/config"
	pkgkafka "NiftyPulse/pkg/kafka"
	"NiftyPulse/pkg/metrics"
	"NiftyPulse/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.daily_bars (
			date Date,
			open Float64, high Float64, low Float64, close Float64,
			vix Float64,
			imported_at DateTime
		) ENGINE=ReplacingMergeTree(imported_at) ORDER BY date`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.trades (
			trade_id String, session_id String, source String,
			symbol String, instrument_type String, strike Float64,
			expiry_date Date, quantity Int64,
			entry_time DateTime, entry_price Float64,
			exit_time DateTime, exit_price Float64, exit_reason String,
			realized_pnl Float64, realized_pnl_pct Float64,
			spot_at_entry Float64, vix_at_entry Float64, iv_rank_at_entry Float64,
			dte_at_entry Int32, delta_at_entry Float64, gamma_at_entry Float64, theta_at_entry Float64,
			spot_at_exit Float64, vix_at_exit Float64, delta_at_exit Float64,
			day_of_week String, is_expiry_day UInt8, is_zero_dte UInt8,
			hour_of_entry Int32, hold_minutes Int64,
			max_profit Float64, max_loss Float64, was_planned UInt8,
			emotional_state String, notes String,
			updated_at DateTime
		) ENGINE=ReplacingMergeTree(updated_at) ORDER BY trade_id`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.market_snapshots (
			ts DateTime,
			spot Float64, vix Float64, iv_rank Float64,
			dte Int32, pcr Float64, max_pain Float64
		) ENGINE=MergeTree ORDER BY ts`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSnapshotStorage creates ClickHouse snapshot storage.
func ProvideSnapshotStorage(chClient *pkgch.Client, cfg *config.Config) repository.SnapshotStorage {
	return internalrepo.NewClickHouseSnapshotStorage(chClient.DB(), cfg.ClickHouse.Database+".market_snapshots")
}

// ProvideSnapshotPublisher creates Kafka snapshot publisher.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SnapshotPublisher {
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
}

// ProvideHistoryStore creates the ClickHouse daily bar store.
func ProvideHistoryStore(chClient *pkgch.Client) repository.HistoryStore {
	return internalrepo.NewCHHistoryStore(chClient)
}

// ProvideJournalStore creates the ClickHouse trade journal store.
func ProvideJournalStore(chClient *pkgch.Client) repository.JournalStore {
	return internalrepo.NewCHJournalStore(chClient)
}

// ProvideKiteClient creates the Kite REST quote provider.
func ProvideKiteClient(cfg *config.Config) domsvc.QuoteProvider {
	return kite.NewClient(
		cfg.Kite.APIKey,
		cfg.Kite.AccessToken,
		cfg.Kite.BaseURL,
		cfg.Kite.SpotSymbol,
		cfg.Kite.VIXSymbol,
		nil,
	)
}

// ProvideKiteTicker creates the Kite WebSocket spot stream.
func ProvideKiteTicker(cfg *config.Config) repository.SpotStream {
	return kite.NewTicker(
		cfg.Kite.APIKey,
		cfg.Kite.AccessToken,
		cfg.Kite.WebSocketURL,
		cfg.Kite.SpotSymbol,
		cfg.Kite.ReconnectDelay,
		cfg.Kite.PingInterval,
		nil,
	)
}

// ProvideEngine creates the recommendation engine.
func ProvideEngine(cfg *config.Config) *engine.Engine {
	return engine.New(cfg.Engine.RiskFreeRate, cfg.Engine.StrikeStep)
}

// ProvideSnapshotProcessor creates the snapshot processor use case.
func ProvideSnapshotProcessor(
	pub repository.SnapshotPublisher,
	store repository.SnapshotStorage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.SnapshotProcessor {
	return usecase.NewSnapshotProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideSpotCollector creates the spot collector use case.
func ProvideSpotCollector(
	stream repository.SpotStream,
	processor *usecase.SnapshotProcessor,
	metrics repository.Metrics,
) *usecase.SpotCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewTickPipeline(processor, metrics,
		mid.WithMaxRPS(20),
		mid.WithBufferSize(1000),
	)
	return usecase.NewSpotCollector(stream, processor, metrics, pipe)
}

// ProvideAnalyzeUseCase creates the analysis use case.
func ProvideAnalyzeUseCase(
	quotes domsvc.QuoteProvider,
	history repository.HistoryStore,
	eng *engine.Engine,
	metrics repository.Metrics,
	processor *usecase.SnapshotProcessor,
	cfg *config.Config,
) *usecase.AnalyzeUseCase {
	return usecase.NewAnalyzeUseCase(quotes, history, eng, metrics, processor, cfg.Engine.IVLookback)
}

// ProvideHistoryUseCase creates the history use case.
func ProvideHistoryUseCase(store repository.HistoryStore) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(store)
}

// ProvideJournalUseCase creates the trade journal use case.
func ProvideJournalUseCase(store repository.JournalStore) *usecase.JournalUseCase {
	return usecase.NewJournalUseCase(store)
}

// ProvideImportUseCase creates the CSV import use case.
func ProvideImportUseCase(store repository.HistoryStore) *usecase.ImportUseCase {
	return usecase.NewImportUseCase(store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.SpotCollector,
	analyze *usecase.AnalyzeUseCase,
	history *usecase.HistoryUseCase,
	journal *usecase.JournalUseCase,
	importer *usecase.ImportUseCase,
	chClient *pkgch.Client,
) *server.App {
	app := server.New(cfg, collector, analyze, history, journal, importer, chClient)
	// attach snapshot processor to app for closing resources via collector
	if collector != nil {
		app.SnapshotProc = collector.Processor()
	}
	return app
}
