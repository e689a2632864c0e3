//go:build wireinject
// +build wireinject

package di

import (
	"NiftyPulse/pkg/config"
	"NiftyPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories (with business logic)
		ProvideSnapshotStorage,
		ProvideSnapshotPublisher,
		ProvideHistoryStore,
		ProvideJournalStore,

		// Broker services
		ProvideKiteClient,
		ProvideKiteTicker,

		// Engine
		ProvideEngine,

		// Use cases
		ProvideSnapshotProcessor,
		ProvideSpotCollector,
		ProvideAnalyzeUseCase,
		ProvideHistoryUseCase,
		ProvideJournalUseCase,
		ProvideImportUseCase,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
