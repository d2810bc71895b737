//go:build wireinject
// +build wireinject

package di

import (
	"CoinSentry/pkg/config"
	"CoinSentry/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
    wire.Build(
        // Observability
        ProvideLogger,
        ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideStorage,
		ProvideAlertPublisher,
		ProvideHistoryStore,
		ProvideBinanceStream,

		// Engine services
		ProvideQualityMonitor,
		ProvideBotDetector,
		ProvideVolumeAnalyzer,
		ProvideVolumeAnalytics,

        // Use cases
        ProvideBatchPipeline,
        ProvideKafkaBatchesHandler,
        ProvideTickProcessor,
        ProvideTickCollector,
        ProvideSeriesSeeder,
        ProvideVolumeSummary,
        ProvideHistoryUseCase,
        ProvideWebhookNotifier,
        ProvideWashScanJob,
        ProvideScanQueue,
        ProvideScanScheduler,

        // HTTP
        ProvideReportsEchoHandler,

        // Application server
        ProvideApp,
    )
    return &server.App{}, nil
}
