package di

import (
    "context"
    "fmt"
    "time"

    "CoinSentry/internal/domain/repository"
    domsvc "CoinSentry/internal/domain/service"
    "CoinSentry/internal/handler/api"
    mid "CoinSentry/internal/middleware"
    internalrepo "CoinSentry/internal/repository"
    "CoinSentry/internal/service/binance"
    "CoinSentry/internal/service/notify"
    "CoinSentry/internal/services/analytics"
    "CoinSentry/internal/services/botdetect"
    "CoinSentry/internal/services/quality"
    "CoinSentry/internal/services/volume"
    "CoinSentry/internal/usecase"
    pkgch "CoinSentry/pkg/clickhouse"
    "CoinSentry/pkg/config"
    pkgkafka "CoinSentry/pkg/kafka"
    applogger "CoinSentry/pkg/logger"
    "CoinSentry/pkg/metrics"
    "CoinSentry/pkg/queue"
    "CoinSentry/pkg/server"

    "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the schema.
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
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.ticks (ts DateTime, symbol String, price Float64, volume Float64, source String, event_id String) ENGINE=MergeTree ORDER BY (symbol, ts)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.reddit_posts (ingested_at DateTime, record_id String, payload String) ENGINE=MergeTree ORDER BY (ingested_at, record_id)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.tiktok_videos (ingested_at DateTime, record_id String, payload String) ENGINE=MergeTree ORDER BY (ingested_at, record_id)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.price_records (ingested_at DateTime, record_id String, payload String) ENGINE=MergeTree ORDER BY (ingested_at, record_id)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.quality_log (ts DateTime, kind String, record_count UInt32, null_rate Float64, duplicate_rate Float64, outlier_rate Float64, completeness Float64, quality_score Float64, status String) ENGINE=MergeTree ORDER BY (kind, ts)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.volume_1m (symbol String, bucket DateTime, vol Float64, close Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.volume_1h (symbol String, bucket DateTime, vol Float64, close Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.volume_1d (symbol String, bucket DateTime, vol Float64, close Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)", db),
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

// ProvideStorage creates the ClickHouse storage repository.
func ProvideStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideAlertPublisher creates the Kafka publisher for engine alerts.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideQualityMonitor creates the batch quality monitor.
func ProvideQualityMonitor(cfg *config.Config) *quality.Monitor {
	q := cfg.Engine.Quality
	return quality.NewMonitor(quality.Config{
		Weights:       quality.Weights{Null: q.NullWeight, Duplicate: q.DuplicateWeight, Outlier: q.OutlierWeight},
		IQRMultiplier: q.IQRMultiplier,
	})
}

// ProvideBotDetector creates the social bot detector.
func ProvideBotDetector(cfg *config.Config) *botdetect.Detector {
	return botdetect.NewDetector(botdetect.Config{
		Enabled:   cfg.Engine.BotDetection.Enabled,
		Threshold: cfg.Engine.BotDetection.Threshold,
	})
}

// ProvideVolumeAnalyzer creates the in-memory volume series analyzer.
func ProvideVolumeAnalyzer(cfg *config.Config) *volume.Analyzer {
	v := cfg.Engine.Volume
	return volume.NewAnalyzer(volume.Config{
		SpikeWindow:       v.SpikeWindow,
		SpikeMultiplier:   v.SpikeMultiplier,
		AnomalyZThreshold: v.AnomalyZThreshold,
		IQRMultiplier:     v.IQRMultiplier,
		WashWindow:        v.WashWindow,
		WashCVThreshold:   v.WashCVThreshold,
		WashCorrThreshold: v.WashCorrThreshold,
	})
}

// ProvideBatchPipeline creates the batch ingest pipeline.
func ProvideBatchPipeline(
	monitor *quality.Monitor,
	detector *botdetect.Detector,
	store repository.Storage,
	pub repository.Publisher,
	m repository.Metrics,
) *usecase.BatchPipeline {
	return usecase.NewBatchPipeline(monitor, detector, store, pub, m)
}

// ProvideKafkaBatchesHandler registers the handler for the scraper batches topic.
func ProvideKafkaBatchesHandler(pipeline *usecase.BatchPipeline, m repository.Metrics, cfg *config.Config) *usecase.KafkaBatchesHandler {
	return usecase.NewKafkaBatchesHandler(cfg.Kafka.BatchesTopic, pipeline, m)
}

// ProvideBinanceStream creates the Binance WebSocket stream.
func ProvideBinanceStream(cfg *config.Config) repository.MarketStream {
	return binance.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	analyzer *volume.Analyzer,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		store,
		m,
		analyzer,
		cfg.Backend.Type,
		cfg.Engine.Volume.RetainPoints,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
    stream repository.MarketStream,
    processor *usecase.TickProcessor,
    m repository.Metrics,
) *usecase.TickCollector {
    // Build middleware pipeline between WebSocket and the backend
    pipe := mid.NewRealtimePipeline(processor, m,
        mid.WithMaxRPS(50),
        mid.WithBufferSize(2000),
    )
    return usecase.NewTickCollector(stream, processor, m, pipe)
}

// ProvideHistoryStore creates the ClickHouse volume history store.
func ProvideHistoryStore(chClient *pkgch.Client) repository.HistoryStore {
	return internalrepo.NewCHHistoryStore(chClient)
}

// ProvideSeriesSeeder creates the analyzer warm-up seeder.
func ProvideSeriesSeeder(history repository.HistoryStore, analyzer *volume.Analyzer) *usecase.SeriesSeeder {
	return usecase.NewSeriesSeeder(history, analyzer)
}

// ProvideVolumeAnalytics creates the cached analytics facade.
func ProvideVolumeAnalytics(analyzer *volume.Analyzer, cfg *config.Config) domsvc.VolumeAnalytics {
	return analytics.NewCachedVolumeAnalytics(analyzer, analytics.TTLsFromConfig(cfg))
}

// ProvideVolumeSummary creates the summary fan-out use case.
func ProvideVolumeSummary(a domsvc.VolumeAnalytics, analyzer *volume.Analyzer) *usecase.VolumeSummaryUseCase {
	return usecase.NewVolumeSummaryUseCase(a, analyzer)
}

// ProvideHistoryUseCase creates the tick/quality history query use case.
func ProvideHistoryUseCase(store repository.Storage) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(store)
}

// ProvideReportsEchoHandler creates the Echo API handler.
func ProvideReportsEchoHandler(
	l *applogger.Logger,
	a domsvc.VolumeAnalytics,
	summary *usecase.VolumeSummaryUseCase,
	pipeline *usecase.BatchPipeline,
	history *usecase.HistoryUseCase,
) *api.ReportsEchoHandler {
	return api.NewReportsEchoHandler(l, a, summary, pipeline, history)
}

// ProvideWebhookNotifier creates the alert webhook sender; disabled when the
// scan webhook URL is empty.
func ProvideWebhookNotifier(cfg *config.Config) *notify.WebhookNotifier {
	return notify.NewWebhookNotifier(cfg.Engine.Scan.Webhook, 5*time.Second)
}

// ProvideWashScanJob creates the queue job running wash-trading scans.
func ProvideWashScanJob(
	analyzer *volume.Analyzer,
	pub repository.Publisher,
	notifier *notify.WebhookNotifier,
	m repository.Metrics,
) *usecase.WashScanJob {
	return usecase.NewWashScanJob(analyzer, pub, notifier, m)
}

// ProvideScanQueue creates the Redis queue backing periodic scans. Returns
// nil when scanning or Redis is disabled; the app treats that as "no scans".
func ProvideScanQueue(l *applogger.Logger, job *usecase.WashScanJob, cfg *config.Config) *queue.RedisQueue {
	if !cfg.Engine.Scan.Enabled || !cfg.Analytics.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Analytics.Redis.Addr,
		Password: cfg.Analytics.Redis.Password,
		DB:       cfg.Analytics.Redis.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 15 * time.Second,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideScanScheduler creates the periodic scan scheduler; nil without a queue.
func ProvideScanScheduler(q *queue.RedisQueue, analyzer *volume.Analyzer, cfg *config.Config) *usecase.ScanScheduler {
	if q == nil {
		return nil
	}
	return usecase.NewScanScheduler(q, analyzer, cfg.Engine.Scan.Interval)
}

// ProvideApp creates the application server.
func ProvideApp(
    cfg *config.Config,
    l *applogger.Logger,
    collector *usecase.TickCollector,
    consumer *pkgkafka.Consumer,
    kh *usecase.KafkaBatchesHandler,
    chClient *pkgch.Client,
    handler *api.ReportsEchoHandler,
    seeder *usecase.SeriesSeeder,
    scanQueue *queue.RedisQueue,
    scheduler *usecase.ScanScheduler,
) *server.App {
    if consumer != nil {
        consumer.WithConsumerHook(pkgkafka.NoopHook{})
    }
    app := server.New(cfg, l, collector, consumer, kh, chClient)
    app.SetHTTPHandler(handler)
    app.Seeder = seeder
    app.ScanQueue = scanQueue
    app.Scheduler = scheduler
    if collector != nil {
        app.TickProc = collector.Processor()
    }
    return app
}
