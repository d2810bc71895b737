package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/usecase"
	pkgch "CoinSentry/pkg/clickhouse"
	"CoinSentry/pkg/config"
	xhttp "CoinSentry/pkg/http"
	pkgkafka "CoinSentry/pkg/kafka"
	applogger "CoinSentry/pkg/logger"
	"CoinSentry/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	collector   *usecase.TickCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler

	TickProc  *usecase.TickProcessor
	Seeder    *usecase.SeriesSeeder
	ScanQueue *queue.RedisQueue
	Scheduler *usecase.ScanScheduler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.l

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Warm the analyzer from stored history so spike baselines exist before
	// the first live tick.
	if a.Seeder != nil && a.cfg.Engine.Volume.SeedPoints > 0 {
		a.Seeder.SetLogger(l)
		if err := a.Seeder.Seed(ctx, a.cfg.Binance.Symbols, a.cfg.Engine.Volume.SeedPoints, drepo.DefaultTimeframe()); err != nil {
			l.Warn("series seed failed", applogger.Error(err))
		}
	}

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start wash-trading scans if configured
	if a.ScanQueue != nil && a.Scheduler != nil {
		if err := a.ScanQueue.Start(); err != nil {
			l.Error("scan queue start error", applogger.Error(err))
		} else {
			a.Scheduler.SetLogger(l)
			a.Scheduler.Start(ctx)
			l.Info("wash scan scheduler started", applogger.Any("interval", a.cfg.Engine.Scan.Interval))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.l
	l.Info("shutting down...")

	// Stop periodic scans first so no new work enters the queue
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.ScanQueue != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		if err := a.ScanQueue.Stop(stopCtx); err != nil {
			l.Warn("scan queue stop error", applogger.Error(err))
		}
		cancel()
	}

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher/storage)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
