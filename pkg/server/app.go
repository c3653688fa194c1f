package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"OscLens/internal/usecase"
	pkgch "OscLens/pkg/clickhouse"
	"OscLens/pkg/config"
	xhttp "OscLens/pkg/http"
	pkgkafka "OscLens/pkg/kafka"
	applogger "OscLens/pkg/logger"
	"OscLens/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	l            *applogger.Logger
	collector    *usecase.CandleCollector
	consumer     *pkgkafka.Consumer
	kh           pkgkafka.MessageHandler
	chClient     *pkgch.Client
	httpServer   *xhttp.Server
	httpHandler  xhttp.Handler
	refreshQueue *queue.RedisQueue
	scheduler    *usecase.RefreshScheduler

	// CandleProc owns the publisher and store sinks; closed on shutdown.
	CandleProc *usecase.CandleProcessor
}

// New creates a new App instance. Collector, consumer and refresh pieces
// may be nil when the matching config sections are disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.CandleCollector,
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

// SetHTTPHandler allows DI to inject the API handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetRefresh allows DI to inject the background refresh queue and scheduler.
func (a *App) SetRefresh(q *queue.RedisQueue, s *usecase.RefreshScheduler) {
	a.refreshQueue = q
	a.scheduler = s
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Live ingest is optional; the API can serve from storage alone.
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.l.Error("collector error", applogger.Error(err))
			}
		}()
		a.l.Info("collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.refreshQueue != nil {
		if err := a.refreshQueue.Start(); err != nil {
			a.l.Error("refresh queue start error", applogger.Error(err))
		} else {
			a.refreshQueue.StartRetryProcessor()
			a.scheduler.Start(ctx)
			a.l.Info("refresh scheduler started",
				applogger.String("interval", a.cfg.Analytics.Refresh.Interval.String()))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.refreshQueue != nil {
		if err := a.refreshQueue.Stop(ctx); err != nil {
			a.l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.CandleProc != nil {
		a.CandleProc.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
