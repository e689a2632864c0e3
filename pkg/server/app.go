package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"NiftyPulse/internal/handler/api"
	icache "NiftyPulse/internal/service/cache"
	"NiftyPulse/internal/usecase"
	pkgch "NiftyPulse/pkg/clickhouse"
	"NiftyPulse/pkg/config"
	xhttp "NiftyPulse/pkg/http"
	applogger "NiftyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	collector    *usecase.SpotCollector
	analyze      *usecase.AnalyzeUseCase
	history      *usecase.HistoryUseCase
	journal      *usecase.JournalUseCase
	importer     *usecase.ImportUseCase
	chClient     *pkgch.Client
	httpServer   *xhttp.Server
	httpHandler  xhttp.Handler
	SnapshotProc *usecase.SnapshotProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.SpotCollector,
	analyze *usecase.AnalyzeUseCase,
	history *usecase.HistoryUseCase,
	journal *usecase.JournalUseCase,
	importer *usecase.ImportUseCase,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		analyze:   analyze,
		history:   history,
		journal:   journal,
		importer:  importer,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// routeSet registers several handlers on one Echo server.
type routeSet []xhttp.Handler

func (r routeSet) RegisterRoutes(e *echo.Echo) {
	for _, h := range r {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	a.analyze.SetLogger(l)
	a.journal.SetLogger(l)
	a.importer.SetLogger(l)

	// Setup Echo HTTP server using pkg/http and register routes via handler
	httpHandler := a.httpHandler
	if httpHandler == nil {
		eh := api.NewMarketEchoHandler(l, a.analyze, a.history, a.journal, a.importer)

		mh := api.NewMarketHandler(a.analyze, a.history)
		mh.SetLogger(l)
		if a.cfg.Cache.Redis.Enabled {
			mh.SetCache(icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Cache.Redis.Addr,
				Password: a.cfg.Cache.Redis.Password,
				DB:       a.cfg.Cache.Redis.DB,
			}))
		} else {
			mh.SetCache(icache.NewTTLCache())
		}

		httpHandler = routeSet{eh, mh}
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.String("symbol", a.cfg.Kite.SpotSymbol))

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
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

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

	// Close snapshot processor resources (publisher/storage)
	if a.SnapshotProc != nil {
		a.SnapshotProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
