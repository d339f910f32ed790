package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ZScout/internal/domain/models"
	"ZScout/internal/domain/repository"
	"ZScout/internal/usecase"
	"ZScout/pkg/config"
	xhttp "ZScout/pkg/http"
	applogger "ZScout/pkg/logger"
)

// App bundles the wired use cases behind the CLI commands and the HTTP
// serve mode.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	store     repository.ResultStore
	analyzer  *usecase.Analyzer
	seeder    *usecase.Seeder
	screener  *usecase.Screener
	publisher repository.EventPublisher

	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	store repository.ResultStore,
	analyzer *usecase.Analyzer,
	seeder *usecase.Seeder,
	screener *usecase.Screener,
	publisher repository.EventPublisher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         l,
		store:       store,
		analyzer:    analyzer,
		seeder:      seeder,
		screener:    screener,
		publisher:   publisher,
		httpHandler: handler,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// Migrate creates the database schema.
func (a *App) Migrate(ctx context.Context) error {
	return a.store.Migrate(ctx)
}

// Seed loads the symbol file into the registry.
func (a *App) Seed(ctx context.Context, path string) (int, error) {
	return a.seeder.SeedFromFile(ctx, path)
}

// Analyze runs one full analysis pass over the registry.
func (a *App) Analyze(ctx context.Context) (*models.RunSummary, error) {
	return a.analyzer.Run(ctx)
}

// Screen writes the ranked candidate table to w. A non-nil maxZ overrides
// the configured threshold.
func (a *App) Screen(ctx context.Context, w io.Writer, maxZ *float64) error {
	var (
		candidates []models.Candidate
		err        error
	)
	if maxZ != nil {
		candidates, err = a.screener.CandidatesAt(ctx, *maxZ)
	} else {
		candidates, err = a.screener.Candidates(ctx)
	}
	if err != nil {
		return err
	}
	return a.screener.Render(w, candidates)
}

// Serve starts the HTTP server and blocks until interrupted.
func (a *App) Serve(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.MetricsEnabled() {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)

	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		a.log.Info("shutdown signal received")
	case <-ctx.Done():
		a.log.Info("context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	return nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("store close error", applogger.Error(err))
		}
	}
}
