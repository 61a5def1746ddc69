package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/projdash/internal/adapters/http/site"
	"github.com/okian/projdash/internal/adapters/repository"
	"github.com/okian/projdash/internal/adapters/upstream"
	"github.com/okian/projdash/internal/config"
	"github.com/okian/projdash/pkg/logger"
	"github.com/okian/projdash/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, err := newSource(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build page source", logger.String("source", cfg.Source), logger.Error(err))
		return
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	site.NewServer(src,
		site.WithProjectID(cfg.ProjectID),
		site.WithRenderTimeout(time.Duration(cfg.RenderTimeoutMS)*time.Millisecond),
		site.WithLogger(loggerInstance.Named("site")),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr), logger.String("source", cfg.Source), logger.String("project_id", cfg.ProjectID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newSource builds the collaborator implementation selected by cfg.Source.
func newSource(cfg *config.Config, log logger.Logger) (site.Source, error) {
	switch cfg.Source {
	case config.SourceUpstream:
		return upstream.New(cfg.UpstreamURL,
			upstream.WithTimeout(time.Duration(cfg.UpstreamTimeoutMS)*time.Millisecond),
			upstream.WithLogger(log.Named("upstream")),
		)
	case config.SourceFixture, "":
		cat := repository.DefaultCatalog()
		if cfg.FixturePath != "" {
			var err error
			if cat, err = repository.LoadCatalogFile(cfg.FixturePath); err != nil {
				return nil, err
			}
		}
		opts := []repository.Option{repository.WithLogger(log.Named("fixture"))}
		if cfg.FixtureLatencyMaxMS > 0 {
			opts = append(opts, repository.WithLatencyRange(
				time.Duration(cfg.FixtureLatencyMinMS)*time.Millisecond,
				time.Duration(cfg.FixtureLatencyMaxMS)*time.Millisecond,
			))
		}
		return repository.NewFixtureStore(cat, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalidConfig, cfg.Source)
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
