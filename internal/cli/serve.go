package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/logging"
	httpAdapter "github.com/aretw0/automaton/pkg/adapters/http"
	"github.com/aretw0/automaton/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	EngineOptions
	Port string
	// LogFormat is "text" (default) or "json".
	LogFormat string
	LogLevel  string
}

func (o ServeOptions) logger() *slog.Logger {
	level := logging.ParseLevel(o.LogLevel)
	if o.Debug {
		level = slog.LevelDebug
	}
	if o.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level)
	}
	return logging.New(level)
}

// newServeHandler builds the engine and the HTTP handler, with run metrics
// registered on a dedicated registry.
func newServeHandler(opts ServeOptions, logger *slog.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = observability.Chain(hooks, observability.LogHooks(logger))
	}

	// Debug log hooks are chained above; keep createEngine from adding them twice.
	engineOpts := opts.EngineOptions
	engineOpts.Debug = false
	engine, err := createEngine(engineOpts, logger, automaton.WithLifecycleHooks(hooks))
	if err != nil {
		return nil, err
	}
	return httpAdapter.NewHandler(engine, httpAdapter.WithGatherer(reg)), nil
}

// Serve runs the HTTP API until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.logger()
	slog.SetDefault(logger)

	handler, err := newServeHandler(opts, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Automaton Server", "address", srv.Addr, "dir", opts.RepoPath, "version", automaton.VersionString())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Automaton Server stopped gracefully")
		return nil
	}
}
