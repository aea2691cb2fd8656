package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataquality/jsonvalidator/internal/config"
	"github.com/dataquality/jsonvalidator/internal/logging"
	"github.com/dataquality/jsonvalidator/internal/metrics"
	"github.com/dataquality/jsonvalidator/internal/server"
)

type serveOptions struct {
	enableMetrics   bool
	jsonOneShot     string
	workerThreads   int
	logLevel        string
	maxConcurrent   int
	gracefulTimeout time.Duration
}

// NewServeCommand creates the serve command: the admission-controlled HTTP
// front end, per spec.md §6's CLI surface.
func NewServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Start the JSON validation server",
		Long: `Start the admission-controlled HTTP server exposing /load_descriptor
and /validate.

With --json, the server performs a single one-shot validation of the given
JSON string against no schema and exits immediately, without binding a
listener: 0 if it parses, 1 otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.enableMetrics, "enable-metrics", false, "Export metrics via the OpenTelemetry stdout exporter")
	cmd.Flags().StringVar(&opts.jsonOneShot, "json", "", "Validate a literal JSON string against no schema and exit")
	cmd.Flags().IntVar(&opts.workerThreads, "worker-threads", 2, "Number of OS threads reserved for request handling (GOMAXPROCS hint)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: error|warn|info|debug|trace")
	cmd.Flags().IntVar(&opts.maxConcurrent, "max-concurrent-requests", 200, "Admission gate permit count")
	cmd.Flags().DurationVar(&opts.gracefulTimeout, "graceful-timeout", 10*time.Second, "Graceful shutdown timeout")

	return cmd
}

func runServe(opts *serveOptions) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	log := logging.New(level)

	if opts.jsonOneShot != "" {
		return runOneShotValidation(opts.jsonOneShot)
	}

	if opts.workerThreads > 0 {
		runtime.GOMAXPROCS(opts.workerThreads)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var provider *metrics.Provider
	if opts.enableMetrics {
		provider, err = metrics.NewStdoutProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		meter, err := metrics.NewMeter(provider)
		if err != nil {
			return fmt.Errorf("failed to create meter: %w", err)
		}
		recorder = meter
	}

	srvCfg := server.Config{MaxConcurrentRequests: opts.maxConcurrent, RequestTimeout: 30 * time.Second}
	handler := server.New(srvCfg, recorder, log)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  srvCfg.RequestTimeout,
		WriteTimeout: srvCfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr()).Bool("metrics", opts.enableMetrics).Msg("starting server")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigCh:
		log.Info().Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.gracefulTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to shut down metrics provider")
		}
	}

	return nil
}

// runOneShotValidation implements --json: parse the given string as JSON
// with no target schema and exit 0/1 accordingly, per spec.md §6.
func runOneShotValidation(raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		fmt.Fprintf(os.Stderr, "invalid JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Valid JSON")
	return nil
}
