package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HendryAvila/weather-mcp/internal/config"
	"github.com/HendryAvila/weather-mcp/internal/observe"
	weatherserver "github.com/HendryAvila/weather-mcp/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

// shutdownTimeout bounds how long HTTP listeners get to drain.
const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	transport string
	addr      string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&flags.transport, "transport", config.TransportStdio, "transport: stdio or http")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address for the http transport (overrides http.addr)")
	return cmd
}

// loadConfig resolves the config and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, flags serveFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{ConfigFile: cfgFile})
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = flags.transport
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTP.Addr = flags.addr
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := observe.NewLogger(os.Stderr, observe.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "weather-mcp",
		ServiceVersion: weatherserver.Version,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownMetrics(sctx); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		stopMetrics := startMetricsServer(cfg.Metrics.Addr, logger)
		defer stopMetrics()
	}

	s, cleanup, err := weatherserver.New(cfg, weatherserver.Options{
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	logger.Info("starting weather-mcp",
		"version", weatherserver.Version,
		"transport", cfg.Transport,
		"store", cfg.Store.Backend,
	)

	switch cfg.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, s, cfg.HTTP.Addr, logger)
	default:
		return serveStdio(ctx, s, logger)
	}
}

// serveStdio runs the stdio transport until stdin closes or ctx is cancelled.
// Logs go to stderr; stdout carries only protocol frames.
func serveStdio(ctx context.Context, s *server.MCPServer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serveHTTP runs the streamable HTTP transport until ctx is cancelled.
func serveHTTP(ctx context.Context, s *server.MCPServer, addr string, logger *slog.Logger) error {
	httpServer := server.NewStreamableHTTPServer(s)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "endpoint", "/mcp")
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down http transport: %w", err)
	}
	return nil
}

// startMetricsServer serves /metrics on addr in the background and returns
// a function that stops it.
func startMetricsServer(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observe.MetricsHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics endpoint", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}
