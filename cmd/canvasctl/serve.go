package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideamap-canvas/internal/config"
	"ideamap-canvas/internal/infrastructure/logging"
	"ideamap-canvas/internal/infrastructure/observability"
	"ideamap-canvas/interfaces/http/rest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and viewport fits over HTTP",
		Long: `Start the stateless canvas HTTP service.

Routes:
  POST /api/v1/layout/{radial|level}
  POST /api/v1/clusters
  POST /api/v1/fit
  POST /api/v1/center
  GET  /health, /ready and the metrics path

With --config-dir in development the configuration is reloaded when files
in the directory change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return opts.serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.host and server.port)")
	return cmd
}

// serve runs the HTTP service until ctx is cancelled
func (o *rootOptions) serve(ctx context.Context, addr string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	logger, err := o.logger(cfg)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	source := func() *config.Config { return cfg }
	if o.configDir != "" && o.configFile == "" {
		watcher, err := config.NewWatcher(o.loader(), cfg, logger.Named("config"))
		if err != nil {
			return err
		}
		defer watcher.Stop()
		watcher.OnChange(func(next *config.Config) {
			logger.Info("Configuration reloaded", zap.Strings("sources", next.LoadedFrom))
		})
		source = watcher.GetConfig
	}

	tp, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Environment)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		}
	}()

	var collector *observability.Collector
	if cfg.Metrics.Enabled {
		collector = observability.NewCollector(cfg.Metrics.Namespace)
	}

	router := rest.NewRouter(source, logger, collector, tp.Tracer())

	if addr == "" {
		addr = cfg.Server.Address()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", listener.Addr().String()),
			zap.String("environment", string(cfg.Environment)),
		)
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
