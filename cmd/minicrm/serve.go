package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/suteetoe/minicrm/internal/handler"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/server"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/database"
	"github.com/suteetoe/minicrm/pkg/jwtutil"
	"github.com/suteetoe/minicrm/pkg/metrics"
	"go.uber.org/zap"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on SERVER_PORT.

Configuration comes from the environment and an optional .env file. Setting
REDIS_URL enables server-side logout through a token denylist.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	var opts []jwtutil.Option
	if cfg.Security.RedisURL != "" {
		denylist, err := jwtutil.NewRedisDenylist(ctx, cfg.Security.RedisURL)
		if err != nil {
			return err
		}
		defer denylist.Close()
		opts = append(opts, jwtutil.WithDenylist(denylist))
		log.Info("Token denylist enabled")
	}

	tokens, err := jwtutil.NewJWTUtil(jwtutil.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		Expiration: cfg.JWT.Expiration(),
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT utility: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(cfg.Metrics.Prefix, registry)

	v := validation.New()
	h := handler.New(handler.Deps{
		Store:        repository.NewStore(db),
		Tokens:       tokens,
		Validator:    v,
		Metrics:      httpMetrics,
		SecureCookie: cfg.Server.IsProduction(),
	})
	e := server.New(server.Config{
		Tokens:         tokens,
		Metrics:        httpMetrics,
		Validator:      v,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	}, h)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
