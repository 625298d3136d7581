package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/virtual-events/internal/auth"
	"github.com/Shivanand-hulikatti/virtual-events/internal/config"
	"github.com/Shivanand-hulikatti/virtual-events/internal/handler"
	"github.com/Shivanand-hulikatti/virtual-events/internal/notify"
	"github.com/Shivanand-hulikatti/virtual-events/internal/repository"
	"github.com/Shivanand-hulikatti/virtual-events/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

// loadConfig reads the environment and applies the global log flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func serve(parent context.Context, cfg config.Config) error {
	logger := config.NewLogger(cfg.Logging)

	// ── 1. Wire up layers ────────────────────────────────────────────────
	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	queue := notify.NewQueue(
		notify.LogSender{From: cfg.Notify.From, Logger: logger.With().Str("component", "mailer").Logger()},
		notify.Options{
			Workers:   cfg.Notify.Workers,
			QueueSize: cfg.Notify.QueueSize,
			Timeout:   cfg.Notify.Timeout,
		},
		logger,
	)

	userSvc := service.NewUserService(repository.NewUserRepository(), tokens, queue, logger)
	eventSvc := service.NewEventService(repository.NewEventRepository(), logger)

	// ── 2. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(handler.RouterDeps{
		Users:      userSvc,
		Events:     eventSvc,
		Tokens:     tokens,
		Logger:     logger,
		CORS:       cfg.CORS,
		RateLimit:  cfg.RateLimit,
		TrustProxy: cfg.Server.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ── 3. Run server and notification workers until SIGINT or SIGTERM ───
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.Run(gctx)
	})

	g.Go(func() error {
		logger.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
