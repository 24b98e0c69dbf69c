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

	"go.uber.org/zap"

	"github.com/Nkpro29/chuckle-match-ai/internal/app/apiapp"
	"github.com/Nkpro29/chuckle-match-ai/internal/config"
	"github.com/Nkpro29/chuckle-match-ai/internal/infra/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, "matching-api")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := apiapp.New(ctx, cfg, log)
	if err != nil {
		log.Error("create api app", zap.Error(err))
		return err
	}

	mode := app.Mode()
	log.Info("matching engine configured",
		zap.String("env", cfg.Env),
		zap.String("store", mode.Store),
		zap.Bool("rate_limited", mode.RateLimited),
		zap.Bool("notifications", mode.Notifications),
		zap.Int("min_mutual_interactions", cfg.Matching.MinMutualInteractions),
		zap.Int("candidate_limit", cfg.Matching.CandidateLimit),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api app: %w", err)
	}
	return nil
}
