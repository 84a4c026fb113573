package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bilal-32/movie-api/internal/app"
	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	a, err := app.New(startCtx, cfg)
	cancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("init app")
	}

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartUserEventConsumer(ctx, cfg.AMQPURL, cfg.EventsLogPath); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("user event consumer stopped")
			}
		}()
	}

	errc := make(chan error, 1)
	go func() { errc <- a.Start() }()

	select {
	case err := <-errc:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}
