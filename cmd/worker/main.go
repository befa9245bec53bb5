package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taskflow/internal/bootstrap"
	"taskflow/internal/infra"
	"taskflow/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: open storage failed")
	}
	defer rt.Close()

	if _, err := rt.SeedPlans(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: seed plans failed")
	}

	runner := rt.Sweeper()
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	logger.Info().Dur("interval", interval).Strs("jobs", sweep.Jobs()).Msg("worker started")

	tick := func() {
		if _, err := runner.RunAll(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("worker: sweep failed")
		}
	}
	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}
