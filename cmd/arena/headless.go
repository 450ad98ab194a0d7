package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/monopolyarena/config"
	"github.com/alejandrodnm/monopolyarena/internal/application/coordinator"
	"github.com/alejandrodnm/monopolyarena/internal/players"
)

// runHeadless juega una partida completa y sale.
func runHeadless(ctx context.Context, cfg *config.Config, opts cliOptions) {
	lineup, err := loadLineup(cfg, opts)
	if err != nil {
		slog.Error("failed to load players", "err", err)
		os.Exit(1)
	}

	c, _, closeFn, err := newCoordinator(cfg, opts)
	if err != nil {
		slog.Error("failed to build coordinator", "err", err)
		os.Exit(1)
	}
	defer closeFn()

	id, done, err := c.StartRun(ctx, runRequest(opts, lineup))
	if err != nil {
		slog.Error("failed to start run", "err", err)
		os.Exit(1)
	}
	slog.Info("arena running", "run_id", id, "seed", opts.seed, "mock", opts.mock)

	select {
	case <-done:
	case <-ctx.Done():
		slog.Info("stopping run", "run_id", id)
		if err := c.StopRun(context.Background()); err != nil {
			slog.Warn("stop failed", "err", err)
		}
		<-done
	}
}

func runRequest(opts cliOptions, lineup []players.Player) coordinator.RunRequest {
	return coordinator.RunRequest{
		Seed:    opts.seed,
		Players: lineup,
		RunID:   opts.runID,
		Prefix:  "headless",
	}
}
