package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/alejandrodnm/monopolyarena/config"
	"github.com/alejandrodnm/monopolyarena/internal/adapters/ws"
)

// runServe arranca el gateway HTTP/websocket y espera la señal de parada.
func runServe(ctx context.Context, cfg *config.Config, opts cliOptions) {
	c, idx, closeFn, err := newCoordinator(cfg, opts)
	if err != nil {
		slog.Error("failed to build coordinator", "err", err)
		os.Exit(1)
	}
	defer closeFn()

	srv := ws.NewServer(ws.Config{
		Addr:         cfg.Server.Addr,
		DefaultModel: cfg.OpenRouter.DefaultModel,
	}, c, idx, slog.Default())

	err = srv.Run(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("gateway exited with error", "err", err)
		os.Exit(1)
	}

	// Cierra limpiamente la partida que siga en curso.
	if c.ActiveRunID() != "" {
		if err := c.StopRun(context.Background()); err != nil {
			slog.Warn("stop failed", "err", err)
		}
	}
	slog.Info("arena stopped cleanly")
}
