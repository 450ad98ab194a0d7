package main

import (
	"log/slog"
	"os"

	"github.com/alejandrodnm/monopolyarena/internal/adapters/telemetry"
	"github.com/alejandrodnm/monopolyarena/internal/application/engine"
)

// runReplay reejecuta una partida grabada y comprueba que los eventos son
// byte a byte idénticos a los del log original.
func runReplay(dir string) {
	if dir == "" {
		slog.Error("replay mode requires -run-dir")
		os.Exit(2)
	}

	manifest, err := telemetry.ReadManifest(dir)
	if err != nil {
		slog.Error("failed to read run manifest", "err", err, "dir", dir)
		os.Exit(1)
	}
	actions, err := telemetry.ReadActions(dir)
	if err != nil {
		slog.Error("failed to read actions", "err", err, "dir", dir)
		os.Exit(1)
	}
	recorded, err := telemetry.ReadEventLines(dir)
	if err != nil {
		slog.Error("failed to read events", "err", err, "dir", dir)
		os.Exit(1)
	}

	seats := make([]engine.PlayerSeat, 0, len(manifest.Players))
	for _, p := range manifest.Players {
		seats = append(seats, engine.PlayerSeat{ID: p.ID, Name: p.Name})
	}
	events, err := engine.Replay(engine.Config{
		RunID:           manifest.RunID,
		Seed:            manifest.Seed,
		Players:         seats,
		MaxTurns:        manifest.MaxTurns,
		TsStepMs:        manifest.TsStepMs,
		AllowExtraTurns: manifest.AllowExtraTurns,
	}, actions, slog.Default())
	if err != nil {
		slog.Error("replay failed", "err", err, "run_id", manifest.RunID)
		os.Exit(1)
	}

	replayed, err := engine.CanonicalEventLines(events)
	if err != nil {
		slog.Error("failed to serialize replayed events", "err", err)
		os.Exit(1)
	}

	if i := engine.FirstDivergence(recorded, replayed); i >= 0 {
		slog.Error("replay diverged", "run_id", manifest.RunID, "line", i,
			"recorded_lines", len(recorded), "replayed_lines", len(replayed))
		if i < len(recorded) {
			slog.Error("recorded", "line", recorded[i])
		}
		if i < len(replayed) {
			slog.Error("replayed", "line", replayed[i])
		}
		os.Exit(1)
	}

	slog.Info("replay verified", "run_id", manifest.RunID, "events", len(replayed),
		"decisions", len(actions))
}
