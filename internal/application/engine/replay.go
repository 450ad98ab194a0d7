package engine

import (
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Replay reejecuta una partida desde su configuración y la secuencia de
// acciones finales registrada, con el valid/error que acompañó a cada una.
// Devuelve los eventos emitidos; con la misma entrada el resultado es byte a
// byte idéntico al original.
func Replay(cfg Config, actions []domain.ActionRecord, log *slog.Logger) ([]domain.Event, error) {
	e, err := New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("engine.Replay: %w", err)
	}

	var events []domain.Event
	cursor := 0
	// Límite de seguridad: ninguna partida legal emite más pasos que esto.
	for guard := 0; !e.IsGameOver() && guard < cfg.MaxTurns*1000+1000; guard++ {
		res := e.AdvanceUntilDecision(1)
		events = append(events, res.Events...)
		if res.Decision == nil {
			continue
		}
		if cursor >= len(actions) {
			return events, fmt.Errorf("engine.Replay: ran out of recorded actions at decision %s", res.Decision.DecisionID)
		}
		rec := actions[cursor]
		cursor++
		applied, err := e.ApplyAction(rec.Action, domain.DecisionMeta{Valid: rec.Valid, Error: rec.Error})
		if err != nil {
			return events, fmt.Errorf("engine.Replay: apply %s: %w", rec.DecisionID, err)
		}
		events = append(events, applied.Events...)
	}
	return events, nil
}

// CanonicalEventLines serializa eventos a líneas canónicas para comparar
// grabación y reejecución.
func CanonicalEventLines(events []domain.Event) ([]string, error) {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		line, err := domain.CanonicalJSON(ev)
		if err != nil {
			return nil, fmt.Errorf("engine.CanonicalEventLines: seq %d: %w", ev.Seq, err)
		}
		out = append(out, string(line))
	}
	return out, nil
}

// FirstDivergence devuelve la primera línea distinta entre dos logs, o -1 si
// son idénticos.
func FirstDivergence(recorded, replayed []string) int {
	n := len(recorded)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		if recorded[i] != replayed[i] {
			return i
		}
	}
	if len(recorded) != len(replayed) {
		return n
	}
	return -1
}
