package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
)

// Manifest es run.json: la configuración exacta con la que se creó el engine,
// suficiente para reejecutar la partida.
type Manifest struct {
	SchemaVersion   string           `json:"schema_version"`
	RunID           string           `json:"run_id"`
	Seed            int64            `json:"seed"`
	Players         []players.Player `json:"players"`
	MaxTurns        int              `json:"max_turns"`
	TsStepMs        int64            `json:"ts_step_ms"`
	AllowExtraTurns bool             `json:"allow_extra_turns"`
	CreatedAt       int64            `json:"created_at"`
}

// WriteManifest escribe run.json en el directorio de la partida.
func (r *FileRecorder) WriteManifest(m Manifest) error {
	return r.writeJSON("run.json", m)
}

// ReadManifest lee run.json de un directorio de partida.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "run.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("telemetry.ReadManifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("telemetry.ReadManifest: parse: %w", err)
	}
	return m, nil
}

// ReadActions lee actions.jsonl y devuelve las acciones finales en orden,
// con el valid/error que se registró al aplicarlas.
func ReadActions(dir string) ([]domain.ActionRecord, error) {
	var out []domain.ActionRecord
	err := readLines(filepath.Join(dir, "actions.jsonl"), func(line []byte) error {
		var rec domain.ActionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("parse action: %w", err)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry.ReadActions: %w", err)
	}
	return out, nil
}

// ReadEventLines devuelve las líneas crudas de events.jsonl, ya en forma
// canónica.
func ReadEventLines(dir string) ([]string, error) {
	var out []string
	err := readLines(filepath.Join(dir, "events.jsonl"), func(line []byte) error {
		out = append(out, string(line))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry.ReadEventLines: %w", err)
	}
	return out, nil
}
