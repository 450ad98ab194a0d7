// Package telemetry persiste la telemetría de las partidas: logs JSONL,
// snapshots por turno, artefactos de prompts, el resumen final y el índice
// SQLite consultable desde la CLI.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// FileRecorder implementa ports.Recorder sobre el directorio de una partida.
// Escritor único; los appends se serializan con el mutex.
type FileRecorder struct {
	dir string

	mu        sync.Mutex
	events    *os.File
	decisions *os.File
	actions   *os.File

	// Copias del mismo turno tras una decisión encadenada reciben sufijo de
	// variante para no pisar la anterior.
	turnWrites map[int]int
}

// NewFileRecorder crea el layout del run y abre los logs en modo append.
func NewFileRecorder(dir string) (*FileRecorder, error) {
	for _, sub := range []string{"", "state", "prompts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("telemetry.NewFileRecorder: mkdir: %w", err)
		}
	}

	r := &FileRecorder{dir: dir, turnWrites: map[int]int{}}
	var err error
	if r.events, err = openAppend(filepath.Join(dir, "events.jsonl")); err != nil {
		return nil, err
	}
	if r.decisions, err = openAppend(filepath.Join(dir, "decisions.jsonl")); err != nil {
		r.events.Close()
		return nil, err
	}
	if r.actions, err = openAppend(filepath.Join(dir, "actions.jsonl")); err != nil {
		r.events.Close()
		r.decisions.Close()
		return nil, err
	}
	return r, nil
}

// Dir devuelve el directorio del run.
func (r *FileRecorder) Dir() string {
	return r.dir
}

// AppendEvents añade eventos al log en orden de emisión.
func (r *FileRecorder) AppendEvents(events []domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		if err := appendLine(r.events, ev); err != nil {
			return fmt.Errorf("telemetry.AppendEvents: %w", err)
		}
	}
	return nil
}

// AppendDecision añade una entrada started o resolved al log de decisiones.
func (r *FileRecorder) AppendDecision(entry domain.DecisionLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := appendLine(r.decisions, entry); err != nil {
		return fmt.Errorf("telemetry.AppendDecision: %w", err)
	}
	return nil
}

// AppendAction añade la acción final aplicada al log de acciones.
func (r *FileRecorder) AppendAction(rec domain.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := appendLine(r.actions, rec); err != nil {
		return fmt.Errorf("telemetry.AppendAction: %w", err)
	}
	return nil
}

// WriteSnapshot persiste el snapshot del turno bajo state/. El primer snapshot
// de un turno es turn_%04d.json; los siguientes llevan _1, _2…
func (r *FileRecorder) WriteSnapshot(snap domain.Snapshot) error {
	r.mu.Lock()
	variant := r.turnWrites[snap.TurnIndex]
	r.turnWrites[snap.TurnIndex]++
	r.mu.Unlock()

	name := fmt.Sprintf("turn_%04d.json", snap.TurnIndex)
	if variant > 0 {
		name = fmt.Sprintf("turn_%04d_%d.json", snap.TurnIndex, variant)
	}
	return r.writeJSON(filepath.Join("state", name), snap)
}

// WriteArtifact persiste un artefacto de prompt bajo prompts/.
func (r *FileRecorder) WriteArtifact(name string, data []byte) error {
	path := filepath.Join(r.dir, "prompts", name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("telemetry.WriteArtifact: %w", err)
	}
	return nil
}

// WriteSummary persiste el resumen final de la partida.
func (r *FileRecorder) WriteSummary(summary domain.RunSummary) error {
	return r.writeJSON("summary.json", summary)
}

// Close vacía y cierra los logs del run.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, f := range []*os.File{r.events, r.decisions, r.actions} {
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("telemetry.Close: %w", err)
		}
	}
	return first
}

func (r *FileRecorder) writeJSON(rel string, v any) error {
	data, err := domain.CanonicalJSON(v)
	if err != nil {
		return fmt.Errorf("telemetry.writeJSON: encode %s: %w", rel, err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, rel), data, 0o644); err != nil {
		return fmt.Errorf("telemetry.writeJSON: %w", err)
	}
	return nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry.openAppend: %w", err)
	}
	return f, nil
}

func appendLine(f *os.File, v any) error {
	data, err := domain.CanonicalJSON(v)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}
