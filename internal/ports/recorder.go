package ports

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// Recorder persiste la telemetría de una partida: logs JSONL, snapshots,
// artefactos de prompts y el resumen final. Un único escritor por run.
type Recorder interface {
	// AppendEvents añade eventos al log en orden de emisión.
	AppendEvents(events []domain.Event) error

	// AppendDecision añade una entrada started o resolved al log de
	// decisiones.
	AppendDecision(entry domain.DecisionLogEntry) error

	// AppendAction añade la acción final aplicada al log de acciones.
	AppendAction(rec domain.ActionRecord) error

	// WriteSnapshot persiste el snapshot del turno; los turnos repetidos
	// reciben sufijos de variante.
	WriteSnapshot(snap domain.Snapshot) error

	// WriteArtifact persiste un artefacto de prompt bajo prompts/.
	WriteArtifact(name string, data []byte) error

	// WriteSummary persiste el resumen final de la partida.
	WriteSummary(summary domain.RunSummary) error

	// Close vacía y cierra los ficheros del run.
	Close() error
}
