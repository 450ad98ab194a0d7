package domain

// Tipos de frame difundidos a los suscriptores.
const (
	FrameHello    = "HELLO"
	FrameSnapshot = "SNAPSHOT"
	FrameEvent    = "EVENT"
	FrameError    = "ERROR"
)

// Frame es el sobre de difusión hacia los suscriptores del run.
type Frame struct {
	Type         string    `json:"type"`
	RunID        string    `json:"run_id,omitempty"`
	ServerTimeMs int64     `json:"server_time_ms,omitempty"`
	Snapshot     *Snapshot `json:"snapshot,omitempty"`
	Event        *Event    `json:"event,omitempty"`
	Message      string    `json:"message,omitempty"`
	Details      string    `json:"details,omitempty"`
}

// HelloFrame construye el frame de bienvenida de una suscripción.
func HelloFrame(runID string, serverTimeMs int64) Frame {
	return Frame{Type: FrameHello, RunID: runID, ServerTimeMs: serverTimeMs}
}

// SnapshotFrame envuelve un snapshot del estado.
func SnapshotFrame(snap Snapshot) Frame {
	return Frame{Type: FrameSnapshot, Snapshot: &snap}
}

// EventFrame envuelve un evento de la partida.
func EventFrame(ev Event) Frame {
	return Frame{Type: FrameEvent, Event: &ev}
}

// ErrorFrame envuelve un error de ejecución del run.
func ErrorFrame(message, details string) Frame {
	return Frame{Type: FrameError, Message: message, Details: details}
}
