package domain

// Tipos de entrada del log de decisiones: cada decisión escribe un par
// started/resolved.
const (
	DecisionStarted  = "decision_started"
	DecisionResolved = "decision_resolved"
)

// DecisionLogEntry es una línea de decisions.jsonl. Los campos de resolución
// sólo se rellenan en la entrada "decision_resolved".
type DecisionLogEntry struct {
	Kind          string `json:"kind"`
	SchemaVersion string `json:"schema_version"`
	RunID         string `json:"run_id"`
	DecisionID    string `json:"decision_id"`
	TurnIndex     int    `json:"turn_index"`
	PlayerID      string `json:"player_id"`
	DecisionType  string `json:"decision_type"`
	Model         string `json:"model,omitempty"`
	// Reloj de pared en ms; excluido de la comparación de determinismo.
	Timestamp int64 `json:"timestamp"`

	ActionName       string `json:"action_name,omitempty"`
	Attempts         int    `json:"attempts,omitempty"`
	RetryUsed        bool   `json:"retry_used,omitempty"`
	FallbackUsed     bool   `json:"fallback_used,omitempty"`
	FallbackReason   string `json:"fallback_reason,omitempty"`
	LatencyMs        int64  `json:"latency_ms,omitempty"`
	FirstEventSeq    *int   `json:"first_event_seq,omitempty"`
	LastEventSeq     *int   `json:"last_event_seq,omitempty"`
	TokensPrompt     int    `json:"tokens_prompt,omitempty"`
	TokensCompletion int    `json:"tokens_completion,omitempty"`
}

// ActionRecord es una línea de actions.jsonl: la acción final aplicada al
// engine, suficiente para reejecutar la partida.
type ActionRecord struct {
	Action
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// DecisionOutcome es el resultado completo de arbitrar una decisión: la
// acción elegida y los metadatos de intentos para telemetría.
type DecisionOutcome struct {
	Action           Action
	Meta             DecisionMeta
	Model            string
	Attempts         int
	RetryUsed        bool
	FallbackUsed     bool
	FallbackReason   string
	LatencyMs        int64
	TokensPrompt     int
	TokensCompletion int
}

// RunRow es la fila de una partida en el índice SQLite.
type RunRow struct {
	RunID          string
	Seed           int64
	CreatedAt      int64
	Status         string
	WinnerPlayerID string
	TurnCount      int
}

// Estados de una partida en el índice.
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusStopped  = "stopped"
)

// DecisionRow es la fila de una decisión resuelta en el índice SQLite.
type DecisionRow struct {
	RunID          string
	DecisionID     string
	TurnIndex      int
	PlayerID       string
	DecisionType   string
	RetryUsed      bool
	FallbackUsed   bool
	FallbackReason string
	LatencyMs      int64
}

// PlayerSummary agrega el resultado final de un jugador.
type PlayerSummary struct {
	PlayerID     string   `json:"player_id"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	FinalCash    int      `json:"final_cash"`
	Bankrupt     bool     `json:"bankrupt"`
	Properties   []string `json:"properties"`
	Decisions    int      `json:"decisions"`
	Invalid      int      `json:"invalid_attempts"`
	Fallbacks    int      `json:"fallbacks"`
	AvgLatencyMs int64    `json:"avg_latency_ms"`
	TokensPrompt int      `json:"tokens_prompt"`
	TokensOutput int      `json:"tokens_completion"`
}

// Acquisition es una entrada de la cronología de adquisiciones.
type Acquisition struct {
	Seq      int    `json:"seq"`
	PlayerID string `json:"player_id"`
	SpaceKey string `json:"space_key"`
	Via      string `json:"via"` // BUY, AUCTION o TRADE
	Price    *int   `json:"price,omitempty"`
}

// RunSummary es el resumen final de la partida, reconstruido desde los logs
// persistidos.
type RunSummary struct {
	SchemaVersion   string          `json:"schema_version"`
	RunID           string          `json:"run_id"`
	Seed            int64           `json:"seed"`
	WinnerPlayerID  string          `json:"winner_player_id"`
	EndReason       string          `json:"end_reason"`
	TurnsPlayed     int             `json:"turns_played"`
	Players         []PlayerSummary `json:"players"`
	Acquisitions    []Acquisition   `json:"acquisitions"`
	TotalDecisions  int             `json:"total_decisions"`
	TotalFallbacks  int             `json:"total_fallbacks"`
	MedianLatencyMs int64           `json:"median_latency_ms"`
}
