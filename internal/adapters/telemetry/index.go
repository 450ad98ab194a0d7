package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    seed             INTEGER NOT NULL,
    created_at       INTEGER NOT NULL,
    status           TEXT NOT NULL,
    winner_player_id TEXT NOT NULL DEFAULT '',
    turn_count       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS decisions (
    run_id          TEXT NOT NULL,
    decision_id     TEXT NOT NULL,
    turn_index      INTEGER NOT NULL,
    player_id       TEXT NOT NULL,
    decision_type   TEXT NOT NULL,
    retry_used      INTEGER NOT NULL DEFAULT 0,
    fallback_used   INTEGER NOT NULL DEFAULT 0,
    fallback_reason TEXT NOT NULL DEFAULT '',
    latency_ms      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, decision_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created    ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_run   ON decisions(run_id, turn_index);
`

// SQLiteIndex implementa ports.RunIndex sobre {runs_dir}/index.db.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex abre (o crea) el índice en la ruta dada y aplica el schema.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry.NewSQLiteIndex: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry.NewSQLiteIndex: apply schema: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// SaveRun inserta o actualiza la fila de la partida.
func (s *SQLiteIndex) SaveRun(ctx context.Context, row domain.RunRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, seed, created_at, status, winner_player_id, turn_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			status           = excluded.status,
			winner_player_id = excluded.winner_player_id,
			turn_count       = excluded.turn_count
	`, row.RunID, row.Seed, row.CreatedAt, row.Status, row.WinnerPlayerID, row.TurnCount)
	if err != nil {
		return fmt.Errorf("telemetry.SaveRun: %s: %w", row.RunID, err)
	}
	return nil
}

// SaveDecision inserta la fila de una decisión resuelta. Reinsertar la misma
// decisión (replay de un run interrumpido) no es un error.
func (s *SQLiteIndex) SaveDecision(ctx context.Context, row domain.DecisionRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO decisions
			(run_id, decision_id, turn_index, player_id, decision_type,
			 retry_used, fallback_used, fallback_reason, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.RunID, row.DecisionID, row.TurnIndex, row.PlayerID, row.DecisionType,
		boolInt(row.RetryUsed), boolInt(row.FallbackUsed), row.FallbackReason, row.LatencyMs)
	if err != nil {
		return fmt.Errorf("telemetry.SaveDecision: %s: %w", row.DecisionID, err)
	}
	return nil
}

// ListRuns devuelve las partidas registradas, la más reciente primero.
func (s *SQLiteIndex) ListRuns(ctx context.Context) ([]domain.RunRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seed, created_at, status, winner_player_id, turn_count
		FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("telemetry.ListRuns: %w", err)
	}
	defer rows.Close()

	var out []domain.RunRow
	for rows.Next() {
		var row domain.RunRow
		if err := rows.Scan(&row.RunID, &row.Seed, &row.CreatedAt, &row.Status,
			&row.WinnerPlayerID, &row.TurnCount); err != nil {
			return nil, fmt.Errorf("telemetry.ListRuns: scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetRun devuelve la fila de una partida concreta.
func (s *SQLiteIndex) GetRun(ctx context.Context, runID string) (domain.RunRow, error) {
	var row domain.RunRow
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, seed, created_at, status, winner_player_id, turn_count
		FROM runs WHERE run_id = ?
	`, runID).Scan(&row.RunID, &row.Seed, &row.CreatedAt, &row.Status,
		&row.WinnerPlayerID, &row.TurnCount)
	if err != nil {
		return domain.RunRow{}, fmt.Errorf("telemetry.GetRun: %s: %w", runID, err)
	}
	return row, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
