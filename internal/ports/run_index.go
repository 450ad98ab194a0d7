package ports

import (
	"context"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// RunIndex mantiene el índice SQLite de partidas y decisiones consultable
// desde la CLI.
type RunIndex interface {
	// SaveRun inserta o actualiza la fila de la partida.
	SaveRun(ctx context.Context, row domain.RunRow) error

	// SaveDecision inserta la fila de una decisión resuelta.
	SaveDecision(ctx context.Context, row domain.DecisionRow) error

	// ListRuns devuelve las partidas registradas, la más reciente primero.
	ListRuns(ctx context.Context) ([]domain.RunRow, error)

	// GetRun devuelve la fila de una partida concreta.
	GetRun(ctx context.Context, runID string) (domain.RunRow, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
