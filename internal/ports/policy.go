package ports

import (
	"context"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// DecisionPolicy arbitra una decisión pendiente del engine y produce siempre
// una acción aplicable: válida o fallback bien formado, nunca un error de
// juego.
type DecisionPolicy interface {
	// Decide resuelve la decisión. El error sólo es no-nil ante cancelación
	// del contexto.
	Decide(ctx context.Context, d *domain.DecisionPoint) (domain.DecisionOutcome, error)
}
