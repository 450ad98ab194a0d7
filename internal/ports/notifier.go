package ports

import (
	"context"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Notifier presenta el resultado de la partida al usuario.
type Notifier interface {
	// Notify muestra el resumen final por jugador.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, summary domain.RunSummary) error
}
