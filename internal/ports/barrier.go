package ports

import "context"

// Barrier es la barrera cooperativa de pausa/reanudación que comparte el
// coordinador con el pipeline: el avance del engine y el commit de acciones
// esperan en ella.
type Barrier interface {
	// Wait bloquea mientras la barrera esté pausada. Devuelve el error del
	// contexto si se cancela durante la espera.
	Wait(ctx context.Context) error
}
