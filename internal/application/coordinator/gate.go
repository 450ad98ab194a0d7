package coordinator

import (
	"context"
	"sync"
)

// Gate es la barrera de pausa compartida entre el runner y el pipeline: las
// decisiones en vuelo no se entregan mientras la partida esté pausada.
type Gate struct {
	mu   sync.Mutex
	open chan struct{} // cerrado cuando la barrera está abierta
}

// NewGate crea una barrera abierta.
func NewGate() *Gate {
	g := &Gate{open: make(chan struct{})}
	close(g.open)
	return g
}

// Pause cierra la barrera. Idempotente.
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
	}
}

// Resume abre la barrera y despierta a todos los que esperan. Idempotente.
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
	default:
		close(g.open)
	}
}

// Paused indica si la barrera está cerrada.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		return false
	default:
		return true
	}
}

// Wait bloquea hasta que la barrera esté abierta o el contexto se cancele.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
