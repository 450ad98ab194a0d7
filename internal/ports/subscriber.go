package ports

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// Subscriber recibe los frames difundidos de una partida. Un Send fallido
// provoca la expulsión del suscriptor; nunca bloquea al engine.
type Subscriber interface {
	// ID identifica al suscriptor dentro del coordinador.
	ID() string

	// Send entrega un frame. Debe respetar sus propios deadlines de
	// escritura.
	Send(frame domain.Frame) error

	// Close libera la conexión subyacente.
	Close() error
}
