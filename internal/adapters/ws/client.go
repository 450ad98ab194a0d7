package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

const (
	// Tiempo máximo para escribir un mensaje al peer.
	writeWait = 10 * time.Second
	// Tamaño máximo de mensaje aceptado desde el peer.
	maxMessageSize = 512
	// Tiempo máximo de espera del siguiente pong.
	pongWait = 60 * time.Second
	// Periodo de ping; debe ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// subscriber adapta una conexión websocket al puerto de suscriptor del
// coordinador. Las escrituras van serializadas bajo el mutex.
type subscriber struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	once   sync.Once
	closed chan struct{}
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{
		id:     uuid.NewString(),
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// ID identifica al suscriptor dentro del coordinador.
func (s *subscriber) ID() string {
	return s.id
}

// Send entrega un frame como JSON con deadline de escritura.
func (s *subscriber) Send(frame domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("ws.Send: %w", err)
	}
	if err := s.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("ws.Send: %w", err)
	}
	return nil
}

// ping envía un mensaje de control ping.
func (s *subscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close envía el close de cortesía y cierra la conexión. Idempotente.
func (s *subscriber) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}
