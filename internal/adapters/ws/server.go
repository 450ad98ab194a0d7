// Package ws expone la partida activa por HTTP: suscripción websocket a los
// frames del coordinador y endpoints de control de runs.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/monopolyarena/internal/application/coordinator"
	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

// Arena es la superficie del coordinador que necesita el gateway.
type Arena interface {
	StartRun(ctx context.Context, req coordinator.RunRequest) (string, <-chan struct{}, error)
	StopRun(ctx context.Context) error
	Pause() error
	Resume() error
	ActiveRunID() string
	Subscribe(sub ports.Subscriber) error
	Unsubscribe(subscriberID string)
}

// Config ajusta el gateway.
type Config struct {
	Addr         string
	DefaultModel string // alineación por defecto cuando POST /runs no trae jugadores
}

// Server es el gateway HTTP/websocket del coordinador.
type Server struct {
	cfg      Config
	arena    Arena
	index    ports.RunIndex
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer crea el gateway. index puede ser nil (sin listado de partidas).
func NewServer(cfg Config, arena Arena, index ports.RunIndex, log *slog.Logger) *Server {
	return &Server{
		cfg:   cfg,
		arena: arena,
		index: index,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// El visor se sirve desde cualquier origen; no hay credenciales.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler devuelve el enrutador del gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("POST /runs", s.handleStartRun)
	mux.HandleFunc("DELETE /runs/current", s.handleStopRun)
	return mux
}

// Run sirve el gateway hasta que el contexto se cancele.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("gateway listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"run_id": s.arena.ActiveRunID(),
	})
}

// runRowResponse es la proyección JSON de una fila del índice.
type runRowResponse struct {
	RunID          string `json:"run_id"`
	Seed           int64  `json:"seed"`
	CreatedAt      int64  `json:"created_at"`
	Status         string `json:"status"`
	WinnerPlayerID string `json:"winner_player_id,omitempty"`
	TurnCount      int    `json:"turn_count"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run index not configured"})
		return
	}
	rows, err := s.index.ListRuns(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]runRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, runRowResponse{
			RunID:          row.RunID,
			Seed:           row.Seed,
			CreatedAt:      row.CreatedAt,
			Status:         row.Status,
			WinnerPlayerID: row.WinnerPlayerID,
			TurnCount:      row.TurnCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// startRunRequest es el cuerpo de POST /runs. Sin jugadores se usa la
// alineación por defecto del gateway.
type startRunRequest struct {
	Seed    int64            `json:"seed"`
	Players []players.Player `json:"players,omitempty"`
	RunID   string           `json:"run_id,omitempty"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var body startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}
	if len(body.Players) == 0 {
		body.Players = players.Default(s.cfg.DefaultModel)
	}

	id, _, err := s.arena.StartRun(r.Context(), coordinator.RunRequest{
		Seed:    body.Seed,
		Players: body.Players,
		RunID:   body.RunID,
		Prefix:  "arena",
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": id})
}

func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	err := s.arena.StopRun(r.Context())
	switch {
	case errors.Is(err, coordinator.ErrNoActiveRun):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := newSubscriber(conn)
	if err := s.arena.Subscribe(sub); err != nil {
		sub.Send(domain.ErrorFrame("subscribe rejected", err.Error()))
		sub.Close()
		return
	}

	go s.pingLoop(sub)
	s.readPump(sub)
}

// command es un mensaje de control del visor.
type command struct {
	Type string `json:"type"` // pause | resume
}

// readPump consume los mensajes del peer hasta que la conexión cae; mantiene
// vivo el deadline de lectura con los pongs y atiende pause/resume.
func (s *Server) readPump(sub *subscriber) {
	defer func() {
		s.arena.Unsubscribe(sub.ID())
		sub.Close()
	}()

	sub.conn.SetReadLimit(maxMessageSize)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("subscriber read failed", "subscriber_id", sub.ID(), "error", err)
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		switch cmd.Type {
		case "pause":
			if err := s.arena.Pause(); err != nil {
				s.log.Warn("pause rejected", "subscriber_id", sub.ID(), "error", err)
			}
		case "resume":
			if err := s.arena.Resume(); err != nil {
				s.log.Warn("resume rejected", "subscriber_id", sub.ID(), "error", err)
			}
		}
	}
}

// pingLoop mantiene viva la conexión con pings periódicos.
func (s *Server) pingLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-sub.closed:
			return
		case <-ticker.C:
			if err := sub.ping(); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
