// Package engine implementa el árbitro de la partida: una máquina de estados
// pura sobre tablero, jugadores, banca, subastas, intercambios y deudas.
// El protocolo es advance_until_decision / apply_action; el engine nunca
// llama a la red ni reintenta nada.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

var (
	// ErrIllegalAction se devuelve cuando una acción viola el contrato.
	ErrIllegalAction = errors.New("illegal action")
	// ErrNoPendingDecision se devuelve cuando no hay decisión que resolver.
	ErrNoPendingDecision = errors.New("no pending decision")
	// ErrDecisionAlreadyApplied se devuelve al repetir un decision_id.
	ErrDecisionAlreadyApplied = errors.New("decision already applied")
)

// Config define una partida determinista. Con la misma Config y la misma
// secuencia de acciones, el engine emite exactamente los mismos eventos.
type Config struct {
	RunID           string
	Seed            int64
	Players         []PlayerSeat
	MaxTurns        int
	StartTsMs       int64
	TsStepMs        int64
	AllowExtraTurns bool
}

// PlayerSeat identifica un asiento de la partida.
type PlayerSeat struct {
	ID   string
	Name string
}

// StepResult es lo que devuelven advance y apply: los eventos emitidos desde
// la última llamada, la decisión pendiente (o nil) y un snapshot.
type StepResult struct {
	Events   []domain.Event
	Decision *domain.DecisionPoint
	Snapshot domain.Snapshot
}

// GameResult resume el desenlace de la partida.
type GameResult struct {
	WinnerPlayerID string `json:"winner_player_id"`
	Reason         string `json:"reason"`
	TurnCount      int    `json:"turn_count"`
}

// Razones de fin de partida.
const (
	EndReasonBankruptcy = "BANKRUPTCY"
	EndReasonMaxTurns   = "MAX_TURNS_REACHED"
	EndReasonStopped    = "STOPPED"
)

// Engine es el árbitro. No es reentrante: advance y apply_action no deben
// solaparse nunca.
type Engine struct {
	log *slog.Logger
	cfg Config

	rng  *domain.Rand
	roll func() (int, int)

	state      *domain.GameState
	chanceDeck []domain.Card
	chestDeck  []domain.Card

	seq         int
	decisionSeq int
	buf         []domain.Event

	pending *domain.DecisionPoint
	applied map[string]bool

	started      bool
	gameOver     bool
	result       GameResult
	stopReason   string
	rolledDouble bool
	extraTurn    bool

	// Continuación tras saldar una liquidación (multa forzosa de cárcel).
	afterSettle settleContinuation
}

// settleContinuation indica qué retomar cuando una liquidación queda saldada.
type settleContinuation int

const (
	afterSettleNone settleContinuation = iota
	afterSettleJailExit
)

// New construye el engine con el estado inicial y los mazos barajados.
func New(cfg Config, log *slog.Logger) (*Engine, error) {
	if len(cfg.Players) < 2 {
		return nil, fmt.Errorf("engine.New: need at least 2 players, got %d", len(cfg.Players))
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 20
	}
	if cfg.TsStepMs <= 0 {
		cfg.TsStepMs = 250
	}
	if log == nil {
		log = slog.Default()
	}

	players := make([]*domain.PlayerState, 0, len(cfg.Players))
	seen := map[string]bool{}
	for _, seat := range cfg.Players {
		if seat.ID == "" {
			return nil, fmt.Errorf("engine.New: player with empty id")
		}
		if seen[seat.ID] {
			return nil, fmt.Errorf("engine.New: duplicate player id %q", seat.ID)
		}
		seen[seat.ID] = true
		players = append(players, &domain.PlayerState{
			ID:   seat.ID,
			Name: seat.Name,
			Cash: domain.InitialCash,
		})
	}

	rng := domain.NewRand(cfg.Seed)
	e := &Engine{
		log:        log.With("run_id", cfg.RunID),
		cfg:        cfg,
		rng:        rng,
		state:      domain.NewGameState(players),
		chanceDeck: domain.ChanceCards(),
		chestDeck:  domain.CommunityChestCards(),
		applied:    map[string]bool{},
	}
	e.roll = rng.RollDice
	rng.Shuffle(len(e.chanceDeck), func(i, j int) {
		e.chanceDeck[i], e.chanceDeck[j] = e.chanceDeck[j], e.chanceDeck[i]
	})
	rng.Shuffle(len(e.chestDeck), func(i, j int) {
		e.chestDeck[i], e.chestDeck[j] = e.chestDeck[j], e.chestDeck[i]
	})
	return e, nil
}

// State expone el estado mutable; solo para tests del propio paquete.
func (e *Engine) State() *domain.GameState {
	return e.state
}

// Snapshot devuelve la proyección pública del estado actual.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.BuildSnapshot(e.cfg.RunID, e.state)
}

// IsGameOver indica si la partida terminó.
func (e *Engine) IsGameOver() bool {
	return e.gameOver
}

// Result devuelve el desenlace; solo es significativo tras el fin de partida.
func (e *Engine) Result() GameResult {
	return e.result
}

// PendingDecision devuelve la decisión sin resolver, o nil.
func (e *Engine) PendingDecision() *domain.DecisionPoint {
	return e.pending
}

// RequestStop registra una petición de parada; el siguiente advance cierra
// la partida.
func (e *Engine) RequestStop(reason string) {
	if reason == "" {
		reason = EndReasonStopped
	}
	e.stopReason = reason
}

// AdvanceUntilDecision ejecuta turnos internos hasta producir una decisión,
// terminar la partida o agotar maxSteps turnos sin decisión pendiente.
func (e *Engine) AdvanceUntilDecision(maxSteps int) StepResult {
	if maxSteps <= 0 {
		maxSteps = 1
	}
	if e.pending != nil || e.gameOver {
		return e.flush()
	}
	if e.stopReason != "" {
		e.endGame(e.richestAlive(), e.stopReason)
		return e.flush()
	}

	if !e.started {
		e.started = true
		e.emit(domain.EventGameStarted, engineActor(), map[string]any{
			"seed":      e.cfg.Seed,
			"max_turns": e.cfg.MaxTurns,
			"players":   e.playerIDs(),
		})
	}

	for step := 0; step < maxSteps; step++ {
		e.playTurn()
		if e.pending != nil || e.gameOver {
			break
		}
	}
	return e.flush()
}

// flush entrega los eventos acumulados y resetea el buffer.
func (e *Engine) flush() StepResult {
	events := e.buf
	e.buf = nil
	return StepResult{Events: events, Decision: e.pending, Snapshot: e.Snapshot()}
}

// emit añade un evento numerado al buffer y devuelve su id.
func (e *Engine) emit(eventType string, actor domain.Actor, payload map[string]any) string {
	if payload == nil {
		payload = map[string]any{}
	}
	id := fmt.Sprintf("%s-evt-%06d", e.cfg.RunID, e.seq)
	ev := domain.Event{
		SchemaVersion: domain.SchemaVersion,
		RunID:         e.cfg.RunID,
		EventID:       id,
		Seq:           e.seq,
		TurnIndex:     e.state.TurnIndex,
		TsMs:          e.cfg.StartTsMs + int64(e.seq)*e.cfg.TsStepMs,
		Actor:         actor,
		Type:          eventType,
		Payload:       payload,
	}
	e.seq++
	e.buf = append(e.buf, ev)
	return id
}

func (e *Engine) playerIDs() []string {
	out := make([]string, 0, len(e.state.Players))
	for _, p := range e.state.Players {
		out = append(out, p.ID)
	}
	return out
}

func engineActor() domain.Actor {
	return domain.Actor{Kind: domain.ActorEngine}
}

func playerActor(id string) domain.Actor {
	return domain.Actor{Kind: domain.ActorPlayer, PlayerID: id}
}

// endGame cierra la partida y emite GAME_ENDED.
func (e *Engine) endGame(winner, reason string) {
	if e.gameOver {
		return
	}
	e.gameOver = true
	e.pending = nil
	e.result = GameResult{WinnerPlayerID: winner, Reason: reason, TurnCount: e.state.TurnIndex}
	e.emit(domain.EventGameEnded, engineActor(), map[string]any{
		"winner_player_id": winner,
		"reason":           reason,
	})
	e.log.Info("game ended", "winner", winner, "reason", reason, "turns", e.state.TurnIndex)
}

// richestAlive devuelve el jugador vivo con más efectivo; primer asiento en
// caso de empate.
func (e *Engine) richestAlive() string {
	var winner string
	best := -1
	for _, p := range e.state.Players {
		if p.Bankrupt {
			continue
		}
		if p.Cash > best {
			best = p.Cash
			winner = p.ID
		}
	}
	return winner
}
