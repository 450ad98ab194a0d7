// Package coordinator orquesta una partida de principio a fin: engine,
// política de decisión, telemetría, pausa y difusión a suscriptores. A lo
// sumo una partida activa por proceso.
package coordinator

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/alejandrodnm/monopolyarena/internal/adapters/telemetry"
	"github.com/alejandrodnm/monopolyarena/internal/application/engine"
	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

// ErrNoActiveRun se devuelve al operar sin partida en curso.
var ErrNoActiveRun = errors.New("no active run")

// PolicyFactory construye la política de decisión de una partida concreta,
// con su recorder y su barrera de pausa ya creados.
type PolicyFactory func(rec ports.Recorder, barrier ports.Barrier, lineup []players.Player) ports.DecisionPolicy

// eventObserver lo implementan las políticas con memoria entre decisiones.
type eventObserver interface {
	Observe(events []domain.Event)
}

// Config ajusta el comportamiento del coordinador.
type Config struct {
	RunsDir            string
	MaxTurns           int
	TsStepMs           int64
	AllowExtraTurns    bool
	EventDelay         time.Duration // pausa entre frames para visionado en vivo; cero en tests
	StopAfterDecisions int
}

// RunRequest describe la partida a arrancar.
type RunRequest struct {
	Seed    int64
	Players []players.Player
	RunID   string // opcional; vacío deriva el id determinista
	Prefix  string // "headless" o "arena"
}

// Coordinator orquesta la partida activa.
type Coordinator struct {
	cfg       Config
	index     ports.RunIndex
	notifier  ports.Notifier
	newPolicy PolicyFactory
	log       *slog.Logger
	now       func() time.Time

	mu  sync.Mutex
	run *activeRun
}

// activeRun es el estado de la partida en curso.
type activeRun struct {
	id       string
	seed     int64
	lineup   []players.Player
	engine   *engine.Engine
	recorder *telemetry.FileRecorder
	gate     *Gate
	policy   ports.DecisionPolicy
	cancel   context.CancelFunc
	done     chan struct{}

	subMu    sync.Mutex
	subs     map[string]ports.Subscriber
	lastSnap domain.Snapshot
}

// New crea el coordinador. index y notifier pueden ser nil (sin índice, sin
// resumen en consola).
func New(cfg Config, index ports.RunIndex, notifier ports.Notifier, factory PolicyFactory, log *slog.Logger) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		index:     index,
		notifier:  notifier,
		newPolicy: factory,
		log:       log,
		now:       time.Now,
	}
}

// RunID deriva el identificador determinista de una partida.
func RunID(prefix string, seed int64, lineup []players.Player) string {
	digest := sha1.Sum([]byte(players.Canonical(lineup)))
	return fmt.Sprintf("%s-%d-%x", prefix, seed, digest[:4])
}

// StartRun arranca la partida. Repetir la misma petición con una partida ya
// activa es idempotente; una petición distinta detiene la activa primero.
// El canal devuelto se cierra cuando la partida termina.
func (c *Coordinator) StartRun(ctx context.Context, req RunRequest) (string, <-chan struct{}, error) {
	if err := players.Validate(req.Players, ""); err != nil {
		return "", nil, fmt.Errorf("coordinator.StartRun: %w", err)
	}
	prefix := req.Prefix
	if prefix == "" {
		prefix = "headless"
	}
	id := req.RunID
	if id == "" {
		id = RunID(prefix, req.Seed, req.Players)
	}

	c.mu.Lock()
	if c.run != nil {
		if c.run.id == id && !c.run.closed() {
			done := c.run.done
			c.mu.Unlock()
			return id, done, nil
		}
		c.mu.Unlock()
		if err := c.StopRun(ctx); err != nil && !errors.Is(err, ErrNoActiveRun) {
			return "", nil, fmt.Errorf("coordinator.StartRun: stop previous: %w", err)
		}
		c.mu.Lock()
	}
	defer c.mu.Unlock()

	recorder, err := telemetry.NewFileRecorder(filepath.Join(c.cfg.RunsDir, id))
	if err != nil {
		return "", nil, fmt.Errorf("coordinator.StartRun: %w", err)
	}

	seats := make([]engine.PlayerSeat, 0, len(req.Players))
	for _, p := range req.Players {
		seats = append(seats, engine.PlayerSeat{ID: p.ID, Name: p.Name})
	}
	eng, err := engine.New(engine.Config{
		RunID:           id,
		Seed:            req.Seed,
		Players:         seats,
		MaxTurns:        c.cfg.MaxTurns,
		TsStepMs:        c.cfg.TsStepMs,
		AllowExtraTurns: c.cfg.AllowExtraTurns,
	}, c.log)
	if err != nil {
		recorder.Close()
		return "", nil, fmt.Errorf("coordinator.StartRun: %w", err)
	}

	if err := recorder.WriteManifest(telemetry.Manifest{
		SchemaVersion:   domain.SchemaVersion,
		RunID:           id,
		Seed:            req.Seed,
		Players:         req.Players,
		MaxTurns:        c.cfg.MaxTurns,
		TsStepMs:        c.cfg.TsStepMs,
		AllowExtraTurns: c.cfg.AllowExtraTurns,
		CreatedAt:       c.now().UnixMilli(),
	}); err != nil {
		recorder.Close()
		return "", nil, fmt.Errorf("coordinator.StartRun: %w", err)
	}

	gate := NewGate()
	runCtx, cancel := context.WithCancel(context.Background())
	run := &activeRun{
		id:       id,
		seed:     req.Seed,
		lineup:   req.Players,
		engine:   eng,
		recorder: recorder,
		gate:     gate,
		policy:   c.newPolicy(recorder, gate, req.Players),
		cancel:   cancel,
		done:     make(chan struct{}),
		subs:     map[string]ports.Subscriber{},
		lastSnap: eng.Snapshot(),
	}
	c.run = run

	if c.index != nil {
		if err := c.index.SaveRun(ctx, domain.RunRow{
			RunID:     id,
			Seed:      req.Seed,
			CreatedAt: c.now().UnixMilli(),
			Status:    domain.RunStatusRunning,
		}); err != nil {
			c.log.Error("save run row failed", "run_id", id, "error", err)
		}
	}

	c.log.Info("run started", "run_id", id, "seed", req.Seed)
	go c.runLoop(runCtx, run)
	return id, run.done, nil
}

// StopRun detiene la partida activa y espera a que el runner cierre.
func (c *Coordinator) StopRun(ctx context.Context) error {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run == nil || run.closed() {
		return ErrNoActiveRun
	}

	run.gate.Resume()
	run.cancel()
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("coordinator.StopRun: %w", ctx.Err())
	}
}

// Pause cierra la barrera de pausa de la partida activa.
func (c *Coordinator) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil || c.run.closed() {
		return ErrNoActiveRun
	}
	c.run.gate.Pause()
	c.log.Info("run paused", "run_id", c.run.id)
	return nil
}

// Resume abre la barrera de pausa de la partida activa.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil || c.run.closed() {
		return ErrNoActiveRun
	}
	c.run.gate.Resume()
	c.log.Info("run resumed", "run_id", c.run.id)
	return nil
}

// ActiveRunID devuelve el id de la partida activa, o vacío.
func (c *Coordinator) ActiveRunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil || c.run.closed() {
		return ""
	}
	return c.run.id
}

// Subscribe registra un suscriptor y le entrega HELLO y el último snapshot de
// forma síncrona antes de incluirlo en la difusión.
func (c *Coordinator) Subscribe(sub ports.Subscriber) error {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run == nil || run.closed() {
		return ErrNoActiveRun
	}

	run.subMu.Lock()
	snap := run.lastSnap
	run.subMu.Unlock()

	if err := sub.Send(domain.HelloFrame(run.id, c.now().UnixMilli())); err != nil {
		return fmt.Errorf("coordinator.Subscribe: hello: %w", err)
	}
	if err := sub.Send(domain.SnapshotFrame(snap)); err != nil {
		return fmt.Errorf("coordinator.Subscribe: snapshot: %w", err)
	}

	run.subMu.Lock()
	run.subs[sub.ID()] = sub
	run.subMu.Unlock()
	c.log.Debug("subscriber joined", "run_id", run.id, "subscriber_id", sub.ID())
	return nil
}

// Unsubscribe retira un suscriptor de la difusión.
func (c *Coordinator) Unsubscribe(subscriberID string) {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run == nil {
		return
	}
	run.subMu.Lock()
	delete(run.subs, subscriberID)
	run.subMu.Unlock()
}

func (r *activeRun) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
