package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/application/pipeline"
	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeIndex struct {
	mu        sync.Mutex
	runs      map[string]domain.RunRow
	decisions []domain.DecisionRow
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{runs: map[string]domain.RunRow{}}
}

func (f *fakeIndex) SaveRun(_ context.Context, row domain.RunRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.runs[row.RunID]; ok {
		row.CreatedAt = prev.CreatedAt
	}
	f.runs[row.RunID] = row
	return nil
}

func (f *fakeIndex) SaveDecision(_ context.Context, row domain.DecisionRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, row)
	return nil
}

func (f *fakeIndex) ListRuns(_ context.Context) ([]domain.RunRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.RunRow, 0, len(f.runs))
	for _, row := range f.runs {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeIndex) GetRun(_ context.Context, runID string) (domain.RunRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.runs[runID]
	if !ok {
		return domain.RunRow{}, errors.New("not found")
	}
	return row, nil
}

func (f *fakeIndex) Close() error { return nil }

func (f *fakeIndex) run(runID string) domain.RunRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[runID]
}

func (f *fakeIndex) decisionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.decisions)
}

func (f *fakeIndex) decisionRows() []domain.DecisionRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.DecisionRow(nil), f.decisions...)
}

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []domain.RunSummary
}

func (f *fakeNotifier) Notify(_ context.Context, summary domain.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return nil
}

func (f *fakeNotifier) all() []domain.RunSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RunSummary(nil), f.summaries...)
}

// fakeSub acumula frames; a partir de failAfter envíos, Send falla.
type fakeSub struct {
	id        string
	failAfter int // 0 = nunca falla

	mu     sync.Mutex
	frames []domain.Frame
	closed bool
}

func (s *fakeSub) ID() string { return s.id }

func (s *fakeSub) Send(frame domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.frames) >= s.failAfter {
		return errors.New("write failed")
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSub) snapshotFrames() []domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Frame(nil), s.frames...)
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// blockingPolicy bloquea cada decisión hasta que el contexto se cancele.
type blockingPolicy struct{}

func (blockingPolicy) Decide(ctx context.Context, _ *domain.DecisionPoint) (domain.DecisionOutcome, error) {
	<-ctx.Done()
	return domain.DecisionOutcome{}, ctx.Err()
}

// pausingPolicy pausa la partida desde su primera decisión y el resto lo
// juega con la política determinista.
type pausingPolicy struct {
	gate *Gate
	once sync.Once
}

func (p *pausingPolicy) Decide(ctx context.Context, d *domain.DecisionPoint) (domain.DecisionOutcome, error) {
	p.once.Do(p.gate.Pause)
	return pipeline.ScriptedPolicy{}.Decide(ctx, d)
}

// signalingPolicy avisa al recibir la primera decisión y bloquea hasta que el
// contexto se cancele.
type signalingPolicy struct {
	entered chan struct{}
	once    sync.Once
}

func (p *signalingPolicy) Decide(ctx context.Context, _ *domain.DecisionPoint) (domain.DecisionOutcome, error) {
	p.once.Do(func() { close(p.entered) })
	<-ctx.Done()
	return domain.DecisionOutcome{}, ctx.Err()
}

func scriptedFactory(_ ports.Recorder, _ ports.Barrier, _ []players.Player) ports.DecisionPolicy {
	return pipeline.ScriptedPolicy{}
}

func pausingFactory(_ ports.Recorder, barrier ports.Barrier, _ []players.Player) ports.DecisionPolicy {
	return &pausingPolicy{gate: barrier.(*Gate)}
}

func blockingFactory(_ ports.Recorder, _ ports.Barrier, _ []players.Player) ports.DecisionPolicy {
	return blockingPolicy{}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish in time")
	}
}

func newTestCoordinator(t *testing.T, cfg Config, factory PolicyFactory) (*Coordinator, *fakeIndex, *fakeNotifier) {
	t.Helper()
	if cfg.RunsDir == "" {
		cfg.RunsDir = t.TempDir()
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 5
	}
	if cfg.TsStepMs == 0 {
		cfg.TsStepMs = 1
	}
	idx := newFakeIndex()
	notifier := &fakeNotifier{}
	return New(cfg, idx, notifier, factory, discardLogger()), idx, notifier
}

func TestRunID_Deterministic(t *testing.T) {
	lineup := players.Default("openai/gpt-oss-120b")

	a := RunID("headless", 42, lineup)
	b := RunID("headless", 42, lineup)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "headless-42-")

	assert.NotEqual(t, a, RunID("headless", 43, lineup))
	assert.NotEqual(t, a, RunID("arena", 42, lineup))

	other := players.Default("openai/gpt-oss-120b")
	other[0].Name = "Otto"
	assert.NotEqual(t, a, RunID("headless", 42, other))
}

func TestCoordinator_RunsToCompletion(t *testing.T) {
	cfg := Config{RunsDir: t.TempDir(), MaxTurns: 5, TsStepMs: 1}
	c, idx, notifier := newTestCoordinator(t, cfg, scriptedFactory)

	id, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    7,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)
	waitDone(t, done)

	dir := filepath.Join(cfg.RunsDir, id)
	for _, name := range []string{"events.jsonl", "decisions.jsonl", "actions.jsonl", "summary.json"} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, name)
	}

	row := idx.run(id)
	assert.Equal(t, domain.RunStatusFinished, row.Status)
	assert.Equal(t, int64(7), row.Seed)
	assert.NotEmpty(t, row.WinnerPlayerID)
	assert.Greater(t, row.TurnCount, 0)
	assert.Greater(t, idx.decisionCount(), 0)

	summaries := notifier.all()
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].RunID)
	assert.Len(t, summaries[0].Players, players.RequiredCount)
	assert.Equal(t, "MAX_TURNS_REACHED", summaries[0].EndReason)

	assert.Empty(t, c.ActiveRunID())
}

func TestCoordinator_StartRunIsIdempotent(t *testing.T) {
	c, idx, _ := newTestCoordinator(t, Config{}, blockingFactory)
	req := RunRequest{Seed: 3, Players: players.Default("openai/gpt-oss-120b")}

	id1, done1, err := c.StartRun(context.Background(), req)
	require.NoError(t, err)
	id2, done2, err := c.StartRun(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, done1, done2)
	assert.Equal(t, id1, c.ActiveRunID())

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done1)
	assert.Equal(t, domain.RunStatusStopped, idx.run(id1).Status)
}

func TestCoordinator_StartRunReplacesDifferentRun(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, blockingFactory)
	lineup := players.Default("openai/gpt-oss-120b")

	id1, done1, err := c.StartRun(context.Background(), RunRequest{Seed: 1, Players: lineup})
	require.NoError(t, err)

	id2, done2, err := c.StartRun(context.Background(), RunRequest{Seed: 2, Players: lineup})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	// La primera partida quedó detenida al arrancar la segunda.
	waitDone(t, done1)
	assert.Equal(t, id2, c.ActiveRunID())

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done2)
}

func TestCoordinator_InvalidLineupRejected(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, scriptedFactory)

	_, _, err := c.StartRun(context.Background(), RunRequest{Seed: 1, Players: nil})
	require.Error(t, err)
	assert.Empty(t, c.ActiveRunID())
}

func TestCoordinator_StopAfterDecisions(t *testing.T) {
	cfg := Config{MaxTurns: 50, StopAfterDecisions: 1}
	c, idx, _ := newTestCoordinator(t, cfg, scriptedFactory)

	id, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    11,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)
	waitDone(t, done)

	row := idx.run(id)
	assert.Equal(t, domain.RunStatusStopped, row.Status)
	assert.Greater(t, idx.decisionCount(), 0)
}

func TestCoordinator_SubscribeDeliversHelloThenSnapshot(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, blockingFactory)

	id, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    5,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)

	sub := &fakeSub{id: "viewer-1"}
	require.NoError(t, c.Subscribe(sub))

	frames := sub.snapshotFrames()
	require.GreaterOrEqual(t, len(frames), 2)
	assert.Equal(t, domain.FrameHello, frames[0].Type)
	assert.Equal(t, id, frames[0].RunID)
	assert.NotZero(t, frames[0].ServerTimeMs)
	assert.Equal(t, domain.FrameSnapshot, frames[1].Type)
	require.NotNil(t, frames[1].Snapshot)
	assert.Equal(t, id, frames[1].Snapshot.RunID)

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done)

	// La resolución de cierre difunde eventos y el final cierra la conexión.
	var sawEvent bool
	for _, f := range sub.snapshotFrames() {
		if f.Type == domain.FrameEvent {
			sawEvent = true
			break
		}
	}
	assert.True(t, sawEvent)
	assert.True(t, sub.isClosed())
}

func TestCoordinator_SubscribeWithoutRun(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, scriptedFactory)

	err := c.Subscribe(&fakeSub{id: "viewer-1"})
	assert.ErrorIs(t, err, ErrNoActiveRun)
}

func TestCoordinator_FailingSubscriberEvicted(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{MaxTurns: 3}, blockingFactory)

	_, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    9,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)

	// Acepta HELLO y SNAPSHOT; el primer frame difundido falla.
	sub := &fakeSub{id: "viewer-bad", failAfter: 2}
	require.NoError(t, c.Subscribe(sub))

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done)

	assert.True(t, sub.isClosed())
	assert.Len(t, sub.snapshotFrames(), 2)
}

func TestCoordinator_PauseResumeWithoutRun(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, scriptedFactory)

	assert.ErrorIs(t, c.Pause(), ErrNoActiveRun)
	assert.ErrorIs(t, c.Resume(), ErrNoActiveRun)
	assert.ErrorIs(t, c.StopRun(context.Background()), ErrNoActiveRun)
}

func TestCoordinator_PauseAndResume(t *testing.T) {
	c, _, _ := newTestCoordinator(t, Config{}, blockingFactory)

	_, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    13,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)

	require.NoError(t, c.Pause())
	require.NoError(t, c.Resume())

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done)
}

func TestCoordinator_PauseHaltsEngineAdvance(t *testing.T) {
	c, idx, _ := newTestCoordinator(t, Config{MaxTurns: 3}, pausingFactory)

	id, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    17,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return idx.decisionCount() >= 1 },
		5*time.Second, 5*time.Millisecond)

	// La partida quedó pausada tras la primera decisión: el runner no avanza
	// el engine aunque la política resuelva al instante.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, idx.decisionCount())
	select {
	case <-done:
		t.Fatal("run finished while paused")
	default:
	}

	require.NoError(t, c.Resume())
	waitDone(t, done)
	assert.Equal(t, domain.RunStatusFinished, idx.run(id).Status)
	assert.Greater(t, idx.decisionCount(), 1)
}

func TestCoordinator_StopRecordsStoppedFallback(t *testing.T) {
	policy := &signalingPolicy{entered: make(chan struct{})}
	factory := func(_ ports.Recorder, _ ports.Barrier, _ []players.Player) ports.DecisionPolicy {
		return policy
	}
	c, idx, _ := newTestCoordinator(t, Config{MaxTurns: 10}, factory)

	id, done, err := c.StartRun(context.Background(), RunRequest{
		Seed:    19,
		Players: players.Default("openai/gpt-oss-120b"),
	})
	require.NoError(t, err)

	select {
	case <-policy.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("policy never received a decision")
	}

	require.NoError(t, c.StopRun(context.Background()))
	waitDone(t, done)

	assert.Equal(t, domain.RunStatusStopped, idx.run(id).Status)

	// La decisión que estaba en vuelo al parar queda marcada como fallback
	// para distinguirla en decisions.jsonl.
	rows := idx.decisionRows()
	require.NotEmpty(t, rows)
	last := rows[len(rows)-1]
	assert.True(t, last.FallbackUsed)
	assert.Equal(t, "stopped", last.FallbackReason)
}
