package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
)

func TestManifest_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir)
	require.NoError(t, err)
	defer rec.Close()

	manifest := Manifest{
		SchemaVersion:   domain.SchemaVersion,
		RunID:           "headless-7-deadbeef",
		Seed:            7,
		Players:         players.Default("openai/gpt-oss-120b"),
		MaxTurns:        20,
		TsStepMs:        250,
		AllowExtraTurns: true,
		CreatedAt:       1700000000000,
	}
	require.NoError(t, rec.WriteManifest(manifest))

	got, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, manifest, got)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry.ReadManifest")
}

func TestReadActions_InOrder(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir)
	require.NoError(t, err)

	first := domain.Action{DecisionID: "r-dec-000001", Name: domain.ActionBuyProperty}
	second := domain.Action{DecisionID: "r-dec-000002", Name: domain.ActionEndTurn}
	require.NoError(t, rec.AppendAction(domain.ActionRecord{Action: first, Valid: true}))
	require.NoError(t, rec.AppendAction(domain.ActionRecord{Action: second, Valid: false, Error: "fallback: invalid_action"}))
	require.NoError(t, rec.Close())

	actions, err := ReadActions(dir)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, first.DecisionID, actions[0].DecisionID)
	assert.Equal(t, domain.ActionBuyProperty, actions[0].Name)
	assert.True(t, actions[0].Valid)
	assert.Equal(t, second.DecisionID, actions[1].DecisionID)
	assert.False(t, actions[1].Valid)
	assert.Equal(t, "fallback: invalid_action", actions[1].Error)
}

func TestReadEventLines_RawCanonical(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir)
	require.NoError(t, err)

	ev := domain.Event{
		SchemaVersion: domain.SchemaVersion,
		RunID:         "r",
		EventID:       "r-evt-000000",
		Seq:           0,
		Type:          domain.EventGameStarted,
		Payload:       map[string]any{"seed": 7},
	}
	require.NoError(t, rec.AppendEvents([]domain.Event{ev}))
	require.NoError(t, rec.Close())

	lines, err := ReadEventLines(dir)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	canonical, err := domain.CanonicalJSON(ev)
	require.NoError(t, err)
	assert.Equal(t, string(canonical), lines[0])
}
