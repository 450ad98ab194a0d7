package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
)

func summaryLineup() []players.Player {
	return []players.Player{
		{ID: "p1", Name: "Hazel", Model: "openai/gpt-oss-120b"},
		{ID: "p2", Name: "Iris", Model: "openai/gpt-oss-120b"},
		{ID: "p3", Name: "Juno", Model: "openai/gpt-oss-120b"},
		{ID: "p4", Name: "Kai", Model: "openai/gpt-oss-120b"},
	}
}

func ev(seq, turn int, typ string, payload map[string]any) domain.Event {
	return domain.Event{
		SchemaVersion: domain.SchemaVersion,
		RunID:         "run-x",
		Seq:           seq,
		TurnIndex:     turn,
		Type:          typ,
		Payload:       payload,
	}
}

func resolvedEntry(playerID string, attempts int, fallback bool, latency int64) domain.DecisionLogEntry {
	e := domain.DecisionLogEntry{
		Kind:          domain.DecisionResolved,
		SchemaVersion: domain.SchemaVersion,
		RunID:         "run-x",
		PlayerID:      playerID,
		Attempts:      attempts,
		FallbackUsed:  fallback,
		LatencyMs:     latency,
		TokensPrompt:  100,
	}
	if attempts > 1 {
		e.RetryUsed = true
	}
	return e
}

func TestBuildSummary_FromPersistedLogs(t *testing.T) {
	r, dir := newTestRecorder(t)

	require.NoError(t, r.AppendEvents([]domain.Event{
		ev(0, 0, domain.EventGameStarted, map[string]any{"seed": 11, "players": []any{"p1", "p2", "p3", "p4"}}),
		ev(1, 0, domain.EventTurnStarted, map[string]any{"player_id": "p1"}),
		ev(2, 0, domain.EventDecisionRequested, map[string]any{"player_id": "p1", "decision_id": "run-x-dec-000001"}),
		ev(3, 0, domain.EventCashChanged, map[string]any{"player_id": "p1", "delta": -60, "reason": "buy_property"}),
		ev(4, 0, domain.EventPropertyPurchased, map[string]any{"player_id": "p1", "space_index": 1, "price": 60}),
		ev(5, 1, domain.EventTurnStarted, map[string]any{"player_id": "p2"}),
		ev(6, 1, domain.EventDecisionRequested, map[string]any{"player_id": "p2", "decision_id": "run-x-dec-000002"}),
		ev(7, 1, domain.EventPropertyPurchased, map[string]any{"player_id": "p2", "space_index": 14, "price": 95, "via": "auction"}),
		ev(8, 1, domain.EventCashChanged, map[string]any{"player_id": "p2", "delta": -95, "reason": "bid_auction"}),
		ev(9, 2, domain.EventTurnStarted, map[string]any{"player_id": "p3"}),
		ev(10, 2, domain.EventDecisionRequested, map[string]any{"player_id": "p3", "decision_id": "run-x-dec-000003"}),
		ev(11, 2, domain.EventTradeAccepted, map[string]any{}),
		ev(12, 2, domain.EventPropertyTransferred, map[string]any{"from_player_id": "p1", "to_player_id": "p3", "space_index": 1}),
		// Un turno que empieza pero nunca llega a pedir decisión no cuenta
		// como jugado.
		ev(13, 3, domain.EventTurnStarted, map[string]any{"player_id": "p4"}),
		ev(14, 3, domain.EventGameEnded, map[string]any{"winner_player_id": "p2", "reason": "MAX_TURNS_REACHED"}),
	}))
	require.NoError(t, r.AppendDecision(resolvedEntry("p1", 1, false, 100)))
	require.NoError(t, r.AppendDecision(resolvedEntry("p2", 2, false, 300)))
	require.NoError(t, r.AppendDecision(resolvedEntry("p3", 2, true, 500)))
	require.NoError(t, r.Close())

	summary, err := BuildSummary(dir, summaryLineup())
	require.NoError(t, err)

	assert.Equal(t, "run-x", summary.RunID)
	assert.Equal(t, int64(11), summary.Seed)
	assert.Equal(t, "p2", summary.WinnerPlayerID)
	assert.Equal(t, "MAX_TURNS_REACHED", summary.EndReason)
	assert.Equal(t, 3, summary.TurnsPlayed)

	require.Len(t, summary.Players, 4)
	p1 := summary.Players[0]
	assert.Equal(t, domain.InitialCash-60, p1.FinalCash)
	assert.Empty(t, p1.Properties)
	assert.Equal(t, 1, p1.Decisions)

	p2 := summary.Players[1]
	assert.Equal(t, domain.InitialCash-95, p2.FinalCash)
	assert.Equal(t, []string{domain.SpaceKeyAt(14)}, p2.Properties)
	assert.Equal(t, 1, p2.Invalid)

	p3 := summary.Players[2]
	assert.Equal(t, []string{domain.SpaceKeyAt(1)}, p3.Properties)
	assert.Equal(t, 1, p3.Fallbacks)

	require.Len(t, summary.Acquisitions, 3)
	assert.Equal(t, "BUY", summary.Acquisitions[0].Via)
	require.NotNil(t, summary.Acquisitions[0].Price)
	assert.Equal(t, 60, *summary.Acquisitions[0].Price)
	assert.Equal(t, "AUCTION", summary.Acquisitions[1].Via)
	assert.Equal(t, "TRADE", summary.Acquisitions[2].Via)
	assert.Nil(t, summary.Acquisitions[2].Price)

	assert.Equal(t, 3, summary.TotalDecisions)
	assert.Equal(t, 1, summary.TotalFallbacks)
	assert.Equal(t, int64(300), summary.MedianLatencyMs)
}

func TestBuildSummary_BankruptcyToBankReleasesProperties(t *testing.T) {
	r, dir := newTestRecorder(t)

	require.NoError(t, r.AppendEvents([]domain.Event{
		ev(0, 0, domain.EventGameStarted, map[string]any{"seed": 3, "players": []any{"p1", "p2", "p3", "p4"}}),
		ev(1, 0, domain.EventPropertyPurchased, map[string]any{"player_id": "p1", "space_index": 3, "price": 60}),
		ev(2, 1, domain.EventBankruptcyDeclared, map[string]any{"player_id": "p1", "creditor_player_id": ""}),
		ev(3, 1, domain.EventGameEnded, map[string]any{"winner_player_id": "p2", "reason": "BANKRUPTCY"}),
	}))
	require.NoError(t, r.Close())

	summary, err := BuildSummary(dir, summaryLineup())
	require.NoError(t, err)

	assert.True(t, summary.Players[0].Bankrupt)
	assert.Empty(t, summary.Players[0].Properties)
}

func TestBuildSummary_BankruptcyToCreditorTransfersProperties(t *testing.T) {
	r, dir := newTestRecorder(t)

	require.NoError(t, r.AppendEvents([]domain.Event{
		ev(0, 0, domain.EventGameStarted, map[string]any{"seed": 3, "players": []any{"p1", "p2", "p3", "p4"}}),
		ev(1, 0, domain.EventPropertyPurchased, map[string]any{"player_id": "p1", "space_index": 3, "price": 60}),
		ev(2, 1, domain.EventBankruptcyDeclared, map[string]any{"player_id": "p1", "creditor_player_id": "p2"}),
		ev(3, 1, domain.EventPropertyTransferred, map[string]any{"from_player_id": "p1", "to_player_id": "p2", "space_index": 3}),
	}))
	require.NoError(t, r.Close())

	summary, err := BuildSummary(dir, summaryLineup())
	require.NoError(t, err)

	assert.Empty(t, summary.Players[0].Properties)
	assert.Equal(t, []string{domain.SpaceKeyAt(3)}, summary.Players[1].Properties)
	// El traspaso por quiebra no cuenta como adquisición negociada.
	require.Len(t, summary.Acquisitions, 1)
	assert.Equal(t, "BUY", summary.Acquisitions[0].Via)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, int64(0), median(nil))
	assert.Equal(t, int64(5), median([]int64{5}))
	assert.Equal(t, int64(3), median([]int64{1, 3, 9}))
	assert.Equal(t, int64(4), median([]int64{1, 3, 5, 9}))
}
