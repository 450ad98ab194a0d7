package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSeats() []PlayerSeat {
	return []PlayerSeat{
		{ID: "p1", Name: "Alpha"},
		{ID: "p2", Name: "Beta"},
		{ID: "p3", Name: "Gamma"},
		{ID: "p4", Name: "Delta"},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{
		RunID:           "test-run",
		Seed:            7,
		Players:         testSeats(),
		MaxTurns:        200,
		TsStepMs:        250,
		AllowExtraTurns: true,
	}, testLogger())
	require.NoError(t, err)
	return e
}

// queueDice fija las próximas tiradas; la última se repite.
func queueDice(e *Engine, rolls ...[2]int) {
	idx := 0
	e.roll = func() (int, int) {
		r := rolls[idx]
		if idx < len(rolls)-1 {
			idx++
		}
		return r[0], r[1]
	}
}

func eventTypes(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

func findEvent(t *testing.T, events []domain.Event, eventType string) domain.Event {
	t.Helper()
	for _, ev := range events {
		if ev.Type == eventType {
			return ev
		}
	}
	t.Fatalf("event %s not found in %v", eventType, eventTypes(events))
	return domain.Event{}
}

func hasEvent(events []domain.Event, eventType string) bool {
	for _, ev := range events {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

func validMeta() domain.DecisionMeta {
	return domain.DecisionMeta{Valid: true}
}

func mkAction(d *domain.DecisionPoint, name string) domain.Action {
	return domain.Action{
		SchemaVersion: domain.SchemaVersion,
		DecisionID:    d.DecisionID,
		Name:          name,
	}
}

func applyOK(t *testing.T, e *Engine, d *domain.DecisionPoint, action domain.Action) StepResult {
	t.Helper()
	res, err := e.ApplyAction(action, validMeta())
	require.NoError(t, err)
	return res
}

func TestAdvance_BuyDecisionOnUnownedSpace(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.DecisionBuyOrAuction, res.Decision.Type)
	assert.Equal(t, "p1", res.Decision.PlayerID)
	assert.Equal(t, 14, res.Decision.Buy.SpaceIndex)

	req := findEvent(t, res.Events, domain.EventDecisionRequested)
	assert.Equal(t, string(domain.DecisionBuyOrAuction), req.Payload["decision_type"])

	apply := applyOK(t, e, res.Decision, mkAction(res.Decision, domain.ActionBuyProperty))
	assert.Equal(t, "p1", e.State().Spaces[14].Owner)
	assert.Equal(t, 1500-160, e.State().Players[0].Cash)

	purchased := findEvent(t, apply.Events, domain.EventPropertyPurchased)
	assert.Equal(t, 14, purchased.Payload["space_index"])
	assert.Equal(t, 160, purchased.Payload["price"])
	cash := findEvent(t, apply.Events, domain.EventCashChanged)
	assert.Equal(t, -160, cash.Payload["delta"])
	assert.Equal(t, domain.ActionBuyProperty, cash.Payload["reason"])

	require.NotNil(t, apply.Decision)
	assert.Equal(t, domain.DecisionPostTurn, apply.Decision.Type)
}

func TestAdvance_RentPaidThenPostTurn(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	e.State().Spaces[14].Owner = "p2"
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	rent := findEvent(t, res.Events, domain.EventRentPaid)
	assert.Equal(t, 12, rent.Payload["amount"])
	assert.Equal(t, "p1", rent.Payload["from_player_id"])
	assert.Equal(t, "p2", rent.Payload["to_player_id"])
	assert.Equal(t, 1500-12, e.State().Players[0].Cash)
	assert.Equal(t, 1500+12, e.State().Players[1].Cash)

	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.DecisionPostTurn, res.Decision.Type)
}

func TestAdvance_MonopolyDoublesBaseRent(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	for _, idx := range domain.GroupSpaces(domain.GroupPink) {
		e.State().Spaces[idx].Owner = "p2"
	}
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	rent := findEvent(t, res.Events, domain.EventRentPaid)
	assert.Equal(t, 24, rent.Payload["amount"])
}

func TestAdvance_MortgagedSpaceYieldsNoRent(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	e.State().Spaces[14].Owner = "p2"
	e.State().Spaces[14].Mortgaged = true
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	assert.False(t, hasEvent(res.Events, domain.EventRentPaid))
	assert.Equal(t, 1500, e.State().Players[0].Cash)
	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.DecisionPostTurn, res.Decision.Type)
}

func TestAdvance_ThreeDoublesSendToJail(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].DoublesCount = 2
	queueDice(e, [2]int{2, 2})

	res := e.AdvanceUntilDecision(1)
	jail := findEvent(t, res.Events, domain.EventSentToJail)
	assert.Equal(t, domain.JailReasonThreeDoubles, jail.Payload["reason"])
	assert.False(t, hasEvent(res.Events, domain.EventPlayerMoved))
	assert.True(t, hasEvent(res.Events, domain.EventTurnEnded))

	p1 := e.State().Players[0]
	assert.True(t, p1.InJail)
	assert.Equal(t, domain.JailIndex, p1.Position)
	assert.Equal(t, 0, p1.DoublesCount)
	// El tercer doble nunca concede turno extra.
	assert.Equal(t, "p2", e.State().ActivePlayer().ID)
}

func TestAdvance_PassGoPaysSalary(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 37 // Park Place, a 3 de GO
	queueDice(e, [2]int{1, 2})

	res := e.AdvanceUntilDecision(1)
	moved := findEvent(t, res.Events, domain.EventPlayerMoved)
	assert.Equal(t, true, moved.Payload["passed_go"])
	cash := findEvent(t, res.Events, domain.EventCashChanged)
	assert.Equal(t, domain.GoSalary, cash.Payload["delta"])
	assert.Equal(t, domain.ReasonPassGo, cash.Payload["reason"])
}

func TestAdvance_TaxCharged(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 1
	queueDice(e, [2]int{1, 2}) // 1 -> 4 Income Tax

	res := e.AdvanceUntilDecision(1)
	cash := findEvent(t, res.Events, domain.EventCashChanged)
	assert.Equal(t, -200, cash.Payload["delta"])
	assert.Equal(t, "TAX_INCOME", cash.Payload["reason"])
	assert.Equal(t, 1300, e.State().Players[0].Cash)
}

func TestApplyAction_DuplicateDecisionIDFails(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	first := res.Decision

	applyOK(t, e, first, mkAction(first, domain.ActionBuyProperty))
	before := e.Snapshot()

	_, err := e.ApplyAction(mkAction(first, domain.ActionBuyProperty), validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecisionAlreadyApplied)

	after := e.Snapshot()
	assert.Equal(t, before, after, "rejected duplicate must not mutate state")
}

func TestApplyAction_IllegalNameRejected(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[0].Position = 10
	e.State().Players[0].Cash = 100 // no alcanza para Virginia (160)
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	assert.Equal(t, []string{domain.ActionStartAuction}, res.Decision.LegalNames())

	_, err := e.ApplyAction(mkAction(res.Decision, domain.ActionBuyProperty), validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestApplyAction_NoPendingDecision(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ApplyAction(domain.Action{DecisionID: "test-run-dec-000000", Name: domain.ActionEndTurn}, validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPendingDecision)
}

func TestTurnRotation_CyclesSeats(t *testing.T) {
	e := newTestEngine(t)
	queueDice(e, [2]int{1, 2}) // nunca dobles

	seen := []string{}
	for i := 0; i < 8; i++ {
		res := e.AdvanceUntilDecision(1)
		require.NotNil(t, res.Decision, "iteration %d", i)
		seen = append(seen, e.State().ActivePlayer().ID)
		endTurnOrResolve(t, e, res.Decision)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p1", "p2", "p3", "p4"}, seen)
}

// endTurnOrResolve resuelve cualquier decisión con la política mínima para
// que el turno avance.
func endTurnOrResolve(t *testing.T, e *Engine, d *domain.DecisionPoint) {
	t.Helper()
	for d != nil {
		var action domain.Action
		switch d.Type {
		case domain.DecisionPostTurn:
			action = mkAction(d, domain.ActionEndTurn)
		case domain.DecisionBuyOrAuction:
			if d.IsLegal(domain.ActionBuyProperty) {
				action = mkAction(d, domain.ActionBuyProperty)
			} else {
				action = mkAction(d, domain.ActionStartAuction)
			}
		case domain.DecisionAuctionBid:
			action = mkAction(d, domain.ActionDropOut)
		case domain.DecisionJail:
			if d.IsLegal(domain.ActionPayJailFine) {
				action = mkAction(d, domain.ActionPayJailFine)
			} else {
				action = mkAction(d, domain.ActionRollForDoubles)
			}
		case domain.DecisionTradeResponse:
			action = mkAction(d, domain.ActionRejectTrade)
		case domain.DecisionLiquidation:
			action = mkAction(d, domain.ActionDeclareBankruptcy)
		default:
			t.Fatalf("unexpected decision type %s", d.Type)
		}
		res := applyOK(t, e, d, action)
		d = res.Decision
	}
}

func TestExtraTurn_OnDouble(t *testing.T) {
	e := newTestEngine(t)
	queueDice(e, [2]int{3, 3}, [2]int{1, 2})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	endTurnOrResolve(t, e, res.Decision)
	// Tras un doble (no tercero) repite el mismo jugador.
	assert.Equal(t, "p1", e.State().ActivePlayer().ID)

	res = e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	endTurnOrResolve(t, e, res.Decision)
	assert.Equal(t, "p2", e.State().ActivePlayer().ID)
}

func TestExtraTurn_DisabledByOption(t *testing.T) {
	e, err := New(Config{
		RunID:    "test-run",
		Seed:     7,
		Players:  testSeats(),
		MaxTurns: 200,
	}, testLogger())
	require.NoError(t, err)
	queueDice(e, [2]int{3, 3}, [2]int{1, 2})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	endTurnOrResolve(t, e, res.Decision)
	assert.Equal(t, "p2", e.State().ActivePlayer().ID)
}

func TestEventNumbering_DenseAndMonotonic(t *testing.T) {
	e := newTestEngine(t)
	queueDice(e, [2]int{1, 2})

	var all []domain.Event
	for i := 0; i < 6; i++ {
		res := e.AdvanceUntilDecision(1)
		all = append(all, res.Events...)
		if res.Decision == nil {
			break
		}
		apply, err := e.ApplyAction(resolveAny(res.Decision), validMeta())
		require.NoError(t, err)
		all = append(all, apply.Events...)
	}

	require.NotEmpty(t, all)
	var lastTs int64 = -1
	for i, ev := range all {
		assert.Equal(t, i, ev.Seq, "seq must be dense")
		assert.Equal(t, "test-run", ev.RunID)
		assert.GreaterOrEqual(t, ev.TsMs, lastTs)
		lastTs = ev.TsMs
	}
}

func resolveAny(d *domain.DecisionPoint) domain.Action {
	name := d.LegalActions[0].Action
	action := domain.Action{SchemaVersion: domain.SchemaVersion, DecisionID: d.DecisionID, Name: name}
	if name == domain.ActionBidAuction {
		bid := 1
		action.Args.BidAmount = &bid
	}
	return action
}

func TestRequestStop_EndsGameOnNextAdvance(t *testing.T) {
	e := newTestEngine(t)
	queueDice(e, [2]int{1, 2})
	e.RequestStop("")

	res := e.AdvanceUntilDecision(1)
	require.Nil(t, res.Decision)
	assert.True(t, e.IsGameOver())
	ended := findEvent(t, res.Events, domain.EventGameEnded)
	assert.Equal(t, EndReasonStopped, ended.Payload["reason"])
}

func TestMaxTurns_WinnerIsRichestAlive(t *testing.T) {
	e, err := New(Config{
		RunID:    "test-run",
		Seed:     7,
		Players:  testSeats(),
		MaxTurns: 4,
	}, testLogger())
	require.NoError(t, err)
	queueDice(e, [2]int{1, 2})
	e.State().Players[2].Cash = 9000

	for !e.IsGameOver() {
		res := e.AdvanceUntilDecision(1)
		if res.Decision != nil {
			endTurnOrResolve(t, e, res.Decision)
		}
	}
	assert.Equal(t, EndReasonMaxTurns, e.Result().Reason)
	assert.Equal(t, "p3", e.Result().WinnerPlayerID)
}

func TestBankConservation_AfterGame(t *testing.T) {
	e := newTestEngine(t)
	queueDice(e, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 1}, [2]int{4, 2}, [2]int{2, 1})

	for i := 0; i < 40 && !e.IsGameOver(); i++ {
		res := e.AdvanceUntilDecision(1)
		if res.Decision != nil {
			endTurnOrResolve(t, e, res.Decision)
		}
		onBoardHouses, onBoardHotels := 0, 0
		for _, s := range e.State().Spaces {
			onBoardHouses += s.Houses
			if s.Hotel {
				onBoardHotels++
			}
		}
		assert.Equal(t, domain.BankHouses, e.State().Bank.Houses+onBoardHouses)
		assert.Equal(t, domain.BankHotels, e.State().Bank.Hotels+onBoardHotels)
	}
}
