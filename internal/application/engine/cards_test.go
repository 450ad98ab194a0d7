package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

func cardByID(t *testing.T, cards []domain.Card, id string) domain.Card {
	t.Helper()
	for _, card := range cards {
		if card.ID == id {
			return card
		}
	}
	t.Fatalf("card %s not found", id)
	return domain.Card{}
}

// stackChance coloca la carta indicada en la cima del mazo de Suerte.
func stackChance(t *testing.T, e *Engine, id string) {
	t.Helper()
	e.chanceDeck = append([]domain.Card{cardByID(t, domain.ChanceCards(), id)}, e.chanceDeck...)
}

func stackChest(t *testing.T, e *Engine, id string) {
	t.Helper()
	e.chestDeck = append([]domain.Card{cardByID(t, domain.CommunityChestCards(), id)}, e.chestDeck...)
}

// landOnChance lleva a p1 desde la casilla 4 hasta Chance (7).
func landOnChance(t *testing.T, e *Engine) StepResult {
	t.Helper()
	e.State().Players[0].Position = 4
	queueDice(e, [2]int{1, 2})
	return e.AdvanceUntilDecision(1)
}

func TestCard_JailCardRetainedByPlayer(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "GET_OUT_OF_JAIL_FREE")
	deckLen := len(e.chanceDeck)

	res := landOnChance(t, e)

	drawn := findEvent(t, res.Events, domain.EventCardDrawn)
	assert.Equal(t, "GET_OUT_OF_JAIL_FREE", drawn.Payload["card_id"])
	assert.Equal(t, []domain.DeckType{domain.DeckChance}, e.State().Players[0].JailCards)
	// La carta retenida no vuelve al mazo.
	assert.Len(t, e.chanceDeck, deckLen-1)
}

func TestCard_UseJailCardReturnsToDeckBottom(t *testing.T) {
	e := newTestEngine(t)
	p1 := e.State().Players[0]
	p1.InJail = true
	p1.Position = domain.JailIndex
	p1.JailCards = []domain.DeckType{domain.DeckChance}
	deckLen := len(e.chanceDeck)
	queueDice(e, [2]int{1, 2})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	require.True(t, res.Decision.IsLegal(domain.ActionUseJailCard))

	applyOK(t, e, res.Decision, mkAction(res.Decision, domain.ActionUseJailCard))

	assert.Empty(t, e.State().Players[0].JailCards)
	require.Len(t, e.chanceDeck, deckLen+1)
	assert.Equal(t, domain.EffectJailCard, e.chanceDeck[len(e.chanceDeck)-1].Kind)
	assert.False(t, e.State().Players[0].InJail)
	assert.Equal(t, 13, e.State().Players[0].Position)
}

func TestCard_GoBackThreeResolvesNewSpace(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "GO_BACK_3_SPACES")

	res := landOnChance(t, e)

	// 7 - 3 = 4: Income Tax.
	p1 := e.State().Players[0]
	assert.Equal(t, 4, p1.Position)
	assert.Equal(t, 1500-200, p1.Cash)

	var back domain.Event
	for _, ev := range res.Events {
		if ev.Type == domain.EventPlayerMoved {
			back = ev
		}
	}
	assert.Equal(t, 4, back.Payload["to"])
	assert.Equal(t, false, back.Payload["passed_go"])
}

func TestCard_NearestUtilityChargesFreshRoll(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "GO_TO_NEAREST_UTILITY")
	e.State().Spaces[12].Owner = "p2"

	res := landOnChance(t, e)

	assert.Equal(t, 12, e.State().Players[0].Position)
	rolls := 0
	for _, ev := range res.Events {
		if ev.Type == domain.EventDiceRolled {
			rolls++
		}
	}
	assert.Equal(t, 2, rolls, "la carta exige una tirada nueva")

	// Tirada nueva (1,2) = 3, multiplicador fijo x10.
	rent := findEvent(t, res.Events, domain.EventRentPaid)
	assert.Equal(t, 30, rent.Payload["amount"])
	assert.Equal(t, 12, rent.Payload["space_index"])
}

func TestCard_NearestRailroadDoublesRent(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "GO_TO_NEAREST_RAILROAD")
	e.State().Spaces[15].Owner = "p2"

	res := landOnChance(t, e)

	assert.Equal(t, 15, e.State().Players[0].Position)
	rent := findEvent(t, res.Events, domain.EventRentPaid)
	assert.Equal(t, 50, rent.Payload["amount"], "renta base 25 doblada")
}

func TestCard_GeneralRepairsChargePerBuilding(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "GENERAL_REPAIRS")
	e.State().Spaces[1].Owner = "p1"
	e.State().Spaces[1].Houses = 2
	e.State().Spaces[3].Owner = "p1"
	e.State().Spaces[3].Hotel = true
	e.State().Bank.Houses -= 2
	e.State().Bank.Hotels--

	landOnChance(t, e)

	// 2 casas x $25 + 1 hotel x $100.
	assert.Equal(t, 1500-150, e.State().Players[0].Cash)
}

func TestCard_ChairmanPaysEveryRival(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "CHAIRMAN_OF_THE_BOARD")

	landOnChance(t, e)

	assert.Equal(t, 1500-150, e.State().Players[0].Cash)
	assert.Equal(t, 1500+50, e.State().Players[1].Cash)
	assert.Equal(t, 1500+50, e.State().Players[2].Cash)
	assert.Equal(t, 1500+50, e.State().Players[3].Cash)
}

func TestCard_BirthdayCollectsWhatEachRivalHolds(t *testing.T) {
	e := newTestEngine(t)
	stackChest(t, e, "BIRTHDAY")
	e.State().Players[2].Cash = 5 // p3 no cubre los $10
	e.State().Players[0].Position = 14
	queueDice(e, [2]int{1, 2}) // 14 -> 17: Community Chest

	e.AdvanceUntilDecision(1)

	assert.Equal(t, 1500+10+5+10, e.State().Players[0].Cash)
	assert.Equal(t, 1500-10, e.State().Players[1].Cash)
	assert.Equal(t, 0, e.State().Players[2].Cash)
	assert.Equal(t, 1500-10, e.State().Players[3].Cash)
}

func TestCard_AdvanceToGoCollectsSalary(t *testing.T) {
	e := newTestEngine(t)
	stackChance(t, e, "ADVANCE_TO_GO")

	landOnChance(t, e)

	assert.Equal(t, 0, e.State().Players[0].Position)
	assert.Equal(t, 1500+domain.GoSalary, e.State().Players[0].Cash)
}

func TestCard_GoToJailFromChest(t *testing.T) {
	e := newTestEngine(t)
	stackChest(t, e, "GO_TO_JAIL")
	e.State().Players[0].Position = 14
	queueDice(e, [2]int{1, 2})

	res := e.AdvanceUntilDecision(1)

	jail := findEvent(t, res.Events, domain.EventSentToJail)
	assert.Equal(t, domain.JailReasonChestCard, jail.Payload["reason"])
	p1 := e.State().Players[0]
	assert.True(t, p1.InJail)
	assert.Equal(t, domain.JailIndex, p1.Position)
	assert.True(t, hasEvent(res.Events, domain.EventTurnEnded))
	assert.Equal(t, "p2", e.State().ActivePlayer().ID)
}
