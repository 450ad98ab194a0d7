package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// startAuction lleva a p1 hasta Virginia Avenue (14) y rechaza la compra,
// devolviendo la primera decisión de puja.
func startAuction(t *testing.T, e *Engine) *domain.DecisionPoint {
	t.Helper()
	e.State().Players[0].Position = 10
	queueDice(e, [2]int{1, 3})

	res := e.AdvanceUntilDecision(1)
	require.NotNil(t, res.Decision)
	require.Equal(t, domain.DecisionBuyOrAuction, res.Decision.Type)

	apply := applyOK(t, e, res.Decision, mkAction(res.Decision, domain.ActionStartAuction))
	require.NotNil(t, apply.Decision)
	require.Equal(t, domain.DecisionAuctionBid, apply.Decision.Type)
	return apply.Decision
}

func bidAction(d *domain.DecisionPoint, amount int) domain.Action {
	action := mkAction(d, domain.ActionBidAuction)
	action.Args.BidAmount = &amount
	return action
}

func TestAuction_BidderOrderStartsAfterInitiator(t *testing.T) {
	e := newTestEngine(t)
	d := startAuction(t, e)

	// El iniciador puja el último.
	assert.Equal(t, "p2", d.PlayerID)
	require.NotNil(t, d.Auction)
	assert.Equal(t, []string{"p2", "p3", "p4", "p1"}, d.Auction.ActiveBidders)
	assert.Equal(t, 14, d.Auction.SpaceIndex)
	assert.Equal(t, 1, d.Auction.MinNextBid)
}

func TestAuction_SoldToHighestBidder(t *testing.T) {
	e := newTestEngine(t)
	d := startAuction(t, e)

	// p2 puja 50; el cursor pasa a p3.
	res := applyOK(t, e, d, bidAction(d, 50))
	d = res.Decision
	require.NotNil(t, d)
	assert.Equal(t, "p3", d.PlayerID)
	assert.Equal(t, 51, d.Auction.MinNextBid)
	assert.Equal(t, "p2", d.Auction.LeaderID)

	res = applyOK(t, e, d, mkAction(d, domain.ActionDropOut))
	d = res.Decision
	require.NotNil(t, d)
	assert.Equal(t, "p4", d.PlayerID)

	res = applyOK(t, e, d, bidAction(d, 60))
	d = res.Decision
	require.NotNil(t, d)
	assert.Equal(t, "p1", d.PlayerID)

	res = applyOK(t, e, d, mkAction(d, domain.ActionDropOut))
	d = res.Decision
	require.NotNil(t, d)
	// p2 sigue vivo y puede responder a la puja de p4.
	assert.Equal(t, "p2", d.PlayerID)

	res = applyOK(t, e, d, mkAction(d, domain.ActionDropOut))

	ended := findEvent(t, res.Events, domain.EventAuctionEnded)
	assert.Equal(t, domain.AuctionSold, ended.Payload["reason"])
	assert.Equal(t, "p4", ended.Payload["winner_player_id"])
	assert.Equal(t, 60, ended.Payload["winning_bid"])

	assert.Equal(t, "p4", e.State().Spaces[14].Owner)
	assert.Equal(t, 1500-60, e.State().Players[3].Cash)

	// El turno vuelve al iniciador interrumpido.
	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.DecisionPostTurn, res.Decision.Type)
	assert.Equal(t, "p1", res.Decision.PlayerID)
}

func TestAuction_BidMustExceedHighBid(t *testing.T) {
	e := newTestEngine(t)
	d := startAuction(t, e)

	res := applyOK(t, e, d, bidAction(d, 50))
	d = res.Decision
	require.NotNil(t, d)

	_, err := e.ApplyAction(bidAction(d, 50), validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalAction)

	_, err = e.ApplyAction(bidAction(d, 40), validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalAction)

	applyOK(t, e, d, bidAction(d, 51))
	assert.Equal(t, 51, e.State().Auction.HighBid)
}

func TestAuction_BidCannotExceedCash(t *testing.T) {
	e := newTestEngine(t)
	d := startAuction(t, e)

	_, err := e.ApplyAction(bidAction(d, 1501), validMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestAuction_NoBidsLeavesSpaceUnowned(t *testing.T) {
	e := newTestEngine(t)
	d := startAuction(t, e)

	var last StepResult
	for _, want := range []string{"p2", "p3", "p4"} {
		require.NotNil(t, d)
		require.Equal(t, want, d.PlayerID)
		last = applyOK(t, e, d, mkAction(d, domain.ActionDropOut))
		d = last.Decision
	}

	ended := findEvent(t, last.Events, domain.EventAuctionEnded)
	assert.Equal(t, domain.AuctionNoBids, ended.Payload["reason"])
	assert.Nil(t, ended.Payload["winner_player_id"])
	assert.Nil(t, ended.Payload["winning_bid"])

	assert.Empty(t, e.State().Spaces[14].Owner)
	require.NotNil(t, d)
	assert.Equal(t, domain.DecisionPostTurn, d.Type)
	assert.Equal(t, "p1", d.PlayerID)
}

func TestAuction_InsolventBidderForcedOut(t *testing.T) {
	e := newTestEngine(t)
	e.State().Players[2].Cash = 10 // p3 no puede superar una puja alta
	d := startAuction(t, e)

	res := applyOK(t, e, d, bidAction(d, 100))

	dropped := findEvent(t, res.Events, domain.EventAuctionPlayerDropped)
	assert.Equal(t, "p3", dropped.Payload["player_id"])
	assert.Equal(t, true, dropped.Payload["forced"])

	require.NotNil(t, res.Decision)
	assert.Equal(t, "p4", res.Decision.PlayerID)
}
