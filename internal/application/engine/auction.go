package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// openAuction arranca la subasta de la casilla rechazada. Participan todos
// los jugadores vivos; el cursor empieza en el asiento siguiente al
// iniciador.
func (e *Engine) openAuction(p *domain.PlayerState, spaceIdx int) {
	alive := e.state.NonBankrupt()
	bidders := make([]string, 0, len(alive))

	// Orden de puja: siguiente asiento tras el iniciador, con vuelta.
	start := 0
	for i, pl := range alive {
		if pl.ID == p.ID {
			start = i
			break
		}
	}
	for i := 1; i <= len(alive); i++ {
		bidders = append(bidders, alive[(start+i)%len(alive)].ID)
	}

	e.state.Auction = &domain.AuctionState{
		SpaceIndex:   spaceIdx,
		Bidders:      bidders,
		Initiator:    p.ID,
		TurnOwner:    p.ID,
		RolledDouble: e.rolledDouble,
	}
	e.emit(domain.EventAuctionStarted, playerActor(p.ID), map[string]any{
		"space_index":  spaceIdx,
		"initiator_id": p.ID,
		"bidders":      append([]string(nil), bidders...),
	})
	e.advanceAuction()
}

// applyBidAuction registra la puja y pasa el cursor.
func (e *Engine) applyBidAuction(p *domain.PlayerState, bid int) {
	a := e.state.Auction
	a.HighBid = bid
	a.Leader = p.ID
	e.emit(domain.EventAuctionBidPlaced, playerActor(p.ID), map[string]any{
		"player_id":   p.ID,
		"bid_amount":  bid,
		"space_index": a.SpaceIndex,
	})
	a.Cursor = (a.Cursor + 1) % len(a.Bidders)
	e.advanceAuction()
}

// applyDropOut retira al postor y pasa el cursor.
func (e *Engine) applyDropOut(p *domain.PlayerState) {
	a := e.state.Auction
	e.emit(domain.EventAuctionPlayerDropped, playerActor(p.ID), map[string]any{
		"player_id":   p.ID,
		"space_index": a.SpaceIndex,
	})
	e.removeBidder(p.ID)
	e.advanceAuction()
}

// removeBidder quita al jugador de la lista activa conservando el cursor.
func (e *Engine) removeBidder(playerID string) {
	a := e.state.Auction
	for i, id := range a.Bidders {
		if id != playerID {
			continue
		}
		a.Bidders = append(a.Bidders[:i], a.Bidders[i+1:]...)
		if i < a.Cursor {
			a.Cursor--
		}
		if len(a.Bidders) > 0 {
			a.Cursor %= len(a.Bidders)
		} else {
			a.Cursor = 0
		}
		return
	}
}

// advanceAuction busca al siguiente postor válido o cierra la subasta.
// El líder no puja contra sí mismo; los postores insolventes quedan fuera.
func (e *Engine) advanceAuction() {
	a := e.state.Auction

	for {
		if len(a.Bidders) <= 1 {
			e.closeAuction()
			return
		}
		bidderID := a.Bidders[a.Cursor%len(a.Bidders)]
		if bidderID == a.Leader {
			a.Cursor = (a.Cursor + 1) % len(a.Bidders)
			continue
		}
		bidder := e.state.PlayerByID(bidderID)
		if bidder.Cash < a.HighBid+1 {
			e.emit(domain.EventAuctionPlayerDropped, engineActor(), map[string]any{
				"player_id":   bidderID,
				"space_index": a.SpaceIndex,
				"forced":      true,
			})
			e.removeBidder(bidderID)
			continue
		}
		e.pending = e.newAuctionDecision(bidderID)
		return
	}
}

// closeAuction resuelve la venta (o el cierre sin pujas) y devuelve el turno
// al dueño interrumpido.
func (e *Engine) closeAuction() {
	a := e.state.Auction
	owner := e.state.PlayerByID(a.TurnOwner)

	if a.Leader != "" {
		winner := e.state.PlayerByID(a.Leader)
		e.debitCash(winner, a.HighBid, "auction_bid")
		e.state.Spaces[a.SpaceIndex].Owner = winner.ID
		e.emit(domain.EventPropertyPurchased, playerActor(winner.ID), map[string]any{
			"player_id":   winner.ID,
			"space_index": a.SpaceIndex,
			"price":       a.HighBid,
			"via":         "auction",
		})
		e.emit(domain.EventAuctionEnded, engineActor(), map[string]any{
			"reason":           domain.AuctionSold,
			"winner_player_id": winner.ID,
			"winning_bid":      a.HighBid,
			"space_index":      a.SpaceIndex,
		})
	} else {
		e.emit(domain.EventAuctionEnded, engineActor(), map[string]any{
			"reason":           domain.AuctionNoBids,
			"winner_player_id": nil,
			"winning_bid":      nil,
			"space_index":      a.SpaceIndex,
		})
	}

	e.rolledDouble = a.RolledDouble
	e.state.Auction = nil
	e.pending = e.newPostTurnDecision(owner)
}
