package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// landingOpts modula la resolución de la casilla para los efectos de carta.
type landingOpts struct {
	diceTotal      int
	railroadDouble bool // renta doble de ferrocarril por carta
	utilityFresh   bool // utility por carta: dados nuevos y multiplicador 10
}

// resolveLanding aplica el efecto de la casilla donde quedó el jugador.
// Puede dejar una decisión pendiente (compra, liquidación) o ninguna.
func (e *Engine) resolveLanding(p *domain.PlayerState, opts landingOpts) {
	idx := p.Position
	spec := domain.BoardSpec[idx]

	switch spec.Kind {
	case domain.KindProperty, domain.KindRailroad, domain.KindUtility:
		e.resolveOwnable(p, idx, opts)
	case domain.KindTax:
		amount := domain.TaxAmounts[idx]
		e.chargePlayer(p, amount, "", domain.TaxReasons[idx], idx, nil)
	case domain.KindChance:
		e.drawCard(p, domain.DeckChance)
	case domain.KindCommunityChest:
		e.drawCard(p, domain.DeckCommunityChest)
	case domain.KindGoToJail:
		e.emit(domain.EventSentToJail, engineActor(), map[string]any{
			"player_id": p.ID,
			"reason":    domain.JailReasonGoToJail,
		})
		e.sendToJail(p)
	}
	// GO, JAIL (de visita) y FREE_PARKING no tienen efecto.
}

// resolveOwnable decide entre compra, renta o nada.
func (e *Engine) resolveOwnable(p *domain.PlayerState, idx int, opts landingOpts) {
	space := e.state.Spaces[idx]

	if space.Owner == "" {
		e.pending = e.newBuyOrAuctionDecision(p, idx)
		return
	}
	if space.Owner == p.ID || space.Mortgaged {
		return
	}
	owner := e.state.PlayerByID(space.Owner)
	if owner == nil || owner.Bankrupt {
		return
	}

	rent := e.computeRent(idx, owner.ID, opts)
	if rent <= 0 {
		return
	}
	e.chargePlayer(p, rent, owner.ID, domain.ReasonRent, idx, nil)
}

// computeRent calcula la renta de la casilla para su dueño actual.
func (e *Engine) computeRent(idx int, ownerID string, opts landingOpts) int {
	spec := domain.BoardSpec[idx]
	space := e.state.Spaces[idx]

	switch spec.Kind {
	case domain.KindProperty:
		rents, ok := domain.RentTable(idx)
		if !ok {
			return 0
		}
		switch {
		case space.Hotel:
			return rents[5]
		case space.Houses > 0:
			return rents[space.Houses]
		default:
			base := rents[0]
			if e.state.HasMonopoly(ownerID, spec.Group) {
				return base * 2
			}
			return base
		}
	case domain.KindRailroad:
		count := 0
		for _, rrIdx := range domain.GroupSpaces(domain.GroupRailroad) {
			if e.state.Spaces[rrIdx].Owner == ownerID {
				count++
			}
		}
		if count == 0 {
			return 0
		}
		rent := domain.RailroadRents[count-1]
		if opts.railroadDouble {
			rent *= 2
		}
		return rent
	case domain.KindUtility:
		count := 0
		for _, utIdx := range domain.GroupSpaces(domain.GroupUtility) {
			if e.state.Spaces[utIdx].Owner == ownerID {
				count++
			}
		}
		if count == 0 {
			return 0
		}
		total := opts.diceTotal
		mult := domain.UtilityMultipliers[count]
		if opts.utilityFresh {
			d1, d2 := e.roll()
			e.emit(domain.EventDiceRolled, playerActor(e.state.ActivePlayer().ID), map[string]any{
				"d1": d1, "d2": d2, "is_double": d1 == d2, "reason": "utility_card",
			})
			total = d1 + d2
			mult = 10
		}
		return total * mult
	}
	return 0
}
