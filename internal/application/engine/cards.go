package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// drawCard saca la carta superior del mazo, la anuncia y aplica su efecto.
// Toda carta vuelve al fondo del mazo salvo GET_OUT_OF_JAIL_FREE, que el
// jugador retiene hasta usarla.
func (e *Engine) drawCard(p *domain.PlayerState, deck domain.DeckType) {
	cards := e.deck(deck)
	card := (*cards)[0]
	*cards = (*cards)[1:]

	e.emit(domain.EventCardDrawn, engineActor(), map[string]any{
		"deck_type": string(deck),
		"card_id":   card.ID,
		"text":      card.Text,
	})

	if card.Kind == domain.EffectJailCard {
		p.JailCards = append(p.JailCards, deck)
	} else {
		*cards = append(*cards, card)
	}

	e.applyCardEffect(p, deck, card)
}

func (e *Engine) deck(deck domain.DeckType) *[]domain.Card {
	if deck == domain.DeckChance {
		return &e.chanceDeck
	}
	return &e.chestDeck
}

// returnJailCard devuelve la carta de salir de la cárcel al fondo de su mazo.
func (e *Engine) returnJailCard(deck domain.DeckType) {
	for _, card := range domain.ChanceCards() {
		if card.Kind == domain.EffectJailCard && deck == domain.DeckChance {
			e.chanceDeck = append(e.chanceDeck, card)
			return
		}
	}
	for _, card := range domain.CommunityChestCards() {
		if card.Kind == domain.EffectJailCard && deck == domain.DeckCommunityChest {
			e.chestDeck = append(e.chestDeck, card)
			return
		}
	}
}

// applyCardEffect ejecuta el efecto de la carta sobre el jugador activo.
func (e *Engine) applyCardEffect(p *domain.PlayerState, deck domain.DeckType, card domain.Card) {
	switch card.Kind {
	case domain.EffectJailCard:
		// Retenida en drawCard; sin efecto inmediato.

	case domain.EffectAdvance:
		e.teleportPlayer(p, card.Target, true)
		e.resolveLanding(p, landingOpts{})

	case domain.EffectAdvanceRailroad:
		target := nearestOfKind(p.Position, domain.GroupSpaces(domain.GroupRailroad))
		e.teleportPlayer(p, target, true)
		e.resolveLanding(p, landingOpts{railroadDouble: true})

	case domain.EffectAdvanceUtility:
		target := nearestOfKind(p.Position, domain.GroupSpaces(domain.GroupUtility))
		e.teleportPlayer(p, target, true)
		e.resolveLanding(p, landingOpts{utilityFresh: true})

	case domain.EffectGoBack:
		from := p.Position
		to := (from - card.Steps + domain.BoardSize) % domain.BoardSize
		p.Position = to
		e.emit(domain.EventPlayerMoved, playerActor(p.ID), map[string]any{
			"from": from, "to": to, "passed_go": false,
		})
		e.resolveLanding(p, landingOpts{})

	case domain.EffectGoToJail:
		reason := domain.JailReasonChanceCard
		if deck == domain.DeckCommunityChest {
			reason = domain.JailReasonChestCard
		}
		e.emit(domain.EventSentToJail, engineActor(), map[string]any{
			"player_id": p.ID,
			"reason":    reason,
		})
		e.sendToJail(p)

	case domain.EffectCollect:
		e.creditCash(p, card.Amount, card.ID)

	case domain.EffectPay:
		e.chargePlayer(p, card.Amount, "", card.ID, -1, nil)

	case domain.EffectPayEach:
		var queue []domain.PaymentDue
		for _, other := range e.state.NonBankrupt() {
			if other.ID == p.ID {
				continue
			}
			queue = append(queue, domain.PaymentDue{
				Amount:     card.Amount,
				Creditor:   other.ID,
				Reason:     card.ID,
				SpaceIndex: -1,
			})
		}
		e.processQueue(p, queue)

	case domain.EffectCollectEach:
		for _, other := range e.state.NonBankrupt() {
			if other.ID == p.ID {
				continue
			}
			paid := min(other.Cash, card.Amount)
			if paid <= 0 {
				continue
			}
			other.Cash -= paid
			e.emit(domain.EventCashChanged, engineActor(), map[string]any{
				"player_id": other.ID, "delta": -paid, "reason": card.ID,
			})
			p.Cash += paid
			e.emit(domain.EventCashChanged, engineActor(), map[string]any{
				"player_id": p.ID, "delta": paid, "reason": card.ID,
			})
		}

	case domain.EffectRepairs:
		cost := 0
		for _, idx := range e.state.OwnedSpaces(p.ID) {
			space := e.state.Spaces[idx]
			if space.Hotel {
				cost += card.HotelFee
			} else {
				cost += space.Houses * card.HouseFee
			}
		}
		e.chargePlayer(p, cost, "", card.ID, -1, nil)
	}
}

// nearestOfKind devuelve el primer índice de la lista hacia delante desde
// pos, con vuelta al tablero.
func nearestOfKind(pos int, indices []int) int {
	best := -1
	bestDist := domain.BoardSize + 1
	for _, idx := range indices {
		dist := (idx - pos + domain.BoardSize) % domain.BoardSize
		if dist == 0 {
			dist = domain.BoardSize
		}
		if dist < bestDist {
			bestDist = dist
			best = idx
		}
	}
	return best
}
