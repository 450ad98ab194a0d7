package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// maxTradeExchanges limita la cadena de contraofertas de un hilo.
const maxTradeExchanges = 5

// mortgageInterest es el 10% del valor de hipoteca, redondeado hacia arriba.
func mortgageInterest(idx int) int {
	return (domain.MortgageValue(idx)*10 + 99) / 100
}

// openTrade crea el hilo de negociación y pide respuesta al receptor.
func (e *Engine) openTrade(p *domain.PlayerState, toID string, offer, request domain.TradeBundle) {
	e.state.Trade = &domain.TradeThread{
		Initiator:     p.ID,
		Counterparty:  toID,
		Proposer:      p.ID,
		Responder:     toID,
		MaxExchanges:  maxTradeExchanges,
		ExchangeIndex: 1,
		History: []domain.TradeExchange{
			{Actor: p.ID, Offer: offer, Request: request},
		},
		Offer:        offer,
		Request:      request,
		TurnOwner:    e.state.ActivePlayer().ID,
		RolledDouble: e.rolledDouble,
	}
	e.emit(domain.EventTradeProposed, playerActor(p.ID), map[string]any{
		"initiator_player_id":    p.ID,
		"counterparty_player_id": toID,
		"offer":                  offer,
		"request":                request,
		"exchange_index":         1,
	})
	e.pending = e.newTradeResponseDecision()
}

// applyAcceptTrade ejecuta las transferencias del intercambio vigente.
func (e *Engine) applyAcceptTrade(responder *domain.PlayerState) {
	t := e.state.Trade
	proposer := e.state.PlayerByID(t.Proposer)

	e.transferTradeSide(proposer, responder, t.Offer)
	e.transferTradeSide(responder, proposer, t.Request)

	e.emit(domain.EventTradeAccepted, playerActor(responder.ID), map[string]any{
		"initiator_player_id":    t.Initiator,
		"counterparty_player_id": t.Counterparty,
		"exchange_index":         t.ExchangeIndex,
	})
	e.closeTrade()
}

// applyRejectTrade cierra el hilo sin transferencias.
func (e *Engine) applyRejectTrade(responder *domain.PlayerState) {
	t := e.state.Trade
	e.emit(domain.EventTradeRejected, playerActor(responder.ID), map[string]any{
		"initiator_player_id":    t.Initiator,
		"counterparty_player_id": t.Counterparty,
		"exchange_index":         t.ExchangeIndex,
	})
	e.closeTrade()
}

// applyCounterTrade invierte los papeles con una nueva oferta; agotar la
// cadena expira el hilo.
func (e *Engine) applyCounterTrade(responder *domain.PlayerState, offer, request domain.TradeBundle) {
	t := e.state.Trade
	if t.ExchangeIndex >= t.MaxExchanges {
		e.emit(domain.EventTradeExpired, engineActor(), map[string]any{
			"initiator_player_id":    t.Initiator,
			"counterparty_player_id": t.Counterparty,
			"exchange_index":         t.ExchangeIndex,
		})
		e.closeTrade()
		return
	}

	t.Proposer, t.Responder = t.Responder, t.Proposer
	t.ExchangeIndex++
	t.Offer = offer
	t.Request = request
	t.History = append(t.History, domain.TradeExchange{Actor: responder.ID, Offer: offer, Request: request})

	e.emit(domain.EventTradeCountered, playerActor(responder.ID), map[string]any{
		"initiator_player_id":    t.Initiator,
		"counterparty_player_id": t.Counterparty,
		"exchange_index":         t.ExchangeIndex,
		"offer":                  offer,
		"request":                request,
	})
	e.pending = e.newTradeResponseDecision()
}

// closeTrade limpia el hilo y devuelve el turno a su dueño.
func (e *Engine) closeTrade() {
	t := e.state.Trade
	owner := e.state.PlayerByID(t.TurnOwner)
	e.rolledDouble = t.RolledDouble
	e.state.Trade = nil
	e.pending = e.newPostTurnDecision(owner)
}

// transferTradeSide mueve efectivo, propiedades y cartas de un lado.
func (e *Engine) transferTradeSide(from, to *domain.PlayerState, bundle domain.TradeBundle) {
	if bundle.Cash > 0 {
		e.debitCash(from, bundle.Cash, domain.ReasonTrade)
		to.Cash += bundle.Cash
		e.emit(domain.EventCashChanged, engineActor(), map[string]any{
			"player_id": to.ID, "delta": bundle.Cash, "reason": domain.ReasonTrade,
		})
	}
	for _, key := range bundle.Properties {
		idx, _ := domain.SpaceIndexByKey(key)
		e.state.Spaces[idx].Owner = to.ID
		e.emit(domain.EventPropertyTransferred, engineActor(), map[string]any{
			"from_player_id": from.ID,
			"to_player_id":   to.ID,
			"space_index":    idx,
		})
	}
	for i := 0; i < bundle.GetOutOfJailCards && len(from.JailCards) > 0; i++ {
		card := from.JailCards[len(from.JailCards)-1]
		from.JailCards = from.JailCards[:len(from.JailCards)-1]
		to.JailCards = append(to.JailCards, card)
	}
}

// tradeSettlementFeasible comprueba que el receptor pueda asumir el
// intercambio: el efectivo pedido y el interés de hipoteca (10%) de cada
// propiedad hipotecada que recibiría.
func (e *Engine) tradeSettlementFeasible() bool {
	t := e.state.Trade
	responder := e.state.PlayerByID(t.Responder)
	if responder == nil {
		return false
	}
	if responder.Cash < t.Request.Cash {
		return false
	}
	interest := 0
	for _, key := range t.Offer.Properties {
		idx, ok := domain.SpaceIndexByKey(key)
		if !ok {
			return false
		}
		if e.state.Spaces[idx].Mortgaged {
			interest += mortgageInterest(idx)
		}
	}
	return responder.Cash+t.Offer.Cash-t.Request.Cash >= interest
}

// validateTradeBundle comprueba la propiedad de lo ofrecido por un lado.
func (e *Engine) validateTradeBundle(owner *domain.PlayerState, bundle domain.TradeBundle) error {
	if bundle.Cash < 0 || bundle.GetOutOfJailCards < 0 {
		return errIllegalf("trade bundle with negative amounts")
	}
	if bundle.Cash > owner.Cash {
		return errIllegalf("player %s offers %d cash but holds %d", owner.ID, bundle.Cash, owner.Cash)
	}
	if bundle.GetOutOfJailCards > len(owner.JailCards) {
		return errIllegalf("player %s offers %d jail cards but holds %d", owner.ID, bundle.GetOutOfJailCards, len(owner.JailCards))
	}
	for _, key := range bundle.Properties {
		idx, ok := domain.SpaceIndexByKey(key)
		if !ok {
			return errIllegalf("unknown space_key %q", key)
		}
		space := e.state.Spaces[idx]
		if space.Owner != owner.ID {
			return errIllegalf("player %s does not own %s", owner.ID, key)
		}
		if space.BuildingValue() > 0 {
			return errIllegalf("cannot trade %s with buildings", key)
		}
	}
	return nil
}
