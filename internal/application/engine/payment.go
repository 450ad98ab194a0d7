package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// creditCash abona efectivo y emite CASH_CHANGED.
func (e *Engine) creditCash(p *domain.PlayerState, amount int, reason string) {
	if amount == 0 {
		return
	}
	p.Cash += amount
	e.emit(domain.EventCashChanged, engineActor(), map[string]any{
		"player_id": p.ID, "delta": amount, "reason": reason,
	})
}

// debitCash carga efectivo ya garantizado y emite CASH_CHANGED.
// El llamante debe haber comprobado la solvencia.
func (e *Engine) debitCash(p *domain.PlayerState, amount int, reason string) {
	if amount == 0 {
		return
	}
	p.Cash -= amount
	e.emit(domain.EventCashChanged, engineActor(), map[string]any{
		"player_id": p.ID, "delta": -amount, "reason": reason,
	})
}

// chargePlayer aplica el protocolo de pago: si hay efectivo se liquida en el
// acto; si no, el turno queda bloqueado en una decisión de liquidación con la
// cola de pagos restante.
func (e *Engine) chargePlayer(p *domain.PlayerState, amount int, creditorID, reason string, spaceIdx int, queue []domain.PaymentDue) {
	if amount <= 0 {
		e.processQueue(p, queue)
		return
	}
	if p.Cash >= amount {
		e.settlePayment(p, amount, creditorID, reason, spaceIdx)
		e.processQueue(p, queue)
		return
	}

	e.state.Pending = &domain.PendingPayment{
		PaymentDue: domain.PaymentDue{
			Amount:     amount,
			Creditor:   creditorID,
			Reason:     reason,
			SpaceIndex: spaceIdx,
		},
		Queue: queue,
	}
	e.pending = e.newLiquidationDecision(p)
}

// settlePayment mueve el efectivo y emite los eventos del pago.
func (e *Engine) settlePayment(p *domain.PlayerState, amount int, creditorID, reason string, spaceIdx int) {
	e.debitCash(p, amount, reason)
	if creditorID != "" {
		if creditor := e.state.PlayerByID(creditorID); creditor != nil {
			creditor.Cash += amount
			e.emit(domain.EventCashChanged, engineActor(), map[string]any{
				"player_id": creditorID, "delta": amount, "reason": reason,
			})
		}
	}
	if reason == domain.ReasonRent {
		e.emit(domain.EventRentPaid, playerActor(p.ID), map[string]any{
			"from_player_id": p.ID,
			"to_player_id":   creditorID,
			"amount":         amount,
			"space_index":    spaceIdx,
		})
	}
}

// processQueue continúa con la siguiente deuda de una carta multi-acreedor.
func (e *Engine) processQueue(p *domain.PlayerState, queue []domain.PaymentDue) {
	if len(queue) == 0 {
		return
	}
	next := queue[0]
	e.chargePlayer(p, next.Amount, next.Creditor, next.Reason, next.SpaceIndex, queue[1:])
}

// retryPendingPayment reintenta la deuda activa tras liberar activos.
// Devuelve true si toda la cola quedó saldada.
func (e *Engine) retryPendingPayment(p *domain.PlayerState) bool {
	pp := e.state.Pending
	if pp == nil {
		return true
	}
	if p.Cash < pp.Amount {
		return false
	}
	e.state.Pending = nil
	e.settlePayment(p, pp.Amount, pp.Creditor, pp.Reason, pp.SpaceIndex)
	e.processQueue(p, pp.Queue)
	return e.state.Pending == nil
}

// declareBankruptcy liquida al jugador: efectivo y propiedades al acreedor
// (o a la banca), edificios y cartas devueltos, y fin del turno.
func (e *Engine) declareBankruptcy(p *domain.PlayerState, creditorID string) {
	e.emit(domain.EventBankruptcyDeclared, playerActor(p.ID), map[string]any{
		"player_id":          p.ID,
		"creditor_player_id": creditorID,
	})

	if p.Cash > 0 {
		amount := p.Cash
		e.debitCash(p, amount, domain.ReasonBankruptcy)
		if creditorID != "" {
			if creditor := e.state.PlayerByID(creditorID); creditor != nil {
				creditor.Cash += amount
				e.emit(domain.EventCashChanged, engineActor(), map[string]any{
					"player_id": creditorID, "delta": amount, "reason": domain.ReasonBankruptcy,
				})
			}
		}
	}

	for _, idx := range e.state.OwnedSpaces(p.ID) {
		space := &e.state.Spaces[idx]
		// Los edificios vuelven al inventario de la banca.
		if space.Hotel {
			space.Hotel = false
			e.state.Bank.Hotels++
		}
		if space.Houses > 0 {
			e.state.Bank.Houses += space.Houses
			space.Houses = 0
		}
		if creditorID != "" {
			// Las hipotecas se conservan al transferir a un jugador.
			space.Owner = creditorID
		} else {
			space.Owner = ""
			space.Mortgaged = false
		}
		e.emit(domain.EventPropertyTransferred, engineActor(), map[string]any{
			"from_player_id": p.ID,
			"to_player_id":   creditorID,
			"space_index":    idx,
		})
	}

	if len(p.JailCards) > 0 {
		if creditorID != "" {
			if creditor := e.state.PlayerByID(creditorID); creditor != nil {
				creditor.JailCards = append(creditor.JailCards, p.JailCards...)
			}
		} else {
			for _, deck := range p.JailCards {
				e.returnJailCard(deck)
			}
		}
		p.JailCards = nil
	}

	p.Bankrupt = true
	p.BankruptTo = creditorID
	e.state.Pending = nil
	e.pending = nil
	e.endTurn(p)
}
