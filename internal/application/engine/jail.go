package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// applyPayJailFine paga la multa y sale a tirar. Si no hay efectivo (multa
// forzosa del tercer turno) la deuda pasa por liquidación y la salida queda
// aplazada hasta saldarla.
func (e *Engine) applyPayJailFine(p *domain.PlayerState) {
	if p.Cash >= domain.JailFine {
		e.debitCash(p, domain.JailFine, domain.ReasonJailFine)
		e.leaveJailAndRoll(p)
		return
	}
	e.afterSettle = afterSettleJailExit
	e.chargePlayer(p, domain.JailFine, "", domain.ReasonJailFine, -1, nil)
}

// applyRollForDoubles intenta salir con dobles; al fallar acumula turno de
// cárcel y cede el turno.
func (e *Engine) applyRollForDoubles(p *domain.PlayerState) {
	d1, d2 := e.roll()
	e.emit(domain.EventDiceRolled, playerActor(p.ID), map[string]any{
		"d1": d1, "d2": d2, "is_double": d1 == d2, "reason": "jail",
	})
	if d1 == d2 {
		p.InJail = false
		p.JailTurns = 0
		e.movePlayer(p, d1+d2)
		if e.pending == nil && !e.gameOver {
			e.resolveLanding(p, landingOpts{diceTotal: d1 + d2})
		}
		e.finishMainPhase(p)
		return
	}
	p.JailTurns++
	e.endTurn(p)
}

// applyUseJailCard consume la carta, la devuelve a su mazo y sale a tirar.
func (e *Engine) applyUseJailCard(p *domain.PlayerState) {
	deck := p.JailCards[len(p.JailCards)-1]
	p.JailCards = p.JailCards[:len(p.JailCards)-1]
	e.returnJailCard(deck)
	e.leaveJailAndRoll(p)
}

// leaveJailAndRoll saca al jugador, tira los dados y resuelve la casilla.
// La tirada de salida nunca concede turno extra.
func (e *Engine) leaveJailAndRoll(p *domain.PlayerState) {
	p.InJail = false
	p.JailTurns = 0
	d1, d2 := e.roll()
	e.emit(domain.EventDiceRolled, playerActor(p.ID), map[string]any{
		"d1": d1, "d2": d2, "is_double": d1 == d2, "reason": "leaving_jail",
	})
	e.movePlayer(p, d1+d2)
	if e.pending == nil && !e.gameOver {
		e.resolveLanding(p, landingOpts{diceTotal: d1 + d2})
	}
	e.finishMainPhase(p)
}
