package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// playTurn ejecuta un turno completo hasta que haga falta una decisión o el
// turno termine por sí solo.
func (e *Engine) playTurn() {
	p := e.state.ActivePlayer()
	if p.Bankrupt {
		// No debería ocurrir: la rotación salta arruinados.
		e.rotateActive()
		return
	}

	e.rolledDouble = false
	e.extraTurn = false
	e.emit(domain.EventTurnStarted, engineActor(), map[string]any{"player_id": p.ID})

	if p.InJail {
		e.pending = e.newJailDecision(p)
		return
	}
	e.rollAndMove(p)
}

// rollAndMove tira los dados, gestiona dobles y resuelve la casilla.
func (e *Engine) rollAndMove(p *domain.PlayerState) {
	d1, d2 := e.roll()
	isDouble := d1 == d2
	e.emit(domain.EventDiceRolled, playerActor(p.ID), map[string]any{
		"d1": d1, "d2": d2, "is_double": isDouble,
	})

	if isDouble {
		p.DoublesCount++
		if p.DoublesCount >= 3 {
			e.emit(domain.EventSentToJail, engineActor(), map[string]any{
				"player_id": p.ID,
				"reason":    domain.JailReasonThreeDoubles,
			})
			e.sendToJail(p)
			e.endTurn(p)
			return
		}
		e.rolledDouble = true
		if e.cfg.AllowExtraTurns {
			e.extraTurn = true
		}
	} else {
		p.DoublesCount = 0
	}

	e.movePlayer(p, d1+d2)
	if e.pending == nil && !e.gameOver {
		e.resolveLanding(p, landingOpts{diceTotal: d1 + d2})
	}
	e.finishMainPhase(p)
}

// movePlayer avanza módulo 40 y cobra GO si corresponde.
func (e *Engine) movePlayer(p *domain.PlayerState, steps int) {
	from := p.Position
	to := (from + steps) % domain.BoardSize
	passedGo := to < from
	p.Position = to
	e.emit(domain.EventPlayerMoved, playerActor(p.ID), map[string]any{
		"from": from, "to": to, "passed_go": passedGo,
	})
	if passedGo {
		e.creditCash(p, domain.GoSalary, domain.ReasonPassGo)
	}
}

// teleportPlayer coloca al jugador en un destino fijo (cartas de avance);
// cobra GO al pasar salvo que se indique lo contrario.
func (e *Engine) teleportPlayer(p *domain.PlayerState, target int, collectGo bool) {
	from := p.Position
	passedGo := collectGo && (target < from || target == domain.GoIndex)
	p.Position = target
	e.emit(domain.EventPlayerMoved, playerActor(p.ID), map[string]any{
		"from": from, "to": target, "passed_go": passedGo,
	})
	if passedGo {
		e.creditCash(p, domain.GoSalary, domain.ReasonPassGo)
	}
}

// finishMainPhase cierra la fase principal: si no quedó decisión pendiente y
// el jugador sigue en juego, abre la decisión de post-turno.
func (e *Engine) finishMainPhase(p *domain.PlayerState) {
	if e.pending != nil || e.gameOver {
		return
	}
	if p.Bankrupt || p.InJail {
		e.endTurn(p)
		return
	}
	e.pending = e.newPostTurnDecision(p)
}

// endTurn emite TURN_ENDED, comprueba el fin de partida y rota el turno.
func (e *Engine) endTurn(p *domain.PlayerState) {
	e.emit(domain.EventTurnEnded, engineActor(), map[string]any{"player_id": p.ID})

	alive := e.state.NonBankrupt()
	if len(alive) <= 1 {
		winner := ""
		if len(alive) == 1 {
			winner = alive[0].ID
		}
		e.endGame(winner, EndReasonBankruptcy)
		return
	}

	e.state.TurnIndex++
	if e.state.TurnIndex >= e.cfg.MaxTurns {
		e.endGame(e.richestAlive(), EndReasonMaxTurns)
		return
	}

	if e.extraTurn && !p.Bankrupt && !p.InJail {
		e.extraTurn = false
		return // mismo jugador, turno extra por dobles
	}
	e.extraTurn = false
	e.rotateActive()
}

// rotateActive pasa el turno al siguiente jugador no arruinado.
func (e *Engine) rotateActive() {
	n := len(e.state.Players)
	for i := 1; i <= n; i++ {
		idx := (e.state.ActiveIdx + i) % n
		if !e.state.Players[idx].Bankrupt {
			e.state.ActiveIdx = idx
			return
		}
	}
}

// sendToJail mueve al jugador a la cárcel sin pasar por GO.
func (e *Engine) sendToJail(p *domain.PlayerState) {
	p.Position = domain.JailIndex
	p.InJail = true
	p.JailTurns = 0
	p.DoublesCount = 0
	e.rolledDouble = false
	e.extraTurn = false
}
