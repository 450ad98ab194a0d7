package engine

import "github.com/alejandrodnm/monopolyarena/internal/domain"

// applyMortgage hipoteca la casilla y abona la mitad del precio.
func (e *Engine) applyMortgage(p *domain.PlayerState, key string, dtype domain.DecisionType) {
	idx, _ := domain.SpaceIndexByKey(key)
	amount := domain.MortgageValue(idx)
	e.state.Spaces[idx].Mortgaged = true
	e.emit(domain.EventPropertyMortgaged, playerActor(p.ID), map[string]any{
		"player_id":   p.ID,
		"space_index": idx,
		"amount":      amount,
	})
	e.creditCash(p, amount, domain.ActionMortgageProperty)
	e.afterAssetAction(p, dtype)
}

// applyUnmortgage rescata la hipoteca pagando el 110% de su valor.
func (e *Engine) applyUnmortgage(p *domain.PlayerState, key string) {
	idx, _ := domain.SpaceIndexByKey(key)
	cost := domain.UnmortgageCost(idx)
	e.debitCash(p, cost, domain.ActionUnmortgageProperty)
	e.state.Spaces[idx].Mortgaged = false
	e.emit(domain.EventPropertyUnmortgaged, playerActor(p.ID), map[string]any{
		"player_id":   p.ID,
		"space_index": idx,
		"amount":      cost,
	})
	e.pending = e.newPostTurnDecision(p)
}

// applyBuildPlan ejecuta un plan ya validado unidad a unidad.
func (e *Engine) applyBuildPlan(p *domain.PlayerState, plan []domain.BuildPlanItem) {
	cost := 0
	for _, item := range plan {
		idx, _ := domain.SpaceIndexByKey(item.SpaceKey)
		group := domain.BoardSpec[idx].Group
		space := &e.state.Spaces[idx]
		for i := 0; i < item.Count; i++ {
			if item.Kind == domain.BuildKindHouse {
				space.Houses++
				e.state.Bank.Houses--
				e.emit(domain.EventHouseBuilt, playerActor(p.ID), map[string]any{
					"player_id":   p.ID,
					"space_index": idx,
					"houses":      space.Houses,
				})
			} else {
				// El hotel devuelve las 4 casas a la banca.
				space.Houses = 0
				space.Hotel = true
				e.state.Bank.Houses += 4
				e.state.Bank.Hotels--
				e.emit(domain.EventHotelBuilt, playerActor(p.ID), map[string]any{
					"player_id":   p.ID,
					"space_index": idx,
				})
			}
			cost += domain.HouseCost(group)
		}
	}
	e.debitCash(p, cost, domain.ActionBuildHousesOrHotel)
	e.pending = e.newPostTurnDecision(p)
}

// applySellPlan deshace edificios por la mitad de su coste.
func (e *Engine) applySellPlan(p *domain.PlayerState, plan []domain.BuildPlanItem, dtype domain.DecisionType) {
	refund := 0
	for _, item := range plan {
		idx, _ := domain.SpaceIndexByKey(item.SpaceKey)
		group := domain.BoardSpec[idx].Group
		space := &e.state.Spaces[idx]
		for i := 0; i < item.Count; i++ {
			if item.Kind == domain.BuildKindHouse {
				space.Houses--
				e.state.Bank.Houses++
				e.emit(domain.EventHouseSold, playerActor(p.ID), map[string]any{
					"player_id":   p.ID,
					"space_index": idx,
					"houses":      space.Houses,
				})
			} else {
				// Romper el hotel consume 4 casas de la banca.
				space.Hotel = false
				space.Houses = 4
				e.state.Bank.Hotels++
				e.state.Bank.Houses -= 4
				e.emit(domain.EventHotelSold, playerActor(p.ID), map[string]any{
					"player_id":   p.ID,
					"space_index": idx,
				})
			}
			refund += domain.HouseCost(group) / 2
		}
	}
	e.creditCash(p, refund, domain.ActionSellHousesOrHotel)
	e.afterAssetAction(p, dtype)
}

// afterAssetAction encadena la siguiente decisión tras liberar o invertir
// activos: reintento de la deuda en liquidación, o de vuelta al post-turno.
func (e *Engine) afterAssetAction(p *domain.PlayerState, dtype domain.DecisionType) {
	if dtype != domain.DecisionLiquidation {
		e.pending = e.newPostTurnDecision(p)
		return
	}
	if e.retryPendingPayment(p) {
		cont := e.afterSettle
		e.afterSettle = afterSettleNone
		if cont == afterSettleJailExit {
			e.leaveJailAndRoll(p)
			return
		}
		e.finishMainPhase(p)
		return
	}
	if e.pending == nil {
		e.pending = e.newLiquidationDecision(p)
	}
}

// buildSim es la copia de trabajo para validar planes sin mutar estado.
type buildSim struct {
	spaces [domain.BoardSize]domain.SpaceState
	bank   domain.BankState
	cost   int
}

// validateBuildPlan simula el plan completo contra una copia del tablero y
// la banca. Un plan inválido no muta nada.
func (e *Engine) validateBuildPlan(p *domain.PlayerState, plan []domain.BuildPlanItem) error {
	if len(plan) == 0 {
		return errIllegalf("build_plan must not be empty")
	}
	sim := buildSim{spaces: e.state.Spaces, bank: e.state.Bank}
	groups := map[domain.ColorGroup]bool{}

	for _, item := range plan {
		idx, spec, err := e.planTarget(p, item)
		if err != nil {
			return err
		}
		if !e.state.HasMonopoly(p.ID, spec.Group) {
			return errIllegalf("player %s lacks the monopoly on %s", p.ID, spec.Group)
		}
		groups[spec.Group] = true
		space := &sim.spaces[idx]
		for i := 0; i < item.Count; i++ {
			switch item.Kind {
			case domain.BuildKindHouse:
				if space.Hotel || space.Houses >= 4 {
					return errIllegalf("cannot add a house on %s", item.SpaceKey)
				}
				if sim.bank.Houses <= 0 {
					return errIllegalf("bank has no houses left")
				}
				space.Houses++
				sim.bank.Houses--
			case domain.BuildKindHotel:
				if space.Hotel || space.Houses != 4 {
					return errIllegalf("hotel on %s requires exactly 4 houses", item.SpaceKey)
				}
				if sim.bank.Hotels <= 0 {
					return errIllegalf("bank has no hotels left")
				}
				space.Houses = 0
				space.Hotel = true
				sim.bank.Houses += 4
				sim.bank.Hotels--
			default:
				return errIllegalf("unknown build kind %q", item.Kind)
			}
			sim.cost += domain.HouseCost(spec.Group)
		}
	}

	if sim.cost > p.Cash {
		return errIllegalf("build plan costs %d but player holds %d", sim.cost, p.Cash)
	}
	return checkEvenRule(groups, &sim)
}

// validateSellPlan simula la venta completa antes de aplicarla.
func (e *Engine) validateSellPlan(p *domain.PlayerState, plan []domain.BuildPlanItem) error {
	if len(plan) == 0 {
		return errIllegalf("sell_plan must not be empty")
	}
	sim := buildSim{spaces: e.state.Spaces, bank: e.state.Bank}
	groups := map[domain.ColorGroup]bool{}

	for _, item := range plan {
		idx, spec, err := e.planTarget(p, item)
		if err != nil {
			return err
		}
		groups[spec.Group] = true
		space := &sim.spaces[idx]
		for i := 0; i < item.Count; i++ {
			switch item.Kind {
			case domain.BuildKindHouse:
				if space.Hotel || space.Houses <= 0 {
					return errIllegalf("no house to sell on %s", item.SpaceKey)
				}
				space.Houses--
				sim.bank.Houses++
			case domain.BuildKindHotel:
				if !space.Hotel {
					return errIllegalf("no hotel to sell on %s", item.SpaceKey)
				}
				if sim.bank.Houses < 4 {
					return errIllegalf("bank needs 4 houses to break the hotel on %s", item.SpaceKey)
				}
				space.Hotel = false
				space.Houses = 4
				sim.bank.Hotels++
				sim.bank.Houses -= 4
			default:
				return errIllegalf("unknown build kind %q", item.Kind)
			}
		}
	}
	return checkEvenRule(groups, &sim)
}

// planTarget resuelve y valida el destino de una entrada del plan.
func (e *Engine) planTarget(p *domain.PlayerState, item domain.BuildPlanItem) (int, domain.SpaceSpec, error) {
	if item.Count < 1 {
		return 0, domain.SpaceSpec{}, errIllegalf("plan count must be >= 1")
	}
	idx, ok := domain.SpaceIndexByKey(item.SpaceKey)
	if !ok {
		return 0, domain.SpaceSpec{}, errIllegalf("unknown space_key %q", item.SpaceKey)
	}
	spec := domain.BoardSpec[idx]
	if spec.Kind != domain.KindProperty {
		return 0, domain.SpaceSpec{}, errIllegalf("%s cannot carry buildings", item.SpaceKey)
	}
	if e.state.Spaces[idx].Owner != p.ID {
		return 0, domain.SpaceSpec{}, errIllegalf("player %s does not own %s", p.ID, item.SpaceKey)
	}
	return idx, spec, nil
}

// checkEvenRule valida la edificación pareja en los grupos tocados.
func checkEvenRule(groups map[domain.ColorGroup]bool, sim *buildSim) error {
	for group := range groups {
		minVal, maxVal := 6, 0
		for _, idx := range domain.GroupSpaces(group) {
			v := sim.spaces[idx].BuildingValue()
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		if maxVal-minVal > 1 {
			return errIllegalf("uneven building in group %s", group)
		}
	}
	return nil
}
