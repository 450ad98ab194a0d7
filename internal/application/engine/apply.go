package engine

import (
	"fmt"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// errIllegalf construye un error de acción ilegal con contexto.
func errIllegalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalAction, fmt.Sprintf(format, args...))
}

// ApplyAction consume la decisión pendiente: valida la acción completa antes
// de tocar el estado, emite los eventos del efecto y puede dejar encadenada
// la siguiente decisión.
func (e *Engine) ApplyAction(action domain.Action, meta domain.DecisionMeta) (StepResult, error) {
	if e.gameOver {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w: game is over", ErrIllegalAction)
	}
	if e.applied[action.DecisionID] {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w: %s", ErrDecisionAlreadyApplied, action.DecisionID)
	}
	d := e.pending
	if d == nil {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w", ErrNoPendingDecision)
	}
	if action.DecisionID != d.DecisionID {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w: decision id %q does not match pending %q",
			ErrIllegalAction, action.DecisionID, d.DecisionID)
	}
	if action.SchemaVersion != "" && action.SchemaVersion != domain.SchemaVersion {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w: unsupported schema_version %q",
			ErrIllegalAction, action.SchemaVersion)
	}
	if !d.IsLegal(action.Name) && !(action.Name == domain.ActionNoop && len(d.LegalActions) == 0) {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w: %q not in legal actions %v",
			ErrIllegalAction, action.Name, d.LegalNames())
	}

	p := e.state.PlayerByID(d.PlayerID)
	if err := e.validateAction(p, d, action); err != nil {
		return StepResult{}, fmt.Errorf("engine.ApplyAction: %w", err)
	}

	// A partir de aquí la acción no puede fallar.
	e.applied[action.DecisionID] = true
	e.pending = nil

	e.emit(domain.EventDecisionResponse, playerActor(d.PlayerID), map[string]any{
		"decision_id": d.DecisionID,
		"player_id":   d.PlayerID,
		"action_name": action.Name,
		"valid":       meta.Valid,
		"error":       meta.Error,
	})
	if action.PublicMessage != "" {
		e.emit(domain.EventPublicMessage, playerActor(d.PlayerID), map[string]any{
			"player_id": d.PlayerID,
			"message":   action.PublicMessage,
		})
	}
	if action.PrivateThought != "" {
		e.emit(domain.EventPrivateThought, playerActor(d.PlayerID), map[string]any{
			"player_id": d.PlayerID,
			"thought":   action.PrivateThought,
		})
	}

	e.dispatch(p, d, action)
	return e.flush(), nil
}

// dispatch ejecuta el efecto de una acción ya validada.
func (e *Engine) dispatch(p *domain.PlayerState, d *domain.DecisionPoint, action domain.Action) {
	switch action.Name {
	case domain.ActionBuyProperty:
		idx := d.Buy.SpaceIndex
		price := domain.BoardSpec[idx].Price
		e.debitCash(p, price, domain.ActionBuyProperty)
		e.state.Spaces[idx].Owner = p.ID
		e.emit(domain.EventPropertyPurchased, playerActor(p.ID), map[string]any{
			"player_id":   p.ID,
			"space_index": idx,
			"price":       price,
		})
		e.finishMainPhase(p)

	case domain.ActionStartAuction:
		e.openAuction(p, d.Buy.SpaceIndex)

	case domain.ActionPayJailFine:
		e.applyPayJailFine(p)

	case domain.ActionRollForDoubles:
		e.applyRollForDoubles(p)

	case domain.ActionUseJailCard:
		e.applyUseJailCard(p)

	case domain.ActionBidAuction:
		e.applyBidAuction(p, *action.Args.BidAmount)

	case domain.ActionDropOut:
		e.applyDropOut(p)

	case domain.ActionProposeTrade:
		if action.Args.ToPlayerID == "" {
			// Camino de propuesta explícita: pedir la oferta completa.
			e.pending = e.newTradeProposeDecision(p)
			return
		}
		e.openTrade(p, action.Args.ToPlayerID, *action.Args.Offer, *action.Args.Request)

	case domain.ActionAcceptTrade:
		e.applyAcceptTrade(p)

	case domain.ActionRejectTrade:
		e.applyRejectTrade(p)

	case domain.ActionCounterTrade:
		e.applyCounterTrade(p, *action.Args.Offer, *action.Args.Request)

	case domain.ActionMortgageProperty:
		e.applyMortgage(p, action.Args.SpaceKey, d.Type)

	case domain.ActionUnmortgageProperty:
		e.applyUnmortgage(p, action.Args.SpaceKey)

	case domain.ActionBuildHousesOrHotel:
		e.applyBuildPlan(p, action.Args.BuildPlan)

	case domain.ActionSellHousesOrHotel:
		e.applySellPlan(p, action.Args.SellPlan, d.Type)

	case domain.ActionEndTurn:
		e.endTurn(p)

	case domain.ActionDeclareBankruptcy:
		creditor := ""
		if e.state.Pending != nil {
			creditor = e.state.Pending.Creditor
		}
		e.declareBankruptcy(p, creditor)

	case domain.ActionNoop:
		e.finishMainPhase(p)
	}
}

// validateAction comprueba los argumentos de la acción contra el estado
// actual. No muta nada: una acción inválida deja el engine intacto.
func (e *Engine) validateAction(p *domain.PlayerState, d *domain.DecisionPoint, action domain.Action) error {
	args := action.Args
	switch action.Name {
	case domain.ActionBuyProperty:
		price := domain.BoardSpec[d.Buy.SpaceIndex].Price
		if p.Cash < price {
			return errIllegalf("player %s cannot afford %d", p.ID, price)
		}

	case domain.ActionBidAuction:
		if args.BidAmount == nil {
			return errIllegalf("bid_auction requires bid_amount")
		}
		a := e.state.Auction
		if *args.BidAmount < a.HighBid+1 {
			return errIllegalf("bid %d must exceed high bid %d", *args.BidAmount, a.HighBid)
		}
		if *args.BidAmount > p.Cash {
			return errIllegalf("bid %d exceeds cash %d", *args.BidAmount, p.Cash)
		}

	case domain.ActionProposeTrade:
		if args.ToPlayerID == "" {
			if d.Type == domain.DecisionTradePropose {
				return errIllegalf("propose_trade requires to_player_id, offer and request")
			}
			return nil // abre la decisión de propuesta explícita
		}
		if args.Offer == nil || args.Request == nil {
			return errIllegalf("propose_trade requires offer and request bundles")
		}
		target := e.state.PlayerByID(args.ToPlayerID)
		if target == nil || target.Bankrupt || target.ID == p.ID {
			return errIllegalf("invalid trade counterparty %q", args.ToPlayerID)
		}
		if err := e.validateTradeBundle(p, *args.Offer); err != nil {
			return err
		}
		if err := e.validateTradeBundle(target, *args.Request); err != nil {
			return err
		}

	case domain.ActionCounterTrade:
		if args.Offer == nil || args.Request == nil {
			return errIllegalf("counter_trade requires offer and request bundles")
		}
		t := e.state.Trade
		if t.ExchangeIndex >= t.MaxExchanges {
			return nil // la aplicación expira el hilo
		}
		other := e.state.PlayerByID(t.Proposer)
		if err := e.validateTradeBundle(p, *args.Offer); err != nil {
			return err
		}
		if err := e.validateTradeBundle(other, *args.Request); err != nil {
			return err
		}

	case domain.ActionMortgageProperty:
		idx, ok := domain.SpaceIndexByKey(args.SpaceKey)
		if !ok {
			return errIllegalf("unknown space_key %q", args.SpaceKey)
		}
		space := e.state.Spaces[idx]
		if space.Owner != p.ID {
			return errIllegalf("player %s does not own %s", p.ID, args.SpaceKey)
		}
		if space.Mortgaged {
			return errIllegalf("%s is already mortgaged", args.SpaceKey)
		}
		if e.groupHasBuildings(domain.BoardSpec[idx].Group) {
			return errIllegalf("cannot mortgage %s while the group has buildings", args.SpaceKey)
		}

	case domain.ActionUnmortgageProperty:
		idx, ok := domain.SpaceIndexByKey(args.SpaceKey)
		if !ok {
			return errIllegalf("unknown space_key %q", args.SpaceKey)
		}
		space := e.state.Spaces[idx]
		if space.Owner != p.ID {
			return errIllegalf("player %s does not own %s", p.ID, args.SpaceKey)
		}
		if !space.Mortgaged {
			return errIllegalf("%s is not mortgaged", args.SpaceKey)
		}
		if p.Cash < domain.UnmortgageCost(idx) {
			return errIllegalf("player %s cannot afford unmortgage cost %d", p.ID, domain.UnmortgageCost(idx))
		}

	case domain.ActionBuildHousesOrHotel:
		return e.validateBuildPlan(p, args.BuildPlan)

	case domain.ActionSellHousesOrHotel:
		return e.validateSellPlan(p, args.SellPlan)
	}
	return nil
}
