package pipeline

import (
	"context"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Fallback construye la acción determinista de respaldo de una decisión.
// Siempre devuelve una acción legal por construcción.
func Fallback(d *domain.DecisionPoint) domain.Action {
	base := domain.Action{SchemaVersion: domain.SchemaVersion, DecisionID: d.DecisionID}

	switch d.Type {
	case domain.DecisionBuyOrAuction:
		if d.IsLegal(domain.ActionBuyProperty) {
			base.Name = domain.ActionBuyProperty
		} else {
			base.Name = domain.ActionStartAuction
		}
		return base

	case domain.DecisionJail:
		// Preferencia: carta > multa > tirar.
		for _, name := range []string{domain.ActionUseJailCard, domain.ActionPayJailFine, domain.ActionRollForDoubles} {
			if d.IsLegal(name) {
				base.Name = name
				return base
			}
		}

	case domain.DecisionAuctionBid:
		if d.Auction != nil {
			for _, p := range d.Snapshot.Players {
				if p.ID == d.PlayerID && p.Cash >= d.Auction.MinNextBid {
					bid := d.Auction.MinNextBid
					base.Name = domain.ActionBidAuction
					base.Args.BidAmount = &bid
					return base
				}
			}
		}
		base.Name = domain.ActionDropOut
		return base

	case domain.DecisionTradeResponse:
		base.Name = domain.ActionRejectTrade
		return base

	case domain.DecisionTradePropose:
		// Propuesta trivial: bundles vacíos al primer rival elegible.
		base.Name = domain.ActionProposeTrade
		base.Args.ToPlayerID = firstCounterparty(d)
		base.Args.Offer = &domain.TradeBundle{Properties: []string{}}
		base.Args.Request = &domain.TradeBundle{Properties: []string{}}
		return base

	case domain.DecisionPostTurn:
		base.Name = domain.ActionEndTurn
		return base

	case domain.DecisionLiquidation:
		if key := firstEnumArg(d, domain.ActionMortgageProperty, "space_key"); key != "" {
			base.Name = domain.ActionMortgageProperty
			base.Args.SpaceKey = key
			return base
		}
		if plan := firstSellPlan(d); plan != nil {
			base.Name = domain.ActionSellHousesOrHotel
			base.Args.SellPlan = plan
			return base
		}
		base.Name = domain.ActionDeclareBankruptcy
		return base
	}

	// Último recurso: la primera acción legal sin argumentos, o NOOP.
	for _, la := range d.LegalActions {
		if len(la.ArgsSchema.Required) == 0 {
			base.Name = la.Action
			return base
		}
	}
	base.Name = domain.ActionNoop
	base.Args.Reason = "fallback"
	return base
}

// firstCounterparty devuelve el primer rival del enum de propose_trade.
func firstCounterparty(d *domain.DecisionPoint) string {
	for _, la := range d.LegalActions {
		if la.Action != domain.ActionProposeTrade {
			continue
		}
		if prop, ok := la.ArgsSchema.Properties["to_player_id"]; ok && len(prop.Enum) > 0 {
			return prop.Enum[0]
		}
	}
	for _, p := range d.Snapshot.Players {
		if p.ID != d.PlayerID && !p.Bankrupt {
			return p.ID
		}
	}
	return ""
}

// firstEnumArg devuelve el primer valor del enum del argumento de la acción.
func firstEnumArg(d *domain.DecisionPoint, action, arg string) string {
	for _, la := range d.LegalActions {
		if la.Action != action {
			continue
		}
		if prop, ok := la.ArgsSchema.Properties[arg]; ok && len(prop.Enum) > 0 {
			return prop.Enum[0]
		}
	}
	return ""
}

// firstSellPlan construye el plan mínimo de venta: una unidad del primer
// edificio vendible.
func firstSellPlan(d *domain.DecisionPoint) []domain.BuildPlanItem {
	if !d.IsLegal(domain.ActionSellHousesOrHotel) {
		return nil
	}
	for _, s := range d.Snapshot.Spaces {
		if s.OwnerPlayerID != d.PlayerID {
			continue
		}
		if s.Hotel && d.Snapshot.Bank.Houses >= 4 {
			return []domain.BuildPlanItem{{SpaceKey: domain.SpaceKeyAt(s.Index), Kind: domain.BuildKindHotel, Count: 1}}
		}
		if s.Houses > 0 {
			return []domain.BuildPlanItem{{SpaceKey: domain.SpaceKeyAt(s.Index), Kind: domain.BuildKindHouse, Count: 1}}
		}
	}
	return nil
}

// ScriptedPolicy es la política determinista usada en ejecuciones -mock: la
// acción de respaldo de cada decisión, sin llamadas remotas.
type ScriptedPolicy struct{}

// Decide resuelve la decisión con la acción de respaldo.
func (ScriptedPolicy) Decide(_ context.Context, d *domain.DecisionPoint) (domain.DecisionOutcome, error) {
	action := Fallback(d)
	return domain.DecisionOutcome{
		Action:   action,
		Meta:     domain.DecisionMeta{Valid: true},
		Model:    "scripted",
		Attempts: 0,
	}, nil
}
