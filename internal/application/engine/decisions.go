package engine

import (
	"fmt"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// newDecision construye el esqueleto común de una decisión y emite
// LLM_DECISION_REQUESTED.
func (e *Engine) newDecision(dtype domain.DecisionType, playerID string, legal []domain.LegalAction) *domain.DecisionPoint {
	id := fmt.Sprintf("%s-dec-%06d", e.cfg.RunID, e.decisionSeq)
	e.decisionSeq++
	e.emit(domain.EventDecisionRequested, engineActor(), map[string]any{
		"decision_id":   id,
		"player_id":     playerID,
		"decision_type": string(dtype),
	})
	return &domain.DecisionPoint{
		SchemaVersion: domain.SchemaVersion,
		RunID:         e.cfg.RunID,
		DecisionID:    id,
		TurnIndex:     e.state.TurnIndex,
		PlayerID:      playerID,
		Type:          dtype,
		Snapshot:      e.Snapshot(),
		LegalActions:  legal,
	}
}

func noArgsAction(name string) domain.LegalAction {
	return domain.LegalAction{Action: name, ArgsSchema: domain.EmptyArgsSchema()}
}

func spaceKeyAction(name string, keys []string) domain.LegalAction {
	return domain.LegalAction{
		Action: name,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"space_key": {Type: "string", Enum: keys},
			},
			Required: []string{"space_key"},
		},
	}
}

func planAction(name, field string) domain.LegalAction {
	intMin1 := 1
	return domain.LegalAction{
		Action: name,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				field: {
					Type: "array",
					Items: &domain.SchemaProperty{
						Type: "object",
						Properties: map[string]domain.SchemaProperty{
							"space_key": {Type: "string"},
							"kind":      {Type: "string", Enum: []string{domain.BuildKindHouse, domain.BuildKindHotel}},
							"count":     {Type: "integer", Minimum: &intMin1},
						},
						Required: []string{"space_key", "kind", "count"},
					},
				},
			},
			Required: []string{field},
		},
	}
}

func tradeBundleSchema() domain.SchemaProperty {
	zero := 0
	return domain.SchemaProperty{
		Type: "object",
		Properties: map[string]domain.SchemaProperty{
			"cash":                  {Type: "integer", Minimum: &zero},
			"properties":            {Type: "array", Items: &domain.SchemaProperty{Type: "string"}},
			"get_out_of_jail_cards": {Type: "integer", Minimum: &zero},
		},
		Required: []string{"cash", "properties", "get_out_of_jail_cards"},
	}
}

func proposeTradeAction(counterparties []string) domain.LegalAction {
	return domain.LegalAction{
		Action: domain.ActionProposeTrade,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"to_player_id": {Type: "string", Enum: counterparties},
				"offer":        tradeBundleSchema(),
				"request":      tradeBundleSchema(),
			},
		},
	}
}

func counterTradeAction() domain.LegalAction {
	return domain.LegalAction{
		Action: domain.ActionCounterTrade,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"offer":   tradeBundleSchema(),
				"request": tradeBundleSchema(),
			},
			Required: []string{"offer", "request"},
		},
	}
}

// newBuyOrAuctionDecision se produce al caer en una casilla sin dueño.
func (e *Engine) newBuyOrAuctionDecision(p *domain.PlayerState, spaceIdx int) *domain.DecisionPoint {
	price := domain.BoardSpec[spaceIdx].Price
	var legal []domain.LegalAction
	if p.Cash >= price {
		legal = append(legal, noArgsAction(domain.ActionBuyProperty))
	}
	legal = append(legal, noArgsAction(domain.ActionStartAuction))

	d := e.newDecision(domain.DecisionBuyOrAuction, p.ID, legal)
	d.Buy = &domain.BuyContext{SpaceIndex: spaceIdx}
	return d
}

// newJailDecision se produce al empezar turno en la cárcel. En el tercer
// turno fallido la multa es forzosa aunque falte efectivo (liquidación).
func (e *Engine) newJailDecision(p *domain.PlayerState) *domain.DecisionPoint {
	canPay := p.Cash >= domain.JailFine
	canRoll := p.JailTurns < domain.MaxJailTurns
	canUseCard := len(p.JailCards) > 0

	var legal []domain.LegalAction
	if canPay || !canRoll {
		legal = append(legal, noArgsAction(domain.ActionPayJailFine))
	}
	if canRoll {
		legal = append(legal, noArgsAction(domain.ActionRollForDoubles))
	}
	if canUseCard {
		legal = append(legal, noArgsAction(domain.ActionUseJailCard))
	}

	d := e.newDecision(domain.DecisionJail, p.ID, legal)
	d.Jail = &domain.JailContext{
		Fine:       canPay,
		Roll:       canRoll,
		UseCard:    canUseCard,
		FineAmount: domain.JailFine,
		JailTurns:  p.JailTurns,
	}
	return d
}

// newAuctionDecision pide la puja al postor en el cursor.
func (e *Engine) newAuctionDecision(bidderID string) *domain.DecisionPoint {
	a := e.state.Auction
	minBid := a.HighBid + 1
	legal := []domain.LegalAction{
		{
			Action: domain.ActionBidAuction,
			ArgsSchema: domain.ArgsSchema{
				Type: "object",
				Properties: map[string]domain.SchemaProperty{
					"bid_amount": {Type: "integer", Minimum: &minBid},
				},
				Required: []string{"bid_amount"},
			},
		},
		noArgsAction(domain.ActionDropOut),
	}

	d := e.newDecision(domain.DecisionAuctionBid, bidderID, legal)
	d.Auction = &domain.AuctionContext{
		SpaceIndex:    a.SpaceIndex,
		HighBid:       a.HighBid,
		MinNextBid:    minBid,
		LeaderID:      a.Leader,
		ActiveBidders: append([]string(nil), a.Bidders...),
	}
	return d
}

// newTradeResponseDecision pide respuesta al receptor de la propuesta.
func (e *Engine) newTradeResponseDecision() *domain.DecisionPoint {
	t := e.state.Trade
	var legal []domain.LegalAction
	if e.tradeSettlementFeasible() {
		legal = append(legal, noArgsAction(domain.ActionAcceptTrade))
	}
	legal = append(legal, noArgsAction(domain.ActionRejectTrade))
	if t.ExchangeIndex <= t.MaxExchanges {
		// La contraoferta que excede la cadena expira el hilo al aplicarse.
		legal = append(legal, counterTradeAction())
	}

	d := e.newDecision(domain.DecisionTradeResponse, t.Responder, legal)
	d.Trade = &domain.TradeContext{
		InitiatorID:   t.Initiator,
		ProposerID:    t.Proposer,
		ExchangeIndex: t.ExchangeIndex,
		MaxExchanges:  t.MaxExchanges,
		Offer:         t.Offer,
		Request:       t.Request,
	}
	return d
}

// newTradeProposeDecision abre el camino de propuesta explícita.
func (e *Engine) newTradeProposeDecision(p *domain.PlayerState) *domain.DecisionPoint {
	d := e.newDecision(domain.DecisionTradePropose, p.ID, []domain.LegalAction{
		proposeTradeAction(e.tradeCounterparties(p)),
	})
	return d
}

// newPostTurnDecision enumera las acciones voluntarias de cierre de turno.
func (e *Engine) newPostTurnDecision(p *domain.PlayerState) *domain.DecisionPoint {
	mortgageable := e.mortgageableKeys(p)
	unmortgageable := e.unmortgageableKeys(p)
	buildable := e.buildableKeys(p)
	sellable := e.sellableKeys(p)
	counterparties := e.tradeCounterparties(p)

	legal := []domain.LegalAction{noArgsAction(domain.ActionEndTurn)}
	if len(mortgageable) > 0 {
		legal = append(legal, spaceKeyAction(domain.ActionMortgageProperty, mortgageable))
	}
	if len(unmortgageable) > 0 {
		legal = append(legal, spaceKeyAction(domain.ActionUnmortgageProperty, unmortgageable))
	}
	if len(buildable) > 0 {
		legal = append(legal, planAction(domain.ActionBuildHousesOrHotel, "build_plan"))
	}
	if len(sellable) > 0 {
		legal = append(legal, planAction(domain.ActionSellHousesOrHotel, "sell_plan"))
	}
	if len(counterparties) > 0 {
		legal = append(legal, proposeTradeAction(counterparties))
	}

	d := e.newDecision(domain.DecisionPostTurn, p.ID, legal)
	d.PostTurn = &domain.PostTurnContext{
		Mortgageable:   mortgageable,
		Unmortgageable: unmortgageable,
		Buildable:      buildable,
		Sellable:       sellable,
		CanTradeWith:   counterparties,
	}
	return d
}

// newLiquidationDecision bloquea el turno hasta cubrir la deuda pendiente.
func (e *Engine) newLiquidationDecision(p *domain.PlayerState) *domain.DecisionPoint {
	pp := e.state.Pending
	mortgageable := e.mortgageableKeys(p)
	sellable := e.sellableKeys(p)

	legal := []domain.LegalAction{noArgsAction(domain.ActionDeclareBankruptcy)}
	if len(mortgageable) > 0 {
		legal = append(legal, spaceKeyAction(domain.ActionMortgageProperty, mortgageable))
	}
	if len(sellable) > 0 {
		legal = append(legal, planAction(domain.ActionSellHousesOrHotel, "sell_plan"))
	}

	d := e.newDecision(domain.DecisionLiquidation, p.ID, legal)
	ctx := &domain.LiquidationContext{
		OwedAmount: pp.Amount,
		CreditorID: pp.Creditor,
		Reason:     pp.Reason,
		Shortfall:  pp.Amount - p.Cash,
	}
	if pp.SpaceIndex >= 0 {
		ctx.SpaceIndex = pp.SpaceIndex
	}
	d.Liquidation = ctx
	return d
}

// tradeCounterparties devuelve los rivales vivos con los que se puede
// negociar.
func (e *Engine) tradeCounterparties(p *domain.PlayerState) []string {
	var out []string
	for _, other := range e.state.NonBankrupt() {
		if other.ID != p.ID {
			out = append(out, other.ID)
		}
	}
	return out
}

// mortgageableKeys lista propiedades hipotecables: sin hipoteca y con el
// grupo libre de edificios.
func (e *Engine) mortgageableKeys(p *domain.PlayerState) []string {
	var out []string
	for _, idx := range e.state.OwnedSpaces(p.ID) {
		space := e.state.Spaces[idx]
		if space.Mortgaged {
			continue
		}
		if e.groupHasBuildings(domain.BoardSpec[idx].Group) {
			continue
		}
		out = append(out, domain.SpaceKeyAt(idx))
	}
	return out
}

// unmortgageableKeys lista hipotecas rescatables con el efectivo actual.
func (e *Engine) unmortgageableKeys(p *domain.PlayerState) []string {
	var out []string
	for _, idx := range e.state.OwnedSpaces(p.ID) {
		if e.state.Spaces[idx].Mortgaged && p.Cash >= domain.UnmortgageCost(idx) {
			out = append(out, domain.SpaceKeyAt(idx))
		}
	}
	return out
}

// buildableKeys lista casillas donde cabe al menos una casa u hotel ahora
// mismo: monopolio sin hipotecas, regla de edificación pareja, inventario de
// banca y efectivo suficientes.
func (e *Engine) buildableKeys(p *domain.PlayerState) []string {
	var out []string
	for _, idx := range e.state.OwnedSpaces(p.ID) {
		spec := domain.BoardSpec[idx]
		if spec.Kind != domain.KindProperty {
			continue
		}
		if !e.state.HasMonopoly(p.ID, spec.Group) {
			continue
		}
		if p.Cash < domain.HouseCost(spec.Group) {
			continue
		}
		space := e.state.Spaces[idx]
		if space.Hotel {
			continue
		}
		if space.Houses == 4 {
			if e.state.Bank.Hotels == 0 {
				continue
			}
		} else if e.state.Bank.Houses == 0 {
			continue
		}
		if !e.evenAfterAdd(spec.Group, idx) {
			continue
		}
		out = append(out, domain.SpaceKeyAt(idx))
	}
	return out
}

// sellableKeys lista casillas con edificios vendibles. Vender un hotel exige
// cuatro casas en banca para romperlo.
func (e *Engine) sellableKeys(p *domain.PlayerState) []string {
	var out []string
	for _, idx := range e.state.OwnedSpaces(p.ID) {
		space := e.state.Spaces[idx]
		if space.Hotel {
			if e.state.Bank.Houses >= 4 {
				out = append(out, domain.SpaceKeyAt(idx))
			}
			continue
		}
		if space.Houses > 0 {
			out = append(out, domain.SpaceKeyAt(idx))
		}
	}
	return out
}

// groupHasBuildings indica si alguna casilla del grupo tiene edificios.
func (e *Engine) groupHasBuildings(group domain.ColorGroup) bool {
	for _, idx := range domain.GroupSpaces(group) {
		if e.state.Spaces[idx].BuildingValue() > 0 {
			return true
		}
	}
	return false
}

// evenAfterAdd comprueba la regla pareja si se añade una unidad en idx.
func (e *Engine) evenAfterAdd(group domain.ColorGroup, idx int) bool {
	minVal, maxVal := 6, 0
	for _, gIdx := range domain.GroupSpaces(group) {
		v := e.state.Spaces[gIdx].BuildingValue()
		if gIdx == idx {
			v++
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal-minVal <= 1
}
