package pipeline

import (
	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Holdings agrupa las propiedades de un jugador por estado hipotecario.
type Holdings struct {
	Owned     []string `json:"owned"`
	Mortgaged []string `json:"mortgaged"`
}

// PlayerView es la vista compacta de un jugador dentro de full_state.
type PlayerView struct {
	PlayerID          string   `json:"player_id"`
	Name              string   `json:"name"`
	Cash              int      `json:"cash"`
	Position          string   `json:"position"`
	InJail            bool     `json:"in_jail"`
	JailTurns         int      `json:"jail_turns"`
	GetOutOfJailCards int      `json:"get_out_of_jail_cards"`
	Bankrupt          bool     `json:"bankrupt"`
	Holdings          Holdings `json:"holdings"`
}

// FullState es el bloque de estado del prompt: el jugador que decide más sus
// tres rivales, la banca y la memoria.
type FullState struct {
	You    PlayerView          `json:"you"`
	Others []PlayerView        `json:"others"`
	Bank   domain.BankSnapshot `json:"bank"`
	Memory MemoryView          `json:"memory"`
}

// DecisionBlock identifica la decisión y sus acciones legales con schemas
// aumentados.
type DecisionBlock struct {
	DecisionID   string               `json:"decision_id"`
	DecisionType string               `json:"decision_type"`
	PlayerID     string               `json:"player_id"`
	LegalActions []domain.LegalAction `json:"legal_actions"`
}

// LLMBlock viaja sólo cuando el jugador configura razonamiento.
type LLMBlock struct {
	Reasoning domain.ReasoningParams `json:"reasoning"`
}

// UserPayload es el payload único del mensaje de usuario, serializado a JSON
// canónico tanto para la llamada como para el artefacto persistido.
type UserPayload struct {
	FullState     FullState     `json:"full_state"`
	Decision      DecisionBlock `json:"decision"`
	DecisionFocus any           `json:"decision_focus"`
	LLM           *LLMBlock     `json:"llm,omitempty"`
}

// BuildUserPayload arma el payload del prompt para una decisión.
func BuildUserPayload(d *domain.DecisionPoint, mem MemoryView, reasoningEffort string) UserPayload {
	payload := UserPayload{
		FullState:     buildFullState(d, mem),
		Decision:      buildDecisionBlock(d),
		DecisionFocus: buildDecisionFocus(d),
	}
	if reasoningEffort != "" {
		payload.LLM = &LLMBlock{Reasoning: domain.ReasoningParams{Effort: reasoningEffort}}
	}
	return payload
}

func buildFullState(d *domain.DecisionPoint, mem MemoryView) FullState {
	snap := d.Snapshot
	state := FullState{
		Bank:   snap.Bank,
		Memory: mem,
		Others: make([]PlayerView, 0, len(snap.Players)-1),
	}
	for _, p := range snap.Players {
		view := buildPlayerView(p, snap)
		if p.ID == d.PlayerID {
			state.You = view
		} else {
			state.Others = append(state.Others, view)
		}
	}
	return state
}

func buildPlayerView(p domain.PlayerSnapshot, snap domain.Snapshot) PlayerView {
	holdings := Holdings{Owned: []string{}, Mortgaged: []string{}}
	for _, s := range snap.Spaces {
		if s.OwnerPlayerID != p.ID {
			continue
		}
		key := domain.SpaceKeyAt(s.Index)
		if s.Mortgaged {
			holdings.Mortgaged = append(holdings.Mortgaged, key)
		} else {
			holdings.Owned = append(holdings.Owned, key)
		}
	}
	return PlayerView{
		PlayerID:          p.ID,
		Name:              p.Name,
		Cash:              p.Cash,
		Position:          domain.SpaceKeyAt(p.Position),
		InJail:            p.InJail,
		JailTurns:         p.JailTurns,
		GetOutOfJailCards: p.GetOutOfJailCards,
		Bankrupt:          p.Bankrupt,
		Holdings:          holdings,
	}
}

func buildDecisionBlock(d *domain.DecisionPoint) DecisionBlock {
	legal := make([]domain.LegalAction, 0, len(d.LegalActions))
	for _, la := range d.LegalActions {
		legal = append(legal, domain.LegalAction{
			Action:     la.Action,
			ArgsSchema: AugmentSchema(la.ArgsSchema),
		})
	}
	return DecisionBlock{
		DecisionID:   d.DecisionID,
		DecisionType: string(d.Type),
		PlayerID:     d.PlayerID,
		LegalActions: legal,
	}
}

// AugmentSchema añade public_message y private_thought como strings
// opcionales sin mutar el schema original.
func AugmentSchema(schema domain.ArgsSchema) domain.ArgsSchema {
	props := make(map[string]domain.SchemaProperty, len(schema.Properties)+2)
	for k, v := range schema.Properties {
		props[k] = v
	}
	props["public_message"] = domain.SchemaProperty{Type: "string"}
	props["private_thought"] = domain.SchemaProperty{Type: "string"}
	return domain.ArgsSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string(nil), schema.Required...),
	}
}

// GroupProgress resume cuánto del grupo posee ya el jugador que decide.
type GroupProgress struct {
	YouOwnInGroup int `json:"you_own_in_group"`
	TotalInGroup  int `json:"total_in_group"`
}

// BuyFocus es el decision_focus de BUY_OR_AUCTION_DECISION.
type BuyFocus struct {
	SpaceKey      string        `json:"space_key"`
	Kind          string        `json:"kind"`
	Group         string        `json:"group,omitempty"`
	Price         int           `json:"price"`
	HouseCost     int           `json:"house_cost,omitempty"`
	Rent          []int         `json:"rent,omitempty"`
	GroupProgress GroupProgress `json:"group_progress"`
}

// AuctionFocus es el decision_focus de AUCTION_BID_DECISION.
type AuctionFocus struct {
	SpaceKey      string   `json:"space_key"`
	Price         int      `json:"list_price"`
	HighBid       int      `json:"high_bid"`
	MinNextBid    int      `json:"min_next_bid"`
	LeaderID      string   `json:"leader_player_id,omitempty"`
	ActiveBidders []string `json:"active_bidders"`
	YourCash      int      `json:"your_cash"`
}

// ProposeFocus es el decision_focus de TRADE_PROPOSE_DECISION.
type ProposeFocus struct {
	Counterparties []string `json:"counterparties"`
	YourHoldings   Holdings `json:"your_holdings"`
}

// buildDecisionFocus produce el objeto de escenario específico del tipo.
func buildDecisionFocus(d *domain.DecisionPoint) any {
	switch d.Type {
	case domain.DecisionBuyOrAuction:
		return buildBuyFocus(d, d.Buy.SpaceIndex)

	case domain.DecisionJail:
		return d.Jail

	case domain.DecisionAuctionBid:
		a := d.Auction
		var cash int
		for _, p := range d.Snapshot.Players {
			if p.ID == d.PlayerID {
				cash = p.Cash
			}
		}
		return AuctionFocus{
			SpaceKey:      domain.SpaceKeyAt(a.SpaceIndex),
			Price:         domain.BoardSpec[a.SpaceIndex].Price,
			HighBid:       a.HighBid,
			MinNextBid:    a.MinNextBid,
			LeaderID:      a.LeaderID,
			ActiveBidders: a.ActiveBidders,
			YourCash:      cash,
		}

	case domain.DecisionTradeResponse:
		return d.Trade

	case domain.DecisionTradePropose:
		var counterparties []string
		for _, p := range d.Snapshot.Players {
			if p.ID != d.PlayerID && !p.Bankrupt {
				counterparties = append(counterparties, p.ID)
			}
		}
		you := buildPlayerView(playerSnapshot(d), d.Snapshot)
		return ProposeFocus{Counterparties: counterparties, YourHoldings: you.Holdings}

	case domain.DecisionPostTurn:
		return d.PostTurn

	case domain.DecisionLiquidation:
		return d.Liquidation
	}
	return struct{}{}
}

func buildBuyFocus(d *domain.DecisionPoint, idx int) BuyFocus {
	spec := domain.BoardSpec[idx]
	focus := BuyFocus{
		SpaceKey: domain.SpaceKeyAt(idx),
		Kind:     string(spec.Kind),
		Group:    string(spec.Group),
		Price:    spec.Price,
	}
	if spec.Kind == domain.KindProperty {
		focus.HouseCost = domain.HouseCost(spec.Group)
		if rents, ok := domain.RentTable(idx); ok {
			focus.Rent = rents[:]
		}
	}
	if spec.Group != "" {
		owned := 0
		for _, gIdx := range domain.GroupSpaces(spec.Group) {
			if d.Snapshot.Spaces[gIdx].OwnerPlayerID == d.PlayerID {
				owned++
			}
		}
		focus.GroupProgress = GroupProgress{
			YouOwnInGroup: owned,
			TotalInGroup:  len(domain.GroupSpaces(spec.Group)),
		}
	}
	return focus
}

func playerSnapshot(d *domain.DecisionPoint) domain.PlayerSnapshot {
	for _, p := range d.Snapshot.Players {
		if p.ID == d.PlayerID {
			return p
		}
	}
	return domain.PlayerSnapshot{}
}

// BuildTools construye la lista de herramientas: una por acción legal.
func BuildTools(d *domain.DecisionPoint) []domain.ToolSpec {
	tools := make([]domain.ToolSpec, 0, len(d.LegalActions))
	for _, la := range d.LegalActions {
		tools = append(tools, domain.ToolSpec{
			Type: "function",
			Function: domain.ToolFunction{
				Name:        la.Action,
				Description: DescriptionFor(la.Action),
				Parameters:  AugmentSchema(la.ArgsSchema),
			},
		})
	}
	return tools
}
