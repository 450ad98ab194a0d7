package domain

// DecisionType clasifica las peticiones de acción al jugador.
type DecisionType string

const (
	DecisionBuyOrAuction  DecisionType = "BUY_OR_AUCTION_DECISION"
	DecisionJail          DecisionType = "JAIL_DECISION"
	DecisionAuctionBid    DecisionType = "AUCTION_BID_DECISION"
	DecisionTradeResponse DecisionType = "TRADE_RESPONSE_DECISION"
	DecisionTradePropose  DecisionType = "TRADE_PROPOSE_DECISION"
	DecisionPostTurn      DecisionType = "POST_TURN_ACTION_DECISION"
	DecisionLiquidation   DecisionType = "LIQUIDATION_DECISION"
)

// SchemaProperty describe una propiedad dentro de un args_schema.
type SchemaProperty struct {
	Type                 string                    `json:"type,omitempty"`
	Minimum              *int                      `json:"minimum,omitempty"`
	Enum                 []string                  `json:"enum,omitempty"`
	Items                *SchemaProperty           `json:"items,omitempty"`
	Properties           map[string]SchemaProperty `json:"properties,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties *bool                     `json:"additionalProperties,omitempty"`
}

// ArgsSchema describe los argumentos aceptados por una acción legal.
// Un schema sin required acepta el objeto vacío.
type ArgsSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]SchemaProperty `json:"properties"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties bool                      `json:"additionalProperties"`
}

// EmptyArgsSchema devuelve el schema de una acción sin argumentos.
func EmptyArgsSchema() ArgsSchema {
	return ArgsSchema{Type: "object", Properties: map[string]SchemaProperty{}}
}

// LegalAction es una entrada de la lista de acciones legales.
type LegalAction struct {
	Action     string     `json:"action"`
	ArgsSchema ArgsSchema `json:"args_schema"`
	UIHint     string     `json:"ui_hint,omitempty"`
}

// BuyContext acompaña a BUY_OR_AUCTION_DECISION.
type BuyContext struct {
	SpaceIndex int `json:"space_index"`
}

// JailContext acompaña a JAIL_DECISION.
type JailContext struct {
	Fine       bool `json:"can_pay_fine"`
	Roll       bool `json:"can_roll_for_doubles"`
	UseCard    bool `json:"can_use_card"`
	FineAmount int  `json:"fine_amount"`
	JailTurns  int  `json:"jail_turns"`
}

// AuctionContext acompaña a AUCTION_BID_DECISION.
type AuctionContext struct {
	SpaceIndex    int      `json:"space_index"`
	HighBid       int      `json:"high_bid"`
	MinNextBid    int      `json:"min_next_bid"`
	LeaderID      string   `json:"leader_player_id,omitempty"`
	ActiveBidders []string `json:"active_bidders"`
}

// LiquidationContext acompaña a LIQUIDATION_DECISION.
type LiquidationContext struct {
	OwedAmount int    `json:"owed_amount"`
	CreditorID string `json:"creditor_player_id,omitempty"`
	Reason     string `json:"reason"`
	SpaceIndex int    `json:"space_index,omitempty"`
	Shortfall  int    `json:"shortfall"`
}

// TradeContext acompaña a TRADE_RESPONSE_DECISION.
type TradeContext struct {
	InitiatorID   string      `json:"initiator_player_id"`
	ProposerID    string      `json:"proposer_player_id"`
	ExchangeIndex int         `json:"exchange_index"`
	MaxExchanges  int         `json:"max_exchanges"`
	Offer         TradeBundle `json:"offer"`
	Request       TradeBundle `json:"request"`
}

// PostTurnContext acompaña a POST_TURN_ACTION_DECISION.
type PostTurnContext struct {
	Mortgageable   []string `json:"mortgageable"`
	Unmortgageable []string `json:"unmortgageable"`
	Buildable      []string `json:"buildable"`
	Sellable       []string `json:"sellable"`
	CanTradeWith   []string `json:"can_trade_with"`
}

// DecisionPoint es una petición estructurada de acción. El contexto
// específico del tipo viaja en el puntero correspondiente; el resto es nil.
type DecisionPoint struct {
	SchemaVersion string        `json:"schema_version"`
	RunID         string        `json:"run_id"`
	DecisionID    string        `json:"decision_id"`
	TurnIndex     int           `json:"turn_index"`
	PlayerID      string        `json:"player_id"`
	Type          DecisionType  `json:"decision_type"`
	Snapshot      Snapshot      `json:"snapshot"`
	LegalActions  []LegalAction `json:"legal_actions"`

	Buy         *BuyContext         `json:"buy_context,omitempty"`
	Jail        *JailContext        `json:"jail_context,omitempty"`
	Auction     *AuctionContext     `json:"auction_context,omitempty"`
	Liquidation *LiquidationContext `json:"liquidation_context,omitempty"`
	Trade       *TradeContext       `json:"trade_context,omitempty"`
	PostTurn    *PostTurnContext    `json:"post_turn_context,omitempty"`
}

// IsLegal indica si el nombre de acción aparece en la lista legal.
func (d *DecisionPoint) IsLegal(action string) bool {
	for _, la := range d.LegalActions {
		if la.Action == action {
			return true
		}
	}
	return false
}

// LegalNames devuelve los nombres de acción legales en orden.
func (d *DecisionPoint) LegalNames() []string {
	out := make([]string, 0, len(d.LegalActions))
	for _, la := range d.LegalActions {
		out = append(out, la.Action)
	}
	return out
}
