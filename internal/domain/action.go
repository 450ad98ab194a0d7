package domain

// Nombres de acción del contrato v1.
const (
	ActionBuyProperty        = "buy_property"
	ActionStartAuction       = "start_auction"
	ActionBidAuction         = "bid_auction"
	ActionDropOut            = "drop_out"
	ActionPayJailFine        = "pay_jail_fine"
	ActionRollForDoubles     = "roll_for_doubles"
	ActionUseJailCard        = "use_get_out_of_jail_card"
	ActionProposeTrade       = "propose_trade"
	ActionAcceptTrade        = "accept_trade"
	ActionRejectTrade        = "reject_trade"
	ActionCounterTrade       = "counter_trade"
	ActionMortgageProperty   = "mortgage_property"
	ActionUnmortgageProperty = "unmortgage_property"
	ActionBuildHousesOrHotel = "build_houses_or_hotel"
	ActionSellHousesOrHotel  = "sell_houses_or_hotel"
	ActionEndTurn            = "end_turn"
	ActionDeclareBankruptcy  = "declare_bankruptcy"
	ActionNoop               = "NOOP"
)

// Tipos de edificio en planes de construcción/venta.
const (
	BuildKindHouse = "HOUSE"
	BuildKindHotel = "HOTEL"
)

// BuildPlanItem es una entrada de build_plan o sell_plan.
type BuildPlanItem struct {
	SpaceKey string `json:"space_key"`
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
}

// ActionArgs agrupa los argumentos posibles de todas las acciones; cada
// acción valida únicamente los suyos.
type ActionArgs struct {
	BidAmount  *int            `json:"bid_amount,omitempty"`
	SpaceKey   string          `json:"space_key,omitempty"`
	BuildPlan  []BuildPlanItem `json:"build_plan,omitempty"`
	SellPlan   []BuildPlanItem `json:"sell_plan,omitempty"`
	ToPlayerID string          `json:"to_player_id,omitempty"`
	Offer      *TradeBundle    `json:"offer,omitempty"`
	Request    *TradeBundle    `json:"request,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// Action es la instrucción validada que resuelve una decisión.
type Action struct {
	SchemaVersion  string     `json:"schema_version"`
	DecisionID     string     `json:"decision_id"`
	Name           string     `json:"action"`
	Args           ActionArgs `json:"args"`
	PublicMessage  string     `json:"public_message,omitempty"`
	PrivateThought string     `json:"private_thought,omitempty"`
}

// DecisionMeta acompaña a apply_action con el resultado del arbitraje.
type DecisionMeta struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
