package domain

// SchemaVersion etiqueta todos los registros externos (eventos, decisiones,
// acciones, snapshots).
const SchemaVersion = "v1"

// ActorKind distingue entre el árbitro y un jugador.
type ActorKind string

const (
	ActorEngine ActorKind = "ENGINE"
	ActorPlayer ActorKind = "PLAYER"
)

// Actor identifica al emisor de un evento.
type Actor struct {
	Kind     ActorKind `json:"kind"`
	PlayerID string    `json:"player_id,omitempty"`
}

// Tipos de evento emitidos por el engine.
const (
	EventGameStarted          = "GAME_STARTED"
	EventTurnStarted          = "TURN_STARTED"
	EventTurnEnded            = "TURN_ENDED"
	EventDiceRolled           = "DICE_ROLLED"
	EventPlayerMoved          = "PLAYER_MOVED"
	EventCashChanged          = "CASH_CHANGED"
	EventPropertyPurchased    = "PROPERTY_PURCHASED"
	EventRentPaid             = "RENT_PAID"
	EventSentToJail           = "SENT_TO_JAIL"
	EventCardDrawn            = "CARD_DRAWN"
	EventPropertyMortgaged    = "PROPERTY_MORTGAGED"
	EventPropertyUnmortgaged  = "PROPERTY_UNMORTGAGED"
	EventHouseBuilt           = "HOUSE_BUILT"
	EventHouseSold            = "HOUSE_SOLD"
	EventHotelBuilt           = "HOTEL_BUILT"
	EventHotelSold            = "HOTEL_SOLD"
	EventAuctionStarted       = "AUCTION_STARTED"
	EventAuctionBidPlaced     = "AUCTION_BID_PLACED"
	EventAuctionPlayerDropped = "AUCTION_PLAYER_DROPPED"
	EventAuctionEnded         = "AUCTION_ENDED"
	EventTradeProposed        = "TRADE_PROPOSED"
	EventTradeCountered       = "TRADE_COUNTERED"
	EventTradeAccepted        = "TRADE_ACCEPTED"
	EventTradeRejected        = "TRADE_REJECTED"
	EventTradeExpired         = "TRADE_EXPIRED"
	EventPropertyTransferred  = "PROPERTY_TRANSFERRED"
	EventBankruptcyDeclared   = "BANKRUPTCY_DECLARED"
	EventDecisionRequested    = "LLM_DECISION_REQUESTED"
	EventDecisionResponse     = "LLM_DECISION_RESPONSE"
	EventPublicMessage        = "LLM_PUBLIC_MESSAGE"
	EventPrivateThought       = "LLM_PRIVATE_THOUGHT"
	EventGameEnded            = "GAME_ENDED"
)

// Razones de cambio de efectivo emitidas por el propio engine. Las razones
// originadas por una acción usan el nombre de la acción en minúsculas.
const (
	ReasonPassGo     = "PASS_GO"
	ReasonRent       = "RENT"
	ReasonJailFine   = "JAIL_FINE"
	ReasonTrade      = "TRADE"
	ReasonBankruptcy = "BANKRUPTCY"
)

// Razones de cierre de subasta.
const (
	AuctionSold   = "SOLD"
	AuctionNoBids = "NO_BIDS"
)

// Razones de envío a la cárcel.
const (
	JailReasonGoToJail     = "GO_TO_JAIL"
	JailReasonThreeDoubles = "THREE_DOUBLES"
	JailReasonChanceCard   = "CHANCE_CARD"
	JailReasonChestCard    = "COMMUNITY_CHEST_CARD"
)

// Event es un registro inmutable y numerado del log de la partida.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	RunID         string         `json:"run_id"`
	EventID       string         `json:"event_id"`
	Seq           int            `json:"seq"`
	TurnIndex     int            `json:"turn_index"`
	TsMs          int64          `json:"ts_ms"`
	Actor         Actor          `json:"actor"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload"`
}
