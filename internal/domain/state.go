package domain

// PlayerState es el estado mutable de un jugador.
type PlayerState struct {
	ID           string
	Name         string
	Cash         int
	Position     int
	InJail       bool
	JailTurns    int
	DoublesCount int
	Bankrupt     bool
	BankruptTo   string // id del acreedor; vacío = banca
	JailCards    []DeckType
}

// SpaceState es el estado mutable de una casilla.
type SpaceState struct {
	Owner     string // id del dueño; vacío = sin dueño
	Mortgaged bool
	Houses    int
	Hotel     bool
}

// BuildingValue devuelve el valor de edificación (hotel cuenta como 5).
func (s SpaceState) BuildingValue() int {
	if s.Hotel {
		return 5
	}
	return s.Houses
}

// BankState es el inventario de edificios de la banca.
type BankState struct {
	Houses int
	Hotels int
}

// AuctionState es una subasta en curso.
type AuctionState struct {
	SpaceIndex   int
	HighBid      int
	Leader       string // vacío mientras no haya pujas
	Bidders      []string
	Cursor       int
	Initiator    string
	TurnOwner    string
	RolledDouble bool
}

// TradeBundle es un lado de un intercambio.
type TradeBundle struct {
	Cash              int      `json:"cash"`
	Properties        []string `json:"properties"`
	GetOutOfJailCards int      `json:"get_out_of_jail_cards"`
}

// TradeExchange registra una propuesta dentro del hilo de negociación.
type TradeExchange struct {
	Actor   string      `json:"actor_player_id"`
	Offer   TradeBundle `json:"offer"`
	Request TradeBundle `json:"request"`
}

// TradeThread es una negociación activa entre dos jugadores.
// Offer/Request se expresan siempre desde el punto de vista del proponente
// actual; Responder es quien debe contestar.
type TradeThread struct {
	Initiator     string
	Counterparty  string
	Proposer      string
	Responder     string
	MaxExchanges  int
	ExchangeIndex int
	History       []TradeExchange
	Offer         TradeBundle
	Request       TradeBundle
	TurnOwner     string
	RolledDouble  bool
}

// PaymentDue es una deuda pendiente en la cola de pagos.
type PaymentDue struct {
	Amount     int
	Creditor   string // vacío = banca
	Reason     string
	SpaceIndex int // -1 cuando no aplica
}

// PendingPayment es la deuda activa que bloquea el turno.
type PendingPayment struct {
	PaymentDue
	Queue []PaymentDue // pagos restantes de cartas multi-acreedor
}

// GameState es el estado completo de una partida. Solo el engine lo muta.
type GameState struct {
	Players   []*PlayerState
	Spaces    [BoardSize]SpaceState
	Bank      BankState
	ActiveIdx int
	TurnIndex int
	Auction   *AuctionState
	Trade     *TradeThread
	Pending   *PendingPayment
}

// NewGameState crea el estado inicial para los jugadores dados.
func NewGameState(players []*PlayerState) *GameState {
	return &GameState{
		Players: players,
		Bank:    BankState{Houses: BankHouses, Hotels: BankHotels},
	}
}

// ActivePlayer devuelve el jugador en turno.
func (g *GameState) ActivePlayer() *PlayerState {
	return g.Players[g.ActiveIdx]
}

// PlayerByID busca un jugador por id.
func (g *GameState) PlayerByID(id string) *PlayerState {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// NonBankrupt devuelve los jugadores vivos en orden de asiento.
func (g *GameState) NonBankrupt() []*PlayerState {
	out := make([]*PlayerState, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.Bankrupt {
			out = append(out, p)
		}
	}
	return out
}

// OwnedSpaces devuelve los índices de casillas del jugador, en orden de tablero.
func (g *GameState) OwnedSpaces(playerID string) []int {
	var out []int
	for i := range g.Spaces {
		if g.Spaces[i].Owner == playerID {
			out = append(out, i)
		}
	}
	return out
}

// GroupCount cuenta cuántas casillas del grupo posee el jugador.
func (g *GameState) GroupCount(playerID string, group ColorGroup) int {
	n := 0
	for _, idx := range GroupSpaces(group) {
		if g.Spaces[idx].Owner == playerID {
			n++
		}
	}
	return n
}

// HasMonopoly indica si el jugador posee el grupo completo sin hipotecas.
func (g *GameState) HasMonopoly(playerID string, group ColorGroup) bool {
	spaces := GroupSpaces(group)
	if len(spaces) == 0 {
		return false
	}
	for _, idx := range spaces {
		s := g.Spaces[idx]
		if s.Owner != playerID || s.Mortgaged {
			return false
		}
	}
	return true
}
