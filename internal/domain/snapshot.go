package domain

// PlayerSnapshot es la vista pública de un jugador.
type PlayerSnapshot struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Cash              int    `json:"cash"`
	Position          int    `json:"position"`
	InJail            bool   `json:"in_jail"`
	JailTurns         int    `json:"jail_turns"`
	Bankrupt          bool   `json:"bankrupt"`
	GetOutOfJailCards int    `json:"get_out_of_jail_cards"`
}

// SpaceSnapshot es la vista pública de una casilla.
type SpaceSnapshot struct {
	Index         int    `json:"index"`
	OwnerPlayerID string `json:"owner_player_id,omitempty"`
	Mortgaged     bool   `json:"mortgaged"`
	Houses        int    `json:"houses"`
	Hotel         bool   `json:"hotel"`
}

// BankSnapshot es el inventario visible de la banca.
type BankSnapshot struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

// AuctionSnapshot es la vista pública de la subasta activa.
type AuctionSnapshot struct {
	SpaceIndex    int      `json:"space_index"`
	SpaceKey      string   `json:"space_key"`
	HighBid       int      `json:"high_bid"`
	LeaderID      string   `json:"leader_player_id,omitempty"`
	ActiveBidders []string `json:"active_bidders"`
	CurrentBidder string   `json:"current_bidder_id,omitempty"`
}

// TradeSnapshot es la vista pública de la negociación activa.
type TradeSnapshot struct {
	Initiator     string          `json:"initiator_player_id"`
	Counterparty  string          `json:"counterparty_player_id"`
	Responder     string          `json:"responder_player_id"`
	ExchangeIndex int             `json:"exchange_index"`
	MaxExchanges  int             `json:"max_exchanges"`
	Offer         TradeBundle     `json:"offer"`
	Request       TradeBundle     `json:"request"`
	HistoryLast2  []TradeExchange `json:"history_last_2"`
}

// Snapshot es la proyección pura del estado de la partida.
type Snapshot struct {
	SchemaVersion  string           `json:"schema_version"`
	RunID          string           `json:"run_id"`
	TurnIndex      int              `json:"turn_index"`
	ActivePlayerID string           `json:"active_player_id"`
	Players        []PlayerSnapshot `json:"players"`
	Spaces         []SpaceSnapshot  `json:"spaces"`
	Bank           BankSnapshot     `json:"bank"`
	Auction        *AuctionSnapshot `json:"auction"`
	Trade          *TradeSnapshot   `json:"trade"`
}

// BuildSnapshot proyecta el estado actual a su forma pública.
func BuildSnapshot(runID string, g *GameState) Snapshot {
	snap := Snapshot{
		SchemaVersion:  SchemaVersion,
		RunID:          runID,
		TurnIndex:      g.TurnIndex,
		ActivePlayerID: g.ActivePlayer().ID,
		Players:        make([]PlayerSnapshot, 0, len(g.Players)),
		Spaces:         make([]SpaceSnapshot, 0, BoardSize),
		Bank:           BankSnapshot{Houses: g.Bank.Houses, Hotels: g.Bank.Hotels},
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:                p.ID,
			Name:              p.Name,
			Cash:              p.Cash,
			Position:          p.Position,
			InJail:            p.InJail,
			JailTurns:         p.JailTurns,
			Bankrupt:          p.Bankrupt,
			GetOutOfJailCards: len(p.JailCards),
		})
	}
	for i, s := range g.Spaces {
		snap.Spaces = append(snap.Spaces, SpaceSnapshot{
			Index:         i,
			OwnerPlayerID: s.Owner,
			Mortgaged:     s.Mortgaged,
			Houses:        s.Houses,
			Hotel:         s.Hotel,
		})
	}
	if a := g.Auction; a != nil {
		auc := &AuctionSnapshot{
			SpaceIndex:    a.SpaceIndex,
			SpaceKey:      SpaceKeyAt(a.SpaceIndex),
			HighBid:       a.HighBid,
			LeaderID:      a.Leader,
			ActiveBidders: append([]string(nil), a.Bidders...),
		}
		if len(a.Bidders) > 0 {
			auc.CurrentBidder = a.Bidders[a.Cursor%len(a.Bidders)]
		}
		snap.Auction = auc
	}
	if t := g.Trade; t != nil {
		hist := t.History
		if len(hist) > 2 {
			hist = hist[len(hist)-2:]
		}
		snap.Trade = &TradeSnapshot{
			Initiator:     t.Initiator,
			Counterparty:  t.Counterparty,
			Responder:     t.Responder,
			ExchangeIndex: t.ExchangeIndex,
			MaxExchanges:  t.MaxExchanges,
			Offer:         t.Offer,
			Request:       t.Request,
			HistoryLast2:  append([]TradeExchange(nil), hist...),
		}
	}
	return snap
}
