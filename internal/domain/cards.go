package domain

// DeckType identifica el mazo de origen de una carta.
type DeckType string

const (
	DeckChance         DeckType = "CHANCE"
	DeckCommunityChest DeckType = "COMMUNITY_CHEST"
)

// CardEffectKind clasifica el efecto de una carta.
type CardEffectKind string

const (
	EffectAdvance         CardEffectKind = "ADVANCE"          // mover a casilla fija (cobra GO al pasar)
	EffectAdvanceRailroad CardEffectKind = "ADVANCE_RAILROAD" // mover al ferrocarril más cercano, renta doble
	EffectAdvanceUtility  CardEffectKind = "ADVANCE_UTILITY"  // mover a la utility más cercana, dados nuevos x10
	EffectGoBack          CardEffectKind = "GO_BACK"          // retroceder N casillas y resolver
	EffectGoToJail        CardEffectKind = "GO_TO_JAIL"
	EffectJailCard        CardEffectKind = "JAIL_CARD" // el jugador retiene la carta
	EffectCollect         CardEffectKind = "COLLECT"   // la banca paga al jugador
	EffectPay             CardEffectKind = "PAY"       // el jugador paga a la banca
	EffectPayEach         CardEffectKind = "PAY_EACH"  // el jugador paga a cada rival
	EffectCollectEach     CardEffectKind = "COLLECT_EACH"
	EffectRepairs         CardEffectKind = "REPAIRS" // tarifa por casa y por hotel
)

// Card es una carta de Suerte o Caja de Comunidad.
type Card struct {
	ID       string
	Text     string
	Kind     CardEffectKind
	Amount   int // importe para COLLECT/PAY/PAY_EACH/COLLECT_EACH
	Target   int // índice destino para ADVANCE
	Steps    int // casillas para GO_BACK
	HouseFee int // tarifa por casa para REPAIRS
	HotelFee int // tarifa por hotel para REPAIRS
}

// ChanceCards devuelve el mazo de Suerte en orden canónico (sin barajar).
func ChanceCards() []Card {
	return []Card{
		{ID: "ADVANCE_TO_GO", Text: "Advance to GO. Collect $200.", Kind: EffectAdvance, Target: GoIndex},
		{ID: "ADVANCE_TO_ILLINOIS", Text: "Advance to Illinois Avenue.", Kind: EffectAdvance, Target: 24},
		{ID: "ADVANCE_TO_ST_CHARLES", Text: "Advance to St. Charles Place.", Kind: EffectAdvance, Target: 11},
		{ID: "GO_TO_NEAREST_UTILITY", Text: "Advance to the nearest Utility. Pay ten times a fresh dice roll.", Kind: EffectAdvanceUtility},
		{ID: "GO_TO_NEAREST_RAILROAD", Text: "Advance to the nearest Railroad. Pay double rent.", Kind: EffectAdvanceRailroad},
		{ID: "GO_TO_NEAREST_RAILROAD_2", Text: "Advance to the nearest Railroad. Pay double rent.", Kind: EffectAdvanceRailroad},
		{ID: "BANK_DIVIDEND", Text: "Bank pays you a dividend of $50.", Kind: EffectCollect, Amount: 50},
		{ID: "GET_OUT_OF_JAIL_FREE", Text: "Get Out of Jail Free.", Kind: EffectJailCard},
		{ID: "GO_BACK_3_SPACES", Text: "Go back 3 spaces.", Kind: EffectGoBack, Steps: 3},
		{ID: "GO_TO_JAIL", Text: "Go to Jail. Do not pass GO.", Kind: EffectGoToJail},
		{ID: "GENERAL_REPAIRS", Text: "Make general repairs: $25 per house, $100 per hotel.", Kind: EffectRepairs, HouseFee: 25, HotelFee: 100},
		{ID: "SPEEDING_FINE", Text: "Speeding fine. Pay $15.", Kind: EffectPay, Amount: 15},
		{ID: "ADVANCE_TO_READING_RAILROAD", Text: "Take a trip to Reading Railroad.", Kind: EffectAdvance, Target: 5},
		{ID: "ADVANCE_TO_BOARDWALK", Text: "Advance to Boardwalk.", Kind: EffectAdvance, Target: 39},
		{ID: "CHAIRMAN_OF_THE_BOARD", Text: "You have been elected Chairman. Pay each player $50.", Kind: EffectPayEach, Amount: 50},
		{ID: "BUILDING_LOAN", Text: "Your building loan matures. Collect $150.", Kind: EffectCollect, Amount: 150},
	}
}

// CommunityChestCards devuelve el mazo de Caja de Comunidad en orden canónico.
func CommunityChestCards() []Card {
	return []Card{
		{ID: "ADVANCE_TO_GO", Text: "Advance to GO. Collect $200.", Kind: EffectAdvance, Target: GoIndex},
		{ID: "BANK_ERROR", Text: "Bank error in your favor. Collect $200.", Kind: EffectCollect, Amount: 200},
		{ID: "DOCTORS_FEE", Text: "Doctor's fee. Pay $50.", Kind: EffectPay, Amount: 50},
		{ID: "STOCK_SALE", Text: "From sale of stock you get $50.", Kind: EffectCollect, Amount: 50},
		{ID: "GET_OUT_OF_JAIL_FREE", Text: "Get Out of Jail Free.", Kind: EffectJailCard},
		{ID: "GO_TO_JAIL", Text: "Go to Jail. Do not pass GO.", Kind: EffectGoToJail},
		{ID: "HOLIDAY_FUND", Text: "Holiday fund matures. Collect $100.", Kind: EffectCollect, Amount: 100},
		{ID: "INCOME_TAX_REFUND", Text: "Income tax refund. Collect $20.", Kind: EffectCollect, Amount: 20},
		{ID: "BIRTHDAY", Text: "It is your birthday. Collect $10 from every player.", Kind: EffectCollectEach, Amount: 10},
		{ID: "LIFE_INSURANCE", Text: "Life insurance matures. Collect $100.", Kind: EffectCollect, Amount: 100},
		{ID: "HOSPITAL_FEES", Text: "Pay hospital fees of $100.", Kind: EffectPay, Amount: 100},
		{ID: "SCHOOL_FEES", Text: "Pay school fees of $50.", Kind: EffectPay, Amount: 50},
		{ID: "CONSULTANCY_FEE", Text: "Receive $25 consultancy fee.", Kind: EffectCollect, Amount: 25},
		{ID: "STREET_REPAIRS", Text: "Street repairs: $40 per house, $115 per hotel.", Kind: EffectRepairs, HouseFee: 40, HotelFee: 115},
		{ID: "BEAUTY_CONTEST", Text: "You won second prize in a beauty contest. Collect $10.", Kind: EffectCollect, Amount: 10},
		{ID: "INHERITANCE", Text: "You inherit $100.", Kind: EffectCollect, Amount: 100},
	}
}
