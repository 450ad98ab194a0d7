package domain

import "strings"

// Constantes globales del tablero y la banca.
const (
	BoardSize    = 40
	GoIndex      = 0
	JailIndex    = 10
	GoToJailIndex = 30
	GoSalary     = 200
	JailFine     = 50
	InitialCash  = 1500
	BankHouses   = 32
	BankHotels   = 12
	MaxJailTurns = 3
)

// SpaceKind clasifica cada casilla del tablero.
type SpaceKind string

const (
	KindGo             SpaceKind = "GO"
	KindProperty       SpaceKind = "PROPERTY"
	KindRailroad       SpaceKind = "RAILROAD"
	KindUtility        SpaceKind = "UTILITY"
	KindTax            SpaceKind = "TAX"
	KindChance         SpaceKind = "CHANCE"
	KindCommunityChest SpaceKind = "COMMUNITY_CHEST"
	KindJail           SpaceKind = "JAIL"
	KindFreeParking    SpaceKind = "FREE_PARKING"
	KindGoToJail       SpaceKind = "GO_TO_JAIL"
)

// ColorGroup identifica el grupo de color de una propiedad.
type ColorGroup string

const (
	GroupBrown     ColorGroup = "BROWN"
	GroupLightBlue ColorGroup = "LIGHT_BLUE"
	GroupPink      ColorGroup = "PINK"
	GroupOrange    ColorGroup = "ORANGE"
	GroupRed       ColorGroup = "RED"
	GroupYellow    ColorGroup = "YELLOW"
	GroupGreen     ColorGroup = "GREEN"
	GroupDarkBlue  ColorGroup = "DARK_BLUE"
	GroupRailroad  ColorGroup = "RAILROAD"
	GroupUtility   ColorGroup = "UTILITY"
)

// SpaceSpec es la definición estática de una casilla.
type SpaceSpec struct {
	Index int
	Kind  SpaceKind
	Name  string
	Group ColorGroup
	Price int
}

// BoardSpec define las 40 casillas del tablero estándar.
var BoardSpec = [BoardSize]SpaceSpec{
	{0, KindGo, "GO", "", 0},
	{1, KindProperty, "Mediterranean Avenue", GroupBrown, 60},
	{2, KindCommunityChest, "Community Chest", "", 0},
	{3, KindProperty, "Baltic Avenue", GroupBrown, 60},
	{4, KindTax, "Income Tax", "", 0},
	{5, KindRailroad, "Reading Railroad", GroupRailroad, 200},
	{6, KindProperty, "Oriental Avenue", GroupLightBlue, 100},
	{7, KindChance, "Chance", "", 0},
	{8, KindProperty, "Vermont Avenue", GroupLightBlue, 100},
	{9, KindProperty, "Connecticut Avenue", GroupLightBlue, 120},
	{10, KindJail, "Jail", "", 0},
	{11, KindProperty, "St. Charles Place", GroupPink, 140},
	{12, KindUtility, "Electric Company", GroupUtility, 150},
	{13, KindProperty, "States Avenue", GroupPink, 140},
	{14, KindProperty, "Virginia Avenue", GroupPink, 160},
	{15, KindRailroad, "Pennsylvania Railroad", GroupRailroad, 200},
	{16, KindProperty, "St. James Place", GroupOrange, 180},
	{17, KindCommunityChest, "Community Chest", "", 0},
	{18, KindProperty, "Tennessee Avenue", GroupOrange, 180},
	{19, KindProperty, "New York Avenue", GroupOrange, 200},
	{20, KindFreeParking, "Free Parking", "", 0},
	{21, KindProperty, "Kentucky Avenue", GroupRed, 220},
	{22, KindChance, "Chance", "", 0},
	{23, KindProperty, "Indiana Avenue", GroupRed, 220},
	{24, KindProperty, "Illinois Avenue", GroupRed, 240},
	{25, KindRailroad, "B. & O. Railroad", GroupRailroad, 200},
	{26, KindProperty, "Atlantic Avenue", GroupYellow, 260},
	{27, KindProperty, "Ventnor Avenue", GroupYellow, 260},
	{28, KindUtility, "Water Works", GroupUtility, 150},
	{29, KindProperty, "Marvin Gardens", GroupYellow, 280},
	{30, KindGoToJail, "Go To Jail", "", 0},
	{31, KindProperty, "Pacific Avenue", GroupGreen, 300},
	{32, KindProperty, "North Carolina Avenue", GroupGreen, 300},
	{33, KindCommunityChest, "Community Chest", "", 0},
	{34, KindProperty, "Pennsylvania Avenue", GroupGreen, 320},
	{35, KindRailroad, "Short Line", GroupRailroad, 200},
	{36, KindChance, "Chance", "", 0},
	{37, KindProperty, "Park Place", GroupDarkBlue, 350},
	{38, KindTax, "Luxury Tax", "", 0},
	{39, KindProperty, "Boardwalk", GroupDarkBlue, 400},
}

// propertyRents contiene el vector de rentas por casilla:
// [base, 1 casa, 2 casas, 3 casas, 4 casas, hotel].
var propertyRents = map[int][6]int{
	1:  {2, 10, 30, 90, 160, 250},
	3:  {4, 20, 60, 180, 320, 450},
	6:  {6, 30, 90, 270, 400, 550},
	8:  {6, 30, 90, 270, 400, 550},
	9:  {8, 40, 100, 300, 450, 600},
	11: {10, 50, 150, 450, 625, 750},
	13: {10, 50, 150, 450, 625, 750},
	14: {12, 60, 180, 500, 700, 900},
	16: {14, 70, 200, 550, 750, 950},
	18: {14, 70, 200, 550, 750, 950},
	19: {16, 80, 220, 600, 800, 1000},
	21: {18, 90, 250, 700, 875, 1050},
	23: {18, 90, 250, 700, 875, 1050},
	24: {20, 100, 300, 750, 925, 1100},
	26: {22, 110, 330, 800, 975, 1150},
	27: {22, 110, 330, 800, 975, 1150},
	29: {24, 120, 360, 850, 1025, 1200},
	31: {26, 130, 390, 900, 1100, 1275},
	32: {26, 130, 390, 900, 1100, 1275},
	34: {28, 150, 450, 1000, 1200, 1400},
	37: {35, 175, 500, 1100, 1300, 1500},
	39: {50, 200, 600, 1400, 1700, 2000},
}

// RailroadRents indexa por (número de ferrocarriles del dueño - 1).
var RailroadRents = [4]int{25, 50, 100, 200}

// UtilityMultipliers mapea cantidad de utilities del dueño a multiplicador.
var UtilityMultipliers = map[int]int{1: 4, 2: 10}

// TaxAmounts mapea índice de casilla de impuesto a importe fijo.
var TaxAmounts = map[int]int{4: 200, 38: 100}

// TaxReasons mapea índice de casilla de impuesto a su código de razón.
var TaxReasons = map[int]string{4: "TAX_INCOME", 38: "TAX_LUXURY"}

// houseCosts mapea grupo de color a coste por casa (hotel cuesta lo mismo).
var houseCosts = map[ColorGroup]int{
	GroupBrown:     50,
	GroupLightBlue: 50,
	GroupPink:      100,
	GroupOrange:    100,
	GroupRed:       150,
	GroupYellow:    150,
	GroupGreen:     200,
	GroupDarkBlue:  200,
}

var (
	spaceKeyIndex = map[string]int{}
	groupSpaces   = map[ColorGroup][]int{}
)

func init() {
	for _, spec := range BoardSpec {
		spaceKeyIndex[SpaceKey(spec.Name)] = spec.Index
		if spec.Group != "" {
			groupSpaces[spec.Group] = append(groupSpaces[spec.Group], spec.Index)
		}
	}
}

// SpaceKey normaliza un nombre de casilla a su identificador externo:
// mayúsculas con secuencias no alfanuméricas colapsadas a "_".
func SpaceKey(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// SpaceKeyAt devuelve el space_key de un índice del tablero.
func SpaceKeyAt(index int) string {
	return SpaceKey(BoardSpec[index].Name)
}

// SpaceIndexByKey resuelve un space_key a índice del tablero.
func SpaceIndexByKey(key string) (int, bool) {
	idx, ok := spaceKeyIndex[key]
	return idx, ok
}

// GroupSpaces devuelve los índices de las casillas de un grupo, en orden.
func GroupSpaces(group ColorGroup) []int {
	return groupSpaces[group]
}

// RentTable devuelve el vector de rentas de una propiedad.
func RentTable(index int) ([6]int, bool) {
	rents, ok := propertyRents[index]
	return rents, ok
}

// HouseCost devuelve el coste por casa del grupo. Cero si el grupo no edifica.
func HouseCost(group ColorGroup) int {
	return houseCosts[group]
}

// IsOwnable indica si la casilla puede tener dueño.
func IsOwnable(index int) bool {
	switch BoardSpec[index].Kind {
	case KindProperty, KindRailroad, KindUtility:
		return true
	}
	return false
}

// MortgageValue devuelve el valor de hipoteca (mitad del precio).
func MortgageValue(index int) int {
	return BoardSpec[index].Price / 2
}

// UnmortgageCost devuelve el coste de deshipotecar: ceil(hipoteca * 1.10).
func UnmortgageCost(index int) int {
	half := MortgageValue(index)
	return (half*110 + 99) / 100
}
