package pipeline

import "fmt"

// systemPromptTemplate es el prompt fijo del jugador autónomo. Se interpola
// el nombre del jugador y el nombre corto del modelo.
const systemPromptTemplate = `You are %s, an autonomous player in a game of Monopoly against three rivals. You are powered by the model %s.

RULES OF ENGAGEMENT
- On every turn you receive the full public game state, your private memory, and a list of legal actions with their argument schemas.
- You MUST respond with exactly one tool call choosing one of the legal actions. Freeform text responses are invalid and will be discarded.
- Arguments must match the tool schema exactly. Do not invent properties, players, or amounts.
- Properties are always referred to by their space_key (for example VIRGINIA_AVENUE, B_O_RAILROAD).

MESSAGING
- You may attach an optional "public_message" visible to all players. Use it to negotiate, bluff, or taunt.
- You may attach an optional "private_thought" visible only to you in future turns. Use it to record plans and reads on opponents.

STRATEGY GUIDANCE
- Cash is survival: never spend down to zero without a plan to collect rent.
- Monopolies win games: complete color groups and build houses evenly.
- Railroads and utilities provide steady income; mortgage them last.
- In auctions, bid up properties your rivals need, but know your limit.
- Trade when it completes a group for you, even at a premium; avoid completing groups for opponents.
- In jail late in the game, staying put can be safer than rolling into built-up streets.

Choose the single action that maximizes your chance of winning, then make the tool call.`

// SystemPrompt construye el prompt de sistema de un jugador.
func SystemPrompt(playerName, modelDisplay string) string {
	return fmt.Sprintf(systemPromptTemplate, playerName, modelDisplay)
}

// retryNotes es el bloque añadido al prompt del segundo intento.
const retryNotes = "Previous validation errors: %s\nRespond with a valid tool call only. No freeform text."

// RetryNotes formatea el bloque de reintento con los errores del intento
// anterior.
func RetryNotes(errs []string) string {
	return fmt.Sprintf(retryNotes, joinErrors(errs))
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	if out == "" {
		out = "unknown"
	}
	return out
}

// actionDescriptions es la frase canónica de cada herramienta.
var actionDescriptions = map[string]string{
	"buy_property":             "Buy the property you landed on at list price.",
	"start_auction":            "Decline the purchase and send the property to auction.",
	"bid_auction":              "Place a bid in the running auction; it must exceed the current high bid.",
	"drop_out":                 "Withdraw from the running auction.",
	"pay_jail_fine":            "Pay the $50 fine, leave jail, and roll to move.",
	"roll_for_doubles":         "Roll the dice; doubles set you free and move you, otherwise you stay in jail.",
	"use_get_out_of_jail_card": "Spend a Get Out of Jail Free card, leave jail, and roll to move.",
	"propose_trade":            "Propose a trade to another player: cash, properties, and jail cards on both sides.",
	"accept_trade":             "Accept the current trade offer as proposed.",
	"reject_trade":             "Reject the current trade offer and end the negotiation.",
	"counter_trade":            "Reply to the current offer with different terms; roles swap.",
	"mortgage_property":        "Mortgage one of your unmortgaged properties for half its price.",
	"unmortgage_property":      "Pay off a mortgage at 110% of its value.",
	"build_houses_or_hotel":    "Build houses or hotels on your monopolies following the even-building rule.",
	"sell_houses_or_hotel":     "Sell houses or hotels back to the bank for half their cost.",
	"end_turn":                 "Finish your turn with no further action.",
	"declare_bankruptcy":       "Concede: surrender all assets to your creditor and leave the game.",
	"NOOP":                     "Take no action.",
}

// DescriptionFor devuelve la descripción de una herramienta.
func DescriptionFor(action string) string {
	if d, ok := actionDescriptions[action]; ok {
		return d
	}
	return "Perform the action " + action + "."
}
