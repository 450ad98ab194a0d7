package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Ventanas de memoria incluidas en cada prompt.
const (
	publicWindow   = 20
	actionsWindow  = 20
	thoughtsWindow = 10
)

// Memory acumula lo que los jugadores pueden recordar entre decisiones:
// mensajes públicos, acciones notables y los pensamientos privados de cada
// jugador. Usa space_keys exclusivamente; nunca la estructura cruda del
// tablero.
type Memory struct {
	public   []string
	actions  []string
	thoughts map[string][]string
}

// MemoryView es la proyección de la memoria para un jugador concreto.
type MemoryView struct {
	PublicMessages []string `json:"public_messages"`
	NotableActions []string `json:"notable_actions"`
	YourThoughts   []string `json:"your_thoughts"`
}

// NewMemory crea una memoria vacía.
func NewMemory() *Memory {
	return &Memory{thoughts: map[string][]string{}}
}

// Observe incorpora los eventos emitidos por el engine.
func (m *Memory) Observe(events []domain.Event) {
	for _, ev := range events {
		switch ev.Type {
		case domain.EventPublicMessage:
			entry := fmt.Sprintf("%s: %s", payloadString(ev, "player_id"), payloadString(ev, "message"))
			m.public = appendBounded(m.public, entry, publicWindow)

		case domain.EventPrivateThought:
			id := payloadString(ev, "player_id")
			m.thoughts[id] = appendBounded(m.thoughts[id], payloadString(ev, "thought"), thoughtsWindow)

		case domain.EventPropertyPurchased:
			entry := fmt.Sprintf("%s bought %s for $%d",
				payloadString(ev, "player_id"),
				domain.SpaceKeyAt(payloadInt(ev, "space_index")),
				payloadInt(ev, "price"))
			m.actions = appendBounded(m.actions, entry, actionsWindow)

		case domain.EventRentPaid:
			entry := fmt.Sprintf("%s paid $%d rent to %s for %s",
				payloadString(ev, "from_player_id"),
				payloadInt(ev, "amount"),
				payloadString(ev, "to_player_id"),
				domain.SpaceKeyAt(payloadInt(ev, "space_index")))
			m.actions = appendBounded(m.actions, entry, actionsWindow)

		case domain.EventSentToJail:
			entry := fmt.Sprintf("%s was sent to jail (%s)",
				payloadString(ev, "player_id"), payloadString(ev, "reason"))
			m.actions = appendBounded(m.actions, entry, actionsWindow)

		case domain.EventCashChanged:
			if !notableCashReason(payloadString(ev, "reason")) {
				continue
			}
			delta := payloadInt(ev, "delta")
			sign := "+"
			if delta < 0 {
				sign = "-"
				delta = -delta
			}
			entry := fmt.Sprintf("%s %s$%d (%s)",
				payloadString(ev, "player_id"), sign, delta, payloadString(ev, "reason"))
			m.actions = appendBounded(m.actions, entry, actionsWindow)
		}
	}
}

// View devuelve la memoria visible para el jugador dado.
func (m *Memory) View(playerID string) MemoryView {
	return MemoryView{
		PublicMessages: copySlice(m.public),
		NotableActions: copySlice(m.actions),
		YourThoughts:   copySlice(m.thoughts[playerID]),
	}
}

// notableCashReason filtra los CASH_CHANGED que merecen memoria: salario de
// GO, impuestos y quiebras.
func notableCashReason(reason string) bool {
	switch reason {
	case domain.ReasonPassGo, domain.ReasonBankruptcy:
		return true
	}
	for _, tax := range domain.TaxReasons {
		if reason == tax {
			return true
		}
	}
	return false
}

func appendBounded(s []string, entry string, limit int) []string {
	s = append(s, entry)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func copySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}

// payloadString lee un string del payload de un evento.
func payloadString(ev domain.Event, key string) string {
	if v, ok := ev.Payload[key].(string); ok {
		return v
	}
	return ""
}

// payloadInt lee un entero del payload tolerando los tipos numéricos que
// aparecen tras pasar por JSON.
func payloadInt(ev domain.Event, key string) int {
	switch v := ev.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
