// Package players carga y valida la alineación de jugadores de una partida.
package players

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RequiredCount es el número exacto de jugadores de una partida.
const RequiredCount = 4

// Player es la configuración de un asiento: identidad y modelo que lo juega.
type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Model           string `json:"model"`
	ReasoningEffort string `json:"reasoning_effort,omitempty"` // low | medium | high
}

// DisplayModel devuelve el nombre corto del modelo: la parte tras la última
// barra.
func (p Player) DisplayModel() string {
	if i := strings.LastIndex(p.Model, "/"); i >= 0 {
		return p.Model[i+1:]
	}
	return p.Model
}

// Load lee players.json y valida la alineación. defaultModel rellena los
// asientos sin modelo explícito.
func Load(path, defaultModel string) ([]Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("players.Load: read %q: %w", path, err)
	}
	var list []Player
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("players.Load: parse %q: %w", path, err)
	}
	if err := Validate(list, defaultModel); err != nil {
		return nil, fmt.Errorf("players.Load: %w", err)
	}
	return list, nil
}

// Default devuelve la alineación por defecto: cuatro asientos con el mismo
// modelo.
func Default(defaultModel string) []Player {
	return []Player{
		{ID: "p1", Name: "Hazel", Model: defaultModel},
		{ID: "p2", Name: "Iris", Model: defaultModel},
		{ID: "p3", Name: "Juno", Model: defaultModel},
		{ID: "p4", Name: "Kai", Model: defaultModel},
	}
}

// Validate comprueba la alineación in situ, rellenando los modelos vacíos.
// Los errores nombran al jugador que los provoca.
func Validate(list []Player, defaultModel string) error {
	if len(list) != RequiredCount {
		return fmt.Errorf("players.Validate: expected %d players, got %d", RequiredCount, len(list))
	}
	seen := map[string]bool{}
	for i := range list {
		p := &list[i]
		if p.ID == "" {
			return fmt.Errorf("players.Validate: player %d has empty id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("players.Validate: duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Name == "" {
			return fmt.Errorf("players.Validate: player %q has empty name", p.ID)
		}
		if p.Model == "" {
			p.Model = defaultModel
		}
		if p.Model == "" {
			return fmt.Errorf("players.Validate: player %q has no model and no default is set", p.ID)
		}
		switch p.ReasoningEffort {
		case "", "low", "medium", "high":
		default:
			return fmt.Errorf("players.Validate: player %q has invalid reasoning_effort %q", p.ID, p.ReasoningEffort)
		}
	}
	return nil
}

// Canonical serializa la alineación en forma estable para derivar run ids.
func Canonical(list []Player) string {
	parts := make([]string, 0, len(list))
	for _, p := range list {
		parts = append(parts, fmt.Sprintf("%s|%s|%s|%s", p.ID, p.Name, p.Model, p.ReasoningEffort))
	}
	return strings.Join(parts, ";")
}
