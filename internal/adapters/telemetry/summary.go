package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
)

// BuildSummary reconstruye el resumen de una partida desde los logs
// persistidos en su directorio. No consulta el engine: todo sale de
// events.jsonl y decisions.jsonl.
func BuildSummary(dir string, lineup []players.Player) (domain.RunSummary, error) {
	events, err := readEvents(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("telemetry.BuildSummary: %w", err)
	}
	decisions, err := readDecisions(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("telemetry.BuildSummary: %w", err)
	}

	summary := domain.RunSummary{SchemaVersion: domain.SchemaVersion}

	cash := map[string]int{}
	bankrupt := map[string]bool{}
	owners := map[int]string{}
	turns := map[int]bool{}
	// Última operación que puede originar un PROPERTY_TRANSFERRED; distingue
	// los traspasos por trade de los de quiebra.
	transferVia := ""

	for _, ev := range events {
		switch ev.Type {
		case domain.EventGameStarted:
			summary.RunID = ev.RunID
			summary.Seed = int64(payloadInt(ev, "seed"))
			if ids, ok := ev.Payload["players"].([]any); ok {
				for _, id := range ids {
					if s, ok := id.(string); ok {
						cash[s] = domain.InitialCash
					}
				}
			}

		case domain.EventDecisionRequested:
			// Un turno cuenta como jugado cuando llega a pedir una decisión.
			turns[ev.TurnIndex] = true

		case domain.EventCashChanged:
			cash[payloadString(ev, "player_id")] += payloadInt(ev, "delta")

		case domain.EventPropertyPurchased:
			idx := payloadInt(ev, "space_index")
			playerID := payloadString(ev, "player_id")
			owners[idx] = playerID
			via := "BUY"
			if payloadString(ev, "via") == "auction" {
				via = "AUCTION"
			}
			price := payloadInt(ev, "price")
			summary.Acquisitions = append(summary.Acquisitions, domain.Acquisition{
				Seq:      ev.Seq,
				PlayerID: playerID,
				SpaceKey: domain.SpaceKeyAt(idx),
				Via:      via,
				Price:    &price,
			})

		case domain.EventTradeAccepted:
			transferVia = "TRADE"

		case domain.EventBankruptcyDeclared:
			playerID := payloadString(ev, "player_id")
			bankrupt[playerID] = true
			transferVia = "BANKRUPTCY"
			if payloadString(ev, "creditor_player_id") == "" {
				// Quiebra contra la banca: las propiedades vuelven al mercado.
				for idx, owner := range owners {
					if owner == playerID {
						delete(owners, idx)
					}
				}
			}

		case domain.EventPropertyTransferred:
			idx := payloadInt(ev, "space_index")
			to := payloadString(ev, "to_player_id")
			owners[idx] = to
			if transferVia == "TRADE" {
				summary.Acquisitions = append(summary.Acquisitions, domain.Acquisition{
					Seq:      ev.Seq,
					PlayerID: to,
					SpaceKey: domain.SpaceKeyAt(idx),
					Via:      "TRADE",
				})
			}

		case domain.EventGameEnded:
			summary.WinnerPlayerID = payloadString(ev, "winner_player_id")
			summary.EndReason = payloadString(ev, "reason")
		}
	}
	summary.TurnsPlayed = len(turns)

	stats := decisionStats(decisions)
	summary.TotalDecisions = stats.total
	summary.TotalFallbacks = stats.fallbacks
	summary.MedianLatencyMs = median(stats.latencies)

	for _, p := range lineup {
		ps := domain.PlayerSummary{
			PlayerID:  p.ID,
			Name:      p.Name,
			Model:     p.Model,
			FinalCash: cash[p.ID],
			Bankrupt:  bankrupt[p.ID],
		}
		for idx, owner := range owners {
			if owner == p.ID {
				ps.Properties = append(ps.Properties, domain.SpaceKeyAt(idx))
			}
		}
		sort.Strings(ps.Properties)
		if s, ok := stats.perPlayer[p.ID]; ok {
			ps.Decisions = s.decisions
			ps.Invalid = s.invalid
			ps.Fallbacks = s.fallbacks
			if s.decisions > 0 {
				ps.AvgLatencyMs = s.latencySum / int64(s.decisions)
			}
			ps.TokensPrompt = s.tokensPrompt
			ps.TokensOutput = s.tokensCompletion
		}
		summary.Players = append(summary.Players, ps)
	}

	sort.Slice(summary.Acquisitions, func(i, j int) bool {
		return summary.Acquisitions[i].Seq < summary.Acquisitions[j].Seq
	})
	return summary, nil
}

type playerStats struct {
	decisions        int
	invalid          int
	fallbacks        int
	latencySum       int64
	tokensPrompt     int
	tokensCompletion int
}

type runStats struct {
	total     int
	fallbacks int
	latencies []int64
	perPlayer map[string]*playerStats
}

func decisionStats(entries []domain.DecisionLogEntry) runStats {
	stats := runStats{perPlayer: map[string]*playerStats{}}
	for _, e := range entries {
		if e.Kind != domain.DecisionResolved {
			continue
		}
		s := stats.perPlayer[e.PlayerID]
		if s == nil {
			s = &playerStats{}
			stats.perPlayer[e.PlayerID] = s
		}
		stats.total++
		s.decisions++
		// Cada intento por encima del primero fue una respuesta inválida.
		if e.Attempts > 1 {
			s.invalid += e.Attempts - 1
		}
		if e.FallbackUsed {
			stats.fallbacks++
			s.fallbacks++
		}
		s.latencySum += e.LatencyMs
		s.tokensPrompt += e.TokensPrompt
		s.tokensCompletion += e.TokensCompletion
		stats.latencies = append(stats.latencies, e.LatencyMs)
	}
	return stats
}

func median(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// readEvents carga events.jsonl completo.
func readEvents(path string) ([]domain.Event, error) {
	var events []domain.Event
	err := readLines(path, func(line []byte) error {
		var ev domain.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	return events, err
}

// readDecisions carga decisions.jsonl completo.
func readDecisions(path string) ([]domain.DecisionLogEntry, error) {
	var entries []domain.DecisionLogEntry
	err := readLines(path, func(line []byte) error {
		var e domain.DecisionLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

func readLines(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return sc.Err()
}

func payloadString(ev domain.Event, key string) string {
	if v, ok := ev.Payload[key].(string); ok {
		return v
	}
	return ""
}

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
