// Package notify imprime el desenlace de una partida en consola.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime el resumen final: cabecera de la partida, tabla por jugador
// y cronología de adquisiciones.
func (c *Console) Notify(_ context.Context, summary domain.RunSummary) error {
	fmt.Fprintf(c.out, "run %s — seed %d — %d turns — %s\n",
		summary.RunID, summary.Seed, summary.TurnsPlayed, summary.EndReason)
	if summary.WinnerPlayerID != "" {
		fmt.Fprintf(c.out, "winner: %s\n", playerLabel(summary, summary.WinnerPlayerID))
	}
	fmt.Fprintln(c.out)

	table := tablewriter.NewWriter(c.out)
	table.Header("Player", "Model", "Cash", "Properties", "Decisions", "Invalid", "Fallbacks", "Avg ms", "Tokens")

	for _, p := range summary.Players {
		cash := fmt.Sprintf("$%d", p.FinalCash)
		if p.Bankrupt {
			cash = "BANKRUPT"
		}
		table.Append(
			p.Name,
			p.Model,
			cash,
			fmt.Sprintf("%d", len(p.Properties)),
			fmt.Sprintf("%d", p.Decisions),
			fmt.Sprintf("%d", p.Invalid),
			fmt.Sprintf("%d", p.Fallbacks),
			fmt.Sprintf("%d", p.AvgLatencyMs),
			fmt.Sprintf("%d/%d", p.TokensPrompt, p.TokensOutput),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "\n%d decisions, %d fallbacks, median latency %d ms\n",
		summary.TotalDecisions, summary.TotalFallbacks, summary.MedianLatencyMs)

	if len(summary.Acquisitions) > 0 {
		fmt.Fprintln(c.out, "\nacquisitions:")
		for _, a := range summary.Acquisitions {
			line := fmt.Sprintf("  #%04d %s %s via %s", a.Seq, a.PlayerID, a.SpaceKey, strings.ToLower(a.Via))
			if a.Price != nil {
				line += fmt.Sprintf(" ($%d)", *a.Price)
			}
			fmt.Fprintln(c.out, line)
		}
	}
	return nil
}

// playerLabel devuelve "Nombre (id)" si el jugador está en el resumen.
func playerLabel(summary domain.RunSummary, playerID string) string {
	for _, p := range summary.Players {
		if p.PlayerID == playerID {
			return fmt.Sprintf("%s (%s)", p.Name, playerID)
		}
	}
	return playerID
}
