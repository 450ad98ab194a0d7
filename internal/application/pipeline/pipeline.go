// Package pipeline arbitra las decisiones del engine contra un modelo de
// lenguaje: arma el prompt, invoca la herramienta, valida la respuesta y
// garantiza una acción legal mediante reintento y fallback.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/players"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

// Razones de fallback registradas en telemetría.
const (
	FallbackInvalidToolCall    = "invalid_tool_call"
	FallbackInvalidAction      = "invalid_action"
	FallbackNoAPIKey           = "no_api_key"
	FallbackNetworkError       = "openrouter_network_error"
	FallbackAfterPause         = "invalid_action_after_pause"
	fallbackHTTPReasonTemplate = "openrouter_%s"
)

// Pipeline implementa ports.DecisionPolicy con una llamada al modelo por
// intento, un reintento ante errores de validación y fallback determinista.
type Pipeline struct {
	client   ports.ModelClient
	recorder ports.Recorder
	barrier  ports.Barrier
	memory   *Memory
	players  map[string]players.Player
	log      *slog.Logger
	now      func() time.Time
}

// New construye el pipeline para la alineación dada. recorder y barrier
// pueden ser nil (sin artefactos, sin pausa).
func New(client ports.ModelClient, recorder ports.Recorder, barrier ports.Barrier, lineup []players.Player, log *slog.Logger) *Pipeline {
	byID := make(map[string]players.Player, len(lineup))
	for _, p := range lineup {
		byID[p.ID] = p
	}
	return &Pipeline{
		client:   client,
		recorder: recorder,
		barrier:  barrier,
		memory:   NewMemory(),
		players:  byID,
		log:      log,
		now:      time.Now,
	}
}

// Observe incorpora eventos del engine a la memoria de los jugadores.
func (p *Pipeline) Observe(events []domain.Event) {
	p.memory.Observe(events)
}

// Decide arbitra la decisión. El error sólo es no-nil ante cancelación del
// contexto; cualquier fallo del modelo termina en fallback.
func (p *Pipeline) Decide(ctx context.Context, d *domain.DecisionPoint) (domain.DecisionOutcome, error) {
	player := p.players[d.PlayerID]
	outcome := domain.DecisionOutcome{Model: player.Model}

	p.appendDecision(domain.DecisionLogEntry{
		Kind:          domain.DecisionStarted,
		SchemaVersion: domain.SchemaVersion,
		RunID:         d.RunID,
		DecisionID:    d.DecisionID,
		TurnIndex:     d.TurnIndex,
		PlayerID:      d.PlayerID,
		DecisionType:  string(d.Type),
		Model:         player.Model,
		Timestamp:     p.now().UnixMilli(),
	})

	start := p.now()
	var action domain.Action
	var prevErrs []string
	resolved := false

	for attempt := 1; attempt <= 2 && !resolved; attempt++ {
		outcome.Attempts = attempt

		system := SystemPrompt(player.Name, player.DisplayModel())
		payload := BuildUserPayload(d, p.memory.View(d.PlayerID), player.ReasoningEffort)
		userJSON, err := domain.CanonicalJSON(payload)
		if err != nil {
			return outcome, fmt.Errorf("pipeline.Decide: encode payload: %w", err)
		}
		user := string(userJSON)
		if attempt > 1 {
			user += "\n\n" + RetryNotes(prevErrs)
		}
		tools := BuildTools(d)

		req := domain.ModelRequest{
			Model:      player.Model,
			Messages:   []domain.ChatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
			Tools:      tools,
			ToolChoice: "required",
		}
		if player.ReasoningEffort != "" {
			req.Reasoning = &domain.ReasoningParams{Effort: player.ReasoningEffort}
		}

		p.writeArtifact(d, attempt, "system.txt", []byte(system))
		p.writeArtifact(d, attempt, "user.json", []byte(user))
		p.writeJSONArtifact(d, attempt, "tools.json", tools)

		result, err := p.client.Complete(ctx, req)
		if err != nil {
			return outcome, fmt.Errorf("pipeline.Decide: %w", err)
		}
		if result.Usage != nil {
			outcome.TokensPrompt += result.Usage.PromptTokens
			outcome.TokensCompletion += result.Usage.CompletionTokens
		}
		p.writeResponseArtifact(d, attempt, result)

		var attemptErrs []string
		switch {
		case result.ErrorType == domain.ModelNoAPIKey:
			action, resolved = p.fallback(d, &outcome, FallbackNoAPIKey)

		case result.ErrorType == domain.ModelNetworkError:
			action, resolved = p.fallback(d, &outcome, FallbackNetworkError)

		case result.ErrorType == domain.ModelHTTP429, result.ErrorType == domain.ModelHTTP5xx, result.ErrorType == domain.ModelHTTP4xx:
			action, resolved = p.fallback(d, &outcome, fmt.Sprintf(fallbackHTTPReasonTemplate, result.ErrorType))

		case result.ErrorType == domain.ModelInvalidJSON, result.ToolCall == nil:
			action, resolved = p.fallback(d, &outcome, FallbackInvalidToolCall)

		default:
			parsed, errs := ParseToolCall(d, result.ToolCall)
			attemptErrs = errs
			switch {
			case len(errs) == 0:
				action = parsed
				resolved = true
			case attempt == 1:
				prevErrs = errs
				p.log.Warn("tool call rejected, retrying",
					"decision_id", d.DecisionID, "player_id", d.PlayerID, "errors", errs)
			default:
				action, resolved = p.fallback(d, &outcome, FallbackInvalidAction)
			}
		}

		p.writeParsedArtifact(d, attempt, result, attemptErrs, action, &outcome)
	}
	outcome.RetryUsed = outcome.Attempts > 1

	// Barrera de pausa: el resultado no se entrega mientras la partida esté
	// pausada.
	if p.barrier != nil {
		if err := p.barrier.Wait(ctx); err != nil {
			return outcome, fmt.Errorf("pipeline.Decide: %w", err)
		}
	}

	// Revalidación tras la pausa.
	if action.DecisionID != d.DecisionID || !legalForDecision(d, action.Name) {
		action, _ = p.fallback(d, &outcome, FallbackAfterPause)
	}

	outcome.Action = action
	outcome.LatencyMs = p.now().Sub(start).Milliseconds()
	outcome.Meta = domain.DecisionMeta{Valid: !outcome.FallbackUsed}
	if outcome.FallbackUsed {
		outcome.Meta.Error = "fallback: " + outcome.FallbackReason
	}
	return outcome, nil
}

func legalForDecision(d *domain.DecisionPoint, name string) bool {
	return d.IsLegal(name) || (name == domain.ActionNoop && len(d.LegalActions) == 0)
}

// fallback marca el resultado y devuelve la acción de respaldo.
func (p *Pipeline) fallback(d *domain.DecisionPoint, outcome *domain.DecisionOutcome, reason string) (domain.Action, bool) {
	outcome.FallbackUsed = true
	outcome.FallbackReason = reason
	p.log.Warn("decision fell back",
		"decision_id", d.DecisionID, "player_id", d.PlayerID, "reason", reason)
	return Fallback(d), true
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SafeID normaliza un decision id para usarlo en nombres de fichero.
func SafeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "")
}

// artifactName construye el nombre del artefacto de un intento.
func artifactName(d *domain.DecisionPoint, attempt int, kind string) string {
	suffix := ""
	if attempt > 1 {
		suffix = fmt.Sprintf("_retry%d", attempt-1)
	}
	return fmt.Sprintf("decision_%s%s_%s", SafeID(d.DecisionID), suffix, kind)
}

func (p *Pipeline) writeArtifact(d *domain.DecisionPoint, attempt int, kind string, data []byte) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.WriteArtifact(artifactName(d, attempt, kind), data); err != nil {
		p.log.Error("write artifact failed", "name", artifactName(d, attempt, kind), "error", err)
	}
}

func (p *Pipeline) writeJSONArtifact(d *domain.DecisionPoint, attempt int, kind string, v any) {
	data, err := domain.CanonicalJSON(v)
	if err != nil {
		p.log.Error("encode artifact failed", "kind", kind, "error", err)
		return
	}
	p.writeArtifact(d, attempt, kind, data)
}

// writeResponseArtifact persiste la respuesta cruda, o una sintética cuando
// no hubo cuerpo utilizable.
func (p *Pipeline) writeResponseArtifact(d *domain.DecisionPoint, attempt int, result domain.ModelResult) {
	if result.Raw != nil {
		p.writeArtifact(d, attempt, "response.json", result.Raw)
		return
	}
	p.writeJSONArtifact(d, attempt, "response.json", map[string]any{
		"ok":         false,
		"error_type": result.ErrorType,
		"status":     result.StatusCode,
		"request_id": result.RequestID,
		"error":      result.Err,
	})
}

// writeParsedArtifact resume el intento: tool call, errores y desenlace.
func (p *Pipeline) writeParsedArtifact(d *domain.DecisionPoint, attempt int, result domain.ModelResult, errs []string, action domain.Action, outcome *domain.DecisionOutcome) {
	summary := map[string]any{
		"attempt":           attempt,
		"error_type":        result.ErrorType,
		"status":            result.StatusCode,
		"request_id":        result.RequestID,
		"validation_errors": errs,
		"action":            action,
		"fallback_used":     outcome.FallbackUsed,
		"fallback_reason":   outcome.FallbackReason,
	}
	if result.ToolCall != nil {
		summary["tool_call"] = map[string]any{
			"name":      result.ToolCall.Name,
			"arguments": json.RawMessage(rawOrEmpty(result.ToolCall.Arguments)),
		}
	}
	if result.Usage != nil {
		summary["usage"] = result.Usage
	}
	p.writeJSONArtifact(d, attempt, "parsed.json", summary)
}

func rawOrEmpty(args string) string {
	if args == "" {
		return "{}"
	}
	return args
}

func (p *Pipeline) appendDecision(entry domain.DecisionLogEntry) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.AppendDecision(entry); err != nil {
		p.log.Error("append decision log failed", "decision_id", entry.DecisionID, "error", err)
	}
}
