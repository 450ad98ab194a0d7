package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodnm/monopolyarena/internal/adapters/telemetry"
	"github.com/alejandrodnm/monopolyarena/internal/application/engine"
	"github.com/alejandrodnm/monopolyarena/internal/application/pipeline"
	"github.com/alejandrodnm/monopolyarena/internal/domain"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

// runLoop conduce la partida: avanza el engine, resuelve cada decisión con la
// política y aplica la acción exactamente una vez.
func (c *Coordinator) runLoop(ctx context.Context, run *activeRun) {
	defer close(run.done)

	_ = run.gate.Wait(ctx)
	c.handleStep(run, run.engine.AdvanceUntilDecision(1))
	decisions := 0

	for !run.engine.IsGameOver() {
		// Pausa: el loop entero se detiene aquí, no solo las llamadas al
		// modelo. StopRun reabre el gate antes de cancelar el contexto.
		_ = run.gate.Wait(ctx)

		stopping := ctx.Err() != nil
		if stopping {
			run.engine.RequestStop("")
		}

		d := run.engine.PendingDecision()
		if d == nil {
			c.handleStep(run, run.engine.AdvanceUntilDecision(1))
			continue
		}

		var outcome domain.DecisionOutcome
		if stopping {
			// Parada con decisión en vuelo: se resuelve con la política
			// determinista para poder cerrar la partida.
			outcome, _ = pipeline.ScriptedPolicy{}.Decide(context.Background(), d)
			outcome.Meta = domain.DecisionMeta{Valid: false, Error: "fallback: stopped"}
			outcome.FallbackUsed = true
			outcome.FallbackReason = "stopped"
		} else {
			var err error
			outcome, err = run.policy.Decide(ctx, d)
			if err != nil {
				if ctx.Err() != nil {
					continue // el siguiente ciclo entra en parada
				}
				c.log.Error("decision policy failed", "run_id", run.id,
					"decision_id", d.DecisionID, "error", err)
				outcome, _ = pipeline.ScriptedPolicy{}.Decide(context.Background(), d)
				outcome.Meta = domain.DecisionMeta{Valid: false, Error: "fallback: policy_error"}
				outcome.FallbackUsed = true
				outcome.FallbackReason = "policy_error"
			}
		}

		res, err := run.engine.ApplyAction(outcome.Action, outcome.Meta)
		if err != nil {
			// La acción de respaldo es legal por construcción; llegar aquí es
			// un bug del engine o de la política.
			c.log.Error("apply action rejected", "run_id", run.id,
				"decision_id", d.DecisionID, "action", outcome.Action.Name, "error", err)
			c.broadcast(run, domain.ErrorFrame("run aborted", err.Error()))
			run.engine.RequestStop("")
			continue
		}
		decisions++
		c.recordResolution(ctx, run, d, outcome, res.Events)
		c.handleStep(run, res)

		if c.cfg.StopAfterDecisions > 0 && decisions >= c.cfg.StopAfterDecisions {
			run.engine.RequestStop("")
		}
	}

	c.finish(run)
}

// handleStep persiste y difunde los eventos de un paso del engine.
func (c *Coordinator) handleStep(run *activeRun, res engine.StepResult) {
	if err := run.recorder.AppendEvents(res.Events); err != nil {
		c.log.Error("append events failed", "run_id", run.id, "error", err)
	}
	if obs, ok := run.policy.(eventObserver); ok {
		obs.Observe(res.Events)
	}

	run.subMu.Lock()
	run.lastSnap = res.Snapshot
	run.subMu.Unlock()

	snapshotDue := false
	for _, ev := range res.Events {
		c.broadcast(run, domain.EventFrame(ev))
		if c.cfg.EventDelay > 0 {
			time.Sleep(c.cfg.EventDelay)
		}
		switch ev.Type {
		case domain.EventDecisionRequested, domain.EventTurnEnded, domain.EventGameEnded:
			snapshotDue = true
		}
	}
	if snapshotDue {
		if err := run.recorder.WriteSnapshot(res.Snapshot); err != nil {
			c.log.Error("write snapshot failed", "run_id", run.id, "error", err)
		}
		c.broadcast(run, domain.SnapshotFrame(res.Snapshot))
	}
}

// recordResolution persiste la entrada resolved, la acción final y la fila
// del índice de una decisión aplicada.
func (c *Coordinator) recordResolution(ctx context.Context, run *activeRun, d *domain.DecisionPoint, outcome domain.DecisionOutcome, events []domain.Event) {
	entry := domain.DecisionLogEntry{
		Kind:             domain.DecisionResolved,
		SchemaVersion:    domain.SchemaVersion,
		RunID:            run.id,
		DecisionID:       d.DecisionID,
		TurnIndex:        d.TurnIndex,
		PlayerID:         d.PlayerID,
		DecisionType:     string(d.Type),
		Model:            outcome.Model,
		Timestamp:        c.now().UnixMilli(),
		ActionName:       outcome.Action.Name,
		Attempts:         outcome.Attempts,
		RetryUsed:        outcome.RetryUsed,
		FallbackUsed:     outcome.FallbackUsed,
		FallbackReason:   outcome.FallbackReason,
		LatencyMs:        outcome.LatencyMs,
		TokensPrompt:     outcome.TokensPrompt,
		TokensCompletion: outcome.TokensCompletion,
	}
	if len(events) > 0 {
		first, last := events[0].Seq, events[len(events)-1].Seq
		entry.FirstEventSeq = &first
		entry.LastEventSeq = &last
	}
	if err := run.recorder.AppendDecision(entry); err != nil {
		c.log.Error("append decision failed", "run_id", run.id, "decision_id", d.DecisionID, "error", err)
	}

	if err := run.recorder.AppendAction(domain.ActionRecord{
		Action: outcome.Action,
		Valid:  outcome.Meta.Valid,
		Error:  outcome.Meta.Error,
	}); err != nil {
		c.log.Error("append action failed", "run_id", run.id, "decision_id", d.DecisionID, "error", err)
	}

	if c.index != nil {
		if err := c.index.SaveDecision(ctx, domain.DecisionRow{
			RunID:          run.id,
			DecisionID:     d.DecisionID,
			TurnIndex:      d.TurnIndex,
			PlayerID:       d.PlayerID,
			DecisionType:   string(d.Type),
			RetryUsed:      outcome.RetryUsed,
			FallbackUsed:   outcome.FallbackUsed,
			FallbackReason: outcome.FallbackReason,
			LatencyMs:      outcome.LatencyMs,
		}); err != nil {
			c.log.Error("save decision row failed", "run_id", run.id, "decision_id", d.DecisionID, "error", err)
		}
	}
}

// broadcast difunde un frame a todos los suscriptores en paralelo; un envío
// fallido expulsa al suscriptor.
func (c *Coordinator) broadcast(run *activeRun, frame domain.Frame) {
	run.subMu.Lock()
	subs := make(map[string]ports.Subscriber, len(run.subs))
	for id, s := range run.subs {
		subs[id] = s
	}
	run.subMu.Unlock()
	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for id, sub := range subs {
		wg.Add(1)
		go func(id string, sub ports.Subscriber) {
			defer wg.Done()
			if err := sub.Send(frame); err != nil {
				c.log.Warn("subscriber evicted", "run_id", run.id, "subscriber_id", id, "error", err)
				run.subMu.Lock()
				delete(run.subs, id)
				run.subMu.Unlock()
				sub.Close()
			}
		}(id, sub)
	}
	wg.Wait()
}

// finish cierra los logs, reconstruye el resumen y actualiza el índice.
func (c *Coordinator) finish(run *activeRun) {
	if err := run.recorder.Close(); err != nil {
		c.log.Error("close recorder failed", "run_id", run.id, "error", err)
	}

	result := run.engine.Result()
	summary, err := telemetry.BuildSummary(run.recorder.Dir(), run.lineup)
	if err != nil {
		c.log.Error("build summary failed", "run_id", run.id, "error", err)
	} else {
		if err := run.recorder.WriteSummary(summary); err != nil {
			c.log.Error("write summary failed", "run_id", run.id, "error", err)
		}
		if c.notifier != nil {
			if err := c.notifier.Notify(context.Background(), summary); err != nil {
				c.log.Error("notify failed", "run_id", run.id, "error", err)
			}
		}
	}

	if c.index != nil {
		status := domain.RunStatusFinished
		if result.Reason == engine.EndReasonStopped {
			status = domain.RunStatusStopped
		}
		if err := c.index.SaveRun(context.Background(), domain.RunRow{
			RunID:          run.id,
			Seed:           run.seed,
			CreatedAt:      c.now().UnixMilli(),
			Status:         status,
			WinnerPlayerID: result.WinnerPlayerID,
			TurnCount:      result.TurnCount,
		}); err != nil {
			c.log.Error("save run row failed", "run_id", run.id, "error", err)
		}
	}

	run.subMu.Lock()
	for _, sub := range run.subs {
		sub.Close()
	}
	run.subs = map[string]ports.Subscriber{}
	run.subMu.Unlock()

	c.log.Info("run finished", "run_id", run.id,
		"winner", result.WinnerPlayerID, "reason", result.Reason, "turns", result.TurnCount)
}
