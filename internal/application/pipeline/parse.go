package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// allowedArgs enumera las claves de args aceptadas por cada acción, además de
// public_message y private_thought que siempre se aceptan.
var allowedArgs = map[string][]string{
	domain.ActionBidAuction:         {"bid_amount"},
	domain.ActionProposeTrade:       {"to_player_id", "offer", "request"},
	domain.ActionCounterTrade:       {"offer", "request"},
	domain.ActionMortgageProperty:   {"space_key"},
	domain.ActionUnmortgageProperty: {"space_key"},
	domain.ActionBuildHousesOrHotel: {"build_plan"},
	domain.ActionSellHousesOrHotel:  {"sell_plan"},
	domain.ActionNoop:               {"reason"},
}

// requiredArgs enumera las claves obligatorias por acción.
var requiredArgs = map[string][]string{
	domain.ActionBidAuction:         {"bid_amount"},
	domain.ActionCounterTrade:       {"offer", "request"},
	domain.ActionMortgageProperty:   {"space_key"},
	domain.ActionUnmortgageProperty: {"space_key"},
	domain.ActionBuildHousesOrHotel: {"build_plan"},
	domain.ActionSellHousesOrHotel:  {"sell_plan"},
}

// ParseToolCall convierte la tool call del modelo en una acción del contrato,
// validando el schema y la legalidad. Devuelve la lista de errores de
// validación; vacía significa acción aceptada.
func ParseToolCall(d *domain.DecisionPoint, tc *domain.ToolCall) (domain.Action, []string) {
	action := domain.Action{
		SchemaVersion: domain.SchemaVersion,
		DecisionID:    d.DecisionID,
	}
	if tc == nil {
		return action, []string{"response contained no tool call"}
	}
	if !d.IsLegal(tc.Name) {
		return action, []string{fmt.Sprintf("action %q is not among legal actions %v", tc.Name, d.LegalNames())}
	}
	action.Name = tc.Name

	raw := map[string]json.RawMessage{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &raw); err != nil {
			return action, []string{fmt.Sprintf("arguments are not a JSON object: %v", err)}
		}
	}

	var errs []string

	// Mensajería opcional: hermanos de los args en el payload de la tool.
	if msg, ok := raw["public_message"]; ok {
		if err := json.Unmarshal(msg, &action.PublicMessage); err != nil {
			errs = append(errs, "public_message must be a string")
		}
		delete(raw, "public_message")
	}
	if thought, ok := raw["private_thought"]; ok {
		if err := json.Unmarshal(thought, &action.PrivateThought); err != nil {
			errs = append(errs, "private_thought must be a string")
		}
		delete(raw, "private_thought")
	}

	allowed := map[string]bool{}
	for _, k := range allowedArgs[tc.Name] {
		allowed[k] = true
	}
	for k := range raw {
		if !allowed[k] {
			errs = append(errs, fmt.Sprintf("unexpected argument %q for %s", k, tc.Name))
		}
	}
	for _, k := range requiredArgs[tc.Name] {
		if _, ok := raw[k]; !ok {
			errs = append(errs, fmt.Sprintf("missing required argument %q for %s", k, tc.Name))
		}
	}
	if len(errs) > 0 {
		return action, errs
	}

	if err := decodeArgs(raw, &action.Args); err != nil {
		return action, []string{err.Error()}
	}

	if msgs := validateParsedArgs(d, action); len(msgs) > 0 {
		return action, msgs
	}
	return action, nil
}

// decodeArgs vuelca los argumentos crudos sobre la estructura tipada.
func decodeArgs(raw map[string]json.RawMessage, args *domain.ActionArgs) error {
	merged, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode arguments: %v", err)
	}
	if err := json.Unmarshal(merged, args); err != nil {
		return fmt.Errorf("arguments do not match the schema: %v", err)
	}
	return nil
}

// validateParsedArgs aplica las comprobaciones de forma que no dependen del
// estado del juego; la legalidad profunda la valida el engine.
func validateParsedArgs(d *domain.DecisionPoint, action domain.Action) []string {
	var errs []string
	switch action.Name {
	case domain.ActionBidAuction:
		if action.Args.BidAmount == nil {
			errs = append(errs, "bid_amount must be an integer")
		} else if d.Auction != nil && *action.Args.BidAmount < d.Auction.MinNextBid {
			errs = append(errs, fmt.Sprintf("bid_amount %d is below the minimum %d", *action.Args.BidAmount, d.Auction.MinNextBid))
		}

	case domain.ActionProposeTrade:
		if d.Type == domain.DecisionTradePropose {
			if action.Args.ToPlayerID == "" {
				errs = append(errs, "to_player_id is required")
			}
			if action.Args.Offer == nil || action.Args.Request == nil {
				errs = append(errs, "offer and request bundles are required")
			}
		}

	case domain.ActionCounterTrade:
		if action.Args.Offer == nil || action.Args.Request == nil {
			errs = append(errs, "offer and request bundles are required")
		}

	case domain.ActionMortgageProperty, domain.ActionUnmortgageProperty:
		if _, ok := domain.SpaceIndexByKey(action.Args.SpaceKey); !ok {
			errs = append(errs, fmt.Sprintf("unknown space_key %q", action.Args.SpaceKey))
		}

	case domain.ActionBuildHousesOrHotel:
		errs = append(errs, validatePlan(action.Args.BuildPlan, "build_plan")...)

	case domain.ActionSellHousesOrHotel:
		errs = append(errs, validatePlan(action.Args.SellPlan, "sell_plan")...)
	}
	return errs
}

func validatePlan(plan []domain.BuildPlanItem, field string) []string {
	if len(plan) == 0 {
		return []string{field + " must not be empty"}
	}
	var errs []string
	for i, item := range plan {
		if _, ok := domain.SpaceIndexByKey(item.SpaceKey); !ok {
			errs = append(errs, fmt.Sprintf("%s[%d]: unknown space_key %q", field, i, item.SpaceKey))
		}
		if item.Kind != domain.BuildKindHouse && item.Kind != domain.BuildKindHotel {
			errs = append(errs, fmt.Sprintf("%s[%d]: kind must be HOUSE or HOTEL", field, i))
		}
		if item.Count < 1 {
			errs = append(errs, fmt.Sprintf("%s[%d]: count must be >= 1", field, i))
		}
	}
	return errs
}
