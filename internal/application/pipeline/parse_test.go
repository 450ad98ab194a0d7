package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

func TestParseToolCall_ValidWithMessaging(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn,
		noArgAction(domain.ActionEndTurn),
		mortgageAction("BALTIC_AVENUE"),
	)
	tc := &domain.ToolCall{
		Name:      domain.ActionMortgageProperty,
		Arguments: `{"space_key":"BALTIC_AVENUE","public_message":"need cash","private_thought":"rebuild later"}`,
	}

	action, errs := ParseToolCall(d, tc)
	require.Empty(t, errs)
	assert.Equal(t, domain.ActionMortgageProperty, action.Name)
	assert.Equal(t, d.DecisionID, action.DecisionID)
	assert.Equal(t, "BALTIC_AVENUE", action.Args.SpaceKey)
	assert.Equal(t, "need cash", action.PublicMessage)
	assert.Equal(t, "rebuild later", action.PrivateThought)
}

func TestParseToolCall_NilToolCall(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, noArgAction(domain.ActionEndTurn))
	_, errs := ParseToolCall(d, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no tool call")
}

func TestParseToolCall_IllegalAction(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, noArgAction(domain.ActionEndTurn))
	tc := &domain.ToolCall{Name: domain.ActionBuyProperty, Arguments: `{}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not among legal actions")
}

func TestParseToolCall_ArgumentsNotObject(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, noArgAction(domain.ActionEndTurn))
	tc := &domain.ToolCall{Name: domain.ActionEndTurn, Arguments: `"end it"`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not a JSON object")
}

func TestParseToolCall_UnexpectedArgument(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, noArgAction(domain.ActionEndTurn))
	tc := &domain.ToolCall{Name: domain.ActionEndTurn, Arguments: `{"amount":3}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unexpected argument "amount"`)
}

func TestParseToolCall_MissingRequiredArgument(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, mortgageAction("BALTIC_AVENUE"))
	tc := &domain.ToolCall{Name: domain.ActionMortgageProperty, Arguments: `{}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `missing required argument "space_key"`)
}

func TestParseToolCall_UnknownSpaceKey(t *testing.T) {
	d := decisionFixture(domain.DecisionPostTurn, mortgageAction("BALTIC_AVENUE"))
	tc := &domain.ToolCall{Name: domain.ActionMortgageProperty, Arguments: `{"space_key":"ATLANTIS_AVENUE"}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown space_key "ATLANTIS_AVENUE"`)
}

func TestParseToolCall_BidBelowMinimum(t *testing.T) {
	d := decisionFixture(domain.DecisionAuctionBid,
		domain.LegalAction{
			Action: domain.ActionBidAuction,
			ArgsSchema: domain.ArgsSchema{
				Type: "object",
				Properties: map[string]domain.SchemaProperty{
					"bid_amount": {Type: "integer"},
				},
				Required: []string{"bid_amount"},
			},
		},
		noArgAction(domain.ActionDropOut),
	)
	d.Auction = &domain.AuctionContext{SpaceIndex: 14, HighBid: 40, MinNextBid: 41, ActiveBidders: []string{"p1", "p2"}}

	tc := &domain.ToolCall{Name: domain.ActionBidAuction, Arguments: `{"bid_amount":30}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "below the minimum 41")

	tc = &domain.ToolCall{Name: domain.ActionBidAuction, Arguments: `{"bid_amount":41}`}
	action, errs := ParseToolCall(d, tc)
	require.Empty(t, errs)
	require.NotNil(t, action.Args.BidAmount)
	assert.Equal(t, 41, *action.Args.BidAmount)
}

func TestParseToolCall_BuildPlanValidation(t *testing.T) {
	buildAction := domain.LegalAction{
		Action: domain.ActionBuildHousesOrHotel,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"build_plan": {Type: "array"},
			},
			Required: []string{"build_plan"},
		},
	}
	d := decisionFixture(domain.DecisionPostTurn, buildAction)

	tc := &domain.ToolCall{Name: domain.ActionBuildHousesOrHotel, Arguments: `{"build_plan":[]}`}
	_, errs := ParseToolCall(d, tc)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "must not be empty")

	tc = &domain.ToolCall{
		Name:      domain.ActionBuildHousesOrHotel,
		Arguments: `{"build_plan":[{"space_key":"NOWHERE","kind":"CASTLE","count":0}]}`,
	}
	_, errs = ParseToolCall(d, tc)
	require.Len(t, errs, 3)

	tc = &domain.ToolCall{
		Name:      domain.ActionBuildHousesOrHotel,
		Arguments: `{"build_plan":[{"space_key":"BALTIC_AVENUE","kind":"HOUSE","count":1}]}`,
	}
	action, errs := ParseToolCall(d, tc)
	require.Empty(t, errs)
	require.Len(t, action.Args.BuildPlan, 1)
	assert.Equal(t, domain.BuildKindHouse, action.Args.BuildPlan[0].Kind)
}

func TestParseToolCall_ProposeRequiresCounterparty(t *testing.T) {
	propose := domain.LegalAction{
		Action: domain.ActionProposeTrade,
		ArgsSchema: domain.ArgsSchema{
			Type: "object",
			Properties: map[string]domain.SchemaProperty{
				"to_player_id": {Type: "string", Enum: []string{"p2", "p3", "p4"}},
				"offer":        {Type: "object"},
				"request":      {Type: "object"},
			},
			Required: []string{"to_player_id", "offer", "request"},
		},
	}
	d := decisionFixture(domain.DecisionTradePropose, propose)

	tc := &domain.ToolCall{
		Name:      domain.ActionProposeTrade,
		Arguments: `{"to_player_id":"p2","offer":{"cash":50,"properties":[]},"request":{"properties":["BALTIC_AVENUE"]}}`,
	}
	action, errs := ParseToolCall(d, tc)
	require.Empty(t, errs)
	assert.Equal(t, "p2", action.Args.ToPlayerID)
	require.NotNil(t, action.Args.Offer)
	assert.Equal(t, 50, action.Args.Offer.Cash)
	require.NotNil(t, action.Args.Request)
	assert.Equal(t, []string{"BALTIC_AVENUE"}, action.Args.Request.Properties)
}
