package services

import (
	"context"

	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

// Coordinator drives one ticket through the routing pipeline: explicit
// rules first, then eligibility resolution and load balancing. An explicit
// rule is authoritative; its assignee is returned without any eligibility
// check.
type Coordinator struct {
	engine    *RuleEngine
	resolver  *EligibilityResolver
	sites     *SiteResolver
	contracts competencyports.ContractQuery
	load      ports.LoadQuery
}

func NewCoordinator(
	engine *RuleEngine,
	resolver *EligibilityResolver,
	sites *SiteResolver,
	contracts competencyports.ContractQuery,
	load ports.LoadQuery,
) *Coordinator {
	return &Coordinator{engine: engine, resolver: resolver, sites: sites, contracts: contracts, load: load}
}

func (c *Coordinator) Route(ctx context.Context, ticket types.TicketContext) (types.RoutingOutcome, error) {
	if ticket.CategoryID == "" {
		return types.RoutingOutcome{}, httperr.NewBadRequest("category_id is required")
	}
	if !ticket.TimeWindow.QueryWindow() {
		return types.RoutingOutcome{}, httperr.NewBadRequest("time_window must be business_hours or after_hours")
	}

	contractVersionID, err := c.resolveContractVersion(ctx, ticket)
	if err != nil {
		return types.RoutingOutcome{}, err
	}
	if contractVersionID == "" {
		return types.RoutingOutcome{Status: types.OutcomeNoRuleAndNoEligibility}, nil
	}

	rule, err := c.engine.Evaluate(ctx, contractVersionID, ticket)
	if err != nil {
		return types.RoutingOutcome{}, err
	}
	if rule != nil {
		return types.RoutingOutcome{
			Status:       types.OutcomeAssigned,
			AssigneeType: rule.Action.AssigneeType,
			AssigneeID:   rule.Action.AssigneeID,
			RuleID:       rule.ID,
		}, nil
	}

	candidates, err := c.resolver.EligibleTeams(ctx, EligibilityQuery{
		ContractVersionID: contractVersionID,
		CategoryID:        ticket.CategoryID,
		BuildingID:        ticket.BuildingID,
		Window:            ticket.TimeWindow,
		PreferLevel:       PreferPrimary,
	})
	if err != nil {
		return types.RoutingOutcome{}, err
	}
	if len(candidates) == 0 {
		return types.RoutingOutcome{Status: types.OutcomeNoEligibleTeam}, nil
	}

	openLoad := make(map[string]int, len(candidates))
	for _, candidate := range candidates {
		load, err := c.load.CurrentOpenLoad(ctx, candidate.TeamID)
		if err != nil {
			return types.RoutingOutcome{}, err
		}
		openLoad[candidate.TeamID] = load
	}

	best := ChooseBestTeam(candidates, openLoad)
	if best == "" {
		return types.RoutingOutcome{Status: types.OutcomeNoEligibleTeam}, nil
	}
	return types.RoutingOutcome{
		Status:       types.OutcomeAssigned,
		AssigneeType: types.AssigneeTeam,
		AssigneeID:   best,
	}, nil
}

// resolveContractVersion returns the ticket's contract version, deriving it
// from the active version of the resolved site when the ticket does not
// carry one. "" means no version could be derived.
func (c *Coordinator) resolveContractVersion(ctx context.Context, ticket types.TicketContext) (string, error) {
	if ticket.ContractVersionID != "" {
		return ticket.ContractVersionID, nil
	}
	siteID, err := c.sites.Resolve(ctx, ticket)
	if err != nil {
		return "", err
	}
	if siteID == "" {
		return "", nil
	}
	version, ok, err := c.contracts.ActiveVersionForSite(ctx, siteID)
	if err != nil || !ok {
		return "", err
	}
	return version.ID, nil
}
