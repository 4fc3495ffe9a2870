package types

import (
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
)

type AssigneeType string

const (
	AssigneeTeam   AssigneeType = "team"
	AssigneeVendor AssigneeType = "vendor"
)

func (a AssigneeType) Valid() bool {
	return a == AssigneeTeam || a == AssigneeVendor
}

// RuleCondition is a pure predicate over a ticket's routing context. Empty
// fields match anything; a rule matches only when every populated field
// matches. TagExpr is a CEL expression over a string-map context.
type RuleCondition struct {
	CategoryID string                     `json:"category_id,omitempty"`
	TimeWindow competencytypes.TimeWindow `json:"time_window,omitempty"`
	AssetKind  string                     `json:"asset_kind,omitempty"`
	TagExpr    string                     `json:"tag_expr,omitempty"`
}

type RuleAction struct {
	AssigneeType AssigneeType `json:"assignee_type"`
	AssigneeID   string       `json:"assignee_id"`
}

// RoutingRule rows for a contract version are evaluated ascending by
// (priority, id); id breaks priority ties deterministically.
type RoutingRule struct {
	ID                string        `json:"id"`
	ContractVersionID string        `json:"contract_version_id"`
	Priority          int           `json:"priority"`
	Condition         RuleCondition `json:"condition"`
	Action            RuleAction    `json:"action"`
}

// TicketContext carries the routing-relevant facts of one ticket. The
// placement ids feed the site resolver in precedence order
// site > building > location > asset.
type TicketContext struct {
	ContractVersionID string                     `json:"contract_version_id,omitempty"`
	CategoryID        string                     `json:"category_id"`
	SiteID            string                     `json:"site_id,omitempty"`
	BuildingID        string                     `json:"building_id,omitempty"`
	LocationID        string                     `json:"location_id,omitempty"`
	AssetID           string                     `json:"asset_id,omitempty"`
	AssetKind         string                     `json:"asset_kind,omitempty"`
	TimeWindow        competencytypes.TimeWindow `json:"time_window"`
	Tags              []string                   `json:"tags,omitempty"`
}

type OutcomeStatus string

const (
	OutcomeAssigned               OutcomeStatus = "assigned"
	OutcomeNoEligibleTeam         OutcomeStatus = "no_eligible_team"
	OutcomeNoRuleAndNoEligibility OutcomeStatus = "no_rule_and_no_eligibility"
)

// RoutingOutcome is the tagged routing result. RuleID is set only when an
// explicit rule produced the assignment.
type RoutingOutcome struct {
	Status       OutcomeStatus `json:"status"`
	AssigneeType AssigneeType  `json:"assignee_type,omitempty"`
	AssigneeID   string        `json:"assignee_id,omitempty"`
	RuleID       string        `json:"rule_id,omitempty"`
}

// EligibleTeam is one distinct team surviving eligibility resolution,
// tagged with the level and window of its strongest surviving row.
type EligibleTeam struct {
	TeamID string                          `json:"team_id"`
	Level  competencytypes.CompetencyLevel `json:"level"`
	Window competencytypes.TimeWindow      `json:"window"`
}

type Location struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id,omitempty"`
	SiteID     string `json:"site_id,omitempty"`
}

type Asset struct {
	ID         string `json:"id"`
	Kind       string `json:"kind,omitempty"`
	LocationID string `json:"location_id,omitempty"`
	BuildingID string `json:"building_id,omitempty"`
}
