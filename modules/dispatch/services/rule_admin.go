package services

import (
	"context"

	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	scopeservices "github.com/harborworks/facilitydesk/modules/scope/services"
	"github.com/harborworks/facilitydesk/pkg/httperr"
	"github.com/harborworks/facilitydesk/pkg/uuidv7"
)

var newRuleID = uuidv7.NewString

// RuleAdminService owns routing-rule mutations. Every write is gated by
// the actor's scope over the contract version's company; list reads are
// fail-quiet and return an empty set for out-of-scope actors.
type RuleAdminService struct {
	rules     ports.RoutingRuleStore
	contracts competencyports.ContractQuery
	authority *scopeservices.ScopeAuthority
}

func NewRuleAdminService(rules ports.RoutingRuleStore, contracts competencyports.ContractQuery, authority *scopeservices.ScopeAuthority) *RuleAdminService {
	return &RuleAdminService{rules: rules, contracts: contracts, authority: authority}
}

type CreateRuleRequest struct {
	ContractVersionID string
	Priority          int
	Condition         types.RuleCondition
	Action            types.RuleAction
}

func (s *RuleAdminService) Create(ctx context.Context, actorUserID string, req CreateRuleRequest) (types.RoutingRule, error) {
	if err := validateRuleShape(req.Priority, req.Condition, req.Action); err != nil {
		return types.RoutingRule{}, err
	}
	if err := s.requireCompanyScope(ctx, actorUserID, req.ContractVersionID); err != nil {
		return types.RoutingRule{}, err
	}
	id, err := newRuleID()
	if err != nil {
		return types.RoutingRule{}, err
	}
	rule := types.RoutingRule{
		ID:                id,
		ContractVersionID: req.ContractVersionID,
		Priority:          req.Priority,
		Condition:         req.Condition,
		Action:            req.Action,
	}
	if err := s.rules.Insert(ctx, rule); err != nil {
		return types.RoutingRule{}, err
	}
	return rule, nil
}

func (s *RuleAdminService) Update(ctx context.Context, actorUserID string, rule types.RoutingRule) (types.RoutingRule, error) {
	if rule.ID == "" {
		return types.RoutingRule{}, httperr.NewBadRequest("rule id is required")
	}
	if err := validateRuleShape(rule.Priority, rule.Condition, rule.Action); err != nil {
		return types.RoutingRule{}, err
	}
	existing, ok, err := s.rules.Get(ctx, rule.ID)
	if err != nil {
		return types.RoutingRule{}, err
	}
	if !ok {
		return types.RoutingRule{}, httperr.NewNotFound("routing rule not found")
	}
	if err := s.requireCompanyScope(ctx, actorUserID, existing.ContractVersionID); err != nil {
		return types.RoutingRule{}, err
	}
	rule.ContractVersionID = existing.ContractVersionID
	if err := s.rules.Update(ctx, rule); err != nil {
		return types.RoutingRule{}, err
	}
	return rule, nil
}

func (s *RuleAdminService) Delete(ctx context.Context, actorUserID string, ruleID string) error {
	if ruleID == "" {
		return httperr.NewBadRequest("rule id is required")
	}
	existing, ok, err := s.rules.Get(ctx, ruleID)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.NewNotFound("routing rule not found")
	}
	if err := s.requireCompanyScope(ctx, actorUserID, existing.ContractVersionID); err != nil {
		return err
	}
	return s.rules.Delete(ctx, ruleID)
}

func (s *RuleAdminService) List(ctx context.Context, actorUserID string, contractVersionID string) ([]types.RoutingRule, error) {
	if contractVersionID == "" {
		return nil, httperr.NewBadRequest("contract_version_id is required")
	}
	version, ok, err := s.contracts.GetContractVersion(ctx, contractVersionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.RoutingRule{}, nil
	}
	allowed, err := s.authority.CanAccessCompany(ctx, actorUserID, version.CompanyID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return []types.RoutingRule{}, nil
	}
	return s.rules.ListByContractVersion(ctx, contractVersionID)
}

func (s *RuleAdminService) requireCompanyScope(ctx context.Context, actorUserID string, contractVersionID string) error {
	if contractVersionID == "" {
		return httperr.NewBadRequest("contract_version_id is required")
	}
	version, ok, err := s.contracts.GetContractVersion(ctx, contractVersionID)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.NewNotFound("contract version not found")
	}
	allowed, err := s.authority.CanAccessCompany(ctx, actorUserID, version.CompanyID)
	if err != nil {
		return err
	}
	if !allowed {
		return httperr.NewForbidden("actor lacks scope over contract version company")
	}
	return nil
}

func validateRuleShape(priority int, cond types.RuleCondition, action types.RuleAction) error {
	if priority < 0 {
		return httperr.NewBadRequest("priority must be non-negative")
	}
	if !action.AssigneeType.Valid() {
		return httperr.NewBadRequest("action assignee_type must be team or vendor")
	}
	if action.AssigneeID == "" {
		return httperr.NewBadRequest("action assignee_id is required")
	}
	if cond.TimeWindow != "" && !cond.TimeWindow.Valid() {
		return httperr.NewBadRequest("condition time_window is invalid")
	}
	if err := CompileTagExpr(cond.TagExpr); err != nil {
		return httperr.NewBadRequest("condition tag_expr does not compile: " + err.Error())
	}
	return nil
}
