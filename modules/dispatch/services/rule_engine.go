package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

var newRuleCELEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("ctx", cel.MapType(cel.StringType, cel.StringType)))
}

var newRuleCELProgram = func(env *cel.Env, ast *cel.Ast) (cel.Program, error) {
	return env.Program(ast)
}

var ruleTagProgramCache sync.Map

// RuleEngine evaluates a contract version's routing rules against a
// ticket's routing context. Rules arrive pre-sorted by (priority, id);
// the first full match wins. The engine never consults eligibility.
type RuleEngine struct {
	rules ports.RoutingRuleStore
}

func NewRuleEngine(rules ports.RoutingRuleStore) *RuleEngine {
	return &RuleEngine{rules: rules}
}

// Evaluate returns the first matching rule, or nil when none matches.
func (e *RuleEngine) Evaluate(ctx context.Context, contractVersionID string, ticket types.TicketContext) (*types.RoutingRule, error) {
	if contractVersionID == "" {
		return nil, httperr.NewBadRequest("contract_version_id is required")
	}
	rules, err := e.rules.ListByContractVersion(ctx, contractVersionID)
	if err != nil {
		return nil, err
	}
	ctxMap := ruleContextMap(ticket)
	for i := range rules {
		ok, err := conditionMatches(rules[i].Condition, ticket, ctxMap)
		if err != nil {
			return nil, err
		}
		if ok {
			matched := rules[i]
			return &matched, nil
		}
	}
	return nil, nil
}

// conditionMatches tests one condition as a pure predicate. Every populated
// field must match; a condition with no fields matches everything.
func conditionMatches(cond types.RuleCondition, ticket types.TicketContext, ctxMap map[string]string) (bool, error) {
	if cond.CategoryID != "" && cond.CategoryID != ticket.CategoryID {
		return false, nil
	}
	if cond.TimeWindow != "" && cond.TimeWindow != competencytypes.WindowAny && cond.TimeWindow != ticket.TimeWindow {
		return false, nil
	}
	if cond.AssetKind != "" && cond.AssetKind != ticket.AssetKind {
		return false, nil
	}
	if cond.TagExpr != "" {
		return evalRuleTagExpr(cond.TagExpr, ctxMap)
	}
	return true, nil
}

func ruleContextMap(ticket types.TicketContext) map[string]string {
	return map[string]string{
		"category_id": ticket.CategoryID,
		"time_window": string(ticket.TimeWindow),
		"site_id":     ticket.SiteID,
		"building_id": ticket.BuildingID,
		"location_id": ticket.LocationID,
		"asset_id":    ticket.AssetID,
		"asset_kind":  ticket.AssetKind,
		"tags":        strings.Join(ticket.Tags, ","),
	}
}

func evalRuleTagExpr(expr string, ctxMap map[string]string) (bool, error) {
	program, err := loadOrCompileRuleTagProgram(expr)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(map[string]any{"ctx": ctxMap})
	if err != nil {
		return false, err
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("tag expression did not yield bool")
	}
	return v, nil
}

func loadOrCompileRuleTagProgram(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("expression required")
	}
	if cached, ok := ruleTagProgramCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := newRuleCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.New("expression output type mismatch")
	}
	program, err := newRuleCELProgram(env, ast)
	if err != nil {
		return nil, err
	}
	ruleTagProgramCache.Store(expr, program)
	return program, nil
}

// CompileTagExpr validates a condition's tag expression at write time so a
// broken expression is rejected before it can reach routing.
func CompileTagExpr(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := loadOrCompileRuleTagProgram(expr)
	return err
}
