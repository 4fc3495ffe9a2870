package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RoutingRulePGStore persists routing rules in dispatch.routing_rules.
// List order is the evaluation order: ascending (priority, rule_uuid).
type RoutingRulePGStore struct {
	pool pgBeginner
}

func NewRoutingRulePGStore(pool pgBeginner) *RoutingRulePGStore {
	return &RoutingRulePGStore{pool: pool}
}

const routingRuleSelectColumns = `rule_uuid::text, contract_version_uuid::text, priority,
       COALESCE(cond_category_id, ''), COALESCE(cond_time_window, ''), COALESCE(cond_asset_kind, ''), COALESCE(cond_tag_expr, ''),
       assignee_type, assignee_id::text`

func scanRoutingRule(row pgx.Row) (types.RoutingRule, error) {
	var rule types.RoutingRule
	var window, assigneeType string
	err := row.Scan(
		&rule.ID, &rule.ContractVersionID, &rule.Priority,
		&rule.Condition.CategoryID, &window, &rule.Condition.AssetKind, &rule.Condition.TagExpr,
		&assigneeType, &rule.Action.AssigneeID,
	)
	if err != nil {
		return types.RoutingRule{}, err
	}
	rule.Condition.TimeWindow = competencytypes.TimeWindow(window)
	rule.Action.AssigneeType = types.AssigneeType(assigneeType)
	return rule, nil
}

func (s *RoutingRulePGStore) ListByContractVersion(ctx context.Context, contractVersionID string) ([]types.RoutingRule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+routingRuleSelectColumns+`
FROM dispatch.routing_rules
WHERE contract_version_uuid = $1::uuid
ORDER BY priority ASC, rule_uuid ASC
`, contractVersionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.RoutingRule, 0)
	for rows.Next() {
		rule, err := scanRoutingRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RoutingRulePGStore) Get(ctx context.Context, ruleID string) (types.RoutingRule, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.RoutingRule{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rule, err := scanRoutingRule(tx.QueryRow(ctx, `
SELECT `+routingRuleSelectColumns+`
FROM dispatch.routing_rules
WHERE rule_uuid = $1::uuid
`, ruleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return types.RoutingRule{}, false, nil
	}
	if err != nil {
		return types.RoutingRule{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.RoutingRule{}, false, err
	}
	return rule, true, nil
}

func (s *RoutingRulePGStore) Insert(ctx context.Context, rule types.RoutingRule) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO dispatch.routing_rules
  (rule_uuid, contract_version_uuid, priority,
   cond_category_id, cond_time_window, cond_asset_kind, cond_tag_expr,
   assignee_type, assignee_id)
VALUES ($1::uuid, $2::uuid, $3,
        NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
        $8, $9::uuid)
`, rule.ID, rule.ContractVersionID, rule.Priority,
		rule.Condition.CategoryID, string(rule.Condition.TimeWindow), rule.Condition.AssetKind, rule.Condition.TagExpr,
		string(rule.Action.AssigneeType), rule.Action.AssigneeID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *RoutingRulePGStore) Update(ctx context.Context, rule types.RoutingRule) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
UPDATE dispatch.routing_rules
SET priority = $2,
    cond_category_id = NULLIF($3, ''),
    cond_time_window = NULLIF($4, ''),
    cond_asset_kind = NULLIF($5, ''),
    cond_tag_expr = NULLIF($6, ''),
    assignee_type = $7,
    assignee_id = $8::uuid
WHERE rule_uuid = $1::uuid
`, rule.ID, rule.Priority,
		rule.Condition.CategoryID, string(rule.Condition.TimeWindow), rule.Condition.AssetKind, rule.Condition.TagExpr,
		string(rule.Action.AssigneeType), rule.Action.AssigneeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NewNotFound("routing rule not found")
	}
	return tx.Commit(ctx)
}

func (s *RoutingRulePGStore) Delete(ctx context.Context, ruleID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
DELETE FROM dispatch.routing_rules WHERE rule_uuid = $1::uuid
`, ruleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NewNotFound("routing rule not found")
	}
	return tx.Commit(ctx)
}
