package persistence

import (
	"context"
	"errors"

	"github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	"github.com/harborworks/facilitydesk/pkg/httperr"
	"github.com/jackc/pgx/v5"
)

// ReferencePGStore serves the read-mostly collaborator queries: team
// metadata, category skill requirements, contract versions, and category
// inclusion. These tables are owned by the contract-administration workflow.
type ReferencePGStore struct {
	pool pgBeginner
}

func NewReferencePGStore(pool pgBeginner) *ReferencePGStore {
	return &ReferencePGStore{pool: pool}
}

func (s *ReferencePGStore) GetTeamMeta(ctx context.Context, teamID string) (ports.TeamMeta, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ports.TeamMeta{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var meta ports.TeamMeta
	if err := tx.QueryRow(ctx, `
SELECT company_uuid::text, active
FROM competency.teams
WHERE team_uuid = $1::uuid
`, teamID).Scan(&meta.CompanyID, &meta.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.TeamMeta{}, httperr.NewNotFound("team not found")
		}
		return ports.TeamMeta{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ports.TeamMeta{}, err
	}
	return meta, nil
}

func (s *ReferencePGStore) RequiredSkillsForCategory(ctx context.Context, categoryID string) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT skill_id
FROM competency.category_required_skills
WHERE category_id = $1
ORDER BY skill_id ASC
`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var skillID string
		if err := rows.Scan(&skillID); err != nil {
			return nil, err
		}
		out = append(out, skillID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReferencePGStore) GetContractVersion(ctx context.Context, id string) (ports.ContractVersion, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ports.ContractVersion{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var v ports.ContractVersion
	if err := tx.QueryRow(ctx, `
SELECT version_uuid::text, company_uuid::text, site_uuid::text, contract_uuid::text
FROM competency.contract_versions
WHERE version_uuid = $1::uuid
`, id).Scan(&v.ID, &v.CompanyID, &v.SiteID, &v.ContractID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ContractVersion{}, false, nil
		}
		return ports.ContractVersion{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ports.ContractVersion{}, false, err
	}
	return v, true, nil
}

func (s *ReferencePGStore) ActiveVersionForSite(ctx context.Context, siteID string) (ports.ContractVersion, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ports.ContractVersion{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var v ports.ContractVersion
	if err := tx.QueryRow(ctx, `
SELECT version_uuid::text, company_uuid::text, site_uuid::text, contract_uuid::text
FROM competency.contract_versions
WHERE site_uuid = $1::uuid AND active
ORDER BY version_uuid DESC
LIMIT 1
`, siteID).Scan(&v.ID, &v.CompanyID, &v.SiteID, &v.ContractID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ContractVersion{}, false, nil
		}
		return ports.ContractVersion{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ports.ContractVersion{}, false, err
	}
	return v, true, nil
}

func (s *ReferencePGStore) IsCategoryIncluded(ctx context.Context, contractVersionID string, categoryID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var one int
	if err := tx.QueryRow(ctx, `
SELECT 1
FROM competency.contract_version_categories
WHERE contract_version_uuid = $1::uuid AND category_id = $2
`, contractVersionID, categoryID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
