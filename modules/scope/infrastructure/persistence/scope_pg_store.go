package persistence

import (
	"context"
	"errors"

	"github.com/harborworks/facilitydesk/modules/scope/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
	"github.com/jackc/pgx/v5"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScopePGStore serves the platform-owned authorization tables: scope grants
// and the site/building containment hierarchy.
type ScopePGStore struct {
	pool pgBeginner
}

func NewScopePGStore(pool pgBeginner) *ScopePGStore {
	return &ScopePGStore{pool: pool}
}

func (s *ScopePGStore) ListBySubject(ctx context.Context, subjectUserID string) ([]types.ScopeGrant, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT grant_uuid::text, subject_user_uuid::text, scope_type,
       COALESCE(company_uuid::text, ''), COALESCE(site_uuid::text, ''), COALESCE(building_uuid::text, '')
FROM scope.grants
WHERE subject_user_uuid = $1::uuid
ORDER BY grant_uuid ASC
`, subjectUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.ScopeGrant, 0)
	for rows.Next() {
		var g types.ScopeGrant
		var scopeType string
		if err := rows.Scan(&g.ID, &g.SubjectUserID, &scopeType, &g.CompanyID, &g.SiteID, &g.BuildingID); err != nil {
			return nil, err
		}
		g.ScopeType = types.ScopeType(scopeType)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScopePGStore) Insert(ctx context.Context, grant types.ScopeGrant) (types.ScopeGrant, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.ScopeGrant{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO scope.grants (grant_uuid, subject_user_uuid, scope_type, company_uuid, site_uuid, building_uuid)
VALUES ($1::uuid, $2::uuid, $3, NULLIF($4, '')::uuid, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid)
`, grant.ID, grant.SubjectUserID, string(grant.ScopeType), grant.CompanyID, grant.SiteID, grant.BuildingID); err != nil {
		return types.ScopeGrant{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.ScopeGrant{}, err
	}
	return grant, nil
}

func (s *ScopePGStore) Delete(ctx context.Context, grantID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM scope.grants WHERE grant_uuid = $1::uuid`, grantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NewNotFound("scope grant not found")
	}
	return tx.Commit(ctx)
}

func (s *ScopePGStore) GetSite(ctx context.Context, siteID string) (types.Site, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Site{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var site types.Site
	if err := tx.QueryRow(ctx, `
SELECT site_uuid::text, company_uuid::text
FROM scope.sites
WHERE site_uuid = $1::uuid
`, siteID).Scan(&site.ID, &site.CompanyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Site{}, false, nil
		}
		return types.Site{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Site{}, false, err
	}
	return site, true, nil
}

func (s *ScopePGStore) GetBuilding(ctx context.Context, buildingID string) (types.Building, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Building{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var b types.Building
	if err := tx.QueryRow(ctx, `
SELECT b.building_uuid::text, b.site_uuid::text, s.company_uuid::text
FROM scope.buildings b
JOIN scope.sites s ON s.site_uuid = b.site_uuid
WHERE b.building_uuid = $1::uuid
`, buildingID).Scan(&b.ID, &b.SiteID, &b.CompanyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Building{}, false, nil
		}
		return types.Building{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Building{}, false, err
	}
	return b, true, nil
}
