package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
)

// PlacementPGStore serves the read-only placement lookups behind site
// resolution and load balancing: locations, assets and per-team open
// ticket counts.
type PlacementPGStore struct {
	pool pgBeginner
}

func NewPlacementPGStore(pool pgBeginner) *PlacementPGStore {
	return &PlacementPGStore{pool: pool}
}

func (s *PlacementPGStore) GetLocation(ctx context.Context, locationID string) (types.Location, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Location{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var loc types.Location
	err = tx.QueryRow(ctx, `
SELECT location_uuid::text, COALESCE(building_uuid::text, ''), COALESCE(site_uuid::text, '')
FROM dispatch.locations
WHERE location_uuid = $1::uuid
`, locationID).Scan(&loc.ID, &loc.BuildingID, &loc.SiteID)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Location{}, false, nil
	}
	if err != nil {
		return types.Location{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Location{}, false, err
	}
	return loc, true, nil
}

func (s *PlacementPGStore) GetAsset(ctx context.Context, assetID string) (types.Asset, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Asset{}, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var asset types.Asset
	err = tx.QueryRow(ctx, `
SELECT asset_uuid::text, COALESCE(kind, ''), COALESCE(location_uuid::text, ''), COALESCE(building_uuid::text, '')
FROM dispatch.assets
WHERE asset_uuid = $1::uuid
`, assetID).Scan(&asset.ID, &asset.Kind, &asset.LocationID, &asset.BuildingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Asset{}, false, nil
	}
	if err != nil {
		return types.Asset{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Asset{}, false, err
	}
	return asset, true, nil
}

// CurrentOpenLoad counts tickets assigned to the team that are not yet
// resolved. Unknown teams count zero.
func (s *PlacementPGStore) CurrentOpenLoad(ctx context.Context, teamID string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int
	err = tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM dispatch.tickets
WHERE assignee_team_uuid = $1::uuid
  AND status NOT IN ('resolved', 'closed', 'cancelled')
`, teamID).Scan(&count)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}
