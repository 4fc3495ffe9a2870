package services

import (
	"context"

	"github.com/harborworks/facilitydesk/modules/dispatch/domain/ports"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	scopeports "github.com/harborworks/facilitydesk/modules/scope/domain/ports"
)

// SiteResolver derives a ticket's site from its placement ids with fixed
// precedence: siteId, then buildingId, then locationId, then assetId. A
// higher-precedence id wins even when a lower one would resolve differently.
type SiteResolver struct {
	buildings scopeports.BuildingQuery
	locations ports.LocationQuery
	assets    ports.AssetQuery
}

func NewSiteResolver(buildings scopeports.BuildingQuery, locations ports.LocationQuery, assets ports.AssetQuery) *SiteResolver {
	return &SiteResolver{buildings: buildings, locations: locations, assets: assets}
}

// Resolve returns the site id, or "" when no placement id resolves.
func (r *SiteResolver) Resolve(ctx context.Context, ticket types.TicketContext) (string, error) {
	if ticket.SiteID != "" {
		return ticket.SiteID, nil
	}
	if ticket.BuildingID != "" {
		return r.siteForBuilding(ctx, ticket.BuildingID)
	}
	if ticket.LocationID != "" {
		return r.siteForLocation(ctx, ticket.LocationID)
	}
	if ticket.AssetID != "" {
		return r.siteForAsset(ctx, ticket.AssetID)
	}
	return "", nil
}

func (r *SiteResolver) siteForBuilding(ctx context.Context, buildingID string) (string, error) {
	b, ok, err := r.buildings.GetBuilding(ctx, buildingID)
	if err != nil || !ok {
		return "", err
	}
	return b.SiteID, nil
}

func (r *SiteResolver) siteForLocation(ctx context.Context, locationID string) (string, error) {
	loc, ok, err := r.locations.GetLocation(ctx, locationID)
	if err != nil || !ok {
		return "", err
	}
	if loc.SiteID != "" {
		return loc.SiteID, nil
	}
	if loc.BuildingID != "" {
		return r.siteForBuilding(ctx, loc.BuildingID)
	}
	return "", nil
}

func (r *SiteResolver) siteForAsset(ctx context.Context, assetID string) (string, error) {
	asset, ok, err := r.assets.GetAsset(ctx, assetID)
	if err != nil || !ok {
		return "", err
	}
	if asset.LocationID != "" {
		if site, err := r.siteForLocation(ctx, asset.LocationID); err != nil || site != "" {
			return site, err
		}
	}
	if asset.BuildingID != "" {
		return r.siteForBuilding(ctx, asset.BuildingID)
	}
	return "", nil
}
