package services

import (
	"context"

	"github.com/harborworks/facilitydesk/modules/scope/domain/ports"
	"github.com/harborworks/facilitydesk/modules/scope/domain/types"
)

// ScopeAuthority answers whether an admin actor may reach a company, site,
// or building by walking the containment hierarchy upward. Actors without
// any scope grant are always denied here; non-admin flows use the caller's
// default-tenant check instead.
type ScopeAuthority struct {
	grants    ports.ScopeGrantStore
	sites     ports.SiteQuery
	buildings ports.BuildingQuery
}

func NewScopeAuthority(grants ports.ScopeGrantStore, sites ports.SiteQuery, buildings ports.BuildingQuery) *ScopeAuthority {
	return &ScopeAuthority{grants: grants, sites: sites, buildings: buildings}
}

// hierarchyCache memoizes site/building lookups for one authorization
// decision. It is constructed fresh per Can* call and never shared, so a
// re-parented site cannot leak stale containment facts across requests.
type hierarchyCache struct {
	sites     map[string]siteFact
	buildings map[string]buildingFact
}

type siteFact struct {
	companyID string
	found     bool
}

type buildingFact struct {
	siteID string
	found  bool
}

func newHierarchyCache() *hierarchyCache {
	return &hierarchyCache{
		sites:     make(map[string]siteFact),
		buildings: make(map[string]buildingFact),
	}
}

func (c *hierarchyCache) site(ctx context.Context, q ports.SiteQuery, siteID string) (siteFact, error) {
	if fact, ok := c.sites[siteID]; ok {
		return fact, nil
	}
	s, found, err := q.GetSite(ctx, siteID)
	if err != nil {
		return siteFact{}, err
	}
	fact := siteFact{companyID: s.CompanyID, found: found}
	c.sites[siteID] = fact
	return fact, nil
}

func (c *hierarchyCache) building(ctx context.Context, q ports.BuildingQuery, buildingID string) (buildingFact, error) {
	if fact, ok := c.buildings[buildingID]; ok {
		return fact, nil
	}
	b, found, err := q.GetBuilding(ctx, buildingID)
	if err != nil {
		return buildingFact{}, err
	}
	fact := buildingFact{siteID: b.SiteID, found: found}
	c.buildings[buildingID] = fact
	return fact, nil
}

func (a *ScopeAuthority) CanAccessCompany(ctx context.Context, subjectUserID string, companyID string) (bool, error) {
	grants, err := a.grants.ListBySubject(ctx, subjectUserID)
	if err != nil {
		return false, err
	}
	if hasPlatformGrant(grants) {
		return true, nil
	}

	cache := newHierarchyCache()
	for _, g := range grants {
		switch g.ScopeType {
		case types.ScopeCompany:
			if g.CompanyID == companyID {
				return true, nil
			}
		case types.ScopeSite:
			fact, err := cache.site(ctx, a.sites, g.SiteID)
			if err != nil {
				return false, err
			}
			if fact.found && fact.companyID == companyID {
				return true, nil
			}
		case types.ScopeBuilding:
			owner, found, err := a.resolveBuildingCompany(ctx, cache, g.BuildingID)
			if err != nil {
				return false, err
			}
			if found && owner == companyID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (a *ScopeAuthority) CanAccessSite(ctx context.Context, subjectUserID string, siteID string) (bool, error) {
	grants, err := a.grants.ListBySubject(ctx, subjectUserID)
	if err != nil {
		return false, err
	}
	if hasPlatformGrant(grants) {
		return true, nil
	}

	cache := newHierarchyCache()
	target, err := cache.site(ctx, a.sites, siteID)
	if err != nil {
		return false, err
	}
	if !target.found {
		return false, nil
	}

	for _, g := range grants {
		switch g.ScopeType {
		case types.ScopeSite:
			if g.SiteID == siteID {
				return true, nil
			}
		case types.ScopeCompany:
			if g.CompanyID == target.companyID {
				return true, nil
			}
		case types.ScopeBuilding:
			fact, err := cache.building(ctx, a.buildings, g.BuildingID)
			if err != nil {
				return false, err
			}
			if fact.found && fact.siteID == siteID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (a *ScopeAuthority) CanAccessBuilding(ctx context.Context, subjectUserID string, buildingID string) (bool, error) {
	grants, err := a.grants.ListBySubject(ctx, subjectUserID)
	if err != nil {
		return false, err
	}
	if hasPlatformGrant(grants) {
		return true, nil
	}

	cache := newHierarchyCache()
	target, err := cache.building(ctx, a.buildings, buildingID)
	if err != nil {
		return false, err
	}
	if !target.found {
		return false, nil
	}
	owner, err := cache.site(ctx, a.sites, target.siteID)
	if err != nil {
		return false, err
	}

	for _, g := range grants {
		switch g.ScopeType {
		case types.ScopeBuilding:
			if g.BuildingID == buildingID {
				return true, nil
			}
		case types.ScopeSite:
			if g.SiteID == target.siteID {
				return true, nil
			}
		case types.ScopeCompany:
			if owner.found && g.CompanyID == owner.companyID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (a *ScopeAuthority) resolveBuildingCompany(ctx context.Context, cache *hierarchyCache, buildingID string) (string, bool, error) {
	b, err := cache.building(ctx, a.buildings, buildingID)
	if err != nil {
		return "", false, err
	}
	if !b.found {
		return "", false, nil
	}
	s, err := cache.site(ctx, a.sites, b.siteID)
	if err != nil {
		return "", false, err
	}
	if !s.found {
		return "", false, nil
	}
	return s.companyID, true, nil
}

func hasPlatformGrant(grants []types.ScopeGrant) bool {
	for _, g := range grants {
		if g.ScopeType == types.ScopePlatform {
			return true
		}
	}
	return false
}
