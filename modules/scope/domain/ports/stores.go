package ports

import (
	"context"

	"github.com/harborworks/facilitydesk/modules/scope/domain/types"
)

type ScopeGrantStore interface {
	ListBySubject(ctx context.Context, subjectUserID string) ([]types.ScopeGrant, error)
	Insert(ctx context.Context, grant types.ScopeGrant) (types.ScopeGrant, error)
	Delete(ctx context.Context, grantID string) error
}

type SiteQuery interface {
	GetSite(ctx context.Context, siteID string) (types.Site, bool, error)
}

type BuildingQuery interface {
	GetBuilding(ctx context.Context, buildingID string) (types.Building, bool, error)
}
