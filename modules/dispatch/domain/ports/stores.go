package ports

import (
	"context"

	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
)

// RoutingRuleStore persists per-contract-version routing rules.
// ListByContractVersion returns rows ordered ascending by (priority, id).
type RoutingRuleStore interface {
	ListByContractVersion(ctx context.Context, contractVersionID string) ([]types.RoutingRule, error)
	Get(ctx context.Context, ruleID string) (types.RoutingRule, bool, error)
	Insert(ctx context.Context, rule types.RoutingRule) error
	Update(ctx context.Context, rule types.RoutingRule) error
	Delete(ctx context.Context, ruleID string) error
}

// LoadQuery reports a team's current open-ticket count. Teams with no open
// tickets report zero.
type LoadQuery interface {
	CurrentOpenLoad(ctx context.Context, teamID string) (int, error)
}

type LocationQuery interface {
	GetLocation(ctx context.Context, locationID string) (types.Location, bool, error)
}

type AssetQuery interface {
	GetAsset(ctx context.Context, assetID string) (types.Asset, bool, error)
}
