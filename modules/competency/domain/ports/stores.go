package ports

import (
	"context"

	"github.com/harborworks/facilitydesk/modules/competency/domain/types"
)

type TeamMeta struct {
	CompanyID string
	Active    bool
}

type TeamQuery interface {
	// GetTeamMeta returns a NotFound error for an unknown team id.
	GetTeamMeta(ctx context.Context, teamID string) (TeamMeta, error)
}

type TaxonomyQuery interface {
	RequiredSkillsForCategory(ctx context.Context, categoryID string) ([]string, error)
}

type ContractVersion struct {
	ID         string
	CompanyID  string
	SiteID     string
	ContractID string
}

type ContractQuery interface {
	GetContractVersion(ctx context.Context, id string) (ContractVersion, bool, error)
	ActiveVersionForSite(ctx context.Context, siteID string) (ContractVersion, bool, error)
}

type ContractCategoryQuery interface {
	IsCategoryIncluded(ctx context.Context, contractVersionID string, categoryID string) (bool, error)
}

type TeamZoneStore interface {
	Upsert(ctx context.Context, teamID string, buildingID string) error
	Delete(ctx context.Context, teamID string, buildingID string) error
	Exists(ctx context.Context, teamID string, buildingID string) (bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]types.TeamZone, error)
	ListByBuilding(ctx context.Context, buildingID string) ([]types.TeamZone, error)
}

type TeamSkillStore interface {
	Upsert(ctx context.Context, teamID string, skillID string) error
	Delete(ctx context.Context, teamID string, skillID string) error
	HasSkill(ctx context.Context, teamID string, skillID string) (bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]types.TeamSkill, error)
	ListTeamsBySkill(ctx context.Context, skillID string) ([]types.TeamSkill, error)
}

type CompetencyMatrixStore interface {
	// Upsert inserts the record, or replaces the level in place when the
	// uniqueness tuple already exists.
	Upsert(ctx context.Context, record types.CompetencyRecord) (types.CompetencyRecord, error)
	DeleteByKey(ctx context.Context, key types.CompetencyKey) error
	Find(ctx context.Context, key types.CompetencyKey) (types.CompetencyRecord, bool, error)
	ListByContractVersion(ctx context.Context, contractVersionID string) ([]types.CompetencyRecord, error)
	ListByContractVersionAndCategory(ctx context.Context, contractVersionID string, categoryID string) ([]types.CompetencyRecord, error)
	ListByTeam(ctx context.Context, teamID string) ([]types.CompetencyRecord, error)
	ListByCategory(ctx context.Context, categoryID string) ([]types.CompetencyRecord, error)
}
