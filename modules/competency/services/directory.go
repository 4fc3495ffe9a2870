package services

import (
	"context"
	"strings"

	"github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	"github.com/harborworks/facilitydesk/modules/competency/domain/types"
	scopeports "github.com/harborworks/facilitydesk/modules/scope/domain/ports"
	"github.com/harborworks/facilitydesk/pkg/httperr"
	"github.com/harborworks/facilitydesk/pkg/uuidv7"
)

const (
	errTeamRequired           = "team_id is required"
	errBuildingRequired       = "building_id is required"
	errSkillRequired          = "skill_id is required"
	errCategoryRequired       = "category_id is required"
	errContractVersionMissing = "contract version not found"
	errBuildingMissing        = "building not found"
	errCompanyMismatch        = "contract version, team, and building must belong to the same company"
	errLevelInvalid           = "level must be primary or backup"
	errWindowInvalid          = "window must be business_hours, after_hours, or any"
	errCategoryNotIncluded    = "category is not included in the contract version"
	errMissingRequiredSkill   = "team lacks a skill required for a primary-level grant"
)

var newCompetencyID = uuidv7.NewString

// Directory is the mutation command layer over the team-zone, team-skill,
// and competency-matrix repositories. Every write runs the same-company
// precondition before touching storage.
type Directory struct {
	zones     ports.TeamZoneStore
	skills    ports.TeamSkillStore
	matrix    ports.CompetencyMatrixStore
	teams     ports.TeamQuery
	taxonomy  ports.TaxonomyQuery
	contracts ports.ContractQuery
	included  ports.ContractCategoryQuery
	buildings scopeports.BuildingQuery
}

func NewDirectory(
	zones ports.TeamZoneStore,
	skills ports.TeamSkillStore,
	matrix ports.CompetencyMatrixStore,
	teams ports.TeamQuery,
	taxonomy ports.TaxonomyQuery,
	contracts ports.ContractQuery,
	included ports.ContractCategoryQuery,
	buildings scopeports.BuildingQuery,
) *Directory {
	return &Directory{
		zones:     zones,
		skills:    skills,
		matrix:    matrix,
		teams:     teams,
		taxonomy:  taxonomy,
		contracts: contracts,
		included:  included,
		buildings: buildings,
	}
}

func (d *Directory) GrantZone(ctx context.Context, teamID string, buildingID string) error {
	teamID = strings.TrimSpace(teamID)
	buildingID = strings.TrimSpace(buildingID)
	if teamID == "" {
		return httperr.NewBadRequest(errTeamRequired)
	}
	if buildingID == "" {
		return httperr.NewBadRequest(errBuildingRequired)
	}

	team, err := d.teams.GetTeamMeta(ctx, teamID)
	if err != nil {
		return err
	}
	building, found, err := d.buildings.GetBuilding(ctx, buildingID)
	if err != nil {
		return err
	}
	if !found {
		return httperr.NewNotFound(errBuildingMissing)
	}
	if building.CompanyID != team.CompanyID {
		return httperr.NewForbidden(errCompanyMismatch)
	}
	return d.zones.Upsert(ctx, teamID, buildingID)
}

func (d *Directory) RevokeZone(ctx context.Context, teamID string, buildingID string) error {
	teamID = strings.TrimSpace(teamID)
	buildingID = strings.TrimSpace(buildingID)
	if teamID == "" || buildingID == "" {
		return httperr.NewBadRequest(errTeamRequired)
	}
	return d.zones.Delete(ctx, teamID, buildingID)
}

func (d *Directory) GrantSkill(ctx context.Context, teamID string, skillID string) error {
	teamID = strings.TrimSpace(teamID)
	skillID = strings.TrimSpace(skillID)
	if teamID == "" {
		return httperr.NewBadRequest(errTeamRequired)
	}
	if skillID == "" {
		return httperr.NewBadRequest(errSkillRequired)
	}
	if _, err := d.teams.GetTeamMeta(ctx, teamID); err != nil {
		return err
	}
	return d.skills.Upsert(ctx, teamID, skillID)
}

func (d *Directory) RevokeSkill(ctx context.Context, teamID string, skillID string) error {
	teamID = strings.TrimSpace(teamID)
	skillID = strings.TrimSpace(skillID)
	if teamID == "" || skillID == "" {
		return httperr.NewBadRequest(errTeamRequired)
	}
	return d.skills.Delete(ctx, teamID, skillID)
}

type UpsertCompetencyRequest struct {
	ContractVersionID string
	TeamID            string
	CategoryID        string
	BuildingID        string
	Level             string
	Window            string
}

func (d *Directory) UpsertCompetency(ctx context.Context, req UpsertCompetencyRequest) (types.CompetencyRecord, error) {
	record := types.CompetencyRecord{
		ContractVersionID: strings.TrimSpace(req.ContractVersionID),
		TeamID:            strings.TrimSpace(req.TeamID),
		CategoryID:        strings.TrimSpace(req.CategoryID),
		BuildingID:        strings.TrimSpace(req.BuildingID),
		Level:             types.CompetencyLevel(strings.ToLower(strings.TrimSpace(req.Level))),
		Window:            types.TimeWindow(strings.ToLower(strings.TrimSpace(req.Window))),
	}
	if record.ContractVersionID == "" {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errContractVersionMissing)
	}
	if record.TeamID == "" {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errTeamRequired)
	}
	if record.CategoryID == "" {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errCategoryRequired)
	}
	if !record.Level.Valid() {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errLevelInvalid)
	}
	if !record.Window.Valid() {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errWindowInvalid)
	}

	version, found, err := d.contracts.GetContractVersion(ctx, record.ContractVersionID)
	if err != nil {
		return types.CompetencyRecord{}, err
	}
	if !found {
		return types.CompetencyRecord{}, httperr.NewNotFound(errContractVersionMissing)
	}
	team, err := d.teams.GetTeamMeta(ctx, record.TeamID)
	if err != nil {
		return types.CompetencyRecord{}, err
	}
	if team.CompanyID != version.CompanyID {
		return types.CompetencyRecord{}, httperr.NewForbidden(errCompanyMismatch)
	}
	if record.BuildingID != "" {
		building, found, err := d.buildings.GetBuilding(ctx, record.BuildingID)
		if err != nil {
			return types.CompetencyRecord{}, err
		}
		if !found {
			return types.CompetencyRecord{}, httperr.NewNotFound(errBuildingMissing)
		}
		if building.CompanyID != version.CompanyID {
			return types.CompetencyRecord{}, httperr.NewForbidden(errCompanyMismatch)
		}
	}

	included, err := d.included.IsCategoryIncluded(ctx, record.ContractVersionID, record.CategoryID)
	if err != nil {
		return types.CompetencyRecord{}, err
	}
	if !included {
		return types.CompetencyRecord{}, httperr.NewBadRequest(errCategoryNotIncluded)
	}

	// Primary-level coverage is an obligation: the team must already hold
	// every skill the category requires. Backup rows are not gated.
	if record.Level == types.LevelPrimary {
		required, err := d.taxonomy.RequiredSkillsForCategory(ctx, record.CategoryID)
		if err != nil {
			return types.CompetencyRecord{}, err
		}
		for _, skillID := range required {
			has, err := d.skills.HasSkill(ctx, record.TeamID, skillID)
			if err != nil {
				return types.CompetencyRecord{}, err
			}
			if !has {
				return types.CompetencyRecord{}, httperr.NewBadRequest(errMissingRequiredSkill)
			}
		}
	}

	id, err := newCompetencyID()
	if err != nil {
		return types.CompetencyRecord{}, err
	}
	record.ID = id
	return d.matrix.Upsert(ctx, record)
}

func (d *Directory) DeleteCompetency(ctx context.Context, key types.CompetencyKey) error {
	if key.ContractVersionID == "" || key.TeamID == "" || key.CategoryID == "" {
		return httperr.NewBadRequest("contract_version_id, team_id, and category_id are required")
	}
	if !key.Window.Valid() {
		return httperr.NewBadRequest(errWindowInvalid)
	}
	return d.matrix.DeleteByKey(ctx, key)
}

func (d *Directory) ListByContractVersion(ctx context.Context, contractVersionID string) ([]types.CompetencyRecord, error) {
	return d.matrix.ListByContractVersion(ctx, strings.TrimSpace(contractVersionID))
}

func (d *Directory) ListByTeam(ctx context.Context, teamID string) ([]types.CompetencyRecord, error) {
	return d.matrix.ListByTeam(ctx, strings.TrimSpace(teamID))
}

func (d *Directory) ListZonesByTeam(ctx context.Context, teamID string) ([]types.TeamZone, error) {
	return d.zones.ListByTeam(ctx, strings.TrimSpace(teamID))
}

func (d *Directory) ListSkillsByTeam(ctx context.Context, teamID string) ([]types.TeamSkill, error) {
	return d.skills.ListByTeam(ctx, strings.TrimSpace(teamID))
}
