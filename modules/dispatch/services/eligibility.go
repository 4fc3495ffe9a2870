package services

import (
	"context"
	"sort"

	"github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

type PreferLevel string

const (
	PreferPrimary PreferLevel = "primary"
	PreferBackup  PreferLevel = "backup"
	PreferAny     PreferLevel = "any"
)

func (p PreferLevel) Valid() bool {
	return p == PreferPrimary || p == PreferBackup || p == PreferAny
}

// EligibilityQuery asks which teams may serve a category under one contract
// version. BuildingID is optional; without it only tenant-wide competency
// rows apply. PreferLevel defaults to primary.
type EligibilityQuery struct {
	ContractVersionID string
	CategoryID        string
	BuildingID        string
	Window            competencytypes.TimeWindow
	PreferLevel       PreferLevel
}

// EligibilityResolver computes the ordered set of eligible teams for a
// query by filtering competency matrix rows through window, building,
// team-active, zone and skill checks.
type EligibilityResolver struct {
	matrix   ports.CompetencyMatrixStore
	teams    ports.TeamQuery
	zones    ports.TeamZoneStore
	skills   ports.TeamSkillStore
	taxonomy ports.TaxonomyQuery
}

func NewEligibilityResolver(
	matrix ports.CompetencyMatrixStore,
	teams ports.TeamQuery,
	zones ports.TeamZoneStore,
	skills ports.TeamSkillStore,
	taxonomy ports.TaxonomyQuery,
) *EligibilityResolver {
	return &EligibilityResolver{matrix: matrix, teams: teams, zones: zones, skills: skills, taxonomy: taxonomy}
}

// EligibleTeams resolves the query to a deterministic, duplicate-free list.
// Teams are grouped by competency level and sorted lexicographically by id
// within each group; the preferred level's group comes first.
func (r *EligibilityResolver) EligibleTeams(ctx context.Context, q EligibilityQuery) ([]types.EligibleTeam, error) {
	if q.ContractVersionID == "" {
		return nil, httperr.NewBadRequest("contract_version_id is required")
	}
	if q.CategoryID == "" {
		return nil, httperr.NewBadRequest("category_id is required")
	}
	if !q.Window.QueryWindow() {
		return nil, httperr.NewBadRequest("window must be business_hours or after_hours")
	}
	prefer := q.PreferLevel
	if prefer == "" {
		prefer = PreferPrimary
	}
	if !prefer.Valid() {
		return nil, httperr.NewBadRequest("prefer_level must be primary, backup or any")
	}

	rows, err := r.matrix.ListByContractVersionAndCategory(ctx, q.ContractVersionID, q.CategoryID)
	if err != nil {
		return nil, err
	}

	rows = filterWindow(rows, q.Window)
	rows = filterBuilding(rows, q.BuildingID)

	rows, err = r.filterActiveTeams(ctx, rows)
	if err != nil {
		return nil, err
	}
	if q.BuildingID != "" {
		rows, err = r.filterZoneCoverage(ctx, rows, q.BuildingID)
		if err != nil {
			return nil, err
		}
	}
	rows, err = r.filterSkillGate(ctx, rows, q.CategoryID)
	if err != nil {
		return nil, err
	}

	return orderCandidates(dedupeByTeam(rows), prefer), nil
}

func filterWindow(rows []competencytypes.CompetencyRecord, window competencytypes.TimeWindow) []competencytypes.CompetencyRecord {
	kept := rows[:0]
	for _, row := range rows {
		if row.Window == competencytypes.WindowAny || row.Window == window {
			kept = append(kept, row)
		}
	}
	return kept
}

// filterBuilding applies building precedence. Building-specific rows are a
// fallback-exclusive tier: when any row matches the queried building, the
// generic rows are discarded for this resolution. Without a building only
// generic rows apply.
func filterBuilding(rows []competencytypes.CompetencyRecord, buildingID string) []competencytypes.CompetencyRecord {
	var generic, specific []competencytypes.CompetencyRecord
	for _, row := range rows {
		switch {
		case row.BuildingID == "":
			generic = append(generic, row)
		case row.BuildingID == buildingID:
			specific = append(specific, row)
		}
	}
	if buildingID != "" && len(specific) > 0 {
		return specific
	}
	return generic
}

func (r *EligibilityResolver) filterActiveTeams(ctx context.Context, rows []competencytypes.CompetencyRecord) ([]competencytypes.CompetencyRecord, error) {
	active := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		ok, seen := active[row.TeamID]
		if !seen {
			meta, err := r.teams.GetTeamMeta(ctx, row.TeamID)
			switch {
			case httperr.IsNotFound(err):
				ok = false
			case err != nil:
				return nil, err
			default:
				ok = meta.Active
			}
			active[row.TeamID] = ok
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

func (r *EligibilityResolver) filterZoneCoverage(ctx context.Context, rows []competencytypes.CompetencyRecord, buildingID string) ([]competencytypes.CompetencyRecord, error) {
	covered := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		ok, seen := covered[row.TeamID]
		if !seen {
			var err error
			ok, err = r.zones.Exists(ctx, row.TeamID, buildingID)
			if err != nil {
				return nil, err
			}
			covered[row.TeamID] = ok
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// filterSkillGate drops primary rows whose team is missing any skill the
// category requires. Backup rows pass untouched.
func (r *EligibilityResolver) filterSkillGate(ctx context.Context, rows []competencytypes.CompetencyRecord, categoryID string) ([]competencytypes.CompetencyRecord, error) {
	required, err := r.taxonomy.RequiredSkillsForCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(required) == 0 {
		return rows, nil
	}
	qualified := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		if row.Level != competencytypes.LevelPrimary {
			kept = append(kept, row)
			continue
		}
		ok, seen := qualified[row.TeamID]
		if !seen {
			ok = true
			for _, skill := range required {
				has, err := r.skills.HasSkill(ctx, row.TeamID, skill)
				if err != nil {
					return nil, err
				}
				if !has {
					ok = false
					break
				}
			}
			qualified[row.TeamID] = ok
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// dedupeByTeam collapses multiple surviving rows per team into one
// candidate, keeping the strongest: primary beats backup, then the
// narrower window wins.
func dedupeByTeam(rows []competencytypes.CompetencyRecord) []types.EligibleTeam {
	best := make(map[string]types.EligibleTeam, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		candidate := types.EligibleTeam{TeamID: row.TeamID, Level: row.Level, Window: row.Window}
		prev, seen := best[row.TeamID]
		if !seen {
			best[row.TeamID] = candidate
			order = append(order, row.TeamID)
			continue
		}
		if stronger(candidate, prev) {
			best[row.TeamID] = candidate
		}
	}
	out := make([]types.EligibleTeam, 0, len(order))
	for _, teamID := range order {
		out = append(out, best[teamID])
	}
	return out
}

func stronger(a, b types.EligibleTeam) bool {
	if a.Level != b.Level {
		return a.Level == competencytypes.LevelPrimary
	}
	return windowRank(a.Window) < windowRank(b.Window)
}

func windowRank(w competencytypes.TimeWindow) int {
	switch w {
	case competencytypes.WindowBusinessHours:
		return 0
	case competencytypes.WindowAny:
		return 1
	default:
		return 2
	}
}

// orderCandidates sorts teams lexicographically within the primary and
// backup groups and concatenates the groups. The backup group leads only
// when the caller prefers backup; primary and any both lead with primary.
func orderCandidates(candidates []types.EligibleTeam, prefer PreferLevel) []types.EligibleTeam {
	var primary, backup []types.EligibleTeam
	for _, c := range candidates {
		if c.Level == competencytypes.LevelPrimary {
			primary = append(primary, c)
		} else {
			backup = append(backup, c)
		}
	}
	byTeam := func(group []types.EligibleTeam) {
		sort.Slice(group, func(i, j int) bool { return group[i].TeamID < group[j].TeamID })
	}
	byTeam(primary)
	byTeam(backup)
	if prefer == PreferBackup {
		return append(backup, primary...)
	}
	return append(primary, backup...)
}
