package services

import (
	"context"
	"testing"

	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	"github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

// eligFixture is a map-backed in-memory backing store for resolver tests.
type eligFixture struct {
	rows        []competencytypes.CompetencyRecord
	teams       map[string]competencyports.TeamMeta
	zones       map[string]map[string]bool
	skills      map[string]map[string]bool
	required    map[string][]string
	matrixCalls int
}

func (f *eligFixture) resolver() *EligibilityResolver {
	return NewEligibilityResolver(
		fixtureMatrix{f}, fixtureTeams{f}, fixtureZones{f}, fixtureSkills{f}, fixtureTaxonomy{f},
	)
}

type fixtureMatrix struct{ f *eligFixture }

func (m fixtureMatrix) Upsert(context.Context, competencytypes.CompetencyRecord) (competencytypes.CompetencyRecord, error) {
	return competencytypes.CompetencyRecord{}, nil
}
func (m fixtureMatrix) DeleteByKey(context.Context, competencytypes.CompetencyKey) error { return nil }
func (m fixtureMatrix) Find(context.Context, competencytypes.CompetencyKey) (competencytypes.CompetencyRecord, bool, error) {
	return competencytypes.CompetencyRecord{}, false, nil
}
func (m fixtureMatrix) ListByContractVersion(context.Context, string) ([]competencytypes.CompetencyRecord, error) {
	return nil, nil
}
func (m fixtureMatrix) ListByContractVersionAndCategory(_ context.Context, contractVersionID string, categoryID string) ([]competencytypes.CompetencyRecord, error) {
	m.f.matrixCalls++
	out := make([]competencytypes.CompetencyRecord, 0)
	for _, row := range m.f.rows {
		if row.ContractVersionID == contractVersionID && row.CategoryID == categoryID {
			out = append(out, row)
		}
	}
	return out, nil
}
func (m fixtureMatrix) ListByTeam(context.Context, string) ([]competencytypes.CompetencyRecord, error) {
	return nil, nil
}
func (m fixtureMatrix) ListByCategory(context.Context, string) ([]competencytypes.CompetencyRecord, error) {
	return nil, nil
}

type fixtureTeams struct{ f *eligFixture }

func (t fixtureTeams) GetTeamMeta(_ context.Context, teamID string) (competencyports.TeamMeta, error) {
	meta, ok := t.f.teams[teamID]
	if !ok {
		return competencyports.TeamMeta{}, httperr.NewNotFound("team not found")
	}
	return meta, nil
}

type fixtureZones struct{ f *eligFixture }

func (z fixtureZones) Upsert(context.Context, string, string) error { return nil }
func (z fixtureZones) Delete(context.Context, string, string) error { return nil }
func (z fixtureZones) Exists(_ context.Context, teamID string, buildingID string) (bool, error) {
	return z.f.zones[teamID][buildingID], nil
}
func (z fixtureZones) ListByTeam(context.Context, string) ([]competencytypes.TeamZone, error) {
	return nil, nil
}
func (z fixtureZones) ListByBuilding(context.Context, string) ([]competencytypes.TeamZone, error) {
	return nil, nil
}

type fixtureSkills struct{ f *eligFixture }

func (s fixtureSkills) Upsert(context.Context, string, string) error { return nil }
func (s fixtureSkills) Delete(context.Context, string, string) error { return nil }
func (s fixtureSkills) HasSkill(_ context.Context, teamID string, skillID string) (bool, error) {
	return s.f.skills[teamID][skillID], nil
}
func (s fixtureSkills) ListByTeam(context.Context, string) ([]competencytypes.TeamSkill, error) {
	return nil, nil
}
func (s fixtureSkills) ListTeamsBySkill(context.Context, string) ([]competencytypes.TeamSkill, error) {
	return nil, nil
}

type fixtureTaxonomy struct{ f *eligFixture }

func (t fixtureTaxonomy) RequiredSkillsForCategory(_ context.Context, categoryID string) ([]string, error) {
	return t.f.required[categoryID], nil
}

// newEligFixture builds the standard scene: three active teams under one
// contract version, all zoned to building b1, category hvac requiring one
// skill held by t1 and t2.
func newEligFixture() *eligFixture {
	return &eligFixture{
		rows: []competencytypes.CompetencyRecord{
			{ID: "r1", ContractVersionID: "cv1", TeamID: "t1", CategoryID: "hvac", Level: competencytypes.LevelPrimary, Window: competencytypes.WindowBusinessHours},
			{ID: "r2", ContractVersionID: "cv1", TeamID: "t2", CategoryID: "hvac", Level: competencytypes.LevelPrimary, Window: competencytypes.WindowAfterHours},
			{ID: "r3", ContractVersionID: "cv1", TeamID: "t3", CategoryID: "hvac", Level: competencytypes.LevelBackup, Window: competencytypes.WindowAny},
		},
		teams: map[string]competencyports.TeamMeta{
			"t1": {CompanyID: "c1", Active: true},
			"t2": {CompanyID: "c1", Active: true},
			"t3": {CompanyID: "c1", Active: true},
		},
		zones: map[string]map[string]bool{
			"t1": {"b1": true},
			"t2": {"b1": true},
			"t3": {"b1": true},
		},
		skills: map[string]map[string]bool{
			"t1": {"refrigerant-handling": true},
			"t2": {"refrigerant-handling": true},
		},
		required: map[string][]string{
			"hvac": {"refrigerant-handling"},
		},
	}
}

func teamIDs(candidates []types.EligibleTeam) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.TeamID)
	}
	return out
}

func assertTeams(t *testing.T, got []types.EligibleTeam, want ...string) {
	t.Helper()
	ids := teamIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("teams = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("teams = %v, want %v", ids, want)
		}
	}
}

func businessHoursQuery() EligibilityQuery {
	return EligibilityQuery{
		ContractVersionID: "cv1",
		CategoryID:        "hvac",
		BuildingID:        "b1",
		Window:            competencytypes.WindowBusinessHours,
	}
}

func TestEligibleTeamsBusinessHours(t *testing.T) {
	f := newEligFixture()
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t1", "t3")
}

func TestEligibleTeamsWindowFallback(t *testing.T) {
	f := newEligFixture()
	q := businessHoursQuery()
	q.Window = competencytypes.WindowAfterHours
	got, err := f.resolver().EligibleTeams(context.Background(), q)
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	// t1 is business_hours only; t3's any row covers both windows
	assertTeams(t, got, "t2", "t3")
}

func TestEligibleTeamsBuildingSpecificExclusive(t *testing.T) {
	f := newEligFixture()
	f.rows = append(f.rows, competencytypes.CompetencyRecord{
		ID: "r4", ContractVersionID: "cv1", TeamID: "t1", CategoryID: "hvac",
		BuildingID: "b1", Level: competencytypes.LevelPrimary, Window: competencytypes.WindowBusinessHours,
	})
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	// the building-specific tier replaces the generic rows entirely
	assertTeams(t, got, "t1")
}

func TestEligibleTeamsNoBuildingUsesGenericOnly(t *testing.T) {
	f := newEligFixture()
	f.rows = append(f.rows, competencytypes.CompetencyRecord{
		ID: "r4", ContractVersionID: "cv1", TeamID: "t9", CategoryID: "hvac",
		BuildingID: "b9", Level: competencytypes.LevelPrimary, Window: competencytypes.WindowBusinessHours,
	})
	q := businessHoursQuery()
	q.BuildingID = ""
	got, err := f.resolver().EligibleTeams(context.Background(), q)
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t1", "t3")
}

func TestEligibleTeamsInactiveExcluded(t *testing.T) {
	f := newEligFixture()
	f.teams["t1"] = competencyports.TeamMeta{CompanyID: "c1", Active: false}
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t3")
}

func TestEligibleTeamsUnknownTeamExcluded(t *testing.T) {
	f := newEligFixture()
	delete(f.teams, "t1")
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t3")
}

func TestEligibleTeamsZoneFilter(t *testing.T) {
	f := newEligFixture()
	f.zones["t1"] = nil
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t3")
}

func TestEligibleTeamsSkillGatePrimaryOnly(t *testing.T) {
	f := newEligFixture()
	f.skills["t1"] = nil
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	// t1's primary row is gated out; t3's backup row is never skill-gated
	assertTeams(t, got, "t3")

	f.skills["t1"] = map[string]bool{"refrigerant-handling": true}
	got, err = f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams after skill grant: %v", err)
	}
	assertTeams(t, got, "t1", "t3")
}

func TestEligibleTeamsDedupesAcrossRows(t *testing.T) {
	f := newEligFixture()
	f.rows = append(f.rows, competencytypes.CompetencyRecord{
		ID: "r4", ContractVersionID: "cv1", TeamID: "t1", CategoryID: "hvac",
		Level: competencytypes.LevelBackup, Window: competencytypes.WindowAny,
	})
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t1", "t3")
	if got[0].Level != competencytypes.LevelPrimary {
		t.Fatalf("t1 level = %s, want primary kept over backup", got[0].Level)
	}
}

func TestEligibleTeamsLexicographicWithinLevel(t *testing.T) {
	f := newEligFixture()
	f.rows = append(f.rows, competencytypes.CompetencyRecord{
		ID: "r4", ContractVersionID: "cv1", TeamID: "t0", CategoryID: "hvac",
		Level: competencytypes.LevelPrimary, Window: competencytypes.WindowBusinessHours,
	})
	f.teams["t0"] = competencyports.TeamMeta{CompanyID: "c1", Active: true}
	f.zones["t0"] = map[string]bool{"b1": true}
	f.skills["t0"] = map[string]bool{"refrigerant-handling": true}
	got, err := f.resolver().EligibleTeams(context.Background(), businessHoursQuery())
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	assertTeams(t, got, "t0", "t1", "t3")
}

func TestEligibleTeamsPreferLevelOrdering(t *testing.T) {
	f := newEligFixture()
	for _, tc := range []struct {
		prefer PreferLevel
		want   []string
	}{
		{PreferPrimary, []string{"t1", "t3"}},
		{PreferAny, []string{"t1", "t3"}},
		{PreferBackup, []string{"t3", "t1"}},
	} {
		q := businessHoursQuery()
		q.PreferLevel = tc.prefer
		got, err := f.resolver().EligibleTeams(context.Background(), q)
		if err != nil {
			t.Fatalf("EligibleTeams(%s): %v", tc.prefer, err)
		}
		assertTeams(t, got, tc.want...)
	}
}

func TestEligibleTeamsEmptyResultNotError(t *testing.T) {
	f := newEligFixture()
	q := businessHoursQuery()
	q.CategoryID = "landscaping"
	got, err := f.resolver().EligibleTeams(context.Background(), q)
	if err != nil {
		t.Fatalf("EligibleTeams: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("teams = %v, want empty", teamIDs(got))
	}
}

func TestEligibleTeamsValidation(t *testing.T) {
	f := newEligFixture()
	for name, mutate := range map[string]func(*EligibilityQuery){
		"missing contract version": func(q *EligibilityQuery) { q.ContractVersionID = "" },
		"missing category":         func(q *EligibilityQuery) { q.CategoryID = "" },
		"wildcard window":          func(q *EligibilityQuery) { q.Window = competencytypes.WindowAny },
		"bad prefer level":         func(q *EligibilityQuery) { q.PreferLevel = "strongest" },
	} {
		q := businessHoursQuery()
		mutate(&q)
		if _, err := f.resolver().EligibleTeams(context.Background(), q); !httperr.IsBadRequest(err) {
			t.Fatalf("%s: err = %v, want bad request", name, err)
		}
	}
}
