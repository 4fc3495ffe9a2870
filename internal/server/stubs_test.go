package server

import (
	"context"
	"sort"
	"strconv"
	"strings"

	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	dispatchtypes "github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	scopetypes "github.com/harborworks/facilitydesk/modules/scope/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

// memScopeStore is an in-memory ScopeStore for handler tests.
type memScopeStore struct {
	grants    map[string]scopetypes.ScopeGrant
	sites     map[string]scopetypes.Site
	buildings map[string]scopetypes.Building
	nextID    int
}

func newMemScopeStore() *memScopeStore {
	return &memScopeStore{
		grants:    map[string]scopetypes.ScopeGrant{},
		sites:     map[string]scopetypes.Site{},
		buildings: map[string]scopetypes.Building{},
	}
}

func (s *memScopeStore) ListBySubject(_ context.Context, subjectUserID string) ([]scopetypes.ScopeGrant, error) {
	var out []scopetypes.ScopeGrant
	for _, g := range s.grants {
		if g.SubjectUserID == subjectUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memScopeStore) Insert(_ context.Context, grant scopetypes.ScopeGrant) (scopetypes.ScopeGrant, error) {
	if grant.ID == "" {
		s.nextID++
		grant.ID = "grant-" + strconv.Itoa(s.nextID)
	}
	s.grants[grant.ID] = grant
	return grant, nil
}

func (s *memScopeStore) Delete(_ context.Context, grantID string) error {
	if _, ok := s.grants[grantID]; !ok {
		return httperr.NewNotFound("scope grant not found")
	}
	delete(s.grants, grantID)
	return nil
}

func (s *memScopeStore) GetSite(_ context.Context, siteID string) (scopetypes.Site, bool, error) {
	site, ok := s.sites[siteID]
	return site, ok, nil
}

func (s *memScopeStore) GetBuilding(_ context.Context, buildingID string) (scopetypes.Building, bool, error) {
	b, ok := s.buildings[buildingID]
	return b, ok, nil
}

type memReferenceStore struct {
	teams         map[string]competencyports.TeamMeta
	skillsByCat   map[string][]string
	versions      map[string]competencyports.ContractVersion
	activeForSite map[string]competencyports.ContractVersion
	included      map[string]bool
}

func newMemReferenceStore() *memReferenceStore {
	return &memReferenceStore{
		teams:         map[string]competencyports.TeamMeta{},
		skillsByCat:   map[string][]string{},
		versions:      map[string]competencyports.ContractVersion{},
		activeForSite: map[string]competencyports.ContractVersion{},
		included:      map[string]bool{},
	}
}

func (s *memReferenceStore) GetTeamMeta(_ context.Context, teamID string) (competencyports.TeamMeta, error) {
	meta, ok := s.teams[teamID]
	if !ok {
		return competencyports.TeamMeta{}, httperr.NewNotFound("team not found")
	}
	return meta, nil
}

func (s *memReferenceStore) RequiredSkillsForCategory(_ context.Context, categoryID string) ([]string, error) {
	return s.skillsByCat[categoryID], nil
}

func (s *memReferenceStore) GetContractVersion(_ context.Context, id string) (competencyports.ContractVersion, bool, error) {
	cv, ok := s.versions[id]
	return cv, ok, nil
}

func (s *memReferenceStore) ActiveVersionForSite(_ context.Context, siteID string) (competencyports.ContractVersion, bool, error) {
	cv, ok := s.activeForSite[siteID]
	return cv, ok, nil
}

func (s *memReferenceStore) IsCategoryIncluded(_ context.Context, contractVersionID string, categoryID string) (bool, error) {
	included, ok := s.included[contractVersionID+"/"+categoryID]
	if !ok {
		return true, nil
	}
	return included, nil
}

type memZoneStore struct {
	zones map[string]bool
}

func newMemZoneStore() *memZoneStore {
	return &memZoneStore{zones: map[string]bool{}}
}

func zoneKey(teamID, buildingID string) string { return teamID + "/" + buildingID }

func (s *memZoneStore) Upsert(_ context.Context, teamID string, buildingID string) error {
	s.zones[zoneKey(teamID, buildingID)] = true
	return nil
}

func (s *memZoneStore) Delete(_ context.Context, teamID string, buildingID string) error {
	if !s.zones[zoneKey(teamID, buildingID)] {
		return httperr.NewNotFound("team zone not found")
	}
	delete(s.zones, zoneKey(teamID, buildingID))
	return nil
}

func (s *memZoneStore) Exists(_ context.Context, teamID string, buildingID string) (bool, error) {
	return s.zones[zoneKey(teamID, buildingID)], nil
}

func (s *memZoneStore) ListByTeam(_ context.Context, teamID string) ([]competencytypes.TeamZone, error) {
	var out []competencytypes.TeamZone
	for k := range s.zones {
		team, building, _ := strings.Cut(k, "/")
		if team == teamID {
			out = append(out, competencytypes.TeamZone{TeamID: team, BuildingID: building})
		}
	}
	return out, nil
}

func (s *memZoneStore) ListByBuilding(_ context.Context, buildingID string) ([]competencytypes.TeamZone, error) {
	var out []competencytypes.TeamZone
	for k := range s.zones {
		team, building, _ := strings.Cut(k, "/")
		if building == buildingID {
			out = append(out, competencytypes.TeamZone{TeamID: team, BuildingID: building})
		}
	}
	return out, nil
}

type memSkillStore struct {
	skills map[string]bool
}

func newMemSkillStore() *memSkillStore {
	return &memSkillStore{skills: map[string]bool{}}
}

func (s *memSkillStore) Upsert(_ context.Context, teamID string, skillID string) error {
	s.skills[teamID+"/"+skillID] = true
	return nil
}

func (s *memSkillStore) Delete(_ context.Context, teamID string, skillID string) error {
	if !s.skills[teamID+"/"+skillID] {
		return httperr.NewNotFound("team skill not found")
	}
	delete(s.skills, teamID+"/"+skillID)
	return nil
}

func (s *memSkillStore) HasSkill(_ context.Context, teamID string, skillID string) (bool, error) {
	return s.skills[teamID+"/"+skillID], nil
}

func (s *memSkillStore) ListByTeam(_ context.Context, teamID string) ([]competencytypes.TeamSkill, error) {
	var out []competencytypes.TeamSkill
	for k := range s.skills {
		team, skill, _ := strings.Cut(k, "/")
		if team == teamID {
			out = append(out, competencytypes.TeamSkill{TeamID: team, SkillID: skill})
		}
	}
	return out, nil
}

func (s *memSkillStore) ListTeamsBySkill(_ context.Context, skillID string) ([]competencytypes.TeamSkill, error) {
	var out []competencytypes.TeamSkill
	for k := range s.skills {
		team, skill, _ := strings.Cut(k, "/")
		if skill == skillID {
			out = append(out, competencytypes.TeamSkill{TeamID: team, SkillID: skill})
		}
	}
	return out, nil
}

type memMatrixStore struct {
	records map[competencytypes.CompetencyKey]competencytypes.CompetencyRecord
}

func newMemMatrixStore() *memMatrixStore {
	return &memMatrixStore{records: map[competencytypes.CompetencyKey]competencytypes.CompetencyRecord{}}
}

func (s *memMatrixStore) Upsert(_ context.Context, record competencytypes.CompetencyRecord) (competencytypes.CompetencyRecord, error) {
	key := record.Key()
	if existing, ok := s.records[key]; ok {
		existing.Level = record.Level
		s.records[key] = existing
		return existing, nil
	}
	s.records[key] = record
	return record, nil
}

func (s *memMatrixStore) DeleteByKey(_ context.Context, key competencytypes.CompetencyKey) error {
	if _, ok := s.records[key]; !ok {
		return httperr.NewNotFound("competency not found")
	}
	delete(s.records, key)
	return nil
}

func (s *memMatrixStore) Find(_ context.Context, key competencytypes.CompetencyKey) (competencytypes.CompetencyRecord, bool, error) {
	r, ok := s.records[key]
	return r, ok, nil
}

func (s *memMatrixStore) ListByContractVersion(_ context.Context, contractVersionID string) ([]competencytypes.CompetencyRecord, error) {
	var out []competencytypes.CompetencyRecord
	for _, r := range s.records {
		if r.ContractVersionID == contractVersionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memMatrixStore) ListByContractVersionAndCategory(_ context.Context, contractVersionID string, categoryID string) ([]competencytypes.CompetencyRecord, error) {
	var out []competencytypes.CompetencyRecord
	for _, r := range s.records {
		if r.ContractVersionID == contractVersionID && r.CategoryID == categoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memMatrixStore) ListByTeam(_ context.Context, teamID string) ([]competencytypes.CompetencyRecord, error) {
	var out []competencytypes.CompetencyRecord
	for _, r := range s.records {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memMatrixStore) ListByCategory(_ context.Context, categoryID string) ([]competencytypes.CompetencyRecord, error) {
	var out []competencytypes.CompetencyRecord
	for _, r := range s.records {
		if r.CategoryID == categoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memRuleStore struct {
	rules map[string]dispatchtypes.RoutingRule
}

func newMemRuleStore() *memRuleStore {
	return &memRuleStore{rules: map[string]dispatchtypes.RoutingRule{}}
}

func (s *memRuleStore) ListByContractVersion(_ context.Context, contractVersionID string) ([]dispatchtypes.RoutingRule, error) {
	var out []dispatchtypes.RoutingRule
	for _, r := range s.rules {
		if r.ContractVersionID == contractVersionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memRuleStore) Get(_ context.Context, ruleID string) (dispatchtypes.RoutingRule, bool, error) {
	r, ok := s.rules[ruleID]
	return r, ok, nil
}

func (s *memRuleStore) Insert(_ context.Context, rule dispatchtypes.RoutingRule) error {
	s.rules[rule.ID] = rule
	return nil
}

func (s *memRuleStore) Update(_ context.Context, rule dispatchtypes.RoutingRule) error {
	if _, ok := s.rules[rule.ID]; !ok {
		return httperr.NewNotFound("routing rule not found")
	}
	s.rules[rule.ID] = rule
	return nil
}

func (s *memRuleStore) Delete(_ context.Context, ruleID string) error {
	if _, ok := s.rules[ruleID]; !ok {
		return httperr.NewNotFound("routing rule not found")
	}
	delete(s.rules, ruleID)
	return nil
}

type memPlacementStore struct {
	locations map[string]dispatchtypes.Location
	assets    map[string]dispatchtypes.Asset
	load      map[string]int
}

func newMemPlacementStore() *memPlacementStore {
	return &memPlacementStore{
		locations: map[string]dispatchtypes.Location{},
		assets:    map[string]dispatchtypes.Asset{},
		load:      map[string]int{},
	}
}

func (s *memPlacementStore) GetLocation(_ context.Context, locationID string) (dispatchtypes.Location, bool, error) {
	l, ok := s.locations[locationID]
	return l, ok, nil
}

func (s *memPlacementStore) GetAsset(_ context.Context, assetID string) (dispatchtypes.Asset, bool, error) {
	a, ok := s.assets[assetID]
	return a, ok, nil
}

func (s *memPlacementStore) CurrentOpenLoad(_ context.Context, teamID string) (int, error) {
	return s.load[teamID], nil
}
