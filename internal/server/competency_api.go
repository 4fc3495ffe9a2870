package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborworks/facilitydesk/internal/routing"
	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	competencyservices "github.com/harborworks/facilitydesk/modules/competency/services"
	scopeservices "github.com/harborworks/facilitydesk/modules/scope/services"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

// competencyAPIDeps bundles the directory with the lookups the handlers
// need to gate writes on the actor's company scope.
type competencyAPIDeps struct {
	directory *competencyservices.Directory
	teams     competencyports.TeamQuery
	contracts competencyports.ContractQuery
	authority *scopeservices.ScopeAuthority
}

func (d competencyAPIDeps) requireTeamScope(ctx context.Context, actorUserID string, teamID string) error {
	meta, err := d.teams.GetTeamMeta(ctx, teamID)
	if err != nil {
		return err
	}
	allowed, err := d.authority.CanAccessCompany(ctx, actorUserID, meta.CompanyID)
	if err != nil {
		return err
	}
	if !allowed {
		return httperr.NewForbidden("actor lacks scope over team company")
	}
	return nil
}

func (d competencyAPIDeps) requireContractScope(ctx context.Context, actorUserID string, contractVersionID string) error {
	version, ok, err := d.contracts.GetContractVersion(ctx, contractVersionID)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.NewNotFound("contract version not found")
	}
	allowed, err := d.authority.CanAccessCompany(ctx, actorUserID, version.CompanyID)
	if err != nil {
		return err
	}
	if !allowed {
		return httperr.NewForbidden("actor lacks scope over contract version company")
	}
	return nil
}

type competencyListResponse struct {
	Competencies []competencytypes.CompetencyRecord `json:"competencies"`
}

type competencyUpsertPayload struct {
	ContractVersionID string `json:"contract_version_id"`
	TeamID            string `json:"team_id"`
	CategoryID        string `json:"category_id"`
	BuildingID        string `json:"building_id"`
	Level             string `json:"level"`
	Window            string `json:"window"`
}

type competencyDeletePayload struct {
	ContractVersionID string `json:"contract_version_id"`
	TeamID            string `json:"team_id"`
	CategoryID        string `json:"category_id"`
	BuildingID        string `json:"building_id"`
	Window            string `json:"window"`
}

func handleCompetenciesAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	switch r.Method {
	case http.MethodGet:
		handleCompetenciesListAPI(w, r, deps)
	case http.MethodPost:
		handleCompetenciesUpsertAPI(w, r, deps)
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleCompetenciesListAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	q := r.URL.Query()
	contractVersionID := strings.TrimSpace(q.Get("contract_version_id"))
	teamID := strings.TrimSpace(q.Get("team_id"))

	var (
		rows []competencytypes.CompetencyRecord
		err  error
	)
	switch {
	case contractVersionID != "":
		rows, err = deps.directory.ListByContractVersion(r.Context(), contractVersionID)
	case teamID != "":
		rows, err = deps.directory.ListByTeam(r.Context(), teamID)
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "selector_required", "contract_version_id or team_id required")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, competencyListResponse{Competencies: rows})
}

func handleCompetenciesUpsertAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req competencyUpsertPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ContractVersionID = strings.TrimSpace(req.ContractVersionID)
	if req.ContractVersionID == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "contract_version_id_required", "contract_version_id required")
		return
	}
	if err := deps.requireContractScope(r.Context(), actor.ID, req.ContractVersionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	record, err := deps.directory.UpsertCompetency(r.Context(), competencyservices.UpsertCompetencyRequest{
		ContractVersionID: req.ContractVersionID,
		TeamID:            req.TeamID,
		CategoryID:        req.CategoryID,
		BuildingID:        req.BuildingID,
		Level:             req.Level,
		Window:            req.Window,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func handleCompetencyDeleteAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req competencyDeletePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ContractVersionID = strings.TrimSpace(req.ContractVersionID)
	if req.ContractVersionID == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "contract_version_id_required", "contract_version_id required")
		return
	}
	if err := deps.requireContractScope(r.Context(), actor.ID, req.ContractVersionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	key := competencytypes.CompetencyKey{
		ContractVersionID: req.ContractVersionID,
		TeamID:            strings.TrimSpace(req.TeamID),
		CategoryID:        strings.TrimSpace(req.CategoryID),
		BuildingID:        strings.TrimSpace(req.BuildingID),
		Window:            competencytypes.TimeWindow(strings.TrimSpace(req.Window)),
	}
	if err := deps.directory.DeleteCompetency(r.Context(), key); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type teamZonePayload struct {
	TeamID     string `json:"team_id"`
	BuildingID string `json:"building_id"`
}

type teamZoneListResponse struct {
	Zones []competencytypes.TeamZone `json:"zones"`
}

func handleTeamZonesAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	switch r.Method {
	case http.MethodGet:
		teamID := strings.TrimSpace(r.URL.Query().Get("team_id"))
		if teamID == "" {
			routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
			return
		}
		zones, err := deps.directory.ListZonesByTeam(r.Context(), teamID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teamZoneListResponse{Zones: zones})
	case http.MethodPost:
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		var req teamZonePayload
		if !decodeJSON(w, r, &req) {
			return
		}
		req.TeamID = strings.TrimSpace(req.TeamID)
		if req.TeamID == "" {
			routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
			return
		}
		if err := deps.requireTeamScope(r.Context(), actor.ID, req.TeamID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := deps.directory.GrantZone(r.Context(), req.TeamID, strings.TrimSpace(req.BuildingID)); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"granted": true})
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleTeamZoneDeleteAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req teamZonePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TeamID = strings.TrimSpace(req.TeamID)
	if req.TeamID == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
		return
	}
	if err := deps.requireTeamScope(r.Context(), actor.ID, req.TeamID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := deps.directory.RevokeZone(r.Context(), req.TeamID, strings.TrimSpace(req.BuildingID)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

type teamSkillPayload struct {
	TeamID  string `json:"team_id"`
	SkillID string `json:"skill_id"`
}

type teamSkillListResponse struct {
	Skills []competencytypes.TeamSkill `json:"skills"`
}

func handleTeamSkillsAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	switch r.Method {
	case http.MethodGet:
		teamID := strings.TrimSpace(r.URL.Query().Get("team_id"))
		if teamID == "" {
			routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
			return
		}
		skills, err := deps.directory.ListSkillsByTeam(r.Context(), teamID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teamSkillListResponse{Skills: skills})
	case http.MethodPost:
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		var req teamSkillPayload
		if !decodeJSON(w, r, &req) {
			return
		}
		req.TeamID = strings.TrimSpace(req.TeamID)
		if req.TeamID == "" {
			routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
			return
		}
		if err := deps.requireTeamScope(r.Context(), actor.ID, req.TeamID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := deps.directory.GrantSkill(r.Context(), req.TeamID, strings.TrimSpace(req.SkillID)); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"granted": true})
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleTeamSkillDeleteAPI(w http.ResponseWriter, r *http.Request, deps competencyAPIDeps) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req teamSkillPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TeamID = strings.TrimSpace(req.TeamID)
	if req.TeamID == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "team_id_required", "team_id required")
		return
	}
	if err := deps.requireTeamScope(r.Context(), actor.ID, req.TeamID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := deps.directory.RevokeSkill(r.Context(), req.TeamID, strings.TrimSpace(req.SkillID)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}
