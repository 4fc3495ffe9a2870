package server

import (
	"net/http"
	"strings"

	"github.com/harborworks/facilitydesk/internal/routing"
	scopetypes "github.com/harborworks/facilitydesk/modules/scope/domain/types"
	scopeservices "github.com/harborworks/facilitydesk/modules/scope/services"
)

type scopeGrantListResponse struct {
	Grants []scopetypes.ScopeGrant `json:"grants"`
}

type scopeGrantCreatePayload struct {
	SubjectUserID string `json:"subject_user_id"`
	ScopeType     string `json:"scope_type"`
	CompanyID     string `json:"company_id"`
	SiteID        string `json:"site_id"`
	BuildingID    string `json:"building_id"`
}

type scopeGrantDeletePayload struct {
	ID string `json:"id"`
}

func handleScopeGrantsAPI(w http.ResponseWriter, r *http.Request, svc scopeservices.GrantAdminService) {
	switch r.Method {
	case http.MethodGet:
		handleScopeGrantsListAPI(w, r, svc)
	case http.MethodPost:
		handleScopeGrantsCreateAPI(w, r, svc)
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleScopeGrantsListAPI(w http.ResponseWriter, r *http.Request, svc scopeservices.GrantAdminService) {
	subject := strings.TrimSpace(r.URL.Query().Get("subject_user_id"))
	if subject == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "subject_user_id_required", "subject_user_id required")
		return
	}
	grants, err := svc.ListBySubject(r.Context(), subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeGrantListResponse{Grants: grants})
}

func handleScopeGrantsCreateAPI(w http.ResponseWriter, r *http.Request, svc scopeservices.GrantAdminService) {
	var req scopeGrantCreatePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	grant, err := svc.Create(r.Context(), scopeservices.CreateGrantRequest{
		SubjectUserID: req.SubjectUserID,
		ScopeType:     req.ScopeType,
		CompanyID:     req.CompanyID,
		SiteID:        req.SiteID,
		BuildingID:    req.BuildingID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func handleScopeGrantDeleteAPI(w http.ResponseWriter, r *http.Request, svc scopeservices.GrantAdminService) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req scopeGrantDeletePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := svc.Delete(r.Context(), strings.TrimSpace(req.ID)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type accessCheckResponse struct {
	SubjectUserID string `json:"subject_user_id"`
	Allowed       bool   `json:"allowed"`
}

// handleAccessChecksAPI answers one scope question per call. Exactly one of
// company_id, site_id, building_id selects the resource being checked.
func handleAccessChecksAPI(w http.ResponseWriter, r *http.Request, authority *scopeservices.ScopeAuthority) {
	if r.Method != http.MethodGet {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	q := r.URL.Query()
	subject := strings.TrimSpace(q.Get("subject_user_id"))
	if subject == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "subject_user_id_required", "subject_user_id required")
		return
	}
	companyID := strings.TrimSpace(q.Get("company_id"))
	siteID := strings.TrimSpace(q.Get("site_id"))
	buildingID := strings.TrimSpace(q.Get("building_id"))

	populated := 0
	for _, v := range []string{companyID, siteID, buildingID} {
		if v != "" {
			populated++
		}
	}
	if populated != 1 {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "resource_param_required", "exactly one of company_id, site_id, building_id required")
		return
	}

	var (
		allowed bool
		err     error
	)
	switch {
	case companyID != "":
		allowed, err = authority.CanAccessCompany(r.Context(), subject, companyID)
	case siteID != "":
		allowed, err = authority.CanAccessSite(r.Context(), subject, siteID)
	default:
		allowed, err = authority.CanAccessBuilding(r.Context(), subject, buildingID)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accessCheckResponse{SubjectUserID: subject, Allowed: allowed})
}
