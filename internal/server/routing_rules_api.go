package server

import (
	"net/http"
	"strings"

	"github.com/harborworks/facilitydesk/internal/routing"
	dispatchtypes "github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	dispatchservices "github.com/harborworks/facilitydesk/modules/dispatch/services"
)

type routingRuleListResponse struct {
	Rules []dispatchtypes.RoutingRule `json:"rules"`
}

type routingRuleCreatePayload struct {
	ContractVersionID string                      `json:"contract_version_id"`
	Priority          int                         `json:"priority"`
	Condition         dispatchtypes.RuleCondition `json:"condition"`
	Action            dispatchtypes.RuleAction    `json:"action"`
}

type routingRuleDeletePayload struct {
	ID string `json:"id"`
}

func handleRoutingRulesAPI(w http.ResponseWriter, r *http.Request, svc *dispatchservices.RuleAdminService) {
	switch r.Method {
	case http.MethodGet:
		handleRoutingRulesListAPI(w, r, svc)
	case http.MethodPost:
		handleRoutingRulesCreateAPI(w, r, svc)
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleRoutingRulesListAPI(w http.ResponseWriter, r *http.Request, svc *dispatchservices.RuleAdminService) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	contractVersionID := strings.TrimSpace(r.URL.Query().Get("contract_version_id"))
	rules, err := svc.List(r.Context(), actor.ID, contractVersionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routingRuleListResponse{Rules: rules})
}

func handleRoutingRulesCreateAPI(w http.ResponseWriter, r *http.Request, svc *dispatchservices.RuleAdminService) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req routingRuleCreatePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := svc.Create(r.Context(), actor.ID, dispatchservices.CreateRuleRequest{
		ContractVersionID: strings.TrimSpace(req.ContractVersionID),
		Priority:          req.Priority,
		Condition:         req.Condition,
		Action:            req.Action,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func handleRoutingRuleUpdateAPI(w http.ResponseWriter, r *http.Request, svc *dispatchservices.RuleAdminService) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dispatchtypes.RoutingRule
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := svc.Update(r.Context(), actor.ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func handleRoutingRuleDeleteAPI(w http.ResponseWriter, r *http.Request, svc *dispatchservices.RuleAdminService) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req routingRuleDeletePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := svc.Delete(r.Context(), actor.ID, strings.TrimSpace(req.ID)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
