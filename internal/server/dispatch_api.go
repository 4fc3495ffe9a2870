package server

import (
	"net/http"
	"strings"

	"github.com/harborworks/facilitydesk/internal/routing"
	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	dispatchtypes "github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	dispatchservices "github.com/harborworks/facilitydesk/modules/dispatch/services"
)

type eligibleTeamsResponse struct {
	Teams []dispatchtypes.EligibleTeam `json:"teams"`
}

func handleEligibleTeamsAPI(w http.ResponseWriter, r *http.Request, resolver *dispatchservices.EligibilityResolver) {
	if r.Method != http.MethodGet {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	q := r.URL.Query()
	teams, err := resolver.EligibleTeams(r.Context(), dispatchservices.EligibilityQuery{
		ContractVersionID: strings.TrimSpace(q.Get("contract_version_id")),
		CategoryID:        strings.TrimSpace(q.Get("category_id")),
		BuildingID:        strings.TrimSpace(q.Get("building_id")),
		Window:            competencytypes.TimeWindow(strings.TrimSpace(q.Get("window"))),
		PreferLevel:       dispatchservices.PreferLevel(strings.TrimSpace(q.Get("prefer_level"))),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibleTeamsResponse{Teams: teams})
}

func handleTicketRouteAPI(w http.ResponseWriter, r *http.Request, coordinator *dispatchservices.Coordinator) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var ticket dispatchtypes.TicketContext
	if !decodeJSON(w, r, &ticket) {
		return
	}
	outcome, err := coordinator.Route(r.Context(), ticket)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
