package server

import (
	"encoding/json"
	"net/http"

	"github.com/harborworks/facilitydesk/internal/routing"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusBadRequest, "bad_json", "bad json")
		return false
	}
	return true
}

// writeServiceError translates the service error taxonomy to the wire.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case httperr.IsBadRequest(err):
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusUnprocessableEntity, "invalid_input", err.Error())
	case httperr.IsForbidden(err):
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusForbidden, "forbidden", err.Error())
	case httperr.IsNotFound(err):
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusNotFound, "not_found", err.Error())
	case httperr.IsConflict(err):
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusConflict, "conflict", err.Error())
	default:
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// requireActor resolves the acting principal or ends the request with 401.
func requireActor(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, ok := currentPrincipal(r.Context())
	if !ok || p.ID == "" {
		routing.WriteError(w, r, routing.RouteClassModuleAPI, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return Principal{}, false
	}
	return p, true
}
