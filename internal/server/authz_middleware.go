package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/harborworks/facilitydesk/internal/routing"
	"github.com/harborworks/facilitydesk/pkg/authz"
)

func loadAuthorizer() (*authz.Authorizer, error) {
	modelPath := os.Getenv("AUTHZ_MODEL_PATH")
	if modelPath == "" {
		p, err := defaultAuthzModelPath()
		if err != nil {
			return nil, err
		}
		modelPath = p
	}

	policyPath := os.Getenv("AUTHZ_POLICY_PATH")
	if policyPath == "" {
		p, err := defaultAuthzPolicyPath()
		if err != nil {
			return nil, err
		}
		policyPath = p
	}

	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}

	return authz.NewAuthorizer(modelPath, policyPath, mode)
}

func defaultAuthzModelPath() (string, error) {
	path := "config/access/model.conf"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: authz model not found")
}

func defaultAuthzPolicyPath() (string, error) {
	path := "config/access/policy.csv"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: authz policy not found")
}

type authorizer interface {
	Authorize(subject string, domain string, object string, action string) (allowed bool, enforced bool, err error)
}

func withAuthz(classifier *routing.Classifier, a authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		rc := routing.RouteClassOps
		if classifier != nil {
			rc = classifier.Classify(path)
		}

		if path == "/health" || path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		tenant, ok := currentTenant(r.Context())
		if !ok {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "tenant_missing", "tenant missing")
			return
		}

		roleSlug := authz.RoleAnonymous
		if p, ok := currentPrincipal(r.Context()); ok {
			roleSlug = p.RoleSlug
		}

		subject := authz.SubjectFromRoleSlug(roleSlug)
		domain := authz.DomainFromTenantID(tenant.ID)

		object, action, shouldCheck := authzRequirementForRoute(r.Method, path)
		if !shouldCheck {
			next.ServeHTTP(w, r)
			return
		}

		allowed, enforced, err := a.Authorize(subject, domain, object, action)
		if err != nil {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if enforced && !allowed {
			routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	switch path {
	case "/org/api/scope-grants":
		if method == http.MethodGet {
			return authz.ObjectScopeGrants, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectScopeGrants, authz.ActionAdmin, true
		}
		return "", "", false
	case "/org/api/scope-grants:delete":
		if method == http.MethodPost {
			return authz.ObjectScopeGrants, authz.ActionAdmin, true
		}
		return "", "", false
	case "/org/api/access-checks":
		if method == http.MethodGet {
			return authz.ObjectScopeAccessChecks, authz.ActionRead, true
		}
		return "", "", false
	case "/contract/api/competencies":
		if method == http.MethodGet {
			return authz.ObjectContractCompetencies, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectContractCompetencies, authz.ActionAdmin, true
		}
		return "", "", false
	case "/contract/api/competencies:delete":
		if method == http.MethodPost {
			return authz.ObjectContractCompetencies, authz.ActionAdmin, true
		}
		return "", "", false
	case "/contract/api/team-zones":
		if method == http.MethodGet {
			return authz.ObjectContractTeamZones, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectContractTeamZones, authz.ActionAdmin, true
		}
		return "", "", false
	case "/contract/api/team-zones:delete":
		if method == http.MethodPost {
			return authz.ObjectContractTeamZones, authz.ActionAdmin, true
		}
		return "", "", false
	case "/contract/api/team-skills":
		if method == http.MethodGet {
			return authz.ObjectContractTeamSkills, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectContractTeamSkills, authz.ActionAdmin, true
		}
		return "", "", false
	case "/contract/api/team-skills:delete":
		if method == http.MethodPost {
			return authz.ObjectContractTeamSkills, authz.ActionAdmin, true
		}
		return "", "", false
	case "/ops/api/routing-rules":
		if method == http.MethodGet {
			return authz.ObjectOpsRoutingRules, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectOpsRoutingRules, authz.ActionAdmin, true
		}
		return "", "", false
	case "/ops/api/routing-rules:update", "/ops/api/routing-rules:delete":
		if method == http.MethodPost {
			return authz.ObjectOpsRoutingRules, authz.ActionAdmin, true
		}
		return "", "", false
	case "/ops/api/eligible-teams":
		if method == http.MethodGet {
			return authz.ObjectOpsEligibleTeams, authz.ActionRead, true
		}
		return "", "", false
	case "/ops/api/tickets:route":
		if method == http.MethodPost {
			return authz.ObjectOpsTicketRouting, authz.ActionAdmin, true
		}
		return "", "", false
	default:
		return "", "", false
	}
}
