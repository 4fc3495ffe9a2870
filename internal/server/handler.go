package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborworks/facilitydesk/internal/routing"
	competencyports "github.com/harborworks/facilitydesk/modules/competency/domain/ports"
	competencypersistence "github.com/harborworks/facilitydesk/modules/competency/infrastructure/persistence"
	competencyservices "github.com/harborworks/facilitydesk/modules/competency/services"
	dispatchports "github.com/harborworks/facilitydesk/modules/dispatch/domain/ports"
	dispatchpersistence "github.com/harborworks/facilitydesk/modules/dispatch/infrastructure/persistence"
	dispatchservices "github.com/harborworks/facilitydesk/modules/dispatch/services"
	scopeports "github.com/harborworks/facilitydesk/modules/scope/domain/ports"
	scopepersistence "github.com/harborworks/facilitydesk/modules/scope/infrastructure/persistence"
	scopeservices "github.com/harborworks/facilitydesk/modules/scope/services"
)

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

// ScopeStore is the org-hierarchy surface one backing store must provide.
type ScopeStore interface {
	scopeports.ScopeGrantStore
	scopeports.SiteQuery
	scopeports.BuildingQuery
}

// ReferenceStore covers the read-only contract and team lookups.
type ReferenceStore interface {
	competencyports.TeamQuery
	competencyports.TaxonomyQuery
	competencyports.ContractQuery
	competencyports.ContractCategoryQuery
}

// PlacementStore covers ticket placement lookups and live team load.
type PlacementStore interface {
	dispatchports.LocationQuery
	dispatchports.AssetQuery
	dispatchports.LoadQuery
}

type HandlerOptions struct {
	TenancyResolver TenancyResolver
	ScopeStore      ScopeStore
	ReferenceStore  ReferenceStore
	TeamZoneStore   competencyports.TeamZoneStore
	TeamSkillStore  competencyports.TeamSkillStore
	MatrixStore     competencyports.CompetencyMatrixStore
	RuleStore       dispatchports.RoutingRuleStore
	PlacementStore  PlacementStore
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	allowlistPath := os.Getenv("ALLOWLIST_PATH")
	if allowlistPath == "" {
		p, err := defaultAllowlistPath()
		if err != nil {
			return nil, err
		}
		allowlistPath = p
	}

	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}

	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	scopeStore := opts.ScopeStore
	referenceStore := opts.ReferenceStore
	zoneStore := opts.TeamZoneStore
	skillStore := opts.TeamSkillStore
	matrixStore := opts.MatrixStore
	ruleStore := opts.RuleStore
	placementStore := opts.PlacementStore
	tenancyResolver := opts.TenancyResolver

	needsPool := scopeStore == nil || referenceStore == nil || zoneStore == nil ||
		skillStore == nil || matrixStore == nil || ruleStore == nil || placementStore == nil

	if needsPool {
		dsn := dbDSNFromEnv()
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		if scopeStore == nil {
			scopeStore = scopepersistence.NewScopePGStore(pool)
		}
		if referenceStore == nil {
			referenceStore = competencypersistence.NewReferencePGStore(pool)
		}
		if zoneStore == nil {
			zoneStore = competencypersistence.NewTeamZonePGStore(pool)
		}
		if skillStore == nil {
			skillStore = competencypersistence.NewTeamSkillPGStore(pool)
		}
		if matrixStore == nil {
			matrixStore = competencypersistence.NewCompetencyMatrixPGStore(pool)
		}
		if ruleStore == nil {
			ruleStore = dispatchpersistence.NewRoutingRulePGStore(pool)
		}
		if placementStore == nil {
			placementStore = dispatchpersistence.NewPlacementPGStore(pool)
		}
	}

	if tenancyResolver == nil {
		tenants, err := loadTenants()
		if err != nil {
			return nil, err
		}
		tenancyResolver = newStaticTenancyResolver(tenants)
	}

	authority := scopeservices.NewScopeAuthority(scopeStore, scopeStore, scopeStore)
	grantAdmin := scopeservices.NewGrantAdminService(scopeStore)
	directory := competencyservices.NewDirectory(
		zoneStore, skillStore, matrixStore,
		referenceStore, referenceStore, referenceStore, referenceStore,
		scopeStore,
	)
	eligibility := dispatchservices.NewEligibilityResolver(matrixStore, referenceStore, zoneStore, skillStore, referenceStore)
	ruleEngine := dispatchservices.NewRuleEngine(ruleStore)
	siteResolver := dispatchservices.NewSiteResolver(scopeStore, placementStore, placementStore)
	coordinator := dispatchservices.NewCoordinator(ruleEngine, eligibility, siteResolver, referenceStore, placementStore)
	ruleAdmin := dispatchservices.NewRuleAdminService(ruleStore, referenceStore, authority)

	competencyDeps := competencyAPIDeps{
		directory: directory,
		teams:     referenceStore,
		contracts: referenceStore,
		authority: authority,
	}

	router := routing.NewRouter(classifier)

	authorizer, err := loadAuthorizer()
	if err != nil {
		return nil, err
	}

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))

	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/org/api/scope-grants", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleScopeGrantsAPI(w, r, grantAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/org/api/scope-grants", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleScopeGrantsAPI(w, r, grantAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/org/api/scope-grants:delete", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleScopeGrantDeleteAPI(w, r, grantAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/org/api/access-checks", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleAccessChecksAPI(w, r, authority)
	}))

	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/contract/api/competencies", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleCompetenciesAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/competencies", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleCompetenciesAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/competencies:delete", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleCompetencyDeleteAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/contract/api/team-zones", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamZonesAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/team-zones", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamZonesAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/team-zones:delete", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamZoneDeleteAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/contract/api/team-skills", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamSkillsAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/team-skills", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamSkillsAPI(w, r, competencyDeps)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/contract/api/team-skills:delete", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTeamSkillDeleteAPI(w, r, competencyDeps)
	}))

	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/ops/api/routing-rules", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRoutingRulesAPI(w, r, ruleAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/ops/api/routing-rules", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRoutingRulesAPI(w, r, ruleAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/ops/api/routing-rules:update", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRoutingRuleUpdateAPI(w, r, ruleAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/ops/api/routing-rules:delete", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRoutingRuleDeleteAPI(w, r, ruleAdmin)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodGet, "/ops/api/eligible-teams", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleEligibleTeamsAPI(w, r, eligibility)
	}))
	router.Handle(routing.RouteClassModuleAPI, http.MethodPost, "/ops/api/tickets:route", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTicketRouteAPI(w, r, coordinator)
	}))

	guarded := withTenantAndActor(classifier, tenancyResolver, withAuthz(classifier, authorizer, router))
	return guarded, nil
}

func MustNewHandler() http.Handler {
	h, err := NewHandler()
	if err != nil {
		panic(errors.New("server: failed to build handler: " + err.Error()))
	}
	return h
}

func defaultAllowlistPath() (string, error) {
	path := "config/routing/allowlist.yaml"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: allowlist not found")
}

// withTenantAndActor resolves the tenant from the request host and, when the
// gateway forwarded actor headers, attaches the acting principal. Missing
// actor headers leave the request anonymous; the authz gate decides.
func withTenantAndActor(classifier *routing.Classifier, tenants TenancyResolver, next http.Handler) http.Handler {
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

		tenantDomain := effectiveHost(r)
		t, ok, err := tenants.ResolveTenant(r.Context(), tenantDomain)
		if err != nil {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "tenant_resolve_error", "tenant resolve error")
			return
		}
		if !ok {
			routing.WriteError(w, r, rc, http.StatusNotFound, "tenant_not_found", "tenant not found")
			return
		}
		r = r.WithContext(withTenant(r.Context(), t))

		if p, ok := principalFromHeaders(r, t); ok {
			r = r.WithContext(withPrincipal(r.Context(), p))
		}

		next.ServeHTTP(w, r)
	})
}
