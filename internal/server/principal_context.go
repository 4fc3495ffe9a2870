package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborworks/facilitydesk/pkg/authz"
)

// Principal is the acting identity for one request. The service sits behind
// an authenticating gateway; identity arrives as trusted headers.
type Principal struct {
	ID       string
	TenantID string
	RoleSlug string
}

type principalContextKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

func currentPrincipal(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalContextKey{})
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

func principalFromHeaders(r *http.Request, tenant Tenant) (Principal, bool) {
	id := strings.TrimSpace(r.Header.Get(actorIDHeader))
	if id == "" {
		return Principal{}, false
	}
	role := strings.ToLower(strings.TrimSpace(r.Header.Get(actorRoleHeader)))
	if !authz.KnownRole(role) {
		role = authz.RoleAnonymous
	}
	return Principal{ID: id, TenantID: tenant.ID, RoleSlug: role}, true
}
