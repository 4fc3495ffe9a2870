package services

import (
	"context"
	"strings"

	"github.com/harborworks/facilitydesk/modules/scope/domain/ports"
	"github.com/harborworks/facilitydesk/modules/scope/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
	"github.com/harborworks/facilitydesk/pkg/uuidv7"
)

const (
	errSubjectRequired    = "subject_user_id is required"
	errScopeTypeInvalid   = "scope_type must be one of platform|company|site|building"
	errScopeShapeMismatch = "grant id fields must match scope_type"
)

var newGrantID = uuidv7.NewString

// GrantAdminService manages the scope-grant lifecycle. Grants are immutable
// rows: there is no update, only create and delete.
type GrantAdminService struct {
	store ports.ScopeGrantStore
}

func NewGrantAdminService(store ports.ScopeGrantStore) GrantAdminService {
	return GrantAdminService{store: store}
}

type CreateGrantRequest struct {
	SubjectUserID string
	ScopeType     string
	CompanyID     string
	SiteID        string
	BuildingID    string
}

func (s GrantAdminService) Create(ctx context.Context, req CreateGrantRequest) (types.ScopeGrant, error) {
	grant := types.ScopeGrant{
		SubjectUserID: strings.TrimSpace(req.SubjectUserID),
		ScopeType:     types.ScopeType(strings.ToLower(strings.TrimSpace(req.ScopeType))),
		CompanyID:     strings.TrimSpace(req.CompanyID),
		SiteID:        strings.TrimSpace(req.SiteID),
		BuildingID:    strings.TrimSpace(req.BuildingID),
	}
	if grant.SubjectUserID == "" {
		return types.ScopeGrant{}, httperr.NewBadRequest(errSubjectRequired)
	}
	if !grant.ScopeType.Valid() {
		return types.ScopeGrant{}, httperr.NewBadRequest(errScopeTypeInvalid)
	}
	if err := validateGrantShape(grant); err != nil {
		return types.ScopeGrant{}, err
	}

	id, err := newGrantID()
	if err != nil {
		return types.ScopeGrant{}, err
	}
	grant.ID = id
	return s.store.Insert(ctx, grant)
}

func (s GrantAdminService) Delete(ctx context.Context, grantID string) error {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return httperr.NewBadRequest("grant id is required")
	}
	return s.store.Delete(ctx, grantID)
}

func (s GrantAdminService) ListBySubject(ctx context.Context, subjectUserID string) ([]types.ScopeGrant, error) {
	subjectUserID = strings.TrimSpace(subjectUserID)
	if subjectUserID == "" {
		return nil, httperr.NewBadRequest(errSubjectRequired)
	}
	return s.store.ListBySubject(ctx, subjectUserID)
}

// validateGrantShape enforces the "exactly the id matching scope_type"
// invariant. Site grants may carry a redundant company id; building grants
// may carry redundant site and company ids.
func validateGrantShape(g types.ScopeGrant) error {
	switch g.ScopeType {
	case types.ScopePlatform:
		if g.CompanyID != "" || g.SiteID != "" || g.BuildingID != "" {
			return httperr.NewBadRequest(errScopeShapeMismatch)
		}
	case types.ScopeCompany:
		if g.CompanyID == "" || g.SiteID != "" || g.BuildingID != "" {
			return httperr.NewBadRequest(errScopeShapeMismatch)
		}
	case types.ScopeSite:
		if g.SiteID == "" || g.BuildingID != "" {
			return httperr.NewBadRequest(errScopeShapeMismatch)
		}
	case types.ScopeBuilding:
		if g.BuildingID == "" {
			return httperr.NewBadRequest(errScopeShapeMismatch)
		}
	}
	return nil
}
