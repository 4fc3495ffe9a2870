package services

import (
	"context"
	"testing"

	"github.com/harborworks/facilitydesk/modules/scope/domain/types"
	"github.com/harborworks/facilitydesk/pkg/httperr"
)

func TestGrantAdminCreate(t *testing.T) {
	orig := newGrantID
	newGrantID = func() (string, error) { return "grant-fixed", nil }
	defer func() { newGrantID = orig }()

	var inserted types.ScopeGrant
	store := grantStoreStub{
		insertFn: func(_ context.Context, grant types.ScopeGrant) (types.ScopeGrant, error) {
			inserted = grant
			return grant, nil
		},
	}
	svc := NewGrantAdminService(store)

	grant, err := svc.Create(context.Background(), CreateGrantRequest{
		SubjectUserID: "  u1 ",
		ScopeType:     " Site ",
		SiteID:        "s1",
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if grant.ID != "grant-fixed" || grant.SubjectUserID != "u1" || grant.ScopeType != types.ScopeSite {
		t.Fatalf("grant=%+v", grant)
	}
	if inserted.ID != "grant-fixed" {
		t.Fatalf("inserted=%+v", inserted)
	}
}

func TestGrantAdminCreate_ShapeValidation(t *testing.T) {
	svc := NewGrantAdminService(grantStoreStub{})

	cases := []struct {
		name string
		req  CreateGrantRequest
	}{
		{"missing subject", CreateGrantRequest{ScopeType: "company", CompanyID: "c1"}},
		{"bad scope type", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "region"}},
		{"company grant without company", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "company"}},
		{"company grant with site id", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "company", CompanyID: "c1", SiteID: "s1"}},
		{"site grant without site", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "site", CompanyID: "c1"}},
		{"building grant without building", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "building", SiteID: "s1"}},
		{"platform grant with ids", CreateGrantRequest{SubjectUserID: "u1", ScopeType: "platform", CompanyID: "c1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.req); !httperr.IsBadRequest(err) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestGrantAdminCreate_RedundantParentIDsAllowed(t *testing.T) {
	store := grantStoreStub{
		insertFn: func(_ context.Context, grant types.ScopeGrant) (types.ScopeGrant, error) {
			return grant, nil
		},
	}
	svc := NewGrantAdminService(store)

	if _, err := svc.Create(context.Background(), CreateGrantRequest{
		SubjectUserID: "u1",
		ScopeType:     "building",
		CompanyID:     "c1",
		SiteID:        "s1",
		BuildingID:    "b1",
	}); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestGrantAdminDelete_RequiresID(t *testing.T) {
	svc := NewGrantAdminService(grantStoreStub{})
	if err := svc.Delete(context.Background(), "  "); !httperr.IsBadRequest(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestGrantAdminListBySubject(t *testing.T) {
	store := grantStoreStub{
		listBySubjectFn: func(_ context.Context, subjectUserID string) ([]types.ScopeGrant, error) {
			if subjectUserID != "u1" {
				t.Fatalf("subject=%q", subjectUserID)
			}
			return []types.ScopeGrant{{ID: "g1", SubjectUserID: "u1"}}, nil
		},
	}
	svc := NewGrantAdminService(store)

	grants, err := svc.ListBySubject(context.Background(), " u1 ")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(grants) != 1 || grants[0].ID != "g1" {
		t.Fatalf("grants=%+v", grants)
	}

	if _, err := svc.ListBySubject(context.Background(), ""); !httperr.IsBadRequest(err) {
		t.Fatalf("err=%v", err)
	}
}
