package types

type ScopeType string

const (
	ScopePlatform ScopeType = "platform"
	ScopeCompany  ScopeType = "company"
	ScopeSite     ScopeType = "site"
	ScopeBuilding ScopeType = "building"
)

func (s ScopeType) Valid() bool {
	switch s {
	case ScopePlatform, ScopeCompany, ScopeSite, ScopeBuilding:
		return true
	default:
		return false
	}
}

// ScopeGrant is immutable once created; changing a grant is delete+recreate.
type ScopeGrant struct {
	ID            string    `json:"id"`
	SubjectUserID string    `json:"subject_user_id"`
	ScopeType     ScopeType `json:"scope_type"`
	CompanyID     string    `json:"company_id,omitempty"`
	SiteID        string    `json:"site_id,omitempty"`
	BuildingID    string    `json:"building_id,omitempty"`
}

type Site struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
}

type Building struct {
	ID        string `json:"id"`
	SiteID    string `json:"site_id"`
	CompanyID string `json:"company_id"`
}
