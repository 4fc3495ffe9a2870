package types

type CompetencyLevel string

const (
	LevelPrimary CompetencyLevel = "primary"
	LevelBackup  CompetencyLevel = "backup"
)

func (l CompetencyLevel) Valid() bool {
	return l == LevelPrimary || l == LevelBackup
}

type TimeWindow string

const (
	WindowBusinessHours TimeWindow = "business_hours"
	WindowAfterHours    TimeWindow = "after_hours"
	WindowAny           TimeWindow = "any"
)

func (w TimeWindow) Valid() bool {
	switch w {
	case WindowBusinessHours, WindowAfterHours, WindowAny:
		return true
	default:
		return false
	}
}

// QueryWindow reports whether w is a concrete window a ticket can carry.
// WindowAny is a matrix-row wildcard, never a query value.
func (w TimeWindow) QueryWindow() bool {
	return w == WindowBusinessHours || w == WindowAfterHours
}

type Team struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Active    bool   `json:"active"`
}

type TeamZone struct {
	TeamID     string `json:"team_id"`
	BuildingID string `json:"building_id"`
}

type TeamSkill struct {
	TeamID  string `json:"team_id"`
	SkillID string `json:"skill_id"`
}

// CompetencyRecord maps a team to a category it can service. An empty
// BuildingID is a tenant-wide grant; a non-empty one is a building-specific
// override that wins over generic rows during resolution.
type CompetencyRecord struct {
	ID                string          `json:"id"`
	ContractVersionID string          `json:"contract_version_id"`
	TeamID            string          `json:"team_id"`
	CategoryID        string          `json:"category_id"`
	BuildingID        string          `json:"building_id,omitempty"`
	Level             CompetencyLevel `json:"level"`
	Window            TimeWindow      `json:"window"`
}

// CompetencyKey is the uniqueness tuple: at most one record per key, with
// upsert replacing the level in place.
type CompetencyKey struct {
	ContractVersionID string
	TeamID            string
	CategoryID        string
	BuildingID        string
	Window            TimeWindow
}

func (r CompetencyRecord) Key() CompetencyKey {
	return CompetencyKey{
		ContractVersionID: r.ContractVersionID,
		TeamID:            r.TeamID,
		CategoryID:        r.CategoryID,
		BuildingID:        r.BuildingID,
		Window:            r.Window,
	}
}
