package authz

const (
	RoleTenantAdmin      = "tenant-admin"
	RoleTenantDispatcher = "tenant-dispatcher"
	RoleAnonymous        = "anonymous"
	RolePlatformAdmin    = "platform-admin"
)

func KnownRole(roleSlug string) bool {
	switch roleSlug {
	case RoleTenantAdmin, RoleTenantDispatcher, RolePlatformAdmin:
		return true
	default:
		return false
	}
}

const (
	ActionRead  = "read"
	ActionAdmin = "admin"
	ActionDebug = "debug"
)

const DomainGlobal = "global"

const (
	ObjectScopeGrants          = "scope.grants"
	ObjectScopeAccessChecks    = "scope.access-checks"
	ObjectContractCompetencies = "contract.competencies"
	ObjectContractTeamZones    = "contract.team-zones"
	ObjectContractTeamSkills   = "contract.team-skills"
	ObjectOpsRoutingRules      = "ops.routing-rules"
	ObjectOpsTicketRouting     = "ops.ticket-routing"
	ObjectOpsEligibleTeams     = "ops.eligible-teams"
)
