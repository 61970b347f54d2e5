package rbac

type Role string
type Action string

const (
	RolePublic       Role = "public"
	RoleWorkingGroup Role = "policy_working_group"
	RoleAdmin        Role = "admin"
)

const (
	// ActionRead covers listing and fetching documents, including drafts.
	ActionRead Action = "read"
	// ActionWrite covers creating and editing policies and bylaws.
	ActionWrite Action = "write"
	// ActionTriage covers reviewing suggestions and recording policy reviews.
	ActionTriage Action = "triage"
	// ActionApprove covers moving documents from draft to approved.
	ActionApprove Action = "approve"
	// ActionAdmin covers user management and destructive maintenance.
	ActionAdmin Action = "admin"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleWorkingGroup:
		return action == ActionRead || action == ActionWrite || action == ActionTriage
	case RolePublic:
		return action == ActionRead
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RolePublic, RoleWorkingGroup, RoleAdmin:
		return Role(role)
	default:
		return RolePublic
	}
}

func ValidRole(role string) bool {
	switch Role(role) {
	case RolePublic, RoleWorkingGroup, RoleAdmin:
		return true
	default:
		return false
	}
}
