package rbac

// Role names. Keep these stable; they are part of the auth contract and are
// stored on caller profiles.
const (
	RoleCaller     = "caller"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleCaller, RoleSupervisor, RoleAdmin:
		return true
	default:
		return false
	}
}
