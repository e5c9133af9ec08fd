// internal/app/system/authz/roles.go
package authz

// Role names. Admin administers the tenant (resources, schedule,
// organizations); manager and member only differ at the resource level,
// where manager rights come from Resource.ManagerIDs, not from the role.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// ValidRole reports whether the value is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}
