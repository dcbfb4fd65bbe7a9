package constants

// Roles, least to most privileged.
const (
	Viewer     = "viewer"
	Department = "department"
	Finance    = "finance"
	Admin      = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	switch r {
	case Viewer, Department, Finance, Admin:
		return true
	}
	return false
}
