package domain

// Role is the access level carried in bearer tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
	RoleResident Role = "resident"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecurity, RoleResident:
		return true
	}
	return false
}

// Label is the human readable role name shown next to the account name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleSecurity:
		return "Security Guard"
	default:
		return "Resident"
	}
}
