package domain

import "time"

// Role represents a user's authorization role.
type Role string

const (
	RoleRider      Role = "RIDER"
	RoleDriver     Role = "DRIVER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsAdmin reports whether the role carries admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an account in the system. Riders, drivers and admins all
// share this record; a driver additionally owns a Driver profile.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Role      Role
	CreatedAt time.Time
}
