package models

// Status marks a record valid or soft-deleted.
type Status int

const (
	StatusInvalid Status = 0
	StatusValid   Status = 1
)

// Role is the account role of a user.
type Role int

const (
	RoleAdmin       Role = 0
	RoleSupervisor  Role = 1
	RoleCoordinator Role = 2
)

var roleNames = map[Role]string{
	RoleAdmin:       "administrator",
	RoleSupervisor:  "supervisor",
	RoleCoordinator: "coordinator",
}

// String returns the display name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}
