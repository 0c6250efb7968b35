package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleInstructor:
		return true
	}
	return false
}

type User struct {
	ID        string
	Name      string
	Email     string // lower-cased by the store on creation
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
