package domain

import "time"

type Enrollment struct {
	ID             string
	UserID         string
	ClassID        string
	EnrollmentDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EnrollmentDetails is an enrollment with the snapshots the store embeds.
// Either snapshot may be nil when the referenced row no longer exists.
type EnrollmentDetails struct {
	Enrollment
	User  *User
	Class *Class
}

// CourseID returns the course of the embedded class, or "" when the class
// snapshot is missing.
func (e EnrollmentDetails) CourseID() string {
	if e.Class == nil {
		return ""
	}
	return e.Class.CourseID
}

// NewEnrollment is what the workflow asks the store to create.
type NewEnrollment struct {
	UserID         string
	ClassID        string
	EnrollmentDate *time.Time
}

// NewUser is what registration asks the store to create.
type NewUser struct {
	Name  string
	Email string
	Role  Role
}
