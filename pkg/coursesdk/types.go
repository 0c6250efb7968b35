package coursesdk

import "time"

// ============================================================================
// Enumerations
// ============================================================================

const (
	RoleAdmin      = "ADMIN"
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
)

const (
	ClassStatusAvailable = "AVAILABLE"
	ClassStatusClosed    = "CLOSED"
)

// ============================================================================
// Users
// ============================================================================

// User is the store's user representation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ============================================================================
// Courses and Classes
// ============================================================================

// Course is a subject offering.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Themes      []string  `json:"themes"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CourseFilters are the server-side filters of GET /courses.
type CourseFilters struct {
	Theme string
	Title string
}

// Class is a scheduled offering of a course.
type Class struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ============================================================================
// Enrollments
// ============================================================================

// Enrollment binds one user to one class.
type Enrollment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ClassID        string    `json:"classId"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EnrollmentWithDetails is returned by the per-user and per-class listings.
// The embedded snapshots may be missing when the referenced row is gone.
type EnrollmentWithDetails struct {
	Enrollment
	User  *User  `json:"user,omitempty"`
	Class *Class `json:"class,omitempty"`
}

// CreateEnrollmentRequest is the body of POST /enrollments.
type CreateEnrollmentRequest struct {
	UserID         string     `json:"userId"`
	ClassID        string     `json:"classId"`
	EnrollmentDate *time.Time `json:"enrollmentDate,omitempty"`
}
