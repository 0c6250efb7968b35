package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

var (
	ErrNotFound = errors.New("directory: not found")
)

// StoreError is a failure the Directory Store reported itself, as opposed to
// a transport failure. Message is the store's own wording and is shown to
// users verbatim.
type StoreError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("directory: store rejected request (%d): %s", e.StatusCode, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Message returns the store-provided message carried by err, if any.
func Message(err error) (string, bool) {
	var se *StoreError
	if !errors.As(err, &se) || se.Message == "" {
		return "", false
	}
	return se.Message, true
}

// Store is the root Directory Store interface. Drivers (rest, and the
// in-memory fake in directorytest) implement it. Sub-interfaces keep each
// collection's capabilities separate so fakes stay small.
type Store interface {
	Users() Users
	Courses() Courses
	Classes() Classes
	Enrollments() Enrollments
}

type Users interface {
	// ListUsers returns every user.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// FindUserByEmail returns the user whose stored email equals email byte
	// for byte, or ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser registers a user.
	CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error)
}

// CourseQuery carries the server-side course filters.
type CourseQuery struct {
	Theme domain.Theme
	Title string
}

type Courses interface {
	ListCourses(ctx context.Context, q CourseQuery) ([]domain.Course, error)
	GetCourseByID(ctx context.Context, id string) (domain.Course, error)
}

type Classes interface {
	// ListAvailableClasses returns every class with status AVAILABLE.
	ListAvailableClasses(ctx context.Context) ([]domain.Class, error)
	GetClassByID(ctx context.Context, id string) (domain.Class, error)
}

type Enrollments interface {
	// ListByUser returns the user's enrollments with embedded class snapshots.
	ListByUser(ctx context.Context, userID string) ([]domain.EnrollmentDetails, error)

	// ListByClass returns the class roster.
	ListByClass(ctx context.Context, classID string) ([]domain.EnrollmentDetails, error)

	// CountByClass returns the class occupancy.
	CountByClass(ctx context.Context, classID string) (int, error)

	// EnrolledUserIDsInCourse returns the ids of users holding an enrollment
	// in any class of courseID. Drivers without an aggregate endpoint may
	// implement it as a scan; callers must treat it as advisory.
	EnrolledUserIDsInCourse(ctx context.Context, courseID string) ([]string, error)

	// CreateEnrollment creates an enrollment. The store may reject it.
	CreateEnrollment(ctx context.Context, e domain.NewEnrollment) (domain.Enrollment, error)
}
