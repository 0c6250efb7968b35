// Package directorytest provides an in-memory directory.Store and an
// httptest server speaking the Directory Store REST contract.
package directorytest

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

// Operation names, used with Calls, Hold and Fail.
const (
	OpListUsers               = "ListUsers"
	OpGetUserByID             = "GetUserByID"
	OpFindUserByEmail         = "FindUserByEmail"
	OpCreateUser              = "CreateUser"
	OpListCourses             = "ListCourses"
	OpGetCourseByID           = "GetCourseByID"
	OpListAvailableClasses    = "ListAvailableClasses"
	OpGetClassByID            = "GetClassByID"
	OpListByUser              = "ListByUser"
	OpListByClass             = "ListByClass"
	OpCountByClass            = "CountByClass"
	OpEnrolledUserIDsInCourse = "EnrolledUserIDsInCourse"
	OpCreateEnrollment        = "CreateEnrollment"
)

// Memory is a concurrency-safe in-memory directory.Store. It enforces the
// rules a real store enforces on writes: unique emails, one enrollment per
// user and class, class capacity.
type Memory struct {
	mu          sync.Mutex
	users       []domain.User
	courses     []domain.Course
	classes     []domain.Class
	enrollments []domain.Enrollment

	calls map[string]int
	gates map[string]*Gate
	fails map[string]error

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
}

var _ directory.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		calls: make(map[string]int),
		gates: make(map[string]*Gate),
		fails: make(map[string]error),
		Now:   time.Now,
	}
}

func (m *Memory) Users() directory.Users             { return m }
func (m *Memory) Courses() directory.Courses         { return m }
func (m *Memory) Classes() directory.Classes         { return m }
func (m *Memory) Enrollments() directory.Enrollments { return m }

// ============================================================================
// Seeding
// ============================================================================

func (m *Memory) AddUser(u domain.User) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = m.stamp(u.CreatedAt)
	m.users = append(m.users, u)
	return u
}

func (m *Memory) AddCourse(c domain.Course) domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt, c.UpdatedAt = m.stamp(c.CreatedAt)
	m.courses = append(m.courses, c)
	return c
}

func (m *Memory) AddClass(c domain.Class) domain.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.ClassAvailable
	}
	c.CreatedAt, c.UpdatedAt = m.stamp(c.CreatedAt)
	m.classes = append(m.classes, c)
	return c
}

// AddEnrollment stores e without any of the checks CreateEnrollment applies,
// so tests can seed states a real store would refuse.
func (m *Memory) AddEnrollment(e domain.Enrollment) domain.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrollmentDate.IsZero() {
		e.EnrollmentDate = m.Now()
	}
	e.CreatedAt, e.UpdatedAt = m.stamp(e.CreatedAt)
	m.enrollments = append(m.enrollments, e)
	return e
}

// RemoveClass deletes a class, leaving its enrollments dangling.
func (m *Memory) RemoveClass(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes = slices.DeleteFunc(m.classes, func(c domain.Class) bool { return c.ID == id })
}

// EnrollmentCount returns the number of stored enrollments.
func (m *Memory) EnrollmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments)
}

func (m *Memory) stamp(created time.Time) (time.Time, time.Time) {
	if created.IsZero() {
		created = m.Now()
	}
	return created, created
}

// ============================================================================
// Users
// ============================================================================

func (m *Memory) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := m.enter(ctx, OpListUsers, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users), nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if err := m.enter(ctx, OpGetUserByID, id); err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.userLocked(id); ok {
		return u, nil
	}
	return domain.User{}, notFound("User not found")
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := m.enter(ctx, OpFindUserByEmail, email); err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, directory.ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	if err := m.enter(ctx, OpCreateUser, nu.Email); err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(nu.Email))
	for _, u := range m.users {
		if u.Email == email {
			return domain.User{}, &directory.StoreError{
				StatusCode: http.StatusConflict,
				Message:    "User with this email already exists",
			}
		}
	}

	now := m.Now()
	u := domain.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(nu.Name),
		Email:     email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users = append(m.users, u)
	return u, nil
}

func (m *Memory) userLocked(id string) (domain.User, bool) {
	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// ============================================================================
// Courses and Classes
// ============================================================================

func (m *Memory) ListCourses(ctx context.Context, q directory.CourseQuery) ([]domain.Course, error) {
	if err := m.enter(ctx, OpListCourses, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	title := strings.ToLower(q.Title)
	out := make([]domain.Course, 0, len(m.courses))
	for _, c := range m.courses {
		if q.Theme != "" && !slices.Contains(c.Themes, q.Theme) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(c.Title), title) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) GetCourseByID(ctx context.Context, id string) (domain.Course, error) {
	if err := m.enter(ctx, OpGetCourseByID, id); err != nil {
		return domain.Course{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Course{}, notFound("Course not found")
}

func (m *Memory) ListAvailableClasses(ctx context.Context) ([]domain.Class, error) {
	if err := m.enter(ctx, OpListAvailableClasses, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Class, 0, len(m.classes))
	for _, c := range m.classes {
		if c.Status == domain.ClassAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) GetClassByID(ctx context.Context, id string) (domain.Class, error) {
	if err := m.enter(ctx, OpGetClassByID, id); err != nil {
		return domain.Class{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.classLocked(id); ok {
		return c, nil
	}
	return domain.Class{}, notFound("Class not found")
}

func (m *Memory) classLocked(id string) (domain.Class, bool) {
	for _, c := range m.classes {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Class{}, false
}

// ============================================================================
// Enrollments
// ============================================================================

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]domain.EnrollmentDetails, error) {
	if err := m.enter(ctx, OpListByUser, userID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailsLocked(func(e domain.Enrollment) bool { return e.UserID == userID }), nil
}

func (m *Memory) ListByClass(ctx context.Context, classID string) ([]domain.EnrollmentDetails, error) {
	if err := m.enter(ctx, OpListByClass, classID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailsLocked(func(e domain.Enrollment) bool { return e.ClassID == classID }), nil
}

func (m *Memory) CountByClass(ctx context.Context, classID string) (int, error) {
	if err := m.enter(ctx, OpCountByClass, classID); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(classID), nil
}

func (m *Memory) EnrolledUserIDsInCourse(ctx context.Context, courseID string) ([]string, error) {
	if err := m.enter(ctx, OpEnrolledUserIDsInCourse, courseID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for _, e := range m.enrollments {
		c, ok := m.classLocked(e.ClassID)
		if !ok || c.CourseID != courseID || slices.Contains(ids, e.UserID) {
			continue
		}
		ids = append(ids, e.UserID)
	}
	return ids, nil
}

func (m *Memory) CreateEnrollment(ctx context.Context, ne domain.NewEnrollment) (domain.Enrollment, error) {
	if err := m.enter(ctx, OpCreateEnrollment, ne.UserID); err != nil {
		return domain.Enrollment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.userLocked(ne.UserID); !ok {
		return domain.Enrollment{}, notFound("User not found")
	}
	class, ok := m.classLocked(ne.ClassID)
	if !ok {
		return domain.Enrollment{}, notFound("Class not found")
	}
	for _, e := range m.enrollments {
		if e.UserID == ne.UserID && e.ClassID == ne.ClassID {
			return domain.Enrollment{}, &directory.StoreError{
				StatusCode: http.StatusConflict,
				Message:    "User is already enrolled in this class",
			}
		}
	}
	if m.countLocked(class.ID) >= class.Capacity {
		return domain.Enrollment{}, &directory.StoreError{
			StatusCode: http.StatusConflict,
			Message:    "Class is full",
		}
	}

	now := m.Now()
	e := domain.Enrollment{
		ID:             uuid.NewString(),
		UserID:         ne.UserID,
		ClassID:        ne.ClassID,
		EnrollmentDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ne.EnrollmentDate != nil {
		e.EnrollmentDate = *ne.EnrollmentDate
	}
	m.enrollments = append(m.enrollments, e)
	return e, nil
}

func (m *Memory) countLocked(classID string) int {
	n := 0
	for _, e := range m.enrollments {
		if e.ClassID == classID {
			n++
		}
	}
	return n
}

func (m *Memory) detailsLocked(keep func(domain.Enrollment) bool) []domain.EnrollmentDetails {
	out := []domain.EnrollmentDetails{}
	for _, e := range m.enrollments {
		if !keep(e) {
			continue
		}
		d := domain.EnrollmentDetails{Enrollment: e}
		if u, ok := m.userLocked(e.UserID); ok {
			d.User = &u
		}
		if c, ok := m.classLocked(e.ClassID); ok {
			d.Class = &c
		}
		out = append(out, d)
	}
	return out
}

func notFound(msg string) error {
	return &directory.StoreError{StatusCode: http.StatusNotFound, Message: msg}
}
