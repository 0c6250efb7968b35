package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

// MockStore is a testify mock of every directory repository at once.
type MockStore struct {
	mock.Mock
}

var _ directory.Store = (*MockStore)(nil)

func (m *MockStore) Users() directory.Users             { return m }
func (m *MockStore) Courses() directory.Courses         { return m }
func (m *MockStore) Classes() directory.Classes         { return m }
func (m *MockStore) Enrollments() directory.Enrollments { return m }

func (m *MockStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockStore) ListCourses(ctx context.Context, q directory.CourseQuery) ([]domain.Course, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Course), args.Error(1)
}

func (m *MockStore) GetCourseByID(ctx context.Context, id string) (domain.Course, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Course), args.Error(1)
}

func (m *MockStore) ListAvailableClasses(ctx context.Context) ([]domain.Class, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Class), args.Error(1)
}

func (m *MockStore) GetClassByID(ctx context.Context, id string) (domain.Class, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Class), args.Error(1)
}

func (m *MockStore) ListByUser(ctx context.Context, userID string) ([]domain.EnrollmentDetails, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.EnrollmentDetails), args.Error(1)
}

func (m *MockStore) ListByClass(ctx context.Context, classID string) ([]domain.EnrollmentDetails, error) {
	args := m.Called(ctx, classID)
	return args.Get(0).([]domain.EnrollmentDetails), args.Error(1)
}

func (m *MockStore) CountByClass(ctx context.Context, classID string) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) EnrolledUserIDsInCourse(ctx context.Context, courseID string) ([]string, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) CreateEnrollment(ctx context.Context, e domain.NewEnrollment) (domain.Enrollment, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(domain.Enrollment), args.Error(1)
}
