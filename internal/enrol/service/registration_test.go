package service

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory/directorytest"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

func TestRegistrationFormValidate(t *testing.T) {
	t.Parallel()

	valid := RegistrationForm{Name: "Alice", Email: "alice@example.com", Role: "STUDENT"}

	t.Run("valid form", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("name is trimmed before length checks", func(t *testing.T) {
		f := valid
		f.Name = "  A  "

		var fe *FormError
		require.ErrorAs(t, f.Validate(), &fe)
		require.Equal(t, "Name must have at least 2 characters.", fe.Fields["name"])
	})

	t.Run("name upper bound", func(t *testing.T) {
		f := valid
		f.Name = strings.Repeat("x", 101)

		var fe *FormError
		require.ErrorAs(t, f.Validate(), &fe)
		require.Equal(t, "Name cannot exceed 100 characters.", fe.Fields["name"])
	})

	t.Run("email format and length", func(t *testing.T) {
		f := valid
		f.Email = "not-an-email"

		var fe *FormError
		require.ErrorAs(t, f.Validate(), &fe)
		require.Equal(t, "Email must be a valid address.", fe.Fields["email"])

		f.Email = strings.Repeat("a", 250) + "@example.com"
		require.ErrorAs(t, f.Validate(), &fe)
		require.Contains(t, fe.Fields, "email")
	})

	t.Run("role must be known", func(t *testing.T) {
		f := valid
		f.Role = "janitor"

		err := f.Validate()
		require.ErrorIs(t, err, ErrInvalidForm)

		var fe *FormError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, []string{"role"}, keys(fe.Fields))
	})

	t.Run("every broken field is reported", func(t *testing.T) {
		var fe *FormError
		require.ErrorAs(t, RegistrationForm{}.Validate(), &fe)
		require.Equal(t, []string{"email", "name", "role"}, keys(fe.Fields))
		require.Equal(t, "Name is required.", fe.Fields["name"])
	})
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("normalizes and creates", func(t *testing.T) {
		mem := directorytest.NewMemory()
		svc := &RegistrationService{Store: mem}

		u, err := svc.Register(context.Background(), RegistrationForm{
			Name:  "  Alice Doe ",
			Email: " Alice@Example.COM ",
			Role:  "INSTRUCTOR",
		})
		require.NoError(t, err)
		require.Equal(t, "Alice Doe", u.Name)
		require.Equal(t, "alice@example.com", u.Email)
		require.Equal(t, domain.RoleInstructor, u.Role)

		users, err := svc.ListUsers(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("invalid form never reaches the store", func(t *testing.T) {
		mem := directorytest.NewMemory()
		svc := &RegistrationService{Store: mem}

		_, err := svc.Register(context.Background(), RegistrationForm{Name: "A", Email: "a@b.co", Role: "STUDENT"})
		require.ErrorIs(t, err, ErrInvalidForm)
		require.Zero(t, mem.Calls(directorytest.OpCreateUser))
	})

	t.Run("store rejection keeps its message", func(t *testing.T) {
		mem := directorytest.NewMemory()
		mem.AddUser(domain.User{Name: "Alice", Email: "alice@example.com", Role: domain.RoleStudent})
		svc := &RegistrationService{Store: mem}

		_, err := svc.Register(context.Background(), RegistrationForm{Name: "Alice", Email: "alice@example.com", Role: "STUDENT"})
		require.ErrorIs(t, err, ErrTransport)
		require.Equal(t, "User with this email already exists", UserMessage(err))
	})
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	require.Empty(t, UserMessage(nil))
	require.Equal(t, "Class is full. No more enrollments are possible.",
		UserMessage(blocked("CAPACITY_EXCEEDED")))
	require.Equal(t, "name: Name is required.",
		UserMessage(&FormError{Fields: map[string]string{"name": "Name is required."}}))
}
