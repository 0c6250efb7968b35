package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/slogx"
)

// RegistrationForm is the raw input of the user registration form.
type RegistrationForm struct {
	Name  string `form:"name" validate:"required,min=2,max=100"`
	Email string `form:"email" validate:"required,email,max=255"`
	Role  string `form:"role" validate:"required,oneof=ADMIN STUDENT INSTRUCTOR"`
}

var registrationMessages = fieldMessages{
	"name.required": "Name is required.",
	"name.min":      "Name must have at least 2 characters.",
	"name.max":      "Name cannot exceed 100 characters.",
	"email.max":     "Email cannot exceed 255 characters.",
	"email":         "Email must be a valid address.",
	"role":          "Role must be one of ADMIN, STUDENT or INSTRUCTOR.",
}

// Normalize trims the name and trims and lower-cases the email.
func (f RegistrationForm) Normalize() RegistrationForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Role = strings.TrimSpace(f.Role)
	return f
}

// Validate checks the normalized form. Failures are a *FormError.
func (f RegistrationForm) Validate() error {
	return checkForm(f.Normalize(), registrationMessages)
}

type RegistrationService struct {
	Store directory.Store
}

// Register validates the form and creates the user.
func (s *RegistrationService) Register(ctx context.Context, form RegistrationForm) (domain.User, error) {
	l := slogx.FromContext(ctx)

	form = form.Normalize()
	if err := checkForm(form, registrationMessages); err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().CreateUser(ctx, domain.NewUser{
		Name:  form.Name,
		Email: form.Email,
		Role:  domain.Role(form.Role),
	})
	if err != nil {
		l.Warn("failed to register user", slog.String("email", form.Email), slog.Any("error", err))
		return domain.User{}, storeErr("create user", err)
	}

	l.Info("user registered", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, nil
}

// ListUsers returns every registered user.
func (s *RegistrationService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}
