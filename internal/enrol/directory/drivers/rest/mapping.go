package rest

import (
	"errors"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

// mapErr turns SDK responses into directory errors. Transport failures pass
// through unchanged.
func mapErr(err error) error {
	var apiErr *coursesdk.APIError
	if errors.As(err, &apiErr) {
		return &directory.StoreError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	}
	if errors.Is(err, coursesdk.ErrNotFound) {
		return directory.ErrNotFound
	}
	return err
}

func mapUser(u coursesdk.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      domain.Role(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapCourse(c coursesdk.Course) domain.Course {
	themes := make([]domain.Theme, 0, len(c.Themes))
	for _, t := range c.Themes {
		themes = append(themes, domain.Theme(t))
	}
	return domain.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Themes:      themes,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func mapClass(c coursesdk.Class) domain.Class {
	return domain.Class{
		ID:          c.ID,
		CourseID:    c.CourseID,
		Title:       c.Title,
		Description: c.Description,
		Capacity:    c.Capacity,
		Status:      domain.ClassStatus(c.Status),
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func mapEnrollment(e coursesdk.Enrollment) domain.Enrollment {
	return domain.Enrollment{
		ID:             e.ID,
		UserID:         e.UserID,
		ClassID:        e.ClassID,
		EnrollmentDate: e.EnrollmentDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func mapEnrollmentDetails(e coursesdk.EnrollmentWithDetails) domain.EnrollmentDetails {
	out := domain.EnrollmentDetails{Enrollment: mapEnrollment(e.Enrollment)}
	if e.User != nil {
		u := mapUser(*e.User)
		out.User = &u
	}
	if e.Class != nil {
		c := mapClass(*e.Class)
		out.Class = &c
	}
	return out
}

func mapAll[S any, D any](in []S, fn func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
