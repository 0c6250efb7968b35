package directorytest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
	"github.com/aussiebroadwan/coursedesk/pkg/httpx"
)

// NewServer starts an httptest server that serves m over the Directory Store
// REST contract. It is closed when the test ends.
func NewServer(t testing.TB, m *Memory) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Handler(m))
	t.Cleanup(srv.Close)
	return srv
}

// Handler returns the REST routes backed by m.
func Handler(m *Memory) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		users, err := m.ListUsers(r.Context())
		respond(w, http.StatusOK, mapSlice(users, toUser), err)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, err := m.GetUserByID(r.Context(), r.PathValue("id"))
		respond(w, http.StatusOK, toUser(u), err)
	})
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var req coursesdk.CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		u, err := m.CreateUser(r.Context(), domain.NewUser{Name: req.Name, Email: req.Email, Role: domain.Role(req.Role)})
		respond(w, http.StatusCreated, toUser(u), err)
	})

	mux.HandleFunc("GET /courses", func(w http.ResponseWriter, r *http.Request) {
		q := directory.CourseQuery{
			Theme: domain.Theme(r.URL.Query().Get("theme")),
			Title: r.URL.Query().Get("title"),
		}
		courses, err := m.ListCourses(r.Context(), q)
		respond(w, http.StatusOK, mapSlice(courses, toCourse), err)
	})
	mux.HandleFunc("GET /courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, err := m.GetCourseByID(r.Context(), r.PathValue("id"))
		respond(w, http.StatusOK, toCourse(c), err)
	})

	mux.HandleFunc("GET /classes/available", func(w http.ResponseWriter, r *http.Request) {
		classes, err := m.ListAvailableClasses(r.Context())
		respond(w, http.StatusOK, mapSlice(classes, toClass), err)
	})
	mux.HandleFunc("GET /classes/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, err := m.GetClassByID(r.Context(), r.PathValue("id"))
		respond(w, http.StatusOK, toClass(c), err)
	})

	mux.HandleFunc("GET /enrollments/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		list, err := m.ListByUser(r.Context(), r.PathValue("id"))
		respond(w, http.StatusOK, mapSlice(list, toDetails), err)
	})
	mux.HandleFunc("GET /enrollments/class/{id}", func(w http.ResponseWriter, r *http.Request) {
		list, err := m.ListByClass(r.Context(), r.PathValue("id"))
		respond(w, http.StatusOK, mapSlice(list, toDetails), err)
	})
	mux.HandleFunc("POST /enrollments", func(w http.ResponseWriter, r *http.Request) {
		var req coursesdk.CreateEnrollmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		e, err := m.CreateEnrollment(r.Context(), domain.NewEnrollment{
			UserID:         req.UserID,
			ClassID:        req.ClassID,
			EnrollmentDate: req.EnrollmentDate,
		})
		respond(w, http.StatusCreated, toEnrollment(e), err)
	})

	return mux
}

func respond(w http.ResponseWriter, code int, body any, err error) {
	if err == nil {
		httpx.WriteJSON(w, code, body)
		return
	}
	var se *directory.StoreError
	switch {
	case errors.As(err, &se):
		httpx.WriteMessage(w, se.StatusCode, se.Message)
	case errors.Is(err, directory.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, "Not Found")
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func mapSlice[S any, D any](in []S, fn func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func toUser(u domain.User) coursesdk.User {
	return coursesdk.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toCourse(c domain.Course) coursesdk.Course {
	themes := make([]string, 0, len(c.Themes))
	for _, t := range c.Themes {
		themes = append(themes, string(t))
	}
	return coursesdk.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Themes:      themes,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toClass(c domain.Class) coursesdk.Class {
	return coursesdk.Class{
		ID:          c.ID,
		CourseID:    c.CourseID,
		Title:       c.Title,
		Description: c.Description,
		Capacity:    c.Capacity,
		Status:      string(c.Status),
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toEnrollment(e domain.Enrollment) coursesdk.Enrollment {
	return coursesdk.Enrollment{
		ID:             e.ID,
		UserID:         e.UserID,
		ClassID:        e.ClassID,
		EnrollmentDate: e.EnrollmentDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toDetails(d domain.EnrollmentDetails) coursesdk.EnrollmentWithDetails {
	out := coursesdk.EnrollmentWithDetails{Enrollment: toEnrollment(d.Enrollment)}
	if d.User != nil {
		u := toUser(*d.User)
		out.User = &u
	}
	if d.Class != nil {
		c := toClass(*d.Class)
		out.Class = &c
	}
	return out
}
