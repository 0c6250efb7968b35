package coursesdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *coursesdk.SDKClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return coursesdk.NewSDKClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewSDKClientDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, coursesdk.DefaultBaseURL, coursesdk.NewSDKClient("").BaseURL)
	require.Equal(t, "http://store/api", coursesdk.NewSDKClient("http://store/api/").BaseURL)
}

func TestFindUserByEmail(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []coursesdk.User{
			{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: coursesdk.RoleStudent},
			{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: coursesdk.RoleInstructor},
		})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("exact match", func(t *testing.T) {
		user, err := client.FindUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, "u2", user.ID)
		require.Equal(t, coursesdk.RoleInstructor, user.Role)
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		_, err := client.FindUserByEmail(ctx, "Alice@example.com")
		require.ErrorIs(t, err, coursesdk.ErrNotFound)
	})
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /classes/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"statusCode": 404,
			"message":    "Class with ID " + r.PathValue("id") + " not found",
			"error":      "Not Found",
		})
	})
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode": 400,
			"message":    []string{"email must be an email", "name should not be empty"},
		})
	})
	mux.HandleFunc("GET /courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>upstream down</html>")
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("404 matches ErrNotFound and keeps the message", func(t *testing.T) {
		_, err := client.GetClass(ctx, "c-1")
		require.ErrorIs(t, err, coursesdk.ErrNotFound)

		msg, ok := coursesdk.ServerMessage(err)
		require.True(t, ok)
		require.Equal(t, "Class with ID c-1 not found", msg)
	})

	t.Run("validation message lists are joined", func(t *testing.T) {
		_, err := client.CreateUser(ctx, coursesdk.CreateUserRequest{})

		var apiErr *coursesdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "email must be an email; name should not be empty", apiErr.Message)
		require.NotErrorIs(t, err, coursesdk.ErrNotFound)
	})

	t.Run("non json bodies fall back to status text", func(t *testing.T) {
		_, err := client.GetCourse(ctx, "x")

		var apiErr *coursesdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
	})

	t.Run("transport failures are not api errors", func(t *testing.T) {
		dead := coursesdk.NewSDKClient("http://127.0.0.1:1")
		_, err := dead.ListUsers(ctx)
		require.Error(t, err)

		_, ok := coursesdk.ServerMessage(err)
		require.False(t, ok)
	})
}

func TestCreateEnrollmentBody(t *testing.T) {
	t.Parallel()

	var bodies []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /enrollments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(w, http.StatusCreated, coursesdk.Enrollment{
			ID:      "e1",
			UserID:  body["userId"].(string),
			ClassID: body["classId"].(string),
		})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	enrollment, err := client.CreateEnrollment(ctx, coursesdk.CreateEnrollmentRequest{UserID: "u1", ClassID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "e1", enrollment.ID)

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = client.CreateEnrollment(ctx, coursesdk.CreateEnrollmentRequest{UserID: "u1", ClassID: "c2", EnrollmentDate: &date})
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	require.Equal(t, map[string]any{"userId": "u1", "classId": "c1"}, bodies[0])
	require.Equal(t, "2026-03-01T00:00:00Z", bodies[1]["enrollmentDate"])
}

func TestListCoursesQueryAndPaths(t *testing.T) {
	t.Parallel()

	var gotQuery, gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []coursesdk.Course{{ID: "k1", Themes: []string{"AGRO"}}})
	})
	mux.HandleFunc("GET /enrollments/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.PathValue("id")
		writeJSON(w, http.StatusOK, []coursesdk.EnrollmentWithDetails{{
			Enrollment: coursesdk.Enrollment{ID: "e1", UserID: "u/1", ClassID: "c1"},
			Class:      &coursesdk.Class{ID: "c1", CourseID: "k1"},
		}})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	courses, err := client.ListCourses(ctx, coursesdk.CourseFilters{Theme: "AGRO", Title: " farm "})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "theme=AGRO&title=farm", gotQuery)

	enrollments, err := client.ListEnrollmentsByUser(ctx, "u/1")
	require.NoError(t, err)
	require.Equal(t, "u/1", gotPath)
	require.Len(t, enrollments, 1)
	require.Equal(t, "k1", enrollments[0].Class.CourseID)
	require.Equal(t, "e1", enrollments[0].ID)
}
