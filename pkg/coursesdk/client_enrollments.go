package coursesdk

import (
	"context"
	"net/http"
)

// ListEnrollmentsByUser returns the user's enrollments with embedded class.
func (c *SDKClient) ListEnrollmentsByUser(ctx context.Context, userID string) ([]EnrollmentWithDetails, error) {
	var enrollments []EnrollmentWithDetails
	if err := c.getJSON(ctx, pathf("/enrollments/user/%s", userID), &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ListEnrollmentsByClass returns the class roster. Its length is the class
// occupancy.
func (c *SDKClient) ListEnrollmentsByClass(ctx context.Context, classID string) ([]EnrollmentWithDetails, error) {
	var enrollments []EnrollmentWithDetails
	if err := c.getJSON(ctx, pathf("/enrollments/class/%s", classID), &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// CreateEnrollment enrolls a user into a class. The store is authoritative:
// it may still reject a request the client considered eligible.
func (c *SDKClient) CreateEnrollment(ctx context.Context, req CreateEnrollmentRequest) (*Enrollment, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/enrollments", req)
	if err != nil {
		return nil, err
	}

	var enrollment Enrollment
	if err := decodeJSON(resp, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
