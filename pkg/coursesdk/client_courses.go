package coursesdk

import (
	"context"
	"net/url"
	"strings"
)

// ListCourses returns courses, optionally narrowed by the server-side filters.
func (c *SDKClient) ListCourses(ctx context.Context, filters CourseFilters) ([]Course, error) {
	params := url.Values{}
	if theme := strings.TrimSpace(filters.Theme); theme != "" {
		params.Set("theme", theme)
	}
	if title := strings.TrimSpace(filters.Title); title != "" {
		params.Set("title", title)
	}

	path := "/courses"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var courses []Course
	if err := c.getJSON(ctx, path, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse fetches a course by id.
func (c *SDKClient) GetCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.getJSON(ctx, pathf("/courses/%s", id), &course); err != nil {
		return nil, err
	}
	return &course, nil
}
