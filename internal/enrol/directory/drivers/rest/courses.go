package rest

import (
	"context"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

type coursesRepo struct {
	c *coursesdk.SDKClient
}

func (r *coursesRepo) ListCourses(ctx context.Context, q directory.CourseQuery) ([]domain.Course, error) {
	courses, err := r.c.ListCourses(ctx, coursesdk.CourseFilters{Theme: string(q.Theme), Title: q.Title})
	if err != nil {
		return nil, mapErr(err)
	}
	return mapAll(courses, mapCourse), nil
}

func (r *coursesRepo) GetCourseByID(ctx context.Context, id string) (domain.Course, error) {
	c, err := r.c.GetCourse(ctx, id)
	if err != nil {
		return domain.Course{}, mapErr(err)
	}
	return mapCourse(*c), nil
}

type classesRepo struct {
	c *coursesdk.SDKClient
}

func (r *classesRepo) ListAvailableClasses(ctx context.Context) ([]domain.Class, error) {
	classes, err := r.c.ListAvailableClasses(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return mapAll(classes, mapClass), nil
}

func (r *classesRepo) GetClassByID(ctx context.Context, id string) (domain.Class, error) {
	c, err := r.c.GetClass(ctx, id)
	if err != nil {
		return domain.Class{}, mapErr(err)
	}
	return mapClass(*c), nil
}
