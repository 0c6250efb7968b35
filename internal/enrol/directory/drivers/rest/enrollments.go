package rest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

type enrollmentsRepo struct {
	c    *coursesdk.SDKClient
	scan int
	log  *slog.Logger
}

func (r *enrollmentsRepo) ListByUser(ctx context.Context, userID string) ([]domain.EnrollmentDetails, error) {
	list, err := r.c.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return mapAll(list, mapEnrollmentDetails), nil
}

func (r *enrollmentsRepo) ListByClass(ctx context.Context, classID string) ([]domain.EnrollmentDetails, error) {
	list, err := r.c.ListEnrollmentsByClass(ctx, classID)
	if err != nil {
		return nil, mapErr(err)
	}
	return mapAll(list, mapEnrollmentDetails), nil
}

// CountByClass has no dedicated endpoint; it counts the class roster.
func (r *enrollmentsRepo) CountByClass(ctx context.Context, classID string) (int, error) {
	list, err := r.c.ListEnrollmentsByClass(ctx, classID)
	if err != nil {
		return 0, mapErr(err)
	}
	return len(list), nil
}

// EnrolledUserIDsInCourse scans every user's enrollments. A user whose
// listing fails is logged and left out; only cancellation aborts the scan.
func (r *enrollmentsRepo) EnrolledUserIDsInCourse(ctx context.Context, courseID string) ([]string, error) {
	users, err := r.c.ListUsers(ctx)
	if err != nil {
		return nil, mapErr(err)
	}

	enrolled := make([]bool, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.scan)
	for i, u := range users {
		g.Go(func() error {
			list, err := r.c.ListEnrollmentsByUser(gctx, u.ID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.log.WarnContext(ctx, "enrollment_scan_skipped_user",
					slog.String("user_id", u.ID),
					slog.Any("error", err),
				)
				return nil
			}
			for _, e := range list {
				if e.Class != nil && e.Class.CourseID == courseID {
					enrolled[i] = true
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for i, u := range users {
		if enrolled[i] {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *enrollmentsRepo) CreateEnrollment(ctx context.Context, ne domain.NewEnrollment) (domain.Enrollment, error) {
	e, err := r.c.CreateEnrollment(ctx, coursesdk.CreateEnrollmentRequest{
		UserID:         ne.UserID,
		ClassID:        ne.ClassID,
		EnrollmentDate: ne.EnrollmentDate,
	})
	if err != nil {
		return domain.Enrollment{}, mapErr(err)
	}
	return mapEnrollment(*e), nil
}
