package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/pkg/slogx"
)

// DefaultRosterConcurrency bounds parallel enrichment lookups.
const DefaultRosterConcurrency = 8

// RosterEntry is an enrollment with its class and course. Either may be nil
// when it could not be loaded.
type RosterEntry struct {
	Enrollment domain.Enrollment
	Class      *domain.Class
	Course     *domain.Course
}

// RosterService lists a user's enrollments for display.
type RosterService struct {
	Store       directory.Store
	Concurrency int
}

// EnrollmentsOf returns userID's enrollments, each enriched with its class
// and course. A row whose enrichment fails keeps nil class and course; only
// a failure to list the enrollments fails the call.
func (s *RosterService) EnrollmentsOf(ctx context.Context, userID string) ([]RosterEntry, error) {
	l := slogx.FromContext(ctx)

	list, err := s.Store.Enrollments().ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list enrollments", err)
	}

	entries := make([]RosterEntry, len(list))
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultRosterConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range list {
		entries[i].Enrollment = e.Enrollment
		g.Go(func() error {
			class, course, err := s.enrich(gctx, e.ClassID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.Warn("failed to load enrollment details",
					slog.String("enrollment_id", e.ID),
					slog.Any("error", err),
				)
				return nil
			}
			entries[i].Class = &class
			entries[i].Course = &course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnrollmentsByEmail resolves the user by exact email first.
func (s *RosterService) EnrollmentsByEmail(ctx context.Context, email string) (domain.User, []RosterEntry, error) {
	email = strings.TrimSpace(email)
	u, err := s.Store.Users().FindUserByEmail(ctx, email)
	if errors.Is(err, directory.ErrNotFound) {
		return domain.User{}, nil, fmt.Errorf("%w: no user with email %q", ErrNotFound, email)
	}
	if err != nil {
		return domain.User{}, nil, storeErr("find user", err)
	}
	entries, err := s.EnrollmentsOf(ctx, u.ID)
	return u, entries, err
}

func (s *RosterService) enrich(ctx context.Context, classID string) (domain.Class, domain.Course, error) {
	class, err := s.Store.Classes().GetClassByID(ctx, classID)
	if err != nil {
		return domain.Class{}, domain.Course{}, err
	}
	course, err := s.Store.Courses().GetCourseByID(ctx, class.CourseID)
	if err != nil {
		return domain.Class{}, domain.Course{}, err
	}
	return class, course, nil
}
