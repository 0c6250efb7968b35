package eligibility

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openClass() domain.Class {
	return domain.Class{
		ID:        "class-1",
		CourseID:  "course-x",
		Capacity:  2,
		Status:    domain.ClassAvailable,
		StartDate: now.Add(7 * 24 * time.Hour),
		EndDate:   now.Add(60 * 24 * time.Hour),
	}
}

func enrolledIn(courseID string) []domain.EnrollmentDetails {
	return []domain.EnrollmentDetails{{
		Enrollment: domain.Enrollment{ID: "e1", ClassID: "other-class"},
		Class:      &domain.Class{ID: "other-class", CourseID: courseID},
	}}
}

// facts builds a fully passing set of facts, then applies the named failures.
func facts(fail ...Reason) Facts {
	f := Facts{Class: openClass(), Occupancy: 0, Now: now}
	for _, r := range fail {
		switch r {
		case DuplicateCourseEnrollment:
			f.Enrollments = enrolledIn(f.Class.CourseID)
		case ClassClosed:
			f.Class.Status = domain.ClassClosed
		case CapacityExceeded:
			f.Occupancy = f.Class.Capacity
		case AfterStart:
			f.Class.StartDate = now.Add(-time.Hour)
		}
	}
	return f
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	t.Run("eligible when every check passes", func(t *testing.T) {
		d := Evaluate(facts())
		require.True(t, d.Eligible)
		require.Equal(t, ReasonNone, d.Reason)
		require.Empty(t, d.Message())
	})

	t.Run("full class is refused regardless of other checks", func(t *testing.T) {
		f := facts(CapacityExceeded)
		require.Equal(t, CapacityExceeded, Evaluate(f).Reason)

		f.Occupancy = f.Class.Capacity + 3
		require.Equal(t, CapacityExceeded, Evaluate(f).Reason)
	})

	t.Run("existing enrollment blocks any class of the course", func(t *testing.T) {
		f := facts(DuplicateCourseEnrollment)
		for _, classID := range []string{"class-1", "class-2", "class-3"} {
			f.Class.ID = classID
			require.Equal(t, DuplicateCourseEnrollment, Evaluate(f).Reason)
		}
	})

	t.Run("enrollment in another course does not block", func(t *testing.T) {
		f := facts()
		f.Enrollments = enrolledIn("course-y")
		require.True(t, Evaluate(f).Eligible)
	})

	t.Run("enrollments without class snapshot are ignored", func(t *testing.T) {
		f := facts()
		f.Enrollments = []domain.EnrollmentDetails{{Enrollment: domain.Enrollment{ID: "e1"}}}
		require.True(t, Evaluate(f).Eligible)
	})

	t.Run("closed class with room and valid dates", func(t *testing.T) {
		require.Equal(t, ClassClosed, Evaluate(facts(ClassClosed)).Reason)
	})

	t.Run("start instant itself is too late", func(t *testing.T) {
		f := facts()
		f.Now = f.Class.StartDate
		require.Equal(t, AfterStart, Evaluate(f).Reason)
	})

	t.Run("after end only with inverted dates", func(t *testing.T) {
		f := facts()
		f.Class.EndDate = now.Add(-time.Hour)
		require.Equal(t, AfterEnd, Evaluate(f).Reason)
	})
}

func TestEvaluatePrecedence(t *testing.T) {
	t.Parallel()

	order := []Reason{DuplicateCourseEnrollment, ClassClosed, CapacityExceeded, AfterStart}
	for i, higher := range order {
		for _, lower := range order[i+1:] {
			t.Run(string(higher)+" beats "+string(lower), func(t *testing.T) {
				d := Evaluate(facts(higher, lower))
				require.False(t, d.Eligible)
				require.Equal(t, higher, d.Reason)
			})
		}
	}

	t.Run("everything failing reports duplicate", func(t *testing.T) {
		require.Equal(t, DuplicateCourseEnrollment, Evaluate(facts(order...)).Reason)
	})
}

func TestReasonMessages(t *testing.T) {
	t.Parallel()

	for _, r := range []Reason{DuplicateCourseEnrollment, ClassClosed, CapacityExceeded, AfterStart, AfterEnd} {
		require.NotEmpty(t, r.Message(), r)
	}
	require.Equal(t, "Class is full. No more enrollments are possible.", Decision{Reason: CapacityExceeded}.Message())
}

func TestCanEnroll(t *testing.T) {
	t.Parallel()

	c := openClass()
	require.True(t, CanEnroll(c, now))
	require.False(t, CanEnroll(c, c.StartDate))

	c.Status = domain.ClassClosed
	require.False(t, CanEnroll(c, now))
}

func TestValidateEnrollmentDate(t *testing.T) {
	t.Parallel()

	class := openClass()
	at := func(d time.Time) *time.Time { return &d }

	t.Run("absent date passes", func(t *testing.T) {
		require.NoError(t, ValidateEnrollmentDate(nil, class, now))
	})

	t.Run("recent past date passes", func(t *testing.T) {
		require.NoError(t, ValidateEnrollmentDate(at(now.AddDate(0, -2, 0)), class, now))
	})

	t.Run("future date is refused", func(t *testing.T) {
		err := ValidateEnrollmentDate(at(now.Add(time.Hour)), class, now)
		require.ErrorIs(t, err, ErrInvalidEnrollmentDate)
	})

	t.Run("older than a year is refused", func(t *testing.T) {
		err := ValidateEnrollmentDate(at(now.AddDate(-1, 0, -1)), class, now)
		require.ErrorIs(t, err, ErrInvalidEnrollmentDate)
	})

	t.Run("on or after class start is refused", func(t *testing.T) {
		started := class
		started.StartDate = now.AddDate(0, 0, -3)

		err := ValidateEnrollmentDate(at(started.StartDate), started, now)
		require.ErrorIs(t, err, ErrInvalidEnrollmentDate)
		require.Contains(t, err.Error(), "before the class start date")
	})
}
