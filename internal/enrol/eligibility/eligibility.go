// Package eligibility decides whether a user may be enrolled in a class.
//
// Everything here is pure: callers fetch the facts, the package only judges
// them. The checks run in a fixed order and the first failing check wins.
package eligibility

import (
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

// Reason names why an enrollment is refused.
type Reason string

const (
	ReasonNone                Reason = ""
	DuplicateCourseEnrollment Reason = "DUPLICATE_COURSE_ENROLLMENT"
	ClassClosed               Reason = "CLASS_CLOSED"
	CapacityExceeded          Reason = "CAPACITY_EXCEEDED"
	AfterStart                Reason = "AFTER_START"
	AfterEnd                  Reason = "AFTER_END"
)

var messages = map[Reason]string{
	DuplicateCourseEnrollment: "User is already enrolled in a class of this course. A user cannot be enrolled in more than one class of the same course.",
	ClassClosed:               "Class is closed. Enrollments are not possible.",
	CapacityExceeded:          "Class is full. No more enrollments are possible.",
	AfterStart:                "Enrollment is not possible after the class has started.",
	AfterEnd:                  "Enrollment is not possible after the class has ended.",
}

// Message returns the human-readable text shown for r.
func (r Reason) Message() string { return messages[r] }

func (r Reason) String() string { return string(r) }

// Facts is everything Evaluate needs. Enrollments are the candidate's
// existing enrollments across all courses; Occupancy is the current number
// of enrollments in Class.
type Facts struct {
	Class       domain.Class
	Enrollments []domain.EnrollmentDetails
	Occupancy   int
	Now         time.Time
}

type Decision struct {
	Eligible bool
	Reason   Reason
}

// Message returns the refusal text, or "" when eligible.
func (d Decision) Message() string { return d.Reason.Message() }

func eligible() Decision { return Decision{Eligible: true} }

func refused(r Reason) Decision { return Decision{Reason: r} }

// Evaluate runs every check in precedence order:
// duplicate course, closed, capacity, then the timing window.
func Evaluate(f Facts) Decision {
	if HasCourseEnrollment(f.Enrollments, f.Class.CourseID) {
		return refused(DuplicateCourseEnrollment)
	}
	if f.Class.Status == domain.ClassClosed {
		return refused(ClassClosed)
	}
	if f.Occupancy >= f.Class.Capacity {
		return refused(CapacityExceeded)
	}
	if !f.Now.Before(f.Class.StartDate) {
		return refused(AfterStart)
	}
	// Only reachable when the class end precedes its start.
	if f.Now.After(f.Class.EndDate) {
		return refused(AfterEnd)
	}
	return eligible()
}

// HasCourseEnrollment reports whether any enrollment's embedded class
// belongs to courseID. Enrollments without a class snapshot are ignored.
func HasCourseEnrollment(enrollments []domain.EnrollmentDetails, courseID string) bool {
	for _, e := range enrollments {
		if e.Class != nil && e.Class.CourseID == courseID {
			return true
		}
	}
	return false
}

// CanEnroll is the display check for class listings: open and not started.
func CanEnroll(c domain.Class, now time.Time) bool {
	return c.Status == domain.ClassAvailable && now.Before(c.StartDate)
}
