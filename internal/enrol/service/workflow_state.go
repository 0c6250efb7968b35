package service

import (
	"slices"
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/eligibility"
	"github.com/aussiebroadwan/coursedesk/pkg/idx"
)

// Phase is where the enrollment workflow stands.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseSearchingUser Phase = "searching_user"
	PhaseUserFound     Phase = "user_found"
	PhaseUserNotFound  Phase = "user_not_found"
	PhaseUserBlocked   Phase = "user_blocked"
	PhaseSearchFailed  Phase = "search_failed"
	PhaseSubmitting    Phase = "submitting"
	PhaseSuccess       Phase = "success"
	PhaseSubmitFailed  Phase = "submit_failed"
	PhaseSubmitBlocked Phase = "submit_blocked"
)

// ClassInfo tracks the target class load independently of Phase.
type ClassInfo string

const (
	ClassInfoNone    ClassInfo = ""
	ClassInfoLoading ClassInfo = "loading"
	ClassInfoReady   ClassInfo = "ready"
	ClassInfoFailed  ClassInfo = "failed"
)

// State is a snapshot of an enrollment session. Values returned by the
// workflow are copies and safe to keep.
type State struct {
	SessionID idx.ID
	ClassID   string
	Phase     Phase

	ClassInfo ClassInfo
	Class     *domain.Class
	Occupancy int

	// Candidates are the users not yet enrolled in the class's course.
	Candidates        []domain.User
	CandidatesLoading bool

	SearchEmail    string
	FoundUser      *domain.User // last located user, kept for display when blocked
	SelectedUserID string
	EnrollmentDate *time.Time

	Reason     eligibility.Reason
	Error      string
	Enrollment *domain.Enrollment
}

// Open reports whether a session is active.
func (s State) Open() bool { return s.ClassID != "" }

// Full reports whether the loaded class has no seats left.
func (s State) Full() bool { return s.Class != nil && s.Occupancy >= s.Class.Capacity }

// Busy reports whether a lookup or submit is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseSearchingUser || s.Phase == PhaseSubmitting || s.ClassInfo == ClassInfoLoading
}

// CanSubmit mirrors the checks Submit makes before any I/O.
func (s State) CanSubmit() bool {
	return s.submitBlocker() == ""
}

func (s State) submitBlocker() string {
	switch {
	case !s.Open():
		return "No class selected."
	case s.Phase == PhaseSubmitting:
		return "An enrollment is already being submitted."
	case s.Phase == PhaseSuccess:
		return "The enrollment was already completed."
	case s.ClassInfo != ClassInfoReady:
		return "Class information is not available yet."
	case s.Phase == PhaseSearchingUser:
		return "Wait for the user lookup to finish."
	case (s.Phase == PhaseSubmitBlocked || s.Phase == PhaseSubmitFailed) && s.Error != "":
		// Pending until DismissError.
		return s.Error
	case s.Phase == PhaseUserBlocked:
		if s.Error != "" {
			return s.Error
		}
		return eligibility.DuplicateCourseEnrollment.Message()
	case s.SelectedUserID == "":
		return "Select a user to enroll."
	}
	return ""
}

func (s State) clone() State {
	out := s
	out.Class = clonePtr(s.Class)
	out.FoundUser = clonePtr(s.FoundUser)
	out.EnrollmentDate = clonePtr(s.EnrollmentDate)
	out.Enrollment = clonePtr(s.Enrollment)
	out.Candidates = slices.Clone(s.Candidates)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// clearCandidate drops the located and selected user along with any
// message they produced.
func (s *State) clearCandidate() {
	s.FoundUser = nil
	s.SelectedUserID = ""
	s.Reason = eligibility.ReasonNone
	s.Error = ""
}
