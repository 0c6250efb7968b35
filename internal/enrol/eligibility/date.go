package eligibility

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

var ErrInvalidEnrollmentDate = errors.New("eligibility: invalid enrollment date")

// DateError explains why an enrollment date was refused.
type DateError struct {
	Message string
}

func (e *DateError) Error() string        { return e.Message }
func (e *DateError) Is(target error) bool { return target == ErrInvalidEnrollmentDate }

const (
	msgDateWindow      = "Enrollment date must be a valid date, cannot be in the future and cannot be more than one year ago."
	msgDateBeforeStart = "Enrollment date must be before the class start date and cannot be in the future."
)

// ValidateEnrollmentDate checks an optional back-dated enrollment date. A nil
// date means "now" and always passes.
func ValidateEnrollmentDate(date *time.Time, class domain.Class, now time.Time) error {
	if date == nil {
		return nil
	}
	d := *date
	if d.IsZero() || d.After(now) || d.Before(now.AddDate(-1, 0, 0)) {
		return &DateError{Message: msgDateWindow}
	}
	if !d.Before(class.StartDate) {
		return &DateError{Message: msgDateBeforeStart}
	}
	return nil
}
