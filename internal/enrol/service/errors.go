package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/eligibility"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrValidationBlocked = errors.New("validation_blocked")
	ErrTransport         = errors.New("transport_error")
	ErrPrecondition      = errors.New("precondition_failed")

	// ErrSuperseded is returned by a workflow call whose result was
	// discarded because a newer search, selection or session replaced it.
	ErrSuperseded = errors.New("superseded")
)

// BlockedError is returned when an enrollment is refused by the business
// rules. Reason is empty when the enrollment date rule refused it.
type BlockedError struct {
	Reason  eligibility.Reason
	Message string
	Err     error
}

func (e *BlockedError) Error() string        { return e.Message }
func (e *BlockedError) Unwrap() error        { return e.Err }
func (e *BlockedError) Is(target error) bool { return target == ErrValidationBlocked }

func blocked(r eligibility.Reason) *BlockedError {
	return &BlockedError{Reason: r, Message: r.Message()}
}

func transport(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

func precondition(msg string) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, msg)
}

// displayMessage picks the store's own message when it sent one.
func displayMessage(err error, fallback string) string {
	if msg, ok := directory.Message(err); ok {
		return msg
	}
	return fallback
}

// storeErr classifies a Directory Store failure.
func storeErr(op string, err error) error {
	if errors.Is(err, directory.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	}
	return transport(op, err)
}
