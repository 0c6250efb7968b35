package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
)

var ErrInvalidForm = errors.New("invalid_form")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// FormError carries one message per invalid field, keyed by form field name.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string { return "invalid form: " + e.summary() }

func (e *FormError) Is(target error) bool { return target == ErrInvalidForm }

func (e *FormError) summary() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// fieldMessages maps "field.tag" to the message shown for that failure.
// A bare "field" entry covers every other tag on the field.
type fieldMessages map[string]string

// checkForm validates form and translates failures through msgs.
func checkForm(form any, msgs fieldMessages) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	fe := &FormError{Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		field := v.Field()
		if _, seen := fe.Fields[field]; seen {
			continue
		}
		msg, ok := msgs[field+"."+v.Tag()]
		if !ok {
			msg, ok = msgs[field]
		}
		if !ok {
			msg = v.Error()
		}
		fe.Fields[field] = msg
	}
	return fe
}

type enrollmentForm struct {
	UserID  string `form:"userId" validate:"required,uuid"`
	ClassID string `form:"classId" validate:"required,uuid"`
}

var enrollmentFormMessages = fieldMessages{
	"userId":  "User ID must be a valid UUID.",
	"classId": "Class ID must be a valid UUID.",
}

// validateEnrollmentForm returns the first problem with the ids Submit is
// about to send, or "".
func validateEnrollmentForm(userID, classID string) string {
	err := checkForm(enrollmentForm{UserID: userID, ClassID: classID}, enrollmentFormMessages)
	var fe *FormError
	if !errors.As(err, &fe) {
		if err != nil {
			return err.Error()
		}
		return ""
	}
	for _, field := range []string{"userId", "classId"} {
		if msg, ok := fe.Fields[field]; ok {
			return msg
		}
	}
	return fe.Error()
}

// UserMessage renders err the way it should be shown to a person: refusal
// reasons and store messages verbatim, form errors field by field.
func UserMessage(err error) string {
	var (
		be *BlockedError
		fe *FormError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &be):
		return be.Message
	case errors.As(err, &fe):
		return fe.summary()
	}
	if msg, ok := directory.Message(err); ok {
		return msg
	}
	return err.Error()
}
