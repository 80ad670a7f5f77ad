package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotAssigned     = errors.New("course not assigned to user")
	ErrNotFound        = errors.New("resource not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrCourseNotFound  = fmt.Errorf("course %w", ErrNotFound)
	ErrDevLoginDisable = errors.New("development sign-in is disabled")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any store mutation when input is malformed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid data: " + strings.Join(parts, "; ")
}

// Add records a field problem and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no field was added, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
