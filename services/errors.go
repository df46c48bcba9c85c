package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrJerseyNotFound     = errors.New("jersey not found")
	ErrInvalidLink        = errors.New("invalid link")
	ErrOrderLocked        = errors.New("order is completed and can no longer be edited")
	ErrAlreadySubmitted   = errors.New("jersey details have already been submitted for this order")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrDraftEntryNotFound = errors.New("draft entry not found")
	ErrNotFound           = errors.New("record not found")
)

// ValidationError reports input that was rejected before anything was written
type ValidationError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

func newValidationError(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a *ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
