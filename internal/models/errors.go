package models

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every rejected operation wraps exactly one of these.
var (
	ErrValidation      = errors.New("splitledger: validation failed")
	ErrUnknownUser     = errors.New("splitledger: unknown user")
	ErrNotReady        = errors.New("splitledger: expense shares not finalized")
	ErrAlreadySettled  = errors.New("splitledger: expense already settled")
	ErrState           = errors.New("splitledger: illegal expense state transition")
	ErrExpenseNotFound = errors.New("splitledger: expense not found")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("splitledger: validation failed for %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for field with a formatted message.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnknownUserError reports a reference to an unregistered user.
type UnknownUserError struct {
	UserID string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("splitledger: unknown user %q", e.UserID)
}

// Is reports whether target is ErrUnknownUser.
func (e *UnknownUserError) Is(target error) bool { return target == ErrUnknownUser }

// StateError reports an operation that is not allowed in the expense's current state.
type StateError struct {
	ExpenseID string
	State     ExpenseState
	Op        string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("splitledger: cannot %s expense %s in state %s", e.Op, e.ExpenseID, e.State)
}

// Is reports whether target is ErrState.
func (e *StateError) Is(target error) bool { return target == ErrState }

// IsRejected returns true if err is one of the domain rejections, as opposed
// to an infrastructure failure from a storage backend.
func IsRejected(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnknownUser) ||
		errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrState) ||
		errors.Is(err, ErrExpenseNotFound)
}
