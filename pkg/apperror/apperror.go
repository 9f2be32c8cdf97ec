package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for capability checks and lookups
var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

// ValidationError reports malformed input, rejected before any write
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NewValidation builds a ValidationError with optional field context
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StateConflictError reports a workflow transition attempted from a state
// that does not allow it. It always names the current state.
type StateConflictError struct {
	Entity       string
	CurrentState string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s is already %s", e.Entity, e.CurrentState)
}

func NewStateConflict(entity, currentState string) error {
	return &StateConflictError{Entity: entity, CurrentState: currentState}
}

// PersistenceError wraps a failed store read/write on a primary workflow path.
// Callers must retry the whole operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// DeliveryError wraps a failed outbound send. It is recorded in the email log
// and never returned to the workflow that triggered the send.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the HTTP status code handlers should answer with.
// Unclassified errors fall back to 400, matching the blanket handling of most
// CRUD endpoints.
func HTTPStatus(err error) int {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var conflict *StateConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict
	}
	var persistence *PersistenceError
	if errors.As(err, &persistence) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
