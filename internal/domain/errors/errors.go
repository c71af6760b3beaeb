package errors

import (
	"errors"
	"strings"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidOrder       = errors.New("invalid order")

	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("order state conflict")
	ErrTransport  = errors.New("transport failure")
)

// GenericMessage is shown when a failure carries no collaborator message.
const GenericMessage = "Something went wrong. Please try again."

// ValidationError is raised before any network call for illegal requests.
type ValidationError struct {
	Reason string
}

// NewValidationError builds ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError reports that the server-side order no longer matches the caller's snapshot.
type ConflictError struct {
	Message string
	Current model.Order
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return "order state conflict: " + e.Message
	}
	return "order state conflict"
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// TransportError wraps network and server failures unrelated to business rules.
type TransportError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("transport failure")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}

// Message renders a user-facing failure reason.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) && validation.Reason != "" {
		return validation.Reason
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		if conflict.Message != "" {
			return conflict.Message
		}
		return "The order was changed by someone else. Review the latest version and try again."
	}

	var transport *TransportError
	if errors.As(err, &transport) && transport.Message != "" {
		return transport.Message
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "Order not found."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to perform this action."
	}

	return GenericMessage
}
