package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"forbidden", ErrForbidden},
		{"invalid order", ErrInvalidOrder},
		{"validation", ErrValidation},
		{"conflict", ErrConflict},
		{"transport", ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	validation := fmt.Errorf("change status: %w", NewValidationError("illegal transition from CLAIMED to PENDING"))
	if !stdErrors.Is(validation, ErrValidation) {
		t.Fatalf("expected validation sentinel, got %v", validation)
	}

	current := model.Order{ID: "o-1", Status: model.OrderStatusRejected, RejectionReason: "duplicate"}
	conflict := fmt.Errorf("update: %w", &ConflictError{Current: current})
	if !stdErrors.Is(conflict, ErrConflict) {
		t.Fatalf("expected conflict sentinel, got %v", conflict)
	}
	var ce *ConflictError
	if !stdErrors.As(conflict, &ce) || ce.Current.Status != model.OrderStatusRejected {
		t.Fatalf("expected conflict to carry current snapshot, got %+v", ce)
	}

	cause := stdErrors.New("connection refused")
	transport := &TransportError{Cause: cause}
	if !stdErrors.Is(transport, ErrTransport) || !stdErrors.Is(transport, cause) {
		t.Fatalf("expected transport to unwrap to sentinel and cause")
	}
	if transport.Error() != "transport failure: connection refused" {
		t.Fatalf("unexpected message %q", transport.Error())
	}
	if !stdErrors.Is(&TransportError{StatusCode: 502}, ErrTransport) {
		t.Fatal("expected transport sentinel without cause")
	}
}

func TestMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("rejection reason is required"), "rejection reason is required"},
		{"conflict verbatim", &ConflictError{Message: "order was already rejected"}, "order was already rejected"},
		{"conflict fallback", &ConflictError{}, "The order was changed by someone else. Review the latest version and try again."},
		{"transport verbatim", &TransportError{StatusCode: 503, Message: "database unavailable"}, "database unavailable"},
		{"transport fallback", &TransportError{Cause: stdErrors.New("eof")}, GenericMessage},
		{"not found", fmt.Errorf("fetch: %w", ErrNotFound), "Order not found."},
		{"forbidden", ErrForbidden, "You are not allowed to perform this action."},
		{"unknown", stdErrors.New("boom"), GenericMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Message(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
