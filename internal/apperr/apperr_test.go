package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation(map[string]string{"name": "required"}), http.StatusUnprocessableEntity},
		{"unauthenticated", Unauthenticated("Please login to get access!"), http.StatusUnauthorized},
		{"not found", NotFound("Cashbook not found!"), http.StatusNotFound},
		{"conflict", Conflict("Email already in use!"), http.StatusBadRequest},
		{"internal", Internal("Couldn't load cashbook!", errors.New("disk error")), http.StatusInternalServerError},
		{"unknown kind", &Error{Kind: Kind(99)}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOperational(t *testing.T) {
	if Internal("boom", nil).Operational() {
		t.Error("internal errors must not be operational")
	}
	if !NotFound("gone").Operational() {
		t.Error("not-found errors are operational")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}

	orig := NotFound("Category not found!")
	if got := From(orig); got != orig {
		t.Error("From should pass a tagged error through unchanged")
	}

	cause := errors.New("constraint failed")
	wrapped := From(cause)
	if wrapped.Kind != KindInternal {
		t.Errorf("Kind = %v, want KindInternal", wrapped.Kind)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
}
