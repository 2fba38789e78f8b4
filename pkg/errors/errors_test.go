package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidationError("body is required")
	notFound := NewNotFoundError("recipient not found")
	infra := NewInfrastructureError("create message", fmt.Errorf("connection refused"))

	if !IsValidation(validation) || IsValidation(notFound) || IsValidation(infra) {
		t.Error("IsValidation misclassifies")
	}
	if !IsNotFound(notFound) || IsNotFound(validation) || IsNotFound(infra) {
		t.Error("IsNotFound misclassifies")
	}
	if !IsInfrastructure(infra) || IsInfrastructure(validation) || IsInfrastructure(notFound) {
		t.Error("IsInfrastructure misclassifies")
	}

	// Сентинели тоже считаются not found
	if !IsNotFound(ErrUserNotFound) || !IsNotFound(ErrListingNotFound) {
		t.Error("sentinel not-found errors not recognized")
	}
}

func TestInfrastructureErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewInfrastructureError("create message", cause)

	if err.Unwrap() != cause {
		t.Error("InfrastructureError must unwrap to its cause")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsInfrastructure(wrapped) {
		t.Error("IsInfrastructure must see through wrapping")
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad input"), http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), http.StatusNotFound},
		{"infrastructure", NewInfrastructureError("op", fmt.Errorf("boom")), http.StatusInternalServerError},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"duplicate user", ErrUserAlreadyExists, http.StatusConflict},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tc.err); got != tc.want {
				t.Errorf("HTTPStatusFromError(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
