package domain_test

import (
	"errors"
	"testing"

	"github.com/msomdec/glasses-shop/internal/domain"
)

func TestValidationError(t *testing.T) {
	var verr domain.ValidationError
	if verr.OrNil() != nil {
		t.Fatal("empty ValidationError should be nil")
	}

	verr.Add("password", "Password is required.")
	verr.Add("email", "Email is required.")

	err := verr.OrNil()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatal("ValidationError should match ErrInvalidInput")
	}
	if got, want := err.Error(), "invalid input: email, password"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestCredentialErrorsAreUnauthorized(t *testing.T) {
	for _, err := range []error{domain.ErrUnknownEmail, domain.ErrPasswordMismatch} {
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%v should match ErrUnauthorized", err)
		}
	}
	if errors.Is(domain.ErrUnknownEmail, domain.ErrPasswordMismatch) {
		t.Fatal("credential errors must be distinguishable")
	}
}
