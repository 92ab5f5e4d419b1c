package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrInternalServer, cause)

	if !stderrors.Is(err, ErrInternalServer) {
		t.Error("wrapped error should match its sentinel")
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should expose its cause")
	}
	if err.Error() != ErrInternalServer.Message {
		t.Errorf("message leaked internal detail: %q", err.Error())
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "amount must be greater than 0")
	if err.Code != "INVALID_INPUT" || err.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected error %+v", err)
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("sentinel was mutated")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", ErrBudgetConflict)
	appErr, ok := As(wrapped)
	if !ok || appErr.StatusCode != http.StatusConflict {
		t.Fatalf("As() = %v, %v", appErr, ok)
	}
	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Error("plain error should not convert")
	}
}
