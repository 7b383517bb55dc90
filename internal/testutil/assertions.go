// Package testutil provides test helpers: a fake budget backend, category
// tree fixtures, and assertions.
package testutil

import (
	"errors"
	"testing"

	apperrors "budgetgrid/internal/errors"
)

// AssertNoError fails the test immediately when err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAppError fails unless err is an AppError with the given code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected AppError with code %s, got nil", code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected error code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}
