// Package errors provides the application error taxonomy. Every failure that
// can reach a page carries an AppError so the user always sees a dismissible
// notice with a meaningful description instead of a silent log line.
package errors

import "net/http"

// AppError is a structured application error with a stable code, a
// user-visible message, the HTTP status to respond with, and an optional
// wrapped internal error that never reaches the page.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an
// internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message. Used to surface
// backend-provided descriptions under a known code.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Backend transport errors. The budget backend is an external collaborator;
// a transport failure leaves the session interactive and the user may retry.
var (
	ErrBackendUnavailable = &AppError{Code: "BACKEND_UNAVAILABLE", Message: "The budget service is unreachable", StatusCode: http.StatusBadGateway}
	ErrBackendRejected    = &AppError{Code: "BACKEND_REJECTED", Message: "The budget service rejected the request", StatusCode: http.StatusBadGateway}
	ErrBadResponse        = &AppError{Code: "BAD_RESPONSE", Message: "The budget service returned an unreadable response", StatusCode: http.StatusBadGateway}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
)
