package apperror

import "net/http"

// AppError is an error that knows which HTTP status it maps to.
// Every package declares its sentinel errors with it, so handlers can
// report validation, permission, not-found and conflict failures uniformly.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation is malformed or rule-violating input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Forbidden is an actor lacking the role or ownership for an action.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// NotFound is a missing or invisible entity.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// Conflict is a lost race or a duplicate write.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}
