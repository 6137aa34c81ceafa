package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the food, cart and user services.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
	ErrConflict        = errors.New("conflict")
	ErrServiceUnavail  = errors.New("service unavailable")
	ErrTooManyRequests = errors.New("too many requests")
)

// kind binds a sentinel to its wire code and HTTP status.
type kind struct {
	sentinel error
	code     string
	status   int
}

var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrAlreadyExists, "ALREADY_EXISTS", http.StatusConflict},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrTooManyRequests, "RATE_LIMITED", http.StatusTooManyRequests},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
}

func kindOf(sentinel error) kind {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return k
		}
	}
	return kind{sentinel, "INTERNAL_ERROR", http.StatusInternalServerError}
}

// AppError is an error the handlers can answer with directly: Message is
// safe to show a customer, Status is the HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func newAppError(sentinel error, message string) *AppError {
	k := kindOf(sentinel)
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound reports a missing resource by kind and id.
func NotFound(resource, id string) *AppError {
	return newAppError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

// NotFoundMessage is NotFound with a caller supplied message.
func NotFoundMessage(message string) *AppError {
	return newAppError(ErrNotFound, message)
}

// AlreadyExists reports a uniqueness clash on field.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(ErrAlreadyExists, fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError    { return newAppError(ErrInvalidInput, message) }
func Unauthorized(message string) *AppError    { return newAppError(ErrUnauthorized, message) }
func Forbidden(message string) *AppError       { return newAppError(ErrForbidden, message) }
func Conflict(message string) *AppError        { return newAppError(ErrConflict, message) }
func TooManyRequests(message string) *AppError { return newAppError(ErrTooManyRequests, message) }

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap prefixes err with message, keeping it matchable by errors.Is.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus picks the response status for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns what a client may see for err. 5xx errors and
// anything unclassified collapse to a generic message.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return appErr.Message
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrAlreadyExists):
		return ErrAlreadyExists.Error()
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return "an internal error occurred"
	}
}
