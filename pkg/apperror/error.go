package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError for logging and client messaging.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindUpload      Kind = "upload"
	KindPersistence Kind = "persistence"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

type AppError struct {
	Code    int         `json:"code"`
	Kind    Kind        `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForCode(code),
		Message: message,
		Err:     err,
	}
}

func kindForCode(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// Validation reports a recoverable policy violation; details carries every
// violated field so the caller can surface them all at once.
func Validation(message string, details interface{}) *AppError {
	e := New(http.StatusBadRequest, message, nil)
	e.Details = details
	return e
}

// Upload wraps a storage failure. The message stays generic.
func Upload(err error) *AppError {
	e := New(http.StatusInternalServerError, "Failed to upload photo", err)
	e.Kind = KindUpload
	return e
}

// Persistence wraps a database failure. The message stays generic.
func Persistence(err error) *AppError {
	e := New(http.StatusInternalServerError, "Failed to save data", err)
	e.Kind = KindPersistence
	return e
}

// Auth carries the provider's message verbatim to the login form.
func Auth(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Unavailable(message string) *AppError {
	return New(http.StatusServiceUnavailable, message, nil)
}

// KindOf returns the kind of err, or KindInternal for non-AppErrors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
