// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer. Domain packages wrap these so the
// boundary can classify failures with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error codes carried in the optional "code" field of error bodies.
const (
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

// RespondError maps domain errors to JSON error responses.
func RespondError(w http.ResponseWriter, err error) {
	RespondErrorLog(w, nil, err)
}

// RespondErrorLog behaves like RespondError and logs unexpected failures.
func RespondErrorLog(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Error(w, status, "Internal server error", CodeInternal)
		return
	}
	message := err.Error()
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Error()
		if domainErr.Code != "" {
			code = domainErr.Code
		}
	}
	Error(w, status, message, code)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// DomainError carries a human readable message together with the kind used
// for status mapping and an optional machine code.
type DomainError struct {
	Kind    error
	Code    string
	Message string
}

// NewError builds a DomainError of the given kind.
func NewError(kind error, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// NewCodedError builds a DomainError with an explicit code.
func NewCodedError(kind error, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Validationf formats a validation failure.
func Validationf(format string, args ...any) *DomainError {
	return &DomainError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "error"
}

func (e *DomainError) Unwrap() error { return e.Kind }
