package shared

import (
	"errors"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = httpx.NewError(httpx.ErrUnauthorized, "Invalid credentials")
	// ErrUnauthenticated indicates no user is attached to the session.
	ErrUnauthenticated = httpx.NewError(httpx.ErrUnauthorized, "Unauthenticated")
	// ErrSessionMissing occurs when no session was loaded for the request.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = httpx.NewError(httpx.ErrForbidden, "CSRF token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = httpx.NewError(httpx.ErrForbidden, "CSRF token mismatch")
)
