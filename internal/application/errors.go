package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the caller lacks permission for an operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested record does not exist or is not
	// visible to the caller's tenant.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a uniqueness constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when the account exists but has been disabled.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrConflict is returned when a referenced record prevents the operation.
	ErrConflict = errors.New("conflict")
)

// ValidationError aggregates per-field validation failures for a single request.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = map[string]string{}
	}
	if _, ok := e.FieldErrors[field]; !ok {
		e.FieldErrors[field] = message
	}
}

func (e *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, message := range other.FieldErrors {
		e.add(field, message)
	}
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.FieldErrors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
