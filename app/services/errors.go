package services

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"gorm.io/gorm"
)

// Error is a failure the caller can act on. Controllers turn Code into the
// HTTP status.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string   { return e.Message }
func (e *Error) StatusCode() int { return e.Code }

// Is matches any *Error with the same code, so a specific message still
// satisfies errors.Is(err, ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound  = &Error{Code: http.StatusNotFound, Message: "Not found"}
	ErrForbidden = &Error{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrConflict  = &Error{Code: http.StatusConflict, Message: "Conflict"}
	ErrStorage   = &Error{Code: http.StatusInternalServerError, Message: "Storage error"}

	errSKUTaken = &Error{Code: http.StatusConflict, Message: "The product id has already been taken."}

	ErrUnauthorized       = auth.ErrUnauthorized
	ErrInvalidCredentials = &Error{Code: http.StatusUnauthorized, Message: "Invalid credentials"}
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// storageErr wraps a store failure so it matches ErrStorage and still
// exposes the cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to ErrNotFound and anything else to
// a storage error.
func notFoundOr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return storageErr(op, err)
}
