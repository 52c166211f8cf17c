package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// Service-level errors.
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStore              = errors.New("store error")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError reports a rejected request together with the fields that
// caused it. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
	Fields  []string
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
