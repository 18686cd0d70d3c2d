package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError for the HTTP layer.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindAlreadyExists    ErrorKind = "already_exists"
	KindNotFound         ErrorKind = "not_found"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindInternal         ErrorKind = "internal"
)

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field messages of a validation error.
	Fields map[string][]string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewFieldError is a validation error carrying a single field message.
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

func NewAlreadyExistsError(message string) *AppError {
	return &AppError{Kind: KindAlreadyExists, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewPermissionDeniedError(message string) *AppError {
	return &AppError{Kind: KindPermissionDenied, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// KindOf returns the kind of the first AppError in err's chain, KindInternal otherwise.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NotFound AppError.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAlreadyExists reports whether err is an AlreadyExists AppError.
func IsAlreadyExists(err error) bool {
	return KindOf(err) == KindAlreadyExists
}
