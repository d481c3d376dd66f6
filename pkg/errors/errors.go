package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates required input was missing or empty
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeLookup indicates the maps provider answered with a non-success status
	ErrorTypeLookup ErrorType = "LOOKUP"

	// ErrorTypeNoRoute indicates the provider found no route between two places
	ErrorTypeNoRoute ErrorType = "NO_ROUTE"

	// ErrorTypeTransport indicates a network or protocol failure talking to the provider
	ErrorTypeTransport ErrorType = "TRANSPORT"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Status is the provider status string for lookup errors.
	Status string
	Err    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewLookupError creates an error carrying the provider status string
func NewLookupError(message, status string) *AppError {
	return NewLookupErrorWithDetail(message, status, "")
}

// NewLookupErrorWithDetail adds the provider's own explanation when it sent one
func NewLookupErrorWithDetail(message, status, detail string) *AppError {
	msg := fmt.Sprintf("%s: %s", message, status)
	if detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, detail)
	}
	return &AppError{
		Type:    ErrorTypeLookup,
		Message: msg,
		Status:  status,
	}
}

// NewNoRouteError creates a new no route error
func NewNoRouteError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNoRoute,
		Message: message,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err's chain holds an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
