package utils

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeTransport ErrorType = "TRANSPORT" // network / HTTP failure
	ErrorTypeDecode    ErrorType = "DECODE"    // malformed JSON or missing required field
	ErrorTypeConfig    ErrorType = "CONFIG"    // missing or unparseable configuration
	ErrorTypeRPC       ErrorType = "RPC"       // JSON-RPC level failure
	ErrorTypeInternal  ErrorType = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Cause     error     `json:"-"`
	Component string    `json:"component"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(format string, args ...interface{}) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message, component string) *AppError {
	return &AppError{
		Type:      errorType,
		Message:   message,
		Component: component,
		Timestamp: time.Now().UTC(),
	}
}

// WrapError wraps an existing error with application error context
func WrapError(err error, errorType ErrorType, message, component string) *AppError {
	appErr := NewAppError(errorType, message, component)
	appErr.Cause = err
	return appErr
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsDecodeError reports whether err is a decode failure
func IsDecodeError(err error) bool {
	return GetErrorType(err) == ErrorTypeDecode
}

// IsTransportError reports whether err is a transport failure
func IsTransportError(err error) bool {
	return GetErrorType(err) == ErrorTypeTransport
}
