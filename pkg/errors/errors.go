package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// ErrorCode identifies the specific soft-failure an operation ran into.
// Codes double as the "reason" label on the rejections metric.
type ErrorCode string

const (
	CodeInvalidGeometry ErrorCode = "invalid_geometry"
	CodeZeroScale       ErrorCode = "zero_scale"
	CodeStaleReference  ErrorCode = "stale_reference"
	CodeSelfReference   ErrorCode = "self_reference"
	CodeDuplicateEdge   ErrorCode = "duplicate_edge"
	CodeEdgeNotFound    ErrorCode = "edge_not_found"
	CodeEmptyGraph      ErrorCode = "empty_graph"
	CodeInvalidInput    ErrorCode = "invalid_input"
	CodeInternal        ErrorCode = "internal"
)

// String returns the string form of the code
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return &AppError{Type: ErrorTypeValidation, Code: CodeInvalidInput, Message: message}
}

// NewInvalidGeometry reports a NaN/Inf coordinate or an unusable scale.
func NewInvalidGeometry(message string) error {
	return &AppError{Type: ErrorTypeValidation, Code: CodeInvalidGeometry, Message: message}
}

// NewZeroScale reports a transform attempted with a scale of exactly zero.
func NewZeroScale() error {
	return &AppError{Type: ErrorTypeValidation, Code: CodeZeroScale, Message: "scale must not be zero"}
}

// NewSelfReference reports an attempt to connect a node to itself.
func NewSelfReference(nodeID string) error {
	return &AppError{Type: ErrorTypeValidation, Code: CodeSelfReference, Message: "cannot connect node to itself: " + nodeID}
}

// NewNotFoundError creates a not found error for a stale reference
func NewNotFoundError(resource string) error {
	return &AppError{Type: ErrorTypeNotFound, Code: CodeStaleReference, Message: resource + " not found"}
}

// NewEdgeNotFound reports a disconnect of an edge that does not exist.
func NewEdgeNotFound(sourceID, targetID string) error {
	return &AppError{Type: ErrorTypeNotFound, Code: CodeEdgeNotFound, Message: "connection " + sourceID + "->" + targetID + " not found"}
}

// NewEmptyGraph reports a command that needs at least one node.
func NewEmptyGraph(operation string) error {
	return &AppError{Type: ErrorTypeNotFound, Code: CodeEmptyGraph, Message: operation + ": no nodes"}
}

// NewConflictError creates a conflict error for a duplicate connection
func NewConflictError(message string) error {
	return &AppError{Type: ErrorTypeConflict, Code: CodeDuplicateEdge, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Code: CodeInternal, Message: message, Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return typeOf(err) == ErrorTypeValidation
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return typeOf(err) == ErrorTypeNotFound
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return typeOf(err) == ErrorTypeConflict
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return typeOf(err) == ErrorTypeInternal
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func typeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
