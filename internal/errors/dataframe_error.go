// Package errors provides standardized error types for DataFrame operations.
// This package defines DataFrameError for consistent error handling across
// all public APIs, with operation context and error wrapping support.
package errors

import (
	"fmt"
	"strings"
)

// DataFrameError represents standardized errors across all DataFrame operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "ImputeMissingValues", "NormalizeData")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, msg)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// Sentinels declared with Op "validation" match any operation.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "validation" && df.Column == "" {
		return e.Message == df.Message
	}
	return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
	}
}

// NewInvalidOptionError creates an error for an enum-like parameter that
// holds a value outside its allowed set.
func NewInvalidOptionError(op, param, value string, allowed ...string) *DataFrameError {
	return &DataFrameError{
		Op: op,
		Message: fmt.Sprintf("invalid %s %q: must be one of %s",
			param, value, strings.Join(allowed, ", ")),
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// NewStratifyError creates an error for a stratified split that cannot keep
// every class on both sides.
func NewStratifyError(op, detail string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: ErrStratify.Message,
		Cause:   fmt.Errorf("%s", detail),
	}
}

// Predefined error variables for common cases
var (
	// ErrEmptyDataFrame indicates operations on empty DataFrames
	ErrEmptyDataFrame = &DataFrameError{
		Op:      "validation",
		Message: "operation not supported on empty DataFrame",
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &DataFrameError{
		Op:      "validation",
		Message: "arrays must have the same length",
	}

	// ErrNoNumericColumns indicates a numeric-only operation on a frame without numeric columns
	ErrNoNumericColumns = &DataFrameError{
		Op:      "validation",
		Message: "no numeric columns",
	}

	// ErrStratify indicates a class too small to appear in both splits
	ErrStratify = &DataFrameError{
		Op:      "validation",
		Message: "cannot stratify split",
	}
)
