// Package validation provides input validation utilities for DataFrame operations.
// Validators are small values with a Validate method; CompoundValidator runs
// several of them and reports the first failure.
package validation

import (
	"fmt"
	"math"
	"slices"

	"github.com/paveg/prep/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: errors.ErrMismatchedLength.Message,
			Cause:   fmt.Errorf("%s: expected length %d, got %d", v.context, v.expected, v.actual),
		}
	}
	return nil
}

// RangeValidator validates that a float parameter lies in a closed interval
type RangeValidator struct {
	name     string
	value    float64
	min, max float64
	op       string
}

// NewRangeValidator creates a validator for a bounded numeric parameter
func NewRangeValidator(op, name string, value, minValue, maxValue float64) *RangeValidator {
	return &RangeValidator{
		name:  name,
		value: value,
		min:   minValue,
		max:   maxValue,
		op:    op,
	}
}

// Validate checks that the value is a number within [min, max]
func (v *RangeValidator) Validate() error {
	if math.IsNaN(v.value) || v.value < v.min || v.value > v.max {
		message := fmt.Sprintf("%s must be between %g and %g, got %g", v.name, v.min, v.max, v.value)
		return errors.NewInvalidInputError(v.op, message)
	}
	return nil
}

// OptionValidator validates an enum-like string parameter
type OptionValidator struct {
	name    string
	value   string
	allowed []string
	op      string
}

// NewOptionValidator creates a validator for a parameter with a fixed set of values
func NewOptionValidator(op, name, value string, allowed ...string) *OptionValidator {
	return &OptionValidator{
		name:    name,
		value:   value,
		allowed: allowed,
		op:      op,
	}
}

// Validate checks that the value is one of the allowed options
func (v *OptionValidator) Validate() error {
	if slices.Contains(v.allowed, v.value) {
		return nil
	}
	return errors.NewInvalidOptionError(v.op, v.name, v.value, v.allowed...)
}

// EmptyDataFrameValidator validates operations on empty DataFrames
type EmptyDataFrameValidator struct {
	df ColumnProvider
	op string
}

// NewEmptyDataFrameValidator creates a validator for empty DataFrame checks
func NewEmptyDataFrameValidator(df ColumnProvider, op string) *EmptyDataFrameValidator {
	return &EmptyDataFrameValidator{
		df: df,
		op: op,
	}
}

// Validate checks if DataFrame is empty when operation requires data
func (v *EmptyDataFrameValidator) Validate() error {
	if v.df.Len() == 0 || v.df.Width() == 0 {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: errors.ErrEmptyDataFrame.Message,
		}
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateRange is a convenience function for range validation
func ValidateRange(op, name string, value, minValue, maxValue float64) error {
	return NewRangeValidator(op, name, value, minValue, maxValue).Validate()
}

// ValidateOption is a convenience function for option validation
func ValidateOption(op, name, value string, allowed ...string) error {
	return NewOptionValidator(op, name, value, allowed...).Validate()
}

// ValidateNotEmpty is a convenience function for empty DataFrame validation
func ValidateNotEmpty(df ColumnProvider, op string) error {
	return NewEmptyDataFrameValidator(df, op).Validate()
}
