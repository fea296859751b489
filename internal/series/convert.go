package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Float64s copies a numeric or boolean Arrow array into a float64 slice and
// its validity mask. Missing cells hold 0 and valid[i] == false.
func Float64s(arr arrow.Array) ([]float64, []bool, error) {
	values := make([]float64, arr.Len())
	valid := make([]bool, arr.Len())

	switch typed := arr.(type) {
	case *array.Float64:
		for i := range values {
			if typed.IsValid(i) {
				values[i] = typed.Value(i)
				valid[i] = true
			}
		}
	case *array.Int64:
		for i := range values {
			if typed.IsValid(i) {
				values[i] = float64(typed.Value(i))
				valid[i] = true
			}
		}
	case *array.Boolean:
		for i := range values {
			if typed.IsValid(i) {
				if typed.Value(i) {
					values[i] = 1
				}
				valid[i] = true
			}
		}
	default:
		return nil, nil, fmt.Errorf("cannot read %s as float64", arr.DataType())
	}

	return values, valid, nil
}

// Strings copies a string Arrow array into a slice and its validity mask.
func Strings(arr arrow.Array) ([]string, []bool, error) {
	typed, ok := arr.(*array.String)
	if !ok {
		return nil, nil, fmt.Errorf("cannot read %s as string", arr.DataType())
	}

	values := make([]string, typed.Len())
	valid := make([]bool, typed.Len())
	for i := range values {
		if typed.IsValid(i) {
			values[i] = typed.Value(i)
			valid[i] = true
		}
	}
	return values, valid, nil
}

// Present returns the values whose validity flag is set.
func Present[T any](values []T, valid []bool) []T {
	out := make([]T, 0, len(values))
	for i, v := range values {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}
