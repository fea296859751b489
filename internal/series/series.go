// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Kind tags a column with the semantic type the cleaning routines dispatch on.
type Kind int

const (
	// KindUnknown is reported for Arrow types the package does not build.
	KindUnknown Kind = iota
	// KindNumeric covers int64 and float64 columns.
	KindNumeric
	// KindCategorical covers string columns.
	KindCategorical
	// KindBoolean covers bool columns such as one-hot indicators.
	KindBoolean
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// KindOf maps an Arrow data type to its column kind.
func KindOf(dt arrow.DataType) Kind {
	if dt == nil {
		return KindUnknown
	}
	switch dt.ID() {
	case arrow.INT64, arrow.FLOAT64:
		return KindNumeric
	case arrow.STRING:
		return KindCategorical
	case arrow.BOOL:
		return KindBoolean
	default:
		return KindUnknown
	}
}

// Series represents a typed data column with Apache Arrow backend.
// Missing cells are Arrow nulls.
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values with no missing cells.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewWithNulls(name, values, nil, mem)
}

// NewWithNulls creates a new Series where valid[i] == false marks row i as
// missing. A nil valid slice means every value is present.
func NewWithNulls[T any](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	s, err := NewSafe(name, values, valid, mem)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// NewSafe is the error-returning form of NewWithNulls.
func NewSafe[T any](name string, values []T, valid []bool, mem memory.Allocator) (*Series[T], error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("series %s: validity length %d does not match %d values", name, len(valid), len(values))
	}

	var arr arrow.Array

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	default:
		return nil, fmt.Errorf("unsupported type: %T", values)
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}, nil
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Kind returns the semantic column kind.
func (s *Series[T]) Kind() Kind {
	return KindOf(s.array.DataType())
}

// NullN returns the number of missing cells.
func (s *Series[T]) NullN() int {
	return s.array.NullN()
}

// Float64At returns the cell as a float64. ok is false for missing cells and
// for non-numeric columns; booleans read as 0 or 1.
func (s *Series[T]) Float64At(index int) (float64, bool) {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return 0, false
	}
	switch arr := s.array.(type) {
	case *array.Float64:
		return arr.Value(index), true
	case *array.Int64:
		return float64(arr.Value(index)), true
	case *array.Boolean:
		if arr.Value(index) {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// GetAsString formats the cell for display and CSV output. Missing cells
// format as the empty string.
func (s *Series[T]) GetAsString(index int) string {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return ""
	}
	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index))
	default:
		return ""
	}
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d, nulls=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len(),
		s.NullN())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}

// Interface is the type-erased view every Series[T] satisfies.
type Interface interface {
	Name() string
	Len() int
	Kind() Kind
	NullN() int
	DataType() arrow.DataType
	IsNull(index int) bool
	Float64At(index int) (float64, bool)
	GetAsString(index int) string
	String() string
	Array() arrow.Array
	Release()
}

// FromArray wraps an existing Arrow array under a new name. The series takes
// over one reference to arr; callers that keep using arr must Retain it first.
func FromArray(name string, arr arrow.Array) (Interface, error) {
	switch arr.(type) {
	case *array.String:
		return &Series[string]{name: name, array: arr}, nil
	case *array.Int64:
		return &Series[int64]{name: name, array: arr}, nil
	case *array.Float64:
		return &Series[float64]{name: name, array: arr}, nil
	case *array.Boolean:
		return &Series[bool]{name: name, array: arr}, nil
	default:
		return nil, fmt.Errorf("unsupported array type: %s", arr.DataType())
	}
}
