// Package dataframe provides the in-memory table the cleaning routines operate on.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/validation"
)

// DataFrame represents a table of data with typed columns.
// Every operation returns a new DataFrame; the receiver is never modified.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries.
// It panics when the columns differ in length or share a name; use NewSafe
// for input that has not been checked.
func New(series ...ISeries) *DataFrame {
	df, err := NewSafe(series...)
	if err != nil {
		panic(err.Error())
	}
	return df
}

// NewSafe creates a new DataFrame, rejecting columns whose length differs from
// the first column and repeated column names. On error the caller keeps
// ownership of the series.
func NewSafe(series ...ISeries) (*DataFrame, error) {
	columns := make(map[string]ISeries, len(series))
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, dup := columns[name]; dup {
			return nil, errors.NewInvalidInputError("NewDataFrame", fmt.Sprintf("duplicate column %q", name))
		}
		if len(order) > 0 {
			if err := validation.ValidateLength(series[0].Len(), s.Len(), "NewDataFrame", "column "+name); err != nil {
				return nil, err
			}
		}
		columns[name] = s
		order = append(order, name)
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}, nil
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (all columns share the same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// ColumnAt returns the series at the given position.
func (df *DataFrame) ColumnAt(index int) (ISeries, bool) {
	if index < 0 || index >= len(df.order) {
		return nil, false
	}
	return df.columns[df.order[index]], true
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// ColumnsOfKind returns, in column order, the names of columns with the given kind.
func (df *DataFrame) ColumnsOfKind(kind series.Kind) []string {
	names := make([]string, 0, len(df.order))
	for _, name := range df.order {
		if df.columns[name].Kind() == kind {
			names = append(names, name)
		}
	}
	return names
}

// NullCount returns the number of missing cells across all columns.
func (df *DataFrame) NullCount() int {
	total := 0
	for _, name := range df.order {
		total += df.columns[name].NullN()
	}
	return total
}

// Select returns a new DataFrame with only the specified columns
func (df *DataFrame) Select(names ...string) *DataFrame {
	selected := make([]ISeries, 0, len(names))
	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			selected = append(selected, share(s))
		}
	}
	return New(selected...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			kept = append(kept, share(df.columns[name]))
		}
	}
	return New(kept...)
}

// WithColumn returns a new DataFrame where s replaces the column of the same
// name in place, or is appended when no such column exists. The new frame
// takes ownership of s.
func (df *DataFrame) WithColumn(s ISeries) (*DataFrame, error) {
	if df.Width() > 0 {
		if err := validation.ValidateLength(df.Len(), s.Len(), "WithColumn", "column "+s.Name()); err != nil {
			return nil, err
		}
	}

	out := make([]ISeries, 0, len(df.order)+1)
	replaced := false
	for _, name := range df.order {
		if name == s.Name() {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, share(df.columns[name]))
	}
	if !replaced {
		out = append(out, s)
	}
	return New(out...), nil
}

// Take returns a new DataFrame holding the given rows, in the given order.
// Every column is gathered with the same row list, so rows stay aligned.
func (df *DataFrame) Take(rows []int) (*DataFrame, error) {
	n := df.Len()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row index %d out of bounds [0, %d)", r, n)
		}
	}

	mem := memory.NewGoAllocator()
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s, err := takeSeries(df.columns[name], rows, mem)
		if err != nil {
			for _, done := range taken {
				done.Release()
			}
			return nil, err
		}
		taken = append(taken, s)
	}
	return New(taken...), nil
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end (exclusive)
func (df *DataFrame) Slice(start, end int) *DataFrame {
	length := df.Len()
	if start < 0 || start >= end || start >= length {
		return df.emptyLike()
	}
	if end > length {
		end = length
	}

	rows := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, i)
	}
	out, err := df.Take(rows)
	if err != nil {
		return df.emptyLike()
	}
	return out
}

// emptyLike returns a frame with the same columns and no rows.
func (df *DataFrame) emptyLike() *DataFrame {
	out, err := df.Take(nil)
	if err != nil {
		return New()
	}
	return out
}

// DropNulls returns a new DataFrame without any row that has a missing cell.
func (df *DataFrame) DropNulls() (*DataFrame, error) {
	rows := make([]int, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		if !df.RowHasNull(i) {
			rows = append(rows, i)
		}
	}
	return df.Take(rows)
}

// RowHasNull reports whether any cell in row i is missing.
func (df *DataFrame) RowHasNull(i int) bool {
	for _, name := range df.order {
		if df.columns[name].IsNull(i) {
			return true
		}
	}
	return false
}

// Equal reports whether both frames have the same columns, in the same order,
// with the same types and cells. Missing cells equal missing cells.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.Width() != other.Width() || df.Len() != other.Len() {
		return false
	}
	for i, name := range df.order {
		if other.order[i] != name {
			return false
		}
		a, b := df.columns[name], other.columns[name]
		if !arrow.TypeEqual(a.DataType(), b.DataType()) {
			return false
		}
		left, right := a.Array(), b.Array()
		equal := array.Equal(left, right)
		left.Release()
		right.Release()
		if !equal {
			return false
		}
	}
	return true
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		s := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s (%s, nulls=%d)",
			name, s.DataType().String(), s.Kind(), s.NullN()))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
}

// share wraps the same Arrow array under a new series holding its own
// reference, so frames derived from one another can be released independently.
func share(s ISeries) ISeries {
	arr := s.Array()
	if arr == nil {
		return s
	}
	wrapped, err := series.FromArray(s.Name(), arr)
	if err != nil {
		arr.Release()
		return s
	}
	return wrapped
}

// takeSeries gathers rows of one column into a new series with independent memory.
func takeSeries(s ISeries, rows []int, mem memory.Allocator) (ISeries, error) {
	arr := s.Array()
	if arr == nil {
		return nil, fmt.Errorf("column %s has no data", s.Name())
	}
	defer arr.Release()

	switch typed := arr.(type) {
	case *array.String:
		return takeTyped(s.Name(), typed, rows, mem, typed.Value)
	case *array.Int64:
		return takeTyped(s.Name(), typed, rows, mem, typed.Value)
	case *array.Float64:
		return takeTyped(s.Name(), typed, rows, mem, typed.Value)
	case *array.Boolean:
		return takeTyped(s.Name(), typed, rows, mem, typed.Value)
	default:
		return nil, fmt.Errorf("column %s: unsupported type %s", s.Name(), arr.DataType())
	}
}

// takeTyped is a generic helper for gathering typed rows, nulls included
func takeTyped[T any](
	name string, arr arrow.Array, rows []int, mem memory.Allocator, getValue func(int) T,
) (ISeries, error) {
	values := make([]T, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		if arr.IsValid(r) {
			values[i] = getValue(r)
			valid[i] = true
		}
	}
	s, err := series.NewSafe(name, values, valid, mem)
	if err != nil {
		return nil, err
	}
	return s, nil
}
