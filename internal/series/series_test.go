package series

import (
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCells[T any](t *testing.T, s *Series[T], want []T) {
	t.Helper()
	require.Equal(t, len(want), s.Len())
	for i, w := range want {
		assert.Equal(t, fmt.Sprint(w), s.GetAsString(i), "cell %d", i)
	}
}

func TestNewSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name         string
		columnName   string
		data         interface{}
		expectedLen  int
		expectedKind Kind
	}{
		{
			name:         "string series",
			columnName:   "city",
			data:         []string{"oslo", "lima", "pune"},
			expectedLen:  3,
			expectedKind: KindCategorical,
		},
		{
			name:         "int64 series",
			columnName:   "target",
			data:         []int64{0, 1, 1},
			expectedLen:  3,
			expectedKind: KindNumeric,
		},
		{
			name:         "float64 series",
			columnName:   "score",
			data:         []float64{85.5, 92.0, 78.3},
			expectedLen:  3,
			expectedKind: KindNumeric,
		},
		{
			name:         "bool series",
			columnName:   "city_oslo",
			data:         []bool{true, false, false},
			expectedLen:  3,
			expectedKind: KindBoolean,
		},
		{
			name:         "empty string series",
			columnName:   "empty",
			data:         []string{},
			expectedLen:  0,
			expectedKind: KindCategorical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch data := tt.data.(type) {
			case []string:
				s := New(tt.columnName, data, mem)
				defer s.Release()
				assert.Equal(t, tt.columnName, s.Name())
				assert.Equal(t, tt.expectedLen, s.Len())
				assert.Equal(t, tt.expectedKind, s.Kind())
				assertCells(t, s, data)
			case []int64:
				s := New(tt.columnName, data, mem)
				defer s.Release()
				assert.Equal(t, tt.expectedLen, s.Len())
				assert.Equal(t, tt.expectedKind, s.Kind())
				assertCells(t, s, data)
			case []float64:
				s := New(tt.columnName, data, mem)
				defer s.Release()
				assert.Equal(t, tt.expectedLen, s.Len())
				assert.Equal(t, tt.expectedKind, s.Kind())
				assertCells(t, s, data)
			case []bool:
				s := New(tt.columnName, data, mem)
				defer s.Release()
				assert.Equal(t, tt.expectedLen, s.Len())
				assert.Equal(t, tt.expectedKind, s.Kind())
				assertCells(t, s, data)
			}
		})
	}
}

func TestSeriesWithNulls(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithNulls("a", []float64{1, 2, 0, 4}, []bool{true, true, false, true}, mem)
	defer s.Release()

	assert.Equal(t, 1, s.NullN())
	assert.True(t, s.IsNull(2))
	assert.False(t, s.IsNull(0))
	assert.Equal(t, "", s.GetAsString(2))
	assert.Equal(t, "4", s.GetAsString(3))

	_, ok := s.Float64At(2)
	assert.False(t, ok)
	v, ok := s.Float64At(1)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 0)
}

func TestNewSafeValidityMismatch(t *testing.T) {
	mem := memory.NewGoAllocator()

	_, err := NewSafe("a", []int64{1, 2}, []bool{true}, mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validity length")
}

func TestSeriesValueOutOfRange(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("test", []string{"first", "second", "third"}, mem)
	defer s.Release()

	assert.Equal(t, "first", s.GetAsString(0))
	assert.Equal(t, "third", s.GetAsString(2))
	assert.Equal(t, "", s.GetAsString(-1))
	assert.Equal(t, "", s.GetAsString(3))
	_, ok := s.Float64At(3)
	assert.False(t, ok)
}

func TestSeriesFloat64At(t *testing.T) {
	mem := memory.NewGoAllocator()

	ints := New("i", []int64{7}, mem)
	defer ints.Release()
	bools := New("b", []bool{true}, mem)
	defer bools.Release()
	strs := New("s", []string{"x"}, mem)
	defer strs.Release()

	v, ok := ints.Float64At(0)
	assert.True(t, ok)
	assert.InDelta(t, 7.0, v, 0)

	v, ok = bools.Float64At(0)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, v, 0)

	_, ok = strs.Float64At(0)
	assert.False(t, ok)
}

func TestSeriesString(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithNulls("test_column", []string{"a", "", "c"}, []bool{true, false, true}, mem)
	defer s.Release()

	str := s.String()
	assert.Contains(t, str, "Series[string]")
	assert.Contains(t, str, "test_column")
	assert.Contains(t, str, "len=3")
	assert.Contains(t, str, "nulls=1")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "numeric", KindNumeric.String())
	assert.Equal(t, "categorical", KindCategorical.String())
	assert.Equal(t, "boolean", KindBoolean.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestUnsupportedType(t *testing.T) {
	mem := memory.NewGoAllocator()

	assert.Panics(t, func() {
		New("test", []complex64{1 + 2i, 3 + 4i}, mem)
	})
}

func TestFloat64s(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithNulls("n", []int64{3, 0, 5}, []bool{true, false, true}, mem)
	defer s.Release()

	arr := s.Array()
	defer arr.Release()

	values, valid, err := Float64s(arr)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 5}, values)
	assert.Equal(t, []bool{true, false, true}, valid)
	assert.Equal(t, []float64{3, 5}, Present(values, valid))

	strs := New("s", []string{"x"}, mem)
	defer strs.Release()
	strArr := strs.Array()
	defer strArr.Release()

	_, _, err = Float64s(strArr)
	require.Error(t, err)
}

func TestStrings(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithNulls("c", []string{"a", "", "b"}, []bool{true, false, true}, mem)
	defer s.Release()
	arr := s.Array()
	defer arr.Release()

	values, valid, err := Strings(arr)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, values)
	assert.Equal(t, []bool{true, false, true}, valid)

	f := New("f", []float64{math.Pi}, mem)
	defer f.Release()
	farr := f.Array()
	defer farr.Release()

	_, _, err = Strings(farr)
	require.Error(t, err)
}

func TestFromArray(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("orig", []int64{1, 2}, mem)
	defer s.Release()

	wrapped, err := FromArray("renamed", s.Array())
	require.NoError(t, err)
	defer wrapped.Release()

	assert.Equal(t, "renamed", wrapped.Name())
	assert.Equal(t, KindNumeric, wrapped.Kind())
	assert.Equal(t, "2", wrapped.GetAsString(1))
}
