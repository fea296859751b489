// Package testutil provides the frame builders and assertions shared by the
// package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator for tests.
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewGoAllocator(),
		cleanup:   func() {},
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
	withSmoker   bool
}

// WithNulls makes age missing in row 1 and city missing in row 2.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithSmokerColumn appends a boolean 'smoker' column.
func WithSmokerColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withSmoker = true
	}
}

// CreateTestDataFrame creates a small patient table:
//
//   - target (int64): [0, 1, 1, 0, ...]
//   - age (float64): [25, 30, 35, 28, ...]
//   - income (float64): [40, 52, 61, 45, ...]
//   - city (string): ["oslo", "lima", "oslo", "pune", ...]
func CreateTestDataFrame(allocator memory.Allocator, opts ...TestDataFrameOption) *dataframe.DataFrame {
	cfg := &testDataFrameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	n := cfg.rowCount
	targets := cycle([]int64{0, 1, 1, 0, 1, 0, 0, 1}, n)
	ages := cycle([]float64{25, 30, 35, 28, 32, 45, 29, 38}, n)
	incomes := cycle([]float64{40, 52, 61, 45, 58, 70, 43, 66}, n)
	cities := cycle([]string{"oslo", "lima", "oslo", "pune", "lima", "oslo", "pune", "lima"}, n)

	var ageValid, cityValid []bool
	if cfg.includeNulls {
		ageValid = allValid(n)
		cityValid = allValid(n)
		if n > 1 {
			ageValid[1] = false
		}
		if n > 2 {
			cityValid[2] = false
		}
	}

	seriesList := []dataframe.ISeries{
		series.New("target", targets, allocator),
		series.NewWithNulls("age", ages, ageValid, allocator),
		series.New("income", incomes, allocator),
		series.NewWithNulls("city", cities, cityValid, allocator),
	}
	if cfg.withSmoker {
		seriesList = append(seriesList, series.New("smoker", cycle([]bool{true, false, false, true, false}, n), allocator))
	}

	return dataframe.New(seriesList...)
}

// CreateSimpleTestDataFrame creates the [target, a, b] frame whose second row
// duplicates the first in a and b but not in target.
func CreateSimpleTestDataFrame(allocator memory.Allocator) *dataframe.DataFrame {
	return dataframe.New(
		series.New("target", []int64{0, 1, 1}, allocator),
		series.New("a", []float64{1, 1, 3}, allocator),
		series.New("b", []float64{2, 2, 4}, allocator),
	)
}

// Float64Values reads a numeric or boolean column, with NaN for missing cells.
func Float64Values(t *testing.T, df *dataframe.DataFrame, name string) []float64 {
	t.Helper()

	col, ok := df.Column(name)
	require.True(t, ok, "column %s should exist", name)

	out := make([]float64, col.Len())
	for i := range out {
		v, ok := col.Float64At(i)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// StringValues formats every cell of a column, with "" for missing cells.
func StringValues(t *testing.T, df *dataframe.DataFrame, name string) []string {
	t.Helper()

	col, ok := df.Column(name)
	require.True(t, ok, "column %s should exist", name)

	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.GetAsString(i)
	}
	return out
}

// AssertDataFrameEqual performs deep equality comparison of DataFrames.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")
	assert.True(t, expected.Equal(actual), "DataFrame data should match\nexpected: %s\nactual: %s", expected, actual)
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Len(t, df.Columns(), len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Positive(t, df.Len(), "DataFrame should not be empty")
	assert.Positive(t, df.Width(), "DataFrame should have columns")
}

func cycle[T any](base []T, count int) []T {
	out := make([]T, count)
	for i := range count {
		out[i] = base[i%len(base)]
	}
	return out
}

func allValid(count int) []bool {
	valid := make([]bool, count)
	for i := range valid {
		valid[i] = true
	}
	return valid
}
