package testutil_test

import (
	"math"
	"testing"

	"github.com/paveg/prep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	require.NotNil(t, mem.Allocator)

	df := testutil.CreateTestDataFrame(mem.Allocator)
	defer df.Release()
	assert.NotNil(t, df)
}

func TestCreateTestDataFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("default configuration", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(mem.Allocator)
		defer df.Release()

		assert.Equal(t, 4, df.Len())
		testutil.AssertDataFrameHasColumns(t, df, []string{"target", "age", "income", "city"})
		assert.Equal(t, 0, df.NullCount())
	})

	t.Run("with nulls", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls())
		defer df.Release()

		assert.Equal(t, 2, df.NullCount())
		assert.True(t, math.IsNaN(testutil.Float64Values(t, df, "age")[1]))
		assert.Empty(t, testutil.StringValues(t, df, "city")[2])
	})

	t.Run("with smoker column and custom row count", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithSmokerColumn(), testutil.WithRowCount(10))
		defer df.Release()

		assert.Equal(t, 10, df.Len())
		assert.Equal(t, 5, df.Width())
		assert.Equal(t, []float64{1, 0, 0, 1, 0, 1, 0, 0, 1, 0}, testutil.Float64Values(t, df, "smoker"))
	})
}

func TestCreateSimpleTestDataFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateSimpleTestDataFrame(mem.Allocator)
	defer df.Release()

	assert.Equal(t, 3, df.Len())
	assert.Equal(t, []string{"0", "1", "1"}, testutil.StringValues(t, df, "target"))
	testutil.AssertDataFrameNotEmpty(t, df)
}

func TestAssertDataFrameEqual(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df1 := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls())
	defer df1.Release()
	df2 := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls())
	defer df2.Release()

	testutil.AssertDataFrameEqual(t, df1, df2)
}
