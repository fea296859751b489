package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/io"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data string, opts io.CSVOptions) *dataframe.DataFrame {
	t.Helper()
	df, err := io.NewCSVReader(strings.NewReader(data), opts, memory.NewGoAllocator()).Read()
	require.NoError(t, err)
	return df
}

func TestCSVReader(t *testing.T) {
	t.Run("reads simple CSV with headers", func(t *testing.T) {
		df := readCSV(t, "target,age,income,city\n0,25,40.5,oslo\n1,30,52,lima\n", io.DefaultCSVOptions())
		defer df.Release()

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"target", "age", "income", "city"}, df.Columns())

		age, _ := df.Column("age")
		income, _ := df.Column("income")
		city, _ := df.Column("city")
		assert.Equal(t, arrow.PrimitiveTypes.Int64, age.DataType())
		assert.Equal(t, arrow.PrimitiveTypes.Float64, income.DataType())
		assert.Equal(t, series.KindCategorical, city.Kind())
		assert.Equal(t, "lima", city.GetAsString(1))
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Header = false
		df := readCSV(t, "a,1\nb,2\n", opts)
		defer df.Release()

		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
		assert.Equal(t, 2, df.Len())
	})

	t.Run("custom delimiter", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = ';'
		df := readCSV(t, "x;y\n1;true\n2;FALSE\n", opts)
		defer df.Release()

		y, _ := df.Column("y")
		assert.Equal(t, series.KindBoolean, y.Kind())
		assert.Equal(t, []float64{1, 0}, testutil.Float64Values(t, df, "y"))
	})

	t.Run("empty input", func(t *testing.T) {
		df := readCSV(t, "", io.DefaultCSVOptions())
		assert.Equal(t, 0, df.Width())
	})

	t.Run("header only", func(t *testing.T) {
		df := readCSV(t, "a,b\n", io.DefaultCSVOptions())
		defer df.Release()
		assert.Equal(t, []string{"a", "b"}, df.Columns())
		assert.Equal(t, 0, df.Len())
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := io.NewCSVReader(strings.NewReader("a,b\n\"x,1\n"), io.DefaultCSVOptions(), nil).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading CSV")
	})

	t.Run("duplicate header", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		_, err := io.NewCSVReader(strings.NewReader("a,a\n1,2\n"), io.DefaultCSVOptions(), mem).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate column "a"`)
	})
}

func TestCSVReaderMissingValues(t *testing.T) {
	data := "target,a,b,city\n0,1,,oslo\n1,2,NaN,NA\n1,,4.5,lima\n0,4,1,\n"
	df := readCSV(t, data, io.DefaultCSVOptions())
	defer df.Release()

	a, _ := df.Column("a")
	b, _ := df.Column("b")
	city, _ := df.Column("city")

	assert.Equal(t, arrow.PrimitiveTypes.Int64, a.DataType(), "nulls do not change the inferred type")
	assert.Equal(t, arrow.PrimitiveTypes.Float64, b.DataType())
	assert.Equal(t, 1, a.NullN())
	assert.Equal(t, 2, b.NullN())
	assert.Equal(t, 2, city.NullN())
	assert.True(t, a.IsNull(2))
	assert.True(t, city.IsNull(1))
}

func TestCSVReaderTypeInference(t *testing.T) {
	tests := []struct {
		name string
		data string
		want arrow.Type
	}{
		{name: "integers", data: "v\n1\n-2\n", want: arrow.INT64},
		{name: "mixed int and float", data: "v\n1\n2.5\n", want: arrow.FLOAT64},
		{name: "scientific", data: "v\n1e3\n2\n", want: arrow.FLOAT64},
		{name: "booleans", data: "v\nTrue\nfalse\n", want: arrow.BOOL},
		{name: "text", data: "v\n1\nabc\n", want: arrow.STRING},
		{name: "all missing", data: "v\nNA\n\n", want: arrow.STRING},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := readCSV(t, tt.data, io.DefaultCSVOptions())
			defer df.Release()
			col, _ := df.Column("v")
			assert.Equal(t, tt.want, col.DataType().ID())
		})
	}
}

func TestCSVReaderShortRows(t *testing.T) {
	df := readCSV(t, "a,b,c\n1,2,3\n4,5\n", io.DefaultCSVOptions())
	defer df.Release()

	c, _ := df.Column("c")
	assert.True(t, c.IsNull(1))
}

func TestCSVWriter(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := dataframe.New(
		series.New("target", []int64{0, 1}, mem),
		series.NewWithNulls("a", []float64{2.5, 0}, []bool{true, false}, mem),
		series.New("city", []string{"oslo", "a,b"}, mem),
		series.New("flag", []bool{true, false}, mem),
	)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))
	assert.Equal(t, "target,a,city,flag\n0,2.5,oslo,true\n1,,\"a,b\",false\n", buf.String())

	opts := io.DefaultCSVOptions()
	opts.Header = false
	opts.NullRepresentation = "NA"
	buf.Reset()
	require.NoError(t, io.NewCSVWriter(&buf, opts).Write(df))
	assert.Equal(t, "0,2.5,oslo,true\n1,NA,\"a,b\",false\n", buf.String())
}

func TestCSVRoundTripPreservesNulls(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithNulls(), testutil.WithSmokerColumn())
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

	back := readCSV(t, buf.String(), io.DefaultCSVOptions())
	defer back.Release()

	// integral floats come back as int64, so compare cells rather than types
	assert.Equal(t, df.Columns(), back.Columns())
	assert.Equal(t, df.NullCount(), back.NullCount())
	for _, name := range df.Columns() {
		assert.Equal(t, testutil.StringValues(t, df, name), testutil.StringValues(t, back, name), name)
	}
}
