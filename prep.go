// Package prep cleans tabular data for machine learning and checks the
// result with a small classification pipeline.
// This package is the sole public API for the library.
//
// Every cleaning function takes a DataFrame and returns a new one; inputs are
// never modified. Missing values are Arrow nulls throughout.
//
//	df, err := prep.ReadCSVFile("patients.csv")
//	if err != nil {
//		return err
//	}
//	defer df.Release()
//
//	imputed, err := prep.ImputeMissingValues(df, prep.Median)
//	...
//	err = prep.SimpleModel(cleaned, prep.WithScaling(true), prep.WithReport(true))
package prep

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/clean"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	prepio "github.com/paveg/prep/internal/io"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/model"
	"github.com/paveg/prep/internal/monitoring"
	"github.com/paveg/prep/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries = dataframe.ISeries

// DataFrame is the public type for a DataFrame.
// It wraps the internal dataframe.DataFrame to hide implementation details.
type DataFrame struct {
	df *dataframe.DataFrame
}

// NewDataFrame creates a new DataFrame from ISeries. Every column must have
// the same length and a distinct name; on error the series stay owned by the
// caller.
func NewDataFrame(series ...ISeries) (*DataFrame, error) {
	df, err := dataframe.NewSafe(series...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// NewSeries creates a new typed Series with no missing values.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewSeriesWithNulls creates a new typed Series where valid[i] == false marks
// row i as missing. It panics when the lengths differ.
func NewSeriesWithNulls[T any](name string, values []T, valid []bool, mem memory.Allocator) ISeries {
	return series.NewWithNulls(name, values, valid, mem)
}

// DataFrame methods

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// Column returns the column with the given name.
func (d *DataFrame) Column(name string) (ISeries, bool) {
	return d.df.Column(name)
}

// HasColumn returns true if the DataFrame has the given column.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// NullCount returns the number of missing cells.
func (d *DataFrame) NullCount() int {
	return d.df.NullCount()
}

// Select returns a new DataFrame with only the specified columns.
func (d *DataFrame) Select(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Select(names...)}
}

// Drop returns a new DataFrame without the specified columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// Equal reports whether both frames hold the same columns and cells.
func (d *DataFrame) Equal(other *DataFrame) bool {
	return d.df.Equal(other.df)
}

// String returns a string representation of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Release frees the memory used by the DataFrame.
func (d *DataFrame) Release() {
	d.df.Release()
}

// ImputeStrategy selects how ImputeMissingValues fills numeric columns.
type ImputeStrategy = clean.ImputeStrategy

// Imputation strategies.
const (
	Mean   = clean.ImputeMean
	Median = clean.ImputeMedian
	Mode   = clean.ImputeMode
)

// NormalizeMethod selects how NormalizeData rescales numeric columns.
type NormalizeMethod = clean.NormalizeMethod

// Normalization methods.
const (
	MinMax   = clean.NormalizeMinMax
	Standard = clean.NormalizeStandard
)

// Errors returned by the cleaning and modelling functions. Match them with
// errors.Is.
var (
	ErrEmptyDataFrame   = errors.ErrEmptyDataFrame
	ErrNoNumericColumns = errors.ErrNoNumericColumns
	ErrStratify         = errors.ErrStratify
)

// ImputeOption configures ImputeMissingValues.
type ImputeOption = clean.ImputeOption

// WithTarget names the column numeric imputation skips. The default is "target".
func WithTarget(name string) ImputeOption {
	return clean.WithTarget(name)
}

// ImputeMissingValues fills missing numeric cells with the column's mean,
// median or first mode; with Mode, categorical columns are filled too.
func ImputeMissingValues(df *DataFrame, strategy ImputeStrategy, opts ...ImputeOption) (*DataFrame, error) {
	return record("ImputeMissingValues", df, func() (*dataframe.DataFrame, error) {
		return clean.ImputeMissingValues(df.df, strategy, opts...)
	})
}

// RemoveDuplicates keeps the first occurrence of every distinct row. When
// subset is given, only those columns are compared.
func RemoveDuplicates(df *DataFrame, subset ...string) (*DataFrame, error) {
	return record("RemoveDuplicates", df, func() (*dataframe.DataFrame, error) {
		return clean.RemoveDuplicates(df.df, subset...)
	})
}

// NormalizeData rescales every numeric column with MinMax or Standard.
func NormalizeData(df *DataFrame, method NormalizeMethod) (*DataFrame, error) {
	return record("NormalizeData", df, func() (*dataframe.DataFrame, error) {
		return clean.NormalizeData(df.df, method)
	})
}

// RemoveRedundantFeatures drops each numeric column whose absolute Pearson
// correlation with an earlier numeric column exceeds threshold.
func RemoveRedundantFeatures(df *DataFrame, threshold float64) (*DataFrame, error) {
	return record("RemoveRedundantFeatures", df, func() (*dataframe.DataFrame, error) {
		return clean.RemoveRedundantFeatures(df.df, threshold)
	})
}

func record(op string, df *DataFrame, fn func() (*dataframe.DataFrame, error)) (*DataFrame, error) {
	if df == nil {
		return nil, errors.NewInvalidInputError(op, "nil DataFrame")
	}
	var out *dataframe.DataFrame
	err := monitoring.RecordGlobalOperation(op, shapeOf(df.df), func() (monitoring.Shape, error) {
		var err error
		if out, err = fn(); err != nil {
			return monitoring.Shape{}, err
		}
		return shapeOf(out), nil
	})
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

func shapeOf(df *dataframe.DataFrame) monitoring.Shape {
	return monitoring.Shape{Rows: df.Len(), Columns: df.Width()}
}

// ModelOption configures SimpleModel and RunModel.
type ModelOption = model.Option

// ModelResult holds the measurements of one model run.
type ModelResult = model.Result

// WithSplit toggles the stratified 80/20 train/test split (on by default).
func WithSplit(split bool) ModelOption { return model.WithSplit(split) }

// WithScaling toggles min-max scaling of the features (off by default).
func WithScaling(scale bool) ModelOption { return model.WithScaling(scale) }

// WithReport toggles printing of the classification report (off by default).
func WithReport(report bool) ModelOption { return model.WithReport(report) }

// WithOutput redirects SimpleModel's printed output (stdout by default).
func WithOutput(w io.Writer) ModelOption { return model.WithOutput(w) }

// WithTestSize sets the held-out fraction (0.2 by default).
func WithTestSize(size float64) ModelOption { return model.WithTestSize(size) }

// WithSeed sets the split seed (42 by default).
func WithSeed(seed uint64) ModelOption { return model.WithSeed(seed) }

// WithSolver sets the logistic regression's inverse regularization strength,
// iteration bound and stopping tolerance (1, 100 and 1e-4 by default).
func WithSolver(c float64, maxIter int, tol float64) ModelOption {
	return model.WithSolver(model.SolverConfig{C: c, MaxIter: maxIter, Tol: tol})
}

// SimpleModel fits a logistic regression predicting the first column from the
// others and prints its accuracy, plus the classification report when asked.
func SimpleModel(df *DataFrame, opts ...ModelOption) error {
	if df == nil {
		return errors.NewInvalidInputError("SimpleModel", "nil DataFrame")
	}
	return monitoring.RecordGlobalOperation("SimpleModel", shapeOf(df.df), func() (monitoring.Shape, error) {
		return shapeOf(df.df), model.SimpleModel(df.df, opts...)
	})
}

// RunModel runs the same pipeline as SimpleModel and returns its measurements
// instead of printing them.
func RunModel(df *DataFrame, opts ...ModelOption) (*ModelResult, error) {
	if df == nil {
		return nil, errors.NewInvalidInputError("RunModel", "nil DataFrame")
	}
	var result *ModelResult
	err := monitoring.RecordGlobalOperation("RunModel", shapeOf(df.df), func() (monitoring.Shape, error) {
		var err error
		result, err = model.Run(df.df, opts...)
		return shapeOf(df.df), err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadCSV reads a CSV stream with a header row. Empty cells and the usual
// missing markers (NA, NaN, null, ...) become missing values.
func ReadCSV(r io.Reader) (*DataFrame, error) {
	df, err := prepio.NewCSVReader(r, prepio.DefaultCSVOptions(), memory.DefaultAllocator).Read()
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// ReadCSVFile reads the CSV file at path like ReadCSV.
func ReadCSVFile(path string) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes df as CSV with a header row; missing cells are empty.
func WriteCSV(w io.Writer, df *DataFrame) error {
	return prepio.NewCSVWriter(w, prepio.DefaultCSVOptions()).Write(df.df)
}

// WriteJSON writes df as a JSON array of row objects, or as JSON Lines when
// lines is true. Missing cells are null.
func WriteJSON(w io.Writer, df *DataFrame, lines bool) error {
	opts := prepio.DefaultJSONOptions()
	if lines {
		opts.Format = prepio.JSONLines
	}
	return prepio.NewJSONWriter(w, opts).Write(df.df)
}

// SetLogger routes the library's debug and warning logs to l. Logging is
// discarded until this is called; nil discards again.
func SetLogger(l *slog.Logger) {
	logger.SetDefault(l)
}

// MetricsSummary aggregates the operations recorded since EnableMetrics.
type MetricsSummary = monitoring.MetricsSummary

// EnableMetrics starts recording the duration and shape change of every
// cleaning call and model run, discarding earlier records.
func EnableMetrics() {
	monitoring.EnableGlobalMonitoring()
}

// DisableMetrics stops recording; collected records are kept.
func DisableMetrics() {
	monitoring.DisableGlobalMonitoring()
}

// Metrics returns the summary of recorded operations.
func Metrics() MetricsSummary {
	return monitoring.GetGlobalSummary()
}

// WriteMetricsReport writes a table of recorded operations to w. It writes
// nothing when metrics were never enabled.
func WriteMetricsReport(w io.Writer) error {
	collector := monitoring.GetGlobalCollector()
	if collector == nil {
		return nil
	}
	return collector.WriteReport(w)
}
