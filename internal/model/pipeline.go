package model

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paveg/prep/internal/clean"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/validation"
	"gonum.org/v1/gonum/mat"
)

const opModel = "SimpleModel"

// ReportFooter is printed after the classification report.
const ReportFooter = "Read more about the classification report: " +
	"https://scikit-learn.org/stable/modules/generated/sklearn.metrics.classification_report.html " +
	"and https://www.nb-data.com/p/breaking-down-the-classification"

// Options configures the demonstration pipeline.
type Options struct {
	SplitData   bool
	ScaleData   bool
	PrintReport bool
	Output      io.Writer
	TestSize    float64
	Seed        uint64
	Solver      SolverConfig
}

// DefaultOptions splits 80/20 with seed 42, does not scale, prints only the
// accuracy to stdout and uses DefaultSolverConfig.
func DefaultOptions() Options {
	return Options{
		SplitData: true,
		Output:    os.Stdout,
		TestSize:  0.2,
		Seed:      42,
		Solver:    DefaultSolverConfig(),
	}
}

// Option configures a pipeline run.
type Option func(*Options)

// WithSplit toggles the train/test split. Without it the model is fit and
// scored on every row.
func WithSplit(split bool) Option {
	return func(o *Options) { o.SplitData = split }
}

// WithScaling toggles min-max scaling of the train and test features.
func WithScaling(scale bool) Option {
	return func(o *Options) { o.ScaleData = scale }
}

// WithReport toggles the classification report.
func WithReport(report bool) Option {
	return func(o *Options) { o.PrintReport = report }
}

// WithOutput redirects the printed results. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		if w != nil {
			o.Output = w
		}
	}
}

// WithTestSize sets the held-out fraction.
func WithTestSize(size float64) Option {
	return func(o *Options) { o.TestSize = size }
}

// WithSeed sets the split seed.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithSolver replaces the logistic regression hyperparameters.
func WithSolver(cfg SolverConfig) Option {
	return func(o *Options) { o.Solver = cfg }
}

// Result carries what a pipeline run measured.
type Result struct {
	Accuracy   float64
	Report     Report
	Classes    []string
	Features   []string
	TrainRows  int
	TestRows   int
	Iterations []int

	// One row per binary problem, aligned with Features plus a trailing intercept.
	Coefficients [][]float64
}

// Run executes the pipeline and returns its measurements without printing.
//
// Rows with any missing cell are dropped, the first column becomes the target
// and the rest the features. Categorical features are one-hot encoded, rows
// are split with StratifiedSplit, and when scaling is on the train and test
// features are each min-max normalized on their own. The test rows are then
// scored with a LogisticRegression fit on the train rows.
func Run(df *dataframe.DataFrame, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.Default().With(logger.Op(opModel))

	if err := validation.ValidateNotEmpty(df, opModel); err != nil {
		return nil, err
	}

	complete, err := df.DropNulls()
	if err != nil {
		return nil, errors.NewInternalError(opModel, err)
	}
	defer complete.Release()
	if complete.Len() == 0 {
		return nil, &errors.DataFrameError{Op: opModel, Message: errors.ErrEmptyDataFrame.Message}
	}
	log.Debug("dropped rows with missing values", logger.Rows(df.Len()), "kept", complete.Len())

	targetCol, _ := complete.ColumnAt(0)
	labels := make([]string, complete.Len())
	for i := range labels {
		labels[i] = targetCol.GetAsString(i)
	}
	classes := Classes(labels, targetCol.Kind() == series.KindNumeric)

	features := complete.Drop(targetCol.Name())
	defer features.Release()
	if features.Width() == 0 {
		return nil, errors.NewInvalidInputError(opModel, "no feature columns besides the target")
	}

	encoded, err := OneHotEncode(features)
	if err != nil {
		return nil, err
	}
	defer encoded.Release()

	trainX, testX, trainY, testY, err := splitRows(encoded, labels, classes, o)
	if err != nil {
		return nil, err
	}
	if o.ScaleData {
		// Each side is fit on its own rows.
		if trainX, testX, err = scalePair(trainX, testX); err != nil {
			return nil, err
		}
	}
	defer func() {
		trainX.Release()
		testX.Release()
	}()

	xTrain, err := designMatrix(trainX)
	if err != nil {
		return nil, err
	}
	xTest, err := designMatrix(testX)
	if err != nil {
		return nil, err
	}

	fitClasses := Classes(trainY, targetCol.Kind() == series.KindNumeric)
	clf := NewLogisticRegression(o.Solver)
	if err := clf.Fit(xTrain, trainY, fitClasses); err != nil {
		return nil, err
	}
	predicted := clf.Predict(xTest)
	report := Evaluate(testY, predicted, classes)

	log.Debug("fit logistic regression",
		"train_rows", len(trainY),
		"test_rows", len(testY),
		"features", encoded.Width(),
		"iterations", clf.Iterations,
		"accuracy", report.Accuracy)

	return &Result{
		Accuracy:   report.Accuracy,
		Report:     report,
		Classes:    fitClasses,
		Features:   encoded.Columns(),
		TrainRows:  len(trainY),
		TestRows:   len(testY),
		Iterations: clf.Iterations,

		Coefficients: coefficients(clf),
	}, nil
}

// SimpleModel runs the pipeline and prints "Accuracy: <value>", followed by
// the classification report and ReportFooter when the report is requested.
func SimpleModel(df *dataframe.DataFrame, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	result, err := Run(df, opts...)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(o.Output, "Accuracy: %s\n", FormatAccuracy(result.Accuracy)); err != nil {
		return err
	}
	if o.PrintReport {
		if _, err := fmt.Fprintf(o.Output, "Classification Report:\n%s\n%s\n", result.Report, ReportFooter); err != nil {
			return err
		}
	}
	return nil
}

// FormatAccuracy prints a float the shortest way that round-trips, always
// with a decimal point: 0.75, 1.0, 0.3333333333333333.
func FormatAccuracy(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// designMatrix copies numeric and boolean columns into a dense row-major matrix.
func designMatrix(df *dataframe.DataFrame) (*mat.Dense, error) {
	n, p := df.Len(), df.Width()
	if n == 0 || p == 0 {
		return nil, &errors.DataFrameError{Op: opModel, Message: errors.ErrEmptyDataFrame.Message}
	}

	x := mat.NewDense(n, p, nil)
	for j := range p {
		col, _ := df.ColumnAt(j)
		if col.Kind() != series.KindNumeric && col.Kind() != series.KindBoolean {
			return nil, errors.NewUnsupportedTypeError(opModel, col.DataType().String())
		}
		for i := range n {
			v, ok := col.Float64At(i)
			if !ok {
				return nil, errors.NewValidationError(opModel, col.Name(), fmt.Sprintf("missing value at row %d", i))
			}
			x.Set(i, j, v)
		}
	}
	return x, nil
}

// splitRows returns the train and test sides of encoded with their labels.
// Without a split both sides hold every row.
func splitRows(encoded *dataframe.DataFrame, labels, classes []string, o Options) (
	trainX, testX *dataframe.DataFrame, trainY, testY []string, err error,
) {
	if !o.SplitData {
		return encoded.Select(encoded.Columns()...), encoded.Select(encoded.Columns()...), labels, labels, nil
	}

	trainRows, testRows, err := StratifiedSplit(labels, classes, o.TestSize, o.Seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if trainX, err = encoded.Take(trainRows); err != nil {
		return nil, nil, nil, nil, errors.NewInternalError(opModel, err)
	}
	if testX, err = encoded.Take(testRows); err != nil {
		trainX.Release()
		return nil, nil, nil, nil, errors.NewInternalError(opModel, err)
	}
	return trainX, testX, pick(labels, trainRows), pick(labels, testRows), nil
}

// scalePair min-max scales both frames and releases them, returning the
// scaled copies.
func scalePair(trainX, testX *dataframe.DataFrame) (*dataframe.DataFrame, *dataframe.DataFrame, error) {
	defer func() {
		trainX.Release()
		testX.Release()
	}()

	scaledTrain, err := clean.NormalizeData(trainX, clean.NormalizeMinMax)
	if err != nil {
		return nil, nil, err
	}
	scaledTest, err := clean.NormalizeData(testX, clean.NormalizeMinMax)
	if err != nil {
		scaledTrain.Release()
		return nil, nil, err
	}
	return scaledTrain, scaledTest, nil
}

func coefficients(clf *LogisticRegression) [][]float64 {
	out := make([][]float64, len(clf.weights))
	for k := range out {
		out[k] = clf.Coefficients(k)
	}
	return out
}

func pick(labels []string, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = labels[r]
	}
	return out
}
