package clean

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/parallel"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/validation"
)

// ImputeMissingValues fills missing cells column by column.
//
// Under mean and median every numeric column except the target is filled with
// that statistic over its present values. Under mode numeric columns except the
// target take their most frequent value, and every categorical column
// (the target included) takes its most frequent string. Ties resolve to the
// smallest value. Filled numeric columns become float64.
//
// A column with no present values has nothing to impute from and stays missing.
func ImputeMissingValues(df *dataframe.DataFrame, strategy ImputeStrategy, opts ...ImputeOption) (*dataframe.DataFrame, error) {
	if err := validation.ValidateOption(opImpute, "strategy", string(strategy), ImputeStrategies...); err != nil {
		return nil, err
	}

	cfg := &imputeConfig{target: DefaultTarget}
	for _, opt := range opts {
		opt(cfg)
	}

	log := logger.Default().With(logger.Op(opImpute))

	var jobs []fillJob
	for _, name := range df.ColumnsOfKind(series.KindNumeric) {
		col, _ := df.Column(name)
		if name != cfg.target && col.NullN() > 0 {
			jobs = append(jobs, fillJob{col: col})
		}
	}
	if strategy == ImputeMode {
		for _, name := range df.ColumnsOfKind(series.KindCategorical) {
			col, _ := df.Column(name)
			if col.NullN() > 0 {
				jobs = append(jobs, fillJob{col: col, categorical: true})
			}
		}
	}

	mem := memory.NewGoAllocator()
	pool := parallel.NewWorkerPool(len(jobs))
	defer pool.Close()

	filled, err := parallel.Map(pool, jobs, func(_ int, job fillJob) (dataframe.ISeries, error) {
		if job.categorical {
			return fillCategorical(job.col, mem)
		}
		return fillNumeric(job.col, strategy, mem)
	})
	if err != nil {
		releaseAll(filled)
		return nil, err
	}

	out := df.Select(df.Columns()...)
	for i, s := range filled {
		if s == nil {
			log.Debug("column has no values to impute from", logger.Column(jobs[i].col.Name()))
			continue
		}
		next, err := out.WithColumn(s)
		if err != nil {
			releaseAll(filled[i:])
			out.Release()
			return nil, errors.NewInternalError(opImpute, err)
		}
		out.Release()
		out = next
	}

	log.Debug("imputed missing values",
		logger.Rows(df.Len()),
		"strategy", string(strategy),
		"nulls_before", df.NullCount(),
		"nulls_after", out.NullCount())
	return out, nil
}

type fillJob struct {
	col         dataframe.ISeries
	categorical bool
}

func releaseAll(cols []dataframe.ISeries) {
	for _, c := range cols {
		if c != nil {
			c.Release()
		}
	}
}

// fillNumeric returns a float64 copy of col with missing cells set to the
// strategy's statistic, or nil when col has no present values.
func fillNumeric(col dataframe.ISeries, strategy ImputeStrategy, mem memory.Allocator) (dataframe.ISeries, error) {
	arr := col.Array()
	defer arr.Release()

	values, valid, err := series.Float64s(arr)
	if err != nil {
		return nil, errors.NewUnsupportedTypeError(opImpute, arr.DataType().String())
	}
	present := series.Present(values, valid)
	if len(present) == 0 {
		return nil, nil
	}

	var fill float64
	switch strategy {
	case ImputeMean:
		fill = mean(present)
	case ImputeMedian:
		fill = median(present)
	case ImputeMode:
		fill, _ = firstMode(present)
	}

	for i := range values {
		if !valid[i] {
			values[i] = fill
		}
	}
	s, err := series.NewSafe(col.Name(), values, nil, mem)
	if err != nil {
		return nil, errors.NewInternalError(opImpute, err)
	}
	return s, nil
}

// fillCategorical returns a copy of col with missing cells set to its first
// mode, or nil when col has no present values.
func fillCategorical(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	arr := col.Array()
	defer arr.Release()

	values, valid, err := series.Strings(arr)
	if err != nil {
		return nil, errors.NewUnsupportedTypeError(opImpute, arr.DataType().String())
	}
	fill, ok := firstMode(series.Present(values, valid))
	if !ok {
		return nil, nil
	}

	for i := range values {
		if !valid[i] {
			values[i] = fill
		}
	}
	s, err := series.NewSafe(col.Name(), values, nil, mem)
	if err != nil {
		return nil, errors.NewInternalError(opImpute, err)
	}
	return s, nil
}
