package clean

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/parallel"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/validation"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormalizeData rescales every numeric column to float64 and leaves the other
// columns as they are. Scaling parameters are fit on this frame alone.
//
// minmax maps a column onto [0, 1] as (x-min)/(max-min); a constant column
// becomes all zeros. standard maps it to (x-mean)/std with the population
// standard deviation; a constant column becomes x-mean. Missing cells stay
// missing and do not take part in fitting.
func NormalizeData(df *dataframe.DataFrame, method NormalizeMethod) (*dataframe.DataFrame, error) {
	if err := validation.ValidateOption(opNormalize, "method", string(method), NormalizeMethods...); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty(df, opNormalize); err != nil {
		return nil, err
	}
	numeric := df.ColumnsOfKind(series.KindNumeric)
	if len(numeric) == 0 {
		return nil, &errors.DataFrameError{Op: opNormalize, Message: errors.ErrNoNumericColumns.Message}
	}

	mem := memory.NewGoAllocator()
	pool := parallel.NewWorkerPool(len(numeric))
	defer pool.Close()

	scaled, err := parallel.Map(pool, numeric, func(_ int, name string) (dataframe.ISeries, error) {
		col, _ := df.Column(name)
		return scaleColumn(col, method, mem)
	})
	if err != nil {
		releaseAll(scaled)
		return nil, err
	}

	out := df.Select(df.Columns()...)
	for i, s := range scaled {
		next, err := out.WithColumn(s)
		if err != nil {
			releaseAll(scaled[i:])
			out.Release()
			return nil, errors.NewInternalError(opNormalize, err)
		}
		out.Release()
		out = next
	}

	logger.Default().Debug("normalized numeric columns",
		logger.Op(opNormalize),
		logger.Columns(numeric),
		"method", string(method))
	return out, nil
}

func scaleColumn(col dataframe.ISeries, method NormalizeMethod, mem memory.Allocator) (dataframe.ISeries, error) {
	arr := col.Array()
	defer arr.Release()

	values, valid, err := series.Float64s(arr)
	if err != nil {
		return nil, errors.NewUnsupportedTypeError(opNormalize, arr.DataType().String())
	}

	if present := series.Present(values, valid); len(present) > 0 {
		var scale func(float64) float64
		switch method {
		case NormalizeMinMax:
			lo, hi := floats.Min(present), floats.Max(present)
			span := hi - lo
			if span == 0 {
				span = 1
			}
			scale = func(x float64) float64 { return (x - lo) / span }
		case NormalizeStandard:
			mu, sigma := stat.PopMeanStdDev(present, nil)
			if sigma == 0 {
				sigma = 1
			}
			scale = func(x float64) float64 { return (x - mu) / sigma }
		}

		for i := range values {
			if valid[i] {
				values[i] = scale(values[i])
			}
		}
	}

	s, err := series.NewSafe(col.Name(), values, valid, mem)
	if err != nil {
		return nil, errors.NewInternalError(opNormalize, err)
	}
	return s, nil
}
