package clean

import (
	"math"

	"github.com/paveg/prep/internal/dataframe"
	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/series"
	"github.com/paveg/prep/internal/validation"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RemoveRedundantFeatures drops numeric columns that are too strongly
// correlated with an earlier numeric column.
//
// Column j is dropped when |corr(i, j)| > threshold for some i < j in the
// correlation matrix of the input frame. Drops are decided on that one
// matrix; a dropped column still counts as an earlier column for later ones.
// Undefined correlations (constant columns, fewer than two rows) never exceed
// the threshold. Non-numeric columns are always kept.
func RemoveRedundantFeatures(df *dataframe.DataFrame, threshold float64) (*dataframe.DataFrame, error) {
	if err := validation.ValidateRange(opRedundant, "threshold", threshold, 0, 1); err != nil {
		return nil, err
	}

	numeric := df.ColumnsOfKind(series.KindNumeric)
	if len(numeric) < 2 || df.Len() < 2 {
		return df.Select(df.Columns()...), nil
	}

	corr, err := correlationMatrix(df, numeric)
	if err != nil {
		return nil, err
	}

	var drop []string
	for j := 1; j < len(numeric); j++ {
		for i := 0; i < j; i++ {
			if math.Abs(corr.At(i, j)) > threshold {
				drop = append(drop, numeric[j])
				break
			}
		}
	}

	logger.Default().Debug("removed redundant features",
		logger.Op(opRedundant),
		logger.Columns(drop),
		"threshold", threshold)
	return df.Drop(drop...), nil
}

// correlationMatrix returns the Pearson correlation between every pair of
// the named columns. Without missing cells the whole matrix is computed at
// once; otherwise each pair uses the rows where both cells are present.
func correlationMatrix(df *dataframe.DataFrame, names []string) (mat.Symmetric, error) {
	n, k := df.Len(), len(names)
	data := make([][]float64, k)
	valid := make([][]bool, k)
	complete := true

	for j, name := range names {
		col, _ := df.Column(name)
		arr := col.Array()
		values, mask, err := series.Float64s(arr)
		arr.Release()
		if err != nil {
			return nil, errors.NewUnsupportedTypeError(opRedundant, col.DataType().String())
		}
		data[j], valid[j] = values, mask
		if col.NullN() > 0 {
			complete = false
		}
	}

	if complete {
		m := mat.NewDense(n, k, nil)
		for j := range data {
			m.SetCol(j, data[j])
		}
		var corr mat.SymDense
		stat.CorrelationMatrix(&corr, m, nil)
		return &corr, nil
	}

	corr := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < k; j++ {
			corr.SetSym(i, j, pairwiseCorrelation(data[i], valid[i], data[j], valid[j]))
		}
	}
	return corr, nil
}

func pairwiseCorrelation(x []float64, xValid []bool, y []float64, yValid []bool) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for r := range x {
		if xValid[r] && yValid[r] {
			xs = append(xs, x[r])
			ys = append(ys, y[r])
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
