package model_test

import (
	"testing"

	"github.com/paveg/prep/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func separableBinary() (*mat.Dense, []string) {
	x := mat.NewDense(20, 1, nil)
	y := make([]string, 20)
	for i := range 10 {
		x.Set(i, 0, float64(i)*0.1)
		y[i] = "0"
		x.Set(10+i, 0, 5+float64(i)*0.1)
		y[10+i] = "1"
	}
	return x, y
}

func TestLogisticRegressionBinary(t *testing.T) {
	x, y := separableBinary()
	clf := model.NewLogisticRegression(model.DefaultSolverConfig())
	require.NoError(t, clf.Fit(x, y, []string{"0", "1"}))

	assert.Equal(t, y, clf.Predict(x))
	assert.Equal(t, []string{"0", "1"}, clf.Classes())
	require.Len(t, clf.Iterations, 1)
	assert.Less(t, clf.Iterations[0], 100)

	// weight on x is positive, boundary lies between the clusters
	coef := clf.Coefficients(0)
	require.Len(t, coef, 2)
	assert.Positive(t, coef[0])
	boundary := -coef[1] / coef[0]
	assert.Greater(t, boundary, 0.9)
	assert.Less(t, boundary, 5.0)

	probe := mat.NewDense(2, 1, []float64{-3, 9})
	assert.Equal(t, []string{"0", "1"}, clf.Predict(probe))
}

func TestLogisticRegressionOneVsRest(t *testing.T) {
	centers := map[string][2]float64{"a": {0, 0}, "b": {10, 0}, "c": {0, 10}}
	offsets := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.5, 0.5}}

	var data []float64
	var y []string
	for _, label := range []string{"a", "b", "c"} {
		for _, off := range offsets {
			data = append(data, centers[label][0]+off[0], centers[label][1]+off[1])
			y = append(y, label)
		}
	}
	x := mat.NewDense(len(y), 2, data)

	clf := model.NewLogisticRegression(model.DefaultSolverConfig())
	require.NoError(t, clf.Fit(x, y, []string{"a", "b", "c"}))
	assert.Len(t, clf.Iterations, 3)
	assert.Equal(t, y, clf.Predict(x))

	scores := clf.DecisionFunction(mat.NewDense(1, 2, []float64{10.2, 0.7}))
	rows, cols := scores.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 3, cols)
	assert.Greater(t, scores.At(0, 1), scores.At(0, 0))
	assert.Greater(t, scores.At(0, 1), scores.At(0, 2))
}

func TestLogisticRegressionErrors(t *testing.T) {
	x, y := separableBinary()

	t.Run("single class", func(t *testing.T) {
		clf := model.NewLogisticRegression(model.DefaultSolverConfig())
		err := clf.Fit(x, y, []string{"0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 2 classes")
	})

	t.Run("label count mismatch", func(t *testing.T) {
		clf := model.NewLogisticRegression(model.DefaultSolverConfig())
		require.Error(t, clf.Fit(x, y[:5], []string{"0", "1"}))
	})

	t.Run("bad hyperparameters", func(t *testing.T) {
		clf := model.NewLogisticRegression(model.SolverConfig{C: 0, MaxIter: 100, Tol: 1e-4})
		require.Error(t, clf.Fit(x, y, []string{"0", "1"}))
	})
}

func TestLogisticRegressionIterationBound(t *testing.T) {
	x, y := separableBinary()
	clf := model.NewLogisticRegression(model.SolverConfig{C: 1, MaxIter: 1, Tol: 1e-12})
	require.NoError(t, clf.Fit(x, y, []string{"0", "1"}))
	assert.Equal(t, []int{1}, clf.Iterations)
}
