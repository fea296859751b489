package model

import (
	"fmt"
	"math"

	"github.com/paveg/prep/internal/errors"
	"github.com/paveg/prep/internal/logger"
	"gonum.org/v1/gonum/mat"
)

const opFit = "LogisticRegression"

// SolverConfig holds the logistic regression hyperparameters.
type SolverConfig struct {
	// C is the inverse regularization strength.
	C float64
	// MaxIter bounds the Newton iterations per binary problem.
	MaxIter int
	// Tol stops a problem once the gradient norm falls below Tol times its
	// initial value.
	Tol float64
}

// DefaultSolverConfig returns C=1, 100 iterations and a tolerance of 1e-4.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{C: 1, MaxIter: 100, Tol: 1e-4}
}

const (
	armijo        = 1e-2
	maxLineSearch = 30
)

// LogisticRegression is an L2-regularized logistic regression classifier.
//
// Each binary problem minimizes
//
//	0.5*||w||^2 + C * sum(log(1 + exp(-y_i * w·x_i)))
//
// over labels y_i in {-1, +1}, where x_i carries a constant 1 so the
// intercept is regularized like any other weight. Two classes give one
// problem with the second class as positive; more classes are fit one
// against the rest.
type LogisticRegression struct {
	cfg     SolverConfig
	classes []string
	weights []*mat.VecDense

	// Iterations records the Newton steps taken per binary problem.
	Iterations []int
}

// NewLogisticRegression creates an unfitted classifier.
func NewLogisticRegression(cfg SolverConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

// Classes returns the labels seen by Fit, in order.
func (m *LogisticRegression) Classes() []string {
	return m.classes
}

// Coefficients returns the weights of binary problem k; the last entry is the intercept.
func (m *LogisticRegression) Coefficients(k int) []float64 {
	return mat.Col(nil, 0, m.weights[k])
}

// Fit trains on the rows of x labelled y. classes fixes the label order.
func (m *LogisticRegression) Fit(x mat.Matrix, y []string, classes []string) error {
	n, _ := x.Dims()
	if n != len(y) {
		return errors.NewValidationError(opFit, "", fmt.Sprintf("x has %d rows but y has %d labels", n, len(y)))
	}
	if len(classes) < 2 {
		return errors.NewInvalidInputError(opFit,
			fmt.Sprintf("needs samples of at least 2 classes in the data, but the data contains %d", len(classes)))
	}
	if m.cfg.C <= 0 || m.cfg.MaxIter <= 0 || m.cfg.Tol <= 0 {
		return errors.NewInvalidInputError(opFit, "C, MaxIter and Tol must be positive")
	}

	a := augment(x)
	positives := classes[1:2]
	if len(classes) > 2 {
		positives = classes
	}

	m.classes = classes
	m.weights = m.weights[:0]
	m.Iterations = m.Iterations[:0]

	for _, positive := range positives {
		signs := make([]float64, n)
		for i, label := range y {
			signs[i] = -1
			if label == positive {
				signs[i] = 1
			}
		}

		w, iters, converged, err := newton(a, signs, m.cfg)
		if err != nil {
			return errors.NewInternalError(opFit, err)
		}
		if !converged {
			logger.Default().Warn("solver did not converge",
				logger.Op(opFit),
				"class", positive,
				"max_iter", m.cfg.MaxIter)
		}
		m.weights = append(m.weights, w)
		m.Iterations = append(m.Iterations, iters)
	}
	return nil
}

// DecisionFunction returns one score per row and binary problem.
func (m *LogisticRegression) DecisionFunction(x mat.Matrix) *mat.Dense {
	a := augment(x)
	n, _ := a.Dims()
	scores := mat.NewDense(n, len(m.weights), nil)
	var z mat.VecDense
	for k, w := range m.weights {
		z.MulVec(a, w)
		scores.SetCol(k, z.RawVector().Data)
	}
	return scores
}

// Predict returns the predicted label for every row of x.
func (m *LogisticRegression) Predict(x mat.Matrix) []string {
	scores := m.DecisionFunction(x)
	n, k := scores.Dims()
	out := make([]string, n)
	for i := range n {
		if k == 1 {
			if scores.At(i, 0) > 0 {
				out[i] = m.classes[1]
			} else {
				out[i] = m.classes[0]
			}
			continue
		}
		best := 0
		for j := 1; j < k; j++ {
			if scores.At(i, j) > scores.At(i, best) {
				best = j
			}
		}
		out[i] = m.classes[best]
	}
	return out
}

// augment appends a constant 1 column to x.
func augment(x mat.Matrix) *mat.Dense {
	n, p := x.Dims()
	a := mat.NewDense(n, p+1, nil)
	a.Slice(0, n, 0, p).(*mat.Dense).Copy(x)
	for i := range n {
		a.Set(i, p, 1)
	}
	return a
}

// newton minimizes the binary objective with damped Newton steps.
func newton(a *mat.Dense, y []float64, cfg SolverConfig) (*mat.VecDense, int, bool, error) {
	n, d := a.Dims()
	w := mat.NewVecDense(d, nil)
	trial := mat.NewVecDense(d, nil)
	z := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	residual := mat.NewVecDense(n, nil)
	curvature := make([]float64, n)
	scaled := mat.NewDense(n, d, nil)

	var initial float64
	for iter := 0; iter < cfg.MaxIter; iter++ {
		z.MulVec(a, w)
		f := objective(w, z, y, cfg.C)

		for i := range n {
			s := sigmoid(y[i] * z.AtVec(i))
			residual.SetVec(i, cfg.C*(s-1)*y[i])
			curvature[i] = s * (1 - s)
		}
		grad.MulVec(a.T(), residual)
		grad.AddVec(grad, w)

		norm := mat.Norm(grad, 2)
		if iter == 0 {
			initial = norm
		}
		if norm <= cfg.Tol*initial || norm == 0 {
			return w, iter, true, nil
		}

		// H = I + C * Aᵀ diag(curvature) A
		for i := range n {
			r := math.Sqrt(cfg.C * curvature[i])
			for j := range d {
				scaled.Set(i, j, r*a.At(i, j))
			}
		}
		var h mat.SymDense
		h.SymOuterK(1, scaled.T())
		for j := range d {
			h.SetSym(j, j, h.At(j, j)+1)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(&h); !ok {
			return nil, iter, false, fmt.Errorf("hessian is not positive definite at iteration %d", iter)
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, grad); err != nil {
			return nil, iter, false, fmt.Errorf("solving newton step: %w", err)
		}
		step.ScaleVec(-1, &step)
		slope := mat.Dot(grad, &step)

		alpha := 1.0
		for range maxLineSearch {
			trial.AddScaledVec(w, alpha, &step)
			z.MulVec(a, trial)
			if objective(trial, z, y, cfg.C) <= f+armijo*alpha*slope {
				break
			}
			alpha /= 2
		}
		w.CopyVec(trial)
	}

	z.MulVec(a, w)
	for i := range n {
		residual.SetVec(i, cfg.C*(sigmoid(y[i]*z.AtVec(i))-1)*y[i])
	}
	grad.MulVec(a.T(), residual)
	grad.AddVec(grad, w)
	return w, cfg.MaxIter, mat.Norm(grad, 2) <= cfg.Tol*initial, nil
}

func objective(w, z *mat.VecDense, y []float64, c float64) float64 {
	loss := 0.0
	for i, yi := range y {
		loss += logLoss(yi * z.AtVec(i))
	}
	return 0.5*mat.Dot(w, w) + c*loss
}

// logLoss is log(1 + exp(-m)) without overflow.
func logLoss(m float64) float64 {
	if m >= 0 {
		return math.Log1p(math.Exp(-m))
	}
	return -m + math.Log1p(math.Exp(m))
}

func sigmoid(m float64) float64 {
	if m >= 0 {
		return 1 / (1 + math.Exp(-m))
	}
	e := math.Exp(m)
	return e / (1 + e)
}
