// Package classifier implements an L2-regularised, class-weighted binary
// logistic regression trained with L-BFGS.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/mikey/textguard/internal/vectorizer"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrNotFitted is returned when predicting with an untrained model
	ErrNotFitted = errors.New("classifier is not fitted")
	// ErrSingleClass is returned when the training labels hold one class only
	ErrSingleClass = errors.New("training data must contain both classes")
)

// Options configures training
type Options struct {
	// C is the inverse regularisation strength.
	C float64 `json:"c"`
	// ClassWeight is "balanced" or "none".
	ClassWeight string  `json:"class_weight"`
	MaxIter     int     `json:"max_iter"`
	Tolerance   float64 `json:"tolerance"`
}

// DefaultOptions returns balanced weighting with at most 500 iterations
func DefaultOptions() Options {
	return Options{C: 1.0, ClassWeight: "balanced", MaxIter: 500, Tolerance: 1e-4}
}

// FitReport describes how training ended
type FitReport struct {
	Iterations   int
	Evaluations  int
	Converged    bool
	Status       string
	FinalLoss    float64
	ClassWeights [2]float64
}

// LogisticRegression is a binary linear classifier over sparse vectors
type LogisticRegression struct {
	opts      Options
	weights   []float64
	intercept float64
}

// New creates an untrained model
func New(opts Options) (*LogisticRegression, error) {
	if opts.C <= 0 {
		return nil, fmt.Errorf("regularisation strength C must be positive, got %v", opts.C)
	}
	if opts.MaxIter <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", opts.MaxIter)
	}
	switch opts.ClassWeight {
	case "balanced", "none", "":
	default:
		return nil, fmt.Errorf("unsupported class weight: %s", opts.ClassWeight)
	}
	return &LogisticRegression{opts: opts}, nil
}

// Fitted reports whether the model has weights
func (m *LogisticRegression) Fitted() bool {
	return m.weights != nil
}

// Fit trains on rows X with 0/1 labels y in a feature space of numFeatures
func (m *LogisticRegression) Fit(X []vectorizer.SparseVector, y []int, numFeatures int) (FitReport, error) {
	if len(X) != len(y) {
		return FitReport{}, fmt.Errorf("feature rows (%d) and labels (%d) differ", len(X), len(y))
	}
	if numFeatures <= 0 {
		return FitReport{}, fmt.Errorf("number of features must be positive, got %d", numFeatures)
	}

	var counts [2]int
	for i, label := range y {
		if label != 0 && label != 1 {
			return FitReport{}, fmt.Errorf("label %d at row %d is not 0 or 1", label, i)
		}
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return FitReport{}, ErrSingleClass
	}

	classWeights := [2]float64{1, 1}
	if m.opts.ClassWeight == "balanced" {
		n := float64(len(y))
		classWeights[0] = n / (2 * float64(counts[0]))
		classWeights[1] = n / (2 * float64(counts[1]))
	}

	sampleWeights := make([]float64, len(y))
	for i, label := range y {
		sampleWeights[i] = classWeights[label]
	}

	obj := &objective{x: X, y: y, sw: sampleWeights, dim: numFeatures, alpha: 1 / m.opts.C}

	problem := optimize.Problem{
		Func: obj.loss,
		Grad: obj.grad,
	}
	settings := &optimize.Settings{
		MajorIterations:   m.opts.MaxIter,
		GradientThreshold: m.opts.Tolerance,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 20,
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, numFeatures+1), settings, &optimize.LBFGS{})
	if result == nil {
		return FitReport{}, fmt.Errorf("failed to optimise logistic loss: %w", err)
	}
	params := result.Location.X
	if math.IsNaN(result.Location.F) || math.IsInf(result.Location.F, 0) {
		return FitReport{}, fmt.Errorf("failed to optimise logistic loss: non-finite loss")
	}

	m.weights = append([]float64(nil), params[:numFeatures]...)
	m.intercept = params[numFeatures]

	report := FitReport{
		Iterations:   result.Stats.MajorIterations,
		Evaluations:  result.Stats.FuncEvaluations,
		Converged:    err == nil && !result.Status.Early(),
		Status:       result.Status.String(),
		FinalLoss:    result.Location.F,
		ClassWeights: classWeights,
	}
	if err != nil {
		report.Status = err.Error()
	}
	return report, nil
}

// DecisionFunction returns w·x + b
func (m *LogisticRegression) DecisionFunction(x vectorizer.SparseVector) (float64, error) {
	if !m.Fitted() {
		return 0, ErrNotFitted
	}
	for _, idx := range x.Indices {
		if idx < 0 || idx >= len(m.weights) {
			return 0, fmt.Errorf("feature index %d outside model dimension %d", idx, len(m.weights))
		}
	}
	return x.Dot(m.weights) + m.intercept, nil
}

// Predict returns 1 when the decision value is positive, else 0
func (m *LogisticRegression) Predict(x vectorizer.SparseVector) (int, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProbability returns P(class 1 | x)
func (m *LogisticRegression) PredictProbability(x vectorizer.SparseVector) (float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(z), nil
}

// PredictBatch returns labels for every row
func (m *LogisticRegression) PredictBatch(X []vectorizer.SparseVector) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		label, err := m.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// objective is the weighted negative log-likelihood plus an L2 penalty on
// the coefficients. The intercept, stored last, is not penalised.
type objective struct {
	x     []vectorizer.SparseVector
	y     []int
	sw    []float64
	dim   int
	alpha float64
}

func (o *objective) loss(params []float64) float64 {
	w, b := params[:o.dim], params[o.dim]
	var total float64
	for i, row := range o.x {
		z := row.Dot(w) + b
		total += o.sw[i] * (logOnePlusExp(z) - float64(o.y[i])*z)
	}
	return total + 0.5*o.alpha*floats.Dot(w, w)
}

func (o *objective) grad(grad, params []float64) {
	w, b := params[:o.dim], params[o.dim]
	for i := range grad {
		grad[i] = 0
	}
	var gb float64
	for i, row := range o.x {
		z := row.Dot(w) + b
		r := o.sw[i] * (sigmoid(z) - float64(o.y[i]))
		for j, idx := range row.Indices {
			grad[idx] += r * row.Values[j]
		}
		gb += r
	}
	for j := 0; j < o.dim; j++ {
		grad[j] += o.alpha * w[j]
	}
	grad[o.dim] = gb
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func logOnePlusExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
