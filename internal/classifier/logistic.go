package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticConfig holds multinomial logistic regression hyperparameters.
type LogisticConfig struct {
	MaxIter int
	// C is the inverse L2 regularisation strength.
	C float64
	// Tol stops training once the max absolute row sum of the gradient falls below it.
	Tol float64
}

// LogisticRegression is a multinomial (softmax) linear classifier trained by
// accelerated full-batch gradient descent with a 1/L step.
type LogisticRegression struct {
	config   LogisticConfig
	features int
	weights  *mat.Dense // (features+1) x classes, last row is the intercept
	iters    int
}

// NewLogisticRegression creates an unfitted model.
func NewLogisticRegression(cfg LogisticConfig) *LogisticRegression {
	if cfg.MaxIter < 1 {
		cfg.MaxIter = 1000
	}
	if cfg.C <= 0 {
		cfg.C = 1
	}
	if cfg.Tol <= 0 {
		cfg.Tol = 1e-4
	}
	return &LogisticRegression{config: cfg}
}

// Name returns the model name.
func (m *LogisticRegression) Name() string {
	return string(ModelTypeLogisticRegression)
}

// Iterations returns the number of gradient steps taken by the last Fit.
func (m *LogisticRegression) Iterations() int {
	return m.iters
}

// Fit trains the model.
func (m *LogisticRegression) Fit(x mat.Matrix, y []int) error {
	rows, classes, err := checkFitInput(x, y)
	if err != nil {
		return fmt.Errorf("logistic regression: %w", err)
	}
	if classes < 2 {
		return errors.New("logistic regression: needs at least two classes")
	}
	_, cols := x.Dims()
	xa := augment(x)
	n := float64(rows)
	lambda := 1 / (m.config.C * n)

	// Lipschitz bound of the mean softmax loss gradient: 0.5 * ||X||_F^2 / n.
	lipschitz := 0.5*math.Pow(mat.Norm(xa, 2), 2)/n + lambda
	if lipschitz <= 0 {
		lipschitz = 1
	}
	step := 1 / lipschitz

	w := mat.NewDense(cols+1, classes, nil)
	prev := mat.NewDense(cols+1, classes, nil)
	look := mat.NewDense(cols+1, classes, nil)
	grad := mat.NewDense(cols+1, classes, nil)
	probs := mat.NewDense(rows, classes, nil)
	t := 1.0

	m.iters = 0
	for iter := 0; iter < m.config.MaxIter; iter++ {
		m.iters++
		probs.Mul(xa, look)
		for i := 0; i < rows; i++ {
			softmax(probs.RawRowView(i))
			probs.Set(i, y[i], probs.At(i, y[i])-1)
		}
		grad.Mul(xa.T(), probs)
		grad.Scale(1/n, grad)
		// intercept row is not regularised
		for r := 0; r < cols; r++ {
			g := grad.RawRowView(r)
			floats.AddScaled(g, lambda, look.RawRowView(r))
		}

		if mat.Norm(grad, math.Inf(1)) < m.config.Tol && iter > 0 {
			break
		}

		prev.Copy(w)
		w.Copy(look)
		w.Sub(w, scaled(grad, step))

		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		momentum := (t - 1) / tNext
		look.Sub(w, prev)
		look.Scale(momentum, look)
		look.Add(look, w)
		t = tNext
	}

	m.features = cols
	m.weights = w
	return nil
}

// Predict returns the most probable class per row.
func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	if _, err := checkPredictInput(x, m.features); err != nil {
		return nil, fmt.Errorf("logistic regression: %w", err)
	}
	var scores mat.Dense
	scores.Mul(augment(x), m.weights)
	rows, _ := scores.Dims()
	out := make([]int, rows)
	for i := range out {
		out[i] = argmax(scores.RawRowView(i))
	}
	return out, nil
}

// augment appends a constant 1 column for the intercept.
func augment(x mat.Matrix) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols+1, nil)
	out.Slice(0, rows, 0, cols).(*mat.Dense).Copy(x)
	for i := 0; i < rows; i++ {
		out.Set(i, cols, 1)
	}
	return out
}

func scaled(a *mat.Dense, s float64) *mat.Dense {
	var out mat.Dense
	out.Scale(s, a)
	return &out
}

// softmax converts scores to probabilities in place.
func softmax(v []float64) {
	peak := floats.Max(v)
	var sum float64
	for i := range v {
		v[i] = math.Exp(v[i] - peak)
		sum += v[i]
	}
	floats.Scale(1/sum, v)
}
