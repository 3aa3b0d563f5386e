package classifier

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVMConfig holds linear SVM hyperparameters.
type SVMConfig struct {
	// C is the inverse regularisation strength of the hinge objective.
	C      float64
	Epochs int
	Seed   uint64
}

// LinearSVM is a one-vs-rest linear support vector machine trained with the
// Pegasos stochastic sub-gradient method. The intercept is learned as the
// weight of a constant feature; predictions use the iterate average.
type LinearSVM struct {
	config   SVMConfig
	features int
	weights  [][]float64 // classes x (features+1)
}

// NewLinearSVM creates an unfitted model.
func NewLinearSVM(cfg SVMConfig) *LinearSVM {
	if cfg.C <= 0 {
		cfg.C = 1
	}
	if cfg.Epochs < 1 {
		cfg.Epochs = 20
	}
	return &LinearSVM{config: cfg}
}

// Name returns the model name.
func (m *LinearSVM) Name() string {
	return string(ModelTypeLinearSVM)
}

// Fit trains one binary margin classifier per class.
func (m *LinearSVM) Fit(x mat.Matrix, y []int) error {
	rows, classes, err := checkFitInput(x, y)
	if err != nil {
		return fmt.Errorf("linear svm: %w", err)
	}
	if classes < 2 {
		return errors.New("linear svm: needs at least two classes")
	}
	xa := augment(x)
	_, dim := xa.Dims()
	lambda := 1 / (m.config.C * float64(rows))

	m.weights = make([][]float64, classes)
	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}

	for k := 0; k < classes; k++ {
		rng := rand.New(rand.NewPCG(m.config.Seed, uint64(k)))
		w := make([]float64, dim)
		avg := make([]float64, dim)
		averaged := 0
		step := 0

		for epoch := 0; epoch < m.config.Epochs; epoch++ {
			rng.Shuffle(rows, func(i, j int) { order[i], order[j] = order[j], order[i] })
			for _, i := range order {
				step++
				eta := 1 / (lambda * float64(step))
				row := xa.RawRowView(i)
				label := -1.0
				if y[i] == k {
					label = 1
				}
				margin := label * floats.Dot(w, row)
				floats.Scale(1-eta*lambda, w)
				if margin < 1 {
					floats.AddScaled(w, eta*label, row)
				}
				// average the second half of the run
				if epoch >= m.config.Epochs/2 {
					averaged++
					floats.Add(avg, w)
				}
			}
		}
		if averaged > 0 {
			floats.Scale(1/float64(averaged), avg)
			w = avg
		}
		m.weights[k] = w
	}

	_, m.features = x.Dims()
	return nil
}

// Predict returns the class with the largest decision value.
func (m *LinearSVM) Predict(x mat.Matrix) ([]int, error) {
	if _, err := checkPredictInput(x, m.features); err != nil {
		return nil, fmt.Errorf("linear svm: %w", err)
	}
	xa := augment(x)
	rows, _ := xa.Dims()
	out := make([]int, rows)
	scores := make([]float64, len(m.weights))
	for i := 0; i < rows; i++ {
		row := xa.RawRowView(i)
		for k, w := range m.weights {
			scores[k] = floats.Dot(w, row)
		}
		out[i] = argmax(scores)
	}
	return out, nil
}
