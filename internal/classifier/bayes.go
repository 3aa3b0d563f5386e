package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NaiveBayesConfig holds Gaussian naive Bayes hyperparameters.
type NaiveBayesConfig struct {
	// VarSmoothing is added to every variance as a fraction of the largest
	// feature variance.
	VarSmoothing float64
}

// NaiveBayes is a Gaussian naive Bayes classifier.
type NaiveBayes struct {
	config   NaiveBayesConfig
	features int
	logPrior []float64
	means    [][]float64
	vars     [][]float64
}

// NewNaiveBayes creates an unfitted model.
func NewNaiveBayes(cfg NaiveBayesConfig) *NaiveBayes {
	if cfg.VarSmoothing <= 0 {
		cfg.VarSmoothing = 1e-9
	}
	return &NaiveBayes{config: cfg}
}

// Name returns the model name.
func (m *NaiveBayes) Name() string {
	return string(ModelTypeNaiveBayes)
}

// Fit estimates per-class feature means and variances.
func (m *NaiveBayes) Fit(x mat.Matrix, y []int) error {
	rows, classes, err := checkFitInput(x, y)
	if err != nil {
		return fmt.Errorf("naive bayes: %w", err)
	}
	xd := dense(x)
	_, cols := xd.Dims()

	byClass := make([][]int, classes)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	// epsilon scales with the widest feature
	var maxVar float64
	var col []float64
	for j := 0; j < cols; j++ {
		col = mat.Col(col, j, xd)
		_, v := stat.PopMeanVariance(col, nil)
		maxVar = math.Max(maxVar, v)
	}
	epsilon := m.config.VarSmoothing * maxVar
	if epsilon == 0 {
		epsilon = m.config.VarSmoothing
	}

	m.logPrior = make([]float64, classes)
	m.means = make([][]float64, classes)
	m.vars = make([][]float64, classes)
	values := make([]float64, 0, rows)
	for c, members := range byClass {
		m.means[c] = make([]float64, cols)
		m.vars[c] = make([]float64, cols)
		if len(members) == 0 {
			m.logPrior[c] = math.Inf(-1)
			continue
		}
		m.logPrior[c] = math.Log(float64(len(members)) / float64(rows))
		for j := 0; j < cols; j++ {
			values = values[:0]
			for _, i := range members {
				values = append(values, xd.At(i, j))
			}
			mean, variance := stat.PopMeanVariance(values, nil)
			m.means[c][j] = mean
			m.vars[c][j] = variance + epsilon
		}
	}
	m.features = cols
	return nil
}

// Predict returns the class with the highest joint log likelihood.
func (m *NaiveBayes) Predict(x mat.Matrix) ([]int, error) {
	xd, err := checkPredictInput(x, m.features)
	if err != nil {
		return nil, fmt.Errorf("naive bayes: %w", err)
	}
	rows, _ := xd.Dims()
	out := make([]int, rows)
	scores := make([]float64, len(m.logPrior))
	for i := 0; i < rows; i++ {
		row := xd.RawRowView(i)
		for c := range scores {
			s := m.logPrior[c]
			if !math.IsInf(s, -1) {
				for j, v := range row {
					d := v - m.means[c][j]
					s -= 0.5*math.Log(2*math.Pi*m.vars[c][j]) + d*d/(2*m.vars[c][j])
				}
			}
			scores[c] = s
		}
		out[i] = argmax(scores)
	}
	return out, nil
}
