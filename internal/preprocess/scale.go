package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each column to zero mean and unit population variance.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit learns per-column mean and standard deviation.
func (s *StandardScaler) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return errors.New("scaler: empty input")
	}

	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	var col []float64
	for j := 0; j < cols; j++ {
		col = mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		// constant columns pass through centered but unscaled
		if std < 1e-12 {
			std = 1
		}
		s.Scale[j] = std
	}
	return nil
}

// Transform applies the learned scaling to x.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, fmt.Errorf("scaler: fitted on %d columns, got %d", len(s.Mean), cols)
	}
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// Standardize fits a scaler on x and returns the scaled copy.
func Standardize(x mat.Matrix) (*mat.Dense, error) {
	var s StandardScaler
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
