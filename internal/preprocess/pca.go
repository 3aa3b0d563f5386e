package preprocess

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidComponents is returned when the requested dimensionality cannot be
// produced from the input matrix.
var ErrInvalidComponents = errors.New("invalid number of components")

// Reducer projects a feature matrix onto a lower dimensionality.
type Reducer interface {
	Reduce(x mat.Matrix, components int) (*mat.Dense, error)
}

// PCA is a fitted principal component projection.
type PCA struct {
	Mean       []float64
	Components *mat.Dense // features x k, unit columns
	// ExplainedRatio is the fraction of total variance captured per component.
	ExplainedRatio []float64
}

// FitPCA computes the top k principal components of x via a thin SVD of the
// centered matrix.
func FitPCA(x mat.Matrix, k int) (*PCA, error) {
	rows, cols := x.Dims()
	if k < 1 || k >= cols || k > rows {
		return nil, fmt.Errorf("%w: %d components from %d rows x %d features (need 1 <= k < features, k <= rows)",
			ErrInvalidComponents, k, rows, cols)
	}

	mean := make([]float64, cols)
	var col []float64
	for j := 0; j < cols; j++ {
		col = mat.Col(col, j, x)
		mean[j] = floats.Sum(col) / float64(rows)
	}
	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(i, j int, v float64) float64 { return v - mean[j] }, x)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThinV); !ok {
		return nil, errors.New("pca: SVD did not converge")
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	components := mat.DenseCopyOf(v.Slice(0, cols, 0, k))
	flipSigns(components)

	var total float64
	for _, s := range values {
		total += s * s
	}
	ratio := make([]float64, k)
	for c := 0; c < k && c < len(values); c++ {
		if total > 0 {
			ratio[c] = values[c] * values[c] / total
		}
	}

	return &PCA{
		Mean:           mean,
		Components:     components,
		ExplainedRatio: ratio,
	}, nil
}

// Transform projects x onto the fitted components.
func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(p.Mean) {
		return nil, fmt.Errorf("pca: fitted on %d features, got %d", len(p.Mean), cols)
	}
	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(i, j int, v float64) float64 { return v - p.Mean[j] }, x)

	var out mat.Dense
	out.Mul(centered, p.Components)
	return &out, nil
}

// flipSigns makes the largest-magnitude loading of every component positive so
// projections are reproducible across SVD implementations.
func flipSigns(c *mat.Dense) {
	rows, k := c.Dims()
	for j := 0; j < k; j++ {
		best := 0.0
		for i := 0; i < rows; i++ {
			if v := c.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best < 0 {
			for i := 0; i < rows; i++ {
				c.Set(i, j, -c.At(i, j))
			}
		}
	}
}

// SVDReducer implements Reducer with FitPCA.
type SVDReducer struct {
	logger *slog.Logger
}

// NewSVDReducer creates a PCA reducer. A nil logger discards output.
func NewSVDReducer(logger *slog.Logger) *SVDReducer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SVDReducer{logger: logger}
}

// Reduce implements Reducer.
func (r *SVDReducer) Reduce(x mat.Matrix, components int) (*mat.Dense, error) {
	p, err := FitPCA(x, components)
	if err != nil {
		return nil, err
	}
	out, err := p.Transform(x)
	if err != nil {
		return nil, err
	}

	_, cols := x.Dims()
	r.logger.Info("applied PCA",
		"features", cols,
		"components", components,
		"explained_variance", floats.Sum(p.ExplainedRatio),
	)
	return out, nil
}
