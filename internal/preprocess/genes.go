// Package preprocess implements the feature transformations applied before
// model fitting: gene capping, standard scaling and PCA.
package preprocess

import (
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SelectVariableGenes returns the indices of the n columns with the highest
// variance, in ascending column order. Ties keep the lower index.
func SelectVariableGenes(x mat.Matrix, n int) []int {
	_, cols := x.Dims()
	if n <= 0 || n >= cols {
		idx := make([]int, cols)
		for j := range idx {
			idx[j] = j
		}
		return idx
	}

	variances := make([]float64, cols)
	var col []float64
	for j := 0; j < cols; j++ {
		col = mat.Col(col, j, x)
		_, variances[j] = stat.PopMeanVariance(col, nil)
	}

	order := make([]int, cols)
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case variances[a] > variances[b]:
			return -1
		case variances[a] < variances[b]:
			return 1
		}
		return 0
	})

	keep := slices.Clone(order[:n])
	slices.Sort(keep)
	return keep
}

// SelectColumns copies the given columns of x into a new matrix.
func SelectColumns(x mat.Matrix, cols []int) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for i := 0; i < rows; i++ {
		for k, j := range cols {
			out.Set(i, k, x.At(i, j))
		}
	}
	return out
}
