// Package classifier provides the baseline cell-type classifiers and the
// registry that constructs them by name.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("model is not fitted")

// ErrNonFinite is returned by Fit and Predict when the input holds NaN or Inf.
var ErrNonFinite = errors.New("non-finite input value")

// ModelType names a registered baseline.
type ModelType string

const (
	ModelTypeLogisticRegression ModelType = "logistic_regression"
	ModelTypeRandomForest       ModelType = "random_forest"
	ModelTypeGradientBoosting   ModelType = "gradient_boosting"
	ModelTypeXGBoost            ModelType = "xgboost"
	ModelTypeLinearSVM          ModelType = "linear_svm"
	ModelTypeNaiveBayes         ModelType = "naive_bayes"
)

// AllTypes lists every registered model type in display order.
var AllTypes = []ModelType{
	ModelTypeRandomForest,
	ModelTypeXGBoost,
	ModelTypeLogisticRegression,
	ModelTypeGradientBoosting,
	ModelTypeNaiveBayes,
	ModelTypeLinearSVM,
}

// IsValid checks if the model type is registered.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelTypeLogisticRegression, ModelTypeRandomForest, ModelTypeGradientBoosting,
		ModelTypeXGBoost, ModelTypeLinearSVM, ModelTypeNaiveBayes:
		return true
	}
	return false
}

// String returns string representation.
func (m ModelType) String() string {
	return string(m)
}

// Family groups model types by how they learn.
func (m ModelType) Family() string {
	switch m {
	case ModelTypeLogisticRegression:
		return "linear"
	case ModelTypeRandomForest:
		return "tree-ensemble"
	case ModelTypeGradientBoosting, ModelTypeXGBoost:
		return "boosting"
	case ModelTypeLinearSVM:
		return "margin"
	case ModelTypeNaiveBayes:
		return "probabilistic"
	default:
		return "unknown"
	}
}

// Estimator is a trainable classifier over dense class indices 0..k-1.
type Estimator interface {
	// Name returns the registry name.
	Name() string

	// Fit trains on rows of x with labels y.
	Fit(x mat.Matrix, y []int) error

	// Predict returns one class index per row of x.
	Predict(x mat.Matrix) ([]int, error)
}

// FeatureImporter is implemented by fitted estimators that can rank input
// features.
type FeatureImporter interface {
	FeatureImportances() ([]float64, error)
}

// Entry is a named estimator selected from the registry.
type Entry struct {
	Name      string
	Estimator Estimator
}

// checkFitInput validates the common Fit preconditions and returns the row
// count and number of classes.
func checkFitInput(x mat.Matrix, y []int) (rows, classes int, err error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, errors.New("empty training matrix")
	}
	if rows != len(y) {
		return 0, 0, errors.New("training rows and labels differ in length")
	}
	for _, c := range y {
		if c < 0 {
			return 0, 0, errors.New("negative class index")
		}
		classes = max(classes, c+1)
	}
	if err := checkFinite(x); err != nil {
		return 0, 0, err
	}
	return rows, classes, nil
}

// dense returns x as *mat.Dense, copying only when needed.
func dense(x mat.Matrix) *mat.Dense {
	if d, ok := x.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(x)
}

// argmax returns the index of the largest value; ties keep the lowest index.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// checkPredictInput verifies x has the fitted feature count.
func checkPredictInput(x mat.Matrix, features int) (*mat.Dense, error) {
	if features == 0 {
		return nil, ErrNotFitted
	}
	_, cols := x.Dims()
	if cols != features {
		return nil, fmt.Errorf("fitted on %d features, got %d", features, cols)
	}
	if err := checkFinite(x); err != nil {
		return nil, err
	}
	return dense(x), nil
}

func checkFinite(x mat.Matrix) error {
	rows, cols := x.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d column %d: %w", i, j, ErrNonFinite)
			}
		}
	}
	return nil
}
