package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RandomForestConfig holds random forest hyperparameters.
type RandomForestConfig struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures <= 0 selects sqrt(features) per split.
	MaxFeatures int
	Bootstrap   bool
	Seed        uint64
}

// RandomForest is a bagged ensemble of gini decision trees voting by majority.
type RandomForest struct {
	config   RandomForestConfig
	classes  int
	features int
	trees    []*decisionTree
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(cfg RandomForestConfig) *RandomForest {
	if cfg.NEstimators < 1 {
		cfg.NEstimators = 100
	}
	return &RandomForest{config: cfg}
}

// Name returns the model name.
func (f *RandomForest) Name() string {
	return string(ModelTypeRandomForest)
}

// Fit grows NEstimators trees, each on its own bootstrap sample and seed.
func (f *RandomForest) Fit(x mat.Matrix, y []int) error {
	rows, classes, err := checkFitInput(x, y)
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	xd := dense(x)
	_, cols := xd.Dims()

	maxFeatures := f.config.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(cols))))
	}

	f.classes = classes
	f.features = cols
	f.trees = make([]*decisionTree, f.config.NEstimators)
	idx := make([]int, rows)
	for t := range f.trees {
		rng := rand.New(rand.NewPCG(f.config.Seed, uint64(t)))
		for i := range idx {
			if f.config.Bootstrap {
				idx[i] = rng.IntN(rows)
			} else {
				idx[i] = i
			}
		}
		tree := newDecisionTree(TreeConfig{
			MaxDepth:        f.config.MaxDepth,
			MinSamplesSplit: f.config.MinSamplesSplit,
			MinSamplesLeaf:  f.config.MinSamplesLeaf,
			MaxFeatures:     maxFeatures,
		}, rng)
		tree.fit(xd, y, idx, classes)
		f.trees[t] = tree
	}
	return nil
}

// FeatureImportances returns the mean decrease in gini impurity per feature,
// averaged over trees and normalised to sum to 1. A forest whose trees never
// split reports all zeros.
func (f *RandomForest) FeatureImportances() ([]float64, error) {
	if f.features == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, f.features)
	for _, tree := range f.trees {
		if total := floats.Sum(tree.importance); total > 0 {
			floats.AddScaled(out, 1/total, tree.importance)
		}
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out, nil
}

// Predict returns the majority vote of all trees.
func (f *RandomForest) Predict(x mat.Matrix) ([]int, error) {
	xd, err := checkPredictInput(x, f.features)
	if err != nil {
		return nil, fmt.Errorf("random forest: %w", err)
	}
	rows, _ := xd.Dims()

	out := make([]int, rows)
	votes := make([]int, f.classes)
	for i := 0; i < rows; i++ {
		clear(votes)
		row := xd.RawRowView(i)
		for _, tree := range f.trees {
			votes[tree.predictRow(row)]++
		}
		out[i] = majority(votes)
	}
	return out, nil
}
