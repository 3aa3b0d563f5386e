package benchmark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/haskel/cellbench/internal/classifier"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/evaluation"
	"github.com/haskel/cellbench/internal/preprocess"
)

// EfficiencyPoint is one learning-curve measurement.
type EfficiencyPoint struct {
	Model           string
	Size            int
	Repeat          int
	Accuracy        float64
	F1Macro         float64
	TrainingSeconds float64
	Error           string
}

// EfficiencyConfig describes a sample-efficiency sweep.
type EfficiencyConfig struct {
	Model    string
	Sizes    []int
	Repeats  int
	TestSize float64
	Seed     uint64
}

// SampleEfficiency trains one model on growing training subsets. Each
// repeat draws its own held-out partition, then the first Size rows of the
// shuffled training partition. Failed fits are recorded, not returned.
func (d *Driver) SampleEfficiency(ctx context.Context, data *dataset.Dataset, cfg EfficiencyConfig) ([]EfficiencyPoint, error) {
	modelType := classifier.Normalize(cfg.Model)
	if !modelType.IsValid() {
		return nil, &ConfigurationError{Field: "model", Reason: "unknown model name", Names: []string{cfg.Model}}
	}
	if len(cfg.Sizes) == 0 {
		return nil, &ConfigurationError{Field: "sizes", Reason: "at least one sample size is required"}
	}
	if slices.ContainsFunc(cfg.Sizes, func(n int) bool { return n < 2 }) {
		return nil, &ConfigurationError{Field: "sizes", Reason: "sample sizes must be at least 2"}
	}
	if cfg.Repeats < 1 {
		return nil, &ConfigurationError{Field: "repeats", Reason: "must be a positive integer"}
	}
	if data.Rows() == 0 {
		return nil, &DataUnavailableError{Err: dataset.ErrNoData}
	}
	if err := data.Validate(); err != nil {
		return nil, &DataUnavailableError{Err: err}
	}

	x := data.Features
	if !d.config.SkipScaling {
		var err error
		if x, err = preprocess.Standardize(x); err != nil {
			return nil, fmt.Errorf("scale features: %w", err)
		}
	}
	enc := classifier.NewLabelEncoder(data.Labels)
	y, err := enc.Encode(data.Labels)
	if err != nil {
		return nil, &DataUnavailableError{Err: err}
	}

	models := d.config.Models
	models.Seed = cfg.Seed
	factory := classifier.NewFactory(models)

	var points []EfficiencyPoint
	for _, size := range cfg.Sizes {
		for repeat := 0; repeat < cfg.Repeats; repeat++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seed := cfg.Seed + uint64(repeat)
			fold, err := StratifiedSplit(y, cfg.TestSize, seed)
			if err != nil {
				return nil, &DataUnavailableError{Err: err}
			}
			if size > len(fold.Train) {
				return nil, &ConfigurationError{
					Field:  "sizes",
					Reason: fmt.Sprintf("sample size %d exceeds the %d available training rows", size, len(fold.Train)),
				}
			}
			rng := rand.New(rand.NewPCG(seed, splitStream+1))
			train := slices.Clone(fold.Train)
			rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
			fold.Train = train[:size]
			slices.Sort(fold.Train)

			point := EfficiencyPoint{Model: modelType.String(), Size: size, Repeat: repeat}
			est, err := factory.CreateByType(modelType)
			if err == nil {
				var rec evaluation.Record
				rec, _, _, err = fitAndScore(est, x, y, enc, fold)
				point.Accuracy = rec.Accuracy
				point.F1Macro = rec.F1Macro
				point.TrainingSeconds = rec.DurationSeconds
			}
			if err != nil {
				failed := evaluation.FailedRecord(point.Model, &ModelFitError{Model: point.Model, Err: err})
				point.Accuracy, point.F1Macro, point.TrainingSeconds = failed.Accuracy, failed.F1Macro, failed.DurationSeconds
				point.Error = failed.Error
				d.logger.Warn("model failed", "model", point.Model, "size", size, "repeat", repeat, "error", err)
			} else {
				d.logger.Debug("efficiency point",
					"model", point.Model,
					"size", size,
					"repeat", repeat,
					"accuracy", point.Accuracy)
			}
			points = append(points, point)
		}
	}
	return points, nil
}
