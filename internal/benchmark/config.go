// Package benchmark runs classifier comparisons: it validates a run
// configuration, loads and prepares the data, trains every requested model
// and assembles the results table.
package benchmark

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/haskel/cellbench/internal/classifier"
)

const (
	DefaultPCAComponents = 50
	DefaultFolds         = 5
	DefaultTestSize      = 0.2
	DefaultSeed          = 42
)

// Config holds the options of one run. Zero MaxCells or NGenes means no cap.
type Config struct {
	Tissues       []string `json:"tissues,omitempty"`
	MaxCells      int      `json:"max_cells,omitempty"`
	NGenes        int      `json:"n_genes,omitempty"`
	ModelNames    []string `json:"models"`
	UsePCA        bool     `json:"use_pca"`
	PCAComponents int      `json:"pca_components"`
	UseCV         bool     `json:"use_cv"`
	Folds         int      `json:"folds"`
	TestSize      float64  `json:"test_size"`
	Seed          uint64   `json:"seed"`
	// TrainTissue trains on one tissue and evaluates on the others.
	TrainTissue string `json:"train_tissue,omitempty"`
}

// DefaultConfig returns a configuration that evaluates every registered model.
func DefaultConfig() Config {
	return Config{
		ModelNames:    classifier.DefaultNames(),
		PCAComponents: DefaultPCAComponents,
		Folds:         DefaultFolds,
		TestSize:      DefaultTestSize,
		Seed:          DefaultSeed,
	}
}

// Validate checks the options that do not depend on the data. Every problem
// is reported as a *ConfigurationError.
func (c Config) Validate() error {
	var errs []error

	if len(c.ModelNames) == 0 {
		errs = append(errs, &ConfigurationError{Field: "models", Reason: "at least one model is required"})
	}
	if blank := slices.IndexFunc(c.ModelNames, func(n string) bool { return strings.TrimSpace(n) == "" }); blank >= 0 {
		errs = append(errs, &ConfigurationError{Field: "models", Reason: "model names must not be empty"})
	}
	unknown := lo.Filter(c.ModelNames, func(n string, _ int) bool {
		return strings.TrimSpace(n) != "" && !classifier.Normalize(n).IsValid()
	})
	if len(unknown) > 0 {
		errs = append(errs, &ConfigurationError{
			Field:  "models",
			Reason: "unknown model names (available: " + strings.Join(classifier.Names(), ", ") + ")",
			Names:  unknown,
		})
	}
	resolved := lo.FilterMap(c.ModelNames, func(n string, _ int) (string, bool) {
		t := classifier.Normalize(n)
		return t.String(), t.IsValid()
	})
	if dups := lo.FindDuplicates(resolved); len(dups) > 0 {
		errs = append(errs, &ConfigurationError{
			Field:  "models",
			Reason: "models requested more than once",
			Names:  dups,
		})
	}
	if c.MaxCells < 0 {
		errs = append(errs, &ConfigurationError{Field: "max_cells", Reason: "must be a positive integer"})
	}
	if c.NGenes < 0 {
		errs = append(errs, &ConfigurationError{Field: "n_genes", Reason: "must be a positive integer"})
	}
	if c.UsePCA && c.PCAComponents < 1 {
		errs = append(errs, &ConfigurationError{Field: "pca_components", Reason: "must be a positive integer"})
	}
	if c.UsePCA && c.NGenes > 0 && c.PCAComponents >= c.NGenes {
		errs = append(errs, &ConfigurationError{Field: "pca_components", Reason: "must be less than n_genes"})
	}
	if c.UseCV && c.Folds < 2 {
		errs = append(errs, &ConfigurationError{Field: "folds", Reason: "cross-validation needs at least 2 folds"})
	}
	if !c.UseCV && c.TrainTissue == "" && (c.TestSize <= 0 || c.TestSize >= 1) {
		errs = append(errs, &ConfigurationError{Field: "test_size", Reason: "must be between 0 and 1"})
	}
	if c.UseCV && c.TrainTissue != "" {
		errs = append(errs, &ConfigurationError{Field: "train_tissue", Reason: "cannot be combined with cross-validation"})
	}

	return errors.Join(errs...)
}
