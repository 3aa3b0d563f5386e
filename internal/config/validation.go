package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Benchmark.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("benchmark: %w", err))
	}

	if err := c.Models.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("models: %w", err))
	}

	if err := c.Data.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("data: %w", err))
	}

	if err := c.Efficiency.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("efficiency: %w", err))
	}

	if err := c.Output.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (b *BenchmarkConfig) Validate() error {
	var errs []error

	if b.MaxCells < 0 {
		errs = append(errs, fmt.Errorf("max_cells must be non-negative, got %d", b.MaxCells))
	}

	if b.NGenes < 0 {
		errs = append(errs, fmt.Errorf("n_genes must be non-negative, got %d", b.NGenes))
	}

	if b.PCAComponents < 1 {
		errs = append(errs, fmt.Errorf("pca_components must be at least 1, got %d", b.PCAComponents))
	}

	if b.Folds < 2 {
		errs = append(errs, fmt.Errorf("folds must be at least 2, got %d", b.Folds))
	}

	if b.TestSize <= 0 || b.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("test_size must be between 0 and 1, got %v", b.TestSize))
	}

	return errors.Join(errs...)
}

func (m *ModelsConfig) Validate() error {
	var errs []error

	if m.RandomForest.NEstimators < 1 {
		errs = append(errs, fmt.Errorf("random_forest.n_estimators must be at least 1"))
	}

	boosters := []struct {
		name string
		p    BoostParams
	}{
		{"gradient_boosting", m.GradientBoosting},
		{"xgboost", m.XGBoost},
	}
	for _, b := range boosters {
		name, p := b.name, b.p
		if p.NEstimators < 1 {
			errs = append(errs, fmt.Errorf("%s.n_estimators must be at least 1", name))
		}
		if p.LearningRate <= 0 {
			errs = append(errs, fmt.Errorf("%s.learning_rate must be positive", name))
		}
		if p.Lambda < 0 {
			errs = append(errs, fmt.Errorf("%s.lambda must be non-negative", name))
		}
	}

	if m.LogisticRegression.MaxIter < 1 {
		errs = append(errs, fmt.Errorf("logistic_regression.max_iter must be at least 1"))
	}

	if m.LogisticRegression.C <= 0 {
		errs = append(errs, fmt.Errorf("logistic_regression.c must be positive"))
	}

	if m.NaiveBayes.VarSmoothing <= 0 {
		errs = append(errs, fmt.Errorf("naive_bayes.var_smoothing must be positive"))
	}

	if m.LinearSVM.C <= 0 {
		errs = append(errs, fmt.Errorf("linear_svm.c must be positive"))
	}

	return errors.Join(errs...)
}

func (d *DataConfig) Validate() error {
	var errs []error

	switch d.Source {
	case "synthetic":
	case "csv":
		if d.Path == "" {
			errs = append(errs, fmt.Errorf("path is required for the csv source"))
		}
		if d.LabelColumn == "" {
			errs = append(errs, fmt.Errorf("label_column cannot be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid source: %s (valid: synthetic, csv)", d.Source))
	}

	if d.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry.attempts must be at least 1"))
	}

	if d.Retry.BackoffMS < 0 {
		errs = append(errs, fmt.Errorf("retry.backoff_ms must be non-negative"))
	}

	return errors.Join(errs...)
}

func (e *EfficiencyConfig) Validate() error {
	if e.Repeats < 1 {
		return fmt.Errorf("repeats must be at least 1, got %d", e.Repeats)
	}
	if slices.ContainsFunc(e.Sizes, func(n int) bool { return n < 2 }) {
		return fmt.Errorf("sizes must be at least 2")
	}
	return nil
}

var plotExtensions = []string{".png", ".svg", ".pdf", ".jpg", ".jpeg"}

func (o *OutputConfig) Validate() error {
	var errs []error

	if o.Dir == "" {
		errs = append(errs, fmt.Errorf("dir cannot be empty"))
	}

	if o.CSVName == "" {
		errs = append(errs, fmt.Errorf("csv_name cannot be empty"))
	}

	if o.Plot && !slices.Contains(plotExtensions, strings.ToLower(filepath.Ext(o.PlotName))) {
		errs = append(errs, fmt.Errorf("plot_name must end in one of %s, got %q",
			strings.Join(plotExtensions, ", "), o.PlotName))
	}

	if o.Snapshot && o.SnapshotName == "" {
		errs = append(errs, fmt.Errorf("snapshot_name cannot be empty"))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
