package cli

import (
	"log/slog"
	"time"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/classifier"
	"github.com/haskel/cellbench/internal/config"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/report"
)

func benchmarkConfig(c config.BenchmarkConfig) benchmark.Config {
	return benchmark.Config{
		Tissues:       c.Tissues,
		MaxCells:      c.MaxCells,
		NGenes:        c.NGenes,
		ModelNames:    c.Models,
		UsePCA:        c.UsePCA,
		PCAComponents: c.PCAComponents,
		UseCV:         c.UseCV,
		Folds:         c.Folds,
		TestSize:      c.TestSize,
		Seed:          c.Seed,
		TrainTissue:   c.TrainTissue,
	}
}

func classifierConfig(m config.ModelsConfig, seed uint64) classifier.Config {
	cfg := classifier.DefaultConfig()
	cfg.Seed = seed

	cfg.RandomForest.NEstimators = m.RandomForest.NEstimators
	cfg.RandomForest.MaxDepth = m.RandomForest.MaxDepth
	cfg.RandomForest.MinSamplesSplit = m.RandomForest.MinSamplesSplit
	cfg.RandomForest.MinSamplesLeaf = m.RandomForest.MinSamplesLeaf

	cfg.Boosting = boostConfig(m.GradientBoosting)
	cfg.XGBoost = boostConfig(m.XGBoost)

	cfg.Logistic = classifier.LogisticConfig{
		MaxIter: m.LogisticRegression.MaxIter,
		C:       m.LogisticRegression.C,
		Tol:     m.LogisticRegression.Tol,
	}
	cfg.NaiveBayes = classifier.NaiveBayesConfig{VarSmoothing: m.NaiveBayes.VarSmoothing}
	cfg.SVM.C = m.LinearSVM.C
	cfg.SVM.Epochs = m.LinearSVM.Epochs

	return cfg
}

func boostConfig(p config.BoostParams) classifier.BoostConfig {
	return classifier.BoostConfig{
		NEstimators:    p.NEstimators,
		MaxDepth:       p.MaxDepth,
		LearningRate:   p.LearningRate,
		Lambda:         p.Lambda,
		MinChildWeight: p.MinChildWeight,
		MaxBins:        p.MaxBins,
	}
}

// newLoader builds the configured data source wrapped in retries.
func newLoader(d config.DataConfig, backoff time.Duration, logger *slog.Logger) dataset.Loader {
	var next dataset.Loader
	switch d.Source {
	case "csv":
		next = dataset.NewCSVLoader(dataset.CSVConfig{
			Path:        d.Path,
			LabelColumn: d.LabelColumn,
			GroupColumn: d.GroupColumn,
		})
	default:
		syn := dataset.DefaultSyntheticConfig()
		syn.CellsPerTissue = d.Synthetic.CellsPerTissue
		syn.Genes = d.Synthetic.Genes
		syn.MarkerGenes = d.Synthetic.MarkerGenes
		next = dataset.NewSyntheticLoader(syn)
	}
	return dataset.NewRetryLoader(next, d.Retry.Attempts, backoff, logger)
}

func writerConfig(o config.OutputConfig) report.WriterConfig {
	return report.WriterConfig{
		Dir:          o.Dir,
		CSVName:      o.CSVName,
		PlotName:     o.PlotName,
		SnapshotName: o.SnapshotName,
		Plot:         o.Plot,
		Snapshot:     o.Snapshot,
	}
}
