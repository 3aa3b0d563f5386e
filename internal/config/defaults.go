package config

func Default() *Config {
	return &Config{
		Benchmark: BenchmarkConfig{
			Models: []string{
				"random_forest",
				"xgboost",
				"logistic_regression",
				"gradient_boosting",
				"naive_bayes",
				"linear_svm",
			},
			PCAComponents: 50,
			Folds:         5,
			TestSize:      0.2,
			Seed:          42,
		},
		Models: ModelsConfig{
			RandomForest: ForestParams{
				NEstimators:     100,
				MaxDepth:        20,
				MinSamplesSplit: 5,
				MinSamplesLeaf:  1,
			},
			GradientBoosting: BoostParams{
				NEstimators:    100,
				MaxDepth:       5,
				LearningRate:   0.1,
				Lambda:         0,
				MinChildWeight: 0.001,
				MaxBins:        1024,
			},
			XGBoost: BoostParams{
				NEstimators:    100,
				MaxDepth:       6,
				LearningRate:   0.1,
				Lambda:         1,
				MinChildWeight: 1,
				MaxBins:        256,
			},
			LogisticRegression: LogisticParams{
				MaxIter: 1000,
				C:       1,
				Tol:     0.0001,
			},
			NaiveBayes: BayesParams{
				VarSmoothing: 1e-9,
			},
			LinearSVM: SVMParams{
				C:      1,
				Epochs: 20,
			},
		},
		Data: DataConfig{
			Source:      "synthetic",
			LabelColumn: "cell_type",
			GroupColumn: "tissue",
			Synthetic: SyntheticConfig{
				CellsPerTissue: 2000,
				Genes:          1000,
				MarkerGenes:    10,
			},
			Retry: RetryConfig{
				Attempts:  3,
				BackoffMS: 500,
			},
		},
		Efficiency: EfficiencyConfig{
			Model:   "random_forest",
			Sizes:   []int{100, 250, 500, 1000},
			Repeats: 3,
		},
		Output: OutputConfig{
			Dir:                "results",
			CSVName:            "cell_type_classification_results.csv",
			PlotName:           "model_comparison.png",
			SnapshotName:       "run-{run_id}.json",
			Plot:               true,
			Snapshot:           true,
			EfficiencyCSVName:  "sample_efficiency.csv",
			EfficiencyPlotName: "sample_efficiency.png",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
