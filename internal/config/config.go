package config

import "time"

type Config struct {
	Benchmark  BenchmarkConfig  `yaml:"benchmark"`
	Models     ModelsConfig     `yaml:"models"`
	Data       DataConfig       `yaml:"data"`
	Efficiency EfficiencyConfig `yaml:"efficiency"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BenchmarkConfig holds the defaults of a benchmark run. Zero max_cells or
// n_genes means no cap.
type BenchmarkConfig struct {
	Tissues       []string `yaml:"tissues"`
	MaxCells      int      `yaml:"max_cells"`
	NGenes        int      `yaml:"n_genes"`
	Models        []string `yaml:"models"`
	UsePCA        bool     `yaml:"use_pca"`
	PCAComponents int      `yaml:"pca_components"`
	UseCV         bool     `yaml:"use_cv"`
	Folds         int      `yaml:"folds"`
	TestSize      float64  `yaml:"test_size"`
	Seed          uint64   `yaml:"seed"`
	// TrainTissue enables cross-tissue evaluation.
	TrainTissue string `yaml:"train_tissue"`
	// SkipScaling disables standard scaling of the expression matrix.
	SkipScaling bool `yaml:"skip_scaling"`
}

// ModelsConfig holds per-model hyperparameters.
type ModelsConfig struct {
	RandomForest       ForestParams   `yaml:"random_forest"`
	GradientBoosting   BoostParams    `yaml:"gradient_boosting"`
	XGBoost            BoostParams    `yaml:"xgboost"`
	LogisticRegression LogisticParams `yaml:"logistic_regression"`
	NaiveBayes         BayesParams    `yaml:"naive_bayes"`
	LinearSVM          SVMParams      `yaml:"linear_svm"`
}

type ForestParams struct {
	NEstimators     int `yaml:"n_estimators"`
	MaxDepth        int `yaml:"max_depth"`
	MinSamplesSplit int `yaml:"min_samples_split"`
	MinSamplesLeaf  int `yaml:"min_samples_leaf"`
}

type BoostParams struct {
	NEstimators    int     `yaml:"n_estimators"`
	MaxDepth       int     `yaml:"max_depth"`
	LearningRate   float64 `yaml:"learning_rate"`
	Lambda         float64 `yaml:"lambda"`
	MinChildWeight float64 `yaml:"min_child_weight"`
	MaxBins        int     `yaml:"max_bins"`
}

type LogisticParams struct {
	MaxIter int     `yaml:"max_iter"`
	C       float64 `yaml:"c"`
	Tol     float64 `yaml:"tol"`
}

type BayesParams struct {
	VarSmoothing float64 `yaml:"var_smoothing"`
}

type SVMParams struct {
	C      float64 `yaml:"c"`
	Epochs int     `yaml:"epochs"`
}

// DataConfig selects the dataset source.
type DataConfig struct {
	// Source: synthetic or csv
	Source      string          `yaml:"source"`
	Path        string          `yaml:"path"`
	LabelColumn string          `yaml:"label_column"`
	GroupColumn string          `yaml:"group_column"`
	Synthetic   SyntheticConfig `yaml:"synthetic"`
	Retry       RetryConfig     `yaml:"retry"`
}

type SyntheticConfig struct {
	CellsPerTissue int `yaml:"cells_per_tissue"`
	Genes          int `yaml:"genes"`
	MarkerGenes    int `yaml:"marker_genes"`
}

type RetryConfig struct {
	Attempts  int `yaml:"attempts"`
	BackoffMS int `yaml:"backoff_ms"`
}

// EfficiencyConfig holds sample-efficiency sweep defaults.
type EfficiencyConfig struct {
	Model   string `yaml:"model"`
	Sizes   []int  `yaml:"sizes"`
	Repeats int    `yaml:"repeats"`
}

type OutputConfig struct {
	Dir          string `yaml:"dir"`
	CSVName      string `yaml:"csv_name"`
	PlotName     string `yaml:"plot_name"`
	SnapshotName string `yaml:"snapshot_name"`
	Plot         bool   `yaml:"plot"`
	Snapshot     bool   `yaml:"snapshot"`

	EfficiencyCSVName  string `yaml:"efficiency_csv_name"`
	EfficiencyPlotName string `yaml:"efficiency_plot_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Data.Retry.BackoffMS) * time.Millisecond
}
