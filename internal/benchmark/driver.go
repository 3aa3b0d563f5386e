package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/haskel/cellbench/internal/classifier"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/evaluation"
	"github.com/haskel/cellbench/internal/preprocess"
)

// Reporter persists a finished run. A returned error, possibly joined from
// several, is downgraded to run warnings.
type Reporter interface {
	Report(ctx context.Context, res *Result) error
}

// Observer is notified as models are evaluated.
type Observer interface {
	ModelStarted(name string, index, total int)
	ModelFinished(rec evaluation.Record)
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Config    Config
	Classes   []string
	NCells    int
	NFeatures int
	Table     evaluation.Table
	// Confusions holds per-model confusion matrices over Classes, summed
	// across folds.
	Confusions map[string][][]int
	Reports    map[string][]evaluation.ClassReport
	// FeatureNames labels the model inputs: genes, or PC1..PCn after PCA.
	FeatureNames []string
	// Importances holds per-feature weights, averaged across folds, for
	// models implementing classifier.FeatureImporter.
	Importances map[string][]float64
	Warnings    []error
	Stages      []Stage
	StartedAt   time.Time
	FinishedAt  time.Time
}

// DriverConfig holds the collaborators of a Driver. Only the loader is
// required.
type DriverConfig struct {
	Reducer  preprocess.Reducer
	Reporter Reporter
	Observer Observer
	Models   classifier.Config
	// SkipScaling disables standard scaling of the features.
	SkipScaling bool
}

// Driver runs benchmarks.
type Driver struct {
	loader dataset.Loader
	config DriverConfig
	logger *slog.Logger
}

// NewDriver creates a new benchmark driver.
func NewDriver(loader dataset.Loader, cfg DriverConfig, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Reducer == nil {
		cfg.Reducer = preprocess.NewSVDReducer(logger)
	}
	if cfg.Models == (classifier.Config{}) {
		cfg.Models = classifier.DefaultConfig()
	}
	return &Driver{loader: loader, config: cfg, logger: logger}
}

// run carries the state of one Run call.
type run struct {
	res *Result
	log *slog.Logger
}

func (r *run) enter(s Stage) {
	r.res.Stages = append(r.res.Stages, s)
	r.log.Info("stage", "stage", s.String())
}

// Run executes one benchmark. It fails only on configuration or data errors;
// individual model failures are recorded in the table.
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	res := &Result{
		RunID:       uuid.NewString(),
		Config:      cfg,
		Confusions:  make(map[string][][]int),
		Reports:     make(map[string][]evaluation.ClassReport),
		Importances: make(map[string][]float64),
		StartedAt:   time.Now(),
	}
	r := &run{res: res, log: d.logger.With("run_id", res.RunID)}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	models := d.config.Models
	models.Seed = cfg.Seed
	factory := classifier.NewFactory(models)
	entries, err := factory.Models(cfg.ModelNames)
	if err != nil {
		var unknown *classifier.UnknownModelError
		if errors.As(err, &unknown) {
			return nil, &ConfigurationError{Field: "models", Reason: "unknown model names", Names: unknown.Names}
		}
		return nil, &ConfigurationError{Field: "models", Reason: err.Error()}
	}
	r.enter(StageConfigured)

	data, err := d.load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	x, err := d.prepare(data.Features, cfg)
	if err != nil {
		return nil, err
	}
	enc := classifier.NewLabelEncoder(data.Labels)
	y, err := enc.Encode(data.Labels)
	if err != nil {
		return nil, &DataUnavailableError{Tissues: cfg.Tissues, Err: err}
	}
	folds, err := d.split(y, data.Groups, cfg)
	if err != nil {
		return nil, err
	}
	res.Classes = enc.Classes
	res.NCells, res.NFeatures = x.Dims()
	res.FeatureNames = inputNames(data, cfg, res.NFeatures)
	r.log.Info("data ready",
		"cells", res.NCells,
		"features", res.NFeatures,
		"classes", len(enc.Classes),
		"folds", len(folds))
	r.enter(StageDataLoaded)

	r.enter(StageTraining)
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.config.Observer != nil {
			d.config.Observer.ModelStarted(entry.Name, i, len(entries))
		}
		rec := d.evaluate(r, factory, entry, x, y, enc, folds)
		res.Table = append(res.Table, rec)
		if d.config.Observer != nil {
			d.config.Observer.ModelFinished(rec)
		}
	}
	r.enter(StageAggregated)

	res.FinishedAt = time.Now()
	if d.config.Reporter != nil {
		if err := d.config.Reporter.Report(ctx, res); err != nil {
			res.Warnings = append(res.Warnings, asIOErrors(err)...)
			for _, w := range res.Warnings {
				r.log.Warn("failed to report results", "error", w)
			}
		}
		r.enter(StageReported)
	}
	return res, nil
}

func (d *Driver) load(ctx context.Context, cfg Config) (*dataset.Dataset, error) {
	data, err := d.loader.Load(ctx, dataset.Query{
		Tissues:  cfg.Tissues,
		MaxCells: cfg.MaxCells,
		NGenes:   cfg.NGenes,
		Seed:     cfg.Seed,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &DataUnavailableError{Tissues: cfg.Tissues, Err: err}
	}
	if data.Rows() == 0 {
		return nil, &DataUnavailableError{Tissues: cfg.Tissues, Err: dataset.ErrNoData}
	}
	if err := data.Validate(); err != nil {
		return nil, &DataUnavailableError{Tissues: cfg.Tissues, Err: err}
	}
	return data, nil
}

// prepare scales and optionally reduces the feature matrix.
func (d *Driver) prepare(x *mat.Dense, cfg Config) (*mat.Dense, error) {
	out := x
	if !d.config.SkipScaling {
		scaled, err := preprocess.Standardize(x)
		if err != nil {
			return nil, fmt.Errorf("scale features: %w", err)
		}
		out = scaled
	}
	if !cfg.UsePCA {
		return out, nil
	}

	_, cols := out.Dims()
	if cfg.PCAComponents >= cols {
		return nil, &ConfigurationError{
			Field:  "pca_components",
			Reason: fmt.Sprintf("%d components requested but the data has %d features", cfg.PCAComponents, cols),
		}
	}
	reduced, err := d.config.Reducer.Reduce(out, cfg.PCAComponents)
	if err != nil {
		if errors.Is(err, preprocess.ErrInvalidComponents) {
			return nil, &ConfigurationError{Field: "pca_components", Reason: err.Error()}
		}
		return nil, fmt.Errorf("reduce features: %w", err)
	}
	if _, got := reduced.Dims(); got != cfg.PCAComponents {
		return nil, fmt.Errorf("reducer returned %d components, want %d", got, cfg.PCAComponents)
	}
	return reduced, nil
}

func (d *Driver) split(y []int, groups []string, cfg Config) ([]Fold, error) {
	switch {
	case cfg.TrainTissue != "":
		fold, err := GroupSplit(groups, cfg.TrainTissue)
		if err != nil {
			if errors.Is(err, ErrTooFewRows) {
				return nil, &DataUnavailableError{Tissues: []string{cfg.TrainTissue}, Err: err}
			}
			return nil, &ConfigurationError{Field: "train_tissue", Reason: err.Error()}
		}
		return []Fold{fold}, nil
	case cfg.UseCV:
		folds, err := StratifiedKFold(y, cfg.Folds, cfg.Seed)
		if err != nil {
			return nil, &ConfigurationError{Field: "folds", Reason: err.Error()}
		}
		return folds, nil
	default:
		fold, err := StratifiedSplit(y, cfg.TestSize, cfg.Seed)
		if err != nil {
			return nil, &DataUnavailableError{Tissues: cfg.Tissues, Err: err}
		}
		return []Fold{fold}, nil
	}
}

// evaluate trains and scores one model on every fold. The first entry
// instance serves the first fold; later folds get fresh instances.
func (d *Driver) evaluate(
	r *run,
	factory *classifier.Factory,
	entry classifier.Entry,
	x *mat.Dense,
	y []int,
	enc *classifier.LabelEncoder,
	folds []Fold,
) evaluation.Record {
	log := r.log.With("model", entry.Name)
	log.Info("training model")

	records := make([]evaluation.Record, 0, len(folds))
	var confusion [][]int
	var importance []float64
	var yTrueAll, yPredAll []string
	for i, fold := range folds {
		est := entry.Estimator
		if i > 0 {
			var err error
			if est, err = factory.CreateByType(classifier.Normalize(entry.Name)); err != nil {
				return d.failed(log, entry.Name, err)
			}
		}
		rec, yTrue, yPred, err := fitAndScore(est, x, y, enc, fold)
		if err != nil {
			if len(folds) > 1 {
				err = fmt.Errorf("fold %d: %w", i+1, err)
			}
			return d.failed(log, entry.Name, err)
		}
		cm, err := evaluation.ConfusionMatrix(yTrue, yPred, enc.Classes)
		if err != nil {
			return d.failed(log, entry.Name, err)
		}
		confusion = addMatrix(confusion, cm)
		if fi, ok := est.(classifier.FeatureImporter); ok {
			if w, err := fi.FeatureImportances(); err == nil {
				importance = addVector(importance, w)
			} else {
				log.Debug("feature importances unavailable", "error", err)
			}
		}
		yTrueAll = append(yTrueAll, yTrue...)
		yPredAll = append(yPredAll, yPred...)
		records = append(records, rec)
	}

	rec := records[0]
	rec.Name = entry.Name
	if len(folds) > 1 || r.res.Config.UseCV {
		agg, err := evaluation.Aggregate(entry.Name, records)
		if err != nil {
			return d.failed(log, entry.Name, err)
		}
		rec = agg
	}
	r.res.Confusions[entry.Name] = confusion
	if importance != nil {
		floats.Scale(1/float64(len(folds)), importance)
		r.res.Importances[entry.Name] = importance
	}
	if report, err := evaluation.ClassificationReport(yTrueAll, yPredAll); err == nil {
		r.res.Reports[entry.Name] = report
	}

	log.Info("model evaluated",
		"duration", time.Duration(rec.DurationSeconds*float64(time.Second)),
		"accuracy", rec.Accuracy,
		"f1_macro", rec.F1Macro)
	return rec
}

func (d *Driver) failed(log *slog.Logger, name string, err error) evaluation.Record {
	fitErr := &ModelFitError{Model: name, Err: err}
	log.Warn("model failed", "error", err)
	return evaluation.FailedRecord(name, fitErr)
}

// fitAndScore fits est on the training rows and scores it on the test rows.
// Only the fit is included in the record duration.
func fitAndScore(
	est classifier.Estimator,
	x *mat.Dense,
	y []int,
	enc *classifier.LabelEncoder,
	fold Fold,
) (rec evaluation.Record, yTrue, yPred []string, err error) {
	xTrain, yTrain := rowsOf(x, y, fold.Train)
	xTest, yTest := rowsOf(x, y, fold.Test)

	start := time.Now()
	if err := guard(func() error { return est.Fit(xTrain, yTrain) }); err != nil {
		return rec, nil, nil, fmt.Errorf("fit: %w", err)
	}
	fitTime := time.Since(start)

	var pred []int
	start = time.Now()
	if err := guard(func() error {
		var perr error
		pred, perr = est.Predict(xTest)
		return perr
	}); err != nil {
		return rec, nil, nil, fmt.Errorf("predict: %w", err)
	}
	inferTime := time.Since(start)
	if len(pred) != len(yTest) {
		return rec, nil, nil, fmt.Errorf("predict: got %d predictions for %d rows", len(pred), len(yTest))
	}

	if yTrue, err = enc.Decode(yTest); err != nil {
		return rec, nil, nil, err
	}
	if yPred, err = enc.Decode(pred); err != nil {
		return rec, nil, nil, fmt.Errorf("predict: %w", err)
	}
	rec, err = evaluation.ComputeMetrics(yTrue, yPred, fitTime)
	if err != nil {
		return rec, nil, nil, err
	}
	rec.InferenceSeconds = inferTime.Seconds()
	rec.NTrain = len(fold.Train)
	return rec, yTrue, yPred, nil
}

// guard converts a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

func rowsOf(x *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	labels := make([]int, len(idx))
	for i, r := range idx {
		out.SetRow(i, x.RawRowView(r))
		labels[i] = y[r]
	}
	return out, labels
}

func addMatrix(acc, m [][]int) [][]int {
	if acc == nil {
		acc = make([][]int, len(m))
		for i := range m {
			acc[i] = make([]int, len(m[i]))
		}
	}
	for i := range m {
		for j := range m[i] {
			acc[i][j] += m[i][j]
		}
	}
	return acc
}

func addVector(acc, v []float64) []float64 {
	if acc == nil {
		acc = make([]float64, len(v))
	}
	floats.Add(acc, v)
	return acc
}

// inputNames names the columns the models see.
func inputNames(data *dataset.Dataset, cfg Config, cols int) []string {
	if cfg.UsePCA {
		return lo.Times(cols, func(i int) string { return "PC" + strconv.Itoa(i+1) })
	}
	if len(data.FeatureNames) == cols {
		return data.FeatureNames
	}
	return lo.Times(cols, func(i int) string { return "feature_" + strconv.Itoa(i) })
}

// asIOErrors splits a possibly joined reporter error into IO errors.
func asIOErrors(err error) []error {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		var ioErr *IOError
		if errors.As(e, &ioErr) {
			out = append(out, ioErr)
			continue
		}
		out = append(out, &IOError{Op: "report", Err: e})
	}
	return out
}
