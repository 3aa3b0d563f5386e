package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/haskel/cellbench/internal/classifier"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/evaluation"
)

type fakeLoader struct {
	data  *dataset.Dataset
	err   error
	calls int
	query dataset.Query
}

func (l *fakeLoader) Load(_ context.Context, q dataset.Query) (*dataset.Dataset, error) {
	l.calls++
	l.query = q
	return l.data, l.err
}

type fakeReporter struct {
	err   error
	calls int
}

func (r *fakeReporter) Report(_ context.Context, _ *Result) error {
	r.calls++
	return r.err
}

type recordingObserver struct {
	started  []string
	finished []string
}

func (o *recordingObserver) ModelStarted(name string, _, _ int) {
	o.started = append(o.started, name)
}

func (o *recordingObserver) ModelFinished(rec evaluation.Record) {
	o.finished = append(o.finished, rec.Name)
}

// makeData builds rows x features of separable classes, balanced round-robin.
func makeData(rows, features, classes int, seed uint64) *dataset.Dataset {
	rng := rand.New(rand.NewPCG(seed, 3))
	x := mat.NewDense(rows, features, nil)
	labels := make([]string, rows)
	groups := make([]string, rows)
	for i := 0; i < rows; i++ {
		c := i % classes
		labels[i] = fmt.Sprintf("type_%d", c)
		groups[i] = []string{"blood", "lung"}[i%2]
		for j := 0; j < features; j++ {
			v := rng.NormFloat64()
			if j%classes == c {
				v += 3
			}
			x.Set(i, j, v)
		}
	}
	return &dataset.Dataset{Features: x, Labels: labels, Groups: groups}
}

func fastModels() classifier.Config {
	cfg := classifier.DefaultConfig()
	cfg.RandomForest.NEstimators = 10
	cfg.Boosting.NEstimators = 5
	cfg.XGBoost.NEstimators = 5
	cfg.Logistic.MaxIter = 100
	cfg.SVM.Epochs = 3
	return cfg
}

func testConfig(models ...string) Config {
	cfg := DefaultConfig()
	cfg.ModelNames = models
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"defaults", func(*Config) {}, "", false},
		{"no models", func(c *Config) { c.ModelNames = nil }, "models", true},
		{"unknown model", func(c *Config) { c.ModelNames = []string{"quantum_forest"} }, "models", true},
		{"negative max cells", func(c *Config) { c.MaxCells = -1 }, "max_cells", true},
		{"negative n genes", func(c *Config) { c.NGenes = -5 }, "n_genes", true},
		{"zero pca components", func(c *Config) { c.UsePCA, c.PCAComponents = true, 0 }, "pca_components", true},
		{"pca over gene cap", func(c *Config) { c.UsePCA, c.NGenes = true, 50 }, "pca_components", true},
		{"one fold", func(c *Config) { c.UseCV, c.Folds = true, 1 }, "folds", true},
		{"test size", func(c *Config) { c.TestSize = 1.5 }, "test_size", true},
		{"cv with train tissue", func(c *Config) { c.UseCV, c.TrainTissue = true, "lung" }, "train_tissue", true},
		{"pca ignored when off", func(c *Config) { c.PCAComponents = 0 }, "", false},
		{"duplicate model", func(c *Config) { c.ModelNames = []string{"naive_bayes", "naive_bayes"} }, "models", true},
		{"alias and full name", func(c *Config) { c.ModelNames = []string{"rf", "Random Forest"} }, "models", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("expected errors.Is(err, ErrConfiguration)")
			}
		})
	}
}

func TestDefaultConfigModelOrder(t *testing.T) {
	got := DefaultConfig().ModelNames
	want := classifier.DefaultNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d default models, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if got[0] != "random_forest" {
		t.Errorf("expected random_forest first, got %s", got[0])
	}
}

func TestRunUnknownModelFetchesNoData(t *testing.T) {
	loader := &fakeLoader{data: makeData(30, 4, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	_, err := d.Run(context.Background(), testConfig("random_forest", "quantum_forest"))
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if len(cfgErr.Names) != 1 || cfgErr.Names[0] != "quantum_forest" {
		t.Errorf("expected error naming quantum_forest, got %v", cfgErr.Names)
	}
	if loader.calls != 0 {
		t.Errorf("expected no data fetch, got %d calls", loader.calls)
	}
}

func TestRunNonPositiveCountsFetchNoData(t *testing.T) {
	loader := &fakeLoader{data: makeData(30, 4, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	cfg := testConfig("random_forest")
	cfg.MaxCells = -10
	if _, err := d.Run(context.Background(), cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("expected no data fetch, got %d calls", loader.calls)
	}
}

func TestRunDataUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		loader *fakeLoader
	}{
		{"loader reports no data", &fakeLoader{err: dataset.ErrNoData}},
		{"empty dataset", &fakeLoader{data: &dataset.Dataset{Features: &mat.Dense{}}}},
		{"terminal failure", &fakeLoader{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(tt.loader, DriverConfig{Models: fastModels()}, nil)
			cfg := testConfig("random_forest")
			cfg.Tissues = []string{"kidney"}

			_, err := d.Run(context.Background(), cfg)
			var dataErr *DataUnavailableError
			if !errors.As(err, &dataErr) {
				t.Fatalf("expected DataUnavailableError, got %v", err)
			}
			if len(dataErr.Tissues) != 1 || dataErr.Tissues[0] != "kidney" {
				t.Errorf("expected error naming the tissue filter, got %v", dataErr.Tissues)
			}
			if !errors.Is(err, ErrDataUnavailable) {
				t.Error("expected errors.Is(err, ErrDataUnavailable)")
			}
		})
	}
}

func TestRunNonFiniteFeatures(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"nan", math.NaN()},
		{"positive inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := makeData(60, 6, 3, 1)
			data.Features.Set(3, 2, tt.value)
			reporter := &fakeReporter{}
			d := NewDriver(&fakeLoader{data: data}, DriverConfig{Models: fastModels(), Reporter: reporter}, nil)

			res, err := d.Run(context.Background(), testConfig("logistic_regression", "naive_bayes", "linear_svm"))
			if !errors.Is(err, ErrDataUnavailable) {
				t.Fatalf("expected data unavailable error, got %v", err)
			}
			if !errors.Is(err, dataset.ErrNonFinite) {
				t.Errorf("expected error to wrap ErrNonFinite, got %v", err)
			}
			if res != nil {
				t.Errorf("expected no result, got %d rows", len(res.Table))
			}
			if reporter.calls != 0 {
				t.Errorf("expected no report, got %d calls", reporter.calls)
			}
		})
	}
}

func TestSampleEfficiencyNonFiniteFeatures(t *testing.T) {
	data := makeData(100, 5, 2, 1)
	data.Features.Set(0, 0, math.NaN())
	d := NewDriver(&fakeLoader{}, DriverConfig{Models: fastModels()}, nil)

	_, err := d.SampleEfficiency(context.Background(), data, EfficiencyConfig{
		Model: "naive_bayes", Sizes: []int{10}, Repeats: 1, TestSize: 0.2,
	})
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected data unavailable error, got %v", err)
	}
}

func TestRunPassesQuery(t *testing.T) {
	loader := &fakeLoader{data: makeData(60, 6, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	cfg := testConfig("naive_bayes")
	cfg.Tissues = []string{"blood"}
	cfg.MaxCells = 500
	cfg.NGenes = 100
	cfg.Seed = 9
	if _, err := d.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := loader.query
	if q.MaxCells != 500 || q.NGenes != 100 || q.Seed != 9 || len(q.Tissues) != 1 {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestRunPCAComponentsExceedFeatures(t *testing.T) {
	loader := &fakeLoader{data: makeData(60, 10, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	for _, components := range []int{10, 20} {
		cfg := testConfig("logistic_regression")
		cfg.UsePCA = true
		cfg.PCAComponents = components
		_, err := d.Run(context.Background(), cfg)
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "pca_components" {
			t.Errorf("components=%d: expected pca_components ConfigurationError, got %v", components, err)
		}
	}
}

func TestRunWithPCA(t *testing.T) {
	loader := &fakeLoader{data: makeData(90, 12, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	cfg := testConfig("logistic_regression")
	cfg.UsePCA = true
	cfg.PCAComponents = 4
	res, err := d.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NFeatures != 4 {
		t.Errorf("expected 4 features after PCA, got %d", res.NFeatures)
	}
	if len(res.FeatureNames) != 4 || res.FeatureNames[0] != "PC1" || res.FeatureNames[3] != "PC4" {
		t.Errorf("expected component names, got %v", res.FeatureNames)
	}
	if res.Table[0].Failed() {
		t.Errorf("unexpected failure: %s", res.Table[0].Error)
	}
}

func TestRunFeatureImportances(t *testing.T) {
	for _, useCV := range []bool{false, true} {
		t.Run(fmt.Sprintf("cv=%v", useCV), func(t *testing.T) {
			data := makeData(90, 6, 3, 1)
			data.FeatureNames = []string{"CD3E", "MS4A1", "NKG7", "LYZ", "PPBP", "HBB"}
			d := NewDriver(&fakeLoader{data: data}, DriverConfig{Models: fastModels()}, nil)

			cfg := testConfig("random_forest", "naive_bayes")
			cfg.UseCV = useCV
			cfg.Folds = 3
			res, err := d.Run(context.Background(), cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.FeatureNames) != 6 || res.FeatureNames[1] != "MS4A1" {
				t.Errorf("expected gene names, got %v", res.FeatureNames)
			}
			imp, ok := res.Importances["random_forest"]
			if !ok || len(imp) != 6 {
				t.Fatalf("expected 6 random forest importances, got %v", imp)
			}
			sum := 0.0
			for _, w := range imp {
				sum += w
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("expected importances to sum to 1, got %v", sum)
			}
			if _, ok := res.Importances["naive_bayes"]; ok {
				t.Error("expected no importances for naive_bayes")
			}
		})
	}
}

func TestRunTableOrderAndRowCount(t *testing.T) {
	loader := &fakeLoader{data: makeData(90, 6, 3, 1)}
	obs := &recordingObserver{}
	d := NewDriver(loader, DriverConfig{Models: fastModels(), Observer: obs}, nil)

	names := []string{"xgboost", "naive_bayes", "random_forest", "linear_svm", "logistic_regression", "gradient_boosting"}
	res, err := d.Run(context.Background(), testConfig(names...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Table) != len(names) {
		t.Fatalf("expected %d rows, got %d", len(names), len(res.Table))
	}
	for i, rec := range res.Table {
		if rec.Name != names[i] {
			t.Errorf("row %d: expected %q, got %q", i, names[i], rec.Name)
		}
		if rec.Failed() {
			t.Errorf("%s failed: %s", rec.Name, rec.Error)
		}
		if rec.Accuracy < 0 || rec.Accuracy > 1 {
			t.Errorf("%s: accuracy %v out of range", rec.Name, rec.Accuracy)
		}
		if rec.NTrain+rec.NTest != 90 {
			t.Errorf("%s: expected 90 rows across partitions, got %d", rec.Name, rec.NTrain+rec.NTest)
		}
	}
	if len(obs.started) != len(names) || len(obs.finished) != len(names) {
		t.Errorf("observer saw %d starts and %d finishes", len(obs.started), len(obs.finished))
	}
	wantStages := []Stage{StageConfigured, StageDataLoaded, StageTraining, StageAggregated}
	if len(res.Stages) != len(wantStages) {
		t.Fatalf("expected stages %v, got %v", wantStages, res.Stages)
	}
	for i, s := range wantStages {
		if res.Stages[i] != s {
			t.Errorf("stage %d: expected %s, got %s", i, s, res.Stages[i])
		}
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestRunModelFailureDoesNotAbort(t *testing.T) {
	// every blood cell is type_0, so single-class models fail to fit
	data := makeData(60, 4, 2, 1)
	for i := range data.Labels {
		if data.Groups[i] == "blood" {
			data.Labels[i] = "type_0"
		}
	}
	loader := &fakeLoader{data: data}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	cfg := testConfig("logistic_regression", "naive_bayes", "linear_svm")
	cfg.TrainTissue = "blood"
	res, err := d.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Table))
	}
	for _, i := range []int{0, 2} {
		rec := res.Table[i]
		if !rec.Failed() {
			t.Errorf("%s: expected failure", rec.Name)
		}
		if rec.Error == "" {
			t.Errorf("%s: expected an error note", rec.Name)
		}
		if !math.IsNaN(rec.F1Macro) || !math.IsNaN(rec.DurationSeconds) {
			t.Errorf("%s: expected NaN metrics", rec.Name)
		}
	}
	if res.Table[1].Failed() {
		t.Errorf("naive_bayes should succeed, got %s", res.Table[1].Error)
	}
	if res.Table[1].NTrain != 30 || res.Table[1].NTest != 30 {
		t.Errorf("expected 30/30 group split, got %d/%d", res.Table[1].NTrain, res.Table[1].NTest)
	}
}

func TestRunCrossValidation(t *testing.T) {
	loader := &fakeLoader{data: makeData(100, 5, 2, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	cfg := testConfig("naive_bayes")
	cfg.UseCV = true
	res, err := d.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := res.Table[0]
	if rec.Folds != DefaultFolds {
		t.Errorf("expected %d folds, got %d", DefaultFolds, rec.Folds)
	}
	if rec.NTest != 100 {
		t.Errorf("expected every row tested once, got %d", rec.NTest)
	}
	if rec.NTrain != 80 {
		t.Errorf("expected 80 training rows per fold, got %d", rec.NTrain)
	}
	total := 0
	for _, row := range res.Confusions["naive_bayes"] {
		for _, v := range row {
			total += v
		}
	}
	if total != 100 {
		t.Errorf("expected confusion counts to sum to 100, got %d", total)
	}
}

func TestRunDeterministic(t *testing.T) {
	data := makeData(120, 6, 3, 5)
	names := []string{"random_forest", "linear_svm", "xgboost"}

	run := func(useCV bool) evaluation.Table {
		d := NewDriver(&fakeLoader{data: data}, DriverConfig{Models: fastModels()}, nil)
		cfg := testConfig(names...)
		cfg.UseCV = useCV
		cfg.Seed = 7
		res, err := d.Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return res.Table
	}

	for _, useCV := range []bool{false, true} {
		a, b := run(useCV), run(useCV)
		for i := range a {
			if a[i].Accuracy != b[i].Accuracy || a[i].F1Macro != b[i].F1Macro ||
				a[i].F1Weighted != b[i].F1Weighted || a[i].NTrain != b[i].NTrain {
				t.Errorf("cv=%v %s: records differ between runs", useCV, a[i].Name)
			}
		}
	}
}

func TestRunReporterFailureBecomesWarning(t *testing.T) {
	loader := &fakeLoader{data: makeData(60, 4, 3, 1)}
	reporter := &fakeReporter{err: errors.Join(
		&IOError{Op: "write csv", Path: "/nope/results.csv", Err: errors.New("no such directory")},
		errors.New("plot backend unavailable"),
	)}
	d := NewDriver(loader, DriverConfig{Models: fastModels(), Reporter: reporter}, nil)

	res, err := d.Run(context.Background(), testConfig("naive_bayes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reporter.calls != 1 {
		t.Errorf("expected one report call, got %d", reporter.calls)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(res.Warnings))
	}
	for _, w := range res.Warnings {
		var ioErr *IOError
		if !errors.As(w, &ioErr) {
			t.Errorf("expected IOError warning, got %v", w)
		}
	}
	if len(res.Table) != 1 || res.Table[0].Failed() {
		t.Error("reporting failure must not invalidate the table")
	}
	if res.Stages[len(res.Stages)-1] != StageReported {
		t.Errorf("expected final stage reported, got %s", res.Stages[len(res.Stages)-1])
	}
}

func TestRunCancelled(t *testing.T) {
	loader := &fakeLoader{data: makeData(60, 4, 3, 1)}
	d := NewDriver(loader, DriverConfig{Models: fastModels()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx, testConfig("naive_bayes")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGuardRecoversPanic(t *testing.T) {
	err := guard(func() error { panic("singular matrix") })
	if err == nil {
		t.Fatal("expected error from panic")
	}
}

func TestStratifiedSplit(t *testing.T) {
	y := make([]int, 100)
	for i := range y {
		y[i] = i % 4
	}
	a, err := StratifiedSplit(y, 0.2, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Test) != 20 || len(a.Train) != 80 {
		t.Errorf("expected 80/20 split, got %d/%d", len(a.Train), len(a.Test))
	}
	perClass := make([]int, 4)
	for _, i := range a.Test {
		perClass[y[i]]++
	}
	for c, n := range perClass {
		if n != 5 {
			t.Errorf("class %d: expected 5 test rows, got %d", c, n)
		}
	}

	b, _ := StratifiedSplit(y, 0.2, 42)
	for i := range a.Test {
		if a.Test[i] != b.Test[i] {
			t.Fatal("same seed produced different partitions")
		}
	}
	c, _ := StratifiedSplit(y, 0.2, 43)
	same := true
	for i := range a.Test {
		if a.Test[i] != c.Test[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical partitions")
	}

	if _, err := StratifiedSplit([]int{0}, 0.2, 1); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
}

func TestStratifiedKFold(t *testing.T) {
	y := make([]int, 53)
	for i := range y {
		y[i] = i % 3
	}
	folds, err := StratifiedKFold(y, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}
	seen := make([]int, len(y))
	for _, f := range folds {
		if len(f.Test) < 10 || len(f.Test) > 11 {
			t.Errorf("unbalanced fold size %d", len(f.Test))
		}
		if len(f.Train)+len(f.Test) != len(y) {
			t.Errorf("fold does not cover every row")
		}
		for _, i := range f.Test {
			seen[i]++
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("row %d tested %d times", i, n)
		}
	}

	if _, err := StratifiedKFold([]int{0, 1}, 5, 1); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
}

func TestGroupSplit(t *testing.T) {
	fold, err := GroupSplit([]string{"blood", "Lung", "blood", "heart"}, "lung")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fold.Train) != 1 || fold.Train[0] != 1 || len(fold.Test) != 3 {
		t.Errorf("unexpected fold %+v", fold)
	}
	if _, err := GroupSplit(nil, "lung"); err == nil {
		t.Error("expected error without groups")
	}
	if _, err := GroupSplit([]string{"blood"}, "lung"); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
}

func TestSampleEfficiency(t *testing.T) {
	data := makeData(100, 5, 2, 1)
	d := NewDriver(&fakeLoader{}, DriverConfig{Models: fastModels()}, nil)

	points, err := d.SampleEfficiency(context.Background(), data, EfficiencyConfig{
		Model:    "naive_bayes",
		Sizes:    []int{10, 40},
		Repeats:  2,
		TestSize: 0.2,
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Model != "naive_bayes" || p.Error != "" {
			t.Errorf("unexpected point %+v", p)
		}
		if p.Accuracy < 0 || p.Accuracy > 1 {
			t.Errorf("accuracy %v out of range", p.Accuracy)
		}
	}
	if points[0].Size != 10 || points[3].Size != 40 || points[3].Repeat != 1 {
		t.Errorf("unexpected point order: %+v", points)
	}

	_, err = d.SampleEfficiency(context.Background(), data, EfficiencyConfig{
		Model: "naive_bayes", Sizes: []int{1000}, Repeats: 1, TestSize: 0.2,
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error for oversized sample, got %v", err)
	}
	_, err = d.SampleEfficiency(context.Background(), data, EfficiencyConfig{
		Model: "deep_net", Sizes: []int{10}, Repeats: 1, TestSize: 0.2,
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error for unknown model, got %v", err)
	}
}
