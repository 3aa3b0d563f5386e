package classifier

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Config holds the default hyperparameters of every baseline.
type Config struct {
	Seed uint64

	RandomForest RandomForestConfig
	Boosting     BoostConfig
	XGBoost      BoostConfig
	Logistic     LogisticConfig
	NaiveBayes   NaiveBayesConfig
	SVM          SVMConfig
}

// DefaultConfig returns the baseline hyperparameters.
func DefaultConfig() Config {
	return Config{
		Seed: 42,
		RandomForest: RandomForestConfig{
			NEstimators:     100,
			MaxDepth:        20,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  1,
			Bootstrap:       true,
		},
		Boosting: BoostConfig{
			NEstimators:    100,
			MaxDepth:       5,
			LearningRate:   0.1,
			Lambda:         0,
			MinChildWeight: 1e-3,
			MaxBins:        1024,
		},
		XGBoost: BoostConfig{
			NEstimators:    100,
			MaxDepth:       6,
			LearningRate:   0.1,
			Lambda:         1,
			MinChildWeight: 1,
			MaxBins:        256,
		},
		Logistic: LogisticConfig{
			MaxIter: 1000,
			C:       1,
			Tol:     1e-4,
		},
		NaiveBayes: NaiveBayesConfig{
			VarSmoothing: 1e-9,
		},
		SVM: SVMConfig{
			C:      1,
			Epochs: 20,
		},
	}
}

// UnknownModelError reports requested names missing from the registry.
type UnknownModelError struct {
	Names     []string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model(s): %s (available: %s)",
		strings.Join(e.Names, ", "), strings.Join(e.Available, ", "))
}

// Factory creates classifiers. It holds no fitted state, so every call
// returns independent instances.
type Factory struct {
	config Config
}

// NewFactory creates a new model factory.
func NewFactory(cfg Config) *Factory {
	return &Factory{config: cfg}
}

// CreateByType creates a fresh model of the specified type.
func (f *Factory) CreateByType(modelType ModelType) (Estimator, error) {
	seed := f.config.Seed
	switch modelType {
	case ModelTypeRandomForest:
		cfg := f.config.RandomForest
		cfg.Seed = seed
		return NewRandomForest(cfg), nil

	case ModelTypeGradientBoosting:
		return NewGradientBoosting(f.config.Boosting), nil

	case ModelTypeXGBoost:
		return NewXGBoost(f.config.XGBoost), nil

	case ModelTypeLogisticRegression:
		return NewLogisticRegression(f.config.Logistic), nil

	case ModelTypeNaiveBayes:
		return NewNaiveBayes(f.config.NaiveBayes), nil

	case ModelTypeLinearSVM:
		cfg := f.config.SVM
		cfg.Seed = seed
		return NewLinearSVM(cfg), nil

	default:
		return nil, fmt.Errorf("unknown model type: %s", modelType)
	}
}

// DefaultModels returns a fresh instance of every registered baseline.
func (f *Factory) DefaultModels() map[string]Estimator {
	out := make(map[string]Estimator, len(AllTypes))
	for _, t := range AllTypes {
		// registered types never fail to construct
		est, _ := f.CreateByType(t)
		out[t.String()] = est
	}
	return out
}

// Models returns fresh instances for the requested names, in request order.
// Any name that does not resolve fails the whole call with an
// *UnknownModelError listing every unresolved name.
func (f *Factory) Models(names []string) ([]Entry, error) {
	unknown := lo.Filter(names, func(n string, _ int) bool {
		return !Normalize(n).IsValid()
	})
	if len(unknown) > 0 {
		return nil, &UnknownModelError{Names: unknown, Available: Names()}
	}

	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		est, err := f.CreateByType(Normalize(n))
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: est.Name(), Estimator: est})
	}
	return entries, nil
}

// Names returns the registered model names in sorted order.
func Names() []string {
	names := lo.Map(AllTypes, func(t ModelType, _ int) string { return t.String() })
	slices.Sort(names)
	return names
}

// DefaultNames returns the registered model names in display order. This is
// the model set a run evaluates when none is requested.
func DefaultNames() []string {
	return lo.Map(AllTypes, func(t ModelType, _ int) string { return t.String() })
}

var aliases = map[string]ModelType{
	"logistic": ModelTypeLogisticRegression,
	"logreg":   ModelTypeLogisticRegression,
	"rf":       ModelTypeRandomForest,
	"gb":       ModelTypeGradientBoosting,
	"xgb":      ModelTypeXGBoost,
	"svm":      ModelTypeLinearSVM,
	"nb":       ModelTypeNaiveBayes,
}

// Normalize maps user input such as "Random Forest" or "random-forest" to a
// model type. The result may be invalid.
func Normalize(name string) ModelType {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	if t, ok := aliases[n]; ok {
		return t
	}
	return ModelType(n)
}

// DefaultModels returns every baseline with default hyperparameters and the
// given seed.
func DefaultModels(seed uint64) map[string]Estimator {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return NewFactory(cfg).DefaultModels()
}

// Models resolves names against the default registry.
func Models(names []string, seed uint64) ([]Entry, error) {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return NewFactory(cfg).Models(names)
}
