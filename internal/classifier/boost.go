package classifier

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BoostConfig holds gradient boosting hyperparameters.
type BoostConfig struct {
	NEstimators  int
	MaxDepth     int
	LearningRate float64
	// Lambda is the L2 penalty on leaf values.
	Lambda float64
	// MinChildWeight is the minimum hessian sum allowed in a child.
	MinChildWeight float64
	// MaxBins caps the number of histogram bins per feature.
	MaxBins int
}

// GradientBoosting is a multinomial gradient boosted tree ensemble. Each round
// fits one regression tree per class to the softmax gradients with Newton
// leaf values; split search runs on per-feature quantile histograms.
type GradientBoosting struct {
	config   BoostConfig
	name     ModelType
	features int
	base     []float64
	rounds   [][]*regressionTree // rounds x classes
}

// NewGradientBoosting creates the gradient_boosting baseline.
func NewGradientBoosting(cfg BoostConfig) *GradientBoosting {
	return newBooster(ModelTypeGradientBoosting, cfg)
}

// NewXGBoost creates the xgboost-style baseline: same booster, histogram
// splits with L2-regularised leaves.
func NewXGBoost(cfg BoostConfig) *GradientBoosting {
	return newBooster(ModelTypeXGBoost, cfg)
}

func newBooster(name ModelType, cfg BoostConfig) *GradientBoosting {
	if cfg.NEstimators < 1 {
		cfg.NEstimators = 100
	}
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = 3
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.MaxBins < 2 || cfg.MaxBins > math.MaxUint16 {
		cfg.MaxBins = 256
	}
	return &GradientBoosting{config: cfg, name: name}
}

// Name returns the model name.
func (m *GradientBoosting) Name() string {
	return string(m.name)
}

// Fit trains the ensemble.
func (m *GradientBoosting) Fit(x mat.Matrix, y []int) error {
	rows, classes, err := checkFitInput(x, y)
	if err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}
	if classes < 2 {
		return fmt.Errorf("%s: needs at least two classes", m.name)
	}
	xd := dense(x)
	_, cols := xd.Dims()
	h := newHistogramData(xd, m.config.MaxBins)

	counts := make([]int, classes)
	for _, c := range y {
		counts[c]++
	}
	m.base = make([]float64, classes)
	for k, c := range counts {
		// absent classes start far below the others
		m.base[k] = math.Log(math.Max(float64(c), 1e-3) / float64(rows))
	}

	raw := mat.NewDense(rows, classes, nil)
	for i := 0; i < rows; i++ {
		copy(raw.RawRowView(i), m.base)
	}
	probs := make([]float64, classes)
	grad := make([][]float64, classes)
	hess := make([][]float64, classes)
	for k := range grad {
		grad[k] = make([]float64, rows)
		hess[k] = make([]float64, rows)
	}
	idx := make([]int, rows)

	m.rounds = make([][]*regressionTree, 0, m.config.NEstimators)
	for round := 0; round < m.config.NEstimators; round++ {
		for i := 0; i < rows; i++ {
			copy(probs, raw.RawRowView(i))
			softmax(probs)
			for k, p := range probs {
				target := 0.0
				if y[i] == k {
					target = 1
				}
				grad[k][i] = p - target
				hess[k][i] = math.Max(p*(1-p), 1e-6)
			}
		}

		trees := make([]*regressionTree, classes)
		for k := 0; k < classes; k++ {
			for i := range idx {
				idx[i] = i
			}
			tree := &regressionTree{config: m.config}
			tree.fit(h, grad[k], hess[k], idx)
			trees[k] = tree
			for i := 0; i < rows; i++ {
				raw.Set(i, k, raw.At(i, k)+m.config.LearningRate*tree.predictRow(xd.RawRowView(i)))
			}
		}
		m.rounds = append(m.rounds, trees)
	}

	m.features = cols
	return nil
}

// Predict returns the class with the highest boosted score.
func (m *GradientBoosting) Predict(x mat.Matrix) ([]int, error) {
	xd, err := checkPredictInput(x, m.features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}
	if len(m.rounds) == 0 {
		return nil, errors.New("booster has no trees")
	}
	rows, _ := xd.Dims()
	out := make([]int, rows)
	scores := make([]float64, len(m.base))
	for i := 0; i < rows; i++ {
		copy(scores, m.base)
		row := xd.RawRowView(i)
		for _, trees := range m.rounds {
			for k, tree := range trees {
				scores[k] += m.config.LearningRate * tree.predictRow(row)
			}
		}
		out[i] = argmax(scores)
	}
	return out, nil
}

// histogramData holds features discretised into quantile bins. Bin b of
// feature f covers values x <= cuts[f][b].
type histogramData struct {
	cuts [][]float64
	bins [][]uint16 // feature-major
}

func newHistogramData(x *mat.Dense, maxBins int) *histogramData {
	rows, cols := x.Dims()
	h := &histogramData{
		cuts: make([][]float64, cols),
		bins: make([][]uint16, cols),
	}
	values := make([]float64, rows)
	for f := 0; f < cols; f++ {
		mat.Col(values, f, x)
		sorted := slices.Clone(values)
		slices.Sort(sorted)
		distinct := slices.Compact(sorted)

		var cuts []float64
		if len(distinct) <= maxBins {
			for i := 0; i+1 < len(distinct); i++ {
				cuts = append(cuts, (distinct[i]+distinct[i+1])/2)
			}
		} else {
			all := slices.Clone(values)
			slices.Sort(all)
			for b := 1; b < maxBins; b++ {
				cuts = append(cuts, all[b*rows/maxBins])
			}
			cuts = slices.Compact(cuts)
		}
		h.cuts[f] = cuts

		bins := make([]uint16, rows)
		for i, v := range values {
			bins[i] = uint16(sort.SearchFloat64s(cuts, v))
		}
		h.bins[f] = bins
	}
	return h
}

type regressionNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree fits gradient/hessian pairs with histogram split search.
type regressionTree struct {
	config BoostConfig
	nodes  []regressionNode
}

func (t *regressionTree) fit(h *histogramData, grad, hess []float64, idx []int) {
	t.grow(h, grad, hess, idx, 0)
}

func (t *regressionTree) grow(h *histogramData, grad, hess []float64, idx []int, depth int) int {
	var g, hs float64
	for _, i := range idx {
		g += grad[i]
		hs += hess[i]
	}
	node := len(t.nodes)
	t.nodes = append(t.nodes, regressionNode{left: -1, right: -1, value: -g / (hs + t.config.Lambda)})
	if depth >= t.config.MaxDepth || len(idx) < 2 {
		return node
	}

	parent := g * g / (hs + t.config.Lambda)
	bestGain, bestFeature, bestBin := 1e-12, -1, 0
	for f, cuts := range h.cuts {
		nb := len(cuts) + 1
		if nb < 2 {
			continue
		}
		histG := make([]float64, nb)
		histH := make([]float64, nb)
		bins := h.bins[f]
		for _, i := range idx {
			histG[bins[i]] += grad[i]
			histH[bins[i]] += hess[i]
		}
		var gl, hl float64
		for b := 0; b < nb-1; b++ {
			gl += histG[b]
			hl += histH[b]
			gr, hr := g-gl, hs-hl
			if hl < t.config.MinChildWeight || hr < t.config.MinChildWeight {
				continue
			}
			gain := gl*gl/(hl+t.config.Lambda) + gr*gr/(hr+t.config.Lambda) - parent
			if gain > bestGain {
				bestGain, bestFeature, bestBin = gain, f, b
			}
		}
	}
	if bestFeature < 0 {
		return node
	}

	bins := h.bins[bestFeature]
	split := 0
	for i := range idx {
		if int(bins[idx[i]]) <= bestBin {
			idx[i], idx[split] = idx[split], idx[i]
			split++
		}
	}
	if split == 0 || split == len(idx) {
		return node
	}

	left := t.grow(h, grad, hess, idx[:split], depth+1)
	right := t.grow(h, grad, hess, idx[split:], depth+1)
	t.nodes[node].feature = bestFeature
	t.nodes[node].threshold = h.cuts[bestFeature][bestBin]
	t.nodes[node].left = left
	t.nodes[node].right = right
	return node
}

func (t *regressionTree) predictRow(row []float64) float64 {
	node := 0
	for t.nodes[node].left >= 0 {
		nd := t.nodes[node]
		if row[nd.feature] <= nd.threshold {
			node = nd.left
		} else {
			node = nd.right
		}
	}
	return t.nodes[node].value
}
