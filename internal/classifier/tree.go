package classifier

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// TreeConfig holds CART hyperparameters.
type TreeConfig struct {
	MaxDepth        int // 0 => unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features at every split
}

// treeNode is a node of a fitted tree. Leaves have left == -1.
type treeNode struct {
	feature   int
	threshold float64 // x <= threshold goes left
	left      int
	right     int
	class     int
}

// decisionTree is a gini CART classifier trained on a subset of rows.
type decisionTree struct {
	config  TreeConfig
	classes int
	nodes   []treeNode
	rng     *rand.Rand

	// importance[j] is the summed weighted gini decrease of splits on j.
	importance []float64

	// scratch buffers reused across nodes
	pairs    []valueLabel
	features []int
}

type valueLabel struct {
	v float64
	y int
}

func newDecisionTree(cfg TreeConfig, rng *rand.Rand) *decisionTree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	return &decisionTree{config: cfg, rng: rng}
}

// fit grows the tree on the rows listed in idx. idx is reordered in place.
func (t *decisionTree) fit(x *mat.Dense, y []int, idx []int, classes int) {
	_, cols := x.Dims()
	t.classes = classes
	t.nodes = t.nodes[:0]
	t.importance = make([]float64, cols)
	t.pairs = make([]valueLabel, len(idx))
	t.features = make([]int, cols)
	for j := range t.features {
		t.features[j] = j
	}
	t.grow(x, y, idx, 0)
	t.pairs = nil
	t.features = nil
}

func (t *decisionTree) grow(x *mat.Dense, y []int, idx []int, depth int) int {
	counts := make([]int, t.classes)
	for _, i := range idx {
		counts[y[i]]++
	}
	node := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{left: -1, right: -1, class: majority(counts)})

	n := len(idx)
	if n < t.config.MinSamplesSplit || n < 2*t.config.MinSamplesLeaf {
		return node
	}
	if t.config.MaxDepth > 0 && depth >= t.config.MaxDepth {
		return node
	}
	if counts[t.nodes[node].class] == n {
		return node
	}

	feature, threshold, gain, ok := t.bestSplit(x, y, idx, counts)
	if !ok {
		return node
	}

	// partition idx: left part x <= threshold
	split := 0
	for i := range idx {
		if x.At(idx[i], feature) <= threshold {
			idx[i], idx[split] = idx[split], idx[i]
			split++
		}
	}
	if split == 0 || split == n {
		return node
	}
	t.importance[feature] += gain

	left := t.grow(x, y, idx[:split], depth+1)
	right := t.grow(x, y, idx[split:], depth+1)
	t.nodes[node].feature = feature
	t.nodes[node].threshold = threshold
	t.nodes[node].left = left
	t.nodes[node].right = right
	return node
}

// bestSplit searches the candidate features for the split maximising the gini
// decrease. Weighted child impurity is minimised through the equivalent
// maximisation of sum(c^2)/n over both children. gain is the decrease of
// n*gini from the node to its children.
func (t *decisionTree) bestSplit(x *mat.Dense, y []int, idx []int, counts []int) (feature int, threshold, gain float64, ok bool) {
	n := len(idx)
	candidates := t.features
	if m := t.config.MaxFeatures; m > 0 && m < len(t.features) {
		t.rng.Shuffle(len(t.features), func(i, j int) {
			t.features[i], t.features[j] = t.features[j], t.features[i]
		})
		candidates = t.features[:m]
	}

	parentSq := 0.0
	for _, c := range counts {
		parentSq += float64(c * c)
	}
	bestScore := parentSq / float64(n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	left := make([]int, t.classes)
	right := make([]int, t.classes)
	pairs := t.pairs[:n]

	for _, f := range candidates {
		for k, i := range idx {
			pairs[k] = valueLabel{v: x.At(i, f), y: y[i]}
		}
		slices.SortFunc(pairs, func(a, b valueLabel) int { return cmp.Compare(a.v, b.v) })
		if pairs[0].v == pairs[n-1].v {
			continue
		}

		clear(left)
		copy(right, counts)
		leftSq, rightSq := 0.0, parentSq
		for k := 0; k < n-1; k++ {
			c := pairs[k].y
			leftSq += float64(2*left[c] + 1)
			rightSq -= float64(2*right[c] - 1)
			left[c]++
			right[c]--

			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < t.config.MinSamplesLeaf || nr < t.config.MinSamplesLeaf {
				continue
			}
			score := leftSq/float64(nl) + rightSq/float64(nr)
			if score > bestScore+1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = (pairs[k].v + pairs[k+1].v) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, bestScore - parentSq/float64(n), found
}

// predictRow walks the tree for a single row.
func (t *decisionTree) predictRow(row []float64) int {
	node := 0
	for t.nodes[node].left >= 0 {
		nd := t.nodes[node]
		if row[nd.feature] <= nd.threshold {
			node = nd.left
		} else {
			node = nd.right
		}
	}
	return t.nodes[node].class
}

// majority returns the most frequent class; ties keep the lowest index.
func majority(counts []int) int {
	best := 0
	for c := 1; c < len(counts); c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
