package benchmark

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

// ErrTooFewRows is returned when a partition would be empty.
var ErrTooFewRows = errors.New("too few rows to split")

// splitStream separates the split RNG from other seeded streams.
const splitStream = 0x5b117

// Fold is one train/test partition given as row indices in ascending order.
type Fold struct {
	Train []int
	Test  []int
}

// byClass groups row indices by class index.
func byClass(y []int) [][]int {
	classes := 0
	for _, c := range y {
		classes = max(classes, c+1)
	}
	groups := make([][]int, classes)
	for i, c := range y {
		groups[c] = append(groups[c], i)
	}
	return groups
}

// StratifiedSplit holds out about testSize of every class. Classes with a
// single row stay in the training partition.
func StratifiedSplit(y []int, testSize float64, seed uint64) (Fold, error) {
	if testSize <= 0 || testSize >= 1 {
		return Fold{}, fmt.Errorf("test size %v out of range (0, 1)", testSize)
	}
	rng := rand.New(rand.NewPCG(seed, splitStream))

	var fold Fold
	for _, rows := range byClass(y) {
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		n := int(math.Round(float64(len(rows)) * testSize))
		if len(rows) > 1 {
			n = min(max(n, 1), len(rows)-1)
		} else {
			n = 0
		}
		fold.Test = append(fold.Test, rows[:n]...)
		fold.Train = append(fold.Train, rows[n:]...)
	}
	if len(fold.Train) == 0 || len(fold.Test) == 0 {
		return Fold{}, ErrTooFewRows
	}
	slices.Sort(fold.Train)
	slices.Sort(fold.Test)
	return fold, nil
}

// StratifiedKFold deals the shuffled rows of every class round-robin into k
// folds, continuing where the previous class stopped so fold sizes differ by
// at most one.
func StratifiedKFold(y []int, k int, seed uint64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrTooFewRows, len(y), k)
	}
	rng := rand.New(rand.NewPCG(seed, splitStream))

	assign := make([]int, len(y))
	next := 0
	for _, rows := range byClass(y) {
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, r := range rows {
			assign[r] = next
			next = (next + 1) % k
		}
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

// GroupSplit trains on the rows of one group and tests on every other row.
func GroupSplit(groups []string, trainGroup string) (Fold, error) {
	if len(groups) == 0 {
		return Fold{}, errors.New("dataset has no group column")
	}
	var fold Fold
	for i, g := range groups {
		if strings.EqualFold(g, strings.TrimSpace(trainGroup)) {
			fold.Train = append(fold.Train, i)
		} else {
			fold.Test = append(fold.Test, i)
		}
	}
	if len(fold.Train) == 0 {
		return Fold{}, fmt.Errorf("%w: no rows for group %q", ErrTooFewRows, trainGroup)
	}
	if len(fold.Test) == 0 {
		return Fold{}, fmt.Errorf("%w: no rows outside group %q", ErrTooFewRows, trainGroup)
	}
	return fold, nil
}
