package evaluation

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

// ErrEmptyInput is returned when there is nothing to score.
var ErrEmptyInput = errors.New("no labels to evaluate")

// ClassReport holds per-class scores.
type ClassReport struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ComputeMetrics scores predictions against the truth. Classes are the
// sorted union of both label vectors; a class that is never predicted scores
// zero precision and F1 instead of failing.
func ComputeMetrics(yTrue, yPred []string, elapsed time.Duration) (Record, error) {
	per, err := ClassificationReport(yTrue, yPred)
	if err != nil {
		return Record{}, err
	}

	n := len(yTrue)
	correct := lo.CountBy(lo.Range(n), func(i int) bool { return yTrue[i] == yPred[i] })

	var f1Macro, f1Weighted, precision, recall float64
	for _, c := range per {
		f1Macro += c.F1
		precision += c.Precision
		recall += c.Recall
		f1Weighted += c.F1 * float64(c.Support)
	}
	k := float64(len(per))
	accuracy := float64(correct) / float64(n)
	// single-label micro F1 reduces to accuracy
	f1Micro := accuracy

	return Record{
		Accuracy:        accuracy,
		F1Macro:         f1Macro / k,
		F1Micro:         f1Micro,
		F1Weighted:      f1Weighted / float64(n),
		Precision:       precision / k,
		Recall:          recall / k,
		DurationSeconds: elapsed.Seconds(),
		NTest:           n,
	}, nil
}

// ClassificationReport returns precision, recall, F1 and support for every
// class in the sorted union of labels.
func ClassificationReport(yTrue, yPred []string) ([]ClassReport, error) {
	if err := checkLabels(yTrue, yPred); err != nil {
		return nil, err
	}
	classes := Classes(yTrue, yPred)

	tp := make(map[string]int, len(classes))
	predicted := lo.CountValues(yPred)
	support := lo.CountValues(yTrue)
	for i, t := range yTrue {
		if t == yPred[i] {
			tp[t]++
		}
	}

	out := make([]ClassReport, 0, len(classes))
	for _, c := range classes {
		p := ratio(tp[c], predicted[c])
		r := ratio(tp[c], support[c])
		f1 := 0.0
		if p+r > 0 {
			f1 = 2 * p * r / (p + r)
		}
		out = append(out, ClassReport{Class: c, Precision: p, Recall: r, F1: f1, Support: support[c]})
	}
	return out, nil
}

// ConfusionMatrix counts (true, predicted) pairs. Rows follow classOrder for
// the true label and columns for the predicted label.
func ConfusionMatrix(yTrue, yPred, classOrder []string) ([][]int, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("length mismatch: %d true labels, %d predictions", len(yTrue), len(yPred))
	}
	index := make(map[string]int, len(classOrder))
	for i, c := range classOrder {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q in order", c)
		}
		index[c] = i
	}

	m := make([][]int, len(classOrder))
	for i := range m {
		m[i] = make([]int, len(classOrder))
	}
	for i := range yTrue {
		r, ok := index[yTrue[i]]
		if !ok {
			return nil, fmt.Errorf("true label %q not in class order", yTrue[i])
		}
		c, ok := index[yPred[i]]
		if !ok {
			return nil, fmt.Errorf("predicted label %q not in class order", yPred[i])
		}
		m[r][c]++
	}
	return m, nil
}

// Classes returns the sorted union of the given label vectors.
func Classes(labels ...[]string) []string {
	out := lo.Uniq(lo.Flatten(labels))
	slices.Sort(out)
	return out
}

func checkLabels(yTrue, yPred []string) error {
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("length mismatch: %d true labels, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return ErrEmptyInput
	}
	return nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
