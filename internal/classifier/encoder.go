package classifier

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// LabelEncoder maps class names to dense indices in sorted name order.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder over the distinct labels.
func NewLabelEncoder(labels []string) *LabelEncoder {
	classes := lo.Uniq(labels)
	slices.Sort(classes)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{Classes: classes, index: index}
}

// Encode converts labels to indices.
func (e *LabelEncoder) Encode(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("unknown class %q", l)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode converts indices back to labels.
func (e *LabelEncoder) Decode(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(e.Classes) {
			return nil, fmt.Errorf("class index %d out of range [0,%d)", idx, len(e.Classes))
		}
		out[i] = e.Classes[idx]
	}
	return out, nil
}
