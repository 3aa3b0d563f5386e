// Package dataset holds the labeled expression matrices the benchmark runs on
// and the loaders that produce them.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// ErrNoData is returned by loaders when no cell matches the query.
var ErrNoData = errors.New("no cells match the query")

// ErrNonFinite is returned by Validate when a feature is NaN or infinite.
var ErrNonFinite = errors.New("non-finite feature value")

// Dataset is a labeled expression sample: one row per cell, one column per gene.
type Dataset struct {
	Features     *mat.Dense
	Labels       []string
	Groups       []string // optional, e.g. tissue per cell
	FeatureNames []string
}

// Query describes which cells a loader should return.
type Query struct {
	Tissues  []string
	MaxCells int
	NGenes   int
	Seed     uint64
}

// Loader returns a Dataset for a query or a terminal failure.
type Loader interface {
	Load(ctx context.Context, q Query) (*Dataset, error)
}

// TransientError marks a load failure that may succeed when retried.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient load failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Rows returns the number of cells.
func (d *Dataset) Rows() int {
	if d == nil || d.Features == nil {
		return 0
	}
	r, _ := d.Features.Dims()
	return r
}

// Cols returns the number of features.
func (d *Dataset) Cols() int {
	if d == nil || d.Features == nil {
		return 0
	}
	_, c := d.Features.Dims()
	return c
}

// Validate checks the row/label invariants.
func (d *Dataset) Validate() error {
	if d == nil || d.Features == nil {
		return errors.New("dataset has no feature matrix")
	}
	rows := d.Rows()
	if rows != len(d.Labels) {
		return fmt.Errorf("feature rows (%d) do not match label count (%d)", rows, len(d.Labels))
	}
	if len(d.Groups) != 0 && len(d.Groups) != rows {
		return fmt.Errorf("group column length (%d) does not match rows (%d)", len(d.Groups), rows)
	}
	if len(d.FeatureNames) != 0 && len(d.FeatureNames) != d.Cols() {
		return fmt.Errorf("feature names (%d) do not match columns (%d)", len(d.FeatureNames), d.Cols())
	}
	for i, l := range d.Labels {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("row %d has an empty label", i)
		}
	}
	for i := 0; i < rows; i++ {
		for j, v := range d.Features.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d column %s: %v: %w", i, d.featureName(j), v, ErrNonFinite)
			}
		}
	}
	return nil
}

func (d *Dataset) featureName(j int) string {
	if j < len(d.FeatureNames) {
		return d.FeatureNames[j]
	}
	return strconv.Itoa(j)
}

// Classes returns the distinct labels in sorted order.
func (d *Dataset) Classes() []string {
	classes := lo.Uniq(d.Labels)
	slices.Sort(classes)
	return classes
}

// Subset returns a copy holding only the given rows, in the given order.
func (d *Dataset) Subset(rows []int) *Dataset {
	cols := d.Cols()
	x := &mat.Dense{}
	if len(rows) > 0 && cols > 0 {
		x = mat.NewDense(len(rows), cols, nil)
	}
	out := &Dataset{
		Labels:       make([]string, len(rows)),
		FeatureNames: d.FeatureNames,
	}
	if len(d.Groups) != 0 {
		out.Groups = make([]string, len(rows))
	}
	for i, r := range rows {
		if !x.IsEmpty() {
			x.SetRow(i, d.Features.RawRowView(r))
		}
		out.Labels[i] = d.Labels[r]
		if out.Groups != nil {
			out.Groups[i] = d.Groups[r]
		}
	}
	out.Features = x
	return out
}

// WithFeatures returns a shallow copy carrying a replacement feature matrix,
// e.g. after dimensionality reduction.
func (d *Dataset) WithFeatures(x *mat.Dense, names []string) *Dataset {
	return &Dataset{
		Features:     x,
		Labels:       d.Labels,
		Groups:       d.Groups,
		FeatureNames: names,
	}
}

// matchesTissue reports whether group g is selected by the tissue filter.
func matchesTissue(tissues []string, g string) bool {
	if len(tissues) == 0 {
		return true
	}
	return lo.ContainsBy(tissues, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), g)
	})
}
