package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

func TestDatasetValidate(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	tests := []struct {
		name    string
		ds      *Dataset
		wantErr bool
	}{
		{"valid", &Dataset{Features: x, Labels: []string{"a", "b"}}, false},
		{"nil features", &Dataset{Labels: []string{"a"}}, true},
		{"label count", &Dataset{Features: x, Labels: []string{"a"}}, true},
		{"group count", &Dataset{Features: x, Labels: []string{"a", "b"}, Groups: []string{"g"}}, true},
		{"empty label", &Dataset{Features: x, Labels: []string{"a", " "}}, true},
		{"feature names", &Dataset{Features: x, Labels: []string{"a", "b"}, FeatureNames: []string{"g1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDatasetValidateNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		ds := &Dataset{
			Features:     mat.NewDense(2, 2, []float64{1, 2, 3, v}),
			Labels:       []string{"a", "b"},
			FeatureNames: []string{"CD3E", "MS4A1"},
		}
		err := ds.Validate()
		if !errors.Is(err, ErrNonFinite) {
			t.Fatalf("value %v: expected ErrNonFinite, got %v", v, err)
		}
		if !strings.Contains(err.Error(), "row 1 column MS4A1") {
			t.Errorf("value %v: expected error to name the cell, got %q", v, err)
		}
	}
}

func TestDatasetSubset(t *testing.T) {
	ds := &Dataset{
		Features: mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}),
		Labels:   []string{"a", "b", "c"},
		Groups:   []string{"x", "y", "z"},
	}
	sub := ds.Subset([]int{2, 0})
	if sub.Rows() != 2 || sub.Labels[0] != "c" || sub.Groups[1] != "x" {
		t.Errorf("unexpected subset %+v", sub)
	}
	if sub.Features.At(0, 1) != 6 {
		t.Errorf("expected 6, got %v", sub.Features.At(0, 1))
	}

	empty := ds.Subset(nil)
	if empty.Rows() != 0 {
		t.Errorf("expected empty subset, got %d rows", empty.Rows())
	}
	if got := ds.Classes(); len(got) != 3 || got[0] != "a" {
		t.Errorf("unexpected classes %v", got)
	}
}

func TestSyntheticLoader(t *testing.T) {
	loader := NewSyntheticLoader(SyntheticConfig{CellsPerTissue: 100, Genes: 40, MarkerGenes: 4})

	t.Run("all tissues", func(t *testing.T) {
		ds, err := loader.Load(context.Background(), Query{Seed: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Rows() != 300 || ds.Cols() != 40 {
			t.Errorf("expected 300x40, got %dx%d", ds.Rows(), ds.Cols())
		}
		if err := ds.Validate(); err != nil {
			t.Errorf("invalid dataset: %v", err)
		}
	})

	t.Run("tissue filter is case insensitive", func(t *testing.T) {
		ds, err := loader.Load(context.Background(), Query{Tissues: []string{"Lung"}, Seed: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, g := range ds.Groups {
			if g != "lung" {
				t.Fatalf("unexpected group %q", g)
			}
		}
		if len(ds.Classes()) != len(DefaultCatalog["lung"]) {
			t.Errorf("expected %d classes, got %d", len(DefaultCatalog["lung"]), len(ds.Classes()))
		}
	})

	t.Run("caps", func(t *testing.T) {
		ds, err := loader.Load(context.Background(), Query{MaxCells: 50, NGenes: 10, Seed: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Rows() != 50 || ds.Cols() != 10 {
			t.Errorf("expected 50x10, got %dx%d", ds.Rows(), ds.Cols())
		}
	})

	t.Run("unknown tissue", func(t *testing.T) {
		_, err := loader.Load(context.Background(), Query{Tissues: []string{"kidney"}})
		if !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := loader.Load(context.Background(), Query{MaxCells: 30, Seed: 5})
		b, _ := loader.Load(context.Background(), Query{MaxCells: 30, Seed: 5})
		if !mat.Equal(a.Features, b.Features) {
			t.Error("same seed produced different data")
		}
	})
}

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return path
}

func TestCSVLoader(t *testing.T) {
	path := writeTable(t, "cells.csv", `cell_type,tissue,g1,g2,g3
B cell,blood,1,0,5
T cell,blood,2,1,5
T cell,lung,3,0,5
macrophage,lung,4,1,5
`)
	loader := NewCSVLoader(CSVConfig{Path: path, GroupColumn: "tissue"})

	ds, err := loader.Load(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Rows() != 4 || ds.Cols() != 3 {
		t.Fatalf("expected 4x3, got %dx%d", ds.Rows(), ds.Cols())
	}
	if ds.FeatureNames[0] != "g1" || ds.Groups[2] != "lung" {
		t.Errorf("unexpected dataset %+v", ds)
	}

	lung, err := loader.Load(context.Background(), Query{Tissues: []string{"lung"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lung.Rows() != 2 || lung.Labels[1] != "macrophage" {
		t.Errorf("unexpected lung subset %v", lung.Labels)
	}

	capped, err := loader.Load(context.Background(), Query{NGenes: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// g3 is constant and dropped first
	if capped.Cols() != 2 || capped.FeatureNames[0] != "g1" || capped.FeatureNames[1] != "g2" {
		t.Errorf("unexpected gene cap %v", capped.FeatureNames)
	}

	if _, err := loader.Load(context.Background(), Query{Tissues: []string{"heart"}}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestCSVLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		cfg     CSVConfig
	}{
		{"missing label column", "a.csv", "label,g1\nx,1\n", CSVConfig{}},
		{"bad number", "b.csv", "cell_type,g1\nx,abc\n", CSVConfig{}},
		{"no features", "c.csv", "cell_type\nx\n", CSVConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Path = writeTable(t, tt.file, tt.content)
			if _, err := NewCSVLoader(tt.cfg).Load(context.Background(), Query{}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	_, err := NewCSVLoader(CSVConfig{Path: filepath.Join(t.TempDir(), "none.csv")}).Load(context.Background(), Query{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCSVLoaderTSV(t *testing.T) {
	path := writeTable(t, "cells.tsv", "cell_type\tg1\tg2\nB cell\t1\t2\nT cell\t3\t4\n")
	ds, err := NewCSVLoader(CSVConfig{Path: path}).Load(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Rows() != 2 || ds.Cols() != 2 {
		t.Errorf("expected 2x2, got %dx%d", ds.Rows(), ds.Cols())
	}
}

type flakyLoader struct {
	failures int
	err      error
	calls    int
}

func (l *flakyLoader) Load(context.Context, Query) (*Dataset, error) {
	l.calls++
	if l.calls <= l.failures {
		return nil, l.err
	}
	return &Dataset{Features: mat.NewDense(1, 1, []float64{1}), Labels: []string{"a"}}, nil
}

func TestRetryLoader(t *testing.T) {
	t.Run("transient failures are retried", func(t *testing.T) {
		next := &flakyLoader{failures: 2, err: &TransientError{Err: syscall.EAGAIN}}
		ds, err := NewRetryLoader(next, 3, time.Millisecond, nil).Load(context.Background(), Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Rows() != 1 || next.calls != 3 {
			t.Errorf("expected success on third call, got %d calls", next.calls)
		}
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		next := &flakyLoader{failures: 5, err: &TransientError{Err: syscall.EAGAIN}}
		_, err := NewRetryLoader(next, 2, time.Millisecond, nil).Load(context.Background(), Query{})
		if !errors.Is(err, syscall.EAGAIN) {
			t.Errorf("expected EAGAIN, got %v", err)
		}
		if next.calls != 2 {
			t.Errorf("expected 2 calls, got %d", next.calls)
		}
	})

	t.Run("terminal failures are not retried", func(t *testing.T) {
		next := &flakyLoader{failures: 5, err: ErrNoData}
		_, err := NewRetryLoader(next, 3, time.Millisecond, nil).Load(context.Background(), Query{})
		if !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
		if next.calls != 1 {
			t.Errorf("expected 1 call, got %d", next.calls)
		}
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		next := &flakyLoader{failures: 5, err: &TransientError{Err: syscall.EINTR}}
		_, err := NewRetryLoader(next, 3, time.Hour, nil).Load(ctx, Query{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestClassify(t *testing.T) {
	var transient *TransientError
	if !errors.As(classify(syscall.EAGAIN), &transient) {
		t.Error("expected EAGAIN to be transient")
	}
	if errors.As(classify(os.ErrNotExist), &transient) {
		t.Error("expected missing file to be terminal")
	}
}
