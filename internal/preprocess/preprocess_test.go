package preprocess

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func randomMatrix(rows, cols int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, 2))
	x := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64()*float64(j+1)+float64(j))
		}
	}
	return x
}

func TestStandardize(t *testing.T) {
	x := randomMatrix(50, 4, 1)
	x.Set(0, 3, 0)
	constant := mat.NewDense(50, 1, nil)
	var aug mat.Dense
	aug.Augment(x, constant)

	out, err := Standardize(&aug)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for j := 0; j < 4; j++ {
		mean, std := stat.PopMeanStdDev(mat.Col(nil, j, out), nil)
		if math.Abs(mean) > 1e-9 || math.Abs(std-1) > 1e-9 {
			t.Errorf("column %d: expected mean 0 std 1, got %v %v", j, mean, std)
		}
	}
	for i := 0; i < 50; i++ {
		if out.At(i, 4) != 0 {
			t.Fatalf("constant column should scale to zero, got %v", out.At(i, 4))
		}
	}
}

func TestScalerTransformMismatch(t *testing.T) {
	var s StandardScaler
	if err := s.Fit(randomMatrix(10, 3, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Transform(randomMatrix(5, 2, 1)); err == nil {
		t.Error("expected error for feature mismatch")
	}
}

func TestSelectVariableGenes(t *testing.T) {
	x := randomMatrix(100, 6, 3)
	keep := SelectVariableGenes(x, 2)
	// variance grows with column index
	if len(keep) != 2 || keep[0] != 4 || keep[1] != 5 {
		t.Errorf("expected [4 5], got %v", keep)
	}
	if all := SelectVariableGenes(x, 0); len(all) != 6 {
		t.Errorf("expected all columns, got %v", all)
	}

	sel := SelectColumns(x, keep)
	if r, c := sel.Dims(); r != 100 || c != 2 {
		t.Fatalf("expected 100x2, got %dx%d", r, c)
	}
	if sel.At(7, 1) != x.At(7, 5) {
		t.Error("selected column does not match source")
	}
}

func TestFitPCA(t *testing.T) {
	x := randomMatrix(80, 6, 4)
	p, err := FitPCA(x, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := p.Transform(x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r, c := out.Dims(); r != 80 || c != 3 {
		t.Fatalf("expected 80x3, got %dx%d", r, c)
	}
	for c := 1; c < 3; c++ {
		if p.ExplainedRatio[c] > p.ExplainedRatio[c-1]+1e-12 {
			t.Errorf("explained variance not descending: %v", p.ExplainedRatio)
		}
	}
	// projections are centered
	for c := 0; c < 3; c++ {
		if m := stat.Mean(mat.Col(nil, c, out), nil); math.Abs(m) > 1e-9 {
			t.Errorf("component %d mean %v", c, m)
		}
	}
}

func TestFitPCAInvalidComponents(t *testing.T) {
	x := randomMatrix(10, 5, 1)
	for _, k := range []int{0, 5, 6, 11} {
		if _, err := FitPCA(x, k); !errors.Is(err, ErrInvalidComponents) {
			t.Errorf("k=%d: expected ErrInvalidComponents, got %v", k, err)
		}
	}
}

func TestSVDReducer(t *testing.T) {
	out, err := NewSVDReducer(nil).Reduce(randomMatrix(30, 8, 2), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, c := out.Dims(); c != 4 {
		t.Errorf("expected 4 components, got %d", c)
	}
}
