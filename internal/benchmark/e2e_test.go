package benchmark_test

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/classifier"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/report"
)

func TestEndToEnd(t *testing.T) {
	loader := dataset.NewSyntheticLoader(dataset.SyntheticConfig{
		Catalog:        map[string][]string{"blood": {"B cell", "T cell", "Monocyte"}},
		CellsPerTissue: 1000,
		Genes:          50,
		MarkerGenes:    5,
	})
	dir := t.TempDir()
	writer := report.NewWriter(report.WriterConfig{
		Dir:      dir,
		CSVName:  "results.csv",
		PlotName: "comparison.png",
		Plot:     true,
	}, nil, nil)

	models := classifier.DefaultConfig()
	models.RandomForest.NEstimators = 20
	driver := benchmark.NewDriver(loader, benchmark.DriverConfig{Reporter: writer, Models: models}, nil)

	cfg := benchmark.DefaultConfig()
	cfg.ModelNames = []string{"random_forest", "logistic_regression"}
	res, err := driver.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NCells != 1000 || res.NFeatures != 50 || len(res.Classes) != 3 {
		t.Fatalf("unexpected data shape %dx%d with %d classes", res.NCells, res.NFeatures, len(res.Classes))
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Table))
	}
	for i, name := range cfg.ModelNames {
		rec := res.Table[i]
		if rec.Name != name {
			t.Errorf("row %d: expected %s, got %s", i, name, rec.Name)
		}
		if rec.Accuracy < 0 || rec.Accuracy > 1 {
			t.Errorf("%s: accuracy %v out of range", name, rec.Accuracy)
		}
		if !(rec.DurationSeconds > 0) {
			t.Errorf("%s: expected positive duration, got %v", name, rec.DurationSeconds)
		}
	}

	f, err := os.Open(filepath.Join(dir, "results.csv"))
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 lines in results.csv, got %d", lines)
	}
	if _, err := os.Stat(filepath.Join(dir, "comparison.png")); err != nil {
		t.Errorf("expected comparison plot: %v", err)
	}
}
