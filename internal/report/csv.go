package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/evaluation"
)

// NotAvailable is written in place of missing metrics.
const NotAvailable = "NA"

// Columns is the results CSV header.
var Columns = []string{"name", "accuracy", "f1_macro", "f1_weighted", "precision", "recall", "duration_seconds"}

// SaveCSV writes one row per record under the fixed header. An empty table
// produces a header-only file.
func SaveCSV(table evaluation.Table, path string) error {
	return writeFile("write csv", path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return err
		}
		for _, r := range table {
			row := []string{
				r.Name,
				formatFloat(r.Accuracy),
				formatFloat(r.F1Macro),
				formatFloat(r.F1Weighted),
				formatFloat(r.Precision),
				formatFloat(r.Recall),
				formatFloat(r.DurationSeconds),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// EfficiencyColumns is the sample-efficiency CSV header.
var EfficiencyColumns = []string{"model", "sample_size", "repeat", "accuracy", "f1_macro", "training_time"}

// SaveEfficiencyCSV writes learning-curve points.
func SaveEfficiencyCSV(points []benchmark.EfficiencyPoint, path string) error {
	return writeFile("write csv", path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(EfficiencyColumns); err != nil {
			return err
		}
		for _, p := range points {
			row := []string{
				p.Model,
				strconv.Itoa(p.Size),
				strconv.Itoa(p.Repeat),
				formatFloat(p.Accuracy),
				formatFloat(p.F1Macro),
				formatFloat(p.TrainingSeconds),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
