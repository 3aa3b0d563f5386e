package report

import (
	"cmp"
	"encoding/json"
	"io"
	"os"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/evaluation"
	"github.com/haskel/cellbench/internal/hostinfo"
)

const snapshotVersion = 1

// TopFeatures is the number of features listed per model in a snapshot.
const TopFeatures = 20

// Snapshot is the persisted record of one run.
type Snapshot struct {
	Version    int               `json:"version"`
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Config     benchmark.Config  `json:"config"`
	Host       hostinfo.Facts    `json:"host"`
	Cells      int               `json:"cells"`
	Features   int               `json:"features"`
	Classes    []string          `json:"classes"`
	Stages     []benchmark.Stage `json:"stages"`
	Results    evaluation.Table  `json:"results"`
	Models     []ModelDetail     `json:"models"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// ModelDetail holds the per-class view of one model.
type ModelDetail struct {
	Name      string                   `json:"name"`
	Confusion [][]int                  `json:"confusion_matrix,omitempty"`
	Report    []evaluation.ClassReport `json:"classification_report,omitempty"`
	// Importance lists the highest weighted features, largest first.
	Importance []FeatureWeight `json:"feature_importance,omitempty"`
}

// FeatureWeight is one entry of a feature ranking.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"importance"`
}

// RankFeatures pairs names with weights and returns the top n by weight.
// Ties keep column order.
func RankFeatures(names []string, weights []float64, n int) []FeatureWeight {
	if len(weights) == 0 || len(names) != len(weights) {
		return nil
	}
	ranked := lo.Map(weights, func(w float64, i int) FeatureWeight {
		return FeatureWeight{Feature: names[i], Weight: w}
	})
	slices.SortStableFunc(ranked, func(a, b FeatureWeight) int { return cmp.Compare(b.Weight, a.Weight) })
	return ranked[:min(n, len(ranked))]
}

// NewSnapshot builds a snapshot from a run result.
func NewSnapshot(res *benchmark.Result, host hostinfo.Facts) *Snapshot {
	return &Snapshot{
		Version:    snapshotVersion,
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Config:     res.Config,
		Host:       host,
		Cells:      res.NCells,
		Features:   res.NFeatures,
		Classes:    res.Classes,
		Stages:     res.Stages,
		Results:    res.Table,
		Models: lo.Map(res.Table, func(r evaluation.Record, _ int) ModelDetail {
			return ModelDetail{
				Name:       r.Name,
				Confusion:  res.Confusions[r.Name],
				Report:     res.Reports[r.Name],
				Importance: RankFeatures(res.FeatureNames, res.Importances[r.Name], TopFeatures),
			}
		}),
		Warnings: lo.Map(res.Warnings, func(err error, _ int) string { return err.Error() }),
	}
}

// SaveSnapshot writes the snapshot as indented JSON.
func SaveSnapshot(s *Snapshot, path string) error {
	return writeFile("write snapshot", path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	})
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &benchmark.IOError{Op: "read snapshot", Path: path, Err: err}
	}
	defer file.Close()

	var s Snapshot
	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return nil, &benchmark.IOError{Op: "read snapshot", Path: path, Err: err}
	}
	return &s, nil
}
