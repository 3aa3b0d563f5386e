package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/haskel/cellbench/internal/preprocess"
)

// CSVConfig describes a local expression table: one row per cell, a label
// column, an optional group column and numeric gene columns.
type CSVConfig struct {
	Path        string
	LabelColumn string
	GroupColumn string
	// Comma defaults to ',' or '\t' for .tsv files.
	Comma rune
}

// CSVLoader reads an expression table from disk.
type CSVLoader struct {
	config CSVConfig
}

// NewCSVLoader creates a loader for the given table.
func NewCSVLoader(cfg CSVConfig) *CSVLoader {
	if cfg.LabelColumn == "" {
		cfg.LabelColumn = "cell_type"
	}
	if cfg.Comma == 0 {
		cfg.Comma = ','
		if strings.EqualFold(filepath.Ext(cfg.Path), ".tsv") {
			cfg.Comma = '\t'
		}
	}
	return &CSVLoader{config: cfg}
}

// Load implements Loader.
func (l *CSVLoader) Load(ctx context.Context, q Query) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.config.Path)
	if err != nil {
		return nil, classify(fmt.Errorf("open expression table: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = l.config.Comma

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty table: %w", l.config.Path, ErrNoData)
		}
		return nil, classify(fmt.Errorf("read header: %w", err))
	}

	labelCol := lo.IndexOf(header, l.config.LabelColumn)
	if labelCol < 0 {
		return nil, fmt.Errorf("label column %q not found in %s", l.config.LabelColumn, l.config.Path)
	}
	groupCol := -1
	if l.config.GroupColumn != "" {
		groupCol = lo.IndexOf(header, l.config.GroupColumn)
	}
	if len(q.Tissues) > 0 && groupCol < 0 {
		return nil, fmt.Errorf("tissue filter %v needs group column %q: %w", q.Tissues, l.config.GroupColumn, ErrNoData)
	}

	var featureCols []int
	for i := range header {
		if i != labelCol && i != groupCol {
			featureCols = append(featureCols, i)
		}
	}
	if len(featureCols) == 0 {
		return nil, fmt.Errorf("%s has no feature columns", l.config.Path)
	}

	var (
		values []float64
		labels []string
		groups []string
	)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classify(fmt.Errorf("read row %d: %w", line+1, err))
		}
		line++

		group := ""
		if groupCol >= 0 {
			group = rec[groupCol]
			if !matchesTissue(q.Tissues, group) {
				continue
			}
		}

		for _, c := range featureCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", line, header[c], err)
			}
			values = append(values, v)
		}
		labels = append(labels, rec[labelCol])
		if groupCol >= 0 {
			groups = append(groups, group)
		}
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("%s tissues %v: %w", l.config.Path, q.Tissues, ErrNoData)
	}

	full := &Dataset{
		Features:     mat.NewDense(len(labels), len(featureCols), values),
		Labels:       labels,
		Groups:       groups,
		FeatureNames: lo.Map(featureCols, func(c int, _ int) string { return header[c] }),
	}

	rows := sampleRows(lo.Range(len(labels)), q.MaxCells, q.Seed)
	ds := full
	if len(rows) != len(labels) {
		ds = full.Subset(rows)
	}

	if q.NGenes > 0 && q.NGenes < ds.Cols() {
		keep := preprocess.SelectVariableGenes(ds.Features, q.NGenes)
		ds = ds.WithFeatures(preprocess.SelectColumns(ds.Features, keep),
			lo.Map(keep, func(c int, _ int) string { return ds.FeatureNames[c] }))
	}

	return ds, nil
}

// classify wraps errors worth retrying in a TransientError.
func classify(err error) error {
	if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &TransientError{Err: err}
	}
	return err
}
