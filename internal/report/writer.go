package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/hostinfo"
)

// WriterConfig controls which artifacts a Writer produces.
type WriterConfig struct {
	Dir          string
	CSVName      string
	PlotName     string
	SnapshotName string // "{run_id}" is replaced with the run id
	Plot         bool
	Snapshot     bool
}

// Writer persists run results to a directory. It implements
// benchmark.Reporter.
type Writer struct {
	config WriterConfig
	host   hostinfo.Provider
	logger *slog.Logger
}

// NewWriter creates a new results writer. host may be nil.
func NewWriter(cfg WriterConfig, host hostinfo.Provider, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{config: cfg, host: host, logger: logger}
}

// Paths returns the artifact paths for a run id.
func (w *Writer) Paths(runID string) (csvPath, plotPath, snapshotPath string) {
	csvPath = filepath.Join(w.config.Dir, w.config.CSVName)
	plotPath = filepath.Join(w.config.Dir, w.config.PlotName)
	snapshotPath = filepath.Join(w.config.Dir, strings.ReplaceAll(w.config.SnapshotName, "{run_id}", runID))
	return csvPath, plotPath, snapshotPath
}

// Report writes the CSV, then the plot and snapshot when enabled. Every
// failure is collected; one failing artifact does not stop the others.
func (w *Writer) Report(ctx context.Context, res *benchmark.Result) error {
	if err := os.MkdirAll(w.config.Dir, 0755); err != nil {
		return &benchmark.IOError{Op: "create output directory", Path: w.config.Dir, Err: err}
	}
	csvPath, plotPath, snapshotPath := w.Paths(res.RunID)

	var errs []error
	if err := SaveCSV(res.Table, csvPath); err != nil {
		errs = append(errs, err)
	} else {
		w.logger.Info("saved results", "path", csvPath, "rows", len(res.Table))
	}

	if w.config.Plot {
		err := PlotComparison(res.Table, plotPath)
		switch {
		case errors.Is(err, ErrNothingToPlot):
			w.logger.Info("nothing to plot", "path", plotPath)
		case err != nil:
			errs = append(errs, err)
		default:
			w.logger.Info("saved comparison plot", "path", plotPath)
		}
	}

	if w.config.Snapshot {
		var facts hostinfo.Facts
		if w.host != nil {
			var err error
			facts, err = w.host.Facts(ctx)
			if err != nil {
				w.logger.Debug("host facts incomplete", "error", err)
			}
		}
		if err := SaveSnapshot(NewSnapshot(res, facts), snapshotPath); err != nil {
			errs = append(errs, err)
		} else {
			w.logger.Info("saved run snapshot", "path", snapshotPath)
		}
	}

	return errors.Join(errs...)
}
