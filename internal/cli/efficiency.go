package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/dataset"
	"github.com/haskel/cellbench/internal/report"
)

var efficiencyCmd = &cobra.Command{
	Use:   "efficiency",
	Short: "Measure accuracy as a function of training set size",
	Long: `Train one model on growing random subsets of the training partition and
record accuracy, F1 macro and training time for each size and repeat.`,
	Example: `  cellbench efficiency --model random_forest --sizes 100,500,1000 --repeats 3
  cellbench efficiency --data cells.csv --tissues blood`,
	Args: cobra.NoArgs,
	RunE: runEfficiency,
}

var (
	effModel    string
	effSizes    []int
	effRepeats  int
	effTissues  []string
	effMaxCells int
	effNGenes   int
	effData     string
	effOutput   string
	effSeed     uint64
)

func init() {
	f := efficiencyCmd.Flags()
	f.StringVar(&effModel, "model", "", "model to evaluate (default from config)")
	f.IntSliceVar(&effSizes, "sizes", nil, "training set sizes (default from config)")
	f.IntVar(&effRepeats, "repeats", 0, "repeats per size (default from config)")
	f.StringSliceVar(&effTissues, "tissues", nil, "tissues to include (default all)")
	f.IntVar(&effMaxCells, "max-cells", 0, "maximum number of cells (0 = no cap)")
	f.IntVar(&effNGenes, "n-genes", 0, "number of highly variable genes to keep (0 = all)")
	f.StringVar(&effData, "data", "", "CSV expression file (synthetic data when empty)")
	f.StringVar(&effOutput, "output-dir", "", "directory for results (default from config)")
	f.Uint64Var(&effSeed, "seed", benchmark.DefaultSeed, "random seed")
	rootCmd.AddCommand(efficiencyCmd)
}

func runEfficiency(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Efficiency.Model = effModel
	}
	if f.Changed("sizes") {
		cfg.Efficiency.Sizes = effSizes
	}
	if f.Changed("repeats") {
		cfg.Efficiency.Repeats = effRepeats
	}
	if f.Changed("tissues") {
		cfg.Benchmark.Tissues = splitList(effTissues)
	}
	if f.Changed("max-cells") {
		cfg.Benchmark.MaxCells = effMaxCells
	}
	if f.Changed("n-genes") {
		cfg.Benchmark.NGenes = effNGenes
	}
	if f.Changed("seed") {
		cfg.Benchmark.Seed = effSeed
	}
	if f.Changed("output-dir") {
		cfg.Output.Dir = effOutput
	}
	if effData != "" {
		cfg.Data.Source = "csv"
		cfg.Data.Path = effData
	}
	if err := errors.Join(cfg.Data.Validate(), cfg.Efficiency.Validate(), cfg.Benchmark.Validate()); err != nil {
		return &benchmark.ConfigurationError{Field: "efficiency", Reason: err.Error()}
	}

	log := newLogger(cfg)
	ctx := cmd.Context()
	q := dataset.Query{
		Tissues:  cfg.Benchmark.Tissues,
		MaxCells: cfg.Benchmark.MaxCells,
		NGenes:   cfg.Benchmark.NGenes,
		Seed:     cfg.Benchmark.Seed,
	}
	data, err := newLoader(cfg.Data, cfg.RetryBackoff(), log).Load(ctx, q)
	if err != nil {
		return &benchmark.DataUnavailableError{Tissues: q.Tissues, Err: err}
	}

	driver := benchmark.NewDriver(nil, benchmark.DriverConfig{
		Models:      classifierConfig(cfg.Models, cfg.Benchmark.Seed),
		SkipScaling: cfg.Benchmark.SkipScaling,
	}, log)
	points, err := driver.SampleEfficiency(ctx, data, benchmark.EfficiencyConfig{
		Model:    cfg.Efficiency.Model,
		Sizes:    cfg.Efficiency.Sizes,
		Repeats:  cfg.Efficiency.Repeats,
		TestSize: cfg.Benchmark.TestSize,
		Seed:     cfg.Benchmark.Seed,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return &benchmark.IOError{Op: "create output directory", Path: cfg.Output.Dir, Err: err}
	}
	csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.EfficiencyCSVName)
	if err := report.SaveEfficiencyCSV(points, csvPath); err != nil {
		return err
	}
	log.Info("saved efficiency results", "path", csvPath, "points", len(points))

	if cfg.Output.Plot {
		plotPath := filepath.Join(cfg.Output.Dir, cfg.Output.EfficiencyPlotName)
		err := report.PlotEfficiency(points, plotPath)
		switch {
		case errors.Is(err, report.ErrNothingToPlot):
			log.Info("nothing to plot", "path", plotPath)
		case err != nil:
			log.Warn("failed to save efficiency plot", "error", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %-8s %-10s %-10s %s\n", "SIZE", "REPEAT", "ACCURACY", "F1_MACRO", "TRAIN_S")
	for _, p := range points {
		if p.Error != "" {
			fmt.Fprintf(out, "%-12d %-8d failed: %s\n", p.Size, p.Repeat, p.Error)
			continue
		}
		fmt.Fprintf(out, "%-12d %-8d %-10.4f %-10.4f %.3f\n", p.Size, p.Repeat, p.Accuracy, p.F1Macro, p.TrainingSeconds)
	}
	return nil
}
