package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/config"
	"github.com/haskel/cellbench/internal/hostinfo"
	"github.com/haskel/cellbench/internal/logger"
	"github.com/haskel/cellbench/internal/report"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark classifiers on cell type annotation",
	Long: `Train every requested model on the same data split and compare them.

Exit codes:
  0  Results table produced (individual models may have failed)
  1  Unexpected failure
  2  Invalid configuration
  3  No data for the requested tissues`,
	Example: `  cellbench bench --tissues blood,lung --models random_forest,xgboost
  cellbench bench --use-pca --pca-components 30 --use-cv --folds 5
  cellbench bench --data cells.csv --train-tissue blood`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

var (
	benchTissues       []string
	benchMaxCells      int
	benchNGenes        int
	benchModels        []string
	benchUsePCA        bool
	benchPCAComponents int
	benchUseCV         bool
	benchFolds         int
	benchTestSize      float64
	benchSeed          uint64
	benchTrainTissue   string
	benchOutputDir     string
	benchData          string
	benchNoPlot        bool
	benchNoProgress    bool
)

// hostFacts describes the machine in saved snapshots and --json output.
var hostFacts hostinfo.Provider = hostinfo.New()

func init() {
	f := benchCmd.Flags()
	f.StringSliceVar(&benchTissues, "tissues", nil, "tissues to include (comma separated, repeatable; default all)")
	f.StringSliceVar(&benchTissues, "tissue", nil, "alias of --tissues")
	f.IntVar(&benchMaxCells, "max-cells", 0, "maximum number of cells (0 = no cap)")
	f.IntVar(&benchNGenes, "n-genes", 0, "number of highly variable genes to keep (0 = all)")
	f.StringSliceVar(&benchModels, "models", nil, "models to evaluate (default all)")
	f.BoolVar(&benchUsePCA, "use-pca", false, "reduce features with PCA")
	f.IntVar(&benchPCAComponents, "pca-components", benchmark.DefaultPCAComponents, "number of PCA components")
	f.BoolVar(&benchUseCV, "use-cv", false, "use stratified k-fold cross-validation")
	f.IntVar(&benchFolds, "folds", benchmark.DefaultFolds, "number of cross-validation folds")
	f.Float64Var(&benchTestSize, "test-size", benchmark.DefaultTestSize, "held-out fraction for a single split")
	f.Uint64Var(&benchSeed, "seed", benchmark.DefaultSeed, "random seed")
	f.StringVar(&benchTrainTissue, "train-tissue", "", "train on this tissue and test on the others")
	f.StringVar(&benchOutputDir, "output-dir", "", "directory for results (default from config)")
	f.StringVar(&benchData, "data", "", "CSV expression file (synthetic data when empty)")
	f.BoolVar(&benchNoPlot, "no-plot", false, "skip the comparison plot")
	f.BoolVar(&benchNoProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(benchCmd)
}

// applyBenchFlags overrides config values with the flags set on the command
// line.
func applyBenchFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	b := &cfg.Benchmark
	if f.Changed("tissues") || f.Changed("tissue") {
		b.Tissues = splitList(benchTissues)
	}
	if f.Changed("max-cells") {
		b.MaxCells = benchMaxCells
	}
	if f.Changed("n-genes") {
		b.NGenes = benchNGenes
	}
	if f.Changed("models") {
		b.Models = splitList(benchModels)
	}
	if f.Changed("use-pca") {
		b.UsePCA = benchUsePCA
	}
	if f.Changed("pca-components") {
		b.PCAComponents = benchPCAComponents
	}
	if f.Changed("use-cv") {
		b.UseCV = benchUseCV
	}
	if f.Changed("folds") {
		b.Folds = benchFolds
	}
	if f.Changed("test-size") {
		b.TestSize = benchTestSize
	}
	if f.Changed("seed") {
		b.Seed = benchSeed
	}
	if f.Changed("train-tissue") {
		b.TrainTissue = benchTrainTissue
	}
	if f.Changed("output-dir") {
		cfg.Output.Dir = benchOutputDir
	}
	if f.Changed("data") {
		cfg.Data.Path = benchData
		cfg.Data.Source = "csv"
		if benchData == "" {
			cfg.Data.Source = "synthetic"
		}
	}
	if benchNoPlot {
		cfg.Output.Plot = false
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBenchFlags(cmd, cfg)
	if err := cfg.Data.Validate(); err != nil {
		return &benchmark.ConfigurationError{Field: "data", Reason: err.Error()}
	}
	if err := cfg.Output.Validate(); err != nil {
		return &benchmark.ConfigurationError{Field: "output", Reason: err.Error()}
	}

	log := newLogger(cfg)
	runCfg := benchmarkConfig(cfg.Benchmark)

	var observer *progressObserver
	driverCfg := benchmark.DriverConfig{
		Reporter:    report.NewWriter(writerConfig(cfg.Output), hostFacts, log),
		Models:      classifierConfig(cfg.Models, runCfg.Seed),
		SkipScaling: cfg.Benchmark.SkipScaling,
	}
	if !benchNoProgress && !jsonOut && stderrIsTerminal() {
		observer = newProgressObserver(cmd.ErrOrStderr())
		driverCfg.Observer = observer
	}

	driver := benchmark.NewDriver(newLoader(cfg.Data, cfg.RetryBackoff(), log), driverCfg, log)
	res, err := driver.Run(cmd.Context(), runCfg)
	if observer != nil {
		observer.Finish()
	}
	if err != nil {
		return err
	}
	log = logger.ForRun(log, res.RunID)

	for _, w := range res.Warnings {
		log.Warn("report failed", "error", w)
	}

	if len(res.Table) == 0 {
		return fmt.Errorf("no models were evaluated")
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		facts, err := hostFacts.Facts(cmd.Context())
		if err != nil {
			log.Debug("host facts incomplete", "error", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.NewSnapshot(res, facts))
	}

	title := fmt.Sprintf("Cell type classification: %d cells, %d features, %d classes",
		res.NCells, res.NFeatures, len(res.Classes))
	if err := report.Render(out, title, res.Table); err != nil {
		return err
	}

	if n := len(res.Warnings); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d warning(s) while saving results, see log\n", n)
	}
	if failed := len(res.Table) - len(res.Table.Successful()); failed > 0 {
		log.Warn("some models failed", "failed", failed, "total", len(res.Table))
	}
	fmt.Fprintf(out, "Results saved to %s\n", cfg.Output.Dir)
	return nil
}

// stderrIsTerminal keeps the progress bar out of redirected output.
func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
