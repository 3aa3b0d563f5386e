package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/config"
	"github.com/haskel/cellbench/internal/logger"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	jsonOut   bool

	// Version info (set from main)
	Version = "0.1.0"
)

// Exit codes
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
	exitNoData        = 3
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cellbench",
	Short: "Cell type classifier benchmarking",
	Long: `Cellbench compares classical machine learning classifiers on single-cell
expression data. It trains each requested model on the same split, scores it
on accuracy, F1 and precision/recall, and writes a results table, a comparison
plot and a run snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, benchmark.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, benchmark.ErrDataUnavailable):
		return exitNoData
	default:
		return exitFailure
	}
}

// loadConfig reads the config file, applies the logging flags and validates
// the result. Any problem is a configuration error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, &benchmark.ConfigurationError{Field: "config", Reason: err.Error()}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, &benchmark.ConfigurationError{Field: "logging", Reason: err.Error()}
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// IsJSON returns whether JSON output is enabled
func IsJSON() bool {
	return jsonOut
}
