package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"laptopstats/internal/config"
	apperrors "laptopstats/internal/errors"
	"laptopstats/internal/infrastructure"
	"laptopstats/internal/operations"
	"laptopstats/internal/report"
	"laptopstats/pkg/contracts"
)

// cliOptions holds the parsed command line. set records which flags were
// given explicitly so that only those override the loaded configuration.
type cliOptions struct {
	in           string
	out          string
	configFile   string
	format       string
	open         bool
	noCharts     bool
	exportCSV    bool
	exportXLSX   bool
	exportSQLite bool
	version      bool
	set          map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one analysis and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, opts); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	started := time.Now()
	runID := infrastructure.GenerateRunID()
	ctx = infrastructure.WithRunID(ctx, runID)

	telemetry, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, cfg.Output.Dir, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer shutdownTelemetry(ctx, telemetry, cfg, logger, started)

	colored := stdout == os.Stdout && !color.NoColor
	registry, err := operations.NewAnalysisRegistry(operations.StepOptions{
		Logger:  logger,
		Console: stdout,
		Colored: colored,
		Metrics: telemetry.Metrics,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build pipeline", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger.InfoContext(ctx, "Starting laptop price analysis",
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Bool("charts", cfg.Charts.Enabled))

	state := operations.NewOperationState(runID, cfg)
	manager := operations.NewManager(registry, telemetry, logger)
	if err := manager.Execute(ctx, state); err != nil {
		logger.ErrorContext(ctx, "Analysis failed",
			slog.String("step", operations.FailedStep(err)),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	report.NewConsole(stdout, colored).PrintOutputs(state.Outputs())
	logger.InfoContext(ctx, "Analysis complete",
		slog.Duration("duration", state.Duration()),
		slog.Int("outputs", len(state.Outputs())))
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &cliOptions{set: make(map[string]bool)}
	fs.StringVar(&opts.in, "in", "", "input dataset (.csv or .xlsx); overrides input.path")
	fs.StringVar(&opts.out, "out", "", "output directory for charts and exports; overrides output.dir")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.format, "format", "", "chart file format: png, svg, pdf, jpg, tif or eps")
	fs.BoolVar(&opts.open, "open", false, "open each chart in the system image viewer")
	fs.BoolVar(&opts.noCharts, "no-charts", false, "skip chart rendering")
	fs.BoolVar(&opts.exportCSV, "export-csv", false, "write the cleaned dataset as CSV")
	fs.BoolVar(&opts.exportXLSX, "export-xlsx", false, "write an Excel workbook report")
	fs.BoolVar(&opts.exportSQLite, "export-sqlite", false, "write a SQLite snapshot")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// applyFlags overlays the explicitly given flags onto cfg and re-validates it
func applyFlags(cfg *config.Config, opts *cliOptions) error {
	if opts.set["in"] {
		cfg.Input.Path = opts.in
	}
	if opts.set["out"] {
		cfg.Output.Dir = opts.out
	}
	if opts.set["format"] {
		cfg.Charts.Format = opts.format
	}
	if opts.set["open"] {
		cfg.Output.Open = opts.open
	}
	if opts.set["no-charts"] {
		cfg.Charts.Enabled = !opts.noCharts
	}
	if opts.set["export-csv"] {
		cfg.Export.CSV = opts.exportCSV
	}
	if opts.set["export-xlsx"] {
		cfg.Export.Excel = opts.exportXLSX
	}
	if opts.set["export-sqlite"] {
		cfg.Export.Sqlite = opts.exportSQLite
	}
	return cfg.Validate()
}

// shutdownTelemetry writes the metrics textfile, if configured, and flushes
// the exporters
func shutdownTelemetry(ctx context.Context, telemetry *infrastructure.Telemetry, cfg *config.Config, logger *slog.Logger, started time.Time) {
	stats := telemetry.Runtime.Collect(ctx, started)
	logger.DebugContext(ctx, "Runtime statistics", slog.Any("runtime", stats))

	if path := cfg.Telemetry.MetricsFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Output.Dir, path)
		}
		if err := telemetry.WriteMetricsFile(path); err != nil {
			logger.WarnContext(ctx, "Failed to write metrics file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	// the run context may already be cancelled by a signal
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
	}
}
