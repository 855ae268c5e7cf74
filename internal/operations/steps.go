package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"laptopstats/internal/charts"
	"laptopstats/internal/config"
	"laptopstats/internal/dataprocessing"
	"laptopstats/internal/exporter"
	"laptopstats/internal/infrastructure"
	"laptopstats/internal/report"
	"laptopstats/internal/validation"
)

// Step IDs, in pipeline order
const (
	StepLoad         = "load"
	StepClean        = "clean"
	StepAnalyze      = "analyze"
	StepReport       = "report"
	StepCharts       = "charts"
	StepExportCSV    = "export_csv"
	StepExportExcel  = "export_xlsx"
	StepExportSQLite = "export_sqlite"
	StepOpen         = "open"
)

// StepOptions carries the collaborators shared by the pipeline steps
type StepOptions struct {
	Logger *slog.Logger
	// Console receives the statistics report; os.Stdout when nil
	Console io.Writer
	Colored bool
	// Opener displays rendered charts; charts.OpenInViewer when nil
	Opener  charts.Opener
	Metrics *infrastructure.PipelineMetrics
}

func (o StepOptions) withDefaults() StepOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Console == nil {
		o.Console = os.Stdout
	}
	if o.Opener == nil {
		o.Opener = charts.OpenInViewer
	}
	return o
}

// NewAnalysisRegistry registers every step of a laptop price analysis
func NewAnalysisRegistry(opts StepOptions) (*Registry, error) {
	opts = opts.withDefaults()
	registry := NewRegistry()
	steps := []Step{
		NewLoadStep(opts),
		NewCleanStep(opts),
		NewAnalyzeStep(opts),
		NewReportStep(opts),
		NewChartsStep(opts),
		NewExportCSVStep(opts),
		NewExportExcelStep(opts),
		NewExportSQLiteStep(opts),
		NewOpenStep(opts),
	}
	for _, s := range steps {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// outputPath resolves a relative export file name against the output
// directory
func outputPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func setStepMetadata(state *OperationState, stepID, key string, value interface{}) {
	if s := state.GetStage(stepID); s != nil {
		s.SetMetadata(key, value)
	}
}

// LoadStep checks the input file and output directory, then reads the
// dataset as text columns
type LoadStep struct {
	BaseStage
	validator *validation.FileValidator
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
}

// NewLoadStep creates the load step
func NewLoadStep(opts StepOptions) *LoadStep {
	opts = opts.withDefaults()
	return &LoadStep{
		BaseStage: NewBaseStage(StepLoad, "Load Dataset", nil),
		validator: validation.NewFileValidator(opts.Logger),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Validate requires an input path
func (s *LoadStep) Validate(state *OperationState) error {
	if state.Config == nil || state.Config.Input.Path == "" {
		return fmt.Errorf("no input path configured")
	}
	return nil
}

// Execute loads the dataset into state.Raw
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := state.Config
	if err := s.validator.ValidateInputFile(cfg.Input.Path); err != nil {
		return err
	}
	if err := s.validator.ValidateOutputDirectory(cfg.Output.Dir); err != nil {
		return err
	}

	t, err := dataprocessing.LoadFile(cfg.Input.Path, dataprocessing.LoadOptions{
		Delimiter: cfg.Delimiter(),
		Sheet:     cfg.Input.Sheet,
	})
	if err != nil {
		return err
	}
	state.Raw = t

	s.metrics.AddRowsLoaded(ctx, t.Nrow())
	setStepMetadata(state, s.ID(), "rows", t.Nrow())
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("path", cfg.Input.Path),
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", len(t.Names())))
	return nil
}

// CleanStep types the raw table
type CleanStep struct {
	BaseStage
	cleaner *dataprocessing.Cleaner
	metrics *infrastructure.PipelineMetrics
}

// NewCleanStep creates the clean step
func NewCleanStep(opts StepOptions) *CleanStep {
	opts = opts.withDefaults()
	return &CleanStep{
		BaseStage: NewBaseStage(StepClean, "Clean Dataset", []string{StepLoad}),
		cleaner:   dataprocessing.NewCleaner(opts.Logger),
		metrics:   opts.Metrics,
	}
}

// Validate requires a loaded table
func (s *CleanStep) Validate(state *OperationState) error {
	if state.Raw == nil {
		return fmt.Errorf("no dataset loaded")
	}
	return nil
}

// Execute cleans state.Raw into state.Clean
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	clean, stats, err := s.cleaner.CleanWithStats(ctx, state.Raw)
	if err != nil {
		return err
	}
	state.Clean = clean
	state.CleanStats = stats

	s.metrics.AddRowsCleaned(ctx, stats.Rows)
	setStepMetadata(state, s.ID(), "dropped_columns", stats.DroppedColumns)
	return nil
}

// AnalyzeStep computes the summary statistics and grouped price means
type AnalyzeStep struct {
	BaseStage
	logger *slog.Logger
}

// NewAnalyzeStep creates the analyze step
func NewAnalyzeStep(opts StepOptions) *AnalyzeStep {
	opts = opts.withDefaults()
	return &AnalyzeStep{
		BaseStage: NewBaseStage(StepAnalyze, "Analyze Prices", []string{StepClean}),
		logger:    opts.Logger,
	}
}

// Validate requires a cleaned table
func (s *AnalyzeStep) Validate(state *OperationState) error {
	if state.Clean == nil {
		return fmt.Errorf("no cleaned dataset")
	}
	return nil
}

// Execute fills state.Summary and state.Groupings
func (s *AnalyzeStep) Execute(ctx context.Context, state *OperationState) error {
	summary, err := dataprocessing.Analyze(state.Clean)
	if err != nil {
		return err
	}
	groupings, err := dataprocessing.PriceGroupings(state.Clean)
	if err != nil {
		return err
	}
	state.Summary = summary
	state.Groupings = groupings

	s.logger.InfoContext(ctx, "Prices analyzed",
		slog.Int("numeric_columns", len(summary.Describe)),
		slog.Float64("kurtosis", summary.Price.Kurtosis),
		slog.Float64("skewness", summary.Price.Skewness))
	return nil
}

// ReportStep prints the summary to the console
type ReportStep struct {
	BaseStage
	console *report.Console
}

// NewReportStep creates the report step
func NewReportStep(opts StepOptions) *ReportStep {
	opts = opts.withDefaults()
	return &ReportStep{
		BaseStage: NewBaseStage(StepReport, "Print Report", []string{StepAnalyze}),
		console:   report.NewConsole(opts.Console, opts.Colored),
	}
}

// Validate requires a summary
func (s *ReportStep) Validate(state *OperationState) error {
	if state.Summary == nil {
		return fmt.Errorf("no summary to report")
	}
	return nil
}

// Execute prints statistics, correlation, price shape and group means
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	s.console.PrintSummary(state.Summary)
	s.console.PrintGroupings(state.Groupings)
	return nil
}

// ChartsStep renders the five price charts
type ChartsStep struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewChartsStep creates the charts step
func NewChartsStep(opts StepOptions) *ChartsStep {
	opts = opts.withDefaults()
	return &ChartsStep{
		BaseStage: NewBaseStage(StepCharts, "Render Charts", []string{StepAnalyze}),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// SkipReason disables the step when charts are turned off
func (s *ChartsStep) SkipReason(state *OperationState) string {
	if !state.Config.Charts.Enabled {
		return "charts disabled"
	}
	return ""
}

// Validate requires a cleaned table
func (s *ChartsStep) Validate(state *OperationState) error {
	if state.Clean == nil {
		return fmt.Errorf("no cleaned dataset")
	}
	return nil
}

// Execute writes every chart to the output directory
func (s *ChartsStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := state.Config
	renderer := charts.NewRenderer(charts.Options{
		Dir:    cfg.Output.Dir,
		Format: cfg.Charts.Format,
		Bins:   cfg.Charts.Bins,
	}, s.logger)

	results, err := renderer.RenderAll(ctx, state.Clean, cfg.Charts.Concurrency)
	if err != nil {
		return err
	}
	state.Charts = results
	for _, r := range results {
		state.AddOutput(r.Path)
	}
	s.metrics.AddChartsRendered(ctx, len(results), cfg.Charts.Format)
	return nil
}

// ExportCSVStep writes the cleaned table as CSV
type ExportCSVStep struct {
	BaseStage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewExportCSVStep creates the CSV export step
func NewExportCSVStep(opts StepOptions) *ExportCSVStep {
	opts = opts.withDefaults()
	return &ExportCSVStep{
		BaseStage: NewBaseStage(StepExportCSV, "Export CSV", []string{StepAnalyze}),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// SkipReason disables the step unless the CSV export is enabled
func (s *ExportCSVStep) SkipReason(state *OperationState) string {
	if !state.Config.Export.CSV {
		return "csv export disabled"
	}
	return ""
}

// Execute writes the CSV file
func (s *ExportCSVStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := state.Config
	w := exporter.NewCSVWriter(cfg.Output.Dir, s.logger)
	path, err := w.ExportTable(cfg.Export.CSVFile, state.Clean, cfg.Export.WriteBOM)
	if err != nil {
		return err
	}
	state.AddOutput(path)
	s.metrics.AddFileExported(ctx, "csv")
	return nil
}

// ExportExcelStep writes the workbook report
type ExportExcelStep struct {
	BaseStage
	exporter *exporter.WorkbookExporter
	metrics  *infrastructure.PipelineMetrics
}

// NewExportExcelStep creates the workbook export step
func NewExportExcelStep(opts StepOptions) *ExportExcelStep {
	opts = opts.withDefaults()
	return &ExportExcelStep{
		BaseStage: NewBaseStage(StepExportExcel, "Export Workbook", []string{StepAnalyze}),
		exporter:  exporter.NewWorkbookExporter(opts.Logger),
		metrics:   opts.Metrics,
	}
}

// SkipReason disables the step unless the workbook export is enabled
func (s *ExportExcelStep) SkipReason(state *OperationState) string {
	if !state.Config.Export.Excel {
		return "xlsx export disabled"
	}
	return ""
}

// Execute writes the workbook
func (s *ExportExcelStep) Execute(ctx context.Context, state *OperationState) error {
	path := outputPath(state.Config, state.Config.Export.ExcelFile)
	if err := s.exporter.Export(path, state.Clean, state.Summary, state.Groupings); err != nil {
		return err
	}
	state.AddOutput(path)
	s.metrics.AddFileExported(ctx, "xlsx")
	return nil
}

// ExportSQLiteStep writes the SQLite snapshot
type ExportSQLiteStep struct {
	BaseStage
	exporter *exporter.SQLiteExporter
	metrics  *infrastructure.PipelineMetrics
}

// NewExportSQLiteStep creates the SQLite export step
func NewExportSQLiteStep(opts StepOptions) *ExportSQLiteStep {
	opts = opts.withDefaults()
	return &ExportSQLiteStep{
		BaseStage: NewBaseStage(StepExportSQLite, "Export SQLite", []string{StepAnalyze}),
		exporter:  exporter.NewSQLiteExporter(opts.Logger),
		metrics:   opts.Metrics,
	}
}

// SkipReason disables the step unless the SQLite export is enabled
func (s *ExportSQLiteStep) SkipReason(state *OperationState) string {
	if !state.Config.Export.Sqlite {
		return "sqlite export disabled"
	}
	return ""
}

// Execute writes the database
func (s *ExportSQLiteStep) Execute(ctx context.Context, state *OperationState) error {
	laptops, err := state.Clean.Laptops()
	if err != nil {
		return err
	}
	path := outputPath(state.Config, state.Config.Export.SqliteFile)
	if err := s.exporter.Export(ctx, path, laptops, state.Summary, state.Groupings); err != nil {
		return err
	}
	state.AddOutput(path)
	s.metrics.AddFileExported(ctx, "sqlite")
	return nil
}

// OpenStep hands each rendered chart to the platform viewer. A viewer that
// fails to start is logged and does not fail the run.
type OpenStep struct {
	BaseStage
	opener charts.Opener
	logger *slog.Logger
}

// NewOpenStep creates the open step
func NewOpenStep(opts StepOptions) *OpenStep {
	opts = opts.withDefaults()
	return &OpenStep{
		BaseStage: NewBaseStage(StepOpen, "Open Charts", []string{StepCharts}),
		opener:    opts.Opener,
		logger:    opts.Logger,
	}
}

// SkipReason disables the step unless opening was requested
func (s *OpenStep) SkipReason(state *OperationState) string {
	if !state.Config.Output.Open {
		return "viewer not requested"
	}
	return ""
}

// Execute opens every chart
func (s *OpenStep) Execute(ctx context.Context, state *OperationState) error {
	failed := 0
	for _, r := range state.Charts {
		if err := s.opener(ctx, r.Path); err != nil {
			failed++
			s.logger.WarnContext(ctx, "Failed to open chart",
				slog.String("chart", r.ID),
				slog.String("path", r.Path),
				slog.String("error", err.Error()))
		}
	}
	setStepMetadata(state, s.ID(), "failed", failed)
	return nil
}
