package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"laptopstats/internal/dataprocessing"
	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetCleaned     = "Cleaned"
	SheetDescribe    = "Describe"
	SheetCorrelation = "Correlation"
	SheetMoments     = "Moments"
)

// GroupSheetName returns the sheet holding the grouped means of dimension
func GroupSheetName(dimension string) string {
	return "By " + dimension
}

// WorkbookExporter writes the analysis report as an Excel workbook
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a WorkbookExporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger}
}

// Export writes the cleaned rows, the statistics and the grouped means to
// path, replacing any existing file.
func (e *WorkbookExporter) Export(path string, t *dataprocessing.Table, summary *domain.Summary, groupings []domain.Grouping) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	if err := e.writeCleaned(f, t, headerStyle); err != nil {
		return err
	}
	if err := e.writeDescribe(f, summary.Describe, headerStyle); err != nil {
		return err
	}
	if err := e.writeCorrelation(f, summary.Correlation, headerStyle); err != nil {
		return err
	}
	if err := e.writeMoments(f, summary, headerStyle); err != nil {
		return err
	}
	for _, g := range groupings {
		if err := e.writeGrouping(f, g, headerStyle); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewStorageError("failed to remove default sheet", err)
	}
	if idx, err := f.GetSheetIndex(SheetCleaned); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save workbook %s", path), err)
	}

	e.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("rows", t.Nrow()),
		slog.Int("group_sheets", len(groupings)))
	return nil
}

// writeCleaned streams the cleaned table, keeping numbers numeric
func (e *WorkbookExporter) writeCleaned(f *excelize.File, t *dataprocessing.Table, headerStyle int) error {
	if _, err := f.NewSheet(SheetCleaned); err != nil {
		return apperrors.NewStorageError("failed to create sheet", err)
	}
	sw, err := f.NewStreamWriter(SheetCleaned)
	if err != nil {
		return apperrors.NewStorageError("failed to open stream writer", err)
	}

	names := t.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return apperrors.NewStorageError("failed to write header", err)
	}

	cols := make([][]interface{}, len(names))
	for i, name := range names {
		cols[i] = cellValues(t.Frame().Col(name))
	}
	for r := 0; r < t.Nrow(); r++ {
		row := make([]interface{}, len(names))
		for c := range names {
			row[c] = cols[c][r]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", r+1), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush cleaned sheet", err)
	}
	return nil
}

func (e *WorkbookExporter) writeDescribe(f *excelize.File, describe []domain.ColumnStats, headerStyle int) error {
	rows := [][]interface{}{{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, cs := range describe {
		rows = append(rows, []interface{}{
			cs.Column, cs.Count,
			cellFloat(cs.Mean), cellFloat(cs.Std), cellFloat(cs.Min),
			cellFloat(cs.Q25), cellFloat(cs.Median), cellFloat(cs.Q75), cellFloat(cs.Max),
		})
	}
	return writeSheet(f, SheetDescribe, rows, headerStyle)
}

func (e *WorkbookExporter) writeCorrelation(f *excelize.File, corr domain.CorrelationMatrix, headerStyle int) error {
	header := []interface{}{""}
	for _, c := range corr.Columns {
		header = append(header, c)
	}
	rows := [][]interface{}{header}
	for i, c := range corr.Columns {
		row := []interface{}{c}
		for _, v := range corr.Values[i] {
			row = append(row, cellFloat(v))
		}
		rows = append(rows, row)
	}
	return writeSheet(f, SheetCorrelation, rows, headerStyle)
}

func (e *WorkbookExporter) writeMoments(f *excelize.File, summary *domain.Summary, headerStyle int) error {
	rows := [][]interface{}{
		{"column", "kurtosis", "skewness", "rows"},
		{summary.Price.Column, cellFloat(summary.Price.Kurtosis), cellFloat(summary.Price.Skewness), summary.Rows},
	}
	return writeSheet(f, SheetMoments, rows, headerStyle)
}

func (e *WorkbookExporter) writeGrouping(f *excelize.File, g domain.Grouping, headerStyle int) error {
	rows := [][]interface{}{{g.Dimension, "count", "mean_price_euros"}}
	for _, gm := range g.Groups {
		rows = append(rows, []interface{}{gm.Key, gm.Count, cellFloat(gm.Mean)})
	}
	return writeSheet(f, GroupSheetName(g.Dimension), rows, headerStyle)
}

// writeSheet creates sheet and fills it from A1, styling the first row
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create sheet %s", sheet), err)
	}
	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s row %d", sheet, i+1), err)
		}
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return apperrors.NewStorageError("invalid cell", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return apperrors.NewStorageError("failed to style header", err)
	}
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return apperrors.NewStorageError("invalid column", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return apperrors.NewStorageError("failed to size columns", err)
	}
	return nil
}

// cellValues converts a column to typed cell values; missing cells are nil
func cellValues(col series.Series) []interface{} {
	out := make([]interface{}, col.Len())
	switch col.Type() {
	case series.Float:
		for i, v := range col.Float() {
			out[i] = cellFloat(v)
		}
	case series.Int:
		for i := range out {
			if n, err := col.Elem(i).Int(); err == nil && !col.Elem(i).IsNA() {
				out[i] = n
			}
		}
	default:
		for i, r := range col.Records() {
			if !col.Elem(i).IsNA() {
				out[i] = r
			}
		}
	}
	return out
}

// cellFloat maps values a spreadsheet cannot hold to an empty cell
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
