package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// unnamedPrefix is the header given to columns whose header cell is empty,
// such as the one produced by a trailing delimiter.
const unnamedPrefix = "Unnamed: "

// missingValues are the cell values treated as missing on load
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// LoadOptions controls how an input file is read
type LoadOptions struct {
	// Delimiter separates fields of a delimited file; ',' when zero
	Delimiter rune
	// Sheet selects the worksheet of an Excel input; the first sheet when empty
	Sheet string
}

// LoadFile reads a delimited text file or an .xlsx workbook into a Table.
// Every column is loaded as text; typing happens during cleaning.
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path), err)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, opts.Sheet)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
		}
		defer f.Close()
		return LoadCSV(f, opts.Delimiter)
	}
}

// LoadCSV reads delimited text with a header row into a Table
func LoadCSV(r io.Reader, delimiter rune) (*Table, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read delimited input", err)
	}
	return fromRecords(records)
}

func loadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewSchemaError("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	return fromRecords(rows)
}

// fromRecords builds a Table from a header row and data rows. Short rows are
// padded with missing cells; rows wider than the header are rejected.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperrors.NewSchemaError("input has no header row")
	}

	header := normalizeHeader(records[0])
	width := len(header)
	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for i, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		if len(rec) > width {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(rec), width))
		}
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}
	if len(rows) == 1 {
		return nil, apperrors.NewSchemaError("input has no data rows")
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	table, err := NewTable(df)
	if err != nil {
		return nil, err
	}
	if err := CheckSchema(table); err != nil {
		return nil, err
	}
	return table, nil
}

// normalizeHeader trims header cells, strips a UTF-8 BOM and names empty
// cells "Unnamed: <index>".
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("%s%d", unnamedPrefix, i)
		}
		header[i] = name
	}
	return header
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// CheckSchema fails with a schema error naming every required column the
// table lacks.
func CheckSchema(t *Table) error {
	var missing []string
	for _, name := range domain.RequiredColumns {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// isUnnamed reports whether a column name is a placeholder for an empty
// header cell.
func isUnnamed(name string) bool {
	return strings.HasPrefix(name, unnamedPrefix)
}
