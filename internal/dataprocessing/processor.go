package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/go-playground/validator/v10"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// missingMarker is how gota renders a missing cell
const missingMarker = "NaN"

var (
	// ramPattern matches "8GB" and an already cleaned "8"
	ramPattern = regexp.MustCompile(`^\s*(\d+)\s*(?i:GB)?\s*$`)
	// cpuRatePattern matches "2.3GHz" and a plain "2.3"
	cpuRatePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?|\.\d+)\s*(?i:GHz)?\s*$`)
)

// CleanStats reports what a cleaning pass changed
type CleanStats struct {
	Rows           int
	DroppedColumns []string
	// FilledStorage counts the missing storage cells replaced by 0, per column
	FilledStorage map[string]int
}

// Cleaner normalizes a raw laptop table. It is stateless apart from its
// logger and validator, so one Cleaner may be shared.
type Cleaner struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewCleaner creates a Cleaner
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:   logger,
		validate: newLaptopValidator(),
	}
}

// newLaptopValidator returns a validator that also knows the "nonnegative"
// tag, which accepts NaN for missing values.
func newLaptopValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// only fails for a tag registered twice or an empty name
	_ = v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.IsNaN(f) || f >= 0
	})
	return v
}

// Clean returns a cleaned copy of t:
//   - placeholder "Unnamed: N" columns are dropped
//   - Ram loses its "GB" suffix and becomes an int column
//   - Cpu Rate loses its "GHz" suffix and becomes a float column
//   - the storage columns have missing cells replaced by 0 and become int
//   - Inches and Price_euros become float columns; missing cells stay NaN
//   - any other column whose every present value is numeric is typed as such
//
// Cleaning a cleaned table yields an equal table.
func (c *Cleaner) Clean(ctx context.Context, t *Table) (*Table, error) {
	clean, _, err := c.CleanWithStats(ctx, t)
	return clean, err
}

// CleanWithStats is Clean that also reports what it changed
func (c *Cleaner) CleanWithStats(ctx context.Context, t *Table) (*Table, CleanStats, error) {
	stats := CleanStats{Rows: t.Nrow(), FilledStorage: make(map[string]int)}

	if err := CheckSchema(t); err != nil {
		return nil, stats, err
	}

	var cols []series.Series
	for _, name := range t.Names() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if isUnnamed(name) {
			stats.DroppedColumns = append(stats.DroppedColumns, name)
			continue
		}

		if kept, ok := keepTyped(name, t.df.Col(name)); ok {
			if isStorage(name) {
				stats.FilledStorage[name] = 0
			}
			cols = append(cols, kept)
			continue
		}

		cells, err := t.Strings(name)
		if err != nil {
			return nil, stats, err
		}

		var col series.Series
		switch {
		case name == domain.ColRam:
			col, err = parseUnitInts(name, cells, ramPattern)
		case name == domain.ColCPURate:
			col, err = parseUnitFloats(name, cells, cpuRatePattern)
		case isStorage(name):
			var filled int
			col, filled, err = parseStorage(name, cells)
			stats.FilledStorage[name] = filled
		case name == domain.ColInches, name == domain.ColPrice:
			col, err = parseOptionalFloats(name, cells)
		default:
			col = inferColumn(name, cells)
		}
		if err != nil {
			return nil, stats, err
		}
		cols = append(cols, col)
	}

	clean, err := NewTable(dataframe.New(cols...))
	if err != nil {
		return nil, stats, err
	}
	if err := c.validateRows(clean); err != nil {
		return nil, stats, err
	}

	c.logger.InfoContext(ctx, "Table cleaned",
		slog.Int("rows", stats.Rows),
		slog.Int("columns", len(cols)),
		slog.Any("dropped_columns", stats.DroppedColumns),
		slog.Any("filled_storage", stats.FilledStorage))

	return clean, stats, nil
}

// validateRows checks every cleaned record against the Laptop constraints
func (c *Cleaner) validateRows(t *Table) error {
	laptops, err := t.Laptops()
	if err != nil {
		return err
	}
	for i, l := range laptops {
		if err := c.validate.Struct(l); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("row %d is invalid", i+1), err).
				WithContext("row", i+1)
		}
	}
	return nil
}

func parseUnitInts(name string, cells []string, pattern *regexp.Regexp) (series.Series, error) {
	vals := make([]int, len(cells))
	for i, cell := range cells {
		m := pattern.FindStringSubmatch(cell)
		if m == nil {
			return series.Series{}, cellError(name, i, cell)
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return series.Series{}, cellError(name, i, cell)
		}
		vals[i] = v
	}
	return series.New(vals, series.Int, name), nil
}

func parseUnitFloats(name string, cells []string, pattern *regexp.Regexp) (series.Series, error) {
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		m := pattern.FindStringSubmatch(cell)
		if m == nil {
			return series.Series{}, cellError(name, i, cell)
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return series.Series{}, cellError(name, i, cell)
		}
		vals[i] = v
	}
	return series.New(vals, series.Float, name), nil
}

// parseStorage zero-fills missing cells and requires the rest to be
// non-negative whole numbers. It returns the number of filled cells.
func parseStorage(name string, cells []string) (series.Series, int, error) {
	vals := make([]int, len(cells))
	filled := 0
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == missingMarker || cell == "" {
			filled++
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil || f < 0 || math.IsInf(f, 0) || f != math.Trunc(f) {
			return series.Series{}, 0, cellError(name, i, cell)
		}
		vals[i] = int(f)
	}
	return series.New(vals, series.Int, name), filled, nil
}

// parseOptionalFloats types a numeric column whose missing cells stay NaN
func parseOptionalFloats(name string, cells []string) (series.Series, error) {
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == missingMarker || cell == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsInf(v, 0) {
			return series.Series{}, cellError(name, i, cell)
		}
		vals[i] = v
	}
	return series.New(vals, series.Float, name), nil
}

// keepTyped returns a copy of col when it already has the type cleaning
// would give it. Re-parsing the text form would round floats to gota's
// six decimals. Ram, Cpu Rate and the storage columns must also be complete.
func keepTyped(name string, col series.Series) (series.Series, bool) {
	typ := col.Type()
	switch {
	case name == domain.ColRam || isStorage(name):
		if typ != series.Int || col.HasNaN() {
			return series.Series{}, false
		}
	case name == domain.ColCPURate:
		if typ != series.Float || col.HasNaN() {
			return series.Series{}, false
		}
	case name == domain.ColInches || name == domain.ColPrice:
		if typ != series.Float {
			return series.Series{}, false
		}
	default:
		if typ != series.Int && typ != series.Float {
			return series.Series{}, false
		}
	}
	return col.Copy(), true
}

func isStorage(name string) bool {
	return slices.Contains(domain.StorageColumns, name)
}

// inferColumn types a column as int when every cell is an integer literal,
// as float when every present cell is a number and as text otherwise.
func inferColumn(name string, cells []string) series.Series {
	allInts, anyPresent := true, false
	ints := make([]int, len(cells))
	floats := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == missingMarker {
			allInts = false
			floats[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsInf(f, 0) {
			return series.New(cells, series.String, name)
		}
		anyPresent = true
		floats[i] = f
		if n, err := strconv.Atoi(cell); err == nil && allInts {
			ints[i] = n
		} else {
			allInts = false
		}
	}
	switch {
	case !anyPresent:
		return series.New(cells, series.String, name)
	case allInts:
		return series.New(ints, series.Int, name)
	default:
		return series.New(floats, series.Float, name)
	}
}

func cellError(column string, row int, value string) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("column %q row %d: unexpected value %q", column, row+1, value), nil).
		WithContext("column", column).
		WithContext("row", row+1)
}
