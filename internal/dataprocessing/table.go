package dataprocessing

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// Table is the in-memory laptop dataset
type Table struct {
	df dataframe.DataFrame
}

// NewTable wraps df, returning its load error if it has one
func NewTable(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, apperrors.NewParsingError("failed to build table", df.Err)
	}
	return &Table{df: df}, nil
}

// Frame returns the underlying DataFrame. Callers must not modify it.
func (t *Table) Frame() dataframe.DataFrame {
	return t.df
}

// Nrow returns the number of rows
func (t *Table) Nrow() int {
	return t.df.Nrow()
}

// Names returns the column names in file order
func (t *Table) Names() []string {
	return t.df.Names()
}

// HasColumn reports whether the table has a column called name
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.df.Names(), name)
}

// Column returns the named column
func (t *Table) Column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, apperrors.NewSchemaError(fmt.Sprintf("column %q not found", name))
	}
	return t.df.Col(name), nil
}

// Floats returns the named column as float64 values; missing or
// non-numeric cells are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Float(), nil
}

// Ints returns the named column as int values
func (t *Table) Ints(name string) ([]int, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	vals, err := col.Int()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("column %q is not integral", name), err)
	}
	return vals, nil
}

// Strings returns the named column's cells as text. Missing cells are "NaN".
func (t *Table) Strings(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Records(), nil
}

// NumericColumns returns the names of the int and float columns in file order
func (t *Table) NumericColumns() []string {
	var names []string
	for i, typ := range t.df.Types() {
		if typ == series.Int || typ == series.Float {
			names = append(names, t.df.Names()[i])
		}
	}
	return names
}

// ColumnType returns the gota type of the named column
func (t *Table) ColumnType(name string) (series.Type, error) {
	col, err := t.Column(name)
	if err != nil {
		return "", err
	}
	return col.Type(), nil
}

// Records returns the header followed by every row as text
func (t *Table) Records() [][]string {
	return t.df.Records()
}

// Equal reports whether both tables have the same column names, column
// types and cell values. Numeric cells are compared as float64, with NaN
// equal to NaN, so precision beyond the text form counts.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	if t.Nrow() != other.Nrow() ||
		!slices.Equal(t.df.Names(), other.df.Names()) ||
		!slices.Equal(t.df.Types(), other.df.Types()) {
		return false
	}
	for _, name := range t.df.Names() {
		a, b := t.df.Col(name), other.df.Col(name)
		if isNumericType(a.Type()) {
			if !slices.EqualFunc(a.Float(), b.Float(), sameFloat) {
				return false
			}
			continue
		}
		if !slices.Equal(a.Records(), b.Records()) {
			return false
		}
	}
	return true
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Laptops maps every row of a cleaned table onto domain.Laptop
func (t *Table) Laptops() ([]domain.Laptop, error) {
	companies, err := t.Strings(domain.ColCompany)
	if err != nil {
		return nil, err
	}
	types, err := t.Strings(domain.ColTypeName)
	if err != nil {
		return nil, err
	}
	inches, err := t.Floats(domain.ColInches)
	if err != nil {
		return nil, err
	}
	ram, err := t.Ints(domain.ColRam)
	if err != nil {
		return nil, err
	}
	cpu, err := t.Floats(domain.ColCPURate)
	if err != nil {
		return nil, err
	}
	storage := make([][]int, len(domain.StorageColumns))
	for i, name := range domain.StorageColumns {
		if storage[i], err = t.Ints(name); err != nil {
			return nil, err
		}
	}
	prices, err := t.Floats(domain.ColPrice)
	if err != nil {
		return nil, err
	}

	laptops := make([]domain.Laptop, t.Nrow())
	for i := range laptops {
		laptops[i] = domain.Laptop{
			Company:      presentOrEmpty(companies[i]),
			TypeName:     presentOrEmpty(types[i]),
			Inches:       inches[i],
			RamGB:        ram[i],
			CPURateGHz:   cpu[i],
			SSD:          storage[0][i],
			HDD:          storage[1][i],
			FlashStorage: storage[2][i],
			Hybrid:       storage[3][i],
			PriceEuros:   prices[i],
		}
	}
	return laptops, nil
}

func presentOrEmpty(cell string) string {
	if cell == missingMarker {
		return ""
	}
	return cell
}
