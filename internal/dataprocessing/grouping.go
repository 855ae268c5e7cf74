package dataprocessing

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// GroupOrder selects how grouped results are ordered
type GroupOrder int

const (
	// OrderByKey sorts numerically when the key column is numeric and
	// lexically otherwise
	OrderByKey GroupOrder = iota
	// OrderByMeanDesc sorts by descending mean, ties broken by key
	OrderByMeanDesc
)

// GroupMean returns the mean of value over the rows sharing each distinct
// key of by. Rows with a missing key or value are left out, so Count is the
// number of values averaged.
func GroupMean(t *Table, by, value string, order GroupOrder) ([]domain.GroupMean, error) {
	df, err := presentPairs(t, by, value)
	if err != nil {
		return nil, err
	}
	if df.Nrow() == 0 {
		return []domain.GroupMean{}, nil
	}

	agg := df.GroupBy(by).Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN, dataframe.Aggregation_COUNT},
		[]string{value, value},
	)
	if agg.Err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to group %q by %q", value, by), agg.Err)
	}

	meanCol, countCol := "", ""
	for _, name := range agg.Names() {
		switch name {
		case value + "_" + dataframe.Aggregation_MEAN.String():
			meanCol = name
		case value + "_" + dataframe.Aggregation_COUNT.String():
			countCol = name
		}
	}
	if meanCol == "" || countCol == "" {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("aggregation of %q produced no mean or count column", value))
	}

	numericKey := isNumericType(t.df.Col(by).Type())
	keys := agg.Col(by).Records()
	means := agg.Col(meanCol).Float()
	counts := agg.Col(countCol).Float()

	out := make([]domain.GroupMean, 0, len(keys))
	for i, key := range keys {
		if numericKey {
			key = formatNumericKey(key)
		}
		out = append(out, domain.GroupMean{Key: key, Count: int(counts[i]), Mean: means[i]})
	}
	sortGroups(out, numericKey, order)
	return out, nil
}

// GroupValues returns the present values of column value for each distinct
// key of by, with the keys in OrderByKey order. Keys without a present value
// are left out.
func GroupValues(t *Table, by, value string) ([]string, map[string][]float64, error) {
	df, err := presentPairs(t, by, value)
	if err != nil {
		return nil, nil, err
	}
	values := make(map[string][]float64)
	if df.Nrow() == 0 {
		return []string{}, values, nil
	}

	numericKey := isNumericType(t.df.Col(by).Type())
	groups := df.GroupBy(by)
	if groups.Err != nil {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to group by %q", by), groups.Err)
	}

	for _, g := range groups.GetGroups() {
		key := g.Col(by).Elem(0).String()
		if numericKey {
			key = formatNumericKey(key)
		}
		values[key] = append(values[key], present(g.Col(value).Float())...)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sortKeys(keys, numericKey)
	return keys, values, nil
}

// presentPairs returns the by and value columns of t restricted to the rows
// where both are present. gota cannot group on a missing key.
func presentPairs(t *Table, by, value string) (dataframe.DataFrame, error) {
	if _, err := t.Column(by); err != nil {
		return dataframe.DataFrame{}, err
	}
	if _, err := t.Column(value); err != nil {
		return dataframe.DataFrame{}, err
	}

	present := func(el series.Element) bool { return !el.IsNA() }
	df := t.df.Select([]string{by, value}).FilterAggregation(dataframe.And,
		dataframe.F{Colname: by, Comparator: series.CompFunc, Comparando: present},
		dataframe.F{Colname: value, Comparator: series.CompFunc, Comparando: present},
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, apperrors.NewParsingError(
			fmt.Sprintf("failed to select %q and %q", by, value), df.Err)
	}
	return df, nil
}

func sortGroups(groups []domain.GroupMean, numericKey bool, order GroupOrder) {
	slices.SortStableFunc(groups, func(a, b domain.GroupMean) int {
		if order == OrderByMeanDesc {
			if c := cmp.Compare(b.Mean, a.Mean); c != 0 {
				return c
			}
		}
		return compareKeys(a.Key, b.Key, numericKey)
	})
}

func sortKeys(keys []string, numericKey bool) {
	slices.SortFunc(keys, func(a, b string) int {
		return compareKeys(a, b, numericKey)
	})
}

func compareKeys(a, b string, numeric bool) int {
	if numeric {
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return cmp.Compare(fa, fb)
		}
	}
	return strings.Compare(a, b)
}

// formatNumericKey renders 15.600000 as 15.6 and 8 as 8
func formatNumericKey(key string) string {
	f, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return key
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isNumericType(t series.Type) bool {
	return t == series.Int || t == series.Float
}

// PriceDimensions are the columns the price is averaged over
var PriceDimensions = []string{domain.ColTypeName, domain.ColInches, domain.ColRam, domain.ColCompany}

// PriceGroupings returns the mean price per value of each of
// PriceDimensions. Company is ordered by descending mean, the others by key.
func PriceGroupings(t *Table) ([]domain.Grouping, error) {
	out := make([]domain.Grouping, 0, len(PriceDimensions))
	for _, dim := range PriceDimensions {
		order := OrderByKey
		if dim == domain.ColCompany {
			order = OrderByMeanDesc
		}
		groups, err := GroupMean(t, dim, domain.ColPrice, order)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Grouping{Dimension: dim, Groups: groups})
	}
	return out, nil
}
