package dataprocessing

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

// Analyze computes the descriptive statistics, the correlation matrix and the
// shape of the price distribution of a cleaned table.
func Analyze(t *Table) (*domain.Summary, error) {
	if t.Nrow() == 0 {
		return nil, apperrors.NewValidationError("cannot analyze an empty table", nil)
	}

	describe, err := Describe(t)
	if err != nil {
		return nil, err
	}
	corr, err := Correlation(t)
	if err != nil {
		return nil, err
	}
	shape, err := Shape(t, domain.ColPrice)
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		Rows:        t.Nrow(),
		Describe:    describe,
		Correlation: corr,
		Price:       shape,
	}, nil
}

// Describe returns count, mean, sample standard deviation, min, quartiles
// and max for every numeric column. Missing values are skipped.
func Describe(t *Table) ([]domain.ColumnStats, error) {
	var out []domain.ColumnStats
	for _, name := range t.NumericColumns() {
		vals, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		out = append(out, describeColumn(name, present(vals)))
	}
	return out, nil
}

func describeColumn(name string, x []float64) domain.ColumnStats {
	cs := domain.ColumnStats{Column: name, Count: len(x)}
	nan := math.NaN()
	if len(x) == 0 {
		cs.Mean, cs.Std, cs.Min, cs.Q25, cs.Median, cs.Q75, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return cs
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)

	cs.Mean = stat.Mean(x, nil)
	cs.Std = nan
	if len(x) > 1 {
		cs.Std = stat.StdDev(x, nil)
	}
	cs.Min = sorted[0]
	cs.Q25 = Quantile(sorted, 0.25)
	cs.Median = Quantile(sorted, 0.5)
	cs.Q75 = Quantile(sorted, 0.75)
	cs.Max = sorted[len(sorted)-1]
	return cs
}

// Quantile returns the p-quantile of sorted data by linear interpolation
// between the closest ranks, h = (n-1)p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Correlation returns the pairwise Pearson correlation matrix of the numeric
// columns. Each pair uses the rows where both values are present; a pair
// with fewer than two such rows or a constant column yields NaN.
func Correlation(t *Table) (domain.CorrelationMatrix, error) {
	names := t.NumericColumns()
	cols := make([][]float64, len(names))
	for i, name := range names {
		vals, err := t.Floats(name)
		if err != nil {
			return domain.CorrelationMatrix{}, err
		}
		cols[i] = vals
	}

	values := make([][]float64, len(names))
	for i := range values {
		values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r := pairCorrelation(cols[i], cols[j], i == j)
			values[i][j] = r
			values[j][i] = r
		}
	}
	return domain.CorrelationMatrix{Columns: names, Values: values}, nil
}

func pairCorrelation(a, b []float64, diagonal bool) float64 {
	var x, y []float64
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if diagonal {
		if stat.Variance(x, nil) == 0 {
			return math.NaN()
		}
		return 1
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

// Shape returns the excess (Fisher) kurtosis and the skewness of a numeric
// column using the population moments, without bias correction.
func Shape(t *Table, column string) (domain.DistributionShape, error) {
	vals, err := t.Floats(column)
	if err != nil {
		return domain.DistributionShape{}, err
	}
	x := present(vals)
	if len(x) == 0 {
		return domain.DistributionShape{}, apperrors.NewValidationError(
			fmt.Sprintf("column %q has no values", column), nil)
	}
	kurt, skew := Moments(x)
	return domain.DistributionShape{Column: column, Kurtosis: kurt, Skewness: skew}, nil
}

// Moments returns the biased excess kurtosis m4/m2² - 3 and the biased
// skewness m3/m2^1.5 of x. Both are NaN for constant data.
func Moments(x []float64) (kurtosis, skewness float64) {
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return math.NaN(), math.NaN()
	}
	m3 := stat.Moment(3, x, nil)
	m4 := stat.Moment(4, x, nil)
	return m4/(m2*m2) - 3, m3 / math.Pow(m2, 1.5)
}

// present drops NaN values
func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
