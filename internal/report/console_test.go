package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"laptopstats/pkg/contracts/domain"
)

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		Rows: 3,
		Describe: []domain.ColumnStats{
			{Column: "Ram", Count: 3, Mean: 10.666667, Std: 4.618802, Min: 8, Q25: 8, Median: 8, Q75: 12, Max: 16},
			{Column: "Price_euros", Count: 3, Mean: 1137.896667, Std: 487.2, Min: 575, Q25: 957.345, Median: 1339.69, Q75: 1419.345, Max: 1499},
		},
		Correlation: domain.CorrelationMatrix{
			Columns: []string{"Ram", "Price_euros"},
			Values:  [][]float64{{1, 0.63}, {0.63, 1}},
		},
		Price: domain.DistributionShape{Column: "Price_euros", Kurtosis: -1.5, Skewness: -0.6213},
	}
}

func TestConsole_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).PrintSummary(sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "=== Descriptive Statistics ===")
	assert.Contains(t, out, "=== Correlation Matrix ===")
	assert.Contains(t, out, "Price_euros")
	assert.Contains(t, out, "1339.690000")
	assert.Contains(t, out, "0.630000")
	assert.Contains(t, out, "Price Kurtosis: -1.5\n")
	assert.Contains(t, out, "Price Skewness: -0.6213\n")
	assert.NotContains(t, out, "\x1b[", "colour disabled")

	// statistics come before the moments
	assert.Less(t, strings.Index(out, "Descriptive"), strings.Index(out, "Price Kurtosis"))
	assert.Less(t, strings.Index(out, "Price Kurtosis"), strings.Index(out, "Price Skewness"))
}

func TestConsole_Colored(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).PrintShape(domain.DistributionShape{Kurtosis: 1, Skewness: 2})
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestConsole_PrintGroupings(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).PrintGroupings([]domain.Grouping{{
		Dimension: "Ram",
		Groups:    []domain.GroupMean{{Key: "8", Count: 2, Mean: 957.345}, {Key: "16", Count: 1, Mean: 1499}},
	}})
	out := buf.String()

	assert.Contains(t, out, "Average Price by Ram")
	assert.Contains(t, out, "957.345000")
	assert.Less(t, strings.Index(out, "957.345000"), strings.Index(out, "1499.000000"))
}

func TestConsole_PrintOutputs(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.PrintOutputs(nil)
	assert.Empty(t, buf.String())

	c.PrintOutputs([]string{"output/price_by_ram.png"})
	assert.Contains(t, buf.String(), "output/price_by_ram.png")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NaN", formatStat(math.NaN()))
	assert.Equal(t, "2.500000", formatStat(2.5))
	assert.Equal(t, "nan", formatFull(math.NaN()))
	assert.Equal(t, "4.356", formatFull(4.356))
}
