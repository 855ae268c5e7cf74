// Package report prints the analysis results to a terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"laptopstats/pkg/contracts/domain"
)

// Console writes tables and section headers to w
type Console struct {
	w       io.Writer
	heading *color.Color
	label   *color.Color
}

// NewConsole creates a Console. Colour is used only when colored is set.
func NewConsole(w io.Writer, colored bool) *Console {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)
	if colored {
		heading.EnableColor()
		label.EnableColor()
	} else {
		heading.DisableColor()
		label.DisableColor()
	}
	return &Console{w: w, heading: heading, label: label}
}

// PrintSummary prints the describe table, the correlation matrix and the
// price kurtosis and skewness, in that order.
func (c *Console) PrintSummary(s *domain.Summary) {
	c.PrintDescribe(s.Describe)
	c.PrintCorrelation(s.Correlation)
	c.PrintShape(s.Price)
}

// PrintDescribe prints one row per statistic and one column per numeric
// column.
func (c *Console) PrintDescribe(describe []domain.ColumnStats) {
	c.heading.Fprintln(c.w, "\n=== Descriptive Statistics ===")

	header := []string{""}
	for _, cs := range describe {
		header = append(header, cs.Column)
	}
	table := c.newTable(header)

	rows := []struct {
		name string
		get  func(domain.ColumnStats) float64
	}{
		{"count", func(cs domain.ColumnStats) float64 { return float64(cs.Count) }},
		{"mean", func(cs domain.ColumnStats) float64 { return cs.Mean }},
		{"std", func(cs domain.ColumnStats) float64 { return cs.Std }},
		{"min", func(cs domain.ColumnStats) float64 { return cs.Min }},
		{"25%", func(cs domain.ColumnStats) float64 { return cs.Q25 }},
		{"50%", func(cs domain.ColumnStats) float64 { return cs.Median }},
		{"75%", func(cs domain.ColumnStats) float64 { return cs.Q75 }},
		{"max", func(cs domain.ColumnStats) float64 { return cs.Max }},
	}
	for _, r := range rows {
		line := []string{r.name}
		for _, cs := range describe {
			line = append(line, formatStat(r.get(cs)))
		}
		table.Append(line)
	}
	table.Render()
}

// PrintCorrelation prints the correlation matrix
func (c *Console) PrintCorrelation(corr domain.CorrelationMatrix) {
	c.heading.Fprintln(c.w, "\n=== Correlation Matrix ===")

	table := c.newTable(append([]string{""}, corr.Columns...))
	for i, name := range corr.Columns {
		line := []string{name}
		for _, v := range corr.Values[i] {
			line = append(line, formatStat(v))
		}
		table.Append(line)
	}
	table.Render()
}

// PrintShape prints the kurtosis and skewness lines
func (c *Console) PrintShape(shape domain.DistributionShape) {
	fmt.Fprintln(c.w)
	c.label.Fprint(c.w, "Price Kurtosis:")
	fmt.Fprintf(c.w, " %s\n", formatFull(shape.Kurtosis))
	c.label.Fprint(c.w, "Price Skewness:")
	fmt.Fprintf(c.w, " %s\n", formatFull(shape.Skewness))
}

// PrintGroupings prints one small table per grouped aggregation
func (c *Console) PrintGroupings(groupings []domain.Grouping) {
	for _, g := range groupings {
		c.heading.Fprintf(c.w, "\n=== Average Price by %s ===\n", g.Dimension)
		table := c.newTable([]string{g.Dimension, "Count", "Mean Price (EUR)"})
		for _, gm := range g.Groups {
			table.Append([]string{gm.Key, strconv.Itoa(gm.Count), formatStat(gm.Mean)})
		}
		table.Render()
	}
}

// PrintOutputs lists the files written by the run
func (c *Console) PrintOutputs(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.heading.Fprintln(c.w, "\n=== Output Files ===")
	for _, p := range paths {
		fmt.Fprintf(c.w, "  %s\n", p)
	}
}

func (c *Console) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoWrapText(false)
	return table
}

// formatStat renders a table cell with six decimals like a pandas frame
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatFull renders v with the shortest exact representation
func formatFull(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
