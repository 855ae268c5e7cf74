package exporter

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"

	"laptopstats/internal/dataprocessing"
)

// formatFloat formats a float64 value for CSV output with the fewest digits
// that round-trip. Missing values are written as empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// tableRecords returns the header and the rows of t with numbers in their
// shortest form and missing cells empty.
func tableRecords(t *dataprocessing.Table) ([]string, [][]string) {
	headers := t.Names()
	cols := make([][]string, len(headers))
	for i, name := range headers {
		col := t.Frame().Col(name)
		switch col.Type() {
		case series.Float:
			vals := col.Float()
			cols[i] = make([]string, len(vals))
			for j, v := range vals {
				cols[i][j] = formatFloat(v)
			}
		case series.Bool:
			recs := col.Records()
			cols[i] = make([]string, len(recs))
			for j := range recs {
				if col.Elem(j).IsNA() {
					continue
				}
				b, err := col.Elem(j).Bool()
				if err != nil {
					cols[i][j] = recs[j]
					continue
				}
				cols[i][j] = formatBool(b)
			}
		default:
			recs := col.Records()
			cols[i] = make([]string, len(recs))
			for j, r := range recs {
				if col.Elem(j).IsNA() {
					continue
				}
				cols[i][j] = r
			}
		}
	}

	rows := make([][]string, t.Nrow())
	for r := range rows {
		row := make([]string, len(headers))
		for c := range headers {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return headers, rows
}
