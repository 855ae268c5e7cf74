package exporter

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptopstats/internal/dataprocessing"
)

const laptopsCSV = `Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros,
Apple,Ultrabook,13.3,8GB,2.3GHz,128,,,,1339.69,
HP,Notebook,15.6,8GB,2.5GHz,256,,,,575.00,
Dell,Gaming,15.6,16GB,2.8GHz,256,1000,,,1499.00,
`

func cleanTable(t *testing.T) *dataprocessing.Table {
	t.Helper()
	raw, err := dataprocessing.LoadCSV(strings.NewReader(laptopsCSV), ',')
	require.NoError(t, err)
	clean, err := dataprocessing.NewCleaner(nil).Clean(context.Background(), raw)
	require.NoError(t, err)
	return clean
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "zero value",
			input:    0.0,
			expected: "0",
		},
		{
			name:     "positive integer",
			input:    123.0,
			expected: "123",
		},
		{
			name:     "negative integer",
			input:    -456.0,
			expected: "-456",
		},
		{
			name:     "decimal with trailing zeros",
			input:    1339.690000,
			expected: "1339.69",
		},
		{
			name:     "small decimal",
			input:    0.001234,
			expected: "0.001234",
		},
		{
			name:     "missing",
			input:    math.NaN(),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatIntAndBool(t *testing.T) {
	assert.Equal(t, "1024", formatInt(1024))
	assert.Equal(t, "-1", formatInt(-1))
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}

func TestTableRecords(t *testing.T) {
	headers, rows := tableRecords(cleanTable(t))

	assert.Equal(t, []string{"Company", "TypeName", "Inches", "Ram", "Cpu Rate", "SSD", "HDD", "Flash Storage", "Hybrid", "Price_euros"}, headers)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Apple", "Ultrabook", "13.3", "8", "2.3", "128", "0", "0", "0", "1339.69"}, rows[0])
	assert.Equal(t, []string{"Dell", "Gaming", "15.6", "16", "2.8", "256", "1000", "0", "0", "1499"}, rows[2])
}

func nan() float64 { return math.NaN() }
