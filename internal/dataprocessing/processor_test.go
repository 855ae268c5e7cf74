package dataprocessing

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

const header = "Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros\n"

func TestCleaner_Clean(t *testing.T) {
	clean, stats, err := NewCleaner(nil).CleanWithStats(context.Background(), loadFixture(t, laptopsCSV))
	require.NoError(t, err)

	assert.NotContains(t, clean.Names(), "Unnamed: 10")
	assert.Equal(t, []string{"Unnamed: 10"}, stats.DroppedColumns)
	assert.Equal(t, 5, clean.Nrow())

	ram, err := clean.Ints("Ram")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 8, 16, 16, 4}, ram)

	cpu, err := clean.Floats("Cpu Rate")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.3, 2.5, 2.8, 3.1, 1.6}, cpu, 1e-9)

	ssd, err := clean.Ints("SSD")
	require.NoError(t, err)
	assert.Equal(t, []int{128, 256, 256, 512, 0}, ssd)

	hdd, err := clean.Ints("HDD")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1000, 0, 500}, hdd)

	assert.Equal(t, map[string]int{"SSD": 1, "HDD": 3, "Flash Storage": 5, "Hybrid": 5}, stats.FilledStorage)

	for name, want := range map[string]series.Type{
		"Company":       series.String,
		"Inches":        series.Float,
		"Ram":           series.Int,
		"Cpu Rate":      series.Float,
		"Flash Storage": series.Int,
		"Price_euros":   series.Float,
	} {
		got, err := clean.ColumnType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestCleaner_Idempotent(t *testing.T) {
	cleaner := NewCleaner(nil)
	once := cleanFixture(t)

	twice, err := cleaner.Clean(context.Background(), once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestCleaner_IdempotentKeepsPrecision(t *testing.T) {
	data := header +
		"Acme,Notebook,15.6,8GB,2.3456789GHz,256,,,,575.1234567\n" +
		"Acme,Gaming,,16GB,3.1GHz,512,,,,\n"
	cleaner := NewCleaner(nil)
	once, err := cleaner.Clean(context.Background(), loadFixture(t, data))
	require.NoError(t, err)

	twice, err := cleaner.Clean(context.Background(), once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))

	for _, tbl := range []*Table{once, twice} {
		cpu, err := tbl.Floats("Cpu Rate")
		require.NoError(t, err)
		assert.Equal(t, 2.3456789, cpu[0])

		prices, err := tbl.Floats("Price_euros")
		require.NoError(t, err)
		assert.Equal(t, 575.1234567, prices[0])
		assert.True(t, math.IsNaN(prices[1]))
	}
}

func TestTable_EqualComparesTypedValues(t *testing.T) {
	cleaner := NewCleaner(nil)
	clean := func(price string) *Table {
		table, err := cleaner.Clean(context.Background(),
			loadFixture(t, header+"Acme,Notebook,15.6,8GB,2.5GHz,256,,,,"+price+"\n"))
		require.NoError(t, err)
		return table
	}

	assert.True(t, clean("575.1234567").Equal(clean("575.1234567")))
	assert.False(t, clean("575.1234567").Equal(clean("575.1234568")), "differs past six decimals")
	assert.True(t, clean("").Equal(clean("")), "NaN equals NaN")
	assert.False(t, clean("575").Equal(clean("")))
	assert.False(t, clean("575").Equal(nil))
	assert.False(t, clean("575").Equal(cleanFixture(t)))
}

func TestCleaner_ValueFormats(t *testing.T) {
	tests := []struct {
		name string
		ram  string
		cpu  string
		want int
		rate float64
	}{
		{name: "suffixed", ram: "8GB", cpu: "2.3GHz", want: 8, rate: 2.3},
		{name: "already numeric", ram: "32", cpu: "3", want: 32, rate: 3},
		{name: "lower case units", ram: "12gb", cpu: "1.10ghz", want: 12, rate: 1.1},
		{name: "padded", ram: " 64GB ", cpu: " .9GHz", want: 64, rate: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := header + "Acme,Notebook,15.6," + tt.ram + "," + tt.cpu + ",256,,,,999\n"
			clean, err := NewCleaner(nil).Clean(context.Background(), loadFixture(t, data))
			require.NoError(t, err)

			ram, err := clean.Ints("Ram")
			require.NoError(t, err)
			assert.Equal(t, []int{tt.want}, ram)

			cpu, err := clean.Floats("Cpu Rate")
			require.NoError(t, err)
			assert.InDelta(t, tt.rate, cpu[0], 1e-9)
		})
	}
}

func TestCleaner_Errors(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		errType apperrors.ErrorType
		message string
	}{
		{
			name:    "ram with decimal",
			row:     "Acme,Notebook,15.6,8.5GB,2GHz,256,,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `column "Ram"`,
		},
		{
			name:    "ram in terabytes",
			row:     "Acme,Notebook,15.6,1TB,2GHz,256,,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `"1TB"`,
		},
		{
			name:    "negative ram",
			row:     "Acme,Notebook,15.6,-8GB,2GHz,256,,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `column "Ram"`,
		},
		{
			name:    "missing cpu rate",
			row:     "Acme,Notebook,15.6,8GB,,256,,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `column "Cpu Rate"`,
		},
		{
			name:    "fractional storage",
			row:     "Acme,Notebook,15.6,8GB,2GHz,256.5,,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `column "SSD"`,
		},
		{
			name:    "negative storage",
			row:     "Acme,Notebook,15.6,8GB,2GHz,,-1,,,999",
			errType: apperrors.ErrTypeParsing,
			message: `column "HDD"`,
		},
		{
			name:    "text price",
			row:     "Acme,Notebook,15.6,8GB,2GHz,256,,,,cheap",
			errType: apperrors.ErrTypeParsing,
			message: `column "Price_euros"`,
		},
		{
			name:    "negative price",
			row:     "Acme,Notebook,15.6,8GB,2GHz,256,,,,-5",
			errType: apperrors.ErrTypeValidation,
			message: "row 1",
		},
		{
			name:    "negative inches",
			row:     "Acme,Notebook,-15.6,8GB,2GHz,256,,,,999",
			errType: apperrors.ErrTypeValidation,
			message: "row 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCleaner(nil).Clean(context.Background(), loadFixture(t, header+tt.row+"\n"))
			require.Error(t, err)
			assert.Equal(t, tt.errType, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCleaner_KeepsIncompleteRows(t *testing.T) {
	data := header +
		",Notebook,15.6,8GB,2.5GHz,256,,,,575\n" +
		"HP,,14.0,4GB,1.6GHz,,500,,,400\n" +
		"Dell,Gaming,15.6,16GB,2.8GHz,256,1000,,,0\n" +
		"Dell,Gaming,,16GB,2.8GHz,256,,,,\n" +
		"Asus,Notebook,17.3,8GB,2.0GHz,512,,,,700\n"

	clean, err := NewCleaner(nil).Clean(context.Background(), loadFixture(t, data))
	require.NoError(t, err)
	require.Equal(t, 5, clean.Nrow())

	laptops, err := clean.Laptops()
	require.NoError(t, err)
	assert.Empty(t, laptops[0].Company)
	assert.Empty(t, laptops[1].TypeName)
	assert.Equal(t, 0.0, laptops[2].PriceEuros)
	assert.True(t, math.IsNaN(laptops[3].Inches))
	assert.True(t, math.IsNaN(laptops[3].PriceEuros))

	summary, err := Analyze(clean)
	require.NoError(t, err)
	for _, cs := range summary.Describe {
		switch cs.Column {
		case "Price_euros", "Inches":
			assert.Equal(t, 4, cs.Count, cs.Column)
		}
	}

	byBrand, err := GroupMean(clean, "Company", "Price_euros", OrderByMeanDesc)
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupMean{
		{Key: "Asus", Count: 1, Mean: 700},
		{Key: "HP", Count: 1, Mean: 400},
		{Key: "Dell", Count: 1, Mean: 0},
	}, byBrand, "missing company and missing price are left out")

	keys, values, err := GroupValues(clean, "TypeName", "Price_euros")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gaming", "Notebook"}, keys)
	assert.Equal(t, []float64{0}, values["Gaming"])
	assert.ElementsMatch(t, []float64{575, 700}, values["Notebook"])
}

func TestCleaner_InfersOtherColumns(t *testing.T) {
	data := "laptop_ID,Weight,Score," + strings.TrimSuffix(header, "\n") + "\n" +
		"1,1.37kg,7.5,Apple,Ultrabook,13.3,8GB,2.3GHz,128,,,,1339.69\n" +
		"2,1.86kg,,HP,Notebook,15.6,8GB,2.5GHz,256,,,,575\n"
	clean, err := NewCleaner(nil).Clean(context.Background(), loadFixture(t, data))
	require.NoError(t, err)

	for name, want := range map[string]series.Type{
		"laptop_ID": series.Int,
		"Weight":    series.String,
		"Score":     series.Float,
	} {
		got, err := clean.ColumnType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	assert.Contains(t, clean.NumericColumns(), "laptop_ID")
	assert.NotContains(t, clean.NumericColumns(), "Weight")
}

func TestCleaner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCleaner(nil).Clean(ctx, loadFixture(t, laptopsCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTable_Laptops(t *testing.T) {
	laptops, err := cleanFixture(t).Laptops()
	require.NoError(t, err)
	require.Len(t, laptops, 5)

	dell := laptops[2]
	assert.Equal(t, "Dell", dell.Company)
	assert.Equal(t, "Gaming", dell.TypeName)
	assert.Equal(t, 16, dell.RamGB)
	assert.Equal(t, 1256, dell.TotalStorage())
	assert.InDelta(t, 1499.0, dell.PriceEuros, 1e-9)
}
