package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "laptopstats/internal/errors"
)

func TestLoadCSV(t *testing.T) {
	table := loadFixture(t, laptopsCSV)

	assert.Equal(t, 5, table.Nrow())
	assert.Contains(t, table.Names(), "Unnamed: 10")
	assert.Equal(t, "Company", table.Names()[0])

	ram, err := table.Strings("Ram")
	require.NoError(t, err)
	assert.Equal(t, []string{"8GB", "8GB", "16GB", "16GB", "4GB"}, ram)

	ssd, err := table.Strings("SSD")
	require.NoError(t, err)
	assert.Equal(t, "NaN", ssd[4], "empty cells load as missing")
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		errType apperrors.ErrorType
		message string
	}{
		{
			name:    "empty input",
			data:    "",
			errType: apperrors.ErrTypeSchema,
			message: "no header row",
		},
		{
			name:    "header only",
			data:    "Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros\n",
			errType: apperrors.ErrTypeSchema,
			message: "no data rows",
		},
		{
			name:    "missing columns",
			data:    "Company,Ram,Price_euros\nApple,8GB,1000\n",
			errType: apperrors.ErrTypeSchema,
			message: "Cpu Rate",
		},
		{
			name:    "row wider than header",
			data:    "Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros\nA,B,1,8GB,2GHz,1,,,,10,extra\n",
			errType: apperrors.ErrTypeSchema,
			message: "row 2 has 11 fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.data), ',')
			require.Error(t, err)
			assert.Equal(t, tt.errType, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadCSV_ShortRowsPadded(t *testing.T) {
	data := "Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros\n" +
		"Acer,Notebook,15.6,4GB,2GHz,,500\n" +
		",,,,,,,,,\n"
	table := loadFixture(t, data)
	assert.Equal(t, 1, table.Nrow(), "blank rows are skipped")

	price, err := table.Strings("Price_euros")
	require.NoError(t, err)
	assert.Equal(t, []string{"NaN"}, price)
}

func TestLoadCSV_Delimiter(t *testing.T) {
	data := strings.ReplaceAll(laptopsCSV, ",", ";")
	table, err := LoadCSV(strings.NewReader(data), ';')
	require.NoError(t, err)
	assert.Equal(t, 5, table.Nrow())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "laptops.csv")
		require.NoError(t, os.WriteFile(path, []byte("\ufeff"+laptopsCSV), 0644))

		table, err := LoadFile(path, LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 5, table.Nrow())
		assert.True(t, table.HasColumn("Company"), "BOM is stripped from the first header")
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "laptops.xlsx")
		f := excelize.NewFile()
		rows := [][]interface{}{
			{"Company", "TypeName", "Inches", "Ram", "Cpu Rate", "SSD", "HDD", "Flash Storage", "Hybrid", "Price_euros"},
			{"Asus", "Notebook", "15.6", "8GB", "2.5GHz", "256", nil, nil, nil, "699"},
			{"MSI", "Gaming", "17.3", "16GB", "2.8GHz", "512", "1000", nil, nil, "1799"},
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
		}
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		table, err := LoadFile(path, LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, table.Nrow())

		hybrid, err := table.Strings("Hybrid")
		require.NoError(t, err)
		assert.Equal(t, []string{"NaN", "NaN"}, hybrid)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.csv"), LoadOptions{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFile(dir, LoadOptions{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
	})
}
