package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// laptopsCSV mirrors the raw dataset: unit suffixes, empty storage cells and
// a trailing delimiter that yields an unnamed column.
const laptopsCSV = `Company,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Price_euros,
Apple,Ultrabook,13.3,8GB,2.3GHz,128,,,,1339.69,
HP,Notebook,15.6,8GB,2.5GHz,256,,,,575.00,
Dell,Gaming,15.6,16GB,2.8GHz,256,1000,,,1499.00,
Apple,Ultrabook,13.3,16GB,3.1GHz,512,,,,2537.45,
Lenovo,Notebook,14.0,4GB,1.6GHz,,500,,,400.00,
`

func loadFixture(t *testing.T, data string) *Table {
	t.Helper()
	table, err := LoadCSV(strings.NewReader(data), ',')
	require.NoError(t, err)
	return table
}

func cleanFixture(t *testing.T) *Table {
	t.Helper()
	clean, err := NewCleaner(nil).Clean(context.Background(), loadFixture(t, laptopsCSV))
	require.NoError(t, err)
	return clean
}
