package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// LaptopsCSV is a small raw laptop dataset in the source layout: unit
// suffixes on Ram and Cpu Rate, empty storage cells and a trailing delimiter
// that leaves an unnamed 17th column.
const LaptopsCSV = `laptop_ID,Company,Product,TypeName,Inches,Ram,Cpu Rate,SSD,HDD,Flash Storage,Hybrid,Gpu,OpSys,Weight,Price_euros,Cpu,
1,Apple,MacBook Pro,Ultrabook,13.3,8GB,2.3GHz,128,,,,Intel Iris Plus Graphics 640,macOS,1.37kg,1339.69,Intel Core i5,
2,HP,250 G6,Notebook,15.6,8GB,2.5GHz,256,,,,Intel HD Graphics 620,No OS,1.86kg,575.00,Intel Core i5 7200U,
3,Dell,Inspiron 7577,Gaming,15.6,16GB,2.8GHz,256,1000,,,Nvidia GeForce GTX 1060,Windows 10,2.65kg,1499.00,Intel Core i7 7700HQ,
4,Apple,MacBook Pro,Ultrabook,15.4,16GB,3.1GHz,512,,,,AMD Radeon Pro 455,macOS,1.83kg,2537.45,Intel Core i7,
5,Lenovo,IdeaPad 320-15IKB,Notebook,14.0,4GB,1.6GHz,,500,,,Intel HD Graphics 620,No OS,2.2kg,400.00,Intel Celeron Dual Core N3350,
6,Asus,ROG Strix,Gaming,17.3,32GB,2.9GHz,1024,,,,Nvidia GeForce GTX 1080,Windows 10,4.14kg,2899.00,Intel Core i7 7820HK,
7,Acer,Aspire 1,Netbook,11.6,4GB,1.1GHz,,,32,,Intel HD Graphics 500,Windows 10,1.65kg,229.00,Intel Celeron Dual Core N3350,
8,Lenovo,Yoga 520,2 in 1 Convertible,14.0,8GB,2.5GHz,,,,1000,Intel HD Graphics 620,Windows 10,1.7kg,729.00,Intel Core i5 7200U,
`

// LaptopRows is the number of data rows in LaptopsCSV
const LaptopRows = 8

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteLaptopsCSV writes LaptopsCSV to dir/laptops.csv and returns the path
func WriteLaptopsCSV(t *testing.T, dir string) string {
	t.Helper()
	return WriteFile(t, dir, "laptops.csv", LaptopsCSV)
}

// ReadFile returns the content of path, failing the test on error
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
