// Package exporter writes the results of an analysis run to disk.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility. ExportTable writes the cleaned dataset.
//
// WorkbookExporter: Writes an Excel report with the cleaned rows, the describe
// statistics, the correlation matrix, the price moments and one sheet per
// grouped price aggregation.
//
// SQLiteExporter: Writes a SQLite snapshot with the laptops, the describe
// statistics and the grouped means.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter("output", logger)
//	path, err := csvWriter.ExportTable("laptops_clean.csv", table, true)
//
//	err = exporter.NewWorkbookExporter(logger).Export("output/laptop_report.xlsx", table, summary, groupings)
//
// The source dataset is never modified.
package exporter
