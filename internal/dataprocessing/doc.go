// Package dataprocessing loads, cleans and analyses the laptop price dataset.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: reads a delimited file or an Excel workbook into a Table
// 2. Cleaner: validates the schema, strips unit suffixes, zero-fills storage
// 3. Analytics: descriptive statistics, correlation, distribution shape and
// grouped means
//
// A Table wraps a gota DataFrame. Every step returns a new Table; a cleaned
// Table is treated as read-only by the analytics and by the chart renderers,
// which may read it from several goroutines.
//
// # Usage
//
//	raw, err := dataprocessing.LoadFile("data.csv", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	clean, err := dataprocessing.NewCleaner(logger).Clean(ctx, raw)
//	if err != nil {
//	    return err
//	}
//	summary, err := dataprocessing.Analyze(clean)
//
// # Data Flow
//
//	CSV/XLSX → Parser → raw Table → Cleaner → clean Table → Analytics → Summary
//
// # Error Handling
//
// Failures are returned as *errors.AppError: NOT_FOUND for a missing file,
// SCHEMA for absent columns, PARSING for values that do not match their
// expected format and VALIDATION for rows that break the record constraints.
package dataprocessing
