package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "laptopstats/internal/errors"
	"laptopstats/pkg/contracts/domain"
)

const sqliteSchema = `
CREATE TABLE laptops (
	id            INTEGER PRIMARY KEY,
	company       TEXT,
	type_name     TEXT,
	inches        REAL,
	ram_gb        INTEGER NOT NULL,
	cpu_rate_ghz  REAL NOT NULL,
	ssd           INTEGER NOT NULL,
	hdd           INTEGER NOT NULL,
	flash_storage INTEGER NOT NULL,
	hybrid        INTEGER NOT NULL,
	price_euros   REAL
);
CREATE TABLE price_summary (
	column_name TEXT PRIMARY KEY,
	count       INTEGER NOT NULL,
	mean        REAL,
	std         REAL,
	min         REAL,
	q25         REAL,
	median      REAL,
	q75         REAL,
	max         REAL
);
CREATE TABLE price_groups (
	dimension  TEXT NOT NULL,
	group_key  TEXT NOT NULL,
	count      INTEGER NOT NULL,
	mean_price REAL,
	PRIMARY KEY (dimension, group_key)
);
CREATE INDEX idx_laptops_company ON laptops(company);
CREATE INDEX idx_laptops_type_name ON laptops(type_name);
`

// SQLiteExporter writes a queryable snapshot of the cleaned dataset
type SQLiteExporter struct {
	logger *slog.Logger
}

// NewSQLiteExporter creates a SQLiteExporter
func NewSQLiteExporter(logger *slog.Logger) *SQLiteExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteExporter{logger: logger}
}

// Export replaces the database at path with the laptops, the describe
// statistics and the grouped means, all in one transaction.
func (e *SQLiteExporter) Export(ctx context.Context, path string, laptops []domain.Laptop, summary *domain.Summary, groupings []domain.Grouping) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError(fmt.Sprintf("failed to replace %s", path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return apperrors.NewStorageError("failed to create schema", err)
	}
	if err := insertLaptops(ctx, tx, laptops); err != nil {
		return err
	}
	if err := insertSummary(ctx, tx, summary.Describe); err != nil {
		return err
	}
	if err := insertGroups(ctx, tx, groupings); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit snapshot", err)
	}

	e.logger.InfoContext(ctx, "SQLite snapshot written",
		slog.String("path", path),
		slog.Int("laptops", len(laptops)),
		slog.Int("summary_rows", len(summary.Describe)))
	return nil
}

func insertLaptops(ctx context.Context, tx *sql.Tx, laptops []domain.Laptop) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO laptops
		(id, company, type_name, inches, ram_gb, cpu_rate_ghz, ssd, hdd, flash_storage, hybrid, price_euros)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("failed to prepare laptop insert", err)
	}
	defer stmt.Close()

	for i, l := range laptops {
		if _, err := stmt.ExecContext(ctx, i+1, nullString(l.Company), nullString(l.TypeName),
			nullFloat(l.Inches), l.RamGB, l.CPURateGHz,
			l.SSD, l.HDD, l.FlashStorage, l.Hybrid, nullFloat(l.PriceEuros)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to insert laptop %d", i+1), err)
		}
	}
	return nil
}

func insertSummary(ctx context.Context, tx *sql.Tx, describe []domain.ColumnStats) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_summary
		(column_name, count, mean, std, min, q25, median, q75, max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("failed to prepare summary insert", err)
	}
	defer stmt.Close()

	for _, cs := range describe {
		if _, err := stmt.ExecContext(ctx, cs.Column, cs.Count,
			nullFloat(cs.Mean), nullFloat(cs.Std), nullFloat(cs.Min),
			nullFloat(cs.Q25), nullFloat(cs.Median), nullFloat(cs.Q75), nullFloat(cs.Max)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to insert summary for %s", cs.Column), err)
		}
	}
	return nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, groupings []domain.Grouping) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_groups
		(dimension, group_key, count, mean_price) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("failed to prepare group insert", err)
	}
	defer stmt.Close()

	for _, g := range groupings {
		for _, gm := range g.Groups {
			if _, err := stmt.ExecContext(ctx, g.Dimension, gm.Key, gm.Count, nullFloat(gm.Mean)); err != nil {
				return apperrors.NewStorageError(fmt.Sprintf("failed to insert group %s=%s", g.Dimension, gm.Key), err)
			}
		}
	}
	return nil
}

// nullFloat stores NaN and infinities as NULL
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// nullString stores an empty string as NULL
func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
