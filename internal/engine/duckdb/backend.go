// Package duckdb is a concrete engine.Backend adapter over database/sql
// with the DuckDB driver. DuckDB's range functions cope poorly with a
// to-many fetch join expanded across a window, so this adapter forces
// engine.PostponedFetchSecondary: the page engine pages the driving rows
// first and resolves any to-many associations with a second, unbounded
// query it stitches back in memory.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/lychee-technology/formapage/internal/engine"
)

// Backend wraps a database/sql.DB opened with the "duckdb" driver.
type Backend struct {
	db *sql.DB
}

// Open opens dsn with the DuckDB driver and wraps the resulting handle.
func Open(dsn string) (*Backend, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open failed: %w", err)
	}
	return &Backend{db: db}, nil
}

// New wraps an already-open *sql.DB, letting a caller share one handle
// across adapters or inject a fake for tests.
func New(db *sql.DB) *Backend {
	return &Backend{db: db}
}

// Close releases the underlying handle.
func (b *Backend) Close() error {
	return b.db.Close()
}

// CastAsString renders DuckDB's CAST(... AS VARCHAR) form.
func (b *Backend) CastAsString(expr string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR)", expr)
}

func (b *Backend) IsAggregation(expr string) bool {
	upper := strings.ToUpper(expr)
	for _, fn := range []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX(", "LIST("} {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

// PostponedFetchKind is Secondary: see the package doc comment.
func (b *Backend) PostponedFetchKind() engine.PostponedFetchKind {
	return engine.PostponedFetchSecondary
}

// Query executes sql against the handle and decodes every row into an
// engine.Row keyed by its column name, using driver-reported column types
// to allocate scan destinations generically.
func (b *Backend) Query(ctx context.Context, query string, args []any) ([]engine.Row, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("duckdb: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("duckdb: reading columns failed: %w", err)
	}

	var result []engine.Row
	for rows.Next() {
		scanTargets := make([]any, len(columns))
		values := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("duckdb: scanning row failed: %w", err)
		}
		row := make(engine.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("duckdb: row iteration failed: %w", err)
	}
	return result, nil
}

// QueryCount executes a COUNT(*) query and returns the scalar result.
func (b *Backend) QueryCount(ctx context.Context, query string, args []any) (int, error) {
	var count int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("duckdb: count query failed: %w", err)
	}
	return count, nil
}
