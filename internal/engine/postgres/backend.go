// Package postgres is a concrete engine.Backend adapter over pgx/v5. It
// supports native range-and-fetch-join pagination, so its
// PostponedFetchKind is engine.PostponedFetchNone: to-many fetches and
// orderings pass straight through to the relational engine.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lychee-technology/formapage/internal/engine"
)

// Pool is the slice of *pgxpool.Pool this adapter calls, narrowed to an
// interface so tests can substitute pgxmock's pool fake without this
// package depending on pgxmock itself.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend wraps a pgx connection pool, implementing engine.Backend.
type Backend struct {
	pool Pool
}

// New wraps an already-established pool. Callers own the pool's lifecycle
// (pgxpool.New / pool.Close); this adapter never creates or closes one.
func New(pool Pool) *Backend {
	return &Backend{pool: pool}
}

// CastAsString renders Postgres's "::text" cast shorthand.
func (b *Backend) CastAsString(expr string) string {
	return expr + "::text"
}

// IsAggregation treats any expression naming a SQL aggregate function as
// an aggregate, the same heuristic the selection and restriction builders
// need regardless of backend.
func (b *Backend) IsAggregation(expr string) bool {
	upper := strings.ToUpper(expr)
	for _, fn := range []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX(", "ARRAY_AGG(", "STRING_AGG("} {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

// PostponedFetchKind is None: the page engine sends fetch joins and the
// LIMIT/OFFSET range in the main query and never issues a secondary query
// for this backend.
func (b *Backend) PostponedFetchKind() engine.PostponedFetchKind {
	return engine.PostponedFetchNone
}

// Query executes sql against the pool and decodes every row into an
// engine.Row keyed by its resolved column name.
func (b *Backend) Query(ctx context.Context, sql string, args []any) ([]engine.Row, error) {
	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []engine.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: reading row values failed: %w", err)
		}
		row := make(engine.Row, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: row iteration failed: %w", err)
	}
	return result, nil
}

// QueryCount executes a COUNT(*) query and returns the scalar result.
func (b *Backend) QueryCount(ctx context.Context, sql string, args []any) (int, error) {
	var count int
	if err := b.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count query failed: %w", err)
	}
	return count, nil
}
