package engine

import (
	"context"

	"github.com/lychee-technology/formapage"
)

// PostponedFetchKind tells the page engine how a backend copes with
// pagination across a to-many fetch join: natively in one range query
// (None), via a batch-fetch hint issued alongside the main query (Batch),
// or by deferring the to-many collections to a secondary query the engine
// must stitch back onto each row in memory (Secondary).
type PostponedFetchKind string

const (
	PostponedFetchNone      PostponedFetchKind = "none"
	PostponedFetchBatch     PostponedFetchKind = "batch"
	PostponedFetchSecondary PostponedFetchKind = "secondary"
)

// BackendFacade is C5: the narrow slice of dialect and mapping knowledge
// the selection, restriction, and order builders need from a concrete
// backend. It embeds formapage.Dialect so criteria-values can cast through
// it directly.
type BackendFacade interface {
	formapage.Dialect

	// IsAggregation reports whether expression is (or contains) an
	// aggregate function call, forcing a GROUP BY when it appears in the
	// select list or drives a HAVING instead of a WHERE predicate.
	IsAggregation(expression string) bool
	PostponedFetchKind() PostponedFetchKind
}

// Row is one result row, keyed by selected column alias.
type Row map[string]any

// QueryExecutor is the minimal slice of query execution the page engine
// needs from a concrete adapter: run assembled SQL, get rows or a count
// back. It deliberately does not expose a query *builder* — SQL assembly
// is this package's job, not the adapter's.
type QueryExecutor interface {
	Query(ctx context.Context, sql string, args []any) ([]Row, error)
	QueryCount(ctx context.Context, sql string, args []any) (int, error)
}

// Backend is what GetPage is configured against: capability facade plus
// executor, usually the same concrete adapter implementing both.
type Backend interface {
	BackendFacade
	QueryExecutor
}
