package engine

import (
	"fmt"
	"strings"

	"github.com/lychee-technology/formapage"
)

// OrderBuilder is C8: translates an ordered sort sequence into an ORDER BY
// clause body, refusing to sort through a to-many path when the backend's
// postponed-fetch kind can't paginate across it.
type OrderBuilder struct {
	resolver Resolver
	backend  BackendFacade
}

func NewOrderBuilder(resolver Resolver, backend BackendFacade) *OrderBuilder {
	return &OrderBuilder{resolver: resolver, backend: backend}
}

// Build returns the rendered ORDER BY body (without the "ORDER BY"
// keyword), or "" both when there is nothing to sort by and when the
// requested window covers at most one row — sorting a single-row result is
// a wasted index scan (§4.8's micro-optimization).
func (b *OrderBuilder) Build(ordering []formapage.Ordering, offset, limit int) (string, error) {
	if limit == 1 {
		return "", nil
	}
	if len(ordering) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if b.resolver.IsToMany(ord.Field) && b.backend.PostponedFetchKind() != PostponedFetchNone {
			return "", formapage.NewUnsupportedOrderingError(ord.Field)
		}
		path, err := b.resolver.Get(ord.Field)
		if err != nil {
			if formapage.IsUnknownFieldError(err) {
				return "", formapage.NewUnknownFieldError(formapage.ErrCodeOrderUnknownField, ord.Field)
			}
			return "", err
		}
		dir := "ASC"
		if !ord.Ascending {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", path.Expr(), dir))
	}
	return strings.Join(parts, ", "), nil
}
