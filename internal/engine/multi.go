package engine

import (
	"context"
	"sort"

	"github.com/lychee-technology/formapage"
)

// EntitySource is one entity type participating in a multi-entity search:
// its own page engine configuration plus a row mapper and a merge-key
// extractor used to deduplicate the same logical record surfaced by more
// than one source (the generalized form of the teacher's hot/warm/cold
// tier merge, keyed here by caller-supplied identity rather than a fixed
// tier ranking).
type EntitySource[E any] struct {
	Name       string
	Config     PageEngineConfig
	MapRow     RowMapper[E]
	MergeKey   func(E) string
	Precedence int // higher precedence wins when two sources report the same MergeKey
}

// MultiEntitySearch runs one page request across several entity sources
// that all project onto a common result type E, merges same-identity rows
// by precedence, and applies the request's pagination window to the
// merged, deterministically-ordered result — the cross-schema/federated
// search the single-entity GetPage doesn't cover.
func MultiEntitySearch[E any](
	ctx context.Context,
	sources []EntitySource[E],
	request formapage.PageRequest,
	less func(a, b E) bool,
) (formapage.PartialResultList[E], error) {
	merged := map[string]mergedRow[E]{}
	var keys []string

	for _, source := range sources {
		unbounded := formapage.PageRequest{
			Offset:   0,
			Limit:    request.Offset + request.Limit,
			Ordering: request.Ordering,
			Required: request.Required,
			Optional: request.Optional,
		}

		page, err := GetPage(ctx, source.Config, unbounded, false, false, nil, source.MapRow, nil, nil, PageHooks{})
		if err != nil {
			return formapage.PartialResultList[E]{}, err
		}

		for _, item := range page.Items {
			key := source.MergeKey(item)
			existing, ok := merged[key]
			if !ok {
				keys = append(keys, key)
			}
			if !ok || source.Precedence > existing.precedence {
				merged[key] = mergedRow[E]{value: item, precedence: source.Precedence}
			}
		}
	}

	rows := make([]E, 0, len(merged))
	for _, key := range keys {
		rows = append(rows, merged[key].value)
	}
	if less != nil {
		sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}

	start := request.Offset
	if start > len(rows) {
		start = len(rows)
	}
	end := start + request.Limit
	if end > len(rows) || request.Limit <= 0 {
		end = len(rows)
	}

	return formapage.PartialResultList[E]{
		Items:          rows[start:end],
		Offset:         request.Offset,
		EstimatedTotal: len(rows),
	}, nil
}

type mergedRow[E any] struct {
	value      E
	precedence int
}
