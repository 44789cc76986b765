package formapage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// EntityID is the generic entity identifier type. The field-path name "id"
// always resolves to a value of this type (§3).
type EntityID = uuid.UUID

// Ordering is one (field-path, ascending?) pair in a page request's sort
// sequence. The first entry of a PageRequest's Ordering slice is the
// primary sort key.
type Ordering struct {
	Field     string
	Ascending bool
}

// PageRequest is the declarative input to GetPage: a pagination range, an
// ordering sequence, and two criteria maps. Required criteria are
// semantically conjunctive; optional criteria are disjunctive among
// themselves and conjoined with the required set.
//
// A field-path is a dot-separated sequence of attribute names; a leading
// '@' marks an explicit join; the name "id" always refers to the entity's
// identifier.
type PageRequest struct {
	Offset   int
	Limit    int
	Ordering []Ordering
	Required map[string]Criteria
	Optional map[string]Criteria
}

// PartialResultList is GetPage's output: a bounded result slice, the
// offset it was read from, and an estimated total row count.
// EstimatedTotal is -1 when it was not computed.
type PartialResultList[E any] struct {
	Items          []E
	Offset         int
	EstimatedTotal int
}

// Canonical returns a stable textual form of the page request: offset,
// limit, and ordering in request order, then required then optional
// criteria in a total order over field paths. It is independent of Go map
// iteration order, so it can serve as a cache region key (§6).
func (r PageRequest) Canonical() string {
	var b strings.Builder
	fmt.Fprintf(&b, "o=%d;l=%d;order=[", r.Offset, r.Limit)
	for i, ord := range r.Ordering {
		if i > 0 {
			b.WriteByte(',')
		}
		dir := "asc"
		if !ord.Ascending {
			dir = "desc"
		}
		fmt.Fprintf(&b, "%s:%s", ord.Field, dir)
	}
	b.WriteString("];")
	writeCanonicalCriteriaMap(&b, "required", r.Required)
	writeCanonicalCriteriaMap(&b, "optional", r.Optional)
	return b.String()
}

func writeCanonicalCriteriaMap(b *strings.Builder, label string, criteria map[string]Criteria) {
	fields := make([]string, 0, len(criteria))
	for field := range criteria {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fmt.Fprintf(b, "%s=[", label)
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%s:%s", field, canonicalCriteriaText(criteria[field]))
	}
	b.WriteString("];")
}

// canonicalCriteriaText renders a criteria-value's logical class plus its
// carried value(s), the two things its equality is defined over (§4.1).
func canonicalCriteriaText(c Criteria) string {
	if c == nil {
		return "nil"
	}
	return fmt.Sprintf("%T%+v", c, c)
}
