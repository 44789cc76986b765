package engine

import (
	"fmt"
	"strings"
)

// assembledQuery is the plain-text SQL the page engine hands a backend's
// QueryExecutor, composed entirely from the selection/restriction/order
// builders' outputs — this package never builds an expression tree, only
// the string a relational backend consumes directly (the teacher's own
// style: raw SQL composition, not a query DSL).
type assembledQuery struct {
	selections   []Selection
	from         string
	fetchJoins   []string
	where        string
	having       string
	order        string
	distinct     bool
	forceGroupBy bool
	offset       int
	limit        int
}

func (q assembledQuery) render() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.distinct {
		b.WriteString("DISTINCT ")
	}
	for i, s := range q.selections {
		if i > 0 {
			b.WriteString(", ")
		}
		if s.Alias != "" {
			fmt.Fprintf(&b, "%s AS %s", s.Expression, s.Alias)
		} else {
			b.WriteString(s.Expression)
		}
	}
	fmt.Fprintf(&b, " FROM %s", q.from)
	for _, join := range q.fetchJoins {
		b.WriteString(" " + join)
	}
	if q.where != "" {
		fmt.Fprintf(&b, " WHERE %s", q.where)
	}
	if q.forceGroupBy {
		b.WriteString(" GROUP BY ")
		first := true
		for _, s := range q.selections {
			if isAggregateExpression(s.Expression) {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(s.Expression)
			first = false
		}
	}
	if q.having != "" {
		fmt.Fprintf(&b, " HAVING %s", q.having)
	}
	if q.order != "" {
		fmt.Fprintf(&b, " ORDER BY %s", q.order)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", q.limit, q.offset)
	}
	return b.String()
}

func isAggregateExpression(expr string) bool {
	upper := strings.ToUpper(expr)
	for _, fn := range []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX("} {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

func buildCountSQL(from, where string) string {
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", from)
	if where != "" {
		sql += " WHERE " + where
	}
	return sql
}
