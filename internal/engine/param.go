package engine

import (
	"strconv"
	"strings"

	"github.com/lychee-technology/formapage"
)

// ParamBuilder is C4: a single-query-scoped parameter list. Each Create
// call registers a bound value and hands back the positional placeholder
// pgx and duckdb-go both expect ($1, $2, …); the sanitized prefix is kept
// purely for the named-parameter label a log line or EXPLAIN trace might
// want, not for the placeholder text itself.
type ParamBuilder struct {
	prefix   string
	names    []string
	bindings []any
}

// NewParamBuilder scopes a parameter builder to one query, deriving a
// readable label prefix from the root entity name.
func NewParamBuilder(prefix string) *ParamBuilder {
	return &ParamBuilder{prefix: sanitizePrefix(prefix)}
}

func sanitizePrefix(prefix string) string {
	sanitized := strings.ReplaceAll(prefix, ".", "$")
	return strings.TrimSuffix(sanitized, "_")
}

// Create registers value and returns its positional placeholder.
func (p *ParamBuilder) Create(value any) formapage.ParamRef {
	index := len(p.bindings)
	p.names = append(p.names, p.prefix+strconv.Itoa(index))
	p.bindings = append(p.bindings, value)
	return formapage.ParamRef("$" + strconv.Itoa(index+1))
}

// Bindings returns the bound values in creation order, the flat argument
// slice a driver call expects alongside the assembled SQL text.
func (p *ParamBuilder) Bindings() []any {
	return p.bindings
}

// Names returns the generated parameter labels in creation order, useful
// for logging a query plan without exposing raw bound values.
func (p *ParamBuilder) Names() []string {
	return p.names
}
