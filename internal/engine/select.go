package engine

import (
	"strings"

	"github.com/lychee-technology/formapage"
)

// ProjectionEntry is one ordered (result-property, source) pair a caller
// supplies to shape a non-entity result row. Field is resolved through the
// path resolver when Expression is empty; Expression, when set, is used
// verbatim (for computed or aggregate columns the path resolver has no
// attribute for).
type ProjectionEntry struct {
	Property   string
	Field      string
	Expression string
	Alias      string
}

// Selection is one resolved select-list column.
type Selection struct {
	Property   string
	Expression string
	Alias      string
}

// SelectionBuilder is C6: turns an ordered projection into a select list,
// flagging whether any selected expression is an aggregate (which forces a
// GROUP BY over every non-aggregate column, per §4.6).
type SelectionBuilder struct {
	resolver Resolver
	backend  BackendFacade
}

func NewSelectionBuilder(resolver Resolver, backend BackendFacade) *SelectionBuilder {
	return &SelectionBuilder{resolver: resolver, backend: backend}
}

// Build resolves projection into a select list. An empty projection with
// sameAsEntity selects the whole root entity; an empty projection with the
// result type differing from the entity type is a fatal InvalidProjection
// (§4.6 step 1).
func (b *SelectionBuilder) Build(projection []ProjectionEntry, sameAsEntity bool) ([]Selection, bool, error) {
	if len(projection) == 0 {
		if sameAsEntity {
			return []Selection{{Expression: b.rootSelector()}}, false, nil
		}
		return nil, false, formapage.NewInvalidProjectionError(
			"projection required: result type differs from entity type")
	}

	selections := make([]Selection, 0, len(projection))
	forceGroupBy := false
	for _, entry := range projection {
		expr := entry.Expression
		if expr == "" {
			path, err := b.resolver.Get(entry.Field)
			if err != nil {
				return nil, false, err
			}
			expr = path.Expr()
		}
		alias := entry.Alias
		if alias == "" {
			alias = "as_" + strings.ReplaceAll(entry.Property, ".", "_")
		}
		if b.backend.IsAggregation(expr) {
			forceGroupBy = true
		}
		selections = append(selections, Selection{Property: entry.Property, Expression: expr, Alias: alias})
	}
	return selections, forceGroupBy, nil
}

func (b *SelectionBuilder) rootSelector() string {
	path, err := b.resolver.Get("")
	if err != nil {
		return ""
	}
	return path.Expr()
}

// ProjectedResolver satisfies Resolver by consulting a projection mapping
// first and falling back to the root resolver for any field the
// projection doesn't name — the contract §4.6 describes for letting a
// restriction or ordering reference an already-selected computed column.
type ProjectedResolver struct {
	projected map[string]formapage.PathExpression
	root      Resolver
}

// Resolver builds a ProjectedResolver over the already-resolved
// selections, so restriction/order builders downstream of Build can
// reference projected property names directly.
func (b *SelectionBuilder) Resolver(selections []Selection) *ProjectedResolver {
	projected := make(map[string]formapage.PathExpression, len(selections))
	for _, s := range selections {
		if s.Property == "" {
			continue
		}
		projected[s.Property] = &resolvedPath{expr: s.Expression, kind: formapage.PathKindString}
	}
	return &ProjectedResolver{projected: projected, root: b.resolver}
}

func (r *ProjectedResolver) Get(field string) (formapage.PathExpression, error) {
	if p, ok := r.projected[field]; ok {
		return p, nil
	}
	return r.root.Get(field)
}

func (r *ProjectedResolver) Join(field string) string { return r.root.Join(field) }

func (r *ProjectedResolver) IsElementCollection(field string) bool {
	return r.root.IsElementCollection(field)
}

func (r *ProjectedResolver) IsToMany(field string) bool {
	return r.root.IsToMany(field)
}
