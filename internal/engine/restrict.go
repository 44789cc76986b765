package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lychee-technology/formapage"
)

// RestrictionResult is what C7 hands the page engine: the assembled WHERE
// and HAVING predicate text, already parenthesized and conjoined, plus
// whether any predicate forced a GROUP BY.
type RestrictionResult struct {
	Where        string
	Having       string
	ForceGroupBy bool
}

// RestrictionBuilder is C7: walks a page request's required and optional
// criteria maps, resolving each field, unwrapping Not, retargeting
// element-collection fields onto their join alias, and partitioning the
// synthesized predicates between WHERE and HAVING by what C2's alias codec
// says about each one.
type RestrictionBuilder struct {
	resolver Resolver
	backend  BackendFacade
	params   formapage.ParamBuilder
}

func NewRestrictionBuilder(resolver Resolver, backend BackendFacade, params formapage.ParamBuilder) *RestrictionBuilder {
	return &RestrictionBuilder{resolver: resolver, backend: backend, params: params}
}

type predicate struct {
	alias string
	sql   string
}

// Build synthesizes the WHERE/HAVING pair for one page request. Required
// criteria conjoin; optional criteria disjoin among themselves and are
// conjoined with the required set as one bracketed group.
func (b *RestrictionBuilder) Build(required, optional map[string]formapage.Criteria) (RestrictionResult, error) {
	requiredPreds, err := b.walk(required)
	if err != nil {
		return RestrictionResult{}, err
	}
	optionalPreds, err := b.walk(optional)
	if err != nil {
		return RestrictionResult{}, err
	}

	requiredWhere, requiredHaving := b.partition(requiredPreds, " AND ")
	optionalWhere, optionalHaving := b.partition(optionalPreds, " OR ")

	where := joinNonEmpty(" AND ", requiredWhere, optionalWhere)
	having := joinNonEmpty(" AND ", requiredHaving, optionalHaving)

	return RestrictionResult{Where: where, Having: having, ForceGroupBy: having != ""}, nil
}

// partition splits one criteria map's predicates into WHERE and HAVING
// text, combining the WHERE predicates with joiner (" AND " for the
// required set, " OR " for the optional set) and every HAVING predicate —
// including the synthesized COUNT(DISTINCT …) companion for IN-marked
// element-collection predicates — with " AND ", since having a partial
// match on one OR-branch's to-many membership still has to hold for every
// row the query returns.
func (b *RestrictionBuilder) partition(preds []predicate, joiner string) (where string, having string) {
	var whereParts, havingParts []string
	for _, p := range preds {
		if formapage.IsHaving(p.alias) {
			havingParts = append(havingParts, p.sql)
			continue
		}
		whereParts = append(whereParts, p.sql)
		if formapage.IsIn(p.alias) {
			if field, count, ok := formapage.FieldAndCount(p.alias); ok && count > 1 {
				joinAlias := b.resolver.Join(field)
				havingParts = append(havingParts, fmt.Sprintf("COUNT(DISTINCT %s) = %d", joinAlias, count))
			}
		}
	}
	if len(whereParts) > 0 {
		where = "(" + strings.Join(whereParts, joiner) + ")"
	}
	if len(havingParts) > 0 {
		having = "(" + strings.Join(havingParts, " AND ") + ")"
	}
	return where, having
}

// walk iterates a criteria map in field-name order (a Go map carries no
// insertion order, so sorting is what makes the assembled SQL stable
// across calls with identical content — the conjunction/disjunction it
// feeds into is commutative either way).
func (b *RestrictionBuilder) walk(criteria map[string]formapage.Criteria) ([]predicate, error) {
	fields := make([]string, 0, len(criteria))
	for field := range criteria {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	preds := make([]predicate, 0, len(fields))
	for _, field := range fields {
		p, ok, err := b.buildOne(field, criteria[field])
		if err != nil {
			return nil, err
		}
		if ok {
			preds = append(preds, p)
		}
	}
	return preds, nil
}

// buildOne resolves one (field, criteria-value) pair into a predicate.
// Unknown fields are silently dropped (§4.7 step 1); Not is unwrapped once
// and NOT(...) surrounds the inner predicate's SQL. The alias is computed
// from the field and its path alone, so negation never changes its
// WHERE/HAVING class (§4.7 step 4).
func (b *RestrictionBuilder) buildOne(field string, value formapage.Criteria) (predicate, bool, error) {
	if value == nil {
		return predicate{}, false, formapage.NewInvalidCriteriaError(
			formapage.ErrCodeNonNestableCriteria, "criteria value is nil", field)
	}

	path, err := b.resolver.Get(field)
	if err != nil {
		if formapage.IsUnknownFieldError(err) {
			return predicate{}, false, nil
		}
		return predicate{}, false, err
	}

	negated := false
	if not, ok := value.(formapage.Not); ok {
		negated = true
		value = not.Inner
	}

	if b.resolver.IsElementCollection(field) {
		path = &resolvedPath{expr: b.resolver.Join(field), kind: formapage.PathKindString}
	}

	sql, err := value.Build(path, b.params, b.backend)
	if err != nil {
		return predicate{}, false, err
	}
	if sql == "" {
		return predicate{}, false, nil
	}
	if negated {
		sql = fmt.Sprintf("NOT(%s)", sql)
	}

	alias := formapage.NewAlias(field, b.backend.IsAggregation(path.Expr()))
	if counter, ok := value.(interface{ ItemCount() int }); ok && b.resolver.IsElementCollection(field) {
		alias = formapage.WithIn(alias, counter.ItemCount())
	}
	return predicate{alias: alias, sql: sql}, true, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}
