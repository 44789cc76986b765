package engine

import (
	"context"
	"time"

	"github.com/lychee-technology/formapage"
	"go.uber.org/zap"
)

// RowMapper converts one backend row into an entity value of type E.
type RowMapper[E any] func(row Row) (E, error)

// QueryCustomizer lets a caller add extra fetch joins or an extra
// restriction clause before the selection/restriction/order builders run,
// the escape hatch §6 describes for call sites that need something the
// declarative PageRequest can't express.
type QueryCustomizer func(resolver Resolver) (extraFetchJoins []string, extraRestriction string)

// PageHooks are GetPage's optional lifecycle callbacks (§6): BeforePage and
// AfterPage bracket the whole call, OnPage receives the request's
// canonical form and the cacheable flag before the main query runs. OnPage
// returns nothing, so it cannot stop GetPage from executing the query.
type PageHooks struct {
	BeforePage func()
	OnPage     func(canonical string, cacheable bool)
	AfterPage  func()
}

// PostponedFetch describes one to-many association deferred out of the
// main query because the configured backend's postponed-fetch kind is
// Secondary. Resolve issues whatever secondary query is needed and returns
// entities with that association populated; the engine doesn't know the
// association's Go representation, only that Resolve can stitch it back
// in given the ids the main query returned.
type PostponedFetch[E any] struct {
	Path    string
	Resolve func(ctx context.Context, ids []formapage.EntityID, items []E) ([]E, error)
}

// PageEngineConfig wires one entity's metadata and backend into a reusable
// GetPage configuration.
type PageEngineConfig struct {
	Metadata EntityMetadata
	Backend  Backend
}

// GetPage is C9's top-level operation: it builds the main (and, when
// requested, count) query from a formapage.PageRequest, executes it
// against the configured backend, resolves any postponed-fetch
// associations, and returns a bounded, annotated result page.
func GetPage[E any](
	ctx context.Context,
	cfg PageEngineConfig,
	request formapage.PageRequest,
	wantCount bool,
	cacheable bool,
	idOf func(E) formapage.EntityID,
	mapRow RowMapper[E],
	customizer QueryCustomizer,
	postponed []PostponedFetch[E],
	hooks PageHooks,
) (formapage.PartialResultList[E], error) {
	if hooks.BeforePage != nil {
		hooks.BeforePage()
	}
	if hooks.AfterPage != nil {
		defer hooks.AfterPage()
	}

	joins := map[string]string{}
	resolver := NewPathResolver(cfg.Metadata, joins)

	var extraFetchJoins []string
	var extraRestriction string
	if customizer != nil {
		extraFetchJoins, extraRestriction = customizer(resolver)
	}

	selectionBuilder := NewSelectionBuilder(resolver, cfg.Backend)
	selections, forceGroupByFromSelect, err := selectionBuilder.Build(nil, true)
	if err != nil {
		return formapage.PartialResultList[E]{}, err
	}

	orderBuilder := NewOrderBuilder(resolver, cfg.Backend)
	orderClause, err := orderBuilder.Build(request.Ordering, request.Offset, request.Limit)
	if err != nil {
		return formapage.PartialResultList[E]{}, err
	}

	mainParams := NewParamBuilder(cfg.Metadata.Root)
	restriction, err := NewRestrictionBuilder(resolver, cfg.Backend, mainParams).Build(request.Required, request.Optional)
	if err != nil {
		return formapage.PartialResultList[E]{}, err
	}

	where := joinNonEmpty(" AND ", restriction.Where, extraRestriction)
	forceGroupBy := forceGroupByFromSelect || restriction.ForceGroupBy

	query := assembledQuery{
		selections:   selections,
		from:         cfg.Metadata.Root,
		fetchJoins:   extraFetchJoins,
		where:        where,
		having:       restriction.Having,
		order:        orderClause,
		distinct:     len(extraFetchJoins) > 0,
		forceGroupBy: forceGroupBy,
		offset:       request.Offset,
		limit:        request.Limit,
	}

	canonical := request.Canonical()
	if hooks.OnPage != nil {
		hooks.OnPage(canonical, cacheable)
	}

	start := time.Now()
	rows, err := cfg.Backend.Query(ctx, query.render(), mainParams.Bindings())
	if err != nil {
		return formapage.PartialResultList[E]{}, formapage.NewBackendError("main query failed", err)
	}

	items := make([]E, 0, len(rows))
	for _, row := range rows {
		entity, err := mapRow(row)
		if err != nil {
			return formapage.PartialResultList[E]{}, formapage.NewBackendError("row mapping failed", err)
		}
		items = append(items, entity)
	}

	if cfg.Backend.PostponedFetchKind() == PostponedFetchSecondary && len(postponed) > 0 && idOf != nil {
		ids := make([]formapage.EntityID, 0, len(items))
		for _, item := range items {
			ids = append(ids, idOf(item))
		}
		for _, fetch := range postponed {
			items, err = fetch.Resolve(ctx, ids, items)
			if err != nil {
				return formapage.PartialResultList[E]{}, formapage.NewBackendError(
					"postponed fetch failed for "+fetch.Path, err)
			}
		}
	}

	estimatedTotal := -1
	if wantCount {
		countParams := NewParamBuilder(cfg.Metadata.Root)
		countRestriction, err := NewRestrictionBuilder(resolver, cfg.Backend, countParams).Build(request.Required, request.Optional)
		if err != nil {
			return formapage.PartialResultList[E]{}, err
		}
		countWhere := joinNonEmpty(" AND ", countRestriction.Where, extraRestriction)
		total, err := cfg.Backend.QueryCount(ctx, buildCountSQL(cfg.Metadata.Root, countWhere), countParams.Bindings())
		if err != nil {
			return formapage.PartialResultList[E]{}, formapage.NewBackendError("count query failed", err)
		}
		estimatedTotal = total
	}

	zap.S().Infow("page executed",
		"root", cfg.Metadata.Root,
		"rows", len(items),
		"estimatedTotal", estimatedTotal,
		"forceGroupBy", forceGroupBy,
		"elapsed", time.Since(start),
	)

	return formapage.PartialResultList[E]{Items: items, Offset: request.Offset, EstimatedTotal: estimatedTotal}, nil
}
