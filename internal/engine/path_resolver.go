package engine

import (
	"strconv"
	"strings"

	"github.com/lychee-technology/formapage"
)

// AttributeDescriptor is the per-attribute metadata the path resolver needs
// to translate one path segment into backend SQL: its column expression,
// its logical kind, and, for enums, whether it is stored by ordinal plus
// the constant names in declaration order.
type AttributeDescriptor struct {
	Column      string
	Kind        formapage.PathKind
	EnumOrdinal bool
	EnumNames   []string
}

// EntityMetadata is the precomputed shape of one entity type: its root
// table alias, its direct attributes, which attribute paths are element
// collections or one-to-many associations (to-many paths the order builder
// must refuse on postponed-fetch backends), and which many-to-one
// attributes are tried as a transient-field fallback when a bare name
// doesn't resolve directly.
type EntityMetadata struct {
	Root               string
	Attributes         map[string]AttributeDescriptor
	ElementCollections map[string]bool
	OneToMany          map[string]bool
	ManyToOne          []string
}

// Resolver is what the restriction, selection, and order builders need
// from path resolution: resolve a field path, obtain (or create) a stable
// join alias for it, and classify it as to-many.
type Resolver interface {
	Get(field string) (formapage.PathExpression, error)
	Join(field string) string
	IsElementCollection(field string) bool
	IsToMany(field string) bool
}

// resolvedPath is the concrete formapage.PathExpression every field path
// resolves to.
type resolvedPath struct {
	expr      string
	kind      formapage.PathKind
	ordinal   bool
	enumNames []string
}

func (p *resolvedPath) Expr() string            { return p.expr }
func (p *resolvedPath) Kind() formapage.PathKind { return p.kind }
func (p *resolvedPath) IsEnumOrdinal() bool      { return p.ordinal }
func (p *resolvedPath) EnumNames() []string      { return p.enumNames }

// PathResolver is C3: it walks a dot-separated field path against one
// entity's metadata, creating or reusing join aliases for every segment
// but the last, and resolves the final segment against the entity's
// attribute map (falling back, one level deep, to a many-to-one
// attribute's own attributes when the bare name doesn't resolve directly).
//
// A leading '@' forces a fresh join even when a join over the same prefix
// already exists — the explicit-join escape hatch for self-joins and
// repeated comparisons against the same association.
type PathResolver struct {
	meta  EntityMetadata
	joins map[string]string
	cache map[string]formapage.PathExpression
}

// NewPathResolver creates a resolver scoped to one query. joins seeds the
// join-alias table (nil creates an empty one); the same map instance
// should be shared across every PathResolver created for one GetPage call
// so a join established for a restriction is reused by the selection and
// order builders.
func NewPathResolver(meta EntityMetadata, joins map[string]string) *PathResolver {
	if joins == nil {
		joins = map[string]string{}
	}
	return &PathResolver{meta: meta, joins: joins, cache: map[string]formapage.PathExpression{}}
}

// Get resolves field, returning the identical *resolvedPath instance for
// repeated calls with the same field within this resolver's lifetime.
func (r *PathResolver) Get(field string) (formapage.PathExpression, error) {
	if cached, ok := r.cache[field]; ok {
		return cached, nil
	}

	var path formapage.PathExpression
	switch field {
	case "":
		path = &resolvedPath{expr: r.meta.Root, kind: formapage.PathKindString}
	case "id":
		path = &resolvedPath{expr: r.columnFor("id"), kind: formapage.PathKindString}
	default:
		resolved, err := r.resolve(field)
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	r.cache[field] = path
	return path, nil
}

func (r *PathResolver) columnFor(name string) string {
	if desc, ok := r.meta.Attributes[name]; ok {
		return r.meta.Root + "." + desc.Column
	}
	return r.meta.Root + "." + name
}

func (r *PathResolver) resolve(field string) (formapage.PathExpression, error) {
	explicitJoin := strings.HasPrefix(field, "@")
	raw := strings.TrimPrefix(field, "@")
	segments := strings.Split(raw, ".")
	isElementCollection := r.meta.ElementCollections[raw] || r.meta.OneToMany[raw]

	// Every segment but the last is a join step. A field naming an element
	// collection or one-to-many association treats its final segment as a
	// join step too — there is no scalar attribute past that point, only
	// the joined rows themselves.
	joinSegments := len(segments) - 1
	if isElementCollection {
		joinSegments = len(segments)
	}

	current := r.meta.Root
	for i := 0; i < joinSegments; i++ {
		key := strings.Join(segments[:i+1], ".")
		current = r.joinStep(key, segments[i], explicitJoin)
	}

	if isElementCollection {
		return &resolvedPath{expr: current, kind: formapage.PathKindString}, nil
	}

	last := segments[len(segments)-1]
	if len(segments) == 1 {
		desc, ok := r.meta.Attributes[last]
		if !ok {
			return r.transientFallback(last)
		}
		return &resolvedPath{
			expr:      current + "." + desc.Column,
			kind:      desc.Kind,
			ordinal:   desc.EnumOrdinal,
			enumNames: desc.EnumNames,
		}, nil
	}

	assocKey := strings.Join(segments[:len(segments)-1], ".")
	if desc, ok := r.meta.Attributes[assocKey+"."+last]; ok {
		return &resolvedPath{
			expr:      current + "." + desc.Column,
			kind:      desc.Kind,
			ordinal:   desc.EnumOrdinal,
			enumNames: desc.EnumNames,
		}, nil
	}
	return &resolvedPath{expr: current + "." + last, kind: formapage.PathKindString}, nil
}

// transientFallback retries a single-segment, unresolved field name one
// level deep through every known many-to-one attribute on the root, so
// "email" resolves via "manager.email" when "manager" is a known
// association and "email" is one of its attributes. Only the first match
// wins; ambiguity between fallback candidates is not reported as an error,
// matching the permissive best-effort resolution the teacher's entity
// manager applies to unqualified filter keys.
func (r *PathResolver) transientFallback(seg string) (formapage.PathExpression, error) {
	for _, assoc := range r.meta.ManyToOne {
		joinAlias := r.joinStep(assoc, assoc, false)
		if _, ok := r.meta.Attributes[assoc+"."+seg]; ok {
			desc := r.meta.Attributes[assoc+"."+seg]
			return &resolvedPath{
				expr:      joinAlias + "." + desc.Column,
				kind:      desc.Kind,
				ordinal:   desc.EnumOrdinal,
				enumNames: desc.EnumNames,
			}, nil
		}
	}
	return nil, formapage.NewUnknownFieldError(formapage.ErrCodeUnknownFilterField, seg)
}

// joinStep resolves (or creates) the join alias for one path prefix. In
// explicit-join mode a fresh alias is always minted; otherwise an existing
// alias for the same key is reused.
func (r *PathResolver) joinStep(key, segment string, forceNew bool) string {
	if !forceNew {
		if alias, ok := r.joins[key]; ok {
			return alias
		}
	}
	alias := segment
	if forceNew {
		alias = segment + "_j" + strconv.Itoa(len(r.joins)+1)
	}
	r.joins[key] = alias
	return alias
}

// Join resolves (or creates) the join alias for field, guaranteeing the
// same alias is reused for the same field throughout this resolver's
// lifetime — the hook the restriction builder uses to retarget an
// element-collection predicate onto its join rather than its scalar path.
func (r *PathResolver) Join(field string) string {
	raw := strings.TrimPrefix(field, "@")
	return r.joinStep(raw, raw, false)
}

func (r *PathResolver) IsElementCollection(field string) bool {
	return r.meta.ElementCollections[strings.TrimPrefix(field, "@")]
}

func (r *PathResolver) IsToMany(field string) bool {
	segments := strings.Split(strings.TrimPrefix(field, "@"), ".")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], ".")
		if r.meta.ElementCollections[prefix] || r.meta.OneToMany[prefix] {
			return true
		}
	}
	return false
}

