package formapage

import (
	"cmp"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// PathKind is the nominal type the restriction and order builders dispatch
// on when deciding how a criteria-value should be translated into SQL.
type PathKind string

const (
	PathKindString PathKind = "string"
	PathKindNumber PathKind = "number"
	PathKindBool   PathKind = "bool"
	PathKindEnum   PathKind = "enum"
	PathKindTime   PathKind = "time"
)

// PathExpression is a resolved backend path: a column or join expression
// plus enough type information for a criteria-value to build a portable
// predicate against it. Concrete implementations live in internal/engine's
// path resolver (C3).
type PathExpression interface {
	// Expr returns the SQL text this path resolves to, already qualified by
	// whatever join alias owns it.
	Expr() string
	Kind() PathKind
	// IsEnumOrdinal reports whether an enum path is stored by ordinal
	// position rather than by name.
	IsEnumOrdinal() bool
	// EnumNames returns the enum's constant names in declaration order; the
	// slice index is the ordinal used when IsEnumOrdinal is true.
	EnumNames() []string
}

// ParamRef is the placeholder text a ParamBuilder hands back for a bound
// value (e.g. "$3"). It formats as that placeholder with %s.
type ParamRef string

// ParamBuilder produces uniquely-named parameter bindings for one query
// scope (C4). Criteria values never see the bound value again once it has
// been registered; the param builder is the single owner of the binding
// list consumed at query-assembly time.
type ParamBuilder interface {
	Create(value any) ParamRef
}

// Dialect is the narrow slice of the backend facade (C5) criteria values
// need directly: a dialect-correct string cast for non-string paths.
type Dialect interface {
	CastAsString(expr string) string
}

// Criteria is the dual build/applies contract every criteria-value in the
// vocabulary implements. Build emits a backend predicate against a
// resolved path; an empty string with a nil error means "no predicate" —
// the caller drops the field. Applies is the in-memory counterpart used by
// unit tests and by postponed-fetch post-filtering.
type Criteria interface {
	Build(path PathExpression, params ParamBuilder, dialect Dialect) (string, error)
	Applies(value any) bool
}

// alwaysFalseSQL is emitted by Like when an enum-ordinal search matches no
// constant name, so the query still executes instead of short-circuiting.
const alwaysFalseSQL = "(1 <> 1)"

// LikeMode selects which ends of the search text are anchored.
type LikeMode string

const (
	LikeStartsWith LikeMode = "starts_with"
	LikeEndsWith   LikeMode = "ends_with"
	LikeContains   LikeMode = "contains"
)

// Like is a case-insensitive substring/prefix/suffix criteria-value.
type Like struct {
	Mode  LikeMode
	Value string
}

func (l Like) pattern() string {
	switch l.Mode {
	case LikeStartsWith:
		return l.Value + "%"
	case LikeEndsWith:
		return "%" + l.Value
	default:
		return "%" + l.Value + "%"
	}
}

// Applies is the in-memory equivalent of Build: case-insensitive
// prefix/suffix/substring matching against the carried value.
func (l Like) Applies(value any) bool {
	hay := strings.ToLower(toText(value))
	needle := strings.ToLower(l.Value)
	switch l.Mode {
	case LikeStartsWith:
		return strings.HasPrefix(hay, needle)
	case LikeEndsWith:
		return strings.HasSuffix(hay, needle)
	default:
		return strings.Contains(hay, needle)
	}
}

// Build chooses a predicate shape by the target path's type: ordinal-enum
// paths are translated into an IN over matching ordinals (or a guaranteed
// false predicate when nothing matches), boolean paths into IS TRUE/FALSE,
// and everything else into a dialect-cast LIKE, lowercased on both sides
// except for numeric paths.
func (l Like) Build(path PathExpression, params ParamBuilder, dialect Dialect) (string, error) {
	switch path.Kind() {
	case PathKindEnum:
		if path.IsEnumOrdinal() {
			var ordinals []ParamRef
			for ordinal, name := range path.EnumNames() {
				if l.Applies(name) {
					ordinals = append(ordinals, params.Create(ordinal))
				}
			}
			if len(ordinals) == 0 {
				return alwaysFalseSQL, nil
			}
			return fmt.Sprintf("%s IN (%s)", path.Expr(), joinParamRefs(ordinals)), nil
		}
	case PathKindBool:
		if parseTruthyText(l.Value) {
			return fmt.Sprintf("%s IS TRUE", path.Expr()), nil
		}
		return fmt.Sprintf("%s IS FALSE", path.Expr()), nil
	}

	expr := dialect.CastAsString(path.Expr())
	pattern := l.pattern()
	if path.Kind() != PathKindNumber {
		expr = fmt.Sprintf("LOWER(%s)", expr)
		pattern = strings.ToLower(pattern)
	}
	ref := params.Create(pattern)
	return fmt.Sprintf("%s LIKE %s", expr, ref), nil
}

// Between is a closed-interval criteria-value over any ordered Go type.
type Between[T cmp.Ordered] struct {
	Min, Max T
}

func (b Between[T]) Applies(value any) bool {
	v, ok := value.(T)
	if !ok {
		return false
	}
	return v >= b.Min && v <= b.Max
}

func (b Between[T]) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	minRef := params.Create(b.Min)
	maxRef := params.Create(b.Max)
	return fmt.Sprintf("%s BETWEEN %s AND %s", path.Expr(), minRef, maxRef), nil
}

// OrderOp names one of the four comparator variants Order supports.
type OrderOp string

const (
	OrderLT  OrderOp = "lt"
	OrderLTE OrderOp = "lte"
	OrderGT  OrderOp = "gt"
	OrderGTE OrderOp = "gte"
)

// Order is a single-sided comparison criteria-value over an ordered type.
type Order[T cmp.Ordered] struct {
	Op    OrderOp
	Value T
}

func (o Order[T]) Applies(value any) bool {
	v, ok := value.(T)
	if !ok {
		return false
	}
	switch o.Op {
	case OrderLT:
		return v < o.Value
	case OrderLTE:
		return v <= o.Value
	case OrderGT:
		return v > o.Value
	case OrderGTE:
		return v >= o.Value
	default:
		return false
	}
}

func (o Order[T]) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	op, ok := orderSQLOperator(o.Op)
	if !ok {
		return "", fmt.Errorf("formapage: unknown order operator %q", o.Op)
	}
	ref := params.Create(o.Value)
	return fmt.Sprintf("%s %s %s", path.Expr(), op, ref), nil
}

func orderSQLOperator(op OrderOp) (string, bool) {
	switch op {
	case OrderLT:
		return "<", true
	case OrderLTE:
		return "<=", true
	case OrderGT:
		return ">", true
	case OrderGTE:
		return ">=", true
	default:
		return "", false
	}
}

// IgnoreCase is exact case-insensitive equality.
type IgnoreCase struct {
	Value string
}

func (c IgnoreCase) Applies(value any) bool {
	return strings.EqualFold(toText(value), c.Value)
}

func (c IgnoreCase) Build(path PathExpression, params ParamBuilder, dialect Dialect) (string, error) {
	expr := dialect.CastAsString(path.Expr())
	ref := params.Create(c.Value)
	return fmt.Sprintf("LOWER(%s) = LOWER(%s)", expr, ref), nil
}

// Enumerated resolves its carried text against an enum path's constant
// names, case-insensitively, at build time.
type Enumerated struct {
	Raw string
}

// NewEnumerated parses a caller-supplied value into an Enumerated
// criteria-value. Only strings (or fmt.Stringer values) are accepted;
// anything else is an InvalidCriteria construction error.
func NewEnumerated(value any) (Enumerated, error) {
	switch v := value.(type) {
	case string:
		return Enumerated{Raw: v}, nil
	case fmt.Stringer:
		return Enumerated{Raw: v.String()}, nil
	default:
		return Enumerated{}, NewInvalidCriteriaError(ErrCodeUnparseableEnum,
			fmt.Sprintf("cannot parse enum value of type %T", value), "")
	}
}

func (e Enumerated) Applies(value any) bool {
	return strings.EqualFold(toText(value), e.Raw)
}

// Build returns no predicate when the carried text matches no constant
// name; the restriction builder drops the field in that case.
func (e Enumerated) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	for _, name := range path.EnumNames() {
		if strings.EqualFold(name, e.Raw) {
			ref := params.Create(name)
			return fmt.Sprintf("%s = %s", path.Expr(), ref), nil
		}
	}
	return "", nil
}

// NumericKind names the target attribute's numeric storage so ParseNumeric
// can pick the right Go representation.
type NumericKind string

const (
	NumericKindDecimal NumericKind = "decimal"
	NumericKindBigInt  NumericKind = "bigint"
	NumericKindInt32   NumericKind = "int32"
	NumericKindInt64   NumericKind = "int64"
)

// Numeric is equality against a number parsed with respect to the target
// attribute's numeric type.
type Numeric struct {
	Value any
}

// ParseNumeric parses raw text into a Numeric criteria-value using the
// representation named by kind: int32/int64 for fixed-width integers,
// *big.Int for arbitrary-precision integers, *big.Rat for arbitrary-
// precision decimals.
func ParseNumeric(raw string, kind NumericKind) (Numeric, error) {
	fail := func() (Numeric, error) {
		return Numeric{}, NewInvalidCriteriaError(ErrCodeUnparseableNumber,
			fmt.Sprintf("cannot parse %q as %s", raw, kind), "")
	}
	switch kind {
	case NumericKindInt32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fail()
		}
		return Numeric{Value: int32(n)}, nil
	case NumericKindInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail()
		}
		return Numeric{Value: n}, nil
	case NumericKindBigInt:
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return fail()
		}
		return Numeric{Value: n}, nil
	case NumericKindDecimal:
		r, ok := new(big.Rat).SetString(raw)
		if !ok {
			return fail()
		}
		return Numeric{Value: r}, nil
	default:
		return fail()
	}
}

func (n Numeric) Applies(value any) bool {
	a, ok := toFloat(n.Value)
	if !ok {
		return false
	}
	b, ok := toFloat(value)
	if !ok {
		return false
	}
	return a == b
}

func (n Numeric) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	ref := params.Create(n.Value)
	return fmt.Sprintf("%s = %s", path.Expr(), ref), nil
}

// Bool accepts a boolean, a non-zero number, or a textual truthy value.
type Bool struct {
	Value bool
}

// ParseBool normalizes a caller-supplied value into a Bool criteria-value.
func ParseBool(value any) (Bool, error) {
	switch v := value.(type) {
	case bool:
		return Bool{Value: v}, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return Bool{Value: b}, nil
		}
		switch strings.ToLower(trimmed) {
		case "yes", "y", "on":
			return Bool{Value: true}, nil
		case "no", "n", "off":
			return Bool{Value: false}, nil
		}
		return Bool{}, NewInvalidCriteriaError(ErrCodeUnparseableNumber,
			fmt.Sprintf("cannot parse %q as bool", v), "")
	default:
		if f, ok := toFloat(v); ok {
			return Bool{Value: f != 0}, nil
		}
		return Bool{}, NewInvalidCriteriaError(ErrCodeUnparseableNumber,
			fmt.Sprintf("cannot parse %T as bool", value), "")
	}
}

func (b Bool) Applies(value any) bool {
	parsed, err := ParseBool(value)
	if err != nil {
		return false
	}
	return parsed.Value == b.Value
}

func (b Bool) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	ref := params.Create(b.Value)
	return fmt.Sprintf("%s = %s", path.Expr(), ref), nil
}

// Not is a logical negation wrapper, nestable around any other
// criteria-value (including itself).
type Not struct {
	Inner Criteria
}

func (n Not) Applies(value any) bool {
	return !n.Inner.Applies(value)
}

// Build exists so Not satisfies Criteria directly; the restriction builder
// instead unwraps Not explicitly (§4.7 step 4) so it can preserve the
// inner predicate's alias class while still surrounding it with NOT(...).
func (n Not) Build(path PathExpression, params ParamBuilder, dialect Dialect) (string, error) {
	sql, err := n.Inner.Build(path, params, dialect)
	if err != nil {
		return "", err
	}
	if sql == "" {
		return "", nil
	}
	return fmt.Sprintf("NOT(%s)", sql), nil
}

// In is set membership over any comparable Go type. Against an
// element-collection path the restriction builder marks its alias with the
// item count, driving the companion HAVING COUNT(DISTINCT join) = count
// predicate that gives "has every one of these values" semantics rather
// than "has at least one" (§4.7).
type In[T comparable] struct {
	Values []T
}

func (in In[T]) Applies(value any) bool {
	v, ok := value.(T)
	if !ok {
		return false
	}
	for _, want := range in.Values {
		if v == want {
			return true
		}
	}
	return false
}

func (in In[T]) Build(path PathExpression, params ParamBuilder, _ Dialect) (string, error) {
	if len(in.Values) == 0 {
		return "", NewInvalidCriteriaError(ErrCodeEmptyInList,
			"IN predicate requires at least one item", "")
	}
	refs := make([]ParamRef, 0, len(in.Values))
	for _, v := range in.Values {
		refs = append(refs, params.Create(v))
	}
	return fmt.Sprintf("%s IN (%s)", path.Expr(), joinParamRefs(refs)), nil
}

// ItemCount reports how many values this IN carries (duplicates included), so the
// restriction builder can encode it into the alias without reaching back
// into the criteria-value's own fields.
func (in In[T]) ItemCount() int {
	return len(in.Values)
}

func parseTruthyText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t", "on":
		return true
	default:
		return false
	}
}

func toText(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case *big.Int:
		f := new(big.Float).SetInt(v)
		out, _ := f.Float64()
		return out, true
	case *big.Rat:
		out, _ := v.Float64()
		return out, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func joinParamRefs(refs []ParamRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
