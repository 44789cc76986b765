package formapage

import (
	"testing"
)

// fakePath is a minimal PathExpression for unit tests that never resolve a
// real backend path.
type fakePath struct {
	expr       string
	kind       PathKind
	ordinal    bool
	enumNames  []string
}

func (p fakePath) Expr() string        { return p.expr }
func (p fakePath) Kind() PathKind      { return p.kind }
func (p fakePath) IsEnumOrdinal() bool { return p.ordinal }
func (p fakePath) EnumNames() []string { return p.enumNames }

// fakeParams records every bound value in creation order, mirroring what a
// real C4 parameter builder does, without any SQL-dialect placeholder
// scheme beyond a deterministic "$n" sequence.
type fakeParams struct {
	bound []any
}

func (p *fakeParams) Create(value any) ParamRef {
	p.bound = append(p.bound, value)
	return ParamRef("$" + string(rune('0'+len(p.bound))))
}

// fakeDialect casts by wrapping in CAST(... AS text), a stand-in lenient
// dialect for tests that don't care about per-type cast patterns.
type fakeDialect struct{}

func (fakeDialect) CastAsString(expr string) string {
	return "CAST(" + expr + " AS text)"
}

func TestLikeContainsBuild(t *testing.T) {
	path := fakePath{expr: "name", kind: PathKindString}
	params := &fakeParams{}
	sql, err := Like{Mode: LikeContains, Value: "oo"}.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "LOWER(CAST(name AS text)) LIKE $1"
	if sql != want {
		t.Fatalf("unexpected SQL.\nexpected: %s\nactual:   %s", want, sql)
	}
	if len(params.bound) != 1 || params.bound[0] != "%oo%" {
		t.Fatalf("unexpected bound params: %#v", params.bound)
	}
}

func TestLikeEnumOrdinalLaw(t *testing.T) {
	path := fakePath{
		expr:      "status",
		kind:      PathKindEnum,
		ordinal:   true,
		enumNames: []string{"NEW", "BOOKED", "CLOSED", "COOLING"},
	}
	params := &fakeParams{}
	sql, err := Like{Mode: LikeContains, Value: "oo"}.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "BOOKED" and "COOLING" contain "oo" case-insensitively; ordinals 1 and 3.
	want := "status IN ($1, $2)"
	if sql != want {
		t.Fatalf("unexpected SQL.\nexpected: %s\nactual:   %s", want, sql)
	}
	if len(params.bound) != 2 || params.bound[0] != 1 || params.bound[1] != 3 {
		t.Fatalf("unexpected bound ordinals: %#v", params.bound)
	}
}

func TestLikeEnumOrdinalNoMatch(t *testing.T) {
	path := fakePath{
		expr:      "status",
		kind:      PathKindEnum,
		ordinal:   true,
		enumNames: []string{"NEW", "CLOSED"},
	}
	params := &fakeParams{}
	sql, err := Like{Mode: LikeContains, Value: "zzz"}.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != alwaysFalseSQL {
		t.Fatalf("expected guaranteed-false predicate, got %q", sql)
	}
	if len(params.bound) != 0 {
		t.Fatalf("expected no bound params, got %#v", params.bound)
	}
}

func TestLikeApplies(t *testing.T) {
	cases := []struct {
		like Like
		in   string
		want bool
	}{
		{Like{Mode: LikeStartsWith, Value: "Us"}, "user-01", true},
		{Like{Mode: LikeStartsWith, Value: "Us"}, "nonuser", false},
		{Like{Mode: LikeEndsWith, Value: "01"}, "user-01", true},
		{Like{Mode: LikeContains, Value: "ER-0"}, "user-01", true},
	}
	for _, c := range cases {
		if got := c.like.Applies(c.in); got != c.want {
			t.Fatalf("Like(%+v).Applies(%q) = %v, want %v", c.like, c.in, got, c.want)
		}
	}
}

func TestBetweenBuildAndApplies(t *testing.T) {
	path := fakePath{expr: "price", kind: PathKindNumber}
	params := &fakeParams{}
	b := Between[int64]{Min: 10, Max: 20}
	sql, err := b.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "price BETWEEN $1 AND $2"
	if sql != want {
		t.Fatalf("unexpected SQL.\nexpected: %s\nactual:   %s", want, sql)
	}
	if len(params.bound) != 2 || params.bound[0] != int64(10) || params.bound[1] != int64(20) {
		t.Fatalf("unexpected bound params: %#v", params.bound)
	}

	if !b.Applies(int64(15)) {
		t.Fatal("expected 15 to be within [10, 20]")
	}
	if b.Applies(int64(25)) {
		t.Fatal("expected 25 to fall outside [10, 20]")
	}
}

func TestOrderBuild(t *testing.T) {
	path := fakePath{expr: "created_at", kind: PathKindNumber}
	params := &fakeParams{}
	o := Order[int64]{Op: OrderGTE, Value: 100}
	sql, err := o.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "created_at >= $1" {
		t.Fatalf("unexpected SQL: %s", sql)
	}
	if !o.Applies(int64(100)) || o.Applies(int64(99)) {
		t.Fatal("unexpected Order.Applies result")
	}
}

func TestIgnoreCase(t *testing.T) {
	path := fakePath{expr: "code", kind: PathKindString}
	params := &fakeParams{}
	c := IgnoreCase{Value: "XYZ"}
	sql, err := c.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "LOWER(CAST(code AS text)) = LOWER($1)" {
		t.Fatalf("unexpected SQL: %s", sql)
	}
	if !c.Applies("xyz") || c.Applies("abc") {
		t.Fatal("unexpected IgnoreCase.Applies result")
	}
}

func TestEnumeratedResolvesCaseInsensitively(t *testing.T) {
	path := fakePath{expr: "status", kind: PathKindEnum, enumNames: []string{"ACTIVE", "INACTIVE"}}
	params := &fakeParams{}
	e, err := NewEnumerated("active")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, err := e.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "status = $1" || params.bound[0] != "ACTIVE" {
		t.Fatalf("unexpected build result: sql=%q bound=%#v", sql, params.bound)
	}
}

func TestEnumeratedNoMatchDropsField(t *testing.T) {
	path := fakePath{expr: "status", kind: PathKindEnum, enumNames: []string{"ACTIVE", "INACTIVE"}}
	params := &fakeParams{}
	e, err := NewEnumerated("unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, err := e.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "" {
		t.Fatalf("expected no predicate, got %q", sql)
	}
}

func TestNumericParseAndApplies(t *testing.T) {
	n, err := ParseNumeric("42", NumericKindInt64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.Applies(int64(42)) {
		t.Fatal("expected 42 to apply")
	}
	if n.Applies(int64(43)) {
		t.Fatal("expected 43 not to apply")
	}

	if _, err := ParseNumeric("not-a-number", NumericKindInt64); err == nil {
		t.Fatal("expected parse error for non-numeric text")
	}
}

func TestBoolParseVariants(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{"false", false},
		{"yes", true},
		{"no", false},
		{1, true},
		{0, false},
	}
	for _, c := range cases {
		b, err := ParseBool(c.in)
		if err != nil {
			t.Fatalf("ParseBool(%v) unexpected error: %v", c.in, err)
		}
		if b.Value != c.want {
			t.Fatalf("ParseBool(%v) = %v, want %v", c.in, b.Value, c.want)
		}
	}
}

func TestNotIdempotence(t *testing.T) {
	inner := Like{Mode: LikeContains, Value: "oo"}
	doubled := Not{Inner: Not{Inner: inner}}

	values := []string{"foo", "bar", "boot"}
	for _, v := range values {
		if doubled.Applies(v) != inner.Applies(v) {
			t.Fatalf("Not(Not(c)).Applies(%q) diverged from c.Applies(%q)", v, v)
		}
	}
}

func TestNotBuildWrapsInnerPredicate(t *testing.T) {
	path := fakePath{expr: "status", kind: PathKindString}
	params := &fakeParams{}
	n := Not{Inner: IgnoreCase{Value: "ACTIVE"}}
	sql, err := n.Build(path, params, fakeDialect{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "NOT(LOWER(CAST(status AS text)) = LOWER($1))"
	if sql != want {
		t.Fatalf("unexpected SQL.\nexpected: %s\nactual:   %s", want, sql)
	}
}

func TestCriteriaRoundTrip(t *testing.T) {
	type roundTripCase struct {
		name     string
		criteria Criteria
		path     fakePath
		value    any
	}
	cases := []roundTripCase{
		{"like", Like{Mode: LikeContains, Value: "oo"}, fakePath{expr: "name", kind: PathKindString}, "foo"},
		{"between", Between[int64]{Min: 10, Max: 20}, fakePath{expr: "price", kind: PathKindNumber}, int64(15)},
		{"order", Order[int64]{Op: OrderGT, Value: 10}, fakePath{expr: "price", kind: PathKindNumber}, int64(11)},
		{"ignore_case", IgnoreCase{Value: "XYZ"}, fakePath{expr: "code", kind: PathKindString}, "xyz"},
		{"bool", Bool{Value: true}, fakePath{expr: "active", kind: PathKindBool}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			params := &fakeParams{}
			sql, err := c.criteria.Build(c.path, params, fakeDialect{})
			if err != nil {
				t.Fatalf("unexpected build error: %v", err)
			}
			if sql == "" {
				t.Fatal("expected a predicate")
			}
			if !c.criteria.Applies(c.value) {
				t.Fatalf("expected %+v to apply to %v", c.criteria, c.value)
			}
		})
	}
}
