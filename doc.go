// Package formapage is a query-planning library that sits above a generic
// relational entity model. It translates a declarative page request — sort
// keys, required filters, optional filters, and a pagination range — into
// one or two structured relational queries, and returns a bounded result
// slice annotated with an estimated total count.
//
// The package also exposes a small library of typed criteria wrappers
// (Like, Between, Order, Not, IgnoreCase, Enumerated, Numeric, Bool) that
// make filter semantics explicit and unit-testable independently of any
// relational backend.
//
// The paging engine itself — path resolution, predicate translation, the
// WHERE/HAVING/IN alias discipline, and the two-phase postponed-fetch scheme
// for backends that cannot paginate a fetch-joined query — lives in
// internal/engine and is reached through GetPage.
package formapage
