package vellum

import "iter"

// Accessor names one component type a Query should fetch per matching row,
// and whether its absence should exclude the row (Of) or merely leave that
// slot empty (Maybe). Accessors are resolved against a World's registry at
// NewQuery time, mirroring TypeTag's deferred-resolution design in
// filter.go.
type Accessor struct {
	tag      TypeTag
	optional bool
}

// Of declares a required accessor: rows lacking T are excluded from the
// query's match set entirely (spec.md §4.7).
func Of[T any]() Accessor {
	return Accessor{tag: Type[T]()}
}

// Maybe declares an optional accessor: rows are not filtered on T's
// presence, and its Row slot is nil wherever the matching table lacks the
// column (spec.md §4.7, the "And/Or/Maybe" combinator).
func Maybe[T any]() Accessor {
	return Accessor{tag: Type[T](), optional: true}
}

type resolvedAccessor struct {
	id       ComponentID
	optional bool
}

// Query caches the set of tables currently matching a (accessors, filter)
// combination and iterates their rows. The cache is lazily re-synced
// against the table registry's version counter rather than subscribing to
// per-table creation events, mirroring the teacher's Filter.IsStale /
// Filter.Reset staleness-check pattern rather than an unbounded, never
// unsubscribed per-query event listener.
type Query struct {
	world     *World
	accessors []resolvedAccessor
	pairs     []pair

	tables  []*Table
	version uint64
}

// NewQuery builds a query over the given accessors, additionally
// constrained by any supplied filters (With/Without/And/Or). Every
// non-optional accessor implicitly requires its component, folded into the
// base (require, forbid) pair before the explicit filters are applied
// (spec.md §4.7, §4.8).
func NewQuery(w *World, accessors []Accessor, filters ...Filter) *Query {
	reg := w.components
	resolved := make([]resolvedAccessor, len(accessors))

	var base Archetype
	base.set(entityComponentID)
	for i, a := range accessors {
		id := reg.id(a.tag.t)
		resolved[i] = resolvedAccessor{id: id, optional: a.optional}
		if !a.optional {
			base.set(id)
		}
	}

	var f Filter
	if len(filters) > 0 {
		f = And(filters...)
	}
	pairs := resolveFilter(base, f, reg)

	q := &Query{world: w, accessors: resolved, pairs: pairs}
	q.sync()
	return q
}

// sync refreshes the matching-table cache if any table has been created
// since the last sync. Cheap no-op in the common case: a single integer
// comparison.
func (q *Query) sync() {
	if q.tables != nil && q.version == q.world.tables.version {
		return
	}
	matched := q.tables[:0]
	for _, t := range q.world.tables.all() {
		if t.ID() == despawnedTableID {
			continue
		}
		if matchesAny(q.pairs, t.Archetype()) {
			matched = append(matched, t)
		}
	}
	q.tables = matched
	q.version = q.world.tables.version
}

// Matches reports whether archetype satisfies the query's filter, without
// reference to any particular table's current contents (SPEC_FULL.md §12).
func (q *Query) Matches(archetype Archetype) bool {
	return matchesAny(q.pairs, archetype)
}

func (q *Query) rowAt(t *Table, row int) Row {
	values := make([]any, len(q.accessors))
	for i, a := range q.accessors {
		if c := t.column(a.id); c != nil {
			values[i] = c.ptr(row)
		}
	}
	return Row{Entity: t.EntityAt(row), values: values}
}

// All returns a range-over-func iterator over every currently matching row.
// Structural mutations staged during iteration are not applied until
// Flush, so iteration itself always sees a stable set of tables.
func (q *Query) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		q.sync()
		for _, t := range q.tables {
			n := t.Len()
			for row := 0; row < n; row++ {
				if !yield(q.rowAt(t, row)) {
					return
				}
			}
		}
	}
}

// ForEach calls fn for every matching row, stopping early if fn returns
// false.
func (q *Query) ForEach(fn func(Row) bool) {
	for r := range q.All() {
		if !fn(r) {
			return
		}
	}
}

// Len returns the total number of rows across every currently matching
// table.
func (q *Query) Len() int {
	q.sync()
	n := 0
	for _, t := range q.tables {
		n += t.Len()
	}
	return n
}

// Reduce folds fn over every matching row, starting from init. A
// package-level function rather than a method since Go methods cannot
// themselves carry type parameters.
func Reduce[Acc any](q *Query, init Acc, fn func(Acc, Row) Acc) Acc {
	acc := init
	for r := range q.All() {
		acc = fn(acc, r)
	}
	return acc
}

// Single returns the query's one matching row, and false if the query
// currently matches zero or more than one row.
func (q *Query) Single() (Row, bool) {
	q.sync()
	var found Row
	count := 0
	for _, t := range q.tables {
		n := t.Len()
		if n == 0 {
			continue
		}
		count += n
		if count > 1 {
			return Row{}, false
		}
		found = q.rowAt(t, 0)
	}
	if count != 1 {
		return Row{}, false
	}
	return found, true
}

// collectRows materializes every matching row, for Pairs' O(n^2) combination
// walk.
func (q *Query) collectRows() []Row {
	q.sync()
	out := make([]Row, 0, q.Len())
	for _, t := range q.tables {
		n := t.Len()
		for row := 0; row < n; row++ {
			out = append(out, q.rowAt(t, row))
		}
	}
	return out
}

// Pairs yields every unordered combination of two distinct matching rows
// exactly once, for systems that compare or interact every entity against
// every other (e.g. broad-phase collision).
func (q *Query) Pairs() iter.Seq[[2]Row] {
	return func(yield func([2]Row) bool) {
		rows := q.collectRows()
		for i := 0; i < len(rows); i++ {
			for j := i + 1; j < len(rows); j++ {
				if !yield([2]Row{rows[i], rows[j]}) {
					return
				}
			}
		}
	}
}

// Get returns the row for a single entity if it is currently live and its
// last-flushed table satisfies the query's filter (SPEC_FULL.md §14.1:
// Query visibility reflects last-flushed state, never a pending, unflushed
// destination).
func (q *Query) Get(e Entity) (Row, bool) {
	if !q.world.isAlive(e) {
		return Row{}, false
	}
	loc := q.world.locationOf(e)
	t, ok := q.world.tables.get(loc.TableID)
	if !ok || t.ID() == despawnedTableID {
		return Row{}, false
	}
	if loc.TableRow < 0 || loc.TableRow >= t.Len() || t.EntityAt(loc.TableRow) != e {
		return Row{}, false
	}
	if !matchesAny(q.pairs, t.Archetype()) {
		return Row{}, false
	}
	return q.rowAt(t, loc.TableRow), true
}
