package vellum

// Row is one yielded result of a Query: the matching entity plus one
// pointer per accessor, in the order the accessors were supplied to the
// query (spec.md §4.7). Each pointer aliases the live column storage, so
// writes through it are visible to every other holder of the same table —
// mirroring table.Column[T]'s mutation-through-reference semantics.
type Row struct {
	Entity Entity
	values []any // each element is a *T boxed as any, or nil
}

// Value returns the raw *T (boxed as any) for accessor index i, or nil if
// that accessor was a Maybe() whose table lacked the column.
func (r Row) Value(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// RowValue type-asserts accessor index i of r as *T, returning false if the
// slot is absent (a Maybe() accessor whose table lacked the column) or
// holds a different type.
func RowValue[T any](r Row, i int) (*T, bool) {
	v, ok := r.values[i].(*T)
	return v, ok
}
