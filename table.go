package vellum

import "reflect"

// column is one component type's dense, type-erased storage within a
// table. It is backed by a reflect.Value wrapping a concrete []T slice, so
// indexing and in-place writes touch the real storage directly (no boxing
// per access) while still letting the table treat every column uniformly
// regardless of T.
type column struct {
	typ    reflect.Type
	values reflect.Value // kind == reflect.Slice, element type == typ
}

func newColumn(t reflect.Type) *column {
	return &column{typ: t, values: reflect.MakeSlice(reflect.SliceOf(t), 0, 0)}
}

func (c *column) len() int { return c.values.Len() }

func (c *column) append(v any) {
	c.values = reflect.Append(c.values, reflect.ValueOf(v))
}

func (c *column) set(i int, v any) {
	c.values.Index(i).Set(reflect.ValueOf(v))
}

func (c *column) get(i int) any {
	return c.values.Index(i).Interface()
}

// ptr returns a pointer to element i as any (boxing a *T), letting callers
// mutate the column in place without a full Column[T] cast. Slice elements
// obtained via reflect.Value.Index are always addressable, regardless of
// whether the slice Value itself is addressable.
func (c *column) ptr(i int) any {
	return c.values.Index(i).Addr().Interface()
}

// swapRemove implements spec.md §4.3's swapRemove: overwrite index i with
// the last element and shrink by one, returning the removed value. O(1),
// preserves every other index.
func (c *column) swapRemove(i int) any {
	last := c.values.Len() - 1
	removed := c.values.Index(i).Interface()
	if i != last {
		c.values.Index(i).Set(c.values.Index(last))
	}
	c.values = c.values.Slice(0, last)
	return removed
}

// fieldValue is a type-erased component instance tagged with its
// component ID, used for table.move's newComponents and the entity
// manager's staged payloads (spec.md §9: "a type-erased value plus
// componentId").
type fieldValue struct {
	id    ComponentID
	value any
}

// Table is column-major storage for every entity sharing one archetype
// (spec.md §4.3). Tag/zero-sized component types contribute a bit to the
// archetype mask but never get a column (spec.md: "Columns for zero-sized
// ... component types may be omitted").
type Table struct {
	id        int
	archetype Archetype
	ids       []ComponentID // sized (non-tag) component IDs, ascending
	slots     [MaxComponentTypes]int
	cols      []*column
	entities  []Entity
}

func newTable(id int, mask Archetype, reg *registry) *Table {
	t := &Table{id: id, archetype: mask}
	for i := range t.slots {
		t.slots[i] = -1
	}
	for _, cid := range mask.ids() {
		if cid == entityComponentID {
			continue
		}
		typ := reg.typeOf(cid)
		if typ == nil || typ.Size() == 0 {
			continue // tag type: bit present, no column
		}
		t.slots[cid] = len(t.cols)
		t.cols = append(t.cols, newColumn(typ))
		t.ids = append(t.ids, cid)
	}
	return t
}

// ID returns the table's stable identity within its World.
func (t *Table) ID() int { return t.id }

// Archetype returns the component mask identifying this table.
func (t *Table) Archetype() Archetype { return t.archetype }

// Len returns the number of resident entity rows.
func (t *Table) Len() int { return len(t.entities) }

// HasColumn reports whether a sized column exists for id, O(1).
func (t *Table) HasColumn(id ComponentID) bool {
	return int(id) >= 0 && int(id) < len(t.slots) && t.slots[id] != -1
}

// EntityAt returns the entity at row, or the zero Entity if row is out of
// range.
func (t *Table) EntityAt(row int) Entity {
	if row < 0 || row >= len(t.entities) {
		return Entity{}
	}
	return t.entities[row]
}

// GetRow returns the tuple of all present component values at row, in
// column order; empty for an out-of-range row (spec.md §4.3, §8).
func (t *Table) GetRow(row int) []fieldValue {
	if row < 0 || row >= len(t.entities) {
		return nil
	}
	out := make([]fieldValue, 0, len(t.cols))
	for i, cid := range t.ids {
		out = append(out, fieldValue{id: cid, value: t.cols[i].get(row)})
	}
	return out
}

// column returns the column for id, or nil if absent.
func (t *Table) column(id ComponentID) *column {
	if !t.HasColumn(id) {
		return nil
	}
	return t.cols[t.slots[id]]
}

// appendEntityRow appends a brand-new row: the entity plus one staged
// value per sized column (missing columns get the type's zero value, which
// only happens for components the destination archetype gained that
// weren't staged — filled in silently rather than panicking, to keep
// column-length parity, spec.md §8 property 2).
func (t *Table) appendEntityRow(e Entity, staged map[ComponentID]any) int {
	row := len(t.entities)
	t.entities = append(t.entities, e)
	for i, cid := range t.ids {
		if v, ok := staged[cid]; ok {
			t.cols[i].append(v)
		} else {
			t.cols[i].append(reflect.Zero(t.cols[i].typ).Interface())
		}
	}
	return row
}

// removeRow swap-removes row from t, returning the entity that now
// occupies row after the swap if a back-fill happened (spec.md §4.3's
// back-fill rule), or the zero Entity if row was the last row.
func (t *Table) removeRow(row int) (backfilled Entity, didBackfill bool) {
	last := len(t.entities) - 1
	if row < 0 || row > last {
		return Entity{}, false
	}
	for _, c := range t.cols {
		c.swapRemove(row)
	}
	if row != last {
		t.entities[row] = t.entities[last]
		backfilled, didBackfill = t.entities[row], true
	}
	t.entities = t.entities[:last]
	return backfilled, didBackfill
}

// move is the central structural-mutation primitive (spec.md §4.3). It
// relocates the entity at source row row into target, writing newComponents
// over whatever the target archetype provides, and returns the entity's new
// location. relocate is invoked for any other entity whose row changes as a
// side effect of the source table's swap-remove back-fill.
//
// If source == target, this only overwrites columns named in newComponents
// in place (columns target/source lacks are silently ignored) and the row
// does not change.
//
// If row is out of range, move is a no-op and ok is false.
func move(source *Table, row int, target *Table, newComponents []fieldValue, relocate func(Entity, Location)) (loc Location, ok bool) {
	if row < 0 || row >= len(source.entities) {
		return Location{}, false
	}
	if source == target {
		for _, v := range newComponents {
			if c := source.column(v.id); c != nil {
				c.set(row, v.value)
			}
		}
		return Location{TableID: source.id, TableRow: row}, true
	}

	entity := source.entities[row]
	staged := make(map[ComponentID]any, len(source.ids)+len(newComponents))
	for i, cid := range source.ids {
		removed := source.cols[i].swapRemove(row)
		if target.HasColumn(cid) {
			staged[cid] = removed
		}
	}
	lastIdx := len(source.entities) - 1
	if row != lastIdx {
		source.entities[row] = source.entities[lastIdx]
		relocate(source.entities[row], Location{TableID: source.id, TableRow: row})
	}
	source.entities = source.entities[:lastIdx]

	for _, v := range newComponents {
		if target.HasColumn(v.id) {
			staged[v.id] = v.value
		}
	}
	newRow := target.appendEntityRow(entity, staged)
	return Location{TableID: target.id, TableRow: newRow}, true
}

// Column returns the live, mutable slice for component type T, sharing
// storage with the table (writes through the returned slice are visible to
// every other holder), and whether the column exists.
func Column[T any](t *Table, id ComponentID) ([]T, bool) {
	c := t.column(id)
	if c == nil {
		return nil, false
	}
	s, ok := c.values.Interface().([]T)
	return s, ok
}
