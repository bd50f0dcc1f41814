package vellum

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// entityMeta is the Entity Manager's private bookkeeping for one entity
// slot: its current (last-flushed) location and a version used to detect
// stale handles after an ID is recycled.
type entityMeta struct {
	loc     location
	version uint32 // 0 means the slot holds no live entity
}

// entityManager stages destination archetypes and pending component
// payloads, and applies them in bulk on Flush (spec.md §4.6).
type entityManager struct {
	world *World

	metas       []entityMeta
	freeIDs     []uint32
	nextVersion uint32

	destinations map[Entity]Archetype
	pending      map[Entity][]fieldValue
	// order records the sequence in which entities first entered
	// destinations this batch, so flush processes staged entities in
	// staging order rather than Go's randomized map iteration order. The
	// spec permits any flush order (every entity's location stays
	// consistent regardless), but a deterministic one matches the
	// concrete scenarios' expectation that rows come out in spawn order.
	order []Entity
}

func newEntityManager(w *World) *entityManager {
	return &entityManager{
		world:        w,
		destinations: make(map[Entity]Archetype),
		pending:      make(map[Entity][]fieldValue),
	}
}

// stage records dest as e's destination, tracking e in order the first
// time it is staged this batch.
func (em *entityManager) stage(e Entity, dest Archetype) {
	if _, ok := em.destinations[e]; !ok {
		em.order = append(em.order, e)
	}
	em.destinations[e] = dest
}

func (em *entityManager) allocate() Entity {
	var id uint32
	if n := len(em.freeIDs); n > 0 {
		id = em.freeIDs[n-1]
		em.freeIDs = em.freeIDs[:n-1]
	} else {
		id = uint32(len(em.metas))
		em.metas = append(em.metas, entityMeta{})
	}
	em.nextVersion++
	ver := em.nextVersion
	em.metas[id] = entityMeta{loc: location{tableID: 0, tableRow: 0}, version: ver}
	return Entity{id: id, version: ver}
}

func (em *entityManager) isLive(e Entity) bool {
	i := int(e.id)
	return i >= 0 && i < len(em.metas) && em.metas[i].version != 0 && em.metas[i].version == e.version
}

func (em *entityManager) currentLocation(e Entity) location {
	if !em.isLive(e) {
		return location{}
	}
	return em.metas[e.id].loc
}

// destinationOf returns the entity's pending destination archetype if one
// is staged, else its current table's archetype — the base that Insert,
// InsertTag, and Remove OR/AND their bit changes into.
func (em *entityManager) destinationOf(e Entity) Archetype {
	if m, ok := em.destinations[e]; ok {
		return m
	}
	if t, ok := em.world.tables.get(em.currentLocation(e).tableID); ok {
		return t.Archetype()
	}
	return despawnedMask
}

// spawn allocates a new entity, stages its destination archetype to
// {Entity} ∪ types(components), and stages pending = [components...]
// (spec.md §4.6's `pending = [handle, ...components]`; the handle itself is
// implicit since the Entity column is never a staged field value here).
func (em *entityManager) spawn(components []any) Entity {
	e := em.allocate()
	mask := Archetype{}
	mask.set(entityComponentID)
	payload := make([]fieldValue, 0, len(components))
	for _, c := range components {
		t := reflect.TypeOf(c)
		if t == nil {
			panic("vellum: spawn component must not be nil")
		}
		id := em.world.components.id(t)
		mask.set(id)
		if t.Size() > 0 {
			payload = append(payload, fieldValue{id: id, value: c})
		}
	}
	em.stage(e, mask)
	em.pending[e] = payload
	return e
}

func (em *entityManager) insert(e Entity, id ComponentID, value any) {
	mask := em.destinationOf(e)
	mask.set(id)
	em.stage(e, mask)

	fields := em.pending[e]
	for i := range fields {
		if fields[i].id == id {
			fields[i].value = value
			em.pending[e] = fields
			return
		}
	}
	em.pending[e] = append(fields, fieldValue{id: id, value: value})
}

func (em *entityManager) insertTag(e Entity, id ComponentID) {
	mask := em.destinationOf(e)
	mask.set(id)
	em.stage(e, mask)
}

func (em *entityManager) remove(e Entity, id ComponentID) {
	mask := em.destinationOf(e)
	mask.unset(id)
	em.stage(e, mask)
	// Pending values of this type deliberately remain; flush filters them
	// out because the target table won't have the column (spec.md §4.6).
}

func (em *entityManager) despawn(e Entity) {
	em.stage(e, despawnedMask)
	em.pending[e] = nil
}

func (em *entityManager) hasPending() bool {
	return len(em.destinations) > 0
}

func (em *entityManager) pendingCount() int {
	return len(em.destinations)
}

// flush applies every staged (entity, destination) pair, moving rows
// between tables. Any iteration order is valid: table.move's back-fill
// keeps every entity's location consistent at each step (spec.md §4.6).
//
// The sentinel table at despawnedTableID never actually holds a row (it
// "never holds live entities", spec.md §4.4): an entity that has not yet
// been flushed for the first time has no real source row to remove, and a
// despawned entity gets no real target row appended. Both edges are
// special-cased below; only a genuine table-to-table transition (or an
// in-place overwrite) goes through the generic move primitive.
//
// A stale handle (one whose version no longer matches its ID's slot) is
// skipped. A per-entity failure (unknown source table, invalid row) is
// logged, collected into the returned error, and does not block the
// remaining staged entities — see SPEC_FULL.md §10.3 for the
// log-and-continue decision.
func (em *entityManager) flush() error {
	var errs error
	for _, e := range em.order {
		dest := em.destinations[e]
		meta := &em.metas[e.id]
		if meta.version == 0 || meta.version != e.version {
			continue // stale: entity was despawned and recycled mid-batch
		}
		wasResident := meta.loc.tableID != despawnedTableID

		switch {
		case !wasResident && dest == despawnedMask:
			// Spawned and despawned within the same unflushed batch:
			// never occupied a real row, so there is nothing to undo.
			meta.version = 0
			em.freeIDs = append(em.freeIDs, e.id)

		case !wasResident:
			target := em.world.tables.acquire(dest)
			row := target.appendEntityRow(e, fieldValuesToMap(em.pending[e]))
			meta.loc = location{tableID: target.id, tableRow: row}
			em.world.events.publish(ComponentAttached{Entity: e, Table: target})

		case dest == despawnedMask:
			source, ok := em.world.tables.get(meta.loc.tableID)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("vellum: flush: entity %s: unknown source table %d", e, meta.loc.tableID))
				em.world.logger().Warn("flush despawn failed: unknown source table",
					logField("entity", e.String()),
					logField("table", meta.loc.tableID),
				)
				continue
			}
			backfilled, did := source.removeRow(meta.loc.tableRow)
			if did {
				bm := &em.metas[backfilled.id]
				if bm.version == backfilled.version {
					bm.loc = location{tableID: source.id, tableRow: meta.loc.tableRow}
				}
			}
			meta.version = 0
			em.freeIDs = append(em.freeIDs, e.id)

		default:
			source, ok := em.world.tables.get(meta.loc.tableID)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("vellum: flush: entity %s: unknown source table %d", e, meta.loc.tableID))
				em.world.logger().Warn("flush move failed: unknown source table",
					logField("entity", e.String()),
					logField("table", meta.loc.tableID),
				)
				continue
			}
			target := em.world.tables.acquire(dest)
			gainedComponent := tableGained(source.Archetype(), target.Archetype())

			newLoc, moved := move(source, meta.loc.tableRow, target, em.pending[e], func(backfilled Entity, loc Location) {
				bm := &em.metas[backfilled.id]
				if bm.version == backfilled.version {
					bm.loc = location{tableID: loc.TableID, tableRow: loc.TableRow}
				}
			})
			if !moved {
				errs = multierr.Append(errs, fmt.Errorf("vellum: flush: entity %s: invalid source row %d in table %d", e, meta.loc.tableRow, source.ID()))
				em.world.logger().Warn("flush move failed",
					logField("entity", e.String()),
					logField("table", source.ID()),
					logField("row", meta.loc.tableRow),
				)
				continue
			}
			meta.loc = location{tableID: newLoc.TableID, tableRow: newLoc.TableRow}
			if gainedComponent {
				em.world.events.publish(ComponentAttached{Entity: e, Table: target})
			}
		}
	}
	em.destinations = make(map[Entity]Archetype)
	em.pending = make(map[Entity][]fieldValue)
	em.order = nil
	return errs
}

// fieldValuesToMap adapts a pending payload slice into the map
// Table.appendEntityRow expects.
func fieldValuesToMap(fields []fieldValue) map[ComponentID]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[ComponentID]any, len(fields))
	for _, f := range fields {
		out[f.id] = f.value
	}
	return out
}

// tableGained reports whether to's archetype sets any bit from's does not,
// used to decide whether to publish ComponentAttached (SPEC_FULL.md §12).
func tableGained(from, to Archetype) bool {
	return !from.contains(to)
}
