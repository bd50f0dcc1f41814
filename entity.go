package vellum

import (
	"fmt"
	"reflect"
)

// Entity is an opaque handle to a world-resident object: an ID plus a
// version. The entity's table residency is tracked by the World, not by
// the handle. The ID of a despawned entity is reused by a later spawn, but
// every allocation takes a new version, so two distinct Entity values with
// the same ID never both refer to a live entity.
type Entity struct {
	id      uint32
	version uint32
}

// location identifies where an entity's row currently lives. A tableID of 0
// means "not resident" — the entity has either never been flushed into a
// table or has been despawned.
type location struct {
	tableID  int
	tableRow int
}

// Location is the public, read-only view of an entity's current residency.
type Location struct {
	TableID  int
	TableRow int
}

// setLocation validates and installs a new location. Negative table IDs or
// rows are a developer error (spec.md §4.5, §7) and panic rather than
// silently clamping.
func setLocation(loc *location, next Location) {
	if next.TableID < 0 || next.TableRow < 0 {
		panic(fmt.Sprintf("vellum: invalid location %+v: tableID and tableRow must be non-negative", next))
	}
	loc.tableID = next.TableID
	loc.tableRow = next.TableRow
}

// ID returns the entity's identifier. IDs are not monotonic: once an
// entity is despawned and flushed, its ID is handed to a later spawn, which
// gets a different Version.
func (e Entity) ID() uint32 { return e.id }

// Version returns the entity's generation: the value of a world-wide
// counter that is incremented on every allocation, so a recycled ID always
// carries a different version than its earlier holder.
func (e Entity) Version() uint32 { return e.version }

// String renders the entity as "id#version" for logs and test failures.
func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.id, e.version)
}

// Ref is a thin, mutation-forwarding facade over an Entity living in a
// specific World, matching spec.md §4.5's "handle carrying id and
// location; all mutating operations forward to the Entity Manager."
type Ref struct {
	world  *World
	entity Entity
}

// Entity returns the underlying opaque handle.
func (r Ref) Entity() Entity { return r.entity }

// IsAlive reports whether the entity currently occupies a non-sentinel
// table, i.e. location.tableID != 0. Despawned and never-flushed entities
// both report false.
func (r Ref) IsAlive() bool {
	return r.world.isAlive(r.entity)
}

// Despawn stages the entity's destination archetype as the sentinel (0),
// dropping any other pending payload.
func (r Ref) Despawn() {
	r.world.entities.despawn(r.entity)
}

// Location returns the entity's current, last-flushed location.
func (r Ref) Location() Location {
	return r.world.locationOf(r.entity)
}

// Insert stages value to be written onto the entity at the next Flush,
// OR-ing T's bit into the entity's destination archetype if it was absent.
// If a pending value of type T already exists it is replaced in place
// (spec.md §4.6).
func Insert[T any](r Ref, value T) Ref {
	id := componentID[T](r.world.components)
	r.world.entities.insert(r.entity, id, value)
	return r
}

// InsertTag stages the zero-sized marker type T to be added to the entity's
// destination archetype, with no payload (spec.md §4.6 insertTag).
func InsertTag[T any](r Ref) Ref {
	id := componentID[T](r.world.components)
	r.world.entities.insertTag(r.entity, id)
	return r
}

// Remove stages component type T for removal from the entity's destination
// archetype at the next Flush. Any pending payload of type T is left in
// place and simply filtered out at flush time (spec.md §4.6).
func Remove[T any](r Ref) Ref {
	id, ok := r.world.components.lookup(reflect.TypeFor[T]())
	if ok {
		r.world.entities.remove(r.entity, id)
	}
	return r
}

// Has reports whether the entity's last-flushed table archetype includes
// component type T. This reflects the last flushed state, not any pending
// structural change (spec.md §4.6).
func Has[T any](r Ref) bool {
	return r.world.hasComponent(r.entity, reflect.TypeFor[T]())
}

// Get returns a pointer to the entity's component of type T in its current
// (last-flushed) table, and whether it was present.
func Get[T any](r Ref) (*T, bool) {
	return getComponent[T](r.world, r.entity)
}
