// Package vellum implements an archetype-based Entity-Component-System
// world: component data for entities sharing the same component set is
// stored column-major in a table, structural mutation (spawn, despawn, add,
// remove) is staged and applied in bulk by Flush, and queries compile an
// accessor list plus a filter tree into a cached view over the matching
// tables.
package vellum
