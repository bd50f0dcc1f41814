package vellum

import (
	"encoding/binary"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// encode builds the archetype mask for a set of component types, always
// including the reserved Entity bit. The encoder never returns the zero
// mask: bit 0 (Entity) is always set.
func encode(r *registry, types []reflect.Type) Archetype {
	var m Archetype
	m.set(entityComponentID)
	for _, t := range types {
		m.set(r.id(t))
	}
	return m
}

// decode walks mask from the lowest bit to the highest and returns the
// registered type for each set bit, in ascending ID order. Sparse
// registries (a bit whose ID was never registered) are skipped rather than
// causing a panic, per spec.md §4.2.
func decode(r *registry, mask Archetype) []reflect.Type {
	ids := mask.ids()
	out := make([]reflect.Type, 0, len(ids))
	for _, id := range ids {
		if t := r.typeOf(id); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// despawnedMask is the single reserved archetype value (all bits clear)
// used as the sentinel table's identity: the source for freshly spawned
// entities and the terminal sink for despawns.
var despawnedMask Archetype

// archetypeTag computes a short, stable debug identifier for an archetype,
// used only in the table-created log line (world.go) as an xxhash of the
// mask's bytes, so the full 256-bit mask need not be printed.
func archetypeTag(mask Archetype) uint64 {
	var buf [maskWords * 8]byte
	for i, word := range mask {
		binary.LittleEndian.PutUint64(buf[i*8:], word)
	}
	return xxhash.Sum64(buf[:])
}
