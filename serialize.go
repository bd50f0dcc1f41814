package vellum

// SerializedEntity is the debug/test wire record for an Entity: a
// two-field {index, generation} pair (spec.md §6). It exists purely for
// tests and tooling that need an entity handle to cross a boundary outside
// the World (e.g. a snapshot file); it is never consulted on the hot path
// of spawn/insert/remove/despawn/flush.
type SerializedEntity struct {
	Index      uint32
	Generation uint32
}

// PlaceholderEntity is the reserved sentinel value denoting "no entity",
// distinct from any value Serialize can produce for a real handle (spec.md
// §6: "{index: 2^32-1, generation: 1} is reserved as PLACEHOLDER").
var PlaceholderEntity = SerializedEntity{Index: ^uint32(0), Generation: 1}

// Serialize converts e to its debug wire form.
func Serialize(e Entity) SerializedEntity {
	return SerializedEntity{Index: e.id, Generation: e.version}
}

// Deserialize converts a debug wire record back into an Entity handle.
// Deserializing PlaceholderEntity yields the zero Entity.
func Deserialize(s SerializedEntity) Entity {
	if s == PlaceholderEntity {
		return Entity{}
	}
	return Entity{id: s.Index, version: s.Generation}
}
