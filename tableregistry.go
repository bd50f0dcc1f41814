package vellum

// despawnedTableID is the stable ID of the sentinel table created by
// newTableRegistry, always the first table acquired for despawnedMask.
const despawnedTableID = 0

// tableRegistry maps archetype masks to tables, creating tables on demand
// (spec.md §4.4). Table 0 is a pre-created sentinel: archetype 0 (the
// despawned archetype), never holds live entities, and is both the source
// table for freshly spawned entities and the target for despawns.
type tableRegistry struct {
	tables     []*Table
	maskToID   map[Archetype]int
	version    uint64 // bumped every time a table is created
	onTable    func(*Table)
	components *registry
}

func newTableRegistry(reg *registry, onTable func(*Table)) *tableRegistry {
	tr := &tableRegistry{
		maskToID:   make(map[Archetype]int, 16),
		onTable:    onTable,
		components: reg,
	}
	tr.acquire(despawnedMask) // table 0, the sentinel
	return tr
}

// acquire returns the table for mask, creating (and announcing) it if
// necessary.
func (tr *tableRegistry) acquire(mask Archetype) *Table {
	if id, ok := tr.maskToID[mask]; ok {
		return tr.tables[id]
	}
	id := len(tr.tables)
	t := newTable(id, mask, tr.components)
	tr.tables = append(tr.tables, t)
	tr.maskToID[mask] = id
	tr.version++
	if tr.onTable != nil {
		tr.onTable(t)
	}
	return t
}

// get returns the table with the given ID, or nil and false if id is
// unknown (spec.md §7: "Unknown table lookup ... Return undefined").
func (tr *tableRegistry) get(id int) (*Table, bool) {
	if id < 0 || id >= len(tr.tables) {
		return nil, false
	}
	return tr.tables[id], true
}

// all returns every table currently registered, including the sentinel.
func (tr *tableRegistry) all() []*Table {
	return tr.tables
}
