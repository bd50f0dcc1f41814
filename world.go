package vellum

import (
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// World owns every other component and exposes the library's public
// surface (spec.md §4.12). A World is not safe for concurrent use: it is
// single-threaded cooperative, matching spec.md §5.
type World struct {
	// id is a debug identifier, useful for distinguishing worlds in logs
	// when a process runs more than one (e.g. tests).
	id uuid.UUID

	config WorldConfig
	log    *zap.Logger

	components *registry
	tables     *tableRegistry
	entities   *entityManager
	events     *EventBus
	resources  *Resources

	// Startup, PreUpdate, Update, PostUpdate are the four pre-registered
	// schedules every World carries (spec.md §4.12, §6). The set is open:
	// callers may build additional *Schedule values with NewSchedule.
	Startup    *Schedule
	PreUpdate  *Schedule
	Update     *Schedule
	PostUpdate *Schedule

	startedUp bool
}

// Option configures a World at construction time.
type Option func(*World)

// WithConfig sets the world's configuration, normalizing empty fields to
// their defaults.
func WithConfig(cfg WorldConfig) Option {
	return func(w *World) {
		cfg.normalize()
		w.config = cfg
	}
}

// WithLogger attaches a structured logger. Without this option a World
// logs nothing (zap.NewNop()).
func WithLogger(log *zap.Logger) Option {
	return func(w *World) { w.log = log }
}

// NewWorld constructs a World with the sentinel table at ID 0, the Entity
// type registered at component ID 0, and the four default schedules ready
// to receive systems (spec.md §4.12).
func NewWorld(opts ...Option) *World {
	w := &World{
		id:     uuid.New(),
		config: DefaultWorldConfig(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.components = newRegistry()
	w.entities = newEntityManager(w)
	w.events = NewEventBus()
	w.resources = newResources(w)
	w.tables = newTableRegistry(w.components, func(t *Table) {
		w.logger().Debug("table created",
			logField("tableId", t.ID()),
			logField("archetypeTag", archetypeTag(t.Archetype())),
			logField("columns", len(t.cols)),
		)
		w.events.publish(TableCreated{Table: t})
	})

	w.Startup = NewSchedule(w)
	w.PreUpdate = NewSchedule(w)
	w.Update = NewSchedule(w)
	w.PostUpdate = NewSchedule(w)

	return w
}

// ID returns the world's debug identifier.
func (w *World) ID() uuid.UUID { return w.id }

// The world's logger is reached through w.logger(), defined in logging.go,
// which falls back to a no-op logger when none was configured.

// Resources returns the world's resource registry (spec.md §4.9).
func (w *World) Resources() *Resources { return w.resources }

// Events returns the world's event bus, shared between internal
// notifications (TableCreated, ComponentAttached) and application code
// that wants the same priority/de-dup mechanism.
func (w *World) Events() *EventBus { return w.events }

// Tables returns every table currently registered, including the sentinel
// at ID 0 (SPEC_FULL.md §12 introspection supplement).
func (w *World) Tables() []*Table { return w.tables.all() }

// Table returns the table with the given ID, and whether it exists.
func (w *World) Table(id int) (*Table, bool) { return w.tables.get(id) }

// HasPending reports whether any entity currently has a staged, unflushed
// destination change (SPEC_FULL.md §12).
func (w *World) HasPending() bool { return w.entities.hasPending() }

// PendingCount returns the number of entities with a staged, unflushed
// destination change (SPEC_FULL.md §12).
func (w *World) PendingCount() int { return w.entities.pendingCount() }

// Spawn stages a new entity with the given components and returns a Ref to
// it. The entity does not occupy a table until the next Flush (spec.md
// §4.6).
func (w *World) Spawn(components ...any) Ref {
	e := w.entities.spawn(components)
	return Ref{world: w, entity: e}
}

// Entity wraps an already-known Entity handle in a Ref bound to this
// world, without spawning anything.
func (w *World) Entity(e Entity) Ref {
	return Ref{world: w, entity: e}
}

// Flush resolves every staged structural mutation, moving entities between
// tables. Per-entity failures are logged and do not block the remaining
// staged entities; the returned error aggregates all of them via multierr
// (SPEC_FULL.md §10.3).
func (w *World) Flush() error {
	return w.entities.flush()
}

func (w *World) isAlive(e Entity) bool {
	return w.entities.isLive(e) && w.entities.currentLocation(e).tableID != despawnedTableID
}

func (w *World) locationOf(e Entity) Location {
	loc := w.entities.currentLocation(e)
	return Location{TableID: loc.tableID, TableRow: loc.tableRow}
}

func (w *World) hasComponent(e Entity, t reflect.Type) bool {
	id, ok := w.components.lookup(t)
	if !ok {
		return false
	}
	tbl, ok := w.tables.get(w.entities.currentLocation(e).tableID)
	if !ok {
		return false
	}
	return tbl.Archetype().has(id)
}

// getComponent resolves e's component of type T in its current
// (last-flushed) table. A package-level function, since Ref.Get cannot
// itself be a generic method.
func getComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.isAlive(e) {
		return nil, false
	}
	loc := w.entities.currentLocation(e)
	tbl, ok := w.tables.get(loc.tableID)
	if !ok {
		return nil, false
	}
	id, ok := w.components.lookup(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	col, ok := Column[T](tbl, id)
	if !ok || loc.tableRow < 0 || loc.tableRow >= len(col) {
		return nil, false
	}
	return &col[loc.tableRow], true
}

// AddPlugin invokes fn with the world immediately, returning any error it
// produces (spec.md §4.12: "addPlugin(fn): invoke with the world"). The
// core is synchronous, so there is no promise to retain; a plugin that
// needs to defer work should register it as a Startup system instead.
func (w *World) AddPlugin(fn func(*World) error) error {
	return fn(w)
}

// Run executes one full world tick: Startup (only on the first call across
// this World's lifetime), then PreUpdate, Update, PostUpdate in order,
// flushing staged mutations before or after each schedule according to
// config.EntityUpdateTiming (spec.md §4.12). FlushCustom disables the
// implicit flush entirely; callers must call Flush themselves.
func (w *World) Run() error {
	if !w.startedUp {
		w.startedUp = true
		if err := w.runSchedule(w.Startup); err != nil {
			return err
		}
	}
	for _, s := range []*Schedule{w.PreUpdate, w.Update, w.PostUpdate} {
		if err := w.runSchedule(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) runSchedule(s *Schedule) error {
	if w.config.EntityUpdateTiming == FlushBefore {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if err := s.Prepare(); err != nil {
		return err
	}
	if err := s.Run(); err != nil {
		return err
	}
	if w.config.EntityUpdateTiming == FlushAfter {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
