package vellum

import "fmt"

// Context is passed to every System's Run, bundling the owning World with
// whatever arguments that system's Args hook resolved at Prepare time
// (spec.md §4.10: "await systems[i](...args[i])").
type Context struct {
	World *World
	Args  []any
}

// Arg returns Args[i] if present, else nil. Systems that declared no Args
// method simply never index past 0.
func (c *Context) Arg(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// System is one unit of scheduled work. Args is optional: a system that
// needs no world-resolved arguments simply does not implement it, matching
// spec.md §4.10's `system.getSystemArguments?.(world) ?? []`.
type System interface {
	Run(ctx *Context) error
}

// ArgResolver is implemented by systems that need Prepare to resolve extra
// arguments from the world before every Run (e.g. a cached Query or
// resource pointer).
type ArgResolver interface {
	Args(w *World) ([]any, error)
}

// Schedule is an ordered list of systems plus each system's pre-resolved
// argument tuple (spec.md §4.10). A World creates the four default
// schedules (Startup, PreUpdate, Update, PostUpdate) but the set is open:
// any Schedule value may be constructed and run independently.
type Schedule struct {
	world   *World
	systems []System
	args    [][]any
	index   map[System]int
}

// NewSchedule creates an empty schedule bound to w, used to resolve each
// system's Args.
func NewSchedule(w *World) *Schedule {
	return &Schedule{world: w, index: make(map[System]int)}
}

// AddSystems appends one or more systems, panicking if any is already
// present (spec.md: "reject duplicates loudly").
func (s *Schedule) AddSystems(systems ...System) {
	for _, sys := range systems {
		if _, ok := s.index[sys]; ok {
			panic(fmt.Sprintf("vellum: system %T already added to schedule", sys))
		}
		s.index[sys] = len(s.systems)
		s.systems = append(s.systems, sys)
		s.args = append(s.args, nil)
	}
}

// RemoveSystem deletes sys from the schedule, panicking if it is not
// present (spec.md: "reject missing loudly").
func (s *Schedule) RemoveSystem(sys System) {
	i, ok := s.index[sys]
	if !ok {
		panic(fmt.Sprintf("vellum: system %T is not in this schedule", sys))
	}
	s.systems = append(s.systems[:i], s.systems[i+1:]...)
	s.args = append(s.args[:i], s.args[i+1:]...)
	delete(s.index, sys)
	for sys2, j := range s.index {
		if j > i {
			s.index[sys2] = j - 1
		}
	}
}

// HasSystem reports whether sys is currently scheduled.
func (s *Schedule) HasSystem(sys System) bool {
	_, ok := s.index[sys]
	return ok
}

// Prepare resolves each system's argument list via its optional Args
// hook, storing the result. Prepare is idempotent: a second call replaces
// every system's previously resolved arguments (spec.md §4.10).
func (s *Schedule) Prepare() error {
	for i, sys := range s.systems {
		resolver, ok := sys.(ArgResolver)
		if !ok {
			s.args[i] = nil
			continue
		}
		resolved, err := resolver.Args(s.world)
		if err != nil {
			return fmt.Errorf("vellum: schedule prepare: system %T: %w", sys, err)
		}
		s.args[i] = resolved
	}
	return nil
}

// Run invokes every system in order, aborting on the first error: later
// systems do not execute (spec.md §4.10, §8 property / scenario S6).
func (s *Schedule) Run() error {
	for i, sys := range s.systems {
		ctx := &Context{World: s.world, Args: s.args[i]}
		if err := sys.Run(ctx); err != nil {
			return fmt.Errorf("vellum: schedule run: system %T: %w", sys, err)
		}
	}
	return nil
}
