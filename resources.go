package vellum

import (
	"reflect"

	"golang.org/x/sync/singleflight"
)

// Resources is a singleton-by-type registry attached to a World (spec.md
// §4.9). At most one value of each concrete type may be stored; construction
// is lazy and happens at most once per type, with the factory call routed
// through a singleflight.Group keyed by the type. The items map itself is
// not guarded by a lock, so Resources is not safe for concurrent use, like
// the World that owns it.
type Resources struct {
	world *World

	items map[reflect.Type]any
	group singleflight.Group
}

func newResources(w *World) *Resources {
	return &Resources{world: w, items: make(map[reflect.Type]any, 8)}
}

// Set installs value as the singleton resource for its concrete type,
// overwriting whatever was previously stored there. Like SetResource, it
// stores a pointer to a copy of value, so GetResource can return it.
func (res *Resources) Set(value any) {
	if value == nil {
		panic("vellum: resource value must not be nil")
	}
	t := reflect.TypeOf(value)
	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(value))
	res.items[t] = ptr.Interface()
}

// HasType reports whether a resource of the given concrete type is
// currently present, without constructing it.
func (res *Resources) HasType(t reflect.Type) bool {
	_, ok := res.items[t]
	return ok
}

// Remove drops the resource of the given concrete type, if any.
func (res *Resources) Remove(t reflect.Type) {
	delete(res.items, t)
}

// Clear removes every stored resource.
func (res *Resources) Clear() {
	clear(res.items)
}

// GetResource returns the resource of type T, and whether it was present.
// It never constructs a missing resource; use GetOrInit or
// GetOrInitFromWorld for lazy construction.
func GetResource[T any](res *Resources) (*T, bool) {
	v, ok := res.items[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	ptr, ok := v.(*T)
	return ptr, ok
}

// SetResource installs value as the singleton resource of type T.
func SetResource[T any](res *Resources, value T) {
	res.items[reflect.TypeFor[T]()] = &value
}

// GetOrInit returns the existing resource of type T, constructing it via
// factory on first access. The factory call runs through the registry's
// singleflight.Group; the registry is not safe for concurrent use (see
// Resources).
func GetOrInit[T any](res *Resources, factory func() T) *T {
	t := reflect.TypeFor[T]()
	if v, ok := res.items[t]; ok {
		return v.(*T)
	}
	v, _, _ := res.group.Do(t.String(), func() (any, error) {
		if v, ok := res.items[t]; ok {
			return v, nil
		}
		value := factory()
		res.items[t] = &value
		return &value, nil
	})
	return v.(*T)
}

// GetOrInitFromWorld is GetOrInit for factories that need to reach into the
// owning World to build their value (spec.md's FromWorld hook), e.g. a
// resource that caches a Query or reads another resource at construction
// time.
func GetOrInitFromWorld[T any](res *Resources, factory func(*World) T) *T {
	return GetOrInit(res, func() T { return factory(res.world) })
}
