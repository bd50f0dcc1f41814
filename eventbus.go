package vellum

import "sort"

// subscriber pairs a callback with its priority and the order it was
// added, so ties break by insertion order (spec.md §4.11, §8 property 8).
type subscriber struct {
	key      callbackKey
	priority int
	seq      int
	fn       func(any)
}

// EventBus is a prioritised, de-duplicated subscriber list (spec.md §4.11).
// It is used internally for table-creation notifications and the
// ComponentAttached supplement (SPEC_FULL.md §12), and is exposed on World
// for application code to reuse the same mechanism.
type EventBus struct {
	subs    []subscriber
	byFn    map[uintptr]int // key -> index into subs, for de-dup
	nextSeq int
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{byFn: make(map[uintptr]int)}
}

// callbackKey identifies a callback for de-duplication purposes. Go cannot
// compare arbitrary func values, so callers that want `subscribe(cb);
// subscribe(cb)` to collapse to one subscriber (spec.md §8 property 7) pass
// a stable key alongside the callback; callers that don't care about
// de-duplication can pass 0, which never de-dupes against another 0.
type callbackKey uintptr

// Subscribe registers fn to be invoked on every Publish, ordered by
// (priority ascending, insertion order). Subscribing the same key twice
// updates its priority (re-sorting if it changed) instead of adding a
// second entry. Returns the bus so calls can be chained, matching
// spec.md's "subscribe chaining ... must be supported."
func (b *EventBus) Subscribe(key callbackKey, priority int, fn func(any)) *EventBus {
	if idx, ok := b.byFn[uintptr(key)]; ok && key != 0 {
		if b.subs[idx].priority != priority {
			b.subs[idx].priority = priority
			b.resort()
		}
		return b
	}
	s := subscriber{key: key, priority: priority, seq: b.nextSeq, fn: fn}
	b.nextSeq++
	b.subs = append(b.subs, s)
	if key != 0 {
		b.byFn[uintptr(key)] = len(b.subs) - 1
	}
	b.resort()
	return b
}

// Unsubscribe removes the subscriber registered under key.
func (b *EventBus) Unsubscribe(key callbackKey) {
	idx, ok := b.byFn[uintptr(key)]
	if !ok {
		return
	}
	b.subs = append(b.subs[:idx], b.subs[idx+1:]...)
	delete(b.byFn, uintptr(key))
	for k, i := range b.byFn {
		if i > idx {
			b.byFn[k] = i - 1
		}
	}
}

// Clear removes every subscriber.
func (b *EventBus) Clear() {
	b.subs = nil
	b.byFn = make(map[uintptr]int)
}

// HasSubscribers reports whether the bus currently has any subscriber.
func (b *EventBus) HasSubscribers() bool { return len(b.subs) > 0 }

// SubscriberCount returns the number of distinct subscribers.
func (b *EventBus) SubscriberCount() int { return len(b.subs) }

// publish invokes every subscriber with event, in ascending priority with
// insertion order breaking ties.
func (b *EventBus) publish(event any) {
	for _, s := range b.subs {
		s.fn(event)
	}
}

// Publish is the exported form of publish, for application-level use of
// the same bus mechanism outside the world's internal notifications.
func (b *EventBus) Publish(event any) { b.publish(event) }

func (b *EventBus) resort() {
	sort.SliceStable(b.subs, func(i, j int) bool {
		if b.subs[i].priority != b.subs[j].priority {
			return b.subs[i].priority < b.subs[j].priority
		}
		return b.subs[i].seq < b.subs[j].seq
	})
	// Sorting moves subscriber indices around: rebuild the de-dup map.
	clear(b.byFn)
	for i, s := range b.subs {
		if s.key != 0 {
			b.byFn[uintptr(s.key)] = i
		}
	}
}

// ComponentAttached is published on the World's event bus immediately
// after Flush moves an entity into a table whose archetype includes a
// component the entity's previous table lacked (SPEC_FULL.md §12). It is
// additive instrumentation grounded in the teacher source's abandoned "v1"
// onComponentAdded signal, reintroduced as an event rather than a parallel
// mutation path.
type ComponentAttached struct {
	Entity Entity
	Table  *Table
}

// TableCreated is published whenever the table registry creates a new
// table (spec.md §4.4, §6: the `createTable` event).
type TableCreated struct {
	Table *Table
}
