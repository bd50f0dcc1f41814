package vellum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }
type marker struct{}

func TestQuerySpawnFlushThenMatch(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[position](), Of[velocity]()})
	require.Equal(t, 0, q.Len())

	w.Spawn(position{X: 1}, velocity{X: 2})
	w.Spawn(position{X: 3}) // missing velocity: must not match
	require.NoError(t, w.Flush())

	require.Equal(t, 1, q.Len())
	var seen []position
	q.ForEach(func(r Row) bool {
		p, _ := RowValue[position](r, 0)
		seen = append(seen, *p)
		return true
	})
	require.Equal(t, []position{{X: 1}}, seen)
}

func TestQueryMaybeAccessorDoesNotFilter(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[position](), Maybe[velocity]()})
	w.Spawn(position{X: 1})
	w.Spawn(position{X: 2}, velocity{X: 5})
	require.NoError(t, w.Flush())

	require.Equal(t, 2, q.Len())
	var withVel, withoutVel int
	q.ForEach(func(r Row) bool {
		if v, ok := RowValue[velocity](r, 1); ok && v != nil {
			withVel++
		} else {
			withoutVel++
		}
		return true
	})
	require.Equal(t, 1, withVel)
	require.Equal(t, 1, withoutVel)
}

func TestQueryMutationThroughRowIsVisible(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[position](), Of[velocity]()})
	ref := w.Spawn(position{X: 0}, velocity{X: 1})
	require.NoError(t, w.Flush())

	q.ForEach(func(r Row) bool {
		p, _ := RowValue[position](r, 0)
		v, _ := RowValue[velocity](r, 1)
		p.X += v.X
		return true
	})

	got, ok := Get[position](ref)
	require.True(t, ok)
	require.Equal(t, 1.0, got.X)
}

func TestQuerySingle(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[marker]()})
	_, ok := q.Single()
	require.False(t, ok, "empty query must not have a single row")

	w.Spawn(marker{})
	require.NoError(t, w.Flush())
	row, ok := q.Single()
	require.True(t, ok)
	require.NotZero(t, row.Entity)

	w.Spawn(marker{})
	require.NoError(t, w.Flush())
	_, ok = q.Single()
	require.False(t, ok, "two matching rows must not have a single")
}

func TestQueryGetReflectsLastFlushedState(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[position]()})
	ref := w.Spawn(position{X: 1})
	// Not yet flushed: entity has no table residency yet.
	_, ok := q.Get(ref.Entity())
	require.False(t, ok)

	require.NoError(t, w.Flush())
	_, ok = q.Get(ref.Entity())
	require.True(t, ok)

	// Stage a removal but don't flush: Get must still see the pre-removal
	// state (SPEC_FULL.md §14.1).
	Remove[position](ref)
	_, ok = q.Get(ref.Entity())
	require.True(t, ok, "Get must reflect last-flushed state, not the pending destination")

	require.NoError(t, w.Flush())
	_, ok = q.Get(ref.Entity())
	require.False(t, ok)
}

func TestQueryMatchesArchetype(t *testing.T) {
	w := NewWorld()
	q := NewQuery(w, []Accessor{Of[position]()}, Without(Type[marker]()))
	posID := componentID[position](w.components)

	var match Archetype
	match.set(entityComponentID)
	match.set(posID)
	require.True(t, q.Matches(match))

	match.set(componentID[marker](w.components))
	require.False(t, q.Matches(match), "marker should be forbidden")
}
