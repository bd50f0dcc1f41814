package vellum

import "testing"

func TestArchetypeSetHasUnset(t *testing.T) {
	var m Archetype
	if !m.isZero() {
		t.Fatal("fresh Archetype should be zero")
	}
	m.set(5)
	m.set(130) // lands in a different word, exercises maskWords > 1
	if !m.has(5) || !m.has(130) {
		t.Fatal("expected bits 5 and 130 set")
	}
	if m.has(6) {
		t.Fatal("bit 6 should not be set")
	}
	m.unset(5)
	if m.has(5) {
		t.Fatal("bit 5 should be cleared")
	}
	if !m.has(130) {
		t.Fatal("unset of one bit must not disturb another")
	}
}

func TestArchetypeContains(t *testing.T) {
	var full Archetype
	full.set(1)
	full.set(2)
	full.set(3)

	var sub Archetype
	sub.set(1)
	sub.set(2)

	if !full.contains(sub) {
		t.Fatal("full should contain sub")
	}

	var extra Archetype
	extra.set(9)
	if full.contains(extra) {
		t.Fatal("full should not contain a bit it never set")
	}
}

func TestArchetypeIntersects(t *testing.T) {
	var a, b Archetype
	a.set(4)
	b.set(4)
	b.set(200)
	if !a.intersects(b) {
		t.Fatal("a and b share bit 4")
	}
	var c Archetype
	c.set(7)
	if a.intersects(c) {
		t.Fatal("a and c share no bits")
	}
}

func TestArchetypeIDs(t *testing.T) {
	var m Archetype
	m.set(0)
	m.set(64)
	m.set(65)
	m.set(255)
	got := m.ids()
	want := []ComponentID{0, 64, 65, 255}
	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d (%v)", len(want), len(got), got)
	}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("ids()[%d] = %d, want %d", i, got[i], id)
		}
	}
}

func TestArchetypeAndNot(t *testing.T) {
	var a Archetype
	a.set(1)
	a.set(2)
	a.set(3)
	var b Archetype
	b.set(2)

	out := a.andNot(b)
	if out.has(2) {
		t.Fatal("andNot should clear bit 2")
	}
	if !out.has(1) || !out.has(3) {
		t.Fatal("andNot should preserve bits not in b")
	}
}
