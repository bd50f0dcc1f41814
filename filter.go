package vellum

import (
	"fmt"
	"reflect"
)

// pair is one (require, forbid) alternative in a filter's disjunctive
// normal form (spec.md §4.8): an archetype matches the pair iff it has
// every bit in require and none in forbid.
type pair struct {
	require Archetype
	forbid  Archetype
}

func (p pair) matches(arch Archetype) bool {
	return arch.contains(p.require) && !arch.intersects(p.forbid)
}

// satisfiable reports whether require and forbid share no bit — an
// unsatisfiable pair (some bit required and forbidden at once) can never
// match any archetype.
func (p pair) satisfiable() bool {
	return !p.require.intersects(p.forbid)
}

// TypeTag names a component type for use in With/Without, without forcing
// every filter combinator itself to be generic (Go methods can't take type
// parameters, so the combinators stay plain functions over TypeTag values).
type TypeTag struct{ t reflect.Type }

// Type names T as a filter operand: vellum.With(vellum.Type[Position]()).
func Type[T any]() TypeTag {
	return TypeTag{t: reflect.TypeFor[T]()}
}

// Filter evaluates execute(current) -> next, folding a flat list of
// (require, forbid) pairs into a new one (spec.md §4.8). Filters compose
// via And/Or; With and Without are the leaves.
type Filter interface {
	apply(current []pair, reg *registry) []pair
}

type bitsFilter struct {
	tags []TypeTag
	to   func(p *pair, bits Archetype)
}

func (f bitsFilter) apply(current []pair, reg *registry) []pair {
	var bits Archetype
	for _, tag := range f.tags {
		bits.set(reg.id(tag.t))
	}
	out := make([]pair, len(current))
	copy(out, current)
	for i := range out {
		f.to(&out[i], bits)
	}
	return out
}

// With ORs each type's bit into every current pair's require mask
// (spec.md §4.8). The Entity bit is always already present in the base
// pair, so it is idempotently preserved rather than special-cased here.
func With(tags ...TypeTag) Filter {
	return bitsFilter{tags: tags, to: func(p *pair, bits Archetype) {
		p.require = p.require.or(bits)
	}}
}

// Without ORs each type's bit into every current pair's forbid mask
// (spec.md §4.8).
func Without(tags ...TypeTag) Filter {
	return bitsFilter{tags: tags, to: func(p *pair, bits Archetype) {
		p.forbid = p.forbid.or(bits)
	}}
}

type andFilter struct{ children []Filter }

// And fold-lefts each child's execute over the accumulator, matching
// spec.md §4.8's `children.reduce((acc, c) => c.execute(acc), current)`.
func And(children ...Filter) Filter {
	return andFilter{children: children}
}

func (f andFilter) apply(current []pair, reg *registry) []pair {
	acc := current
	for _, c := range f.children {
		acc = c.apply(acc, reg)
	}
	return acc
}

type orFilter struct{ children []Filter }

// Or flat-maps each child's execute over current, producing the
// disjunctive normal form (spec.md §4.8's `children.flatMap(c =>
// c.execute(current))`).
func Or(children ...Filter) Filter {
	return orFilter{children: children}
}

func (f orFilter) apply(current []pair, reg *registry) []pair {
	out := make([]pair, 0, len(current)*len(f.children))
	for _, c := range f.children {
		out = append(out, c.apply(current, reg)...)
	}
	return out
}

// resolveFilter starts from [{base, 0}] and folds f.execute over it,
// panicking if no resulting pair is satisfiable — an unsatisfiable filter
// is developer misuse (spec.md §4.8, §7), not a query that legitimately
// matches nothing.
func resolveFilter(base Archetype, f Filter, reg *registry) []pair {
	pairs := []pair{{require: base}}
	if f != nil {
		pairs = f.apply(pairs, reg)
	}
	ok := false
	for _, p := range pairs {
		if p.satisfiable() {
			ok = true
			break
		}
	}
	if !ok {
		panic(fmt.Sprintf("vellum: unsatisfiable filter: every (require, forbid) pair overlaps: %+v", pairs))
	}
	return pairs
}

func matchesAny(pairs []pair, arch Archetype) bool {
	for _, p := range pairs {
		if p.matches(arch) {
			return true
		}
	}
	return false
}
