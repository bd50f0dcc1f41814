// Profiling:
// go build ./cmd/profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"
	"github.com/vellum-ecs/vellum"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := vellum.NewWorld()
		query := vellum.NewQuery(w, []vellum.Accessor{vellum.Of[comp1](), vellum.Of[comp2]()})

		for range iters {
			for range numEntities {
				w.Spawn(comp1{}, comp2{})
			}
			if err := w.Flush(); err != nil {
				panic(err)
			}

			var dead []vellum.Entity
			query.ForEach(func(row vellum.Row) bool {
				c1, _ := vellum.RowValue[comp1](row, 0)
				c2, _ := vellum.RowValue[comp2](row, 1)
				c1.V += c2.V
				c1.W += c2.W
				dead = append(dead, row.Entity)
				return true
			})
			for _, e := range dead {
				w.Entity(e).Despawn()
			}
			if err := w.Flush(); err != nil {
				panic(err)
			}
		}
	}
}
