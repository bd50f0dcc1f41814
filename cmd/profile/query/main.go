// Profiling:
// go build ./cmd/profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query mem.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

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

type comp3 struct {
	V int64
	W int64
}

type comp4 struct {
	V int64
	W int64
}

type comp5 struct {
	V int64
	W int64
}

type comp6 struct {
	V int64
	W int64
}

func main() {
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	count := 50
	iters := 10000
	entities := 100000
	run(count, iters, entities)

	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC()
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := vellum.NewWorld()
		query := vellum.NewQuery(w, []vellum.Accessor{vellum.Of[comp1](), vellum.Of[comp2]()})

		for range numEntities {
			w.Spawn(comp1{}, comp2{}, comp3{}, comp4{}, comp5{}, comp6{})
		}
		if err := w.Flush(); err != nil {
			panic(err)
		}

		for range iters {
			query.ForEach(func(row vellum.Row) bool {
				c1, _ := vellum.RowValue[comp1](row, 0)
				c2, _ := vellum.RowValue[comp2](row, 1)
				c1.V += c2.V
				c1.W += c2.W
				return true
			})
		}
	}
}
