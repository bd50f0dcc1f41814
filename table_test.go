package vellum

import (
	"reflect"
	"testing"
)

func buildTable(t *testing.T, r *registry, types ...reflect.Type) *Table {
	t.Helper()
	mask := encode(r, types)
	return newTable(0, mask, r)
}

func TestTableAppendAndGetRow(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	velID := componentID[velT](r)
	tbl := buildTable(t, r, reflect.TypeOf(posT{}), reflect.TypeOf(velT{}))

	row := tbl.appendEntityRow(Entity{id: 1, version: 1}, map[ComponentID]any{
		posID: posT{X: 1, Y: 2},
		velID: velT{X: 3, Y: 4},
	})
	if row != 0 {
		t.Fatalf("expected first row to be 0, got %d", row)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected length 1, got %d", tbl.Len())
	}
	values := tbl.GetRow(0)
	if len(values) != 2 {
		t.Fatalf("expected 2 column values, got %d", len(values))
	}
}

func TestTableGetRowOutOfRange(t *testing.T) {
	r := newRegistry()
	tbl := buildTable(t, r, reflect.TypeOf(posT{}))
	if got := tbl.GetRow(-1); got != nil {
		t.Fatal("negative row must return nil")
	}
	if got := tbl.GetRow(5); got != nil {
		t.Fatal("past-end row must return nil")
	}
}

func TestTableSwapRemoveBackfill(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	tbl := buildTable(t, r, reflect.TypeOf(posT{}))

	e0 := Entity{id: 0, version: 1}
	e1 := Entity{id: 1, version: 1}
	e2 := Entity{id: 2, version: 1}
	tbl.appendEntityRow(e0, map[ComponentID]any{posID: posT{X: 0}})
	tbl.appendEntityRow(e1, map[ComponentID]any{posID: posT{X: 1}})
	tbl.appendEntityRow(e2, map[ComponentID]any{posID: posT{X: 2}})

	backfilled, did := tbl.removeRow(0)
	if !did || backfilled != e2 {
		t.Fatalf("expected e2 to backfill row 0, got %v did=%v", backfilled, did)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected length 2 after removal, got %d", tbl.Len())
	}
	if tbl.EntityAt(0) != e2 {
		t.Fatalf("row 0 should now hold e2, got %v", tbl.EntityAt(0))
	}
}

func TestTableSwapRemoveLastRowNoBackfill(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	tbl := buildTable(t, r, reflect.TypeOf(posT{}))
	e0 := Entity{id: 0, version: 1}
	tbl.appendEntityRow(e0, map[ComponentID]any{posID: posT{X: 1}})

	_, did := tbl.removeRow(0)
	if did {
		t.Fatal("removing the last row must not report a backfill")
	}
	if tbl.Len() != 0 {
		t.Fatal("table should be empty")
	}
}

func TestTableMoveSameTable(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	tbl := buildTable(t, r, reflect.TypeOf(posT{}))
	e0 := Entity{id: 0, version: 1}
	tbl.appendEntityRow(e0, map[ComponentID]any{posID: posT{X: 1}})

	loc, ok := move(tbl, 0, tbl, []fieldValue{{id: posID, value: posT{X: 99}}}, func(Entity, Location) {})
	if !ok || loc.TableID != tbl.ID() || loc.TableRow != 0 {
		t.Fatalf("same-table move should keep the row in place, got %+v ok=%v", loc, ok)
	}
	col, _ := Column[posT](tbl, posID)
	if col[0].X != 99 {
		t.Fatalf("expected overwritten value 99, got %v", col[0].X)
	}
}

func TestTableMoveAcrossTablesStagesNewComponents(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	velID := componentID[velT](r)
	source := buildTable(t, r, reflect.TypeOf(posT{}))
	target := newTable(1, encode(r, []reflect.Type{reflect.TypeOf(posT{}), reflect.TypeOf(velT{})}), r)

	e0 := Entity{id: 0, version: 1}
	source.appendEntityRow(e0, map[ComponentID]any{posID: posT{X: 7}})

	loc, ok := move(source, 0, target, []fieldValue{{id: velID, value: velT{X: 1, Y: 2}}}, func(Entity, Location) {})
	if !ok {
		t.Fatal("cross-table move should succeed")
	}
	if loc.TableID != target.ID() || loc.TableRow != 0 {
		t.Fatalf("unexpected location %+v", loc)
	}
	if source.Len() != 0 {
		t.Fatal("source table should be empty after the only row moved out")
	}
	posCol, _ := Column[posT](target, posID)
	velCol, _ := Column[velT](target, velID)
	if posCol[0].X != 7 {
		t.Fatalf("position should carry over unchanged, got %v", posCol[0].X)
	}
	if velCol[0].X != 1 || velCol[0].Y != 2 {
		t.Fatalf("velocity should be the newly staged value, got %+v", velCol[0])
	}
}

func TestTableMoveDropsComponentsNotInTarget(t *testing.T) {
	r := newRegistry()
	posID := componentID[posT](r)
	velID := componentID[velT](r)
	source := newTable(0, encode(r, []reflect.Type{reflect.TypeOf(posT{}), reflect.TypeOf(velT{})}), r)
	target := buildTable(t, r, reflect.TypeOf(posT{})) // no velocity column

	e0 := Entity{id: 0, version: 1}
	source.appendEntityRow(e0, map[ComponentID]any{posID: posT{X: 1}, velID: velT{X: 2, Y: 2}})

	loc, ok := move(source, 0, target, nil, func(Entity, Location) {})
	if !ok {
		t.Fatal("move should succeed")
	}
	if target.HasColumn(velID) {
		t.Fatal("target never had a velocity column")
	}
	if target.EntityAt(loc.TableRow) != e0 {
		t.Fatal("moved entity should occupy the new row")
	}
}

func TestTableMoveOutOfRangeIsNoOp(t *testing.T) {
	r := newRegistry()
	tbl := buildTable(t, r, reflect.TypeOf(posT{}))
	_, ok := move(tbl, -1, tbl, nil, func(Entity, Location) {})
	if ok {
		t.Fatal("negative row must be a no-op")
	}
	_, ok = move(tbl, 10, tbl, nil, func(Entity, Location) {})
	if ok {
		t.Fatal("past-end row must be a no-op")
	}
}
