package vellum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name string
	log  *[]string
	fail bool
}

func (s recordingSystem) Run(ctx *Context) error {
	*s.log = append(*s.log, s.name)
	if s.fail {
		return errors.New(s.name + " failed")
	}
	return nil
}

type argSystem struct {
	got *[]any
}

func (s argSystem) Run(ctx *Context) error {
	*s.got = ctx.Args
	return nil
}

func (s argSystem) Args(w *World) ([]any, error) {
	return []any{"resolved"}, nil
}

func TestScheduleRunsInOrder(t *testing.T) {
	w := NewWorld()
	var log []string
	sched := NewSchedule(w)
	sched.AddSystems(recordingSystem{name: "a", log: &log}, recordingSystem{name: "b", log: &log})
	require.NoError(t, sched.Prepare())
	require.NoError(t, sched.Run())
	require.Equal(t, []string{"a", "b"}, log)
}

func TestScheduleAbortsOnFirstError(t *testing.T) {
	w := NewWorld()
	var log []string
	sched := NewSchedule(w)
	sched.AddSystems(
		recordingSystem{name: "a", log: &log, fail: true},
		recordingSystem{name: "b", log: &log},
	)
	require.NoError(t, sched.Prepare())
	err := sched.Run()
	require.Error(t, err)
	require.Equal(t, []string{"a"}, log, "system b must not run once a fails")
}

func TestScheduleAddDuplicatePanics(t *testing.T) {
	w := NewWorld()
	var log []string
	sys := recordingSystem{name: "a", log: &log}
	sched := NewSchedule(w)
	sched.AddSystems(sys)
	require.Panics(t, func() { sched.AddSystems(sys) })
}

func TestScheduleRemoveMissingPanics(t *testing.T) {
	w := NewWorld()
	var log []string
	sched := NewSchedule(w)
	require.Panics(t, func() { sched.RemoveSystem(recordingSystem{name: "a", log: &log}) })
}

func TestScheduleResolvesArgsOnPrepare(t *testing.T) {
	w := NewWorld()
	var got []any
	sched := NewSchedule(w)
	sched.AddSystems(argSystem{got: &got})
	require.NoError(t, sched.Prepare())
	require.NoError(t, sched.Run())
	require.Equal(t, []any{"resolved"}, got)
}
