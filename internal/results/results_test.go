package results

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/plan"
	"github.com/specialistvlad/unitgrid/internal/runner"
	"github.com/specialistvlad/unitgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(name string, kind description.Kind, status event.Status, nanos int64, failure error) event.Event {
	ev, err := event.NewAt(description.New(name, kind), status, failure, nanos)
	if err != nil {
		panic(err)
	}
	return ev
}

func execute(t *testing.T, groups ...plan.Group) *Results {
	t.Helper()
	ctx, _ := testutil.Context(t)
	b := bus.New(ctx)
	res := New()
	b.AddListener(res)

	r, err := runner.New(runner.ReadyQueue, runner.Options{Workers: 4})
	require.NoError(t, err)
	r.Start(ctx, b)
	require.NoError(t, r.Execute(testutil.Build(t, groups...)))
	require.NoError(t, r.Shutdown())
	b.Await()
	return res
}

func TestRollup(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []event.Status
		want     event.Status
	}{
		{name: "nothing", want: 0},
		{name: "all ignored", statuses: []event.Status{event.Ignored, event.Ignored}, want: event.Ignored},
		{name: "passed beats ignored", statuses: []event.Status{event.Ignored, event.Passed}, want: event.Passed},
		{name: "in flight is not passed", statuses: []event.Status{event.Passed, event.Started}, want: event.Started},
		{name: "terminated beats in flight", statuses: []event.Status{event.Started, event.Terminated}, want: event.Terminated},
		{name: "failed wins", statuses: []event.Status{event.Terminated, event.Failed, event.Passed}, want: event.Failed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rollup(tc.statuses...))
		})
	}
}

func TestRollup_PermutationInvariant(t *testing.T) {
	pool := []event.Status{event.Passed, event.Failed, event.Terminated, event.Ignored}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		statuses := make([]event.Status, 1+rng.IntN(8))
		for j := range statuses {
			statuses[j] = pool[rng.IntN(len(pool))]
		}
		want := Rollup(statuses...)
		for k := 0; k < 5; k++ {
			rng.Shuffle(len(statuses), func(a, b int) { statuses[a], statuses[b] = statuses[b], statuses[a] })
			require.Equal(t, want, Rollup(statuses...), "statuses %v", statuses)
		}
	}
}

func TestUnitComplete_RegardlessOfOrder(t *testing.T) {
	res := New()
	res.HandleEvent(at("g.a", description.Unit, event.Passed, 30, nil))

	u, ok := res.Unit(description.New("g.a", description.Unit).Key())
	require.True(t, ok)
	assert.False(t, u.Complete())
	assert.False(t, u.Passed(), "a unit without its start has not passed")
	assert.Equal(t, event.Passed, u.Status())

	res.HandleEvent(at("g.a", description.Unit, event.Started, 10, nil))
	assert.True(t, u.Complete())
	assert.True(t, u.Passed())
	assert.Equal(t, event.Passed, u.Status())
	assert.Equal(t, 20*time.Nanosecond, u.ElapsedTime())
	assert.Equal(t, u.ElapsedTime(), u.ProcessorTime())
}

func TestGroupPassed_IgnoredOnly(t *testing.T) {
	g := testutil.Group("I", "skipped")
	g.Units[0].Payload = testutil.Outcome(event.Ignored, nil)
	res := execute(t, g)

	group, ok := res.Group("I")
	require.True(t, ok)
	assert.Equal(t, event.Ignored, group.Status())
	assert.True(t, group.Passed(), "an all-ignored group passes")
	assert.False(t, group.Units()[0].Passed(), "an ignored unit did not pass")
}

func TestLateGroupLinksEarlierUnits(t *testing.T) {
	res := New()
	res.HandleEvent(at("g.a", description.Unit, event.Started, 1, nil))
	res.HandleEvent(at("g.a", description.Unit, event.Passed, 2, nil))
	res.HandleEvent(at("other.b", description.Unit, event.Started, 1, nil))
	res.HandleEvent(at("g", description.Group, event.Started, 0, nil))

	g, ok := res.Group("g")
	require.True(t, ok)
	require.Len(t, g.Units(), 1)
	assert.Equal(t, "g.a", g.Units()[0].Description().Name)
	assert.False(t, g.Complete(), "group end has not arrived")

	res.HandleEvent(at("g.z", description.Unit, event.Started, 3, nil))
	res.HandleEvent(at("g.z", description.Unit, event.Failed, 4, errors.New("late")))
	res.HandleEvent(at("g", description.Group, event.Terminated, 5, nil))

	assert.Len(t, g.Units(), 2)
	assert.True(t, g.Complete())
	assert.False(t, g.Passed())
	assert.Equal(t, event.Failed, g.Status())
	assert.Equal(t, 5*time.Nanosecond, g.ElapsedTime())
	assert.Equal(t, 2*time.Nanosecond, g.ProcessorTime())
}

func TestScenario_MixedGroup(t *testing.T) {
	g := testutil.Group("G", "A", "B", "C")
	g.Units[1].Payload = testutil.Outcome(event.Failed, errors.New("boom"))
	g.Units[2].Payload = testutil.Outcome(event.Ignored, nil)

	res := execute(t, g)

	require.True(t, res.Complete())
	assert.False(t, res.Passed())
	assert.Equal(t, event.Failed, res.Status())

	group, ok := res.Group("G")
	require.True(t, ok)
	assert.True(t, group.Complete())
	assert.False(t, group.Passed())
	assert.Equal(t, event.Failed, group.Status())
	assert.Equal(t, Counts{Total: 3, Passed: 1, Failed: 1, Ignored: 1}, group.Counts())

	passed := map[string]bool{}
	for _, u := range group.Units() {
		assert.True(t, u.Complete(), u.Description().Name)
		assert.Equal(t, u.ElapsedTime(), u.ProcessorTime(), u.Description().Name)
		passed[u.Description().Name] = u.Passed()
	}
	assert.Equal(t, map[string]bool{"G.A": true, "G.B": false, "G.C": false}, passed)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "G.B", failures[0].Description.Name)
	assert.EqualError(t, failures[0].Cause, "boom")
	assert.Equal(t, failures, group.Failures())
}

func TestScenario_EmptyGroup(t *testing.T) {
	res := execute(t, testutil.Group("E"))

	group, ok := res.Group("E")
	require.True(t, ok)
	assert.Equal(t, event.Failed, group.Status())
	assert.True(t, group.Complete())

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.True(t, strings.HasPrefix(failures[0].Cause.Error(), plan.EmptyGroupPrefix+"E"))
}

func TestScenario_AllPassing(t *testing.T) {
	res := execute(t, testutil.Group("a", "x", "y"), testutil.Group("b", "z"))

	assert.True(t, res.Complete())
	assert.True(t, res.Passed())
	assert.Empty(t, res.Failures())
	assert.Equal(t, Counts{Total: 3, Passed: 3}, res.Counts())
	assert.Equal(t, 12, res.EventCount(), "2 root, 4 group and 6 unit events")
	for _, g := range res.Groups() {
		assert.True(t, g.Passed(), g.Description().Name)
	}

	root, ok := res.Root()
	require.True(t, ok)
	assert.Equal(t, "run", root.Name)
	assert.GreaterOrEqual(t, res.ElapsedTime(), time.Duration(0))
}

func TestRollup_RoundTripsThroughText(t *testing.T) {
	ignoredOnly := testutil.Group("i", "x")
	ignoredOnly.Units[0].Payload = testutil.Outcome(event.Ignored, nil)
	failing := testutil.Group("f", "x")
	failing.Units[0].Payload = testutil.Outcome(event.Failed, errors.New("nope"))

	res := execute(t, testutil.Group("p", "x"), ignoredOnly, failing)

	var statuses []event.Status
	for _, g := range res.Groups() {
		statuses = append(statuses, g.Status())
	}
	raw, err := json.Marshal(statuses)
	require.NoError(t, err)

	var back []event.Status
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, res.Status(), Rollup(back...))
}

func TestSnapshot(t *testing.T) {
	g := testutil.Group("G", "A", "B")
	g.Units[1].Payload = testutil.Outcome(event.Failed, errors.New("boom"))
	res := execute(t, g)

	snap := res.Snapshot()
	assert.Equal(t, "run", snap.Root)
	assert.Equal(t, event.Failed, snap.Status)
	require.Len(t, snap.Groups, 1)
	require.Len(t, snap.Groups[0].Units, 2)
	assert.Equal(t, "boom", snap.Groups[0].Units[1].Failure)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, snap.Status, back.Status)
	assert.Equal(t, snap.Groups[0].Units[1].Failure, back.Groups[0].Units[1].Failure)
}
