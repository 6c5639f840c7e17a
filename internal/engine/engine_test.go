package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/plan"
	"github.com/specialistvlad/unitgrid/internal/results"
	"github.com/specialistvlad/unitgrid/internal/runner"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/specialistvlad/unitgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedGroups() []plan.Group {
	failing := testutil.Group("math")
	failing.Units = []plan.Unit{
		{Description: description.New("math.a", description.Unit), Payload: testutil.Outcome(event.Passed, nil)},
		{Description: description.New("math.b", description.Unit), Payload: testutil.Outcome(event.Failed, errors.New("boom"))},
		{Description: description.New("math.c", description.Unit), Payload: testutil.Outcome(event.Ignored, nil)},
	}
	return []plan.Group{failing, testutil.Group("text", "upper", "lower"), testutil.Group("empty")}
}

func TestProcess_AllStrategies(t *testing.T) {
	for _, kind := range runner.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			rec := &testutil.RecordingListener{}
			e := New(Options{
				Strategy:  kind,
				Runner:    runner.Options{Workers: 3},
				Listeners: []bus.Listener{rec},
			})

			res, err := e.Process(ctx, mixedGroups())
			require.NoError(t, err)

			root, ok := res.Root()
			require.True(t, ok)
			assert.Equal(t, DefaultRunName, root.Name)

			assert.True(t, res.Complete())
			assert.False(t, res.Passed())
			assert.Equal(t, event.Failed, res.Status())
			assert.Equal(t, results.Counts{Total: 6, Passed: 3, Failed: 2, Ignored: 1}, res.Counts())
			assert.Equal(t, rec.Len(), res.EventCount(), "every listener sees every event")

			failures := res.Failures()
			require.Len(t, failures, 2)
			var empty *plan.EmptyGroupError
			assert.True(t, errors.As(failures[0].Cause, &empty), "got %v", failures[0].Cause)
			assert.EqualError(t, failures[1].Cause, "boom")
		})
	}
}

func TestProcess_LogsRunID(t *testing.T) {
	ctx, logs := testutil.Context(t)
	id := uuid.MustParse("6f1c1a55-4d7e-4f36-9a8b-1f5f3a0c2b11")

	res, err := New(Options{RunID: id, RunName: "nightly"}).Process(ctx, []plan.Group{testutil.Group("g", "u")})
	require.NoError(t, err)
	assert.True(t, res.Passed())

	root, _ := res.Root()
	assert.Equal(t, "nightly", root.Name)
	assert.Contains(t, logs.String(), "runID="+id.String())
	assert.Contains(t, logs.String(), "Run finished.")
}

func TestProcess_Errors(t *testing.T) {
	ctx, _ := testutil.Context(t)

	stray := testutil.Group("g")
	stray.Units = []plan.Unit{{
		Description: description.New("other.u", description.Unit),
		Payload:     testutil.Outcome(event.Passed, nil),
	}}
	_, err := New(Options{}).Process(ctx, []plan.Group{stray})
	assert.ErrorIs(t, err, plan.ErrInvalidDefinition)

	_, err = New(Options{Strategy: runner.Kind(99)}).Process(ctx, nil)
	assert.ErrorIs(t, err, runner.ErrUnknownStrategy)
}

func TestProcess_NoGroups(t *testing.T) {
	ctx, _ := testutil.Context(t)
	res, err := New(Options{}).Process(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.EventCount())
	assert.Equal(t, event.Passed, res.Status())
}

type fakeSource struct {
	groups map[string][]plan.Unit
	err    error
}

func (f *fakeSource) Discover(context.Context, string) ([]suite.GroupDefinition, error) {
	if f.err != nil {
		return nil, f.err
	}
	var defs []suite.GroupDefinition
	for name := range f.groups {
		defs = append(defs, suite.GroupDefinition{Description: description.New(name, description.Group)})
	}
	return defs, nil
}

func (f *fakeSource) Units(_ context.Context, def suite.GroupDefinition) ([]plan.Unit, error) {
	return f.groups[def.Description.Name], nil
}

func TestCollect(t *testing.T) {
	ctx, _ := testutil.Context(t)
	src := &fakeSource{groups: map[string][]plan.Unit{"g": testutil.Group("g", "a", "b").Units}}

	res, err := New(Options{}).Collect(ctx, src, src, "anywhere")
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Equal(t, 2, res.Counts().Passed)

	src.err = errors.New("unreadable")
	_, err = New(Options{}).Collect(ctx, src, src, "anywhere")
	assert.ErrorContains(t, err, "unreadable")
}
