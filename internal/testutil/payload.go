package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/node"
	"github.com/specialistvlad/unitgrid/internal/plan"
	"github.com/stretchr/testify/require"
)

// Outcome returns a unit payload that emits Started followed by status.
// A non-nil failure is attached to the terminal event.
func Outcome(status event.Status, failure error) node.Payload {
	return node.PayloadFunc(func(_ context.Context, desc description.Description, em node.Emitter) {
		em.Fire(event.Must(desc, event.Started, nil))
		em.Fire(event.Must(desc, status, failure))
	})
}

// Sleep returns a passing payload that takes at least d, or emits Terminated
// when the context is cancelled first.
func Sleep(d time.Duration) node.Payload {
	return node.PayloadFunc(func(ctx context.Context, desc description.Description, em node.Emitter) {
		em.Fire(event.Must(desc, event.Started, nil))
		select {
		case <-time.After(d):
			em.Fire(event.Must(desc, event.Passed, nil))
		case <-ctx.Done():
			em.Fire(event.Must(desc, event.Terminated, ctx.Err()))
		}
	})
}

// Group builds a plan group named name whose units all pass.
func Group(name string, units ...string) plan.Group {
	g := plan.Group{Description: description.New(name, description.Group)}
	for _, u := range units {
		g.Units = append(g.Units, plan.Unit{
			Description: description.New(description.Join(name, u), description.Unit),
			Payload:     Outcome(event.Passed, nil),
		})
	}
	return g
}

// Build assembles groups under a root named "run" and fails the test on error.
func Build(t testing.TB, groups ...plan.Group) *plan.Plan {
	t.Helper()
	p, err := plan.Build(groups, plan.Options{Root: description.Root("run")})
	require.NoError(t, err)
	return p
}
