package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/node"
	"github.com/specialistvlad/unitgrid/internal/plan"
)

// forkJoin mirrors the plan shape with tasks: the root task runs the root
// sentinels around one task per group, and each group task runs its
// sentinels around one task per unit. Ordering is structural, so nodes are
// invoked without predecessor bookkeeping. They are still marked as run.
type forkJoin struct {
	binding
	parallelism int
	threshold   int
}

func (f *forkJoin) Start(ctx context.Context, b *bus.Bus) {
	f.start(ctx, b)
}

func (f *forkJoin) Execute(p *plan.Plan) error {
	if err := f.started(); err != nil {
		return err
	}
	if err := unused(p); err != nil {
		return err
	}
	logger := ctxlog.FromContext(f.ctx).With("strategy", ForkJoin.String())
	logger.Info("Executing plan.", "nodes", p.Len(), "parallelism", f.parallelism)

	root := p.Root()
	groups := p.Groups()
	f.envelope(root.Start, root.End, len(groups), func(i int) {
		g := groups[i]
		logger.Debug("Forked group task.", "group", g.Description().Name)
		f.envelope(g.Start, g.End, len(g.Units), func(j int) {
			f.invoke(g.Units[j])
		})
	})

	logger.Info("Plan finished.")
	return nil
}

func (f *forkJoin) Shutdown() error {
	return nil
}

// envelope invokes start, then n child tasks, then end.
func (f *forkJoin) envelope(start, end *node.Node, n int, child func(int)) {
	f.invoke(start)
	f.fork(n, child)
	f.invoke(end)
}

func (f *forkJoin) invoke(n *node.Node) {
	if !n.InvokeOnce(f.ctx, f.bus) {
		ctxlog.FromContext(f.ctx).Warn("Node already ran.", "node", n.String())
	}
}

// fork runs n tasks, in parallel when there are more than threshold tasks per
// worker and inline otherwise.
func (f *forkJoin) fork(n int, task func(int)) {
	if n/f.parallelism <= f.threshold {
		for i := 0; i < n; i++ {
			task(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(f.parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			task(i)
			return nil
		})
	}
	_ = g.Wait()
}
