package runner

import (
	"context"
	"fmt"

	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/node"
	"github.com/specialistvlad/unitgrid/internal/plan"
)

type sequential struct {
	binding
}

func (s *sequential) Start(ctx context.Context, b *bus.Bus) {
	s.start(ctx, b)
}

// Execute runs the plan to completion on the calling goroutine: root start,
// then every group with its units, then root end.
func (s *sequential) Execute(p *plan.Plan) error {
	if err := s.started(); err != nil {
		return err
	}
	if err := unused(p); err != nil {
		return err
	}
	logger := ctxlog.FromContext(s.ctx).With("strategy", Sequential.String())
	logger.Info("Executing plan.", "nodes", p.Len())

	order := []*node.Node{p.Root().Start}
	for _, g := range p.Groups() {
		order = append(order, g.Start)
		order = append(order, g.Units...)
		order = append(order, g.End)
	}
	order = append(order, p.Root().End)

	for _, n := range order {
		logger.Debug("Running node.", "node", n.String())
		if !n.AttemptRun(s.ctx, s.bus) {
			return fmt.Errorf("%w: %s is not runnable", ErrStalled, n)
		}
	}
	logger.Info("Plan finished.")
	return nil
}

func (s *sequential) Shutdown() error {
	return nil
}
