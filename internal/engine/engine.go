package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/plan"
	"github.com/specialistvlad/unitgrid/internal/results"
	"github.com/specialistvlad/unitgrid/internal/runner"
	"github.com/specialistvlad/unitgrid/internal/suite"
)

// DefaultRunName names the root of a run when Options.RunName is empty.
const DefaultRunName = "unitgrid"

// Options configures an Engine.
type Options struct {
	// RunName is the name of the System description at the root of every run.
	RunName string
	// RunID identifies the run in logs and forwarded events. A fresh id is
	// generated for every Process call when it is uuid.Nil.
	RunID    uuid.UUID
	Strategy runner.Kind
	Runner   runner.Options
	// Listeners observe every event next to the result aggregator.
	Listeners []bus.Listener
}

// Engine processes bound group definitions into results.
type Engine struct {
	opts Options
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.RunName == "" {
		opts.RunName = DefaultRunName
	}
	return &Engine{opts: opts}
}

// Collect discovers the groups at location and runs them. Discovery and
// definition errors abort before a plan exists.
func (e *Engine) Collect(ctx context.Context, d suite.Discoverer, def suite.Definer, location string) (*results.Results, error) {
	groups, err := suite.Collect(ctx, d, def, location)
	if err != nil {
		return nil, err
	}
	return e.Process(ctx, groups)
}

// Process assembles groups into a plan and executes it. The returned results
// are complete: every event fired during the run has been delivered to them
// and to the configured listeners.
//
// Unit failures are reported through the results, not the error. The error
// is non-nil only when the plan cannot be built or the strategy stalls.
func (e *Engine) Process(ctx context.Context, groups []plan.Group) (*results.Results, error) {
	runID := e.opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	logger := ctxlog.FromContext(ctx).With("runID", runID.String())
	ctx = ctxlog.WithLogger(ctx, logger)

	p, err := plan.Build(groups, plan.Options{Root: description.Root(e.opts.RunName)})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble plan: %w", err)
	}
	strategy, err := runner.New(e.opts.Strategy, e.opts.Runner)
	if err != nil {
		return nil, err
	}

	res := results.New()
	events := bus.New(ctx)
	events.AddListener(res)
	for _, l := range e.opts.Listeners {
		events.AddListener(l)
	}

	logger.Info("Run started.", "strategy", e.opts.Strategy, "groups", len(p.Groups()), "units", p.UnitCount(), "nodes", p.Len())
	begin := time.Now()

	strategy.Start(ctx, events)
	execErr := strategy.Execute(p)
	shutdownErr := strategy.Shutdown()
	events.Await()

	if err := errors.Join(execErr, shutdownErr); err != nil {
		logger.Error("Run aborted.", "error", err)
		return res, fmt.Errorf("execution failed: %w", err)
	}

	logger.Info("Run finished.",
		"status", res.Status(),
		"events", res.EventCount(),
		"duration", time.Since(begin),
	)
	return res, nil
}
