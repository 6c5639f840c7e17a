package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/engine"
	"github.com/specialistvlad/unitgrid/internal/hclsuite"
	"github.com/specialistvlad/unitgrid/internal/remote"
	"github.com/specialistvlad/unitgrid/internal/report"
	"github.com/specialistvlad/unitgrid/internal/results"
	"github.com/specialistvlad/unitgrid/internal/runner"
)

// ErrRunFailed is returned by Run when the suite executed but its status is
// neither passed nor ignored.
var ErrRunFailed = errors.New("run did not pass")

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if err := a.healthCheckServer(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer())
	}()

	runID := uuid.New()
	listeners, sinks, closeAll, err := a.outputs(ctx, runID)
	if err != nil {
		return err
	}
	defer closeAll()

	cfg := a.config
	suite := hclsuite.New(a.registry)
	eng := engine.New(engine.Options{
		RunName:  cfg.RunName,
		RunID:    runID,
		Strategy: cfg.Strategy,
		Runner: runner.Options{
			Workers:       cfg.WorkerCount,
			ForkThreshold: cfg.ForkThreshold,
		},
		Listeners: listeners,
	})

	a.logger.Info("🚀 Starting run...", "path", cfg.SuitePath, "strategy", cfg.Strategy)
	res, err := eng.Collect(ctx, suite, suite, cfg.SuitePath)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	a.logger.Info("🏁 Run finished.", "status", res.Status())

	for _, sink := range sinks {
		if err := sink.Report(ctx, res); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return verdict(res)
}

// outputs builds the bus listeners and report sinks selected by the config.
// The returned func releases remote connections.
func (a *App) outputs(ctx context.Context, runID uuid.UUID) ([]bus.Listener, []report.Sink, func(), error) {
	var (
		listeners []bus.Listener
		sinks     []report.Sink
		closers   []func()
	)

	switch a.config.OutputFormat {
	case "json":
		sinks = append(sinks, report.NewJSON(a.outW))
	default:
		listeners = append(listeners, report.NewLive(a.outW))
		sinks = append(sinks, report.NewText(a.outW))
	}

	if a.metrics != nil {
		listeners = append(listeners, a.metrics)
	}

	if a.config.ReportURL != "" {
		fwd, err := remote.Dial(ctx, remote.Options{
			URL:     a.config.ReportURL,
			Timeout: a.config.ReportTimeout,
		}, runID.String())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to reporting server: %w", err)
		}
		listeners = append(listeners, fwd)
		sinks = append(sinks, fwd)
		closers = append(closers, fwd.Close)
	}

	return listeners, sinks, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func verdict(res *results.Results) error {
	if res.Passed() {
		return nil
	}
	c := res.Counts()
	return fmt.Errorf("%w: %s (%d failed, %d terminated of %d units)", ErrRunFailed, res.Status(), c.Failed, c.Terminated, c.Total)
}
