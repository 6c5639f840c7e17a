package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/node"
	"github.com/specialistvlad/unitgrid/internal/plan"
)

// pool runs a fixed number of workers per submitted plan. The ReadyQueue
// kind only ever enqueues runnable nodes; the RetryPool kind enqueues every
// node up front and puts nodes that are not ready back at the tail.
type pool struct {
	binding
	kind    Kind
	workers int

	mu         sync.Mutex
	executions []*execution
}

// execution is the state of one plan submitted to a pool.
type execution struct {
	queue   chan *node.Node
	pending atomic.Int64
	wg      sync.WaitGroup

	done    chan struct{}
	closing sync.Once
	err     error
}

// complete records one finished node and closes done after the last one.
func (x *execution) complete() {
	if x.pending.Add(-1) == 0 {
		x.closing.Do(func() { close(x.done) })
	}
}

// fail stops the execution early. The first error wins.
func (x *execution) fail(err error) {
	x.closing.Do(func() {
		x.err = err
		close(x.done)
	})
}

func (p *pool) Start(ctx context.Context, b *bus.Bus) {
	p.start(ctx, b)
}

// Execute submits the plan and returns without waiting for it. Shutdown
// waits.
func (p *pool) Execute(pl *plan.Plan) error {
	if err := p.started(); err != nil {
		return err
	}
	if err := unused(pl); err != nil {
		return err
	}
	logger := ctxlog.FromContext(p.ctx).With("strategy", p.kind.String())

	nodes := pl.Nodes()
	// Capacity covers every node, so a worker never blocks on enqueue.
	x := &execution{
		queue: make(chan *node.Node, len(nodes)),
		done:  make(chan struct{}),
	}
	x.pending.Store(int64(len(nodes)))

	if p.kind == RetryPool {
		node.Sort(nodes)
		for _, n := range nodes {
			x.queue <- n
		}
	} else {
		for _, n := range nodes {
			if n.Ready() {
				x.queue <- n
			}
		}
	}

	logger.Info("Executing plan.", "nodes", len(nodes), "workers", p.workers)
	for i := 1; i <= p.workers; i++ {
		x.wg.Add(1)
		go p.worker(x, i)
	}

	p.mu.Lock()
	p.executions = append(p.executions, x)
	p.mu.Unlock()
	return nil
}

// Shutdown waits for every submitted plan to finish and stops the workers.
// It returns the errors of executions that stopped early.
func (p *pool) Shutdown() error {
	p.mu.Lock()
	executions := p.executions
	p.executions = nil
	p.mu.Unlock()

	var errs []error
	for _, x := range executions {
		<-x.done
		x.wg.Wait()
		errs = append(errs, x.err)
	}
	if len(executions) > 0 {
		ctxlog.FromContext(p.ctx).Info("Plan finished.", "strategy", p.kind.String())
	}
	return errors.Join(errs...)
}

func (p *pool) worker(x *execution, workerID int) {
	defer x.wg.Done()
	logger := ctxlog.FromContext(p.ctx).With("strategy", p.kind.String())
	logger.Debug("Worker started.", "workerID", workerID)

	for {
		var n *node.Node
		select {
		case <-x.done:
			logger.Debug("Worker finished.", "workerID", workerID)
			return
		case n = <-x.queue:
		}
		workerLogger := logger.With("workerID", workerID, "node", n.String())

		if p.kind == RetryPool {
			if !n.AttemptRun(p.ctx, p.bus) {
				workerLogger.Debug("Node not ready, requeueing.")
				x.queue <- n
				runtime.Gosched()
				continue
			}
			workerLogger.Debug("Node finished.")
			x.complete()
			continue
		}

		released, ran := n.RunAndRelease(p.ctx, p.bus)
		if !ran {
			workerLogger.Error("Ready node could not run.")
			x.fail(fmt.Errorf("%w: %s is not runnable", ErrStalled, n))
			continue
		}
		workerLogger.Debug("Node finished.", "released", len(released))
		for _, s := range released {
			x.queue <- s
		}
		x.complete()
	}
}

