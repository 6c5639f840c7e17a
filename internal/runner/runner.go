// Package runner provides the interchangeable strategies that execute a plan.
// Every strategy emits an equivalent event stream, differing only in how
// independent units interleave.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/specialistvlad/unitgrid/internal/bus"
	"github.com/specialistvlad/unitgrid/internal/plan"
)

var (
	// ErrUnknownStrategy is returned for a Kind or name that has no strategy.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrNotStarted is returned by Execute when Start was not called.
	ErrNotStarted = errors.New("runner not started")
	// ErrStalled is returned when a strategy finds a node that should be
	// runnable but is not.
	ErrStalled = errors.New("plan stalled")
)

// Runner executes plans. A runner is started once with the context and bus
// it emits into, executes one or more plans and is shut down, which waits for
// every submitted plan to finish.
type Runner interface {
	Start(ctx context.Context, b *bus.Bus)
	Execute(p *plan.Plan) error
	Shutdown() error
}

// Kind selects a strategy.
type Kind int

const (
	// ReadyQueue is a fixed pool fed only with nodes whose predecessors have
	// all completed. It is the default.
	ReadyQueue Kind = iota
	// Sequential walks the plan in order on the calling goroutine.
	Sequential
	// RetryPool is a fixed pool draining a queue of every node, re-enqueueing
	// nodes that are not ready yet.
	RetryPool
	// ForkJoin recursively splits the plan into group and unit tasks.
	ForkJoin
)

var kindNames = map[Kind]string{
	ReadyQueue: "ready",
	Sequential: "sequential",
	RetryPool:  "retry",
	ForkJoin:   "forkjoin",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a strategy name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Kinds lists every strategy in a stable order.
func Kinds() []Kind {
	return []Kind{ReadyQueue, Sequential, RetryPool, ForkJoin}
}

// Options tunes the concurrent strategies.
type Options struct {
	// Workers is the pool size or fork parallelism. Defaults to GOMAXPROCS.
	Workers int
	// ForkThreshold is the tasks-per-worker ratio above which ForkJoin runs
	// sibling tasks in parallel. Defaults to 2; a negative value always
	// forks.
	ForkThreshold int
}

// DefaultForkThreshold is used when Options.ForkThreshold is zero.
const DefaultForkThreshold = 2

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ForkThreshold == 0 {
		o.ForkThreshold = DefaultForkThreshold
	}
	return o
}

// New creates the strategy selected by kind.
func New(kind Kind, opts Options) (Runner, error) {
	opts = opts.withDefaults()
	switch kind {
	case Sequential:
		return &sequential{}, nil
	case RetryPool:
		return &pool{kind: RetryPool, workers: opts.Workers}, nil
	case ReadyQueue:
		return &pool{kind: ReadyQueue, workers: opts.Workers}, nil
	case ForkJoin:
		return &forkJoin{parallelism: opts.Workers, threshold: opts.ForkThreshold}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
	}
}

// binding is the context and bus a started runner emits into.
type binding struct {
	ctx context.Context
	bus *bus.Bus
}

func (b *binding) start(ctx context.Context, events *bus.Bus) {
	b.ctx = ctx
	b.bus = events
}

func (b *binding) started() error {
	if b.bus == nil {
		return ErrNotStarted
	}
	return nil
}

// unused rejects a plan that was already executed, fully or in part. Nodes
// run at most once, so such a plan can never finish.
func unused(p *plan.Plan) error {
	for _, n := range p.Nodes() {
		if n.Done() {
			return fmt.Errorf("%w: %s already ran", ErrStalled, n)
		}
	}
	return nil
}
