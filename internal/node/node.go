// Package node provides the schedulable primitive of a plan: a dependency
// node that runs its payload exactly once, after every predecessor completed.
//
// Nodes live in a Graph arena and refer to each other by index, so edges are
// plain index sets and self references are detected by index comparison.
package node

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// ErrInvalidGraph is returned for structurally impossible edges.
var ErrInvalidGraph = errors.New("invalid graph")

// Emitter receives the events produced by running payloads.
type Emitter interface {
	Fire(ev event.Event)
}

// Payload is the work a node performs once it is runnable.
type Payload interface {
	Run(ctx context.Context, desc description.Description, em Emitter)
}

// PayloadFunc adapts a function to the Payload interface.
type PayloadFunc func(ctx context.Context, desc description.Description, em Emitter)

// Run implements Payload.
func (f PayloadFunc) Run(ctx context.Context, desc description.Description, em Emitter) {
	f(ctx, desc, em)
}

// Phase orders nodes that share a description: a sentinel start comes before
// the body, which comes before the sentinel end.
type Phase int

const (
	// Start marks a start sentinel.
	Start Phase = iota
	// Body marks a unit node.
	Body
	// End marks an end sentinel.
	End
)

// Node is a single vertex in the plan graph.
type Node struct {
	index   int
	graph   *Graph
	desc    description.Description
	phase   Phase
	payload Payload

	// mu guards the edge sets. Edge insertion locks both endpoints in index
	// order; signaling locks one node at a time.
	mu    sync.Mutex
	preds map[int]struct{}
	succs map[int]struct{}

	ran atomic.Bool
}

// Index returns the arena index of the node.
func (n *Node) Index() int {
	return n.index
}

// Description returns the identity of the node.
func (n *Node) Description() description.Description {
	return n.desc
}

// Phase returns the position of the node within its description's lifecycle.
func (n *Node) Phase() Phase {
	return n.phase
}

// Done reports whether the node has already run.
func (n *Node) Done() bool {
	return n.ran.Load()
}

// AddPredecessor makes p a predecessor of n, and n a successor of p.
func (n *Node) AddPredecessor(p *Node) error {
	return link(p, n)
}

// AddSuccessor makes s a successor of n, and n a predecessor of s.
func (n *Node) AddSuccessor(s *Node) error {
	return link(n, s)
}

// Predecessors returns a snapshot of the outstanding predecessors.
func (n *Node) Predecessors() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.graph.resolve(n.preds)
}

// Successors returns a snapshot of the successors still to be signaled.
func (n *Node) Successors() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.graph.resolve(n.succs)
}

// Ready reports whether every predecessor has completed.
func (n *Node) Ready() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.preds) == 0
}

// AttemptRun runs the node if it is ready. It returns false, without side
// effects, while predecessors are outstanding or when the node already ran.
func (n *Node) AttemptRun(ctx context.Context, em Emitter) bool {
	_, ran := n.RunAndRelease(ctx, em)
	return ran
}

// RunAndRelease is AttemptRun that also reports which successors became
// ready because this node completed. Every successor is reported by exactly
// one of its predecessors.
func (n *Node) RunAndRelease(ctx context.Context, em Emitter) ([]*Node, bool) {
	if !n.Ready() {
		return nil, false
	}
	if !n.ran.CompareAndSwap(false, true) {
		return nil, false
	}

	n.Invoke(ctx, em)

	n.mu.Lock()
	successors := n.graph.resolve(n.succs)
	clear(n.succs)
	n.mu.Unlock()

	var released []*Node
	for _, s := range successors {
		if s.signalComplete(n) {
			released = append(released, s)
		}
	}
	return released, true
}

// Invoke runs the payload without any predecessor bookkeeping. Strategies
// that enforce ordering structurally use it directly.
func (n *Node) Invoke(ctx context.Context, em Emitter) {
	if n.payload != nil {
		n.payload.Run(ctx, n.desc, em)
	}
}

// InvokeOnce is Invoke that marks the node as run. It returns false, without
// running the payload, when the node already ran.
func (n *Node) InvokeOnce(ctx context.Context, em Emitter) bool {
	if !n.ran.CompareAndSwap(false, true) {
		return false
	}
	n.Invoke(ctx, em)
	return true
}

// signalComplete removes p from the predecessors of n and reports whether
// that emptied the set.
func (n *Node) signalComplete(p *Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.preds[p.index]; !ok {
		return false
	}
	delete(n.preds, p.index)
	return len(n.preds) == 0
}

func (n *Node) String() string {
	switch n.phase {
	case Start:
		return fmt.Sprintf("%s[start]", n.desc)
	case End:
		return fmt.Sprintf("%s[end]", n.desc)
	default:
		return n.desc.String()
	}
}

// Compare orders nodes by description, then by phase.
func Compare(a, b *Node) int {
	if c := description.Compare(a.desc, b.desc); c != 0 {
		return c
	}
	return cmp.Compare(a.phase, b.phase)
}

// Sort orders nodes in place using Compare.
func Sort(nodes []*Node) {
	slices.SortFunc(nodes, Compare)
}

func link(from, to *Node) error {
	if from == nil || to == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidGraph)
	}
	if from.graph != to.graph {
		return fmt.Errorf("%w: %s and %s belong to different graphs", ErrInvalidGraph, from, to)
	}
	if from.index == to.index {
		return fmt.Errorf("%w: self-referential edge on %s", ErrInvalidGraph, from)
	}

	first, second := from, to
	if second.index < first.index {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	from.succs[to.index] = struct{}{}
	to.preds[from.index] = struct{}{}
	return nil
}
