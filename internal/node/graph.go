package node

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// Graph is the arena that owns every node of a plan.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes slice during concurrent access.
	mutex sync.RWMutex
	nodes []*Node
}

// NewGraph creates and returns an initialized, empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends a new node to the arena.
func (g *Graph) Add(desc description.Description, phase Phase, payload Payload) *Node {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n := &Node{
		index:   len(g.nodes),
		graph:   g,
		desc:    desc,
		phase:   phase,
		payload: payload,
		preds:   make(map[int]struct{}),
		succs:   make(map[int]struct{}),
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns every node in arena order.
func (g *Graph) Nodes() []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// resolve maps an index set back to nodes, ordered by index.
func (g *Graph) resolve(set map[int]struct{}) []*Node {
	indices := make([]int, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	g.mutex.RLock()
	defer g.mutex.RUnlock()
	out := make([]*Node, len(indices))
	for i, idx := range indices {
		out[i] = g.nodes[idx]
	}
	return out
}

// Sentinel returns a payload that emits a single event with the given status.
func Sentinel(status event.Status) Payload {
	return PayloadFunc(func(_ context.Context, desc description.Description, em Emitter) {
		em.Fire(event.Must(desc, status, nil))
	})
}
