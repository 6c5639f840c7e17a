// Package plan assembles discovered groups and units into the two-level
// dependency graph that execution strategies consume.
//
// Every plan has the same shape:
//
//	root start ─┬─> group start ─┬─> unit ─┬─> group end ─┬─> root end
//	            │                └─> unit ─┘              │
//	            └─────────────────────────────────────────┘
//
// The root pair is System kind, each group pair is Group kind and every unit
// sits between its group's sentinels.
package plan

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/node"
)

// ErrInvalidDefinition is returned when an input group or unit cannot be
// placed into a plan.
var ErrInvalidDefinition = errors.New("invalid definition")

// EmptyGroupPrefix starts the message of every EmptyGroupError.
const EmptyGroupPrefix = "group does not have any units: "

// emptyUnitSegment names the synthetic unit standing in for an empty group.
const emptyUnitSegment = "<empty>"

// EmptyGroupError is the failure recorded for a group that has no units.
type EmptyGroupError struct {
	Group description.Description
}

func (e *EmptyGroupError) Error() string {
	return EmptyGroupPrefix + e.Group.Name
}

// Unit is a unit definition already bound to its runnable payload.
type Unit struct {
	Description description.Description
	Payload     node.Payload
}

// Group is a group definition with its ordered units.
type Group struct {
	Description description.Description
	Units       []Unit
}

// Envelope is a start/end sentinel pair.
type Envelope struct {
	Start *node.Node
	End   *node.Node
}

// Description returns the identity shared by both sentinels.
func (e Envelope) Description() description.Description {
	return e.Start.Description()
}

// GroupPlan is one group's sentinels and its unit nodes, in order.
type GroupPlan struct {
	Envelope
	Units []*node.Node
	// Empty is true when Units holds only the synthetic failing unit.
	Empty bool
}

// Plan is the fully wired node graph of one run.
type Plan struct {
	graph  *node.Graph
	root   Envelope
	groups []*GroupPlan
}

// Root returns the run-wide sentinels.
func (p *Plan) Root() Envelope {
	return p.root
}

// Groups returns the group plans ordered by description.
func (p *Plan) Groups() []*GroupPlan {
	return p.groups
}

// Nodes exports every node of the plan. The order carries no meaning;
// strategies decide their own iteration order.
func (p *Plan) Nodes() []*node.Node {
	return p.graph.Nodes()
}

// Len returns the number of nodes in the plan.
func (p *Plan) Len() int {
	return p.graph.Len()
}

// UnitCount returns the number of unit nodes, synthetic ones included.
func (p *Plan) UnitCount() int {
	total := 0
	for _, g := range p.groups {
		total += len(g.Units)
	}
	return total
}

// Options configures plan assembly.
type Options struct {
	// Root is the System description of the run envelope.
	Root description.Description
}

// Build wires groups into a plan rooted at opts.Root. Groups sharing a
// description are merged. A group without units receives a synthetic unit that
// fails with an EmptyGroupError, so the group still reports an outcome.
func Build(groups []Group, opts Options) (*Plan, error) {
	root := opts.Root
	if root.Kind != description.System || root.Name == "" {
		return nil, fmt.Errorf("%w: root %q must be a named system description", ErrInvalidDefinition, root.Name)
	}

	g := node.NewGraph()
	p := &Plan{graph: g}
	p.root = Envelope{
		Start: g.Add(root, node.Start, node.Sentinel(event.Started)),
		End:   g.Add(root, node.End, node.Sentinel(event.Terminated)),
	}
	if err := p.root.Start.AddSuccessor(p.root.End); err != nil {
		return nil, err
	}

	byKey := make(map[description.Key]*GroupPlan)
	seenUnits := make(map[description.Key]struct{})

	for _, def := range groups {
		gd := def.Description
		if gd.Kind != description.Group || gd.Name == "" {
			return nil, fmt.Errorf("%w: %q is not a named group description", ErrInvalidDefinition, gd.Name)
		}

		gp, ok := byKey[gd.Key()]
		if !ok {
			var err error
			if gp, err = p.addGroup(gd); err != nil {
				return nil, err
			}
			byKey[gd.Key()] = gp
		}

		for _, u := range def.Units {
			if err := validateUnit(gd, u, seenUnits); err != nil {
				return nil, err
			}
			if err := p.addUnit(gp, u.Description, u.Payload); err != nil {
				return nil, err
			}
		}
	}

	for _, gp := range p.groups {
		if len(gp.Units) > 0 {
			continue
		}
		gd := gp.Description()
		synthetic := description.New(description.Join(gd.Name, emptyUnitSegment), description.Unit)
		if err := p.addUnit(gp, synthetic, emptyGroupPayload(gd)); err != nil {
			return nil, err
		}
		gp.Empty = true
	}

	slices.SortFunc(p.groups, func(a, b *GroupPlan) int {
		return description.Compare(a.Description(), b.Description())
	})
	for _, gp := range p.groups {
		node.Sort(gp.Units)
	}
	return p, nil
}

func (p *Plan) addGroup(gd description.Description) (*GroupPlan, error) {
	gp := &GroupPlan{Envelope: Envelope{
		Start: p.graph.Add(gd, node.Start, node.Sentinel(event.Started)),
		End:   p.graph.Add(gd, node.End, node.Sentinel(event.Terminated)),
	}}
	for _, err := range []error{
		gp.Start.AddSuccessor(gp.End),
		gp.Start.AddPredecessor(p.root.Start),
		gp.End.AddSuccessor(p.root.End),
	} {
		if err != nil {
			return nil, err
		}
	}
	p.groups = append(p.groups, gp)
	return gp, nil
}

func (p *Plan) addUnit(gp *GroupPlan, desc description.Description, payload node.Payload) error {
	n := p.graph.Add(desc, node.Body, payload)
	if err := n.AddPredecessor(gp.Start); err != nil {
		return err
	}
	if err := n.AddSuccessor(gp.End); err != nil {
		return err
	}
	gp.Units = append(gp.Units, n)
	return nil
}

func validateUnit(group description.Description, u Unit, seen map[description.Key]struct{}) error {
	d := u.Description
	switch {
	case d.Kind != description.Unit || d.Name == "":
		return fmt.Errorf("%w: %q is not a named unit description", ErrInvalidDefinition, d.Name)
	case !group.RelatedTo(d):
		return fmt.Errorf("%w: unit %q does not belong to group %q", ErrInvalidDefinition, d.Name, group.Name)
	case u.Payload == nil:
		return fmt.Errorf("%w: unit %q has no payload", ErrInvalidDefinition, d)
	}
	if _, dup := seen[d.Key()]; dup {
		return fmt.Errorf("%w: duplicate unit %q", ErrInvalidDefinition, d)
	}
	seen[d.Key()] = struct{}{}
	return nil
}

func emptyGroupPayload(group description.Description) node.Payload {
	return node.PayloadFunc(func(_ context.Context, desc description.Description, em node.Emitter) {
		em.Fire(event.Must(desc, event.Started, nil))
		em.Fire(event.Must(desc, event.Failed, &EmptyGroupError{Group: group}))
	})
}
