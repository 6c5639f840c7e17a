// Package results aggregates lifecycle events into a hierarchical summary:
// the run, its groups and their units.
//
// Results is a bus listener. Events may arrive in any order; every summary
// is created by the first event carrying its identity and every unit is
// linked to each group it is related to, including groups that show up after
// the unit.
package results

import (
	"slices"
	"sync"
	"time"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// Results is the summary tree of one run.
type Results struct {
	mu     sync.RWMutex
	root   *lifecycle
	groups []*GroupSummary
	units  []*UnitSummary
	byKey  map[description.Key]any
	events int
}

// New creates an empty Results.
func New() *Results {
	return &Results{byKey: make(map[description.Key]any)}
}

// HandleEvent records ev. It implements bus.Listener.
func (r *Results) HandleEvent(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events++

	d := ev.Description
	switch d.Kind {
	case description.System:
		if r.root == nil {
			r.root = &lifecycle{desc: d}
		}
		r.root.record(ev)
	case description.Group:
		r.group(d).record(ev)
	case description.Unit:
		r.unit(d).record(ev)
	}
}

func (r *Results) group(d description.Description) *GroupSummary {
	if g, ok := r.byKey[d.Key()].(*GroupSummary); ok {
		return g
	}
	g := &GroupSummary{mu: &r.mu, lifecycle: lifecycle{desc: d}}
	for _, u := range r.units {
		if d.RelatedTo(u.desc) {
			g.link(u)
		}
	}
	r.byKey[d.Key()] = g
	i, _ := slices.BinarySearchFunc(r.groups, g, compareGroups)
	r.groups = slices.Insert(r.groups, i, g)
	return g
}

func (r *Results) unit(d description.Description) *UnitSummary {
	if u, ok := r.byKey[d.Key()].(*UnitSummary); ok {
		return u
	}
	u := &UnitSummary{mu: &r.mu, lifecycle: lifecycle{desc: d}}
	for _, g := range r.groups {
		if g.desc.RelatedTo(d) {
			g.link(u)
		}
	}
	r.byKey[d.Key()] = u
	i, _ := slices.BinarySearchFunc(r.units, u, compareUnits)
	r.units = slices.Insert(r.units, i, u)
	return u
}

func compareGroups(a, b *GroupSummary) int {
	return description.Compare(a.desc, b.desc)
}

// Root returns the System description of the run, if its events arrived.
func (r *Results) Root() (description.Description, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.root == nil {
		return description.Description{}, false
	}
	return r.root.desc, true
}

// Groups returns the group summaries ordered by description.
func (r *Results) Groups() []*GroupSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.groups)
}

// Group returns the summary of the group named name.
func (r *Results) Group(name string) (*GroupSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byKey[description.New(name, description.Group).Key()].(*GroupSummary)
	return g, ok
}

// Units returns every unit summary ordered by description.
func (r *Results) Units() []*UnitSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.units)
}

// Unit returns the summary of one unit run.
func (r *Results) Unit(key description.Key) (*UnitSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byKey[key].(*UnitSummary)
	return u, ok
}

// EventCount returns the number of events handled.
func (r *Results) EventCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events
}

// Status rolls up every group. A run without groups is Passed once its root
// end arrived.
func (r *Results) Status() event.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status()
}

func (r *Results) status() event.Status {
	if len(r.groups) == 0 {
		switch {
		case r.root == nil:
			return 0
		case r.root.end == nil:
			return event.Started
		default:
			return event.Passed
		}
	}
	statuses := make([]event.Status, len(r.groups))
	for i, g := range r.groups {
		statuses[i] = g.status()
	}
	return Rollup(statuses...)
}

// Complete reports whether the root end arrived and every group is complete.
func (r *Results) Complete() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.root == nil || r.root.end == nil {
		return false
	}
	for _, g := range r.groups {
		if !g.complete() {
			return false
		}
	}
	return true
}

// Passed reports whether the run is complete and nothing failed, was
// terminated or is still in flight.
func (r *Results) Passed() bool {
	if !r.Complete() {
		return false
	}
	s := r.Status()
	return s == event.Passed || s == event.Ignored
}

// Failures lists every failed or terminated unit with its cause.
func (r *Results) Failures() []Failure {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return failures(r.units)
}

// Counts tallies every unit outcome.
func (r *Results) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return count(r.units)
}

// ElapsedTime is the wall time between the root sentinels.
func (r *Results) ElapsedTime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.root == nil {
		return 0
	}
	return r.root.elapsed()
}

// ProcessorTime sums the elapsed time of every unit.
func (r *Results) ProcessorTime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return processorTime(r.units)
}
