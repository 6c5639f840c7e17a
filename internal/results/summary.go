package results

import (
	"slices"
	"sync"
	"time"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// Failure pairs a failed unit with the cause it reported.
type Failure struct {
	Description description.Description
	Status      event.Status
	Cause       error
}

// lifecycle holds the first start and the latest terminal event of one
// description.
type lifecycle struct {
	desc  description.Description
	start *event.Event
	end   *event.Event
}

func (l *lifecycle) record(ev event.Event) {
	if ev.Status == event.Started {
		if l.start == nil {
			l.start = &ev
		}
		return
	}
	l.end = &ev
}

func (l *lifecycle) elapsed() time.Duration {
	if l.start == nil || l.end == nil {
		return 0
	}
	return time.Duration(l.end.Nanos - l.start.Nanos)
}

// UnitSummary is the outcome of one unit run.
type UnitSummary struct {
	mu *sync.RWMutex
	lifecycle
}

// Description returns the unit identity.
func (u *UnitSummary) Description() description.Description {
	return u.desc
}

// Status is the latest terminal status as soon as one arrived, even before
// the start. It is Started while only the start arrived, and the zero Status
// before any event.
func (u *UnitSummary) Status() event.Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.status()
}

func (u *UnitSummary) status() event.Status {
	switch {
	case u.end != nil:
		return u.end.Status
	case u.start != nil:
		return event.Started
	default:
		return 0
	}
}

// Complete reports whether both the start and a terminal event arrived,
// regardless of arrival order.
func (u *UnitSummary) Complete() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.complete()
}

func (u *UnitSummary) complete() bool {
	return u.start != nil && u.end != nil
}

// Passed reports whether the unit is complete and passed. An ignored unit
// did not pass.
func (u *UnitSummary) Passed() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.complete() && u.end.Status == event.Passed
}

// Failure returns the failure of the unit, if it failed or was terminated.
func (u *UnitSummary) Failure() (Failure, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.failure()
}

func (u *UnitSummary) failure() (Failure, bool) {
	if u.end == nil || (u.end.Status != event.Failed && u.end.Status != event.Terminated) {
		return Failure{}, false
	}
	return Failure{Description: u.desc, Status: u.end.Status, Cause: u.end.Failure}, true
}

// ElapsedTime is the wall time between start and end.
func (u *UnitSummary) ElapsedTime() time.Duration {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.elapsed()
}

// ProcessorTime equals ElapsedTime for a single unit.
func (u *UnitSummary) ProcessorTime() time.Duration {
	return u.ElapsedTime()
}

// GroupSummary aggregates the units linked to one group.
type GroupSummary struct {
	mu *sync.RWMutex
	lifecycle
	units []*UnitSummary
}

// Description returns the group identity.
func (g *GroupSummary) Description() description.Description {
	return g.desc
}

// Units returns the linked units ordered by description.
func (g *GroupSummary) Units() []*UnitSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.units)
}

// Status rolls up the unit statuses. A group with no units yet reports
// Started once its start event arrived.
func (g *GroupSummary) Status() event.Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status()
}

func (g *GroupSummary) status() event.Status {
	if len(g.units) == 0 {
		if g.start != nil {
			return event.Started
		}
		return 0
	}
	statuses := make([]event.Status, len(g.units))
	for i, u := range g.units {
		statuses[i] = u.status()
	}
	return Rollup(statuses...)
}

// Complete reports whether the group has at least one unit, every unit is
// complete and the group's own end event arrived.
func (g *GroupSummary) Complete() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.complete()
}

func (g *GroupSummary) complete() bool {
	if g.end == nil || len(g.units) == 0 {
		return false
	}
	for _, u := range g.units {
		if !u.complete() {
			return false
		}
	}
	return true
}

// Passed reports whether the group is complete and its rollup is Passed or
// Ignored.
func (g *GroupSummary) Passed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.complete() {
		return false
	}
	s := g.status()
	return s == event.Passed || s == event.Ignored
}

// Failures lists the failed units of the group.
func (g *GroupSummary) Failures() []Failure {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return failures(g.units)
}

// Counts tallies the unit outcomes of the group.
func (g *GroupSummary) Counts() Counts {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return count(g.units)
}

// ElapsedTime is the wall time between the group sentinels.
func (g *GroupSummary) ElapsedTime() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.elapsed()
}

// ProcessorTime sums the elapsed time of every unit in the group.
func (g *GroupSummary) ProcessorTime() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return processorTime(g.units)
}

func (g *GroupSummary) link(u *UnitSummary) {
	i, found := slices.BinarySearchFunc(g.units, u, compareUnits)
	if !found {
		g.units = slices.Insert(g.units, i, u)
	}
}

func compareUnits(a, b *UnitSummary) int {
	return description.Compare(a.desc, b.desc)
}

func failures(units []*UnitSummary) []Failure {
	var out []Failure
	for _, u := range units {
		if f, ok := u.failure(); ok {
			out = append(out, f)
		}
	}
	return out
}

func count(units []*UnitSummary) Counts {
	var c Counts
	for _, u := range units {
		if s := u.status(); s != 0 {
			c.add(s)
		}
	}
	return c
}

func processorTime(units []*UnitSummary) time.Duration {
	var total time.Duration
	for _, u := range units {
		total += u.elapsed()
	}
	return total
}
