package results

import (
	"time"

	"github.com/specialistvlad/unitgrid/internal/event"
)

// Snapshot is a serializable copy of the summary tree.
type Snapshot struct {
	Root          string          `json:"root"`
	Status        event.Status    `json:"status"`
	Complete      bool            `json:"complete"`
	Counts        Counts          `json:"counts"`
	ElapsedTime   time.Duration   `json:"elapsed_ns"`
	ProcessorTime time.Duration   `json:"processor_ns"`
	Groups        []GroupSnapshot `json:"groups"`
}

// GroupSnapshot is the serializable form of a GroupSummary.
type GroupSnapshot struct {
	Name          string         `json:"name"`
	Status        event.Status   `json:"status"`
	Counts        Counts         `json:"counts"`
	ElapsedTime   time.Duration  `json:"elapsed_ns"`
	ProcessorTime time.Duration  `json:"processor_ns"`
	Units         []UnitSnapshot `json:"units"`
}

// UnitSnapshot is the serializable form of a UnitSummary.
type UnitSnapshot struct {
	Name        string        `json:"name"`
	Run         int           `json:"run"`
	TotalRuns   int           `json:"total_runs"`
	Status      event.Status  `json:"status"`
	ElapsedTime time.Duration `json:"elapsed_ns"`
	Failure     string        `json:"failure,omitempty"`
}

// Snapshot copies the current state of the tree.
func (r *Results) Snapshot() Snapshot {
	s := Snapshot{
		Status:        r.Status(),
		Complete:      r.Complete(),
		Counts:        r.Counts(),
		ElapsedTime:   r.ElapsedTime(),
		ProcessorTime: r.ProcessorTime(),
	}
	if root, ok := r.Root(); ok {
		s.Root = root.Name
	}

	for _, g := range r.Groups() {
		gs := GroupSnapshot{
			Name:          g.Description().Name,
			Status:        g.Status(),
			Counts:        g.Counts(),
			ElapsedTime:   g.ElapsedTime(),
			ProcessorTime: g.ProcessorTime(),
		}
		for _, u := range g.Units() {
			d := u.Description()
			us := UnitSnapshot{
				Name:        d.Name,
				Run:         d.Run,
				TotalRuns:   d.TotalRuns,
				Status:      u.Status(),
				ElapsedTime: u.ElapsedTime(),
			}
			if f, ok := u.Failure(); ok && f.Cause != nil {
				us.Failure = f.Cause.Error()
			}
			gs.Units = append(gs.Units, us)
		}
		s.Groups = append(s.Groups, gs)
	}
	return s
}
