package results

import "github.com/specialistvlad/unitgrid/internal/event"

// rank orders statuses for rollup; the highest rank wins.
var rank = map[event.Status]int{
	event.Ignored:    1,
	event.Passed:     2,
	event.Started:    3,
	event.Terminated: 4,
	event.Failed:     5,
}

// Rollup folds child statuses into a parent status. The result is Failed if
// any child failed, else Terminated if any was terminated, else Started while
// a child is in flight, else Passed if any passed, and Ignored only when every
// child was ignored. Order does not matter. Rollup of nothing is the zero
// Status.
func Rollup(statuses ...event.Status) event.Status {
	var worst event.Status
	for _, s := range statuses {
		if rank[s] > rank[worst] {
			worst = s
		}
	}
	return worst
}

// Counts tallies unit outcomes.
type Counts struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Ignored    int `json:"ignored"`
	Terminated int `json:"terminated"`
	// Running counts units that started but have not finished.
	Running int `json:"running"`
}

func (c *Counts) add(s event.Status) {
	c.Total++
	switch s {
	case event.Passed:
		c.Passed++
	case event.Failed:
		c.Failed++
	case event.Ignored:
		c.Ignored++
	case event.Terminated:
		c.Terminated++
	case event.Started:
		c.Running++
	}
}
