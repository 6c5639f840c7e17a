package report

import (
	"fmt"
	"io"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// LiveListener prints every unit outcome as soon as it is delivered. It
// relies on the bus never calling it concurrently.
type LiveListener struct {
	w       io.Writer
	started map[description.Key]int64
}

// NewLive creates a live listener writing to w.
func NewLive(w io.Writer) *LiveListener {
	return &LiveListener{w: w, started: make(map[description.Key]int64)}
}

// HandleEvent implements bus.Listener.
func (l *LiveListener) HandleEvent(ev event.Event) {
	if ev.Description.Kind != description.Unit {
		return
	}
	key := ev.Description.Key()
	if ev.Status == event.Started {
		l.started[key] = ev.Nanos
		return
	}

	line := fmt.Sprintf("%s... %s", ev.Description, ev.Status)
	if start, ok := l.started[key]; ok {
		delete(l.started, key)
		line += fmt.Sprintf(" (%.3f ms)", float64(ev.Nanos-start)/1e6)
	}
	if ev.Failure != nil {
		line += fmt.Sprintf(": %v", ev.Failure)
	}
	fmt.Fprintln(l.w, line)
}
