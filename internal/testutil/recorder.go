package testutil

import (
	"slices"
	"sync"

	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// RecordingListener stores every event it receives. It satisfies
// bus.Listener and node.Emitter.
type RecordingListener struct {
	mu     sync.Mutex
	events []event.Event
}

// HandleEvent records ev.
func (r *RecordingListener) HandleEvent(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Fire records ev, so the recorder can stand in for a bus.
func (r *RecordingListener) Fire(ev event.Event) {
	r.HandleEvent(ev)
}

// Events returns a copy of the recorded events in arrival order.
func (r *RecordingListener) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *RecordingListener) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Statuses returns the statuses recorded for the description named name, in
// arrival order.
func (r *RecordingListener) Statuses(name string) []event.Status {
	var out []event.Status
	for _, ev := range r.Events() {
		if ev.Description.Name == name {
			out = append(out, ev.Status)
		}
	}
	return out
}

// Index returns the arrival position of the first event matching name and
// status, or -1.
func (r *RecordingListener) Index(name string, status event.Status) int {
	for i, ev := range r.Events() {
		if ev.Description.Name == name && ev.Status == status {
			return i
		}
	}
	return -1
}

// Signature is an order-independent fingerprint of an event stream:
// the number of events per (identity, status).
type Signature map[SignatureKey]int

// SignatureKey identifies one entry of a Signature.
type SignatureKey struct {
	Key    description.Key
	Status event.Status
}

// Signature summarizes the recorded events.
func (r *RecordingListener) Signature() Signature {
	sig := make(Signature)
	for _, ev := range r.Events() {
		sig[SignatureKey{Key: ev.Description.Key(), Status: ev.Status}]++
	}
	return sig
}
