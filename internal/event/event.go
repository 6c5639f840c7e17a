// Package event defines the lifecycle notifications produced while a plan
// runs and the status values they carry.
package event

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/specialistvlad/unitgrid/internal/description"
)

// ErrInvalidEvent is returned when an event is built without an identity or
// without a status.
var ErrInvalidEvent = errors.New("invalid event")

// clockBase anchors Nanos to a monotonic reading taken at process start.
var clockBase = time.Now()

// Now returns the current monotonic timestamp in nanoseconds.
func Now() int64 {
	return time.Since(clockBase).Nanoseconds()
}

// InvocationError marks a failure that surfaced through a level of
// indirection, typically a recovered panic around a payload. Events store the
// underlying cause instead of the wrapper.
type InvocationError struct {
	Cause error
	// Value holds the recovered panic value when the failure was a panic.
	Value any
}

func (e *InvocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invocation failed: %v", e.Cause)
	}
	return fmt.Sprintf("invocation failed: %v", e.Value)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// Event is an immutable lifecycle notification for one description.
type Event struct {
	Description description.Description
	Status      Status
	Failure     error
	// Nanos is the monotonic timestamp of the event.
	Nanos int64
	// Seq is the enqueue order assigned by the bus that dispatched the event.
	Seq uint64
}

// New creates an event stamped with the current time.
func New(desc description.Description, status Status, failure error) (Event, error) {
	return NewAt(desc, status, failure, Now())
}

// NewAt creates an event with an explicit timestamp.
func NewAt(desc description.Description, status Status, failure error, nanos int64) (Event, error) {
	if !desc.Valid() {
		return Event{}, fmt.Errorf("%w: missing description", ErrInvalidEvent)
	}
	if !status.Valid() {
		return Event{}, fmt.Errorf("%w: missing status for %s", ErrInvalidEvent, desc)
	}
	return Event{
		Description: desc,
		Status:      status,
		Failure:     rootCause(failure),
		Nanos:       nanos,
	}, nil
}

// Must is like New but panics on a malformed event. It is meant for
// sentinels and tests where the inputs are known to be valid.
func Must(desc description.Description, status Status, failure error) Event {
	ev, err := New(desc, status, failure)
	if err != nil {
		panic(err)
	}
	return ev
}

func rootCause(failure error) error {
	var inv *InvocationError
	if errors.As(failure, &inv) && inv.Cause != nil {
		return inv.Cause
	}
	return failure
}

func (e Event) String() string {
	return fmt.Sprintf("{%s [%s]: %d}", e.Description, e.Status, e.Nanos)
}

// SortByTime orders events by timestamp, breaking ties by enqueue order.
func SortByTime(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.Nanos, b.Nanos); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}
