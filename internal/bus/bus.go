// Package bus delivers lifecycle events to observers on a single dispatch
// lane, decoupling the goroutines that produce events from the listeners that
// consume them.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/event"
)

// Listener observes events. Listeners are never called concurrently with
// each other or with themselves.
type Listener interface {
	HandleEvent(ev event.Event)
}

// ListenerFunc adapts a function to the Listener interface. Function
// listeners cannot be removed.
type ListenerFunc func(ev event.Event)

// HandleEvent implements Listener.
func (f ListenerFunc) HandleEvent(ev event.Event) {
	f(ev)
}

// Bus is an unbounded FIFO of events drained by one lazily started dispatch
// goroutine.
type Bus struct {
	ctx context.Context

	mu        sync.Mutex
	drained   *sync.Cond
	listeners []Listener
	queue     []event.Event
	wake      chan struct{}
	// seq is the number of events enqueued; delivered trails it.
	seq       uint64
	delivered uint64
	running   bool
	release   bool
}

// New creates a bus. ctx provides the logger used to report listener panics.
func New(ctx context.Context) *Bus {
	b := &Bus{
		ctx:  ctx,
		wake: make(chan struct{}, 1),
	}
	b.drained = sync.NewCond(&b.mu)
	return b
}

// AddListener registers l for every event fired after the call.
func (b *Bus) AddListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters l. It is a no-op for unknown listeners.
func (b *Bus) RemoveListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = slices.DeleteFunc(b.listeners, func(x Listener) bool {
		return sameListener(x, l)
	})
}

// Fire enqueues ev and returns without waiting for any listener. The event is
// stamped with its enqueue sequence number.
func (b *Bus) Fire(ev event.Event) {
	b.mu.Lock()
	b.seq++
	ev.Seq = b.seq
	b.queue = append(b.queue, ev)
	if !b.running {
		b.running = true
		b.release = false
		go b.dispatch()
	}
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Await blocks until every event enqueued before the call has been delivered
// to every listener, then lets the dispatch goroutine exit. A later Fire
// starts a new one.
func (b *Bus) Await() {
	b.mu.Lock()
	target := b.seq
	for b.delivered < target {
		b.drained.Wait()
	}
	if b.running {
		b.release = true
	}
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bus) dispatch() {
	logger := ctxlog.FromContext(b.ctx)
	logger.Debug("Event dispatch started.")

	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			if b.release {
				b.running = false
				b.release = false
				b.mu.Unlock()
				logger.Debug("Event dispatch released.")
				return
			}
			b.mu.Unlock()
			<-b.wake
			continue
		}
		ev := b.queue[0]
		b.queue[0] = event.Event{}
		b.queue = b.queue[1:]
		listeners := slices.Clone(b.listeners)
		b.mu.Unlock()

		for _, l := range listeners {
			b.deliver(l, ev)
		}

		b.mu.Lock()
		b.delivered++
		b.drained.Broadcast()
		b.mu.Unlock()
	}
}

func (b *Bus) deliver(l Listener, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(b.ctx).Error("Listener panicked.",
				"listener", fmt.Sprintf("%T", l),
				"event", ev.String(),
				"panic", r,
			)
		}
	}()
	l.HandleEvent(ev)
}

func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
