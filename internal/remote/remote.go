// Package remote forwards run events to a socket.io reporting server.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/results"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Message names used on the wire.
const (
	EventMessage   = "test_event"
	SummaryMessage = "run_summary"
)

// DefaultTimeout bounds the connection handshake when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options configures the connection to the reporting server.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Emitter sends one named message. *socket.Socket satisfies it.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Message is the payload of a test_event message.
type Message struct {
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Run       int          `json:"run"`
	TotalRuns int          `json:"total_runs"`
	Status    event.Status `json:"status"`
	Failure   string       `json:"failure,omitempty"`
	Nanos     int64        `json:"nanos"`
	Seq       uint64       `json:"seq"`
}

// Summary is the payload of the run_summary message.
type Summary struct {
	RunID string `json:"run_id"`
	results.Snapshot
}

// Forwarder is a bus listener that emits every event to the server. It also
// acts as a report sink that publishes the final summary.
type Forwarder struct {
	emitter Emitter
	runID   string
	ctx     context.Context
	close   func()
}

// NewForwarder wraps an established emitter. closeFn may be nil.
func NewForwarder(ctx context.Context, emitter Emitter, runID string, closeFn func()) *Forwarder {
	return &Forwarder{emitter: emitter, runID: runID, ctx: ctx, close: closeFn}
}

// Dial connects to the reporting server over websocket and returns a
// forwarder for runID.
func Dial(ctx context.Context, opts Options, runID string) (*Forwarder, error) {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL)
	logger.Info("Connecting to reporting server...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to reporting server", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("%v", errs[0])
		}
		connected <- err
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return NewForwarder(ctx, io, runID, func() { io.Disconnect() }), nil
}

// HandleEvent implements bus.Listener. Emit errors are logged, never
// propagated into the run.
func (f *Forwarder) HandleEvent(ev event.Event) {
	msg := Message{
		RunID:     f.runID,
		Name:      ev.Description.Name,
		Kind:      ev.Description.Kind.String(),
		Run:       ev.Description.Run,
		TotalRuns: ev.Description.TotalRuns,
		Status:    ev.Status,
		Nanos:     ev.Nanos,
		Seq:       ev.Seq,
	}
	if ev.Failure != nil {
		msg.Failure = ev.Failure.Error()
	}
	if err := f.emitter.Emit(EventMessage, msg); err != nil {
		ctxlog.FromContext(f.ctx).Warn("Failed to forward event.", "event", ev.String(), "error", err)
	}
}

// Report publishes the final snapshot of r.
func (f *Forwarder) Report(_ context.Context, r *results.Results) error {
	if err := f.emitter.Emit(SummaryMessage, Summary{RunID: f.runID, Snapshot: r.Snapshot()}); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	return nil
}

// Close disconnects from the server.
func (f *Forwarder) Close() {
	if f.close != nil {
		f.close()
	}
}
