package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/unitgrid/internal/results"
)

// Sink consumes the results of a finished run.
type Sink interface {
	Report(ctx context.Context, r *results.Results) error
}

// Text renders a human-readable summary grouped by test group.
type Text struct {
	w io.Writer
}

// NewText creates a text sink writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Report implements Sink.
func (t *Text) Report(_ context.Context, r *results.Results) error {
	p := &printer{w: t.w}

	for _, g := range r.Groups() {
		p.printf("%s [%s]\n", g.Description().Name, g.Status())
		for _, u := range g.Units() {
			p.printf("  %s ... %s (%s)", u.Description(), u.Status(), millis(u.ElapsedTime()))
			if f, ok := u.Failure(); ok && f.Cause != nil {
				p.printf(": %v", f.Cause)
			}
			p.printf("\n")
		}
		p.printf("  %s; clock %s, processor %s\n\n", counts(g.Counts()), millis(g.ElapsedTime()), millis(g.ProcessorTime()))
	}

	name := "run"
	if root, ok := r.Root(); ok {
		name = root.Name
	}
	p.printf("%s: %s (%s) in %s\n", name, r.Status(), counts(r.Counts()), millis(r.ElapsedTime()))

	if failures := r.Failures(); len(failures) > 0 {
		p.printf("\nFailures:\n")
		for i, f := range failures {
			p.printf("  %d) %s [%s]: %v\n", i+1, f.Description, f.Status, f.Cause)
		}
	}
	return p.err
}

// JSON writes the results snapshot as a single JSON document.
type JSON struct {
	w io.Writer
}

// NewJSON creates a JSON sink writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Report implements Sink.
func (j *JSON) Report(_ context.Context, r *results.Results) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// printer remembers the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func counts(c results.Counts) string {
	s := fmt.Sprintf("%d units: %d passed, %d failed, %d ignored, %d terminated", c.Total, c.Passed, c.Failed, c.Ignored, c.Terminated)
	if c.Running > 0 {
		s += fmt.Sprintf(", %d running", c.Running)
	}
	return s
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}
