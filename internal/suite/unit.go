package suite

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
	"github.com/specialistvlad/unitgrid/internal/node"
)

var (
	// ErrAssertion is the failure reported by units whose checks did not hold.
	ErrAssertion = errors.New("assertion failed")
	// ErrAny, used as an expected failure, accepts any failure.
	ErrAny = errors.New("any failure")
)

// ExpectationError reports a unit that did not fail the way it was expected
// to. Actual is nil when the unit succeeded.
type ExpectationError struct {
	Expected error
	Actual   error
}

func (e *ExpectationError) Error() string {
	if e.Actual == nil {
		return fmt.Sprintf("expected failure %q, but the unit succeeded", e.Expected)
	}
	return fmt.Sprintf("expected failure %q, got: %v", e.Expected, e.Actual)
}

func (e *ExpectationError) Unwrap() error {
	return e.Actual
}

// Func is the body of a unit or of one of its hooks.
type Func func(ctx context.Context) error

// Hook is a named setup or teardown step.
type Hook struct {
	Name string
	Fn   Func
}

// Unit binds a body to its hooks and expected outcome.
type Unit struct {
	Body     Func
	Setup    []Hook
	Teardown []Hook
	// Expect is the failure the body must produce; nil means it must succeed.
	Expect error
	Ignore bool
}

// Payload returns the node payload that runs the unit and reports its
// outcome. Setup hooks run in order before the body; teardown hooks always
// run afterwards, in order.
func (u Unit) Payload() node.Payload {
	return node.PayloadFunc(u.run)
}

func (u Unit) run(ctx context.Context, desc description.Description, em node.Emitter) {
	logger := ctxlog.FromContext(ctx).With("unit", desc.String())
	em.Fire(event.Must(desc, event.Started, nil))

	if u.Ignore {
		logger.Debug("Unit ignored.")
		em.Fire(event.Must(desc, event.Ignored, nil))
		return
	}

	status, failure := u.execute(ctx)
	if failure != nil {
		logger.Debug("Unit finished.", "status", status.String(), "error", failure)
	} else {
		logger.Debug("Unit finished.", "status", status.String())
	}
	em.Fire(event.Must(desc, status, failure))
}

func (u Unit) execute(ctx context.Context) (event.Status, error) {
	// Nothing started yet, so there is nothing to tear down either.
	if err := ctx.Err(); err != nil {
		return event.Terminated, err
	}
	setupErr := runHooks(ctx, "setup", u.Setup, true)

	var bodyErr error
	if setupErr == nil && ctx.Err() == nil {
		bodyErr = invoke(ctx, u.Body)
	}
	teardownErr := runHooks(ctx, "teardown", u.Teardown, false)

	if err := ctx.Err(); err != nil {
		return event.Terminated, err
	}
	if setupErr != nil {
		return event.Failed, setupErr
	}
	if err := u.verdict(bodyErr); err != nil {
		return event.Failed, err
	}
	if teardownErr != nil {
		return event.Failed, teardownErr
	}
	return event.Passed, nil
}

// verdict compares the body result with the expectation.
func (u Unit) verdict(bodyErr error) error {
	switch {
	case u.Expect == nil:
		return bodyErr
	case bodyErr == nil:
		return &ExpectationError{Expected: u.Expect}
	case errors.Is(u.Expect, ErrAny) || errors.Is(bodyErr, u.Expect):
		return nil
	default:
		return bodyErr
	}
}

func runHooks(ctx context.Context, phase string, hooks []Hook, stopOnError bool) error {
	var errs []error
	for _, h := range hooks {
		if err := invoke(ctx, h.Fn); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", phase, h.Name, err))
			if stopOnError {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// invoke calls fn, converting a panic into an InvocationError.
func invoke(ctx context.Context, fn Func) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			inv := &event.InvocationError{Value: r}
			if cause, ok := r.(error); ok {
				inv.Cause = cause
			}
			err = inv
		}
	}()
	return fn(ctx)
}
