package error_handling_test

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/unitgrid/internal/app"
	it "github.com/specialistvlad/unitgrid/internal/integration_tests"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/modules/sleep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hazardModule registers handlers that misbehave on purpose.
type hazardModule struct{}

func (hazardModule) Register(r *registry.Registry) {
	r.RegisterHandler("panic", &registry.RegisteredHandler{
		Fn: func(context.Context, registry.Arguments) error {
			panic("kaboom")
		},
	})
	r.RegisterHandler("deadline", &registry.RegisteredHandler{
		Fn: func(ctx context.Context, _ registry.Arguments) error {
			ctx, cancel := context.WithTimeout(ctx, time.Millisecond)
			defer cancel()
			<-ctx.Done()
			return ctx.Err()
		},
	})
}

// Test for: a panicking handler fails its unit without crashing the run.
func TestErrorHandling_PanicIsContained(t *testing.T) {
	t.Parallel()

	suite := `
		group "g" {
			unit "explodes" { handler = "panic" }
			unit "times_out" {
				handler        = "deadline"
				expect_failure = "timeout"
			}
		}
	`
	result := it.Run(t, map[string]string{"main.hcl": suite}, app.Config{}, hazardModule{})

	require.ErrorIs(t, result.Err, app.ErrRunFailed)
	assert.Contains(t, result.Output, "g.explodes ... failed")
	assert.Contains(t, result.Output, "invocation failed: kaboom")
	assert.Contains(t, result.Output, "g.times_out ... passed")
}

// Test for: cancelling the run terminates units in flight.
func TestErrorHandling_CancellationTerminatesUnits(t *testing.T) {
	t.Parallel()

	suite := `
		group "slow" {
			unit "a" {
				handler   = "sleep"
				arguments { duration = "1m" }
			}
			unit "b" {
				handler   = "sleep"
				arguments { duration = "1m" }
			}
		}
	`
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := it.RunContext(ctx, t, map[string]string{"main.hcl": suite}, app.Config{WorkerCount: 2}, &sleep.Module{})

	require.ErrorIs(t, result.Err, app.ErrRunFailed)
	assert.Less(t, time.Since(start), 30*time.Second)
	assert.Contains(t, result.Output, "slow [terminated]")
	assert.Contains(t, result.Output, "2 units: 0 passed, 0 failed, 0 ignored, 2 terminated")
}
