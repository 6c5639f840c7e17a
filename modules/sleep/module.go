package sleep

import (
	"context"
	"time"

	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunSleep waits for the duration argument or until the context ends.
func OnRunSleep(ctx context.Context, args registry.Arguments) error {
	d, err := args.Duration("duration", time.Second)
	if err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("sleep", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"duration": {Type: cty.String},
		},
		Fn: OnRunSleep,
	})
}
