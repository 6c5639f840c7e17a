// Package assert provides the trivial `pass` and `fail` handlers.
package assert

import (
	"context"
	"fmt"

	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunPass always succeeds.
func OnRunPass(context.Context, registry.Arguments) error {
	return nil
}

// OnRunFail fails with an assertion error carrying the message argument.
func OnRunFail(_ context.Context, args registry.Arguments) error {
	message, err := args.String("message", "fail")
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", suite.ErrAssertion, message)
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("pass", &registry.RegisteredHandler{Fn: OnRunPass})
	r.RegisterHandler("fail", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"message": {Type: cty.String},
		},
		Fn: OnRunFail,
	})
}
