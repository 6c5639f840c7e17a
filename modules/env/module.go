package env

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunEnv asserts that an environment variable is set and, when `equals` is
// given, that it holds that value.
func OnRunEnv(ctx context.Context, args registry.Arguments) error {
	name, err := args.String("name", "")
	if err != nil {
		return err
	}

	value, ok := os.LookupEnv(name)
	if !ok {
		return fmt.Errorf("%w: environment variable %s is not set", suite.ErrAssertion, name)
	}

	want, err := args.String("equals", "")
	if err != nil {
		return err
	}
	if want != "" && want != value {
		return fmt.Errorf("%w: environment variable %s is %q, want %q", suite.ErrAssertion, name, value, want)
	}

	ctxlog.FromContext(ctx).Debug("Environment variable present.", "name", name)
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("env", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"name":   {Type: cty.String, Required: true},
			"equals": {Type: cty.String},
		},
		Fn: OnRunEnv,
	})
}
