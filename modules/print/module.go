package print

import (
	"context"
	"sort"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunPrint logs the message argument and every field of the values map.
func OnRunPrint(ctx context.Context, args registry.Arguments) error {
	logger := ctxlog.FromContext(ctx)

	message, err := args.String("message", "")
	if err != nil {
		return err
	}

	var values map[string]string
	if err := args.Decode("values", &values); err != nil {
		return err
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, values[k])
	}
	logger.Info(message, attrs...)
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("print", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"message": {Type: cty.String},
			"values":  {Type: cty.Map(cty.String)},
		},
		Fn: OnRunPrint,
	})
}
