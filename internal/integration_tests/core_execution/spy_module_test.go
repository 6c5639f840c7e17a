package core_execution_test

import (
	"context"
	"sync"

	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// spyModule registers a "spy" handler that records the tag argument of every
// call, and fails when `fail = true`.
type spyModule struct {
	mu    sync.Mutex
	calls []string
}

func (m *spyModule) Register(r *registry.Registry) {
	r.RegisterHandler("spy", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"tag":  {Type: cty.String, Required: true},
			"fail": {Type: cty.Bool},
		},
		Fn: func(_ context.Context, args registry.Arguments) error {
			tag, err := args.String("tag", "")
			if err != nil {
				return err
			}
			var fail bool
			if err := args.Decode("fail", &fail); err != nil {
				return err
			}

			m.mu.Lock()
			m.calls = append(m.calls, tag)
			m.mu.Unlock()
			if fail {
				return errSpy
			}
			return nil
		},
	})
}

func (m *spyModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
