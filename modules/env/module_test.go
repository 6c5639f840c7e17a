package env

import (
	"context"
	"testing"

	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestOnRunEnv(t *testing.T) {
	t.Setenv("UNITGRID_ENV_PROBE", "blue")
	reg := registry.New(&Module{})

	run := func(args map[string]cty.Value) error {
		fn, err := reg.Bind("env", args)
		require.NoError(t, err)
		return fn(context.Background())
	}

	assert.NoError(t, run(map[string]cty.Value{"name": cty.StringVal("UNITGRID_ENV_PROBE")}))
	assert.NoError(t, run(map[string]cty.Value{
		"name":   cty.StringVal("UNITGRID_ENV_PROBE"),
		"equals": cty.StringVal("blue"),
	}))
	assert.ErrorIs(t, run(map[string]cty.Value{
		"name":   cty.StringVal("UNITGRID_ENV_PROBE"),
		"equals": cty.StringVal("green"),
	}), suite.ErrAssertion)
	assert.ErrorIs(t, run(map[string]cty.Value{"name": cty.StringVal("UNITGRID_ENV_UNSET")}), suite.ErrAssertion)
}
