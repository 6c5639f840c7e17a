// Package integration_tests holds the shared harness of the end-to-end
// suites in its subdirectories. Each suite writes HCL manifests to a
// temporary directory and drives them through the full application.
package integration_tests

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/unitgrid/internal/app"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Result captures everything a run produced.
type Result struct {
	Err       error
	Output    string
	LogOutput string
}

// Run writes files, then runs the application over them with cfg. Logs are
// dumped when UNITGRID_TEST_LOGS=true.
func Run(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) Result {
	t.Helper()
	return RunContext(context.Background(), t, files, cfg, modules...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) Result {
	t.Helper()

	cfg.SuitePath = testutil.WriteFiles(t, files)
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("UNITGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	err = app.NewApp(out, logs, config, modules...).Run(ctx)
	return Result{Err: err, Output: out.String(), LogOutput: logs.String()}
}
