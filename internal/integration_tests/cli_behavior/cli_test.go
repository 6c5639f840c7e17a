package cli_behavior_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/specialistvlad/unitgrid/internal/app"
	"github.com/specialistvlad/unitgrid/internal/cli"
	"github.com/specialistvlad/unitgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: flags parsed by the CLI drive a real run end to end.
func TestCLI_ParsedConfigRuns(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"suites/a.hcl": `group "a" { unit "u" { handler = "pass" } }`,
		"suites/b.hcl": `group "b" { unit "u" { handler = "sleep" arguments { duration = "1ms" } } }`,
	})

	out := &bytes.Buffer{}
	cfg, shouldExit, err := cli.Parse([]string{"--strategy", "forkjoin", "--output", "json", "--name", "ci", dir}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	require.NoError(t, app.NewApp(out, io.Discard, cfg).Run(context.Background()))
	assert.Contains(t, out.String(), `"root": "ci"`)
	assert.Contains(t, out.String(), `"status": "passed"`)
}
