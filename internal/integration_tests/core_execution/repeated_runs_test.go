package core_execution_test

import (
	"errors"
	"testing"

	"github.com/specialistvlad/unitgrid/internal/app"
	"github.com/specialistvlad/unitgrid/internal/runner"
	it "github.com/specialistvlad/unitgrid/internal/integration_tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSpy = errors.New("spy failure")

// Test for: a unit with runs = N executes N times and each run carries the
// unit parameters.
func TestCoreExecution_RepeatedRuns(t *testing.T) {
	t.Parallel()

	suite := `
		group "billing.Invoice" {
			unit "totals" {
				handler    = "spy"
				arguments  { tag = "totals" }
				runs       = 3
				parameters = ["eur", 2]
			}
		}
	`
	spy := &spyModule{}
	result := it.Run(t, map[string]string{"main.hcl": suite}, app.Config{Strategy: runner.RetryPool, WorkerCount: 2}, spy)

	require.NoError(t, result.Err)
	assert.Equal(t, []string{"totals", "totals", "totals"}, spy.Calls())
	for _, line := range []string{
		"billing.Invoice.totals:1-3(eur,2)... passed",
		"billing.Invoice.totals:2-3(eur,2)... passed",
		"billing.Invoice.totals:3-3(eur,2)... passed",
	} {
		assert.Contains(t, result.Output, line)
	}
	assert.Contains(t, result.Output, "3 units: 3 passed, 0 failed")
}
