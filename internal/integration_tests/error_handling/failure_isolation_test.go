package error_handling_test

import (
	"testing"

	"github.com/specialistvlad/unitgrid/internal/app"
	it "github.com/specialistvlad/unitgrid/internal/integration_tests"
	assertmod "github.com/specialistvlad/unitgrid/modules/assert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: a failing unit never stops its siblings or other groups.
func TestErrorHandling_FailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	suite := `
		group "a" {
			unit "one"   { handler = "pass" }
			unit "two"   {
				handler   = "fail"
				arguments { message = "boom" }
			}
			unit "three" { handler = "pass" }
		}
		group "b" {
			unit "four" { handler = "pass" }
		}
	`
	result := it.Run(t, map[string]string{"main.hcl": suite}, app.Config{}, &assertmod.Module{})

	require.ErrorIs(t, result.Err, app.ErrRunFailed)
	assert.Contains(t, result.Output, "a [failed]")
	assert.Contains(t, result.Output, "b [passed]")
	assert.Contains(t, result.Output, "4 units: 3 passed, 1 failed")
	assert.Contains(t, result.Output, "1) a.two [failed]: assertion failed: boom")
}

// Test for: an empty group is reported as a failure of its synthetic unit.
func TestErrorHandling_EmptyGroupFails(t *testing.T) {
	t.Parallel()

	suite := `
		group "empty" {}
		group "full" { unit "u" { handler = "pass" } }
	`
	result := it.Run(t, map[string]string{"main.hcl": suite}, app.Config{}, &assertmod.Module{})

	require.ErrorIs(t, result.Err, app.ErrRunFailed)
	assert.Contains(t, result.Output, "group does not have any units: empty")
	assert.Contains(t, result.Output, "full [passed]")
}

// Test for: a unit that fails the way it is expected to is a pass, and one
// that unexpectedly succeeds is a failure.
func TestErrorHandling_ExpectedFailures(t *testing.T) {
	t.Parallel()

	suite := `
		group "expect" {
			unit "matches" {
				handler        = "fail"
				expect_failure = "assertion"
			}
			unit "anything" {
				handler        = "fail"
				expect_failure = "any"
			}
			unit "missing" {
				handler        = "pass"
				expect_failure = "assertion"
			}
		}
	`
	result := it.Run(t, map[string]string{"main.hcl": suite}, app.Config{}, &assertmod.Module{})

	require.ErrorIs(t, result.Err, app.ErrRunFailed)
	assert.Contains(t, result.Output, "expect.matches ... passed")
	assert.Contains(t, result.Output, "expect.anything ... passed")
	assert.Contains(t, result.Output, "expect.missing ... failed")
	assert.Contains(t, result.Output, "3 units: 2 passed, 1 failed")
}
