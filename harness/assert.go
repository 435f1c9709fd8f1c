package harness

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/values"
)

// AssertOutput runs prog and fails t with a unified diff of expected vs.
// actual output when they don't match byte-for-byte, or when prog errored
// instead of producing output at all.
func AssertOutput(t *testing.T, prog *ast.Program, want string) {
	t.Helper()
	r := Run(prog)
	require.NoErrorf(t, r.Err, "program errored instead of producing output %q", want)
	if r.Output == want {
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(r.Output),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	t.Fatalf("output mismatch:\n%s", text)
}

// AssertErrorContains runs prog and fails t unless it errored with a
// message containing substr — the harness contract's "tail of the error
// message" check (spec.md §6).
func AssertErrorContains(t *testing.T, prog *ast.Program, substr string) {
	t.Helper()
	r := Run(prog)
	require.Errorf(t, r.Err, "expected an error containing %q, program ran to completion with output %q", substr, r.Output)
	require.Containsf(t, r.Err.Error(), substr, "error message mismatch")
}

// Dump renders val's full structure via go-spew, for assertion failure
// messages that need to show shape rather than just a PHP-stringified
// scalar (e.g. distinguishing an empty array from null).
func Dump(val *values.Value) string {
	return spew.Sdump(val)
}
