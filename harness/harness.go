// Package harness implements the "AST executes to expected output" test
// contract spec.md §6 describes for a source file, at the AST level: since
// this repository has no lexer/parser (out of scope per spec.md §1), a
// harness.Run caller builds the program with ast.Builder instead of handing
// the harness raw PHP text.
package harness

import (
	"bytes"
	"strings"

	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/builtins"
	"github.com/leocavalcante/vhp/compiler"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/vm"
)

// Result is one harness.Run outcome: captured output plus any error the
// compile or execute step produced (a compile error, an uncaught
// PHPException, or a VM fault).
type Result struct {
	Output string
	Err    error
}

// Run compiles prog against a fresh registry seeded with the sample builtin
// table and executes its {main} function, capturing everything written to
// the output sink.
func Run(prog *ast.Program) Result {
	reg := registry.New()
	builtins.Register(reg)

	c := compiler.New(reg)
	main, err := c.Compile(prog)
	if err != nil {
		return Result{Err: err}
	}

	var out bytes.Buffer
	machine := vm.New(reg, &out)
	_, runErr := machine.Run(main)
	return Result{Output: out.String(), Err: runErr}
}

// MatchesOutput reports whether running prog produces exactly want, byte
// for byte, with no error.
func (r Result) MatchesOutput(want string) bool {
	return r.Err == nil && r.Output == want
}

// ErrorContains reports whether running prog failed with an error whose
// message contains substr (the harness contract's "tail of the error
// message" check, spec.md §6).
func (r Result) ErrorContains(substr string) bool {
	return r.Err != nil && strings.Contains(r.Err.Error(), substr)
}
