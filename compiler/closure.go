package compiler

import (
	"fmt"

	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/values"
)

var closureCounter int

// compileClosure compiles a Closure expression into its own registry.Function
// (registered under a synthetic name) and emits the instruction that builds
// a runtime closure value capturing the declared `use` variables.
//
// Arrow functions (IsArrow) capture the entire enclosing scope by value
// implicitly, matching PHP's by-value default; named-use closures in this
// subset only support by-value capture too — by-reference `use (&$x)` would
// need the enclosing funcBuilder's slot aliased into the closure's frame,
// which this rewrite's local-slot model does not yet wire up.
func (c *Compiler) compileClosure(fb *funcBuilder, e *ast.Closure) {
	closureCounter++
	name := fmt.Sprintf("{closure:%d}", closureCounter)

	inner := newFuncBuilder(c, name)
	inner.class = fb.class
	for _, p := range e.Params {
		c.bindParam(inner, p)
	}
	inner.fn.IsAnonymous = true
	inner.fn.ReturnsByReference = e.ByRef

	var captured []string
	if e.IsArrow {
		for name := range fb.locals {
			captured = append(captured, name)
		}
	} else {
		for _, u := range e.Uses {
			captured = append(captured, u.Name)
			if u.ByRef {
				fb.fail(errCompilef("by-reference closure captures are not supported"))
			}
		}
	}
	for _, name := range captured {
		inner.slotFor(name)
	}

	if e.IsArrow {
		if len(e.Body) == 1 {
			if es, ok := e.Body[0].(*ast.ExprStmt); ok {
				c.compileExpr(inner, es.Expr)
				inner.emit(opcodes.OP_RETURN, 0, 0, 0)
			} else {
				c.compileBody(inner, e.Body)
				inner.emit(opcodes.OP_PUSH_CONST, inner.addConst(values.NewNull()), 0, 0)
				inner.emit(opcodes.OP_RETURN, 0, 0, 0)
			}
		}
	} else {
		c.compileBody(inner, e.Body)
		inner.emit(opcodes.OP_PUSH_CONST, inner.addConst(values.NewNull()), 0, 0)
		inner.emit(opcodes.OP_RETURN, 0, 0, 0)
	}

	if err := c.reg.RegisterFunction(inner.fn); err != nil {
		fb.fail(errCompilef("%s", err))
		return
	}

	for _, capName := range captured {
		fb.emit(opcodes.OP_FETCH_R, fb.slotFor(capName), 0, 0)
		fb.emit(opcodes.OP_ARROW_CAPTURE, fb.addStringConst(capName), 0, 0)
	}
	fb.emit(opcodes.OP_CREATE_CLOSURE, fb.addStringConst(name), uint32(len(captured)), 0)
}
