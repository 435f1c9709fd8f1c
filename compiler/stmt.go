package compiler

import (
	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// compileStmt emits code for n, leaving the operand stack at the same
// depth it found it (statements never leave a value behind; expression
// statements discard theirs with OP_POP).
func (c *Compiler) compileStmt(fb *funcBuilder, n ast.Node) {
	switch s := n.(type) {
	case *ast.ExprStmt:
		c.compileExpr(fb, s.Expr)
		fb.emit(opcodes.OP_POP, 0, 0, 0)

	case *ast.Echo:
		for _, a := range s.Args {
			c.compileExpr(fb, a)
			fb.emit(opcodes.OP_CAST_STRING, 0, 0, 0)
			fb.emit(opcodes.OP_ECHO, 0, 0, 0)
		}

	case *ast.Block:
		c.compileBody(fb, s.Body)

	case *ast.If:
		c.compileIf(fb, s)

	case *ast.While:
		c.compileWhile(fb, s)

	case *ast.DoWhile:
		c.compileDoWhile(fb, s)

	case *ast.For:
		c.compileFor(fb, s)

	case *ast.Foreach:
		c.compileForeach(fb, s)

	case *ast.Switch:
		c.compileSwitch(fb, s)

	case *ast.Break:
		if !fb.addBreakPatch(s.Depth) {
			fb.fail(errCompilef("'break %d' exceeds the enclosing loop nesting", s.Depth))
		}

	case *ast.Continue:
		if !fb.emitContinue(s.Depth) {
			fb.fail(errCompilef("'continue %d' exceeds the enclosing loop nesting", s.Depth))
		}

	case *ast.Return:
		if s.Value != nil {
			c.compileExpr(fb, s.Value)
		} else {
			fb.emit(opcodes.OP_PUSH_CONST, fb.addConst(values.NewNull()), 0, 0)
		}
		if fb.fn.IsGenerator {
			fb.emit(opcodes.OP_GENERATOR_RETURN, 0, 0, 0)
		} else {
			fb.emit(opcodes.OP_RETURN, 0, 0, 0)
		}

	case *ast.Throw:
		c.compileExpr(fb, s.Value)
		fb.emit(opcodes.OP_THROW, 0, 0, 0)

	case *ast.Try:
		c.compileTry(fb, s)

	case *ast.Global:
		for _, name := range s.Names {
			fb.emit(opcodes.OP_BIND_GLOBAL, fb.slotFor(name), fb.addStringConst(name), 0)
		}

	case *ast.StaticDecl:
		for _, v := range s.Vars {
			slot := fb.slotFor(v.Name)
			var def uint32
			if v.Default != nil {
				def = fb.addConst(c.constFold(v.Default))
			} else {
				def = fb.addConst(values.NewNull())
			}
			fb.emit(opcodes.OP_BIND_STATIC, slot, def, 0)
		}

	case *ast.Unset:
		for _, t := range s.Targets {
			v, ok := t.(*ast.Variable)
			if !ok {
				fb.fail(errCompilef("unset() only supports simple variables in this subset"))
				continue
			}
			fb.emit(opcodes.OP_UNSET_VAR, fb.slotFor(v.Name), 0, 0)
		}

	default:
		fb.fail(errCompilef("unsupported statement node %T", n))
	}
}

func (c *Compiler) compileIf(fb *funcBuilder, s *ast.If) {
	c.compileExpr(fb, s.Cond)
	jFalse := fb.emit(opcodes.OP_JMPZ, 0, 0, 0)
	c.compileBody(fb, s.Then)
	var ends []int
	ends = append(ends, fb.emit(opcodes.OP_JMP, 0, 0, 0))
	fb.patch(jFalse, fb.here())

	for _, ei := range s.ElseIfs {
		c.compileExpr(fb, ei.Cond)
		jNext := fb.emit(opcodes.OP_JMPZ, 0, 0, 0)
		c.compileBody(fb, ei.Body)
		ends = append(ends, fb.emit(opcodes.OP_JMP, 0, 0, 0))
		fb.patch(jNext, fb.here())
	}

	if len(s.Else) > 0 {
		c.compileBody(fb, s.Else)
	}
	for _, idx := range ends {
		fb.patch(idx, fb.here())
	}
}

func (c *Compiler) compileWhile(fb *funcBuilder, s *ast.While) {
	start := fb.here()
	fb.pushLoop(start)
	c.compileExpr(fb, s.Cond)
	jEnd := fb.emit(opcodes.OP_JMPZ, 0, 0, 0)
	c.compileBody(fb, s.Body)
	fb.emit(opcodes.OP_JMP, uint32(start), 0, 0)
	fb.patch(jEnd, fb.here())
	l := fb.popLoop()
	for _, idx := range l.BreakPatches {
		fb.patch(idx, fb.here())
	}
}

func (c *Compiler) compileDoWhile(fb *funcBuilder, s *ast.DoWhile) {
	start := fb.here()
	// continue target is patched below once the condition's address is
	// known (it sits right after the body, before this loop's own start).
	fb.pushLoop(-1)
	c.compileBody(fb, s.Body)
	condStart := fb.here()
	c.compileExpr(fb, s.Cond)
	fb.emit(opcodes.OP_JMPNZ, uint32(start), 0, 0)
	l := fb.popLoop()
	fb.resolveContinues(&l, condStart)
	for _, idx := range l.BreakPatches {
		fb.patch(idx, fb.here())
	}
}

func (c *Compiler) compileFor(fb *funcBuilder, s *ast.For) {
	for _, e := range s.Init {
		c.compileExpr(fb, e)
		fb.emit(opcodes.OP_POP, 0, 0, 0)
	}
	condStart := fb.here()
	fb.pushLoop(-1) // continue target is the step clause, compiled after the body
	var jEnd int
	hasCond := len(s.Cond) > 0
	if hasCond {
		for i, e := range s.Cond {
			c.compileExpr(fb, e)
			if i < len(s.Cond)-1 {
				fb.emit(opcodes.OP_POP, 0, 0, 0)
			}
		}
		jEnd = fb.emit(opcodes.OP_JMPZ, 0, 0, 0)
	}
	c.compileBody(fb, s.Body)
	stepStart := fb.here()
	for _, e := range s.Step {
		c.compileExpr(fb, e)
		fb.emit(opcodes.OP_POP, 0, 0, 0)
	}
	fb.emit(opcodes.OP_JMP, uint32(condStart), 0, 0)
	end := fb.here()
	if hasCond {
		fb.patch(jEnd, end)
	}
	l := fb.popLoop()
	fb.resolveContinues(&l, stepStart)
	for _, idx := range l.BreakPatches {
		fb.patch(idx, end)
	}
}

func (c *Compiler) compileForeach(fb *funcBuilder, s *ast.Foreach) {
	c.compileExpr(fb, s.Subject)
	iterSlot := fb.slotFor("__foreach_iter")
	fb.emit(opcodes.OP_FE_RESET, iterSlot, 0, 0)
	start := fb.here()
	fb.pushLoop(start)
	// FE_FETCH writes straight into Result's slot rather than the operand
	// stack, like the other FETCH_*/BIND_* housekeeping opcodes; Op1 carries
	// the iterator slot and Op2 the jump target taken once exhausted (Op1
	// is unavailable for the target since it already names the iterator).
	valSlot := fb.slotFor(s.ValueVar)
	jEnd := fb.emit(opcodes.OP_FE_FETCH, iterSlot, 0, valSlot)
	if s.KeyVar != "" {
		fb.emit(opcodes.OP_FE_FETCH_KEY, iterSlot, 0, fb.slotFor(s.KeyVar))
	}
	c.compileBody(fb, s.Body)
	fb.emit(opcodes.OP_JMP, uint32(start), 0, 0)
	fb.patchOp2(jEnd, fb.here())
	fb.emit(opcodes.OP_FE_FREE, iterSlot, 0, 0)
	l := fb.popLoop()
	for _, idx := range l.BreakPatches {
		fb.patch(idx, fb.here())
	}
}

func (c *Compiler) compileSwitch(fb *funcBuilder, s *ast.Switch) {
	c.compileExpr(fb, s.Subject)
	subjectSlot := fb.slotFor("__switch_subject")
	fb.emit(opcodes.OP_ASSIGN, subjectSlot, 0, 0)
	fb.emit(opcodes.OP_POP, 0, 0, 0)

	fb.pushLoop(-1) // `switch` accepts `break`/`continue`, neither of which needs a resolved continue target here
	var caseBodyStarts []int
	var jumpsToBody []int
	defaultIdx := -1
	for i, cs := range s.Cases {
		if cs.Value == nil {
			defaultIdx = i
			continue
		}
		fb.emit(opcodes.OP_FETCH_R, subjectSlot, 0, 0)
		c.compileExpr(fb, cs.Value)
		fb.emit(opcodes.OP_IS_EQUAL, 0, 0, 0)
		jumpsToBody = append(jumpsToBody, fb.emit(opcodes.OP_JMPNZ, 0, 0, 0))
	}
	jDefault := fb.emit(opcodes.OP_JMP, 0, 0, 0)

	bi := 0
	for i, cs := range s.Cases {
		if i == defaultIdx {
			fb.patch(jDefault, fb.here())
		} else {
			fb.patch(jumpsToBody[bi], fb.here())
			bi++
		}
		caseBodyStarts = append(caseBodyStarts, fb.here())
		c.compileBody(fb, cs.Body)
	}
	if defaultIdx == -1 {
		fb.patch(jDefault, fb.here())
	}
	_ = caseBodyStarts
	l := fb.popLoop()
	end := fb.here()
	// `continue` inside a switch behaves like `break` (PHP has no case-body
	// re-entry point to continue to), so both patch lists resolve here.
	for _, idx := range l.BreakPatches {
		fb.patch(idx, end)
	}
	fb.resolveContinues(&l, end)
}

func (c *Compiler) compileTry(fb *funcBuilder, s *ast.Try) {
	region := registry.TryRegion{Start: fb.here()}
	fb.tryDepth++
	c.compileBody(fb, s.Body)
	fb.tryDepth--
	jEnd := fb.emit(opcodes.OP_JMP, 0, 0, 0)
	region.End = fb.here()

	var catchEnds []int
	for _, cat := range s.Catches {
		region.CatchTypes = append(region.CatchTypes, cat.Types...)
		target := fb.here()
		for range cat.Types {
			region.CatchTargets = append(region.CatchTargets, target)
		}
		slot := fb.slotFor(cat.Var)
		fb.emit(opcodes.OP_CATCH, slot, 0, 0)
		c.compileBody(fb, cat.Body)
		catchEnds = append(catchEnds, fb.emit(opcodes.OP_JMP, 0, 0, 0))
	}
	fb.patch(jEnd, fb.here())
	for _, idx := range catchEnds {
		fb.patch(idx, fb.here())
	}

	if len(s.Finally) > 0 {
		region.HasFinally = true
		region.FinallyTarget = fb.here()
		c.compileBody(fb, s.Finally)
		region.FinallyEnd = fb.here()
	}
	fb.fn.TryTable = append(fb.fn.TryTable, region)
}
