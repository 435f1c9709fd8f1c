// Package compiler walks an ast.Program and emits opcodes.Instruction
// streams plus registry metadata, per SPEC_FULL.md §4.2. The instruction
// encoding here is simplified relative to the teacher's IS_CONST/IS_VAR/IS_CV
// operand-type system: every opcode pops its operands from and pushes its
// result onto the VM's operand stack, with Op1/Op2 carrying plain indices
// (constant-pool slot, local slot, jump target, argument count) rather than
// a tagged operand descriptor. Semantics match spec.md §4.1; representation
// does not need to.
package compiler

import (
	"github.com/leocavalcante/vhp/ast"
	verrors "github.com/leocavalcante/vhp/errors"
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// loopCtx is one entry of the break/continue context stack (spec.md §4.2
// "Jump patching"): ContinueTarget is the instruction to jump to on
// `continue`, BreakPatches accumulates forward-jump placeholders resolved
// once the loop's end label is known.
type loopCtx struct {
	// ContinueTarget is the jump destination for `continue`, known up front
	// for while/foreach (the loop head) but not for do-while (the condition,
	// compiled after the body) or a classic `for` (the step clause, also
	// compiled after the body) — in those cases it starts at -1 and
	// ContinuePatches collects forward jumps for resolveContinues to patch
	// once that address is known.
	ContinueTarget  int
	ContinuePatches []int
	BreakPatches    []int
	TryDepth        int
}

// funcBuilder accumulates one CompiledFunction's instructions, constants,
// and local-slot table during a single compiler pass.
type funcBuilder struct {
	c    *Compiler
	fn   *registry.Function
	locals   map[string]uint32
	nextSlot uint32
	loops    []loopCtx
	tryDepth int

	// class, when non-nil, is the enclosing class declaration being
	// compiled, used to resolve self::/parent::/static:: at compile time.
	class *ast.ClassDecl
}

func newFuncBuilder(c *Compiler, name string) *funcBuilder {
	return &funcBuilder{
		c:      c,
		fn:     &registry.Function{Name: name, Locals: make(map[string]uint32)},
		locals: make(map[string]uint32),
	}
}

func (fb *funcBuilder) emit(op opcodes.Opcode, op1, op2, result uint32) int {
	fb.fn.Instructions = append(fb.fn.Instructions, &opcodes.Instruction{
		Opcode: op, Op1: op1, Op2: op2, Result: result,
	})
	return len(fb.fn.Instructions) - 1
}

func (fb *funcBuilder) here() int { return len(fb.fn.Instructions) }

func (fb *funcBuilder) patch(idx int, target int) {
	fb.fn.Instructions[idx].Op1 = uint32(target)
}

// patchOp2 is patch's counterpart for the handful of opcodes (OP_FE_FETCH)
// that carry their jump target in Op2 because Op1 is already spoken for.
func (fb *funcBuilder) patchOp2(idx int, target int) {
	fb.fn.Instructions[idx].Op2 = uint32(target)
}

func (fb *funcBuilder) addConst(v *values.Value) uint32 {
	fb.fn.Constants = append(fb.fn.Constants, v)
	return uint32(len(fb.fn.Constants) - 1)
}

func (fb *funcBuilder) addStringConst(s string) uint32 {
	return fb.addConst(values.NewString(s))
}

// slotFor returns name's local slot, allocating one on first use. Every
// variable the compiler sees is treated as provably local (spec.md §4.2's
// "definitely local" fast path) since ast.Builder-constructed programs never
// emit variable-variable syntax; dynamic variable names (`$$x`) would need
// the named-variable fallback this rewrite does not implement.
func (fb *funcBuilder) slotFor(name string) uint32 {
	if slot, ok := fb.locals[name]; ok {
		return slot
	}
	slot := fb.nextSlot
	fb.nextSlot++
	fb.locals[name] = slot
	fb.fn.Locals[name] = slot
	fb.fn.MaxLocalSlot = fb.nextSlot
	return slot
}

func (fb *funcBuilder) pushLoop(continueTarget int) {
	fb.loops = append(fb.loops, loopCtx{ContinueTarget: continueTarget, TryDepth: fb.tryDepth})
}

func (fb *funcBuilder) popLoop() loopCtx {
	l := fb.loops[len(fb.loops)-1]
	fb.loops = fb.loops[:len(fb.loops)-1]
	return l
}

func (fb *funcBuilder) loopAt(depth int) (*loopCtx, bool) {
	idx := len(fb.loops) - depth
	if idx < 0 || idx >= len(fb.loops) {
		return nil, false
	}
	return &fb.loops[idx], true
}

func (fb *funcBuilder) addBreakPatch(depth int) bool {
	l, ok := fb.loopAt(depth)
	if !ok {
		return false
	}
	idx := fb.emit(opcodes.OP_JMP, 0, 0, 0)
	l.BreakPatches = append(l.BreakPatches, idx)
	return true
}

func (fb *funcBuilder) emitContinue(depth int) bool {
	l, ok := fb.loopAt(depth)
	if !ok {
		return false
	}
	if l.ContinueTarget >= 0 {
		fb.emit(opcodes.OP_JMP, uint32(l.ContinueTarget), 0, 0)
		return true
	}
	idx := fb.emit(opcodes.OP_JMP, 0, 0, 0)
	l.ContinuePatches = append(l.ContinuePatches, idx)
	return true
}

// resolveContinues patches every pending continue jump of the innermost loop
// (used by `for`, whose continue target isn't known until the step clause is
// compiled) to target.
func (fb *funcBuilder) resolveContinues(l *loopCtx, target int) {
	for _, idx := range l.ContinuePatches {
		fb.patch(idx, target)
	}
}

func (fb *funcBuilder) fail(err *verrors.Error) {
	fb.c.errs.Add(err)
}
