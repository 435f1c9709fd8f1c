package vm

import (
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// iterState is the runtime cursor of one open foreach loop, keyed by the
// synthetic local slot the compiler allocated for it (OP_FE_RESET's Op1).
// It lives off the operand stack the same way DECLARE_*/BIND_* state does,
// since foreach position isn't something ordinary PHP code can observe or
// reassign through a variable.
type iterState struct {
	keys   []values.ArrayKey
	values []*values.Value
	pos    int
}

// pendingCapture is one (name, value) pair queued by OP_ARROW_CAPTURE for
// the next OP_CREATE_CLOSURE to consume.
type pendingCapture struct {
	name  string
	value *values.Value
}

// CallFrame is one activation record: a function's locals, its private
// operand stack, and the bookkeeping an executing instruction stream needs
// (open foreach iterators, pending closure captures, the bound $this/class
// context for method dispatch).
type CallFrame struct {
	Function *registry.Function
	IP       int

	Locals []*values.Value
	Stack  []*values.Value

	This      *values.Value // nil outside an instance method body
	ClassName string        // the class this frame belongs to, for self::/parent::/static::
	StaticCls string        // late static binding target (spec.md §3 "static::")

	Iterators map[uint32]*iterState
	Captures  []pendingCapture

	// GlobalSlots maps a local slot bound by `global $x` back to the global
	// variable name it aliases, so UpdateGlobalBindings can propagate writes.
	GlobalSlots map[uint32]string
}

func newCallFrame(fn *registry.Function, this *values.Value, className, staticCls string) *CallFrame {
	return &CallFrame{
		Function:    fn,
		Locals:      make([]*values.Value, fn.MaxLocalSlot+uint32(len(fn.Locals))+8),
		This:        this,
		ClassName:   className,
		StaticCls:   staticCls,
		Iterators:   make(map[uint32]*iterState),
		GlobalSlots: make(map[uint32]string),
	}
}

func (f *CallFrame) local(slot uint32) *values.Value {
	if int(slot) >= len(f.Locals) {
		grown := make([]*values.Value, slot+8)
		copy(grown, f.Locals)
		f.Locals = grown
	}
	if f.Locals[slot] == nil {
		f.Locals[slot] = values.NewNull()
	}
	return f.Locals[slot]
}

// setLocal writes through an existing reference in place (preserving =&
// aliasing) rather than replacing the slot pointer outright, per spec.md
// §3's reference-semantics requirement.
func (f *CallFrame) setLocal(slot uint32, val *values.Value) {
	if int(slot) < len(f.Locals) && f.Locals[slot] != nil && f.Locals[slot].IsReference() {
		target := f.Locals[slot].Deref()
		*target = *val.Deref()
		return
	}
	if int(slot) >= len(f.Locals) {
		grown := make([]*values.Value, slot+8)
		copy(grown, f.Locals)
		f.Locals = grown
	}
	f.Locals[slot] = val
}

func (f *CallFrame) push(v *values.Value) { f.Stack = append(f.Stack, v) }

func (f *CallFrame) pop() *values.Value {
	n := len(f.Stack)
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v
}

func (f *CallFrame) top() *values.Value { return f.Stack[len(f.Stack)-1] }
