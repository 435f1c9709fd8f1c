package vm

import (
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// execState is the per-activation context threaded through the dispatch
// loop: everything executeFrame needs besides the instruction stream itself.
type execState struct {
	vm    *VM
	frame *CallFrame
	gen   *generatorState // non-nil only while running a generator body
	fiber *fiberState      // non-nil only while running a fiber body
}

// pendingRethrow tracks an exception that reached a finally region without
// being claimed by any catch: it is still in flight and must be re-raised
// once the finally body (which runs regardless) reaches its end.
type pendingRethrow struct {
	err     error
	origIP  int // the IP of the instruction that threw, for re-searching TryTable
	atIP    int // frame.IP value (region.FinallyEnd) at which to re-raise
	fromIdx int // resume the TryTable scan here, past the region already run
}

// executeFrame runs fn's instruction stream to completion (return, an
// uncaught exception, or a halt signal) starting at frame.IP.
func (vm *VM) executeFrame(frame *CallFrame, gen *generatorState, fiber *fiberState) (*values.Value, error) {
	st := &execState{vm: vm, frame: frame, gen: gen, fiber: fiber}
	var pendingExc *values.Value
	var rethrow *pendingRethrow

	for {
		if frame.IP >= len(frame.Function.Instructions) {
			if rethrow != nil {
				return nil, rethrow.err
			}
			return values.NewNull(), nil
		}
		if rethrow != nil && frame.IP == rethrow.atIP {
			target, idx, matched, ok := findCatch(frame.Function, rethrow.origIP, rethrow.err, vm.Registry, rethrow.fromIdx)
			if !ok {
				return nil, rethrow.err
			}
			pendingExc = exceptionValue(rethrow.err)
			frame.IP = target
			if matched {
				rethrow = nil
			} else {
				region := &frame.Function.TryTable[idx]
				rethrow = &pendingRethrow{err: rethrow.err, origIP: rethrow.origIP, atIP: region.FinallyEnd, fromIdx: idx + 1}
			}
			continue
		}
		inst := frame.Function.Instructions[frame.IP]
		ret, jumped, err := st.step(inst, &pendingExc)
		if err != nil {
			if _, ok := err.(*haltSignal); ok {
				return values.NewNull(), err
			}
			throwIP := frame.IP
			target, idx, matched, ok := findCatch(frame.Function, throwIP, err, vm.Registry, 0)
			if !ok {
				return nil, err
			}
			pendingExc = exceptionValue(err)
			frame.IP = target
			if matched {
				rethrow = nil
			} else {
				region := &frame.Function.TryTable[idx]
				rethrow = &pendingRethrow{err: err, origIP: throwIP, atIP: region.FinallyEnd, fromIdx: idx + 1}
			}
			continue
		}
		if len(frame.Stack) > vm.Limits.MaxStack {
			return nil, &VMError{Type: ErrStackOverflow, Opcode: inst.Opcode, IP: frame.IP}
		}
		// A return from inside a finally body (or any other control flow that
		// exits the frame before reaching rethrow.atIP) takes precedence over
		// a pending rethrow, matching PHP's finally-swallows-the-exception
		// behavior for an explicit return.
		if ret != nil {
			return ret, nil
		}
		if !jumped {
			frame.IP++
		}
	}
}

// step executes one instruction, returning a non-nil return value on
// OP_RETURN/OP_GENERATOR_RETURN, jumped=true when it already updated
// frame.IP itself (so the caller must not auto-advance), and an error for
// a thrown exception or halt signal.
func (st *execState) step(inst *opcodes.Instruction, pendingExc **values.Value) (*values.Value, bool, error) {
	vm, f := st.vm, st.frame
	switch inst.Opcode {
	case opcodes.OP_NOP:
		// no-op

	case opcodes.OP_PUSH_CONST:
		f.push(f.Function.Constants[inst.Op1])

	case opcodes.OP_POP:
		f.pop()

	case opcodes.OP_DUP:
		f.push(f.top())

	case opcodes.OP_FETCH_R:
		f.push(f.local(inst.Op1))

	// Arithmetic
	case opcodes.OP_ADD:
		b, a := f.pop(), f.pop()
		f.push(arithAdd(a, b))
	case opcodes.OP_SUB:
		b, a := f.pop(), f.pop()
		f.push(arithBinary(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }))
	case opcodes.OP_MUL:
		b, a := f.pop(), f.pop()
		f.push(arithBinary(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }))
	case opcodes.OP_DIV:
		b, a := f.pop(), f.pop()
		v, err := arithDiv(a, b)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_MOD:
		b, a := f.pop(), f.pop()
		v, err := arithMod(a, b)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_POW:
		b, a := f.pop(), f.pop()
		f.push(arithPow(a, b))

	case opcodes.OP_PLUS:
		a := f.pop()
		f.push(arithUnaryPlus(a))
	case opcodes.OP_MINUS:
		a := f.pop()
		f.push(arithUnaryMinus(a))
	case opcodes.OP_NOT:
		a := f.pop()
		f.push(values.NewBool(!a.ToBool()))
	case opcodes.OP_BW_NOT:
		a := f.pop()
		f.push(values.NewInt(^a.ToInt()))

	case opcodes.OP_BW_AND:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(a.ToInt() & b.ToInt()))
	case opcodes.OP_BW_OR:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(a.ToInt() | b.ToInt()))
	case opcodes.OP_BW_XOR:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(a.ToInt() ^ b.ToInt()))
	case opcodes.OP_SL:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(a.ToInt() << uint(b.ToInt())))
	case opcodes.OP_SR:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(a.ToInt() >> uint(b.ToInt())))

	case opcodes.OP_PRE_INC, opcodes.OP_PRE_DEC, opcodes.OP_POST_INC, opcodes.OP_POST_DEC:
		st.incDec(inst)

	// Comparisons
	case opcodes.OP_IS_EQUAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Equal(b)))
	case opcodes.OP_IS_NOT_EQUAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(!a.Equal(b)))
	case opcodes.OP_IS_IDENTICAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Identical(b)))
	case opcodes.OP_IS_NOT_IDENTICAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(!a.Identical(b)))
	case opcodes.OP_IS_SMALLER:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Compare(b) < 0))
	case opcodes.OP_IS_SMALLER_OR_EQUAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Compare(b) <= 0))
	case opcodes.OP_IS_GREATER:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Compare(b) > 0))
	case opcodes.OP_IS_GREATER_OR_EQUAL:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.Compare(b) >= 0))
	case opcodes.OP_SPACESHIP:
		b, a := f.pop(), f.pop()
		f.push(values.NewInt(int64(a.Compare(b))))
	case opcodes.OP_INSTANCEOF:
		a := f.pop()
		className := f.Function.Constants[inst.Op1].AsString()
		result := false
		if a.Deref().IsObject() {
			result = vm.Registry.IsInstanceOf(a.Deref().AsObject().ClassName, className)
		}
		f.push(values.NewBool(result))

	case opcodes.OP_BOOLEAN_AND, opcodes.OP_LOGICAL_AND:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.ToBool() && b.ToBool()))
	case opcodes.OP_BOOLEAN_OR, opcodes.OP_LOGICAL_OR:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.ToBool() || b.ToBool()))
	case opcodes.OP_LOGICAL_XOR:
		b, a := f.pop(), f.pop()
		f.push(values.NewBool(a.ToBool() != b.ToBool()))

	case opcodes.OP_BOOL:
		a := f.pop()
		f.push(values.NewBool(a.ToBool()))
	case opcodes.OP_CAST_STRING:
		a := f.pop()
		f.push(values.NewString(vm.stringify(a)))
	case opcodes.OP_CAST:
		a := f.pop()
		f.push(castTo(a, int(inst.Op1)))

	// Control flow
	case opcodes.OP_JMP:
		f.IP = int(inst.Op1)
		return nil, true, nil
	case opcodes.OP_JMPZ:
		a := f.pop()
		if !a.ToBool() {
			f.IP = int(inst.Op1)
			return nil, true, nil
		}
	case opcodes.OP_JMPNZ:
		a := f.pop()
		if a.ToBool() {
			f.IP = int(inst.Op1)
			return nil, true, nil
		}
	case opcodes.OP_JMPZ_EX:
		if !f.top().ToBool() {
			f.IP = int(inst.Op1)
			return nil, true, nil
		}
	case opcodes.OP_JMPNZ_EX:
		if f.top().ToBool() {
			f.IP = int(inst.Op1)
			return nil, true, nil
		}

	case opcodes.OP_THROW:
		v := f.pop()
		return nil, false, Throw(v)

	case opcodes.OP_CATCH:
		if *pendingExc != nil {
			f.setLocal(inst.Op1, *pendingExc)
			*pendingExc = nil
		}

	// Assignment / fetch
	case opcodes.OP_ASSIGN:
		v := f.pop()
		v = copyOnAssign(v)
		f.setLocal(inst.Op1, v)
		f.push(v)
	case opcodes.OP_ASSIGN_REF:
		st.assignRef(inst.Op1, inst.Op2)
	case opcodes.OP_QM_ASSIGN:
		v := f.pop()
		f.push(v)
	case opcodes.OP_COALESCE_ASSIGN:
		rhs := f.pop()
		cur := f.local(inst.Op1)
		if cur.Deref().IsNull() {
			rhs = copyOnAssign(rhs)
			f.setLocal(inst.Op1, rhs)
			f.push(rhs)
		} else {
			f.push(cur)
		}
	case opcodes.OP_COALESCE:
		b, a := f.pop(), f.pop()
		if !a.Deref().IsNull() {
			f.push(a)
		} else {
			f.push(b)
		}

	case opcodes.OP_FETCH_DIM_R:
		key, arr := f.pop(), f.pop()
		if !arr.Deref().IsArray() {
			f.push(values.NewNull())
			break
		}
		f.push(arr.Deref().AsArray().Get(values.NormalizeKey(key)))

	case opcodes.OP_ASSIGN_DIM:
		val := f.pop()
		var keyVal *values.Value
		if inst.Op2 == 1 {
			keyVal = f.pop()
		}
		f.pop() // discard the redundantly-pushed array value; Op1 names the slot directly
		val = copyOnAssign(val)
		arrVal := f.local(inst.Op1)
		if arrVal.Deref().IsNull() {
			fresh := values.NewArrayValue(values.NewArray())
			f.setLocal(inst.Op1, fresh)
			arrVal = f.local(inst.Op1)
		}
		arr := arrVal.Deref().AsArray()
		if keyVal != nil {
			arr.Set(values.NormalizeKey(keyVal), val)
		} else {
			arr.Append(val)
		}
		f.push(val)

	case opcodes.OP_FETCH_OBJ_R:
		obj := f.pop()
		name := f.Function.Constants[inst.Op1].AsString()
		d := obj.Deref()
		if d.IsEnumCase() {
			f.push(enumCaseProperty(d.AsEnumCase(), name))
			break
		}
		if !d.IsObject() {
			return nil, false, &VMError{Type: ErrPropertyNotFound, Message: name, Opcode: inst.Opcode, IP: f.IP}
		}
		v, ok := d.AsObject().Properties[name]
		if !ok {
			v = values.NewNull()
		}
		f.push(v)

	case opcodes.OP_ASSIGN_OBJ:
		val := f.pop()
		obj := f.pop()
		name := f.Function.Constants[inst.Op1].AsString()
		o := obj.Deref().AsObject()
		if o.Readonly[name] && o.Init[name] {
			return nil, false, &VMError{Type: ErrReadonlyReinit, Message: name, Opcode: inst.Opcode, IP: f.IP}
		}
		val = copyOnAssign(val)
		o.Properties[name] = val
		if o.Readonly[name] {
			o.InitReadonly(name)
		}
		f.push(val)

	case opcodes.OP_FETCH_CLASS_CONSTANT:
		v, err := vm.fetchClassConstant(f.Function.Constants[inst.Op1].AsString())
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_FETCH_STATIC_PROP_R:
		v := vm.fetchStaticProp(f.Function.Constants[inst.Op1].AsString())
		f.push(v)

	case opcodes.OP_ASSIGN_STATIC_PROP:
		val := f.pop()
		val = copyOnAssign(val)
		vm.assignStaticProp(f.Function.Constants[inst.Op1].AsString(), val)
		f.push(val)

	case opcodes.OP_ISSET_ISEMPTY_VAR:
		set := int(inst.Op1) < len(f.Locals) && f.Locals[inst.Op1] != nil && !f.Locals[inst.Op1].Deref().IsNull()
		f.push(values.NewBool(set))

	case opcodes.OP_UNSET_VAR:
		f.setLocal(inst.Op1, values.NewNull())

	case opcodes.OP_BIND_GLOBAL:
		name := f.Function.Constants[inst.Op2].AsString()
		vm.globalsMu.Lock()
		box, ok := vm.globals[name]
		if !ok {
			box = values.NewNull()
			vm.globals[name] = box
		}
		vm.globalsMu.Unlock()
		ref := values.NewReference(box)
		f.Locals[paddedSlot(f, inst.Op1)] = ref
		f.GlobalSlots[inst.Op1] = name

	case opcodes.OP_BIND_STATIC:
		cell := vm.staticSlot(f.Function, inst.Op1, f.Function.Constants[inst.Op2])
		f.Locals[paddedSlot(f, inst.Op1)] = values.NewReference(cell)

	// Arrays
	case opcodes.OP_INIT_ARRAY:
		f.push(values.NewArrayValue(values.NewArray()))
	case opcodes.OP_ADD_ARRAY_ELEMENT:
		val := f.pop()
		var keyVal *values.Value
		if inst.Op1 == 1 {
			keyVal = f.pop()
		}
		arr := f.top().Deref().AsArray()
		if keyVal != nil {
			arr.Set(values.NormalizeKey(keyVal), val)
		} else {
			arr.Append(val)
		}
	case opcodes.OP_ADD_ARRAY_UNPACK:
		spread := f.pop()
		arr := f.top().Deref().AsArray()
		if spread.Deref().IsArray() {
			spread.Deref().AsArray().Each(func(k values.ArrayKey, v *values.Value) bool {
				if k.IsInt {
					arr.Append(v)
				} else {
					arr.Set(k, v)
				}
				return true
			})
		}

	// Strings
	case opcodes.OP_CONCAT, opcodes.OP_FAST_CONCAT:
		b, a := f.pop(), f.pop()
		f.push(values.NewString(vm.stringify(a) + vm.stringify(b)))
	case opcodes.OP_STRLEN:
		a := f.pop()
		f.push(values.NewInt(int64(len(a.ToString()))))

	// Output
	case opcodes.OP_ECHO:
		v := f.pop()
		if err := vm.WriteOutput(v); err != nil {
			return nil, false, err
		}
	case opcodes.OP_PRINT:
		v := f.pop()
		if err := vm.WriteOutput(v); err != nil {
			return nil, false, err
		}
		f.push(values.NewInt(1))

	// Objects
	case opcodes.OP_NEW:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		className := f.Function.Constants[inst.Op1].AsString()
		obj, err := vm.instantiate(className, args)
		if err != nil {
			return nil, false, err
		}
		f.push(obj)
	case opcodes.OP_CLONE:
		v := f.pop()
		f.push(values.NewObjectValue(v.Deref().AsObject().Clone()))
	case opcodes.OP_CLONE_WITH:
		count := int(inst.Op2)
		vals := popArgs(f, count)
		namesArr := f.Function.Constants[inst.Op1].AsArray()
		names := namesArr.Values()
		obj := f.pop()
		overrides := make(map[string]*values.Value, count)
		for i := 0; i < count && i < len(names); i++ {
			overrides[names[i].AsString()] = vals[i]
		}
		f.push(values.NewObjectValue(obj.Deref().AsObject().CloneWith(overrides)))

	// Calls
	case opcodes.OP_DO_UCALL:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		name := f.Function.Constants[inst.Op1].AsString()
		v, err := vm.callByName(name, args)
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_METHOD_CALL:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		obj := f.pop()
		name := f.Function.Constants[inst.Op1].AsString()
		v, err := vm.callMethod(obj, name, args)
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_STATIC_METHOD_CALL:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		ref := f.Function.Constants[inst.Op1].AsString()
		v, err := vm.callStatic(f, ref, args)
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_INVOKE_CLOSURE:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		callee := f.pop()
		v, err := vm.invokeCallable(callee, args)
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_CREATE_CLOSURE:
		count := int(inst.Op2)
		name := f.Function.Constants[inst.Op1].AsString()
		fn, _ := vm.Registry.GetFunction(name)
		cl := values.NewClosure()
		cl.Body = fn
		n := len(f.Captures)
		for i := n - count; i < n; i++ {
			if i < 0 {
				continue
			}
			cl.Bound[f.Captures[i].name] = f.Captures[i].value
		}
		f.Captures = f.Captures[:n-count]
		f.push(values.NewClosureValue(cl))

	case opcodes.OP_ARROW_CAPTURE:
		v := f.pop()
		name := f.Function.Constants[inst.Op1].AsString()
		f.Captures = append(f.Captures, pendingCapture{name: name, value: v})

	case opcodes.OP_PIPE:
		callee, val := f.pop(), f.pop()
		v, err := vm.invokeCallable(callee, []*values.Value{val})
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	case opcodes.OP_MATCH_FAIL:
		f.pop()
		return nil, false, Throw(vm.newThrowable("UnhandledMatchError", "Unhandled match case"))

	// Foreach
	case opcodes.OP_FE_RESET:
		subject := f.pop()
		f.Iterators[inst.Op1] = buildIterState(subject)

	case opcodes.OP_FE_FETCH:
		it := f.Iterators[inst.Op1]
		if it == nil || it.pos >= len(it.values) {
			f.IP = int(inst.Op2)
			return nil, true, nil
		}
		f.setLocal(inst.Result, it.values[it.pos])
		it.pos++

	case opcodes.OP_FE_FETCH_KEY:
		it := f.Iterators[inst.Op1]
		if it != nil && it.pos-1 >= 0 && it.pos-1 < len(it.keys) {
			f.setLocal(inst.Result, it.keys[it.pos-1].ToValue())
		}

	case opcodes.OP_FE_FREE:
		delete(f.Iterators, inst.Op1)

	// Generators
	case opcodes.OP_YIELD:
		val := f.pop()
		var key *values.Value
		if inst.Op1 == 1 {
			key = f.pop()
		}
		v, err := st.yield(key, val)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_YIELD_FROM:
		source := f.pop()
		v, err := st.yieldFrom(source)
		if err != nil {
			return nil, false, err
		}
		f.push(v)

	// Fibers
	case opcodes.OP_FIBER_START:
		argc := int(inst.Op2)
		args := popArgs(f, argc)
		callable := f.pop()
		v, err := vm.fiberStart(callable, args)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_FIBER_RESUME:
		sendVal, fiberVal := f.pop(), f.pop()
		v, err := vm.fiberResume(fiberVal, sendVal)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_FIBER_SUSPEND:
		val := f.pop()
		v, err := st.suspend(val)
		if err != nil {
			return nil, false, err
		}
		f.push(v)
	case opcodes.OP_FIBER_GET_RETURN:
		fiberVal := f.pop()
		f.push(fiberVal.Deref().AsFiber().ReturnVal)

	// Return
	case opcodes.OP_RETURN:
		return f.pop(), false, nil
	case opcodes.OP_RETURN_BY_REF:
		return f.pop(), false, nil
	case opcodes.OP_GENERATOR_RETURN:
		return f.pop(), false, nil

	default:
		return nil, false, &VMError{Type: ErrOpcodeNotImplemented, Message: inst.Opcode.String(), Opcode: inst.Opcode, IP: f.IP}
	}
	return nil, false, nil
}

// paddedSlot grows Locals (if needed) and returns slot, mirroring
// CallFrame.local's growth policy for direct-assignment call sites.
func paddedSlot(f *CallFrame, slot uint32) uint32 {
	if int(slot) >= len(f.Locals) {
		grown := make([]*values.Value, slot+8)
		copy(grown, f.Locals)
		f.Locals = grown
	}
	return slot
}

// copyOnAssign implements PHP's array value semantics: assigning an array
// into a variable (local, property, array element) copies it, so the two
// variables don't alias the same backing store afterward. Objects, closures,
// and scalars are unaffected (PHP objects have reference/identity semantics).
func copyOnAssign(v *values.Value) *values.Value {
	d := v.Deref()
	if d.Type != values.TypeArray {
		return v
	}
	return values.NewArrayValue(d.AsArray().Clone())
}

// enumCaseProperty reads one of an enum case's two read-only pseudo
// properties: ->name always exists, ->value only for a backed case (null
// otherwise, rather than erroring, matching how OP_FETCH_OBJ_R treats any
// other undeclared property read).
func enumCaseProperty(ec *values.EnumCase, name string) *values.Value {
	switch name {
	case "name":
		return values.NewString(ec.Name)
	case "value":
		if ec.Backing != nil {
			return ec.Backing
		}
	}
	return values.NewNull()
}

func popArgs(f *CallFrame, n int) []*values.Value {
	args := make([]*values.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	return args
}

func (st *execState) assignRef(targetSlot, sourceSlot uint32) {
	f := st.frame
	cur := f.local(sourceSlot)
	if !cur.IsReference() {
		boxed := &values.Value{}
		*boxed = *cur
		ref := values.NewReference(boxed)
		f.Locals[paddedSlot(f, sourceSlot)] = ref
		cur = ref
	}
	f.Locals[paddedSlot(f, targetSlot)] = cur
}

func (st *execState) incDec(inst *opcodes.Instruction) {
	f := st.frame
	cur := f.local(inst.Op1)
	var next *values.Value
	delta := int64(1)
	if inst.Opcode == opcodes.OP_PRE_DEC || inst.Opcode == opcodes.OP_POST_DEC {
		delta = -1
	}
	if cur.Deref().IsFloat() {
		next = values.NewFloat(cur.ToFloat() + float64(delta))
	} else {
		next = values.NewInt(cur.ToInt() + delta)
	}
	old := cur
	f.setLocal(inst.Op1, next)
	if inst.Opcode == opcodes.OP_PRE_INC || inst.Opcode == opcodes.OP_PRE_DEC {
		f.push(next)
	} else {
		f.push(old)
	}
}

func castTo(v *values.Value, kind int) *values.Value {
	switch kind {
	case opcodes.CAST_IS_LONG:
		return values.NewInt(v.ToInt())
	case opcodes.CAST_IS_DOUBLE:
		return values.NewFloat(v.ToFloat())
	case opcodes.CAST_IS_STRING:
		return values.NewString(v.ToString())
	case opcodes.CAST_IS_TRUE, opcodes.CAST_IS_FALSE:
		return values.NewBool(v.ToBool())
	case opcodes.CAST_IS_ARRAY:
		if v.Deref().IsArray() {
			return v
		}
		return values.NewArrayValue(values.NewArrayOf(v))
	default:
		return v
	}
}

// stringify renders v the way `echo`/string interpolation does, calling
// __toString on objects that declare it (spec.md §4.4).
func (vm *VM) stringify(v *values.Value) string {
	d := v.Deref()
	if d.IsObject() {
		obj := d.AsObject()
		if class, ok := vm.Registry.GetClass(obj.ClassName); ok {
			if _, ok := findMethod(vm.Registry, class, "__toString"); ok {
				res, err := vm.callMethod(v, "__toString", nil)
				if err == nil {
					return res.ToString()
				}
			}
		}
	}
	return d.ToString()
}

// findMethod walks a class's parent chain for a declared method.
func findMethod(reg *registry.Registry, class *registry.Class, name string) (*registry.Function, bool) {
	for class != nil {
		if m, ok := class.Methods[name]; ok {
			return m, true
		}
		if class.Parent == "" {
			return nil, false
		}
		class, _ = reg.GetClass(class.Parent)
	}
	return nil, false
}
