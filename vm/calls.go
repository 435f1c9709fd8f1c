package vm

import (
	"fmt"

	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// Call invokes fn with args, optionally bound to an instance (this) and a
// class context (className for self::/$this, staticCls for late static
// binding's static::). OP_DO_UCALL, OP_METHOD_CALL, OP_STATIC_METHOD_CALL,
// `new` constructors and generator functions called by name go through it;
// bytecode closure bodies (callClosure) and fiber bodies (fiberStart) build
// their frames themselves and do not pass through Call or its call-depth
// check.
func (vm *VM) Call(fn *registry.Function, args []*values.Value, this *values.Value, className, staticCls string) (*values.Value, error) {
	if vm.calls.Depth() >= vm.Limits.MaxCallDepth {
		return nil, &VMError{Type: ErrCallDepth, Message: fn.Name}
	}

	if fn.IsBuiltin {
		if fn.Builtin == nil {
			return nil, &VMError{Type: ErrFunctionNotFound, Message: fn.Name}
		}
		return fn.Builtin(vm, args)
	}

	frame := newCallFrame(fn, this, className, staticCls)
	if err := vm.bindParameters(frame, fn, args); err != nil {
		return nil, err
	}
	if this != nil {
		if slot, ok := fn.Locals["this"]; ok {
			frame.Locals[paddedSlot(frame, slot)] = this
		}
	}

	if fn.IsGenerator {
		return vm.startGenerator(fn, frame), nil
	}

	vm.calls.PushFrame(frame)
	defer vm.calls.PopFrame()
	ret, err := vm.executeFrame(frame, nil, nil)
	if err != nil {
		return nil, err
	}
	return vm.checkReturnType(fn, ret)
}

// bindParameters copies args into fn's declared parameter slots, applying
// defaults for omitted trailing arguments and collecting the tail into a
// single array for a variadic final parameter (spec.md §4.3). Arrays are
// copied at the binding boundary, matching PHP's pass-by-value default. Each
// typed parameter is validated (and, under the default coercive mode,
// coerced) against its declared type hint per spec.md §4.6.
func (vm *VM) bindParameters(frame *CallFrame, fn *registry.Function, args []*values.Value) error {
	for i, p := range fn.Parameters {
		slot, ok := fn.Locals[p.Name]
		if !ok {
			continue
		}
		if p.IsVariadic {
			rest := values.NewArray()
			for j := i; j < len(args); j++ {
				rest.Append(copyOnAssign(args[j]))
			}
			frame.Locals[paddedSlot(frame, slot)] = values.NewArrayValue(rest)
			return nil
		}
		switch {
		case i < len(args):
			v := args[i]
			if !p.IsReference && p.Type != "" {
				checked, err := vm.checkType(p.Type, v, "Argument #"+fmt.Sprint(i+1)+" ($"+p.Name+")")
				if err != nil {
					return err
				}
				v = checked
			}
			if p.IsReference {
				frame.Locals[paddedSlot(frame, slot)] = v
			} else {
				frame.Locals[paddedSlot(frame, slot)] = copyOnAssign(v)
			}
		case p.HasDefault:
			frame.Locals[paddedSlot(frame, slot)] = copyOnAssign(p.DefaultValue)
		default:
			frame.Locals[paddedSlot(frame, slot)] = values.NewNull()
		}
	}
	return nil
}

// callByName resolves and calls a plain function reference (OP_DO_UCALL).
func (vm *VM) callByName(name string, args []*values.Value) (*values.Value, error) {
	fn, ok := vm.Registry.GetFunction(name)
	if !ok {
		return nil, &VMError{Type: ErrFunctionNotFound, Message: name}
	}
	return vm.Call(fn, args, nil, "", "")
}

// callMethod resolves an instance method call, walking obj's class's parent
// chain for the first declared method named name.
func (vm *VM) callMethod(obj *values.Value, name string, args []*values.Value) (*values.Value, error) {
	d := obj.Deref()
	if d.IsClosure() && name == "call" {
		return vm.invokeCallable(obj, args)
	}
	if !d.IsObject() {
		return nil, &VMError{Type: ErrMethodNotFound, Message: name}
	}
	o := d.AsObject()
	class, ok := vm.Registry.GetClass(o.ClassName)
	if !ok {
		return nil, &VMError{Type: ErrClassNotFound, Message: o.ClassName}
	}
	fn, ok := findMethod(vm.Registry, class, name)
	if !ok {
		return nil, &VMError{Type: ErrMethodNotFound, Message: o.ClassName + "::" + name}
	}
	return vm.Call(fn, args, obj, class.Name, o.ClassName)
}

// callStatic resolves "Class::method" (OP_STATIC_METHOD_CALL), translating
// the self/parent/static pseudo-class-names against the calling frame's
// class context (spec.md §3 late static binding).
func (vm *VM) callStatic(caller *CallFrame, ref string, args []*values.Value) (*values.Value, error) {
	className, methodName := splitClassRef(ref)
	resolvedStatic := caller.StaticCls
	if resolvedStatic == "" {
		resolvedStatic = caller.ClassName
	}

	var lookupClass string
	switch className {
	case "self":
		lookupClass = caller.ClassName
	case "parent":
		cls, ok := vm.Registry.GetClass(caller.ClassName)
		if !ok || cls.Parent == "" {
			return nil, &VMError{Type: ErrClassNotFound, Message: "parent::" + methodName}
		}
		lookupClass = cls.Parent
	case "static":
		lookupClass = resolvedStatic
	default:
		lookupClass = className
		resolvedStatic = className
	}

	class, ok := vm.Registry.GetClass(lookupClass)
	if !ok {
		return nil, &VMError{Type: ErrClassNotFound, Message: lookupClass}
	}

	if class.IsEnum {
		if result, handled, err := vm.callEnumPseudoMethod(class, methodName, args); handled {
			return result, err
		}
	}

	fn, ok := findMethod(vm.Registry, class, methodName)
	if !ok {
		return nil, &VMError{Type: ErrMethodNotFound, Message: lookupClass + "::" + methodName}
	}

	// A non-static call through self::/parent:: inside an instance method
	// keeps $this bound; a genuinely static method call does not.
	var this *values.Value
	if caller.This != nil && (className == "self" || className == "parent" || className == "static") {
		this = caller.This
	}
	return vm.Call(fn, args, this, class.Name, resolvedStatic)
}

func splitClassRef(ref string) (class, member string) {
	for i := 0; i < len(ref)-1; i++ {
		if ref[i] == ':' && ref[i+1] == ':' {
			return ref[:i], ref[i+2:]
		}
	}
	return ref, ""
}

// invokeCallable dispatches OP_INVOKE_CLOSURE/OP_PIPE's callee operand,
// which may be a Closure, a plain string function name, or an object
// declaring __invoke (spec.md §3's first-class-callable value shapes).
func (vm *VM) invokeCallable(callee *values.Value, args []*values.Value) (*values.Value, error) {
	d := callee.Deref()
	switch {
	case d.IsClosure():
		return vm.callClosure(d.AsClosure(), args)
	case d.IsString():
		return vm.callByName(d.AsString(), args)
	case d.IsObject():
		return vm.callMethod(callee, "__invoke", args)
	default:
		return nil, &VMError{Type: ErrFunctionNotFound, Message: "value is not callable"}
	}
}

// callClosure runs a Closure's bytecode body (or named-function/method
// reference), seeding the callee frame's locals from the closure's captured
// Bound map before binding the call's own arguments.
func (vm *VM) callClosure(cl *values.Closure, args []*values.Value) (*values.Value, error) {
	if cl.FunctionName != "" {
		return vm.callByName(cl.FunctionName, args)
	}
	if cl.ClassName != "" && cl.MethodName != "" {
		if cl.StaticOnly {
			class, ok := vm.Registry.GetClass(cl.ClassName)
			if !ok {
				return nil, &VMError{Type: ErrClassNotFound, Message: cl.ClassName}
			}
			fn, ok := findMethod(vm.Registry, class, cl.MethodName)
			if !ok {
				return nil, &VMError{Type: ErrMethodNotFound, Message: cl.ClassName + "::" + cl.MethodName}
			}
			return vm.Call(fn, args, nil, class.Name, class.Name)
		}
		return vm.callMethod(cl.BoundThis, cl.MethodName, args)
	}

	fn, ok := cl.Body.(*registry.Function)
	if !ok {
		return nil, &VMError{Type: ErrFunctionNotFound, Message: "malformed closure"}
	}
	frame := newCallFrame(fn, cl.BoundThis, "", "")
	for name, val := range cl.Bound {
		if slot, ok := fn.Locals[name]; ok {
			frame.Locals[paddedSlot(frame, slot)] = val
		}
	}
	if err := vm.bindParameters(frame, fn, args); err != nil {
		return nil, err
	}
	if fn.IsGenerator {
		return vm.startGenerator(fn, frame), nil
	}
	vm.calls.PushFrame(frame)
	defer vm.calls.PopFrame()
	ret, err := vm.executeFrame(frame, nil, nil)
	if err != nil {
		return nil, err
	}
	return vm.checkReturnType(fn, ret)
}

// instantiate implements `new Class(...)`: walks the parent chain
// top-down to initialize declared instance property defaults, then runs
// the most-derived declared constructor (if any) bound to the new object.
func (vm *VM) instantiate(className string, args []*values.Value) (*values.Value, error) {
	class, ok := vm.Registry.GetClass(className)
	if !ok {
		return nil, &VMError{Type: ErrClassNotFound, Message: className}
	}
	if class.IsAbstract {
		return nil, &VMError{Type: ErrAbstractClass, Message: className}
	}

	obj := values.NewObject(className)
	var chain []*registry.Class
	for c := class; c != nil; {
		chain = append(chain, c)
		if c.Parent == "" {
			break
		}
		next, ok := vm.Registry.GetClass(c.Parent)
		if !ok {
			break
		}
		c = next
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for name, prop := range chain[i].Properties {
			if prop.IsStatic {
				continue
			}
			if prop.DefaultValue != nil {
				obj.Properties[name] = copyOnAssign(prop.DefaultValue)
			} else {
				obj.Properties[name] = values.NewNull()
			}
			if prop.IsReadonly {
				obj.Readonly[name] = true
			}
		}
	}
	obj.Throwable = isThrowableClass(vm.Registry, className)

	objVal := values.NewObjectValue(obj)
	if ctor, ok := findMethod(vm.Registry, class, "__construct"); ok {
		if _, err := vm.Call(ctor, args, objVal, class.Name, class.Name); err != nil {
			return nil, err
		}
	}
	return objVal, nil
}

func isThrowableClass(reg *registry.Registry, className string) bool {
	return reg.IsInstanceOf(className, "throwable")
}

// fetchClassConstant resolves "Class::CONST", special-casing enum cases
// (compileEnumDecl stores their backing value under the synthetic
// "__case_"+name constant key specifically so this lookup can distinguish
// them from an ordinary class constant and rewrap as an EnumCase value).
func (vm *VM) fetchClassConstant(ref string) (*values.Value, error) {
	className, constName := splitClassRef(ref)
	class, ok := vm.Registry.GetClass(className)
	if !ok {
		return nil, &VMError{Type: ErrClassNotFound, Message: className}
	}
	if class.IsEnum {
		for _, caseName := range class.Cases {
			if caseName == constName {
				return enumCaseValue(class, caseName), nil
			}
		}
	}
	for c := class; c != nil; {
		if cst, ok := c.Constants[constName]; ok {
			return cst.Value, nil
		}
		if c.Parent == "" {
			break
		}
		c, _ = vm.Registry.GetClass(c.Parent)
	}
	return nil, &VMError{Type: ErrPropertyNotFound, Message: ref}
}

// enumCaseValue builds the runtime values.EnumCase for one of class's
// declared cases, pulling its backing value (if any) from the constant slot
// compileEnumDecl stashed it under.
func enumCaseValue(class *registry.Class, caseName string) *values.Value {
	var backingVal *values.Value
	if backing, ok := class.Constants["__case_"+caseName]; ok {
		backingVal = backing.Value
	}
	return values.NewEnumCaseValue(&values.EnumCase{EnumName: class.Name, Name: caseName, Backing: backingVal})
}

// callEnumPseudoMethod implements the three compiler-synthesized enum
// statics PHP provides without a user-written method body: cases(), and for
// backed enums, from()/tryFrom(). handled is false when methodName isn't one
// of these, so callStatic falls through to an ordinary user-defined method
// lookup (an enum may still declare its own instance methods).
func (vm *VM) callEnumPseudoMethod(class *registry.Class, methodName string, args []*values.Value) (result *values.Value, handled bool, err error) {
	switch methodName {
	case "cases":
		out := values.NewArray()
		for _, caseName := range class.Cases {
			out.Append(enumCaseValue(class, caseName))
		}
		return values.NewArrayValue(out), true, nil

	case "from", "tryFrom":
		if len(args) == 0 {
			return nil, true, &VMError{Type: ErrMethodNotFound, Message: class.Name + "::" + methodName}
		}
		needle := args[0]
		for _, caseName := range class.Cases {
			cv := enumCaseValue(class, caseName)
			backing := cv.AsEnumCase().Backing
			if backing != nil && backing.Equal(needle) {
				return cv, true, nil
			}
		}
		if methodName == "tryFrom" {
			return values.NewNull(), true, nil
		}
		msg := needle.ToString() + " is not a valid backing value for enum " + class.Name
		return nil, true, Throw(vm.newThrowable("ValueError", msg))
	}
	return nil, false, nil
}

func (vm *VM) fetchStaticProp(ref string) *values.Value {
	className, propName := splitClassRef(ref)
	for c, ok := vm.Registry.GetClass(className); ok; c, ok = vm.Registry.GetClass(c.Parent) {
		if p, ok := c.Properties[propName]; ok {
			if p.StaticValue == nil {
				p.StaticValue = values.NewNull()
			}
			return p.StaticValue
		}
		if c.Parent == "" {
			break
		}
	}
	return values.NewNull()
}

func (vm *VM) assignStaticProp(ref string, val *values.Value) {
	className, propName := splitClassRef(ref)
	for c, ok := vm.Registry.GetClass(className); ok; c, ok = vm.Registry.GetClass(c.Parent) {
		if p, ok := c.Properties[propName]; ok {
			p.StaticValue = val
			return
		}
		if c.Parent == "" {
			break
		}
	}
}

// buildIterState snapshots subject's elements for a foreach loop (spec.md
// §4.5's "foreach iterates a snapshot captured at loop entry"). Plain
// objects iterate all of their properties in Go map order, which is not the
// declaration order, and visibility is not checked; generators are drained
// eagerly (see drainGenerator's doc comment for why).
func buildIterState(subject *values.Value) *iterState {
	d := subject.Deref()
	switch {
	case d.IsArray():
		return &iterState{keys: d.AsArray().Keys(), values: d.AsArray().Values()}
	case d.IsGenerator():
		keys, vals, err := drainGenerator(d.AsGenerator())
		if err != nil {
			return &iterState{}
		}
		return &iterState{keys: keys, values: vals}
	case d.IsObject():
		obj := d.AsObject()
		var keys []values.ArrayKey
		var vals []*values.Value
		for name, v := range obj.Properties {
			keys = append(keys, values.StringKey(name))
			vals = append(vals, v)
		}
		return &iterState{keys: keys, values: vals}
	default:
		return &iterState{}
	}
}

// fiberStart implements OP_FIBER_START: wraps callable's body in a fiberState
// and runs it until its first suspend (or completion), returning the new
// Fiber handle.
func (vm *VM) fiberStart(callable *values.Value, args []*values.Value) (*values.Value, error) {
	d := callable.Deref()
	if !d.IsClosure() {
		return nil, &VMError{Type: ErrFunctionNotFound, Message: "Fiber body must be callable"}
	}
	cl := d.AsClosure()
	fn, ok := cl.Body.(*registry.Function)
	if !ok {
		return nil, &VMError{Type: ErrFunctionNotFound, Message: "malformed fiber body"}
	}
	frame := newCallFrame(fn, cl.BoundThis, "", "")
	for name, val := range cl.Bound {
		if slot, ok := fn.Locals[name]; ok {
			frame.Locals[paddedSlot(frame, slot)] = val
		}
	}
	for i, p := range fn.Parameters {
		if slot, ok := fn.Locals[p.Name]; ok && i < len(args) {
			frame.Locals[paddedSlot(frame, slot)] = args[i]
		}
	}

	fiberVal := vm.startFiber(fn, frame)
	fb := fiberVal.Deref().AsFiber()
	fs := fb.Suspended.(*fiberState)
	msg := fs.start(nil)
	if msg.err != nil {
		return nil, msg.err
	}
	fb.Started = true
	if msg.done {
		fb.Finished = true
		fb.ReturnVal = msg.ret
	}
	return fiberVal, nil
}

func (vm *VM) fiberResume(fiberVal, sendVal *values.Value) (*values.Value, error) {
	fb := fiberVal.Deref().AsFiber()
	fs, ok := fb.Suspended.(*fiberState)
	if !ok {
		return nil, &VMError{Type: ErrOpcodeNotImplemented, Message: "not a VM-backed fiber"}
	}
	msg := fs.resume(sendVal)
	if msg.err != nil {
		return nil, msg.err
	}
	if msg.done {
		fb.Finished = true
		fb.ReturnVal = msg.ret
		return msg.ret, nil
	}
	return msg.suspended, nil
}
