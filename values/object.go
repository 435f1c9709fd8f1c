package values

import "sync/atomic"

var nextObjectID int64

// Object is the payload of a TypeObject Value (spec.md §3 ObjectInstance).
// Objects have reference semantics: every Value wrapping the same *Object
// shares mutations (spec.md §3 "Ownership & identity").
type Object struct {
	id int64

	ClassName  string
	Properties map[string]*Value

	// Readonly tracks which property names were declared readonly; Init
	// tracks which of those have already been assigned once. Writing a
	// property in Init a second time is a logic error (spec.md §7).
	Readonly map[string]bool
	Init     map[string]bool

	// Throwable marks instances of Exception/Error and its subclasses, so
	// the VM can validate `throw` operands and catch-clause matching
	// without a registry round trip for the common case.
	Throwable bool
	Message   string
	Code      int64
	Trace     []TraceFrame

	Destructed bool
}

// TraceFrame is one entry of an exception's captured call trace.
type TraceFrame struct {
	Function string
	Class    string
	File     string
	Line     int
}

func NewObject(className string) *Object {
	return &Object{
		id:         atomic.AddInt64(&nextObjectID, 1),
		ClassName:  className,
		Properties: make(map[string]*Value),
		Readonly:   make(map[string]bool),
		Init:       make(map[string]bool),
	}
}

// ID returns a process-unique handle identity, used by === on objects and
// by spl_object_id-style builtins.
func (o *Object) ID() int64 { return o.id }

// Clone produces a fresh instance with shallow-copied top-level properties
// and a reset readonly-initialized set (spec.md §3: "clone produces a fresh
// instance... and a reset 'initialized readonly' set").
func (o *Object) Clone() *Object {
	out := &Object{
		id:         atomic.AddInt64(&nextObjectID, 1),
		ClassName:  o.ClassName,
		Properties: make(map[string]*Value, len(o.Properties)),
		Readonly:   make(map[string]bool, len(o.Readonly)),
		Init:       make(map[string]bool),
		Throwable:  o.Throwable,
		Message:    o.Message,
		Code:       o.Code,
	}
	for k, v := range o.Properties {
		out.Properties[k] = v
	}
	for k := range o.Readonly {
		out.Readonly[k] = true
	}
	return out
}

// CloneWith applies property overrides on top of Clone(), for PHP 8.4's
// `clone $o with { ... }` (spec.md §8 scenario 3). Overridden readonly
// properties are marked initialized on the clone, since `with` is one of
// the two legal readonly-initialization sites (constructor, `clone with`).
func (o *Object) CloneWith(overrides map[string]*Value) *Object {
	out := o.Clone()
	for name, val := range overrides {
		out.Properties[name] = val
		if out.Readonly[name] {
			out.Init[name] = true
		}
	}
	return out
}

// InitReadonly marks a readonly property as initialized, returning false if
// it was already initialized (the caller should raise a logic error on
// false, per spec.md §7).
func (o *Object) InitReadonly(name string) bool {
	if o.Init[name] {
		return false
	}
	o.Init[name] = true
	return true
}

// Closure is the payload of a TypeClosure Value: a parameter list plus
// captured bindings plus a reference to the function body (spec.md §3).
// FunctionName/ClassName/StaticOnly distinguish the four body shapes the
// spec lists (bytecode closure, named function, instance method, static
// method) for first-class-callable values like `strtoupper(...)`.
type Closure struct {
	FunctionName string // set when the body is "a function name"
	ClassName    string // set when the body is an instance/static method
	MethodName   string
	StaticOnly   bool // true => the body is a static method reference
	BoundThis    *Value

	// Bound holds the captured variables: by value for arrow functions (the
	// whole enclosing scope at creation time) or by the explicit `use`
	// list for anonymous functions (also by value; the compiler rejects
	// by-reference `use (&$x)` captures).
	Bound map[string]*Value

	// Body, when non-nil, is the *registry.Function (opaque here to avoid
	// an import cycle) this closure invokes for the bytecode-body case.
	Body interface{}
}

func NewClosure() *Closure {
	return &Closure{Bound: make(map[string]*Value)}
}

// EnumCase is the payload of a TypeEnumCase Value (spec.md §3).
type EnumCase struct {
	EnumName string
	Name     string
	// Backing holds the case's backing value for backed enums (int or
	// string Value), or nil for pure enum cases.
	Backing *Value
}

// Generator is the handle payload of a TypeGenerator Value. The suspended
// execution state (frame + operand-stack slice) lives in the vm package,
// referenced here only as an opaque interface{} to avoid an import cycle
// (values is imported by vm, not the reverse).
type Generator struct {
	Finished bool
	Started  bool
	Current  *Value
	CurrentK *Value
	// Suspended holds the vm package's *generatorState for this handle.
	Suspended interface{}
}

func NewGenerator() *Generator {
	return &Generator{Current: NewNull(), CurrentK: NewNull()}
}

// Fiber is the handle payload of a TypeFiber Value, symmetric to Generator
// (spec.md §5: "Fibers are symmetric: start/resume/suspend cooperatively
// transfer control between two frames").
type Fiber struct {
	Started   bool
	Running   bool
	Finished  bool
	Suspended interface{}
	ReturnVal *Value
}

func NewFiber() *Fiber {
	return &Fiber{ReturnVal: NewNull()}
}
