package registry

import (
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/values"
)

// Function describes a PHP function, whether user-defined (bytecode body) or
// builtin (Go implementation). Both kinds share one table so call sites
// don't need to know which they dispatched to.
type Function struct {
	Name       string
	Parameters []*Parameter
	ReturnType string

	Instructions []*opcodes.Instruction
	Constants    []*values.Value

	// TryTable lists the exception-handling regions active over ranges of
	// Instructions, searched innermost-first when a throw unwinds.
	TryTable []TryRegion

	// Locals maps a named variable to its call-frame slot; MaxLocalSlot is
	// one past the highest slot any local, temporary, or compiled-variable
	// allocation uses, sizing the frame's slot array at call time.
	Locals       map[string]uint32
	MaxLocalSlot uint32

	IsVariadic         bool
	IsGenerator        bool
	IsAnonymous        bool
	IsBuiltin          bool
	IsAbstract         bool
	IsFinal            bool
	ReturnsByReference bool

	Builtin BuiltinImplementation

	Attributes []*Attribute
}

// Clone returns a shallow copy of the function metadata. Instructions and
// constants are shared, mirroring PHP's copy-on-write op arrays.
func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}
	clone := *f
	return &clone
}

// TryRegion marks [Start, End) of a function's Instructions as guarded by a
// catch/finally, spec.md §5's try table for exception unwinding. CatchTypes
// lists class names tested in order; an empty slice with FinallyTarget set
// models a bare `finally` with no catch clauses.
type TryRegion struct {
	Start, End    int
	CatchTypes    []string
	CatchTargets  []int
	FinallyTarget int
	FinallyEnd    int // one past the last finally instruction; unused when !HasFinally
	HasFinally    bool
	CaughtVarSlot uint32
}

// Parameter captures metadata about a compiled parameter.
type Parameter struct {
	Name         string
	Type         string
	IsReference  bool
	IsVariadic   bool
	HasDefault   bool
	DefaultValue *values.Value
	Attributes   []*Attribute
}

// Attribute represents a compiled PHP attribute, e.g. #[Override]. Arguments
// preserves declaration order; a named argument carries its Name, a
// positional one leaves it empty, matching spec.md §4.7's
// `{name, arguments[{name: optional, value}]}` descriptor shape.
type Attribute struct {
	Name      string
	Arguments []AttributeArg
}

// AttributeArg is one argument of an attribute instantiation.
type AttributeArg struct {
	Name  string
	Value *values.Value
}

// BuiltinImplementation is the signature every native builtin function must
// satisfy to be callable from compiled bytecode.
type BuiltinImplementation func(ctx BuiltinCallContext, args []*values.Value) (*values.Value, error)

// BuiltinCallContext exposes the minimal VM services builtins need, without
// creating an import cycle back to the vm package.
type BuiltinCallContext interface {
	WriteOutput(val *values.Value) error
	GetGlobal(name string) (*values.Value, bool)
	SetGlobal(name string, val *values.Value)
	SymbolRegistry() *Registry
	Halt(exitCode int, message string) error

	// OB* expose the ob_start()/ob_get_clean() family over the VM's nested
	// output-buffer stack (spec.md's ambient output layer).
	OBStart(handler string, chunkSize int, flags int) bool
	OBGetContents() (string, bool)
	OBGetClean() (string, bool)
	OBClean() bool
	OBEndClean() bool
	OBFlush() bool
	OBEndFlush() bool
	OBGetLevel() int
}
