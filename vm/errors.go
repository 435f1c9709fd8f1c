package vm

import (
	"errors"
	"fmt"

	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/values"
)

// Pre-defined VM error sentinels for consistent error classification.
var (
	ErrConstantOutOfRange = errors.New("constant index out of range")
	ErrOpcodeNotImplemented = errors.New("opcode not implemented")

	ErrDivisionByZero = errors.New("division by zero")
	ErrModuloByZero   = errors.New("modulo by zero")

	ErrVariableNotFound = errors.New("variable not found")
	ErrGlobalNotFound   = errors.New("global variable not found")

	ErrClassNotFound    = errors.New("class not found")
	ErrMethodNotFound   = errors.New("method not found")
	ErrPropertyNotFound = errors.New("undefined property")
	ErrAbstractClass    = errors.New("cannot instantiate an abstract class")

	ErrFunctionNotFound = errors.New("function not found")
	ErrCallStackEmpty   = errors.New("call stack is empty")

	ErrStackOverflow = errors.New("stack overflow")
	ErrCallDepth     = errors.New("maximum function nesting level reached")

	ErrReadonlyReinit = errors.New("cannot modify readonly property after initialization")
	ErrUnhandledMatch = errors.New("unhandled match case")
)

// VMError wraps a sentinel with the instruction/frame context it failed in.
type VMError struct {
	Type    error
	Message string
	Opcode  opcodes.Opcode
	IP      int
}

func (e *VMError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (at OP_%s:%d)", e.Type.Error(), e.Message, e.Opcode, e.IP)
	}
	return fmt.Sprintf("%s (at OP_%s:%d)", e.Type.Error(), e.Opcode, e.IP)
}

func (e *VMError) Unwrap() error { return e.Type }

// PHPException carries a thrown values.Value up through Go's error-return
// path (spec.md §4.4 exception unwinding is modeled as a distinguished Go
// error so `throw`/try-table handling composes with ordinary Go control
// flow in the dispatch loop).
type PHPException struct {
	Value *values.Value
}

func (e *PHPException) Error() string {
	obj := e.Value.Deref()
	if obj.IsObject() {
		return fmt.Sprintf("uncaught %s: %s", obj.AsObject().ClassName, obj.AsObject().Message)
	}
	return "uncaught exception: " + obj.ToString()
}

// Throw wraps val as a *PHPException for returning up the call chain.
func Throw(val *values.Value) error { return &PHPException{Value: val} }
