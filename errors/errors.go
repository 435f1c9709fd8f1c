// Package errors classifies every diagnostic the compiler and VM can raise
// into the four kinds the host needs to distinguish: compile-time failures
// that prevent any execution, runtime type violations, logic errors, and
// fatal conditions that terminate the run.
package errors

import "fmt"

// Kind is one of the four error categories.
type Kind int

const (
	// Compile marks parse/compile-time failures: malformed declarations,
	// missing abstract/interface method implementations, duplicate enum
	// case values, a variadic parameter not last. No script executes.
	Compile Kind = iota
	// RuntimeType marks type-hint violations, invalid coercion under
	// strict_types, a void function returning a value, or instantiating
	// an abstract class. Catchable as a TypeError-class exception.
	RuntimeType
	// Logic marks undefined function/method/class/property, division by
	// zero, a readonly-property re-init, or an unhandled match. Catchable
	// as an exception.
	Logic
	// Fatal marks stack/call-depth overflow or an unhandled exception at
	// the top level. Terminates the execution.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Compile:
		return "compile error"
	case RuntimeType:
		return "runtime type error"
	case Logic:
		return "logic error"
	case Fatal:
		return "fatal error"
	default:
		return "error"
	}
}

// Error is a single diagnostic, optionally tied to a source location once a
// real parser supplies one (Line/Column are zero when unknown, which is the
// common case for errors raised purely during execution).
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Column  int

	// ClassName is the PHP exception class a Logic/RuntimeType error should
	// surface as when it crosses into catchable user code (e.g.
	// "DivisionByZeroError", "TypeError", "UnhandledMatchError").
	ClassName string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s on line %d", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Compilef(format string, args ...interface{}) *Error {
	return &Error{Kind: Compile, Message: fmt.Sprintf(format, args...)}
}

func TypeErrorf(class, format string, args ...interface{}) *Error {
	return &Error{Kind: RuntimeType, ClassName: class, Message: fmt.Sprintf(format, args...)}
}

func Logicf(class, format string, args ...interface{}) *Error {
	return &Error{Kind: Logic, ClassName: class, Message: fmt.Sprintf(format, args...)}
}

func Fatalf(format string, args ...interface{}) *Error {
	return &Error{Kind: Fatal, Message: fmt.Sprintf(format, args...)}
}

// List collects diagnostics accumulated during a single compile pass, the
// way the compiler gathers every malformed declaration before giving up
// rather than stopping at the first one.
type List struct {
	items []*Error
}

func (l *List) Add(err *Error) { l.items = append(l.items, err) }

func (l *List) HasErrors() bool { return len(l.items) > 0 }

func (l *List) Errors() []*Error { return l.items }

func (l *List) Error() string {
	if len(l.items) == 0 {
		return ""
	}
	if len(l.items) == 1 {
		return l.items[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(l.items))
	for _, e := range l.items {
		msg += "\n  " + e.Error()
	}
	return msg
}
