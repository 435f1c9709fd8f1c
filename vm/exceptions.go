package vm

import (
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// findCatch searches fn's try table, starting at startIdx, for a region
// covering ip whose CatchTypes match err's thrown value. Nested try blocks
// finish compiling (and so get appended to TryTable) before their enclosing
// try does, so a forward scan naturally visits the innermost enclosing
// region before any ancestor whose wider [Start,End) also happens to contain
// ip. A Go-level (non-PHPException) error is never caught by user
// try/catch, matching the teacher's treatment of internal engine faults as
// uncatchable.
//
// matched distinguishes two cases when ok is true: matched=true means a
// catch clause actually claimed the exception (it is fully handled once its
// body runs); matched=false means no catch in this region matched but it
// has a finally, which still must run on the way out — the exception is
// still pending and must be re-raised, searching from index+1 with the same
// ip, once the finally body reaches its end (region.FinallyEnd).
func findCatch(fn *registry.Function, ip int, err error, reg *registry.Registry, startIdx int) (target int, index int, matched bool, ok bool) {
	exc, isPHP := err.(*PHPException)
	if !isPHP {
		return 0, 0, false, false
	}

	for i := startIdx; i < len(fn.TryTable); i++ {
		region := fn.TryTable[i]
		if ip < region.Start || ip >= region.End {
			continue
		}
		for ci, catchType := range region.CatchTypes {
			if catchMatches(exc.Value, catchType, reg) {
				return region.CatchTargets[ci], i, true, true
			}
		}
		if region.HasFinally {
			return region.FinallyTarget, i, false, true
		}
	}
	return 0, 0, false, false
}

func catchMatches(thrown *values.Value, catchType string, reg *registry.Registry) bool {
	d := thrown.Deref()
	if !d.IsObject() {
		return false
	}
	return reg.IsInstanceOf(d.AsObject().ClassName, catchType)
}

// exceptionValue unwraps a PHPException's carried value for binding into a
// catch clause's variable.
func exceptionValue(err error) *values.Value {
	if exc, ok := err.(*PHPException); ok {
		return exc.Value
	}
	return values.NewNull()
}

// newThrowable builds a throwable Object of the given builtin exception
// class, for VM-raised errors (unhandled match, type errors) that PHP code
// can catch like any user-thrown exception (spec.md §7).
func (vm *VM) newThrowable(className, message string) *values.Value {
	obj := values.NewObject(className)
	obj.Throwable = true
	obj.Message = message
	obj.Properties["message"] = values.NewString(message)
	obj.Properties["code"] = values.NewInt(0)
	return values.NewObjectValue(obj)
}
