// Package builtins is a small native-function table implementing
// registry.BuiltinImplementation. spec.md §1 scopes the builtin-function
// library out as an external collaborator referenced only by interface;
// this package exists to exercise that interface end to end rather than to
// reimplement PHP's standard library.
package builtins

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// Register seeds reg with every builtin this package implements. Calling it
// more than once against the same registry is safe: RegisterFunction treats
// an existing IsBuiltin entry as replaceable rather than a redeclaration.
func Register(reg *registry.Registry) {
	for _, fn := range table {
		_ = reg.RegisterFunction(fn)
	}
}

func builtin(name string, impl registry.BuiltinImplementation) *registry.Function {
	return &registry.Function{Name: name, IsBuiltin: true, Builtin: impl}
}

var table = []*registry.Function{
	builtin("strlen", biStrlen),
	builtin("strtoupper", biStrtoupper),
	builtin("strtolower", biStrtolower),
	builtin("trim", biTrim),
	builtin("str_repeat", biStrRepeat),
	builtin("count", biCount),
	builtin("array_keys", biArrayKeys),
	builtin("array_values", biArrayValues),
	builtin("array_reverse", biArrayReverse),
	builtin("in_array", biInArray),
	builtin("implode", biImplode),
	builtin("uuid_create", biUUIDCreate),
	builtin("human_filesize", biHumanFilesize),
	builtin("human_number", biHumanNumber),
	builtin("ob_start", biOBStart),
	builtin("ob_get_contents", biOBGetContents),
	builtin("ob_get_clean", biOBGetClean),
	builtin("ob_clean", biOBClean),
	builtin("ob_end_clean", biOBEndClean),
	builtin("ob_flush", biOBFlush),
	builtin("ob_end_flush", biOBEndFlush),
	builtin("ob_get_level", biOBGetLevel),
}

func arg(args []*values.Value, i int) *values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.NewNull()
}

func biStrlen(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewInt(int64(len(arg(args, 0).ToString()))), nil
}

func biStrtoupper(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewString(strings.ToUpper(arg(args, 0).ToString())), nil
}

func biStrtolower(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewString(strings.ToLower(arg(args, 0).ToString())), nil
}

func biTrim(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	s := arg(args, 0).ToString()
	if len(args) > 1 {
		return values.NewString(strings.Trim(s, arg(args, 1).ToString())), nil
	}
	return values.NewString(strings.TrimSpace(s)), nil
}

func biStrRepeat(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	s := arg(args, 0).ToString()
	n := arg(args, 1).ToInt()
	if n <= 0 {
		return values.NewString(""), nil
	}
	return values.NewString(strings.Repeat(s, int(n))), nil
}

func biCount(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	v := arg(args, 0).Deref()
	if !v.IsArray() {
		return values.NewInt(1), nil
	}
	return values.NewInt(int64(v.AsArray().Len())), nil
}

func biArrayKeys(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	v := arg(args, 0).Deref()
	if !v.IsArray() {
		return values.NewArrayValue(values.NewArray()), nil
	}
	out := values.NewArray()
	for _, k := range v.AsArray().Keys() {
		out.Append(k.ToValue())
	}
	return values.NewArrayValue(out), nil
}

func biArrayValues(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	v := arg(args, 0).Deref()
	if !v.IsArray() {
		return values.NewArrayValue(values.NewArray()), nil
	}
	out := values.NewArray()
	for _, val := range v.AsArray().Values() {
		out.Append(val)
	}
	return values.NewArrayValue(out), nil
}

func biArrayReverse(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	v := arg(args, 0).Deref()
	if !v.IsArray() {
		return values.NewArrayValue(values.NewArray()), nil
	}
	return values.NewArrayValue(v.AsArray().Reverse()), nil
}

func biInArray(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	needle := arg(args, 0)
	haystack := arg(args, 1).Deref()
	if !haystack.IsArray() {
		return values.NewBool(false), nil
	}
	strict := len(args) > 2 && arg(args, 2).ToBool()
	found := false
	haystack.AsArray().Each(func(_ values.ArrayKey, v *values.Value) bool {
		if strict && needle.Identical(v) || !strict && needle.Equal(v) {
			found = true
			return false
		}
		return true
	})
	return values.NewBool(found), nil
}

func biImplode(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	sep := ""
	arr := arg(args, 0).Deref()
	if len(args) > 1 {
		sep = arg(args, 0).ToString()
		arr = arg(args, 1).Deref()
	}
	if !arr.IsArray() {
		return values.NewString(""), nil
	}
	parts := make([]string, 0, arr.AsArray().Len())
	for _, v := range arr.AsArray().Values() {
		parts = append(parts, v.ToString())
	}
	return values.NewString(strings.Join(parts, sep)), nil
}

// uuid_create() gives builtin-boundary code a call site for google/uuid —
// PHP's ext-uuid exposes the same v4-random default.
func biUUIDCreate(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewString(uuid.New().String()), nil
}

// human_filesize(bytes) renders a byte count the way PHP userland commonly
// formats upload/download sizes, via dustin/go-humanize.
func biHumanFilesize(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewString(humanize.Bytes(uint64(arg(args, 0).ToInt()))), nil
}

// human_number(n) renders a count with comma thousands separators
// (humanize.Comma), e.g. "1,234,567".
func biHumanNumber(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	v := arg(args, 0).Deref()
	if v.IsFloat() {
		return values.NewString(humanize.CommafWithDigits(v.ToFloat(), 2)), nil
	}
	return values.NewString(humanize.Comma(v.ToInt())), nil
}

func biOBStart(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	handler := ""
	if len(args) > 0 {
		handler = arg(args, 0).ToString()
	}
	chunkSize := int(arg(args, 1).ToInt())
	flags := int(arg(args, 2).ToInt())
	return values.NewBool(ctx.OBStart(handler, chunkSize, flags)), nil
}

func biOBGetContents(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	contents, ok := ctx.OBGetContents()
	if !ok {
		return values.NewBool(false), nil
	}
	return values.NewString(contents), nil
}

func biOBGetClean(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	contents, ok := ctx.OBGetClean()
	if !ok {
		return values.NewBool(false), nil
	}
	return values.NewString(contents), nil
}

func biOBClean(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewBool(ctx.OBClean()), nil
}

func biOBEndClean(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewBool(ctx.OBEndClean()), nil
}

func biOBFlush(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewBool(ctx.OBFlush()), nil
}

func biOBEndFlush(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewBool(ctx.OBEndFlush()), nil
}

func biOBGetLevel(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
	return values.NewInt(int64(ctx.OBGetLevel())), nil
}
