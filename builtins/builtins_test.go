package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

func call(t *testing.T, reg *registry.Registry, name string, args ...*values.Value) *values.Value {
	t.Helper()
	fn, ok := reg.GetFunction(name)
	require.Truef(t, ok, "builtin %s not registered", name)
	result, err := fn.Builtin(nil, args)
	require.NoError(t, err)
	return result
}

func newRegistry() *registry.Registry {
	reg := registry.New()
	Register(reg)
	return reg
}

func TestRegisterSeedsEveryBuiltin(t *testing.T) {
	reg := newRegistry()
	for _, fn := range table {
		got, ok := reg.GetFunction(fn.Name)
		assert.Truef(t, ok, "expected %s to be registered", fn.Name)
		assert.True(t, got.IsBuiltin)
	}
}

func TestStrtoupperPipeTarget(t *testing.T) {
	reg := newRegistry()
	result := call(t, reg, "strtoupper", values.NewString("hi"))
	assert.Equal(t, "HI", result.ToString())
}

func TestStrlen(t *testing.T) {
	reg := newRegistry()
	assert.Equal(t, int64(5), call(t, reg, "strlen", values.NewString("hello")).ToInt())
}

func TestCountOnArrayAndScalar(t *testing.T) {
	reg := newRegistry()
	arr := values.NewArray()
	arr.Append(values.NewInt(1))
	arr.Append(values.NewInt(2))
	assert.Equal(t, int64(2), call(t, reg, "count", values.NewArrayValue(arr)).ToInt())
	assert.Equal(t, int64(1), call(t, reg, "count", values.NewInt(42)).ToInt())
}

func TestArrayKeysPreservesInsertionOrder(t *testing.T) {
	reg := newRegistry()
	arr := values.NewArray()
	arr.Set(values.StringKey("b"), values.NewInt(1))
	arr.Set(values.StringKey("a"), values.NewInt(2))

	keys := call(t, reg, "array_keys", values.NewArrayValue(arr))
	require.True(t, keys.IsArray())
	got := keys.AsArray().Values()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ToString())
	assert.Equal(t, "a", got[1].ToString())
}

func TestArrayValues(t *testing.T) {
	reg := newRegistry()
	arr := values.NewArray()
	arr.Set(values.StringKey("x"), values.NewString("first"))
	arr.Set(values.StringKey("y"), values.NewString("second"))

	got := call(t, reg, "array_values", values.NewArrayValue(arr))
	vals := got.AsArray().Values()
	require.Len(t, vals, 2)
	assert.Equal(t, "first", vals[0].ToString())
	assert.Equal(t, "second", vals[1].ToString())
}

func TestInArrayLooseVsStrict(t *testing.T) {
	reg := newRegistry()
	arr := values.NewArray()
	arr.Append(values.NewString("1"))

	assert.True(t, call(t, reg, "in_array", values.NewInt(1), values.NewArrayValue(arr)).ToBool())
	assert.False(t, call(t, reg, "in_array", values.NewInt(1), values.NewArrayValue(arr), values.NewBool(true)).ToBool())
}

func TestImplode(t *testing.T) {
	reg := newRegistry()
	arr := values.NewArray()
	arr.Append(values.NewString("a"))
	arr.Append(values.NewString("b"))
	arr.Append(values.NewString("c"))

	got := call(t, reg, "implode", values.NewString("-"), values.NewArrayValue(arr))
	assert.Equal(t, "a-b-c", got.ToString())
}

func TestUUIDCreateProducesDistinctValues(t *testing.T) {
	reg := newRegistry()
	a := call(t, reg, "uuid_create").ToString()
	b := call(t, reg, "uuid_create").ToString()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestHumanFilesize(t *testing.T) {
	reg := newRegistry()
	got := call(t, reg, "human_filesize", values.NewInt(1024))
	assert.Equal(t, "1.0 kB", got.ToString())
}

func TestHumanNumber(t *testing.T) {
	reg := newRegistry()
	got := call(t, reg, "human_number", values.NewInt(1234567))
	assert.Equal(t, "1,234,567", got.ToString())
}
