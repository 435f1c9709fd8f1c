package values

import "testing"

func TestToBoolFalsy(t *testing.T) {
	falsy := []*Value{
		NewNull(),
		NewBool(false),
		NewInt(0),
		NewFloat(0),
		NewString(""),
		NewString("0"),
		NewArrayValue(NewArray()),
	}
	for _, v := range falsy {
		if v.ToBool() {
			t.Errorf("expected %#v to be falsy", v)
		}
	}
}

func TestZeroDotZeroStringIsTruthy(t *testing.T) {
	if !NewString("0.0").ToBool() {
		t.Fatal(`"0.0" must be truthy`)
	}
}

func TestIntegerOverflowPromotesToFloatIsCallerResponsibility(t *testing.T) {
	// values itself does not implement arithmetic (that's vm's opcode
	// handlers); this just locks in the coercion building block they use.
	big := NewInt(1<<62 - 1)
	if big.ToFloat() <= 0 {
		t.Fatal("expected positive float coercion")
	}
}

func TestArrayAppendAfterNegativeOneKeyUsesZero(t *testing.T) {
	a := NewArray()
	a.Set(IntKey(-1), NewInt(10))
	k := a.Append(NewInt(20))
	if !k.IsInt || k.IntKey != 0 {
		t.Fatalf("expected append after key -1 to use key 0, got %v", k)
	}
}

func TestArrayPreservesInsertionOrder(t *testing.T) {
	a := NewArray()
	a.Set(StringKey("b"), NewInt(1))
	a.Set(StringKey("a"), NewInt(2))
	a.Set(StringKey("c"), NewInt(3))
	want := []string{"b", "a", "c"}
	for i, k := range a.Keys() {
		if k.StrKey != want[i] {
			t.Fatalf("position %d: got %q want %q", i, k.StrKey, want[i])
		}
	}
}

func TestNumericStringKeyNormalizesToInt(t *testing.T) {
	a := NewArray()
	a.Set(NormalizeKey(NewString("42")), NewInt(1))
	if !a.Has(IntKey(42)) {
		t.Fatal(`expected "42" to normalize to integer key 42`)
	}
	a.Set(NormalizeKey(NewString("042")), NewInt(2))
	if !a.Has(StringKey("042")) {
		t.Fatal(`expected "042" (leading zero) to remain a string key`)
	}
}

func TestIdenticalRejectsNaN(t *testing.T) {
	nan := NewFloat(nan())
	if nan.Identical(nan) {
		t.Fatal("NaN must not be identical to itself")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestSpaceshipReturnsSignedUnit(t *testing.T) {
	if NewInt(1).Compare(NewInt(2)) != -1 {
		t.Fatal("1 <=> 2 should be -1")
	}
	if NewInt(2).Compare(NewInt(1)) != 1 {
		t.Fatal("2 <=> 1 should be 1")
	}
	if NewInt(1).Compare(NewInt(1)) != 0 {
		t.Fatal("1 <=> 1 should be 0")
	}
}

func TestCloneResetsReadonlyInitializedSet(t *testing.T) {
	o := NewObject("Point")
	o.Readonly["x"] = true
	o.Properties["x"] = NewInt(5)
	o.InitReadonly("x")

	c := o.Clone()
	if c.Init["x"] {
		t.Fatal("clone must reset the readonly-initialized set")
	}
	c.Properties["x"] = NewInt(9)
	if o.Properties["x"].ToInt() != 5 {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestCloneWithOverridesAndMarksReadonlyInitialized(t *testing.T) {
	o := NewObject("Point")
	o.Readonly["x"] = true
	o.Properties["x"] = NewInt(5)
	o.InitReadonly("x")

	c := o.CloneWith(map[string]*Value{"x": NewInt(7)})
	if c.Properties["x"].ToInt() != 7 {
		t.Fatal("expected override to apply")
	}
	if !c.Init["x"] {
		t.Fatal("clone with override of a readonly property should mark it initialized")
	}
}
