package registry

import "testing"

func TestRegisterFunctionRejectsRedeclaration(t *testing.T) {
	r := New()
	if err := r.RegisterFunction(&Function{Name: "greet"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := r.RegisterFunction(&Function{Name: "GREET"}); err == nil {
		t.Fatal("expected redeclaration error for case-insensitive duplicate")
	}
}

func TestRegisterFunctionAllowsBuiltinReplacement(t *testing.T) {
	r := New()
	if err := r.RegisterFunction(&Function{Name: "strtoupper", IsBuiltin: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RegisterFunction(&Function{Name: "strtoupper", IsBuiltin: true}); err != nil {
		t.Fatalf("re-seeding a builtin table should be allowed: %v", err)
	}
}

func TestGetFunctionCaseInsensitive(t *testing.T) {
	r := New()
	r.RegisterFunction(&Function{Name: "strtoupper"})
	if _, ok := r.GetFunction("STRTOUPPER"); !ok {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
}

func TestIsInstanceOfWalksParentChain(t *testing.T) {
	r := New()
	r.RegisterClass(&Class{Name: "Exception"})
	r.RegisterClass(&Class{Name: "RuntimeException", Parent: "Exception"})
	r.RegisterClass(&Class{Name: "OutOfRangeException", Parent: "RuntimeException"})

	if !r.IsInstanceOf("OutOfRangeException", "Exception") {
		t.Fatal("expected transitive parent match")
	}
	if r.IsInstanceOf("OutOfRangeException", "TypeError") {
		t.Fatal("unrelated class must not match")
	}
}

func TestIsInstanceOfWalksInterfaces(t *testing.T) {
	r := New()
	r.RegisterInterface(&Interface{Name: "Stringable"})
	r.RegisterInterface(&Interface{Name: "JsonSerializable", Extends: []string{"Stringable"}})
	r.RegisterClass(&Class{Name: "Money", Interfaces: []string{"JsonSerializable"}})

	if !r.IsInstanceOf("Money", "Stringable") {
		t.Fatal("expected transitive interface match")
	}
}

func TestIsInstanceOfThrowableCoversBuiltinHierarchy(t *testing.T) {
	r := New()
	r.RegisterClass(&Class{Name: "Exception"})
	r.RegisterClass(&Class{Name: "InvalidArgumentException", Parent: "Exception"})

	if !r.IsInstanceOf("InvalidArgumentException", "Throwable") {
		t.Fatal("expected Exception subclasses to satisfy Throwable")
	}
}

func TestClassAttributesRoundTripsNameAndArguments(t *testing.T) {
	r := New()
	r.RegisterClass(&Class{
		Name: "Controller",
		Attributes: []*Attribute{
			{Name: "Route", Arguments: []AttributeArg{{Name: "path", Value: nil}}},
		},
	})

	attrs, ok := r.ClassAttributes("controller")
	if !ok {
		t.Fatal("expected case-insensitive class lookup to succeed")
	}
	if len(attrs) != 1 || attrs[0].Name != "Route" || len(attrs[0].Arguments) != 1 || attrs[0].Arguments[0].Name != "path" {
		t.Fatalf("unexpected attribute descriptor: %+v", attrs)
	}
}

func TestMethodAndParameterAttributes(t *testing.T) {
	r := New()
	r.RegisterClass(&Class{
		Name: "Base",
		Methods: map[string]*Function{
			"handle": {
				Name:       "handle",
				Attributes: []*Attribute{{Name: "Override"}},
				Parameters: []*Parameter{
					{Name: "req", Attributes: []*Attribute{{Name: "Inject"}}},
				},
			},
		},
	})

	methodAttrs, ok := r.MethodAttributes("Base", "handle")
	if !ok || len(methodAttrs) != 1 || methodAttrs[0].Name != "Override" {
		t.Fatalf("unexpected method attributes: %+v, ok=%v", methodAttrs, ok)
	}

	paramAttrs, ok := r.ParameterAttributes("Base", "handle", 0)
	if !ok || len(paramAttrs) != 1 || paramAttrs[0].Name != "Inject" {
		t.Fatalf("unexpected parameter attributes: %+v, ok=%v", paramAttrs, ok)
	}

	if _, ok := r.ParameterAttributes("Base", "handle", 5); ok {
		t.Fatal("expected out-of-range parameter index to report not found")
	}
}

func TestRegisterConstantRejectsDuplicate(t *testing.T) {
	r := New()
	c := &Constant{Name: "PHP_EOL"}
	if err := r.RegisterConstant(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RegisterConstant(c); err == nil {
		t.Fatal("expected redeclaration error")
	}
}
