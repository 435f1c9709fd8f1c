package registry

import "github.com/leocavalcante/vhp/values"

// Class models a compiled class, trait-composed and interface-checked at
// declaration time so the VM's `new`/method-dispatch path never has to walk
// `use` lists at call time.
type Class struct {
	Name       string
	Parent     string
	Interfaces []string
	Traits     []string

	Properties map[string]*Property
	Methods    map[string]*Function
	Constants  map[string]*ClassConstant

	IsAbstract bool
	IsFinal    bool
	IsReadonly bool // class-level readonly (PHP 8.2): every property implicitly readonly

	// IsEnum and its Enum fields are set when this Class backs an enum
	// declaration (spec.md §3 models enum cases as EnumCase values, but the
	// class table still carries the enum's methods/constants/interfaces).
	IsEnum      bool
	BackingType string // "int", "string", or "" for a pure enum
	Cases       []string

	Attributes []*Attribute
}

// Property represents a declared class property.
type Property struct {
	Name         string
	Visibility   string // public, private, protected
	IsStatic     bool
	IsReadonly   bool
	Type         string
	DefaultValue *values.Value
	Attributes   []*Attribute

	// StaticValue holds the current value of a static property; nil for
	// instance properties, which live in each Object's Properties map
	// instead.
	StaticValue *values.Value
}

// ClassConstant represents a class or interface constant.
type ClassConstant struct {
	Name       string
	Value      *values.Value
	Visibility string
	IsFinal    bool
	Type       string
}

// Interface models an interface declaration.
type Interface struct {
	Name      string
	Methods   map[string]*InterfaceMethod
	Constants map[string]*ClassConstant
	Extends   []string
}

// InterfaceMethod represents a method signature an implementor must satisfy.
type InterfaceMethod struct {
	Name       string
	Visibility string
	Parameters []*Parameter
	ReturnType string
}

// Trait models a trait definition. insteadof/as conflict resolution is
// applied by the compiler when composing a Trait's methods into a Class, so
// by the time a Trait reaches the registry its Methods are already the
// trait's own, unmodified set.
type Trait struct {
	Name       string
	Properties map[string]*Property
	Methods    map[string]*Function
}
