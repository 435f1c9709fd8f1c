package compiler

import (
	"strings"

	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/registry"
)

// validateClass runs the spec.md §7.1 compile-time checks that depend on
// the rest of the class hierarchy already being registered: extending a
// final class, overriding a final method, an #[Override] attribute on a
// method that overrides nothing, and a concrete class left without every
// method its interfaces declare. Registration-order is declaration order
// (ast.Builder-constructed programs never forward-reference a class before
// it is declared), so every ancestor cls names is already in the registry
// by the time this runs.
func (c *Compiler) validateClass(d *ast.ClassDecl, cls *registry.Class) {
	if d.Parent != "" {
		if parent, ok := c.reg.GetClass(d.Parent); ok {
			if parent.IsFinal {
				c.errs.Add(errCompilef("class %s cannot extend final class %s", d.Name, d.Parent))
			}
			for name := range cls.Methods {
				if pfn, ok := findInheritedMethod(c.reg, d.Parent, name); ok && pfn.IsFinal {
					c.errs.Add(errCompilef("class %s cannot override final method %s::%s", d.Name, d.Parent, name))
				}
			}
		}
	}

	for name, fn := range cls.Methods {
		if !hasAttribute(fn.Attributes, "Override") {
			continue
		}
		if _, ok := findInheritedMethod(c.reg, d.Parent, name); ok {
			continue
		}
		if implementsInterfaceMethod(c.reg, d.Interfaces, name) {
			continue
		}
		c.errs.Add(errCompilef("method %s::%s has #[Override] but overrides nothing", d.Name, name))
	}

	if d.IsAbstract {
		return
	}
	required := make(map[string]bool)
	collectInterfaceMethodNames(c.reg, d.Interfaces, required)
	for name := range required {
		if _, ok := cls.Methods[name]; ok {
			continue
		}
		if _, ok := findInheritedMethod(c.reg, d.Parent, name); ok {
			continue
		}
		c.errs.Add(errCompilef("class %s does not implement method %s required by its interfaces", d.Name, name))
	}
}

// findInheritedMethod walks className's ancestor chain (not including
// className itself) looking for methodName, case-insensitively, matching
// how the registry keys classes and methods elsewhere.
func findInheritedMethod(reg *registry.Registry, className, methodName string) (*registry.Function, bool) {
	for className != "" {
		class, ok := reg.GetClass(className)
		if !ok {
			return nil, false
		}
		if fn, ok := lookupMethodCaseInsensitive(class.Methods, methodName); ok {
			return fn, true
		}
		className = class.Parent
	}
	return nil, false
}

func lookupMethodCaseInsensitive(methods map[string]*registry.Function, name string) (*registry.Function, bool) {
	for mname, fn := range methods {
		if strings.EqualFold(mname, name) {
			return fn, true
		}
	}
	return nil, false
}

func hasAttribute(attrs []*registry.Attribute, name string) bool {
	for _, a := range attrs {
		if strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}

// implementsInterfaceMethod reports whether methodName is one of the
// methods any interface in ifaceNames (transitively, via Extends) declares.
func implementsInterfaceMethod(reg *registry.Registry, ifaceNames []string, methodName string) bool {
	required := make(map[string]bool)
	collectInterfaceMethodNames(reg, ifaceNames, required)
	for name := range required {
		if strings.EqualFold(name, methodName) {
			return true
		}
	}
	return false
}

// collectInterfaceMethodNames gathers every method name declared by
// ifaceNames or any interface they extend, recursively, into required.
func collectInterfaceMethodNames(reg *registry.Registry, ifaceNames []string, required map[string]bool) {
	for _, name := range ifaceNames {
		iface, ok := reg.GetInterface(name)
		if !ok {
			continue
		}
		for mname := range iface.Methods {
			required[mname] = true
		}
		collectInterfaceMethodNames(reg, iface.Extends, required)
	}
}
