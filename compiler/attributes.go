package compiler

import (
	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/registry"
)

// compileAttributes evaluates a declaration's #[...] attribute list into its
// registry form (spec.md §4.7). Attribute arguments are restricted to the
// same literal subset constFold accepts for parameter defaults and class
// constants — attributes here are metadata the core reports back through
// reflection, never instantiated, so a richer compile-time evaluator buys
// nothing.
func (c *Compiler) compileAttributes(attrs []ast.Attribute) []*registry.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]*registry.Attribute, 0, len(attrs))
	for _, a := range attrs {
		attr := &registry.Attribute{Name: a.Name}
		for _, arg := range a.Args {
			attr.Arguments = append(attr.Arguments, registry.AttributeArg{
				Name:  arg.Name,
				Value: c.constFold(arg.Value),
			})
		}
		out = append(out, attr)
	}
	return out
}
