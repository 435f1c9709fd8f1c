package compiler

import (
	"github.com/leocavalcante/vhp/ast"
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

func (c *Compiler) compileClassDecl(d *ast.ClassDecl) {
	cls := &registry.Class{
		Name:       d.Name,
		Parent:     d.Parent,
		Interfaces: append([]string(nil), d.Interfaces...),
		IsAbstract: d.IsAbstract,
		IsFinal:    d.IsFinal,
		IsReadonly: d.IsReadonly,
		Properties: make(map[string]*registry.Property),
		Methods:    make(map[string]*registry.Function),
		Constants:  make(map[string]*registry.ClassConstant),
		Attributes: c.compileAttributes(d.Attributes),
	}

	for _, use := range d.Uses {
		cls.Traits = append(cls.Traits, use.Traits...)
		c.applyTraitUse(cls, use)
	}

	for _, p := range d.Properties {
		cls.Properties[p.Name] = c.compileProperty(p)
	}

	for _, ct := range d.Constants {
		cls.Constants[ct.Name] = &registry.ClassConstant{
			Name: ct.Name, Value: c.constFold(ct.Value),
			Visibility: ct.Visibility, IsFinal: ct.IsFinal,
		}
	}

	for _, m := range d.Methods {
		cls.Methods[m.Name] = c.compileMethod(d, m)
	}

	c.validateClass(d, cls)

	if err := c.reg.RegisterClass(cls); err != nil {
		c.errs.Add(errCompilef("%s", err))
	}
}

// applyTraitUse resolves `insteadof`/`as` conflict adjudication before a
// trait's methods ever reach the class: the compiler looks up each used
// trait in the registry (traits must be declared before use, matching
// ast.Builder-constructed programs' declaration order) and copies its
// methods into the class, skipping any the class itself overrides and
// honoring `insteadof` precedence plus `as` aliasing/visibility changes.
func (c *Compiler) applyTraitUse(cls *registry.Class, use ast.TraitUse) {
	excluded := make(map[string]map[string]bool) // method -> set of trait names excluded
	for _, io := range use.InsteadOf {
		if excluded[io.Method] == nil {
			excluded[io.Method] = make(map[string]bool)
		}
		for _, t := range io.OverTraits {
			excluded[io.Method][t] = true
		}
	}

	for _, traitName := range use.Traits {
		tr, ok := c.reg.GetTrait(traitName)
		if !ok {
			c.errs.Add(errCompilef("use of undeclared trait %q", traitName))
			continue
		}
		for mname, fn := range tr.Methods {
			if excluded[mname][traitName] {
				continue
			}
			clone := fn.Clone()
			cls.Methods[mname] = clone
		}
		for pname, prop := range tr.Properties {
			cls.Properties[pname] = prop
		}
	}

	for _, alias := range use.As {
		src, ok := c.reg.GetTrait(alias.Trait)
		if !ok {
			continue
		}
		fn, ok := src.Methods[alias.Method]
		if !ok {
			continue
		}
		clone := fn.Clone()
		name := alias.Alias
		if name == "" {
			name = alias.Method
		}
		cls.Methods[name] = clone
	}
}

func (c *Compiler) compileProperty(p ast.PropertyDecl) *registry.Property {
	prop := &registry.Property{
		Name: p.Name, Visibility: p.Visibility,
		IsStatic: p.IsStatic, IsReadonly: p.IsReadonly, Type: p.Type,
		Attributes: c.compileAttributes(p.Attributes),
	}
	if p.Default != nil {
		prop.DefaultValue = c.constFold(p.Default)
	} else {
		prop.DefaultValue = values.NewNull()
	}
	if p.IsStatic {
		prop.StaticValue = prop.DefaultValue
	}
	return prop
}

func (c *Compiler) compileMethod(d *ast.ClassDecl, m ast.MethodDecl) *registry.Function {
	fb := newFuncBuilder(c, d.Name+"::"+m.Name)
	fb.class = d
	for _, p := range m.Params {
		rp := c.bindParam(fb, p)
		if p.Promoted != "" {
			// Constructor property promotion: the parameter binds a local
			// slot, and the prologue emitted below assigns it to a
			// same-named property of $this at call time. No entry is added
			// to the class's declared properties.
			rp.Name = p.Name
		}
	}
	fb.fn.IsAbstract = m.IsAbstract
	fb.fn.IsFinal = m.IsFinal
	fb.fn.ReturnsByReference = m.ByRef
	fb.fn.ReturnType = m.ReturnType
	fb.fn.Attributes = c.compileAttributes(m.Attributes)

	if !m.IsAbstract {
		for _, p := range m.Params {
			if p.Promoted == "" {
				continue
			}
			fb.emit(opcodes.OP_FETCH_R, fb.slotFor("this"), 0, 0)
			fb.emit(opcodes.OP_FETCH_R, fb.slotFor(p.Name), 0, 0)
			fb.emit(opcodes.OP_ASSIGN_OBJ, fb.addStringConst(p.Name), 0, 0)
			fb.emit(opcodes.OP_POP, 0, 0, 0)
		}
		c.compileBody(fb, m.Body)
		fb.emit(opcodes.OP_PUSH_CONST, fb.addConst(values.NewNull()), 0, 0)
		fb.emit(opcodes.OP_RETURN, 0, 0, 0)
	}
	return fb.fn
}

func (c *Compiler) compileInterfaceDecl(d *ast.InterfaceDecl) {
	iface := &registry.Interface{
		Name:      d.Name,
		Extends:   append([]string(nil), d.Extends...),
		Methods:   make(map[string]*registry.InterfaceMethod),
		Constants: make(map[string]*registry.ClassConstant),
	}
	for _, m := range d.Methods {
		var params []*registry.Parameter
		for _, p := range m.Params {
			params = append(params, &registry.Parameter{
				Name: p.Name, Type: p.Type, IsReference: p.ByRef, IsVariadic: p.Variadic,
			})
		}
		iface.Methods[m.Name] = &registry.InterfaceMethod{
			Name: m.Name, Visibility: m.Visibility,
			Parameters: params, ReturnType: m.ReturnType,
		}
	}
	for _, ct := range d.Constants {
		iface.Constants[ct.Name] = &registry.ClassConstant{
			Name: ct.Name, Value: c.constFold(ct.Value), Visibility: ct.Visibility,
		}
	}
	if err := c.reg.RegisterInterface(iface); err != nil {
		c.errs.Add(errCompilef("%s", err))
	}
}

func (c *Compiler) compileTraitDecl(d *ast.TraitDecl) {
	tr := &registry.Trait{
		Name:       d.Name,
		Properties: make(map[string]*registry.Property),
		Methods:    make(map[string]*registry.Function),
	}
	for _, p := range d.Properties {
		tr.Properties[p.Name] = c.compileProperty(p)
	}
	synthetic := &ast.ClassDecl{Name: d.Name}
	for _, m := range d.Methods {
		tr.Methods[m.Name] = c.compileMethod(synthetic, m)
	}
	if err := c.reg.RegisterTrait(tr); err != nil {
		c.errs.Add(errCompilef("%s", err))
	}
}

// backingValueMatches reports whether val's runtime type matches a backed
// enum's declared backing type ("int" or "string"); a pure enum (backing
// == "") never reaches this check since its cases carry no value.
func backingValueMatches(backing string, val *values.Value) bool {
	switch backing {
	case "int":
		return val.IsInt()
	case "string":
		return val.IsString()
	default:
		return true
	}
}

// compileEnumDecl registers an enum as a registry.Class carrying its cases'
// names (spec.md models each case as a runtime values.EnumCase; the class
// table only needs to remember the case names, backing type, methods, and
// interfaces to synthesize cases()/from()/tryFrom() and dispatch methods).
func (c *Compiler) compileEnumDecl(d *ast.EnumDecl) {
	cls := &registry.Class{
		Name:        d.Name,
		Interfaces:  append([]string(nil), d.Interfaces...),
		IsFinal:     true,
		IsEnum:      true,
		BackingType: d.BackingType,
		Properties:  make(map[string]*registry.Property),
		Methods:     make(map[string]*registry.Function),
		Constants:   make(map[string]*registry.ClassConstant),
	}
	var seen []*values.Value
	for _, cs := range d.Cases {
		cls.Cases = append(cls.Cases, cs.Name)
		if cs.Value == nil {
			continue
		}
		val := c.constFold(cs.Value)
		if !backingValueMatches(d.BackingType, val) {
			c.errs.Add(errCompilef("enum %s case %s's value does not match backing type %s", d.Name, cs.Name, d.BackingType))
		}
		for _, prior := range seen {
			if prior.Equal(val) {
				c.errs.Add(errCompilef("enum %s has duplicate case value for %s", d.Name, cs.Name))
				break
			}
		}
		seen = append(seen, val)
		cls.Constants["__case_"+cs.Name] = &registry.ClassConstant{
			Name: cs.Name, Value: val, IsFinal: true,
		}
	}
	for _, ct := range d.Constants {
		cls.Constants[ct.Name] = &registry.ClassConstant{
			Name: ct.Name, Value: c.constFold(ct.Value), Visibility: ct.Visibility, IsFinal: ct.IsFinal,
		}
	}
	synthetic := &ast.ClassDecl{Name: d.Name}
	for _, m := range d.Methods {
		cls.Methods[m.Name] = c.compileMethod(synthetic, m)
	}
	if err := c.reg.RegisterClass(cls); err != nil {
		c.errs.Add(errCompilef("%s", err))
	}
}
