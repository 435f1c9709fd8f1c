package compiler

import (
	"github.com/leocavalcante/vhp/ast"
	verrors "github.com/leocavalcante/vhp/errors"
	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// Compiler turns one ast.Program into a registry.Registry of compiled
// functions/classes/interfaces/traits plus the program's top-level
// ("main") function, per SPEC_FULL.md §4.2. A Compiler is single-use: call
// Compile once and read Errors() afterward.
type Compiler struct {
	reg  *registry.Registry
	errs *verrors.List
}

// New returns a Compiler that registers compiled declarations into reg.
// Passing a fresh registry.New() keeps the compilation hermetic; passing a
// registry already seeded with builtins lets user code call them.
func New(reg *registry.Registry) *Compiler {
	return &Compiler{reg: reg, errs: &verrors.List{}}
}

func errCompilef(format string, args ...interface{}) *verrors.Error {
	return verrors.Compilef(format, args...)
}

// Errors returns every compile-time diagnostic accumulated during Compile.
func (c *Compiler) Errors() *verrors.List { return c.errs }

// Registry returns the registry declarations were compiled into.
func (c *Compiler) Registry() *registry.Registry { return c.reg }

// Compile walks prog's top-level statements, registering every declaration
// it finds and compiling every other statement into a synthetic "{main}"
// function representing the script body, matching how the teacher's
// compiler treats a top-level PHP script per spec.md §4.2.
func (c *Compiler) Compile(prog *ast.Program) (*registry.Function, error) {
	main := newFuncBuilder(c, "{main}")
	for _, stmt := range prog.Statements {
		c.compileTopLevel(main, stmt)
	}
	main.emit(opcodes.OP_PUSH_CONST, main.addConst(values.NewNull()), 0, 0)
	main.emit(opcodes.OP_RETURN, 0, 0, 0)
	if c.errs.HasErrors() {
		return nil, c.errs
	}
	return main.fn, nil
}

func (c *Compiler) compileTopLevel(fb *funcBuilder, n ast.Node) {
	switch d := n.(type) {
	case *ast.FunctionDecl:
		c.compileFunctionDecl(d)
	case *ast.ClassDecl:
		c.compileClassDecl(d)
	case *ast.InterfaceDecl:
		c.compileInterfaceDecl(d)
	case *ast.TraitDecl:
		c.compileTraitDecl(d)
	case *ast.EnumDecl:
		c.compileEnumDecl(d)
	case *ast.NamespaceDecl:
		for _, s := range d.Body {
			c.compileTopLevel(fb, s)
		}
	case *ast.UseDecl, *ast.Declare:
		// No namespace resolution or strict_types enforcement in this
		// subset; both are accepted and parsed but otherwise no-ops.
	default:
		c.compileStmt(fb, n)
	}
}

// bindParam reserves p's local slot (in declaration order, matching the
// call frame layout spec.md §4.2 describes) and records its registry
// metadata; a default value is constant-folded here into
// Parameter.DefaultValue, which the VM's call-argument binding copies into
// the slot when the corresponding argument is omitted.
func (c *Compiler) bindParam(fb *funcBuilder, p ast.Param) *registry.Parameter {
	slot := fb.slotFor(p.Name)
	_ = slot // parameters occupy the first N local slots by construction order
	rp := &registry.Parameter{
		Name:        p.Name,
		Type:        p.Type,
		IsReference: p.ByRef,
		IsVariadic:  p.Variadic,
		Attributes:  c.compileAttributes(p.Attributes),
	}
	if p.Default != nil {
		rp.HasDefault = true
		rp.DefaultValue = c.constFold(p.Default)
	}
	fb.fn.Parameters = append(fb.fn.Parameters, rp)
	return rp
}

// constFold evaluates the handful of literal node kinds legal in a
// parameter default or class-constant initializer; ast.Builder never
// constructs anything richer there (spec.md §4.2 scopes defaults to
// literals), so a compile-time interpreter for arbitrary expressions is
// unnecessary here.
func (c *Compiler) constFold(n ast.Node) *values.Value {
	switch e := n.(type) {
	case *ast.NullLiteral:
		return values.NewNull()
	case *ast.BoolLiteral:
		return values.NewBool(e.Value)
	case *ast.IntLiteral:
		return values.NewInt(e.Value)
	case *ast.FloatLiteral:
		return values.NewFloat(e.Value)
	case *ast.StringLiteral:
		return values.NewString(e.Value)
	case *ast.ArrayLiteral:
		if len(e.Items) == 0 {
			return values.NewArrayValue(values.NewArray())
		}
	}
	c.errs.Add(errCompilef("unsupported constant initializer %T", n))
	return values.NewNull()
}

func (c *Compiler) compileFunctionDecl(d *ast.FunctionDecl) {
	fb := newFuncBuilder(c, d.Name)
	for _, p := range d.Params {
		c.bindParam(fb, p)
	}
	fb.fn.IsVariadic = len(d.Params) > 0 && d.Params[len(d.Params)-1].Variadic
	fb.fn.ReturnsByReference = d.ByRef
	fb.fn.ReturnType = d.ReturnType
	fb.fn.Attributes = c.compileAttributes(d.Attributes)
	c.compileBody(fb, d.Body)
	fb.emit(opcodes.OP_PUSH_CONST, fb.addConst(values.NewNull()), 0, 0)
	fb.emit(opcodes.OP_RETURN, 0, 0, 0)
	if err := c.reg.RegisterFunction(fb.fn); err != nil {
		c.errs.Add(errCompilef("%s", err))
	}
}

func (c *Compiler) compileBody(fb *funcBuilder, body []ast.Node) {
	for _, stmt := range body {
		c.compileStmt(fb, stmt)
	}
}
