package ast

// Builder constructs AST trees programmatically, in place of the lexer and
// parser that a real front end would supply. It's used by this repository's
// own tests and by cmd/vhp's demo scripts to build the scenarios SPEC_FULL.md
// names without needing a working tokenizer/grammar.
type Builder struct{}

// NewBuilder returns a ready-to-use Builder; it carries no state, so the
// zero value works equally well.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Null() Node            { return &NullLiteral{} }
func (b *Builder) Bool(v bool) Node      { return &BoolLiteral{Value: v} }
func (b *Builder) Int(v int64) Node      { return &IntLiteral{Value: v} }
func (b *Builder) Float(v float64) Node  { return &FloatLiteral{Value: v} }
func (b *Builder) Str(v string) Node     { return &StringLiteral{Value: v} }
func (b *Builder) Var(name string) Node  { return &Variable{Name: name} }

func (b *Builder) Interp(parts ...Node) Node {
	return &InterpolatedString{Parts: parts}
}

func (b *Builder) Array(items ...ArrayItem) Node {
	return &ArrayLiteral{Items: items}
}

func (b *Builder) Item(value Node) ArrayItem { return ArrayItem{Value: value} }
func (b *Builder) KeyedItem(key, value Node) ArrayItem {
	return ArrayItem{Key: key, Value: value}
}

func (b *Builder) Bin(op string, left, right Node) Node {
	return &Binary{Op: op, Left: left, Right: right}
}

func (b *Builder) Un(op string, operand Node, prefix bool) Node {
	return &Unary{Op: op, Operand: operand, Prefix: prefix}
}

func (b *Builder) Assign(target, value Node) Node {
	return &Assign{Op: "=", Target: target, Value: value}
}

func (b *Builder) AssignOp(op string, target, value Node) Node {
	return &Assign{Op: op, Target: target, Value: value}
}

func (b *Builder) Call(callee Node, args ...Node) Node {
	a := make([]Arg, len(args))
	for i, arg := range args {
		a[i] = Arg{Value: arg}
	}
	return &Call{Callee: callee, Args: a}
}

func (b *Builder) CallName(name string, args ...Node) Node {
	return b.Call(&StringLiteral{Value: name}, args...)
}

func (b *Builder) Index(arr, key Node) Node { return &Index{Array: arr, Key: key} }
func (b *Builder) Append(arr Node) Node      { return &Index{Array: arr} }

func (b *Builder) Prop(obj Node, name string) Node {
	return &Property{Object: obj, Name: &StringLiteral{Value: name}}
}

func (b *Builder) StaticProp(class, name string) Node {
	return &StaticProperty{Class: class, Name: name}
}

func (b *Builder) ClassConst(class, name string) Node {
	return &ClassConst{Class: class, Name: name}
}

func (b *Builder) New(class string, args ...Node) Node {
	a := make([]Arg, len(args))
	for i, arg := range args {
		a[i] = Arg{Value: arg}
	}
	return &New{Class: &StringLiteral{Value: class}, Args: a}
}

func (b *Builder) CloneWith(obj Node, overrides ...PropertyOverride) Node {
	return &Clone{Object: obj, With: overrides}
}

func (b *Builder) Pipe(left, right Node) Node { return &Pipe{Left: left, Right: right} }

func (b *Builder) Match(subject Node, arms ...MatchArm) Node {
	return &Match{Subject: subject, Arms: arms}
}

func (b *Builder) MatchArm(body Node, conditions ...Node) MatchArm {
	return MatchArm{Conditions: conditions, Body: body}
}

func (b *Builder) Ternary(cond, then, els Node) Node {
	return &Ternary{Cond: cond, Then: then, Else: els}
}

func (b *Builder) Coalesce(left, right Node) Node { return &Coalesce{Left: left, Right: right} }

func (b *Builder) Yield(key, value Node, from bool) Node {
	return &Yield{Key: key, Value: value, From: from}
}

// -- statements --

func (b *Builder) ExprStmt(e Node) Node { return &ExprStmt{Expr: e} }
func (b *Builder) Echo(args ...Node) Node { return &Echo{Args: args} }

func (b *Builder) If(cond Node, then []Node, els ...Node) Node {
	return &If{Cond: cond, Then: then, Else: els}
}

func (b *Builder) While(cond Node, body ...Node) Node {
	return &While{Cond: cond, Body: body}
}

func (b *Builder) For(init, cond, step []Node, body ...Node) Node {
	return &For{Init: init, Cond: cond, Step: step, Body: body}
}

func (b *Builder) Foreach(subject Node, keyVar, valVar string, body ...Node) Node {
	return &Foreach{Subject: subject, KeyVar: keyVar, ValueVar: valVar, Body: body}
}

func (b *Builder) Switch(subject Node, cases ...SwitchCase) Node {
	return &Switch{Subject: subject, Cases: cases}
}

func (b *Builder) Case(value Node, body ...Node) SwitchCase {
	return SwitchCase{Value: value, Body: body}
}

func (b *Builder) Break(depth int) Node    { return &Break{Depth: depth} }
func (b *Builder) Continue(depth int) Node { return &Continue{Depth: depth} }
func (b *Builder) Return(v Node) Node      { return &Return{Value: v} }
func (b *Builder) Throw(v Node) Node       { return &Throw{Value: v} }

func (b *Builder) Try(body []Node, catches []Catch, finally ...Node) Node {
	return &Try{Body: body, Catches: catches, Finally: finally}
}

func (b *Builder) Catch(types []string, v string, body ...Node) Catch {
	return Catch{Types: types, Var: v, Body: body}
}

// -- declarations --

func (b *Builder) Func(name string, params []Param, body ...Node) Node {
	return &FunctionDecl{Name: name, Params: params, Body: body}
}

func (b *Builder) FuncTyped(name string, params []Param, returnType string, body ...Node) Node {
	return &FunctionDecl{Name: name, Params: params, ReturnType: returnType, Body: body}
}

func (b *Builder) Param(name string) Param { return Param{Name: name} }

func (b *Builder) PromotedParam(visibility, name string, readonly bool) Param {
	return Param{Name: name, Promoted: visibility, Readonly: readonly}
}

func (b *Builder) Class(name string, methods []MethodDecl, props ...PropertyDecl) Node {
	return &ClassDecl{Name: name, Methods: methods, Properties: props}
}

// ClassDecl exposes every field a Class/Method/Param/Attribute-level test
// needs (parent, interfaces, final/abstract, attributes) without forcing
// every caller through Class's narrower positional form.
func (b *Builder) ClassDecl(d ClassDecl) Node {
	c := d
	return &c
}

func (b *Builder) Method(name string, params []Param, body ...Node) MethodDecl {
	return MethodDecl{FunctionDecl: FunctionDecl{Name: name, Params: params, Body: body}, Visibility: "public"}
}

func (b *Builder) TypedParam(name, typ string) Param { return Param{Name: name, Type: typ} }

func (b *Builder) Attr(name string) Attribute { return Attribute{Name: name} }

func (b *Builder) Interface(name string, extends []string, methods ...MethodSignature) Node {
	return &InterfaceDecl{Name: name, Extends: extends, Methods: methods}
}

func (b *Builder) MethodSig(name, returnType string, params ...Param) MethodSignature {
	return MethodSignature{Name: name, Visibility: "public", Params: params, ReturnType: returnType}
}

func (b *Builder) Enum(name, backing string, cases []EnumCaseDecl, methods ...MethodDecl) Node {
	return &EnumDecl{Name: name, BackingType: backing, Cases: cases, Methods: methods}
}

func (b *Builder) EnumCase(name string, value Node) EnumCaseDecl {
	return EnumCaseDecl{Name: name, Value: value}
}

// Program wraps a sequence of top-level statements as the compiler's entry
// input.
func (b *Builder) Program(stmts ...Node) *Program {
	return &Program{Statements: stmts}
}
