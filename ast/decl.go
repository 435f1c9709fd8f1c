package ast

type FunctionDecl struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       []Node
	ByRef      bool
	Attributes []Attribute
}

func (*FunctionDecl) Kind() NodeKind { return KindFunctionDecl }

type PropertyDecl struct {
	Name       string
	Visibility string
	Type       string
	Default    Node
	IsStatic   bool
	IsReadonly bool
	Attributes []Attribute
}

type ConstDecl struct {
	Name       string
	Value      Node
	Visibility string
	IsFinal    bool
}

type MethodDecl struct {
	FunctionDecl
	Visibility string
	IsStatic   bool
	IsAbstract bool
	IsFinal    bool
}

// TraitUse lists the traits a class pulls in plus their `insteadof`/`as`
// conflict-resolution adaptations.
type TraitUse struct {
	Traits    []string
	InsteadOf []InsteadOf
	As        []AliasAs
}

type InsteadOf struct {
	Trait, Method string
	OverTraits    []string
}

type AliasAs struct {
	Trait, Method string
	Alias         string
	Visibility    string
}

type ClassDecl struct {
	Name       string
	Parent     string
	Interfaces []string
	Uses       []TraitUse
	Properties []PropertyDecl
	Methods    []MethodDecl
	Constants  []ConstDecl
	IsAbstract bool
	IsFinal    bool
	IsReadonly bool
	Attributes []Attribute
}

func (*ClassDecl) Kind() NodeKind { return KindClassDecl }

type MethodSignature struct {
	Name       string
	Visibility string
	Params     []Param
	ReturnType string
}

type InterfaceDecl struct {
	Name      string
	Extends   []string
	Methods   []MethodSignature
	Constants []ConstDecl
}

func (*InterfaceDecl) Kind() NodeKind { return KindInterfaceDecl }

type TraitDecl struct {
	Name       string
	Properties []PropertyDecl
	Methods    []MethodDecl
}

func (*TraitDecl) Kind() NodeKind { return KindTraitDecl }

type EnumCaseDecl struct {
	Name  string
	Value Node // nil for a pure enum case
}

type EnumDecl struct {
	Name        string
	BackingType string // "int", "string", or "" for a pure enum
	Interfaces  []string
	Cases       []EnumCaseDecl
	Methods     []MethodDecl
	Constants   []ConstDecl
}

func (*EnumDecl) Kind() NodeKind { return KindEnumDecl }

type NamespaceDecl struct {
	Name string
	Body []Node
}

func (*NamespaceDecl) Kind() NodeKind { return KindNamespaceDecl }

type UseDecl struct {
	Path  string
	Alias string
}

func (*UseDecl) Kind() NodeKind { return KindUseDecl }

type Declare struct {
	Directive string
	Value     Node
}

func (*Declare) Kind() NodeKind { return KindDeclare }

// Program is the parser's output: an ordered list of top-level statements
// and declarations, the compiler's sole entry point (SPEC_FULL.md §6).
type Program struct {
	Statements []Node
}
