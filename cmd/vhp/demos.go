package main

import (
	"sort"

	"github.com/leocavalcante/vhp/ast"
)

// demos maps a short name to a program builder. There's no lexer/parser in
// this repository (see SPEC_FULL.md §1), so "source" for these demos is an
// ast.Builder call sequence instead of a .php file — each one exercises a
// distinct corner of the compiler/VM the way harness_test.go's scenarios do.
var demos = map[string]func() *ast.Program{
	"fibonacci": demoFibonacci,
	"foreach":   demoForeach,
	"clone":     demoClonePromotion,
	"enum":      demoEnumFrom,
	"trycatch":  demoTryCatchFinally,
	"pipe":      demoPipe,
}

func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// demoFibonacci: function f($n) { if ($n < 2) { return $n; } return f($n-1) + f($n-2); } echo f(10);
func demoFibonacci() *ast.Program {
	b := ast.NewBuilder()
	fib := b.Func("f", []ast.Param{b.Param("n")},
		b.If(b.Bin("<", b.Var("n"), b.Int(2)), []ast.Node{
			b.Return(b.Var("n")),
		}),
		b.Return(b.Bin("+",
			b.CallName("f", b.Bin("-", b.Var("n"), b.Int(1))),
			b.CallName("f", b.Bin("-", b.Var("n"), b.Int(2))),
		)),
	)
	return b.Program(fib, b.Echo(b.CallName("f", b.Int(10))))
}

// demoForeach: $a = [3, 1, 2]; foreach ($a as $k => $v) { echo "$k=$v;"; }
func demoForeach() *ast.Program {
	b := ast.NewBuilder()
	assignA := b.ExprStmt(b.Assign(b.Var("a"), b.Array(
		b.Item(b.Int(3)), b.Item(b.Int(1)), b.Item(b.Int(2)),
	)))
	loop := b.Foreach(b.Var("a"), "k", "v",
		b.Echo(b.Interp(b.Var("k"), b.Str("="), b.Var("v"), b.Str(";"))),
	)
	return b.Program(assignA, loop)
}

// demoClonePromotion: class A { function __construct(public int $x) {} }
// $o = new A(5); $c = clone $o with { x: 7 }; echo $o->x . "," . $c->x;
func demoClonePromotion() *ast.Program {
	b := ast.NewBuilder()
	class := b.Class("A", []ast.MethodDecl{
		b.Method("__construct", []ast.Param{b.PromotedParam("public", "x", false)}),
	})
	assignO := b.ExprStmt(b.Assign(b.Var("o"), b.New("A", b.Int(5))))
	assignC := b.ExprStmt(b.Assign(b.Var("c"), b.CloneWith(b.Var("o"), ast.PropertyOverride{Name: "x", Value: b.Int(7)})))
	echo := b.Echo(b.Bin(".",
		b.Bin(".", b.Prop(b.Var("o"), "x"), b.Str(",")),
		b.Prop(b.Var("c"), "x"),
	))
	return b.Program(class, assignO, assignC, echo)
}

// demoEnumFrom: enum S: int { case A = 1; case B = 2; } echo S::from(2)->name;
func demoEnumFrom() *ast.Program {
	b := ast.NewBuilder()
	enum := b.Enum("S", "int", []ast.EnumCaseDecl{
		b.EnumCase("A", b.Int(1)),
		b.EnumCase("B", b.Int(2)),
	})
	echo := b.Echo(b.Prop(b.Call(b.ClassConst("S", "from"), b.Int(2)), "name"))
	return b.Program(enum, echo)
}

// demoTryCatchFinally: class Exception { ... } try { throw new Exception("e"); }
// catch (Exception $x) { echo $x->getMessage(); } finally { echo "|f"; }
func demoTryCatchFinally() *ast.Program {
	b := ast.NewBuilder()
	exceptionClass := b.Class("Exception", []ast.MethodDecl{
		b.Method("__construct", []ast.Param{b.PromotedParam("public", "message", false)}),
		b.Method("getMessage", nil, b.Return(b.Prop(b.Var("this"), "message"))),
	})
	echoMessage := b.Echo(b.Call(b.Prop(b.Var("x"), "getMessage")))
	tryStmt := b.Try(
		[]ast.Node{b.Throw(b.New("Exception", b.Str("e")))},
		[]ast.Catch{b.Catch([]string{"Exception"}, "x", echoMessage)},
		b.Echo(b.Str("|f")),
	)
	return b.Program(exceptionClass, tryStmt)
}

// demoPipe: echo "hi" |> strtoupper(...);
func demoPipe() *ast.Program {
	b := ast.NewBuilder()
	return b.Program(b.Echo(b.Pipe(b.Str("hi"), b.Str("strtoupper"))))
}
