package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leocavalcante/vhp/ast"
)

// Each test here builds a program — the six end-to-end scenarios among
// them, plus further language features — as an ast.Program via ast.Builder
// (there's no lexer/parser in this repository, so a PHP snippet in a
// comment is the only "source" these programs have) and checks it against
// the output a real PHP runtime would produce.

func TestRecursiveFibonacci(t *testing.T) {
	b := ast.NewBuilder()

	// function f($n) { if ($n < 2) { return $n; } return f($n-1) + f($n-2); }
	// echo f(10);
	fib := b.Func("f", []ast.Param{b.Param("n")},
		b.If(b.Bin("<", b.Var("n"), b.Int(2)), []ast.Node{
			b.Return(b.Var("n")),
		}),
		b.Return(b.Bin("+",
			b.CallName("f", b.Bin("-", b.Var("n"), b.Int(1))),
			b.CallName("f", b.Bin("-", b.Var("n"), b.Int(2))),
		)),
	)

	prog := b.Program(fib, b.Echo(b.CallName("f", b.Int(10))))
	AssertOutput(t, prog, "55")
}

func TestForeachWithKeyAndValue(t *testing.T) {
	b := ast.NewBuilder()

	// $a = [3, 1, 2];
	// foreach ($a as $k => $v) { echo "$k=$v;"; }
	assignA := b.ExprStmt(b.Assign(b.Var("a"), b.Array(
		b.Item(b.Int(3)), b.Item(b.Int(1)), b.Item(b.Int(2)),
	)))
	loop := b.Foreach(b.Var("a"), "k", "v",
		b.Echo(b.Interp(b.Var("k"), b.Str("="), b.Var("v"), b.Str(";"))),
	)

	prog := b.Program(assignA, loop)
	AssertOutput(t, prog, "0=3;1=1;2=2;")
}

func TestConstructorPropertyPromotionAndCloneWith(t *testing.T) {
	b := ast.NewBuilder()

	// class A { function __construct(public int $x) {} }
	// $o = new A(5);
	// $c = clone $o with { x: 7 };
	// echo $o->x . "," . $c->x;
	class := b.Class("A", []ast.MethodDecl{
		b.Method("__construct", []ast.Param{b.PromotedParam("public", "x", false)}),
	})
	assignO := b.ExprStmt(b.Assign(b.Var("o"), b.New("A", b.Int(5))))
	assignC := b.ExprStmt(b.Assign(b.Var("c"), b.CloneWith(b.Var("o"), ast.PropertyOverride{Name: "x", Value: b.Int(7)})))
	echo := b.Echo(b.Bin(".",
		b.Bin(".", b.Prop(b.Var("o"), "x"), b.Str(",")),
		b.Prop(b.Var("c"), "x"),
	))

	prog := b.Program(class, assignO, assignC, echo)
	AssertOutput(t, prog, "5,7")
}

func TestBackedEnumFrom(t *testing.T) {
	b := ast.NewBuilder()

	// enum S: int { case A = 1; case B = 2; }
	// echo S::from(2)->name;
	enum := b.Enum("S", "int", []ast.EnumCaseDecl{
		b.EnumCase("A", b.Int(1)),
		b.EnumCase("B", b.Int(2)),
	})
	echo := b.Echo(b.Prop(b.Call(b.ClassConst("S", "from"), b.Int(2)), "name"))

	prog := b.Program(enum, echo)
	AssertOutput(t, prog, "B")
}

func TestBackedEnumFromRejectsUnmatchedValue(t *testing.T) {
	b := ast.NewBuilder()

	enum := b.Enum("S", "int", []ast.EnumCaseDecl{
		b.EnumCase("A", b.Int(1)),
		b.EnumCase("B", b.Int(2)),
	})
	echo := b.Echo(b.Prop(b.Call(b.ClassConst("S", "from"), b.Int(99)), "name"))

	prog := b.Program(enum, echo)
	AssertErrorContains(t, prog, "ValueError")
}

func TestTryCatchFinally(t *testing.T) {
	b := ast.NewBuilder()

	// class Exception { function __construct(public string $message) {} function getMessage() { return $this->message; } }
	// try { throw new Exception("e"); } catch (Exception $x) { echo $x->getMessage(); } finally { echo "|f"; }
	exceptionClass := b.Class("Exception", []ast.MethodDecl{
		b.Method("__construct", []ast.Param{b.PromotedParam("public", "message", false)}),
		b.Method("getMessage", nil, b.Return(b.Prop(b.Var("this"), "message"))),
	})
	// $x->getMessage(): Builder has no dedicated method-call helper, so a
	// method call is just Call{Callee: Prop(obj, name)}, the same shape
	// compileCall's *ast.Property case expects.
	echoMessage := b.Echo(b.Call(b.Prop(b.Var("x"), "getMessage")))
	tryStmt := b.Try(
		[]ast.Node{b.Throw(b.New("Exception", b.Str("e")))},
		[]ast.Catch{b.Catch([]string{"Exception"}, "x", echoMessage)},
		b.Echo(b.Str("|f")),
	)

	prog := b.Program(exceptionClass, tryStmt)
	AssertOutput(t, prog, "e|f")
}

func TestFinallyRunsThenReRaisesUnmatchedException(t *testing.T) {
	b := ast.NewBuilder()

	// class Boom { function __construct(public string $message) {} }
	// try { throw new Boom("x"); } finally { echo "cleanup"; }
	boomClass := b.Class("Boom", []ast.MethodDecl{
		b.Method("__construct", []ast.Param{b.PromotedParam("public", "message", false)}),
	})
	tryStmt := b.Try(
		[]ast.Node{b.Throw(b.New("Boom", b.Str("x")))},
		nil,
		b.Echo(b.Str("cleanup")),
	)

	prog := b.Program(boomClass, tryStmt)
	r := Run(prog)
	assert.Equal(t, "cleanup", r.Output)
	assert.True(t, r.ErrorContains("Boom"))
}

func TestExtendingFinalClassIsCompileError(t *testing.T) {
	b := ast.NewBuilder()

	// final class Sealed {}
	// class Sub extends Sealed {}
	sealed := b.ClassDecl(ast.ClassDecl{Name: "Sealed", IsFinal: true})
	sub := b.ClassDecl(ast.ClassDecl{Name: "Sub", Parent: "Sealed"})

	prog := b.Program(sealed, sub)
	AssertErrorContains(t, prog, "final class")
}

func TestOverridingFinalMethodIsCompileError(t *testing.T) {
	b := ast.NewBuilder()

	// class Base { final function lock() {} }
	// class Sub extends Base { function lock() {} }
	lockMethod := b.Method("lock", nil)
	lockMethod.IsFinal = true
	base := b.ClassDecl(ast.ClassDecl{Name: "Base", Methods: []ast.MethodDecl{lockMethod}})
	sub := b.ClassDecl(ast.ClassDecl{Name: "Sub", Parent: "Base", Methods: []ast.MethodDecl{b.Method("lock", nil)}})

	prog := b.Program(base, sub)
	AssertErrorContains(t, prog, "final method")
}

func TestOverrideAttributeOnNonOverridingMethodIsCompileError(t *testing.T) {
	b := ast.NewBuilder()

	// class Sub { #[Override] function notThere() {} }
	stray := b.Method("notThere", nil)
	stray.Attributes = []ast.Attribute{b.Attr("Override")}
	sub := b.ClassDecl(ast.ClassDecl{Name: "Sub", Methods: []ast.MethodDecl{stray}})

	prog := b.Program(sub)
	AssertErrorContains(t, prog, "Override")
}

func TestMissingInterfaceMethodIsCompileError(t *testing.T) {
	b := ast.NewBuilder()

	// interface Greets { function greet(): string; }
	// class Mute implements Greets {}
	greets := b.Interface("Greets", nil, b.MethodSig("greet", "string"))
	mute := b.ClassDecl(ast.ClassDecl{Name: "Mute", Interfaces: []string{"Greets"}})

	prog := b.Program(greets, mute)
	AssertErrorContains(t, prog, "Mute")
}

func TestBackedEnumCaseValueMustMatchBackingType(t *testing.T) {
	b := ast.NewBuilder()

	// enum Status: int { case Active = "active"; }
	enum := b.Enum("Status", "int", []ast.EnumCaseDecl{b.EnumCase("Active", b.Str("active"))})

	prog := b.Program(enum)
	AssertErrorContains(t, prog, "backing type")
}

func TestBackedEnumRejectsDuplicateCaseValues(t *testing.T) {
	b := ast.NewBuilder()

	// enum Status: int { case Active = 1; case Enabled = 1; }
	enum := b.Enum("Status", "int", []ast.EnumCaseDecl{
		b.EnumCase("Active", b.Int(1)),
		b.EnumCase("Enabled", b.Int(1)),
	})

	prog := b.Program(enum)
	AssertErrorContains(t, prog, "duplicate")
}

func TestParameterTypeMismatchRaisesTypeError(t *testing.T) {
	b := ast.NewBuilder()

	// function f(int $n) { return $n; }
	// f("not-a-number");
	fn := b.FuncTyped("f", []ast.Param{b.TypedParam("n", "int")}, "", b.Return(b.Var("n")))
	call := b.ExprStmt(b.CallName("f", b.Str("not-a-number")))

	prog := b.Program(fn, call)
	AssertErrorContains(t, prog, "TypeError")
}

func TestParameterTypeCoercesNumericString(t *testing.T) {
	b := ast.NewBuilder()

	// function f(int $n) { return $n + 1; }
	// echo f("41");
	fn := b.FuncTyped("f", []ast.Param{b.TypedParam("n", "int")}, "",
		b.Return(b.Bin("+", b.Var("n"), b.Int(1))),
	)
	echo := b.Echo(b.CallName("f", b.Str("41")))

	prog := b.Program(fn, echo)
	AssertOutput(t, prog, "42")
}

func TestVoidFunctionReturningValueIsTypeError(t *testing.T) {
	b := ast.NewBuilder()

	// function f(): void { return 1; }
	// f();
	fn := b.FuncTyped("f", nil, "void", b.Return(b.Int(1)))
	call := b.ExprStmt(b.CallName("f"))

	prog := b.Program(fn, call)
	AssertErrorContains(t, prog, "TypeError")
}

func TestOutputBufferingCapturesEchoUntilGetClean(t *testing.T) {
	b := ast.NewBuilder()

	// ob_start();
	// echo "buffered";
	// $captured = ob_get_clean();
	// echo "after:" . $captured;
	start := b.ExprStmt(b.CallName("ob_start"))
	echoBuffered := b.Echo(b.Str("buffered"))
	capture := b.ExprStmt(b.Assign(b.Var("captured"), b.CallName("ob_get_clean")))
	echoAfter := b.Echo(b.Interp(b.Str("after:"), b.Var("captured")))

	prog := b.Program(start, echoBuffered, capture, echoAfter)
	AssertOutput(t, prog, "after:buffered")
}

func TestOutputBufferEndFlushWritesThroughToBaseWriter(t *testing.T) {
	b := ast.NewBuilder()

	// ob_start();
	// echo "flushed";
	// ob_end_flush();
	start := b.ExprStmt(b.CallName("ob_start"))
	echoBuffered := b.Echo(b.Str("flushed"))
	end := b.ExprStmt(b.CallName("ob_end_flush"))

	prog := b.Program(start, echoBuffered, end)
	AssertOutput(t, prog, "flushed")
}

func TestPipeOperatorIntoBuiltin(t *testing.T) {
	b := ast.NewBuilder()

	// echo "hi" |> strtoupper(...);
	echo := b.Echo(b.Pipe(b.Str("hi"), b.Str("strtoupper")))

	prog := b.Program(echo)
	AssertOutput(t, prog, "HI")
}

func TestHarnessResultHelpers(t *testing.T) {
	b := ast.NewBuilder()
	prog := b.Program(b.Echo(b.Str("ok")))

	r := Run(prog)
	assert.True(t, r.MatchesOutput("ok"))
	assert.False(t, r.MatchesOutput("no"))
	assert.False(t, r.ErrorContains("anything"))
}
