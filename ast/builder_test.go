package ast

import "testing"

func TestBuilderFibonacciProgramShape(t *testing.T) {
	b := NewBuilder()

	// function f($n) { return $n < 2 ? $n : f($n-1) + f($n-2); }
	n := b.Var("n")
	fn := b.Func("f", []Param{b.Param("n")},
		b.Return(b.Ternary(
			b.Bin("<", n, b.Int(2)),
			n,
			b.Bin("+",
				b.CallName("f", b.Bin("-", n, b.Int(1))),
				b.CallName("f", b.Bin("-", n, b.Int(2))),
			),
		)),
	)

	prog := b.Program(fn, b.Echo(b.CallName("f", b.Int(10))))

	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Statements))
	}
	if prog.Statements[0].Kind() != KindFunctionDecl {
		t.Fatalf("expected first statement to be a function decl, got %v", prog.Statements[0].Kind())
	}
	decl := prog.Statements[0].(*FunctionDecl)
	if decl.Name != "f" || len(decl.Params) != 1 || decl.Params[0].Name != "n" {
		t.Fatalf("unexpected function shape: %+v", decl)
	}
	if prog.Statements[1].Kind() != KindEcho {
		t.Fatalf("expected second statement to be echo, got %v", prog.Statements[1].Kind())
	}
}

func TestBuilderCloneWithShape(t *testing.T) {
	b := NewBuilder()
	o := b.Var("o")
	clone := b.CloneWith(o, PropertyOverride{Name: "x", Value: b.Int(7)})
	c, ok := clone.(*Clone)
	if !ok {
		t.Fatalf("expected *Clone, got %T", clone)
	}
	if len(c.With) != 1 || c.With[0].Name != "x" {
		t.Fatalf("unexpected clone-with overrides: %+v", c.With)
	}
}
