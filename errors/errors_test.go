package errors

import "testing"

func TestListAccumulatesAndReportsCount(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Fatal("new list should be empty")
	}
	l.Add(Compilef("variadic parameter %q must be last", "args"))
	l.Add(Logicf("DivisionByZeroError", "division by zero"))
	if !l.HasErrors() {
		t.Fatal("expected errors after Add")
	}
	if len(l.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(l.Errors()))
	}
}

func TestErrorIncludesLineWhenKnown(t *testing.T) {
	e := &Error{Kind: Fatal, Message: "stack overflow", Line: 42}
	got := e.Error()
	want := "fatal error: stack overflow on line 42"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
