package resolver

import (
	"testing"

	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/lexer"
	"github.com/candlelang/candle/pkg/parser"
)

func resolveSource(t *testing.T, src string) (Resolutions, *diag.Sink) {
	t.Helper()
	sink := diag.New()
	toks := lexer.Scan(src, sink)
	stmts := parser.Parse(toks, sink)
	if sink.HasErrors() {
		t.Fatalf("errors before resolving: %v", sink.All())
	}
	res := Resolve(stmts, sink)
	return res, sink
}

func TestResolveLocalVariableDistance(t *testing.T) {
	res, sink := resolveSource(t, `
		var a = 1;
		{
			var b = 2;
			print a + b;
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	// b is read from the same block scope it's declared in: distance 0.
	// a is a top-level global, never pushed onto the scope stack, so it
	// gets no resolutions entry at all: it's looked up in globals by
	// name at runtime instead.
	if len(res) != 1 {
		t.Fatalf("expected exactly 1 resolved local read (b), got %d: %v", len(res), res)
	}
	for _, d := range res {
		if d != 0 {
			t.Fatalf("expected b's distance to be 0, got %d", d)
		}
	}
}

func TestResolveNestedFunctionClosesOverEnclosingLocal(t *testing.T) {
	res, sink := resolveSource(t, `
		fun outer() {
			var x = 1;
			fun inner() {
				print x;
			}
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	found := false
	for _, d := range res {
		if d == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected inner's read of x to resolve one scope out, got %v", res)
	}
}

func TestResolveGlobalPermitsRedeclaration(t *testing.T) {
	_, sink := resolveSource(t, `
		var a = 1;
		var a = 2;
		print a;
	`)
	if sink.HasErrors() {
		t.Fatalf("global redeclaration should be permitted, got: %v", sink.All())
	}
}

func TestResolveDuplicateLocalDeclarationErrors(t *testing.T) {
	_, sink := resolveSource(t, `
		{
			var a = 1;
			var a = 2;
		}
	`)
	if !sink.HasErrors() {
		t.Fatal("duplicate local declaration should report a diagnostic")
	}
}

func TestResolveSelfInitializationErrors(t *testing.T) {
	_, sink := resolveSource(t, `
		{
			var a = a;
		}
	`)
	if !sink.HasErrors() {
		t.Fatal("reading a variable in its own initializer should report a diagnostic")
	}
}

func TestResolveReturnOutsideFunctionErrors(t *testing.T) {
	_, sink := resolveSource(t, "return 1;")
	if !sink.HasErrors() {
		t.Fatal("'return' at top level should report a diagnostic")
	}
}

func TestResolveThisOutsideClassErrors(t *testing.T) {
	_, sink := resolveSource(t, "print this;")
	if !sink.HasErrors() {
		t.Fatal("'this' outside a class should report a diagnostic")
	}
}

func TestResolveThisInsideMethodIsFine(t *testing.T) {
	_, sink := resolveSource(t, `
		class Box {
			init(x) { this.x = x; }
			get() { return this.x; }
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
}

func TestResolveCompoundAssignmentOnPropertyErrors(t *testing.T) {
	_, sink := resolveSource(t, `
		class Box { init() { this.x = 0; } }
		var b = Box();
		b.x += 1;
	`)
	if !sink.HasErrors() {
		t.Fatal("'+=' on a property target should report 'Invalid assignment target.'")
	}
}

func TestResolveSelfInheritanceErrors(t *testing.T) {
	_, sink := resolveSource(t, "class A < A {}")
	if !sink.HasErrors() {
		t.Fatal("a class inheriting from itself should report a diagnostic")
	}
}
