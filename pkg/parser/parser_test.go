package parser

import (
	"testing"

	"github.com/candlelang/candle/pkg/ast"
	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/lexer"
	"github.com/candlelang/candle/pkg/token"
)

func parseSource(t *testing.T, src string) ([]ast.Stmt, *diag.Sink) {
	t.Helper()
	sink := diag.New()
	toks := lexer.Scan(src, sink)
	if sink.HasErrors() {
		t.Fatalf("lexer errors before parsing: %v", sink.All())
	}
	stmts := Parse(toks, sink)
	return stmts, sink
}

func TestParsePrecedence(t *testing.T) {
	stmts, sink := parseSource(t, "print 1 + 2 * 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.All())
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	print, ok := stmts[0].(*ast.PrintStmt)
	if !ok {
		t.Fatalf("expected *ast.PrintStmt, got %T", stmts[0])
	}
	bin, ok := print.Expr.(*ast.Binary)
	if !ok || bin.Op.Kind != token.Plus {
		t.Fatalf("top-level operator should be '+', got %#v", print.Expr)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op.Kind != token.Star {
		t.Fatalf("'*' should bind tighter than '+' and nest on the right, got %#v", bin.Right)
	}
}

func TestParseForLoopDesugarsToWhile(t *testing.T) {
	stmts, sink := parseSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.All())
	}
	block, ok := stmts[0].(*ast.BlockStmt)
	if !ok || len(block.Statements) != 2 {
		t.Fatalf("for loop should desugar to a two-statement block, got %#v", stmts[0])
	}
	if _, ok := block.Statements[0].(*ast.VarStmt); !ok {
		t.Fatalf("first statement should be the loop's init, got %T", block.Statements[0])
	}
	loop, ok := block.Statements[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("second statement should be a while loop, got %T", block.Statements[1])
	}
	body, ok := loop.Body.(*ast.BlockStmt)
	if !ok || len(body.Statements) != 2 {
		t.Fatalf("while body should be {original body; increment}, got %#v", loop.Body)
	}
}

func TestParseInvalidAssignmentTargetReportsAndContinues(t *testing.T) {
	stmts, sink := parseSource(t, "1 + 2 = 3; print 1;")
	if !sink.HasErrors() {
		t.Fatal("assigning to a non-lvalue should report a diagnostic")
	}
	found := false
	for _, s := range stmts {
		if p, ok := s.(*ast.PrintStmt); ok {
			if lit, ok := p.Expr.(*ast.Literal); ok && lit.Value == float64(1) {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("parser should keep parsing statements after an invalid assignment target")
	}
}

func TestParseBreakOutsideLoopReportsError(t *testing.T) {
	_, sink := parseSource(t, "break;")
	if !sink.HasErrors() {
		t.Fatal("'break' outside a loop should report a diagnostic")
	}
}

func TestParseBreakInsideLoopIsFine(t *testing.T) {
	_, sink := parseSource(t, "while (true) { break; }")
	if sink.HasErrors() {
		t.Fatalf("'break' inside a loop should not report errors, got %v", sink.All())
	}
}

func TestParseClassWithSuperclassAndMethods(t *testing.T) {
	stmts, sink := parseSource(t, `
		class Animal { speak() { print "..."; } }
		class Dog < Animal { speak() { print "Woof"; } }
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.All())
	}
	dog, ok := stmts[1].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("expected *ast.ClassStmt, got %T", stmts[1])
	}
	if dog.Superclass == nil || dog.Superclass.Name.Lexeme != "Animal" {
		t.Fatalf("expected superclass Animal, got %#v", dog.Superclass)
	}
	if len(dog.Methods) != 1 || dog.Methods[0].Name.Lexeme != "speak" {
		t.Fatalf("expected one method 'speak', got %#v", dog.Methods)
	}
}

func TestParseSyntaxErrorSynchronizesOnNextStatement(t *testing.T) {
	stmts, sink := parseSource(t, "var; print 1;")
	if !sink.HasErrors() {
		t.Fatal("missing variable name should be a syntax error")
	}
	if len(stmts) != 1 {
		t.Fatalf("parser should recover and still parse the following print, got %d stmts", len(stmts))
	}
}

func TestParseAnonymousFunctionExpression(t *testing.T) {
	stmts, sink := parseSource(t, "var f = fun(x) { return x; };")
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.All())
	}
	v, ok := stmts[0].(*ast.VarStmt)
	if !ok {
		t.Fatalf("expected *ast.VarStmt, got %T", stmts[0])
	}
	if _, ok := v.Init.(*ast.FunctionLit); !ok {
		t.Fatalf("expected *ast.FunctionLit initializer, got %T", v.Init)
	}
}
