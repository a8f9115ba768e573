// Package resolver performs the single static pass described in spec
// section 4.3: for every name-bearing expression it computes how many
// enclosing lexical scopes to skip to reach the scope that declares the
// name, and reports the static-semantic errors that a mistake in that
// process reveals (self-init, duplicate declaration, `this`/`return`
// misuse).
package resolver

import (
	"github.com/candlelang/candle/pkg/ast"
	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/token"
)

// Resolutions maps a name-bearing expression's node ID to the number of
// enclosing scopes to skip to find its declaring scope. An absent entry
// means "look up by name in globals at runtime".
type Resolutions map[int64]int

type funcKind int

const (
	fnNone funcKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
)

type resolver struct {
	// scopes holds one map per enclosing block/function/class scope.
	// The global scope is never pushed here, so declare() is a no-op at
	// depth zero and top-level redeclaration is always permitted, per
	// spec section 4.3.
	scopes       []map[string]bool
	currentFn    funcKind
	currentClass classKind
	sink         *diag.Sink
	resolutions  Resolutions
}

// Resolve walks stmts once and returns the computed distance map,
// reporting static-semantic errors into sink.
func Resolve(stmts []ast.Stmt, sink *diag.Sink) Resolutions {
	r := &resolver{sink: sink, resolutions: Resolutions{}}
	r.stmts(stmts)
	return r.resolutions
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.sink.Static(name, "Variable '%s' already declared in this scope.", name.Lexeme)
		return
	}
	scope[name.Lexeme] = false
}

func (r *resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records the scope distance for id if name is found on the
// scope stack; otherwise it leaves the resolutions map untouched, which
// means "look up as a global at runtime".
func (r *resolver) resolveLocal(name string, id int64) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.resolutions[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.stmt(s)
	}
}

func (r *resolver) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		r.expr(n.Expr)

	case *ast.PrintStmt:
		r.expr(n.Expr)

	case *ast.VarStmt:
		r.declare(n.Name)
		if n.Init != nil {
			r.expr(n.Init)
		}
		r.define(n.Name.Lexeme)

	case *ast.BlockStmt:
		r.beginScope()
		r.stmts(n.Statements)
		r.endScope()

	case *ast.IfStmt:
		r.expr(n.Cond)
		r.stmt(n.Then)
		if n.Else != nil {
			r.stmt(n.Else)
		}

	case *ast.WhileStmt:
		r.expr(n.Cond)
		r.stmt(n.Body)

	case *ast.BreakStmt:
		// nothing to resolve; loop-depth was already checked by the parser.

	case *ast.FunctionStmt:
		r.declare(n.Name)
		r.define(n.Name.Lexeme)
		r.resolveFunction(n.Fn, fnFunction)

	case *ast.ReturnStmt:
		if r.currentFn == fnNone {
			r.sink.Static(n.Keyword, "Cannot return from top-level code.")
		}
		if n.Value != nil {
			r.expr(n.Value)
		}

	case *ast.ClassStmt:
		r.resolveClass(n)

	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *resolver) resolveFunction(fn *ast.FunctionLit, kind funcKind) {
	prevFn := r.currentFn
	r.currentFn = kind
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param.Lexeme)
	}
	r.stmts(fn.Body)
	r.endScope()
	r.currentFn = prevFn
}

func (r *resolver) resolveClass(n *ast.ClassStmt) {
	prevClass := r.currentClass
	r.currentClass = classClass
	r.declare(n.Name)
	r.define(n.Name.Lexeme)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.sink.Static(n.Superclass.Name, "A class can't inherit from itself.")
		}
		r.expr(n.Superclass)
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, method := range n.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method.Fn, kind)
	}
	r.endScope()

	r.currentClass = prevClass
}

func (r *resolver) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		// nothing to resolve

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if initialized, declared := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; declared && !initialized {
				r.sink.Static(n.Name, "Cannot read from local variable in its own initializer.")
			}
		}
		r.resolveLocal(n.Name.Lexeme, n.ID)

	case *ast.Grouping:
		r.expr(n.Expr)

	case *ast.Unary:
		r.expr(n.Right)

	case *ast.Binary:
		r.expr(n.Left)
		r.expr(n.Right)

	case *ast.Logical:
		r.expr(n.Left)
		r.expr(n.Right)

	case *ast.Assign:
		r.expr(n.Value)
		r.resolveLocal(n.Name.Lexeme, n.ID)

	case *ast.Call:
		r.expr(n.Callee)
		for _, arg := range n.Args {
			r.expr(arg)
		}

	case *ast.FunctionLit:
		r.resolveFunction(n, fnFunction)

	case *ast.Get:
		r.expr(n.Object)

	case *ast.Set:
		if n.Op.Kind != token.Equal {
			r.sink.Static(n.Op, "Invalid assignment target.")
		}
		r.expr(n.Value)
		r.expr(n.Object)

	case *ast.This:
		if r.currentClass == classNone {
			r.sink.Static(n.Keyword, "Cannot use 'this' outside of a class.")
			return
		}
		r.resolveLocal("this", n.ID)

	default:
		panic("resolver: unhandled expression type")
	}
}
