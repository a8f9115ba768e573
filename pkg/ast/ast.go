// Package ast defines the two disjoint node families produced by the
// parser and walked by the resolver and interpreter: expressions and
// statements. Both are visited by type switch, in the teacher's own
// idiom, rather than through a separate visitor interface per node.
package ast

import "github.com/candlelang/candle/pkg/token"

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// nextID hands out stable identities to name-bearing expressions
// (Variable, Assign, This) at construction time, so the resolver can key
// its scope-distance map by an integer instead of relying on pointer
// identity, which a copied struct would break.
var nextID int64

// NewID returns a fresh node identity. Called by the parser when it
// constructs a Variable, Assign or This node.
func NewID() int64 {
	nextID++
	return nextID
}

// Literal is a nil, boolean, number or string constant.
type Literal struct {
	Value any
}

// Variable reads a name from the environment chain.
type Variable struct {
	Name token.Token
	ID   int64
}

// NodeID identifies this expression for the resolver's distance map.
func (v *Variable) NodeID() int64 { return v.ID }

// Grouping is a parenthesized expression.
type Grouping struct {
	Expr Expr
}

// Unary is a prefix operator applied to a single operand.
type Unary struct {
	Op    token.Token
	Right Expr
}

// Binary is an infix operator applied to two operands.
type Binary struct {
	Op          token.Token
	Left, Right Expr
}

// Logical is a short-circuiting `and`/`or` (or `&&`/`||`) expression.
type Logical struct {
	Op          token.Token
	Left, Right Expr
}

// Assign writes a new value to a name, optionally combined with `+`/`-`
// (compound assignment).
type Assign struct {
	Name  token.Token
	Op    token.Token // Equal, PlusEqual or MinusEqual
	Value Expr
	ID    int64
}

// NodeID identifies this expression for the resolver's distance map.
func (a *Assign) NodeID() int64 { return a.ID }

// Call invokes a callee with a list of evaluated arguments. Paren is kept
// so runtime errors ("Expected N arguments...") can report a line.
type Call struct {
	Callee Expr
	Args   []Expr
	Paren  token.Token
}

// FunctionLit is a function's parameter list and body, shared by both
// named function declarations and anonymous function expressions.
type FunctionLit struct {
	Params     []token.Token
	Body       []Stmt
	SingleLine bool
}

// Get reads a property off a class instance.
type Get struct {
	Object Expr
	Name   token.Token
}

// Set writes a property on a class instance. Op is preserved so the
// resolver can reject a non-`=` compound assignment on a property.
type Set struct {
	Object Expr
	Name   token.Token
	Op     token.Token
	Value  Expr
}

// This refers to the implicit receiver inside a method body.
type This struct {
	Keyword token.Token
	ID      int64
}

// NodeID identifies this expression for the resolver's distance map.
func (t *This) NodeID() int64 { return t.ID }

func (*Literal) exprNode()     {}
func (*Variable) exprNode()    {}
func (*Grouping) exprNode()    {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Logical) exprNode()     {}
func (*Assign) exprNode()      {}
func (*Call) exprNode()        {}
func (*FunctionLit) exprNode() {}
func (*Get) exprNode()         {}
func (*Set) exprNode()         {}
func (*This) exprNode()        {}

// ExprStmt evaluates an expression for its side effects and discards the
// result.
type ExprStmt struct {
	Expr Expr
}

// PrintStmt evaluates an expression and prints its stringified value.
type PrintStmt struct {
	Expr Expr
}

// VarStmt declares a name, optionally initializing it. Init is nil for a
// bare `var x;`.
type VarStmt struct {
	Name token.Token
	Init Expr
}

// BlockStmt is a lexically scoped list of statements.
type BlockStmt struct {
	Statements []Stmt
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

// WhileStmt is a pretest loop.
type WhileStmt struct {
	Cond Expr
	Body Stmt
}

// BreakStmt exits the innermost enclosing loop.
type BreakStmt struct {
	Keyword token.Token
}

// FunctionStmt is a named function or method declaration.
type FunctionStmt struct {
	Name token.Token
	Fn   *FunctionLit
}

// ReturnStmt exits the enclosing function, optionally with a value.
type ReturnStmt struct {
	Keyword token.Token
	Value   Expr // nil for a bare `return;`
}

// ClassStmt declares a class, its optional superclass and its methods.
type ClassStmt struct {
	Name       token.Token
	Superclass *Variable // nil when the class has no superclass
	Methods    []*FunctionStmt
}

func (*ExprStmt) stmtNode()     {}
func (*PrintStmt) stmtNode()    {}
func (*VarStmt) stmtNode()      {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*BreakStmt) stmtNode()    {}
func (*FunctionStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*ClassStmt) stmtNode()    {}
