// Package eval walks the AST produced by pkg/parser and resolved by
// pkg/resolver, executing it directly rather than compiling to bytecode.
// Control flow that must escape a block (`return`, `break`) is modeled
// as a value returned up through every statement executor, the same
// idiom the teacher's Fn.Call used when it type-asserted a block's
// result against ReturnStmt, rather than by panicking.
package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/candlelang/candle/pkg/ast"
	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/resolver"
	"github.com/candlelang/candle/pkg/token"
)

// runtimeError is a Value-level operation that failed at runtime: a
// type mismatch, an undefined name, an arity mismatch, an undefined
// property. It carries the offending token so the sink can report a
// line, and unwinds through exec/eval as a plain Go error until Run
// catches it at the top.
type runtimeError struct {
	Token token.Token
	Msg   string
}

func (e *runtimeError) Error() string { return e.Msg }

func newRuntimeError(tok token.Token, format string, args ...any) error {
	return &runtimeError{Token: tok, Msg: fmt.Sprintf(format, args...)}
}

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
)

// ctrl is the value-level signal a statement executor returns to report
// a `return` or `break` that must unwind past it. Block, While and
// Function.Call all inspect it and decide whether to keep propagating.
type ctrl struct {
	kind  ctrlKind
	value Value
}

var noCtrl = ctrl{}

// Interpreter holds the mutable state of one execution: the global
// scope, the environment currently in effect, and the resolver's
// computed scope distances. A REPL keeps a single Interpreter alive
// across many calls to Run so that top-level state persists between
// input lines; a one-shot file run creates one and discards it.
type Interpreter struct {
	globals     *Environment
	env         *Environment
	resolutions resolver.Resolutions
	stdin       *bufio.Reader
	stdout      io.Writer
}

// New returns an interpreter with its native functions registered into
// a fresh global scope.
func New() *Interpreter {
	globals := NewEnvironment()
	defineNatives(globals)
	return &Interpreter{
		globals: globals,
		env:     globals,
		stdin:   newStdinReader(os.Stdin),
		stdout:  os.Stdout,
	}
}

// SetResolutions installs the scope-distance map computed by the
// resolver for the program about to run.
func (in *Interpreter) SetResolutions(r resolver.Resolutions) {
	in.resolutions = r
}

// SetIO redirects the interpreter's stdin/stdout, used by tests and
// embedders that don't want to share the process's own streams.
func (in *Interpreter) SetIO(stdin io.Reader, stdout io.Writer) {
	in.stdin = newStdinReader(stdin)
	in.stdout = stdout
}

// Run executes stmts in the current environment, reporting the first
// runtime error into sink and stopping there, matching the "abort after
// the first failing phase" rule the whole pipeline follows.
func (in *Interpreter) Run(stmts []ast.Stmt, sink *diag.Sink) {
	for _, s := range stmts {
		// A bare `break` at the top level is rejected by the parser and a
		// bare `return` by the resolver before Run is ever reached, so the ctrl result of a
		// top-level statement is always ctrlNone and can be discarded.
		if _, err := in.exec(s); err != nil {
			reportRuntimeError(sink, err)
			return
		}
	}
}

func reportRuntimeError(sink *diag.Sink, err error) {
	if rerr, ok := err.(*runtimeError); ok {
		sink.Runtime(rerr.Token, "%s", rerr.Msg)
		return
	}
	sink.Runtime(token.Token{}, "%s", err.Error())
}

func (in *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (ctrl, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()
	for _, s := range stmts {
		c, err := in.exec(s)
		if err != nil {
			return noCtrl, err
		}
		if c.kind != ctrlNone {
			return c, nil
		}
	}
	return noCtrl, nil
}

func (in *Interpreter) exec(s ast.Stmt) (ctrl, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := in.eval(n.Expr)
		return noCtrl, err

	case *ast.PrintStmt:
		v, err := in.eval(n.Expr)
		if err != nil {
			return noCtrl, err
		}
		fmt.Fprintln(in.stdout, stringify(v))
		return noCtrl, nil

	case *ast.VarStmt:
		var v Value = Nil{}
		if n.Init != nil {
			var err error
			v, err = in.eval(n.Init)
			if err != nil {
				return noCtrl, err
			}
		}
		in.env.Define(n.Name.Lexeme, v)
		return noCtrl, nil

	case *ast.BlockStmt:
		return in.execBlock(n.Statements, NewEnclosed(in.env))

	case *ast.IfStmt:
		cond, err := in.eval(n.Cond)
		if err != nil {
			return noCtrl, err
		}
		if isTruthy(cond) {
			return in.exec(n.Then)
		}
		if n.Else != nil {
			return in.exec(n.Else)
		}
		return noCtrl, nil

	case *ast.WhileStmt:
		for {
			cond, err := in.eval(n.Cond)
			if err != nil {
				return noCtrl, err
			}
			if !isTruthy(cond) {
				return noCtrl, nil
			}
			c, err := in.exec(n.Body)
			if err != nil {
				return noCtrl, err
			}
			if c.kind == ctrlBreak {
				return noCtrl, nil
			}
			if c.kind == ctrlReturn {
				return c, nil
			}
		}

	case *ast.BreakStmt:
		return ctrl{kind: ctrlBreak}, nil

	case *ast.FunctionStmt:
		fn := &Function{Name: n.Name.Lexeme, Decl: n.Fn, Closure: in.env}
		in.env.Define(n.Name.Lexeme, fn)
		return noCtrl, nil

	case *ast.ReturnStmt:
		var v Value = Nil{}
		if n.Value != nil {
			var err error
			v, err = in.eval(n.Value)
			if err != nil {
				return noCtrl, err
			}
		}
		return ctrl{kind: ctrlReturn, value: v}, nil

	case *ast.ClassStmt:
		return in.execClassStmt(n)

	default:
		panic("eval: unhandled statement type")
	}
}

func (in *Interpreter) execClassStmt(n *ast.ClassStmt) (ctrl, error) {
	var super *Class
	if n.Superclass != nil {
		v, err := in.lookupVariable(n.Superclass.Name, n.Superclass.ID)
		if err != nil {
			return noCtrl, err
		}
		sc, ok := v.(*Class)
		if !ok {
			return noCtrl, newRuntimeError(n.Superclass.Name, "Superclass must be a class.")
		}
		super = sc
	}

	in.env.Define(n.Name.Lexeme, Nil{})

	methods := map[string]*Function{}
	for _, m := range n.Methods {
		methods[m.Name.Lexeme] = &Function{
			Name:          m.Name.Lexeme,
			Decl:          m.Fn,
			Closure:       in.env,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &Class{Name: n.Name.Lexeme, Superclass: super, Methods: methods}
	in.env.Assign(n.Name.Lexeme, class)
	return noCtrl, nil
}

func (in *Interpreter) eval(e ast.Expr) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Value == nil {
			return Nil{}, nil
		}
		return n.Value, nil

	case *ast.Variable:
		return in.lookupVariable(n.Name, n.ID)

	case *ast.Grouping:
		return in.eval(n.Expr)

	case *ast.Unary:
		return in.evalUnary(n)

	case *ast.Binary:
		return in.evalBinary(n)

	case *ast.Logical:
		return in.evalLogical(n)

	case *ast.Assign:
		return in.evalAssign(n)

	case *ast.Call:
		return in.evalCall(n)

	case *ast.FunctionLit:
		return &Function{Decl: n, Closure: in.env}, nil

	case *ast.Get:
		obj, err := in.eval(n.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, newRuntimeError(n.Name, "Only instances have properties.")
		}
		if v, ok := inst.Fields[n.Name.Lexeme]; ok {
			return v, nil
		}
		if m, ok := inst.Class.FindMethod(n.Name.Lexeme); ok {
			return m.Bind(inst), nil
		}
		return nil, newRuntimeError(n.Name, "Property '%s' is undefined.", n.Name.Lexeme)

	case *ast.Set:
		return in.evalSet(n)

	case *ast.This:
		return in.lookupVariable(n.Keyword, n.ID)

	default:
		panic("eval: unhandled expression type")
	}
}

func (in *Interpreter) lookupVariable(name token.Token, id int64) (Value, error) {
	if distance, ok := in.resolutions[id]; ok {
		return in.env.GetAt(distance, name.Lexeme), nil
	}
	if v, ok := in.globals.Get(name.Lexeme); ok {
		return v, nil
	}
	return nil, newRuntimeError(name, "%s is undefined.", name.Lexeme)
}

func (in *Interpreter) assignVariable(name token.Token, id int64, v Value) error {
	if distance, ok := in.resolutions[id]; ok {
		in.env.AssignAt(distance, name.Lexeme, v)
		return nil
	}
	if !in.globals.Assign(name.Lexeme, v) {
		return newRuntimeError(name, "%s is undefined.", name.Lexeme)
	}
	return nil
}

func (in *Interpreter) evalAssign(n *ast.Assign) (Value, error) {
	v, err := in.eval(n.Value)
	if err != nil {
		return nil, err
	}
	if n.Op.Kind != token.Equal {
		current, err := in.lookupVariable(n.Name, n.ID)
		if err != nil {
			return nil, err
		}
		v, err = applyCompound(n.Op, n.Name, current, v)
		if err != nil {
			return nil, err
		}
	}
	if err := in.assignVariable(n.Name, n.ID, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (in *Interpreter) evalSet(n *ast.Set) (Value, error) {
	obj, err := in.eval(n.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(n.Name, "Only instances have fields.")
	}
	v, err := in.eval(n.Value)
	if err != nil {
		return nil, err
	}
	// n.Op is guaranteed to be Equal here: the resolver rejects any
	// other operator on a property target before the interpreter runs.
	inst.Fields[n.Name.Lexeme] = v
	return v, nil
}

// applyCompound implements the read-modify-write step of `+=`/`-=`,
// which requires numeric operands on both sides regardless of the
// string-concatenation form plain `+` allows.
func applyCompound(op token.Token, name token.Token, current, delta Value) (Value, error) {
	l, r, err := numberOperands(name, current, delta)
	if err != nil {
		return nil, err
	}
	switch op.Kind {
	case token.PlusEqual:
		return l + r, nil
	case token.MinusEqual:
		return l - r, nil
	default:
		panic("eval: unhandled compound assignment operator")
	}
}

func (in *Interpreter) evalLogical(n *ast.Logical) (Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	if n.Op.Kind == token.PipePipe || n.Op.Kind == token.Or {
		if isTruthy(left) {
			return left, nil
		}
	} else {
		if !isTruthy(left) {
			return left, nil
		}
	}
	return in.eval(n.Right)
}

func (in *Interpreter) evalUnary(n *ast.Unary) (Value, error) {
	right, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Kind {
	case token.Minus:
		f, ok := right.(float64)
		if !ok {
			return nil, newRuntimeError(n.Op, "Operand must be a number.")
		}
		return -f, nil
	case token.Bang:
		return !isTruthy(right), nil
	default:
		panic("eval: unhandled unary operator")
	}
}

func (in *Interpreter) evalCall(n *ast.Call) (Value, error) {
	callee, err := in.eval(n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	fn, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError(n.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, newRuntimeError(n.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return fn.Call(in, args)
}

func (in *Interpreter) evalBinary(n *ast.Binary) (Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Kind {
	case token.Plus:
		return addValues(n.Op, left, right)
	case token.Minus:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l - r, nil
	case token.Star:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l * r, nil
	case token.Slash:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l / r, nil
	case token.Amp:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return float64(int32(l) & int32(r)), nil
	case token.Pipe:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return float64(int32(l) | int32(r)), nil
	case token.Caret:
		l, r, err := numberOperands(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		return float64(int32(l) ^ int32(r)), nil
	case token.Greater:
		return compareValues(n.Op, left, right)
	case token.GreaterEqual:
		return compareValues(n.Op, left, right)
	case token.Less:
		return compareValues(n.Op, left, right)
	case token.LessEqual:
		return compareValues(n.Op, left, right)
	case token.EqualEqual:
		return isEqual(left, right), nil
	case token.BangEqual:
		return !isEqual(left, right), nil
	default:
		panic("eval: unhandled binary operator")
	}
}

// addValues implements `+`: numeric addition when both operands are
// numbers, otherwise string concatenation with the right operand
// stringified when the left operand is a string.
func addValues(op token.Token, left, right Value) (Value, error) {
	if l, ok := left.(float64); ok {
		if r, ok := right.(float64); ok {
			return l + r, nil
		}
	}
	if l, ok := left.(string); ok {
		return l + stringify(right), nil
	}
	return nil, newRuntimeError(op, "Invalid operand(s) for '+'.")
}

func numberOperands(op token.Token, left, right Value) (float64, float64, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, newRuntimeError(op, "Operands must be a numbers.")
	}
	return l, r, nil
}

// compareValues implements the four relational operators, which accept
// either two numbers or two strings.
func compareValues(op token.Token, left, right Value) (Value, error) {
	if l, ok := left.(float64); ok {
		if r, ok := right.(float64); ok {
			return relate(op.Kind, l < r, l == r, l > r), nil
		}
	}
	if l, ok := left.(string); ok {
		if r, ok := right.(string); ok {
			return relate(op.Kind, l < r, l == r, l > r), nil
		}
	}
	return nil, newRuntimeError(op, "Both operands must be comparable to each other.")
}

func relate(kind token.Kind, less, equal, greater bool) bool {
	switch kind {
	case token.Less:
		return less
	case token.LessEqual:
		return less || equal
	case token.Greater:
		return greater
	case token.GreaterEqual:
		return greater || equal
	default:
		panic("eval: unhandled relational operator")
	}
}
