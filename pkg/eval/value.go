package eval

import (
	"fmt"
	"strconv"

	"github.com/candlelang/candle/pkg/ast"
)

// Value is any runtime value: Nil, bool, float64, string, or one of the
// Callable/Instance types below. There is no separate wrapper type, in
// the same style as the teacher's own eval-node value family.
type Value any

// Nil is the language's null value. It is a distinct type from Go's nil
// interface so that a Value holding "no value" can still be type-switched
// like every other Value.
type Nil struct{}

func (Nil) String() string { return "null" }

// Callable is implemented by every value that can appear as the callee
// of a Call expression: user functions, native functions and classes
// (whose call constructs an instance).
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// Function is a user-defined function or method, closing over the
// environment active at its declaration site.
type Function struct {
	Name          string
	Decl          *ast.FunctionLit
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Arity() int { return len(f.Decl.Params) }

// Bind returns a copy of f whose closure additionally binds "this" to
// inst, used when a method is looked up off an instance via Get.
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnclosed(f.Closure)
	env.Define("this", inst)
	return &Function{Name: f.Name, Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnclosed(f.Closure)
	for i, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[i])
	}
	c, err := in.execBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if f.IsInitializer {
		this, _ := f.Closure.Get("this")
		return this, nil
	}
	if c.kind == ctrlReturn {
		return c.value, nil
	}
	return Nil{}, nil
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<anonymous>"
	}
	return fmt.Sprintf("<fun %s>", f.Name)
}

// NativeFunction wraps a Go function as a callable value, for the small
// set of builtins registered into globals.
type NativeFunction struct {
	Name string
	Fn   func(in *Interpreter, args []Value) (Value, error)
	Arg  int
}

func (n *NativeFunction) Arity() int { return n.Arg }

func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.Fn(in, args)
}

func (n *NativeFunction) String() string { return fmt.Sprintf("<native fun %s>", n.Name) }

// Class is a runtime class value: a name, an optional superclass for
// method-lookup fallback, and its own methods. There is no `super`
// expression; a subclass reaches an overridden method only by never
// having declared its own.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

// FindMethod looks up name on c, falling back to the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	inst := &Instance{Class: c, Fields: map[string]Value{}}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(inst).Call(in, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (c *Class) String() string { return c.Name }

// Instance is an object created by calling a Class. Fields shadow
// methods of the same name when the interpreter evaluates a Get.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) String() string { return fmt.Sprintf("<%s> instance", i.Class.Name) }

// isTruthy implements the language's truthiness rule: false, null and
// the number zero are falsey; everything else is truthy.
func isTruthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// isEqual implements value equality. Values of different kinds are
// never equal; instances, functions and classes compare by identity.
func isEqual(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	default:
		return a == b
	}
}

// stringify renders a Value the way `print` and string concatenation do.
func stringify(v Value) string {
	switch t := v.(type) {
	case Nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
