package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable tree of node to w, in the same indented
// style the teacher's PrettyPrintAst used for debugging. It is not wired
// into the CLI (spec's external interface has no debug flag); it exists
// so the parser's output can be inspected directly from tests.
func Fprint(w io.Writer, node any) {
	fprint(w, node, 0)
}

func fprint(w io.Writer, node any, indent int) {
	if indent == 0 {
		fmt.Fprint(w, strings.Repeat(" ", indent))
	} else {
		fmt.Fprint(w, strings.Repeat(" ", indent-1)+"|"+" ")
	}
	const step = 3
	switch n := node.(type) {
	case nil:
		fmt.Fprint(w, "<nil>")
	case *Literal:
		fmt.Fprintf(w, "Literal: %#v", n.Value)
	case *Variable:
		fmt.Fprintf(w, "Variable: %s", n.Name.Lexeme)
	case *Grouping:
		fmt.Fprint(w, "Grouping\n")
		fprint(w, n.Expr, indent+step)
	case *Unary:
		fmt.Fprintf(w, "Unary: %s\n", n.Op.Lexeme)
		fprint(w, n.Right, indent+step)
	case *Binary:
		fmt.Fprintf(w, "Binary: %s\n", n.Op.Lexeme)
		fprint(w, n.Left, indent+step)
		fprint(w, n.Right, indent+step)
	case *Logical:
		fmt.Fprintf(w, "Logical: %s\n", n.Op.Lexeme)
		fprint(w, n.Left, indent+step)
		fprint(w, n.Right, indent+step)
	case *Assign:
		fmt.Fprintf(w, "Assign %s %s:\n", n.Name.Lexeme, n.Op.Lexeme)
		fprint(w, n.Value, indent+step)
	case *Call:
		fmt.Fprint(w, "Call:\n")
		fprint(w, n.Callee, indent+step)
		for _, arg := range n.Args {
			fprint(w, arg, indent+step)
		}
	case *FunctionLit:
		fmt.Fprintf(w, "FunctionLit(%d params):\n", len(n.Params))
		for _, stmt := range n.Body {
			fprint(w, stmt, indent+step)
		}
	case *Get:
		fmt.Fprintf(w, "Get .%s:\n", n.Name.Lexeme)
		fprint(w, n.Object, indent+step)
	case *Set:
		fmt.Fprintf(w, "Set .%s:\n", n.Name.Lexeme)
		fprint(w, n.Object, indent+step)
		fprint(w, n.Value, indent+step)
	case *This:
		fmt.Fprint(w, "This")
	case *ExprStmt:
		fmt.Fprint(w, "ExprStmt:\n")
		fprint(w, n.Expr, indent+step)
	case *PrintStmt:
		fmt.Fprint(w, "PrintStmt:\n")
		fprint(w, n.Expr, indent+step)
	case *VarStmt:
		fmt.Fprintf(w, "VarStmt %s:\n", n.Name.Lexeme)
		fprint(w, n.Init, indent+step)
	case *BlockStmt:
		fmt.Fprint(w, "Block:\n")
		for _, stmt := range n.Statements {
			fprint(w, stmt, indent+step)
		}
	case *IfStmt:
		fmt.Fprint(w, "If:\n")
		fprint(w, n.Cond, indent+step)
		fprint(w, n.Then, indent+step)
		if n.Else != nil {
			fprint(w, n.Else, indent+step)
		}
	case *WhileStmt:
		fmt.Fprint(w, "While:\n")
		fprint(w, n.Cond, indent+step)
		fprint(w, n.Body, indent+step)
	case *BreakStmt:
		fmt.Fprint(w, "Break")
	case *FunctionStmt:
		fmt.Fprintf(w, "FunctionStmt %s:\n", n.Name.Lexeme)
		fprint(w, n.Fn, indent+step)
	case *ReturnStmt:
		fmt.Fprint(w, "Return:\n")
		fprint(w, n.Value, indent+step)
	case *ClassStmt:
		fmt.Fprintf(w, "ClassStmt %s:\n", n.Name.Lexeme)
		for _, m := range n.Methods {
			fprint(w, m, indent+step)
		}
	default:
		fmt.Fprintf(w, "<unknown node %T>", n)
	}
	fmt.Fprint(w, "\n")
}
