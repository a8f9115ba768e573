// Package parser turns a token stream into a statement list by recursive
// descent, following the precedence table in spec section 4.2. It never
// stops at the first error: on a parse error it synchronizes to the next
// probable statement boundary and keeps going, so a single run can report
// more than one syntax error.
package parser

import (
	"github.com/candlelang/candle/pkg/ast"
	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/token"
)

const maxArity = 255

// parseError is the local sentinel thrown to unwind to the nearest
// synchronize point; it is never returned to the caller of Parse.
type parseError struct{}

func (parseError) Error() string { return "parse error" }

type parser struct {
	toks    []token.Token
	pos     int
	sink    *diag.Sink
	loopDep int
}

// Parse consumes every token in toks and returns the parsed statement
// list. Statements that fail to parse are simply absent from the result;
// diagnostics land in sink.
func Parse(toks []token.Token, sink *diag.Sink) []ast.Stmt {
	p := &parser{toks: toks, sink: sink}
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt := p.declarationRecovered()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *parser) declarationRecovered() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				stmt = nil
				return
			}
			panic(r)
		}
	}()
	return p.declaration()
}

func (p *parser) declaration() ast.Stmt {
	switch {
	case p.check(token.Var):
		p.advance()
		return p.varDecl()
	case p.check(token.Class):
		p.advance()
		return p.classDecl()
	case p.check(token.Fun) && p.checkNext(token.Identifier):
		p.advance()
		return p.funDecl("function")
	default:
		return p.statement()
	}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name.")
	var init ast.Expr
	if p.matchTok(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Name: name, Init: init}
}

func (p *parser) classDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect class name.")
	var super *ast.Variable
	if p.matchTok(token.Less) {
		superName := p.consume(token.Identifier, "Expect superclass name.")
		super = &ast.Variable{Name: superName, ID: ast.NewID()}
	}
	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.FunctionStmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.funDecl("method").(*ast.FunctionStmt))
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")
	return &ast.ClassStmt{Name: name, Superclass: super, Methods: methods}
}

// funDecl parses `IDENT(...) { ... }`. kind is "function" (statement
// level, preceded by `fun`) or "method" (inside a class body, no `fun`).
func (p *parser) funDecl(kind string) ast.Stmt {
	name := p.consume(token.Identifier, "Expect "+kind+" name.")
	fn := p.functionBody(kind)
	return &ast.FunctionStmt{Name: name, Fn: fn}
}

func (p *parser) functionBody(kind string) *ast.FunctionLit {
	p.consume(token.LeftParen, "Expect '(' after "+kind+" name.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArity {
				p.errorAt(p.peek(), "Can't have more than %d parameters.", maxArity)
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.matchTok(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before "+kind+" body.")
	body := p.block()
	return &ast.FunctionLit{Params: params, Body: body}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.matchTok(token.If):
		return p.ifStmt()
	case p.matchTok(token.While):
		return p.whileStmt()
	case p.matchTok(token.For):
		return p.forStmt()
	case p.matchTok(token.Return):
		return p.returnStmt()
	case p.matchTok(token.Break):
		return p.breakStmt()
	case p.matchTok(token.Print):
		return p.printStmt()
	case p.matchTok(token.LeftBrace):
		return &ast.BlockStmt{Statements: p.block()}
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		stmt := p.declarationRecovered()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var els ast.Stmt
	if p.matchTok(token.Else) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	p.loopDep++
	body := p.statement()
	p.loopDep--
	return &ast.WhileStmt{Cond: cond, Body: body}
}

// forStmt desugars `for (init; cond; incr) body` into:
//
//	{ init; while (cond-or-true) { body; incr; } }
func (p *parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.matchTok(token.Semicolon):
		init = nil
	case p.check(token.Var):
		p.advance()
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	p.loopDep++
	body := p.statement()
	p.loopDep--

	if incr != nil {
		body = &ast.BlockStmt{Statements: []ast.Stmt{body, &ast.ExprStmt{Expr: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	loop := &ast.WhileStmt{Cond: cond, Body: body}

	if init == nil {
		return loop
	}
	return &ast.BlockStmt{Statements: []ast.Stmt{init, loop}}
}

func (p *parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *parser) breakStmt() ast.Stmt {
	keyword := p.previous()
	if p.loopDep == 0 {
		p.errorAt(keyword, "'break' must be inside of a loop body.")
	}
	p.consume(token.Semicolon, "Expect ';' after 'break'.")
	return &ast.BreakStmt{Keyword: keyword}
}

func (p *parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Expr: expr}
}

func (p *parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExprStmt{Expr: expr}
}

// --- expressions, lowest to highest precedence ---

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.check(token.Equal) || p.check(token.PlusEqual) || p.check(token.MinusEqual) {
		op := p.advance()
		value := p.assignment()
		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Op: op, Value: value, ID: ast.NewID()}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Op: op, Value: value}
		default:
			p.errorAt(op, "Invalid assignment target.")
			return expr
		}
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.check(token.Or) || p.check(token.PipePipe) {
		op := p.advance()
		right := p.and()
		expr = &ast.Logical{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.bitwise()
	for p.check(token.And) || p.check(token.AmpAmp) {
		op := p.advance()
		right := p.bitwise()
		expr = &ast.Logical{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) bitwise() ast.Expr {
	expr := p.equality()
	for p.check(token.Amp) || p.check(token.Pipe) || p.check(token.Caret) {
		op := p.advance()
		right := p.equality()
		expr = &ast.Binary{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.check(token.EqualEqual) || p.check(token.BangEqual) {
		op := p.advance()
		right := p.comparison()
		expr = &ast.Binary{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.addition()
	for p.check(token.Less) || p.check(token.LessEqual) || p.check(token.Greater) || p.check(token.GreaterEqual) {
		op := p.advance()
		right := p.addition()
		expr = &ast.Binary{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) addition() ast.Expr {
	expr := p.multiplication()
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right := p.multiplication()
		expr = &ast.Binary{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) multiplication() ast.Expr {
	expr := p.unary()
	for p.check(token.Star) || p.check(token.Slash) {
		op := p.advance()
		right := p.unary()
		expr = &ast.Binary{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.check(token.Bang) || p.check(token.Minus) {
		op := p.advance()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.matchTok(token.LeftParen):
			expr = p.finishCall(expr)
		case p.matchTok(token.Dot):
			name := p.consume(token.Identifier, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArity {
				p.errorAt(p.peek(), "Can't have more than %d arguments.", maxArity)
			}
			args = append(args, p.expression())
			if !p.matchTok(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Args: args, Paren: paren}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.matchTok(token.False):
		return &ast.Literal{Value: false}
	case p.matchTok(token.True):
		return &ast.Literal{Value: true}
	case p.matchTok(token.Null):
		return &ast.Literal{Value: nil}
	case p.matchTok(token.Number):
		return &ast.Literal{Value: p.previous().Literal.(float64)}
	case p.matchTok(token.String):
		return &ast.Literal{Value: p.previous().Literal.(string)}
	case p.matchTok(token.This):
		return &ast.This{Keyword: p.previous(), ID: ast.NewID()}
	case p.matchTok(token.Identifier):
		return &ast.Variable{Name: p.previous(), ID: ast.NewID()}
	case p.matchTok(token.Fun):
		return p.functionBody("function")
	case p.matchTok(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	default:
		p.errorAt(p.peek(), "Expect expression.")
		panic(parseError{})
	}
}

// --- token stream helpers ---

func (p *parser) atEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) previous() token.Token {
	return p.toks[p.pos-1]
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(kind token.Kind) bool {
	return !p.atEnd() && p.peek().Kind == kind
}

func (p *parser) checkNext(kind token.Kind) bool {
	return p.peekAt(1).Kind == kind
}

func (p *parser) matchTok(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorAt(p.peek(), "%s", message)
	panic(parseError{})
}

func (p *parser) errorAt(tok token.Token, format string, args ...any) {
	p.sink.Syntactic(tok, format, args...)
}

func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
