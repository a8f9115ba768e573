// Package token defines the lexical tokens shared by the lexer, parser,
// resolver and interpreter.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int8

const (
	// single-char punctuation
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Colon
	Star
	Amp
	Pipe
	Caret

	// one-or-two char
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	Slash
	PlusEqual
	MinusEqual
	AmpAmp
	PipePipe

	// literals
	Identifier
	String
	Number

	// keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Null
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	Break

	EOF
)

var names = map[Kind]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Comma: ",", Dot: ".", Minus: "-", Plus: "+", Semicolon: ";", Colon: ":",
	Star: "*", Amp: "&", Pipe: "|", Caret: "^",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=", Slash: "/",
	PlusEqual: "+=", MinusEqual: "-=", AmpAmp: "&&", PipePipe: "||",
	Identifier: "identifier", String: "string", Number: "number",
	And: "and", Class: "class", Else: "else", False: "false", Fun: "fun",
	For: "for", If: "if", Null: "null", Or: "or", Print: "print",
	Return: "return", Super: "super", This: "this", True: "true",
	Var: "var", While: "while", Break: "break", EOF: "EOF",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}

// Keywords maps a reserved lexeme to its keyword Kind.
var Keywords = map[string]Kind{
	"and": And, "class": Class, "else": Else, "false": False, "fun": Fun,
	"for": For, "if": If, "null": Null, "or": Or, "print": Print,
	"return": Return, "super": Super, "this": This, "true": True,
	"var": Var, "while": While, "break": Break,
}

// Token is an immutable lexical unit produced by the lexer.
//
// Literal only carries a parsed value for String and Number tokens; it is
// nil otherwise.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// IsEOF reports whether t is the sentinel end-of-file token.
func (t Token) IsEOF() bool {
	return t.Kind == EOF
}
