package lexer

import (
	"reflect"
	"testing"

	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/token"
)

func scanKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	sink := diag.New()
	toks := Scan(src, sink)
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestScanEndsWithEOF(t *testing.T) {
	toks := Scan("var x = 1;", diag.New())
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("token stream must end with exactly one EOF token")
	}
	for _, tok := range toks[:len(toks)-1] {
		if tok.Kind == token.EOF {
			t.Fatal("EOF token must only appear once, at the end")
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	got := scanKinds(t, "(){},.;:*&|^!!====<<=>>=+=-=&&||/")
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Semicolon, token.Colon, token.Star,
		token.Amp, token.Pipe, token.Caret, token.Bang, token.BangEqual,
		token.EqualEqual, token.Equal, token.Less, token.LessEqual, token.Greater,
		token.GreaterEqual, token.PlusEqual, token.MinusEqual, token.AmpAmp,
		token.PipePipe, token.Slash, token.EOF,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	got := scanKinds(t, "var fun class this super and or hello_world2")
	want := []token.Kind{
		token.Var, token.Fun, token.Class, token.This, token.Super,
		token.And, token.Or, token.Identifier, token.EOF,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanStringLiteral(t *testing.T) {
	toks := Scan(`"hello, world"`, diag.New())
	if toks[0].Kind != token.String {
		t.Fatalf("expected String token, got %v", toks[0].Kind)
	}
	if toks[0].Literal.(string) != "hello, world" {
		t.Fatalf("literal = %q, want %q", toks[0].Literal, "hello, world")
	}
}

func TestScanUnterminatedStringReportsAndSkips(t *testing.T) {
	sink := diag.New()
	toks := Scan(`"never closes`, sink)
	if !sink.HasErrors() {
		t.Fatal("unterminated string should report a diagnostic")
	}
	if len(toks) != 1 || !toks[0].IsEOF() {
		t.Fatalf("unterminated string should not emit a token, got %v", toks)
	}
}

func TestScanNumberLiteral(t *testing.T) {
	toks := Scan("3.14", diag.New())
	if toks[0].Kind != token.Number {
		t.Fatalf("expected Number token, got %v", toks[0].Kind)
	}
	if toks[0].Literal.(float64) != 3.14 {
		t.Fatalf("literal = %v, want 3.14", toks[0].Literal)
	}
}

func TestScanCommentsAndWhitespaceIgnored(t *testing.T) {
	got := scanKinds(t, "1 // a trailing comment\n+ 2")
	want := []token.Kind{token.Number, token.Plus, token.Number, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanUnexpectedCharacterReportsAndContinues(t *testing.T) {
	sink := diag.New()
	toks := Scan("1 @ 2", sink)
	if !sink.HasErrors() {
		t.Fatal("unexpected character should report a diagnostic")
	}
	if !sink.HasKind(diag.Lexical) {
		t.Fatal("unexpected character should be a Lexical diagnostic")
	}
	want := []token.Kind{token.Number, token.Number, token.EOF}
	got := make([]token.Kind, len(toks))
	for i, tok := range toks {
		got[i] = tok.Kind
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v (scan should skip the bad char and continue)", got, want)
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	toks := Scan("1\n2\n\n3", diag.New())
	wantLines := []int{1, 2, 4}
	for i, want := range wantLines {
		if toks[i].Line != want {
			t.Errorf("token %d line = %d, want %d", i, toks[i].Line, want)
		}
	}
}
