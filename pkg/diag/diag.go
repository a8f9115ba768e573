// Package diag holds the diagnostic sink shared by the lexer, parser,
// resolver and interpreter. Every stage of the pipeline reports into the
// same Sink so the driver can apply a single "did anything go wrong"
// check between phases.
package diag

import (
	"fmt"

	"github.com/candlelang/candle/pkg/token"
)

// Kind classifies where in the pipeline a Diagnostic originated.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Static
	Runtime
)

// Diagnostic is a single reported error, formatted lazily by Error().
type Diagnostic struct {
	Kind    Kind
	Line    int
	Token   *token.Token // nil when the error isn't tied to a specific token
	Message string
}

// Error formats the diagnostic as "[Line N] Error[ at '<lexeme>'|' at
// end']: <message>", matching the wire format every stage must produce.
func (d Diagnostic) Error() string {
	where := ""
	if d.Token != nil {
		if d.Token.Kind == token.EOF {
			where = " at end"
		} else {
			where = fmt.Sprintf(" at '%s'", d.Token.Lexeme)
		}
	}
	return fmt.Sprintf("[Line %d] Error%s: %s", d.Line, where, d.Message)
}

// Sink accumulates diagnostics across one or more pipeline stages.
type Sink struct {
	diags []Diagnostic
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) add(kind Kind, line int, tok *token.Token, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{
		Kind:    kind,
		Line:    line,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	})
}

// Lexical records a lexical-analysis error at the given line.
func (s *Sink) Lexical(line int, format string, args ...any) {
	s.add(Lexical, line, nil, format, args...)
}

// Syntactic records a parse error tied to the offending token.
func (s *Sink) Syntactic(tok token.Token, format string, args ...any) {
	t := tok
	s.add(Syntactic, tok.Line, &t, format, args...)
}

// Static records a resolver (static-semantic) error tied to a token.
func (s *Sink) Static(tok token.Token, format string, args ...any) {
	t := tok
	s.add(Static, tok.Line, &t, format, args...)
}

// Runtime records a runtime error tied to a token.
func (s *Sink) Runtime(tok token.Token, format string, args ...any) {
	t := tok
	s.add(Runtime, tok.Line, &t, format, args...)
}

// HasErrors reports whether any diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	return len(s.diags) > 0
}

// HasKind reports whether any recorded diagnostic has the given kind.
func (s *Sink) HasKind(kind Kind) bool {
	for _, d := range s.diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.diags
}

// Reset clears the sink so it can be reused.
func (s *Sink) Reset() {
	s.diags = nil
}
