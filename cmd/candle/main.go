// Command candle runs candle source files and provides an interactive
// REPL, following the driver shape of the teacher's cmd/glox/glox.go:
// a thin main that dispatches to runFile or runRepl, both funneling
// through one run helper that drives the lexer, parser, resolver and
// interpreter in sequence.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/candlelang/candle/pkg/diag"
	"github.com/candlelang/candle/pkg/eval"
	"github.com/candlelang/candle/pkg/lexer"
	"github.com/candlelang/candle/pkg/parser"
	"github.com/candlelang/candle/pkg/resolver"
)

const historyFile = ".candle_history"

// exit codes, per the CLI contract: 1 for everything else (including a
// successful run, and any run reaching main without a reported error),
// 2 for a lexical/syntactic/static diagnostic, 3 for a reported runtime
// error.
const (
	exitDefault = 1
	exitStatic  = 2
	exitRuntime = 3
)

func main() {
	args := os.Args[1:]
	switch len(args) {
	case 0:
		runRepl()
	case 1:
		os.Exit(runFile(args[0]))
	default:
		fmt.Fprintln(os.Stderr, "Too many arguments passed.")
		os.Exit(exitDefault)
	}
}

func runFile(path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %s\n", path, err)
		return exitDefault
	}
	return run(string(content), eval.New())
}

// run drives one program through the full pipeline and returns the
// process exit code the CLI contract assigns to the outcome.
func run(source string, interp *eval.Interpreter) int {
	sink := diag.New()

	toks := lexer.Scan(source, sink)
	if sink.HasErrors() {
		printDiagnostics(sink)
		return exitStatic
	}

	stmts := parser.Parse(toks, sink)
	if sink.HasErrors() {
		printDiagnostics(sink)
		return exitStatic
	}

	resolutions := resolver.Resolve(stmts, sink)
	if sink.HasErrors() {
		printDiagnostics(sink)
		return exitStatic
	}

	interp.SetResolutions(resolutions)
	interp.Run(stmts, sink)
	if sink.HasErrors() {
		printDiagnostics(sink)
		return exitRuntime
	}

	return exitDefault
}

func printDiagnostics(sink *diag.Sink) {
	for _, d := range sink.All() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}

func runRepl() {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	interp := eval.New()

	for {
		line, err := ln.Prompt("> ")
		if err != nil { // io.EOF on Ctrl+D
			fmt.Println()
			return
		}
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		sink := diag.New()
		toks := lexer.Scan(line, sink)
		if sink.HasErrors() {
			printDiagnostics(sink)
			continue
		}
		stmts := parser.Parse(toks, sink)
		if sink.HasErrors() {
			printDiagnostics(sink)
			continue
		}
		resolutions := resolver.Resolve(stmts, sink)
		if sink.HasErrors() {
			printDiagnostics(sink)
			continue
		}
		interp.SetResolutions(resolutions)
		interp.Run(stmts, sink)
		if sink.HasErrors() {
			printDiagnostics(sink)
		}
	}
}
