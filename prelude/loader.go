// Package prelude embeds the built-in declarations loaded before any user
// source and exposes the one entry point that seeds a symbol table with
// them.
package prelude

import (
	_ "embed"

	"pecco/lex"
	"pecco/parse"
	"pecco/report"
	"pecco/sym"
)

//go:embed prelude.pec
var source string

// sourcePath is the diagnostic path attributed to any error inside the
// embedded prelude; such an error indicates a bug in this repository, not in
// user code, since the prelude never ships separately from the binary.
const sourcePath = "<prelude>"

// Load lexes, parses, and collects the embedded prelude into table, marking
// every inserted symbol with sym.Prelude origin. Reuses the same lexer,
// parser, and symbol-table builder the user's source goes through, just as
// the distilled loader contract requires; the only difference is the
// builder's prelude flag.
func Load(table *sym.SymbolTable, rep *report.Reporter) bool {
	before := rep.ErrorCount()

	toks := lex.New(source).TokenizeAll()
	if lex.ReportErrors(toks, rep) {
		return false
	}
	stmts := parse.New(toks, sourcePath, rep).ParseProgram()
	if rep.ErrorCount() != before {
		return false
	}

	sym.NewBuilder(rep, sourcePath).Collect(stmts, table, true)
	return rep.ErrorCount() == before
}
