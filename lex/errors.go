package lex

import (
	"pecco/report"
	"pecco/token"
)

// ReportErrors records a "lex" diagnostic for every token.Error token in
// toks and reports whether any were found. Callers should halt before
// parsing when this returns true, since an Error token's Lexeme is a
// fabricated diagnostic message, not real source text, and would otherwise
// surface as a misleading parse error instead of the lexical one.
func ReportErrors(toks []token.Token, rep *report.Reporter) bool {
	found := false
	for _, t := range toks {
		if t.Kind != token.Error {
			continue
		}
		found = true
		rep.Record(report.Diagnostic{
			Stage:       "lex",
			Message:     t.Lexeme,
			Line:        t.Line,
			Col:         t.Col,
			EndCol:      t.EndCol,
			ErrorOffset: t.ErrorOffset,
		})
	}
	return found
}
