// Package parse implements the recursive-descent parser: tokens to a flat
// AST whose expressions are unresolved operator sequences.
package parse

import (
	"fmt"

	"pecco/ast"
	"pecco/report"
	"pecco/token"
)

// Parser is a recursive-descent parser over a materialized token slice.
// Comment tokens are transparently skipped at every lookahead/advance.
type Parser struct {
	path string
	rep  *report.Reporter

	all []token.Token // raw tokens, including comments
	idx int            // index into all
}

// New creates a Parser over toks (as produced by lex.Lexer.TokenizeAll).
func New(toks []token.Token, path string, rep *report.Reporter) *Parser {
	return &Parser{path: path, rep: rep, all: toks}
}

// ParseProgram parses a full top-level statement list, recovering from
// syntax errors by synchronizing and continuing, so the caller receives
// every diagnostic the source triggers in one pass.
func (p *Parser) ParseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEOF() {
		stmt := p.parseStmtRecovering()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// parseStmtRecovering parses one statement, catching a LocalCompileError
// raised anywhere inside it and synchronizing afterward so parsing can
// continue to accumulate further diagnostics.
func (p *Parser) parseStmtRecovering() ast.Stmt {
	var result ast.Stmt
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				if lce, ok := rec.(*report.LocalCompileError); ok {
					p.rep.Record(withPath(lce.Diag, p.path))
					p.synchronize()
					return
				}
				panic(rec)
			}
		}()
		result = p.parseStmt()
	}()
	return result
}

func withPath(d report.Diagnostic, path string) report.Diagnostic {
	d.Path = path
	return d
}

// synchronize skips tokens until a `;` (consumed), a `}` (preserved for the
// enclosing block), a statement-starter keyword, or EOF.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		t := p.peek()
		if t.IsPunctuation(";") {
			p.advance()
			return
		}
		if t.IsPunctuation("}") {
			return
		}
		if t.Kind == token.Keyword {
			switch t.Lexeme {
			case "let", "func", "if", "else", "return", "while", "operator":
				return
			}
		}
		p.advance()
	}
}

// --- token stream helpers -------------------------------------------------

func (p *Parser) raw(i int) token.Token {
	if i < len(p.all) {
		return p.all[i]
	}
	return token.Token{Kind: token.EOF}
}

// skipComments advances idx past any Comment tokens.
func (p *Parser) skipComments() {
	for p.idx < len(p.all) && p.all[p.idx].Kind == token.Comment {
		p.idx++
	}
}

func (p *Parser) peek() token.Token {
	p.skipComments()
	return p.raw(p.idx)
}

// peekAt looks n tokens ahead of the current position, skipping comments
// along the way.
func (p *Parser) peekAt(n int) token.Token {
	p.skipComments()
	i := p.idx
	seen := 0
	for {
		if i >= len(p.all) {
			return token.Token{Kind: token.EOF}
		}
		if p.all[i].Kind == token.Comment {
			i++
			continue
		}
		if seen == n {
			return p.all[i]
		}
		seen++
		i++
	}
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if t.Kind != token.EOF {
		p.idx++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.peek().Kind == token.EOF }

// lastNonCommentEndCol returns the end column of the token immediately
// before the current position, used to anchor "expected but missing"
// diagnostics to the end of the previous token rather than the next one.
func (p *Parser) lastNonCommentEndCol() (line, col int) {
	i := p.idx - 1
	for i >= 0 {
		if p.all[i].Kind != token.Comment {
			return p.all[i].Line, p.all[i].EndCol
		}
		i--
	}
	return 1, 1
}

func (p *Parser) errorAt(t token.Token, format string, args ...interface{}) {
	report.Raise("parse", sprintf(format, args...), t.Line, t.Col, report.WithEndCol(t.EndCol))
}

// errorMissing raises a diagnostic anchored to the end of the previous
// token, for "expected but missing" errors such as a missing semicolon.
func (p *Parser) errorMissing(format string, args ...interface{}) {
	line, col := p.lastNonCommentEndCol()
	report.Raise("parse", sprintf(format, args...), line, col)
}

func (p *Parser) expectPunct(ch string) token.Token {
	t := p.peek()
	if !t.IsPunctuation(ch) {
		p.errorMissing("expected '%s'", ch)
	}
	return p.advance()
}

func (p *Parser) expectKeyword(word string) token.Token {
	t := p.peek()
	if !t.IsKeyword(word) {
		p.errorMissing("expected '%s'", word)
	}
	return p.advance()
}

func (p *Parser) expectIdent() token.Token {
	t := p.peek()
	if t.Kind != token.Identifier {
		p.errorAt(t, "expected identifier")
	}
	return p.advance()
}

func span(start, end token.Token) ast.Span {
	return ast.Span{Line: start.Line, StartCol: start.Col, EndCol: end.EndCol}
}

func tokSpan(t token.Token) ast.Span {
	return ast.Span{Line: t.Line, StartCol: t.Col, EndCol: t.EndCol}
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
