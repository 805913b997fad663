package parse

import (
	"pecco/ast"
	"pecco/token"
)

// parseExpr parses one expression as a (possibly single-item) operator
// sequence, per the flat-alternation algorithm: the parser does not resolve
// precedence, it only records the alternation of operands and operator
// symbols for the resolver to disambiguate later.
func (p *Parser) parseExpr() ast.Expr {
	start := p.peek()
	var items []ast.SeqItem
	lastWasOperand := false

	for {
		t := p.peek()

		if t.Kind == token.Operator {
			items = append(items, ast.SeqItem{Op: t.Lexeme, OpSpan: tokSpan(t)})
			p.advance()
			lastWasOperand = false
			continue
		}

		if p.startsPrimary(t) {
			if lastWasOperand {
				break
			}
			operand := p.parsePrimary()
			items = append(items, ast.SeqItem{Operand: operand})
			lastWasOperand = true
			continue
		}

		break
	}

	if len(items) == 0 {
		p.errorAt(start, "expected an expression")
	}

	if len(items) == 1 && items[0].Operand != nil {
		return items[0].Operand
	}

	end := p.all[p.idx-1]
	return ast.NewOperatorSeq(items, span(start, end))
}

func (p *Parser) startsPrimary(t token.Token) bool {
	switch t.Kind {
	case token.Integer, token.Float, token.String, token.Identifier:
		return true
	case token.Keyword:
		return t.Lexeme == "true" || t.Lexeme == "false"
	case token.Punctuation:
		return t.Lexeme == "("
	}
	return false
}

// parsePrimary parses a single primary expression: a literal, an
// identifier (optionally followed by a call-argument list), or a
// parenthesized sub-expression.
func (p *Parser) parsePrimary() ast.Expr {
	t := p.peek()

	switch t.Kind {
	case token.Integer:
		p.advance()
		return ast.NewIntLit(t.Lexeme, tokSpan(t))
	case token.Float:
		p.advance()
		return ast.NewFloatLit(t.Lexeme, tokSpan(t))
	case token.String:
		p.advance()
		return ast.NewStringLit(t.Lexeme, tokSpan(t))
	case token.Keyword:
		if t.Lexeme == "true" || t.Lexeme == "false" {
			p.advance()
			return ast.NewBoolLit(t.Lexeme == "true", tokSpan(t))
		}
	case token.Identifier:
		p.advance()
		ident := ast.NewIdent(t.Lexeme, tokSpan(t))
		if p.peek().IsPunctuation("(") {
			return p.parseCallSuffix(ident, t)
		}
		return ident
	case token.Punctuation:
		if t.Lexeme == "(" {
			p.advance()
			inner := p.parseExpr()
			end := p.expectPunct(")")
			_ = end
			return inner
		}
	}

	p.errorAt(t, "expected an expression")
	return nil
}

// parseCallSuffix parses the `( args )` suffix after a callee expression.
// Trailing commas are disallowed; an empty argument list is allowed.
func (p *Parser) parseCallSuffix(callee ast.Expr, calleeTok token.Token) ast.Expr {
	p.expectPunct("(")
	var args []ast.Expr
	for !p.peek().IsPunctuation(")") {
		if len(args) > 0 {
			p.expectPunct(",")
		}
		args = append(args, p.parseExpr())
	}
	end := p.expectPunct(")")
	return ast.NewCall(callee, args, span(calleeTok, end))
}
