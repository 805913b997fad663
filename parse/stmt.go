package parse

import (
	"pecco/ast"
	"pecco/token"
)

// parseStmt dispatches on the current token's keyword, falling back to an
// expression-statement.
func (p *Parser) parseStmt() ast.Stmt {
	t := p.peek()
	if t.Kind == token.Keyword {
		switch t.Lexeme {
		case "let":
			return p.parseLet()
		case "func":
			return p.parseFuncDecl()
		case "operator":
			return p.parseOperatorDecl()
		case "if":
			return p.parseIf()
		case "return":
			return p.parseReturn()
		case "while":
			return p.parseWhile()
		}
	}
	if t.IsPunctuation("{") {
		return p.parseBlock()
	}
	return p.parseExprStmt()
}

// parseOptionalType parses `: TYPE` if present, returning "" otherwise.
func (p *Parser) parseOptionalType() string {
	if p.peek().IsPunctuation(":") {
		p.advance()
		return p.expectIdent().Lexeme
	}
	return ""
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.expectKeyword("let")
	name := p.expectIdent()
	typeName := p.parseOptionalType()
	if !p.peek().IsOperator("=") {
		p.errorMissing("expected '='")
	}
	p.advance()
	init := p.parseExpr()
	end := p.expectPunct(";")
	return ast.NewLet(name.Lexeme, typeName, init, span(start, end))
}

func (p *Parser) parseParams() []ast.Param {
	p.expectPunct("(")
	var params []ast.Param
	for !p.peek().IsPunctuation(")") {
		if len(params) > 0 {
			p.expectPunct(",")
		}
		nameTok := p.expectIdent()
		typeName := p.parseOptionalType()
		params = append(params, ast.Param{Name: nameTok.Lexeme, TypeName: typeName, Span: tokSpan(nameTok)})
	}
	p.expectPunct(")")
	return params
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	start := p.expectKeyword("func")
	name := p.expectIdent()
	params := p.parseParams()
	returnType := p.parseOptionalType()

	if p.peek().IsPunctuation(";") {
		end := p.advance()
		return ast.NewFuncDecl(name.Lexeme, params, returnType, nil, span(start, end))
	}

	body := p.parseBlockRaw()
	return ast.NewFuncDecl(name.Lexeme, params, returnType, body,
		ast.Span{Line: start.Line, StartCol: start.Col, EndCol: body.Span().EndCol})
}

func (p *Parser) parseOperatorDecl() ast.Stmt {
	start := p.expectKeyword("operator")

	var pos ast.Position
	posTok := p.peek()
	switch {
	case posTok.IsKeyword("prefix"):
		pos = ast.Prefix
		p.advance()
	case posTok.IsKeyword("infix"):
		pos = ast.Infix
		p.advance()
	case posTok.IsKeyword("postfix"):
		pos = ast.Postfix
		p.advance()
	default:
		p.errorAt(posTok, "expected 'prefix', 'infix', or 'postfix'")
	}

	opTok := p.peek()
	if opTok.Kind != token.Operator {
		p.errorAt(opTok, "expected an operator symbol")
	}
	p.advance()

	params := p.parseParams()

	switch pos {
	case ast.Prefix, ast.Postfix:
		if len(params) != 1 {
			p.errorAt(opTok, "%s operator must declare exactly one parameter", pos)
		}
	case ast.Infix:
		if len(params) != 2 {
			p.errorAt(opTok, "infix operator must declare exactly two parameters")
		}
	}

	p.expectPunct(":")
	returnType := p.expectIdent().Lexeme

	prec := 0
	assoc := ast.AssocLeft
	if p.peek().IsKeyword("prec") {
		if pos != ast.Infix {
			p.errorAt(p.peek(), "'prec' is only valid on infix operators")
		}
		p.advance()
		precTok := p.peek()
		if precTok.Kind != token.Integer {
			p.errorAt(precTok, "expected a precedence integer")
		}
		p.advance()
		prec = parseIntLiteral(precTok.Lexeme)

		switch {
		case p.peek().IsKeyword("assoc_left"):
			assoc = ast.AssocLeft
			p.advance()
		case p.peek().IsKeyword("assoc_right"):
			assoc = ast.AssocRight
			p.advance()
		}
	} else if pos == ast.Infix {
		p.errorAt(p.peek(), "infix operator declaration requires 'prec'")
	}

	if p.peek().IsPunctuation(";") {
		end := p.advance()
		return ast.NewOperatorDecl(opTok.Lexeme, pos, params, returnType, prec, assoc, nil, span(start, end))
	}

	body := p.parseBlockRaw()
	return ast.NewOperatorDecl(opTok.Lexeme, pos, params, returnType, prec, assoc, body, ast.Span{Line: start.Line, StartCol: start.Col, EndCol: body.Span().EndCol})
}

func parseIntLiteral(raw string) int {
	n := 0
	for _, c := range raw {
		n = n*10 + int(c-'0')
	}
	return n
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.expectKeyword("if")
	cond := p.parseExpr()
	then := p.parseBlockRaw()

	var elseStmt ast.Stmt
	endTok := p.all[p.idx-1]
	if p.peek().IsKeyword("else") {
		p.advance()
		if p.peek().IsKeyword("if") {
			elseStmt = p.parseIf()
		} else {
			elseBlock := p.parseBlockRaw()
			elseStmt = elseBlock
		}
		endTok = p.all[p.idx-1]
	}

	return ast.NewIf(cond, then, elseStmt, span(start, endTok))
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.expectKeyword("return")
	var value ast.Expr
	if !p.peek().IsPunctuation(";") {
		value = p.parseExpr()
	}
	end := p.expectPunct(";")
	return ast.NewReturn(value, span(start, end))
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.expectKeyword("while")
	cond := p.parseExpr()
	body := p.parseBlockRaw()
	return ast.NewWhile(cond, body, ast.Span{Line: start.Line, StartCol: start.Col, EndCol: body.Span().EndCol})
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.peek()
	x := p.parseExpr()
	end := p.expectPunct(";")
	return ast.NewExprStmt(x, span(start, end))
}

// parseBlock parses a `{ STMT* }` block, used where a *ast.Stmt return is
// expected for top-level dispatch purposes.
func (p *Parser) parseBlock() ast.Stmt {
	return p.parseBlockRaw()
}

// parseBlockRaw parses a block and returns it as *ast.Block, recovering
// from syntax errors statement-by-statement so a malformed statement
// doesn't abort the whole block.
func (p *Parser) parseBlockRaw() *ast.Block {
	start := p.expectPunct("{")
	var stmts []ast.Stmt
	for !p.peek().IsPunctuation("}") && !p.atEOF() {
		stmt := p.parseStmtRecovering()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.expectPunct("}")
	return ast.NewBlock(stmts, span(start, end))
}
