package cmd

import (
	"fmt"
	"strings"

	"pecco/ast"
	"pecco/token"
)

// FormatTokens renders the `--lex` output: one line per token.
func FormatTokens(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&b, "[%s]", t.Kind)
		if t.Lexeme != "" && t.Kind != token.EOF {
			fmt.Fprintf(&b, " %q", t.Lexeme)
		}
		fmt.Fprintf(&b, " (line %d, col %d)\n", t.Line, t.Col)
	}
	return b.String()
}

// FormatAST renders the `--parse`/`--dump-ast` output: an indented
// structural dump of every top-level statement.
func FormatAST(stmts []ast.Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		writeStmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func writeStmt(b *strings.Builder, s ast.Stmt, depth int) {
	if s == nil {
		indent(b, depth)
		b.WriteString("<null>\n")
		return
	}

	switch v := s.(type) {
	case *ast.Let:
		indent(b, depth)
		fmt.Fprintf(b, "Let %s", v.Name)
		if v.TypeName != "" {
			fmt.Fprintf(b, ": %s", v.TypeName)
		}
		b.WriteString(" = ")
		writeExprInline(b, v.Init)
		b.WriteString("\n")

	case *ast.FuncDecl:
		indent(b, depth)
		fmt.Fprintf(b, "FuncDecl %s(%s)", v.Name, formatParams(v.Params))
		if v.ReturnType != "" {
			fmt.Fprintf(b, ": %s", v.ReturnType)
		}
		b.WriteString("\n")
		if v.Body != nil {
			writeStmt(b, v.Body, depth+1)
		}

	case *ast.OperatorDecl:
		indent(b, depth)
		fmt.Fprintf(b, "OperatorDecl %s %s(%s): %s prec %d", v.Position, v.Symbol, formatParams(v.Params), v.ReturnType, v.Precedence)
		b.WriteString("\n")
		if v.Body != nil {
			writeStmt(b, v.Body, depth+1)
		}

	case *ast.Block:
		indent(b, depth)
		b.WriteString("Block\n")
		for _, inner := range v.Stmts {
			writeStmt(b, inner, depth+1)
		}

	case *ast.If:
		indent(b, depth)
		b.WriteString("If ")
		writeExprInline(b, v.Cond)
		b.WriteString("\n")
		writeStmt(b, v.Then, depth+1)
		if v.Else != nil {
			indent(b, depth)
			b.WriteString("Else\n")
			writeStmt(b, v.Else, depth+1)
		}

	case *ast.While:
		indent(b, depth)
		b.WriteString("While ")
		writeExprInline(b, v.Cond)
		b.WriteString("\n")
		writeStmt(b, v.Body, depth+1)

	case *ast.Return:
		indent(b, depth)
		b.WriteString("Return ")
		writeExprInline(b, v.Value)
		b.WriteString("\n")

	case *ast.ExprStmt:
		indent(b, depth)
		b.WriteString("ExprStmt ")
		writeExprInline(b, v.X)
		b.WriteString("\n")

	default:
		indent(b, depth)
		fmt.Fprintf(b, "<unknown stmt %T>\n", v)
	}
}

func formatParams(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.TypeName != "" {
			parts[i] = fmt.Sprintf("%s: %s", p.Name, p.TypeName)
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func writeExprInline(b *strings.Builder, e ast.Expr) {
	if e == nil {
		b.WriteString("<null>")
		return
	}

	switch v := e.(type) {
	case *ast.IntLit:
		b.WriteString(v.Raw)
	case *ast.FloatLit:
		b.WriteString(v.Raw)
	case *ast.StringLit:
		fmt.Fprintf(b, "%q", v.Value)
	case *ast.BoolLit:
		fmt.Fprintf(b, "%t", v.Value)
	case *ast.Ident:
		b.WriteString(v.Name)
	case *ast.Binary:
		b.WriteString("(")
		writeExprInline(b, v.Left)
		fmt.Fprintf(b, " %s ", v.Op)
		writeExprInline(b, v.Right)
		b.WriteString(")")
	case *ast.Unary:
		if v.Position == ast.Prefix {
			fmt.Fprintf(b, "(%s", v.Op)
			writeExprInline(b, v.Operand)
			b.WriteString(")")
		} else {
			b.WriteString("(")
			writeExprInline(b, v.Operand)
			fmt.Fprintf(b, "%s)", v.Op)
		}
	case *ast.Call:
		writeExprInline(b, v.Callee)
		b.WriteString("(")
		for i, arg := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExprInline(b, arg)
		}
		b.WriteString(")")
	case *ast.OperatorSeq:
		b.WriteString("<unresolved: ")
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(" ")
			}
			if item.IsOperator() {
				b.WriteString(item.Op)
			} else {
				writeExprInline(b, item.Operand)
			}
		}
		b.WriteString(">")
	default:
		fmt.Fprintf(b, "<unknown expr %T>", v)
	}
}
