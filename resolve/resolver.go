// Package resolve implements the operator resolver: the two-step algorithm
// that turns a flat operator sequence into a binary/unary expression tree,
// detecting precedence and associativity conflicts along the way.
package resolve

import (
	"pecco/ast"
	"pecco/report"
	"pecco/sym"
)

// Resolver rewrites OperatorSeq nodes in place over an AST, given the
// declared operator table.
type Resolver struct {
	table *sym.SymbolTable
	path  string
}

func New(table *sym.SymbolTable, path string) *Resolver {
	return &Resolver{table: table, path: path}
}

// ResolveAll walks every statement, resolving every expression it reaches.
// It recovers LocalCompileErrors so that a malformed expression in one
// statement doesn't prevent the rest of the program from being resolved.
func (r *Resolver) ResolveAll(stmts []ast.Stmt, rep *report.Reporter) {
	for _, stmt := range stmts {
		r.resolveStmtRecovering(stmt, rep)
	}
}

func (r *Resolver) resolveStmtRecovering(stmt ast.Stmt, rep *report.Reporter) {
	defer func() {
		if rec := recover(); rec != nil {
			if lce, ok := rec.(*report.LocalCompileError); ok {
				lce.Diag.Path = r.path
				rep.Record(lce.Diag)
				return
			}
			panic(rec)
		}
	}()
	r.resolveStmt(stmt)
}

// resolveStmt recursively resolves every expression reachable from stmt:
// conditions, initializers, return values, call arguments nested anywhere
// inside them.
func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		if s.Init != nil {
			s.Init = r.resolveExpr(s.Init)
		}
	case *ast.FuncDecl:
		if s.Body != nil {
			r.resolveStmt(s.Body)
		}
	case *ast.OperatorDecl:
		if s.Body != nil {
			r.resolveStmt(s.Body)
		}
	case *ast.If:
		if s.Cond != nil {
			s.Cond = r.resolveExpr(s.Cond)
		}
		if s.Then != nil {
			r.resolveStmt(s.Then)
		}
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Return:
		if s.Value != nil {
			s.Value = r.resolveExpr(s.Value)
		}
	case *ast.While:
		if s.Cond != nil {
			s.Cond = r.resolveExpr(s.Cond)
		}
		if s.Body != nil {
			r.resolveStmt(s.Body)
		}
	case *ast.ExprStmt:
		if s.X != nil {
			s.X = r.resolveExpr(s.X)
		}
	case *ast.Block:
		for _, inner := range s.Stmts {
			r.resolveStmt(inner)
		}
	}
}

// resolveExpr resolves a single expression.  Literals and identifiers need
// no resolution; a Call's callee and arguments are resolved recursively;
// an OperatorSeq is rewritten by resolveOperatorSeq.  Running this on an
// already-resolved tree is a no-op, since Binary/Unary nodes simply recurse
// into already-resolved children.
func (r *Resolver) resolveExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.OperatorSeq:
		return r.resolveOperatorSeq(e)
	case *ast.Call:
		e.Callee = r.resolveExpr(e.Callee)
		for i, arg := range e.Args {
			e.Args[i] = r.resolveExpr(arg)
		}
		return e
	case *ast.Binary:
		e.Left = r.resolveExpr(e.Left)
		e.Right = r.resolveExpr(e.Right)
		return e
	case *ast.Unary:
		e.Operand = r.resolveExpr(e.Operand)
		return e
	default:
		return expr
	}
}

// cloneOperand resolves (recursively, if needed) one operand item from an
// operator sequence.  Nested OperatorSeq operands come from parenthesized
// sub-expressions and are resolved through the same entry point.
func (r *Resolver) cloneOperand(operand ast.Expr) ast.Expr {
	return r.resolveExpr(operand)
}

type infixOp struct {
	symbol string
	prec   int
	assoc  ast.Assoc
	span   ast.Span
}

// resolveOperatorSeq implements the two-step algorithm: greedy prefix/
// postfix folding followed by a precedence/associativity-directed infix
// tree split.
func (r *Resolver) resolveOperatorSeq(seq *ast.OperatorSeq) ast.Expr {
	var operands []ast.Expr
	var infixOps []infixOp

	idx := 0
	items := seq.Items

	for idx < len(items) {
		// Step 1a: collect a run of prefix operators.
		var prefixOps []ast.SeqItem
		for idx < len(items) && items[idx].IsOperator() {
			op := items[idx].Op
			if !r.table.HasAnyOperator(op, ast.Prefix) {
				report.Raise("resolve", "operator '"+op+"' cannot be used as a prefix operator here",
					items[idx].OpSpan.Line, items[idx].OpSpan.StartCol, report.WithEndCol(items[idx].OpSpan.EndCol))
			}
			prefixOps = append(prefixOps, items[idx])
			idx++
		}

		// Step 1b: expect an operand.
		if idx >= len(items) || items[idx].IsOperator() {
			report.Raise("resolve", "expected operand after prefix operators", seq.Span().Line, seq.Span().StartCol)
		}
		current := r.cloneOperand(items[idx].Operand)
		idx++

		// Step 1c: wrap in prefix applications, right to left (innermost
		// outward), so `-- ++ x` becomes `(-- (++ x))`.
		for i := len(prefixOps) - 1; i >= 0; i-- {
			current = ast.NewUnary(prefixOps[i].Op, current, ast.Prefix, seq.Span())
		}

		// Step 1d: greedily consume postfix operators until one isn't valid
		// as postfix, regardless of whether it might be infix.
		for idx < len(items) && items[idx].IsOperator() {
			op := items[idx].Op
			if !r.table.HasAnyOperator(op, ast.Postfix) {
				break
			}
			current = ast.NewUnary(op, current, ast.Postfix, seq.Span())
			idx++
		}

		operands = append(operands, current)

		// Step 1e: expect an infix operator before the next operand, if any
		// items remain.
		if idx < len(items) {
			if !items[idx].IsOperator() {
				report.Raise("resolve", "expected infix operator between operands", seq.Span().Line, seq.Span().StartCol)
			}
			op := items[idx].Op
			prec, assoc, ok := r.table.OperatorPrecAssoc(op, ast.Infix)
			if !ok {
				report.Raise("resolve", "operator '"+op+"' cannot be used as an infix operator",
					items[idx].OpSpan.Line, items[idx].OpSpan.StartCol, report.WithEndCol(items[idx].OpSpan.EndCol))
			}
			infixOps = append(infixOps, infixOp{symbol: op, prec: prec, assoc: assoc, span: items[idx].OpSpan})
			idx++
		}
	}

	if len(infixOps) != len(operands)-1 {
		report.Raise("resolve", "operator sequence structure error", seq.Span().Line, seq.Span().StartCol)
	}

	if len(operands) == 1 {
		return operands[0]
	}

	return buildInfixTree(operands, infixOps, 0, len(operands)-1)
}

// buildInfixTree recursively splits operands[start..end] (inclusive) on the
// operator of lowest precedence, breaking ties by associativity:
// left-associative operators prefer the rightmost occurrence (the left
// subtree gets more), right-associative prefers the leftmost.  Equal
// precedence with differing associativity is a hard error.
func buildInfixTree(operands []ast.Expr, ops []infixOp, start, end int) ast.Expr {
	if start == end {
		return operands[start]
	}

	lowestPrec := 1 << 30
	splitPos := start
	var splitAssoc ast.Assoc
	found := false

	for i := start; i < end; i++ {
		op := ops[i]
		switch {
		case op.prec < lowestPrec:
			lowestPrec = op.prec
			splitPos = i
			splitAssoc = op.assoc
			found = true
		case op.prec == lowestPrec:
			if op.assoc != splitAssoc {
				report.Raise("resolve",
					"mixed associativity at the same precedence level",
					op.span.Line, op.span.StartCol, report.WithEndCol(op.span.EndCol))
			}
			if op.assoc == ast.AssocLeft {
				splitPos = i
			}
			// AssocRight: keep the first (leftmost) split found, so don't
			// overwrite splitPos.
		}
	}

	if !found {
		return operands[start]
	}

	splitOp := ops[splitPos]
	left := buildInfixTree(operands, ops, start, splitPos)
	right := buildInfixTree(operands, ops, splitPos+1, end)
	return ast.NewBinary(splitOp.symbol, left, right, splitOp.span)
}
