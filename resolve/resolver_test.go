package resolve

import (
	"testing"

	"pecco/ast"
	"pecco/lex"
	"pecco/parse"
	"pecco/report"
	"pecco/sym"
)

func preludeTable(t *testing.T) *sym.SymbolTable {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	src := `
		operator infix +(a: i32, b: i32): i32 prec 50;
		operator infix -(a: i32, b: i32): i32 prec 50;
		operator infix *(a: i32, b: i32): i32 prec 60;
		operator infix /(a: i32, b: i32): i32 prec 60;
		operator infix <=(a: i32, b: i32): bool prec 40;
		operator prefix -(a: i32): i32;
		operator prefix !(a: bool): bool;
	`
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "prelude.pec", rep).ParseProgram()
	table := sym.NewSymbolTable()
	sym.NewBuilder(rep, "prelude.pec").Collect(stmts, table, true)
	if rep.ErrorCount() != 0 {
		t.Fatalf("prelude setup errors: %v", rep.Errors())
	}
	return table
}

func resolveExprFromSource(t *testing.T, table *sym.SymbolTable, src string) (ast.Expr, *report.Reporter) {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	letStmt := stmts[0].(*ast.Let)
	r := New(table, "test.pec")
	r.ResolveAll(stmts, rep)
	return letStmt.Init, rep
}

func TestPrecedenceResolution(t *testing.T) {
	table := preludeTable(t)
	expr, rep := resolveExprFromSource(t, table, "let x = 1 + 2 * 3;")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}

	root, ok := expr.(*ast.Binary)
	if !ok || root.Op != "+" {
		t.Fatalf("expected root '+', got %#v", expr)
	}
	left, ok := root.Left.(*ast.IntLit)
	if !ok || left.Raw != "1" {
		t.Fatalf("expected left literal 1, got %#v", root.Left)
	}
	right, ok := root.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Fatalf("expected right '*' node, got %#v", root.Right)
	}
}

func TestMixedAssociativityRejection(t *testing.T) {
	rep := report.Init(report.LogLevelSilent)
	src := `
		operator infix +<(a: i32, b: i32): i32 prec 50 assoc_left;
		operator infix +>(a: i32, b: i32): i32 prec 50 assoc_right;
	`
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "prelude.pec", rep).ParseProgram()
	table := sym.NewSymbolTable()
	sym.NewBuilder(rep, "prelude.pec").Collect(stmts, table, true)
	if rep.ErrorCount() != 0 {
		t.Fatalf("setup errors: %v", rep.Errors())
	}

	_, rep2 := resolveExprFromSourceWithTable(t, table, "let x = a +< b +> c;")
	if rep2.ErrorCount() != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", rep2.ErrorCount(), rep2.Errors())
	}
}

func resolveExprFromSourceWithTable(t *testing.T, table *sym.SymbolTable, src string) (ast.Expr, *report.Reporter) {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	letStmt := stmts[0].(*ast.Let)
	r := New(table, "test.pec")
	r.ResolveAll(stmts, rep)
	return letStmt.Init, rep
}

func TestPrefixGreedyFold(t *testing.T) {
	table := preludeTable(t)
	expr, rep := resolveExprFromSource(t, table, "let x = - - 1;")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}
	outer, ok := expr.(*ast.Unary)
	if !ok || outer.Op != "-" || outer.Position != ast.Prefix {
		t.Fatalf("expected outer prefix '-', got %#v", expr)
	}
	inner, ok := outer.Operand.(*ast.Unary)
	if !ok || inner.Op != "-" {
		t.Fatalf("expected inner prefix '-', got %#v", outer.Operand)
	}
}

func TestNoOperatorSeqNodesSurvive(t *testing.T) {
	table := preludeTable(t)
	expr, rep := resolveExprFromSource(t, table, "let x = 1 + 2 * 3 - 4;")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if _, ok := e.(*ast.OperatorSeq); ok {
			t.Fatalf("found surviving OperatorSeq node")
		}
		switch n := e.(type) {
		case *ast.Binary:
			walk(n.Left)
			walk(n.Right)
		case *ast.Unary:
			walk(n.Operand)
		}
	}
	walk(expr)
}

func TestIdempotence(t *testing.T) {
	table := preludeTable(t)
	expr, rep := resolveExprFromSource(t, table, "let x = 1 + 2 * 3;")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}
	r := New(table, "test.pec")
	again := r.resolveExpr(expr)
	if pp(again) != pp(expr) {
		t.Fatalf("resolving twice changed the tree:\nfirst: %s\nsecond: %s", pp(expr), pp(again))
	}
}

func pp(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Raw
	case *ast.Binary:
		return "(" + n.Op + " " + pp(n.Left) + " " + pp(n.Right) + ")"
	case *ast.Unary:
		return "(" + n.Op + " " + pp(n.Operand) + ")"
	default:
		return "?"
	}
}
