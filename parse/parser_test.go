package parse

import (
	"testing"

	"pecco/ast"
	"pecco/lex"
	"pecco/report"
)

func parseSource(t *testing.T, src string) []ast.Stmt {
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	p := New(toks, "test.pec", rep)
	stmts := p.ParseProgram()
	if rep.ErrorCount() > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, rep.Errors())
	}
	return stmts
}

func TestParseLet(t *testing.T) {
	stmts := parseSource(t, "let x: i32 = 1 + 2;")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(stmts))
	}
	let, ok := stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", stmts[0])
	}
	if let.Name != "x" || let.TypeName != "i32" {
		t.Errorf("got name=%q type=%q", let.Name, let.TypeName)
	}
	seq, ok := let.Init.(*ast.OperatorSeq)
	if !ok {
		t.Fatalf("expected operator sequence, got %T", let.Init)
	}
	if len(seq.Items) != 3 {
		t.Fatalf("expected 3 items in sequence, got %d", len(seq.Items))
	}
}

func TestParseFuncDecl(t *testing.T) {
	stmts := parseSource(t, "func fib(n: i32): i32 { if n <= 1 { return n; } return fib(n - 1) + fib(n - 2); }")
	fn, ok := stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", stmts[0])
	}
	if fn.Name != "fib" || len(fn.Params) != 1 || fn.ReturnType != "i32" {
		t.Fatalf("unexpected fn shape: %+v", fn)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements in body, got %d", len(fn.Body.Stmts))
	}
}

func TestParseOperatorDecl(t *testing.T) {
	stmts := parseSource(t, "operator infix ***(a: i32, b: i32): i32 prec 85;")
	op, ok := stmts[0].(*ast.OperatorDecl)
	if !ok {
		t.Fatalf("expected *ast.OperatorDecl, got %T", stmts[0])
	}
	if op.Symbol != "***" || op.Position != ast.Infix || op.Precedence != 85 || op.Assoc != ast.AssocLeft {
		t.Fatalf("unexpected operator shape: %+v", op)
	}
}

func TestParseOperatorDeclRightAssoc(t *testing.T) {
	stmts := parseSource(t, "operator infix ^^(a: i32, b: i32): i32 prec 90 assoc_right;")
	op := stmts[0].(*ast.OperatorDecl)
	if op.Assoc != ast.AssocRight {
		t.Fatalf("expected right associativity, got %v", op.Assoc)
	}
}

func TestParseCall(t *testing.T) {
	stmts := parseSource(t, "exit(42);")
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", stmts[0])
	}
	call, ok := es.X.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", es.X)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
}

func TestSemicolonSeparatesStatements(t *testing.T) {
	stmts := parseSource(t, "let x = 1; 2;")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}

func TestMissingSemicolonErrorsAndRecovers(t *testing.T) {
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New("let x = 1\nlet y = 2;").TokenizeAll()
	p := New(toks, "test.pec", rep)
	stmts := p.ParseProgram()
	if rep.ErrorCount() == 0 {
		t.Fatalf("expected a parse error for missing semicolon")
	}
	// The malformed first statement is dropped; recovery resumes at the
	// second `let`, which parses normally.
	if len(stmts) != 1 {
		t.Fatalf("expected parser to recover and produce 1 statement, got %d", len(stmts))
	}
}
