package check

import (
	"testing"

	"pecco/ast"
	"pecco/lex"
	"pecco/parse"
	"pecco/report"
	"pecco/resolve"
	"pecco/sym"
	"pecco/types"
)

func checkSource(t *testing.T, src string) (*sym.SymbolTable, []ast.Stmt, *report.Reporter) {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	table := sym.NewSymbolTable()
	withArithmeticPrelude(t, table)
	sym.NewBuilder(rep, "test.pec").Collect(stmts, table, false)
	resolve.New(table, "test.pec").ResolveAll(stmts, rep)
	if rep.ErrorCount() != 0 {
		t.Fatalf("setup errors before checking: %v", rep.Errors())
	}
	return table, stmts, rep
}

func withArithmeticPrelude(t *testing.T, table *sym.SymbolTable) {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	src := `
		operator infix +(a: i32, b: i32): i32 prec 50;
		operator infix +(a: f64, b: f64): f64 prec 50;
		operator infix <=(a: i32, b: i32): bool prec 40;
	`
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "prelude.pec", rep).ParseProgram()
	sym.NewBuilder(rep, "prelude.pec").Collect(stmts, table, true)
	if rep.ErrorCount() != 0 {
		t.Fatalf("prelude errors: %v", rep.Errors())
	}
}

func TestLetTypeMismatchDiagnostic(t *testing.T) {
	rep := report.Init(report.LogLevelSilent)
	src := "let x: i32 = 3.14;"
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	table := sym.NewSymbolTable()
	sym.NewBuilder(rep, "test.pec").Collect(stmts, table, false)
	resolve.New(table, "test.pec").ResolveAll(stmts, rep)
	if rep.ErrorCount() != 0 {
		t.Fatalf("setup errors: %v", rep.Errors())
	}

	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if ok {
		t.Fatalf("expected the type mismatch to be rejected")
	}
	errs := rep.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	msg := errs[0].Message
	if !containsBoth(msg, "i32", "f64") {
		t.Fatalf("expected diagnostic to mention both 'i32' and 'f64', got: %s", msg)
	}
}

func containsBoth(s, a, b string) bool {
	return containsSub(s, a) && containsSub(s, b)
}

func containsSub(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestWellTypedLetAccepted(t *testing.T) {
	table, stmts, rep := checkSource(t, "let x: i32 = 2;")
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if !ok || rep.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got: %v", rep.Errors())
	}
	letStmt := stmts[0].(*ast.Let)
	if got, _ := letStmt.Init.Type().(types.Type); got != types.I32 {
		t.Fatalf("expected initializer type i32, got %v", got)
	}
}

func TestNonVoidFunctionFallingOffEndRejected(t *testing.T) {
	table, stmts, rep := checkSource(t, "func f(): i32 { let x: i32 = 1; }")
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if ok {
		t.Fatalf("expected an error for a non-void function falling off the end")
	}
}

func TestNonVoidFunctionWithReturnAccepted(t *testing.T) {
	table, stmts, rep := checkSource(t, "func f(): i32 { return 1; }")
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if !ok || rep.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got: %v", rep.Errors())
	}
}

func TestIfElseBothReturningSatisfiesFallOffCheck(t *testing.T) {
	table, stmts, rep := checkSource(t, `
		func f(): i32 {
			if true {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if !ok || rep.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got: %v", rep.Errors())
	}
}

func TestIfWithoutElseDoesNotSatisfyFallOffCheck(t *testing.T) {
	table, stmts, rep := checkSource(t, `
		func f(): i32 {
			if true {
				return 1;
			}
		}
	`)
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if ok {
		t.Fatalf("expected an error since the if has no else branch")
	}
}

func TestOperatorBodyIsTypeChecked(t *testing.T) {
	rep := report.Init(report.LogLevelSilent)
	src := `operator infix ***(a: i32, b: i32): i32 prec 85 { let x: i32 = true; return a; }`
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	table := sym.NewSymbolTable()
	sym.NewBuilder(rep, "test.pec").Collect(stmts, table, false)
	resolve.New(table, "test.pec").ResolveAll(stmts, rep)
	if rep.ErrorCount() != 0 {
		t.Fatalf("setup errors: %v", rep.Errors())
	}

	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if ok {
		t.Fatalf("expected the operator body's type mismatch to be caught")
	}
}

func TestStrictOverloadMismatchRejectedWhenBothTypesKnown(t *testing.T) {
	table, stmts, rep := checkSource(t, `let y: bool = true; let x = y <= y;`)
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if ok {
		t.Fatalf("expected an error: no '<=' overload accepts (bool, bool)")
	}
}

func TestOverloadedOperatorResolvesByArgumentType(t *testing.T) {
	table, stmts, rep := checkSource(t, `let a: f64 = 1.5; let b: f64 = 2.5; let c = a + b;`)
	ok := New(table, "test.pec").CheckAll(stmts, rep)
	if !ok || rep.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got: %v", rep.Errors())
	}
	letStmt := stmts[2].(*ast.Let)
	if got, _ := letStmt.Init.Type().(types.Type); got != types.F64 {
		t.Fatalf("expected f64 result from the f64 overload, got %v", got)
	}
}
