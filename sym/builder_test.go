package sym

import (
	"testing"

	"pecco/ast"
	"pecco/lex"
	"pecco/parse"
	"pecco/report"
	"pecco/types"
)

func buildTable(t *testing.T, src string) (*SymbolTable, *report.Reporter) {
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	table := NewSymbolTable()
	b := NewBuilder(rep, "test.pec")
	b.Collect(stmts, table, false)
	return table, rep
}

func TestFunctionSignatureCollected(t *testing.T) {
	table, rep := buildTable(t, "func add(a: i32, b: i32): i32 { return a + b; }")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}
	sig, ok := table.FindFunctionExact("add", []types.Type{types.I32, types.I32})
	if !ok {
		t.Fatalf("expected to find signature for add(i32,i32)")
	}
	if sig.ReturnType != types.I32 {
		t.Errorf("expected return type i32, got %s", sig.ReturnType)
	}
}

func TestNestedFunctionRejected(t *testing.T) {
	_, rep := buildTable(t, "func outer(): void { func inner(): void { return; } }")
	if rep.ErrorCount() == 0 {
		t.Fatalf("expected an error for nested function declaration")
	}
}

func TestMissingParamTypeRejected(t *testing.T) {
	_, rep := buildTable(t, "func f(x): void { return; }")
	if rep.ErrorCount() == 0 {
		t.Fatalf("expected a missing-parameter-type error")
	}
}

func TestDuplicateVariableInScopeRejected(t *testing.T) {
	_, rep := buildTable(t, "func f(): void { let x: i32 = 1; let x: i32 = 2; }")
	if rep.ErrorCount() == 0 {
		t.Fatalf("expected a duplicate-binding error")
	}
}

func TestShadowingAcrossScopesPermitted(t *testing.T) {
	_, rep := buildTable(t, "func f(): void { let x: i32 = 1; { let x: i32 = 2; } }")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors for legal shadowing: %v", rep.Errors())
	}
}

func TestOperatorOverloadConflictRejected(t *testing.T) {
	_, rep := buildTable(t, `
		operator infix ***(a: i32, b: i32): i32 prec 85;
		operator infix ***(a: i32, b: i32): i32 prec 85;
	`)
	if rep.ErrorCount() == 0 {
		t.Fatalf("expected a conflict error for duplicate operator signature")
	}
}

func TestOperatorOverloadDistinctSignaturesAllowed(t *testing.T) {
	table, rep := buildTable(t, `
		operator infix ***(a: i32, b: i32): i32 prec 85;
		operator infix ***(a: f64, b: f64): f64 prec 85;
	`)
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors())
	}
	overloads := table.OperatorOverloads("***", ast.Infix)
	if len(overloads) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(overloads))
	}
}

func TestBlockScopeDescription(t *testing.T) {
	table, _ := buildTable(t, "func f(): void { { let x: i32 = 1; } }")
	fnScope := table.Root.Children[0]
	blockScope := fnScope.Children[0]
	if blockScope.Desc == "" {
		t.Fatalf("expected a block description")
	}
}
