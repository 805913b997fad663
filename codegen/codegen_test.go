package codegen

import (
	"strings"
	"testing"

	"pecco/check"
	"pecco/lex"
	"pecco/parse"
	"pecco/prelude"
	"pecco/report"
	"pecco/resolve"
	"pecco/sym"
)

func generateSource(t *testing.T, src string) (string, bool) {
	t.Helper()
	rep := report.Init(report.LogLevelSilent)
	toks := lex.New(src).TokenizeAll()
	stmts := parse.New(toks, "test.pec", rep).ParseProgram()
	if rep.ErrorCount() != 0 {
		t.Fatalf("parse errors: %v", rep.Errors())
	}

	table := sym.NewSymbolTable()
	if !prelude.Load(table, rep) {
		t.Fatalf("prelude load errors: %v", rep.Errors())
	}
	if !sym.NewBuilder(rep, "test.pec").Collect(stmts, table, false) {
		t.Fatalf("symbol collection errors: %v", rep.Errors())
	}

	resolve.New(table, "test.pec").ResolveAll(stmts, rep)
	if rep.ErrorCount() != 0 {
		t.Fatalf("resolve errors: %v", rep.Errors())
	}

	// A program the checker rejects never reaches codegen; it is reported as
	// a failed generation so callers assert on ok.
	if !check.New(table, "test.pec").CheckAll(stmts, rep) {
		return "", false
	}

	mod, ok := New(table, "test", "test.pec").Generate(stmts, rep)
	if !ok {
		return "", false
	}
	return mod.String(), true
}

func TestGenerateEntryFunction(t *testing.T) {
	ir, ok := generateSource(t, `exit(0);`)
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if !strings.Contains(ir, "define i32 @"+EntryFuncName) {
		t.Fatalf("expected entry function in output, got:\n%s", ir)
	}
}

func TestGenerateArithmeticUsesBuiltinInstruction(t *testing.T) {
	ir, ok := generateSource(t, `let x: i32 = 1 + 2;`)
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if !strings.Contains(ir, "add i32") {
		t.Fatalf("expected a builtin add instruction, got:\n%s", ir)
	}
}

func TestGenerateFunctionDeclaration(t *testing.T) {
	ir, ok := generateSource(t, `
		func square(n: i32): i32 {
			return n * n;
		}
		let x: i32 = square(3);
	`)
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if !strings.Contains(ir, "define i32 @square") {
		t.Fatalf("expected a defined square function, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @square") {
		t.Fatalf("expected a call to square, got:\n%s", ir)
	}
}

func TestGenerateUserOperatorMangledName(t *testing.T) {
	ir, ok := generateSource(t, `
		operator infix ***(a: i32, b: i32): i32 prec 85 {
			return a * b * b;
		}
		let x: i32 = 3 *** 4;
	`)
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if !strings.Contains(ir, "***$i32$i32") {
		t.Fatalf("expected mangled operator name in output, got:\n%s", ir)
	}
}

func TestGenerateIfControlFlow(t *testing.T) {
	ir, ok := generateSource(t, `
		func fib(n: i32): i32 {
			if n <= 1 {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		exit(fib(5));
	`)
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if !strings.Contains(ir, "br i1") {
		t.Fatalf("expected a conditional branch for the if statement, got:\n%s", ir)
	}
}

func TestGenerateRejectsUncheckedModule(t *testing.T) {
	_, ok := generateSource(t, `let x: i32 = 3.14;`)
	if ok {
		t.Fatalf("expected a type mismatch to fail before codegen runs")
	}
}
