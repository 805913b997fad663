package lex

import (
	"testing"

	"github.com/kr/pretty"

	"pecco/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestNumbers(t *testing.T) {
	toks := New("123abc 1.5 1e10 1.5e-3").TokenizeAll()
	want := []token.Kind{token.Integer, token.Identifier, token.Float, token.Float, token.Float, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch:\n%s", strDiff(got, want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v\n%s", i, got[i], want[i], strDiff(toks, want))
		}
	}
}

func strDiff(a, b interface{}) string {
	diffs := pretty.Diff(a, b)
	out := ""
	for _, d := range diffs {
		out += d + "\n"
	}
	return out
}

func TestStringEscapes(t *testing.T) {
	toks := New(`"a\nb\"c"`).TokenizeAll()
	if toks[0].Kind != token.String {
		t.Fatalf("expected String token, got %v", toks[0].Kind)
	}
	if toks[0].Lexeme != "a\nb\"c" {
		t.Errorf("got lexeme %q", toks[0].Lexeme)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := New(`"abc`).TokenizeAll()
	if toks[0].Kind != token.Error {
		t.Fatalf("expected Error token, got %v", toks[0].Kind)
	}
}

func TestInvalidEscape(t *testing.T) {
	toks := New(`"a\qb"`).TokenizeAll()
	if toks[0].Kind != token.Error {
		t.Fatalf("expected Error token, got %v", toks[0].Kind)
	}
	// The offset is relative to the opening quote: `"` at 0, `a` at 1, `\` at 2.
	if toks[0].ErrorOffset != 2 {
		t.Errorf("expected error offset 2, got %d", toks[0].ErrorOffset)
	}
}

func TestOperatorMaximalMunch(t *testing.T) {
	toks := New("a ==b <=+= ***").TokenizeAll()
	var ops []string
	for _, tk := range toks {
		if tk.Kind == token.Operator {
			ops = append(ops, tk.Lexeme)
		}
	}
	want := []string{"==", "<=+=", "***"}
	if len(ops) != len(want) {
		t.Fatalf("got %v want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: got %q want %q", i, ops[i], want[i])
		}
	}
}

func TestComment(t *testing.T) {
	toks := New("1 # a comment\n2").TokenizeAll()
	if toks[1].Kind != token.Comment {
		t.Fatalf("expected comment token, got %v", toks[1].Kind)
	}
	if toks[2].Kind != token.Integer || toks[2].Line != 2 {
		t.Errorf("expected line 2 integer, got %+v", toks[2])
	}
}

func TestKeywordSet(t *testing.T) {
	toks := New("assoc_left assoc_right assoc none left right").TokenizeAll()
	want := []token.Kind{
		token.Keyword, token.Keyword,
		token.Identifier, token.Identifier, token.Identifier, token.Identifier,
		token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestMonotonicPositions(t *testing.T) {
	src := "let x = 1 + 2;\nlet y = x * 3;\n"
	toks := New(src).TokenizeAll()
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Col < prev.Col) {
			t.Fatalf("positions not monotonic at %d: %+v -> %+v", i, prev, cur)
		}
	}
}
