package lexer

import (
	"testing"

	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	var log diag.Log
	toks := Lex(src, &log)
	if log.HasErrors() {
		t.Fatalf("unexpected lex errors: %s", log.String())
	}
	return toks
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks := lex(t, "uniform mat4 uMvp;")
	want := []token.Kind{token.KW_UNIFORM, token.KW_MAT4, token.IDENTIFIER, token.SEMICOLON, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %v, want %v (%q)", i, toks[i].Kind, k, toks[i].Lexeme)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks := lex(t, "1 1.5 .5 1e3 0x1F")
	kinds := []token.Kind{token.INT_CONST, token.FLOAT_CONST, token.FLOAT_CONST, token.FLOAT_CONST, token.INT_CONST}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d (%q): got kind %v, want %v", i, toks[i].Lexeme, toks[i].Kind, k)
		}
	}
}

func TestLexCommentsSkipped(t *testing.T) {
	toks := lex(t, "// line comment\nint /* block */ x;")
	want := []token.Kind{token.KW_INT, token.IDENTIFIER, token.SEMICOLON, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
}

func TestLexOperators(t *testing.T) {
	toks := lex(t, "a += b; a == b; a != b; i++ ")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	mustContain := []token.Kind{token.PLUS_ASSIGN, token.EQ, token.NE, token.INCREMENT}
	for _, k := range mustContain {
		found := false
		for _, got := range kinds {
			if got == k {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected kind %v among tokens, got %v", k, kinds)
		}
	}
}

func TestLexLineTracking(t *testing.T) {
	toks := lex(t, "int x;\nint y;")
	for _, tok := range toks {
		if tok.Lexeme == "y" && tok.Line != 2 {
			t.Errorf("expected y on line 2, got %d", tok.Line)
		}
	}
}
