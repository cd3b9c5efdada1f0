package token

import "testing"

func TestTokenString(t *testing.T) {
	tok := Token{Kind: IDENTIFIER, Lexeme: "foo", Line: 3}
	got := tok.String()
	want := `3:"foo"`
	if got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}

func TestKindDistinctValues(t *testing.T) {
	seen := map[Kind]bool{}
	for _, k := range []Kind{EOF, ERROR, IDENTIFIER, INT_CONST, FLOAT_CONST, KW_ATTRIBUTE, KW_FOR, LT, LE, GT, GE, EQ, NE, ASSIGN, PLUS_ASSIGN} {
		if seen[k] {
			t.Errorf("duplicate Kind value for %v", k)
		}
		seen[k] = true
	}
}
