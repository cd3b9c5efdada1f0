package sessionid

import "testing"

func TestNew_IsUniqueAndNonEmpty(t *testing.T) {
	a := New()
	b := New()
	if a == "" || b == "" {
		t.Fatalf("expected non-empty IDs")
	}
	if a == b {
		t.Fatalf("expected two calls to New to produce distinct IDs")
	}
	if a.String() != string(a) {
		t.Errorf("String() should just unwrap the ID")
	}
}
