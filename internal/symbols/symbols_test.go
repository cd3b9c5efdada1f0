package symbols

import (
	"testing"

	"github.com/hmwill/glslesc/internal/gltype"
)

func TestDefineAndFindInSameScope(t *testing.T) {
	scope := NewScope(nil, ScopeGlobal)
	scope.Define("uColor", gltype.VectorType(gltype.KindFloat, gltype.PrecisionUndefined, 4), QualUniform)
	sym := scope.Find("uColor")
	if sym == nil || sym.Name != "uColor" {
		t.Fatalf("expected to find uColor, got %v", sym)
	}
}

func TestFindNestedWalksToParent(t *testing.T) {
	global := NewScope(nil, ScopeGlobal)
	global.Define("uMvp", gltype.MatrixType(gltype.PrecisionUndefined, 4), QualUniform)
	local := NewScope(global, ScopeLocal)
	local.Define("i", gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), QualVariable)

	if FindNested(local, "i") == nil {
		t.Errorf("expected to find local symbol i")
	}
	if FindNested(local, "uMvp") == nil {
		t.Errorf("expected FindNested to walk up to the global scope for uMvp")
	}
	if FindNested(local, "missing") != nil {
		t.Errorf("expected FindNested to return nil for an undeclared name")
	}
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	global := NewScope(nil, ScopeGlobal)
	global.Define("x", gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined), QualVariable)
	local := NewScope(global, ScopeLocal)
	local.Define("x", gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), QualVariable)

	sym := FindNested(local, "x")
	if sym.Type.Kind != gltype.KindInt {
		t.Errorf("expected the inner-scope int x to shadow the outer float x, got %v", sym.Type.Kind)
	}
}

func TestScopeInheritsDefaultPrecision(t *testing.T) {
	global := NewScope(nil, ScopeGlobal)
	global.DefaultFloat = gltype.PrecisionHigh
	local := NewScope(global, ScopeLocal)
	if local.DefaultFloat != gltype.PrecisionHigh {
		t.Errorf("expected child scope to inherit DefaultFloat, got %v", local.DefaultFloat)
	}
}

func TestSymbolArrayPushPopContains(t *testing.T) {
	var arr SymbolArray
	a := &Symbol{Name: "a"}
	b := &Symbol{Name: "b"}
	arr.Push(a)
	arr.Push(b)
	if !arr.Contains(a) || !arr.Contains(b) {
		t.Fatalf("expected both symbols to be on the stack")
	}
	top, ok := arr.Pop()
	if !ok || top != b {
		t.Fatalf("expected Pop to return b last-in-first-out")
	}
	if arr.Contains(b) {
		t.Errorf("expected b removed from the stack after Pop")
	}
}
