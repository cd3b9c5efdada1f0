package gltype

import (
	"testing"

	"github.com/hmwill/glslesc/internal/arena"
)

func TestBasicTypeCanonical(t *testing.T) {
	a := BasicType(KindFloat, PrecisionHigh)
	b := BasicType(KindFloat, PrecisionHigh)
	if a != b {
		t.Errorf("expected BasicType to return the same canonical pointer for equal args")
	}
}

func TestVectorTypeElements(t *testing.T) {
	v := VectorType(KindFloat, PrecisionUndefined, 3)
	if v.Kind != KindVec3 || v.Elements != 3 {
		t.Errorf("got Kind=%v Elements=%d, want KindVec3/3", v.Kind, v.Elements)
	}
}

func TestElementTypeUnwrapsVector(t *testing.T) {
	v := VectorType(KindFloat, PrecisionUndefined, 4)
	e := ElementType(v)
	if e.Kind != KindFloat {
		t.Errorf("ElementType(vec4) = %v, want float", e.Kind)
	}
}

func TestMatchesStructural(t *testing.T) {
	pool := arena.New("test", 0)
	s1 := NewStructType(pool, "Light")
	s1.SetFields([]Field{{Name: "color", Type: VectorType(KindFloat, PrecisionUndefined, 3)}})
	s2 := NewStructType(pool, "Light")
	s2.SetFields([]Field{{Name: "color", Type: VectorType(KindFloat, PrecisionUndefined, 3)}})
	if !Matches(s1, s2) {
		t.Errorf("expected two structurally identical struct types to match")
	}
}

func TestMatchesArrayLength(t *testing.T) {
	pool := arena.New("test", 0)
	elem := BasicType(KindFloat, PrecisionUndefined)
	a := NewArrayType(pool, elem, 3)
	b := NewArrayType(pool, elem, 4)
	if Matches(a, b) {
		t.Errorf("expected arrays of different length not to match")
	}
}

func TestIsVectorIsMatrix(t *testing.T) {
	if !KindVec3.IsVector() {
		t.Errorf("expected KindVec3.IsVector()")
	}
	if !KindMat4.IsMatrix() {
		t.Errorf("expected KindMat4.IsMatrix()")
	}
	if KindMat4.IsVector() || KindVec3.IsMatrix() {
		t.Errorf("expected IsVector/IsMatrix to be mutually exclusive")
	}
}
