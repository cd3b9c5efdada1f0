package constant

import (
	"testing"

	"github.com/hmwill/glslesc/internal/gltype"
)

func TestScalarConstructors(t *testing.T) {
	if c := ScalarBool(true); !c.Values[0].Bool {
		t.Errorf("ScalarBool(true) did not set Bool")
	}
	if c := ScalarInt(7); c.Values[0].Int != 7 {
		t.Errorf("ScalarInt(7) = %d, want 7", c.Values[0].Int)
	}
	if c := ScalarFloat(1.5); c.Values[0].Float != 1.5 {
		t.Errorf("ScalarFloat(1.5) = %v, want 1.5", c.Values[0].Float)
	}
}

func TestConvertIntToFloat(t *testing.T) {
	src := ScalarInt(3)
	dst := Convert(src, gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined))
	if dst.Values[0].Float != 3.0 {
		t.Errorf("Convert(int 3 -> float) = %v, want 3.0", dst.Values[0].Float)
	}
}

func TestConvertNumericToBool(t *testing.T) {
	zero := Convert(ScalarInt(0), gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined))
	if zero.Values[0].Bool {
		t.Errorf("Convert(0 -> bool) = true, want false")
	}
	nonzero := Convert(ScalarInt(5), gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined))
	if !nonzero.Values[0].Bool {
		t.Errorf("Convert(5 -> bool) = false, want true")
	}
}

func TestEquals(t *testing.T) {
	ft := gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined)
	a := ScalarFloat(2.0)
	b := ScalarFloat(2.0)
	c := ScalarFloat(3.0)
	if !Equals(a, b, ft) {
		t.Errorf("expected equal constants to compare equal")
	}
	if Equals(a, c, ft) {
		t.Errorf("expected different constants to compare unequal")
	}
}
