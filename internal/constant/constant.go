// Package constant implements the four-wide POD constant value (component D)
// used for folded expressions, IL constant pooling and default-initializer
// values.
package constant

import (
	"math"

	"github.com/hmwill/glslesc/internal/gltype"
)

// Channel holds one scalar lane of a Constant: at most one of the three
// fields is meaningful, selected by the corresponding Type's element kind.
type Channel struct {
	Bool  bool
	Int   int32
	Float float32
}

// Constant is four parallel channel slots, mirroring the C union-of-arrays
// representation: scalars use slot 0, vectors use slots 0..n-1, matrices
// (modeled elsewhere as a struct of column vectors) reuse the same shape per
// column.
type Constant struct {
	Values [4]Channel
}

// ScalarBool builds a one-lane bool constant.
func ScalarBool(v bool) Constant {
	var c Constant
	c.Values[0].Bool = v
	return c
}

// ScalarInt builds a one-lane int constant.
func ScalarInt(v int32) Constant {
	var c Constant
	c.Values[0].Int = v
	return c
}

// ScalarFloat builds a one-lane float constant.
func ScalarFloat(v float32) Constant {
	var c Constant
	c.Values[0].Float = v
	return c
}

func scalarKind(t *gltype.Type) gltype.Kind {
	switch gltype.ElementType(t).Kind {
	case gltype.KindBool:
		return gltype.KindBool
	case gltype.KindInt:
		return gltype.KindInt
	default:
		return gltype.KindFloat
	}
}

// Convert performs the pointwise conversion of spec §4.2: int->bool is
// "!= 0", float->bool is "!= 0.0", bool->numeric is 0/1, and numeric<->numeric
// uses Go's native conversion.
func Convert(src Constant, srcType, dstType *gltype.Type) Constant {
	n := srcType.Elements
	if n == 0 {
		n = 1
	}
	srcKind := scalarKind(srcType)
	dstKind := scalarKind(dstType)
	var out Constant
	for i := 0; i < n && i < 4; i++ {
		in := src.Values[i]
		switch dstKind {
		case gltype.KindBool:
			switch srcKind {
			case gltype.KindBool:
				out.Values[i].Bool = in.Bool
			case gltype.KindInt:
				out.Values[i].Bool = in.Int != 0
			case gltype.KindFloat:
				out.Values[i].Bool = in.Float != 0
			}
		case gltype.KindInt:
			switch srcKind {
			case gltype.KindBool:
				if in.Bool {
					out.Values[i].Int = 1
				}
			case gltype.KindInt:
				out.Values[i].Int = in.Int
			case gltype.KindFloat:
				out.Values[i].Int = int32(in.Float)
			}
		case gltype.KindFloat:
			switch srcKind {
			case gltype.KindBool:
				if in.Bool {
					out.Values[i].Float = 1
				}
			case gltype.KindInt:
				out.Values[i].Float = float32(in.Int)
			case gltype.KindFloat:
				out.Values[i].Float = in.Float
			}
		}
	}
	return out
}

// Swizzle produces a new constant by gathering channels c[s0..s3] in order.
func Swizzle(c Constant, sel [4]int, n int) Constant {
	var out Constant
	for i := 0; i < n && i < 4; i++ {
		out.Values[i] = c.Values[sel[i]]
	}
	return out
}

// Equals is the recursive struct/array/matrix/vector/scalar equality walker
// of spec §4.2. For scalar/vector/matrix-column primitives it compares the
// channel union according to the type's scalar kind; callers handle
// struct/array recursion by composing fields before calling Equals on each
// leaf, since Constant itself has no way to represent nested structs.
func Equals(a, b Constant, t *gltype.Type) bool {
	n := t.Elements
	if n == 0 {
		n = 1
	}
	kind := scalarKind(t)
	for i := 0; i < n && i < 4; i++ {
		switch kind {
		case gltype.KindBool:
			if a.Values[i].Bool != b.Values[i].Bool {
				return false
			}
		case gltype.KindInt:
			if a.Values[i].Int != b.Values[i].Int {
				return false
			}
		default:
			if a.Values[i].Float != b.Values[i].Float {
				return false
			}
		}
	}
	return true
}

// Hash is the FNV-style fold of spec §4.2: h = ((h<<7)+x) ^ (h>>15), applied
// per channel in order, chosen to agree exactly with Equals so that constant
// pool deduplication (component J) is correct.
func Hash(c Constant, t *gltype.Type) uint32 {
	n := t.Elements
	if n == 0 {
		n = 1
	}
	kind := scalarKind(t)
	var h uint32
	for i := 0; i < n && i < 4; i++ {
		var x uint32
		switch kind {
		case gltype.KindBool:
			if c.Values[i].Bool {
				x = 1
			}
		case gltype.KindInt:
			x = uint32(c.Values[i].Int)
		default:
			x = math.Float32bits(c.Values[i].Float)
		}
		h = ((h << 7) + x) ^ (h >> 15)
	}
	return h
}
