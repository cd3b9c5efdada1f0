// Package gltype implements the GLSL ES type system (component B of the
// compiler): canonical primitive types plus per-declaration array, struct
// and function types.
package gltype

import "github.com/hmwill/glslesc/internal/arena"

// Precision is one of the four GLSL ES precision qualifiers.
type Precision int

const (
	PrecisionUndefined Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	default:
		return ""
	}
}

// Kind tags the variant of a Type.
type Kind int

const (
	KindBool Kind = iota
	KindBVec2
	KindBVec3
	KindBVec4
	KindInt
	KindIVec2
	KindIVec3
	KindIVec4
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindMat2
	KindMat3
	KindMat4
	KindSampler2D
	KindSampler3D
	KindSamplerCube
	KindVoid
	KindArray
	KindStruct
	KindFunction
)

var kindNames = map[Kind]string{
	KindBool: "bool", KindBVec2: "bvec2", KindBVec3: "bvec3", KindBVec4: "bvec4",
	KindInt: "int", KindIVec2: "ivec2", KindIVec3: "ivec3", KindIVec4: "ivec4",
	KindFloat: "float", KindVec2: "vec2", KindVec3: "vec3", KindVec4: "vec4",
	KindMat2: "mat2", KindMat3: "mat3", KindMat4: "mat4",
	KindSampler2D: "sampler2D", KindSampler3D: "sampler3D", KindSamplerCube: "samplerCube",
	KindVoid: "void", KindArray: "array", KindStruct: "struct", KindFunction: "function",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "?"
}

// IsVector reports whether kind is one of vecN/ivecN/bvecN.
func (k Kind) IsVector() bool {
	switch k {
	case KindBVec2, KindBVec3, KindBVec4, KindIVec2, KindIVec3, KindIVec4, KindVec2, KindVec3, KindVec4:
		return true
	}
	return false
}

// IsMatrix reports whether kind is matN.
func (k Kind) IsMatrix() bool {
	switch k {
	case KindMat2, KindMat3, KindMat4:
		return true
	}
	return false
}

// IsScalar reports whether kind is a 1-element primitive.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInt, KindFloat:
		return true
	}
	return false
}

// IsSampler reports whether kind names a sampler.
func (k Kind) IsSampler() bool {
	switch k {
	case KindSampler2D, KindSampler3D, KindSamplerCube:
		return true
	}
	return false
}

// Field is one member of a Struct type.
type Field struct {
	Name   string
	Type   *Type
	Offset int // in 4-component slots
}

// Direction is a function parameter's passing mode.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirInOut
)

// Param is one parameter of a Function type.
type Param struct {
	Type *Type
	Dir  Direction
}

// Type is the tagged union described by spec §3.1.
type Type struct {
	Kind      Kind
	Elements  int // 1..4 for primitives; column count for matrices
	Size      int // slots: N for matN, 1 for all other primitives
	Precision Precision

	// Array
	Element *Type
	Length  int // -1 = unsized

	// Struct
	Fields []Field
	Name   string // struct tag, if any

	// Function
	Return *Type
	Params []Param
}

var primitiveElements = map[Kind]int{
	KindBool: 1, KindBVec2: 2, KindBVec3: 3, KindBVec4: 4,
	KindInt: 1, KindIVec2: 2, KindIVec3: 3, KindIVec4: 4,
	KindFloat: 1, KindVec2: 2, KindVec3: 3, KindVec4: 4,
	KindMat2: 2, KindMat3: 3, KindMat4: 4,
	KindSampler2D: 1, KindSampler3D: 1, KindSamplerCube: 1,
	KindVoid: 0,
}

// canonicalKey identifies a canonical primitive by kind and precision.
type canonicalKey struct {
	kind Kind
	prec Precision
}

var canonical = map[canonicalKey]*Type{}

func init() {
	for k, elems := range primitiveElements {
		for prec := PrecisionUndefined; prec <= PrecisionHigh; prec++ {
			size := 1
			if k.IsMatrix() {
				size = elems
			}
			canonical[canonicalKey{k, prec}] = &Type{
				Kind: k, Elements: elems, Size: size, Precision: prec,
			}
		}
	}
}

// BasicType returns the canonical Type value for a primitive kind and
// precision. Two calls with the same arguments always return the same
// pointer (spec §8.1's canonicalization invariant).
func BasicType(kind Kind, prec Precision) *Type {
	t, ok := canonical[canonicalKey{kind, prec}]
	if !ok {
		panic("gltype: BasicType called with non-primitive kind")
	}
	return t
}

// VectorType is a shortcut for BasicType with a vector kind of n components.
func VectorType(scalarKind Kind, prec Precision, n int) *Type {
	var k Kind
	switch scalarKind {
	case KindBool:
		k = []Kind{KindBool, KindBool, KindBVec2, KindBVec3, KindBVec4}[n]
	case KindInt:
		k = []Kind{KindInt, KindInt, KindIVec2, KindIVec3, KindIVec4}[n]
	case KindFloat:
		k = []Kind{KindFloat, KindFloat, KindVec2, KindVec3, KindVec4}[n]
	default:
		panic("gltype: VectorType needs a scalar base kind")
	}
	return BasicType(k, prec)
}

// MatrixType is a shortcut for BasicType with a matN kind.
func MatrixType(prec Precision, n int) *Type {
	return BasicType([]Kind{0, 0, KindMat2, KindMat3, KindMat4}[n], prec)
}

// ElementType returns the scalar (for vectors) or column-vector (for
// matrices) type of a compound primitive, sharing the same precision.
func ElementType(t *Type) *Type {
	switch {
	case t.Kind.IsMatrix():
		return VectorType(KindFloat, t.Precision, t.Elements)
	case t.Kind.IsVector():
		switch t.Kind {
		case KindBVec2, KindBVec3, KindBVec4:
			return BasicType(KindBool, t.Precision)
		case KindIVec2, KindIVec3, KindIVec4:
			return BasicType(KindInt, t.Precision)
		default:
			return BasicType(KindFloat, t.Precision)
		}
	default:
		return t
	}
}

// NewArrayType allocates a per-declaration array type in pool. length < 0
// means unsized (only legal for the array-type function argument case).
func NewArrayType(pool *arena.Arena, elem *Type, length int) *Type {
	pool.Alloc(64)
	size := 0
	if length > 0 {
		size = length * elem.Size
	}
	return &Type{Kind: KindArray, Element: elem, Length: length, Size: size}
}

// NewStructType allocates an empty struct type; call SetFields once the
// member list is known (struct bodies are parsed before their size can be
// computed, mirroring type_struct/type.h's finish-after-parse shape).
func NewStructType(pool *arena.Arena, name string) *Type {
	pool.Alloc(32)
	return &Type{Kind: KindStruct, Name: name}
}

// SetFields attaches field list and computes the struct's Size as the sum of
// field sizes, fixing each field's Offset in slot units.
func (t *Type) SetFields(fields []Field) {
	offset := 0
	for i := range fields {
		fields[i].Offset = offset
		offset += fields[i].Type.Size
	}
	t.Fields = fields
	t.Size = offset
}

// NewFunctionType allocates a function type.
func NewFunctionType(pool *arena.Arena, ret *Type, params []Param) *Type {
	pool.Alloc(32 + 16*len(params))
	return &Type{Kind: KindFunction, Return: ret, Params: params}
}

// Matches implements the structural equality of spec §4.3.
func Matches(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindArray:
		return a.Length == b.Length && Matches(a.Element, b.Element)
	case KindStruct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Matches(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindFunction:
		if !Matches(a.Return, b.Return) || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Dir != b.Params[i].Dir || !Matches(a.Params[i].Type, b.Params[i].Type) {
				return false
			}
		}
		return true
	default:
		return a.Precision == b.Precision
	}
}

// IsOverload compares two function types ignoring array size and parameter
// direction, the loosened equality used to detect conflicting overloads.
func IsOverload(a, b *Type) bool {
	if a.Kind != KindFunction || b.Kind != KindFunction || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !sameUpToArraySize(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

func sameUpToArraySize(a, b *Type) bool {
	if a.Kind == KindArray && b.Kind == KindArray {
		return sameUpToArraySize(a.Element, b.Element)
	}
	return Matches(a, b)
}

// ReturnTypeMatches checks that two function types return the same type.
func ReturnTypeMatches(a, b *Type) bool { return Matches(a.Return, b.Return) }

// ParamQualifiersMatch checks that the directions of two parameter lists
// agree pairwise.
func ParamQualifiersMatch(a, b *Type) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Dir != b.Params[i].Dir {
			return false
		}
	}
	return true
}

// ParamSizesMatch checks that array parameter sizes agree pairwise,
// ignoring all other structural detail.
func ParamSizesMatch(a, b *Type) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		pa, pb := a.Params[i].Type, b.Params[i].Type
		if (pa.Kind == KindArray) != (pb.Kind == KindArray) {
			return false
		}
		if pa.Kind == KindArray && pa.Length != pb.Length {
			return false
		}
	}
	return true
}
