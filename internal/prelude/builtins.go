package prelude

import (
	"github.com/hmwill/glslesc/internal/arena"
	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/symbols"
)

// ShaderKind mirrors lower.ShaderKind without importing package lower, which
// itself depends on this package's string constants; kept as a tiny local
// enum rather than a shared third package to avoid a needless import cycle.
type ShaderKind int

const (
	Vertex ShaderKind = iota
	Fragment
)

// RegisterBuiltinVariables defines gl_Position/gl_FragColor/etc. directly
// against the global scope (spec §6.6), bypassing the declaration grammar
// entirely: these names need the dedicated QualBuiltin* qualifier variants
// symbols.Symbol carries, and no source-level qualifier keyword spells
// "this varying is the rasterizer's clip-space output". The backing
// ir.ProgVar for each is still created lazily by lower.progVarFor on first
// reference, exactly like any other global symbol.
func RegisterBuiltinVariables(scope *symbols.Scope, kind ShaderKind) {
	highp := gltype.PrecisionHigh
	vec4T := gltype.VectorType(gltype.KindFloat, highp, 4)
	floatT := gltype.BasicType(gltype.KindFloat, highp)
	boolT := gltype.BasicType(gltype.KindBool, highp)

	if kind == Vertex {
		scope.Define("gl_Position", vec4T, symbols.QualBuiltinPosition)
		scope.Define("gl_PointSize", floatT, symbols.QualBuiltinPointSize)
		return
	}

	scope.Define("gl_FragCoord", vec4T, symbols.QualBuiltinFragCoord)
	scope.Define("gl_FrontFacing", boolT, symbols.QualBuiltinFrontFacing)
	scope.Define("gl_PointCoord", gltype.VectorType(gltype.KindFloat, highp, 2), symbols.QualBuiltinPointCoord)
	scope.Define("gl_FragColor", vec4T, symbols.QualBuiltinFragColor)
	pool := arena.New("builtin-types", 0)
	scope.Define("gl_FragData", gltype.NewArrayType(pool, vec4T, 4), symbols.QualBuiltinFragData)
}
