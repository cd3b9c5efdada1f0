// Package prelude supplies the four built-in-prelude string constants of
// spec §6.3: default-precision statements, the common math/vector function
// library, and the two kind-specific builtin blocks, each written in the
// shading language's own grammar and prepended to user source ahead of
// tokenizing (spec §4.9 step 2). Functions that reduce to a single IL
// instruction are implemented with an inline-assembly statement; the
// remainder are plain GLSL ES expressed in terms of those.
package prelude

// Version identifies the built-in prelude text itself, so a cache keyed on
// shader kind plus source text (internal/ilcache) can tell apart two compiles
// of identical user source against different prelude revisions. Bump this
// whenever the prelude constants below change in a way that could change
// emitted IL for existing shaders.
const Version = "1"

// PrecisionVertex and PrecisionFragment hold the default-precision
// declarations for each shader kind:
// fragment shaders have no default float precision (the source must set one
// before using an unqualified float), vertex shaders default to high.
const PrecisionVertex = `
precision highp float;
precision highp int;
`

const PrecisionFragment = `
precision mediump int;
`

// Common holds the built-in declarations shared by both shader kinds: the
// GLSL ES 1.00 §8 function library, to the extent it is expressible over
// the register ISA's instruction set. A handful of entries (arcus
// functions, matrixCompMult, the genType overloads of the scalar-replicate
// trig/exponential ops, and the sampler lookup functions) are omitted; see
// the grounding ledger for why each can't be expressed through the
// `__asm` mechanism without a dedicated calling convention.
const Common = `
// -- angle and trigonometry, float only: SIN/COS/EX2/LG2/RCP/RSQ/POW/EXP/LOG
// replicate a single scalar lane rather than operating per-component, so a
// genType overload would need per-lane decomposition this prelude doesn't do.
float radians(float degrees) { return degrees * 0.017453292519943295; }
float degrees(float radians) { return radians * 57.29577951308232; }
float sin(float angle) { return __asmSIN(angle, angle); }
float cos(float angle) { return __asmCOS(angle, angle); }
float tan(float angle) { return sin(angle) / cos(angle); }

// -- exponential
float pow(float x, float y) { return __asmPOW(x, x, y); }
float exp(float x) { return __asmEXP(x, x); }
float log(float x) { return __asmLOG(x, x); }
float exp2(float x) { return __asmEX2(x, x); }
float log2(float x) { return __asmLG2(x, x); }
float sqrt(float x) { return pow(x, 0.5); }
float inversesqrt(float x) { return __asmRSQ(x, x); }

// -- common, float
float abs(float x) { return __asmABS(x, x); }
float sign(float x) { return __asmSSG(x, x); }
float floor(float x) { return __asmFLR(x, x); }
float ceil(float x) { return -floor(-x); }
float fract(float x) { return __asmFRC(x, x); }
float mod(float x, float y) { return x - y * floor(x / y); }
float min(float x, float y) { return __asmMIN(x, x, y); }
float max(float x, float y) { return __asmMAX(x, x, y); }
float clamp(float x, float minVal, float maxVal) { return min(max(x, minVal), maxVal); }
float mix(float x, float y, float a) { return __asmLRP(x, a, y, x); }
float step(float edge, float x) { return __asmSGE(x, x, edge); }
float smoothstep(float edge0, float edge1, float x) {
    float t = clamp((x - edge0) / (edge1 - edge0), 0.0, 1.0);
    return t * t * (3.0 - 2.0 * t);
}

// -- common, vec2/vec3/vec4: ABS/SSG/FLR/FRC/MIN/MAX/LRP/SGE all operate
// per component over the whole register, so these forward straight to asm.
vec2 abs(vec2 x) { return __asmABS(x, x); }
vec3 abs(vec3 x) { return __asmABS(x, x); }
vec4 abs(vec4 x) { return __asmABS(x, x); }
vec2 sign(vec2 x) { return __asmSSG(x, x); }
vec3 sign(vec3 x) { return __asmSSG(x, x); }
vec4 sign(vec4 x) { return __asmSSG(x, x); }
vec2 floor(vec2 x) { return __asmFLR(x, x); }
vec3 floor(vec3 x) { return __asmFLR(x, x); }
vec4 floor(vec4 x) { return __asmFLR(x, x); }
vec2 ceil(vec2 x) { return -floor(-x); }
vec3 ceil(vec3 x) { return -floor(-x); }
vec4 ceil(vec4 x) { return -floor(-x); }
vec2 fract(vec2 x) { return __asmFRC(x, x); }
vec3 fract(vec3 x) { return __asmFRC(x, x); }
vec4 fract(vec4 x) { return __asmFRC(x, x); }
vec2 min(vec2 x, vec2 y) { return __asmMIN(x, x, y); }
vec3 min(vec3 x, vec3 y) { return __asmMIN(x, x, y); }
vec4 min(vec4 x, vec4 y) { return __asmMIN(x, x, y); }
vec2 max(vec2 x, vec2 y) { return __asmMAX(x, x, y); }
vec3 max(vec3 x, vec3 y) { return __asmMAX(x, x, y); }
vec4 max(vec4 x, vec4 y) { return __asmMAX(x, x, y); }
vec2 clamp(vec2 x, vec2 minVal, vec2 maxVal) { return min(max(x, minVal), maxVal); }
vec3 clamp(vec3 x, vec3 minVal, vec3 maxVal) { return min(max(x, minVal), maxVal); }
vec4 clamp(vec4 x, vec4 minVal, vec4 maxVal) { return min(max(x, minVal), maxVal); }
vec2 mix(vec2 x, vec2 y, float a) { return __asmLRP(x, vec2(a), y, x); }
vec3 mix(vec3 x, vec3 y, float a) { return __asmLRP(x, vec3(a), y, x); }
vec4 mix(vec4 x, vec4 y, float a) { return __asmLRP(x, vec4(a), y, x); }
vec2 step(vec2 edge, vec2 x) { return __asmSGE(x, x, edge); }
vec3 step(vec3 edge, vec3 x) { return __asmSGE(x, x, edge); }
vec4 step(vec4 edge, vec4 x) { return __asmSGE(x, x, edge); }

// -- geometric
float length(vec2 v) { return sqrt(dot(v, v)); }
float length(vec3 v) { return sqrt(dot(v, v)); }
float length(vec4 v) { return sqrt(dot(v, v)); }
float distance(vec2 p0, vec2 p1) { return length(p0 - p1); }
float distance(vec3 p0, vec3 p1) { return length(p0 - p1); }
float distance(vec4 p0, vec4 p1) { return length(p0 - p1); }
float dot(vec2 a, vec2 b) { return __asmDP2(a, a, b); }
float dot(vec3 a, vec3 b) { return __asmDP3(a, a, b); }
float dot(vec4 a, vec4 b) { return __asmDP4(a, a, b); }
vec3 cross(vec3 a, vec3 b) { return __asmXPD(a, a, b); }
vec2 normalize(vec2 v) { return v * inversesqrt(dot(v, v)); }
vec3 normalize(vec3 v) { return v * inversesqrt(dot(v, v)); }
vec4 normalize(vec4 v) { return v * inversesqrt(dot(v, v)); }
vec2 faceforward(vec2 n, vec2 i, vec2 nref) { return dot(nref, i) < 0.0 ? n : -n; }
vec3 faceforward(vec3 n, vec3 i, vec3 nref) { return dot(nref, i) < 0.0 ? n : -n; }
vec4 faceforward(vec4 n, vec4 i, vec4 nref) { return dot(nref, i) < 0.0 ? n : -n; }
vec2 reflect(vec2 i, vec2 n) { return i - 2.0 * dot(n, i) * n; }
vec3 reflect(vec3 i, vec3 n) { return i - 2.0 * dot(n, i) * n; }
vec4 reflect(vec4 i, vec4 n) { return i - 2.0 * dot(n, i) * n; }
`

// VertexBuiltins holds the vertex-shader-specific declarations. The actual
// gl_Position/gl_PointSize symbols are not declared here: the normal
// declaration grammar has no syntax for a variable's "this is the built-in
// position output" qualifier variant (symbols.QualBuiltinPosition and
// friends), so they are registered directly against the global scope by
// RegisterBuiltinVariables instead. This block is reserved for textual
// vertex-only declarations that don't need that special qualifier.
const VertexBuiltins = ``

// FragmentBuiltins is VertexBuiltins' counterpart for fragment shaders,
// for the same reason: gl_FragCoord/gl_FragColor/etc. are registered
// programmatically, not declared here.
const FragmentBuiltins = ``
