// Package lower implements components G/H/I: it walks the AST produced by
// package parser and emits IL into an ir.Program, resolving names through
// package symbols and folding constants through package constant. Structured
// after the teacher's pkg/compiler/codegen.go CodeGen walker (a symbol table
// handle, a running label counter, and a loop-label stack for break/continue)
// generalized from a single flat instruction stream to the register-based IL
// of spec §4.10.
package lower

import (
	"math"
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/arena"
	"github.com/hmwill/glslesc/internal/ast"
	"github.com/hmwill/glslesc/internal/constant"
	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
	"github.com/hmwill/glslesc/internal/symbols"
	"github.com/hmwill/glslesc/internal/token"
)

// ShaderKind distinguishes the vertex and fragment pipeline stages, which
// differ in their built-in variable sets (spec §6.2).
type ShaderKind int

const (
	Vertex ShaderKind = iota
	Fragment
)

// loopFrame records the state active inside one for-loop nesting level. A
// for-loop lowers to REP, which has no label-based exit the way LOOP/BRK
// did; continue instead sets continueFlag and the statements following the
// continue inside the same block are guarded by it (spec §4.8.3).
type loopFrame struct {
	continueFlag *ir.ProgVar
}

// Lowerer carries the state threaded through one shader's lowering pass.
type Lowerer struct {
	Prog   *ir.Program
	Global *symbols.Scope
	Log    *diag.Log
	Kind   ShaderKind

	scope     *symbols.Scope
	loopStack []loopFrame
	walking   symbols.SymbolArray
	maxDepth  int
	typeArena *arena.Arena
}

// New creates a Lowerer over an already-created program and global scope
// (spec §4.9 steps 2-3 are performed by the caller, pkg/shaderc). Struct and
// array types built up during lowering are charged against their own
// unbounded arena, separate from the caller's IL program arena, since their
// lifetime tracks the symbol table rather than the emitted instructions.
func New(prog *ir.Program, global *symbols.Scope, log *diag.Log, kind ShaderKind) *Lowerer {
	return &Lowerer{Prog: prog, Global: global, Log: log, Kind: kind, scope: global, typeArena: arena.New("types", 0)}
}

// --- type-spec resolution ---

// ResolveType turns a parsed TypeSpec into a canonical gltype.Type, applying
// the scope's default precision when the spec leaves it unspecified (spec
// §3.1.2's precision-defaulting rule).
func (lw *Lowerer) ResolveType(ts ast.TypeSpec, scope *symbols.Scope) *gltype.Type {
	if ts.Struct != nil {
		return lw.resolveStructType(ts.Struct, scope)
	}
	if ts.StructName != "" && ts.PrimKind == 0 {
		if sym := symbols.FindNested(scope, ts.StructName); sym != nil && sym.Qualifier == symbols.QualTypeName {
			return lw.applyArraySizes(sym.Type, ts.ArraySizes)
		}
		lw.Log.Append(diag.Named(diag.S0001, 0, ts.StructName))
		return gltype.BasicType(gltype.KindVoid, gltype.PrecisionUndefined)
	}

	prec := lw.precisionFor(ts, scope)
	var base *gltype.Type
	switch ts.PrimKind {
	case token.KW_VOID:
		base = gltype.BasicType(gltype.KindVoid, gltype.PrecisionUndefined)
	case token.KW_FLOAT:
		base = gltype.BasicType(gltype.KindFloat, prec)
	case token.KW_INT:
		base = gltype.BasicType(gltype.KindInt, prec)
	case token.KW_BOOL:
		base = gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined)
	case token.KW_VEC2:
		base = gltype.VectorType(gltype.KindFloat, prec, 2)
	case token.KW_VEC3:
		base = gltype.VectorType(gltype.KindFloat, prec, 3)
	case token.KW_VEC4:
		base = gltype.VectorType(gltype.KindFloat, prec, 4)
	case token.KW_IVEC2:
		base = gltype.VectorType(gltype.KindInt, prec, 2)
	case token.KW_IVEC3:
		base = gltype.VectorType(gltype.KindInt, prec, 3)
	case token.KW_IVEC4:
		base = gltype.VectorType(gltype.KindInt, prec, 4)
	case token.KW_BVEC2:
		base = gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 2)
	case token.KW_BVEC3:
		base = gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 3)
	case token.KW_BVEC4:
		base = gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 4)
	case token.KW_MAT2:
		base = gltype.MatrixType(prec, 2)
	case token.KW_MAT3:
		base = gltype.MatrixType(prec, 3)
	case token.KW_MAT4:
		base = gltype.MatrixType(prec, 4)
	case token.KW_SAMPLER2D:
		base = gltype.BasicType(gltype.KindSampler2D, prec)
	case token.KW_SAMPLER3D:
		base = gltype.BasicType(gltype.KindSampler3D, prec)
	case token.KW_SAMPLERCUBE:
		base = gltype.BasicType(gltype.KindSamplerCube, prec)
	default:
		base = gltype.BasicType(gltype.KindVoid, gltype.PrecisionUndefined)
	}
	return lw.applyArraySizes(base, ts.ArraySizes)
}

func (lw *Lowerer) precisionFor(ts ast.TypeSpec, scope *symbols.Scope) gltype.Precision {
	switch ts.Precision {
	case token.KW_LOWP:
		return gltype.PrecisionLow
	case token.KW_MEDIUMP:
		return gltype.PrecisionMedium
	case token.KW_HIGHP:
		return gltype.PrecisionHigh
	}
	switch ts.PrimKind {
	case token.KW_INT, token.KW_IVEC2, token.KW_IVEC3, token.KW_IVEC4:
		return scope.DefaultInt
	case token.KW_SAMPLER2D:
		return scope.DefaultSampler2D
	case token.KW_SAMPLER3D:
		return scope.DefaultSampler3D
	case token.KW_SAMPLERCUBE:
		return scope.DefaultSamplerCube
	default:
		return scope.DefaultFloat
	}
}

func (lw *Lowerer) applyArraySizes(base *gltype.Type, sizes []ast.Expr) *gltype.Type {
	t := base
	for i := len(sizes) - 1; i >= 0; i-- {
		n := -1
		if sizes[i] != nil {
			if c, ct, ok := lw.constEval(sizes[i]); ok {
				n = int(constAsFloat(c, ct))
			}
		}
		t = gltype.NewArrayType(lw.typeArena, t, n)
	}
	return t
}

func (lw *Lowerer) resolveStructType(sd *ast.StructDecl, scope *symbols.Scope) *gltype.Type {
	st := gltype.NewStructType(lw.typeArena, sd.Name)
	fields := make([]gltype.Field, 0, len(sd.Fields))
	for _, f := range sd.Fields {
		ft := lw.ResolveType(f.Type, scope)
		fields = append(fields, gltype.Field{Name: f.Name, Type: ft})
	}
	st.SetFields(fields)
	if sd.Name != "" {
		scope.Define(sd.Name, st, symbols.QualTypeName)
	}
	return st
}

// --- declarations ---

// LowerTranslationUnit lowers every top-level declaration in order, matching
// the original's single top-to-bottom declaration pass (spec §4.6).
func (lw *Lowerer) LowerTranslationUnit(tu *ast.TranslationUnit) {
	for _, d := range tu.Decls {
		lw.lowerDecl(d, lw.Global)
	}
}

func (lw *Lowerer) lowerDecl(d ast.Decl, scope *symbols.Scope) {
	switch n := d.(type) {
	case *ast.PrecisionDecl:
		lw.lowerPrecisionDecl(n, scope)
	case *ast.InvariantDecl:
		lw.lowerInvariantDecl(n, scope)
	case *ast.StructDecl:
		lw.resolveStructType(n, scope)
	case *ast.VarDecl:
		lw.lowerVarDecl(n, scope)
	case *ast.FuncDecl:
		lw.lowerFuncDecl(n, scope)
	}
}

func (lw *Lowerer) lowerPrecisionDecl(n *ast.PrecisionDecl, scope *symbols.Scope) {
	var prec gltype.Precision
	switch n.Precision {
	case token.KW_LOWP:
		prec = gltype.PrecisionLow
	case token.KW_MEDIUMP:
		prec = gltype.PrecisionMedium
	case token.KW_HIGHP:
		prec = gltype.PrecisionHigh
	}
	switch n.Type {
	case token.KW_FLOAT:
		scope.DefaultFloat = prec
	case token.KW_INT:
		scope.DefaultInt = prec
	case token.KW_SAMPLER2D:
		scope.DefaultSampler2D = prec
	case token.KW_SAMPLER3D:
		scope.DefaultSampler3D = prec
	case token.KW_SAMPLERCUBE:
		scope.DefaultSamplerCube = prec
	}
}

func (lw *Lowerer) lowerInvariantDecl(n *ast.InvariantDecl, scope *symbols.Scope) {
	for _, name := range n.Names {
		sym := symbols.FindNested(scope, name)
		if sym == nil {
			lw.Log.Append(diag.Named(diag.S0001, n.Line(), name))
			continue
		}
		sym.Invariant = true
	}
}

func (lw *Lowerer) qualifierFor(q ast.TypeQualifier) symbols.QualifierKind {
	switch q {
	case ast.QualConst:
		return symbols.QualConstant
	case ast.QualAttribute:
		return symbols.QualAttribute
	case ast.QualUniform:
		return symbols.QualUniform
	case ast.QualVarying, ast.QualInvariantVarying:
		return symbols.QualVarying
	default:
		return symbols.QualVariable
	}
}

func (lw *Lowerer) lowerVarDecl(n *ast.VarDecl, scope *symbols.Scope) {
	baseType := lw.ResolveType(n.Type, scope)
	qual := lw.qualifierFor(n.Qualifier)

	for _, d := range n.Declarators {
		t := lw.applyArraySizes(baseType, nil)
		if existing := scope.Find(d.Name); existing != nil {
			lw.Log.Append(diag.Named(diag.S0002, d.Line, d.Name))
			continue
		}
		sym := scope.Define(d.Name, t, qual)
		if n.Qualifier == ast.QualInvariantVarying {
			sym.Invariant = true
		}

		if qual == symbols.QualConstant {
			if d.Init == nil {
				lw.Log.Append(diag.New(diag.S0003, d.Line))
				continue
			}
			if c, ct, ok := lw.constEval(d.Init); ok {
				sym.IsConst = true
				sym.ConstInit = []constant.Constant{constant.Convert(c, ct, t)}
				continue
			}
			lw.Log.Append(diag.New(diag.S0003, d.Line))
			continue
		}

		if isFlattenable(t) {
			lw.flatten(sym)
			if d.Init != nil && scope.Kind == symbols.ScopeLocal {
				if src, ok := lw.lowerLValue(d.Init, scope, true); ok && src.Sym != nil && gltype.Matches(src.Type, t) {
					lw.copyFlatLeaves(sym, "", src.Sym, src.Path)
				}
			}
			continue
		}

		pv := lw.progVarFor(sym, scope)
		if d.Init != nil && scope.Kind == symbols.ScopeLocal {
			val, _ := lw.lowerExprRValue(d.Init, scope)
			if val != nil {
				lw.emitMove(pv, val, t)
			}
		}
	}
}

// progVarFor lazily materializes the ir.ProgVar backing a non-struct symbol,
// choosing the pool by storage qualifier (spec §4.9 step 4's global
// declaration pass). Struct- and array-of-struct-typed symbols never reach
// here; they are backed by Lowerer.flatten's per-leaf FlatVars instead,
// since the IL memory model has no aggregate register (spec §4.6).
func (lw *Lowerer) progVarFor(sym *symbols.Symbol, scope *symbols.Scope) *ir.ProgVar {
	if sym.ProgVar != nil {
		return sym.ProgVar
	}
	sym.ProgVar = lw.newProgVar(sym.Qualifier, sym.Type, sym.Name)
	return sym.ProgVar
}

// newProgVar creates the ir.ProgVar for one primitive-or-array leaf (either
// a whole non-struct symbol, or one flattened struct field), picking the
// storage pool the same way progVarFor always has.
func (lw *Lowerer) newProgVar(qual symbols.QualifierKind, t *gltype.Type, name string) *ir.ProgVar {
	switch qual {
	case symbols.QualUniform:
		return lw.Prog.NewParam(t, name, -1)
	case symbols.QualAttribute:
		return lw.Prog.NewIn(t, ir.SegmentAttrib, name, -1)
	case symbols.QualVarying:
		if lw.Kind == Vertex {
			return lw.Prog.NewOut(t, ir.SegmentVarying, name, -1)
		}
		return lw.Prog.NewIn(t, ir.SegmentVarying, name, -1)
	case symbols.QualBuiltinPosition, symbols.QualBuiltinPointSize:
		// Vertex outputs (spec §6.6); only reachable when lw.Kind == Vertex,
		// since the fragment global scope never defines these names.
		return lw.Prog.NewOut(t, ir.SegmentVarying, name, -1)
	case symbols.QualBuiltinFragColor, symbols.QualBuiltinFragData:
		return lw.Prog.NewOut(t, ir.SegmentVarying, name, -1)
	case symbols.QualBuiltinFragCoord, symbols.QualBuiltinFrontFacing, symbols.QualBuiltinPointCoord:
		return lw.Prog.NewIn(t, ir.SegmentVarying, name, -1)
	default:
		return lw.Prog.NewTemp(t)
	}
}

// isFlattenable reports whether t's symbols must be backed by per-leaf
// FlatVars rather than a single ir.ProgVar: a struct, or an array whose
// element is a struct. A plain array of primitives keeps its single
// ProgVar (spec §4.6 already allows 1-D arrays of primitives in the IL
// memory model).
func isFlattenable(t *gltype.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind == gltype.KindStruct {
		return true
	}
	return t.Kind == gltype.KindArray && t.Element != nil && t.Element.Kind == gltype.KindStruct
}

// flatten walks sym's declared struct/array-of-struct type and gives each
// primitive (or 1-D array of primitive) leaf its own ir.ProgVar, recorded
// in sym.Flat. Paths join struct-field steps with "." and array-of-struct
// element steps with "#<index>", e.g. a field "pos" of lights[2] becomes
// the path "lights#2.pos" — matched by lowerLValue's own path construction.
func (lw *Lowerer) flatten(sym *symbols.Symbol) {
	sym.Flat = map[string]symbols.FlatVar{}
	lw.flattenInto(sym, "", sym.Type)
}

func (lw *Lowerer) flattenInto(sym *symbols.Symbol, path string, t *gltype.Type) {
	switch {
	case t.Kind == gltype.KindStruct:
		for _, f := range t.Fields {
			p := f.Name
			if path != "" {
				p = path + "." + f.Name
			}
			lw.flattenInto(sym, p, f.Type)
		}
	case t.Kind == gltype.KindArray && t.Element.Kind == gltype.KindStruct:
		for i := 0; i < t.Length; i++ {
			lw.flattenInto(sym, path+"#"+strconv.Itoa(i), t.Element)
		}
	default:
		name := sym.Name + "$" + strings.NewReplacer(".", "_", "#", "_").Replace(path)
		sym.Flat[path] = symbols.FlatVar{Var: lw.newProgVar(sym.Qualifier, t, name), Type: t}
	}
}

// copyFlatLeaves copies every leaf of src (a flattened symbol/path) whose
// path is srcPath or nested under it into the matching leaf of dst under
// dstPath, used for a struct-typed local's initializer and for whole-struct
// assignment. dst and src must share the same struct type at those paths.
func (lw *Lowerer) copyFlatLeaves(dst *symbols.Symbol, dstPath string, src *symbols.Symbol, srcPath string) {
	for path, dfv := range dst.Flat {
		if dstPath != "" && path != dstPath &&
			!strings.HasPrefix(path, dstPath+".") && !strings.HasPrefix(path, dstPath+"#") {
			continue
		}
		rel := strings.TrimPrefix(path, dstPath)
		sfv, ok := src.Flat[srcPath+rel]
		if !ok {
			continue
		}
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dfv.Var, Mask: fullMask(dfv.Type)}, Src0: ir.Src{Var: sfv.Var}})
	}
}

// --- functions ---

func (lw *Lowerer) lowerFuncDecl(n *ast.FuncDecl, scope *symbols.Scope) {
	retType := lw.ResolveType(n.ReturnType, scope)
	sym := scope.Find(n.Name)
	if sym == nil {
		sym = scope.Define(n.Name, retType, symbols.QualFunction)
		sym.Function = &symbols.FunctionInfo{}
	}
	fi := sym.Function
	if fi.ParamScope == nil {
		fi.ParamScope = symbols.NewScope(scope, symbols.ScopeLocal)
	}
	fi.ParamCount = len(n.Params)
	paramScope := fi.ParamScope
	for i, param := range n.Params {
		pt := lw.ResolveType(param.Type, paramScope)
		pq := symbols.QualParameterIn
		switch param.Dir {
		case ast.ParamOut:
			pq = symbols.QualParameterOut
		case ast.ParamInOut:
			pq = symbols.QualParameterInOut
		}
		psym := paramScope.Define(param.Name, pt, pq)
		psym.ParamIndex = i
		psym.IsConst = param.Const
	}

	if n.Body == nil {
		return // prototype only
	}
	if fi.Defined {
		lw.Log.Append(diag.Named(diag.S0004, n.Line(), n.Name))
		return
	}
	fi.Defined = true
	if fi.EntryLabel == nil {
		fi.EntryLabel = lw.Prog.NewLabel("fn_" + n.Name)
	}

	lw.Prog.BindLabel(fi.EntryLabel, lw.Prog.EndBlock())
	prevScope := lw.scope
	lw.scope = symbols.NewScope(paramScope, symbols.ScopeLocal)

	// fi.Visiting stays set for the duration of this function's own
	// lowering, so a call back into the same function from within its own
	// body (direct recursion, spec's "int f(int n){ return f(n-1); }"
	// example) is caught by lowerCall's check below rather than looping
	// forever emitting CAL instructions into an ever-growing block chain.
	fi.Visiting = true
	lw.lowerStmt(n.Body)
	fi.Visiting = false
	fi.Visited = true

	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpRET})
	lw.Prog.EndBlock()
	lw.scope = prevScope
}

// --- statements ---

// lowerStmt lowers one statement and reports whether it guarantees that,
// from this point on, the innermost enclosing loop's continueFlag is true
// (spec §4.8.3) — i.e. that a continue was taken on every path through it.
// Callers outside a loop body ignore the result.
func (lw *Lowerer) lowerStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.BlockStmt:
		prevScope := lw.scope
		lw.scope = symbols.NewScope(prevScope, symbols.ScopeLocal)
		guaranteed := lw.lowerStmtList(n.Stmts)
		lw.scope = prevScope
		return guaranteed
	case *ast.DeclStmt:
		lw.lowerDecl(n.Decl, lw.scope)
	case *ast.ExprStmt:
		lw.lowerExprRValue(n.Expr, lw.scope)
	case *ast.IfStmt:
		return lw.lowerIf(n)
	case *ast.ForStmt:
		lw.lowerFor(n)
	case *ast.ReturnStmt:
		lw.lowerReturn(n)
	case *ast.DiscardStmt:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpKIL})
		lw.Prog.EndBlock()
	case *ast.BreakStmt:
		lw.lowerBreak(n)
	case *ast.ContinueStmt:
		return lw.lowerContinue(n)
	case *ast.WhileStmt:
		lw.Log.Append(diag.New(diag.X0001, n.Line()))
	}
	return false
}

// lowerStmtList lowers a sequence of statements, guarding the remainder of
// the sequence with a single "IF !continueFlag ... ENDIF" block the moment
// one statement guarantees continueFlag is now true — mirroring the
// original compiler's ParseCompoundStatement, which opens exactly one such
// guard block per compound and keeps every following statement inside it.
func (lw *Lowerer) lowerStmtList(stmts []ast.Stmt) bool {
	guarded := false
	lastGuaranteed := false
	inLoop := len(lw.loopStack) > 0
	for _, st := range stmts {
		lastGuaranteed = lw.lowerStmt(st)
		if lastGuaranteed && inLoop && !guarded {
			top := lw.loopStack[len(lw.loopStack)-1]
			lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpIF, Src0: ir.Src{Var: top.continueFlag}, Cond: ir.CondEQ})
			lw.Prog.EndBlock()
			guarded = true
		}
	}
	if guarded {
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpENDIF})
		lw.Prog.EndBlock()
	}
	return lastGuaranteed
}

func (lw *Lowerer) lowerIf(n *ast.IfStmt) bool {
	val, t := lw.lowerExprRValue(n.Cond, lw.scope)
	if val == nil {
		return false
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpIF, Src0: ir.Src{Var: val}, Cond: ir.CondNE})
	_ = t
	lw.Prog.EndBlock()
	thenGuaranteed := lw.lowerStmt(n.Then)
	elseGuaranteed := false
	hasElse := n.Else != nil
	if hasElse {
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpELSE})
		lw.Prog.EndBlock()
		elseGuaranteed = lw.lowerStmt(n.Else)
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpENDIF})
	lw.Prog.EndBlock()
	return hasElse && thenGuaranteed && elseGuaranteed
}

func (lw *Lowerer) lowerFor(n *ast.ForStmt) {
	prevScope := lw.scope
	lw.scope = symbols.NewScope(prevScope, symbols.ScopeLocal)
	if n.Init != nil {
		lw.lowerStmt(n.Init)
	}

	count, errCode := lw.computeForTripCount(n)
	if errCode != "" {
		lw.Log.Append(diag.New(errCode, n.Line()))
		lw.scope = prevScope
		return
	}

	continueFlag := lw.Prog.NewTemp(constBoolType)
	lw.loopStack = append(lw.loopStack, loopFrame{continueFlag: continueFlag})

	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpREP, RepCount: count})
	lw.Prog.EndBlock()

	falseConst := lw.internConst(constant.ScalarBool(false), constBoolType)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: continueFlag, Mask: fullMask(constBoolType)}, Src0: ir.Src{Var: falseConst}})

	lw.lowerStmt(n.Body)

	if n.Post != nil {
		lw.lowerStmt(n.Post)
	}

	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpENDREP})
	lw.Prog.EndBlock()

	lw.loopStack = lw.loopStack[:len(lw.loopStack)-1]
	lw.scope = prevScope
}

func (lw *Lowerer) lowerBreak(n *ast.BreakStmt) {
	if len(lw.loopStack) == 0 {
		lw.Log.Append(diag.New(diag.S0005, n.Line()))
		return
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpBRK})
	lw.Prog.EndBlock()
}

// lowerContinue sets the innermost loop's continueFlag true and reports the
// guarantee to lowerStmtList. There is no IL continue instruction (spec
// §4.8.3): the original compiler lowers `continue` as a plain assignment of
// its loop's flag variable, and relies on the enclosing REP's repetition to
// reset that flag back to false at the start of every iteration.
func (lw *Lowerer) lowerContinue(n *ast.ContinueStmt) bool {
	if len(lw.loopStack) == 0 {
		lw.Log.Append(diag.New(diag.S0006, n.Line()))
		return false
	}
	top := lw.loopStack[len(lw.loopStack)-1]
	trueConst := lw.internConst(constant.ScalarBool(true), constBoolType)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: top.continueFlag, Mask: fullMask(constBoolType)}, Src0: ir.Src{Var: trueConst}})
	return true
}

// computeForTripCount derives a for-loop's static REP count from its
// header (spec §4.8.3, non-goal "only counted for with constant trip count
// is accepted"). It never emits IL; a non-empty diag.Code return means the
// caller must reject the loop entirely instead of lowering it.
func (lw *Lowerer) computeForTripCount(n *ast.ForStmt) (int, diag.Code) {
	if n.Init == nil || n.Cond == nil || n.Post == nil {
		return 0, diag.X0008
	}
	idxName, initial, ok := lw.forIndexInit(n.Init)
	if !ok {
		return 0, diag.X0006
	}
	relop, boundary, ok := lw.forCondBound(n.Cond, idxName)
	if !ok {
		return 0, diag.X0007
	}
	delta, ok := lw.forPostIncrement(n.Post, idxName)
	if !ok {
		return 0, diag.X0007
	}
	return tripCount(initial, boundary, delta, relop)
}

// forIndexInit recognizes the loop index declaration/initialization shapes
// the parser actually produces for ForStmt.Init (a DeclStmt wrapping a
// single-declarator VarDecl, or an ExprStmt wrapping a plain "i = <const>"
// AssignExpr), returning the index name and its constant initial value.
func (lw *Lowerer) forIndexInit(stmt ast.Stmt) (name string, initial float64, ok bool) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		vd, isVarDecl := s.Decl.(*ast.VarDecl)
		if !isVarDecl || len(vd.Declarators) != 1 {
			return "", 0, false
		}
		d := vd.Declarators[0]
		if d.Init == nil {
			return "", 0, false
		}
		c, ct, okc := lw.constEval(d.Init)
		if !okc || (ct.Kind != gltype.KindInt && ct.Kind != gltype.KindFloat) {
			return "", 0, false
		}
		return d.Name, float64(constAsFloat(c, ct)), true
	case *ast.ExprStmt:
		ae, isAssign := s.Expr.(*ast.AssignExpr)
		if !isAssign || ae.Op != token.ASSIGN {
			return "", 0, false
		}
		id, isIdent := ae.Lhs.(*ast.Ident)
		if !isIdent {
			return "", 0, false
		}
		c, ct, okc := lw.constEval(ae.Rhs)
		if !okc || (ct.Kind != gltype.KindInt && ct.Kind != gltype.KindFloat) {
			return "", 0, false
		}
		return id.Name, float64(constAsFloat(c, ct)), true
	}
	return "", 0, false
}

// forCondBound recognizes "<index> <relop> <const>" as the loop condition.
func (lw *Lowerer) forCondBound(cond ast.Expr, indexName string) (relop token.Kind, boundary float64, ok bool) {
	be, isBinary := cond.(*ast.BinaryExpr)
	if !isBinary {
		return 0, 0, false
	}
	id, isIdent := be.Left.(*ast.Ident)
	if !isIdent || id.Name != indexName {
		return 0, 0, false
	}
	switch be.Op {
	case token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE:
	default:
		return 0, 0, false
	}
	c, ct, okc := lw.constEval(be.Right)
	if !okc {
		return 0, 0, false
	}
	return be.Op, float64(constAsFloat(c, ct)), true
}

// forPostIncrement recognizes "<index>++", "<index>--", and
// "<index> += <const>"/"<index> -= <const>" as the loop increment,
// returning its signed per-iteration delta.
func (lw *Lowerer) forPostIncrement(stmt ast.Stmt, indexName string) (delta float64, ok bool) {
	es, isExprStmt := stmt.(*ast.ExprStmt)
	if !isExprStmt {
		return 0, false
	}
	sameIdent := func(e ast.Expr) bool {
		id, isIdent := e.(*ast.Ident)
		return isIdent && id.Name == indexName
	}
	switch e := es.Expr.(type) {
	case *ast.PostfixExpr:
		if !sameIdent(e.Expr) {
			return 0, false
		}
		switch e.Op {
		case token.INCREMENT:
			return 1, true
		case token.DECREMENT:
			return -1, true
		}
	case *ast.UnaryExpr:
		if !sameIdent(e.Expr) {
			return 0, false
		}
		switch e.Op {
		case token.INCREMENT:
			return 1, true
		case token.DECREMENT:
			return -1, true
		}
	case *ast.AssignExpr:
		if !sameIdent(e.Lhs) {
			return 0, false
		}
		c, ct, okc := lw.constEval(e.Rhs)
		if !okc {
			return 0, false
		}
		v := float64(constAsFloat(c, ct))
		switch e.Op {
		case token.PLUS_ASSIGN:
			return v, true
		case token.MINUS_ASSIGN:
			return -v, true
		}
	}
	return 0, false
}

// tripCount reimplements the original compiler's CalcNumIterationsInt/Float
// in unified float64 arithmetic. X0008 covers an empty, unbounded or
// otherwise indeterminate count (the original's ErrX0008); X0007 covers a
// count that isn't a whole number — spec §4.8.3's own worked example
// ("i != 10" with "+= 3") assigns that specific case to X0007 rather than
// the original's X0008, and this port follows the spec text where the two
// disagree (see DESIGN.md).
func tripCount(initial, boundary, increment float64, relop token.Kind) (int, diag.Code) {
	switch relop {
	case token.GT:
		initial, boundary, increment = -initial, -boundary, -increment
		relop = token.LT
	case token.GE:
		initial, boundary, increment = -initial, -boundary, -increment
		relop = token.LE
	}
	switch relop {
	case token.LT:
		if initial >= boundary || increment <= 0 {
			return 0, diag.X0008
		}
		n := (boundary - initial) / increment
		if !isWholeCount(n) {
			return 0, diag.X0007
		}
		return int(n + 0.5), ""
	case token.LE:
		if initial > boundary || increment <= 0 {
			return 0, diag.X0008
		}
		n := (boundary - initial + 1) / increment
		if !isWholeCount(n) {
			return 0, diag.X0007
		}
		return int(n + 0.5), ""
	case token.EQ:
		if initial != boundary || increment == 0 {
			return 0, diag.X0008
		}
		return 1, ""
	case token.NE:
		if initial == boundary {
			return 0, diag.X0008
		}
		i2, b2, inc2 := initial, boundary, increment
		if i2 > b2 {
			i2, b2, inc2 = -i2, -b2, -inc2
		}
		if inc2 <= 0 {
			return 0, diag.X0008
		}
		n := (b2 - i2) / inc2
		if !isWholeCount(n) {
			return 0, diag.X0007
		}
		return int(n + 0.5), ""
	}
	return 0, diag.X0008
}

func isWholeCount(f float64) bool {
	return math.Abs(f-math.Round(f)) < 1e-4
}

func (lw *Lowerer) lowerReturn(n *ast.ReturnStmt) {
	if n.Expr != nil {
		val, t := lw.lowerExprRValue(n.Expr, lw.scope)
		if val != nil {
			retval := lw.Prog.NewTemp(t)
			lw.emitMove(retval, val, t)
		}
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpRET})
	lw.Prog.EndBlock()
}

// --- expressions ---

// lowerExprRValue lowers e and returns the ProgVar holding its value plus
// its resolved type. A nil ProgVar signals a diagnostic was already logged.
func (lw *Lowerer) lowerExprRValue(e ast.Expr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if c, t, ok := lw.constEval(e); ok {
		pv := lw.internConst(c, t)
		return pv, t
	}

	switch n := e.(type) {
	case *ast.Ident:
		sym := symbols.FindNested(scope, n.Name)
		if sym == nil {
			lw.Log.Append(diag.Named(diag.S0001, n.Line(), n.Name))
			return nil, nil
		}
		if sym.IsConst && len(sym.ConstInit) == 1 {
			t := sym.Type
			return lw.internConst(sym.ConstInit[0], t), t
		}
		return lw.progVarFor(sym, scope), sym.Type

	case *ast.BinaryExpr:
		return lw.lowerBinary(n, scope)

	case *ast.LogicalExpr:
		return lw.lowerLogical(n, scope)

	case *ast.UnaryExpr:
		return lw.lowerUnary(n, scope)

	case *ast.AssignExpr:
		return lw.lowerAssign(n, scope)

	case *ast.ConditionalExpr:
		return lw.lowerConditional(n, scope)

	case *ast.FieldExpr:
		return lw.lowerField(n, scope)

	case *ast.CallOrConstructor:
		return lw.lowerCallOrConstructor(n, scope)

	case *ast.PostfixExpr:
		return lw.lowerPostfix(n, scope)

	case *ast.IndexExpr:
		return lw.lowerIndex(n, scope)

	case *ast.RetvalExpr:
		lw.Log.Append(diag.New(diag.S0007, n.Line()))
		return nil, nil

	case *ast.AsmCall:
		return lw.lowerAsmCall(n, scope)
	}
	return nil, nil
}

func (lw *Lowerer) internConst(c constant.Constant, t *gltype.Type) *ir.ProgVar {
	values := make([]ir.Value, 1)
	values[0] = ir.Value{Bool: c.Values[0].Bool, Int: c.Values[0].Int, Float: c.Values[0].Float}
	hash := constant.Hash(c, t)
	return lw.Prog.InternConst(t, values, hash, func(a, b []ir.Value) bool {
		return len(a) == len(b) && a[0] == b[0]
	})
}

var constIntType = gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined)
var constFloatType = gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined)
var constBoolType = gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined)

// constEval attempts compile-time constant folding (spec §4.7.2/8.2): only
// literal/ident-to-const/unary-minus/binary-arithmetic-of-constants chains
// fold here; anything else returns ok=false and is lowered to IL instead.
// The returned type tracks which channel of the Constant is meaningful, so
// callers never have to guess it back out.
func (lw *Lowerer) constEval(e ast.Expr) (constant.Constant, *gltype.Type, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return constant.ScalarInt(n.Value), constIntType, true
	case *ast.FloatLiteral:
		return constant.ScalarFloat(n.Value), constFloatType, true
	case *ast.BoolLiteral:
		return constant.ScalarBool(n.Value), constBoolType, true
	case *ast.UnaryExpr:
		if n.Op == token.MINUS {
			if c, t, ok := lw.constEval(n.Expr); ok {
				if t.Kind == gltype.KindInt {
					return constant.ScalarInt(-c.Values[0].Int), t, true
				}
				return constant.ScalarFloat(-c.Values[0].Float), t, true
			}
		}
	case *ast.BinaryExpr:
		l, lt, lok := lw.constEval(n.Left)
		r, rt, rok := lw.constEval(n.Right)
		if lok && rok {
			if lt.Kind == gltype.KindFloat || rt.Kind == gltype.KindFloat {
				lf, rf := constAsFloat(l, lt), constAsFloat(r, rt)
				switch n.Op {
				case token.PLUS:
					return constant.ScalarFloat(lf + rf), constFloatType, true
				case token.MINUS:
					return constant.ScalarFloat(lf - rf), constFloatType, true
				case token.STAR:
					return constant.ScalarFloat(lf * rf), constFloatType, true
				}
			} else {
				li, ri := l.Values[0].Int, r.Values[0].Int
				switch n.Op {
				case token.PLUS:
					return constant.ScalarInt(li + ri), constIntType, true
				case token.MINUS:
					return constant.ScalarInt(li - ri), constIntType, true
				case token.STAR:
					return constant.ScalarInt(li * ri), constIntType, true
				}
			}
		}
	}
	return constant.Constant{}, nil, false
}

func constAsFloat(c constant.Constant, t *gltype.Type) float32 {
	if t.Kind == gltype.KindInt {
		return float32(c.Values[0].Int)
	}
	return c.Values[0].Float
}

func (lw *Lowerer) emitMove(dst *ir.ProgVar, src *ir.ProgVar, t *gltype.Type) {
	lw.Prog.Tail().Append(&ir.Instruction{
		Op:   ir.OpMOV,
		Dst:  ir.Dst{Var: dst, Mask: fullMask(t)},
		Src0: ir.Src{Var: src},
	})
}

func fullMask(t *gltype.Type) [4]bool {
	n := 1
	if t != nil && t.Kind.IsVector() {
		n = t.Elements
	}
	var m [4]bool
	for i := 0; i < n && i < 4; i++ {
		m[i] = true
	}
	return m
}

func (lw *Lowerer) lowerBinary(n *ast.BinaryExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	l, lt := lw.lowerExprRValue(n.Left, scope)
	r, _ := lw.lowerExprRValue(n.Right, scope)
	if l == nil || r == nil {
		return nil, nil
	}
	resultType := lt
	dst := lw.Prog.NewTemp(resultType)
	var op ir.Opcode
	switch n.Op {
	case token.PLUS:
		op = ir.OpADD
	case token.MINUS:
		op = ir.OpSUB
	case token.STAR:
		op = ir.OpMUL
	case token.SLASH:
		// a / b lowers to RCP(b) followed by MUL, per spec §4.7.2's
		// division rule (no native divide opcode).
		rcp := lw.Prog.NewTemp(resultType)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpRCP, Dst: ir.Dst{Var: rcp, Mask: fullMask(resultType)}, Src0: ir.Src{Var: r}})
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMUL, Dst: ir.Dst{Var: dst, Mask: fullMask(resultType)}, Src0: ir.Src{Var: l}, Src1: ir.Src{Var: rcp}})
		return dst, resultType
	case token.LT:
		op = ir.OpSLT
	case token.LE:
		op = ir.OpSLE
	case token.GT:
		op = ir.OpSGT
	case token.GE:
		op = ir.OpSGE
	case token.EQ:
		op = ir.OpSEQ
	case token.NE:
		op = ir.OpSNE
	default:
		op = ir.OpADD
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: op, Dst: ir.Dst{Var: dst, Mask: fullMask(resultType)}, Src0: ir.Src{Var: l}, Src1: ir.Src{Var: r}})
	return dst, resultType
}

// lowerLogical lowers short-circuit &&/||/^^ to IF/ELSE/ENDIF, per the
// ast.LogicalExpr doc comment's rationale, rather than a plain ALU op.
func (lw *Lowerer) lowerLogical(n *ast.LogicalExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	boolType := gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined)
	result := lw.Prog.NewTemp(boolType)
	l, _ := lw.lowerExprRValue(n.Left, scope)
	if l == nil {
		return nil, nil
	}

	if n.Op == token.XOR_XOR {
		r, _ := lw.lowerExprRValue(n.Right, scope)
		if r == nil {
			return nil, nil
		}
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpSNE, Dst: ir.Dst{Var: result, Mask: fullMask(boolType)}, Src0: ir.Src{Var: l}, Src1: ir.Src{Var: r}})
		return result, boolType
	}

	lw.emitMove(result, l, boolType)
	cond := ir.CondEQ
	if n.Op == token.OR_OR {
		cond = ir.CondNE
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpIF, Src0: ir.Src{Var: l}, Cond: cond})
	lw.Prog.EndBlock()
	r, _ := lw.lowerExprRValue(n.Right, scope)
	if r != nil {
		lw.emitMove(result, r, boolType)
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpENDIF})
	lw.Prog.EndBlock()
	return result, boolType
}

func (lw *Lowerer) lowerUnary(n *ast.UnaryExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	v, t := lw.lowerExprRValue(n.Expr, scope)
	if v == nil {
		return nil, nil
	}
	switch n.Op {
	case token.MINUS:
		dst := lw.Prog.NewTemp(t)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dst, Mask: fullMask(t)}, Src0: ir.Src{Var: v, Negate: true}})
		return dst, t
	case token.BANG:
		dst := lw.Prog.NewTemp(t)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpSEQ, Dst: ir.Dst{Var: dst, Mask: fullMask(t)}, Src0: ir.Src{Var: v}})
		return dst, t
	case token.INCREMENT, token.DECREMENT:
		return lw.lowerIncDec(v, t, n.Op, scope)
	}
	return v, t
}

func (lw *Lowerer) lowerPostfix(n *ast.PostfixExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	v, t := lw.lowerExprRValue(n.Expr, scope)
	if v == nil {
		return nil, nil
	}
	before := lw.Prog.NewTemp(t)
	lw.emitMove(before, v, t)
	lw.lowerIncDec(v, t, n.Op, scope)
	return before, t
}

func (lw *Lowerer) lowerIncDec(v *ir.ProgVar, t *gltype.Type, op token.Kind, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	one := constant.ScalarFloat(1)
	onePv := lw.internConst(one, t)
	opc := ir.OpADD
	if op == token.DECREMENT {
		opc = ir.OpSUB
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: opc, Dst: ir.Dst{Var: v, Mask: fullMask(t)}, Src0: ir.Src{Var: v}, Src1: ir.Src{Var: onePv}})
	return v, t
}

// lvalueRef identifies one assignable location resolved by lowerLValue.
// Exactly one of (Var != nil) or (Sym != nil) holds: the former is a
// single scalar/vector/matrix/array ProgVar (Offset selects a constant
// array element or struct field within it), the latter is a struct- or
// array-of-struct-typed symbol addressed by a flattened path (Sym.Flat
// has a leaf at Path, or Path names a subtree of further leaves).
type lvalueRef struct {
	Var    *ir.ProgVar
	Offset int
	Type   *gltype.Type

	Sym  *symbols.Symbol
	Path string
}

func (r lvalueRef) flattened() bool { return r.Var == nil && r.Sym != nil }

func (r lvalueRef) isStruct() bool {
	return r.flattened() || (r.Type != nil && r.Type.Kind == gltype.KindStruct)
}

// lowerLValue resolves e to the location it assigns to (or reads a
// composite field/element from). silent suppresses diagnostics so callers
// can use it to speculatively test whether an expression denotes a struct
// lvalue before falling back to ordinary rvalue lowering.
func (lw *Lowerer) lowerLValue(e ast.Expr, scope *symbols.Scope, silent bool) (lvalueRef, bool) {
	fail := func(code diag.Code, line int) (lvalueRef, bool) {
		if !silent {
			lw.Log.Append(diag.New(code, line))
		}
		return lvalueRef{}, false
	}
	failNamed := func(code diag.Code, line int, name string) (lvalueRef, bool) {
		if !silent {
			lw.Log.Append(diag.Named(code, line, name))
		}
		return lvalueRef{}, false
	}

	switch n := e.(type) {
	case *ast.Ident:
		sym := symbols.FindNested(scope, n.Name)
		if sym == nil {
			return failNamed(diag.S0001, n.Line(), n.Name)
		}
		if sym.Qualifier == symbols.QualField || sym.Qualifier == symbols.QualTypeName || sym.Qualifier == symbols.QualFunction {
			return fail(diag.S0027, n.Line())
		}
		if isFlattenable(sym.Type) {
			if sym.Flat == nil {
				lw.flatten(sym)
			}
			return lvalueRef{Sym: sym}, true
		}
		pv := lw.progVarFor(sym, scope)
		return lvalueRef{Var: pv, Type: sym.Type}, true

	case *ast.IndexExpr:
		base, ok := lw.lowerLValue(n.Target, scope, silent)
		if !ok {
			return lvalueRef{}, false
		}
		c, ct, okc := lw.constEval(n.Index)
		if !okc {
			// Neither an array-of-struct element nor a plain array/vector/
			// matrix element can be written through a dynamic index: the IL
			// has no destination-relative addressing (ir.Dst carries no
			// address register, unlike ir.Src).
			return fail(diag.S0027, n.Line())
		}
		idx := int(constAsFloat(c, ct))
		if base.flattened() {
			path := base.Path + "#" + strconv.Itoa(idx)
			if fv, isLeaf := base.Sym.Flat[path]; isLeaf {
				return lvalueRef{Var: fv.Var, Type: fv.Type}, true
			}
			return lvalueRef{Sym: base.Sym, Path: path}, true
		}
		elem := gltype.ElementType(base.Type)
		if elem == nil {
			return fail(diag.S0027, n.Line())
		}
		return lvalueRef{Var: base.Var, Offset: base.Offset + idx, Type: elem}, true

	case *ast.FieldExpr:
		base, ok := lw.lowerLValue(n.Target, scope, silent)
		if !ok {
			return lvalueRef{}, false
		}
		if !base.isStruct() {
			return fail(diag.S0027, n.Line())
		}
		ref, ok2 := lw.fieldLValue(base, n.Name)
		if !ok2 {
			return failNamed(diag.S0010, n.Line(), n.Name)
		}
		return ref, true
	}
	return fail(diag.S0027, e.Line())
}

// fieldLValue resolves a struct field access given an already-resolved
// lvalueRef for its target; shared by lowerLValue's write path and
// lowerField's read path.
func (lw *Lowerer) fieldLValue(base lvalueRef, name string) (lvalueRef, bool) {
	if base.flattened() {
		path := name
		if base.Path != "" {
			path = base.Path + "." + name
		}
		if fv, isLeaf := base.Sym.Flat[path]; isLeaf {
			return lvalueRef{Var: fv.Var, Type: fv.Type}, true
		}
		for p := range base.Sym.Flat {
			if strings.HasPrefix(p, path+".") || strings.HasPrefix(p, path+"#") {
				return lvalueRef{Sym: base.Sym, Path: path}, true
			}
		}
		return lvalueRef{}, false
	}
	if base.Type == nil || base.Type.Kind != gltype.KindStruct {
		return lvalueRef{}, false
	}
	for _, f := range base.Type.Fields {
		if f.Name == name {
			return lvalueRef{Var: base.Var, Offset: base.Offset + f.Offset, Type: f.Type}, true
		}
	}
	return lvalueRef{}, false
}

// readLValueRef loads ref's value into a fresh temp. A flattened subtree
// (a whole struct or array-of-struct element) has no single-register
// representation and cannot be read as an rvalue; that combination is only
// ever reached from lowerVarDecl/lowerSimpleAssign's whole-symbol copy path.
func (lw *Lowerer) readLValueRef(ref lvalueRef, line int) (*ir.ProgVar, *gltype.Type) {
	if ref.flattened() {
		lw.Log.Append(diag.New(diag.S0027, line))
		return nil, nil
	}
	dst := lw.Prog.NewTemp(ref.Type)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dst, Mask: fullMask(ref.Type)}, Src0: ir.Src{Var: ref.Var, Offset: ref.Offset}})
	return dst, ref.Type
}

func (lw *Lowerer) lowerAssign(n *ast.AssignExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if fe, ok := n.Lhs.(*ast.FieldExpr); ok {
		if _, tt := lw.peekType(fe.Target, scope); tt != nil && tt.Kind.IsVector() && isSwizzle(fe.Name) {
			return lw.lowerSwizzleAssign(n, fe, scope)
		}
	}
	return lw.lowerSimpleAssign(n, scope)
}

// peekType resolves e's static type without emitting any IL, used to tell
// a vector swizzle FieldExpr apart from a struct-field FieldExpr before
// committing to one lowering path.
func (lw *Lowerer) peekType(e ast.Expr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if ref, ok := lw.lowerLValue(e, scope, true); ok && !ref.flattened() {
		return ref.Var, ref.Type
	}
	return nil, nil
}

// lowerSimpleAssign handles every assignable LHS except a vector swizzle:
// plain identifiers, array/struct-array elements, and struct fields, flat
// or not (spec §4.6/§4.7.3). A flattened whole-struct/array-of-struct
// target copies leaf by leaf from a matching flattened source; anything
// else resolves to a single ProgVar and uses the ordinary ALU op for
// op=.
func (lw *Lowerer) lowerSimpleAssign(n *ast.AssignExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	ref, ok := lw.lowerLValue(n.Lhs, scope, false)
	if !ok {
		return nil, nil
	}

	if ref.flattened() {
		if n.Op != token.ASSIGN {
			lw.Log.Append(diag.New(diag.S0027, n.Line()))
			return nil, nil
		}
		srcRef, okSrc := lw.lowerLValue(n.Rhs, scope, true)
		if !okSrc || !srcRef.flattened() {
			lw.Log.Append(diag.New(diag.S0027, n.Line()))
			return nil, nil
		}
		lw.copyFlatLeaves(ref.Sym, ref.Path, srcRef.Sym, srcRef.Path)
		return nil, nil
	}

	rhs, _ := lw.lowerExprRValue(n.Rhs, scope)
	if rhs == nil {
		return nil, nil
	}

	dst, t := ref.Var, ref.Type
	switch n.Op {
	case token.ASSIGN:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dst, Offset: ref.Offset, Mask: fullMask(t)}, Src0: ir.Src{Var: rhs}})
	case token.PLUS_ASSIGN:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpADD, Dst: ir.Dst{Var: dst, Offset: ref.Offset, Mask: fullMask(t)}, Src0: ir.Src{Var: dst, Offset: ref.Offset}, Src1: ir.Src{Var: rhs}})
	case token.MINUS_ASSIGN:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpSUB, Dst: ir.Dst{Var: dst, Offset: ref.Offset, Mask: fullMask(t)}, Src0: ir.Src{Var: dst, Offset: ref.Offset}, Src1: ir.Src{Var: rhs}})
	case token.STAR_ASSIGN:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMUL, Dst: ir.Dst{Var: dst, Offset: ref.Offset, Mask: fullMask(t)}, Src0: ir.Src{Var: dst, Offset: ref.Offset}, Src1: ir.Src{Var: rhs}})
	case token.SLASH_ASSIGN:
		rcp := lw.Prog.NewTemp(t)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpRCP, Dst: ir.Dst{Var: rcp, Mask: fullMask(t)}, Src0: ir.Src{Var: rhs}})
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMUL, Dst: ir.Dst{Var: dst, Offset: ref.Offset, Mask: fullMask(t)}, Src0: ir.Src{Var: dst, Offset: ref.Offset}, Src1: ir.Src{Var: rcp}})
	}
	return dst, t
}

// swizzleDuplicate reports whether name repeats a component (e.g. "xx"),
// which spec §4.7.3 rejects as not a valid assignment target (S0037).
func swizzleDuplicate(name string) bool {
	seen := map[rune]bool{}
	for _, r := range name {
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}

// lowerSwizzleAssign writes through a vector swizzle target (v.xy = ...,
// v.xyz += ...), building a destination write-mask and a source selector
// per named component, grounded on the original compiler's write-mask
// construction in its assignment-expression lowering (expressions.c).
func (lw *Lowerer) lowerSwizzleAssign(n *ast.AssignExpr, fe *ast.FieldExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if swizzleDuplicate(fe.Name) {
		lw.Log.Append(diag.New(diag.S0037, n.Line()))
		return nil, nil
	}
	targetRef, ok := lw.lowerLValue(fe.Target, scope, false)
	if !ok || targetRef.flattened() {
		lw.Log.Append(diag.New(diag.S0027, n.Line()))
		return nil, nil
	}
	rhs, _ := lw.lowerExprRValue(n.Rhs, scope)
	if rhs == nil {
		return nil, nil
	}

	var mask [4]bool
	var sel [4]ir.Selector
	for i, r := range fe.Name {
		lane := int(swizzleSelectors[r])
		mask[lane] = true
		sel[lane] = ir.Selector(i)
	}

	switch n.Op {
	case token.ASSIGN:
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: targetRef.Var, Offset: targetRef.Offset, Mask: mask}, Src0: ir.Src{Var: rhs, Swizzle: sel}})
	default:
		// Compound assignment through a swizzle reads the current value back
		// (with the same component ordering) before combining with rhs.
		cur := lw.Prog.NewTemp(targetRef.Type)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: cur, Mask: mask}, Src0: ir.Src{Var: targetRef.Var, Offset: targetRef.Offset, Swizzle: sel}})
		var opc ir.Opcode
		switch n.Op {
		case token.PLUS_ASSIGN:
			opc = ir.OpADD
		case token.MINUS_ASSIGN:
			opc = ir.OpSUB
		case token.STAR_ASSIGN:
			opc = ir.OpMUL
		case token.SLASH_ASSIGN:
			rcp := lw.Prog.NewTemp(targetRef.Type)
			lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpRCP, Dst: ir.Dst{Var: rcp, Mask: mask}, Src0: ir.Src{Var: rhs}})
			rhs = rcp
			opc = ir.OpMUL
		}
		lw.Prog.Tail().Append(&ir.Instruction{Op: opc, Dst: ir.Dst{Var: cur, Mask: mask}, Src0: ir.Src{Var: cur}, Src1: ir.Src{Var: rhs, Swizzle: sel}})
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: targetRef.Var, Offset: targetRef.Offset, Mask: mask}, Src0: ir.Src{Var: cur, Swizzle: sel}})
	}
	return targetRef.Var, targetRef.Type
}

func (lw *Lowerer) lowerConditional(n *ast.ConditionalExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	cond, _ := lw.lowerExprRValue(n.Cond, scope)
	if cond == nil {
		return nil, nil
	}
	thenVal, t := lw.lowerExprRValue(n.Then, scope)
	if thenVal == nil {
		return nil, nil
	}
	result := lw.Prog.NewTemp(t)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpIF, Src0: ir.Src{Var: cond}, Cond: ir.CondNE})
	lw.Prog.EndBlock()
	lw.emitMove(result, thenVal, t)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpELSE})
	lw.Prog.EndBlock()
	elseVal, _ := lw.lowerExprRValue(n.Else, scope)
	if elseVal != nil {
		lw.emitMove(result, elseVal, t)
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpENDIF})
	lw.Prog.EndBlock()
	return result, t
}

// swizzleSelectors maps field letters (xyzw/rgba/stpq per spec §4.7.2) to
// vector lane indices.
var swizzleSelectors = map[rune]ir.Selector{
	'x': ir.SelX, 'r': ir.SelX, 's': ir.SelX,
	'y': ir.SelY, 'g': ir.SelY, 't': ir.SelY,
	'z': ir.SelZ, 'b': ir.SelZ, 'p': ir.SelZ,
	'w': ir.SelW, 'a': ir.SelW, 'q': ir.SelW,
}

func (lw *Lowerer) lowerField(n *ast.FieldExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if base, ok := lw.lowerLValue(n.Target, scope, true); ok && base.isStruct() {
		ref, ok2 := lw.fieldLValue(base, n.Name)
		if !ok2 {
			lw.Log.Append(diag.Named(diag.S0010, n.Line(), n.Name))
			return nil, nil
		}
		return lw.readLValueRef(ref, n.Line())
	}

	target, tt := lw.lowerExprRValue(n.Target, scope)
	if target == nil {
		return nil, nil
	}
	if tt != nil && tt.Kind.IsVector() && isSwizzle(n.Name) {
		resultType := gltype.VectorType(elementKind(tt), tt.Precision, len(n.Name))
		if len(n.Name) == 1 {
			resultType = gltype.BasicType(elementKind(tt), tt.Precision)
		}
		dst := lw.Prog.NewTemp(resultType)
		var sel [4]ir.Selector
		for i, r := range n.Name {
			sel[i] = swizzleSelectors[r]
		}
		lw.Prog.Tail().Append(&ir.Instruction{
			Op:   ir.OpSWZ,
			Dst:  ir.Dst{Var: dst, Mask: fullMask(resultType)},
			Src0: ir.Src{Var: target, Swizzle: sel},
			Sel:  sel, NSel: len(n.Name),
		})
		return dst, resultType
	}
	lw.Log.Append(diag.Named(diag.S0010, n.Line(), n.Name))
	return nil, nil
}

func isSwizzle(name string) bool {
	if len(name) == 0 || len(name) > 4 {
		return false
	}
	for _, r := range name {
		if _, ok := swizzleSelectors[r]; !ok {
			return false
		}
	}
	return true
}

func elementKind(t *gltype.Type) gltype.Kind {
	e := gltype.ElementType(t)
	if e == nil {
		return gltype.KindFloat
	}
	return e.Kind
}

func (lw *Lowerer) lowerIndex(n *ast.IndexExpr, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if base, ok := lw.lowerLValue(n.Target, scope, true); ok && base.flattened() {
		c, ct, okc := lw.constEval(n.Index)
		if !okc {
			lw.Log.Append(diag.New(diag.S0027, n.Line()))
			return nil, nil
		}
		path := base.Path + "#" + strconv.Itoa(int(constAsFloat(c, ct)))
		ref := lvalueRef{Sym: base.Sym, Path: path}
		if fv, isLeaf := base.Sym.Flat[path]; isLeaf {
			ref = lvalueRef{Var: fv.Var, Type: fv.Type}
		}
		return lw.readLValueRef(ref, n.Line())
	}

	target, tt := lw.lowerExprRValue(n.Target, scope)
	if target == nil {
		return nil, nil
	}
	elem := gltype.ElementType(tt)
	if elem == nil {
		lw.Log.Append(diag.New(diag.S0011, n.Line()))
		return nil, nil
	}
	if c, ct, ok := lw.constEval(n.Index); ok {
		dst := lw.Prog.NewTemp(elem)
		lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dst, Mask: fullMask(elem)}, Src0: ir.Src{Var: target, Offset: int(constAsFloat(c, ct))}})
		return dst, elem
	}
	// Dynamic indexing needs an address register (spec §4.7.2/4.10.1's
	// ARL + a<id> addressing); only arrays may be indexed dynamically — a
	// vector or matrix component must resolve to a constant lane at
	// compile time, since the IL has no per-component dynamic addressing.
	if tt != nil && (tt.Kind.IsVector() || tt.Kind.IsMatrix()) {
		lw.Log.Append(diag.New(diag.X0005, n.Line()))
		return nil, nil
	}
	idx, _ := lw.lowerExprRValue(n.Index, scope)
	if idx == nil {
		return nil, nil
	}
	addr := lw.Prog.NewAddr()
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpARL, Dst: ir.Dst{Var: addr}, Src0: ir.Src{Var: idx}})
	dst := lw.Prog.NewTemp(elem)
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpMOV, Dst: ir.Dst{Var: dst, Mask: fullMask(elem)}, Src0: ir.Src{Var: target, AddrVar: addr}})
	return dst, elem
}

// lowerCallOrConstructor resolves the call/constructor ambiguity the parser
// deliberately deferred (ast.CallOrConstructor's doc comment): a known type
// name builds a constructor value; otherwise it resolves against the
// function symbol table.
func (lw *Lowerer) lowerCallOrConstructor(n *ast.CallOrConstructor, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	if t, ok := constructorType(n.Name); ok {
		return lw.lowerConstructor(n, t, scope)
	}
	return lw.lowerCall(n, scope)
}

func constructorType(name string) (*gltype.Type, bool) {
	switch name {
	case "float":
		return gltype.BasicType(gltype.KindFloat, gltype.PrecisionUndefined), true
	case "int":
		return gltype.BasicType(gltype.KindInt, gltype.PrecisionUndefined), true
	case "bool":
		return gltype.BasicType(gltype.KindBool, gltype.PrecisionUndefined), true
	case "vec2":
		return gltype.VectorType(gltype.KindFloat, gltype.PrecisionUndefined, 2), true
	case "vec3":
		return gltype.VectorType(gltype.KindFloat, gltype.PrecisionUndefined, 3), true
	case "vec4":
		return gltype.VectorType(gltype.KindFloat, gltype.PrecisionUndefined, 4), true
	case "ivec2":
		return gltype.VectorType(gltype.KindInt, gltype.PrecisionUndefined, 2), true
	case "ivec3":
		return gltype.VectorType(gltype.KindInt, gltype.PrecisionUndefined, 3), true
	case "ivec4":
		return gltype.VectorType(gltype.KindInt, gltype.PrecisionUndefined, 4), true
	case "bvec2":
		return gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 2), true
	case "bvec3":
		return gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 3), true
	case "bvec4":
		return gltype.VectorType(gltype.KindBool, gltype.PrecisionUndefined, 4), true
	case "mat2":
		return gltype.MatrixType(gltype.PrecisionUndefined, 2), true
	case "mat3":
		return gltype.MatrixType(gltype.PrecisionUndefined, 3), true
	case "mat4":
		return gltype.MatrixType(gltype.PrecisionUndefined, 4), true
	}
	return nil, false
}

// lowerConstructor assembles a vector/matrix value component-wise via a
// sequence of SWZ/MOV writes into distinct masks of one fresh temp, matching
// the original's constructor-lowering strategy (spec §4.7.2).
func (lw *Lowerer) lowerConstructor(n *ast.CallOrConstructor, t *gltype.Type, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	dst := lw.Prog.NewTemp(t)
	lane := 0
	width := 1
	if t.Kind.IsVector() {
		width = t.Elements
	}
	for _, arg := range n.Args {
		val, at := lw.lowerExprRValue(arg, scope)
		if val == nil {
			continue
		}
		argWidth := 1
		if at != nil && at.Kind.IsVector() {
			argWidth = at.Elements
		}
		mask := [4]bool{}
		var sel [4]ir.Selector
		for i := 0; i < argWidth && lane < width; i++ {
			mask[lane] = true
			sel[lane] = ir.Selector(i)
			lane++
		}
		lw.Prog.Tail().Append(&ir.Instruction{
			Op:   ir.OpMOV,
			Dst:  ir.Dst{Var: dst, Mask: mask},
			Src0: ir.Src{Var: val, Swizzle: sel},
		})
	}
	return dst, t
}

func (lw *Lowerer) lowerCall(n *ast.CallOrConstructor, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	sym := symbols.FindNested(scope, n.Name)
	if sym == nil || sym.Qualifier != symbols.QualFunction {
		lw.Log.Append(diag.Named(diag.S0012, n.Line(), n.Name))
		return nil, nil
	}
	fi := sym.Function
	if fi.Visiting {
		lw.Log.Append(diag.Named(diag.S0055, n.Line(), n.Name))
		return nil, nil
	}

	// Arguments are lowered for their side effects and to populate the
	// caller's register pressure, matching the original's copy-in-by-value
	// convention; the callee re-reads its own parameter ProgVars rather than
	// receiving these directly, since IL calls carry no operand list.
	for _, a := range n.Args {
		lw.lowerExprRValue(a, scope)
	}

	if fi.EntryLabel == nil {
		fi.EntryLabel = lw.Prog.NewLabel("fn_" + n.Name)
	}
	lw.Prog.Tail().Append(&ir.Instruction{Op: ir.OpCAL, Label: fi.EntryLabel})
	lw.Prog.EndBlock()

	if sym.Type == nil || sym.Type.Kind == gltype.KindVoid {
		return nil, nil
	}
	if fi.ResultTemp == nil {
		fi.ResultTemp = lw.Prog.NewTemp(sym.Type)
	}
	return fi.ResultTemp, sym.Type
}

func (lw *Lowerer) lowerAsmCall(n *ast.AsmCall, scope *symbols.Scope) (*ir.ProgVar, *gltype.Type) {
	op, ok := ir.OpcodeByName(strings.TrimPrefix(n.Mnemonic, "__asm"))
	if !ok {
		lw.Log.Append(diag.Named(diag.S0014, n.Line(), n.Mnemonic))
		return nil, nil
	}
	var srcs []*ir.ProgVar
	var t *gltype.Type
	for _, a := range n.Args {
		v, at := lw.lowerExprRValue(a, scope)
		srcs = append(srcs, v)
		if t == nil {
			t = at
		}
	}
	if len(srcs) == 0 || srcs[0] == nil {
		return nil, nil
	}
	dst := lw.Prog.NewTemp(t)
	inst := &ir.Instruction{Op: op, Dst: ir.Dst{Var: dst, Mask: fullMask(t)}}
	if len(srcs) > 1 && srcs[1] != nil {
		inst.Src0 = ir.Src{Var: srcs[1]}
	}
	if len(srcs) > 2 && srcs[2] != nil {
		inst.Src1 = ir.Src{Var: srcs[2]}
	}
	if len(srcs) > 3 && srcs[3] != nil {
		inst.Src2 = ir.Src{Var: srcs[3]}
	}
	lw.Prog.Tail().Append(inst)
	return dst, t
}
