// Package symbols implements the scoped, hash-chained symbol tables of
// component C: scopes nest for lookup, each scope owns a fixed bucket count,
// and a growable SymbolArray serves as the call-graph walk stack.
package symbols

import (
	"github.com/hmwill/glslesc/internal/constant"
	"github.com/hmwill/glslesc/internal/gltype"
	"github.com/hmwill/glslesc/internal/ir"
)

// BucketCount is the fixed per-scope hash bucket count. The original
// compiler's GLES_SYMBOL_HASH constant is not present in the filtered
// original_source headers available to this port (only its uses are); 31 is
// chosen here as a small prime bucket count in its place — see the Open
// Question entry in DESIGN.md.
const BucketCount = 31

// symbolHash implements spec §4.4's fold: h = length, mixed with bytes at
// offsets 0 (len>=1), 2 (len>=3), 7 (len>=8), finished by adding the last
// byte, reduced mod BucketCount. Reproduced from the original compiler's
// GlesSymbolHash.
func symbolHash(name string) int {
	h := len(name)
	switch {
	case len(name) >= 8:
		h += int(name[7])
		fallthrough
	case len(name) >= 3:
		h += int(name[2])
		fallthrough
	case len(name) >= 1:
		h += int(name[0])
	}
	if len(name) == 0 {
		return 0
	}
	return (h + int(name[len(name)-1])) % BucketCount
}

// QualifierKind tags a Symbol's Qualifier variant.
type QualifierKind int

const (
	QualVariable QualifierKind = iota
	QualFunction
	QualParameterIn
	QualParameterOut
	QualParameterInOut
	QualConstant
	QualTypeName
	QualField
	QualAttribute
	QualUniform
	QualVarying
	QualBuiltinPosition
	QualBuiltinPointSize
	QualBuiltinFragCoord
	QualBuiltinFrontFacing
	QualBuiltinFragColor
	QualBuiltinFragData
	QualBuiltinPointCoord
)

// FlatVar is one flattened primitive (or 1-D array of primitive) leaf of a
// struct- or array-of-struct-typed Symbol. The IL memory model has no
// aggregate register, so package lower never backs a struct-typed symbol
// with a single ir.ProgVar; instead it walks the declared type and gives
// each leaf its own ProgVar here, keyed by a dotted/indexed path built by
// Lowerer.flatten.
type FlatVar struct {
	Var  *ir.ProgVar
	Type *gltype.Type
}

// FunctionInfo holds the per-overload bookkeeping a Function-qualified
// symbol needs during declaration and call-graph lowering.
type FunctionInfo struct {
	Overloads  []*Symbol // other overloads sharing this name in this scope
	ParamScope *Scope
	ParamCount int
	ResultTemp *ir.ProgVar // set lazily on first lowering use
	EntryLabel *ir.Label   // set lazily when the function body is lowered
	Defined    bool
	Visiting   bool // call-graph walk cycle guard
	Visited    bool // call-graph walk once-only guard
	Depth      int
}

// Symbol is one declared name (spec §3.2).
type Symbol struct {
	Scope     *Scope
	Name      string
	Type      *gltype.Type
	Qualifier QualifierKind

	// ParameterIn/Out/InOut
	ParamIndex int
	IsConst    bool

	// Constant
	ConstInit []constant.Constant

	// Field
	FieldIndex  int
	FieldOffset int

	// Varying
	Invariant bool

	// Function
	Function *FunctionInfo

	// ProgVar back-link, lazily created on first lowering use. Unused for a
	// struct- or array-of-struct-typed Symbol; such a Symbol is backed by
	// Flat instead.
	ProgVar *ir.ProgVar

	// Flat holds this Symbol's per-leaf ProgVars when its type is a struct
	// or an array of struct (set by Lowerer.flatten on first use); nil for
	// every other Symbol.
	Flat map[string]FlatVar

	next *Symbol // bucket chain link
}

// ScopeKind distinguishes the global scope from nested local/parameter/
// struct scopes for diagnostics that depend on scope kind (e.g. S0044-S0052).
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeLocal
)

// Scope is one lexical scope (spec §3.2): a parent link, five default
// precision slots, and BucketCount hash buckets.
type Scope struct {
	Parent *Scope
	Kind   ScopeKind

	DefaultInt         gltype.Precision
	DefaultFloat       gltype.Precision
	DefaultSampler2D   gltype.Precision
	DefaultSampler3D   gltype.Precision
	DefaultSamplerCube gltype.Precision

	buckets [BucketCount]*Symbol
}

// NewScope creates a scope inheriting its parent's default-precision slots
// (all undefined at the root).
func NewScope(parent *Scope, kind ScopeKind) *Scope {
	s := &Scope{Parent: parent, Kind: kind}
	if parent != nil {
		s.DefaultInt = parent.DefaultInt
		s.DefaultFloat = parent.DefaultFloat
		s.DefaultSampler2D = parent.DefaultSampler2D
		s.DefaultSampler3D = parent.DefaultSampler3D
		s.DefaultSamplerCube = parent.DefaultSamplerCube
	}
	return s
}

// Define prepends a new symbol to the appropriate bucket of scope and
// returns it.
func (s *Scope) Define(name string, t *gltype.Type, qual QualifierKind) *Symbol {
	sym := &Symbol{Scope: s, Name: name, Type: t, Qualifier: qual}
	b := symbolHash(name)
	sym.next = s.buckets[b]
	s.buckets[b] = sym
	return sym
}

// Find scans one bucket of scope only (no parent walk).
func (s *Scope) Find(name string) *Symbol {
	for sym := s.buckets[symbolHash(name)]; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// FindNested walks from scope to the root, returning the innermost match.
func FindNested(s *Scope, name string) *Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym := cur.Find(name); sym != nil {
			return sym
		}
	}
	return nil
}

// SymbolArray is a growable stack of symbol pointers, used while walking the
// call graph from main (spec §4.4/§4.9).
type SymbolArray struct {
	items []*Symbol
}

// Push appends a symbol to the stack.
func (a *SymbolArray) Push(s *Symbol) { a.items = append(a.items, s) }

// Pop removes and returns the top of the stack; ok is false if empty.
func (a *SymbolArray) Pop() (*Symbol, bool) {
	if len(a.items) == 0 {
		return nil, false
	}
	s := a.items[len(a.items)-1]
	a.items = a.items[:len(a.items)-1]
	return s, true
}

// Contains reports whether s is already on the stack (used for call-graph
// cycle detection before pushing a new frame).
func (a *SymbolArray) Contains(s *Symbol) bool {
	for _, item := range a.items {
		if item == s {
			return true
		}
	}
	return false
}

// Len reports the current stack depth.
func (a *SymbolArray) Len() int { return len(a.items) }
