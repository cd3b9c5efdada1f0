// Package ast defines the parse tree produced by component F and consumed
// by components G/H/I (expression/statement/declaration lowering).
// Generalized from the teacher's pkg/compiler/ast.go tagged-union shape
// (Expr/Stmt marker-method interfaces) to the GLSL ES expression and
// statement grammar of spec §4.6-4.8.
package ast

import "github.com/hmwill/glslesc/internal/token"

// Expr is any expression node.
type Expr interface {
	exprNode()
	Line() int
}

// ExprBase carries the source line shared by every expression node.
// Exported (unlike the teacher's private base struct) so that other
// packages building AST nodes, such as the parser, can set it directly.
type ExprBase struct{ line int }

// AtExpr constructs an ExprBase for the given source line.
func AtExpr(line int) ExprBase { return ExprBase{line} }

func (e ExprBase) exprNode() {}
func (e ExprBase) Line() int { return e.line }

// IntLiteral is an integer constant token.
type IntLiteral struct {
	ExprBase
	Value int32
}

// FloatLiteral is a floating-point constant token.
type FloatLiteral struct {
	ExprBase
	Value float32
}

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// Ident is a bare name reference, resolved to a symbol during lowering.
type Ident struct {
	ExprBase
	Name string
}

// CallOrConstructor is `name(args...)`: during lowering this resolves to
// either a type constructor or a user/overloaded function call depending on
// what `name` denotes.
type CallOrConstructor struct {
	ExprBase
	Name string
	Args []Expr
}

// UnaryExpr is a prefix operator application.
type UnaryExpr struct {
	ExprBase
	Op   token.Kind
	Expr Expr
}

// PostfixExpr is `expr++`/`expr--`.
type PostfixExpr struct {
	ExprBase
	Op   token.Kind
	Expr Expr
}

// BinaryExpr is a left-associative binary operator application (+ - * / % <
// <= > >= == != & | ^ << >>).
type BinaryExpr struct {
	ExprBase
	Op          token.Kind
	Left, Right Expr
}

// LogicalExpr is && || ^^, split from BinaryExpr because && and || lower to
// short-circuit IF/ELSE/ENDIF sequences rather than a plain ALU op.
type LogicalExpr struct {
	ExprBase
	Op          token.Kind
	Left, Right Expr
}

// ConditionalExpr is the ternary `cond ? then : els`.
type ConditionalExpr struct {
	ExprBase
	Cond, Then, Else Expr
}

// AssignExpr is `lhs op= rhs`; Op is one of = *= /= += -=.
type AssignExpr struct {
	ExprBase
	Op       token.Kind
	Lhs, Rhs Expr
}

// FieldExpr is `expr.name` — either a struct field access or a swizzle,
// disambiguated during lowering by the type of expr.
type FieldExpr struct {
	ExprBase
	Target Expr
	Name   string
}

// IndexExpr is `expr[index]`.
type IndexExpr struct {
	ExprBase
	Target Expr
	Index  Expr
}

// AsmCall is an inline-assembly call `__asmOP(dst, src, ...)`.
type AsmCall struct {
	ExprBase
	Mnemonic string
	Args     []Expr
}

// RetvalExpr is `__retval`.
type RetvalExpr struct{ ExprBase }

// --- statements ---

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	Line() int
}

// StmtBase carries the source line shared by every statement node.
type StmtBase struct{ line int }

// AtStmt constructs a StmtBase for the given source line.
func AtStmt(line int) StmtBase { return StmtBase{line} }

func (s StmtBase) stmtNode() {}
func (s StmtBase) Line() int { return s.line }

// ExprStmt is a bare expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// BlockStmt is `{ stmts... }`.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt is `if (cond) then [else els]`.
type IfStmt struct {
	StmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

// ForStmt is the only loop form GLSL ES front-end accepts.
type ForStmt struct {
	StmtBase
	Init Stmt // usually a VarDecl or ExprStmt
	Cond Expr
	Post Stmt
	Body Stmt
}

// WhileStmt / do-while are parsed (so the parser can still recognize the
// keyword and report X0001) but are always rejected during lowering.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
	Do   bool
}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	StmtBase
	Expr Expr // nil for bare `return;`
}

// DiscardStmt is `discard;`.
type DiscardStmt struct{ StmtBase }

// BreakStmt / ContinueStmt are loop control statements.
type BreakStmt struct{ StmtBase }
type ContinueStmt struct{ StmtBase }

// DeclStmt wraps a declaration appearing in statement position (local
// variable declarations, precision statements).
type DeclStmt struct {
	StmtBase
	Decl Decl
}

// --- declarations ---

// Decl is any top-level or local declaration.
type Decl interface {
	declNode()
	Line() int
}

// DeclBase carries the source line shared by every declaration node.
type DeclBase struct{ line int }

// AtDecl constructs a DeclBase for the given source line.
func AtDecl(line int) DeclBase { return DeclBase{line} }

func (d DeclBase) declNode() {}
func (d DeclBase) Line() int { return d.line }

// TypeQualifier is the storage qualifier prefixing a declaration.
type TypeQualifier int

const (
	QualNone TypeQualifier = iota
	QualConst
	QualAttribute
	QualUniform
	QualVarying
	QualInvariantVarying
)

// TypeSpec names a type as written in source, before resolution: a
// primitive keyword, a struct specifier, or a previously declared type
// name, plus an optional precision and array dimensions.
type TypeSpec struct {
	Precision  token.Kind // KW_LOWP/KW_MEDIUMP/KW_HIGHP, or 0 if unspecified
	PrimKind   token.Kind // KW_FLOAT, KW_VEC4, ..., or 0 if StructName set
	StructName string     // set when this type-spec is a struct tag reference
	Struct     *StructDecl
	ArraySizes []Expr // nil if not an array; each element is a constexpr
}

// VarDeclarator is one `name [= init]` in a possibly comma-separated
// variable declaration statement.
type VarDeclarator struct {
	Name string
	Init Expr
	Line int
}

// VarDecl is a variable declaration, possibly declaring several names that
// share one type-spec and qualifier.
type VarDecl struct {
	DeclBase
	Qualifier   TypeQualifier
	Type        TypeSpec
	Declarators []VarDeclarator
}

// StructDecl is a `struct Name { ... }` declaration.
type StructDecl struct {
	DeclBase
	Name   string
	Fields []StructField
}

// StructField is one member of a struct body.
type StructField struct {
	Type TypeSpec
	Name string
	Line int
}

// ParamDir is a function parameter's passing direction.
type ParamDir int

const (
	ParamIn ParamDir = iota
	ParamOut
	ParamInOut
)

// Param is one function parameter.
type Param struct {
	Const bool
	Dir   ParamDir
	Type  TypeSpec
	Name  string // synthesized "$<index>" if anonymous
	Line  int
}

// FuncDecl is a function prototype or definition.
type FuncDecl struct {
	DeclBase
	Name       string
	ReturnType TypeSpec
	Params     []Param
	Body       *BlockStmt // nil for a prototype
}

// PrecisionDecl is `precision qual type;`.
type PrecisionDecl struct {
	DeclBase
	Precision token.Kind
	Type      token.Kind
}

// InvariantDecl is `invariant v1, v2;` re-declaring existing varyings.
type InvariantDecl struct {
	DeclBase
	Names []string
}

// TranslationUnit is the parsed whole of one shader's source.
type TranslationUnit struct {
	Decls []Decl
}
