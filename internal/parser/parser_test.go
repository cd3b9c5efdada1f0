package parser

import (
	"testing"

	"github.com/hmwill/glslesc/internal/ast"
	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.TranslationUnit, *diag.Log) {
	t.Helper()
	var log diag.Log
	toks := lexer.Lex(src, &log)
	if log.HasErrors() {
		t.Fatalf("unexpected lex errors: %s", log.String())
	}
	p := New(toks, &log)
	return p.ParseTranslationUnit(), &log
}

func TestParseVarDecl(t *testing.T) {
	tu, log := parse(t, "uniform mat4 uMvp;")
	if log.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", log.String())
	}
	if len(tu.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(tu.Decls))
	}
	if _, ok := tu.Decls[0].(*ast.VarDecl); !ok {
		t.Errorf("expected *ast.VarDecl, got %T", tu.Decls[0])
	}
}

func TestParseFunctionWithBody(t *testing.T) {
	tu, log := parse(t, "void main() { gl_Position = vec4(0.0); }")
	if log.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", log.String())
	}
	fd, ok := tu.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", tu.Decls[0])
	}
	if fd.Name != "main" || fd.Body == nil {
		t.Errorf("expected a defined main(), got name=%q body=%v", fd.Name, fd.Body)
	}
}

func TestParseForStmt(t *testing.T) {
	tu, log := parse(t, "void main() { for (int i = 0; i < 10; ++i) ; }")
	if log.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", log.String())
	}
	fd := tu.Decls[0].(*ast.FuncDecl)
	block := fd.Body
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 statement in main's body, got %d", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.ForStmt); !ok {
		t.Errorf("expected *ast.ForStmt, got %T", block.Stmts[0])
	}
}

func TestParseStructDecl(t *testing.T) {
	tu, log := parse(t, "struct Light { vec3 color; float intensity; };")
	if log.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", log.String())
	}
	if len(tu.Decls) == 0 {
		t.Fatalf("expected at least 1 decl")
	}
}

func TestParseAssignExpr(t *testing.T) {
	tu, log := parse(t, "void main() { vec3 v; v.xy = vec2(1.0); }")
	if log.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", log.String())
	}
	fd := tu.Decls[0].(*ast.FuncDecl)
	es, ok := fd.Body.Stmts[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", fd.Body.Stmts[1])
	}
	ae, ok := es.Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected *ast.AssignExpr, got %T", es.Expr)
	}
	fe, ok := ae.Lhs.(*ast.FieldExpr)
	if !ok || fe.Name != "xy" {
		t.Errorf("expected LHS FieldExpr \"xy\", got %#v", ae.Lhs)
	}
}
