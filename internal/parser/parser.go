// Package parser implements the recursive-descent parser of component F,
// driving the expression/statement/declaration builders of components G/H/I
// (the grammar of spec §4.6-4.8). Structured after the teacher's
// pkg/compiler/parser.go: a flat token slice with a cursor, peek/advance/
// expect helpers. Each diagnostic records the line of the offending token;
// no source-line snippet is attached.
package parser

import (
	"strconv"
	"strings"

	"github.com/hmwill/glslesc/internal/ast"
	"github.com/hmwill/glslesc/internal/diag"
	"github.com/hmwill/glslesc/internal/token"
)

// Parser holds parse state over one token stream.
type Parser struct {
	toks []token.Token
	pos  int
	log  *diag.Log
	anon int
}

// New creates a parser over toks (already lexed and macro-expanded),
// appending diagnostics to log.
func New(toks []token.Token, log *diag.Log) *Parser {
	return &Parser{toks: toks, log: log}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) token.Token {
	idx := p.pos + off
	if idx >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if t, ok := p.match(k); ok {
		return t
	}
	t := p.peek()
	p.log.Append(diag.New(diag.L0001, t.Line))
	return t
}

func (p *Parser) errorf(line int, code diag.Code) {
	p.log.Append(diag.New(code, line))
}

// isPrecisionKind and primTypeKinds let the parser recognize a type
// specifier without the lexer needing dedicated token kinds per primitive.
var primTypeKinds = map[token.Kind]bool{
	token.KW_VOID: true, token.KW_FLOAT: true, token.KW_INT: true, token.KW_BOOL: true,
	token.KW_VEC2: true, token.KW_VEC3: true, token.KW_VEC4: true,
	token.KW_IVEC2: true, token.KW_IVEC3: true, token.KW_IVEC4: true,
	token.KW_BVEC2: true, token.KW_BVEC3: true, token.KW_BVEC4: true,
	token.KW_MAT2: true, token.KW_MAT3: true, token.KW_MAT4: true,
	token.KW_SAMPLER2D: true, token.KW_SAMPLER3D: true, token.KW_SAMPLERCUBE: true,
}

func isPrecisionKind(k token.Kind) bool {
	return k == token.KW_LOWP || k == token.KW_MEDIUMP || k == token.KW_HIGHP
}

// ParseTranslationUnit parses the entire token stream (spec §4.6's external
// declaration list).
func (p *Parser) ParseTranslationUnit() *ast.TranslationUnit {
	tu := &ast.TranslationUnit{}
	for !p.check(token.EOF) {
		if d := p.parseExternalDecl(); d != nil {
			tu.Decls = append(tu.Decls, d)
		} else if !p.check(token.EOF) {
			p.advance() // resynchronize past an unrecognized token
		}
	}
	return tu
}

func (p *Parser) parseExternalDecl() ast.Decl {
	line := p.peek().Line

	if p.check(token.KW_PRECISION) {
		p.advance()
		prec := p.advance().Kind
		if !isPrecisionKind(prec) {
			p.errorf(line, diag.L0001)
		}
		typ := p.advance().Kind
		p.expect(token.SEMICOLON)
		return &ast.PrecisionDecl{DeclBase: ast.AtDecl(line), Precision: prec, Type: typ}
	}

	if p.check(token.KW_INVARIANT) && !startsTypeAfterInvariant(p) {
		p.advance()
		var names []string
		for {
			id := p.expect(token.IDENTIFIER)
			names = append(names, id.Lexeme)
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.SEMICOLON)
		return &ast.InvariantDecl{DeclBase: ast.AtDecl(line), Names: names}
	}

	qual := ast.QualNone
	switch {
	case p.check(token.KW_CONST):
		p.advance()
		qual = ast.QualConst
	case p.check(token.KW_ATTRIBUTE):
		p.advance()
		qual = ast.QualAttribute
	case p.check(token.KW_UNIFORM):
		p.advance()
		qual = ast.QualUniform
	case p.check(token.KW_VARYING):
		p.advance()
		qual = ast.QualVarying
	case p.check(token.KW_INVARIANT):
		p.advance()
		p.expect(token.KW_VARYING)
		qual = ast.QualInvariantVarying
	}

	ts := p.parseTypeSpec()

	if ts.Struct != nil && p.check(token.SEMICOLON) {
		p.advance()
		return ts.Struct
	}

	name := p.expect(token.IDENTIFIER).Lexeme

	if p.check(token.LEFT_PAREN) {
		return p.parseFunctionDecl(line, ts, name)
	}

	return p.parseVarDeclRest(line, qual, ts, name)
}

// startsTypeAfterInvariant distinguishes `invariant v1, v2;` (re-declaration
// of existing varyings) from `invariant varying <type> <name>;` by looking
// one token ahead for the `varying` keyword.
func startsTypeAfterInvariant(p *Parser) bool {
	return p.peekAt(1).Kind == token.KW_VARYING
}

func (p *Parser) parseTypeSpec() ast.TypeSpec {
	var ts ast.TypeSpec
	if isPrecisionKind(p.peek().Kind) {
		ts.Precision = p.advance().Kind
	}
	if p.check(token.KW_STRUCT) {
		ts.Struct = p.parseStructSpecifier()
		ts.StructName = ts.Struct.Name
		return ts
	}
	if primTypeKinds[p.peek().Kind] {
		ts.PrimKind = p.advance().Kind
		return ts
	}
	if p.check(token.IDENTIFIER) {
		ts.StructName = p.advance().Lexeme
		return ts
	}
	p.errorf(p.peek().Line, diag.L0001)
	return ts
}

func (p *Parser) parseStructSpecifier() *ast.StructDecl {
	line := p.peek().Line
	p.expect(token.KW_STRUCT)
	name := ""
	if p.check(token.IDENTIFIER) {
		name = p.advance().Lexeme
	}
	p.expect(token.LEFT_BRACE)
	sd := &ast.StructDecl{DeclBase: ast.AtDecl(line), Name: name}
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		fts := p.parseTypeSpec()
		if fts.Struct != nil {
			p.errorf(p.peek().Line, diag.L0001) // nested struct specifiers rejected
		}
		for {
			fline := p.peek().Line
			fname := p.expect(token.IDENTIFIER).Lexeme
			sizes := p.parseArraySizes()
			fieldType := fts
			fieldType.ArraySizes = sizes
			sd.Fields = append(sd.Fields, ast.StructField{Type: fieldType, Name: fname, Line: fline})
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.SEMICOLON)
	}
	p.expect(token.RIGHT_BRACE)
	return sd
}

func (p *Parser) parseArraySizes() []ast.Expr {
	var sizes []ast.Expr
	for p.check(token.LEFT_BRACKET) {
		p.advance()
		if p.check(token.RIGHT_BRACKET) {
			sizes = append(sizes, nil)
		} else {
			sizes = append(sizes, p.parseExpr())
		}
		p.expect(token.RIGHT_BRACKET)
	}
	return sizes
}

func (p *Parser) parseVarDeclRest(line int, qual ast.TypeQualifier, ts ast.TypeSpec, firstName string) ast.Decl {
	vd := &ast.VarDecl{DeclBase: ast.AtDecl(line), Qualifier: qual, Type: ts}
	name := firstName
	for {
		dline := p.peek().Line
		sizes := p.parseArraySizes()
		declType := ts
		if len(sizes) > 0 {
			declType.ArraySizes = append(append([]ast.Expr{}, ts.ArraySizes...), sizes...)
		}
		var init ast.Expr
		if _, ok := p.match(token.ASSIGN); ok {
			init = p.parseAssignExpr()
		}
		vd.Declarators = append(vd.Declarators, ast.VarDeclarator{Name: name, Init: init, Line: dline})
		_ = declType
		if _, ok := p.match(token.COMMA); ok {
			name = p.expect(token.IDENTIFIER).Lexeme
			continue
		}
		break
	}
	p.expect(token.SEMICOLON)
	return vd
}

func (p *Parser) parseFunctionDecl(line int, ts ast.TypeSpec, name string) ast.Decl {
	p.expect(token.LEFT_PAREN)
	fd := &ast.FuncDecl{DeclBase: ast.AtDecl(line), Name: name, ReturnType: ts}
	if p.check(token.KW_VOID) && p.peekAt(1).Kind == token.RIGHT_PAREN {
		p.advance()
	} else if !p.check(token.RIGHT_PAREN) {
		for {
			fd.Params = append(fd.Params, p.parseParam())
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
	}
	p.expect(token.RIGHT_PAREN)

	if _, ok := p.match(token.SEMICOLON); ok {
		return fd // prototype
	}
	fd.Body = p.parseBlock()
	return fd
}

func (p *Parser) parseParam() ast.Param {
	line := p.peek().Line
	var param ast.Param
	param.Line = line
	if _, ok := p.match(token.KW_CONST); ok {
		param.Const = true
	}
	switch p.peek().Kind {
	case token.KW_IN:
		p.advance()
		param.Dir = ast.ParamIn
	case token.KW_OUT:
		p.advance()
		param.Dir = ast.ParamOut
	case token.KW_INOUT:
		p.advance()
		param.Dir = ast.ParamInOut
	}
	param.Type = p.parseTypeSpec()
	if p.check(token.IDENTIFIER) {
		param.Name = p.advance().Lexeme
	} else {
		p.anon++
		param.Name = "$" + strconv.Itoa(p.anon)
	}
	param.Type.ArraySizes = p.parseArraySizes()
	return param
}

// --- statements ---

func (p *Parser) parseBlock() *ast.BlockStmt {
	line := p.peek().Line
	p.expect(token.LEFT_BRACE)
	b := &ast.BlockStmt{StmtBase: ast.AtStmt(line)}
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.expect(token.RIGHT_BRACE)
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	line := p.peek().Line
	switch p.peek().Kind {
	case token.LEFT_BRACE:
		return p.parseBlock()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_WHILE:
		p.advance()
		p.expect(token.LEFT_PAREN)
		cond := p.parseExpr()
		p.expect(token.RIGHT_PAREN)
		body := p.parseStmt()
		p.errorf(line, diag.X0001)
		return &ast.WhileStmt{StmtBase: ast.AtStmt(line), Cond: cond, Body: body}
	case token.KW_DO:
		p.advance()
		body := p.parseStmt()
		p.expect(token.KW_WHILE)
		p.expect(token.LEFT_PAREN)
		cond := p.parseExpr()
		p.expect(token.RIGHT_PAREN)
		p.expect(token.SEMICOLON)
		p.errorf(line, diag.X0001)
		return &ast.WhileStmt{StmtBase: ast.AtStmt(line), Cond: cond, Body: body, Do: true}
	case token.KW_RETURN:
		p.advance()
		var e ast.Expr
		if !p.check(token.SEMICOLON) {
			e = p.parseExpr()
		}
		p.expect(token.SEMICOLON)
		return &ast.ReturnStmt{StmtBase: ast.AtStmt(line), Expr: e}
	case token.KW_DISCARD:
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.DiscardStmt{ast.AtStmt(line)}
	case token.KW_BREAK:
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.BreakStmt{ast.AtStmt(line)}
	case token.KW_CONTINUE:
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{ast.AtStmt(line)}
	case token.SEMICOLON:
		p.advance()
		return &ast.BlockStmt{StmtBase: ast.AtStmt(line)}
	case token.KW_PRECISION, token.KW_CONST, token.KW_ATTRIBUTE, token.KW_UNIFORM, token.KW_VARYING,
		token.KW_STRUCT, token.KW_INVARIANT:
		return &ast.DeclStmt{StmtBase: ast.AtStmt(line), Decl: p.parseLocalDecl()}
	}
	if p.startsTypeSpec() && !p.looksLikeExprStart() {
		return &ast.DeclStmt{StmtBase: ast.AtStmt(line), Decl: p.parseLocalDecl()}
	}
	e := p.parseExpr()
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{StmtBase: ast.AtStmt(line), Expr: e}
}

func (p *Parser) looksLikeExprStart() bool {
	// A primitive/identifier type-name immediately followed by another
	// identifier is a declaration, not an expression; anything else (a call,
	// a swizzle, an operator) is an expression.
	return p.peekAt(1).Kind != token.IDENTIFIER
}

func (p *Parser) startsTypeSpec() bool {
	k := p.peek().Kind
	return isPrecisionKind(k) || primTypeKinds[k]
}

func (p *Parser) parseLocalDecl() ast.Decl {
	line := p.peek().Line
	if p.check(token.KW_STRUCT) {
		sd := p.parseStructSpecifier()
		p.expect(token.SEMICOLON)
		return sd
	}
	qual := ast.QualNone
	if _, ok := p.match(token.KW_CONST); ok {
		qual = ast.QualConst
	}
	ts := p.parseTypeSpec()
	name := p.expect(token.IDENTIFIER).Lexeme
	return p.parseVarDeclRest(line, qual, ts, name)
}

func (p *Parser) parseIf() ast.Stmt {
	line := p.peek().Line
	p.advance()
	p.expect(token.LEFT_PAREN)
	cond := p.parseExpr()
	p.expect(token.RIGHT_PAREN)
	then := p.parseStmt()
	var els ast.Stmt
	if _, ok := p.match(token.KW_ELSE); ok {
		els = p.parseStmt()
	}
	return &ast.IfStmt{StmtBase: ast.AtStmt(line), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor() ast.Stmt {
	line := p.peek().Line
	p.advance()
	p.expect(token.LEFT_PAREN)
	var init ast.Stmt
	if !p.check(token.SEMICOLON) {
		init = p.parseForInit()
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	var post ast.Stmt
	if !p.check(token.RIGHT_PAREN) {
		e := p.parseExpr()
		post = &ast.ExprStmt{StmtBase: ast.AtStmt(p.peek().Line), Expr: e}
	}
	p.expect(token.RIGHT_PAREN)
	body := p.parseStmt()
	return &ast.ForStmt{StmtBase: ast.AtStmt(line), Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseForInit() ast.Stmt {
	line := p.peek().Line
	if p.startsTypeSpec() {
		d := p.parseLocalDecl()
		return &ast.DeclStmt{StmtBase: ast.AtStmt(line), Decl: d}
	}
	e := p.parseExpr()
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{StmtBase: ast.AtStmt(line), Expr: e}
}

// --- expressions: precedence chain of spec §4.7.1 ---

func (p *Parser) ParseExpr() ast.Expr { return p.parseExpr() }

func (p *Parser) parseExpr() ast.Expr { return p.parseAssignExpr() }

func (p *Parser) parseAssignExpr() ast.Expr {
	lhs := p.parseConditional()
	switch p.peek().Kind {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
		op := p.advance().Kind
		rhs := p.parseAssignExpr()
		return &ast.AssignExpr{ExprBase: ast.AtExpr(lhs.Line()), Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseLogicalOr()
	if _, ok := p.match(token.QUESTION); ok {
		then := p.parseAssignExpr()
		p.expect(token.COLON)
		els := p.parseConditional()
		return &ast.ConditionalExpr{ExprBase: ast.AtExpr(cond.Line()), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalXor()
	for p.check(token.OR_OR) {
		p.advance()
		right := p.parseLogicalXor()
		left = &ast.LogicalExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.OR_OR, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalXor() ast.Expr {
	left := p.parseLogicalAnd()
	for p.check(token.XOR_XOR) {
		p.advance()
		right := p.parseLogicalAnd()
		left = &ast.LogicalExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.XOR_XOR, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	left := p.parseBitOr()
	for p.check(token.AND_AND) {
		p.advance()
		right := p.parseBitOr()
		left = &ast.LogicalExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.AND_AND, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.check(token.PIPE) {
		p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.PIPE, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.check(token.CARET) {
		p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.CARET, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseEquality()
	for p.check(token.AMP) {
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: token.AMP, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.check(token.EQ) || p.check(token.NE) {
		op := p.advance().Kind
		right := p.parseRelational()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseShift()
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		op := p.advance().Kind
		right := p.parseShift()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseAdditive()
	for p.check(token.LEFT_SHIFT) || p.check(token.RIGHT_SHIFT) {
		op := p.advance().Kind
		right := p.parseAdditive()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance().Kind
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance().Kind
		right := p.parseUnary()
		left = &ast.BinaryExpr{ExprBase: ast.AtExpr(left.Line()), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.peek().Kind {
	case token.INCREMENT, token.DECREMENT, token.PLUS, token.MINUS, token.BANG:
		op := p.advance()
		expr := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.AtExpr(op.Line), Op: op.Kind, Expr: expr}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.DOT:
			p.advance()
			name := p.expect(token.IDENTIFIER).Lexeme
			e = &ast.FieldExpr{ExprBase: ast.AtExpr(e.Line()), Target: e, Name: name}
		case token.LEFT_BRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RIGHT_BRACKET)
			e = &ast.IndexExpr{ExprBase: ast.AtExpr(e.Line()), Target: e, Index: idx}
		case token.INCREMENT, token.DECREMENT:
			op := p.advance()
			e = &ast.PostfixExpr{ExprBase: ast.AtExpr(e.Line()), Op: op.Kind, Expr: e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.peek()
	switch t.Kind {
	case token.LEFT_PAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RIGHT_PAREN)
		return e
	case token.INT_CONST:
		p.advance()
		return &ast.IntLiteral{ExprBase: ast.AtExpr(t.Line), Value: parseIntLiteral(t.Lexeme)}
	case token.FLOAT_CONST:
		p.advance()
		f, _ := strconv.ParseFloat(t.Lexeme, 32)
		return &ast.FloatLiteral{ExprBase: ast.AtExpr(t.Line), Value: float32(f)}
	case token.KW_TRUE:
		p.advance()
		return &ast.BoolLiteral{ExprBase: ast.AtExpr(t.Line), Value: true}
	case token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{ExprBase: ast.AtExpr(t.Line), Value: false}
	case token.RETVAL:
		p.advance()
		return &ast.RetvalExpr{ast.AtExpr(t.Line)}
	case token.ASM_OP:
		p.advance()
		p.expect(token.LEFT_PAREN)
		var args []ast.Expr
		if !p.check(token.RIGHT_PAREN) {
			for {
				args = append(args, p.parseAssignExpr())
				if _, ok := p.match(token.COMMA); !ok {
					break
				}
			}
		}
		p.expect(token.RIGHT_PAREN)
		return &ast.AsmCall{ExprBase: ast.AtExpr(t.Line), Mnemonic: t.Lexeme, Args: args}
	case token.IDENTIFIER:
		p.advance()
		return p.finishIdentOrCall(t)
	}
	if primTypeKinds[t.Kind] {
		p.advance()
		return p.finishIdentOrCall(t)
	}
	p.errorf(t.Line, diag.L0001)
	p.advance()
	return &ast.IntLiteral{ExprBase: ast.AtExpr(t.Line)}
}

func (p *Parser) finishIdentOrCall(t token.Token) ast.Expr {
	if p.check(token.LEFT_PAREN) {
		p.advance()
		var args []ast.Expr
		if p.check(token.KW_VOID) && p.peekAt(1).Kind == token.RIGHT_PAREN {
			p.advance()
		} else if !p.check(token.RIGHT_PAREN) {
			for {
				args = append(args, p.parseAssignExpr())
				if _, ok := p.match(token.COMMA); !ok {
					break
				}
			}
		}
		p.expect(token.RIGHT_PAREN)
		return &ast.CallOrConstructor{ExprBase: ast.AtExpr(t.Line), Name: t.Lexeme, Args: args}
	}
	return &ast.Ident{ExprBase: ast.AtExpr(t.Line), Name: t.Lexeme}
}

func parseIntLiteral(lexeme string) int32 {
	lexeme = strings.TrimSpace(lexeme)
	if strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X") {
		v, _ := strconv.ParseInt(lexeme[2:], 16, 64)
		return int32(v)
	}
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return int32(v)
}
