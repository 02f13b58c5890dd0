package ast

import (
	"strconv"
	"strings"

	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/token"
)

// Parser is a recursive-descent, precedence-cascade parser over an
// HLSL-like token stream (spec.md §4.3, grammar in §6.2). It mirrors
// naga's wgsl/parser.go structure: one method per expression
// precedence level, and a synchronize() that implements panic-mode
// recovery.
type Parser struct {
	toks  []token.Token
	pos   int
	diags *diag.List
}

// NewParser creates a Parser over toks, appending diagnostics to diags.
func NewParser(toks []token.Token, diags *diag.List) *Parser {
	return &Parser{toks: toks, diags: diags}
}

// Unit is the parsed translation unit: an ordered list of top-level
// declarations (spec.md §6.2: `unit := { decl }`).
type Unit struct {
	Decls []Decl
}

// Parse parses a whole translation unit, recovering from errors at
// declaration boundaries so that later declarations are still
// attempted (spec.md §4.3 recovery rule).
func (p *Parser) Parse() *Unit {
	u := &Unit{}
	for !p.atEnd() {
		d := p.declaration()
		if d != nil {
			u.Decls = append(u.Decls, d)
		}
	}
	return u
}

// ---------------------------------------------------------------------------
// token-stream primitives
// ---------------------------------------------------------------------------

func (p *Parser) atEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) prev() token.Token { return p.toks[p.pos-1] }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.prev()
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or records a diagnostic and
// returns the zero Token with ok=false.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.diags.Add(p.peek().Loc, "expected %v, found %v", k, p.peek().Kind)
	return token.Token{}, false
}

// synchronize implements the §4.3 error-recovery rule: skip to the
// next ';', '}', or top-level keyword.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.prev().Kind == token.Semicolon || p.prev().Kind == token.RBrace {
			return
		}
		switch p.peek().Kind {
		case token.KwStruct, token.KwCBuffer, token.LBracket:
			return
		}
		if isTypeStart(p.peek()) {
			return
		}
		p.advance()
	}
}

func isTypeStart(t token.Token) bool {
	switch t.Kind {
	case token.KwVoid, token.KwBool, token.KwInt, token.KwUint, token.KwFloat,
		token.KwHalf, token.KwDouble, token.VectorType, token.MatrixType,
		token.KwSamplerState, token.KwTexture1D, token.KwTexture2D, token.KwTexture2DArray,
		token.KwTexture3D, token.KwTextureCube, token.KwConstantBuffer,
		token.KwStructuredBuffer, token.KwRWStructuredBuffer, token.Ident:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Declarations (spec.md §6.2: decl := { attr } (funcDecl|structDecl|varDecl|constDecl|cbufferDecl))
// ---------------------------------------------------------------------------

func (p *Parser) declaration() Decl {
	attrs := p.attributes()

	switch {
	case p.check(token.KwStruct):
		d := p.structDecl()
		return d
	case p.check(token.KwCBuffer):
		return p.cbufferDecl()
	case p.check(token.KwStatic):
		return p.constDecl()
	default:
		if !isTypeStart(p.peek()) {
			p.diags.Add(p.peek().Loc, "expected a declaration, found %v", p.peek().Kind)
			p.advance()
			p.synchronize()
			return nil
		}
		return p.funcOrVarDecl(attrs)
	}
}

// attributes parses zero or more `[name(args...)]` prefixes.
func (p *Parser) attributes() []Attribute {
	var attrs []Attribute
	for p.check(token.LBracket) {
		start := p.peek().Loc
		p.advance()
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			p.synchronize()
			return attrs
		}
		a := Attribute{Name: nameTok.Ident, Loc: start}
		if p.match(token.LParen) {
			for !p.check(token.RParen) && !p.atEnd() {
				e := p.expression()
				a.Args = append(a.Args, e)
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.RParen)
		}
		p.expect(token.RBracket)
		attrs = append(attrs, a)
	}
	return attrs
}

func (p *Parser) structDecl() Decl {
	loc := p.peek().Loc
	p.advance() // 'struct'
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.synchronize()
		return nil
	}
	d := &StructDecl{Loc: loc, Name: nameTok.Ident}
	for !p.check(token.RBrace) && !p.atEnd() {
		f := p.structField()
		if f != nil {
			d.Fields = append(d.Fields, f)
		}
	}
	p.expect(token.RBrace)
	p.match(token.Semicolon)
	return d
}

func (p *Parser) structField() *StructField {
	loc := p.peek().Loc
	te, ok := p.typeExpr()
	if !ok {
		p.synchronize()
		return nil
	}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	f := &StructField{Loc: loc, Name: nameTok.Ident, TypeExpr: te}
	if p.match(token.Colon) {
		if semTok, ok := p.expect(token.Ident); ok {
			f.Semantic = semTok.Ident
		}
	}
	p.expect(token.Semicolon)
	return f
}

func (p *Parser) cbufferDecl() Decl {
	loc := p.peek().Loc
	p.advance() // cbuffer
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	d := &CBufferDecl{Loc: loc, Name: nameTok.Ident}
	d.Register = p.maybeRegister()
	if _, ok := p.expect(token.LBrace); !ok {
		p.synchronize()
		return nil
	}
	for !p.check(token.RBrace) && !p.atEnd() {
		f := p.structField()
		if f != nil {
			d.Fields = append(d.Fields, f)
		}
	}
	p.expect(token.RBrace)
	p.match(token.Semicolon)
	return d
}

// maybeRegister parses an optional `: register(tN[, spaceM])` suffix.
func (p *Parser) maybeRegister() Register {
	if !p.check(token.Colon) {
		return Register{}
	}
	// Only consume ':' if followed by 'register'; otherwise leave it
	// for a semantic suffix (e.g. function return semantics).
	if p.peekAt(1).Kind != token.KwRegister {
		return Register{}
	}
	p.advance() // ':'
	p.advance() // 'register'
	p.expect(token.LParen)
	reg := Register{Present: true}
	slotTok, ok := p.expect(token.Ident)
	if ok && len(slotTok.Ident) > 0 {
		reg.Letter = slotTok.Ident[0]
		if n, err := strconv.Atoi(slotTok.Ident[1:]); err == nil {
			reg.Slot = n
		}
	}
	if p.match(token.Comma) {
		if spaceTok, ok := p.expect(token.Ident); ok {
			spaceTok.Ident = strings.TrimPrefix(spaceTok.Ident, "space")
			if n, err := strconv.Atoi(spaceTok.Ident); err == nil {
				reg.Space = n
			}
		}
	}
	p.expect(token.RParen)
	return reg
}

// funcOrVarDecl parses a leading type followed by an identifier, then
// disambiguates a function (next token '(') from a variable/const
// declaration.
func (p *Parser) funcOrVarDecl(attrs []Attribute) Decl {
	loc := p.peek().Loc
	te, ok := p.typeExpr()
	if !ok {
		p.synchronize()
		return nil
	}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	if p.check(token.LParen) {
		return p.finishFuncDecl(loc, attrs, te, nameTok.Ident)
	}
	return p.finishVarDecl(loc, attrs, te, nameTok.Ident)
}

func (p *Parser) finishFuncDecl(loc token.Location, attrs []Attribute, ret TypeExpr, name string) Decl {
	p.advance() // '('
	f := &FuncDecl{Loc: loc, Attrs: attrs, Name: name, ReturnType: ret}
	for !p.check(token.RParen) && !p.atEnd() {
		param := p.parameter()
		if param != nil {
			f.Params = append(f.Params, param)
		}
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	if p.match(token.Colon) {
		if semTok, ok := p.expect(token.Ident); ok {
			f.ReturnSemantic = semTok.Ident
		}
	}
	body := p.block()
	f.Body = body
	return f
}

func (p *Parser) parameter() *VarDecl {
	loc := p.peek().Loc
	dir := DirIn
	switch {
	case p.match(token.KwIn):
		dir = DirIn
	case p.match(token.KwOut):
		dir = DirOut
	case p.match(token.KwInout):
		dir = DirInout
	}
	te, ok := p.typeExpr()
	if !ok {
		return nil
	}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		return nil
	}
	v := &VarDecl{Loc: loc, Name: nameTok.Ident, Kind: VarParam, Direction: dir, TypeExpr: te}
	if p.match(token.Colon) {
		if semTok, ok := p.expect(token.Ident); ok {
			v.Semantic = semTok.Ident
		}
	}
	return v
}

func (p *Parser) finishVarDecl(loc token.Location, attrs []Attribute, te TypeExpr, name string) Decl {
	v := &VarDecl{Loc: loc, Attrs: attrs, Name: name, TypeExpr: te}
	switch {
	case te.IsResource:
		v.Kind = VarUniform
	default:
		v.Kind = VarPlain
	}
	for _, a := range attrs {
		if a.Name == "groupshared" {
			v.Kind = VarGroupshared
		}
	}
	v.Register = p.maybeRegister()
	if p.match(token.Colon) {
		if semTok, ok := p.expect(token.Ident); ok {
			v.Semantic = semTok.Ident
		}
	}
	if p.match(token.Assign) {
		v.Init = p.expression()
	}
	p.expect(token.Semicolon)
	return v
}

func (p *Parser) constDecl() Decl {
	loc := p.peek().Loc
	p.advance() // 'static'
	p.match(token.KwConst)
	te, ok := p.typeExpr()
	if !ok {
		p.synchronize()
		return nil
	}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.synchronize()
		return nil
	}
	c := &ConstDecl{Loc: loc, Name: nameTok.Ident, TypeExpr: te}
	if p.match(token.Assign) {
		c.Init = p.expression()
	}
	p.expect(token.Semicolon)
	return c
}

// ---------------------------------------------------------------------------
// Types (spec.md §3 AstType surface forms)
// ---------------------------------------------------------------------------

//nolint:gocyclo,cyclop // exhaustive dispatch over the type-keyword surface
func (p *Parser) typeExpr() (TypeExpr, bool) {
	loc := p.peek().Loc
	switch p.peek().Kind {
	case token.KwVoid:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellVoid}, true
	case token.KwBool:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellBool}, true
	case token.KwInt:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellInt}, true
	case token.KwUint:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellUint}, true
	case token.KwFloat:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellFloat}, true
	case token.KwHalf:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellHalf}, true
	case token.KwDouble:
		p.advance()
		return TypeExpr{Loc: loc, IsScalar: true, Scalar: SpellDouble}, true
	case token.VectorType:
		desc := p.peek().Vec
		p.advance()
		return TypeExpr{Loc: loc, IsVec: true, Vector: VectorSpelling{Scalar: toSpelling(desc.Scalar), Size: desc.Dim}}, true
	case token.MatrixType:
		desc := p.peek().Vec
		p.advance()
		return TypeExpr{Loc: loc, IsMat: true, Matrix: MatrixSpelling{Scalar: toSpelling(desc.Scalar), Cols: desc.Cols, Rows: desc.Rows}}, true
	case token.KwSamplerState:
		p.advance()
		return TypeExpr{Loc: loc, IsResource: true, ResourceKind: ResourceSampler}, true
	case token.KwTexture1D, token.KwTexture2D, token.KwTexture2DArray, token.KwTexture3D, token.KwTextureCube:
		return p.textureType(loc)
	case token.KwConstantBuffer:
		p.advance()
		p.expect(token.Less)
		sub, _ := p.typeExpr()
		p.expect(token.Greater)
		return TypeExpr{Loc: loc, IsResource: true, ResourceKind: ResourceConstantBuffer, Sub: &sub}, true
	case token.KwStructuredBuffer:
		p.advance()
		p.expect(token.Less)
		sub, _ := p.typeExpr()
		p.expect(token.Greater)
		return TypeExpr{Loc: loc, IsResource: true, ResourceKind: ResourceStructuredBuffer, Sub: &sub}, true
	case token.KwRWStructuredBuffer:
		p.advance()
		p.expect(token.Less)
		sub, _ := p.typeExpr()
		p.expect(token.Greater)
		return TypeExpr{Loc: loc, IsResource: true, ResourceKind: ResourceRWStructuredBuffer, Sub: &sub}, true
	case token.Ident:
		name := p.peek().Ident
		p.advance()
		return TypeExpr{Loc: loc, IsNamed: true, Named: name}, true
	default:
		p.diags.Add(loc, "expected a type, found %v", p.peek().Kind)
		return TypeExpr{}, false
	}
}

func (p *Parser) textureType(loc token.Location) (TypeExpr, bool) {
	var dim TextureDim
	switch p.peek().Kind {
	case token.KwTexture1D:
		dim = Tex1D
	case token.KwTexture2D:
		dim = Tex2D
	case token.KwTexture2DArray:
		dim = Tex2DArray
	case token.KwTexture3D:
		dim = Tex3D
	case token.KwTextureCube:
		dim = TexCube
	}
	p.advance()
	sampled := TypeExpr{IsScalar: true, Scalar: SpellFloat}
	if p.match(token.Less) {
		t, _ := p.typeExpr()
		sampled = t
		p.expect(token.Greater)
	}
	return TypeExpr{Loc: loc, IsResource: true, ResourceKind: ResourceTexture, TextureDim: dim, Sub: &sampled}, true
}

func toSpelling(s token.ScalarKind) ScalarSpelling {
	switch s {
	case token.ScalarFloat:
		return SpellFloat
	case token.ScalarInt:
		return SpellInt
	case token.ScalarUint:
		return SpellUint
	case token.ScalarBool:
		return SpellBool
	case token.ScalarHalf:
		return SpellHalf
	case token.ScalarDouble:
		return SpellDouble
	default:
		return SpellFloat
	}
}

// ---------------------------------------------------------------------------
// Statements (spec.md §6.2)
// ---------------------------------------------------------------------------

func (p *Parser) block() *BlockStmt {
	loc := p.peek().Loc
	if _, ok := p.expect(token.LBrace); !ok {
		p.synchronize()
		return &BlockStmt{Loc: loc}
	}
	b := &BlockStmt{Loc: loc}
	for !p.check(token.RBrace) && !p.atEnd() {
		s := p.statement()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	p.expect(token.RBrace)
	return b
}

//nolint:gocyclo,cyclop // one dispatch per statement keyword, as in the grammar
func (p *Parser) statement() Stmt {
	switch p.peek().Kind {
	case token.LBrace:
		return p.block()
	case token.KwIf:
		return p.ifStmt()
	case token.KwWhile:
		return p.whileStmt()
	case token.KwDo:
		return p.doWhileStmt()
	case token.KwFor:
		return p.forStmt()
	case token.KwReturn:
		return p.returnStmt()
	case token.KwBreak:
		loc := p.advance().Loc
		p.expect(token.Semicolon)
		return &BreakStmt{Loc: loc}
	case token.KwContinue:
		loc := p.advance().Loc
		p.expect(token.Semicolon)
		return &ContinueStmt{Loc: loc}
	case token.KwDiscard:
		loc := p.advance().Loc
		p.expect(token.Semicolon)
		return &DiscardStmt{Loc: loc}
	case token.KwStatic:
		return &DeclStmt{Loc: p.peek().Loc, Decl: p.constDecl()}
	default:
		if p.looksLikeDecl() {
			loc := p.peek().Loc
			d := p.funcOrVarDecl(nil)
			return &DeclStmt{Loc: loc, Decl: d}
		}
		return p.exprOrAssignStmt()
	}
}

// looksLikeDecl reports whether the upcoming tokens spell a local
// variable declaration (`type ident ...`) rather than an expression
// statement. Needed because both start with an identifier/type token.
func (p *Parser) looksLikeDecl() bool {
	if !isTypeStart(p.peek()) {
		return false
	}
	if p.peek().Kind == token.Ident {
		// A bare identifier only starts a decl if followed by another
		// identifier (i.e. "TypeName varName").
		return p.peekAt(1).Kind == token.Ident
	}
	return true
}

func (p *Parser) ifStmt() Stmt {
	loc := p.advance().Loc // 'if'
	p.expect(token.LParen)
	cond := p.expression()
	p.expect(token.RParen)
	then := p.statement()
	var elseStmt Stmt
	if p.match(token.KwElse) {
		elseStmt = p.statement()
	}
	return &IfStmt{Loc: loc, Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) whileStmt() Stmt {
	loc := p.advance().Loc
	p.expect(token.LParen)
	cond := p.expression()
	p.expect(token.RParen)
	body := p.statement()
	return &WhileStmt{Loc: loc, Cond: cond, Body: body}
}

func (p *Parser) doWhileStmt() Stmt {
	loc := p.advance().Loc
	body := p.statement()
	p.expect(token.KwWhile)
	p.expect(token.LParen)
	cond := p.expression()
	p.expect(token.RParen)
	p.expect(token.Semicolon)
	return &DoWhileStmt{Loc: loc, Body: body, Cond: cond}
}

func (p *Parser) forStmt() Stmt {
	loc := p.advance().Loc
	p.expect(token.LParen)
	var initStmt Stmt
	if !p.check(token.Semicolon) {
		if p.looksLikeDecl() {
			d := p.funcOrVarDecl(nil)
			initStmt = &DeclStmt{Loc: loc, Decl: d}
		} else {
			e := p.expression()
			initStmt = &ExprStmt{Loc: loc, X: e}
			p.expect(token.Semicolon)
		}
	} else {
		p.advance()
	}
	var cond Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.expect(token.Semicolon)
	var post Stmt
	if !p.check(token.RParen) {
		post = p.exprOrAssignStmtNoSemi()
	}
	p.expect(token.RParen)
	body := p.statement()
	return &ForStmt{Loc: loc, Init: initStmt, Cond: cond, Post: post, Body: body}
}

func (p *Parser) returnStmt() Stmt {
	loc := p.advance().Loc
	var v Expr
	if !p.check(token.Semicolon) {
		v = p.expression()
	}
	p.expect(token.Semicolon)
	return &ReturnStmt{Loc: loc, Value: v}
}

// exprOrAssignStmt parses an expression statement or an assignment
// statement terminated by ';'.
func (p *Parser) exprOrAssignStmt() Stmt {
	s := p.exprOrAssignStmtNoSemi()
	p.expect(token.Semicolon)
	return s
}

func (p *Parser) exprOrAssignStmtNoSemi() Stmt {
	loc := p.peek().Loc
	e := p.expression()
	if op, ok := assignOpFor(p.peek().Kind); ok {
		p.advance()
		rhs := p.expression()
		return &VarAssignStmt{Loc: loc, LHS: e, Op: op, Value: rhs}
	}
	return &ExprStmt{Loc: loc, X: e}
}

func assignOpFor(k token.Kind) (AssignOp, bool) {
	switch k {
	case token.Assign:
		return OpAssign, true
	case token.PlusEqual:
		return OpAddAssign, true
	case token.MinusEqual:
		return OpSubAssign, true
	case token.StarEqual:
		return OpMulAssign, true
	case token.SlashEqual:
		return OpDivAssign, true
	case token.PercentEqual:
		return OpModAssign, true
	case token.AmpEqual:
		return OpAndAssign, true
	case token.PipeEqual:
		return OpOrAssign, true
	case token.CaretEqual:
		return OpXorAssign, true
	case token.LessLessEqual:
		return OpShlAssign, true
	case token.GreaterGreaterEqual:
		return OpShrAssign, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Expressions — C precedence, precedence-cascade (spec.md §6.2)
// ---------------------------------------------------------------------------

func (p *Parser) expression() Expr { return p.logicalOr() }

func (p *Parser) logicalOr() Expr {
	e := p.logicalAnd()
	for p.check(token.PipePipe) {
		loc := p.advance().Loc
		r := p.logicalAnd()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: BinLogicalOr, L: e, R: r}
	}
	return e
}

func (p *Parser) logicalAnd() Expr {
	e := p.bitwiseOr()
	for p.check(token.AmpAmp) {
		loc := p.advance().Loc
		r := p.bitwiseOr()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: BinLogicalAnd, L: e, R: r}
	}
	return e
}

func (p *Parser) bitwiseOr() Expr {
	e := p.bitwiseXor()
	for p.check(token.Pipe) {
		loc := p.advance().Loc
		r := p.bitwiseXor()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: BinOr, L: e, R: r}
	}
	return e
}

func (p *Parser) bitwiseXor() Expr {
	e := p.bitwiseAnd()
	for p.check(token.Caret) {
		loc := p.advance().Loc
		r := p.bitwiseAnd()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: BinXor, L: e, R: r}
	}
	return e
}

func (p *Parser) bitwiseAnd() Expr {
	e := p.equality()
	for p.check(token.Amp) {
		loc := p.advance().Loc
		r := p.equality()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: BinAnd, L: e, R: r}
	}
	return e
}

func (p *Parser) equality() Expr {
	e := p.comparison()
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case token.EqualEqual:
			op = BinEq
		case token.BangEqual:
			op = BinNe
		default:
			return e
		}
		loc := p.advance().Loc
		r := p.comparison()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: op, L: e, R: r}
	}
}

func (p *Parser) comparison() Expr {
	e := p.shift()
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case token.Less:
			op = BinLt
		case token.LessEqual:
			op = BinLe
		case token.Greater:
			op = BinGt
		case token.GreaterEqual:
			op = BinGe
		default:
			return e
		}
		loc := p.advance().Loc
		r := p.shift()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: op, L: e, R: r}
	}
}

func (p *Parser) shift() Expr {
	e := p.additive()
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case token.LessLess:
			op = BinShl
		case token.GreaterGreater:
			op = BinShr
		default:
			return e
		}
		loc := p.advance().Loc
		r := p.additive()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: op, L: e, R: r}
	}
}

func (p *Parser) additive() Expr {
	e := p.multiplicative()
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case token.Plus:
			op = BinAdd
		case token.Minus:
			op = BinSub
		default:
			return e
		}
		loc := p.advance().Loc
		r := p.multiplicative()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: op, L: e, R: r}
	}
}

func (p *Parser) multiplicative() Expr {
	e := p.unary()
	for {
		var op BinaryOp
		switch p.peek().Kind {
		case token.Star:
			op = BinMul
		case token.Slash:
			op = BinDiv
		case token.Percent:
			op = BinMod
		default:
			return e
		}
		loc := p.advance().Loc
		r := p.unary()
		e = &BinaryExpr{exprBase: exprBase{Loc: loc}, Op: op, L: e, R: r}
	}
}

func (p *Parser) unary() Expr {
	switch p.peek().Kind {
	case token.Minus:
		loc := p.advance().Loc
		x := p.unary()
		return &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryNeg, X: x}
	case token.Bang:
		loc := p.advance().Loc
		x := p.unary()
		return &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryNot, X: x}
	case token.Tilde:
		loc := p.advance().Loc
		x := p.unary()
		return &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryBitNot, X: x}
	case token.PlusPlus:
		loc := p.advance().Loc
		x := p.unary()
		return &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryPreInc, X: x}
	case token.MinusMinus:
		loc := p.advance().Loc
		x := p.unary()
		return &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryPreDec, X: x}
	default:
		return p.postfix()
	}
}

//nolint:gocyclo,cyclop // postfix chains several distinct suffix forms
func (p *Parser) postfix() Expr {
	e := p.primary()
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			nameTok, ok := p.expect(token.Ident)
			if !ok {
				return e
			}
			if p.check(token.LParen) {
				p.advance()
				var args []Expr
				for !p.check(token.RParen) && !p.atEnd() {
					args = append(args, p.expression())
					if !p.match(token.Comma) {
						break
					}
				}
				p.expect(token.RParen)
				e = &FuncCallExpr{exprBase: exprBase{Loc: nameTok.Loc}, Self: e, Method: nameTok.Ident, Args: args}
				continue
			}
			e = &AccessExpr{exprBase: exprBase{Loc: nameTok.Loc}, Base: e, Chain: []AccessStep{{Name: nameTok.Ident, Loc: nameTok.Loc}}}
		case token.LBracket:
			loc := p.advance().Loc
			idx := p.expression()
			p.expect(token.RBracket)
			e = &SubscriptExpr{exprBase: exprBase{Loc: loc}, Left: e, Index: idx}
		case token.LParen:
			loc := p.advance().Loc
			var args []Expr
			for !p.check(token.RParen) && !p.atEnd() {
				args = append(args, p.expression())
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.RParen)
			e = &FuncCallExpr{exprBase: exprBase{Loc: loc}, Callee: e, Args: args}
		case token.PlusPlus:
			loc := p.advance().Loc
			e = &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryPreInc, X: e}
		case token.MinusMinus:
			loc := p.advance().Loc
			e = &UnaryExpr{exprBase: exprBase{Loc: loc}, Op: UnaryPreDec, X: e}
		default:
			return e
		}
	}
}

//nolint:gocyclo,cyclop // one branch per literal/primary grammar alternative
func (p *Parser) primary() Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLiteral:
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimInt, Int: tok.IntVal}
	case token.FloatLiteral:
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimFloat, Float: tok.FltVal}
	case token.StringLiteral:
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimString, Str: tok.StrVal}
	case token.KwTrue:
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimBool, Bool: true}
	case token.KwFalse:
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimBool, Bool: false}
	case token.LParen:
		p.advance()
		e := p.expression()
		p.expect(token.RParen)
		return e
	case token.Ident:
		p.advance()
		return &IdentExpr{exprBase: exprBase{Loc: tok.Loc}, Name: tok.Ident}
	case token.VectorType, token.MatrixType, token.KwFloat, token.KwInt, token.KwUint, token.KwBool:
		// Type-constructor call: floatN(...), float4x4(...), int(...), etc.
		te, _ := p.typeExpr()
		return &IdentExpr{exprBase: exprBase{Loc: tok.Loc, AsType: &te}, Name: typeExprName(te)}
	default:
		p.diags.Add(tok.Loc, "unexpected token %v in expression", tok.Kind)
		p.advance()
		return &PrimaryExpr{exprBase: exprBase{Loc: tok.Loc}, Kind: PrimInt, Int: 0}
	}
}

func typeExprName(te TypeExpr) string {
	switch {
	case te.IsVec:
		return "<vector-ctor>"
	case te.IsMat:
		return "<matrix-ctor>"
	case te.IsScalar:
		return "<scalar-ctor>"
	default:
		return te.Named
	}
}
