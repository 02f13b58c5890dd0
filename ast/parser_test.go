package ast

import (
	"testing"

	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/lexer"
)

func parse(t *testing.T, src string) (*Unit, *diag.List) {
	t.Helper()
	var d diag.List
	toks := lexer.New("test.hlsl", src, &d).Tokenize()
	u := NewParser(toks, &d).Parse()
	return u, &d
}

func TestParserSimpleFunction(t *testing.T) {
	u, d := parse(t, `
		float4 main(float4 pos : SV_Position) : SV_Target0 {
			return pos;
		}
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(u.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(u.Decls))
	}
	fn, ok := u.Decls[0].(*FuncDecl)
	if !ok {
		t.Fatalf("decl is %T, want *FuncDecl", u.Decls[0])
	}
	if fn.Name != "main" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "pos" || fn.Params[0].Semantic != "SV_Position" {
		t.Errorf("params = %+v", fn.Params)
	}
	if fn.ReturnSemantic != "SV_Target0" {
		t.Errorf("return semantic = %q", fn.ReturnSemantic)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("body stmts = %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ReturnStmt", fn.Body.Stmts[0])
	}
	if _, ok := ret.Value.(*IdentExpr); !ok {
		t.Errorf("return value is %T, want *IdentExpr", ret.Value)
	}
}

func TestParserStructDecl(t *testing.T) {
	u, d := parse(t, `
		struct VSOut {
			float4 pos : SV_Position;
			float3 normal : NORMAL;
		};
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	sd, ok := u.Decls[0].(*StructDecl)
	if !ok {
		t.Fatalf("decl is %T, want *StructDecl", u.Decls[0])
	}
	if sd.Name != "VSOut" || len(sd.Fields) != 2 {
		t.Fatalf("struct = %+v", sd)
	}
	if sd.Fields[0].Semantic != "SV_Position" || sd.Fields[1].Semantic != "NORMAL" {
		t.Errorf("fields = %+v", sd.Fields)
	}
}

func TestParserCBufferWithRegister(t *testing.T) {
	u, d := parse(t, `
		cbuffer Transform : register(b0, space1) {
			float4x4 mvp;
		};
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	cb, ok := u.Decls[0].(*CBufferDecl)
	if !ok {
		t.Fatalf("decl is %T, want *CBufferDecl", u.Decls[0])
	}
	if !cb.Register.Present || cb.Register.Letter != 'b' || cb.Register.Slot != 0 || cb.Register.Space != 1 {
		t.Errorf("register = %+v", cb.Register)
	}
	if len(cb.Fields) != 1 || cb.Fields[0].Name != "mvp" {
		t.Errorf("fields = %+v", cb.Fields)
	}
}

func TestParserResourceVarWithRegister(t *testing.T) {
	u, d := parse(t, `
		Texture2D<float4> tex : register(t0, space0);
		SamplerState samp : register(s0);
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(u.Decls) != 2 {
		t.Fatalf("got %d decls", len(u.Decls))
	}
	tex, ok := u.Decls[0].(*VarDecl)
	if !ok || tex.Kind != VarUniform || !tex.Register.Present || tex.Register.Letter != 't' {
		t.Fatalf("tex decl = %+v", u.Decls[0])
	}
	samp, ok := u.Decls[1].(*VarDecl)
	if !ok || samp.Kind != VarUniform || samp.Register.Letter != 's' {
		t.Fatalf("samp decl = %+v", u.Decls[1])
	}
}

func TestParserExpressionPrecedence(t *testing.T) {
	u, d := parse(t, `
		float f() {
			return 1 + 2 * 3 - 4 / 2;
		}
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	fn := u.Decls[0].(*FuncDecl)
	ret := fn.Body.Stmts[0].(*ReturnStmt)
	top, ok := ret.Value.(*BinaryExpr)
	if !ok {
		t.Fatalf("top expr is %T", ret.Value)
	}
	if top.Op != BinSub {
		t.Errorf("top op = %v, want BinSub", top.Op)
	}
	lhs, ok := top.L.(*BinaryExpr)
	if !ok || lhs.Op != BinAdd {
		t.Fatalf("lhs = %+v", top.L)
	}
	if _, ok := lhs.R.(*BinaryExpr); !ok {
		t.Errorf("2*3 should nest as BinaryExpr under +, got %T", lhs.R)
	}
}

func TestParserSwizzleAssignAndCompoundOps(t *testing.T) {
	u, d := parse(t, `
		void f() {
			float4 v;
			v.xyz += float3(1, 2, 3);
			v.x = 1.0;
		}
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	fn := u.Decls[0].(*FuncDecl)
	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("stmts = %d", len(fn.Body.Stmts))
	}
	assign, ok := fn.Body.Stmts[1].(*VarAssignStmt)
	if !ok || assign.Op != OpAddAssign {
		t.Fatalf("stmt 1 = %+v", fn.Body.Stmts[1])
	}
	access, ok := assign.LHS.(*AccessExpr)
	if !ok || access.Chain[0].Name != "xyz" {
		t.Fatalf("lhs = %+v", assign.LHS)
	}
}

func TestParserControlFlow(t *testing.T) {
	u, d := parse(t, `
		float f(int n) {
			float acc = 0;
			for (int i = 0; i < n; i++) {
				if (i == 2) continue;
				if (i == 5) break;
				acc += 1.0;
			}
			while (acc < 10.0) {
				acc += 1.0;
			}
			do {
				acc -= 1.0;
			} while (acc > 0.0);
			return acc;
		}
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	fn := u.Decls[0].(*FuncDecl)
	if len(fn.Body.Stmts) != 5 {
		t.Fatalf("stmts = %d: %+v", len(fn.Body.Stmts), fn.Body.Stmts)
	}
	forStmt, ok := fn.Body.Stmts[1].(*ForStmt)
	if !ok {
		t.Fatalf("stmt 1 is %T, want *ForStmt", fn.Body.Stmts[1])
	}
	if _, ok := forStmt.Init.(*DeclStmt); !ok {
		t.Errorf("for-init = %T", forStmt.Init)
	}
	if _, ok := fn.Body.Stmts[2].(*WhileStmt); !ok {
		t.Errorf("stmt 2 = %T, want *WhileStmt", fn.Body.Stmts[2])
	}
	if _, ok := fn.Body.Stmts[3].(*DoWhileStmt); !ok {
		t.Errorf("stmt 3 = %T, want *DoWhileStmt", fn.Body.Stmts[3])
	}
}

func TestParserAttributesOnEntryPoint(t *testing.T) {
	u, d := parse(t, `
		[numthreads(8, 8, 1)]
		void main(uint3 tid : SV_DispatchThreadID) {
			return;
		}
	`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	fn := u.Decls[0].(*FuncDecl)
	if len(fn.Attrs) != 1 || fn.Attrs[0].Name != "numthreads" {
		t.Fatalf("attrs = %+v", fn.Attrs)
	}
	if len(fn.Attrs[0].Args) != 3 {
		t.Errorf("numthreads args = %d", len(fn.Attrs[0].Args))
	}
}

func TestParserErrorRecoveryContinuesDecls(t *testing.T) {
	u, d := parse(t, `
		123;
		struct Ok { float x; };
	`)
	if !d.HasErrors() {
		t.Fatalf("expected a parse error")
	}
	found := false
	for _, decl := range u.Decls {
		if sd, ok := decl.(*StructDecl); ok && sd.Name == "Ok" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected recovery to still parse the trailing struct decl: %+v", u.Decls)
	}
}

func TestParserStaticConst(t *testing.T) {
	u, d := parse(t, `static const float PI = 3.14159;`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	cd, ok := u.Decls[0].(*ConstDecl)
	if !ok || cd.Name != "PI" {
		t.Fatalf("decl = %+v", u.Decls[0])
	}
	if _, ok := cd.Init.(*PrimaryExpr); !ok {
		t.Errorf("init = %T", cd.Init)
	}
}
