package analyzer

import (
	"testing"

	"github.com/tinyshader/hlslc/ast"
	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/lexer"
	"github.com/tinyshader/hlslc/types"
)

func analyze(t *testing.T, src, entry string, stage Stage) (*ast.Unit, *Analyzer, *diag.List) {
	t.Helper()
	var d diag.List
	toks := lexer.New("test.hlsl", src, &d).Tokenize()
	u := ast.NewParser(toks, &d).Parse()
	cache := types.NewCache()
	a := New(u, cache, &d, entry, stage)
	a.Run()
	return u, a, &d
}

func TestAnalyzerFragmentEntryStageIO(t *testing.T) {
	_, a, d := analyze(t, `
		float4 main(float4 pos : SV_Position) : SV_Target0 {
			return pos;
		}
	`, "main", StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if a.EntryFunc == nil || !a.EntryFunc.IsEntryPoint {
		t.Fatalf("entry point not recognized")
	}
	if len(a.StageIO) != 2 {
		t.Fatalf("stage io = %+v", a.StageIO)
	}
	if !a.StageIO[0].HasBuiltIn {
		t.Errorf("input pos should map to a BuiltIn, got %+v", a.StageIO[0])
	}
	if !a.StageIO[1].HasLocation || a.StageIO[1].Location != 0 {
		t.Errorf("output SV_Target0 should map to Location 0, got %+v", a.StageIO[1])
	}
}

func TestAnalyzerComputeNumThreads(t *testing.T) {
	_, a, d := analyze(t, `
		[numthreads(8, 4, 1)]
		void main(uint3 tid : SV_DispatchThreadID) {
			return;
		}
	`, "main", StageCompute)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if a.EntryFunc.NumThreads != [3]int{8, 4, 1} {
		t.Errorf("numthreads = %v", a.EntryFunc.NumThreads)
	}
}

func TestAnalyzerUndeclaredIdentifier(t *testing.T) {
	_, _, d := analyze(t, `
		float f() {
			return undefinedVar;
		}
	`, "f", StageFragment)
	if !d.HasErrors() {
		t.Fatalf("expected an undeclared-identifier error")
	}
}

func TestAnalyzerSwizzleAssignability(t *testing.T) {
	_, _, d := analyze(t, `
		void f() {
			float4 v;
			v.xyz = float3(1, 2, 3);
			v.xxy = float3(1, 2, 3);
		}
	`, "f", StageFragment)
	if !d.HasErrors() {
		t.Fatalf("expected an error for assigning to a non-distinct swizzle (v.xxy)")
	}
}

func TestAnalyzerBreakContinueOutsideLoop(t *testing.T) {
	_, _, d := analyze(t, `
		void f() {
			break;
		}
	`, "f", StageFragment)
	if !d.HasErrors() {
		t.Fatalf("expected a break-outside-loop error")
	}
}

func TestAnalyzerDiscardOnlyInFragment(t *testing.T) {
	_, _, d := analyze(t, `
		void main() {
			discard;
		}
	`, "main", StageVertex)
	if !d.HasErrors() {
		t.Fatalf("expected a discard-outside-fragment error")
	}
}

func TestAnalyzerCBufferDesugarsToUniform(t *testing.T) {
	_, a, d := analyze(t, `
		cbuffer Transform : register(b0, space0) {
			float4x4 mvp;
		};
		float4 f() : SV_Target0 { return float4(0, 0, 0, 0); }
	`, "f", StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	d2, ok := a.globalScope.Lookup("Transform")
	if !ok {
		t.Fatalf("Transform not found in global scope")
	}
	cb, ok := d2.(*ast.CBufferDecl)
	if !ok {
		t.Fatalf("Transform is %T, want *ast.CBufferDecl", d2)
	}
	if cb.ResolvedType == nil || cb.ResolvedType.Kind != types.ConstantBuffer {
		t.Errorf("resolved type = %+v", cb.ResolvedType)
	}
	if !cb.HasBinding || cb.Binding != 0 || cb.DescSet != 0 {
		t.Errorf("binding = set=%d binding=%d has=%v", cb.DescSet, cb.Binding, cb.HasBinding)
	}
}

func TestAnalyzerResourceAutoBinding(t *testing.T) {
	_, a, d := analyze(t, `
		Texture2D<float4> tex0;
		Texture2D<float4> tex1;
		float4 f() : SV_Target0 { return float4(0, 0, 0, 0); }
	`, "f", StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	d0, _ := a.globalScope.Lookup("tex0")
	d1, _ := a.globalScope.Lookup("tex1")
	v0 := d0.(*ast.VarDecl)
	v1 := d1.(*ast.VarDecl)
	if v0.Binding != 0 || v1.Binding != 1 {
		t.Errorf("auto-increment bindings = %d, %d", v0.Binding, v1.Binding)
	}
}

func TestAnalyzerMulMatrixVectorResultType(t *testing.T) {
	_, a, d := analyze(t, `
		float4 f(float4x4 m, float4 v) {
			return mul(m, v);
		}
		float4 main() : SV_Target0 { return float4(0, 0, 0, 0); }
	`, "main", StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	fn := findFunc(a, "f")
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.FuncCallExpr)
	if call.ResolvedType == nil || call.ResolvedType.Kind != types.Vector {
		t.Errorf("mul(matrix,vector) result = %+v, want vector", call.ResolvedType)
	}
}

func findFunc(a *Analyzer, name string) *ast.FuncDecl {
	d, _ := a.globalScope.Lookup(name)
	fn, _ := d.(*ast.FuncDecl)
	return fn
}
