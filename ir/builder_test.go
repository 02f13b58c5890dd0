package ir_test

import (
	"testing"

	"github.com/tinyshader/hlslc/analyzer"
	"github.com/tinyshader/hlslc/ast"
	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/ir"
	"github.com/tinyshader/hlslc/lexer"
	"github.com/tinyshader/hlslc/types"
)

func build(t *testing.T, src, entry string, stage analyzer.Stage) (*ir.Module, *diag.List) {
	t.Helper()
	var d diag.List
	toks := lexer.New("test.hlsl", src, &d).Tokenize()
	u := ast.NewParser(toks, &d).Parse()
	a := analyzer.New(u, types.NewCache(), &d, entry, stage)
	a.Run()
	if d.HasErrors() {
		t.Fatalf("unexpected analyzer errors: %s", d.String())
	}
	m := ir.Build(u, a, &d)
	return m, &d
}

func TestBuildTrivialVertexPassthrough(t *testing.T) {
	m, d := build(t, `
		float4 main(float4 pos : SV_Position) : SV_Position {
			return pos;
		}
	`, "main", analyzer.StageVertex)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(m.EntryPoints) != 1 {
		t.Fatalf("entry points = %d, want 1", len(m.EntryPoints))
	}
	ep := m.EntryPoints[0]
	if ep.ExecModel != ir.ExecVertex {
		t.Errorf("exec model = %v, want ExecVertex", ep.ExecModel)
	}
	if len(ep.Interface) != 2 {
		t.Errorf("interface vars = %d, want 2 (input + output)", len(ep.Interface))
	}
	// two entry-point-adapter functions: the void() wrapper and the
	// inner float4(float4) user function.
	if len(m.Functions) != 2 {
		t.Fatalf("functions = %d, want 2", len(m.Functions))
	}
}

func TestBuildFragmentBuiltinCall(t *testing.T) {
	m, d := build(t, `
		float4 main(float4 uv : TEXCOORD0) : SV_Target0 {
			float s = sin(uv.x);
			return float4(s, s, s, 1.0);
		}
	`, "main", analyzer.StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(m.EntryPoints) != 1 {
		t.Fatalf("entry points = %d, want 1", len(m.EntryPoints))
	}
	if m.EntryPoints[0].ExecModel != ir.ExecFragment {
		t.Errorf("exec model = %v, want ExecFragment", m.EntryPoints[0].ExecModel)
	}
	if !hasInstKind(m, ir.IBuiltinCall) {
		t.Errorf("expected a builtin-call instruction for sin()")
	}
}

func TestBuildControlFlowProducesBranches(t *testing.T) {
	m, d := build(t, `
		float f(float x) {
			float acc = 0.0;
			int i = 0;
			while (i < 4) {
				if (x > 0.0) {
					acc = acc + x;
				} else {
					acc = acc - x;
				}
				i = i + 1;
			}
			return acc;
		}
		float4 main(float4 pos : SV_Position) : SV_Target0 {
			return float4(f(pos.x), 0.0, 0.0, 1.0);
		}
	`, "main", analyzer.StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if !hasInstKind(m, ir.ICondBranch) {
		t.Errorf("expected at least one conditional branch")
	}
	if !hasInstKind(m, ir.IBranch) {
		t.Errorf("expected at least one unconditional branch")
	}
}

func TestBuildSwizzleAssignment(t *testing.T) {
	m, d := build(t, `
		float4 main(float4 pos : SV_Position) : SV_Target0 {
			float4 c;
			c.xyz = float3(1.0, 2.0, 3.0);
			c.w = 1.0;
			return c;
		}
	`, "main", analyzer.StageFragment)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if !hasInstKind(m, ir.IAccessChain) {
		t.Errorf("expected access-chain instructions for swizzle stores")
	}
}

func TestBuildComputeAtomic(t *testing.T) {
	m, d := build(t, `
		RWStructuredBuffer<int> counters : register(u0, space0);

		[numthreads(8, 1, 1)]
		void main(uint3 tid : SV_DispatchThreadID) {
			int old;
			InterlockedAdd(counters[0], 1, old);
		}
	`, "main", analyzer.StageCompute)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(m.EntryPoints) != 1 {
		t.Fatalf("entry points = %d, want 1", len(m.EntryPoints))
	}
	ep := m.EntryPoints[0]
	if ep.ExecModel != ir.ExecGLCompute {
		t.Errorf("exec model = %v, want ExecGLCompute", ep.ExecModel)
	}
	if ep.NumThreads != [3]int{8, 1, 1} {
		t.Errorf("numthreads = %v", ep.NumThreads)
	}
	if !hasInstKind(m, ir.IAtomic) {
		t.Errorf("expected an atomic instruction for InterlockedAdd")
	}
}

func hasInstKind(m *ir.Module, k ir.InstKind) bool {
	for _, fn := range m.Functions {
		for _, blk := range fn.Blocks {
			for _, inst := range blk.Stmts {
				if inst.Kind == k {
					return true
				}
			}
		}
	}
	return false
}
