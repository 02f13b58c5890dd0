package hlslc

import (
	"encoding/binary"
	"testing"

	"github.com/tinyshader/hlslc/spirv"
)

func magicOf(t *testing.T, words []byte) uint32 {
	t.Helper()
	if len(words) < 4 {
		t.Fatalf("output too short: %d bytes", len(words))
	}
	return binary.LittleEndian.Uint32(words[:4])
}

func TestCompileTrivialVertexPassthrough(t *testing.T) {
	src := `
		float4 main(float3 p : POSITION) : SV_Position {
			return float4(p, 1.0);
		}
	`
	opts := DefaultOptions()
	r := Compile(src, opts)
	if r.Failed() {
		t.Fatalf("compile failed: %v", r.Error())
	}
	if got := magicOf(t, r.Words); got != spirv.MagicNumber {
		t.Errorf("magic = 0x%08x, want 0x%08x", got, spirv.MagicNumber)
	}
}

func TestCompileFragmentTexture(t *testing.T) {
	src := `
		Texture2D tex : register(t0);
		SamplerState s : register(s0);
		float4 main(float2 uv : TEXCOORD0) : SV_Target0 {
			return tex.Sample(s, uv);
		}
	`
	opts := DefaultOptions()
	opts.Stage = StageFragment
	r := Compile(src, opts)
	if r.Failed() {
		t.Fatalf("compile failed: %v", r.Error())
	}
	if len(r.Words) == 0 {
		t.Fatal("expected non-empty SPIR-V output")
	}
}

func TestCompileComputeAtomic(t *testing.T) {
	src := `
		RWStructuredBuffer<uint> buf : register(u0, space0);

		[numthreads(64, 1, 1)]
		void main(uint3 id : SV_DispatchThreadID) {
			int old;
			InterlockedAdd(buf[0], 1, old);
		}
	`
	opts := DefaultOptions()
	opts.Stage = StageCompute
	r := Compile(src, opts)
	if r.Failed() {
		t.Fatalf("compile failed: %v", r.Error())
	}
}

func TestCompileUnknownEntryPointFails(t *testing.T) {
	src := `
		float4 main(float3 p : POSITION) : SV_Position {
			return float4(p, 1.0);
		}
	`
	opts := DefaultOptions()
	opts.EntryPoint = "vs_main"
	r := Compile(src, opts)
	if !r.Failed() {
		t.Fatal("expected failure for unmatched entry point")
	}
	if len(r.Diagnostics) == 0 {
		t.Error("expected at least one diagnostic")
	}
}

func TestCompileParseErrorReturnsDiagnosticsOnly(t *testing.T) {
	src := `float4 main( : SV_Position { return }`
	r := Compile(src, DefaultOptions())
	if !r.Failed() {
		t.Fatal("expected parse failure")
	}
	if r.Words != nil {
		t.Error("expected nil Words on failure")
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	src := `
		float4 main(float3 p : POSITION) : SV_Position {
			return float4(p, 1.0);
		}
	`
	a := Compile(src, DefaultOptions())
	b := Compile(src, DefaultOptions())
	if a.Failed() || b.Failed() {
		t.Fatalf("unexpected failure: a=%v b=%v", a.Error(), b.Error())
	}
	if len(a.Words) != len(b.Words) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Words), len(b.Words))
	}
	for i := range a.Words {
		if a.Words[i] != b.Words[i] {
			t.Fatalf("byte %d differs: %x vs %x", i, a.Words[i], b.Words[i])
		}
	}
}
