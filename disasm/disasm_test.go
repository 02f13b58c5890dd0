package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tinyshader/hlslc/spirv"
)

func buildMinimalModule(t *testing.T) []byte {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.AddSource(spirv.SourceLanguageHLSL, 660)

	voidType := b.AddTypeVoid()
	funcType := b.AddTypeFunction(voidType)
	funcID := b.AddFunction(funcType, voidType, spirv.FunctionControlNone)
	b.AddName(funcID, "main")
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelFragment, funcID, "main", nil)
	b.AddExecutionMode(funcID, spirv.ExecutionModeOriginUpperLeft)

	return b.Build()
}

func TestDisassemble_HeaderAndSource(t *testing.T) {
	data := buildMinimalModule(t)

	var buf bytes.Buffer
	if err := Disassemble(data, &buf); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"; SPIR-V",
		"; Version: 1.3",
		"OpCapability Shader",
		"OpMemoryModel Logical GLSL450",
		"OpSource HLSL 660",
		"OpEntryPoint Fragment",
		"OpName",
		"\"main\"",
		"OpFunction",
		"OpFunctionEnd",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q, got:\n%s", want, out)
		}
	}
}

func TestDisassemble_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	err := Disassemble(make([]byte, 20), &buf)
	if err == nil {
		t.Fatal("expected error for zeroed header")
	}
}

func TestDisassemble_RejectsTruncated(t *testing.T) {
	var buf bytes.Buffer
	err := Disassemble([]byte{1, 2, 3}, &buf)
	if err == nil {
		t.Fatal("expected error for truncated module")
	}
}
