package spirv

import (
	"testing"

	"github.com/tinyshader/hlslc/ir"
)

// newTestEncoder builds a bare encoder with its own type cache, wired
// the same way Encode does, for exercising emitInst's helper methods
// in isolation without running a full compile.
func newTestEncoder(t *testing.T) (*encoder, *ir.Cache) {
	t.Helper()
	mod := ir.NewModule()
	e := &encoder{
		mod:        mod,
		builder:    NewModuleBuilder(Version1_3),
		ids:        make(map[*ir.Type]uint32),
		consts:     make(map[*ir.Inst]uint32),
		vals:       make(map[*ir.Inst]uint32),
		blocks:     make(map[*ir.Inst]uint32),
		uintConsts: make(map[uint32]uint32),
	}
	e.extInstSet = e.builder.AddExtInstImport("GLSL.std.450")
	return e, mod.Types
}

// fakeOperand registers a dummy result id for inst so e.operand(inst)
// resolves without needing a real OpConstant/OpLoad behind it.
func fakeOperand(e *encoder, inst *ir.Inst) {
	e.vals[inst] = e.builder.AllocID()
}

func lastOp(e *encoder) OpCode {
	fns := e.builder.functions
	if len(fns) == 0 {
		return OpNop
	}
	return fns[len(fns)-1].Opcode
}

func TestEmitBinary_OpcodeSelection(t *testing.T) {
	cases := []struct {
		name string
		typ  func(c *ir.Cache) *ir.Type
		op   ir.Op
		want OpCode
	}{
		{"float add", func(c *ir.Cache) *ir.Type { return c.FloatType(32) }, ir.OpAdd, OpFAdd},
		{"signed div", func(c *ir.Cache) *ir.Type { return c.IntType(32, true) }, ir.OpDiv, OpSDiv},
		{"unsigned div", func(c *ir.Cache) *ir.Type { return c.IntType(32, false) }, ir.OpDiv, OpUDiv},
		{"signed shr", func(c *ir.Cache) *ir.Type { return c.IntType(32, true) }, ir.OpShr, OpShiftRightArithmetic},
		{"unsigned shr", func(c *ir.Cache) *ir.Type { return c.IntType(32, false) }, ir.OpShr, OpShiftRightLogical},
		{"float lt", func(c *ir.Cache) *ir.Type { return c.FloatType(32) }, ir.OpLt, OpFOrdLessThan},
		{"signed lt", func(c *ir.Cache) *ir.Type { return c.IntType(32, true) }, ir.OpLt, OpSLessThan},
		{"bool eq", func(c *ir.Cache) *ir.Type { return c.BoolType() }, ir.OpEq, OpLogicalEqual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, cache := newTestEncoder(t)
			operandType := tc.typ(cache)
			l := &ir.Inst{Type: operandType}
			r := &ir.Inst{Type: operandType}
			fakeOperand(e, l)
			fakeOperand(e, r)

			resultType := operandType
			if tc.op >= ir.OpEq && tc.op <= ir.OpGe {
				resultType = cache.BoolType()
			}
			inst := &ir.Inst{Kind: ir.IBinary, Type: resultType, Op: tc.op, Args: []*ir.Inst{l, r}}

			id := e.emitBinary(inst)
			if id == 0 {
				t.Fatalf("emitBinary returned id 0")
			}
			if got := lastOp(e); got != tc.want {
				t.Errorf("opcode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEmitUnary_Negate(t *testing.T) {
	e, cache := newTestEncoder(t)
	floatT := cache.FloatType(32)
	x := &ir.Inst{Type: floatT}
	fakeOperand(e, x)
	inst := &ir.Inst{Kind: ir.IUnary, Type: floatT, Op: ir.OpNeg, Args: []*ir.Inst{x}}

	if id := e.emitUnary(inst); id == 0 {
		t.Fatal("emitUnary returned id 0")
	}
	if got := lastOp(e); got != OpFNegate {
		t.Errorf("opcode = %d, want OpFNegate", got)
	}
}

func TestEmitUnary_NotOnNumericIsZeroCompare(t *testing.T) {
	e, cache := newTestEncoder(t)
	intT := cache.IntType(32, true)
	boolT := cache.BoolType()
	x := &ir.Inst{Type: intT}
	fakeOperand(e, x)
	inst := &ir.Inst{Kind: ir.IUnary, Type: boolT, Op: ir.OpNot, Args: []*ir.Inst{x}}

	if id := e.emitUnary(inst); id == 0 {
		t.Fatal("emitUnary returned id 0")
	}
	if got := lastOp(e); got != OpIEqual {
		t.Errorf("opcode = %d, want OpIEqual", got)
	}
}

func TestEmitUnary_NotOnBoolIsLogicalNot(t *testing.T) {
	e, cache := newTestEncoder(t)
	boolT := cache.BoolType()
	x := &ir.Inst{Type: boolT}
	fakeOperand(e, x)
	inst := &ir.Inst{Kind: ir.IUnary, Type: boolT, Op: ir.OpNot, Args: []*ir.Inst{x}}

	e.emitUnary(inst)
	if got := lastOp(e); got != OpLogicalNot {
		t.Errorf("opcode = %d, want OpLogicalNot", got)
	}
}

func TestEmitCast(t *testing.T) {
	e, cache := newTestEncoder(t)
	floatT := cache.FloatType(32)
	intT := cache.IntType(32, true)
	x := &ir.Inst{Type: intT}
	fakeOperand(e, x)
	inst := &ir.Inst{Kind: ir.ICast, Type: floatT, Cast: ir.CastSToF, Args: []*ir.Inst{x}}

	e.emitCast(inst)
	if got := lastOp(e); got != OpConvertSToF {
		t.Errorf("opcode = %d, want OpConvertSToF", got)
	}
}

func TestEmitBuiltinCall_ExtInstAndCoreOps(t *testing.T) {
	e, cache := newTestEncoder(t)
	floatT := cache.FloatType(32)
	vec3T := cache.VectorType(floatT, 3)

	x := &ir.Inst{Type: floatT}
	fakeOperand(e, x)
	sqrtInst := &ir.Inst{Kind: ir.IBuiltinCall, Type: floatT, Builtin: ir.BSqrt, Args: []*ir.Inst{x}}
	if id := e.emitBuiltinCall(sqrtInst); id == 0 {
		t.Fatal("sqrt builtin returned id 0")
	}
	if got := lastOp(e); got != OpExtInst {
		t.Errorf("sqrt opcode = %d, want OpExtInst", got)
	}

	a := &ir.Inst{Type: vec3T}
	b := &ir.Inst{Type: vec3T}
	fakeOperand(e, a)
	fakeOperand(e, b)
	dotInst := &ir.Inst{Kind: ir.IBuiltinCall, Type: floatT, Builtin: ir.BDot, Args: []*ir.Inst{a, b}}
	if id := e.emitBuiltinCall(dotInst); id == 0 {
		t.Fatal("dot builtin returned id 0")
	}
	if got := lastOp(e); got != OpDot {
		t.Errorf("dot opcode = %d, want OpDot", got)
	}
}

func TestEmitBuiltinCall_MatrixMulShapes(t *testing.T) {
	e, cache := newTestEncoder(t)
	floatT := cache.FloatType(32)
	vec4T := cache.VectorType(floatT, 4)
	mat4T := cache.MatrixType(vec4T, 4)

	m := &ir.Inst{Type: mat4T}
	v := &ir.Inst{Type: vec4T}
	fakeOperand(e, m)
	fakeOperand(e, v)
	inst := &ir.Inst{Kind: ir.IBuiltinCall, Type: vec4T, Builtin: ir.BMul, Args: []*ir.Inst{m, v}}

	if id := e.emitBuiltinCall(inst); id == 0 {
		t.Fatal("mul builtin returned id 0")
	}
	if got := lastOp(e); got != OpMatrixTimesVector {
		t.Errorf("opcode = %d, want OpMatrixTimesVector", got)
	}
}

func TestEmitBuiltinCall_MulVectorVectorIsDot(t *testing.T) {
	e, cache := newTestEncoder(t)
	floatT := cache.FloatType(32)
	vec3T := cache.VectorType(floatT, 3)

	a := &ir.Inst{Type: vec3T}
	b := &ir.Inst{Type: vec3T}
	fakeOperand(e, a)
	fakeOperand(e, b)
	inst := &ir.Inst{Kind: ir.IBuiltinCall, Type: floatT, Builtin: ir.BMul, Args: []*ir.Inst{a, b}}

	if id := e.emitBuiltinCall(inst); id == 0 {
		t.Fatal("mul builtin returned id 0")
	}
	if got := lastOp(e); got != OpDot {
		t.Errorf("opcode = %d, want OpDot", got)
	}
}

func TestEmitBuiltinCall_MulScalarScalar(t *testing.T) {
	cases := []struct {
		name string
		typ  func(c *ir.Cache) *ir.Type
		want OpCode
	}{
		{"float*float", func(c *ir.Cache) *ir.Type { return c.FloatType(32) }, OpFMul},
		{"int*int", func(c *ir.Cache) *ir.Type { return c.IntType(32, true) }, OpIMul},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, cache := newTestEncoder(t)
			scalarT := tc.typ(cache)
			a := &ir.Inst{Type: scalarT}
			b := &ir.Inst{Type: scalarT}
			fakeOperand(e, a)
			fakeOperand(e, b)
			inst := &ir.Inst{Kind: ir.IBuiltinCall, Type: scalarT, Builtin: ir.BMul, Args: []*ir.Inst{a, b}}

			if id := e.emitBuiltinCall(inst); id == 0 {
				t.Fatal("mul builtin returned id 0")
			}
			if got := lastOp(e); got != tc.want {
				t.Errorf("opcode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEmitAtomic_Add(t *testing.T) {
	e, cache := newTestEncoder(t)
	intT := cache.IntType(32, true)
	ptrT := cache.PointerType(ir.StorageStorageBuffer, intT)
	ptr := &ir.Inst{Type: ptrT}
	val := &ir.Inst{Type: intT}
	fakeOperand(e, ptr)
	fakeOperand(e, val)
	inst := &ir.Inst{Kind: ir.IAtomic, Type: intT, Atomic: ir.AtomicAdd, Args: []*ir.Inst{ptr, val}}

	if id := e.emitAtomic(inst); id == 0 {
		t.Fatal("emitAtomic returned id 0")
	}
	if got := lastOp(e); got != OpAtomicIAdd {
		t.Errorf("opcode = %d, want OpAtomicIAdd", got)
	}
}

func TestEmitAtomic_CompareExchangeOperandOrder(t *testing.T) {
	e, cache := newTestEncoder(t)
	intT := cache.IntType(32, true)
	ptrT := cache.PointerType(ir.StorageStorageBuffer, intT)
	ptr := &ir.Inst{Type: ptrT}
	compare := &ir.Inst{Type: intT}
	value := &ir.Inst{Type: intT}
	fakeOperand(e, ptr)
	fakeOperand(e, compare)
	fakeOperand(e, value)
	inst := &ir.Inst{Kind: ir.IAtomic, Type: intT, Atomic: ir.AtomicCompareExchange, Args: []*ir.Inst{ptr, compare, value}}

	e.emitAtomic(inst)
	fn := e.builder.functions
	last := fn[len(fn)-1]
	if last.Opcode != OpAtomicCompareExch {
		t.Fatalf("opcode = %d, want OpAtomicCompareExch", last.Opcode)
	}
	// Words: [resultType, resultID, pointer, scope, equal, unequal, value, comparator]
	if len(last.Words) != 8 {
		t.Fatalf("word count = %d, want 8", len(last.Words))
	}
	if last.Words[6] != e.vals[value] {
		t.Errorf("value operand = %d, want %d", last.Words[6], e.vals[value])
	}
	if last.Words[7] != e.vals[compare] {
		t.Errorf("comparator operand = %d, want %d", last.Words[7], e.vals[compare])
	}
}

func TestEmitBarrier(t *testing.T) {
	e, _ := newTestEncoder(t)
	e.emitBarrier(&ir.Inst{Kind: ir.IBarrier})
	if got := lastOp(e); got != OpControlBarrier {
		t.Errorf("opcode = %d, want OpControlBarrier", got)
	}
}

func TestUintConstID_Caches(t *testing.T) {
	e, _ := newTestEncoder(t)
	a := e.uintConstID(ScopeDevice)
	b := e.uintConstID(ScopeDevice)
	if a != b {
		t.Errorf("uintConstID not cached: %d != %d", a, b)
	}
	c := e.uintConstID(ScopeWorkgroup)
	if c == a {
		t.Errorf("distinct values should not share an id")
	}
}
