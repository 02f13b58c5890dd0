package spirv

import "github.com/tinyshader/hlslc/ir"

// emitUnary lowers ir.IUnary. Negation and bitwise-not pick the
// signed/float opcode from the operand's type; logical not on a
// numeric operand has no direct SPIR-V opcode, so it is encoded as
// "operand equal to zero" (see DESIGN.md's UNOP_NOT resolution).
func (e *encoder) emitUnary(inst *ir.Inst) uint32 {
	x := e.operand(inst.Args[0])
	resultType := e.typeID(inst.Type)
	argType := inst.Args[0].Type

	switch inst.Op {
	case ir.OpNeg:
		if baseKind(argType) == ir.Float {
			return e.builder.AddUnaryOp(OpFNegate, resultType, x)
		}
		return e.builder.AddUnaryOp(OpSNegate, resultType, x)
	case ir.OpNot:
		if argType.Kind == ir.Bool {
			return e.builder.AddUnaryOp(OpLogicalNot, resultType, x)
		}
		zero := e.builder.AddConstant(e.typeID(argType), 0)
		if baseKind(argType) == ir.Float {
			return e.builder.AddBinaryOp(OpFOrdEqual, resultType, x, zero)
		}
		return e.builder.AddBinaryOp(OpIEqual, resultType, x, zero)
	case ir.OpBitNot:
		return e.builder.AddUnaryOp(OpNot, resultType, x)
	}
	return 0
}

// emitBinary lowers ir.IBinary, resolving the generic Op against the
// left operand's scalar/vector element kind (float, signed int,
// unsigned int, bool) to the concrete SPIR-V opcode.
func (e *encoder) emitBinary(inst *ir.Inst) uint32 {
	l := e.operand(inst.Args[0])
	r := e.operand(inst.Args[1])
	resultType := e.typeID(inst.Type)
	argType := inst.Args[0].Type
	kind := baseKind(argType)
	signed := baseSigned(argType)

	switch inst.Op {
	case ir.OpAdd:
		if kind == ir.Float {
			return e.builder.AddBinaryOp(OpFAdd, resultType, l, r)
		}
		return e.builder.AddBinaryOp(OpIAdd, resultType, l, r)
	case ir.OpSub:
		if kind == ir.Float {
			return e.builder.AddBinaryOp(OpFSub, resultType, l, r)
		}
		return e.builder.AddBinaryOp(OpISub, resultType, l, r)
	case ir.OpMul:
		if kind == ir.Float {
			return e.builder.AddBinaryOp(OpFMul, resultType, l, r)
		}
		return e.builder.AddBinaryOp(OpIMul, resultType, l, r)
	case ir.OpDiv:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFDiv, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSDiv, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpUDiv, resultType, l, r)
		}
	case ir.OpMod:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFMod, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSMod, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpUMod, resultType, l, r)
		}
	case ir.OpAnd:
		return e.builder.AddBinaryOp(OpBitwiseAnd, resultType, l, r)
	case ir.OpOr:
		return e.builder.AddBinaryOp(OpBitwiseOr, resultType, l, r)
	case ir.OpXor:
		return e.builder.AddBinaryOp(OpBitwiseXor, resultType, l, r)
	case ir.OpShl:
		return e.builder.AddBinaryOp(OpShiftLeftLogical, resultType, l, r)
	case ir.OpShr:
		if signed {
			return e.builder.AddBinaryOp(OpShiftRightArithmetic, resultType, l, r)
		}
		return e.builder.AddBinaryOp(OpShiftRightLogical, resultType, l, r)
	case ir.OpLogicalAnd:
		return e.builder.AddBinaryOp(OpLogicalAnd, resultType, l, r)
	case ir.OpLogicalOr:
		return e.builder.AddBinaryOp(OpLogicalOr, resultType, l, r)
	case ir.OpEq:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdEqual, resultType, l, r)
		case kind == ir.Bool:
			return e.builder.AddBinaryOp(OpLogicalEqual, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpIEqual, resultType, l, r)
		}
	case ir.OpNe:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdNotEqual, resultType, l, r)
		case kind == ir.Bool:
			return e.builder.AddBinaryOp(OpLogicalNotEqual, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpINotEqual, resultType, l, r)
		}
	case ir.OpLt:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdLessThan, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSLessThan, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpULessThan, resultType, l, r)
		}
	case ir.OpLe:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdLessThanEqual, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSLessThanEqual, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpULessThanEqual, resultType, l, r)
		}
	case ir.OpGt:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdGreaterThan, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSGreaterThan, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpUGreaterThan, resultType, l, r)
		}
	case ir.OpGe:
		switch {
		case kind == ir.Float:
			return e.builder.AddBinaryOp(OpFOrdGreaterThanEqual, resultType, l, r)
		case signed:
			return e.builder.AddBinaryOp(OpSGreaterThanEqual, resultType, l, r)
		default:
			return e.builder.AddBinaryOp(OpUGreaterThanEqual, resultType, l, r)
		}
	}
	return 0
}

// emitCast lowers ir.ICast to the matching OpConvert*/OpBitcast.
func (e *encoder) emitCast(inst *ir.Inst) uint32 {
	x := e.operand(inst.Args[0])
	resultType := e.typeID(inst.Type)
	switch inst.Cast {
	case ir.CastFToU:
		return e.builder.AddUnaryOp(OpConvertFToU, resultType, x)
	case ir.CastFToS:
		return e.builder.AddUnaryOp(OpConvertFToS, resultType, x)
	case ir.CastSToF:
		return e.builder.AddUnaryOp(OpConvertSToF, resultType, x)
	case ir.CastUToF:
		return e.builder.AddUnaryOp(OpConvertUToF, resultType, x)
	case ir.CastBitcast:
		return e.builder.AddUnaryOp(OpBitcast, resultType, x)
	}
	return 0
}

// emitBuiltinCall lowers ir.IBuiltinCall, dispatching each BuiltinOp to
// either a GLSL.std.450 extended instruction or a core SPIR-V opcode.
// mul() is handled separately since its opcode depends on whether its
// (already-swapped, see ir.Builder.lowerBuiltinCall) operands are
// scalar/vector/matrix.
func (e *encoder) emitBuiltinCall(inst *ir.Inst) uint32 {
	resultType := e.typeID(inst.Type)
	args := make([]uint32, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = e.operand(a)
	}
	argType := inst.Args[0].Type
	ext := func(op uint32) uint32 { return e.builder.AddExtInst(resultType, e.extInstSet, op, args...) }

	switch inst.Builtin {
	case ir.BSin:
		return ext(GLSLstd450Sin)
	case ir.BCos:
		return ext(GLSLstd450Cos)
	case ir.BTan:
		return ext(GLSLstd450Tan)
	case ir.BAsin:
		return ext(GLSLstd450Asin)
	case ir.BAcos:
		return ext(GLSLstd450Acos)
	case ir.BAtan:
		return ext(GLSLstd450Atan)
	case ir.BAtan2:
		return ext(GLSLstd450Atan2)
	case ir.BSinh:
		return ext(GLSLstd450Sinh)
	case ir.BCosh:
		return ext(GLSLstd450Cosh)
	case ir.BTanh:
		return ext(GLSLstd450Tanh)
	case ir.BSqrt:
		return ext(GLSLstd450Sqrt)
	case ir.BRsqrt:
		return ext(GLSLstd450InverseSqrt)
	case ir.BExp:
		return ext(GLSLstd450Exp)
	case ir.BExp2:
		return ext(GLSLstd450Exp2)
	case ir.BLog:
		return ext(GLSLstd450Log)
	case ir.BLog2:
		return ext(GLSLstd450Log2)
	case ir.BAbs:
		if baseKind(argType) == ir.Int {
			return ext(GLSLstd450SAbs)
		}
		return ext(GLSLstd450FAbs)
	case ir.BFloor:
		return ext(GLSLstd450Floor)
	case ir.BCeil:
		return ext(GLSLstd450Ceil)
	case ir.BTrunc:
		return ext(GLSLstd450Trunc)
	case ir.BFrac:
		return ext(GLSLstd450Fract)
	case ir.BDegrees:
		return ext(GLSLstd450Degrees)
	case ir.BRadians:
		return ext(GLSLstd450Radians)
	case ir.BPow:
		return ext(GLSLstd450Pow)
	case ir.BStep:
		return ext(GLSLstd450Step)
	case ir.BMin:
		switch {
		case baseKind(argType) == ir.Float:
			return ext(GLSLstd450FMin)
		case baseSigned(argType):
			return ext(GLSLstd450SMin)
		default:
			return ext(GLSLstd450UMin)
		}
	case ir.BMax:
		switch {
		case baseKind(argType) == ir.Float:
			return ext(GLSLstd450FMax)
		case baseSigned(argType):
			return ext(GLSLstd450SMax)
		default:
			return ext(GLSLstd450UMax)
		}
	case ir.BReflect:
		return ext(GLSLstd450Reflect)
	case ir.BRefract:
		return ext(GLSLstd450Refract)
	case ir.BLerp:
		return ext(GLSLstd450FMix)
	case ir.BClamp:
		switch {
		case baseKind(argType) == ir.Float:
			return ext(GLSLstd450FClamp)
		case baseSigned(argType):
			return ext(GLSLstd450SClamp)
		default:
			return ext(GLSLstd450UClamp)
		}
	case ir.BSmoothstep:
		return ext(GLSLstd450SmoothStep)
	case ir.BDot:
		return e.builder.AddBinaryOp(OpDot, resultType, args[0], args[1])
	case ir.BCross:
		return ext(GLSLstd450Cross)
	case ir.BLength:
		return ext(GLSLstd450Length)
	case ir.BNormalize:
		return ext(GLSLstd450Normalize)
	case ir.BDistance:
		return ext(GLSLstd450Distance)
	case ir.BMul:
		return e.emitMatrixMul(resultType, inst.Args[0], inst.Args[1])
	case ir.BTranspose:
		return e.builder.AddUnaryOp(OpTranspose, resultType, args[0])
	case ir.BDeterminant:
		return ext(GLSLstd450Determinant)
	case ir.BDdx:
		return e.builder.AddUnaryOp(OpDPdx, resultType, args[0])
	case ir.BDdy:
		return e.builder.AddUnaryOp(OpDPdy, resultType, args[0])
	}
	return 0
}

// emitMatrixMul picks the mul()-specific opcode by the shape of its
// (already HLSL->SPIR-V order-swapped) operands. Vector*Vector is a
// dot product (tinyshader_ir.c's ir_emit_builtin_mul has an explicit
// Dot case for this shape); scalar*scalar is plain multiplication.
func (e *encoder) emitMatrixMul(resultType uint32, a, b *ir.Inst) uint32 {
	l, r := e.operand(a), e.operand(b)
	switch {
	case a.Type.Kind == ir.Matrix && b.Type.Kind == ir.Matrix:
		return e.builder.AddBinaryOp(OpMatrixTimesMatrix, resultType, l, r)
	case a.Type.Kind == ir.Matrix && b.Type.Kind == ir.Vector:
		return e.builder.AddBinaryOp(OpMatrixTimesVector, resultType, l, r)
	case a.Type.Kind == ir.Vector && b.Type.Kind == ir.Matrix:
		return e.builder.AddBinaryOp(OpVectorTimesMatrix, resultType, l, r)
	case a.Type.Kind == ir.Matrix:
		return e.builder.AddBinaryOp(OpMatrixTimesScalar, resultType, l, r)
	case a.Type.Kind == ir.Vector && b.Type.Kind == ir.Vector:
		return e.builder.AddBinaryOp(OpDot, resultType, l, r)
	case baseKind(a.Type) == ir.Float:
		return e.builder.AddBinaryOp(OpFMul, resultType, l, r)
	case baseKind(a.Type) == ir.Int:
		return e.builder.AddBinaryOp(OpIMul, resultType, l, r)
	default:
		return e.builder.AddBinaryOp(OpVectorTimesScalar, resultType, l, r)
	}
}

// emitAtomic lowers ir.IAtomic to the matching OpAtomic* instruction,
// with Device scope and no ordering constraint (spec.md §4.6: Relaxed
// semantics). InterlockedCompareExchange's operand order is
// Pointer/Scope/Equal/Unequal/Value/Comparator; every other op is
// Pointer/Scope/Semantics/Value.
func (e *encoder) emitAtomic(inst *ir.Inst) uint32 {
	ptr := e.operand(inst.Args[0])
	resultType := e.typeID(inst.Type)
	scope := e.uintConstID(ScopeDevice)
	sem := e.uintConstID(MemorySemanticsNone)

	if inst.Atomic == ir.AtomicCompareExchange {
		value := e.operand(inst.Args[2])
		comparator := e.operand(inst.Args[1])
		return e.builder.AddAtomicCompareExchange(resultType, ptr, scope, sem, sem, value, comparator)
	}

	value := e.operand(inst.Args[1])
	var op OpCode
	switch inst.Atomic {
	case ir.AtomicAdd:
		op = OpAtomicIAdd
	case ir.AtomicAnd:
		op = OpAtomicAnd
	case ir.AtomicOr:
		op = OpAtomicOr
	case ir.AtomicXor:
		op = OpAtomicXor
	case ir.AtomicMin:
		if baseSigned(inst.Type) {
			op = OpAtomicSMin
		} else {
			op = OpAtomicUMin
		}
	case ir.AtomicMax:
		if baseSigned(inst.Type) {
			op = OpAtomicSMax
		} else {
			op = OpAtomicUMax
		}
	case ir.AtomicExchange:
		op = OpAtomicExchange
	}
	return e.builder.AddAtomicOp(op, resultType, ptr, scope, sem, value)
}

// emitBarrier lowers ir.IBarrier (HLSL GroupMemoryBarrierWithGroupSync)
// to a full workgroup execution + memory control barrier.
func (e *encoder) emitBarrier(inst *ir.Inst) {
	exec := e.uintConstID(ScopeWorkgroup)
	mem := e.uintConstID(ScopeWorkgroup)
	sem := e.uintConstID(MemorySemanticsAcquireRelease | MemorySemanticsWorkgroupMemory)
	e.builder.AddControlBarrier(exec, mem, sem)
}
