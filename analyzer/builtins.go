package analyzer

import "github.com/tinyshader/hlslc/ast"

// builtinArity describes the accepted argument count for a builtin
// intrinsic (spec.md §6.3). Most builtins take a fixed arity; the
// InterlockedAdd/And/Or/Xor/Min/Max family takes 2 or 3 arguments.
type builtinArity struct {
	kind   ast.BuiltinKind
	min    int
	max    int // 0 means same as min (fixed arity)
	isAtom bool
}

// builtinTable maps the HLSL intrinsic spelling to its recognized
// BuiltinKind and arity, grounded on spec.md §6.3's grouped listing.
var builtinTable = map[string]builtinArity{
	"sin": {kind: ast.BuiltinSin, min: 1}, "cos": {kind: ast.BuiltinCos, min: 1},
	"tan": {kind: ast.BuiltinTan, min: 1}, "asin": {kind: ast.BuiltinAsin, min: 1},
	"acos": {kind: ast.BuiltinAcos, min: 1}, "atan": {kind: ast.BuiltinAtan, min: 1},
	"sinh": {kind: ast.BuiltinSinh, min: 1}, "cosh": {kind: ast.BuiltinCosh, min: 1},
	"tanh": {kind: ast.BuiltinTanh, min: 1}, "sqrt": {kind: ast.BuiltinSqrt, min: 1},
	"rsqrt": {kind: ast.BuiltinRsqrt, min: 1}, "exp": {kind: ast.BuiltinExp, min: 1},
	"exp2": {kind: ast.BuiltinExp2, min: 1}, "log": {kind: ast.BuiltinLog, min: 1},
	"log2": {kind: ast.BuiltinLog2, min: 1}, "abs": {kind: ast.BuiltinAbs, min: 1},
	"floor": {kind: ast.BuiltinFloor, min: 1}, "ceil": {kind: ast.BuiltinCeil, min: 1},
	"trunc": {kind: ast.BuiltinTrunc, min: 1}, "frac": {kind: ast.BuiltinFrac, min: 1},
	"degrees": {kind: ast.BuiltinDegrees, min: 1}, "radians": {kind: ast.BuiltinRadians, min: 1},

	"atan2": {kind: ast.BuiltinAtan2, min: 2}, "pow": {kind: ast.BuiltinPow, min: 2},
	"step": {kind: ast.BuiltinStep, min: 2}, "min": {kind: ast.BuiltinMin, min: 2},
	"max": {kind: ast.BuiltinMax, min: 2}, "reflect": {kind: ast.BuiltinReflect, min: 2},

	"lerp": {kind: ast.BuiltinLerp, min: 3}, "clamp": {kind: ast.BuiltinClamp, min: 3},
	"smoothstep": {kind: ast.BuiltinSmoothstep, min: 3}, "refract": {kind: ast.BuiltinRefract, min: 3},

	"dot": {kind: ast.BuiltinDot, min: 2}, "cross": {kind: ast.BuiltinCross, min: 2},
	"length": {kind: ast.BuiltinLength, min: 1}, "normalize": {kind: ast.BuiltinNormalize, min: 1},
	"distance": {kind: ast.BuiltinDistance, min: 2},

	"mul": {kind: ast.BuiltinMul, min: 2}, "transpose": {kind: ast.BuiltinTranspose, min: 1},
	"determinant": {kind: ast.BuiltinDeterminant, min: 1},

	"ddx": {kind: ast.BuiltinDdx, min: 1}, "ddy": {kind: ast.BuiltinDdy, min: 1},

	"asint": {kind: ast.BuiltinAsint, min: 1}, "asuint": {kind: ast.BuiltinAsuint, min: 1},
	"asfloat": {kind: ast.BuiltinAsfloat, min: 1},

	"InterlockedAdd":            {kind: ast.BuiltinInterlockedAdd, min: 2, max: 3, isAtom: true},
	"InterlockedAnd":            {kind: ast.BuiltinInterlockedAnd, min: 2, max: 3, isAtom: true},
	"InterlockedOr":             {kind: ast.BuiltinInterlockedOr, min: 2, max: 3, isAtom: true},
	"InterlockedXor":            {kind: ast.BuiltinInterlockedXor, min: 2, max: 3, isAtom: true},
	"InterlockedMin":            {kind: ast.BuiltinInterlockedMin, min: 2, max: 3, isAtom: true},
	"InterlockedMax":            {kind: ast.BuiltinInterlockedMax, min: 2, max: 3, isAtom: true},
	"InterlockedExchange":       {kind: ast.BuiltinInterlockedExchange, min: 3, isAtom: true},
	"InterlockedCompareExchange": {kind: ast.BuiltinInterlockedCompareExchange, min: 4, isAtom: true},
	"InterlockedCompareStore": {kind: ast.BuiltinInterlockedCompareStore, min: 3, isAtom: true},
}

// barrierSpec describes one of the six barrier call spellings
// recognized in place of a BuiltinCallExpr (spec.md §6.3).
type barrierSpec struct {
	device, workgroup, groupSync bool
}

var barrierTable = map[string]barrierSpec{
	"GroupMemoryBarrier":               {workgroup: true},
	"GroupMemoryBarrierWithGroupSync":  {workgroup: true, groupSync: true},
	"DeviceMemoryBarrier":              {device: true},
	"DeviceMemoryBarrierWithGroupSync": {device: true, groupSync: true},
	"AllMemoryBarrier":                 {device: true, workgroup: true},
	"AllMemoryBarrierWithGroupSync":    {device: true, workgroup: true, groupSync: true},
}

func lookupBarrier(name string) (barrierSpec, bool) {
	b, ok := barrierTable[name]
	return b, ok
}

func lookupBuiltin(name string) (builtinArity, bool) {
	b, ok := builtinTable[name]
	return b, ok
}

func checkArity(b builtinArity, n int) bool {
	max := b.max
	if max == 0 {
		max = b.min
	}
	return n >= b.min && n <= max
}

// builtInKind is the analyzer's own ordinal for the HLSL semantics that
// map to a SPIR-V BuiltIn (see semanticToBuiltIn); builtInNone marks a
// user varying that is assigned a Location instead (spec.md §4.5 step
// 2). The values are not SPIR-V BuiltIn enumerants.
type builtInKind int

const (
	builtInNone builtInKind = iota
	builtInPosition
	builtInVertexIndex
	builtInInstanceIndex
	builtInFragCoord
	builtInFragDepth
	builtInGlobalInvocationID
	builtInLocalInvocationID
	builtInLocalInvocationIndex
	builtInWorkgroupID
	builtInFrontFacing
)

func semanticToBuiltIn(name string) (builtInKind, bool) {
	switch name {
	case "SV_Position":
		return builtInPosition, true
	case "SV_VertexID":
		return builtInVertexIndex, true
	case "SV_InstanceID":
		return builtInInstanceIndex, true
	case "SV_Depth":
		return builtInFragDepth, true
	case "SV_DispatchThreadID":
		return builtInGlobalInvocationID, true
	case "SV_GroupThreadID":
		return builtInLocalInvocationID, true
	case "SV_GroupIndex":
		return builtInLocalInvocationIndex, true
	case "SV_GroupID":
		return builtInWorkgroupID, true
	case "SV_IsFrontFace":
		return builtInFrontFacing, true
	default:
		return builtInNone, false
	}
}

// isTargetSemantic reports whether name is an `SV_Target[n]` output
// semantic, returning its color index.
func isTargetSemantic(name string) (int, bool) {
	const prefix = "SV_Target"
	if len(name) == len(prefix) {
		if name == prefix {
			return 0, true
		}
		return 0, false
	}
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		n := 0
		for _, c := range name[len(prefix):] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		return n, true
	}
	return 0, false
}
