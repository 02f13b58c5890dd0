// Package ir defines the intermediate representation of spec.md §3/§4.6:
// a lowering of the analyzed AST to an explicit-block SSA form that
// mirrors the SPIR-V type and instruction universe closely enough that
// the encoder (package spirv) can walk it mechanically.
//
// This collapses naga's separate Module/Type/Constant/GlobalVariable/
// Function/EntryPoint registries (ir/registry.go) into one flattened
// *Inst node: our source language has exactly one compile target, so
// the handle-indexed multi-backend indirection naga needs has no work
// to do here. The interning technique for types (types.go) is kept.
package ir

import "github.com/tinyshader/hlslc/types"

// InstKind tags the variant of an Inst (spec.md §3's IRInst kind list).
type InstKind uint8

const (
	IEntryPoint InstKind = iota
	IFunction
	IBlock
	IFuncParam
	IVariable
	IConstant
	IConstantBool
	IReturn
	IDiscard
	IStore
	ILoad
	IAccessChain
	IFuncCall
	IBranch
	ICondBranch
	IBuiltinCall
	IBarrier
	ICast
	ICompositeConstruct
	ICompositeExtract
	IVectorShuffle
	ISampleImplicitLod
	ICreateSampledImage
	IUnary
	IBinary
	IAtomic
)

// Op is a core arithmetic/comparison/logical opcode, resolved to the
// concrete signed/unsigned/float SPIR-V opcode at encoding time
// (spec.md §4.7).
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpLogicalAnd
	OpLogicalOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNeg
	OpNot
	OpBitNot
)

// CastOp names the conversion performed by a Cast instruction.
type CastOp uint8

const (
	CastFToU CastOp = iota
	CastFToS
	CastSToF
	CastUToF
	CastBitcast
)

// BuiltinOp names which core-or-ext-inst operation a BuiltinCall
// instruction performs; the encoder decides OpExtInst vs a core opcode
// from this (spec.md §4.6 builtin-intrinsic lowering).
type BuiltinOp uint16

const (
	BSin BuiltinOp = iota
	BCos
	BTan
	BAsin
	BAcos
	BAtan
	BAtan2
	BSinh
	BCosh
	BTanh
	BSqrt
	BRsqrt
	BExp
	BExp2
	BLog
	BLog2
	BAbs
	BFloor
	BCeil
	BTrunc
	BFrac
	BDegrees
	BRadians
	BPow
	BStep
	BMin
	BMax
	BReflect
	BRefract
	BLerp
	BClamp
	BSmoothstep
	BDot
	BCross
	BLength
	BNormalize
	BDistance
	BMul
	BTranspose
	BDeterminant
	BDdx
	BDdy
)

// AtomicOp names which InterlockedX intrinsic an Atomic instruction
// lowers (spec.md §4.6's atomic lowering: Device scope, Relaxed
// semantics, Exchange/CompareExchange store the original value to an
// out-lvalue).
type AtomicOp uint8

const (
	AtomicAdd AtomicOp = iota
	AtomicAnd
	AtomicOr
	AtomicXor
	AtomicMin
	AtomicMax
	AtomicExchange
	AtomicCompareExchange
)

// ExecutionModel mirrors the SPIR-V shader stage enumerant.
type ExecutionModel uint8

const (
	ExecVertex ExecutionModel = iota
	ExecFragment
	ExecGLCompute
)

// Inst is the single flattened IR instruction representation: a
// tagged SSA value with an id assigned at encoding time, per spec.md
// §3's "IRInst: kind, optional result type, unique 32-bit id assigned
// during encoding, decorations, kind-specific payload."
type Inst struct {
	Kind  InstKind
	Type  *Type // nil for void-valued instructions (Store, Branch, ...)
	ID    uint32
	Decos []Decoration

	Name string // debug name (OpName), EntryPoint/Function/Variable name

	// Variable/FuncParam
	Storage StorageClass

	// Constant
	Bits    []byte
	BoolVal bool

	// General operand list: Store{Args:[ptr,val]}, Load{Args:[ptr]},
	// FuncCall{Args:[callee,args...]}, CompositeConstruct{Args:parts},
	// CompositeExtract{Args:[composite]}, VectorShuffle{Args:[a,b]},
	// SampleImplicitLod{Args:[sampledImage,coord]},
	// CreateSampledImage{Args:[image,sampler]}, Unary{Args:[x]},
	// Binary{Args:[l,r]}, BuiltinCall{Args:args}, Cast{Args:[val]},
	// Atomic{Args:[ptr,value(s)...]}.
	Args []*Inst

	// AccessChain
	Base    *Inst
	Indices []*Inst

	// Branch/CondBranch: targets are *Inst of kind IBlock.
	Target, TrueTarget, FalseTarget *Inst
	Merge, Continue                 *Inst

	// Op-bearing instructions
	Op        Op
	Cast      CastOp
	Redundant bool
	Builtin   BuiltinOp
	Atomic    AtomicOp
	OutArg    *Inst // atomic: lvalue receiving the original value

	// CompositeExtract/VectorShuffle
	ShuffleIdx []int

	// Function
	Params []*Inst
	Blocks []*Inst
	Return *Inst

	// EntryPoint
	ExecModel  ExecutionModel
	Interface  []*Inst
	NumThreads [3]int
	EntryFunc  *Inst

	// Block
	Stmts []*Inst
}

// Module owns every interned type, constant, global, and function
// produced by one compilation, plus the running id counter and
// control-flow-stack bookkeeping used during lowering (spec.md §3's
// IRModule).
type Module struct {
	Types       *Cache
	Constants   map[string]*Inst
	EntryPoints []*Inst
	Functions   []*Inst
	Globals     []*Inst // uniform/storage/groupshared globals
	IOVars      []*Inst // stage Input/Output interface variables

	ExtInstSetID uint32 // assigned at encode time; 0 means "not yet assigned"

	nextID uint32

	// cur is the block instructions append to as the builder walks
	// statements linearly.
	cur *Inst

	// continueStack/breakStack track the innermost loop's continue and
	// merge(break) target blocks, pushed/popped around loop lowering
	// (spec.md §4.6).
	continueStack []*Inst
	breakStack    []*Inst
}

// NewModule creates an empty IR module.
func NewModule() *Module {
	return &Module{
		Types:     NewCache(),
		Constants: make(map[string]*Inst),
	}
}

// AllocID returns the next unused SPIR-V result id. IDs start at 1;
// id 0 is reserved by the SPIR-V spec.
func (m *Module) AllocID() uint32 {
	m.nextID++
	return m.nextID
}

// IDBound is the bound word written into the SPIR-V header: one past
// the highest id allocated so far.
func (m *Module) IDBound() uint32 { return m.nextID + 1 }

func (m *Module) emit(i *Inst) *Inst {
	m.cur.Stmts = append(m.cur.Stmts, i)
	return i
}

// SetBlock repositions the builder's insertion cursor.
func (m *Module) SetBlock(b *Inst) { m.cur = b }

// CurrentBlock returns the block instructions are currently appended to.
func (m *Module) CurrentBlock() *Inst { return m.cur }

func (m *Module) pushLoop(continueTarget, breakTarget *Inst) {
	m.continueStack = append(m.continueStack, continueTarget)
	m.breakStack = append(m.breakStack, breakTarget)
}

func (m *Module) popLoop() {
	m.continueStack = m.continueStack[:len(m.continueStack)-1]
	m.breakStack = m.breakStack[:len(m.breakStack)-1]
}

func (m *Module) innermostContinue() *Inst {
	if len(m.continueStack) == 0 {
		return nil
	}
	return m.continueStack[len(m.continueStack)-1]
}

func (m *Module) innermostBreak() *Inst {
	if len(m.breakStack) == 0 {
		return nil
	}
	return m.breakStack[len(m.breakStack)-1]
}

// FromAstType converts a resolved types.AstType into the collapsed IR
// type universe, copying the pre-computed byte layout from the
// analyzer's Cache rather than recomputing it (spec.md §4.4's layout
// rules already ran once, in package types).
func FromAstType(c *Cache, t *types.AstType) *Type {
	switch t.Kind {
	case types.Void:
		return c.VoidType()
	case types.Bool:
		return c.BoolType()
	case types.Float:
		return c.FloatType(uint32(t.Bits))
	case types.Int:
		return c.IntType(uint32(t.Bits), t.Signed)
	case types.Vector:
		return c.VectorType(FromAstType(c, t.Elem), t.Size)
	case types.Matrix:
		return c.MatrixType(FromAstType(c, t.Col), t.ColCount)
	case types.Pointer:
		return c.PointerType(storageFromAst(t.Storage), FromAstType(c, t.Sub))
	case types.Func:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = FromAstType(c, p)
		}
		return c.FuncType(FromAstType(c, t.Return), params)
	case types.Struct:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: FromAstType(c, f.Type), Offset: f.Offset}
		}
		memberDecs := make([]MemberDecoration, len(fields))
		for i, f := range fields {
			memberDecs[i] = MemberDecoration{Member: uint32(i), Decoration: Decoration{Kind: DecOffset, Value: f.Offset}}
		}
		return c.StructType(t.Name, fields, memberDecs, nil)
	case types.Sampler:
		return c.SamplerType()
	case types.Image:
		return c.ImageType(FromAstType(c, t.SampledScalar), imageDimFromAst(t.ImgDim))
	case types.SampledImage:
		return c.SampledImageType(FromAstType(c, t.Sub))
	case types.ConstantBuffer:
		inner := FromAstType(c, t.BufferElem)
		inner.Decorations = append(inner.Decorations, Decoration{Kind: DecBlock})
		return inner
	case types.StructuredBuffer, types.RWStructuredBuffer:
		elem := FromAstType(c, t.BufferElem)
		stride := elem.byteSize()
		if stride%16 != 0 {
			stride += 16 - stride%16
		}
		arr := c.RuntimeArrayType(elem, stride)
		decs := []Decoration{{Kind: DecBufferBlock}}
		if t.Kind == types.StructuredBuffer {
			decs = append(decs, Decoration{Kind: DecNonWritable})
		}
		return c.StructType("_SB", []Field{{Name: "_data", Type: arr}}, nil, decs)
	default:
		return c.VoidType()
	}
}

// byteSize estimates the size of t for computing a structured buffer's
// array stride, padding matrix columns to 16 bytes as types.MatrixType
// does (std140-style); a struct's size is the end of its last field,
// not rounded up to its alignment.
func (t *Type) byteSize() uint32 {
	switch t.Kind {
	case Float, Int:
		return t.Bits / 8
	case Vector:
		return t.Elem.byteSize() * uint32(t.Size)
	case Matrix:
		colSize := t.Col.byteSize()
		if colSize < 16 {
			colSize = 16
		}
		return colSize * uint32(t.ColCount)
	case Struct:
		var size uint32
		for _, f := range t.Fields {
			size = f.Offset + f.Type.byteSize()
		}
		return size
	default:
		return 4
	}
}

func storageFromAst(sc types.StorageClass) StorageClass {
	switch sc {
	case types.StorageFunction:
		return StorageFunction
	case types.StorageInput:
		return StorageInput
	case types.StorageOutput:
		return StorageOutput
	case types.StorageUniform:
		return StorageUniform
	case types.StorageUniformConstant:
		return StorageUniformConstant
	case types.StorageWorkgroup:
		return StorageWorkgroup
	case types.StoragePrivate:
		return StoragePrivate
	case types.StorageStorageBuffer:
		return StorageStorageBuffer
	default:
		return StorageFunction
	}
}

func imageDimFromAst(d types.ImageDim) ImageDim {
	switch d {
	case types.Dim1D:
		return Dim1D
	case types.Dim2D:
		return Dim2D
	case types.Dim3D:
		return Dim3D
	case types.DimCube:
		return DimCube
	default:
		return Dim2D
	}
}
