package spirv

import (
	"fmt"

	"github.com/tinyshader/hlslc/ir"
)

// Encode serializes an ir.Module to a binary SPIR-V module targeting
// Version1_3, following the fixed section order of spec.md §4.7:
// capabilities, extension imports, memory model, entry points +
// execution modes, debug strings/names, annotations, then
// types/constants/globals/functions.
func Encode(m *ir.Module) ([]byte, error) {
	return EncodeVersion(m, Version1_3)
}

// EncodeVersion is Encode with an explicit target SPIR-V version.
func EncodeVersion(m *ir.Module, version Version) ([]byte, error) {
	e := &encoder{
		mod:        m,
		builder:    NewModuleBuilder(version),
		ids:        make(map[*ir.Type]uint32),
		consts:     make(map[*ir.Inst]uint32),
		vals:       make(map[*ir.Inst]uint32),
		blocks:     make(map[*ir.Inst]uint32),
		uintConsts: make(map[uint32]uint32),
	}
	return e.run()
}

type encoder struct {
	mod     *ir.Module
	builder *ModuleBuilder

	ids    map[*ir.Type]uint32 // type -> SPIR-V id, insertion order preserved
	consts map[*ir.Inst]uint32
	vals   map[*ir.Inst]uint32 // any Inst -> its result id once emitted
	blocks map[*ir.Inst]uint32 // IBlock Inst -> OpLabel id

	// uintConsts caches the literal uint32 constant ids OpControlBarrier
	// and the atomic ops need for their Scope/Semantics id operands.
	uintConsts map[uint32]uint32

	extInstSet uint32
}

// uintConstID returns the id of a uint32 OpConstant with value v,
// reusing it across every Scope/Semantics operand that needs it.
func (e *encoder) uintConstID(v uint32) uint32 {
	if id, ok := e.uintConsts[v]; ok {
		return id
	}
	id := e.builder.AddConstant(e.typeID(e.mod.Types.IntType(32, false)), v)
	e.uintConsts[v] = id
	return id
}

func baseKind(t *ir.Type) ir.Kind {
	if t.Kind == ir.Vector {
		return t.Elem.Kind
	}
	return t.Kind
}

func baseSigned(t *ir.Type) bool {
	if t.Kind == ir.Vector {
		return t.Elem.Signed
	}
	return t.Signed
}

// hlslSourceVersion is the HLSL shader-model version OpSource reports
// (spec.md §4.7: "OpSource HLSL 660", shader model 6.6 encoded as an
// integer).
const hlslSourceVersion = 660

func (e *encoder) run() ([]byte, error) {
	e.builder.AddCapability(CapabilityShader)
	e.extInstSet = e.builder.AddExtInstImport("GLSL.std.450")
	e.builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	for _, g := range e.mod.IOVars {
		e.emitGlobal(g)
	}
	for _, g := range e.mod.Globals {
		e.emitGlobal(g)
	}
	for _, fn := range e.mod.Functions {
		e.declareFunctionType(fn)
	}
	for _, ep := range e.mod.EntryPoints {
		e.emitEntryPoint(ep)
	}
	e.builder.AddSource(SourceLanguageHLSL, hlslSourceVersion)
	for _, fn := range e.mod.Functions {
		if err := e.emitFunction(fn); err != nil {
			return nil, err
		}
	}
	return e.builder.Build(), nil
}

// typeID interns t, emitting its OpType instruction (and any
// dependency types) the first time it is seen, in insertion order
// (spec.md §4.7: "type ids reserved in insertion order").
func (e *encoder) typeID(t *ir.Type) uint32 {
	if id, ok := e.ids[t]; ok {
		return id
	}
	var id uint32
	switch t.Kind {
	case ir.Void:
		id = e.builder.AddTypeVoid()
	case ir.Bool:
		id = e.builder.AddTypeBool()
	case ir.Float:
		id = e.builder.AddTypeFloat(t.Bits)
	case ir.Int:
		id = e.builder.AddTypeInt(t.Bits, t.Signed)
	case ir.Vector:
		id = e.builder.AddTypeVector(e.typeID(t.Elem), uint32(t.Size))
	case ir.Matrix:
		id = e.builder.AddTypeMatrix(e.typeID(t.Col), uint32(t.ColCount))
	case ir.RuntimeArray:
		elemID := e.typeID(t.Elem)
		id = e.builder.AddTypeRuntimeArray(elemID)
		e.builder.AddDecorate(elemID, DecorationArrayStride, t.Stride)
	case ir.Pointer:
		id = e.builder.AddTypePointer(toSPIRVStorage(t.Storage), e.typeID(t.Sub))
	case ir.Func:
		params := make([]uint32, len(t.Params))
		for i, p := range t.Params {
			params[i] = e.typeID(p)
		}
		id = e.builder.AddTypeFunction(e.typeID(t.Return), params...)
	case ir.Struct:
		members := make([]uint32, len(t.Fields))
		for i, f := range t.Fields {
			members[i] = e.typeID(f.Type)
		}
		id = e.builder.AddTypeStruct(members...)
		for _, d := range t.Decorations {
			e.applyDecoration(id, d)
		}
		for _, md := range t.MemberDecorations {
			e.applyMemberDecoration(id, md)
		}
		for i, f := range t.Fields {
			e.builder.AddMemberName(id, uint32(i), f.Name)
		}
	case ir.Sampler:
		id = e.builder.AddTypeSampler()
	case ir.Image:
		id = e.builder.AddTypeImage(e.typeID(t.Elem), uint32(toSPIRVDim(t.ImgDim)), ImageFormatUnknown)
	case ir.SampledImage:
		id = e.builder.AddTypeSampledImage(e.typeID(t.ImageType))
	}
	e.ids[t] = id
	return id
}

func (e *encoder) applyDecoration(id uint32, d ir.Decoration) {
	switch d.Kind {
	case ir.DecBlock:
		e.builder.AddDecorate(id, DecorationBlock)
	case ir.DecBufferBlock:
		e.builder.AddDecorate(id, DecorationBlock) // BufferBlock deprecated post-1.3; Block + StorageBuffer SC is used instead
	case ir.DecNonWritable:
		// applies per-member below, not at the type level
	default:
		e.builder.AddDecorate(id, spirvDecoration(d.Kind), d.Value)
	}
}

func (e *encoder) applyMemberDecoration(structID uint32, md ir.MemberDecoration) {
	switch md.Decoration.Kind {
	case ir.DecOffset:
		e.builder.AddMemberDecorate(structID, md.Member, DecorationOffset, md.Decoration.Value)
	case ir.DecColMajor:
		e.builder.AddMemberDecorate(structID, md.Member, DecorationColMajor)
		e.builder.AddMemberDecorate(structID, md.Member, DecorationMatrixStride, md.Decoration.Value)
	default:
		e.builder.AddMemberDecorate(structID, md.Member, spirvDecoration(md.Decoration.Kind), md.Decoration.Value)
	}
}

func spirvDecoration(k ir.DecorationKind) Decoration {
	switch k {
	case ir.DecBuiltIn:
		return DecorationBuiltIn
	case ir.DecLocation:
		return DecorationLocation
	case ir.DecBinding:
		return DecorationBinding
	case ir.DecDescriptorSet:
		return DecorationDescriptorSet
	case ir.DecOffset:
		return DecorationOffset
	case ir.DecArrayStride:
		return DecorationArrayStride
	case ir.DecMatrixStride:
		return DecorationMatrixStride
	case ir.DecRowMajor:
		return DecorationRowMajor
	case ir.DecColMajor:
		return DecorationColMajor
	default:
		return DecorationBlock
	}
}

func toSPIRVStorage(sc ir.StorageClass) StorageClass {
	switch sc {
	case ir.StorageUniformConstant:
		return StorageClassUniformConstant
	case ir.StorageInput:
		return StorageClassInput
	case ir.StorageUniform:
		return StorageClassUniform
	case ir.StorageOutput:
		return StorageClassOutput
	case ir.StorageWorkgroup:
		return StorageClassWorkgroup
	case ir.StoragePrivate:
		return StorageClassPrivate
	case ir.StorageFunction:
		return StorageClassFunction
	case ir.StoragePushConstant:
		return StorageClassPushConstant
	case ir.StorageImage:
		return StorageClassImage
	case ir.StorageStorageBuffer:
		return StorageClassStorageBuffer
	default:
		return StorageClassFunction
	}
}

func toSPIRVDim(d ir.ImageDim) int {
	switch d {
	case ir.Dim1D:
		return 0
	case ir.Dim2D:
		return 1
	case ir.Dim3D:
		return 2
	case ir.DimCube:
		return 3
	default:
		return 1
	}
}

func toSPIRVExecModel(m ir.ExecutionModel) ExecutionModel {
	switch m {
	case ir.ExecVertex:
		return ExecutionModelVertex
	case ir.ExecFragment:
		return ExecutionModelFragment
	case ir.ExecGLCompute:
		return ExecutionModelGLCompute
	default:
		return ExecutionModelFragment
	}
}

func (e *encoder) emitGlobal(g *ir.Inst) {
	ptrType := e.typeID(g.Type)
	id := e.builder.AddVariable(ptrType, toSPIRVStorage(g.Storage))
	e.vals[g] = id
	e.builder.AddName(id, g.Name)
	for _, d := range g.Decos {
		e.applyVarDecoration(id, d)
	}
}

func (e *encoder) applyVarDecoration(id uint32, d ir.Decoration) {
	switch d.Kind {
	case ir.DecBuiltIn:
		e.builder.AddDecorate(id, DecorationBuiltIn, d.Value)
	case ir.DecLocation:
		e.builder.AddDecorate(id, DecorationLocation, d.Value)
	case ir.DecBinding:
		e.builder.AddDecorate(id, DecorationBinding, d.Value)
	case ir.DecDescriptorSet:
		e.builder.AddDecorate(id, DecorationDescriptorSet, d.Value)
	}
}

func (e *encoder) declareFunctionType(fn *ir.Inst) {
	paramTypes := make([]*ir.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.Type
	}
	_ = e.mod.Types.FuncType(fn.Return.Type, paramTypes)
}

func (e *encoder) emitEntryPoint(ep *ir.Inst) {
	fnID, ok := e.vals[ep.EntryFunc]
	if !ok {
		fnID = e.builder.AllocID()
		e.vals[ep.EntryFunc] = fnID
	}
	iface := make([]uint32, 0, len(ep.Interface))
	for _, v := range ep.Interface {
		iface = append(iface, e.globalID(v))
	}
	e.builder.AddEntryPoint(toSPIRVExecModel(ep.ExecModel), fnID, ep.Name, iface)
	switch ep.ExecModel {
	case ir.ExecFragment:
		e.builder.AddExecutionMode(fnID, ExecutionModeOriginUpperLeft)
	case ir.ExecGLCompute:
		e.builder.AddExecutionMode(fnID, ExecutionModeLocalSize,
			uint32(ep.NumThreads[0]), uint32(ep.NumThreads[1]), uint32(ep.NumThreads[2]))
	}
}

func (e *encoder) globalID(v *ir.Inst) uint32 {
	if id, ok := e.vals[v]; ok {
		return id
	}
	e.emitGlobal(v)
	return e.vals[v]
}

func (e *encoder) emitFunction(fn *ir.Inst) error {
	paramTypes := make([]*ir.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.Type
	}
	fnType := e.mod.Types.FuncType(fn.Return.Type, paramTypes)
	fnTypeID := e.typeID(fnType)

	fnID, predeclared := e.vals[fn]
	if predeclared {
		// reuse the id already reserved for OpEntryPoint's reference
		e.builder.AddFunctionAt(fnID, fnTypeID, e.typeID(fn.Return.Type), 0)
	} else {
		fnID = e.builder.AddFunction(fnTypeID, e.typeID(fn.Return.Type), 0)
	}
	e.vals[fn] = fnID
	e.builder.AddName(fnID, fn.Name)

	for _, p := range fn.Params {
		pid := e.builder.AddFunctionParameter(e.typeID(p.Type))
		e.vals[p] = pid
	}
	for _, b := range fn.Blocks {
		e.blocks[b] = e.builder.AllocID()
	}
	for _, b := range fn.Blocks {
		e.builder.AddLabelAt(e.blocks[b])
		for _, inst := range b.Stmts {
			if err := e.emitInst(inst); err != nil {
				return err
			}
		}
	}
	e.builder.AddFunctionEnd()
	return nil
}

func (e *encoder) emitInst(inst *ir.Inst) error {
	switch inst.Kind {
	case ir.IVariable:
		id := e.builder.AddVariable(e.typeID(inst.Type), toSPIRVStorage(inst.Storage))
		e.vals[inst] = id
		if inst.Name != "" {
			e.builder.AddName(id, inst.Name)
		}
	case ir.IConstant:
		e.vals[inst] = e.constID(inst)
	case ir.IConstantBool:
		e.vals[inst] = e.constID(inst)
	case ir.ILoad:
		id := e.builder.AddLoad(e.typeID(inst.Type), e.operand(inst.Args[0]))
		e.vals[inst] = id
	case ir.IStore:
		e.builder.AddStore(e.operand(inst.Args[0]), e.operand(inst.Args[1]))
	case ir.IAccessChain:
		idx := make([]uint32, len(inst.Indices))
		for i, ix := range inst.Indices {
			idx[i] = e.operand(ix)
		}
		id := e.builder.AddAccessChain(e.typeID(inst.Type), e.operand(inst.Base), idx...)
		e.vals[inst] = id
	case ir.IReturn:
		if len(inst.Args) == 0 {
			e.builder.AddReturn()
		} else {
			e.builder.AddReturnValue(e.operand(inst.Args[0]))
		}
	case ir.IDiscard:
		e.builder.AddKill()
	case ir.IBranch:
		e.emitBranch(inst)
	case ir.ICondBranch:
		e.emitCondBranch(inst)
	case ir.IUnary:
		id := e.emitUnary(inst)
		e.vals[inst] = id
	case ir.IBinary:
		id := e.emitBinary(inst)
		e.vals[inst] = id
	case ir.ICast:
		e.vals[inst] = e.emitCast(inst)
	case ir.ICompositeConstruct:
		args := make([]uint32, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = e.operand(a)
		}
		e.vals[inst] = e.builder.AddCompositeConstruct(e.typeID(inst.Type), args...)
	case ir.ICompositeExtract:
		indices := make([]uint32, len(inst.ShuffleIdx))
		for i, ix := range inst.ShuffleIdx {
			indices[i] = uint32(ix)
		}
		e.vals[inst] = e.builder.AddCompositeExtract(e.typeID(inst.Type), e.operand(inst.Args[0]), indices)
	case ir.IVectorShuffle:
		comps := make([]uint32, len(inst.ShuffleIdx))
		for i, c := range inst.ShuffleIdx {
			comps[i] = uint32(c)
		}
		v2 := e.operand(inst.Args[0])
		if len(inst.Args) > 1 {
			v2 = e.operand(inst.Args[1])
		}
		e.vals[inst] = e.builder.AddVectorShuffle(e.typeID(inst.Type), e.operand(inst.Args[0]), v2, comps)
	case ir.ICreateSampledImage:
		e.vals[inst] = e.builder.AddSampledImage(e.typeID(inst.Type), e.operand(inst.Args[0]), e.operand(inst.Args[1]))
	case ir.ISampleImplicitLod:
		e.vals[inst] = e.builder.AddImageSampleImplicitLod(e.typeID(inst.Type), e.operand(inst.Args[0]), e.operand(inst.Args[1]))
	case ir.IBuiltinCall:
		id := e.emitBuiltinCall(inst)
		e.vals[inst] = id
	case ir.IAtomic:
		id := e.emitAtomic(inst)
		if inst.OutArg != nil {
			e.builder.AddStore(e.operand(inst.OutArg), id)
		} else {
			e.vals[inst] = id
		}
	case ir.IBarrier:
		e.emitBarrier(inst)
	case ir.IFuncCall:
		args := make([]uint32, len(inst.Args)-1)
		for i, a := range inst.Args[1:] {
			args[i] = e.operand(a)
		}
		e.vals[inst] = e.builder.AddFunctionCall(e.typeID(inst.Type), e.operand(inst.Args[0]), args)
	default:
		return fmt.Errorf("spirv: unhandled inst kind %d", inst.Kind)
	}
	return nil
}

func (e *encoder) emitBranch(inst *ir.Inst) {
	if inst.Merge != nil {
		e.builder.AddLoopMerge(e.blocks[inst.Merge], e.blocks[inst.Continue], 0)
	}
	e.builder.AddBranch(e.blocks[inst.Target])
}

func (e *encoder) emitCondBranch(inst *ir.Inst) {
	if inst.Merge != nil {
		e.builder.AddSelectionMerge(e.blocks[inst.Merge], 0)
	}
	e.builder.AddBranchConditional(e.operand(inst.Args[0]), e.blocks[inst.TrueTarget], e.blocks[inst.FalseTarget])
}

func (e *encoder) operand(i *ir.Inst) uint32 {
	if id, ok := e.vals[i]; ok {
		return id
	}
	if i.Kind == ir.IConstant || i.Kind == ir.IConstantBool {
		return e.constID(i)
	}
	return e.vals[i]
}

func (e *encoder) constID(i *ir.Inst) uint32 {
	if id, ok := e.consts[i]; ok {
		return id
	}
	var id uint32
	if i.Kind == ir.IConstantBool {
		id = e.builder.AddConstantBool(e.typeID(i.Type), i.BoolVal)
	} else {
		words := bytesToWords(i.Bits)
		id = e.builder.AddConstant(e.typeID(i.Type), words...)
	}
	e.consts[i] = id
	return id
}

func bytesToWords(b []byte) []uint32 {
	words := make([]uint32, 0, (len(b)+3)/4)
	for i := 0; i < len(b); i += 4 {
		var w uint32
		for j := 0; j < 4 && i+j < len(b); j++ {
			w |= uint32(b[i+j]) << (8 * j)
		}
		words = append(words, w)
	}
	return words
}
