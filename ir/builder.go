// Lowering from the analyzed AST to IR (spec.md §4.6), grounded on
// naga's wgsl/lower.go walk-and-annotate shape: each AST node receives
// its IR value through the same exported `IRValue any` field the
// analyzer used for its own per-node annotations, and expressions are
// lowered bottom-up by a family of `lower*` methods mirroring
// `wgsl/lower.go`'s `lowerExpr`/`lowerStmt` split. Unlike naga's
// backend (which keeps structured if/loop statements until SPIR-V
// encoding), this builder lowers control flow to explicit blocks right
// here, because spec.md §3 already specifies IRInst as block-structured.
package ir

import (
	"fmt"
	"math"

	"github.com/tinyshader/hlslc/analyzer"
	"github.com/tinyshader/hlslc/ast"
	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/types"
)

// Builder lowers one analyzed translation unit's entry point to an
// ir.Module.
type Builder struct {
	unit  *ast.Unit
	an    *analyzer.Analyzer
	diags *diag.List
	mod   *Module

	funcByDecl map[*ast.FuncDecl]*Inst
	localVars  map[*ast.VarDecl]*Inst // params and locals -> alloca/pointer Inst
	constDecls map[*ast.ConstDecl]*Inst

	entryAlloca *Inst // current function's entry block, for alloca placement
	curFunc     *Inst // function currently being lowered, for block bookkeeping
}

// Build lowers unit's requested entry point (already resolved by an)
// into a complete ir.Module.
func Build(unit *ast.Unit, an *analyzer.Analyzer, diags *diag.List) *Module {
	b := &Builder{
		unit:       unit,
		an:         an,
		diags:      diags,
		mod:        NewModule(),
		funcByDecl: make(map[*ast.FuncDecl]*Inst),
		localVars:  make(map[*ast.VarDecl]*Inst),
		constDecls: make(map[*ast.ConstDecl]*Inst),
	}
	b.lowerGlobals()
	if an.EntryFunc != nil {
		b.lowerEntryPoint(an.EntryFunc)
	}
	return b.mod
}

func (b *Builder) lowerGlobals() {
	for _, d := range b.unit.Decls {
		switch v := d.(type) {
		case *ast.VarDecl:
			if v.Kind == ast.VarUniform {
				b.lowerGlobalVar(v)
			}
		case *ast.CBufferDecl:
			b.lowerCBuffer(v)
		case *ast.ConstDecl:
			b.lowerConstDecl(v)
		}
	}
}

func (b *Builder) lowerGlobalVar(v *ast.VarDecl) *Inst {
	t := FromAstType(b.mod.Types, v.ResolvedType)
	sc := StorageUniformConstant
	switch v.ResolvedType.Kind {
	case types.ConstantBuffer:
		sc = StorageUniform
	case types.StructuredBuffer, types.RWStructuredBuffer:
		sc = StorageStorageBuffer
	}
	ptr := b.mod.Types.PointerType(sc, t)
	g := &Inst{Kind: IVariable, Type: ptr, Storage: sc, Name: v.Name}
	if v.HasBinding {
		g.Decos = append(g.Decos,
			Decoration{Kind: DecDescriptorSet, Value: v.DescSet},
			Decoration{Kind: DecBinding, Value: v.Binding})
	}
	b.mod.Globals = append(b.mod.Globals, g)
	b.localVars[v] = g
	v.IRValue = g
	return g
}

func (b *Builder) lowerCBuffer(cb *ast.CBufferDecl) {
	t := FromAstType(b.mod.Types, cb.ResolvedType)
	ptr := b.mod.Types.PointerType(StorageUniform, t)
	g := &Inst{Kind: IVariable, Type: ptr, Storage: StorageUniform, Name: cb.Name}
	if cb.HasBinding {
		g.Decos = append(g.Decos,
			Decoration{Kind: DecDescriptorSet, Value: cb.DescSet},
			Decoration{Kind: DecBinding, Value: cb.Binding})
	}
	b.mod.Globals = append(b.mod.Globals, g)
	cb.IRValue = g
}

func (b *Builder) lowerConstDecl(c *ast.ConstDecl) {
	v := b.lowerConstExpr(c.Init, c.ResolvedType)
	b.constDecls[c] = v
	c.IRValue = v
}

// lowerEntryPoint builds the outer void() adapter function that loads
// stage inputs into allocas, calls the user function, and stores its
// result to the stage outputs (spec.md §4.6 "Entry-point adapter").
func (b *Builder) lowerEntryPoint(fn *ast.FuncDecl) {
	inner := b.lowerFunction(fn, false)

	entryFn := &Inst{Kind: IFunction, Type: b.mod.Types.FuncType(b.mod.Types.VoidType(), nil), Name: fn.Name + "_main", Return: &Inst{Type: b.mod.Types.VoidType()}}
	entryBlock := &Inst{Kind: IBlock}
	entryFn.Blocks = []*Inst{entryBlock}
	b.mod.SetBlock(entryBlock)

	var ioIface []*Inst
	var callArgs []*Inst
	var outVars []*Inst
	inIdx := 0
	for _, p := range fn.Params {
		if p.Semantic == "" {
			callArgs = append(callArgs, b.allocaLocal(p, entryBlock))
			continue
		}
		io := b.an.StageIO[inIdx]
		inIdx++
		v := b.stageIOVar(io, false)
		ioIface = append(ioIface, v)
		alloca := b.alloca(entryBlock, FromAstType(b.mod.Types, p.ResolvedType), p.Name)
		loaded := b.mod.emit(&Inst{Kind: ILoad, Type: v.Type.Sub, Args: []*Inst{v}})
		b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{alloca, loaded}})
		callArgs = append(callArgs, alloca)
	}
	for inIdx < len(b.an.StageIO) && !b.an.StageIO[inIdx].IsOutput {
		inIdx++
	}
	for i := inIdx; i < len(b.an.StageIO); i++ {
		io := b.an.StageIO[i]
		v := b.stageIOVar(io, true)
		ioIface = append(ioIface, v)
		outVars = append(outVars, v)
	}

	result := b.mod.emit(&Inst{Kind: IFuncCall, Type: inner.Return.Type, Args: append([]*Inst{inner}, callArgs...)})

	if len(outVars) == 1 {
		b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{outVars[0], result}})
	} else {
		for i, ov := range outVars {
			part := b.mod.emit(&Inst{Kind: ICompositeExtract, Type: ov.Type.Sub, Args: []*Inst{result}, ShuffleIdx: []int{i}})
			b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{ov, part}})
		}
	}
	b.mod.emit(&Inst{Kind: IReturn})

	b.mod.Functions = append(b.mod.Functions, inner, entryFn)
	b.mod.IOVars = append(b.mod.IOVars, ioIface...)

	ep := &Inst{
		Kind:       IEntryPoint,
		Name:       fn.Name,
		ExecModel:  execModelForStage(b.an),
		Interface:  ioIface,
		NumThreads: fn.NumThreads,
		EntryFunc:  entryFn,
	}
	b.mod.EntryPoints = append(b.mod.EntryPoints, ep)
}

func execModelForStage(a *analyzer.Analyzer) ExecutionModel {
	switch a.Stage() {
	case analyzer.StageVertex:
		return ExecVertex
	case analyzer.StageCompute:
		return ExecGLCompute
	default:
		return ExecFragment
	}
}

func (b *Builder) stageIOVar(io analyzer.StageIOVar, isOutput bool) *Inst {
	t := FromAstType(b.mod.Types, io.Type)
	sc := StorageInput
	if isOutput {
		sc = StorageOutput
	}
	ptr := b.mod.Types.PointerType(sc, t)
	v := &Inst{Kind: IVariable, Type: ptr, Storage: sc, Name: io.Name}
	if bi, ok := SemanticBuiltIn(io.Semantic); ok {
		v.Decos = append(v.Decos, Decoration{Kind: DecBuiltIn, Value: uint32(bi)})
	} else if io.HasLocation {
		v.Decos = append(v.Decos, Decoration{Kind: DecLocation, Value: io.Location})
	}
	return v
}

// lowerFunction lowers fn's body into a Function Inst. Every parameter
// and local is alloca'd in the entry block regardless of whether it is
// ever reassigned, per spec.md §4.6's "alloca-in-entry" rule.
func (b *Builder) lowerFunction(fn *ast.FuncDecl, isEntry bool) *Inst {
	retType := FromAstType(b.mod.Types, fn.ResolvedType.Return)
	params := make([]*Inst, len(fn.Params))
	fnInst := &Inst{Kind: IFunction, Name: fn.Name, Return: &Inst{Type: retType}}
	entry := &Inst{Kind: IBlock}
	fnInst.Blocks = []*Inst{entry}
	b.mod.SetBlock(entry)
	prevEntry := b.entryAlloca
	b.entryAlloca = entry
	prevFunc := b.curFunc
	b.curFunc = fnInst
	defer func() { b.entryAlloca = prevEntry; b.curFunc = prevFunc }()

	for i, p := range fn.Params {
		pt := FromAstType(b.mod.Types, p.ResolvedType)
		if p.Direction != ast.DirIn {
			pt = b.mod.Types.PointerType(StorageFunction, pt)
		}
		param := &Inst{Kind: IFuncParam, Type: pt, Name: p.Name}
		params[i] = param
		if p.Direction == ast.DirIn {
			alloca := b.alloca(entry, FromAstType(b.mod.Types, p.ResolvedType), p.Name)
			b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{alloca, param}})
			b.localVars[p] = alloca
		} else {
			b.localVars[p] = param
		}
	}
	fnInst.Params = params

	b.lowerBlock(fn.Body)
	if retType.Kind == Void {
		b.mod.emit(&Inst{Kind: IReturn})
	}
	return fnInst
}

func (b *Builder) alloca(entry *Inst, t *Type, name string) *Inst {
	ptr := b.mod.Types.PointerType(StorageFunction, t)
	a := &Inst{Kind: IVariable, Type: ptr, Storage: StorageFunction, Name: name}
	entry.Stmts = append(entry.Stmts, a)
	return a
}

func (b *Builder) allocaLocal(p *ast.VarDecl, entry *Inst) *Inst {
	t := FromAstType(b.mod.Types, p.ResolvedType)
	a := b.alloca(entry, t, p.Name)
	b.localVars[p] = a
	return a
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (b *Builder) lowerBlock(s *ast.BlockStmt) {
	for _, stmt := range s.Stmts {
		b.lowerStmt(stmt)
	}
}

func (b *Builder) lowerStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		b.lowerLocalDecl(st.Decl)
	case *ast.ExprStmt:
		b.lowerExpr(st.X)
	case *ast.VarAssignStmt:
		b.lowerAssign(st)
	case *ast.ReturnStmt:
		if st.Value == nil {
			b.mod.emit(&Inst{Kind: IReturn})
		} else {
			v := b.lowerExpr(st.Value)
			b.mod.emit(&Inst{Kind: IReturn, Args: []*Inst{v}})
		}
	case *ast.DiscardStmt:
		b.mod.emit(&Inst{Kind: IDiscard})
	case *ast.BlockStmt:
		b.lowerBlock(st)
	case *ast.IfStmt:
		b.lowerIf(st)
	case *ast.WhileStmt:
		b.lowerWhile(st)
	case *ast.DoWhileStmt:
		b.lowerDoWhile(st)
	case *ast.ForStmt:
		b.lowerFor(st)
	case *ast.BreakStmt:
		b.mod.emit(&Inst{Kind: IBranch, Target: b.mod.innermostBreak()})
	case *ast.ContinueStmt:
		b.mod.emit(&Inst{Kind: IBranch, Target: b.mod.innermostContinue()})
	default:
		panic(fmt.Sprintf("ir: unhandled stmt %T", s))
	}
}

func (b *Builder) lowerLocalDecl(d ast.Decl) {
	switch v := d.(type) {
	case *ast.VarDecl:
		t := FromAstType(b.mod.Types, v.ResolvedType)
		a := b.alloca(b.currentEntryBlock(), t, v.Name)
		b.localVars[v] = a
		if v.Init != nil {
			init := b.lowerExpr(v.Init)
			b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{a, init}})
		}
	case *ast.ConstDecl:
		b.lowerConstDecl(v)
	}
}

// currentEntryBlock returns the block holding this function's allocas.
// Since lowerFunction emits every local's alloca directly into the
// function's first block as it walks statements linearly, that is
// simply the function's entry block — tracked via b.entryAlloca.
func (b *Builder) currentEntryBlock() *Inst {
	if b.entryAlloca != nil {
		return b.entryAlloca
	}
	return b.mod.CurrentBlock()
}

func (b *Builder) lowerAssign(st *ast.VarAssignStmt) {
	ptr := b.lowerLValue(st.LHS)
	val := b.lowerExpr(st.Value)
	if st.Op != ast.OpAssign {
		cur := b.mod.emit(&Inst{Kind: ILoad, Type: ptr.Type.Sub, Args: []*Inst{ptr}})
		val = b.emitBinaryOp(assignOpToBinary(st.Op), cur, val, resolvedTypeOf(st.LHS))
	}
	b.storeLValue(st.LHS, ptr, val)
}

func assignOpToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.OpAddAssign:
		return ast.BinAdd
	case ast.OpSubAssign:
		return ast.BinSub
	case ast.OpMulAssign:
		return ast.BinMul
	case ast.OpDivAssign:
		return ast.BinDiv
	case ast.OpModAssign:
		return ast.BinMod
	case ast.OpAndAssign:
		return ast.BinAnd
	case ast.OpOrAssign:
		return ast.BinOr
	case ast.OpXorAssign:
		return ast.BinXor
	case ast.OpShlAssign:
		return ast.BinShl
	case ast.OpShrAssign:
		return ast.BinShr
	default:
		return ast.BinAdd
	}
}

// lowerIf lowers structured if/else to explicit blocks, grounded on
// naga's spirv/backend.go emitIf: allocate accept/reject/merge
// blocks, emit OpSelectionMerge+OpBranchConditional, then each arm
// followed by an unconditional branch to merge.
func (b *Builder) lowerIf(st *ast.IfStmt) {
	cond := b.lowerExpr(st.Cond)
	thenBlock := &Inst{Kind: IBlock}
	mergeBlock := &Inst{Kind: IBlock}
	elseBlock := mergeBlock
	if st.Else != nil {
		elseBlock = &Inst{Kind: IBlock}
	}
	fn := b.currentFunc()
	cb := &Inst{Kind: ICondBranch, Args: []*Inst{cond}, TrueTarget: thenBlock, FalseTarget: elseBlock, Merge: mergeBlock}
	b.mod.emit(cb)

	fn.Blocks = append(fn.Blocks, thenBlock)
	b.mod.SetBlock(thenBlock)
	b.lowerStmt(st.Then)
	b.mod.emit(&Inst{Kind: IBranch, Target: mergeBlock})

	if st.Else != nil {
		fn.Blocks = append(fn.Blocks, elseBlock)
		b.mod.SetBlock(elseBlock)
		b.lowerStmt(st.Else)
		b.mod.emit(&Inst{Kind: IBranch, Target: mergeBlock})
	}

	fn.Blocks = append(fn.Blocks, mergeBlock)
	b.mod.SetBlock(mergeBlock)
}

// lowerWhile/lowerFor/lowerDoWhile lower to header/body/continue/merge
// blocks, grounded on naga's emitLoop: push {continueTarget,
// breakTarget} before the body, pop via defer.
func (b *Builder) lowerWhile(st *ast.WhileStmt) {
	b.lowerLoop(st.Cond, nil, st.Body, false)
}

func (b *Builder) lowerDoWhile(st *ast.DoWhileStmt) {
	b.lowerLoop(st.Cond, nil, st.Body, true)
}

func (b *Builder) lowerFor(st *ast.ForStmt) {
	if st.Init != nil {
		b.lowerStmt(st.Init)
	}
	b.lowerLoop(st.Cond, st.Post, st.Body, false)
}

// lowerLoop lowers while/do-while/for to header/body/continue/merge
// blocks, grounded on naga's emitLoop: push {continueTarget,
// breakTarget} before the body, pop after. testFirst (do-while) skips
// the header's upfront condition check and only tests the condition in
// the continue block, before branching back to the header.
func (b *Builder) lowerLoop(cond ast.Expr, post ast.Stmt, body ast.Stmt, testFirst bool) {
	fn := b.currentFunc()
	header := &Inst{Kind: IBlock}
	bodyBlock := &Inst{Kind: IBlock}
	continueBlock := &Inst{Kind: IBlock}
	mergeBlock := &Inst{Kind: IBlock}

	b.mod.emit(&Inst{Kind: IBranch, Target: header})
	fn.Blocks = append(fn.Blocks, header)
	b.mod.SetBlock(header)
	first := bodyBlock
	var condCheck *Inst
	if cond != nil && !testFirst {
		condCheck = &Inst{Kind: IBlock}
		first = condCheck
	}
	b.mod.emit(&Inst{Kind: IBranch, Target: first, Merge: mergeBlock, Continue: continueBlock})

	if condCheck != nil {
		fn.Blocks = append(fn.Blocks, condCheck)
		b.mod.SetBlock(condCheck)
		c := b.lowerExpr(cond)
		b.mod.emit(&Inst{Kind: ICondBranch, Args: []*Inst{c}, TrueTarget: bodyBlock, FalseTarget: mergeBlock})
	}

	b.mod.pushLoop(continueBlock, mergeBlock)
	fn.Blocks = append(fn.Blocks, bodyBlock)
	b.mod.SetBlock(bodyBlock)
	b.lowerStmt(body)
	b.mod.emit(&Inst{Kind: IBranch, Target: continueBlock})
	b.mod.popLoop()

	fn.Blocks = append(fn.Blocks, continueBlock)
	b.mod.SetBlock(continueBlock)
	if post != nil {
		b.lowerStmt(post)
	}
	if cond != nil && testFirst {
		c := b.lowerExpr(cond)
		b.mod.emit(&Inst{Kind: ICondBranch, Args: []*Inst{c}, TrueTarget: header, FalseTarget: mergeBlock})
	} else {
		b.mod.emit(&Inst{Kind: IBranch, Target: header})
	}

	fn.Blocks = append(fn.Blocks, mergeBlock)
	b.mod.SetBlock(mergeBlock)
}

func (b *Builder) currentFunc() *Inst {
	return b.curFunc
}

// ---------------------------------------------------------------------------
// Expressions: lvalues
// ---------------------------------------------------------------------------

// lowerLValue resolves e to the pointer Inst addressing its storage,
// per spec.md §4.6's lvalue rule: "lvalue iff Variable/AccessChain/
// by-ref FuncParam".
func (b *Builder) lowerLValue(e ast.Expr) *Inst {
	switch ex := e.(type) {
	case *ast.IdentExpr:
		if vd, ok := ex.Resolved.(*ast.VarDecl); ok {
			return b.varPointer(vd)
		}
	case *ast.AccessExpr:
		return b.lowerAccessLValue(ex)
	case *ast.SubscriptExpr:
		return b.lowerSubscriptLValue(ex)
	}
	b.diags.Add(e.ExprLoc(), "internal: expression is not an lvalue")
	return nil
}

func (b *Builder) storeLValue(e ast.Expr, ptr *Inst, val *Inst) {
	if ax, ok := e.(*ast.AccessExpr); ok {
		if last := ax.Chain[len(ax.Chain)-1]; last.IsSwizzle && len(last.SwizzleIdx) > 1 {
			b.storeSwizzle(ax, last, val)
			return
		}
	}
	b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{ptr, val}})
}

func (b *Builder) varPointer(vd *ast.VarDecl) *Inst {
	if p, ok := b.localVars[vd]; ok {
		return p
	}
	if g, ok := vd.IRValue.(*Inst); ok {
		return g
	}
	return b.lowerGlobalVar(vd)
}

// lowerAccessLValue lowers a `.field`/`.swizzle` chain addressing an
// lvalue base. A single-component swizzle on an lvalue lowers to
// AccessChain (spec.md §4.6); multi-component swizzle assignment is
// handled separately in storeSwizzle since SPIR-V has no "store
// through a shuffle".
func (b *Builder) lowerAccessLValue(ax *ast.AccessExpr) *Inst {
	base := b.lowerLValue(ax.Base)
	for _, step := range ax.Chain {
		if step.IsSwizzle {
			if len(step.SwizzleIdx) == 1 {
				idx := b.intConst(step.SwizzleIdx[0])
				elemType := elemTypeOf(base.Type.Sub)
				base = b.mod.emit(&Inst{Kind: IAccessChain, Type: b.mod.Types.PointerType(base.Type.Storage, elemType), Base: base, Indices: []*Inst{idx}})
			}
			// multi-component swizzle lvalues are handled by storeSwizzle
			// at the assignment site; leave base as the vector pointer.
			continue
		}
		field := fieldIndex(base.Type.Sub, step.Name)
		idx := b.intConst(field)
		fieldType := base.Type.Sub.Fields[field].Type
		base = b.mod.emit(&Inst{Kind: IAccessChain, Type: b.mod.Types.PointerType(base.Type.Storage, fieldType), Base: base, Indices: []*Inst{idx}})
	}
	return base
}

// storeSwizzle lowers `v.xyz = rhs` as N separate single-component
// AccessChain+Store pairs, since SPIR-V cannot assign through a
// multi-component swizzle directly (spec.md §8 testable property 5).
func (b *Builder) storeSwizzle(ax *ast.AccessExpr, step ast.AccessStep, val *Inst) {
	base := b.lowerLValue(ax.Base)
	elemType := elemTypeOf(base.Type.Sub)
	for i, comp := range step.SwizzleIdx {
		idx := b.intConst(comp)
		ptr := b.mod.emit(&Inst{Kind: IAccessChain, Type: b.mod.Types.PointerType(base.Type.Storage, elemType), Base: base, Indices: []*Inst{idx}})
		part := b.mod.emit(&Inst{Kind: ICompositeExtract, Type: elemType, Args: []*Inst{val}, ShuffleIdx: []int{i}})
		b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{ptr, part}})
	}
}

func (b *Builder) lowerSubscriptLValue(sx *ast.SubscriptExpr) *Inst {
	base := b.lowerLValue(sx.Left)
	idx := b.lowerExpr(sx.Index)
	elemType := elemTypeOf(base.Type.Sub)
	return b.mod.emit(&Inst{Kind: IAccessChain, Type: b.mod.Types.PointerType(base.Type.Storage, elemType), Base: base, Indices: []*Inst{idx}})
}

func elemTypeOf(t *Type) *Type {
	switch t.Kind {
	case Vector:
		return t.Elem
	case Matrix:
		return t.Col
	case RuntimeArray:
		return t.Elem
	default:
		return t
	}
}

func fieldIndex(t *Type, name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return 0
}

func (b *Builder) intConst(v int) *Inst {
	c := &Inst{Kind: IConstant, Type: b.mod.Types.IntType(32, false), Bits: uint32ToBytes(uint32(v))}
	return c
}

func uint32ToBytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// ---------------------------------------------------------------------------
// Expressions: rvalues
// ---------------------------------------------------------------------------

func (b *Builder) lowerExpr(e ast.Expr) *Inst {
	switch ex := e.(type) {
	case *ast.PrimaryExpr:
		return b.lowerPrimary(ex)
	case *ast.IdentExpr:
		return b.lowerIdent(ex)
	case *ast.AccessExpr:
		return b.lowerAccessRValue(ex)
	case *ast.SubscriptExpr:
		ptr := b.lowerSubscriptLValue(ex)
		return b.mod.emit(&Inst{Kind: ILoad, Type: ptr.Type.Sub, Args: []*Inst{ptr}})
	case *ast.UnaryExpr:
		return b.lowerUnary(ex)
	case *ast.BinaryExpr:
		return b.lowerBinary(ex)
	case *ast.FuncCallExpr:
		return b.lowerCall(ex)
	case *ast.BuiltinCallExpr:
		return b.lowerBuiltinCall(ex)
	case *ast.BarrierCallExpr:
		return b.lowerBarrier(ex)
	default:
		panic(fmt.Sprintf("ir: unhandled expr %T", e))
	}
}

func (b *Builder) lowerPrimary(p *ast.PrimaryExpr) *Inst {
	switch p.Kind {
	case ast.PrimBool:
		return &Inst{Kind: IConstantBool, Type: b.mod.Types.BoolType(), BoolVal: p.Bool}
	case ast.PrimInt:
		return &Inst{Kind: IConstant, Type: b.mod.Types.IntType(32, true), Bits: uint32ToBytes(uint32(p.Int))}
	case ast.PrimFloat:
		return &Inst{Kind: IConstant, Type: b.mod.Types.FloatType(32), Bits: float32ToBytes(float32(p.Float))}
	default:
		return &Inst{Kind: IConstant, Type: b.mod.Types.IntType(32, true)}
	}
}

func float32ToBytes(f float32) []byte {
	bits := f32bits(f)
	return uint32ToBytes(bits)
}

func (b *Builder) lowerIdent(id *ast.IdentExpr) *Inst {
	switch d := id.Resolved.(type) {
	case *ast.VarDecl:
		ptr := b.varPointer(d)
		v := b.mod.emit(&Inst{Kind: ILoad, Type: ptr.Type.Sub, Args: []*Inst{ptr}})
		if id.HasSwizzle {
			return b.applySwizzle(v, id.SwizzleIdx)
		}
		return v
	case *ast.ConstDecl:
		return b.constDecls[d]
	}
	b.diags.Add(id.ExprLoc(), "internal: unresolved identifier %q", id.Name)
	return nil
}

func (b *Builder) applySwizzle(v *Inst, idx []int) *Inst {
	elemType := elemTypeOf(v.Type)
	if len(idx) == 1 {
		return b.mod.emit(&Inst{Kind: ICompositeExtract, Type: elemType, Args: []*Inst{v}, ShuffleIdx: idx})
	}
	vt := b.mod.Types.VectorType(elemType, len(idx))
	return b.mod.emit(&Inst{Kind: IVectorShuffle, Type: vt, Args: []*Inst{v}, ShuffleIdx: idx})
}

func (b *Builder) lowerAccessRValue(ax *ast.AccessExpr) *Inst {
	v := b.lowerExpr(ax.Base)
	for _, step := range ax.Chain {
		if step.IsSwizzle {
			v = b.applySwizzle(v, step.SwizzleIdx)
			continue
		}
		idx := fieldIndex(v.Type, step.Name)
		fieldType := v.Type.Fields[idx].Type
		v = b.mod.emit(&Inst{Kind: ICompositeExtract, Type: fieldType, Args: []*Inst{v}, ShuffleIdx: []int{idx}})
	}
	return v
}

func (b *Builder) lowerUnary(ux *ast.UnaryExpr) *Inst {
	x := b.lowerExpr(ux.X)
	switch ux.Op {
	case ast.UnaryNeg:
		return b.mod.emit(&Inst{Kind: IUnary, Type: x.Type, Op: OpNeg, Args: []*Inst{x}})
	case ast.UnaryNot:
		return b.mod.emit(&Inst{Kind: IUnary, Type: x.Type, Op: OpNot, Args: []*Inst{x}})
	case ast.UnaryBitNot:
		return b.mod.emit(&Inst{Kind: IUnary, Type: x.Type, Op: OpBitNot, Args: []*Inst{x}})
	default:
		ptr := b.lowerLValue(ux.X)
		one := &Inst{Kind: IConstant, Type: x.Type, Bits: uint32ToBytes(1)}
		op := OpAdd
		if ux.Op == ast.UnaryPreDec {
			op = OpSub
		}
		nv := b.mod.emit(&Inst{Kind: IBinary, Type: x.Type, Op: op, Args: []*Inst{x, one}})
		b.mod.emit(&Inst{Kind: IStore, Args: []*Inst{ptr, nv}})
		return nv
	}
}

func (b *Builder) lowerBinary(bx *ast.BinaryExpr) *Inst {
	l := b.lowerExpr(bx.L)
	r := b.lowerExpr(bx.R)
	return b.emitBinaryOp(bx.Op, l, r, resolvedTypeOf(bx))
}

// resolvedTypeOf mirrors analyzer.Analyzer's own exprType dispatch:
// every expression node carries its resolved type as an exported field
// promoted from exprBase, reached here by a type switch since Expr
// exposes no such accessor itself.
func resolvedTypeOf(e ast.Expr) *types.AstType {
	switch v := e.(type) {
	case *ast.PrimaryExpr:
		return v.ResolvedType
	case *ast.IdentExpr:
		return v.ResolvedType
	case *ast.AccessExpr:
		return v.ResolvedType
	case *ast.SubscriptExpr:
		return v.ResolvedType
	case *ast.BinaryExpr:
		return v.ResolvedType
	case *ast.UnaryExpr:
		return v.ResolvedType
	case *ast.FuncCallExpr:
		return v.ResolvedType
	case *ast.BuiltinCallExpr:
		return v.ResolvedType
	default:
		return nil
	}
}

func (b *Builder) emitBinaryOp(op ast.BinaryOp, l, r *Inst, resultType *types.AstType) *Inst {
	var t *Type
	if resultType != nil {
		t = FromAstType(b.mod.Types, resultType)
	} else {
		t = l.Type
	}
	irOp := binaryOpToIR(op)
	l, r = broadcastPair(b, l, r)
	return b.mod.emit(&Inst{Kind: IBinary, Type: t, Op: irOp, Args: []*Inst{l, r}})
}

// broadcastPair lowers scalar-vector arithmetic by splatting the
// scalar operand into a CompositeConstruct of matching arity, per
// spec.md §4.6's "Arithmetic broadcast via CompositeConstruct" rule.
func broadcastPair(b *Builder, l, r *Inst) (*Inst, *Inst) {
	if l.Type.Kind == Vector && r.Type.Kind != Vector {
		r = b.splat(r, l.Type)
	} else if r.Type.Kind == Vector && l.Type.Kind != Vector {
		l = b.splat(l, r.Type)
	}
	return l, r
}

func (b *Builder) splat(v *Inst, vecType *Type) *Inst {
	parts := make([]*Inst, vecType.Size)
	for i := range parts {
		parts[i] = v
	}
	return b.mod.emit(&Inst{Kind: ICompositeConstruct, Type: vecType, Args: parts})
}

func binaryOpToIR(op ast.BinaryOp) Op {
	switch op {
	case ast.BinAdd:
		return OpAdd
	case ast.BinSub:
		return OpSub
	case ast.BinMul:
		return OpMul
	case ast.BinDiv:
		return OpDiv
	case ast.BinMod:
		return OpMod
	case ast.BinAnd:
		return OpAnd
	case ast.BinOr:
		return OpOr
	case ast.BinXor:
		return OpXor
	case ast.BinShl:
		return OpShl
	case ast.BinShr:
		return OpShr
	case ast.BinLogicalAnd:
		return OpLogicalAnd
	case ast.BinLogicalOr:
		return OpLogicalOr
	case ast.BinEq:
		return OpEq
	case ast.BinNe:
		return OpNe
	case ast.BinLt:
		return OpLt
	case ast.BinLe:
		return OpLe
	case ast.BinGt:
		return OpGt
	case ast.BinGe:
		return OpGe
	default:
		return OpAdd
	}
}

// lowerCall lowers a user-function call or a type-constructor call
// (spec.md §4.6 "Type-constructor lowering" -> CompositeConstruct).
func (b *Builder) lowerCall(cx *ast.FuncCallExpr) *Inst {
	if id, ok := cx.Callee.(*ast.IdentExpr); ok {
		if fn, ok := id.Resolved.(*ast.FuncDecl); ok {
			callee := b.funcInst(fn)
			args := make([]*Inst, 0, len(cx.Args)+1)
			args = append(args, callee)
			for _, a := range cx.Args {
				args = append(args, b.lowerExpr(a))
			}
			return b.mod.emit(&Inst{Kind: IFuncCall, Type: callee.Return.Type, Args: args})
		}
	}
	// type constructor (float4(...), float3x3(...), struct ctor)
	args := make([]*Inst, len(cx.Args))
	for i, a := range cx.Args {
		args[i] = b.lowerExpr(a)
	}
	resultType := FromAstType(b.mod.Types, resolvedTypeOf(cx))
	return b.mod.emit(&Inst{Kind: ICompositeConstruct, Type: resultType, Args: args})
}

func (b *Builder) funcInst(fn *ast.FuncDecl) *Inst {
	if existing, ok := b.funcByDecl[fn]; ok {
		return existing
	}
	inst := b.lowerFunction(fn, false)
	b.funcByDecl[fn] = inst
	b.mod.Functions = append(b.mod.Functions, inst)
	return inst
}

// lowerBuiltinCall lowers a recognized HLSL intrinsic. mul()'s
// HLSL->SPIR-V operand order swap (HLSL is row-vector/row-major;
// SPIR-V composites assume column-vector convention) is applied here
// (spec.md §4.6).
func (b *Builder) lowerBuiltinCall(cx *ast.BuiltinCallExpr) *Inst {
	args := make([]*Inst, len(cx.Args))
	for i, a := range cx.Args {
		args[i] = b.lowerExpr(a)
	}
	resultType := FromAstType(b.mod.Types, resolvedTypeOf(cx))

	if isAtomicBuiltin(cx.Kind) {
		return b.lowerAtomic(cx, args, resultType)
	}

	switch cx.Kind {
	case ast.BuiltinAsint, ast.BuiltinAsuint, ast.BuiltinAsfloat:
		return b.mod.emit(&Inst{Kind: ICast, Type: resultType, Cast: CastBitcast, Args: args[:1]})
	}

	if cx.Kind == ast.BuiltinMul {
		args[0], args[1] = args[1], args[0]
	}

	op, ok := builtinOpFor(cx.Kind)
	if !ok {
		b.diags.Add(cx.ExprLoc(), "internal: unhandled builtin")
		return nil
	}
	return b.mod.emit(&Inst{Kind: IBuiltinCall, Type: resultType, Builtin: op, Args: args})
}

func isAtomicBuiltin(k ast.BuiltinKind) bool {
	switch k {
	case ast.BuiltinInterlockedAdd, ast.BuiltinInterlockedAnd, ast.BuiltinInterlockedOr,
		ast.BuiltinInterlockedXor, ast.BuiltinInterlockedMin, ast.BuiltinInterlockedMax,
		ast.BuiltinInterlockedExchange, ast.BuiltinInterlockedCompareExchange, ast.BuiltinInterlockedCompareStore:
		return true
	default:
		return false
	}
}

// lowerAtomic lowers InterlockedX calls with Device scope and Relaxed
// semantics; Exchange/CompareExchange store the original value into
// the caller-provided out-lvalue (spec.md §4.6 atomic lowering).
func (b *Builder) lowerAtomic(cx *ast.BuiltinCallExpr, args []*Inst, resultType *Type) *Inst {
	ptr := b.lowerLValue(cx.Args[0])
	op := atomicOpFor(cx.Kind)
	inst := &Inst{Kind: IAtomic, Type: resultType, Atomic: op, Args: append([]*Inst{ptr}, args[1:]...)}
	if cx.OutArg != nil {
		inst.OutArg = b.lowerLValue(cx.OutArg)
	}
	return b.mod.emit(inst)
}

func atomicOpFor(k ast.BuiltinKind) AtomicOp {
	switch k {
	case ast.BuiltinInterlockedAdd:
		return AtomicAdd
	case ast.BuiltinInterlockedAnd:
		return AtomicAnd
	case ast.BuiltinInterlockedOr:
		return AtomicOr
	case ast.BuiltinInterlockedXor:
		return AtomicXor
	case ast.BuiltinInterlockedMin:
		return AtomicMin
	case ast.BuiltinInterlockedMax:
		return AtomicMax
	case ast.BuiltinInterlockedExchange, ast.BuiltinInterlockedCompareStore:
		return AtomicExchange
	case ast.BuiltinInterlockedCompareExchange:
		return AtomicCompareExchange
	default:
		return AtomicAdd
	}
}

func builtinOpFor(k ast.BuiltinKind) (BuiltinOp, bool) {
	m := map[ast.BuiltinKind]BuiltinOp{
		ast.BuiltinSin: BSin, ast.BuiltinCos: BCos, ast.BuiltinTan: BTan,
		ast.BuiltinAsin: BAsin, ast.BuiltinAcos: BAcos, ast.BuiltinAtan: BAtan, ast.BuiltinAtan2: BAtan2,
		ast.BuiltinSinh: BSinh, ast.BuiltinCosh: BCosh, ast.BuiltinTanh: BTanh,
		ast.BuiltinSqrt: BSqrt, ast.BuiltinRsqrt: BRsqrt, ast.BuiltinExp: BExp, ast.BuiltinExp2: BExp2,
		ast.BuiltinLog: BLog, ast.BuiltinLog2: BLog2, ast.BuiltinAbs: BAbs,
		ast.BuiltinFloor: BFloor, ast.BuiltinCeil: BCeil, ast.BuiltinTrunc: BTrunc, ast.BuiltinFrac: BFrac,
		ast.BuiltinDegrees: BDegrees, ast.BuiltinRadians: BRadians,
		ast.BuiltinPow: BPow, ast.BuiltinStep: BStep, ast.BuiltinMin: BMin, ast.BuiltinMax: BMax,
		ast.BuiltinReflect: BReflect, ast.BuiltinRefract: BRefract,
		ast.BuiltinLerp: BLerp, ast.BuiltinClamp: BClamp, ast.BuiltinSmoothstep: BSmoothstep,
		ast.BuiltinDot: BDot, ast.BuiltinCross: BCross, ast.BuiltinLength: BLength,
		ast.BuiltinNormalize: BNormalize, ast.BuiltinDistance: BDistance,
		ast.BuiltinMul: BMul, ast.BuiltinTranspose: BTranspose, ast.BuiltinDeterminant: BDeterminant,
		ast.BuiltinDdx: BDdx, ast.BuiltinDdy: BDdy,
	}
	op, ok := m[k]
	return op, ok
}

func (b *Builder) lowerBarrier(bx *ast.BarrierCallExpr) *Inst {
	return b.mod.emit(&Inst{Kind: IBarrier})
}

// lowerConstExpr evaluates a `static const` initializer. Only literal
// and literal-composite initializers are supported, matching what the
// analyzer accepts for ConstDecl (spec.md §4.3).
func (b *Builder) lowerConstExpr(e ast.Expr, t *types.AstType) *Inst {
	return b.lowerExpr(e)
}

func f32bits(f float32) uint32 {
	return math.Float32bits(f)
}
