// Package analyzer implements the two-pass semantic analysis of
// spec.md §4.5: a global-collection pass followed by a per-function
// walk that resolves identifiers, infers types, lowers stage I/O, and
// validates the program.
//
// It is grounded on naga's wgsl/lower.go, which performs the
// structurally identical job (walk a parsed AST, resolve against
// nested scopes, infer/attach types, validate) for WGSL; the
// resolution targets and stage-I/O synthesis are rewritten for HLSL
// semantics (SV_Position, SV_Target[n], register bindings) per §4.5
// step 2.
package analyzer

import (
	"github.com/tinyshader/hlslc/ast"
	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/types"
)

// StageIOVar is a synthesized Input/Output interface variable created
// while lowering an entry point's parameters/return value (spec.md
// §4.5 step 2).
type StageIOVar struct {
	Name      string
	Type      *types.AstType
	IsOutput  bool
	Semantic  string // the raw HLSL semantic, e.g. "SV_Position" or "TEXCOORD0"
	BuiltIn   int    // builtInKind ordinal, not a SPIR-V enumerant; package ir maps Semantic itself via ir.SemanticBuiltIn
	HasBuiltIn bool
	Location  uint32
	HasLocation bool
}

// Analyzer runs the two-pass analysis over a parsed ast.Unit.
type Analyzer struct {
	unit     *ast.Unit
	diags    *diag.List
	cache    *types.Cache
	stage    Stage
	entry    string

	globalScope *Scope
	structs     map[string]*ast.StructDecl
	funcs       map[string]*ast.FuncDecl
	nextBinding map[uint32]uint32 // per descriptor set auto-increment cursor

	// StageIO is populated for the requested entry point only.
	StageIO []StageIOVar
	EntryFunc *ast.FuncDecl

	loopDepth int
}

// Stage identifies the shader stage being analyzed/compiled
// (spec.md §6.1).
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

// New creates an Analyzer for unit, targeting entryPoint at stage,
// reporting diagnostics to diags and interning types through cache.
func New(unit *ast.Unit, cache *types.Cache, diags *diag.List, entryPoint string, stage Stage) *Analyzer {
	return &Analyzer{
		unit:        unit,
		diags:       diags,
		cache:       cache,
		stage:       stage,
		entry:       entryPoint,
		structs:     make(map[string]*ast.StructDecl, 8),
		funcs:       make(map[string]*ast.FuncDecl, 8),
		nextBinding: make(map[uint32]uint32, 4),
	}
}

// Stage reports the shader stage this analyzer was constructed for.
func (a *Analyzer) Stage() Stage { return a.stage }

// Run performs both analysis passes.
func (a *Analyzer) Run() {
	a.globalScope = newScope(nil)
	a.collectGlobals()
	for _, d := range a.unit.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			a.analyzeFunction(fn)
		}
	}
}

// ---------------------------------------------------------------------------
// Pass 1 — collect globals (spec.md §4.5 "Pass 1")
// ---------------------------------------------------------------------------

func (a *Analyzer) collectGlobals() {
	for _, d := range a.unit.Decls {
		switch v := d.(type) {
		case *ast.StructDecl:
			a.resolveStructDecl(v)
			a.structs[v.Name] = v
			a.globalScope.Declare(v.Name, v)
		}
	}
	for _, d := range a.unit.Decls {
		switch v := d.(type) {
		case *ast.CBufferDecl:
			a.desugarCBuffer(v)
			a.globalScope.Declare(v.Name, v)
		case *ast.VarDecl:
			a.resolveGlobalVar(v)
			a.globalScope.Declare(v.Name, v)
		case *ast.ConstDecl:
			a.resolveConstDecl(v)
			a.globalScope.Declare(v.Name, v)
		case *ast.FuncDecl:
			a.funcs[v.Name] = v
			a.globalScope.Declare(v.Name, v)
		}
	}
}

func (a *Analyzer) resolveStructDecl(sd *ast.StructDecl) {
	fields := make([]types.Field, 0, len(sd.Fields))
	for _, f := range sd.Fields {
		t := a.resolveTypeExpr(f.TypeExpr)
		f.ResolvedType = t
		fields = append(fields, types.Field{Name: f.Name, Type: t, Semantic: f.Semantic})
	}
	st := a.cache.StructType(sd.Name, fields)
	sd.ResolvedType = st
	for i, f := range sd.Fields {
		f.Offset = st.Fields[i].Offset
	}
}

// desugarCBuffer types a `cbuffer Name { ... };` block as a
// ConstantBuffer over a struct of its fields and assigns its binding;
// package ir adds the Block decoration and the Uniform variable
// (spec.md §4.4).
func (a *Analyzer) desugarCBuffer(cb *ast.CBufferDecl) {
	fields := make([]types.Field, 0, len(cb.Fields))
	for _, f := range cb.Fields {
		t := a.resolveTypeExpr(f.TypeExpr)
		f.ResolvedType = t
		fields = append(fields, types.Field{Name: f.Name, Type: t})
	}
	st := a.cache.StructType(cb.Name, fields)
	for i, f := range cb.Fields {
		f.Offset = st.Fields[i].Offset
	}
	cb.ResolvedType = a.cache.ConstantBufferType(st)
	cb.DescSet, cb.Binding = a.assignBinding(cb.Register)
	cb.HasBinding = true
}

func (a *Analyzer) resolveGlobalVar(v *ast.VarDecl) {
	v.ResolvedType = a.resolveTypeExpr(v.TypeExpr)
	if v.TypeExpr.IsResource {
		set, binding := a.assignBinding(v.Register)
		v.DescSet, v.Binding, v.HasBinding = set, binding, true
	}
}

func (a *Analyzer) assignBinding(reg ast.Register) (set, binding uint32) {
	if reg.Present {
		return uint32(reg.Space), uint32(reg.Slot)
	}
	set = 0
	binding = a.nextBinding[set]
	a.nextBinding[set]++
	return set, binding
}

func (a *Analyzer) resolveConstDecl(c *ast.ConstDecl) {
	c.ResolvedType = a.resolveTypeExpr(c.TypeExpr)
	if c.Init != nil {
		a.inferExpr(c.Init, a.globalScope)
	}
}

// ---------------------------------------------------------------------------
// Type-expr resolution (spec.md §4.4)
// ---------------------------------------------------------------------------

func (a *Analyzer) resolveTypeExpr(te ast.TypeExpr) *types.AstType {
	switch {
	case te.IsScalar:
		return a.scalarType(te.Scalar)
	case te.IsVec:
		return a.cache.VectorType(a.scalarType(te.Vector.Scalar), te.Vector.Size)
	case te.IsMat:
		col := a.cache.VectorType(a.scalarType(te.Matrix.Scalar), te.Matrix.Rows)
		return a.cache.MatrixType(col, te.Matrix.Cols)
	case te.IsResource:
		return a.resolveResourceType(te)
	case te.IsNamed:
		if sd, ok := a.structs[te.Named]; ok {
			return sd.ResolvedType
		}
		a.diags.Add(te.Loc, "undeclared type %q", te.Named)
		return a.cache.Void()
	default:
		return a.cache.Void()
	}
}

func (a *Analyzer) resolveResourceType(te ast.TypeExpr) *types.AstType {
	switch te.ResourceKind {
	case ast.ResourceSampler:
		return a.cache.SamplerType()
	case ast.ResourceTexture:
		sampled := a.cache.FloatType(32)
		if te.Sub != nil && te.Sub.IsScalar {
			sampled = a.scalarType(te.Sub.Scalar)
		}
		dim := textureDim(te.TextureDim)
		img := a.cache.ImageType(sampled, dim)
		return a.cache.SampledImageType(img)
	case ast.ResourceConstantBuffer:
		sub := a.resolveTypeExpr(*te.Sub)
		return a.cache.ConstantBufferType(sub)
	case ast.ResourceStructuredBuffer:
		sub := a.resolveTypeExpr(*te.Sub)
		return a.cache.StructuredBufferType(sub)
	case ast.ResourceRWStructuredBuffer:
		sub := a.resolveTypeExpr(*te.Sub)
		return a.cache.RWStructuredBufferType(sub)
	default:
		return a.cache.Void()
	}
}

func textureDim(d ast.TextureDim) types.ImageDim {
	switch d {
	case ast.Tex1D:
		return types.Dim1D
	case ast.Tex3D:
		return types.Dim3D
	case ast.TexCube:
		return types.DimCube
	default:
		return types.Dim2D
	}
}

func (a *Analyzer) scalarType(s ast.ScalarSpelling) *types.AstType {
	switch s {
	case ast.SpellVoid:
		return a.cache.Void()
	case ast.SpellBool:
		return a.cache.Bool()
	case ast.SpellInt:
		return a.cache.IntType(32, true)
	case ast.SpellUint:
		return a.cache.IntType(32, false)
	case ast.SpellFloat:
		return a.cache.FloatType(32)
	case ast.SpellHalf:
		return a.cache.FloatType(16)
	case ast.SpellDouble:
		return a.cache.FloatType(64)
	default:
		return a.cache.Void()
	}
}

// ---------------------------------------------------------------------------
// Pass 2 — per-function analysis (spec.md §4.5 "Pass 2")
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeFunction(fn *ast.FuncDecl) {
	scope := newScope(a.globalScope)

	paramTypes := make([]*types.AstType, 0, len(fn.Params))
	for _, p := range fn.Params {
		p.ResolvedType = a.resolveTypeExpr(p.TypeExpr)
		paramTypes = append(paramTypes, p.ResolvedType)
		scope.Declare(p.Name, p)
	}
	retType := a.resolveTypeExpr(fn.ReturnType)
	fn.ResolvedType = &ast.FuncTypeInfo{Return: retType, ParamTypes: paramTypes}

	isRequestedEntry := fn.Name == a.entry
	if isRequestedEntry {
		fn.IsEntryPoint = true
		a.lowerEntryPointAttrs(fn)
		a.lowerStageIO(fn)
		a.EntryFunc = fn
	}

	if fn.Body != nil {
		fn.Body.Scope = scope
		a.analyzeBlock(fn.Body, scope, fn)
	}
}

func (a *Analyzer) lowerEntryPointAttrs(fn *ast.FuncDecl) {
	for _, attr := range fn.Attrs {
		if attr.Name != "numthreads" || len(attr.Args) != 3 {
			continue
		}
		for i := 0; i < 3; i++ {
			if n := constIntOf(attr.Args[i]); n != nil {
				fn.NumThreads[i] = int(*n)
			}
		}
	}
}

func constIntOf(e ast.Expr) *int64 {
	if p, ok := e.(*ast.PrimaryExpr); ok && p.Kind == ast.PrimInt {
		v := p.Int
		return &v
	}
	return nil
}

// lowerStageIO splits the entry point's parameters and return value
// into synthesized Input/Output interface variables (spec.md §4.5
// step 2).
func (a *Analyzer) lowerStageIO(fn *ast.FuncDecl) {
	loc := uint32(0)
	for _, p := range fn.Params {
		a.lowerStageIOField(p.Name, p.TypeExpr, p.Semantic, p.ResolvedType, false, &loc)
	}
	if fn.ReturnType.IsNamed {
		if sd, ok := a.structs[fn.ReturnType.Named]; ok {
			for _, f := range sd.Fields {
				a.lowerStageIOField(f.Name, f.TypeExpr, f.Semantic, f.ResolvedType, true, &loc)
			}
			return
		}
	}
	if !(fn.ReturnType.IsScalar && fn.ReturnType.Scalar == ast.SpellVoid) {
		retType := a.resolveTypeExpr(fn.ReturnType)
		a.lowerStageIOField("return", fn.ReturnType, fn.ReturnSemantic, retType, true, &loc)
	}
}

func (a *Analyzer) lowerStageIOField(name string, te ast.TypeExpr, semantic string, t *types.AstType, isOutput bool, loc *uint32) {
	v := StageIOVar{Name: name, Type: t, IsOutput: isOutput, Semantic: semantic}
	if semantic == "" {
		a.diags.Add(te.Loc, "stage I/O member %q is missing a semantic", name)
		return
	}
	if n, ok := isTargetSemantic(semantic); ok && isOutput {
		v.Location = uint32(n)
		v.HasLocation = true
	} else if bk, ok := semanticToBuiltIn(semantic); ok {
		v.BuiltIn = int(bk)
		v.HasBuiltIn = true
	} else {
		v.Location = *loc
		v.HasLocation = true
		*loc++
	}
	a.StageIO = append(a.StageIO, v)
}

// ---------------------------------------------------------------------------
// Statement walk
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeBlock(b *ast.BlockStmt, parent *Scope, fn *ast.FuncDecl) {
	scope, ok := b.Scope.(*Scope)
	if !ok {
		scope = newScope(parent)
		b.Scope = scope
	}
	for _, s := range b.Stmts {
		a.analyzeStmt(s, scope, fn)
	}
}

//nolint:gocyclo,cyclop // one branch per statement kind, mirrors the AST union
func (a *Analyzer) analyzeStmt(s ast.Stmt, scope *Scope, fn *ast.FuncDecl) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		a.analyzeLocalDecl(st.Decl, scope)
	case *ast.ExprStmt:
		a.inferExpr(st.X, scope)
	case *ast.VarAssignStmt:
		a.inferExpr(st.LHS, scope)
		a.inferExpr(st.Value, scope)
		if !isAssignable(st.LHS) {
			a.diags.Add(st.Loc, "left-hand side of assignment is not assignable")
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			a.inferExpr(st.Value, scope)
		}
	case *ast.DiscardStmt:
		if a.stage != StageFragment {
			a.diags.Add(st.Loc, "discard is only valid in a fragment shader")
		}
	case *ast.BreakStmt:
		if a.loopDepth == 0 {
			a.diags.Add(st.Loc, "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.diags.Add(st.Loc, "continue outside of a loop")
		}
	case *ast.BlockStmt:
		a.analyzeBlock(st, scope, fn)
	case *ast.IfStmt:
		a.inferExpr(st.Cond, scope)
		a.analyzeStmt(st.Then, scope, fn)
		if st.Else != nil {
			a.analyzeStmt(st.Else, scope, fn)
		}
	case *ast.WhileStmt:
		a.inferExpr(st.Cond, scope)
		a.loopDepth++
		a.analyzeStmt(st.Body, scope, fn)
		a.loopDepth--
	case *ast.DoWhileStmt:
		a.loopDepth++
		a.analyzeStmt(st.Body, scope, fn)
		a.loopDepth--
		a.inferExpr(st.Cond, scope)
	case *ast.ForStmt:
		inner := newScope(scope)
		if st.Init != nil {
			a.analyzeStmt(st.Init, inner, fn)
		}
		if st.Cond != nil {
			a.inferExpr(st.Cond, inner)
		}
		a.loopDepth++
		a.analyzeStmt(st.Body, inner, fn)
		if st.Post != nil {
			a.analyzeStmt(st.Post, inner, fn)
		}
		a.loopDepth--
	}
}

func (a *Analyzer) analyzeLocalDecl(d ast.Decl, scope *Scope) {
	switch v := d.(type) {
	case *ast.VarDecl:
		v.ResolvedType = a.resolveTypeExpr(v.TypeExpr)
		if v.Init != nil {
			a.inferExpr(v.Init, scope)
		}
		scope.Declare(v.Name, v)
	case *ast.ConstDecl:
		a.resolveConstDecl(v)
		scope.Declare(v.Name, v)
	}
}

func isAssignable(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.IdentExpr:
		if v.HasSwizzle {
			return distinctComponents(v.SwizzleIdx)
		}
		return true
	case *ast.AccessExpr:
		for _, step := range v.Chain {
			if step.IsSwizzle && !distinctComponents(step.SwizzleIdx) {
				return false
			}
		}
		return true
	case *ast.SubscriptExpr:
		return true
	default:
		return false
	}
}

func distinctComponents(idx []int) bool {
	seen := map[int]bool{}
	for _, i := range idx {
		if seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// ---------------------------------------------------------------------------
// Expression type inference (spec.md §4.5 step 3)
// ---------------------------------------------------------------------------

var swizzleIndex = map[byte]int{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

func parseSwizzle(s string) ([]int, bool) {
	idx := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		v, ok := swizzleIndex[s[i]]
		if !ok {
			return nil, false
		}
		idx = append(idx, v)
	}
	return idx, len(idx) > 0
}

//nolint:gocyclo,cyclop // one branch per expression kind, mirrors the AST union
func (a *Analyzer) inferExpr(e ast.Expr, scope *Scope) *types.AstType {
	switch v := e.(type) {
	case *ast.PrimaryExpr:
		return a.inferPrimary(v)
	case *ast.IdentExpr:
		return a.inferIdent(v, scope)
	case *ast.AccessExpr:
		return a.inferAccess(v, scope)
	case *ast.SubscriptExpr:
		return a.inferSubscript(v, scope)
	case *ast.UnaryExpr:
		t := a.inferExpr(v.X, scope)
		v.ResolvedType = t
		return t
	case *ast.BinaryExpr:
		return a.inferBinary(v, scope)
	case *ast.FuncCallExpr:
		return a.inferCall(v, scope)
	case *ast.BuiltinCallExpr:
		return a.inferBuiltinCall(v, scope)
	case *ast.BarrierCallExpr:
		return nil
	default:
		return nil
	}
}

func (a *Analyzer) inferPrimary(p *ast.PrimaryExpr) *types.AstType {
	switch p.Kind {
	case ast.PrimInt:
		p.ResolvedType = a.cache.IntType(32, true)
	case ast.PrimFloat:
		p.ResolvedType = a.cache.FloatType(32)
	case ast.PrimBool:
		p.ResolvedType = a.cache.Bool()
	}
	return p.ResolvedType
}

func (a *Analyzer) inferIdent(id *ast.IdentExpr, scope *Scope) *types.AstType {
	d, ok := scope.Lookup(id.Name)
	if !ok {
		a.diags.Add(id.Loc, "undeclared identifier %q", id.Name)
		return nil
	}
	id.Resolved = d
	var base *types.AstType
	switch dv := d.(type) {
	case *ast.VarDecl:
		base = dv.ResolvedType
		id.Assignable = true
	case *ast.ConstDecl:
		base = dv.ResolvedType
		id.Assignable = false
	case *ast.FuncDecl:
		base = nil
		id.Assignable = false
	}
	if id.HasSwizzle {
		id.Assignable = id.Assignable && distinctComponents(id.SwizzleIdx)
	}
	id.ResolvedType = base
	return base
}

func (a *Analyzer) inferAccess(ax *ast.AccessExpr, scope *Scope) *types.AstType {
	baseT := a.inferExpr(ax.Base, scope)
	cur := baseT
	for i := range ax.Chain {
		step := &ax.Chain[i]
		if cur == nil {
			continue
		}
		if cur.Kind == types.Vector {
			if idx, ok := parseSwizzle(step.Name); ok {
				step.IsSwizzle = true
				step.SwizzleIdx = idx
				if len(idx) == 1 {
					cur = cur.Elem
				} else {
					cur = a.cache.VectorType(cur.Elem, len(idx))
				}
				continue
			}
		}
		if cur.Kind == types.Struct {
			found := false
			for _, f := range cur.Fields {
				if f.Name == step.Name {
					cur = f.Type
					found = true
					break
				}
			}
			if !found {
				a.diags.Add(step.Loc, "type %s has no field %q", cur, step.Name)
				cur = nil
			}
			continue
		}
		a.diags.Add(step.Loc, "cannot access field %q of type %s", step.Name, cur)
		cur = nil
	}
	ax.ResolvedType = cur
	ax.Assignable = true
	return cur
}

func (a *Analyzer) inferSubscript(sx *ast.SubscriptExpr, scope *Scope) *types.AstType {
	leftT := a.inferExpr(sx.Left, scope)
	a.inferExpr(sx.Index, scope)
	var result *types.AstType
	if leftT != nil {
		switch leftT.Kind {
		case types.Vector:
			result = leftT.Elem
		case types.Matrix:
			result = leftT.Col
		case types.StructuredBuffer, types.RWStructuredBuffer:
			result = leftT.BufferElem
		}
	}
	sx.ResolvedType = result
	sx.Assignable = true
	return result
}

func (a *Analyzer) inferBinary(b *ast.BinaryExpr, scope *Scope) *types.AstType {
	lt := a.inferExpr(b.L, scope)
	rt := a.inferExpr(b.R, scope)
	switch b.Op {
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe,
		ast.BinLogicalAnd, ast.BinLogicalOr:
		b.ResolvedType = a.cache.Bool()
		return b.ResolvedType
	}
	b.ResolvedType = joinArithmetic(lt, rt)
	return b.ResolvedType
}

// joinArithmetic picks the common type of a binary arithmetic
// expression: vector wins over scalar (broadcast), float wins over
// int (spec.md §4.5 step 3's implicit-conversion rule).
func joinArithmetic(l, r *types.AstType) *types.AstType {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.Kind == types.Vector && r.Kind != types.Vector {
		return l
	}
	if r.Kind == types.Vector && l.Kind != types.Vector {
		return r
	}
	if l.Kind == types.Float {
		return l
	}
	if r.Kind == types.Float {
		return r
	}
	return l
}

func (a *Analyzer) inferCall(fc *ast.FuncCallExpr, scope *Scope) *types.AstType {
	for _, arg := range fc.Args {
		a.inferExpr(arg, scope)
	}
	if fc.Self != nil {
		a.inferExpr(fc.Self, scope)
		if fc.Method == "Sample" {
			fc.ResolvedType = a.cache.VectorType(a.cache.FloatType(32), 4)
			return fc.ResolvedType
		}
		return nil
	}
	if id, ok := fc.Callee.(*ast.IdentExpr); ok {
		if id.AsType != nil {
			fc.ResolvedType = a.resolveTypeExpr(*id.AsType)
			return fc.ResolvedType
		}
		if fn, ok := a.funcs[id.Name]; ok {
			id.Resolved = fn
			if fn.ResolvedType != nil {
				fc.ResolvedType = fn.ResolvedType.Return
			}
			return fc.ResolvedType
		}
		if b, ok := lookupBuiltin(id.Name); ok {
			if !checkArity(b, len(fc.Args)) {
				a.diags.Add(fc.Loc, "wrong number of arguments to %q", id.Name)
			}
			fc.ResolvedType = a.builtinResultType(b.kind, fc.Args)
			return fc.ResolvedType
		}
	}
	return nil
}

func (a *Analyzer) inferBuiltinCall(bc *ast.BuiltinCallExpr, scope *Scope) *types.AstType {
	for _, arg := range bc.Args {
		a.inferExpr(arg, scope)
	}
	bc.ResolvedType = a.builtinResultType(bc.Kind, bc.Args)
	return bc.ResolvedType
}

// builtinResultType derives a builtin call's result type from its
// argument types (spec.md §6.3): most intrinsics return the type of
// their first argument; a handful have fixed or special shapes.
func (a *Analyzer) builtinResultType(k ast.BuiltinKind, args []ast.Expr) *types.AstType {
	argT := func(i int) *types.AstType {
		if i >= len(args) {
			return nil
		}
		return a.exprType(args[i])
	}
	switch k {
	case ast.BuiltinDot, ast.BuiltinLength, ast.BuiltinDistance, ast.BuiltinDeterminant:
		return a.cache.FloatType(32)
	case ast.BuiltinMul:
		return mulResultType(argT(0), argT(1))
	case ast.BuiltinTranspose:
		return argT(0)
	case ast.BuiltinAsint:
		return a.retagScalar(argT(0), a.cache.IntType(32, true))
	case ast.BuiltinAsuint:
		return a.retagScalar(argT(0), a.cache.IntType(32, false))
	case ast.BuiltinAsfloat:
		return a.retagScalar(argT(0), a.cache.FloatType(32))
	default:
		return argT(0)
	}
}

func (a *Analyzer) exprType(e ast.Expr) *types.AstType {
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

// mulResultType dispatches HLSL's overloaded mul() by operand shape
// (spec.md §4.6 "Builtin intrinsics").
func mulResultType(x, y *types.AstType) *types.AstType {
	switch {
	case x == nil || y == nil:
		return x
	case x.Kind == types.Matrix && y.Kind == types.Vector:
		return y
	default:
		return x
	}
}

func (a *Analyzer) retagScalar(t *types.AstType, scalar *types.AstType) *types.AstType {
	if t == nil {
		return scalar
	}
	if t.Kind == types.Vector {
		return a.cache.VectorType(scalar, t.Size)
	}
	return scalar
}
