// Package ast defines the untyped abstract syntax tree produced by the
// parser (spec.md §3, §4.3) and the recursive-descent parser that
// builds it.
//
// Decl, Stmt, and Expr are the three tagged unions spec.md §3
// describes. Each concrete node additionally carries, as exported
// fields filled in by later phases rather than the parser: a resolved
// *types.AstType (nil until the analyzer runs), analyzer-derived
// decorations, and — after IR lowering — an IR value handle (kept as
// an `any` here to avoid an import cycle with package ir; the ir
// package asserts it back to *ir.Inst). Keeping those fields on the
// same struct rather than a side table mirrors how naga's
// wgsl/ast.go nodes are walked and annotated in place by
// wgsl/lower.go.
package ast

import (
	"github.com/tinyshader/hlslc/token"
	"github.com/tinyshader/hlslc/types"
)

// ---------------------------------------------------------------------------
// Shared annotation types
// ---------------------------------------------------------------------------

// Attribute is a parsed `[name(args...)]` annotation attached to the
// following declaration (spec.md §4.3).
type Attribute struct {
	Name string
	Args []Expr
	Loc  token.Location
}

// DecorationKind names the SPIR-V decorations a decl/field can carry,
// collected from attributes and HLSL semantics (spec.md §3).
type DecorationKind uint8

const (
	DecorLocation DecorationKind = iota
	DecorBuiltIn
	DecorDescriptorSet
	DecorBinding
	DecorOffset
	DecorArrayStride
	DecorBlock
	DecorBufferBlock
	DecorNonWritable
	DecorColMajor
	DecorRowMajor
	DecorMatrixStride
)

// Decoration is one SPIR-V decoration with up to one numeric
// parameter (spec.md §4.7's per-decoration parameter-count rule).
type Decoration struct {
	Kind     DecorationKind
	Value    uint32
	HasValue bool
}

// TypeExpr is the pre-analysis syntactic spelling of a type. The
// parser only records the syntax; the analyzer resolves it to a
// canonical *types.AstType attached on the node that carries it.
type TypeExpr struct {
	Loc token.Location

	// Exactly one of the following describes the spelled type.
	Scalar   ScalarSpelling // Void/Bool/Int/Uint/Float/Half/Double
	IsScalar bool

	Vector VectorSpelling
	IsVec  bool

	Matrix MatrixSpelling
	IsMat  bool

	// Named refers to a struct type by its identifier. Resource type
	// keywords (SamplerState, Texture2D, ConstantBuffer<T>, ...) are
	// marked by IsResource instead.
	Named   string
	IsNamed bool

	// Resource composite types carry a sub-type (element type for
	// textures/buffers).
	ResourceKind  ResourceKind
	IsResource    bool
	Sub           *TypeExpr
	TextureDim    TextureDim
}

// ScalarSpelling is the parser-level scalar kind before analysis
// canonicalizes it into a types.AstType.
type ScalarSpelling uint8

const (
	SpellVoid ScalarSpelling = iota
	SpellBool
	SpellInt
	SpellUint
	SpellFloat
	SpellHalf
	SpellDouble
)

// VectorSpelling is the parser-level vector shape.
type VectorSpelling struct {
	Scalar ScalarSpelling
	Size   int
}

// MatrixSpelling is the parser-level matrix shape (columns x rows).
type MatrixSpelling struct {
	Scalar ScalarSpelling
	Cols   int
	Rows   int
}

// ResourceKind enumerates the resource-type spellings the parser
// recognizes (spec.md §3's Sampler/Image/SampledImage/ConstantBuffer/
// StructuredBuffer/RWStructuredBuffer variants).
type ResourceKind uint8

const (
	ResourceSampler ResourceKind = iota
	ResourceTexture
	ResourceConstantBuffer
	ResourceStructuredBuffer
	ResourceRWStructuredBuffer
)

// TextureDim is the dimensionality of a texture resource.
type TextureDim uint8

const (
	Tex1D TextureDim = iota
	Tex2D
	Tex2DArray
	Tex3D
	TexCube
)

// ParamDirection is an HLSL parameter direction qualifier.
type ParamDirection uint8

const (
	DirIn ParamDirection = iota
	DirOut
	DirInout
)

// VarKind distinguishes the storage/role of a Var decl (spec.md §3).
type VarKind uint8

const (
	VarPlain VarKind = iota
	VarUniform
	VarGroupshared
	VarParam
	VarStaticConst
)

// ---------------------------------------------------------------------------
// Decl union
// ---------------------------------------------------------------------------

// Decl is the tagged union of top-level and nested declarations
// (spec.md §3: Func, Var, Const, Struct, StructField).
type Decl interface {
	declNode()
	DeclLoc() token.Location
	DeclName() string
}

// Register is a parsed `: register(tN, spaceM)` binding suffix.
type Register struct {
	Present bool
	Slot    int
	Space   int
	Letter  byte // 't','s','u','b' — resource class letter
}

// FuncDecl is a function declaration, possibly a shader entry point.
type FuncDecl struct {
	Loc            token.Location
	Name           string
	Attrs          []Attribute
	Params         []*VarDecl
	ReturnType     TypeExpr
	ReturnSemantic string
	Body           *BlockStmt

	// Filled by the analyzer (spec.md §4.5 pass 2).
	ResolvedType *FuncTypeInfo
	IsEntryPoint bool
	NumThreads   [3]int
	Decorations  []Decoration

	// Filled by the IR builder (spec.md §3: "after IR lowering, an IR
	// value reference").
	IRValue any
}

func (d *FuncDecl) declNode()                 {}
func (d *FuncDecl) DeclLoc() token.Location    { return d.Loc }
func (d *FuncDecl) DeclName() string           { return d.Name }

// FuncTypeInfo records the analyzer's resolved signature for a
// function, kept separate from types.AstType.Func so the analyzer can
// also track parameter directions.
type FuncTypeInfo struct {
	Return     *types.AstType
	ParamTypes []*types.AstType
}

// VarDecl is a variable declaration: a global resource/uniform, a
// groupshared variable, a function parameter, or a local.
type VarDecl struct {
	Loc       token.Location
	Name      string
	Kind      VarKind
	Direction ParamDirection // meaningful when Kind == VarParam
	Attrs     []Attribute
	TypeExpr  TypeExpr
	Semantic  string
	Register  Register
	Init      Expr // optional initializer

	ResolvedType *types.AstType
	Decorations  []Decoration
	DescSet      uint32
	Binding      uint32
	HasBinding   bool

	IRValue any
}

func (d *VarDecl) declNode()              {}
func (d *VarDecl) DeclLoc() token.Location { return d.Loc }
func (d *VarDecl) DeclName() string        { return d.Name }

// ConstDecl is a `static const` scalar global (spec.md §4.3).
type ConstDecl struct {
	Loc          token.Location
	Name         string
	TypeExpr     TypeExpr
	Init         Expr
	ResolvedType *types.AstType

	IRValue any
}

func (d *ConstDecl) declNode()              {}
func (d *ConstDecl) DeclLoc() token.Location { return d.Loc }
func (d *ConstDecl) DeclName() string        { return d.Name }

// StructDecl declares a struct type and its fields.
type StructDecl struct {
	Loc    token.Location
	Name   string
	Fields []*StructField

	ResolvedType *types.AstType
}

func (d *StructDecl) declNode()              {}
func (d *StructDecl) DeclLoc() token.Location { return d.Loc }
func (d *StructDecl) DeclName() string        { return d.Name }

// StructField is one member of a StructDecl.
type StructField struct {
	Loc          token.Location
	Name         string
	TypeExpr     TypeExpr
	Semantic     string
	ResolvedType *types.AstType
	Decorations  []Decoration
	Offset       uint32
}

func (d *StructField) declNode()              {}
func (d *StructField) DeclLoc() token.Location { return d.Loc }
func (d *StructField) DeclName() string        { return d.Name }

// CBufferDecl is a `cbuffer Name { ... };` block; the analyzer gives it
// a ConstantBuffer type over a struct of its fields plus a binding, and
// the IR builder lowers it to a Block-decorated struct in a Uniform
// variable (spec.md §4.4).
type CBufferDecl struct {
	Loc      token.Location
	Name     string
	Fields   []*StructField
	Register Register

	ResolvedType *types.AstType
	DescSet      uint32
	Binding      uint32
	HasBinding   bool
	IRValue      any
}

func (d *CBufferDecl) declNode()              {}
func (d *CBufferDecl) DeclLoc() token.Location { return d.Loc }
func (d *CBufferDecl) DeclName() string        { return d.Name }

// ---------------------------------------------------------------------------
// Stmt union
// ---------------------------------------------------------------------------

// Stmt is the tagged union of statement forms (spec.md §3).
type Stmt interface {
	stmtNode()
	StmtLoc() token.Location
}

type DeclStmt struct {
	Loc  token.Location
	Decl Decl
}

func (s *DeclStmt) stmtNode()               {}
func (s *DeclStmt) StmtLoc() token.Location { return s.Loc }

type ExprStmt struct {
	Loc token.Location
	X   Expr
}

func (s *ExprStmt) stmtNode()               {}
func (s *ExprStmt) StmtLoc() token.Location { return s.Loc }

// AssignOp names the compound-assignment operator spelled at an
// assignment statement, or OpAssign for a plain `=`.
type AssignOp uint8

const (
	OpAssign AssignOp = iota
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign
)

type VarAssignStmt struct {
	Loc   token.Location
	LHS   Expr
	Op    AssignOp
	Value Expr
}

func (s *VarAssignStmt) stmtNode()               {}
func (s *VarAssignStmt) StmtLoc() token.Location { return s.Loc }

type ReturnStmt struct {
	Loc   token.Location
	Value Expr // nil for void return
}

func (s *ReturnStmt) stmtNode()               {}
func (s *ReturnStmt) StmtLoc() token.Location { return s.Loc }

type DiscardStmt struct{ Loc token.Location }

func (s *DiscardStmt) stmtNode()               {}
func (s *DiscardStmt) StmtLoc() token.Location { return s.Loc }

type ContinueStmt struct{ Loc token.Location }

func (s *ContinueStmt) stmtNode()               {}
func (s *ContinueStmt) StmtLoc() token.Location { return s.Loc }

type BreakStmt struct{ Loc token.Location }

func (s *BreakStmt) stmtNode()               {}
func (s *BreakStmt) StmtLoc() token.Location { return s.Loc }

// BlockStmt is a `{ ... }` statement list; it owns a Scope once the
// analyzer runs (spec.md §3: "Block(scope)").
type BlockStmt struct {
	Loc   token.Location
	Stmts []Stmt
	Scope any // *analyzer.Scope, set by the analyzer
}

func (s *BlockStmt) stmtNode()               {}
func (s *BlockStmt) StmtLoc() token.Location { return s.Loc }

type IfStmt struct {
	Loc    token.Location
	Cond   Expr
	Then   Stmt
	Else   Stmt // nil if no else branch
}

func (s *IfStmt) stmtNode()               {}
func (s *IfStmt) StmtLoc() token.Location { return s.Loc }

type WhileStmt struct {
	Loc  token.Location
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) stmtNode()               {}
func (s *WhileStmt) StmtLoc() token.Location { return s.Loc }

type DoWhileStmt struct {
	Loc  token.Location
	Body Stmt
	Cond Expr
}

func (s *DoWhileStmt) stmtNode()               {}
func (s *DoWhileStmt) StmtLoc() token.Location { return s.Loc }

type ForStmt struct {
	Loc  token.Location
	Init Stmt // optional: DeclStmt or ExprStmt
	Cond Expr // optional
	Post Stmt // optional: ExprStmt or VarAssignStmt
	Body Stmt
}

func (s *ForStmt) stmtNode()               {}
func (s *ForStmt) StmtLoc() token.Location { return s.Loc }

// ---------------------------------------------------------------------------
// Expr union
// ---------------------------------------------------------------------------

// Expr is the tagged union of expression forms (spec.md §3). Every
// concrete node carries a resolved type and lvalue-ness once the
// analyzer has run. The analyzer does no constant folding, so ConstInt
// stays nil on every node.
type Expr interface {
	exprNode()
	ExprLoc() token.Location
}

// exprBase factors the post-analysis annotation fields shared by
// every expression node.
type exprBase struct {
	Loc          token.Location
	ResolvedType *types.AstType
	Assignable   bool
	ConstInt     *int64 // integer fold slot; nothing sets it, so it is always nil
	AsType       *TypeExpr
}

func (e *exprBase) ExprLoc() token.Location { return e.Loc }

// PrimaryExpr wraps a literal token (int/float/string/bool).
type PrimaryExpr struct {
	exprBase
	Kind  PrimaryKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

type PrimaryKind uint8

const (
	PrimInt PrimaryKind = iota
	PrimFloat
	PrimString
	PrimBool
)

func (e *PrimaryExpr) exprNode() {}

// IdentExpr names a variable/function/constant, optionally with a
// swizzle suffix (spec.md: "Ident(name, resolved-decl, optional
// swizzle indices)").
type IdentExpr struct {
	exprBase
	Name         string
	Resolved     Decl // filled by the analyzer
	SwizzleIdx   []int
	HasSwizzle   bool
}

func (e *IdentExpr) exprNode() {}

// AccessExpr is a `.field` / `.swizzle` chain off a base expression.
type AccessExpr struct {
	exprBase
	Base  Expr
	Chain []AccessStep
}

// AccessStep is one `.name` link in an access chain: either a struct
// field name or swizzle letters.
type AccessStep struct {
	Name       string
	SwizzleIdx []int
	IsSwizzle  bool
	Loc        token.Location
}

func (e *AccessExpr) exprNode() {}

// SubscriptExpr is `left[right]`.
type SubscriptExpr struct {
	exprBase
	Left  Expr
	Index Expr
}

func (e *SubscriptExpr) exprNode() {}

// SamplerTypeExpr/TextureTypeExpr/ConstantBufferTypeExpr/
// StructuredBufferTypeExpr/RWStructuredBufferTypeExpr denote a
// type-valued expression used where HLSL reuses expression syntax for
// types (spec.md §3).
type SamplerTypeExpr struct{ exprBase }

func (e *SamplerTypeExpr) exprNode() {}

type TextureTypeExpr struct {
	exprBase
	Sampled TypeExpr
	Dim     TextureDim
}

func (e *TextureTypeExpr) exprNode() {}

type ConstantBufferTypeExpr struct {
	exprBase
	Sub TypeExpr
}

func (e *ConstantBufferTypeExpr) exprNode() {}

type StructuredBufferTypeExpr struct {
	exprBase
	Sub TypeExpr
}

func (e *StructuredBufferTypeExpr) exprNode() {}

type RWStructuredBufferTypeExpr struct {
	exprBase
	Sub TypeExpr
}

func (e *RWStructuredBufferTypeExpr) exprNode() {}

// FuncCallExpr is `callee(args...)`, optionally a method call with an
// implicit self (e.g. `tex.Sample(s, uv)`).
type FuncCallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
	Self   Expr // non-nil for method-style calls
	Method string
}

func (e *FuncCallExpr) exprNode() {}

// BuiltinKind enumerates the intrinsics of spec.md §6.3.
type BuiltinKind uint16

const (
	BuiltinSin BuiltinKind = iota
	BuiltinCos
	BuiltinTan
	BuiltinAsin
	BuiltinAcos
	BuiltinAtan
	BuiltinAtan2
	BuiltinSinh
	BuiltinCosh
	BuiltinTanh
	BuiltinSqrt
	BuiltinRsqrt
	BuiltinExp
	BuiltinExp2
	BuiltinLog
	BuiltinLog2
	BuiltinAbs
	BuiltinFloor
	BuiltinCeil
	BuiltinTrunc
	BuiltinFrac
	BuiltinDegrees
	BuiltinRadians
	BuiltinPow
	BuiltinStep
	BuiltinMin
	BuiltinMax
	BuiltinReflect
	BuiltinRefract
	BuiltinLerp
	BuiltinClamp
	BuiltinSmoothstep
	BuiltinDot
	BuiltinCross
	BuiltinLength
	BuiltinNormalize
	BuiltinDistance
	BuiltinMul
	BuiltinTranspose
	BuiltinDeterminant
	BuiltinDdx
	BuiltinDdy
	BuiltinAsint
	BuiltinAsuint
	BuiltinAsfloat
	BuiltinInterlockedAdd
	BuiltinInterlockedAnd
	BuiltinInterlockedOr
	BuiltinInterlockedXor
	BuiltinInterlockedMin
	BuiltinInterlockedMax
	BuiltinInterlockedExchange
	BuiltinInterlockedCompareExchange
	BuiltinInterlockedCompareStore
	BuiltinSample
	BuiltinVectorCtor
	BuiltinMatrixCtor
	BuiltinScalarCast
)

// BuiltinCallExpr is a call to a recognized intrinsic (spec.md §6.3).
type BuiltinCallExpr struct {
	exprBase
	Kind BuiltinKind
	Args []Expr
	// OutArg is set for atomics whose result must be stored into a
	// caller-provided out lvalue (Exchange, CompareExchange).
	OutArg Expr
}

func (e *BuiltinCallExpr) exprNode() {}

// BarrierCallExpr is a GroupMemoryBarrier[WithGroupSync]/
// DeviceMemoryBarrier[WithGroupSync]/AllMemoryBarrier[WithGroupSync]
// call (spec.md §6.3).
type BarrierCallExpr struct {
	exprBase
	GroupSync bool
	Device    bool
	Workgroup bool
}

func (e *BarrierCallExpr) exprNode() {}

// UnaryOp names a prefix unary operator.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
)

type UnaryExpr struct {
	exprBase
	Op UnaryOp
	X  Expr
}

func (e *UnaryExpr) exprNode() {}

// BinaryOp names an infix binary operator.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinLogicalAnd
	BinLogicalOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

type BinaryExpr struct {
	exprBase
	Op   BinaryOp
	L, R Expr
}

func (e *BinaryExpr) exprNode() {}
