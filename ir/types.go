// Package ir defines the intermediate representation of spec.md §3/§4.6:
// a lowering of the analyzed AST to an explicit-block SSA form that
// mirrors the SPIR-V type and instruction universe closely enough that
// the encoder (package spirv) can walk it mechanically.
//
// The type half of the package (this file) mirrors types.AstType but
// collapsed onto the SPIR-V type set, using the same string-keyed
// interning technique as types.Cache (itself grounded on naga's
// ir/registry.go handle table).
package ir

import "fmt"

// Kind discriminates the IRType variants of spec.md §3.
type Kind uint8

const (
	Void Kind = iota
	Bool
	Float
	Int
	Vector
	Matrix
	RuntimeArray
	Pointer
	Func
	Struct
	Sampler
	Image
	SampledImage
)

// StorageClass mirrors the SPIR-V storage class of a Pointer/Variable.
type StorageClass uint8

const (
	StorageUniformConstant StorageClass = iota
	StorageInput
	StorageUniform
	StorageOutput
	StorageWorkgroup
	StoragePrivate
	StorageFunction
	StoragePushConstant
	StorageImage
	StorageStorageBuffer
)

// ImageDim is a texture resource's dimensionality.
type ImageDim uint8

const (
	Dim1D ImageDim = iota
	Dim2D
	Dim3D
	DimCube
)

// DecorationKind names a SPIR-V decoration attachable to a type, struct
// member, or global variable (spec.md §4.7's decoration rules).
type DecorationKind uint8

const (
	DecBlock DecorationKind = iota
	DecBufferBlock
	DecColMajor
	DecRowMajor
	DecArrayStride
	DecMatrixStride
	DecBuiltIn
	DecLocation
	DecBinding
	DecDescriptorSet
	DecOffset
	DecNonWritable
)

// Decoration is a single SPIR-V decoration with at most one literal
// operand (spec.md §4.7: "Block/BufferBlock ... take no value;
// NonWritable/RowMajor/ColMajor take only member-index; the rest take
// one value").
type Decoration struct {
	Kind  DecorationKind
	Value uint32
}

// MemberDecoration attaches a Decoration to one struct member.
type MemberDecoration struct {
	Member     uint32
	Decoration Decoration
}

// Field is one member of a Struct IRType.
type Field struct {
	Name   string
	Type   *Type
	Offset uint32
}

// Type is the single structural IR type representation. Two Types are
// semantically equal iff they are pointer-equal, upheld entirely by
// Cache.intern; never construct a Type outside of a Cache.
type Type struct {
	Kind Kind

	// Float/Int
	Bits   uint32
	Signed bool // Int only

	// Vector
	Elem *Type
	Size int // 1..4

	// Matrix
	Col      *Type // column vector type
	ColCount int

	// Pointer
	Storage StorageClass
	Sub     *Type

	// RuntimeArray
	Stride uint32

	// Func
	Return *Type
	Params []*Type

	// Struct
	Name              string
	Fields            []Field
	MemberDecorations []MemberDecoration
	Decorations       []Decoration // decorations on the type itself (Block/BufferBlock)

	// Image
	ImgDim ImageDim

	// SampledImage
	ImageType *Type

	key string
}

// String renders a human-readable type name, used in debug output.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.key
}

// Cache canonically interns IRTypes for one compilation.
type Cache struct {
	byKey     map[string]*Type
	structSeq int
}

// NewCache creates an empty type cache.
func NewCache() *Cache {
	return &Cache{byKey: make(map[string]*Type, 64)}
}

func (c *Cache) intern(key string, build func() *Type) *Type {
	if existing, ok := c.byKey[key]; ok {
		return existing
	}
	t := build()
	t.key = key
	c.byKey[key] = t
	return t
}

func (c *Cache) VoidType() *Type { return c.intern("void", func() *Type { return &Type{Kind: Void} }) }
func (c *Cache) BoolType() *Type { return c.intern("bool", func() *Type { return &Type{Kind: Bool} }) }

func (c *Cache) FloatType(bits uint32) *Type {
	key := fmt.Sprintf("f%d", bits)
	return c.intern(key, func() *Type { return &Type{Kind: Float, Bits: bits} })
}

func (c *Cache) IntType(bits uint32, signed bool) *Type {
	key := fmt.Sprintf("i%d:%v", bits, signed)
	return c.intern(key, func() *Type { return &Type{Kind: Int, Bits: bits, Signed: signed} })
}

func (c *Cache) VectorType(elem *Type, size int) *Type {
	key := fmt.Sprintf("vec%d<%s>", size, elem.key)
	return c.intern(key, func() *Type { return &Type{Kind: Vector, Elem: elem, Size: size} })
}

func (c *Cache) MatrixType(col *Type, colCount int) *Type {
	key := fmt.Sprintf("mat%dx<%s>", colCount, col.key)
	return c.intern(key, func() *Type { return &Type{Kind: Matrix, Col: col, ColCount: colCount} })
}

func (c *Cache) RuntimeArrayType(elem *Type, stride uint32) *Type {
	key := fmt.Sprintf("rtarr<%s>#%d", elem.key, stride)
	return c.intern(key, func() *Type { return &Type{Kind: RuntimeArray, Elem: elem, Stride: stride} })
}

func (c *Cache) PointerType(sc StorageClass, sub *Type) *Type {
	key := fmt.Sprintf("ptr<%d,%s>", sc, sub.key)
	return c.intern(key, func() *Type { return &Type{Kind: Pointer, Storage: sc, Sub: sub} })
}

func (c *Cache) FuncType(ret *Type, params []*Type) *Type {
	key := "fn(" + ret.key
	for _, p := range params {
		key += "," + p.key
	}
	key += ")"
	return c.intern(key, func() *Type { return &Type{Kind: Func, Return: ret, Params: params} })
}

// StructType declares a struct at a unique site: every call returns a
// distinct Type, mirroring types.Cache.StructType's declaration-site
// identity rule.
func (c *Cache) StructType(name string, fields []Field, memberDecs []MemberDecoration, decs []Decoration) *Type {
	c.structSeq++
	key := fmt.Sprintf("struct#%d:%s", c.structSeq, name)
	return c.intern(key, func() *Type {
		return &Type{Kind: Struct, Name: name, Fields: fields, MemberDecorations: memberDecs, Decorations: decs}
	})
}

func (c *Cache) SamplerType() *Type {
	return c.intern("sampler", func() *Type { return &Type{Kind: Sampler} })
}

func (c *Cache) ImageType(sampled *Type, dim ImageDim) *Type {
	key := fmt.Sprintf("image<%s,%d>", sampled.key, dim)
	return c.intern(key, func() *Type { return &Type{Kind: Image, Elem: sampled, ImgDim: dim} })
}

func (c *Cache) SampledImageType(img *Type) *Type {
	key := "sampled<" + img.key + ">"
	return c.intern(key, func() *Type { return &Type{Kind: SampledImage, ImageType: img} })
}

// BuiltIn is a SPIR-V BuiltIn decoration value (spec-mandated numeric
// constants, reproduced here — not in package spirv — because the IR
// builder must already know the real enumerant when it decorates a
// synthesized stage-I/O Variable; package spirv depends on package ir,
// never the reverse, so this cannot live there instead).
type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInFragCoord            BuiltIn = 15
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInFragDepth            BuiltIn = 22
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
)

// SemanticBuiltIn maps an HLSL semantic name directly to its SPIR-V
// BuiltIn decoration value, bypassing any intermediate ordinal (spec.md
// §4.5 step 2's "BuiltIn(k) (derived from the HLSL semantic)").
func SemanticBuiltIn(name string) (BuiltIn, bool) {
	switch name {
	case "SV_Position":
		return BuiltInPosition, true
	case "SV_VertexID":
		return BuiltInVertexIndex, true
	case "SV_InstanceID":
		return BuiltInInstanceIndex, true
	case "SV_Depth":
		return BuiltInFragDepth, true
	case "SV_DispatchThreadID":
		return BuiltInGlobalInvocationID, true
	case "SV_GroupThreadID":
		return BuiltInLocalInvocationID, true
	case "SV_GroupIndex":
		return BuiltInLocalInvocationIndex, true
	case "SV_GroupID":
		return BuiltInWorkgroupID, true
	case "SV_IsFrontFace":
		return BuiltInFrontFacing, true
	default:
		return 0, false
	}
}
