// Package types implements the structural, canonically-interned
// AstType of spec.md §3/§4.4: a small closed set of type variants
// shared by the AST and (via ir.FromAstType) the IR, cached per
// compilation module so that structural equality implies pointer
// equality.
//
// The interning technique — a string-keyed cache returning a stable
// pointer — is carried over from naga's ir/registry.go handle table,
// generalized from handle-indexed to pointer-identity per spec.md §3's
// invariant ("two AstTypes with identical structural key are the same
// object").
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the AstType variants of spec.md §3.
type Kind uint8

const (
	Void Kind = iota
	TypeOfType
	Bool
	Float
	Int
	Vector
	Matrix
	Pointer
	Func
	Struct
	Sampler
	Image
	SampledImage
	ConstantBuffer
	StructuredBuffer
	RWStructuredBuffer
)

// StorageClass mirrors the SPIR-V notion of where a pointer's pointee
// lives (spec.md Glossary).
type StorageClass uint8

const (
	StorageFunction StorageClass = iota
	StorageInput
	StorageOutput
	StorageUniform
	StorageUniformConstant
	StorageWorkgroup
	StoragePrivate
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

// Field is one member of a Struct AstType.
type Field struct {
	Name     string
	Type     *AstType
	Semantic string
	Offset   uint32 // byte offset, computed per spec.md §4.4
}

// AstType is the single structural type representation shared by the
// AST (pre- and post-analysis) and the IR lowering stage. Two
// AstTypes are semantically equal iff they are pointer-equal — this
// invariant is upheld entirely by *Cache.Intern; never construct an
// AstType outside of a Cache.
type AstType struct {
	Kind Kind

	// Float/Int
	Bits   int
	Signed bool // Int only

	// Vector
	Elem *AstType
	Size int // 1..4

	// Matrix
	Col      *AstType // column vector type
	ColCount int      // 1..4

	// Pointer
	Storage StorageClass
	Sub     *AstType

	// Func
	Return *AstType
	Params []*AstType

	// Struct — identified by declaration site (Name), not structure,
	// per spec.md §4.4's "Structs are identified by their declaration
	// site, not structurally."
	Name   string
	Fields []Field

	// Image
	SampledScalar *AstType
	ImgDim        ImageDim

	// ConstantBuffer/StructuredBuffer/RWStructuredBuffer
	BufferElem *AstType

	// Size/align in bytes, computed under std140/std430-like rules
	// (spec.md §4.4).
	ByteSize  uint32
	ByteAlign uint32

	key string // canonical structural key, used only for interning
}

// Cache canonically interns AstTypes for one compilation (spec.md §3).
// It is not safe for concurrent use; each compilation context owns its
// own Cache (spec.md §5).
type Cache struct {
	byKey map[string]*AstType
	// structSeq is the declaration-site counter folded into each Struct
	// type's key, so that two structs with identical fields but
	// different declaration sites stay distinct (spec.md §4.4).
	structSeq int
}

// NewCache creates an empty type cache.
func NewCache() *Cache {
	return &Cache{byKey: make(map[string]*AstType, 64)}
}

func (c *Cache) intern(t *AstType) *AstType {
	if existing, ok := c.byKey[t.key]; ok {
		return existing
	}
	c.byKey[t.key] = t
	return t
}

// Void/Bool return the canonical singleton instances.
func (c *Cache) Void() *AstType { return c.intern(&AstType{Kind: Void, key: "void"}) }
func (c *Cache) Bool() *AstType { return c.intern(&AstType{Kind: Bool, key: "bool", ByteSize: 1, ByteAlign: 1}) }

// TypeOfType returns the meta-type for a type-valued expression whose
// denoted type is inner.
func (c *Cache) TypeOfType(inner *AstType) *AstType {
	key := "typeof(" + inner.key + ")"
	return c.intern(&AstType{Kind: TypeOfType, Sub: inner, key: key})
}

// FloatType returns the canonical Float{bits} type.
func (c *Cache) FloatType(bits int) *AstType {
	key := fmt.Sprintf("f%d", bits)
	return c.intern(&AstType{Kind: Float, Bits: bits, key: key, ByteSize: uint32(bits / 8), ByteAlign: uint32(bits / 8)})
}

// IntType returns the canonical Int{bits,signed} type.
func (c *Cache) IntType(bits int, signed bool) *AstType {
	key := fmt.Sprintf("i%d:%v", bits, signed)
	return c.intern(&AstType{Kind: Int, Bits: bits, Signed: signed, key: key, ByteSize: uint32(bits / 8), ByteAlign: uint32(bits / 8)})
}

// nextPow2 rounds n up to the next power of two (used for vector
// alignment per spec.md §4.4: "align = elem.size × next-pow2(N)").
func nextPow2(n int) int {
	switch {
	case n <= 1:
		return 1
	case n == 2:
		return 2
	default:
		return 4
	}
}

// VectorType returns the canonical Vector{elem,size} type, with size
// and alignment computed per spec.md §4.4.
func (c *Cache) VectorType(elem *AstType, size int) *AstType {
	key := fmt.Sprintf("vec%d<%s>", size, elem.key)
	align := int(elem.ByteSize) * nextPow2(size)
	return c.intern(&AstType{
		Kind: Vector, Elem: elem, Size: size, key: key,
		ByteSize:  uint32(int(elem.ByteSize) * size),
		ByteAlign: uint32(align),
	})
}

// MatrixType returns the canonical Matrix{col,colCount} type. Column
// stride is 16 bytes for float4-column matrices under std140 (spec.md
// §4.4).
func (c *Cache) MatrixType(col *AstType, colCount int) *AstType {
	key := fmt.Sprintf("mat%dx<%s>", colCount, col.key)
	stride := col.ByteAlign
	if stride < 16 {
		stride = 16
	}
	return c.intern(&AstType{
		Kind: Matrix, Col: col, ColCount: colCount, key: key,
		ByteSize:  stride * uint32(colCount),
		ByteAlign: 16,
	})
}

// PointerType returns the canonical Pointer{storageClass,sub} type.
func (c *Cache) PointerType(sc StorageClass, sub *AstType) *AstType {
	key := fmt.Sprintf("ptr<%d,%s>", sc, sub.key)
	return c.intern(&AstType{Kind: Pointer, Storage: sc, Sub: sub, key: key})
}

// FuncType returns the canonical Func{return,params} type.
func (c *Cache) FuncType(ret *AstType, params []*AstType) *AstType {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.key)
	}
	b.WriteString(")->")
	b.WriteString(ret.key)
	return c.intern(&AstType{Kind: Func, Return: ret, Params: params, key: b.String()})
}

// StructType declares (or redeclares) a struct by name at a unique
// declaration site. Every call returns a distinct AstType even if two
// structs share a name and field list — structs are identified by
// declaration site, not structure (spec.md §4.4) — achieved here by
// folding a monotonically increasing site counter into the key.
func (c *Cache) StructType(name string, fields []Field) *AstType {
	c.structSeq++
	key := fmt.Sprintf("struct#%d:%s", c.structSeq, name)
	size, align := layoutStruct(fields)
	return c.intern(&AstType{Kind: Struct, Name: name, Fields: fields, key: key, ByteSize: size, ByteAlign: align})
}

// layoutStruct assigns std140-ish sequential offsets: every field is
// aligned to its own natural alignment, and the struct's total size is
// rounded up to its largest member's alignment (spec.md §4.4).
func layoutStruct(fields []Field) (size, align uint32) {
	var offset uint32
	for i := range fields {
		f := &fields[i]
		a := f.Type.ByteAlign
		if a == 0 {
			a = 4
		}
		if align < a {
			align = a
		}
		offset = alignUp(offset, a)
		f.Offset = offset
		offset += f.Type.ByteSize
	}
	if align == 0 {
		align = 4
	}
	return alignUp(offset, align), align
}

func alignUp(v, a uint32) uint32 {
	if a == 0 {
		return v
	}
	return (v + a - 1) / a * a
}

// SamplerType returns the canonical Sampler type.
func (c *Cache) SamplerType() *AstType {
	return c.intern(&AstType{Kind: Sampler, key: "sampler"})
}

// ImageType returns the canonical Image{sampledScalar,dim} type.
func (c *Cache) ImageType(sampled *AstType, dim ImageDim) *AstType {
	key := fmt.Sprintf("image<%s,%d>", sampled.key, dim)
	return c.intern(&AstType{Kind: Image, SampledScalar: sampled, ImgDim: dim, key: key})
}

// SampledImageType returns the canonical SampledImage{image} type.
func (c *Cache) SampledImageType(img *AstType) *AstType {
	key := "sampled<" + img.key + ">"
	return c.intern(&AstType{Kind: SampledImage, Sub: img, key: key})
}

// ConstantBufferType wraps sub (a Struct type) with the Block
// decoration's semantics (spec.md §4.4).
func (c *Cache) ConstantBufferType(sub *AstType) *AstType {
	key := "cbuffer<" + sub.key + ">"
	return c.intern(&AstType{Kind: ConstantBuffer, BufferElem: sub, key: key, ByteSize: sub.ByteSize, ByteAlign: sub.ByteAlign})
}

// StructuredBufferType wraps a runtime-array-of-elem in a
// BufferBlock-decorated struct (spec.md §4.4).
func (c *Cache) StructuredBufferType(elem *AstType) *AstType {
	key := "structuredbuffer<" + elem.key + ">"
	return c.intern(&AstType{Kind: StructuredBuffer, BufferElem: elem, key: key})
}

// RWStructuredBufferType is the read-write counterpart, which drops
// the NonWritable decoration at the IR/encoder stage (spec.md §4.4).
func (c *Cache) RWStructuredBufferType(elem *AstType) *AstType {
	key := "rwstructuredbuffer<" + elem.key + ">"
	return c.intern(&AstType{Kind: RWStructuredBuffer, BufferElem: elem, key: key})
}

// String renders a human-readable type name, used in diagnostics.
//
//nolint:gocyclo,cyclop // exhaustive variant stringer
func (t *AstType) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Float:
		return fmt.Sprintf("float%d", t.Bits)
	case Int:
		if t.Signed {
			return fmt.Sprintf("int%d", t.Bits)
		}
		return fmt.Sprintf("uint%d", t.Bits)
	case Vector:
		return fmt.Sprintf("%s%d", t.Elem.String(), t.Size)
	case Matrix:
		return fmt.Sprintf("%sx%dx%d", t.Col.Elem.String(), t.ColCount, t.Col.Size)
	case Pointer:
		return "ptr<" + t.Sub.String() + ">"
	case Func:
		return "func"
	case Struct:
		return t.Name
	case Sampler:
		return "SamplerState"
	case Image:
		return "Texture"
	case SampledImage:
		return "SampledImage"
	case ConstantBuffer:
		return "ConstantBuffer<" + t.BufferElem.String() + ">"
	case StructuredBuffer:
		return "StructuredBuffer<" + t.BufferElem.String() + ">"
	case RWStructuredBuffer:
		return "RWStructuredBuffer<" + t.BufferElem.String() + ">"
	case TypeOfType:
		return "type<" + t.Sub.String() + ">"
	default:
		return "?"
	}
}

// IsScalar reports whether t is Bool/Int/Float.
func (t *AstType) IsScalar() bool {
	return t.Kind == Bool || t.Kind == Int || t.Kind == Float
}

// IsNumeric reports whether t is Int/Float (excludes Bool).
func (t *AstType) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// ScalarOf returns the scalar element type of t: t itself if t is
// already scalar, or its Elem if t is a Vector.
func (t *AstType) ScalarOf() *AstType {
	if t.Kind == Vector {
		return t.Elem
	}
	return t
}

// VectorSize returns t's component count: 1 for scalars, Size for
// vectors.
func (t *AstType) VectorSize() int {
	if t.Kind == Vector {
		return t.Size
	}
	return 1
}

// Equal reports whether two AstTypes are the same canonical instance.
// Per spec.md §3 this is simply pointer equality.
func Equal(a, b *AstType) bool { return a == b }
