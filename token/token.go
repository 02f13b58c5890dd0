// Package token defines the lexical token vocabulary and source
// location type shared by the lexer, parser, analyzer, and diagnostics.
package token

import "fmt"

// Location pins a span of source text to a file.
//
// Location is immutable after creation and is attached to every token,
// AST node, and diagnostic so that errors can always point back into
// the original source.
type Location struct {
	Path   string
	Offset int
	Length int
	Line   int
	Col    int
}

// String renders a location as "path:line:col".
func (l Location) String() string {
	if l.Path == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
}

// Kind identifies the lexical class of a Token.
type Kind uint8

const (
	EOF Kind = iota
	Error

	Ident
	IntLiteral
	FloatLiteral
	StringLiteral
	VectorType // e.g. float3, int4, bool2 — payload is VectorDesc
	MatrixType // e.g. float4x4 — payload is VectorDesc with Cols/Rows

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Colon
	Semicolon
	Question
	At // '[' attributes use brackets, not '@'; kept for forward compat

	// Operators
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Assign
	Less
	Greater

	PlusPlus
	MinusMinus
	EqualEqual
	BangEqual
	LessEqual
	GreaterEqual
	AmpAmp
	PipePipe
	LessLess
	GreaterGreater
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	PercentEqual
	AmpEqual
	PipeEqual
	CaretEqual
	LessLessEqual
	GreaterGreaterEqual

	// Keywords
	KwStruct
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwBreak
	KwContinue
	KwDiscard
	KwIn
	KwOut
	KwInout
	KwStatic
	KwConst
	KwGroupshared
	KwRegister
	KwCBuffer
	KwTrue
	KwFalse

	// Scalar type keywords
	KwVoid
	KwBool
	KwInt
	KwUint
	KwFloat
	KwHalf
	KwDouble
	KwMin16Float
	KwMin16Int
	KwMin16Uint

	// Resource type keywords
	KwSamplerState
	KwTexture1D
	KwTexture2D
	KwTexture2DArray
	KwTexture3D
	KwTextureCube
	KwConstantBuffer
	KwStructuredBuffer
	KwRWStructuredBuffer
)

//nolint:gocyclo,cyclop // exhaustive enum stringer, kept as one switch for readability
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Error:
		return "Error"
	case Ident:
		return "Ident"
	case IntLiteral:
		return "IntLiteral"
	case FloatLiteral:
		return "FloatLiteral"
	case StringLiteral:
		return "StringLiteral"
	case VectorType:
		return "VectorType"
	case MatrixType:
		return "MatrixType"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Semicolon:
		return ";"
	case Colon:
		return ":"
	case Comma:
		return ","
	case Dot:
		return "."
	case KwStruct:
		return "struct"
	case KwReturn:
		return "return"
	case KwIf:
		return "if"
	case KwElse:
		return "else"
	case KwFor:
		return "for"
	case KwWhile:
		return "while"
	case KwDo:
		return "do"
	default:
		return "Kind"
	}
}

// ScalarKind names the scalar element kind carried by a composite
// type token's payload (§4.2 floatN/intN/uintN/boolN/floatNxM forms).
type ScalarKind uint8

const (
	ScalarFloat ScalarKind = iota
	ScalarInt
	ScalarUint
	ScalarBool
	ScalarHalf
	ScalarDouble
)

// VectorDesc is the payload of a VectorType/MatrixType token: the
// scalar element kind plus either a vector dimension or a matrix
// column/row shape.
type VectorDesc struct {
	Scalar ScalarKind
	Dim    int // vector size (1..4); 0 when Cols/Rows are used
	Cols   int // matrix columns (2..4); 0 for a plain vector
	Rows   int // matrix rows (2..4); 0 for a plain vector
}

// Token is a single lexical unit: a kind, a location, and a
// kind-dependent payload.
type Token struct {
	Kind Kind
	Loc  Location

	// Payload — exactly one is meaningful, selected by Kind.
	Ident   string
	IntVal  int64
	FltVal  float64
	StrVal  string
	Vec      VectorDesc
	Unsigned bool // set for integer literals with a 'u' suffix
}

// Keywords maps identifier text to its keyword Kind when reserved.
var Keywords = map[string]Kind{
	"struct":       KwStruct,
	"return":       KwReturn,
	"if":           KwIf,
	"else":         KwElse,
	"while":        KwWhile,
	"do":           KwDo,
	"for":          KwFor,
	"break":        KwBreak,
	"continue":     KwContinue,
	"discard":      KwDiscard,
	"in":           KwIn,
	"out":          KwOut,
	"inout":        KwInout,
	"static":       KwStatic,
	"const":        KwConst,
	"groupshared":  KwGroupshared,
	"register":     KwRegister,
	"cbuffer":      KwCBuffer,
	"true":         KwTrue,
	"false":        KwFalse,
	"void":         KwVoid,
	"bool":         KwBool,
	"int":          KwInt,
	"uint":         KwUint,
	"float":        KwFloat,
	"half":         KwHalf,
	"double":       KwDouble,
	"min16float":   KwMin16Float,
	"min16int":     KwMin16Int,
	"min16uint":    KwMin16Uint,
	"SamplerState": KwSamplerState,
	"Texture1D":        KwTexture1D,
	"Texture2D":        KwTexture2D,
	"Texture2DArray":   KwTexture2DArray,
	"Texture3D":        KwTexture3D,
	"TextureCube":      KwTextureCube,
	"ConstantBuffer":     KwConstantBuffer,
	"StructuredBuffer":   KwStructuredBuffer,
	"RWStructuredBuffer": KwRWStructuredBuffer,
}
