package lexer

import (
	"testing"

	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *diag.List) {
	t.Helper()
	var d diag.List
	toks := New("test.hlsl", src, &d).Tokenize()
	return toks, &d
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	toks, d := tokenize(t, "+ - * / % << >> <= >= == != && || += -=")
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	want := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.LessLess, token.GreaterGreater, token.LessEqual, token.GreaterEqual,
		token.EqualEqual, token.BangEqual, token.AmpAmp, token.PipePipe,
		token.PlusEqual, token.MinusEqual, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexerCompositeTypes(t *testing.T) {
	toks, d := tokenize(t, "float3 int4 uint2 bool1 float4x4 int3x2")
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	cases := []struct {
		kind token.Kind
		vec  token.VectorDesc
	}{
		{token.VectorType, token.VectorDesc{Scalar: token.ScalarFloat, Dim: 3}},
		{token.VectorType, token.VectorDesc{Scalar: token.ScalarInt, Dim: 4}},
		{token.VectorType, token.VectorDesc{Scalar: token.ScalarUint, Dim: 2}},
		{token.VectorType, token.VectorDesc{Scalar: token.ScalarBool, Dim: 1}},
		{token.MatrixType, token.VectorDesc{Scalar: token.ScalarFloat, Cols: 4, Rows: 4}},
		{token.MatrixType, token.VectorDesc{Scalar: token.ScalarInt, Cols: 3, Rows: 2}},
	}
	for i, c := range cases {
		if toks[i].Kind != c.kind {
			t.Fatalf("token %d: kind = %v, want %v", i, toks[i].Kind, c.kind)
		}
		if toks[i].Vec != c.vec {
			t.Errorf("token %d: vec = %+v, want %+v", i, toks[i].Vec, c.vec)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	toks, d := tokenize(t, "42 42u 0x2A 3.14 1.0f 1e3 2.5e-2")
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if toks[0].IntVal != 42 || toks[0].Unsigned {
		t.Errorf("token 0 = %+v", toks[0])
	}
	if toks[1].IntVal != 42 || !toks[1].Unsigned {
		t.Errorf("token 1 = %+v", toks[1])
	}
	if toks[2].IntVal != 42 {
		t.Errorf("token 2 (hex) = %+v", toks[2])
	}
	if toks[3].Kind != token.FloatLiteral || toks[3].FltVal != 3.14 {
		t.Errorf("token 3 = %+v", toks[3])
	}
	if toks[6].Kind != token.FloatLiteral || toks[6].FltVal != 0.025 {
		t.Errorf("token 6 = %+v", toks[6])
	}
}

func TestLexerStringLiteralEscapes(t *testing.T) {
	toks, d := tokenize(t, `"a\nb\tc\\d\"e"`)
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if toks[0].StrVal != "a\nb\tc\\d\"e" {
		t.Errorf("got %q", toks[0].StrVal)
	}
}

func TestLexerUnterminatedStringRecovers(t *testing.T) {
	toks, d := tokenize(t, "\"unterminated\nfloat x")
	if !d.HasErrors() {
		t.Fatalf("expected lex error for unterminated string")
	}
	// Lexing should resume after the line and find the later tokens.
	foundFloat := false
	for _, tk := range toks {
		if tk.Kind == token.KwFloat {
			foundFloat = true
		}
	}
	if !foundFloat {
		t.Errorf("expected lexer to recover and continue scanning")
	}
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks, d := tokenize(t, "struct Foo { float x; }; return main")
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	want := []token.Kind{
		token.KwStruct, token.Ident, token.LBrace, token.KwFloat, token.Ident, token.Semicolon,
		token.RBrace, token.Semicolon, token.KwReturn, token.Ident, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexerComments(t *testing.T) {
	toks, d := tokenize(t, "1 // line comment\n2 /* block\ncomment */ 3")
	if d.HasErrors() {
		t.Fatalf("unexpected errors: %s", d.String())
	}
	if len(toks) != 4 { // 1, 2, 3, EOF
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
}

func TestLexerInvalidCharRecovers(t *testing.T) {
	toks, d := tokenize(t, "1 $ 2")
	if !d.HasErrors() {
		t.Fatalf("expected an error for '$'")
	}
	if toks[0].IntVal != 1 || toks[len(toks)-2].IntVal != 2 {
		t.Errorf("expected recovery to find surrounding tokens: %+v", toks)
	}
}
