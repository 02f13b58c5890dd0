// Package lexer turns HLSL-like source text into a token stream
// (spec.md §4.2). It skips whitespace and comments, recognizes
// punctuation, compound operators, identifiers/keywords, numeric and
// string literals, and the composite floatN/intN/uintN/boolN/floatNxM
// vector/matrix type forms.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tinyshader/hlslc/diag"
	"github.com/tinyshader/hlslc/token"
)

// Lexer scans a single source file into tokens.
type Lexer struct {
	path   string
	src    string
	pos    int
	start  int
	line   int
	col    int
	startL int
	startC int
	diags  *diag.List
}

// New creates a Lexer for path's contents. Diagnostics are appended to
// diags, shared with later compilation phases (spec.md §4.1).
func New(path, src string, diags *diag.List) *Lexer {
	return &Lexer{path: path, src: src, line: 1, col: 1, diags: diags}
}

// Tokenize scans the entire source and returns the resulting token
// stream, always terminated by a single token.EOF token. Lexical
// errors are appended to diags and scanning resumes after the next
// whitespace run (spec.md §4.2), so Tokenize never fails outright.
func (l *Lexer) Tokenize() []token.Token {
	estimate := len(l.src)/4 + 16
	toks := make([]token.Token, 0, estimate)
	for {
		l.skipTrivia()
		if l.atEnd() {
			break
		}
		l.start = l.pos
		l.startL, l.startC = l.line, l.col
		tok, ok := l.scanOne()
		if ok {
			toks = append(toks, tok)
		}
	}
	toks = append(toks, token.Token{Kind: token.EOF, Loc: l.loc(l.pos, 0)})
	return toks
}

func (l *Lexer) loc(start, length int) token.Location {
	return token.Location{Path: l.path, Offset: start, Length: length, Line: l.startL, Col: l.startC}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advanceRune() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) matchByte(b byte) bool {
	if l.peekByte() == b {
		l.pos++
		l.col++
		return true
	}
	return false
}

// skipTrivia skips whitespace and line/block comments.
func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advanceRune()
		case '/':
			if l.peekByteAt(1) == '/' {
				for !l.atEnd() && l.peekByte() != '\n' {
					l.advanceRune()
				}
			} else if l.peekByteAt(1) == '*' {
				l.advanceRune()
				l.advanceRune()
				for !l.atEnd() && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
					l.advanceRune()
				}
				if !l.atEnd() {
					l.advanceRune()
					l.advanceRune()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

// skipToWhitespace implements the §4.2 error-recovery rule: continue
// scanning after the next whitespace.
func (l *Lexer) skipToWhitespace() {
	for !l.atEnd() {
		b := l.peekByte()
		l.advanceRune()
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			return
		}
	}
}

//nolint:gocyclo,cyclop,funlen // single dispatch over the full punctuation/operator set
func (l *Lexer) scanOne() (token.Token, bool) {
	b := l.peekByte()

	switch {
	case b == '"':
		return l.scanString()
	case b >= '0' && b <= '9':
		return l.scanNumber()
	case isIdentStart(rune(b)):
		return l.scanIdentOrKeywordOrComposite()
	}

	r := l.advanceRune()
	mk := func(k token.Kind) (token.Token, bool) {
		return token.Token{Kind: k, Loc: l.loc(l.start, l.pos-l.start)}, true
	}

	switch r {
	case '(':
		return mk(token.LParen)
	case ')':
		return mk(token.RParen)
	case '{':
		return mk(token.LBrace)
	case '}':
		return mk(token.RBrace)
	case '[':
		return mk(token.LBracket)
	case ']':
		return mk(token.RBracket)
	case ',':
		return mk(token.Comma)
	case '.':
		return mk(token.Dot)
	case ':':
		return mk(token.Colon)
	case ';':
		return mk(token.Semicolon)
	case '?':
		return mk(token.Question)
	case '~':
		return mk(token.Tilde)
	case '+':
		if l.matchByte('+') {
			return mk(token.PlusPlus)
		}
		if l.matchByte('=') {
			return mk(token.PlusEqual)
		}
		return mk(token.Plus)
	case '-':
		if l.matchByte('-') {
			return mk(token.MinusMinus)
		}
		if l.matchByte('=') {
			return mk(token.MinusEqual)
		}
		return mk(token.Minus)
	case '*':
		if l.matchByte('=') {
			return mk(token.StarEqual)
		}
		return mk(token.Star)
	case '/':
		if l.matchByte('=') {
			return mk(token.SlashEqual)
		}
		return mk(token.Slash)
	case '%':
		if l.matchByte('=') {
			return mk(token.PercentEqual)
		}
		return mk(token.Percent)
	case '&':
		if l.matchByte('&') {
			return mk(token.AmpAmp)
		}
		if l.matchByte('=') {
			return mk(token.AmpEqual)
		}
		return mk(token.Amp)
	case '|':
		if l.matchByte('|') {
			return mk(token.PipePipe)
		}
		if l.matchByte('=') {
			return mk(token.PipeEqual)
		}
		return mk(token.Pipe)
	case '^':
		if l.matchByte('=') {
			return mk(token.CaretEqual)
		}
		return mk(token.Caret)
	case '!':
		if l.matchByte('=') {
			return mk(token.BangEqual)
		}
		return mk(token.Bang)
	case '=':
		if l.matchByte('=') {
			return mk(token.EqualEqual)
		}
		return mk(token.Assign)
	case '<':
		if l.matchByte('<') {
			if l.matchByte('=') {
				return mk(token.LessLessEqual)
			}
			return mk(token.LessLess)
		}
		if l.matchByte('=') {
			return mk(token.LessEqual)
		}
		return mk(token.Less)
	case '>':
		if l.matchByte('>') {
			if l.matchByte('=') {
				return mk(token.GreaterGreaterEqual)
			}
			return mk(token.GreaterGreater)
		}
		if l.matchByte('=') {
			return mk(token.GreaterEqual)
		}
		return mk(token.Greater)
	default:
		l.diags.Add(l.loc(l.start, l.pos-l.start), "invalid character %q", r)
		l.skipToWhitespace()
		return token.Token{}, false
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanString() (token.Token, bool) {
	l.advanceRune() // opening quote
	var sb strings.Builder
	closed := false
	for !l.atEnd() {
		b := l.peekByte()
		if b == '"' {
			l.advanceRune()
			closed = true
			break
		}
		if b == '\n' {
			break
		}
		if b == '\\' {
			l.advanceRune()
			e := l.peekByte()
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(e)
			}
			l.advanceRune()
			continue
		}
		sb.WriteRune(l.advanceRune())
	}
	if !closed {
		l.diags.Add(l.loc(l.start, l.pos-l.start), "unterminated string literal")
		l.skipToWhitespace()
		return token.Token{}, false
	}
	return token.Token{Kind: token.StringLiteral, StrVal: sb.String(), Loc: l.loc(l.start, l.pos-l.start)}, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

//nolint:gocyclo,cyclop // number scanning has many small branches by design
func (l *Lexer) scanNumber() (token.Token, bool) {
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.advanceRune()
		l.advanceRune()
		for isHexDigit(l.peekByte()) {
			l.advanceRune()
		}
		unsigned := false
		if l.peekByte() == 'u' || l.peekByte() == 'U' {
			unsigned = true
			l.advanceRune()
		}
		text := l.src[l.start+2 : l.pos]
		v, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimSuffix(text, "u"), "U"), 16, 64)
		if err != nil {
			l.diags.Add(l.loc(l.start, l.pos-l.start), "invalid hex integer literal")
			return token.Token{}, false
		}
		return token.Token{Kind: token.IntLiteral, IntVal: int64(v), Unsigned: unsigned, Loc: l.loc(l.start, l.pos-l.start)}, true
	}

	isFloat := false
	for isDigit(l.peekByte()) {
		l.advanceRune()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) || (l.peekByte() == '.' && !isIdentStart(rune(l.peekByteAt(1)))) {
		isFloat = true
		l.advanceRune()
		for isDigit(l.peekByte()) {
			l.advanceRune()
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.pos
		l.advanceRune()
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.advanceRune()
		}
		if isDigit(l.peekByte()) {
			isFloat = true
			for isDigit(l.peekByte()) {
				l.advanceRune()
			}
		} else {
			l.pos = save
		}
	}

	text := l.src[l.start:l.pos]
	unsigned := false
	if !isFloat && (l.peekByte() == 'u' || l.peekByte() == 'U') {
		unsigned = true
		l.advanceRune()
	} else if l.peekByte() == 'f' || l.peekByte() == 'F' {
		isFloat = true
		l.advanceRune()
	}

	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.diags.Add(l.loc(l.start, l.pos-l.start), "invalid floating literal")
			return token.Token{}, false
		}
		return token.Token{Kind: token.FloatLiteral, FltVal: v, Loc: l.loc(l.start, l.pos-l.start)}, true
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.diags.Add(l.loc(l.start, l.pos-l.start), "invalid integer literal")
		return token.Token{}, false
	}
	return token.Token{Kind: token.IntLiteral, IntVal: v, Unsigned: unsigned, Loc: l.loc(l.start, l.pos-l.start)}, true
}

// compositeScalar maps the leading type-name prefix of an identifier
// to a scalar kind, for floatN/intN/uintN/boolN/floatNxM recognition.
var compositeScalar = map[string]token.ScalarKind{
	"float": token.ScalarFloat,
	"int":   token.ScalarInt,
	"uint":  token.ScalarUint,
	"bool":  token.ScalarBool,
	"half":  token.ScalarHalf,
}

func (l *Lexer) scanIdentOrKeywordOrComposite() (token.Token, bool) {
	for !l.atEnd() && (isIdentCont(rune(l.peekByte())) || l.peekByte() >= 0x80) {
		l.advanceRune()
	}
	text := l.src[l.start:l.pos]
	loc := l.loc(l.start, l.pos-l.start)

	if desc, ok := parseComposite(text); ok {
		kind := token.VectorType
		if desc.Cols > 0 {
			kind = token.MatrixType
		}
		return token.Token{Kind: kind, Vec: desc, Loc: loc}, true
	}

	if kw, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kw, Ident: text, Loc: loc}, true
	}
	return token.Token{Kind: token.Ident, Ident: text, Loc: loc}, true
}

// parseComposite recognizes floatN, intN, uintN, boolN (N in 1..4) and
// floatNxM / intNxM / uintNxM (N, M in 2..4) composite type names
// (spec.md §4.2).
func parseComposite(text string) (token.VectorDesc, bool) {
	for prefix, scalar := range compositeScalar {
		if !strings.HasPrefix(text, prefix) {
			continue
		}
		rest := text[len(prefix):]
		if rest == "" {
			continue
		}
		if xi := strings.IndexByte(rest, 'x'); xi > 0 {
			n, errN := strconv.Atoi(rest[:xi])
			m, errM := strconv.Atoi(rest[xi+1:])
			if errN == nil && errM == nil && n >= 2 && n <= 4 && m >= 2 && m <= 4 {
				return token.VectorDesc{Scalar: scalar, Cols: n, Rows: m}, true
			}
			continue
		}
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= 4 {
			return token.VectorDesc{Scalar: scalar, Dim: n}, true
		}
	}
	return token.VectorDesc{}, false
}
