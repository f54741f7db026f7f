// Package lexer turns a source buffer into a linear token stream, with side
// tables for identifier text and numeric literal values.
package lexer

import (
	"github.com/dolthub/swiss"

	"vxc/lang/ast"
	"vxc/lang/token"
)

// maxNumericLiteralLen bounds the lexeme length of a single numeric
// literal. The reference implementation buffers literals in a fixed
// 32-byte stack buffer and leaves overflow undefined; this lexer instead
// reports it as a lexical error, but keeps the same documented limit.
const maxNumericLiteralLen = 32

// Token is a single lexical token: a fixed-size record carrying its kind,
// source location, and (for NUMBER, IDENT and STRING kinds) an index into
// the side table Stream identifies by kind.
type Token struct {
	Kind token.Kind
	Pos  token.Pos
	Data int32
}

// Stream is the full output of lexing one source buffer.
type Stream struct {
	Tokens      []Token
	Identifiers []string
	Literals    []ast.NumericLiteral
	Strings     []string
}

// Diagnostic is a lexical-level problem: an unrecognized byte, an
// over-length numeric literal or an unterminated string literal. The lexer
// never fails outright: it records a diagnostic and keeps going (an
// unrecognized byte becomes an ILLEGAL token; the other two still produce
// their NUMBER or STRING token), leaving it to the parser to surface the
// problem.
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

// Lex scans the entirety of src and returns the resulting token stream plus
// any lexical diagnostics encountered along the way.
func Lex(src []byte) (Stream, []Diagnostic) {
	l := &lexer{src: src, line: 1}
	return l.run()
}

type lexer struct {
	src  []byte
	off  int32
	line int32

	diags []Diagnostic
	out   Stream

	idents *swiss.Map[string, int32]
}

func (l *lexer) run() (Stream, []Diagnostic) {
	l.idents = swiss.NewMap[string, int32](16)

	for {
		tok, done := l.next()
		l.out.Tokens = append(l.out.Tokens, tok)
		if done {
			break
		}
	}
	return l.out, l.diags
}

func (l *lexer) error(pos token.Pos, msg string) {
	l.diags = append(l.diags, Diagnostic{Pos: pos, Msg: msg})
}

func (l *lexer) peekAt(off int32) byte {
	if int(off) >= len(l.src) {
		return 0
	}
	return l.src[off]
}

func (l *lexer) cur() byte { return l.peekAt(l.off) }

// next scans and returns the next token. done is true once the returned
// token is the EOF token.
func (l *lexer) next() (tok Token, done bool) {
	l.skipWhitespaceAndComments()

	pos := token.Pos{Line: l.line, Offset: l.off}

	if int(l.off) >= len(l.src) {
		return Token{Kind: token.EOF, Pos: pos}, true
	}

	c := l.cur()
	switch {
	case isLetter(c):
		return l.lexIdentOrKeyword(pos), false
	case isDigit(c):
		return l.lexNumber(pos), false
	case c == '"':
		return l.lexString(pos), false
	}

	if base, ok := token.CharToKind(c); ok {
		l.off++
		kind := base
		for {
			next, ok := token.Continue(kind, l.cur())
			if !ok {
				break
			}
			kind = next
			l.off++
		}
		return Token{Kind: kind, Pos: pos}, false
	}

	l.error(pos, "unknown byte")
	l.off++
	return Token{Kind: token.ILLEGAL, Pos: pos}, false
}

func (l *lexer) skipWhitespaceAndComments() {
	for int(l.off) < len(l.src) {
		c := l.cur()
		switch {
		case c == '\n':
			l.line++
			l.off++
		case isSpace(c):
			l.off++
		case c == '/' && l.peekAt(l.off+1) == '/':
			for int(l.off) < len(l.src) && l.cur() != '\n' {
				l.off++
			}
		default:
			return
		}
	}
}

func (l *lexer) lexIdentOrKeyword(pos token.Pos) Token {
	start := l.off
	for int(l.off) < len(l.src) && isIdentCont(l.cur()) {
		l.off++
	}
	text := string(l.src[start:l.off])

	switch text {
	case "true":
		idx := int32(len(l.out.Literals))
		l.out.Literals = append(l.out.Literals, ast.NumericLiteral{Type: ast.B32, B32: true})
		return Token{Kind: token.NUMBER, Pos: pos, Data: idx}
	case "false":
		idx := int32(len(l.out.Literals))
		l.out.Literals = append(l.out.Literals, ast.NumericLiteral{Type: ast.B32, B32: false})
		return Token{Kind: token.NUMBER, Pos: pos, Data: idx}
	}

	if kw := token.LookupIdent(text); kw != token.IDENT {
		return Token{Kind: kw, Pos: pos}
	}

	idx, ok := l.idents.Get(text)
	if !ok {
		idx = int32(len(l.out.Identifiers))
		l.out.Identifiers = append(l.out.Identifiers, text)
		l.idents.Put(text, idx)
	}
	return Token{Kind: token.IDENT, Pos: pos, Data: idx}
}

// lexNumber scans an integer or float literal. Integers are [0-9]+; a
// single '.' and/or a single lowercase 'e' promotes the literal to F32.
func (l *lexer) lexNumber(pos token.Pos) Token {
	start := l.off
	lit := ast.NumericLiteral{Type: ast.I32}
	eFound := false

	for int(l.off) < len(l.src) {
		c := l.cur()
		if isDigit(c) {
			l.off++
			continue
		}
		if lit.Type == ast.I32 && c == '.' {
			lit.Type = ast.F32
			l.off++
			continue
		}
		if c == 'e' && !eFound {
			lit.Type = ast.F32
			eFound = true
			l.off++
			continue
		}
		break
	}

	text := l.src[start:l.off]
	if len(text) > maxNumericLiteralLen {
		l.error(pos, "numeric literal exceeds implementation limit of 32 bytes")
	}

	switch lit.Type {
	case ast.I32:
		lit.I32 = parseI32(text)
	case ast.F32:
		lit.F32 = parseF32(text)
	}

	idx := int32(len(l.out.Literals))
	l.out.Literals = append(l.out.Literals, lit)
	return Token{Kind: token.NUMBER, Pos: pos, Data: idx}
}

// lexString scans a string literal delimited by ASCII double quotes, with
// no escape processing.
func (l *lexer) lexString(pos token.Pos) Token {
	l.off++ // opening quote
	start := l.off
	for int(l.off) < len(l.src) && l.cur() != '"' && l.cur() != '\n' {
		l.off++
	}
	text := string(l.src[start:l.off])
	if int(l.off) < len(l.src) && l.cur() == '"' {
		l.off++
	} else {
		l.error(pos, "unterminated string literal")
	}

	idx := int32(len(l.out.Strings))
	l.out.Strings = append(l.out.Strings, text)
	return Token{Kind: token.STRING, Pos: pos, Data: idx}
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }
func isIdentCont(c byte) bool {
	return isLetter(c) || isDigit(c)
}

func parseI32(b []byte) int32 {
	var v int64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int64(c-'0')
	}
	return int32(v)
}

func parseF32(b []byte) float32 {
	var intPart, fracPart int64
	var fracDiv float64 = 1
	var exp int64
	var expNeg bool
	i := 0
	n := len(b)
	for i < n && b[i] >= '0' && b[i] <= '9' {
		intPart = intPart*10 + int64(b[i]-'0')
		i++
	}
	if i < n && b[i] == '.' {
		i++
		for i < n && b[i] >= '0' && b[i] <= '9' {
			fracPart = fracPart*10 + int64(b[i]-'0')
			fracDiv *= 10
			i++
		}
	}
	if i < n && b[i] == 'e' {
		i++
		if i < n && (b[i] == '+' || b[i] == '-') {
			expNeg = b[i] == '-'
			i++
		}
		for i < n && b[i] >= '0' && b[i] <= '9' {
			exp = exp*10 + int64(b[i]-'0')
			i++
		}
	}
	val := float64(intPart) + float64(fracPart)/fracDiv
	for e := int64(0); e < exp; e++ {
		if expNeg {
			val /= 10
		} else {
			val *= 10
		}
	}
	return float32(val)
}
