package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vxc/lang/ast"
	"vxc/lang/lexer"
	"vxc/lang/token"
)

func kinds(t *testing.T, stream lexer.Stream) []token.Kind {
	t.Helper()
	ks := make([]token.Kind, len(stream.Tokens))
	for i, tok := range stream.Tokens {
		ks[i] = tok.Kind
	}
	return ks
}

func TestLexEmptySource(t *testing.T) {
	stream, diags := lexer.Lex(nil)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.EOF}, kinds(t, stream))
}

func TestLexFunctionSignature(t *testing.T) {
	src := []byte("fn add :: (a: i32, b: i32) -> (i32) { return a + b; }")
	stream, diags := lexer.Lex(src)
	require.Empty(t, diags)

	want := []token.Kind{
		token.FN, token.IDENT, token.COLONCOLON, token.LPAREN,
		token.IDENT, token.COLON, token.I32, token.COMMA,
		token.IDENT, token.COLON, token.I32, token.RPAREN,
		token.ARROW, token.LPAREN, token.I32, token.RPAREN,
		token.LBRACE, token.RETURN, token.IDENT, token.PLUS, token.IDENT, token.SEMI,
		token.RBRACE, token.EOF,
	}
	require.Equal(t, want, kinds(t, stream))
	require.Equal(t, []string{"add", "a", "b"}, stream.Identifiers)
}

func TestLexIdentifierDedup(t *testing.T) {
	stream, diags := lexer.Lex([]byte("x x x"))
	require.Empty(t, diags)
	require.Equal(t, []string{"x"}, stream.Identifiers)
	require.Equal(t, int32(0), stream.Tokens[0].Data)
	require.Equal(t, int32(0), stream.Tokens[1].Data)
	require.Equal(t, int32(0), stream.Tokens[2].Data)
}

func TestLexNumericLiterals(t *testing.T) {
	stream, diags := lexer.Lex([]byte("42 3.14 2e3 true false"))
	require.Empty(t, diags)

	require.Len(t, stream.Literals, 5)
	require.Equal(t, ast.NumericLiteral{Type: ast.I32, I32: 42}, stream.Literals[0])
	require.InDelta(t, 3.14, stream.Literals[1].F32, 0.001)
	require.Equal(t, ast.F32, stream.Literals[1].Type)
	require.Equal(t, ast.F32, stream.Literals[2].Type)
	require.InDelta(t, 2000.0, stream.Literals[2].F32, 0.5)
	require.Equal(t, ast.NumericLiteral{Type: ast.B32, B32: true}, stream.Literals[3])
	require.Equal(t, ast.NumericLiteral{Type: ast.B32, B32: false}, stream.Literals[4])
}

func TestLexLineComment(t *testing.T) {
	stream, diags := lexer.Lex([]byte("x // comment\ny"))
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.IDENT, token.IDENT, token.EOF}, kinds(t, stream))
	require.Equal(t, int32(2), stream.Tokens[1].Pos.Line)
}

func TestLexContinuationOperators(t *testing.T) {
	stream, diags := lexer.Lex([]byte("<<= >>= == != <= >= && || += -> ::"))
	require.Empty(t, diags)
	want := []token.Kind{
		token.LTLTEQ, token.GTGTEQ, token.EQEQ, token.NEQ, token.LE, token.GE,
		token.ANDAND, token.OROR, token.PLUSEQ, token.ARROW, token.COLONCOLON, token.EOF,
	}
	require.Equal(t, want, kinds(t, stream))
}

func TestLexInferredDeclaration(t *testing.T) {
	stream, diags := lexer.Lex([]byte("total := 0;"))
	require.Empty(t, diags)
	want := []token.Kind{token.IDENT, token.COLONEQ, token.NUMBER, token.SEMI, token.EOF}
	require.Equal(t, want, kinds(t, stream))
}

func TestLexUnknownByte(t *testing.T) {
	stream, diags := lexer.Lex([]byte("x ` y"))
	require.Len(t, diags, 1)
	require.Equal(t, []token.Kind{token.IDENT, token.ILLEGAL, token.IDENT, token.EOF}, kinds(t, stream))
}

func TestLexStringLiteral(t *testing.T) {
	stream, diags := lexer.Lex([]byte(`"hello world"`))
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.STRING, token.EOF}, kinds(t, stream))
	require.Equal(t, []string{"hello world"}, stream.Strings)
}

func TestLexUnterminatedString(t *testing.T) {
	_, diags := lexer.Lex([]byte(`"hello`))
	require.Len(t, diags, 1)
}
