// Package parser turns a lexed token stream into an arena-allocated AST
// (vxc/lang/ast), using precedence climbing for expressions and recursive
// descent for statements and function declarations.
//
// Parsing never aborts on the first error: every expect/consume failure
// records a diagnostic and enters panic mode, discarding tokens up to the
// next ';' or EOF before resuming at the next statement, so a single run
// surfaces every syntax error in the source rather than just the first.
package parser

import (
	"vxc/lang/ast"
	"vxc/lang/diag"
	"vxc/lang/lexer"
	"vxc/lang/token"
)

// Parse lexes and parses src, returning the populated program, the
// accumulated diagnostics from both phases, and whether parsing succeeded
// (the AND of every construct's own success).
func Parse(src []byte) (*ast.Program, diag.List, bool) {
	stream, lexDiags := lexer.Lex(src)

	p := &parser{
		stream: stream,
		prog:   ast.NewProgram(src),
		ok:     true,
	}
	for _, d := range lexDiags {
		p.diags.Add(d.Pos, "%s", d.Msg)
	}

	p.parseProgram()
	return p.prog, p.diags, p.ok && !p.diags.HasErrors()
}

// errPanicMode is the sentinel panicked with by expect on a mismatch; it is
// recovered at the statement and function-declaration boundary.
type errPanicMode struct{}

type parser struct {
	stream lexer.Stream
	pos    int32

	prog  *ast.Program
	diags diag.List
	ok    bool
}

func (p *parser) cur() lexer.Token { return p.stream.Tokens[p.pos] }

func (p *parser) curKind() token.Kind { return p.cur().Kind }

func (p *parser) advance() {
	if int(p.pos) < len(p.stream.Tokens)-1 {
		p.pos++
	}
}

// at reports whether the current token has kind k.
func (p *parser) at(k token.Kind) bool { return p.curKind() == k }

// expect consumes and returns the current token if it has kind k; otherwise
// it records a diagnostic and enters panic mode.
func (p *parser) expect(k token.Kind) lexer.Token {
	tok := p.cur()
	if tok.Kind != k {
		p.errorExpected(k)
		panic(errPanicMode{})
	}
	p.advance()
	return tok
}

func (p *parser) errorExpected(want token.Kind) {
	p.error(p.cur().Pos, "expected %s, found %s", want.GoString(), p.curKind().GoString())
}

func (p *parser) error(pos token.Pos, format string, args ...any) {
	p.ok = false
	p.diags.Add(pos, format, args...)
}

// identName resolves an IDENT token to its source text.
func (p *parser) identName(tok lexer.Token) string {
	return p.stream.Identifiers[tok.Data]
}

// sync discards tokens until the next ';' or EOF, then consumes the ';' if
// present. This is the panic-mode recovery synchronization point, shared by
// statement and function-declaration recovery.
func (p *parser) sync() {
	for !p.at(token.SEMI) && !p.at(token.EOF) {
		p.advance()
	}
	if p.at(token.SEMI) {
		p.advance()
	}
}

// dataTypeOf maps a primitive type-name token to its DataType, or Unknown
// if tok is not a type name (the caller has already reported an error in
// that case).
func dataTypeOf(k token.Kind) ast.DataType {
	switch k {
	case token.B32:
		return ast.B32
	case token.U32:
		return ast.U32
	case token.I32:
		return ast.I32
	case token.F32:
		return ast.F32
	}
	return ast.Unknown
}

func isTypeName(k token.Kind) bool {
	return k == token.B32 || k == token.U32 || k == token.I32 || k == token.F32
}
