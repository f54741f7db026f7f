package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"vxc/lang/ast"
	"vxc/lang/lexer"
	"vxc/lang/token"
)

// Tokenize runs the lexer over a single source file and prints one token
// per line: "LINE <n>: <kind> [<text>]".
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	stream, diags := lexer.Lex(src)
	for _, tok := range stream.Tokens {
		fmt.Fprintf(stdio.Stdout, "LINE %d: %s", tok.Pos.Line, tok.Kind)
		if text := tokenText(stream, tok); text != "" {
			fmt.Fprintf(stdio.Stdout, " %s", text)
		}
		fmt.Fprintln(stdio.Stdout)
	}

	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintf(stdio.Stderr, "LINE %d: %s\n", d.Pos.Line, d.Msg)
		}
		return fmt.Errorf("%s: %d lexical error(s)", args[0], len(diags))
	}
	return nil
}

// tokenText renders the side-table payload of tok, if any: Data addresses
// Identifiers for IDENT, Literals for NUMBER, or Strings for STRING,
// depending on tok.Kind.
func tokenText(s lexer.Stream, tok lexer.Token) string {
	switch tok.Kind {
	case token.IDENT:
		return s.Identifiers[tok.Data]
	case token.STRING:
		return fmt.Sprintf("%q", s.Strings[tok.Data])
	case token.NUMBER:
		return fmt.Sprintf("%v", literalText(s.Literals[tok.Data]))
	default:
		return ""
	}
}

func literalText(lit ast.NumericLiteral) any {
	switch lit.Type {
	case ast.B32:
		return lit.B32
	case ast.U32:
		return lit.U32
	case ast.F32:
		return lit.F32
	default:
		return lit.I32
	}
}
