package clicmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"vxc/lang/analyzer"
	"vxc/lang/codegen"
	"vxc/lang/diag"
	"vxc/lang/parser"
)

// Asm runs the full front end (lex, parse, analyze, generate) and prints the
// resulting NASM text to stdout, without invoking the assembler. Useful for
// golden-file tests and for inspecting codegen output directly.
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	asm, err := compileToAssembly(stdio, args[0])
	if err != nil {
		return err
	}
	_, err = stdio.Stdout.Write(asm)
	return err
}

// compileToAssembly runs the front end over the file at path, reporting any
// diagnostics to stdio.Stderr, and returns the generated NASM text.
func compileToAssembly(stdio mainer.Stdio, path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return nil, err
	}

	prog, diags, ok := parser.Parse(src)
	if !ok {
		reportDiags(stdio, &diags, src)
		return nil, fmt.Errorf("%s: parse failed", path)
	}

	adiags, aok := analyzer.Analyze(prog)
	if !aok {
		reportDiags(stdio, &adiags, src)
		return nil, fmt.Errorf("%s: analysis failed", path)
	}

	return codegen.Generate(prog), nil
}

func reportDiags(stdio mainer.Stdio, diags *diag.List, src []byte) {
	var buf bytes.Buffer
	diags.Print(&buf, src)
	stdio.Stderr.Write(buf.Bytes())
}
