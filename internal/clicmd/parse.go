package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"vxc/lang/ast"
	"vxc/lang/parser"
)

// Parse runs the lexer and parser over a single source file and prints the
// resulting AST. It does not run the analyzer, so stack offsets and
// resolved call targets are not yet filled in.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	prog, diags, ok := parser.Parse(src)
	printer := ast.Printer{Output: stdio.Stdout}
	if perr := printer.Print(prog); perr != nil {
		fmt.Fprintln(stdio.Stderr, perr)
		return perr
	}

	if !ok {
		for _, d := range diags.All() {
			fmt.Fprintln(stdio.Stderr, d.String())
		}
		return fmt.Errorf("%s: parse failed", args[0])
	}
	return nil
}
