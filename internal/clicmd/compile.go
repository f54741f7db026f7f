package clicmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"vxc/internal/platform"
)

// Compile runs the full pipeline: lex, parse, analyze, generate, assemble.
// args[0] is the source path, args[1] the destination object file; the
// intermediate .asm file is written alongside the object file, sharing its
// stem.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	sourcePath, objPath := args[0], args[1]

	asm, err := compileToAssembly(stdio, sourcePath)
	if err != nil {
		return err
	}

	cfg, err := platform.LoadConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	asmPath := strings.TrimSuffix(objPath, objExt(objPath)) + ".asm"
	if err := platform.WriteAssembly(asmPath, asm); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if err := platform.Assemble(ctx, cfg, asmPath, objPath); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}

func objExt(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
