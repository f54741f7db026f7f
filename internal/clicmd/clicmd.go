// Package clicmd implements vxc's command-line dispatch: argument parsing
// via github.com/mna/mainer and a reflection-driven table mapping
// subcommand names to Cmd methods.
package clicmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "vxc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s <command> <source> [<object>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s <command> <source> [<object>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the vx programming language, emitting NASM x86-64 assembly
under the Windows x64 calling convention.

The <command> can be one of:
       compile <source> <object> Run the full pipeline: lex, parse,
                                 analyze, generate, assemble.
       tokenize <source>         Run only the lexer and print the token
                                 stream.
       parse <source>            Run the lexer and parser and print the
                                 resulting AST.
       asm <source>              Run the full front end and print the
                                 generated NASM text to stdout, without
                                 invoking the assembler.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is the top-level command dispatcher, populated by mainer.Parser from
// os.Args (environment variables are not read).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	cmds := buildCmds(c)
	c.cmdFn = cmds[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	rest := c.args[1:]
	switch cmdName {
	case "compile":
		if len(rest) != 2 {
			return errors.New("compile: expected <source> and <object>")
		}
	case "tokenize", "parse", "asm":
		if len(rest) != 1 {
			return fmt.Errorf("%s: expected a single <source> argument", cmdName)
		}
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds turns v's exported "context, Stdio, []string -> error" methods
// into a name-indexed dispatch table, lowercasing the method name to form
// the subcommand string.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
