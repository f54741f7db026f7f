package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints a Program's functions and their flattened statement
// trees, indenting by nesting depth. It exists for the "parse" debug command
// and for tests of the parser/analyzer stages; it is never used
// by the generator, which walks the arenas directly.
type Printer struct {
	Output io.Writer
}

// Print writes a human-readable dump of prog to p.Output.
func (p *Printer) Print(prog *Program) error {
	w := &printer{w: p.Output, prog: prog}
	for fi := range prog.Functions {
		w.printFunction(int32(fi))
	}
	return w.err
}

type printer struct {
	w    io.Writer
	prog *Program
	err  error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, err := fmt.Fprintf(p.w, "%s"+format+"\n", append([]any{strings.Repeat(". ", depth)}, args...)...)
	if err != nil {
		p.err = err
	}
}

func (p *printer) printFunction(fi int32) {
	fn := &p.prog.Functions[fi]
	p.line(0, "fn %s [line %d] stack_size=%d", fn.Name, fn.Pos.Line, fn.StackSize)
	for i, param := range fn.Params(p.prog) {
		p.line(1, "param %d: %s %s offset=%d", i, param.Name, param.Type, 16+i*8)
	}

	end := int32(fn.BodyFirstStmt) + fn.BodyStmtCount
	for i := int32(fn.BodyFirstStmt); i < end; {
		i = p.printStmt(i, 1)
	}
}

func (p *printer) printStmt(i int32, depth int) int32 {
	s := p.prog.Stmt(StmtIndex(i))

	switch s.Kind {
	case StmtErr:
		p.line(depth, "<error>")

	case StmtSimple:
		p.line(depth, "expr: %s", p.exprString(s.Expr))

	case StmtDecl:
		p.line(depth, "decl %s: %s", p.exprString(s.LHS), s.Type)

	case StmtDeclAssign:
		p.line(depth, "decl %s: %s = %s", p.exprString(s.LHS), s.Type, p.exprString(s.RHS))

	case StmtReturn:
		if s.RHS == NoExpr {
			p.line(depth, "return")
		} else {
			p.line(depth, "return %s", p.exprString(s.RHS))
		}

	case StmtBlock:
		p.line(depth, "block")
		end := i + 1 + s.ThenCount
		for j := i + 1; j < end; {
			j = p.printStmt(j, depth+1)
		}
		return end

	case StmtBranch:
		p.line(depth, "if %s", p.exprString(s.Expr))
		thenEnd := i + 1 + s.ThenCount
		for j := i + 1; j < thenEnd; {
			j = p.printStmt(j, depth+1)
		}
		end := thenEnd + s.ElseCount
		if s.ElseCount > 0 {
			p.line(depth, "else")
			for j := thenEnd; j < end; {
				j = p.printStmt(j, depth+1)
			}
		}
		return end

	case StmtLoop:
		p.line(depth, "while %s", p.exprString(s.Expr))
		end := i + 1 + s.ThenCount
		for j := i + 1; j < end; {
			j = p.printStmt(j, depth+1)
		}
		return end
	}

	return i + 1
}

func (p *printer) exprString(h ExprHandle) string {
	if h == NoExpr {
		return "<none>"
	}
	e := p.prog.Expr(h)
	switch e.Kind {
	case ExprNumber:
		return fmt.Sprintf("%v", literalValue(e.Lit))
	case ExprString:
		return fmt.Sprintf("%q", p.prog.StringLiterals[e.Str])
	case ExprIdent:
		return fmt.Sprintf("%s@%d", e.Name, e.Offset)
	case ExprUnary:
		return fmt.Sprintf("(%s %s)", e.Op, p.exprString(e.RHS))
	case ExprBinary:
		return fmt.Sprintf("(%s %s %s)", p.exprString(e.LHS), e.Op, p.exprString(e.RHS))
	case ExprAssign:
		return fmt.Sprintf("(%s = %s)", p.exprString(e.LHS), p.exprString(e.RHS))
	case ExprCall:
		var args []string
		for arg := e.FirstArg; arg != NoExpr; {
			args = append(args, p.exprString(arg))
			arg = p.prog.Expr(arg).Next
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	default:
		return "<error>"
	}
}

func literalValue(lit NumericLiteral) any {
	switch lit.Type {
	case B32:
		return lit.B32
	case U32:
		return lit.U32
	case F32:
		return lit.F32
	default:
		return lit.I32
	}
}
