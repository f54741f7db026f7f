// Package codegen lowers a fully analyzed vxc/lang/ast.Program to NASM
// x86-64 assembly text, targeting the Windows x64 calling convention.
//
// Expressions lower in stack-machine style: every intermediate result is
// pushed, and an operator pops its operands immediately before emitting
// itself. This is simple to generate at the cost of redundant push/pop
// traffic a peephole pass could remove; the generator does not attempt one.
package codegen

import (
	"bytes"
	"fmt"
	"math"

	"vxc/lang/ast"
	"vxc/lang/token"
)

// argRegisters holds the Windows x64 integer argument registers in order.
var argRegisters = [4]string{"rcx", "rdx", "r8", "r9"}

// Generate lowers prog to a single NASM source buffer. prog must already
// have been successfully analyzed: code generation assumes every
// ExprIdent.Offset and ExprCall.FuncIndex has been resolved and every
// Function.StackSize computed.
func Generate(prog *ast.Program) []byte {
	g := &generator{prog: prog}

	g.text.WriteString("bits 64\n")
	g.text.WriteString("default rel\n")
	g.text.WriteString("segment .text\n")
	g.text.WriteString("global __main\n")
	g.text.WriteString("extern ExitProcess\n")

	for i := range prog.Functions {
		g.genFunction(&prog.Functions[i])
	}
	g.genEntryPoint()

	out := g.text
	if g.data.Len() > 0 {
		out.WriteString("segment .data\n")
		out.Write(g.data.Bytes())
	}
	return out.Bytes()
}

type generator struct {
	prog *ast.Program
	text bytes.Buffer
	data bytes.Buffer

	label int32
}

// newLabel returns a fresh, function-local-in-spirit but module-unique
// label name; the counter lives on the generator instance rather than as
// package state, so nothing stops a caller from running two generators
// concurrently over independent programs.
func (g *generator) newLabel() string {
	g.label++
	return fmt.Sprintf(".L%d", g.label)
}

// funcLabel returns the NASM label for a user-declared function, per the
// single-underscore prefix convention the entry point itself (__main)
// relies on: "main" compiles to "_main", which __main (literally
// "_" + "_main") then calls.
func funcLabel(name string) string { return "_" + name }

func (g *generator) genFunction(fn *ast.Function) {
	fmt.Fprintf(&g.text, "%s:\n", funcLabel(fn.Name))
	g.text.WriteString("    push rbp\n")
	g.text.WriteString("    mov rbp, rsp\n")
	fmt.Fprintf(&g.text, "    sub rsp, %d\n", fn.StackSize)

	params := fn.Params(g.prog)
	for i := 0; i < len(params) && i < len(argRegisters); i++ {
		fmt.Fprintf(&g.text, "    mov QWORD [rbp+%d], %s\n", 16+i*8, argRegisters[i])
	}

	bodyStart := int32(fn.BodyFirstStmt)
	g.genStatements(bodyStart, fn.BodyStmtCount)
	if !g.alwaysReturns(bodyStart, fn.BodyStmtCount) {
		// Falling off the end of a function with no return is not an
		// analyzer error; emit an implicit "return 0" rather than leaving
		// rax holding whatever the last expression left behind.
		g.text.WriteString("    xor rax, rax\n")
		g.text.WriteString("    leave\n")
		g.text.WriteString("    ret\n")
	}
	g.text.WriteString("\n")
}

// alwaysReturns reports whether the count statements starting at start are
// guaranteed to execute a StmtReturn on every path: the span is non-empty
// and its last top-level statement is either a return, a block whose own
// statements always return, or a branch with an else clause where both
// arms always return. A loop never counts, since its condition may be
// false on entry or never false at all; neither can be decided here.
func (g *generator) alwaysReturns(start, count int32) bool {
	if count == 0 {
		return false
	}

	end := start + count
	last := start
	for i := start; i < end; {
		last = i
		i = i + 1 + g.prog.Stmt(ast.StmtIndex(i)).DescendantCount()
	}

	s := g.prog.Stmt(ast.StmtIndex(last))
	switch s.Kind {
	case ast.StmtReturn:
		return true
	case ast.StmtBlock:
		return g.alwaysReturns(last+1, s.ThenCount)
	case ast.StmtBranch:
		if s.ElseCount == 0 {
			return false
		}
		return g.alwaysReturns(last+1, s.ThenCount) && g.alwaysReturns(last+1+s.ThenCount, s.ElseCount)
	default:
		return false
	}
}

// genEntryPoint emits the synthetic __main label that every program
// produces regardless of whether a "main" function was declared: it calls
// main, pushes the i32 result as ExitProcess's exit-code argument, and
// never returns.
func (g *generator) genEntryPoint() {
	g.text.WriteString("__main:\n")
	g.text.WriteString("    call " + funcLabel("main") + "\n")
	g.text.WriteString("    push rax\n")
	g.text.WriteString("    pop rcx\n")
	g.text.WriteString("    call ExitProcess\n")
}

// genStatements lowers the count statements starting at index start,
// advancing past a composite statement's whole subtree in one step using
// its descendant count.
func (g *generator) genStatements(start, count int32) {
	end := start + count
	for i := start; i < end; {
		i = g.genStmt(i)
	}
}

func (g *generator) genStmt(i int32) int32 {
	s := g.prog.Stmt(ast.StmtIndex(i))

	switch s.Kind {
	case ast.StmtErr:
		// Nothing to emit; the parser already reported this statement.

	case ast.StmtSimple:
		g.genExpr(s.Expr)

	case ast.StmtDecl:
		// No initializer: the frame slot exists but nothing is stored to it.

	case ast.StmtDeclAssign:
		g.genExpr(s.RHS)
		g.text.WriteString("    pop rax\n")
		fmt.Fprintf(&g.text, "    mov [rbp%+d], rax\n", g.prog.Expr(s.LHS).Offset)

	case ast.StmtReturn:
		if s.RHS != ast.NoExpr {
			g.genExpr(s.RHS)
			g.text.WriteString("    pop rax\n")
		}
		g.text.WriteString("    leave\n")
		g.text.WriteString("    ret\n")

	case ast.StmtBlock:
		g.genStatements(i+1, s.ThenCount)
		return i + 1 + s.ThenCount

	case ast.StmtBranch:
		g.genBranch(s, i)
		return i + 1 + s.ThenCount + s.ElseCount

	case ast.StmtLoop:
		g.genLoop(s, i)
		return i + 1 + s.ThenCount
	}

	return i + 1
}

func (g *generator) genBranch(s *ast.Stmt, i int32) {
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.genExpr(s.Expr)
	g.text.WriteString("    pop rax\n")
	g.text.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(&g.text, "    je %s\n", elseLabel)

	g.genStatements(i+1, s.ThenCount)
	if s.ElseCount > 0 {
		fmt.Fprintf(&g.text, "    jmp %s\n", endLabel)
	}

	fmt.Fprintf(&g.text, "%s:\n", elseLabel)
	if s.ElseCount > 0 {
		g.genStatements(i+1+s.ThenCount, s.ElseCount)
		fmt.Fprintf(&g.text, "%s:\n", endLabel)
	}
}

func (g *generator) genLoop(s *ast.Stmt, i int32) {
	bodyLabel := g.newLabel()
	condLabel := g.newLabel()

	fmt.Fprintf(&g.text, "    jmp %s\n", condLabel)
	fmt.Fprintf(&g.text, "%s:\n", bodyLabel)
	g.genStatements(i+1, s.ThenCount)

	fmt.Fprintf(&g.text, "%s:\n", condLabel)
	g.genExpr(s.Expr)
	g.text.WriteString("    pop rax\n")
	g.text.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(&g.text, "    jne %s\n", bodyLabel)
}

// genExpr lowers the expression addressed by h, leaving its result pushed
// on top of the runtime stack.
func (g *generator) genExpr(h ast.ExprHandle) {
	e := g.prog.Expr(h)

	switch e.Kind {
	case ast.ExprNumber:
		fmt.Fprintf(&g.text, "    mov rax, %s\n", formatLiteral(e.Lit))
		g.text.WriteString("    push rax\n")

	case ast.ExprString:
		label := g.internString(e.Str)
		fmt.Fprintf(&g.text, "    lea rax, [rel %s]\n", label)
		g.text.WriteString("    push rax\n")

	case ast.ExprIdent:
		fmt.Fprintf(&g.text, "    push QWORD [rbp%+d]\n", e.Offset)

	case ast.ExprUnary:
		g.genUnary(e)

	case ast.ExprBinary:
		g.genBinary(e)

	case ast.ExprAssign:
		g.genExpr(e.RHS)
		g.text.WriteString("    pop rax\n")
		fmt.Fprintf(&g.text, "    mov [rbp%+d], rax\n", g.prog.Expr(e.LHS).Offset)
		g.text.WriteString("    push rax\n")

	case ast.ExprCall:
		g.genCall(e)
	}
}

func formatLiteral(lit ast.NumericLiteral) string {
	switch lit.Type {
	case ast.B32:
		if lit.B32 {
			return "1"
		}
		return "0"
	case ast.U32:
		return fmt.Sprintf("%d", lit.U32)
	case ast.F32:
		// The stack machine only moves integer-sized cells; literal floats
		// are carried as their IEEE-754 bit pattern through rax.
		return fmt.Sprintf("%d", math.Float32bits(lit.F32))
	default:
		return fmt.Sprintf("%d", lit.I32)
	}
}

func (g *generator) internString(idx int32) string {
	label := fmt.Sprintf(".Lstr%d", idx)
	fmt.Fprintf(&g.data, "%s: db %s, 0\n", label, nasmQuote(g.prog.StringLiterals[idx]))
	return label
}

// nasmQuote renders s as a NASM double-quoted string literal. The source
// language's strings contain no escapes (a documented lexer limitation),
// so the only character requiring attention here is an embedded quote.
func nasmQuote(s string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			b.WriteByte('"')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func (g *generator) genUnary(e *ast.Expr) {
	switch e.Op {
	case token.BANG:
		g.genExpr(e.RHS)
		g.text.WriteString("    pop rax\n")
		g.text.WriteString("    cmp rax, 0\n")
		g.text.WriteString("    sete al\n")
		g.text.WriteString("    movzx eax, al\n")
		g.text.WriteString("    push rax\n")

	default:
		g.genExpr(e.RHS)
		g.text.WriteString("    pop rax\n")
		switch e.Op {
		case token.MINUS:
			g.text.WriteString("    neg rax\n")
		case token.TILDE:
			g.text.WriteString("    not rax\n")
		}
		g.text.WriteString("    push rax\n")
	}
}

// genBinary lowers a binary expression. && and || short-circuit rather
// than always evaluating both operands; every other operator evaluates
// both sides (left then right), pops rbx (rhs) then rax (lhs), and applies
// its per-operator instruction mapping.
func (g *generator) genBinary(e *ast.Expr) {
	switch e.Op {
	case token.ANDAND:
		g.genShortCircuit(e, true)
		return
	case token.OROR:
		g.genShortCircuit(e, false)
		return
	}

	g.genExpr(e.LHS)
	g.genExpr(e.RHS)
	g.text.WriteString("    pop rbx\n")
	g.text.WriteString("    pop rax\n")

	switch e.Op {
	case token.PIPE:
		g.text.WriteString("    or rax, rbx\n")
	case token.CARET:
		g.text.WriteString("    xor rax, rbx\n")
	case token.AMP:
		g.text.WriteString("    and rax, rbx\n")
	case token.EQEQ:
		g.emitCompare("sete")
	case token.NEQ:
		g.emitCompare("setne")
	case token.LT:
		g.emitCompare("setl")
	case token.GT:
		g.emitCompare("setg")
	case token.LE:
		g.emitCompare("setle")
	case token.GE:
		g.emitCompare("setge")
	case token.LTLT:
		g.text.WriteString("    shlx rax, rax, rbx\n")
	case token.GTGT:
		g.text.WriteString("    shrx rax, rax, rbx\n")
	case token.PLUS:
		g.text.WriteString("    add rax, rbx\n")
	case token.MINUS:
		g.text.WriteString("    sub rax, rbx\n")
	case token.STAR:
		g.text.WriteString("    imul rax, rbx\n")
	case token.SLASH:
		g.text.WriteString("    cqo\n")
		g.text.WriteString("    idiv rbx\n")
	case token.PERCENT:
		g.text.WriteString("    cqo\n")
		g.text.WriteString("    idiv rbx\n")
		g.text.WriteString("    mov rax, rdx\n")
	}

	g.text.WriteString("    push rax\n")
}

func (g *generator) emitCompare(set string) {
	g.text.WriteString("    cmp rax, rbx\n")
	fmt.Fprintf(&g.text, "    %s al\n", set)
	g.text.WriteString("    movzx eax, al\n")
}

// genShortCircuit lowers '&&' (isAnd) and '||': the right operand is only
// evaluated when the left one doesn't already decide the result, unlike
// the unconditional both-sides-always-evaluated lowering of every other
// binary operator.
func (g *generator) genShortCircuit(e *ast.Expr, isAnd bool) {
	shortLabel := g.newLabel()
	endLabel := g.newLabel()

	branch := "je" // && : short-circuit when the left side is false (zero)
	if !isAnd {
		branch = "jne" // || : short-circuit when the left side is true (nonzero)
	}

	g.genExpr(e.LHS)
	g.text.WriteString("    pop rax\n")
	g.text.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(&g.text, "    %s %s\n", branch, shortLabel)

	g.genExpr(e.RHS)
	g.text.WriteString("    pop rax\n")
	g.text.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(&g.text, "    %s %s\n", branch, shortLabel)

	if isAnd {
		g.text.WriteString("    mov rax, 1\n")
	} else {
		g.text.WriteString("    mov rax, 0\n")
	}
	fmt.Fprintf(&g.text, "    jmp %s\n", endLabel)

	fmt.Fprintf(&g.text, "%s:\n", shortLabel)
	if isAnd {
		g.text.WriteString("    mov rax, 0\n")
	} else {
		g.text.WriteString("    mov rax, 1\n")
	}

	fmt.Fprintf(&g.text, "%s:\n", endLabel)
	g.text.WriteString("    push rax\n")
}

// genCall lowers a resolved function call. The Windows x64 shadow space is
// reserved before any argument is stored, so the stack-argument addresses
// below are relative to the final call-time rsp rather than the
// pre-adjustment one a naive port of the reference generator would use.
func (g *generator) genCall(e *ast.Expr) {
	fn := &g.prog.Functions[e.FuncIndex]
	argCount := int32(fn.ParamCount)
	frameSize := int32(32)
	if over := (argCount - 4) * 8; over > 0 {
		frameSize += over
	}

	fmt.Fprintf(&g.text, "    sub rsp, %d\n", frameSize)

	i := int32(0)
	for arg := e.FirstArg; arg != ast.NoExpr; i++ {
		g.genExpr(arg)
		switch {
		case i < 4:
			fmt.Fprintf(&g.text, "    pop %s\n", argRegisters[i])
		default:
			g.text.WriteString("    pop rax\n")
			fmt.Fprintf(&g.text, "    mov [rsp+%d], rax\n", 32+(i-4)*8)
		}
		arg = g.prog.Expr(arg).Next
	}

	fmt.Fprintf(&g.text, "    call %s\n", funcLabel(fn.Name))
	fmt.Fprintf(&g.text, "    add rsp, %d\n", frameSize)
	g.text.WriteString("    push rax\n")
}
