package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vxc/lang/ast"
	"vxc/lang/parser"
)

func TestParseMinimalFunction(t *testing.T) {
	prog, diags, ok := parser.Parse([]byte("fn main :: () -> (i32) { return 0; }"))
	require.True(t, ok)
	require.Empty(t, diags.All())
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	require.Equal(t, "main", fn.Name)
	require.Equal(t, int32(0), fn.ParamCount)
	require.Equal(t, int32(1), fn.BodyStmtCount)

	ret := prog.Stmt(fn.BodyFirstStmt)
	require.Equal(t, ast.StmtReturn, ret.Kind)
	require.Equal(t, ast.ExprNumber, prog.Expr(ret.RHS).Kind)
}

func TestParseDeclarationsAndArithmetic(t *testing.T) {
	src := "fn main :: () -> (i32) { x : i32 = 40; y : i32 = 2; return x + y; }"
	prog, diags, ok := parser.Parse([]byte(src))
	require.True(t, ok)
	require.Empty(t, diags.All())

	fn := prog.Functions[0]
	require.Equal(t, int32(3), fn.BodyStmtCount)

	decl := prog.Stmt(fn.BodyFirstStmt)
	require.Equal(t, ast.StmtDeclAssign, decl.Kind)
	require.Equal(t, ast.I32, decl.Type)

	retIdx := fn.BodyFirstStmt + 2
	ret := prog.Stmt(retIdx)
	require.Equal(t, ast.StmtReturn, ret.Kind)

	sum := prog.Expr(ret.RHS)
	require.Equal(t, ast.ExprBinary, sum.Kind)
	require.Equal(t, ast.ExprIdent, prog.Expr(sum.LHS).Kind)
	require.Equal(t, ast.ExprIdent, prog.Expr(sum.RHS).Kind)
}

func TestParseInferredDeclaration(t *testing.T) {
	src := "fn main :: () -> (i32) { total := 0; return total; }"
	prog, diags, ok := parser.Parse([]byte(src))
	require.True(t, ok)
	require.Empty(t, diags.All())

	decl := prog.Stmt(prog.Functions[0].BodyFirstStmt)
	require.Equal(t, ast.StmtDeclAssign, decl.Kind)
	require.Equal(t, ast.Unknown, decl.Type)
}

func TestParseBranchStatement(t *testing.T) {
	src := "fn main :: () -> (i32) { if (1 < 2) { return 1; } else { return 2; } }"
	prog, _, ok := parser.Parse([]byte(src))
	require.True(t, ok)

	fn := prog.Functions[0]
	branch := prog.Stmt(fn.BodyFirstStmt)
	require.Equal(t, ast.StmtBranch, branch.Kind)
	// then arm is a Block (1 node) containing one Return (1 node) = 2.
	require.Equal(t, int32(2), branch.ThenCount)
	require.Equal(t, int32(2), branch.ElseCount)
	require.Equal(t, branch.ThenCount+branch.ElseCount+1, fn.BodyStmtCount)
}

func TestParseLoopStatement(t *testing.T) {
	src := "fn main :: () -> (i32) { i : i32 = 0; while (i < 10) { i += 1; } return i; }"
	prog, _, ok := parser.Parse([]byte(src))
	require.True(t, ok)

	fn := prog.Functions[0]
	loop := prog.Stmt(fn.BodyFirstStmt + 1)
	require.Equal(t, ast.StmtLoop, loop.Kind)
	require.Equal(t, int32(2), loop.ThenCount)
}

func TestParseCompoundAssignDesugarsLikeExplicitBinary(t *testing.T) {
	progA, _, okA := parser.Parse([]byte("fn main :: () -> (i32) { a : i32 = 0; a += 1; return a; }"))
	progB, _, okB := parser.Parse([]byte("fn main :: () -> (i32) { a : i32 = 0; a = a + 1; return a; }"))
	require.True(t, okA)
	require.True(t, okB)

	simpleA := progA.Stmt(progA.Functions[0].BodyFirstStmt + 1)
	simpleB := progB.Stmt(progB.Functions[0].BodyFirstStmt + 1)
	assignA := progA.Expr(simpleA.Expr)
	assignB := progB.Expr(simpleB.Expr)

	require.Equal(t, ast.ExprAssign, assignA.Kind)
	require.Equal(t, ast.ExprAssign, assignB.Kind)

	rhsA := progA.Expr(assignA.RHS)
	rhsB := progB.Expr(assignB.RHS)
	require.Equal(t, ast.ExprBinary, rhsA.Kind)
	require.Equal(t, ast.ExprBinary, rhsB.Kind)
	require.Equal(t, rhsB.Op, rhsA.Op)
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog, _, ok := parser.Parse([]byte("fn main :: () -> (i32) { return 1 + 2 * 3; }"))
	require.True(t, ok)

	ret := prog.Stmt(prog.Functions[0].BodyFirstStmt)
	top := prog.Expr(ret.RHS)
	require.Equal(t, ast.ExprBinary, top.Kind)

	lhs := prog.Expr(top.LHS)
	rhs := prog.Expr(top.RHS)
	require.Equal(t, ast.ExprNumber, lhs.Kind)
	require.Equal(t, ast.ExprBinary, rhs.Kind, "2*3 should bind tighter and form the right operand")
}

func TestParseRightAssociativeAssignment(t *testing.T) {
	prog, _, ok := parser.Parse([]byte("fn main :: () -> (i32) { a : i32 = 0; b : i32 = 0; a = b = 1; return a; }"))
	require.True(t, ok)

	simple := prog.Stmt(prog.Functions[0].BodyFirstStmt + 2)
	outer := prog.Expr(simple.Expr)
	require.Equal(t, ast.ExprAssign, outer.Kind)
	inner := prog.Expr(outer.RHS)
	require.Equal(t, ast.ExprAssign, inner.Kind)
}

func TestParseFunctionCall(t *testing.T) {
	src := "fn add :: (a: i32, b: i32) -> (i32) { return a + b; } fn main :: () -> (i32) { return add(3, 4); }"
	prog, _, ok := parser.Parse([]byte(src))
	require.True(t, ok)
	require.Len(t, prog.Functions, 2)

	add := prog.Functions[0]
	require.Equal(t, int32(2), add.ParamCount)
	params := add.Params(prog)
	require.Equal(t, "a", params[0].Name)
	require.Equal(t, ast.I32, params[0].Type)

	main := prog.Functions[1]
	ret := prog.Stmt(main.BodyFirstStmt)
	call := prog.Expr(ret.RHS)
	require.Equal(t, ast.ExprCall, call.Kind)
	require.Equal(t, "add", call.Name)

	first := prog.Expr(call.FirstArg)
	second := prog.Expr(first.Next)
	require.Equal(t, int32(3), first.Lit.I32)
	require.Equal(t, int32(4), second.Lit.I32)
	require.Equal(t, ast.NoExpr, second.Next)
}

func TestParseSyntaxErrorRecoversAndContinues(t *testing.T) {
	src := "fn main :: () -> (i32) { x : i32 = ; return 0; } fn second :: () -> (i32) { return 1; }"
	prog, diags, ok := parser.Parse([]byte(src))
	require.False(t, ok)
	require.NotEmpty(t, diags.All())
	// Parsing still recovers and sees both function declarations.
	require.Len(t, prog.Functions, 2)
	require.Equal(t, "second", prog.Functions[1].Name)
}

func TestParseEmptySourceProducesNoFunctions(t *testing.T) {
	prog, diags, ok := parser.Parse(nil)
	require.True(t, ok)
	require.Empty(t, diags.All())
	require.Empty(t, prog.Functions)
}
