package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vxc/lang/analyzer"
	"vxc/lang/ast"
	"vxc/lang/parser"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags, ok := parser.Parse([]byte(src))
	require.True(t, ok, "parse diagnostics: %v", diags.All())
	return prog
}

func TestAnalyzeStackOffsets(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { x : i32 = 40; y : i32 = 2; return x + y; }")
	diags, ok := analyzer.Analyze(prog)
	require.True(t, ok, "diags: %v", diags.All())

	fn := prog.Functions[0]
	require.Equal(t, int32(16), fn.StackSize)

	declX := prog.Stmt(fn.BodyFirstStmt)
	require.Equal(t, int32(-8), prog.Expr(declX.LHS).Offset)
	declY := prog.Stmt(fn.BodyFirstStmt + 1)
	require.Equal(t, int32(-16), prog.Expr(declY.LHS).Offset)
}

func TestAnalyzeParameterOffsets(t *testing.T) {
	prog := parseOK(t, "fn add :: (a: i32, b: i32) -> (i32) { return a + b; } fn main :: () -> (i32) { return add(3, 4); }")
	diags, ok := analyzer.Analyze(prog)
	require.True(t, ok, "diags: %v", diags.All())

	add := prog.Functions[0]
	ret := prog.Stmt(add.BodyFirstStmt)
	sum := prog.Expr(ret.RHS)
	require.Equal(t, int32(16), prog.Expr(sum.LHS).Offset)
	require.Equal(t, int32(24), prog.Expr(sum.RHS).Offset)
}

func TestAnalyzeResolvesCall(t *testing.T) {
	prog := parseOK(t, "fn add :: (a: i32, b: i32) -> (i32) { return a + b; } fn main :: () -> (i32) { return add(3, 4); }")
	diags, ok := analyzer.Analyze(prog)
	require.True(t, ok, "diags: %v", diags.All())

	main := prog.Functions[1]
	ret := prog.Stmt(main.BodyFirstStmt)
	call := prog.Expr(ret.RHS)
	require.Equal(t, int32(0), call.FuncIndex)
}

func TestAnalyzeUndeclaredIdentifierIsFatal(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { return x; }")
	diags, ok := analyzer.Analyze(prog)
	require.False(t, ok)
	require.NotEmpty(t, diags.All())
	require.Contains(t, diags.All()[0].Msg, "undeclared")
}

func TestAnalyzeRedeclarationInSameBlockIsFatal(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { x : i32 = 1; x : i32 = 2; return x; }")
	_, ok := analyzer.Analyze(prog)
	require.False(t, ok)
}

func TestAnalyzeShadowingAcrossBlocksIsPermitted(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { x : i32 = 1; { x : i32 = 2; } return x; }")
	diags, ok := analyzer.Analyze(prog)
	require.True(t, ok, "diags: %v", diags.All())
}

func TestAnalyzeBlockLocalsDoNotLeakStackSpace(t *testing.T) {
	// The inner block's local goes out of scope before the second outer
	// local is declared, so the cursor is reused: stack_size stays at 8,
	// not 16, even though two locals are declared across the function.
	prog := parseOK(t, "fn main :: () -> (i32) { { a : i32 = 1; } b : i32 = 2; return b; }")
	_, ok := analyzer.Analyze(prog)
	require.True(t, ok)
	require.Equal(t, int32(8), prog.Functions[0].StackSize)
}

func TestAnalyzeAmbiguousCallReportsError(t *testing.T) {
	src := "fn f :: (a: i32) -> (i32) { return a; } fn f :: (b: i32) -> (i32) { return b; } fn main :: () -> (i32) { return f(1); }"
	prog := parseOK(t, src)
	_, ok := analyzer.Analyze(prog)
	require.False(t, ok)
}

func TestAnalyzeNoMatchingFunctionReportsError(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { return missing(1); }")
	diags, ok := analyzer.Analyze(prog)
	require.False(t, ok)
	require.Contains(t, diags.All()[0].Msg, "no matching function")
}

func TestAnalyzeInferredDeclarationTakesInitializerType(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { total := 5; return total; }")
	_, ok := analyzer.Analyze(prog)
	require.True(t, ok)

	decl := prog.Stmt(prog.Functions[0].BodyFirstStmt)
	require.Equal(t, ast.I32, decl.Type)
	require.Equal(t, ast.I32, prog.Expr(decl.LHS).Type)
}

func TestAnalyzeBinaryComparisonYieldsB32(t *testing.T) {
	prog := parseOK(t, "fn main :: () -> (i32) { return 1 < 2; }")
	_, ok := analyzer.Analyze(prog)
	require.True(t, ok)

	ret := prog.Stmt(prog.Functions[0].BodyFirstStmt)
	require.Equal(t, ast.B32, prog.Expr(ret.RHS).Type)
}

func TestAnalyzeUnaryNegateCapsAtI32(t *testing.T) {
	// -x is min(type(x), I32): a U32 operand (narrower than I32 in the
	// enum's rank order) keeps its own type rather than being widened.
	prog := parseOK(t, "fn main :: () -> (i32) { x : u32 = 1; return -x; }")
	_, ok := analyzer.Analyze(prog)
	require.True(t, ok)

	ret := prog.Stmt(prog.Functions[0].BodyFirstStmt + 1)
	require.Equal(t, ast.U32, prog.Expr(ret.RHS).Type)
}

func TestAnalyzeUnaryNegateOnF32DemotesToI32(t *testing.T) {
	// An F32 operand (wider than I32) is capped down to I32 by the same rule.
	prog := parseOK(t, "fn main :: () -> (i32) { x : f32 = 1.5; return -x; }")
	_, ok := analyzer.Analyze(prog)
	require.True(t, ok)

	ret := prog.Stmt(prog.Functions[0].BodyFirstStmt + 1)
	require.Equal(t, ast.I32, prog.Expr(ret.RHS).Type)
}
