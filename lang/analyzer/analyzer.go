// Package analyzer walks a parsed vxc/lang/ast.Program to resolve
// identifiers, assign stack-frame offsets, resolve function-call overloads
// by arity, and compute each function's required stack size.
//
// It writes back onto nodes the parser already created: ExprIdent.Offset,
// ExprCall.FuncIndex, Function.StackSize, every analyzed Expr.Type, and the
// inferred Stmt.Type of a ':=' declaration. It never
// appends to either arena, so pointers obtained via Program.Expr/Stmt stay
// valid for the whole analysis of a function.
package analyzer

import (
	"golang.org/x/exp/constraints"

	"vxc/lang/ast"
	"vxc/lang/diag"
	"vxc/lang/token"
)

// Analyze resolves and annotates prog in place, returning the accumulated
// diagnostics and whether every function analyzed cleanly. A function with
// an error still has its other, independent functions analyzed: an error
// is fatal for that function, not for the whole program.
func Analyze(prog *ast.Program) (diag.List, bool) {
	a := &analyzer{prog: prog, ok: true}
	for i := range prog.Functions {
		a.analyzeFunction(int32(i))
	}
	return a.diags, a.ok
}

// localVariable is a scope-stack entry: either a parameter (positive
// offset) or a block-local (negative offset).
type localVariable struct {
	Name   string
	Offset int32
	Type   ast.DataType
	Pos    token.Pos
}

type analyzer struct {
	prog  *ast.Program
	diags diag.List
	ok    bool

	locals []localVariable

	// cursor is current_offset_from_frame_pointer: it grows by 8 on every
	// local declaration and is restored to its block-entry value on block
	// exit. maxCursor is the running high-water mark, which becomes the
	// function's stack_size; it is never restored.
	cursor    int32
	maxCursor int32
}

func (a *analyzer) error(pos token.Pos, format string, args ...any) {
	a.ok = false
	a.diags.Add(pos, format, args...)
}

func (a *analyzer) analyzeFunction(fi int32) {
	a.locals = a.locals[:0]
	a.cursor = 0
	a.maxCursor = 0

	fn := &a.prog.Functions[fi]
	for i, param := range fn.Params(a.prog) {
		a.addParameter(param, int32(i))
	}

	a.analyzeBlock(int32(fn.BodyFirstStmt), fn.BodyStmtCount)
	fn.StackSize = a.maxCursor
}

// addParameter registers parameter i at its fixed frame offset. Unlike a
// declared local's offset, a parameter's offset never depends on prior
// declarations: parameter i always lives at +16+i*8 (the 16 bytes reserved
// for the return address and the saved frame pointer).
func (a *analyzer) addParameter(p ast.Parameter, i int32) {
	if a.findLocal(p.Name, 0) != nil {
		a.error(p.Pos, "parameter %q is already declared", p.Name)
		return
	}
	a.locals = append(a.locals, localVariable{
		Name:   p.Name,
		Offset: 16 + i*8,
		Type:   p.Type,
		Pos:    p.Pos,
	})
}

// findLocal searches the visible scope stack from the top down to (and
// including) boundary, returning the first match by name. boundary is 0
// for full-scope name resolution (shadowing permitted across block
// boundaries) and the current block's entry mark for redeclaration checks
// (collisions are only an error within the same block).
func (a *analyzer) findLocal(name string, boundary int32) *localVariable {
	for i := len(a.locals) - 1; i >= int(boundary); i-- {
		if a.locals[i].Name == name {
			return &a.locals[i]
		}
	}
	return nil
}

// analyzeBlock analyzes the count statements starting at index start as a
// single lexical block: declarations made within it are visible to its own
// remaining statements but go out of scope, and their stack slots are
// reclaimed, once the block ends.
func (a *analyzer) analyzeBlock(start, count int32) {
	blockMark := int32(len(a.locals))
	savedCursor := a.cursor

	end := start + count
	for i := start; i < end; {
		i = a.analyzeStmt(i, blockMark)
	}

	a.locals = a.locals[:blockMark]
	a.cursor = savedCursor
}

// analyzeStmt analyzes the statement at index i and returns the index of
// its next sibling (i + 1 + its descendant count).
func (a *analyzer) analyzeStmt(i int32, blockMark int32) int32 {
	s := a.prog.Stmt(ast.StmtIndex(i))

	switch s.Kind {
	case ast.StmtErr:
		// Already reported by the parser; nothing to analyze.

	case ast.StmtSimple:
		a.analyzeExpr(s.Expr)

	case ast.StmtDecl:
		a.declareLocal(s, blockMark, s.Type)

	case ast.StmtDeclAssign:
		rhsType := a.analyzeExpr(s.RHS)
		declType := s.Type
		if declType == ast.Unknown {
			if rhsType == ast.Unknown {
				a.error(s.Pos, "cannot infer type of declaration: initializer's type is unknown")
			}
			declType = rhsType
			s.Type = declType
		}
		a.declareLocal(s, blockMark, declType)

	case ast.StmtReturn:
		if s.RHS != ast.NoExpr {
			a.analyzeExpr(s.RHS)
		}

	case ast.StmtBlock:
		a.analyzeBlock(i+1, s.ThenCount)
		return i + 1 + s.ThenCount

	case ast.StmtBranch:
		a.analyzeExpr(s.Expr)
		a.analyzeBlock(i+1, s.ThenCount)
		a.analyzeBlock(i+1+s.ThenCount, s.ElseCount)
		return i + 1 + s.ThenCount + s.ElseCount

	case ast.StmtLoop:
		a.analyzeExpr(s.Expr)
		a.analyzeBlock(i+1, s.ThenCount)
		return i + 1 + s.ThenCount
	}

	return i + 1
}

// declareLocal registers the identifier declared by a Decl/DeclAssign
// statement, rejecting a same-block redeclaration, and writes the assigned
// offset and resolved type back onto the statement's LHS identifier node.
func (a *analyzer) declareLocal(s *ast.Stmt, blockMark int32, declType ast.DataType) {
	lhs := a.prog.Expr(s.LHS)

	if existing := a.findLocal(lhs.Name, blockMark); existing != nil {
		a.error(s.Pos, "identifier %q is already declared in this block (line %d)", lhs.Name, existing.Pos.Line)
		return
	}

	a.cursor += 8
	if a.cursor > a.maxCursor {
		a.maxCursor = a.cursor
	}
	offset := -a.cursor

	a.locals = append(a.locals, localVariable{Name: lhs.Name, Offset: offset, Type: declType, Pos: s.Pos})
	lhs.Offset = offset
	lhs.Type = declType
}

// analyzeExpr resolves and type-checks the expression addressed by h,
// writing back Offset (ExprIdent) and FuncIndex (ExprCall), and returns its
// computed result type.
func (a *analyzer) analyzeExpr(h ast.ExprHandle) ast.DataType {
	if h == ast.NoExpr {
		return ast.Unknown
	}
	e := a.prog.Expr(h)

	switch e.Kind {
	case ast.ExprNumber:
		e.Type = e.Lit.Type

	case ast.ExprString:
		// Strings have no place in the arithmetic type lattice; leave Unknown.

	case ast.ExprIdent:
		v := a.findLocal(e.Name, 0)
		if v == nil {
			a.error(e.Pos, "undeclared identifier %q", e.Name)
			e.Type = ast.Unknown
			break
		}
		e.Offset = v.Offset
		e.Type = v.Type

	case ast.ExprUnary:
		rhs := a.analyzeExpr(e.RHS)
		e.Type = unaryResultType(e.Op, rhs)

	case ast.ExprBinary:
		lhs := a.analyzeExpr(e.LHS)
		rhs := a.analyzeExpr(e.RHS)
		e.Type = binaryResultType(e.Op, lhs, rhs)

	case ast.ExprAssign:
		a.analyzeExpr(e.RHS)
		lhs := a.prog.Expr(e.LHS)
		if lhs.Kind != ast.ExprIdent {
			a.error(e.Pos, "left-hand side of assignment must be an identifier")
			e.Type = ast.Unknown
			break
		}
		a.analyzeExpr(e.LHS)
		e.Type = a.prog.Expr(e.LHS).Type

	case ast.ExprCall:
		var argCount int32
		for arg := e.FirstArg; arg != ast.NoExpr; {
			a.analyzeExpr(arg)
			argCount++
			arg = a.prog.Expr(arg).Next
		}
		a.resolveCall(e, argCount)
		e.Type = ast.I32 // every function returns i32.
	}

	return e.Type
}

// resolveCall finds the unique function named e.Name with argCount
// parameters and writes its index back onto e, per the call-resolution
// rule: zero matches is an error, more than one is an ambiguity error
// naming every candidate, exactly one succeeds.
func (a *analyzer) resolveCall(e *ast.Expr, argCount int32) {
	var candidates []int32
	for fi := range a.prog.Functions {
		fn := &a.prog.Functions[fi]
		if fn.Name == e.Name && fn.ParamCount == argCount {
			candidates = append(candidates, int32(fi))
		}
	}

	switch len(candidates) {
	case 0:
		a.error(e.Pos, "no matching function found for call to %q with %d argument(s)", e.Name, argCount)
	case 1:
		e.FuncIndex = candidates[0]
	default:
		a.error(e.Pos, "more than one function matches call to %q", e.Name)
		for _, ci := range candidates {
			a.diags.Add(a.prog.Functions[ci].Pos, "candidate: %q declared here", e.Name)
		}
	}
}

func isIntegral(t ast.DataType) bool { return t == ast.I32 || t == ast.U32 }

func convertsToB32(t ast.DataType) bool { return t == ast.B32 || isIntegral(t) }

// ordMax and ordMin are a generic max/min pair shared by every rank comparison in the
// promotion tables below; ast.DataType's enum order (Unknown < B32 < U32 <
// I32 < F32) is itself the widening order, so comparing the values directly
// is the promotion rule.
func ordMax[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func ordMin[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxType(a, b ast.DataType) ast.DataType { return ordMax(a, b) }
func minType(a, b ast.DataType) ast.DataType { return ordMin(a, b) }

// unaryResultType computes the result type of a prefix operator per the
// unary promotion table: '-x' is min(type(x), I32); '~x' requires an
// integral operand and preserves its type; '!x' requires a B32-convertible
// operand and always yields B32.
func unaryResultType(op token.Kind, rhs ast.DataType) ast.DataType {
	if rhs == ast.Unknown {
		return ast.Unknown
	}
	switch op {
	case token.MINUS:
		return minType(rhs, ast.I32)
	case token.TILDE:
		if isIntegral(rhs) {
			return rhs
		}
	case token.BANG:
		if convertsToB32(rhs) {
			return ast.B32
		}
	}
	return ast.Unknown
}

// binaryResultType computes the result type of a binary operator per the
// binary promotion table: comparisons always yield B32; logical and
// bitwise operators require B32-convertible operands and, for the bitwise
// family, yield the wider operand type; shifts and modulo require integral
// operands and yield the wider type; arithmetic yields the wider operand
// type unconditionally.
func binaryResultType(op token.Kind, lhs, rhs ast.DataType) ast.DataType {
	if lhs == ast.Unknown || rhs == ast.Unknown {
		return ast.Unknown
	}
	switch op {
	case token.ANDAND, token.OROR:
		if convertsToB32(lhs) && convertsToB32(rhs) {
			return ast.B32
		}
	case token.PIPE, token.CARET, token.AMP:
		if convertsToB32(lhs) && convertsToB32(rhs) {
			return maxType(lhs, rhs)
		}
	case token.EQEQ, token.NEQ, token.LT, token.GT, token.LE, token.GE:
		return ast.B32
	case token.LTLT, token.GTGT:
		if isIntegral(lhs) && isIntegral(rhs) {
			return maxType(lhs, rhs)
		}
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return maxType(lhs, rhs)
	case token.PERCENT:
		if isIntegral(lhs) && isIntegral(rhs) {
			return maxType(lhs, rhs)
		}
	}
	return ast.Unknown
}
