// Package ast defines the arena-addressed abstract syntax tree produced by
// lang/parser and annotated in place by lang/analyzer.
//
// Expressions live in a single append-only arena (Program.Expressions) and
// are addressed by the integer handle ExprHandle; handle 0 is reserved as
// the "error" sentinel so a zero-value handle never accidentally aliases a
// real node. Statements live in a second append-only arena
// (Program.Statements) laid out as a flattened pre-order tree: a composite
// statement's children occupy the indices immediately following it, and the
// composite records how many descendants it owns so that skipping a subtree
// is an O(1) index arithmetic rather than a recursive walk.
//
// Both arenas grow by doubling (starting at a capacity of 16, matching the
// growth discipline of the rest of the compiler's side tables). Because Go
// slice growth only ever relocates the backing array and never the values
// held elsewhere, no code in this package holds a pointer into either arena
// across a Push call; all cross-references are handles/indices, re-read
// through the owning Program on every use.
package ast

import "vxc/lang/token"

// ExprHandle addresses a node in Program.Expressions. The zero value,
// NoExpr, addresses the reserved error sentinel at index 0.
type ExprHandle int32

// NoExpr is the sentinel handle for a missing or erroneous expression.
const NoExpr ExprHandle = 0

// StmtIndex addresses a node in Program.Statements.
type StmtIndex int32

// DataType is a numeric literal / expression result type. Unknown means
// "not yet computed" (parser) or "could not be computed" (analyzer);
// Unknown reaching the generator for a declared local would be an analyzer
// error rather than a silent pass-through.
type DataType int8

const (
	Unknown DataType = iota
	B32
	U32
	I32
	F32
)

func (d DataType) String() string {
	switch d {
	case B32:
		return "b32"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case F32:
		return "f32"
	}
	return "unknown"
}

// NumericLiteral is the tagged union of the four literal value kinds the
// lexer can produce. Only the field matching Type is meaningful.
type NumericLiteral struct {
	Type DataType
	B32  bool
	U32  uint32
	I32  int32
	F32  float32
}

// CallConv identifies the calling convention a Function is generated under.
// Only Windows x64 is implemented, but the generator dispatches on this
// field rather than hardcoding it, keeping call lowering pluggable by
// convention.
type CallConv int8

const (
	WindowsX64 CallConv = iota
)

// ExprKind discriminates the variant stored in an Expr record.
type ExprKind int8

const (
	ExprErr ExprKind = iota
	ExprNumber
	ExprString
	ExprIdent
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCall
)

// Expr is a single arena-resident expression record. It is a flat struct
// rather than an interface hierarchy so that Program.Expressions can be a
// plain slice of fixed-size values: every field below is a "payload" field
// that is only meaningful for a subset of Kind values, annotated per field.
type Expr struct {
	Kind ExprKind
	Pos  token.Pos

	// Type is the statically computed result type of this expression,
	// written back by the analyzer (see lang/analyzer).
	Type DataType

	// Next threads sibling expressions where the parent keeps an ordered
	// list; currently only ExprCall.FirstArg chains through this field on
	// each argument expression.
	Next ExprHandle

	Lit NumericLiteral // ExprNumber

	Str int32 // ExprString: index into Program.StringLiterals

	Name string // ExprIdent, ExprCall (function name)

	// Offset is the identifier's stack offset from the frame pointer,
	// written back by the analyzer. Positive: parameter slot. Negative:
	// local slot.
	Offset int32 // ExprIdent

	Op token.Kind // ExprUnary, ExprBinary

	LHS ExprHandle // ExprBinary, ExprAssign
	RHS ExprHandle // ExprUnary (the operand), ExprBinary, ExprAssign

	FirstArg ExprHandle // ExprCall: handle of first argument, or NoExpr

	// FuncIndex is the resolved index into Program.Functions, written back
	// by the analyzer.
	FuncIndex int32 // ExprCall
}

// StmtKind discriminates the variant stored in a Stmt record.
type StmtKind int8

const (
	StmtErr StmtKind = iota
	StmtSimple
	StmtDecl
	StmtDeclAssign
	StmtReturn
	StmtBlock
	StmtBranch
	StmtLoop
)

// Stmt is a single arena-resident statement record, laid out as described
// in the package doc comment: a composite statement's children are the
// DescendantCount statements immediately following it in Program.Statements.
//
// For StmtBranch, the first ThenCount of those descendants are the "then"
// block and the following ElseCount are the "else" block (ElseCount == 0
// when there is no else clause). For StmtBlock and StmtLoop, the full span
// is ThenCount (DescendantCount == ThenCount for both; Branch's
// DescendantCount is ThenCount+ElseCount).
type Stmt struct {
	Kind StmtKind
	Pos  token.Pos

	// LHS/RHS/Expr hold the expression handles relevant to Kind:
	//   StmtSimple:     Expr is the expression statement's expression
	//   StmtDecl:       LHS is the declared identifier's ExprIdent
	//   StmtDeclAssign: LHS is the identifier, RHS is the initializer
	//   StmtReturn:     RHS is the returned expression
	//   StmtBranch:     Expr is the condition
	//   StmtLoop:       Expr is the condition
	Expr ExprHandle
	LHS  ExprHandle
	RHS  ExprHandle

	// Type is the declared (or, for StmtDeclAssign with Type == Unknown,
	// inferred) type of a Decl/DeclAssign statement.
	Type DataType

	// ThenCount is Block.statement_count / Branch.then_count / Loop.then_count.
	ThenCount int32
	// ElseCount is Branch.else_count; zero for all other kinds.
	ElseCount int32
}

// DescendantCount returns the number of statements in s's whole subtree,
// excluding s itself (to be skipped over when iterating siblings at the
// same level).
func (s Stmt) DescendantCount() int32 {
	switch s.Kind {
	case StmtBlock, StmtLoop:
		return s.ThenCount
	case StmtBranch:
		return s.ThenCount + s.ElseCount
	default:
		return 0
	}
}

// Parameter is a function parameter, stored in Program.Parameters; each
// Function references a contiguous slice of this arena.
type Parameter struct {
	Name string
	Type DataType
	Pos  token.Pos
}

// Function is a whole function declaration. StackSize is filled in by the
// analyzer once the body has been walked.
type Function struct {
	Name     string
	Pos      token.Pos
	CallConv CallConv

	BodyFirstStmt StmtIndex
	BodyStmtCount int32

	ParamCount int32
	paramStart int32 // start index into Program.Parameters

	// StackSize is the total stack frame size in bytes, a multiple of 8,
	// filled in by the analyzer.
	StackSize int32
}

// Params returns the slice of parameters belonging to f.
func (f Function) Params(p *Program) []Parameter {
	return p.Parameters[f.paramStart : f.paramStart+f.ParamCount]
}

// Program owns every arena produced by a single compilation: the source
// buffer, the expression and statement arenas, the function/parameter
// tables, and the string-literal side table. A Program is exclusively
// owned by one compilation for its entire lifetime; nothing outlives it.
type Program struct {
	Source []byte

	Expressions []Expr
	Statements  []Stmt

	Functions  []Function
	Parameters []Parameter

	StringLiterals []string
}

// NewProgram returns an empty Program backed by src, with the expression
// arena's sentinel error node already in place at handle 0.
func NewProgram(src []byte) *Program {
	p := &Program{
		Source:      src,
		Expressions: make([]Expr, 1, 16),
		Statements:  make([]Stmt, 0, 16),
	}
	p.Expressions[0] = Expr{Kind: ExprErr}
	return p
}

// PushExpr appends e to the expression arena and returns its handle.
func (p *Program) PushExpr(e Expr) ExprHandle {
	h := ExprHandle(len(p.Expressions))
	p.Expressions = append(p.Expressions, e)
	return h
}

// Expr returns the expression addressed by h.
func (p *Program) Expr(h ExprHandle) *Expr {
	return &p.Expressions[h]
}

// PushStmt appends s to the statement arena and returns its index.
func (p *Program) PushStmt(s Stmt) StmtIndex {
	i := StmtIndex(len(p.Statements))
	p.Statements = append(p.Statements, s)
	return i
}

// Stmt returns the statement addressed by i.
func (p *Program) Stmt(i StmtIndex) *Stmt {
	return &p.Statements[i]
}

// PushFunction appends fn, whose parameters have already been pushed via
// PushParam, to the function table and returns its index.
func (p *Program) PushFunction(fn Function, paramStart int32) int32 {
	fn.paramStart = paramStart
	idx := int32(len(p.Functions))
	p.Functions = append(p.Functions, fn)
	return idx
}

// PushParam appends a parameter to the shared parameter arena and returns
// its index, to be recorded as a Function's paramStart on the first call
// for that function.
func (p *Program) PushParam(param Parameter) int32 {
	idx := int32(len(p.Parameters))
	p.Parameters = append(p.Parameters, param)
	return idx
}

// PushStringLiteral interns s (without deduplication; duplicate literals
// simply get separate data-section labels) and returns its index.
func (p *Program) PushStringLiteral(s string) int32 {
	idx := int32(len(p.StringLiterals))
	p.StringLiterals = append(p.StringLiterals, s)
	return idx
}
