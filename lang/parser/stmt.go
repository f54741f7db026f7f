package parser

import (
	"vxc/lang/ast"
	"vxc/lang/token"
)

// parseProgram parses the whole token stream as a sequence of function
// declarations.
func (p *parser) parseProgram() {
	for !p.at(token.EOF) {
		p.parseFunction()
	}
}

// parseFunction parses 'fn NAME :: ( param : TYPE , ... ) -> ( TYPE , ... ) BLOCK'.
// A failure anywhere in the signature synchronizes to the next ';' or EOF
// and abandons the declaration, same as a failed statement.
func (p *parser) parseFunction() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errPanicMode); ok {
				p.sync()
				return
			}
			panic(r)
		}
	}()

	pos := p.cur().Pos
	p.expect(token.FN)
	nameTok := p.expect(token.IDENT)
	name := p.identName(nameTok)
	p.expect(token.COLONCOLON)

	paramStart := int32(len(p.prog.Parameters))
	p.expect(token.LPAREN)
	var paramCount int32
	if !p.at(token.RPAREN) {
		for {
			pTok := p.expect(token.IDENT)
			p.expect(token.COLON)
			typeTok := p.cur()
			if !isTypeName(typeTok.Kind) {
				p.errorExpected(token.I32)
				panic(errPanicMode{})
			}
			p.advance()
			p.prog.PushParam(ast.Parameter{Name: p.identName(pTok), Type: dataTypeOf(typeTok.Kind), Pos: pTok.Pos})
			paramCount++
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	p.expect(token.ARROW)
	p.expect(token.LPAREN)
	if !p.at(token.RPAREN) {
		for {
			typeTok := p.cur()
			if !isTypeName(typeTok.Kind) {
				p.errorExpected(token.I32)
				panic(errPanicMode{})
			}
			p.advance()
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	fn := ast.Function{
		Name:       name,
		Pos:        pos,
		CallConv:   ast.WindowsX64,
		ParamCount: paramCount,
	}

	bodyStart := int32(len(p.prog.Statements))
	p.parseBlockBody()
	fn.BodyFirstStmt = ast.StmtIndex(bodyStart)
	fn.BodyStmtCount = int32(len(p.prog.Statements)) - bodyStart

	p.prog.PushFunction(fn, paramStart)
}

// parseStmt parses a single statement form, pushing exactly one root Stmt
// record (at whatever index the arena was at on entry) plus, for composite
// forms, all of its descendants. On a recognized syntax error it discards
// the partially built statements, synchronizes, and pushes a single
// StmtErr placeholder instead.
func (p *parser) parseStmt() {
	before := int32(len(p.prog.Statements))

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errPanicMode); ok {
				p.prog.Statements = p.prog.Statements[:before]
				p.sync()
				p.prog.PushStmt(ast.Stmt{Kind: ast.StmtErr, Pos: p.cur().Pos})
				return
			}
			panic(r)
		}
	}()

	pos := p.cur().Pos
	switch {
	case p.at(token.LBRACE):
		p.parseBlockStmt()

	case p.at(token.IF):
		p.parseBranchStmt()

	case p.at(token.WHILE):
		p.parseLoopStmt()

	case p.at(token.RETURN):
		p.advance()
		var rhs ast.ExprHandle = ast.NoExpr
		if !p.at(token.SEMI) {
			rhs = p.parseExpr()
		}
		p.expect(token.SEMI)
		p.prog.PushStmt(ast.Stmt{Kind: ast.StmtReturn, Pos: pos, RHS: rhs})

	case p.at(token.IDENT) && p.peekIsDeclaration():
		p.parseDeclarationStmt(pos)

	default:
		e := p.parseExpr()
		p.expect(token.SEMI)
		p.prog.PushStmt(ast.Stmt{Kind: ast.StmtSimple, Pos: pos, Expr: e})
	}
}

// peekIsDeclaration reports whether the IDENT under the cursor begins a
// declaration statement ('ident : ...' or 'ident := ...') rather than an
// expression statement. Both forms are distinguished from a plain
// identifier expression by the very next token being ':' or ':='.
func (p *parser) peekIsDeclaration() bool {
	next := p.stream.Tokens[p.pos+1]
	return next.Kind == token.COLON || next.Kind == token.COLONEQ
}

// parseDeclarationStmt parses 'ident : TYPE ;', 'ident : TYPE = expr ;' or
// 'ident := expr ;'. nameTok has not yet been consumed.
func (p *parser) parseDeclarationStmt(pos token.Pos) {
	nameTok := p.expect(token.IDENT)
	lhs := p.prog.PushExpr(ast.Expr{Kind: ast.ExprIdent, Pos: nameTok.Pos, Name: p.identName(nameTok)})

	if p.at(token.COLONEQ) {
		p.advance()
		rhs := p.parseExpr()
		p.expect(token.SEMI)
		p.prog.PushStmt(ast.Stmt{Kind: ast.StmtDeclAssign, Pos: pos, LHS: lhs, RHS: rhs, Type: ast.Unknown})
		return
	}

	p.expect(token.COLON)
	typeTok := p.cur()
	if !isTypeName(typeTok.Kind) {
		p.errorExpected(token.I32)
		panic(errPanicMode{})
	}
	p.advance()
	declType := dataTypeOf(typeTok.Kind)

	if p.at(token.EQ) {
		p.advance()
		rhs := p.parseExpr()
		p.expect(token.SEMI)
		p.prog.PushStmt(ast.Stmt{Kind: ast.StmtDeclAssign, Pos: pos, LHS: lhs, RHS: rhs, Type: declType})
		return
	}

	p.expect(token.SEMI)
	p.prog.PushStmt(ast.Stmt{Kind: ast.StmtDecl, Pos: pos, LHS: lhs, Type: declType})
}

// parseBlockStmt parses '{ stmt* }', pushing the Block record first and
// backfilling its ThenCount (== total descendant count) once every nested
// statement has been appended.
func (p *parser) parseBlockStmt() {
	pos := p.cur().Pos
	idx := p.prog.PushStmt(ast.Stmt{Kind: ast.StmtBlock, Pos: pos})
	p.parseBlockBody()
	p.prog.Stmt(idx).ThenCount = int32(len(p.prog.Statements)) - int32(idx) - 1
}

// parseBlockBody consumes '{ stmt* }' without pushing a StmtBlock record
// itself; used both by parseBlockStmt and directly for a function body
// (whose statement span is tracked on the Function record instead).
func (p *parser) parseBlockBody() {
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		p.parseStmt()
	}
	p.expect(token.RBRACE)
}

// parseBranchStmt parses 'if ( cond ) stmt [else stmt]'.
func (p *parser) parseBranchStmt() {
	pos := p.cur().Pos
	p.advance() // if
	idx := p.prog.PushStmt(ast.Stmt{Kind: ast.StmtBranch, Pos: pos})

	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.prog.Stmt(idx).Expr = cond

	thenStart := int32(len(p.prog.Statements))
	p.parseStmt()
	thenCount := int32(len(p.prog.Statements)) - thenStart

	var elseCount int32
	if p.at(token.ELSE) {
		p.advance()
		elseStart := int32(len(p.prog.Statements))
		p.parseStmt()
		elseCount = int32(len(p.prog.Statements)) - elseStart
	}

	p.prog.Stmt(idx).ThenCount = thenCount
	p.prog.Stmt(idx).ElseCount = elseCount
}

// parseLoopStmt parses 'while ( cond ) stmt'.
func (p *parser) parseLoopStmt() {
	pos := p.cur().Pos
	p.advance() // while
	idx := p.prog.PushStmt(ast.Stmt{Kind: ast.StmtLoop, Pos: pos})

	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.prog.Stmt(idx).Expr = cond

	bodyStart := int32(len(p.prog.Statements))
	p.parseStmt()
	p.prog.Stmt(idx).ThenCount = int32(len(p.prog.Statements)) - bodyStart
}
