package parser

import (
	"vxc/lang/ast"
	"vxc/lang/token"
)

// parseExpr parses a full expression, including assignment at the loosest
// (level 0) precedence: 'a = b = 1' parses as '(= a (= b 1))', right
// associative like the other assignment forms.
func (p *parser) parseExpr() ast.ExprHandle {
	lhs := p.parseSubExpr(0)

	if op := p.curKind(); op.IsAssignOp() {
		pos := p.cur().Pos
		p.advance()
		rhs := p.parseExpr()

		if op != token.EQ {
			// Compound assignment desugars to 'a = (a op b)' at parse time.
			rhs = p.prog.PushExpr(ast.Expr{
				Kind: ast.ExprBinary,
				Pos:  pos,
				Op:   token.AssignOpToBinop(op),
				LHS:  lhs,
				RHS:  rhs,
			})
		}
		return p.prog.PushExpr(ast.Expr{Kind: ast.ExprAssign, Pos: pos, LHS: lhs, RHS: rhs})
	}
	return lhs
}

// parseSubExpr implements precedence climbing: it parses a unary-or-atom
// expression, then repeatedly folds in binary operators whose left binding
// power exceeds minPriority.
func (p *parser) parseSubExpr(minPriority int) ast.ExprHandle {
	var left ast.ExprHandle

	if p.curKind().IsUnop() {
		pos := p.cur().Pos
		op := p.curKind()
		p.advance()
		operand := p.parseSubExpr(unopPriority)
		left = p.prog.PushExpr(ast.Expr{Kind: ast.ExprUnary, Pos: pos, Op: op, RHS: operand})
	} else {
		left = p.parseAtom()
	}

	for p.curKind().IsBinop() {
		leftBP, rightBP := p.curKind().BinopPriority()
		if leftBP <= minPriority {
			break
		}
		pos := p.cur().Pos
		op := p.curKind()
		p.advance()
		right := p.parseSubExpr(rightBP)
		left = p.prog.PushExpr(ast.Expr{Kind: ast.ExprBinary, Pos: pos, Op: op, LHS: left, RHS: right})
	}
	return left
}

// unopPriority is the binding power of unary prefix operators: tighter than
// every binary operator (the tightest binary level is 10).
const unopPriority = 11

// parseAtom parses a parenthesized expression, a numeric or string literal,
// or an identifier optionally followed by a call argument list.
func (p *parser) parseAtom() ast.ExprHandle {
	tok := p.cur()
	switch tok.Kind {
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e

	case token.NUMBER:
		p.advance()
		return p.prog.PushExpr(ast.Expr{
			Kind: ast.ExprNumber,
			Pos:  tok.Pos,
			Lit:  p.stream.Literals[tok.Data],
			Type: p.stream.Literals[tok.Data].Type,
		})

	case token.STRING:
		p.advance()
		str := p.stream.Strings[tok.Data]
		idx := p.prog.PushStringLiteral(str)
		return p.prog.PushExpr(ast.Expr{Kind: ast.ExprString, Pos: tok.Pos, Str: idx})

	case token.IDENT:
		p.advance()
		name := p.identName(tok)
		if p.at(token.LPAREN) {
			return p.parseCall(tok.Pos, name)
		}
		return p.prog.PushExpr(ast.Expr{Kind: ast.ExprIdent, Pos: tok.Pos, Name: name})

	default:
		p.error(tok.Pos, "unexpected %s, expected an expression", tok.Kind.GoString())
		panic(errPanicMode{})
	}
}

// parseCall parses the '( arg , ... )' suffix of a function-call atom. The
// callee's name has already been consumed; pos is the call's position,
// matching the identifier's location.
func (p *parser) parseCall(pos token.Pos, name string) ast.ExprHandle {
	p.expect(token.LPAREN)

	var first, prev ast.ExprHandle
	if !p.at(token.RPAREN) {
		for {
			arg := p.parseExpr()
			if first == ast.NoExpr {
				first = arg
			} else {
				p.prog.Expr(prev).Next = arg
			}
			prev = arg
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	return p.prog.PushExpr(ast.Expr{
		Kind:     ast.ExprCall,
		Pos:      pos,
		Name:     name,
		FirstArg: first,
	})
}
