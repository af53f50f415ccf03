package parser

import (
	"github.com/pipelang/pipelang/pkg/token"
)

// Predicate parsing by precedence climbing.
//
// Precedence levels:
//
//	precedenceOr         = 1  (||)
//	precedenceAnd        = 2  (&&)
//	precedenceComparison = 3  (==, !=, <, >, <=, >=)
//
// && binds tighter than || unless explicit parentheses reorder precedence.
// Operators of equal precedence associate left-to-right, which preserves
// the source's short-circuit evaluation order through lowering.
const (
	precedenceNone       = 0
	precedenceOr         = 1
	precedenceAnd        = 2
	precedenceComparison = 3
)

// parseExpression parses a predicate expression.
func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(precedenceOr)
}

// parseExpressionWithPrecedence implements precedence climbing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) Expr {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}

	for {
		prec := infixPrecedence(p.token.Type)
		if prec < minPrecedence {
			break
		}

		op := p.token.Type
		p.nextToken()

		// Left-associative: parse the right operand one level tighter.
		right := p.parseExpressionWithPrecedence(prec + 1)
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}

	return left
}

// infixPrecedence returns the precedence of a token as an infix operator,
// or precedenceNone if it is not one.
func infixPrecedence(t token.Type) int {
	switch t {
	case token.OR:
		return precedenceOr
	case token.AND:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return precedenceComparison
	default:
		return precedenceNone
	}
}

// parsePrimary parses literals, parameters, column paths, calls, and
// parenthesized expressions.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case token.LPAREN:
		p.nextToken()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ParenExpr{Expr: inner}

	case token.NUMBER:
		lit := &LiteralExpr{Kind: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &LiteralExpr{Kind: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.TRUE, token.FALSE:
		lit := &LiteralExpr{Kind: LiteralBool, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.NULL:
		lit := &LiteralExpr{Kind: LiteralNull, Value: "null"}
		p.nextToken()
		return lit

	case token.PARAM:
		param := &ParamExpr{Name: p.token.Literal}
		p.nextToken()
		return param

	case token.IDENT:
		return p.parsePathExpr()

	default:
		p.unexpected("an expression")
		return nil
	}
}

// parsePathExpr parses a dotted path starting at an identifier:
//
//	count(Id)               aggregate call
//	row.Age                 column (row variable stripped)
//	users.Name              qualified column
//	row.Name.Contains("x")  string helper call on a column
func (p *Parser) parsePathExpr() Expr {
	name := p.token.Literal
	p.nextToken()

	// Bare call: count(Id), sum(Amount).
	if p.check(token.LPAREN) {
		call, ok := p.parseCallArgs(nil, name)
		if !ok {
			return nil
		}
		return call
	}

	segments := []string{name}
	for p.check(token.DOT) {
		p.nextToken() // consume dot
		if !p.check(token.IDENT) {
			p.unexpected("IDENT")
			return nil
		}
		seg := p.token.Literal
		if p.checkPeek(token.LPAREN) {
			// Method call on the column built from prior segments.
			p.nextToken()
			recv := p.columnFromSegments(segments)
			if recv == nil {
				return nil
			}
			call, ok := p.parseCallArgs(recv, seg)
			if !ok {
				return nil
			}
			return call
		}
		segments = append(segments, seg)
		p.nextToken()
	}

	col := p.columnFromSegments(segments)
	if col == nil {
		return nil
	}
	return col
}

// columnFromSegments builds a column reference from a dotted path,
// stripping the lambda row variable qualifier when present.
func (p *Parser) columnFromSegments(segments []string) *ColumnExpr {
	switch len(segments) {
	case 1:
		return &ColumnExpr{Name: segments[0]}
	case 2:
		if p.rowVar != "" && segments[0] == p.rowVar {
			return &ColumnExpr{Name: segments[1]}
		}
		return &ColumnExpr{Table: segments[0], Name: segments[1]}
	default:
		p.addError("column reference has too many qualifiers")
		return nil
	}
}

// parseCallArgs parses the parenthesized argument list of a call whose
// name has already been consumed.
func (p *Parser) parseCallArgs(recv *ColumnExpr, name string) (*CallExpr, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	call := &CallExpr{Recv: recv, Name: name}
	for !p.check(token.RPAREN) && !p.failed() {
		arg := p.parseExpression()
		if arg == nil {
			return nil, false
		}
		call.Args = append(call.Args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return call, true
}
