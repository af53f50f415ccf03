// Package parser implements the lexer and recursive descent parser for the
// pipeline query language.
//
// # Grammar Overview
//
//	program  → let* pipeline EOF
//	let      → "let" IDENT "=" pipeline
//	pipeline → IDENT ("|>" stage)*
//	stage    → select | filter | having | join | left_join | right_join
//	         | cross_join | group_by | order_by | distinct
//	         | limit | take | offset | skip
//	         | union | union_all | intersect | except
//
// Each stage keyword introduces a typed stage node with its own argument
// grammar; see parseStage. Predicates are parsed by precedence climbing in
// parser_expr.go, with && binding tighter than ||.
//
// All failures are *ParseError values carrying a source position; the
// parser never panics on malformed input.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pipelang/pipelang/pkg/token"
)

// Parser parses pipeline query language source into a Program.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	errors []error

	rowVar string // lambda row variable in scope, "" outside lambdas
}

// NewParser creates a new parser for the given source.
func NewParser(source string) *Parser {
	p := &Parser{
		lexer: NewLexer(source),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the source and returns the let-table plus main pipeline.
func Parse(source string) (*Program, error) {
	p := NewParser(source)
	prog := p.parseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return prog, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.Type) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.unexpected(t.String())
	return false
}

// expectIdent consumes and returns the current identifier literal.
func (p *Parser) expectIdent() (string, bool) {
	if p.check(token.IDENT) {
		name := p.token.Literal
		p.nextToken()
		return name, true
	}
	p.unexpected("IDENT")
	return "", false
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// unexpected reports the current token as unexpected. ILLEGAL tokens carry
// their own diagnostic in the literal.
func (p *Parser) unexpected(expected string) {
	if p.check(token.ILLEGAL) {
		p.addError(p.token.Literal)
		return
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, expected))
}

// failed returns true once any error has been recorded.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// ---------- Program / Pipeline ----------

// parseProgram parses let bindings followed by the main pipeline.
func (p *Parser) parseProgram() *Program {
	prog := &Program{}

	for p.check(token.LET) && !p.failed() {
		p.nextToken() // consume let
		name, ok := p.expectIdent()
		if !ok {
			return prog
		}
		if prog.Let(name) != nil {
			p.addError(fmt.Sprintf(ErrDuplicateLet, name))
			return prog
		}
		if !p.expect(token.ASSIGN) {
			return prog
		}
		pipe := p.parsePipeline()
		prog.Lets = append(prog.Lets, &LetBinding{
			Name:     name,
			Pipeline: pipe,
			Index:    len(prog.Lets),
		})
	}

	prog.Main = p.parsePipeline()

	if !p.failed() && !p.check(token.EOF) {
		p.unexpected("EOF")
	}

	return prog
}

// parsePipeline parses a source followed by |>-chained stages.
func (p *Parser) parsePipeline() *Pipeline {
	pipe := &Pipeline{SourcePos: p.token.Pos}

	source, ok := p.expectIdent()
	if !ok {
		return pipe
	}
	pipe.Source = source

	for p.check(token.PIPE) && !p.failed() {
		p.nextToken() // consume |>
		stage := p.parseStage()
		if stage == nil {
			break
		}
		pipe.Stages = append(pipe.Stages, stage)
	}

	return pipe
}

// ---------- Stages ----------

// parseStage dispatches on the stage keyword.
func (p *Parser) parseStage() Stage {
	pos := p.token.Pos

	switch p.token.Type {
	case token.SELECT:
		return p.parseSelectStage(pos)
	case token.FILTER:
		return p.parseFilterStage(pos)
	case token.HAVING:
		return p.parseHavingStage(pos)
	case token.JOIN:
		return p.parseJoinStage(pos, JoinInner)
	case token.LEFT_JOIN:
		return p.parseJoinStage(pos, JoinLeft)
	case token.RIGHT_JOIN:
		return p.parseJoinStage(pos, JoinRight)
	case token.CROSS_JOIN:
		return p.parseJoinStage(pos, JoinCross)
	case token.GROUP_BY:
		return p.parseGroupByStage(pos)
	case token.ORDER_BY:
		return p.parseOrderByStage(pos)
	case token.DISTINCT:
		p.nextToken()
		if !p.expect(token.LPAREN) || !p.expect(token.RPAREN) {
			return nil
		}
		return &DistinctStage{stagePos{pos}}
	case token.LIMIT, token.TAKE:
		return p.parseCountStage(pos, true)
	case token.OFFSET, token.SKIP:
		return p.parseCountStage(pos, false)
	case token.UNION:
		return p.parseSetOpStage(pos, SetUnion)
	case token.UNION_ALL:
		return p.parseSetOpStage(pos, SetUnionAll)
	case token.INTERSECT:
		return p.parseSetOpStage(pos, SetIntersect)
	case token.EXCEPT:
		return p.parseSetOpStage(pos, SetExcept)
	default:
		if p.check(token.ILLEGAL) {
			p.addError(p.token.Literal)
		} else {
			p.addError(ErrExpectedStage)
		}
		return nil
	}
}

// parseSelectStage parses select(item, ...) with an optionally empty list.
func (p *Parser) parseSelectStage(pos token.Position) Stage {
	p.nextToken() // consume select
	if !p.expect(token.LPAREN) {
		return nil
	}

	stage := &SelectStage{stagePos: stagePos{pos}}
	for !p.check(token.RPAREN) && !p.failed() {
		item, ok := p.parseSelectItem()
		if !ok {
			return nil
		}
		stage.Items = append(stage.Items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return stage
}

// parseSelectItem parses one select list entry:
// *, t.*, col, t.col, count(col), each with an optional "as alias".
func (p *Parser) parseSelectItem() (SelectItem, bool) {
	var item SelectItem

	switch {
	case p.check(token.STAR):
		p.nextToken()
		item.Star = true

	case p.check(token.IDENT) && p.checkPeek(token.LPAREN):
		name := p.token.Literal
		p.nextToken()
		call, ok := p.parseCallArgs(nil, name)
		if !ok {
			return item, false
		}
		item.Call = call

	case p.check(token.IDENT):
		name := p.token.Literal
		p.nextToken()
		if p.match(token.DOT) {
			switch {
			case p.check(token.STAR):
				p.nextToken()
				item.Star = true
				item.Table = name
			case p.check(token.IDENT):
				item.Table = name
				item.Name = p.token.Literal
				p.nextToken()
			default:
				p.unexpected("column name or *")
				return item, false
			}
		} else {
			item.Name = name
		}

	default:
		p.unexpected("select item")
		return item, false
	}

	if p.match(token.AS) {
		alias, ok := p.expectIdent()
		if !ok {
			return item, false
		}
		item.Alias = alias
	}

	return item, true
}

// parseFilterStage parses filter(fn(row) => <predicate>) or filter(<predicate>).
func (p *Parser) parseFilterStage(pos token.Position) Stage {
	p.nextToken() // consume filter
	rowVar, pred, ok := p.parsePredicateArg()
	if !ok {
		return nil
	}
	return &FilterStage{stagePos: stagePos{pos}, RowVar: rowVar, Pred: pred}
}

// parseHavingStage parses having with the same argument grammar as filter.
func (p *Parser) parseHavingStage(pos token.Position) Stage {
	p.nextToken() // consume having
	rowVar, pred, ok := p.parsePredicateArg()
	if !ok {
		return nil
	}
	return &HavingStage{stagePos: stagePos{pos}, RowVar: rowVar, Pred: pred}
}

// parsePredicateArg parses the parenthesized predicate argument shared by
// filter and having, with an optional fn(row) => lambda header.
func (p *Parser) parsePredicateArg() (string, Expr, bool) {
	if !p.expect(token.LPAREN) {
		return "", nil, false
	}

	var rowVar string
	if p.check(token.FN) {
		p.nextToken()
		if !p.expect(token.LPAREN) {
			return "", nil, false
		}
		name, ok := p.expectIdent()
		if !ok {
			return "", nil, false
		}
		rowVar = name
		if !p.expect(token.RPAREN) || !p.expect(token.ARROW) {
			return "", nil, false
		}
	}

	prev := p.rowVar
	p.rowVar = rowVar
	pred := p.parseExpression()
	p.rowVar = prev

	if pred == nil || !p.expect(token.RPAREN) {
		return "", nil, false
	}
	return rowVar, pred, true
}

// parseJoinStage parses join(Target, on = <condition>, [type = "..."]).
// Cross joins take no condition; all other kinds require one.
func (p *Parser) parseJoinStage(pos token.Position, kind JoinKind) Stage {
	keyword := p.token.Literal
	p.nextToken() // consume join keyword
	if !p.expect(token.LPAREN) {
		return nil
	}

	target, ok := p.expectIdent()
	if !ok {
		return nil
	}

	stage := &JoinStage{stagePos: stagePos{pos}, Kind: kind, Target: target}

	for p.match(token.COMMA) {
		switch {
		case p.check(token.ON):
			p.nextToken()
			if !p.expect(token.ASSIGN) {
				return nil
			}
			stage.On = p.parseExpression()
			if stage.On == nil {
				return nil
			}
		case p.check(token.IDENT) && p.token.Literal == "type":
			p.nextToken()
			if !p.expect(token.ASSIGN) {
				return nil
			}
			if !p.check(token.STRING) {
				p.unexpected("join type string")
				return nil
			}
			kind, ok := joinKindFromString(p.token.Literal)
			if !ok {
				p.addError(fmt.Sprintf(ErrUnknownJoinType, p.token.Literal))
				return nil
			}
			stage.Kind = kind
			p.nextToken()
		default:
			p.unexpected("on = <condition> or type = \"...\"")
			return nil
		}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}

	if stage.Kind == JoinCross && stage.On != nil {
		p.errors = append(p.errors, &ParseError{Pos: pos, Message: ErrCrossJoinHasOn})
		return nil
	}
	if stage.Kind != JoinCross && stage.On == nil {
		p.errors = append(p.errors, &ParseError{Pos: pos, Message: fmt.Sprintf(ErrJoinRequiresOn, keyword)})
		return nil
	}

	return stage
}

// joinKindFromString maps a type = "..." override to a join kind.
func joinKindFromString(s string) (JoinKind, bool) {
	switch strings.ToLower(s) {
	case "inner":
		return JoinInner, true
	case "left":
		return JoinLeft, true
	case "right":
		return JoinRight, true
	case "cross":
		return JoinCross, true
	default:
		return "", false
	}
}

// parseGroupByStage parses group_by(col, ...).
func (p *Parser) parseGroupByStage(pos token.Position) Stage {
	p.nextToken() // consume group_by
	if !p.expect(token.LPAREN) {
		return nil
	}

	stage := &GroupByStage{stagePos: stagePos{pos}}
	for {
		col, ok := p.parseColumnRef()
		if !ok {
			return nil
		}
		stage.Columns = append(stage.Columns, col)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return stage
}

// parseOrderByStage parses order_by(col [asc|desc], ...).
func (p *Parser) parseOrderByStage(pos token.Position) Stage {
	p.nextToken() // consume order_by
	if !p.expect(token.LPAREN) {
		return nil
	}

	stage := &OrderByStage{stagePos: stagePos{pos}}
	for {
		col, ok := p.parseColumnRef()
		if !ok {
			return nil
		}
		item := OrderItem{Column: col}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC) // optional, ascending is the default
		}
		stage.Items = append(stage.Items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return stage
}

// parseColumnRef parses col or table.col.
func (p *Parser) parseColumnRef() (ColumnRef, bool) {
	var col ColumnRef
	name, ok := p.expectIdent()
	if !ok {
		return col, false
	}
	if p.match(token.DOT) {
		col.Table = name
		col.Name, ok = p.expectIdent()
		if !ok {
			return col, false
		}
	} else {
		col.Name = name
	}
	return col, true
}

// parseCountStage parses limit/take/offset/skip with an integer argument.
func (p *Parser) parseCountStage(pos token.Position, isLimit bool) Stage {
	keyword := p.token.Literal
	p.nextToken()
	if !p.expect(token.LPAREN) {
		return nil
	}
	if !p.check(token.NUMBER) {
		p.unexpected("integer")
		return nil
	}
	n, err := strconv.ParseInt(p.token.Literal, 10, 64)
	if err != nil {
		p.addError(fmt.Sprintf("%s requires an integer argument, got %s", keyword, p.token.Literal))
		return nil
	}
	p.nextToken()
	if !p.expect(token.RPAREN) {
		return nil
	}
	if isLimit {
		return &LimitStage{stagePos: stagePos{pos}, Count: n}
	}
	return &OffsetStage{stagePos: stagePos{pos}, Count: n}
}

// parseSetOpStage parses union(Target) and friends.
func (p *Parser) parseSetOpStage(pos token.Position, op SetOpKind) Stage {
	p.nextToken() // consume set op keyword
	if !p.expect(token.LPAREN) {
		return nil
	}
	target, ok := p.expectIdent()
	if !ok {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return &SetOpStage{stagePos: stagePos{pos}, Op: op, Target: target}
}
