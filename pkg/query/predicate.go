package query

import (
	"fmt"
	"strings"

	"github.com/pipelang/pipelang/pkg/parser"
	"github.com/pipelang/pipelang/pkg/token"
)

// FlattenPredicate lowers a predicate tree into a flat, order-preserving
// condition sequence. Parentheses are inserted around any subtree whose
// combinator differs from its parent's, which makes infix evaluation of
// the flat sequence equivalent to the tree.
//
// The returned names are the @parameters encountered, in first-appearance
// order, duplicates removed.
func FlattenPredicate(e parser.Expr) ([]Condition, []string, error) {
	f := &flattener{seen: make(map[string]bool)}
	if err := f.walk(e, 0); err != nil {
		return nil, nil, err
	}
	return f.conds, f.params, nil
}

type flattener struct {
	conds  []Condition
	params []string
	seen   map[string]bool
}

// walk emits condition tokens for e. parent is the combinator of the
// enclosing subtree (token.AND, token.OR, or 0 at the root).
func (f *flattener) walk(e parser.Expr, parent token.Type) error {
	switch ex := e.(type) {
	case *parser.ParenExpr:
		// Precedence is already encoded in the tree shape; explicit parens
		// reappear only where combinators actually differ.
		return f.walk(ex.Expr, parent)

	case *parser.BinaryExpr:
		switch ex.Op {
		case token.AND, token.OR:
			grouped := parent != 0 && ex.Op != parent
			if grouped {
				f.conds = append(f.conds, OpenParen{})
			}
			if err := f.walk(ex.Left, ex.Op); err != nil {
				return err
			}
			f.conds = append(f.conds, Logical{Op: logicalOp(ex.Op)})
			if err := f.walk(ex.Right, ex.Op); err != nil {
				return err
			}
			if grouped {
				f.conds = append(f.conds, CloseParen{})
			}
			return nil

		case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
			cmp, err := f.comparison(ex)
			if err != nil {
				return err
			}
			f.conds = append(f.conds, cmp)
			return nil

		default:
			return fmt.Errorf("operator %s is not valid in a predicate", ex.Op)
		}

	case *parser.CallExpr:
		cmp, err := f.likeComparison(ex)
		if err != nil {
			return err
		}
		f.conds = append(f.conds, cmp)
		return nil

	default:
		return fmt.Errorf("expression is not a predicate")
	}
}

// logicalOp maps a token to the IR logical operator.
func logicalOp(t token.Type) LogicalOp {
	if t == token.OR {
		return OpOr
	}
	return OpAnd
}

// comparison converts one comparison node.
func (f *flattener) comparison(e *parser.BinaryExpr) (Comparison, error) {
	left, err := columnOf(e.Left)
	if err != nil {
		return Comparison{}, err
	}
	right, err := f.operandOf(e.Right)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Left: left, Op: compareOp(e.Op), Right: right}, nil
}

// compareOp maps a comparison token to the IR operator.
func compareOp(t token.Type) CompareOp {
	switch t {
	case token.EQ:
		return OpEq
	case token.NE:
		return OpNe
	case token.LT:
		return OpLt
	case token.GT:
		return OpGt
	case token.LE:
		return OpLe
	default:
		return OpGe
	}
}

// likeComparison lowers a string helper call to a LIKE comparison with %
// wildcards inserted at the appropriate end(s) of the literal.
func (f *flattener) likeComparison(call *parser.CallExpr) (Comparison, error) {
	if call.Recv == nil {
		return Comparison{}, fmt.Errorf("call %s(...) is not a predicate", call.Name)
	}
	if len(call.Args) != 1 {
		return Comparison{}, fmt.Errorf("%s requires exactly one argument", call.Name)
	}
	lit, ok := call.Args[0].(*parser.LiteralExpr)
	if !ok || lit.Kind != parser.LiteralString {
		return Comparison{}, fmt.Errorf("%s requires a string literal argument", call.Name)
	}

	var pattern string
	switch call.Name {
	case "Contains":
		pattern = "%" + lit.Value + "%"
	case "StartsWith":
		pattern = lit.Value + "%"
	case "EndsWith":
		pattern = "%" + lit.Value
	default:
		return Comparison{}, fmt.Errorf("unknown string predicate %s", call.Name)
	}

	return Comparison{
		Left:  Named{Table: call.Recv.Table, Name: call.Recv.Name},
		Op:    OpLike,
		Right: Literal{Kind: LiteralString, Value: pattern},
	}, nil
}

// columnOf converts the left side of a comparison to a Column.
func columnOf(e parser.Expr) (Column, error) {
	switch ex := e.(type) {
	case *parser.ColumnExpr:
		return Named{Table: ex.Table, Name: ex.Name}, nil
	case *parser.CallExpr:
		if ex.Recv != nil {
			return nil, fmt.Errorf("%s(...) cannot be compared directly", ex.Name)
		}
		text, err := callText(ex)
		if err != nil {
			return nil, err
		}
		return Expression{Text: text}, nil
	case *parser.ParenExpr:
		return columnOf(ex.Expr)
	default:
		return nil, fmt.Errorf("left side of a comparison must be a column")
	}
}

// operandOf converts the right side of a comparison to an Operand.
func (f *flattener) operandOf(e parser.Expr) (Operand, error) {
	switch ex := e.(type) {
	case *parser.LiteralExpr:
		return Literal{Kind: literalKind(ex.Kind), Value: ex.Value}, nil
	case *parser.ParamExpr:
		f.addParam(ex.Name)
		return ParamOperand{Name: ex.Name}, nil
	case *parser.ColumnExpr:
		return ColumnOperand{Column: Named{Table: ex.Table, Name: ex.Name}}, nil
	case *parser.CallExpr:
		if ex.Recv != nil {
			return nil, fmt.Errorf("%s(...) is not a comparison operand", ex.Name)
		}
		text, err := callText(ex)
		if err != nil {
			return nil, err
		}
		return ColumnOperand{Column: Expression{Text: text}}, nil
	case *parser.ParenExpr:
		return f.operandOf(ex.Expr)
	default:
		return nil, fmt.Errorf("comparison operand must be a literal, parameter, or column")
	}
}

// literalKind maps a parser literal kind to the IR kind.
func literalKind(k parser.LiteralKind) LiteralKind {
	switch k {
	case parser.LiteralNumber:
		return LiteralNumber
	case parser.LiteralString:
		return LiteralString
	case parser.LiteralBool:
		return LiteralBool
	default:
		return LiteralNull
	}
}

// addParam records a parameter name on first appearance.
func (f *flattener) addParam(name string) {
	if f.seen[name] {
		return
	}
	f.seen[name] = true
	f.params = append(f.params, name)
}

// callText renders an aggregate call into verbatim expression text,
// e.g. COUNT(Id) or SUM(orders.Amount).
func callText(call *parser.CallExpr) (string, error) {
	var args []string
	for _, a := range call.Args {
		switch arg := a.(type) {
		case *parser.ColumnExpr:
			if arg.Table != "" {
				args = append(args, arg.Table+"."+arg.Name)
			} else {
				args = append(args, arg.Name)
			}
		case *parser.LiteralExpr:
			if arg.Kind == parser.LiteralString {
				args = append(args, "'"+strings.ReplaceAll(arg.Value, "'", "''")+"'")
			} else {
				args = append(args, arg.Value)
			}
		default:
			return "", fmt.Errorf("unsupported argument in %s(...)", call.Name)
		}
	}
	return strings.ToUpper(call.Name) + "(" + strings.Join(args, ", ") + ")", nil
}

// ValidateConditions checks the flat-sequence invariants: balanced
// parentheses, no logical operator at either end or adjacent to another,
// and no two comparisons without an intervening logical operator.
func ValidateConditions(conds []Condition) error {
	depth := 0
	// prev tracks the last non-paren token kind: 0 none, 1 comparison, 2 logical.
	prev := 0
	for i, c := range conds {
		switch c.(type) {
		case OpenParen:
			depth++
		case CloseParen:
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced parenthesis at condition %d", i)
			}
		case Logical:
			if prev != 1 {
				return fmt.Errorf("logical operator at condition %d has no left comparison", i)
			}
			prev = 2
		case Comparison:
			if prev == 1 {
				return fmt.Errorf("adjacent comparisons at condition %d", i)
			}
			prev = 1
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses")
	}
	if prev == 2 {
		return fmt.Errorf("condition sequence ends with a logical operator")
	}
	return nil
}
