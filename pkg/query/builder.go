package query

import (
	"github.com/pipelang/pipelang/pkg/parser"
	"github.com/pipelang/pipelang/pkg/token"
)

// Build lowers a resolved pipeline into a Statement. Stages fold
// left-to-right: select replaces the projection, repeated filter and
// having predicates chain with AND, joins append to the join graph, and
// limit/offset are last-wins. Named placeholders are harvested into
// Params in first-appearance order with the default SQL type.
func Build(pipe *parser.Pipeline) (*Statement, error) {
	b := &builder{
		stmt: &Statement{Kind: KindSelect},
		seen: make(map[string]bool),
	}
	return b.build(pipe)
}

type builder struct {
	stmt *Statement
	seen map[string]bool // harvested parameter names

	// Each filter stage flattens to one segment; segments chain with AND
	// when the statement is assembled, grouping a segment in parentheses
	// only when it carries a top-level OR.
	whereSegs  [][]Condition
	havingSegs [][]Condition
}

func (b *builder) build(pipe *parser.Pipeline) (*Statement, error) {
	b.stmt.Tables = append(b.stmt.Tables, Table{Name: pipe.Source})

	for _, stage := range pipe.Stages {
		if err := b.fold(stage); err != nil {
			return nil, err
		}
	}

	b.stmt.Where = joinSegments(b.whereSegs)
	b.stmt.Having = joinSegments(b.havingSegs)
	return b.stmt, nil
}

// fold applies one stage to the statement under construction.
func (b *builder) fold(stage parser.Stage) error {
	switch st := stage.(type) {
	case *parser.SelectStage:
		return b.foldSelect(st)
	case *parser.FilterStage:
		conds, err := b.flatten(st.Pred, st.Pos)
		if err != nil {
			return err
		}
		b.whereSegs = append(b.whereSegs, conds)
		return nil
	case *parser.HavingStage:
		conds, err := b.flatten(st.Pred, st.Pos)
		if err != nil {
			return err
		}
		b.havingSegs = append(b.havingSegs, conds)
		return nil
	case *parser.JoinStage:
		return b.foldJoin(st)
	case *parser.GroupByStage:
		for _, c := range st.Columns {
			b.stmt.GroupBy = append(b.stmt.GroupBy, Named{Table: c.Table, Name: c.Name})
		}
		return nil
	case *parser.OrderByStage:
		for _, item := range st.Items {
			b.stmt.OrderBy = append(b.stmt.OrderBy, OrderItem{
				Column: Named{Table: item.Column.Table, Name: item.Column.Name},
				Desc:   item.Desc,
			})
		}
		return nil
	case *parser.DistinctStage:
		b.stmt.Distinct = true
		return nil
	case *parser.LimitStage:
		n := st.Count
		b.stmt.Limit = &n
		return nil
	case *parser.OffsetStage:
		n := st.Count
		b.stmt.Offset = &n
		return nil
	case *parser.SetOpStage:
		return b.foldSetOp(st)
	default:
		return buildErrf(stage.Position(), "unsupported pipeline stage")
	}
}

// foldSelect replaces the projection. select() and select(*) both leave
// the list empty, which renders as SELECT *.
func (b *builder) foldSelect(st *parser.SelectStage) error {
	b.stmt.Select = nil
	for _, item := range st.Items {
		switch {
		case item.Star && item.Table == "":
			// Bare * contributes nothing beyond the default.
		case item.Star:
			b.stmt.Select = append(b.stmt.Select, Wildcard{Table: item.Table})
		case item.Call != nil:
			text, err := callText(item.Call)
			if err != nil {
				return buildErrf(st.Pos, "%s", err)
			}
			b.stmt.Select = append(b.stmt.Select, Expression{Text: text, Alias: item.Alias})
		default:
			b.stmt.Select = append(b.stmt.Select, Named{
				Table: item.Table,
				Name:  item.Name,
				Alias: item.Alias,
			})
		}
	}
	return nil
}

// foldJoin appends a join relationship and ensures the target table is
// present in the table list. The resolved target pipeline contributes its
// source table and any filter stages, which fold into the outer WHERE
// with unqualified columns attributed to the joined table.
func (b *builder) foldJoin(st *parser.JoinStage) error {
	target := st.Resolved
	if target == nil {
		return buildErrf(st.Pos, "join target %s has not been resolved", st.Target)
	}

	tbl := Table{Name: target.Source}
	if st.Target != target.Source {
		tbl.Alias = st.Target
	}
	b.stmt.Tables = append(b.stmt.Tables, tbl)

	for _, stage := range target.Stages {
		f, ok := stage.(*parser.FilterStage)
		if !ok {
			return buildErrf(st.Pos, "join target %s may only contain filter stages", st.Target)
		}
		conds, err := b.flatten(f.Pred, f.Pos)
		if err != nil {
			return err
		}
		qualifyConditions(conds, tbl.Ref())
		b.whereSegs = append(b.whereSegs, conds)
	}

	join := Join{
		LeftTable:  b.stmt.Tables[0].Ref(),
		RightTable: tbl.Ref(),
		Type:       JoinType(st.Kind),
	}
	if st.On != nil {
		conds, err := b.flatten(st.On, st.Pos)
		if err != nil {
			return err
		}
		join.On = conds
	}
	b.stmt.Joins = append(b.stmt.Joins, join)
	return nil
}

// foldSetOp builds the operand pipeline as an independent statement and
// attaches it. Operand parameters merge into the outer parameter list so
// the compiled unit exposes a single set.
func (b *builder) foldSetOp(st *parser.SetOpStage) error {
	if st.Resolved == nil {
		return buildErrf(st.Pos, "set operand %s has not been resolved", st.Target)
	}
	right, err := Build(st.Resolved)
	if err != nil {
		return err
	}
	for _, p := range right.Params {
		b.addParam(p.Name)
	}
	b.stmt.SetOps = append(b.stmt.SetOps, SetOp{Op: SetOpType(st.Op), Right: right})
	return nil
}

// flatten lowers a predicate tree, harvesting its parameters.
func (b *builder) flatten(pred parser.Expr, pos token.Position) ([]Condition, error) {
	conds, names, err := FlattenPredicate(pred)
	if err != nil {
		return nil, buildErrf(pos, "%s", err)
	}
	for _, name := range names {
		b.addParam(name)
	}
	return conds, nil
}

// addParam records a harvested parameter on first appearance.
func (b *builder) addParam(name string) {
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.stmt.Params = append(b.stmt.Params, Param{Name: name, SQLType: DefaultParamType})
}

// joinSegments chains independently flattened predicate segments with
// AND. A segment containing a top-level OR is parenthesized first, so the
// result evaluates the same as the equivalent single && chain.
func joinSegments(segs [][]Condition) []Condition {
	switch len(segs) {
	case 0:
		return nil
	case 1:
		return segs[0]
	}
	var out []Condition
	for i, seg := range segs {
		if i > 0 {
			out = append(out, Logical{Op: OpAnd})
		}
		if hasTopLevelOr(seg) {
			out = append(out, OpenParen{})
			out = append(out, seg...)
			out = append(out, CloseParen{})
		} else {
			out = append(out, seg...)
		}
	}
	return out
}

// hasTopLevelOr reports whether the segment has an OR outside any
// parenthesized group.
func hasTopLevelOr(conds []Condition) bool {
	depth := 0
	for _, c := range conds {
		switch cc := c.(type) {
		case OpenParen:
			depth++
		case CloseParen:
			depth--
		case Logical:
			if depth == 0 && cc.Op == OpOr {
				return true
			}
		}
	}
	return false
}

// qualifyConditions attributes unqualified column references to ref.
func qualifyConditions(conds []Condition, ref string) {
	for i, c := range conds {
		cmp, ok := c.(Comparison)
		if !ok {
			continue
		}
		cmp.Left = qualifyColumn(cmp.Left, ref)
		if co, ok := cmp.Right.(ColumnOperand); ok {
			co.Column = qualifyColumn(co.Column, ref)
			cmp.Right = co
		}
		conds[i] = cmp
	}
}

func qualifyColumn(col Column, ref string) Column {
	if n, ok := col.(Named); ok && n.Table == "" {
		n.Table = ref
		return n
	}
	return col
}
