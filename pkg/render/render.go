// Package render turns the query IR into dialect-correct SQL text.
//
// Rendering is a pure function over the statement: no I/O, no mutation,
// byte-identical output for the same statement and dialect. Anything the
// dialect cannot express is a RenderError, never malformed SQL.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pipelang/pipelang/pkg/dialect"
	"github.com/pipelang/pipelang/pkg/query"
)

// RenderError reports a statement the dialect cannot express.
type RenderError struct {
	Dialect string
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error (%s): %s", e.Dialect, e.Message)
}

// Render produces SQL text for the statement under the given dialect.
// A statement carrying a parse error short-circuits: the stored error is
// forwarded and no SQL is produced.
func Render(stmt *query.Statement, d *dialect.Dialect) (string, error) {
	if d == nil {
		return "", &RenderError{Message: "no dialect supplied"}
	}
	if stmt.ParseErr != nil {
		return "", stmt.ParseErr
	}

	r := &renderer{d: d, paramIdx: make(map[string]int)}
	if err := r.statement(stmt); err != nil {
		return "", err
	}
	return r.sb.String(), nil
}

// renderer accumulates output text and assigns parameter ordinals in
// first-appearance order across the whole statement, set operands
// included.
type renderer struct {
	d  *dialect.Dialect
	sb strings.Builder

	paramIdx map[string]int
}

func (r *renderer) errf(format string, args ...any) *RenderError {
	return &RenderError{Dialect: r.d.Name, Message: fmt.Sprintf(format, args...)}
}

func (r *renderer) write(s string) {
	r.sb.WriteString(s)
}

func (r *renderer) statement(stmt *query.Statement) error {
	switch stmt.Kind {
	case query.KindSelect:
		return r.selectStatement(stmt)
	case query.KindInsert:
		return r.insertStatement(stmt)
	case query.KindUpdate:
		return r.updateStatement(stmt)
	case query.KindDelete:
		return r.deleteStatement(stmt)
	default:
		return r.errf("unknown statement kind %d", stmt.Kind)
	}
}

// ---------- SELECT ----------

func (r *renderer) selectStatement(stmt *query.Statement) error {
	if len(stmt.Tables) == 0 {
		return r.errf("select statement has no table")
	}

	r.write("SELECT ")
	if stmt.Distinct {
		r.write("DISTINCT ")
	}

	// TOP replaces LIMIT when the dialect pages with OFFSET/FETCH and no
	// offset is requested. In a compound statement TOP would cap only the
	// first arm, so the OFFSET/FETCH form is used instead.
	topOnly := r.d.Paging == dialect.PagingOffsetFetch &&
		stmt.Limit != nil && stmt.Offset == nil && len(stmt.SetOps) == 0
	if topOnly {
		r.write("TOP " + strconv.FormatInt(*stmt.Limit, 10) + " ")
	}

	if err := r.selectList(stmt.Select); err != nil {
		return err
	}

	r.write(" FROM ")
	r.table(stmt.Tables[0])

	for _, join := range stmt.Joins {
		if err := r.join(stmt, join); err != nil {
			return err
		}
	}

	if len(stmt.Where) > 0 {
		r.write(" WHERE ")
		if err := r.conditions(stmt.Where); err != nil {
			return err
		}
	}

	if len(stmt.GroupBy) > 0 {
		r.write(" GROUP BY ")
		for i, col := range stmt.GroupBy {
			if i > 0 {
				r.write(", ")
			}
			r.namedColumn(col)
		}
	}

	if len(stmt.Having) > 0 {
		r.write(" HAVING ")
		if err := r.conditions(stmt.Having); err != nil {
			return err
		}
	}

	// Set operands come before ORDER BY and paging: in a compound
	// statement those clauses apply to the whole compound and are only
	// legal after the last operand.
	for _, setOp := range stmt.SetOps {
		if err := r.setOperand(setOp); err != nil {
			return err
		}
	}

	if len(stmt.OrderBy) > 0 {
		r.write(" ORDER BY ")
		for i, item := range stmt.OrderBy {
			if i > 0 {
				r.write(", ")
			}
			r.namedColumn(item.Column)
			if item.Desc {
				r.write(" DESC")
			} else {
				r.write(" ASC")
			}
		}
	}

	return r.paging(stmt, topOnly)
}

// setOperand renders one set operation arm. Operand-level ordering or
// paging cannot be expressed inside a compound statement without
// subquery rendering, so it is rejected.
func (r *renderer) setOperand(op query.SetOp) error {
	right := op.Right
	if right.Limit != nil || right.Offset != nil || len(right.OrderBy) > 0 {
		return r.errf("set operand cannot carry order_by, limit, or offset")
	}
	r.write(" " + string(op.Op) + " ")
	return r.statement(right)
}

func (r *renderer) selectList(cols []query.Column) error {
	if len(cols) == 0 {
		r.write("*")
		return nil
	}
	for i, col := range cols {
		if i > 0 {
			r.write(", ")
		}
		if err := r.column(col); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) table(t query.Table) {
	r.write(r.d.QuoteIdentifierIfNeeded(t.Name))
	if t.Alias != "" {
		r.write(" AS " + r.d.QuoteIdentifierIfNeeded(t.Alias))
	}
}

func (r *renderer) join(stmt *query.Statement, join query.Join) error {
	tbl, ok := findTable(stmt, join.RightTable)
	if !ok {
		return r.errf("join references unknown table %s", join.RightTable)
	}

	switch join.Type {
	case query.JoinCross:
		r.write(" CROSS JOIN ")
		r.table(tbl)
		return nil
	case query.JoinInner, query.JoinLeft, query.JoinRight:
		r.write(" " + string(join.Type) + " JOIN ")
	default:
		return r.errf("unknown join type %q", join.Type)
	}

	r.table(tbl)
	if len(join.On) == 0 {
		return r.errf("%s join on %s has no condition", join.Type, join.RightTable)
	}
	r.write(" ON ")
	return r.conditions(join.On)
}

func findTable(stmt *query.Statement, ref string) (query.Table, bool) {
	for _, t := range stmt.Tables {
		if t.Ref() == ref {
			return t, true
		}
	}
	return query.Table{}, false
}

// paging renders the dialect's limit/offset form. topOnly marks that the
// limit was already emitted as TOP.
func (r *renderer) paging(stmt *query.Statement, topOnly bool) error {
	if stmt.Limit == nil && stmt.Offset == nil {
		return nil
	}

	switch r.d.Paging {
	case dialect.PagingLimitOffset:
		if stmt.Limit != nil {
			r.write(" LIMIT " + strconv.FormatInt(*stmt.Limit, 10))
		} else if stmt.Offset != nil && r.d.OffsetNeedsLimit {
			// SQLite's grammar only accepts OFFSET after LIMIT; -1 means
			// no row cap.
			r.write(" LIMIT -1")
		}
		if stmt.Offset != nil {
			r.write(" OFFSET " + strconv.FormatInt(*stmt.Offset, 10))
		}
		return nil

	case dialect.PagingOffsetFetch:
		if topOnly {
			return nil
		}
		// OFFSET/FETCH is only legal after ORDER BY; emit the constant
		// anchor when the statement has none. The anchor expression is
		// not a select-list column, which a compound statement requires,
		// so paging a compound demands an explicit ordering.
		if len(stmt.OrderBy) == 0 {
			if len(stmt.SetOps) > 0 {
				return r.errf("paging a set operation requires order_by")
			}
			r.write(" ORDER BY (SELECT NULL)")
		}
		offset := int64(0)
		if stmt.Offset != nil {
			offset = *stmt.Offset
		}
		r.write(" OFFSET " + strconv.FormatInt(offset, 10) + " ROWS")
		if stmt.Limit != nil {
			r.write(" FETCH NEXT " + strconv.FormatInt(*stmt.Limit, 10) + " ROWS ONLY")
		}
		return nil

	default:
		return r.errf("unknown paging style %d", r.d.Paging)
	}
}

// ---------- Columns, conditions, operands ----------

func (r *renderer) column(col query.Column) error {
	switch c := col.(type) {
	case query.Named:
		r.namedColumn(c)
		if c.Alias != "" {
			r.write(" AS " + r.d.QuoteIdentifierIfNeeded(c.Alias))
		}
		return nil
	case query.Wildcard:
		if c.Table != "" {
			r.write(r.d.QuoteIdentifierIfNeeded(c.Table) + ".")
		}
		r.write("*")
		return nil
	case query.Expression:
		r.write(c.Text)
		if c.Alias != "" {
			r.write(" AS " + r.d.QuoteIdentifierIfNeeded(c.Alias))
		}
		return nil
	default:
		return r.errf("unknown column kind %T", col)
	}
}

func (r *renderer) namedColumn(c query.Named) {
	if c.Table != "" {
		r.write(r.d.QuoteIdentifierIfNeeded(c.Table) + ".")
	}
	r.write(r.d.QuoteIdentifierIfNeeded(c.Name))
}

func (r *renderer) conditions(conds []query.Condition) error {
	for i, c := range conds {
		if i > 0 {
			r.write(" ")
		}
		switch cc := c.(type) {
		case query.Comparison:
			if err := r.comparison(cc); err != nil {
				return err
			}
		case query.Logical:
			r.write(cc.Op.String())
		case query.OpenParen:
			r.write("(")
		case query.CloseParen:
			r.write(")")
		default:
			return r.errf("unknown condition kind %T", c)
		}
	}
	return nil
}

func (r *renderer) comparison(cmp query.Comparison) error {
	// Equality against NULL renders as IS [NOT] NULL.
	if lit, ok := cmp.Right.(query.Literal); ok && lit.Kind == query.LiteralNull {
		switch cmp.Op {
		case query.OpEq:
			if err := r.bareColumn(cmp.Left); err != nil {
				return err
			}
			r.write(" IS NULL")
			return nil
		case query.OpNe:
			if err := r.bareColumn(cmp.Left); err != nil {
				return err
			}
			r.write(" IS NOT NULL")
			return nil
		}
	}

	if err := r.bareColumn(cmp.Left); err != nil {
		return err
	}
	r.write(" " + cmp.Op.String() + " ")
	return r.operand(cmp.Right)
}

// bareColumn renders a column without its alias, as used inside
// conditions.
func (r *renderer) bareColumn(col query.Column) error {
	switch c := col.(type) {
	case query.Named:
		r.namedColumn(c)
		return nil
	case query.Expression:
		r.write(c.Text)
		return nil
	case query.Wildcard:
		return r.errf("wildcard cannot appear in a condition")
	default:
		return r.errf("unknown column kind %T", col)
	}
}

func (r *renderer) operand(op query.Operand) error {
	switch o := op.(type) {
	case query.Literal:
		return r.literal(o)
	case query.ColumnOperand:
		return r.bareColumn(o.Column)
	case query.ParamOperand:
		r.write(r.placeholder(o.Name))
		return nil
	default:
		return r.errf("unknown operand kind %T", op)
	}
}

func (r *renderer) literal(lit query.Literal) error {
	switch lit.Kind {
	case query.LiteralNumber:
		r.write(lit.Value)
	case query.LiteralString:
		r.write("'" + strings.ReplaceAll(lit.Value, "'", "''") + "'")
	case query.LiteralBool:
		r.write(r.d.FormatBool(lit.Value == "true"))
	case query.LiteralNull:
		r.write("NULL")
	default:
		return r.errf("unknown literal kind %d", lit.Kind)
	}
	return nil
}

// placeholder returns the dialect marker for a named parameter, assigning
// ordinals in first-appearance order.
func (r *renderer) placeholder(name string) string {
	idx, ok := r.paramIdx[name]
	if !ok {
		idx = len(r.paramIdx) + 1
		r.paramIdx[name] = idx
	}
	return r.d.FormatPlaceholder(idx, name)
}

// ---------- DML ----------

func (r *renderer) insertStatement(stmt *query.Statement) error {
	if len(stmt.Tables) == 0 {
		return r.errf("insert statement has no table")
	}
	if len(stmt.Columns) == 0 {
		return r.errf("insert statement has no columns")
	}

	r.write("INSERT INTO " + r.d.QuoteIdentifierIfNeeded(stmt.Tables[0].Name) + " (")
	for i, col := range stmt.Columns {
		if i > 0 {
			r.write(", ")
		}
		r.write(r.d.QuoteIdentifierIfNeeded(col))
	}
	r.write(") VALUES (")
	for i, col := range stmt.Columns {
		if i > 0 {
			r.write(", ")
		}
		r.write(r.placeholder(col))
	}
	r.write(")")
	return nil
}

func (r *renderer) updateStatement(stmt *query.Statement) error {
	if len(stmt.Tables) == 0 {
		return r.errf("update statement has no table")
	}
	if len(stmt.Columns) == 0 {
		return r.errf("update statement has no columns")
	}

	r.write("UPDATE " + r.d.QuoteIdentifierIfNeeded(stmt.Tables[0].Name) + " SET ")
	for i, col := range stmt.Columns {
		if i > 0 {
			r.write(", ")
		}
		r.write(r.d.QuoteIdentifierIfNeeded(col) + " = " + r.placeholder(col))
	}

	if len(stmt.Where) > 0 {
		r.write(" WHERE ")
		return r.conditions(stmt.Where)
	}
	return nil
}

func (r *renderer) deleteStatement(stmt *query.Statement) error {
	if len(stmt.Tables) == 0 {
		return r.errf("delete statement has no table")
	}

	r.write("DELETE FROM " + r.d.QuoteIdentifierIfNeeded(stmt.Tables[0].Name))
	if len(stmt.Where) > 0 {
		r.write(" WHERE ")
		return r.conditions(stmt.Where)
	}
	return nil
}
