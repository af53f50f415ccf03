// Package query defines the canonical, dialect-neutral query IR and the
// statement builder that lowers a resolved pipeline into it.
//
// A Statement is built exactly once per compiled source unit, is immutable
// thereafter, and is read (never mutated) by dialect renderers.
package query

// Kind classifies a statement.
type Kind int

// Statement kinds. Select statements come from the pipeline language;
// the DML kinds come from the per-table constructors in dml.go.
const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

// String returns the SQL verb for the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Statement is the query IR: everything a dialect renderer needs to emit
// SQL text, with no remaining references to the pipeline AST.
type Statement struct {
	Kind     Kind
	Select   []Column // empty means SELECT *
	Tables   []Table  // first entry is the FROM table
	Joins    []Join   // insertion-ordered join graph
	Where    []Condition
	GroupBy  []Named
	Having   []Condition
	OrderBy  []OrderItem
	Distinct bool
	Limit    *int64
	Offset   *int64
	Params   []Param // harvested placeholders, in first-appearance order
	SetOps   []SetOp // set operations applied left-to-right

	// Columns holds the target column names for insert/update statements.
	Columns []string

	// ParseErr, when set, marks the statement terminal: renderers forward
	// the error instead of producing SQL.
	ParseErr error
}

// NewParseFailure returns a terminal statement carrying a parse error.
func NewParseFailure(err error) *Statement {
	return &Statement{ParseErr: err}
}

// Table is a table reference, optionally aliased. Join conditions and
// column qualifiers refer to the alias when present.
type Table struct {
	Name  string
	Alias string
}

// Ref returns the name used to reference the table elsewhere in the
// statement: the alias when present, else the name.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinType is the join flavor of a Join relationship.
type JoinType string

// Join types. Rendering is dialect-sensitive.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinCross JoinType = "CROSS"
)

// Join is one table-to-table relationship in the join graph. Order in
// Statement.Joins determines render order; both tables must already be
// present in Statement.Tables.
type Join struct {
	LeftTable  string
	RightTable string
	Type       JoinType
	On         []Condition // empty for cross joins
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Column Named
	Desc   bool
}

// DefaultParamType is the SQL type assigned to harvested parameters when
// no schema-aware narrowing has been applied.
const DefaultParamType = "TEXT"

// Param is a named statement parameter. Names are unique within one
// statement.
type Param struct {
	Name    string
	SQLType string
}

// SetOpType is a set operation keyword.
type SetOpType string

// Set operations.
const (
	SetUnion     SetOpType = "UNION"
	SetUnionAll  SetOpType = "UNION ALL"
	SetIntersect SetOpType = "INTERSECT"
	SetExcept    SetOpType = "EXCEPT"
)

// SetOp combines the statement with another already-built statement.
// Operands render between the statement's HAVING and ORDER BY clauses;
// the outer ordering and paging apply to the whole compound.
type SetOp struct {
	Op    SetOpType
	Right *Statement
}

// ---------- Columns ----------

// Column represents an entry in a select list.
//
// Sealed interface: only Named, Wildcard, and Expression implement it,
// enabling exhaustive type switches in the renderers.
type Column interface {
	columnNode()
}

// Named is a column referenced by name, optionally qualified and aliased.
// The alias, when present, applies after the column text.
type Named struct {
	Table string
	Name  string
	Alias string
}

func (Named) columnNode() {}

// Wildcard is * or table.*.
type Wildcard struct {
	Table string
}

func (Wildcard) columnNode() {}

// Expression is a verbatim SQL expression, e.g. an aggregate call.
type Expression struct {
	Text  string
	Alias string
}

func (Expression) columnNode() {}

// ---------- Conditions ----------

// Condition is one token in the flat, order-preserving condition sequence
// used for WHERE, HAVING, and join conditions.
//
// Invariants (checked by ValidateConditions): parentheses are balanced;
// the sequence never starts or ends with a Logical; two Comparisons never
// appear adjacent without an intervening Logical.
type Condition interface {
	conditionNode()
}

// CompareOp is a comparison operator. Dialect renderers map it to the
// dialect's spelling.
type CompareOp int

// Comparison operators.
const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpLike
)

// String returns the neutral spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpLike:
		return "LIKE"
	default:
		return "?"
	}
}

// Comparison is a single column-operator-operand condition.
type Comparison struct {
	Left  Column
	Op    CompareOp
	Right Operand
}

func (Comparison) conditionNode() {}

// LogicalOp is a boolean combinator between comparisons.
type LogicalOp int

// Logical operators.
const (
	OpAnd LogicalOp = iota
	OpOr
)

// String returns the SQL keyword for the operator.
func (op LogicalOp) String() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// Logical is an AND/OR token between conditions.
type Logical struct {
	Op LogicalOp
}

func (Logical) conditionNode() {}

// OpenParen is an explicit grouping marker.
type OpenParen struct{}

func (OpenParen) conditionNode() {}

// CloseParen closes a grouping marker.
type CloseParen struct{}

func (CloseParen) conditionNode() {}

// ---------- Operands ----------

// Operand is the right-hand side of a Comparison.
// Sealed interface over literals, parameters, and column references.
type Operand interface {
	operandNode()
}

// LiteralKind classifies a literal operand.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a literal operand. Value holds the source spelling for
// numbers ("42", "3.14"), the raw text for strings, and "true"/"false"
// for booleans.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (Literal) operandNode() {}

// ColumnOperand compares against another column, as in join conditions.
type ColumnOperand struct {
	Column Column
}

func (ColumnOperand) operandNode() {}

// ParamOperand references a named statement parameter.
type ParamOperand struct {
	Name string
}

func (ParamOperand) operandNode() {}
