package parser

import "github.com/pipelang/pipelang/pkg/token"

// Program is the parse result: the let-table plus the main pipeline.
// Let bindings keep their definition order; bindings may reference each
// other in any order, and the resolver reports transitive self-reference
// as a cycle.
type Program struct {
	Lets []*LetBinding
	Main *Pipeline
}

// Let returns the binding for name, or nil if the name is unbound.
func (p *Program) Let(name string) *LetBinding {
	for _, b := range p.Lets {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// LetBinding is a named, reusable sub-pipeline declared before the main
// expression: let name = <pipeline>.
type LetBinding struct {
	Name     string
	Pipeline *Pipeline
	Index    int // definition order, 0-based
}

// Pipeline is an ordered list of stages applied to a source.
// The source is a table name, or a let-bound name once resolved.
type Pipeline struct {
	Source    string
	SourcePos token.Position
	Stages    []Stage
}

// Clone returns a deep copy of the pipeline. The resolver copies stage
// lists by value per use site so that two inlined copies of the same let
// binding never alias.
func (p *Pipeline) Clone() *Pipeline {
	out := &Pipeline{
		Source:    p.Source,
		SourcePos: p.SourcePos,
		Stages:    make([]Stage, len(p.Stages)),
	}
	for i, s := range p.Stages {
		out.Stages[i] = cloneStage(s)
	}
	return out
}

func cloneStage(s Stage) Stage {
	switch st := s.(type) {
	case *SelectStage:
		c := *st
		c.Items = append([]SelectItem(nil), st.Items...)
		return &c
	case *FilterStage:
		c := *st
		return &c
	case *HavingStage:
		c := *st
		return &c
	case *JoinStage:
		c := *st
		if st.Resolved != nil {
			c.Resolved = st.Resolved.Clone()
		}
		return &c
	case *GroupByStage:
		c := *st
		c.Columns = append([]ColumnRef(nil), st.Columns...)
		return &c
	case *OrderByStage:
		c := *st
		c.Items = append([]OrderItem(nil), st.Items...)
		return &c
	case *DistinctStage:
		c := *st
		return &c
	case *LimitStage:
		c := *st
		return &c
	case *OffsetStage:
		c := *st
		return &c
	case *SetOpStage:
		c := *st
		if st.Resolved != nil {
			c.Resolved = st.Resolved.Clone()
		}
		return &c
	default:
		return s
	}
}

// ---------- Stage Types ----------

// Stage represents one |>-chained operation in a pipeline.
// This is a sealed interface: only types in this package implement it,
// which keeps the statement builder's type switch exhaustive.
type Stage interface {
	stageNode()
	Position() token.Position
}

// stagePos provides the common position field for stage nodes.
type stagePos struct {
	Pos token.Position
}

// Position returns the stage's source position.
func (s stagePos) Position() token.Position { return s.Pos }

// SelectStage projects columns: select(Id, Name as FullName).
// An empty item list means "select everything".
type SelectStage struct {
	stagePos
	Items []SelectItem
}

func (*SelectStage) stageNode() {}

// SelectItem is one entry in a select list.
// Exactly one of Star, Name, or Call is set; Table optionally qualifies
// Star or Name; Alias applies after the column text.
type SelectItem struct {
	Star  bool      // select(*) or select(t.*)
	Table string    // optional qualifier
	Name  string    // plain column
	Call  *CallExpr // aggregate call, e.g. count(Id)
	Alias string    // as alias
}

// FilterStage restricts rows: filter(fn(row) => row.Age > 18).
type FilterStage struct {
	stagePos
	RowVar string // lambda row variable, "" for a bare predicate
	Pred   Expr
}

func (*FilterStage) stageNode() {}

// HavingStage restricts groups: having(fn(g) => count(g.Id) > 5).
type HavingStage struct {
	stagePos
	RowVar string
	Pred   Expr
}

func (*HavingStage) stageNode() {}

// JoinKind is the join flavor carried by a JoinStage.
type JoinKind string

// Join kinds rendered by the dialect renderers.
const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinCross JoinKind = "CROSS"
)

// JoinStage combines the pipeline with a let-bound target:
// join(Orders, on = users.Id == Orders.UserId).
type JoinStage struct {
	stagePos
	Kind     JoinKind
	Target   string
	On       Expr      // nil for cross joins
	Resolved *Pipeline // set by the resolver
}

func (*JoinStage) stageNode() {}

// GroupByStage collects grouping columns: group_by(Country, City).
type GroupByStage struct {
	stagePos
	Columns []ColumnRef
}

func (*GroupByStage) stageNode() {}

// ColumnRef is a possibly-qualified column name.
type ColumnRef struct {
	Table string
	Name  string
}

// OrderByStage appends ordering: order_by(Name, Age desc).
type OrderByStage struct {
	stagePos
	Items []OrderItem
}

func (*OrderByStage) stageNode() {}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Column ColumnRef
	Desc   bool
}

// DistinctStage marks the statement DISTINCT.
type DistinctStage struct {
	stagePos
}

func (*DistinctStage) stageNode() {}

// LimitStage caps the row count: limit(20) or take(20).
type LimitStage struct {
	stagePos
	Count int64
}

func (*LimitStage) stageNode() {}

// OffsetStage skips leading rows: offset(10) or skip(10).
type OffsetStage struct {
	stagePos
	Count int64
}

func (*OffsetStage) stageNode() {}

// SetOpKind is the set operation carried by a SetOpStage.
type SetOpKind string

// Set operations between two built statements.
const (
	SetUnion     SetOpKind = "UNION"
	SetUnionAll  SetOpKind = "UNION ALL"
	SetIntersect SetOpKind = "INTERSECT"
	SetExcept    SetOpKind = "EXCEPT"
)

// SetOpStage combines the pipeline with a let-bound operand:
// union(Archived).
type SetOpStage struct {
	stagePos
	Op       SetOpKind
	Target   string
	Resolved *Pipeline // set by the resolver
}

func (*SetOpStage) stageNode() {}

// ---------- Expression Types ----------

// Expr represents a predicate or argument expression.
// Sealed interface; the lowering pass in pkg/query switches over it
// exhaustively.
type Expr interface {
	exprNode()
}

// BinaryExpr is a binary operation: comparisons, && and ||.
type BinaryExpr struct {
	Left  Expr
	Op    token.Type
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// ParenExpr is an explicitly parenthesized expression. The tree shape
// already encodes precedence; the node is kept so diagnostics can point at
// the user's parens.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// ColumnExpr is a column reference. Inside a lambda the row variable
// qualifier is stripped; any other qualifier names a table or alias.
type ColumnExpr struct {
	Table string
	Name  string
}

func (*ColumnExpr) exprNode() {}

// LiteralKind classifies a literal expression.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// LiteralExpr is a literal value. Value holds the source spelling for
// numbers and the unescaped text for strings.
type LiteralExpr struct {
	Kind  LiteralKind
	Value string
}

func (*LiteralExpr) exprNode() {}

// ParamExpr is a named placeholder: @minAge.
type ParamExpr struct {
	Name string
}

func (*ParamExpr) exprNode() {}

// CallExpr is a function or method call. With a receiver it is a string
// helper (row.Name.Contains("x")); without one it is an aggregate
// (count(Id), sum(Amount)).
type CallExpr struct {
	Recv *ColumnExpr
	Name string
	Args []Expr
}

func (*CallExpr) exprNode() {}
