package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelang/pipelang/pkg/token"
)

func TestParse_SimplePipeline(t *testing.T) {
	prog, err := Parse("users |> select(Id, Name) |> take(10)")
	require.NoError(t, err)

	require.NotNil(t, prog.Main)
	assert.Equal(t, "users", prog.Main.Source)
	require.Len(t, prog.Main.Stages, 2)

	sel, ok := prog.Main.Stages[0].(*SelectStage)
	require.True(t, ok, "first stage should be select")
	require.Len(t, sel.Items, 2)
	assert.Equal(t, "Id", sel.Items[0].Name)
	assert.Equal(t, "Name", sel.Items[1].Name)

	limit, ok := prog.Main.Stages[1].(*LimitStage)
	require.True(t, ok, "second stage should be limit")
	assert.Equal(t, int64(10), limit.Count)
}

func TestParse_SelectItems(t *testing.T) {
	prog, err := Parse("users |> select(*, u.*, Id as UserId, u.Name, count(Id) as N)")
	require.NoError(t, err)

	sel := prog.Main.Stages[0].(*SelectStage)
	require.Len(t, sel.Items, 5)

	assert.True(t, sel.Items[0].Star)
	assert.Empty(t, sel.Items[0].Table)

	assert.True(t, sel.Items[1].Star)
	assert.Equal(t, "u", sel.Items[1].Table)

	assert.Equal(t, "Id", sel.Items[2].Name)
	assert.Equal(t, "UserId", sel.Items[2].Alias)

	assert.Equal(t, "u", sel.Items[3].Table)
	assert.Equal(t, "Name", sel.Items[3].Name)

	require.NotNil(t, sel.Items[4].Call)
	assert.Equal(t, "count", sel.Items[4].Call.Name)
	assert.Equal(t, "N", sel.Items[4].Alias)
}

func TestParse_FilterLambda(t *testing.T) {
	prog, err := Parse("users |> filter(fn(row) => row.Age > 18)")
	require.NoError(t, err)

	f, ok := prog.Main.Stages[0].(*FilterStage)
	require.True(t, ok)
	assert.Equal(t, "row", f.RowVar)

	cmp, ok := f.Pred.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.GT, cmp.Op)

	col, ok := cmp.Left.(*ColumnExpr)
	require.True(t, ok)
	assert.Empty(t, col.Table, "row variable qualifier is stripped")
	assert.Equal(t, "Age", col.Name)

	lit, ok := cmp.Right.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, LiteralNumber, lit.Kind)
	assert.Equal(t, "18", lit.Value)
}

func TestParse_AndBindsTighterThanOr(t *testing.T) {
	prog, err := Parse("t |> filter(fn(r) => r.A == 1 || r.B == 2 && r.C == 3)")
	require.NoError(t, err)

	pred := prog.Main.Stages[0].(*FilterStage).Pred
	or, ok := pred.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.OR, or.Op, "|| should be the root")

	and, ok := or.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op, "&& binds tighter")
}

func TestParse_ParensReorderPrecedence(t *testing.T) {
	prog, err := Parse("t |> filter(fn(r) => (r.A == 1 || r.B == 2) && r.C == 3)")
	require.NoError(t, err)

	pred := prog.Main.Stages[0].(*FilterStage).Pred
	and, ok := pred.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.AND, and.Op, "&& should be the root")

	paren, ok := and.Left.(*ParenExpr)
	require.True(t, ok)
	or, ok := paren.Expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)
}

func TestParse_LeftAssociativeChain(t *testing.T) {
	prog, err := Parse("t |> filter(fn(r) => r.A == 1 && r.B == 2 && r.C == 3)")
	require.NoError(t, err)

	// ((A && B) && C): the chain leans left.
	root := prog.Main.Stages[0].(*FilterStage).Pred.(*BinaryExpr)
	require.Equal(t, token.AND, root.Op)
	left, ok := root.Left.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, left.Op)
}

func TestParse_StringHelperCall(t *testing.T) {
	prog, err := Parse(`users |> filter(fn(row) => row.Name.Contains("ann"))`)
	require.NoError(t, err)

	call, ok := prog.Main.Stages[0].(*FilterStage).Pred.(*CallExpr)
	require.True(t, ok)
	assert.Equal(t, "Contains", call.Name)
	require.NotNil(t, call.Recv)
	assert.Equal(t, "Name", call.Recv.Name)
	require.Len(t, call.Args, 1)
	arg := call.Args[0].(*LiteralExpr)
	assert.Equal(t, "ann", arg.Value)
}

func TestParse_BarePredicateWithoutLambda(t *testing.T) {
	prog, err := Parse("users |> filter(Age >= @minAge)")
	require.NoError(t, err)

	f := prog.Main.Stages[0].(*FilterStage)
	assert.Empty(t, f.RowVar)

	cmp := f.Pred.(*BinaryExpr)
	assert.Equal(t, token.GE, cmp.Op)
	param, ok := cmp.Right.(*ParamExpr)
	require.True(t, ok)
	assert.Equal(t, "minAge", param.Name)
}

func TestParse_LetBindings(t *testing.T) {
	prog, err := Parse(`
let Adults = users |> filter(fn(u) => u.Age >= 18)
let Orders = orders
Adults |> join(Orders, on = Adults.Id == Orders.UserId)
`)
	require.NoError(t, err)

	require.Len(t, prog.Lets, 2)
	assert.Equal(t, "Adults", prog.Lets[0].Name)
	assert.Equal(t, 0, prog.Lets[0].Index)
	assert.Equal(t, "Orders", prog.Lets[1].Name)

	assert.Equal(t, "Adults", prog.Main.Source)
	join, ok := prog.Main.Stages[0].(*JoinStage)
	require.True(t, ok)
	assert.Equal(t, JoinInner, join.Kind)
	assert.Equal(t, "Orders", join.Target)
	require.NotNil(t, join.On)
}

func TestParse_DuplicateLet(t *testing.T) {
	_, err := Parse("let A = users\nlet A = orders\nA |> distinct()")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "A")
}

func TestParse_JoinKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  JoinKind
	}{
		{"inner", "t |> join(X, on = t.Id == X.Id)", JoinInner},
		{"left", "t |> left_join(X, on = t.Id == X.Id)", JoinLeft},
		{"right", "t |> right_join(X, on = t.Id == X.Id)", JoinRight},
		{"cross", "t |> cross_join(X)", JoinCross},
		{"type override", `t |> join(X, on = t.Id == X.Id, type = "left")`, JoinLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.input)
			require.NoError(t, err)
			join := prog.Main.Stages[0].(*JoinStage)
			assert.Equal(t, tt.kind, join.Kind)
		})
	}
}

func TestParse_JoinErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"join without on", "t |> join(X)"},
		{"cross join with on", "t |> cross_join(X, on = t.Id == X.Id)"},
		{"unknown join type", `t |> join(X, on = t.Id == X.Id, type = "sideways")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParse_OrderByDirections(t *testing.T) {
	prog, err := Parse("t |> order_by(Name, Age desc, Id asc)")
	require.NoError(t, err)

	ob := prog.Main.Stages[0].(*OrderByStage)
	require.Len(t, ob.Items, 3)
	assert.False(t, ob.Items[0].Desc)
	assert.True(t, ob.Items[1].Desc)
	assert.False(t, ob.Items[2].Desc)
}

func TestParse_SetOps(t *testing.T) {
	tests := []struct {
		input string
		op    SetOpKind
	}{
		{"t |> union(X)", SetUnion},
		{"t |> union_all(X)", SetUnionAll},
		{"t |> intersect(X)", SetIntersect},
		{"t |> except(X)", SetExcept},
	}

	for _, tt := range tests {
		prog, err := Parse(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		st := prog.Main.Stages[0].(*SetOpStage)
		assert.Equal(t, tt.op, st.Op)
		assert.Equal(t, "X", st.Target)
	}
}

func TestParse_MalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing stage", "users |>"},
		{"unterminated string", `users |> filter(fn(r) => r.Name.Contains("x)`},
		{"stray operator", "users |> filter(fn(r) => r.Age >)"},
		{"trailing garbage", "users |> distinct() extra"},
		{"bad count argument", "users |> take(many)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.NotEmpty(t, perr.Message)
			assert.Positive(t, perr.Pos.Line)
		})
	}
}

func TestParse_MissingStageMessage(t *testing.T) {
	_, err := Parse("users |> 42")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrExpectedStage, perr.Message)
}

func TestParse_ErrorPositions(t *testing.T) {
	_, err := Parse("users |> take(nope)")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos.Line)
	assert.Equal(t, 15, perr.Pos.Column)
}

func TestPipeline_CloneIsDeep(t *testing.T) {
	prog, err := Parse("t |> select(Id) |> group_by(Country)")
	require.NoError(t, err)

	clone := prog.Main.Clone()
	clone.Stages[0].(*SelectStage).Items[0].Name = "Changed"
	clone.Stages[1].(*GroupByStage).Columns[0].Name = "Changed"

	assert.Equal(t, "Id", prog.Main.Stages[0].(*SelectStage).Items[0].Name)
	assert.Equal(t, "Country", prog.Main.Stages[1].(*GroupByStage).Columns[0].Name)
}
