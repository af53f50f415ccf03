package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelang/pipelang/pkg/parser"
	"github.com/pipelang/pipelang/pkg/resolver"
)

// mustBuild parses, resolves, and builds a statement from source.
func mustBuild(t *testing.T, source string) *Statement {
	t.Helper()
	prog, err := parser.Parse(source)
	require.NoError(t, err)
	pipe, err := resolver.Resolve(prog)
	require.NoError(t, err)
	stmt, err := Build(pipe)
	require.NoError(t, err)
	return stmt
}

func TestBuild_DefaultsToSelectStar(t *testing.T) {
	stmt := mustBuild(t, "users |> select()")

	assert.Equal(t, KindSelect, stmt.Kind)
	assert.Empty(t, stmt.Select, "empty projection renders as SELECT *")
	require.Len(t, stmt.Tables, 1)
	assert.Equal(t, "users", stmt.Tables[0].Name)
}

func TestBuild_Projection(t *testing.T) {
	stmt := mustBuild(t, "users |> select(Id, u.Name as FullName, count(Id) as N, u.*)")

	require.Len(t, stmt.Select, 4)
	assert.Equal(t, Named{Name: "Id"}, stmt.Select[0])
	assert.Equal(t, Named{Table: "u", Name: "Name", Alias: "FullName"}, stmt.Select[1])
	assert.Equal(t, Expression{Text: "COUNT(Id)", Alias: "N"}, stmt.Select[2])
	assert.Equal(t, Wildcard{Table: "u"}, stmt.Select[3], "qualified wildcard is kept")
}

func TestBuild_LastSelectWins(t *testing.T) {
	stmt := mustBuild(t, "users |> select(Id, Name) |> select(Id)")

	require.Len(t, stmt.Select, 1)
	assert.Equal(t, Named{Name: "Id"}, stmt.Select[0])
}

func TestBuild_FiltersChainWithAnd(t *testing.T) {
	stmt := mustBuild(t, `users
|> filter(fn(u) => u.Age >= 18)
|> filter(fn(u) => u.Active == true)`)

	require.Len(t, stmt.Where, 3)
	assert.Equal(t, Logical{Op: OpAnd}, stmt.Where[1])
	assert.NoError(t, ValidateConditions(stmt.Where))
}

func TestBuild_OrSegmentIsParenthesized(t *testing.T) {
	stmt := mustBuild(t, `users
|> filter(fn(u) => u.City == "NY" || u.City == "LA")
|> filter(fn(u) => u.Age >= 21)`)

	// ( City = 'NY' OR City = 'LA' ) AND Age >= 21
	require.Len(t, stmt.Where, 7)
	_, ok := stmt.Where[0].(OpenParen)
	assert.True(t, ok, "segment with top-level OR is grouped")
	assert.Equal(t, Logical{Op: OpAnd}, stmt.Where[5])
	assert.NoError(t, ValidateConditions(stmt.Where))
}

func TestBuild_HavingSeparateFromWhere(t *testing.T) {
	stmt := mustBuild(t, `orders
|> filter(fn(o) => o.Total > 0)
|> group_by(CustomerId)
|> having(count(Id) > 5)`)

	require.Len(t, stmt.Where, 1)
	require.Len(t, stmt.Having, 1)
	require.Len(t, stmt.GroupBy, 1)
	assert.Equal(t, Named{Name: "CustomerId"}, stmt.GroupBy[0])

	having := stmt.Having[0].(Comparison)
	assert.Equal(t, Expression{Text: "COUNT(Id)"}, having.Left)
}

func TestBuild_Join(t *testing.T) {
	stmt := mustBuild(t, `
let Orders = orders
users |> join(Orders, on = users.Id == Orders.UserId)`)

	require.Len(t, stmt.Tables, 2)
	assert.Equal(t, Table{Name: "orders", Alias: "Orders"}, stmt.Tables[1])

	require.Len(t, stmt.Joins, 1)
	j := stmt.Joins[0]
	assert.Equal(t, "users", j.LeftTable)
	assert.Equal(t, "Orders", j.RightTable)
	assert.Equal(t, JoinInner, j.Type)
	require.Len(t, j.On, 1)
}

func TestBuild_LeftJoinType(t *testing.T) {
	stmt := mustBuild(t, `
let O = orders
users |> left_join(O, on = users.Id == O.UserId)`)

	assert.Equal(t, Table{Name: "orders", Alias: "O"}, stmt.Tables[1])
	assert.Equal(t, JoinLeft, stmt.Joins[0].Type)
}

func TestBuild_CrossJoinHasNoCondition(t *testing.T) {
	stmt := mustBuild(t, "let Sizes = sizes\ncolors |> cross_join(Sizes)")

	require.Len(t, stmt.Joins, 1)
	assert.Equal(t, JoinCross, stmt.Joins[0].Type)
	assert.Empty(t, stmt.Joins[0].On)
}

func TestBuild_JoinTargetFiltersFoldIntoWhere(t *testing.T) {
	stmt := mustBuild(t, `
let Paid = orders |> filter(fn(o) => o.Status == "paid")
users |> join(Paid, on = users.Id == Paid.UserId)`)

	// The target's filter lands in the outer WHERE, qualified to the join
	// alias.
	require.Len(t, stmt.Where, 1)
	cmp := stmt.Where[0].(Comparison)
	assert.Equal(t, Named{Table: "Paid", Name: "Status"}, cmp.Left)
}

func TestBuild_JoinTargetWithProjectionRejected(t *testing.T) {
	prog, err := parser.Parse(`
let Slim = orders |> select(Id)
users |> join(Slim, on = users.Id == Slim.Id)`)
	require.NoError(t, err)
	pipe, err := resolver.Resolve(prog)
	require.NoError(t, err)

	_, err = Build(pipe)
	require.Error(t, err)

	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Message, "Slim")
}

func TestBuild_LimitOffsetLastWins(t *testing.T) {
	stmt := mustBuild(t, "users |> take(10) |> skip(5) |> limit(20)")

	require.NotNil(t, stmt.Limit)
	assert.Equal(t, int64(20), *stmt.Limit)
	require.NotNil(t, stmt.Offset)
	assert.Equal(t, int64(5), *stmt.Offset)
}

func TestBuild_OrderByAndDistinct(t *testing.T) {
	stmt := mustBuild(t, "users |> distinct() |> order_by(Name, Age desc)")

	assert.True(t, stmt.Distinct)
	require.Len(t, stmt.OrderBy, 2)
	assert.Equal(t, OrderItem{Column: Named{Name: "Name"}}, stmt.OrderBy[0])
	assert.True(t, stmt.OrderBy[1].Desc)
}

func TestBuild_ParamsHarvestedInOrder(t *testing.T) {
	stmt := mustBuild(t, `users
|> filter(fn(u) => u.Age >= @min)
|> filter(fn(u) => u.City == @city && u.Age <= @max)
|> having(count(Id) > @min)`)

	require.Len(t, stmt.Params, 3)
	assert.Equal(t, "min", stmt.Params[0].Name)
	assert.Equal(t, "city", stmt.Params[1].Name)
	assert.Equal(t, "max", stmt.Params[2].Name)
	for _, p := range stmt.Params {
		assert.Equal(t, DefaultParamType, p.SQLType)
	}
}

func TestBuild_SetOp(t *testing.T) {
	stmt := mustBuild(t, `
let Archived = archived_users |> filter(fn(a) => a.Year < @cutoff)
users |> select(Id) |> union(Archived)`)

	require.Len(t, stmt.SetOps, 1)
	op := stmt.SetOps[0]
	assert.Equal(t, SetUnion, op.Op)
	require.NotNil(t, op.Right)
	assert.Equal(t, "archived_users", op.Right.Tables[0].Name)

	// Operand parameters surface on the outer statement.
	require.Len(t, stmt.Params, 1)
	assert.Equal(t, "cutoff", stmt.Params[0].Name)
}

func TestBuild_ChainedSetOps(t *testing.T) {
	stmt := mustBuild(t, `
let A = a
let B = b
t |> union_all(A) |> except(B)`)

	require.Len(t, stmt.SetOps, 2)
	assert.Equal(t, SetUnionAll, stmt.SetOps[0].Op)
	assert.Equal(t, SetExcept, stmt.SetOps[1].Op)
}
