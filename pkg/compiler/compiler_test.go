package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelang/pipelang/pkg/dialect"
	"github.com/pipelang/pipelang/pkg/parser"
	"github.com/pipelang/pipelang/pkg/query"
	"github.com/pipelang/pipelang/pkg/resolver"
)

func TestCompile_SelectFilter(t *testing.T) {
	sql, err := Compile(`users
|> select(Id, Name)
|> filter(fn(row) => row.Age > 18)`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT Id, Name FROM users WHERE Age > 18", sql)
}

func TestCompile_EmptySelectIsStar(t *testing.T) {
	sql, err := Compile("users |> select()", "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users", sql)
}

func TestCompile_PrecedenceAndOrdering(t *testing.T) {
	sql, err := Compile(`t
|> filter(fn(r) => r.A == 1 || r.B == 2 && r.C == 3)
|> order_by(V)`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM t WHERE A = 1 OR ( B = 2 AND C = 3 ) ORDER BY V ASC", sql)
}

func TestCompile_PagingPerDialect(t *testing.T) {
	source := "users |> skip(10) |> take(20)"

	sql, err := Compile(source, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 20 OFFSET 10", sql)

	sql, err = Compile(source, "postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 20 OFFSET 10", sql)

	sql, err = Compile(source, "sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users ORDER BY (SELECT NULL) OFFSET 10 ROWS FETCH NEXT 20 ROWS ONLY", sql)
}

func TestCompile_ParamsPerDialect(t *testing.T) {
	source := "users |> filter(fn(u) => u.Age >= @min && u.Age <= @max)"

	sql, err := Compile(source, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE Age >= ? AND Age <= ?", sql)

	sql, err = Compile(source, "postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE Age >= $1 AND Age <= $2", sql)

	sql, err = Compile(source, "sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE Age >= @min AND Age <= @max", sql)
}

func TestCompile_StringHelpers(t *testing.T) {
	sql, err := Compile(`users |> filter(fn(u) => u.Name.StartsWith("A"))`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE Name LIKE 'A%'", sql)
}

func TestCompile_JoinThroughLet(t *testing.T) {
	sql, err := Compile(`
let Orders = orders |> filter(fn(o) => o.Status == "paid")
users |> join(Orders, on = users.Id == Orders.UserId) |> select(users.Name, Orders.Total)`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT users.Name, Orders.Total FROM users INNER JOIN orders AS Orders ON users.Id = Orders.UserId WHERE Orders.Status = 'paid'",
		sql)
}

func TestCompile_GroupByHaving(t *testing.T) {
	sql, err := Compile(`orders
|> group_by(CustomerId)
|> select(CustomerId, count(Id) as N)
|> having(count(Id) > 5)`, "postgres")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT CustomerId, COUNT(Id) AS N FROM orders GROUP BY CustomerId HAVING COUNT(Id) > 5",
		sql)
}

func TestCompile_SetOp(t *testing.T) {
	sql, err := Compile(`
let Archived = archived_users |> select(Id)
users |> select(Id) |> union(Archived)`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT Id FROM users UNION SELECT Id FROM archived_users", sql)
}

func TestCompile_SetOpAfterLimit(t *testing.T) {
	sql, err := Compile(`
let Archived = archived_users |> select(Id)
users |> select(Id) |> limit(5) |> union(Archived)`, "sqlite")
	require.NoError(t, err)

	// LIMIT belongs after the compound, never between the arms.
	assert.Equal(t, "SELECT Id FROM users UNION SELECT Id FROM archived_users LIMIT 5", sql)
}

func TestCompile_SetOpAfterOrderBy(t *testing.T) {
	sql, err := Compile(`
let Archived = archived_users |> select(Id)
users |> select(Id) |> order_by(Id) |> union(Archived)`, "sqlite")
	require.NoError(t, err)

	assert.Equal(t, "SELECT Id FROM users UNION SELECT Id FROM archived_users ORDER BY Id ASC", sql)
}

func TestCompile_UnknownDialect(t *testing.T) {
	_, err := Compile("users |> select()", "oracle")
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageRender, cerr.Stage)
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestCompile_ParseErrorStage(t *testing.T) {
	_, err := Compile("users |>", "sqlite")
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageParse, cerr.Stage)
	assert.Positive(t, cerr.Pos.Line)

	var perr *parser.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestCompile_ResolveErrorStage(t *testing.T) {
	_, err := Compile("users |> join(Missing, on = users.Id == Missing.Id)", "sqlite")
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageResolve, cerr.Stage)

	var uerr *resolver.UndefinedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Missing", uerr.Name)
}

func TestCompile_BuildErrorStage(t *testing.T) {
	_, err := Compile(`
let Slim = orders |> select(Id)
users |> join(Slim, on = users.Id == Slim.Id)`, "sqlite")
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageBuild, cerr.Stage)

	var berr *query.BuildError
	assert.ErrorAs(t, err, &berr)
}

func TestCompileToStatement(t *testing.T) {
	stmt, err := CompileToStatement("users |> filter(fn(u) => u.Age >= @min)")
	require.NoError(t, err)

	assert.Equal(t, query.KindSelect, stmt.Kind)
	require.Len(t, stmt.Params, 1)
	assert.Equal(t, "min", stmt.Params[0].Name)
	assert.Equal(t, query.DefaultParamType, stmt.Params[0].SQLType)
}

func TestCompile_Deterministic(t *testing.T) {
	source := `users |> filter(fn(u) => u.Age >= @min) |> order_by(Name) |> take(5)`

	first, err := Compile(source, "postgres")
	require.NoError(t, err)
	second, err := Compile(source, "postgres")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
