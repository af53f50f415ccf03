package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelang/pipelang/internal/testutil"
)

func TestPostgresInspector_TableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
		AddRow("id", "integer", "NO", 1).
		AddRow("name", "character varying", "YES", 2)
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public", "users").
		WillReturnRows(rows)

	inspector := NewPostgresInspector(db, testutil.NewTestLogger(t))
	columns, err := inspector.TableColumns(context.Background(), "users")
	require.NoError(t, err)

	require.Len(t, columns, 2)
	assert.Equal(t, Column{Name: "id", Type: "integer", Nullable: false, Position: 1}, columns[0])
	assert.Equal(t, Column{Name: "name", Type: "character varying", Nullable: true, Position: 2}, columns[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInspector_SchemaQualifiedTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
		AddRow("total", "numeric", "NO", 1)
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("sales", "orders").
		WillReturnRows(rows)

	inspector := NewPostgresInspector(db, testutil.NewTestLogger(t))
	columns, err := inspector.TableColumns(context.Background(), "sales.orders")
	require.NoError(t, err)

	require.Len(t, columns, 1)
	assert.Equal(t, "total", columns[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInspector_UnknownTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

	inspector := NewPostgresInspector(db, testutil.NewTestLogger(t))
	_, err = inspector.TableColumns(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestPostgresInspector_DialectName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	inspector := NewPostgresInspector(db, testutil.NewTestLogger(t))
	assert.Equal(t, "postgres", inspector.DialectName())
}
