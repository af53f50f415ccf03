package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelang/pipelang/internal/testutil"
)

func openTestDB(t *testing.T) *SQLiteInspector {
	t.Helper()
	inspector, err := OpenSQLite(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inspector.Close() })

	_, err = inspector.db.Exec(`
		CREATE TABLE users (
			Id    INTEGER PRIMARY KEY,
			Name  TEXT NOT NULL,
			Age   INTEGER,
			Email TEXT
		)`)
	require.NoError(t, err)
	return inspector
}

func TestSQLiteInspector_TableColumns(t *testing.T) {
	inspector := openTestDB(t)

	columns, err := inspector.TableColumns(context.Background(), "users")
	require.NoError(t, err)

	require.Len(t, columns, 4)
	assert.Equal(t, Column{Name: "Id", Type: "INTEGER", Nullable: true, Position: 0}, columns[0])
	assert.Equal(t, "Name", columns[1].Name)
	assert.False(t, columns[1].Nullable, "NOT NULL column")
	assert.Equal(t, "Age", columns[2].Name)
	assert.True(t, columns[2].Nullable)
}

func TestSQLiteInspector_UnknownTable(t *testing.T) {
	inspector := openTestDB(t)

	_, err := inspector.TableColumns(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSQLiteInspector_DialectName(t *testing.T) {
	inspector := openTestDB(t)
	assert.Equal(t, "sqlite", inspector.DialectName())
}
