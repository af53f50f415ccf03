package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver
)

// PostgresInspector inspects a PostgreSQL database.
type PostgresInspector struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenPostgres opens a PostgreSQL connection for inspection.
// If logger is nil, a discard logger is used.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresInspector, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresInspector{db: db, logger: logger}, nil
}

// NewPostgresInspector wraps an existing connection. Used by tests to
// inject a mock database.
func NewPostgresInspector(db *sql.DB, logger *slog.Logger) *PostgresInspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresInspector{db: db, logger: logger}
}

// DialectName returns the dialect for this inspector.
func (i *PostgresInspector) DialectName() string {
	return "postgres"
}

// TableColumns reads column metadata from information_schema. The table
// may be schema-qualified; the schema defaults to public.
func (i *PostgresInspector) TableColumns(ctx context.Context, table string) ([]Column, error) {
	schema := "public"
	name := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schema = parts[0]
		name = parts[1]
	}

	i.logger.Debug("inspecting postgres table",
		slog.String("schema", schema), slog.String("table", name))

	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := i.db.QueryContext(ctx, query, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// Close releases the database handle.
func (i *PostgresInspector) Close() error {
	return i.db.Close()
}

var _ Inspector = (*PostgresInspector)(nil)
