package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // register the sqlite driver
)

// SQLiteInspector inspects a SQLite database file.
type SQLiteInspector struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens a SQLite database for inspection. Use ":memory:" for
// an in-memory database. If logger is nil, a discard logger is used.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteInspector, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &SQLiteInspector{db: db, logger: logger}, nil
}

// DialectName returns the dialect for this inspector.
func (i *SQLiteInspector) DialectName() string {
	return "sqlite"
}

// TableColumns reads column metadata through pragma_table_info.
func (i *SQLiteInspector) TableColumns(ctx context.Context, table string) ([]Column, error) {
	i.logger.Debug("inspecting sqlite table", slog.String("table", table))

	rows, err := i.db.QueryContext(ctx,
		`SELECT cid, name, type, "notnull" FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var notNull int
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &notNull); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		col.Nullable = notNull == 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table info: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// Close releases the database handle.
func (i *SQLiteInspector) Close() error {
	return i.db.Close()
}

var _ Inspector = (*SQLiteInspector)(nil)
