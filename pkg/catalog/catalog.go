// Package catalog provides schema inspectors: small adapters that
// discover column names, types, and nullability from a live database.
//
// The compiler itself never touches a database; inspectors exist so the
// code generation layer can narrow the default parameter types on a
// compiled statement to the real column types.
package catalog

import "context"

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Inspector discovers table metadata from a database.
type Inspector interface {
	// DialectName returns the dialect the inspected database speaks.
	DialectName() string

	// TableColumns returns the columns of a table in ordinal order.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// Close releases the underlying connection.
	Close() error
}
