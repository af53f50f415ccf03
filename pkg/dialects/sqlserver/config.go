// Package sqlserver provides the SQL Server (T-SQL) dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlserver

import "github.com/pipelang/pipelang/pkg/dialect"

// Config is the SQL Server dialect configuration. Pure data, read by the
// builder in dialect.go.
var Config = &dialect.Config{
	Name:        "sqlserver",
	Placeholder: dialect.PlaceholderAtName,
	Paging:      dialect.PagingOffsetFetch,
	Bools:       dialect.BoolInteger,
	Identifiers: dialect.IdentifierConfig{
		Quote:         `[`,
		QuoteEnd:      `]`,
		Escape:        `]]`,
		Normalization: dialect.NormCaseInsensitive,
	},
}
