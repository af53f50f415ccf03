// Package postgres provides the PostgreSQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import "github.com/pipelang/pipelang/pkg/dialect"

// Config is the PostgreSQL dialect configuration. Pure data, read by the
// builder in dialect.go.
var Config = &dialect.Config{
	Name:        "postgres",
	Placeholder: dialect.PlaceholderDollar,
	Paging:      dialect.PagingLimitOffset,
	Bools:       dialect.BoolKeyword,
	Identifiers: dialect.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: dialect.NormLowercase,
	},
}
